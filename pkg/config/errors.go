package config

import "fmt"

// Error reports a configuration problem discovered at init time. Per the
// component's error taxonomy, configuration errors are fatal: the caller is
// expected to abort construction rather than attempt partial recovery.
type Error struct {
	Option string // offending option name, e.g. "num_rows"
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("cachesim: config option %q: %s", e.Option, e.Reason)
}
