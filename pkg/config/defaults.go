package config

import "time"

// DefaultConfig returns a Config populated with the component's documented
// defaults. Load starts from this value and overlays the caller's params.
func DefaultConfig() *Config {
	return &Config{
		NumWays:     4,
		NumRows:     64,
		BlockSize:   64,
		ModeName:    "STANDARD",
		AccessTime:  1 * time.Nanosecond,
		NumUpstream: 1,
		NextLevel:   "NONE",
		Prefetcher:  "",
	}
}
