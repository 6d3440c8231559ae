// Package scenario loads a YAML-described cache hierarchy and operation
// script and drives it to completion over a shared pkg/kernel.Clock,
// reporting each cache's teardown statistics.
//
// A scenario is one or more chains of cache levels (closest-to-CPU first,
// closest-to-memory last), optionally joined by snoop-bus groups, plus an
// ordered list of CPU operations to dispatch against named levels.
package scenario

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/cachesim/pkg/config"
)

// Scenario is the decoded, not-yet-validated form of a scenario file.
type Scenario struct {
	Chains  []ChainSpec    `yaml:"chains" validate:"required,min=1,dive"`
	Snoop   []SnoopSpec    `yaml:"snoop,omitempty" validate:"dive"`
	Memory  MemorySpec     `yaml:"memory"`
	Ops     []OpSpec       `yaml:"ops" validate:"required,min=1,dive"`
	Horizon int64          `yaml:"horizon"`
}

// ChainSpec is one upstream-to-downstream path of cache levels, the
// top-most entry sitting directly below a CPU.
type ChainSpec struct {
	Levels []LevelSpec `yaml:"levels" validate:"required,min=1,dive"`
}

// LevelSpec names one cache instance and the options it is configured
// with (decoded the same way pkg/config.Load decodes simulator kernel
// parameters).
type LevelSpec struct {
	Name   string            `yaml:"name" validate:"required"`
	Config map[string]string `yaml:"config"`
}

// SnoopSpec joins two or more named levels, from any chain, onto a shared
// bus. ArbDelay defaults to 1ns when zero.
type SnoopSpec struct {
	Members  []string      `yaml:"members" validate:"required,min=2"`
	ArbDelay time.Duration `yaml:"arb_delay"`
}

// MemorySpec configures the terminal memory stub backing every chain's
// lowest level. Delay defaults to 1ns when zero.
type MemorySpec struct {
	Delay time.Duration `yaml:"delay"`
}

// OpSpec schedules one CPU read or write against a named level at a given
// simulation time.
type OpSpec struct {
	Cache  string `yaml:"cache" validate:"required"`
	Op     string `yaml:"op" validate:"required,oneof=read write"`
	Addr   uint64 `yaml:"addr"`
	Size   uint32 `yaml:"size" validate:"required,gt=0"`
	At     int64  `yaml:"at"`
	Locked bool   `yaml:"locked,omitempty"`
}

var validate = validator.New()

// Load decodes and validates a scenario document. Every per-level Config
// map is additionally validated through pkg/config.Validate so a bad
// cache parameter is reported the same way it would be from any other
// entry point.
func Load(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, &Error{Reason: fmt.Sprintf("parsing scenario YAML: %s", err)}
	}
	if err := validate.Struct(&sc); err != nil {
		return nil, &Error{Reason: err.Error()}
	}

	seen := make(map[string]bool)
	for _, chain := range sc.Chains {
		for _, lvl := range chain.Levels {
			if seen[lvl.Name] {
				return nil, &Error{Reason: fmt.Sprintf("duplicate level name %q", lvl.Name)}
			}
			seen[lvl.Name] = true
			if _, err := config.Load(lvl.Config); err != nil {
				return nil, &Error{Reason: fmt.Sprintf("level %q: %s", lvl.Name, err)}
			}
		}
	}
	for _, grp := range sc.Snoop {
		for _, m := range grp.Members {
			if !seen[m] {
				return nil, &Error{Reason: fmt.Sprintf("snoop group references unknown level %q", m)}
			}
		}
	}
	for _, op := range sc.Ops {
		if !seen[op.Cache] {
			return nil, &Error{Reason: fmt.Sprintf("op references unknown level %q", op.Cache)}
		}
	}
	return &sc, nil
}

// Error reports a malformed or failing-validation scenario file. Like
// config.Error, it is always a fatal, init-time condition.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return fmt.Sprintf("cachesim: scenario: %s", e.Reason) }
