// Package config decodes and validates the recognised configuration options
// for a cache component instance.
//
// Options arrive the way a discrete-event simulator kernel hands component
// parameters to its children: a flat map of string keys to string values.
// Load decodes that map into a validated Config, applying defaults for any
// option the caller omitted. Every rejection here is a configuration error
// and is fatal at construction time (see pkg/config.Error).
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
)

// Config holds the validated, decoded form of a cache component's
// "Recognised options" (see the component parameter table).
type Config struct {
	// NumWays is the set associativity (num_ways). Must be > 0.
	NumWays int `mapstructure:"num_ways" validate:"required,gt=0"`

	// NumRows is the number of sets (num_rows). Must be a power of two > 0.
	NumRows int `mapstructure:"num_rows" validate:"required,gt=0"`

	// BlockSize is the number of bytes per block (blocksize). Must be > 0.
	BlockSize int `mapstructure:"blocksize" validate:"required,gt=0"`

	// ModeName selects STANDARD, INCLUSIVE, or EXCLUSIVE (unimplemented).
	ModeName string `mapstructure:"mode" validate:"omitempty,oneof=STANDARD INCLUSIVE EXCLUSIVE"`

	// AccessTime is the access latency applied before self-link scheduling
	// of responses, fills, and supplies.
	AccessTime time.Duration `mapstructure:"access_time"`

	// NumUpstream is the count of upstream links to configure.
	NumUpstream int `mapstructure:"num_upstream" validate:"gte=0"`

	// NextLevel is the symbolic name of the next cache level, or "NONE".
	NextLevel string `mapstructure:"next_level"`

	// NetAddr is the network address used to register with the directory
	// link, if a directory is attached.
	NetAddr string `mapstructure:"net_addr"`

	// Prefetcher is the plugin module name. It is decoded and kept but not
	// read: no prefetcher or listener is loaded.
	Prefetcher string `mapstructure:"prefetcher"`

	// IsL1 forces L1 role detection instead of inferring it from the first
	// CPU request. See the open question on fragile L1 auto-detection.
	IsL1 bool `mapstructure:"is_l1"`

	// Mode is ModeName parsed into its enum form. Populated by Load.
	Mode Mode `mapstructure:"-"`
}

var validate = validator.New()

// Load decodes a flat option map (as handed down by the simulator kernel's
// component parameter system) into a validated Config.
//
// Unset options take the defaults documented in DefaultConfig. An unknown
// mode or a structurally invalid value is returned as *config.Error.
func Load(params map[string]string) (*Config, error) {
	cfg := DefaultConfig()

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("cachesim: building config decoder: %w", err)
	}
	if err := decoder.Decode(params); err != nil {
		return nil, &Error{Option: "<params>", Reason: err.Error()}
	}

	mode, err := ParseMode(cfg.ModeName)
	if err != nil {
		return nil, err
	}
	cfg.Mode = mode

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate re-checks structural invariants that validator tags cannot
// express, such as power-of-two row counts and the EXCLUSIVE-mode
// non-goal.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return &Error{Option: "<struct>", Reason: err.Error()}
	}
	if cfg.NumRows&(cfg.NumRows-1) != 0 {
		return &Error{Option: "num_rows", Reason: fmt.Sprintf("%d is not a power of two", cfg.NumRows)}
	}
	if cfg.Mode == Exclusive {
		return &Error{Option: "mode", Reason: "EXCLUSIVE cache mode is reserved and not implemented"}
	}
	return nil
}
