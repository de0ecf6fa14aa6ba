// SPDX-License-Identifier: MIT

// Package config selects the execution strategy and run parameters of the
// kernels at runtime.
//
// Sources, lowest precedence first:
//  1. built-in defaults (Default* constants),
//  2. an optional YAML file,
//  3. SSCHA_* environment variables (SSCHA_STRATEGY, SSCHA_WORKERS, ...),
//  4. anything the caller binds on the viper instance, e.g. cobra flags.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/viper"

	"github.com/eliheady/python-sscha/comm"
	"github.com/eliheady/python-sscha/parallel"
)

// Keys understood by Load.
const (
	KeyStrategy            = "strategy"
	KeyWorkers             = "workers"
	KeyRanks               = "ranks"
	KeyTemperature         = "temperature"
	KeyDegeneracyTolerance = "degeneracy_tolerance"
)

// Defaults.
const (
	DefaultStrategy            = parallel.NameSerial
	DefaultWorkers             = 0 // GOMAXPROCS
	DefaultRanks               = 1
	DefaultTemperature         = 0.0
	DefaultDegeneracyTolerance = 1e-8
)

// EnvPrefix is prepended to every key for environment overrides.
const EnvPrefix = "SSCHA"

// ErrInvalid is returned for a configuration that fails Validate.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the resolved runtime configuration.
type Config struct {
	// Strategy is one of "serial", "shared" or "distributed".
	Strategy string `mapstructure:"strategy"`
	// Workers is the goroutine count of the shared-memory strategy, also
	// used inside each rank of the distributed one. 0 means GOMAXPROCS.
	Workers int `mapstructure:"workers"`
	// Ranks is the number of in-process peers of the distributed strategy.
	Ranks int `mapstructure:"ranks"`
	// Temperature in Kelvin for the finite-temperature kernels.
	Temperature float64 `mapstructure:"temperature"`
	// DegeneracyTolerance is the relative frequency tolerance used to group
	// degenerate modes.
	DegeneracyTolerance float64 `mapstructure:"degeneracy_tolerance"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault(KeyStrategy, DefaultStrategy)
	v.SetDefault(KeyWorkers, DefaultWorkers)
	v.SetDefault(KeyRanks, DefaultRanks)
	v.SetDefault(KeyTemperature, DefaultTemperature)
	v.SetDefault(KeyDegeneracyTolerance, DefaultDegeneracyTolerance)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads the optional YAML file at path (skipped when empty) into v,
// then decodes and validates the result.
func Load(v *viper.Viper, path string) (Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("Load: read %s: %w", path, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("Load: decode: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("Load: %w", err)
	}

	return c, nil
}

// Validate checks every field.
func (c Config) Validate() error {
	switch c.Strategy {
	case parallel.NameSerial, parallel.NameShared, parallel.NameDistributed:
	default:
		return fmt.Errorf("strategy %q: %w", c.Strategy, ErrInvalid)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers %d: %w", c.Workers, ErrInvalid)
	}
	if c.Ranks < 1 {
		return fmt.Errorf("ranks %d: %w", c.Ranks, ErrInvalid)
	}
	if math.IsNaN(c.Temperature) || math.IsInf(c.Temperature, 0) || c.Temperature < 0 {
		return fmt.Errorf("temperature %g: %w", c.Temperature, ErrInvalid)
	}
	if !(c.DegeneracyTolerance >= 0) {
		return fmt.Errorf("degeneracy_tolerance %g: %w", c.DegeneracyTolerance, ErrInvalid)
	}

	return nil
}

// Strategies builds one Strategy per participating rank: a single entry
// for "serial" and "shared", Ranks connected entries for "distributed".
// Each distributed entry must be driven from its own goroutine.
func (c Config) Strategies() ([]parallel.Strategy, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Strategy {
	case parallel.NameShared:
		return []parallel.Strategy{parallel.SharedMemory{Workers: c.Workers}}, nil
	case parallel.NameDistributed:
		peers, err := comm.NewLocalGroup(c.Ranks)
		if err != nil {
			return nil, err
		}
		var local parallel.Strategy = parallel.Serial{}
		if c.Workers != 1 {
			local = parallel.SharedMemory{Workers: c.Workers}
		}
		out := make([]parallel.Strategy, len(peers))
		for r, p := range peers {
			out[r] = parallel.Distributed{Comm: p, Local: local}
		}
		return out, nil
	}

	return []parallel.Strategy{parallel.Serial{}}, nil
}
