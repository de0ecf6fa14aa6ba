// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eliheady/python-sscha/config"
)

// Flag names; the config keys are shared with package config so flags,
// YAML and SSCHA_* variables resolve through one viper instance.
const (
	flagConfig  = "config"
	flagModes   = "modes"
	flagConfigs = "configs"
	flagSeed    = "seed"
	flagVerbose = "verbose"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "anhbench",
		Short:         "Benchmark harness for the stochastic D3/D4 kernels",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newRunCmd())

	return root
}

func newRunCmd() *cobra.Command {
	v := config.New()
	var (
		cfgPath string
		opts    runOptions
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every kernel once on a seeded synthetic ensemble",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v, cfgPath)
			if err != nil {
				return err
			}
			log, sync, err := newLogger(verbose)
			if err != nil {
				return err
			}
			defer sync()

			opts.cfg = cfg
			return run(cmd.Context(), log, cmd.OutOrStdout(), opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfgPath, flagConfig, "", "optional YAML configuration file")
	f.IntVar(&opts.modes, flagModes, 16, "number of normal modes")
	f.IntVar(&opts.configs, flagConfigs, 500, "number of ensemble configurations")
	f.Uint64Var(&opts.seed, flagSeed, 1, "random seed of the synthetic ensemble")
	f.BoolVarP(&verbose, flagVerbose, "v", false, "log per-kernel diagnostics")
	f.String(config.KeyStrategy, config.DefaultStrategy, "execution strategy: serial, shared or distributed")
	f.Int(config.KeyWorkers, config.DefaultWorkers, "shared-memory workers (0 = GOMAXPROCS)")
	f.Int(config.KeyRanks, config.DefaultRanks, "in-process ranks of the distributed strategy")
	f.Float64(config.KeyTemperature, config.DefaultTemperature, "temperature in Kelvin")
	f.Float64(config.KeyDegeneracyTolerance, config.DefaultDegeneracyTolerance, "relative tolerance grouping degenerate modes")
	for _, key := range []string{
		config.KeyStrategy, config.KeyWorkers, config.KeyRanks,
		config.KeyTemperature, config.KeyDegeneracyTolerance,
	} {
		// Only flags the user actually set override file and env values.
		if err := v.BindPFlag(key, f.Lookup(key)); err != nil {
			panic(fmt.Sprintf("anhbench: bind flag %s: %v", key, err))
		}
	}

	return cmd
}

// newLogger builds a zap console logger bridged to logr. verbose enables
// V(1) kernel diagnostics.
func newLogger(verbose bool) (logr.Logger, func(), error) {
	zc := zap.NewDevelopmentConfig()
	zc.DisableStacktrace = true
	zc.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	z, err := zc.Build()
	if err != nil {
		return logr.Discard(), func() {}, fmt.Errorf("build logger: %w", err)
	}

	return zapr.NewLogger(z), func() { _ = z.Sync() }, nil
}
