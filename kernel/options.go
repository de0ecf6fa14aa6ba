// SPDX-License-Identifier: MIT

// Package kernel: functional configuration of an Engine. This file defines:
//   - Option (functional setter over unexported Options),
//   - documented defaults,
//   - WithX constructors that panic on nonsensical values (programmer error),
//   - gatherOptions, which resolves a list of Option into Options.
//
// Design goals:
//   - No global state. Every Engine carries its own strategy, logger and
//     recorder.
//   - Defaults reproduce a single-threaded run with no side effects.
package kernel

import (
	"github.com/go-logr/logr"

	"github.com/eliheady/python-sscha/parallel"
)

// ---------- Defaults ----------

// DefaultStrategy is the execution strategy when WithStrategy is not given.
var DefaultStrategy parallel.Strategy = parallel.Serial{}

// ---------- Internal panic messages ----------

const (
	panicNilStrategy = "kernel: WithStrategy: strategy must not be nil"
	panicNilRecorder = "kernel: WithRecorder: recorder must not be nil"
)

// Option mutates Options. Applying the same Option twice is harmless.
type Option func(*Options)

// Options is the resolved Engine configuration.
type Options struct {
	strategy parallel.Strategy
	log      logr.Logger
	recorder Recorder
}

// WithStrategy selects how the ensemble sum is distributed.
// Panics when s is nil.
func WithStrategy(s parallel.Strategy) Option {
	if s == nil {
		panic(panicNilStrategy)
	}

	return func(o *Options) { o.strategy = s }
}

// WithLogger sets the logger. Per-call diagnostics go to V(1); failures are
// logged with Error.
func WithLogger(l logr.Logger) Option {
	return func(o *Options) { o.log = l }
}

// WithRecorder installs a metrics sink (see package metrics).
// Panics when r is nil.
func WithRecorder(r Recorder) Option {
	if r == nil {
		panic(panicNilRecorder)
	}

	return func(o *Options) { o.recorder = r }
}

func defaultOptions() Options {
	return Options{
		strategy: DefaultStrategy,
		log:      logr.Discard(),
		recorder: nopRecorder{},
	}
}

// gatherOptions applies opts over the defaults, in order.
func gatherOptions(opts ...Option) Options {
	o := defaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	return o
}
