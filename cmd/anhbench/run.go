// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/eliheady/python-sscha/config"
	"github.com/eliheady/python-sscha/ensemble"
	"github.com/eliheady/python-sscha/kernel"
	"github.com/eliheady/python-sscha/metrics"
	"github.com/eliheady/python-sscha/symmetry"
)

var errBadSize = errors.New("anhbench: modes and configs must be positive")

type runOptions struct {
	cfg     config.Config
	modes   int
	configs int
	seed    uint64
}

// result is one kernel's outcome on one rank.
type result struct {
	kernel  string
	norm    float64
	elapsed time.Duration
}

func run(ctx context.Context, log logr.Logger, w io.Writer, opts runOptions) error {
	if opts.modes < 1 || opts.configs < 1 {
		return errBadSize
	}
	s := synthesize(opts.modes, opts.configs, opts.seed)
	view, err := ensemble.New(s.x, s.y, s.rho, s.w, opts.configs, opts.modes)
	if err != nil {
		return err
	}
	deg := symmetry.FromFrequencies(s.w, opts.cfg.DegeneracyTolerance)
	sym, err := symmetry.New(nil, 0, opts.modes, deg)
	if err != nil {
		return err
	}
	reg := prometheus.NewRegistry()
	rec, err := metrics.New(reg, nil)
	if err != nil {
		return err
	}
	strategies, err := opts.cfg.Strategies()
	if err != nil {
		return err
	}
	log.Info("ensemble ready", "modes", opts.modes, "configs", opts.configs,
		"strategy", opts.cfg.Strategy, "ranks", len(strategies), "temperature", opts.cfg.Temperature)

	results := make([][]result, len(strategies))
	g, gctx := errgroup.WithContext(ctx)
	for r, st := range strategies {
		e, err := kernel.NewEngine(view, sym,
			kernel.WithStrategy(st),
			kernel.WithLogger(log.WithValues("rank", r)),
			kernel.WithRecorder(rec),
		)
		if err != nil {
			return err
		}
		g.Go(func() error {
			res, err := runKernels(gctx, e, opts.cfg.Temperature, opts.seed)
			results[r] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Fprintf(w, "%-14s %14s %12s\n", "kernel", "norm", "elapsed")
	for _, res := range results[0] {
		fmt.Fprintf(w, "%-14s %14.6e %12s\n", res.kernel, res.norm, res.elapsed.Round(time.Microsecond))
	}

	return writeMetrics(w, reg)
}

// runKernels applies every kernel once in a fixed order; all ranks of a
// distributed group must follow the same order.
func runKernels(ctx context.Context, e *kernel.Engine, t float64, seed uint64) ([]result, error) {
	n := e.NModes()
	l := kernel.NewLayout(n)
	vec, dyn, psi := randomInputs(n, l.Len(), seed)

	steps := []struct {
		name string
		out  []float64
		call func(out []float64) error
	}{
		{kernel.KernelD3ToVector, make([]float64, n*n), func(out []float64) error { return e.ApplyD3ToVector(ctx, 0, vec, out) }},
		{kernel.KernelD3ToDyn, make([]float64, n), func(out []float64) error { return e.ApplyD3ToDyn(ctx, 0, dyn, out) }},
		{kernel.KernelD4ToDyn, make([]float64, n*n), func(out []float64) error { return e.ApplyD4ToDyn(ctx, 0, dyn, out) }},
		{kernel.KernelD3FT, make([]float64, l.Len()), func(out []float64) error { return e.D3FT(ctx, t, l, psi, out) }},
		{kernel.KernelD4FT, make([]float64, l.Len()), func(out []float64) error { return e.D4FT(ctx, t, l, psi, out) }},
		{kernel.KernelLambda, make([]float64, n*n), func(out []float64) error { return e.ApplyLambda(t, dyn, out) }},
	}
	out := make([]result, 0, len(steps))
	for _, st := range steps {
		start := time.Now()
		if err := st.call(st.out); err != nil {
			return out, err
		}
		out = append(out, result{kernel: st.name, norm: floats.Norm(st.out, 2), elapsed: time.Since(start)})
	}

	return out, nil
}

// writeMetrics prints every gathered sample as "name{labels} value".
func writeMetrics(w io.Writer, reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	fmt.Fprintln(w)
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			slices.Sort(labels)
			var value float64
			switch {
			case m.GetCounter() != nil:
				value = m.GetCounter().GetValue()
			case m.GetHistogram() != nil:
				value = float64(m.GetHistogram().GetSampleCount())
			}
			fmt.Fprintf(w, "%s{%s} %g\n", mf.GetName(), strings.Join(labels, ","), value)
		}
	}

	return nil
}
