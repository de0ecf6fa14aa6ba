// SPDX-License-Identifier: MIT

// Package kernel applies stochastically estimated third- and fourth-order
// anharmonic tensors (D3, D4) to vectors and mode-space matrices, both at
// zero temperature and inside the finite-temperature Lanczos vector.
//
// The tensors are never stored. Every call whitens the ensemble at its
// temperature and makes one pass over it, accumulating per-configuration
// contractions through a parallel.Strategy. It then normalizes by Σρ,
// returns to the mode basis, symmetrizes and checks that the result is
// finite. Only then does it write into the caller's buffer.
//
// An Engine is safe for concurrent use when its Strategy is. A Distributed
// engine must be driven by every rank of its group in the same call order.
package kernel

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"
	"gonum.org/v1/gonum/floats"

	"github.com/eliheady/python-sscha/ensemble"
	"github.com/eliheady/python-sscha/parallel"
	"github.com/eliheady/python-sscha/symmetry"
)

const opNewEngine = "NewEngine"

// Engine binds an ensemble and a symmetrizer to an execution strategy.
type Engine struct {
	view *ensemble.View
	sym  *symmetry.Symmetrizer
	n    int

	strategy parallel.Strategy
	log      logr.Logger
	recorder Recorder
}

// NewEngine builds an Engine. A nil sym means symmetry.Identity.
// Errors: ErrNilEnsemble, ErrDimensionMismatch.
func NewEngine(view *ensemble.View, sym *symmetry.Symmetrizer, opts ...Option) (*Engine, error) {
	if view == nil {
		return nil, fmt.Errorf("%s: %w", opNewEngine, ErrNilEnsemble)
	}
	n := view.NModes()
	if sym == nil {
		sym = symmetry.Identity(n)
	}
	if sym.NModes() != n {
		return nil, fmt.Errorf("%s: symmetrizer has %d modes, ensemble %d: %w",
			opNewEngine, sym.NModes(), n, ErrDimensionMismatch)
	}
	o := gatherOptions(opts...)

	return &Engine{
		view:     view,
		sym:      sym,
		n:        n,
		strategy: o.strategy,
		log:      o.log.WithName("kernel"),
		recorder: o.recorder,
	}, nil
}

// NModes returns the mode-space dimension.
func (e *Engine) NModes() int { return e.n }

// Strategy returns the execution strategy name.
func (e *Engine) Strategy() string { return e.strategy.Name() }

// plan describes one kernel call for run.
type plan struct {
	kernel     string
	wh         whitening
	parts      []part
	unwhiten   func(raw []float64)
	symmetrize func(raw []float64) error
	commit     func(raw []float64)
}

// run executes a plan.
//
// Implementation:
//   - Stage 1: reduce all parts over the ensemble into one buffer.
//   - Stage 2: scale by 1/Σρ, return to the mode basis and symmetrize.
//   - Stage 3: reject non-finite results, then commit into the caller buffer.
func (e *Engine) run(ctx context.Context, p plan) (err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			e.log.Error(err, "kernel failed", "kernel", p.kernel, "strategy", e.strategy.Name())
			e.recorder.KernelFailed(p.kernel, e.strategy.Name(), failureReason(err))
			return
		}
		elapsed := time.Since(start)
		e.log.V(1).Info("kernel done", "kernel", p.kernel, "strategy", e.strategy.Name(),
			"configs", e.view.NConfigs(), "elapsed", elapsed)
		e.recorder.KernelDone(p.kernel, e.strategy.Name(), elapsed, e.view.NConfigs())
	}()

	size := 0
	for _, part := range p.parts {
		size += part.size
	}
	raw := make([]float64, size)

	// Stage 1
	if err = e.strategy.Reduce(ctx, e.view.NConfigs(), raw, e.worker(p.wh, p.parts)); err != nil {
		return fmt.Errorf("%s: %w", p.kernel, err)
	}

	// Stage 2
	floats.Scale(1/e.view.TotalWeight(), raw)
	p.unwhiten(raw)
	if err = p.symmetrize(raw); err != nil {
		return fmt.Errorf("%s: %w", p.kernel, err)
	}

	// Stage 3
	if i := firstNonFinite(raw); i >= 0 {
		return fmt.Errorf("%s: entry %d: %w", p.kernel, i, ErrNonFinite)
	}
	p.commit(raw)

	return nil
}

// worker returns a WorkerFunc gathering and whitening each configuration
// once and feeding it to every part, each writing its own segment of the
// partial buffer.
func (e *Engine) worker(wh whitening, parts []part) parallel.WorkerFunc {
	return func() parallel.Accumulator {
		x := make([]float64, e.n)
		y := make([]float64, e.n)
		cs := make([]contraction, len(parts))
		for i, part := range parts {
			cs[i] = part.build()
		}

		return func(c int, partial []float64) {
			rho := e.view.Rho(c)
			if rho == 0 {
				return
			}
			e.view.Gather(c, x, y)
			wh.apply(x, y)
			off := 0
			for i, k := range cs {
				sz := parts[i].size
				k.add(rho, x, y, partial[off:off+sz])
				off += sz
			}
		}
	}
}
