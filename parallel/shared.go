// SPDX-License-Identifier: MIT
// Package parallel - shared-memory fan-out.
//
// Implementation:
//   - Stage 1: split [0, nConfigs) into Workers contiguous chunks.
//   - Stage 2: each chunk accumulates into its own partial buffer on an
//     errgroup goroutine.
//   - Stage 3: partials are added into out in chunk order.

package parallel

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
)

const opShared = "SharedMemory.Reduce"

// SharedMemory splits the ensemble across goroutines of one process.
// Workers ≤ 0 means runtime.GOMAXPROCS(0). Workers never exceeds nConfigs.
type SharedMemory struct {
	Workers int
}

var _ Strategy = SharedMemory{}

// Name implements Strategy.
func (SharedMemory) Name() string { return NameShared }

// EffectiveWorkers returns the number of goroutines used for nConfigs.
func (s SharedMemory) EffectiveWorkers(nConfigs int) int {
	w := s.Workers
	if w <= 0 {
		w = runtime.GOMAXPROCS(0)
	}
	if w > nConfigs {
		w = nConfigs
	}

	return w
}

// Reduce implements Strategy.
func (s SharedMemory) Reduce(ctx context.Context, nConfigs int, out []float64, newWorker WorkerFunc) error {
	if nConfigs < 0 {
		return fmt.Errorf("%s: %w", opShared, ErrInvalidCount)
	}
	w := s.EffectiveWorkers(nConfigs)
	if w <= 1 {
		return Serial{}.Reduce(ctx, nConfigs, out, newWorker)
	}

	partials := make([][]float64, w)
	g, gctx := errgroup.WithContext(ctx)
	for k := 0; k < w; k++ {
		lo, hi := k*nConfigs/w, (k+1)*nConfigs/w
		partial := make([]float64, len(out))
		partials[k] = partial
		g.Go(func() error {
			acc := newWorker()
			for c := lo; c < hi; c++ {
				if (c-lo)%ctxCheckStride == 0 {
					if err := gctx.Err(); err != nil {
						return err
					}
				}
				acc(c, partial)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%s: %w", opShared, err)
	}

	clear(out)
	for _, partial := range partials {
		floats.Add(out, partial)
	}

	return nil
}
