// SPDX-License-Identifier: MIT

// Package parallel distributes a per-configuration accumulation over an
// ensemble and sums the partial results.
//
// Every strategy computes the same quantity, Σ_c contribution(c), into a
// caller buffer. They differ only in how configurations are assigned to
// workers and in the order partial sums are combined, so results agree to
// floating-point reassociation. For a fixed strategy and worker or rank
// count the combination order is fixed and results are reproducible.
package parallel

import (
	"context"
	"fmt"
)

// Accumulator adds the contribution of configuration config into partial.
// One Accumulator is only ever called from one goroutine.
type Accumulator func(config int, partial []float64)

// WorkerFunc returns a fresh Accumulator owning its own scratch space.
// It is called once per worker.
type WorkerFunc func() Accumulator

// Strategy sums Accumulator contributions of configurations [0, nConfigs)
// into out. out is zeroed before accumulation.
type Strategy interface {
	Reduce(ctx context.Context, nConfigs int, out []float64, newWorker WorkerFunc) error
	// Name is a short stable label ("serial", "shared", "distributed").
	Name() string
}

// Strategy names.
const (
	NameSerial      = "serial"
	NameShared      = "shared"
	NameDistributed = "distributed"
)

const opSerial = "Serial.Reduce"

// Serial visits every configuration in index order on the calling goroutine.
type Serial struct{}

var _ Strategy = Serial{}

// Name implements Strategy.
func (Serial) Name() string { return NameSerial }

// Reduce implements Strategy.
func (Serial) Reduce(ctx context.Context, nConfigs int, out []float64, newWorker WorkerFunc) error {
	if nConfigs < 0 {
		return fmt.Errorf("%s: %w", opSerial, ErrInvalidCount)
	}
	clear(out)
	if nConfigs == 0 {
		return ctx.Err()
	}
	acc := newWorker()
	for c := 0; c < nConfigs; c++ {
		if c%ctxCheckStride == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		acc(c, out)
	}

	return nil
}

// ctxCheckStride bounds how many configurations run between cancellation checks.
const ctxCheckStride = 256
