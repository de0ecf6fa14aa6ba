// SPDX-License-Identifier: MIT

package parallel

import (
	"context"
	"fmt"

	"github.com/eliheady/python-sscha/comm"
)

const opDistributed = "Distributed.Reduce"

// Distributed splits the ensemble across the ranks of a communicator group.
// Rank r owns configurations c with c mod Size() == r and accumulates them
// with Local (Serial when nil). The rank partials are then combined with
// AllReduceSum, so every rank returns the full sum.
//
// Every rank of the group must call Reduce with the same nConfigs and
// len(out). Any collective failure is wrapped in ErrCollective.
type Distributed struct {
	Comm  comm.Communicator
	Local Strategy
}

var _ Strategy = Distributed{}

// Name implements Strategy.
func (Distributed) Name() string { return NameDistributed }

// LocalCount returns how many of nConfigs configurations rank owns in a
// group of size peers.
func LocalCount(nConfigs, rank, size int) int {
	if rank >= nConfigs {
		return 0
	}

	return (nConfigs - rank + size - 1) / size
}

// Reduce implements Strategy.
func (d Distributed) Reduce(ctx context.Context, nConfigs int, out []float64, newWorker WorkerFunc) error {
	if nConfigs < 0 {
		return fmt.Errorf("%s: %w", opDistributed, ErrInvalidCount)
	}
	if d.Comm == nil {
		return fmt.Errorf("%s: %w", opDistributed, ErrNoCommunicator)
	}
	local := d.Local
	if local == nil {
		local = Serial{}
	}
	rank, size := d.Comm.Rank(), d.Comm.Size()

	owned := func() Accumulator {
		acc := newWorker()
		return func(k int, partial []float64) { acc(k*size+rank, partial) }
	}
	if err := local.Reduce(ctx, LocalCount(nConfigs, rank, size), out, owned); err != nil {
		return fmt.Errorf("%s: rank %d: %w", opDistributed, rank, err)
	}

	if err := d.Comm.AllReduceSum(ctx, out); err != nil {
		return fmt.Errorf("%s: rank %d: %w: %w", opDistributed, rank, ErrCollective, err)
	}

	return nil
}
