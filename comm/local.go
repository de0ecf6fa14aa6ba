// SPDX-License-Identifier: MIT
// Package comm - in-process group backed by channels.
//
// Purpose:
//   - Run the distributed reduction path with goroutines standing in for ranks,
//     so the decomposition and the collective are exercised without a cluster.
//
// Protocol (per AllReduceSum call):
//  1. Ranks 1..n-1 send a private copy of their buffer to the root.
//  2. Rank 0 collects all contributions and sums them in rank order.
//  3. Rank 0 sends the total (or the error) back on each rank's result channel.
//
// Determinism:
//   - The total is accumulated from zero in rank order on the root only, so
//     every rank receives identical bits independent of arrival order.
//
// Cancellation leaves undelivered messages in the channels; a group whose
// collective was cancelled must not be reused.

package comm

import (
	"context"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

const (
	opNewLocalGroup = "NewLocalGroup"
	opAllReduceSum  = "LocalPeer.AllReduceSum"
)

type contribution struct {
	rank int
	buf  []float64
}

type result struct {
	buf []float64
	err error
}

type localGroup struct {
	size    int
	gather  chan contribution
	results []chan result
}

// LocalPeer is one rank of an in-process group. It implements Communicator.
type LocalPeer struct {
	rank  int
	group *localGroup
}

var _ Communicator = (*LocalPeer)(nil)

// NewLocalGroup returns n connected peers, indexed by rank.
// Each peer must be driven by its own goroutine.
// Errors: ErrEmptyGroup when n < 1.
func NewLocalGroup(n int) ([]*LocalPeer, error) {
	if n < 1 {
		return nil, fmt.Errorf("%s: %w", opNewLocalGroup, ErrEmptyGroup)
	}
	g := &localGroup{
		size:    n,
		gather:  make(chan contribution, n-1),
		results: make([]chan result, n),
	}
	peers := make([]*LocalPeer, n)
	for r := range peers {
		g.results[r] = make(chan result, 1)
		peers[r] = &LocalPeer{rank: r, group: g}
	}

	return peers, nil
}

// Rank implements Communicator.
func (p *LocalPeer) Rank() int { return p.rank }

// Size implements Communicator.
func (p *LocalPeer) Size() int { return p.group.size }

// AllReduceSum implements Communicator.
// Errors: ErrLengthMismatch, or ctx.Err() when cancelled while waiting.
func (p *LocalPeer) AllReduceSum(ctx context.Context, buf []float64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.group.size == 1 {
		return nil
	}
	if p.rank == 0 {
		return p.root(ctx, buf)
	}

	select {
	case p.group.gather <- contribution{rank: p.rank, buf: append([]float64(nil), buf...)}:
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case res := <-p.group.results[p.rank]:
		if res.err != nil {
			return res.err
		}
		copy(buf, res.buf)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *LocalPeer) root(ctx context.Context, buf []float64) error {
	g := p.group
	parts := make([][]float64, g.size)
	parts[0] = buf
	for received := 1; received < g.size; received++ {
		select {
		case c := <-g.gather:
			parts[c.rank] = c.buf
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var err error
	total := make([]float64, len(buf))
	for r, part := range parts {
		if len(part) != len(buf) {
			err = fmt.Errorf("%s: rank %d has %d elements, root has %d: %w",
				opAllReduceSum, r, len(part), len(buf), ErrLengthMismatch)
			break
		}
		floats.Add(total, part)
	}

	for r := 1; r < g.size; r++ {
		if err != nil {
			g.results[r] <- result{err: err}
			continue
		}
		g.results[r] <- result{buf: total}
	}
	if err != nil {
		return err
	}
	copy(buf, total)

	return nil
}
