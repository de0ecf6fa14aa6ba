// SPDX-License-Identifier: MIT

// Package comm defines the collective used to combine per-rank partial sums
// of a distributed ensemble reduction, plus an in-process implementation.
//
// A Communicator is one rank's handle on its group. Every rank of a group
// must call AllReduceSum the same number of times, in the same order, with
// buffers of equal length. After the call returns nil, every rank holds the
// element-wise sum of all contributions, bit-identical across ranks.
package comm

import "context"

// Communicator is the rank-local view of a collective group.
type Communicator interface {
	// Rank is this peer's index in [0, Size()).
	Rank() int
	// Size is the number of peers in the group.
	Size() int
	// AllReduceSum replaces buf with the element-wise sum of buf over all
	// peers. It blocks until every peer has contributed or ctx is done.
	AllReduceSum(ctx context.Context, buf []float64) error
}
