// SPDX-License-Identifier: MIT
// Package symmetry - degenerate subspaces and their averaging projector.
//
// Purpose:
//   - Validate the per-mode degenerate_space lists against their invariants.
//   - Average vectors and mode-space matrices over permutations of modes that
//     belong to the same subspace, so degenerate modes become numerically
//     indistinguishable.
//
// Determinism:
//   - Blocks are ordered by their smallest member; all loops are index-ordered.

package symmetry

import (
	"fmt"
	"math"
	"slices"
)

const (
	opNewDegeneracy = "NewDegeneracy"
	opAverageVector = "Degeneracy.AverageVector"
	opAverageDyn    = "Degeneracy.AverageDyn"
)

// Degeneracy partitions the modes into degenerate subspaces.
// The zero value means "no mode information": it describes zero modes,
// Space returns nil and New replaces it with NonDegenerate.
type Degeneracy struct {
	n      int
	block  []int   // block id of each mode
	blocks [][]int // sorted members of each block, ordered by first member
}

// NewDegeneracy builds a Degeneracy from the per-mode subspace lists.
// counts mirrors the N_degeneracy array and may be nil; when present it must
// agree with len(spaces[i]).
//
// Invariants checked:
//   - every index lies in [0, n) with n = len(spaces), no duplicates;
//   - i ∈ spaces[i];
//   - j ∈ spaces[i] ⇒ spaces[j] has exactly the same members.
//
// Errors: ErrEmpty, ErrDimensionMismatch, ErrBadDegeneracy.
// Complexity: O(Σ|spaces[i]|²) in the worst case, O(n) for non-degenerate modes.
func NewDegeneracy(counts []int, spaces [][]int) (Degeneracy, error) {
	n := len(spaces)
	if n == 0 {
		return Degeneracy{}, fmt.Errorf("%s: %w", opNewDegeneracy, ErrEmpty)
	}
	if counts != nil && len(counts) != n {
		return Degeneracy{}, fmt.Errorf("%s: counts: %w", opNewDegeneracy, ErrDimensionMismatch)
	}

	sorted := make([][]int, n)
	for i, space := range spaces {
		if counts != nil && counts[i] != len(space) {
			return Degeneracy{}, fmt.Errorf("%s: mode %d count %d vs %d members: %w",
				opNewDegeneracy, i, counts[i], len(space), ErrBadDegeneracy)
		}
		s := append([]int(nil), space...)
		slices.Sort(s)
		self := false
		for k, j := range s {
			if j < 0 || j >= n {
				return Degeneracy{}, fmt.Errorf("%s: mode %d lists %d: %w", opNewDegeneracy, i, j, ErrBadDegeneracy)
			}
			if k > 0 && s[k-1] == j {
				return Degeneracy{}, fmt.Errorf("%s: mode %d lists %d twice: %w", opNewDegeneracy, i, j, ErrBadDegeneracy)
			}
			if j == i {
				self = true
			}
		}
		if !self {
			return Degeneracy{}, fmt.Errorf("%s: mode %d not in its own subspace: %w", opNewDegeneracy, i, ErrBadDegeneracy)
		}
		sorted[i] = s
	}

	d := Degeneracy{n: n, block: make([]int, n)}
	for i := range d.block {
		d.block[i] = -1
	}
	for i := 0; i < n; i++ {
		if d.block[i] >= 0 {
			continue
		}
		id := len(d.blocks)
		for _, j := range sorted[i] {
			if !slices.Equal(sorted[i], sorted[j]) {
				return Degeneracy{}, fmt.Errorf("%s: modes %d and %d disagree on their subspace: %w",
					opNewDegeneracy, i, j, ErrBadDegeneracy)
			}
			d.block[j] = id
		}
		d.blocks = append(d.blocks, sorted[i])
	}

	return d, nil
}

// NonDegenerate returns the trivial structure where every mode is alone.
func NonDegenerate(n int) Degeneracy {
	d := Degeneracy{n: n, block: make([]int, n), blocks: make([][]int, n)}
	for i := 0; i < n; i++ {
		d.block[i] = i
		d.blocks[i] = []int{i}
	}

	return d
}

// FromFrequencies groups modes whose frequencies agree within relative
// tolerance tol (|w_i − w_j| ≤ tol·max(|w_i|,|w_j|)). Each mode joins the
// first earlier group whose leading frequency matches.
// Complexity: O(n·g) for g groups.
func FromFrequencies(w []float64, tol float64) Degeneracy {
	n := len(w)
	d := Degeneracy{n: n, block: make([]int, n)}
	for i, wi := range w {
		d.block[i] = -1
		for id, members := range d.blocks {
			wj := w[members[0]]
			if math.Abs(wi-wj) <= tol*math.Max(math.Abs(wi), math.Abs(wj)) {
				d.block[i] = id
				d.blocks[id] = append(members, i)
				break
			}
		}
		if d.block[i] < 0 {
			d.block[i] = len(d.blocks)
			d.blocks = append(d.blocks, []int{i})
		}
	}

	return d
}

// NModes returns the number of modes described.
func (d Degeneracy) NModes() int { return d.n }

// Space returns a copy of the members of the subspace containing mode i,
// or nil when i is not a described mode.
func (d Degeneracy) Space(i int) []int {
	if i < 0 || i >= d.n {
		return nil
	}

	return append([]int(nil), d.blocks[d.block[i]]...)
}

// Counts returns the N_degeneracy array: the size of each mode's subspace.
func (d Degeneracy) Counts() []int {
	out := make([]int, d.n)
	for i := range out {
		out[i] = len(d.blocks[d.block[i]])
	}

	return out
}

// AverageVector replaces v[i] with the mean of v over i's subspace.
// Errors: ErrDimensionMismatch when len(v) ≠ NModes().
// Complexity: O(n).
func (d Degeneracy) AverageVector(v []float64) error {
	if len(v) != d.n {
		return fmt.Errorf("%s: %w", opAverageVector, ErrDimensionMismatch)
	}
	for _, members := range d.blocks {
		if len(members) == 1 {
			continue
		}
		var s float64
		for _, j := range members {
			s += v[j]
		}
		s /= float64(len(members))
		for _, j := range members {
			v[j] = s
		}
	}

	return nil
}

// AverageDyn averages the row-major n×n matrix m over all permutations of
// degenerate modes:
//   - entries linking two different subspaces take the block mean;
//   - diagonal entries of a subspace take the diagonal mean;
//   - off-diagonal entries inside a subspace take the off-diagonal mean.
//
// This is the group average over the permutation symmetry of each subspace,
// hence a projection: applying it twice changes nothing.
// Errors: ErrDimensionMismatch when len(m) ≠ n².
// Complexity: O(n²).
func (d Degeneracy) AverageDyn(m []float64) error {
	n := d.n
	if len(m) != n*n {
		return fmt.Errorf("%s: %w", opAverageDyn, ErrDimensionMismatch)
	}
	for p, bp := range d.blocks {
		for q, bq := range d.blocks {
			if len(bp) == 1 && len(bq) == 1 {
				continue
			}
			if p != q {
				var s float64
				for _, i := range bp {
					for _, j := range bq {
						s += m[i*n+j]
					}
				}
				s /= float64(len(bp) * len(bq))
				for _, i := range bp {
					for _, j := range bq {
						m[i*n+j] = s
					}
				}
				continue
			}

			var diag, off float64
			for _, i := range bp {
				for _, j := range bp {
					if i == j {
						diag += m[i*n+j]
					} else {
						off += m[i*n+j]
					}
				}
			}
			k := float64(len(bp))
			diag /= k
			off /= k * (k - 1)
			for _, i := range bp {
				for _, j := range bp {
					if i == j {
						m[i*n+j] = diag
					} else {
						m[i*n+j] = off
					}
				}
			}
		}
	}

	return nil
}
