// SPDX-License-Identifier: MIT
// Package symmetry: sentinel error set.

package symmetry

import "errors"

var (
	// ErrEmpty is returned when the mode count is not positive.
	ErrEmpty = errors.New("symmetry: no modes")

	// ErrDimensionMismatch indicates a buffer whose length disagrees with
	// nModes or nSym·nModes².
	ErrDimensionMismatch = errors.New("symmetry: dimension mismatch")

	// ErrNotOrthogonal signals a symmetry operation with SᵀS ≠ I beyond
	// units.Epsilon.
	ErrNotOrthogonal = errors.New("symmetry: operation is not orthogonal")

	// ErrBadDegeneracy signals a degeneracy structure violating its
	// invariants (self-membership, shared content, index range, counts).
	ErrBadDegeneracy = errors.New("symmetry: invalid degeneracy structure")
)
