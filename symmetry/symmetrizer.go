// SPDX-License-Identifier: MIT

// Package symmetry post-processes raw stochastic contractions so that they
// respect the space group and the degeneracies of the normal modes.
//
// Two stages, always in this order:
//
//  1. Group averaging with equal weights 1/N_sym:
//     vectors  v ← (1/N_sym) Σ_s Sᵀ_s v
//     matrices M ← (1/N_sym) Σ_s Sᵀ_s M S_s
//  2. Degenerate-subspace averaging (see Degeneracy.AverageDyn).
//
// The operations are borrowed from the caller as flat row-major
// nSym·nModes² data and never modified. A Symmetrizer holds no mutable
// state, so one instance can serve concurrent kernel calls.
package symmetry

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/eliheady/python-sscha/units"
)

const (
	opNew    = "New"
	opVector = "Symmetrizer.Vector"
	opDyn    = "Symmetrizer.Dyn"
)

// projectionTol bounds the relative drift allowed when a symmetrized sample
// is symmetrized a second time.
const projectionTol = 1e-8

// Symmetrizer applies group and degeneracy averaging in the mode basis.
type Symmetrizer struct {
	n   int
	ops []*mat.Dense
	deg Degeneracy
}

// New wraps nSym orthogonal nModes×nModes operations stored contiguously in
// matrices (operation s, row i, column j at s·n² + i·n + j).
//
// Behavior highlights:
//   - nSym = 0 means the trivial group: stage 1 is skipped.
//   - A zero-value deg means no degeneracy: stage 2 is skipped.
//   - Each operation must satisfy max|SᵀS − I| ≤ units.Epsilon.
//   - The operations must commute with the degeneracy average, otherwise
//     Vector and Dyn would not be projections. A sign flip inside a
//     degenerate block is the typical offender.
//
// Errors: ErrEmpty, ErrDimensionMismatch, ErrNotOrthogonal, ErrBadDegeneracy.
// Complexity: O(nSym·n³) for the orthogonality and projection checks.
func New(matrices []float64, nSym, nModes int, deg Degeneracy) (*Symmetrizer, error) {
	if nModes <= 0 {
		return nil, fmt.Errorf("%s: %w", opNew, ErrEmpty)
	}
	if nSym < 0 || len(matrices) != nSym*nModes*nModes {
		return nil, fmt.Errorf("%s: operations: %w", opNew, ErrDimensionMismatch)
	}
	if deg.n == 0 {
		deg = NonDegenerate(nModes)
	}
	if deg.n != nModes {
		return nil, fmt.Errorf("%s: degeneracy: %w", opNew, ErrDimensionMismatch)
	}

	size := nModes * nModes
	ops := make([]*mat.Dense, nSym)
	var sts mat.Dense
	for s := range ops {
		op := mat.NewDense(nModes, nModes, matrices[s*size:(s+1)*size:(s+1)*size])
		sts.Mul(op.T(), op)
		for i := 0; i < nModes; i++ {
			for j := 0; j < nModes; j++ {
				want := 0.0
				if i == j {
					want = 1
				}
				if math.Abs(sts.At(i, j)-want) > units.Epsilon {
					return nil, fmt.Errorf("%s: operation %d: %w", opNew, s, ErrNotOrthogonal)
				}
			}
		}
		ops[s] = op
	}

	sym := &Symmetrizer{n: nModes, ops: ops, deg: deg}
	if nSym > 0 {
		if err := sym.checkProjection(); err != nil {
			return nil, fmt.Errorf("%s: %w", opNew, err)
		}
	}

	return sym, nil
}

// checkProjection applies both stages twice to a fixed pseudo-random vector
// and matrix. Any drift on the second pass means the group and the
// degeneracy averaging do not commute.
func (s *Symmetrizer) checkProjection() error {
	rng := rand.New(rand.NewPCG(0x5eed, uint64(s.n)))
	sample := func(n int) []float64 {
		out := make([]float64, n)
		for i := range out {
			out[i] = rng.NormFloat64()
		}
		return out
	}

	stages := []struct {
		name  string
		apply func([]float64) error
		size  int
	}{
		{"vector", s.Vector, s.n},
		{"matrix", s.Dyn, s.n * s.n},
	}
	for _, st := range stages {
		once := sample(st.size)
		if err := st.apply(once); err != nil {
			return err
		}
		twice := append([]float64(nil), once...)
		if err := st.apply(twice); err != nil {
			return err
		}
		scale := math.Max(1, floats.Norm(once, math.Inf(1)))
		if floats.Distance(once, twice, math.Inf(1)) > projectionTol*scale {
			return fmt.Errorf("%s averaging is not a projection: %w", st.name, ErrBadDegeneracy)
		}
	}

	return nil
}

// Identity returns a Symmetrizer with the trivial group and no degeneracy.
// It leaves every result unchanged.
func Identity(nModes int) *Symmetrizer {
	return &Symmetrizer{n: nModes, deg: NonDegenerate(nModes)}
}

// NModes returns the mode-space dimension.
func (s *Symmetrizer) NModes() int { return s.n }

// NSym returns the number of group operations.
func (s *Symmetrizer) NSym() int { return len(s.ops) }

// Degeneracy returns the degeneracy structure used in stage 2.
func (s *Symmetrizer) Degeneracy() Degeneracy { return s.deg }

// Vector symmetrizes v in place.
// Errors: ErrDimensionMismatch when len(v) ≠ NModes().
// Complexity: O(nSym·n² + n).
func (s *Symmetrizer) Vector(v []float64) error {
	if len(v) != s.n {
		return fmt.Errorf("%s: %w", opVector, ErrDimensionMismatch)
	}
	if len(s.ops) > 0 {
		in := mat.NewVecDense(s.n, append([]float64(nil), v...))
		acc := mat.NewVecDense(s.n, nil)
		var tmp mat.VecDense
		for _, op := range s.ops {
			tmp.MulVec(op.T(), in)
			acc.AddVec(acc, &tmp)
		}
		acc.ScaleVec(1/float64(len(s.ops)), acc)
		copy(v, acc.RawVector().Data)
	}

	if err := s.deg.AverageVector(v); err != nil {
		return fmt.Errorf("%s: %w", opVector, err)
	}

	return nil
}

// Dyn symmetrizes the row-major n×n matrix m in place.
// Errors: ErrDimensionMismatch when len(m) ≠ NModes()².
// Complexity: O(nSym·n³ + n²).
func (s *Symmetrizer) Dyn(m []float64) error {
	if len(m) != s.n*s.n {
		return fmt.Errorf("%s: %w", opDyn, ErrDimensionMismatch)
	}
	if len(s.ops) > 0 {
		in := mat.NewDense(s.n, s.n, append([]float64(nil), m...))
		acc := mat.NewDense(s.n, s.n, nil)
		var left, full mat.Dense
		for _, op := range s.ops {
			left.Mul(op.T(), in)
			full.Mul(&left, op)
			acc.Add(acc, &full)
		}
		acc.Scale(1/float64(len(s.ops)), acc)
		copy(m, acc.RawMatrix().Data)
	}

	if err := s.deg.AverageDyn(m); err != nil {
		return fmt.Errorf("%s: %w", opDyn, err)
	}

	return nil
}
