// SPDX-License-Identifier: MIT

// Package ensemble provides a read-only view over a Monte Carlo ensemble
// expressed in the normal-mode basis.
//
// Layout:
//
//	X[a*nConfigs + c]   displacement of configuration c along mode a
//	Y[a*nConfigs + c]   force of configuration c along mode a
//	rho[c]              non-negative importance weight
//	w[a]                mode frequency in Ry
//
// The configuration index varies fastest. X and Y hold the raw
// displacements and forces in the mode basis. Package kernel whitens them
// per call with the inverse variance 2w/(1 + 2n(T)) of each mode, so no
// temperature is baked into a View.
//
// A View borrows the caller's slices for its whole lifetime: nothing is
// copied and nothing is ever written. Callers must not mutate the slices
// while a kernel is running.
package ensemble

import (
	"fmt"
	"math"
)

// maxFinite is the largest finite float64; anything beyond is ±Inf.
const maxFinite = math.MaxFloat64

const opNew = "New"

// View is an immutable accessor bundle over one ensemble snapshot.
type View struct {
	x, y     []float64 // nModes*nConfigs, configuration-fastest
	rho      []float64 // nConfigs
	w        []float64 // nModes
	nConfigs int
	nModes   int
	total    float64 // Σ rho, cached at construction
}

// New validates and wraps the ensemble arrays.
//
// Implementation:
//   - Stage 1: shape contract (ValidateShape).
//   - Stage 2: finite data in every array.
//   - Stage 3: rho ≥ 0 and Σrho > 0; cache the total weight.
//
// Errors:
//   - ErrEmpty, ErrDimensionMismatch, ErrNaNInf, ErrNegativeWeight, ErrZeroWeight.
//
// Complexity:
//   - Time O(nConfigs·nModes), Space O(1).
func New(x, y, rho, w []float64, nConfigs, nModes int) (*View, error) {
	if err := ValidateShape(x, y, rho, w, nConfigs, nModes); err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}
	for _, arr := range []struct {
		tag string
		v   []float64
	}{{"X", x}, {"Y", y}, {"rho", rho}, {"w", w}} {
		if err := ValidateFinite(arr.tag, arr.v); err != nil {
			return nil, fmt.Errorf("%s: %w", opNew, err)
		}
	}
	total, err := ValidateWeights(rho)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", opNew, err)
	}

	return &View{
		x:        x,
		y:        y,
		rho:      rho,
		w:        w,
		nConfigs: nConfigs,
		nModes:   nModes,
		total:    total,
	}, nil
}

// NConfigs returns the number of configurations.
func (v *View) NConfigs() int { return v.nConfigs }

// NModes returns the number of normal modes.
func (v *View) NModes() int { return v.nModes }

// TotalWeight returns Σ rho.
func (v *View) TotalWeight() float64 { return v.total }

// X returns the displacement of configuration c along mode a.
// Indices are not checked beyond the runtime's slice bounds.
func (v *View) X(c, a int) float64 { return v.x[a*v.nConfigs+c] }

// Y returns the force of configuration c along mode a.
func (v *View) Y(c, a int) float64 { return v.y[a*v.nConfigs+c] }

// Rho returns the weight of configuration c.
func (v *View) Rho(c int) float64 { return v.rho[c] }

// W returns the frequency of mode a in Ry.
func (v *View) W(a int) float64 { return v.w[a] }

// Frequencies returns a copy of the mode frequencies.
func (v *View) Frequencies() []float64 {
	out := make([]float64, len(v.w))
	copy(out, v.w)

	return out
}

// Gather copies the displacement and force rows of configuration c into
// x and y, which must both have NModes entries. It is the strided read at
// the start of every per-configuration kernel step.
// Complexity: O(nModes).
func (v *View) Gather(c int, x, y []float64) {
	stride := v.nConfigs
	for a, off := 0, c; a < v.nModes; a, off = a+1, off+stride {
		x[a] = v.x[off]
		y[a] = v.y[off]
	}
}
