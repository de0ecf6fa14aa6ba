// SPDX-License-Identifier: MIT
// Package kernel - whitening of raw displacements and forces.
//
// The ensemble stores displacements u and forces f in the mode basis. At
// temperature T each mode has inverse variance Υ_a = 2w_a/(1 + 2n_a), and
// the contractions run on x = √Υ∘u and y = f/√Υ. The tensor they estimate
// is related to the mode-basis one by
//
//	D3_abc  = √(Υ_a Υ_b Υ_c) T3_abc
//	D4_abcd = √(Υ_a Υ_b Υ_c Υ_d) T4_abcd
//
// so inputs are multiplied by √Υ on every contracted index and outputs on
// every free index. Soft modes have Υ = 0 and drop out.

package kernel

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/eliheady/python-sscha/coeff"
	"github.com/eliheady/python-sscha/units"
)

// whitening holds √Υ and 1/√Υ per mode at one temperature.
type whitening struct {
	sq, isq []float64
}

func (e *Engine) whitening(t float64) whitening {
	w := e.view.Frequencies()
	occ := units.Occupations(w, t)
	wh := whitening{sq: make([]float64, e.n), isq: make([]float64, e.n)}
	for a := range w {
		ups := coeff.Upsilon(w[a], occ[a])
		if ups == 0 {
			continue
		}
		wh.sq[a] = math.Sqrt(ups)
		wh.isq[a] = 1 / wh.sq[a]
	}

	return wh
}

// apply whitens one gathered configuration in place.
func (wh whitening) apply(x, y []float64) {
	floats.Mul(x, wh.sq)
	floats.Mul(y, wh.isq)
}

// vector returns √Υ∘v as a new slice.
func (wh whitening) vector(v []float64) []float64 {
	out := append([]float64(nil), v...)
	floats.Mul(out, wh.sq)

	return out
}

// matrix returns √Υ_a √Υ_b m_ab as a new row-major slice.
func (wh whitening) matrix(m []float64) []float64 {
	out := append([]float64(nil), m...)
	wh.scaleMatrix(out)

	return out
}

// scaleVector multiplies v by √Υ in place.
func (wh whitening) scaleVector(v []float64) {
	floats.Mul(v, wh.sq)
}

// scaleMatrix multiplies m_ab by √Υ_a √Υ_b in place.
func (wh whitening) scaleMatrix(m []float64) {
	n := len(wh.sq)
	for a := 0; a < n; a++ {
		row := m[a*n : (a+1)*n]
		floats.Mul(row, wh.sq)
		floats.Scale(wh.sq[a], row)
	}
}
