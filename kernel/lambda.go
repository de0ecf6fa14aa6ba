// SPDX-License-Identifier: MIT

package kernel

import (
	"math"
	"time"

	"github.com/eliheady/python-sscha/coeff"
	"github.com/eliheady/python-sscha/units"
)

// ApplyLambda multiplies the row-major N×N matrix in element-wise by the
// static two-phonon propagator Λ_ab = coeff.Lambda at temperature t (K)
// and overwrites out. It does not touch the ensemble.
//
// Errors: ErrBadTemperature, ErrDimensionMismatch, ErrNaNInf.
// Complexity: O(N²).
func (e *Engine) ApplyLambda(t float64, in, out []float64) error {
	return e.applyLambda(KernelLambda, t, in, out, func(l, v float64) float64 { return l * v })
}

// ApplyInverseLambda divides in element-wise by Λ, the preconditioner of
// the SSCHA gradient. Entries where |Λ_ab| < units.Epsilon (soft modes
// included) are set to 0 instead of being amplified.
//
// Errors: as ApplyLambda.
func (e *Engine) ApplyInverseLambda(t float64, in, out []float64) error {
	return e.applyLambda(KernelInverseLambda, t, in, out, func(l, v float64) float64 {
		if math.Abs(l) < units.Epsilon {
			return 0
		}
		return v / l
	})
}

func (e *Engine) applyLambda(kernel string, t float64, in, out []float64, f func(lambda, v float64) float64) error {
	start := time.Now()
	n := e.n
	err := validateTemperature(t)
	if err == nil {
		err = validateLen("in", in, n*n)
	}
	if err == nil {
		err = validateLen("out", out, n*n)
	}
	if err == nil {
		err = validateFinite("in", in)
	}
	if err != nil {
		return e.reject(kernel, err)
	}

	w := e.view.Frequencies()
	occ := units.Occupations(w, t)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			out[a*n+b] = f(coeff.Lambda(w[a], occ[a], w[b], occ[b]), in[a*n+b])
		}
	}

	elapsed := time.Since(start)
	e.log.V(1).Info("kernel done", "kernel", kernel, "strategy", e.strategy.Name(), "elapsed", elapsed)
	e.recorder.KernelDone(kernel, e.strategy.Name(), elapsed, 0)

	return nil
}
