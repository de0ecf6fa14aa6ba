// SPDX-License-Identifier: MIT

// Package coeff provides the finite-temperature weighting coefficients of the
// Lanczos anharmonic kernels.
//
// Every coefficient is built from the two static two-phonon channels of a
// harmonic system with frequencies w (Ry) and occupations n:
//
//	χ⁺(a,b) = (1 + n_a + n_b) / (w_a + w_b)      pair creation/annihilation
//	χ⁻(a,b) = (n_a − n_b) / (w_a − w_b)           pair scattering, ≤ 0
//
// Near resonance χ⁻ is replaced by its limit dn/dw = −n(n+1)·ln(1+1/n)/w,
// which only needs (w, n) because βw = ln(1 + 1/n). At T = 0 all n vanish,
// χ⁻ is identically zero and only the sum channel survives.
//
// Modes below units.Epsilon are excluded: any coefficient touching one is 0.
// All functions are pure and never return NaN or ±Inf.
package coeff

import (
	"math"

	"github.com/eliheady/python-sscha/units"
)

// soft reports whether a frequency is excluded from the response.
func soft(w float64) bool { return w < units.Epsilon }

// chiPlus is the sum-channel propagator (1 + n_a + n_b)/(w_a + w_b).
func chiPlus(wa, na, wb, nb float64) float64 {
	return (1 + na + nb) / (wa + wb)
}

// chiMinus is the difference-channel propagator (n_a − n_b)/(w_a − w_b),
// regularized by its analytic derivative when |w_a − w_b| is within
// Epsilon relative to the larger frequency.
func chiMinus(wa, na, wb, nb float64) float64 {
	if math.Abs(wa-wb) > units.Epsilon*math.Max(wa, wb) {
		return (na - nb) / (wa - wb)
	}
	n := 0.5 * (na + nb)
	if n <= 0 {
		return 0
	}
	w := 0.5 * (wa + wb)

	return -n * (n + 1) * math.Log1p(1/n) / w
}

// Z is the R→Y coefficient: the sum-channel part of the static two-phonon
// propagator, −χ⁺/(4 w_a w_b). At T = 0 it is −1/(4 w_a w_b (w_a + w_b)).
func Z(wa, na, wb, nb float64) float64 {
	if soft(wa) || soft(wb) {
		return 0
	}

	return -chiPlus(wa, na, wb, nb) / (4 * wa * wb)
}

// Z1 is the R→A coefficient: the difference-channel part χ⁻/(4 w_a w_b).
// It vanishes at T = 0.
func Z1(wa, na, wb, nb float64) float64 {
	if soft(wa) || soft(wb) {
		return 0
	}

	return chiMinus(wa, na, wb, nb) / (4 * wa * wb)
}

// X2 is the Y→R coefficient mapping a pair amplitude onto the whitened
// pair fluctuation: (1 + n_a + n_b)/((1 + 2n_a)(1 + 2n_b)). It equals 1 at
// T = 0 and decreases monotonically with temperature.
func X2(wa, na, wb, nb float64) float64 {
	if soft(wa) || soft(wb) {
		return 0
	}

	return (1 + na + nb) / ((1 + 2*na) * (1 + 2*nb))
}

// X is the Y→Y coefficient of the four-mode process (a,b) → (c,d):
// Z(c,d)·X2(a,b).
func X(wa, na, wb, nb, wc, nc, wd, nd float64) float64 {
	return Z(wc, nc, wd, nd) * X2(wa, na, wb, nb)
}

// X1 is the Y→A coefficient of the four-mode process (a,b) → (c,d):
// Z1(c,d)·X2(a,b).
func X1(wa, na, wb, nb, wc, nc, wd, nd float64) float64 {
	return Z1(wc, nc, wd, nd) * X2(wa, na, wb, nb)
}

// Lambda is the full static two-phonon propagator Z + Z1 =
// −(χ⁺ − χ⁻)/(4 w_a w_b), the weight of the Λ tensor in the mode basis.
func Lambda(wa, na, wb, nb float64) float64 {
	return Z(wa, na, wb, nb) + Z1(wa, na, wb, nb)
}

// Upsilon is the inverse displacement variance 2w/(1 + 2n) of a mode in the
// harmonic density matrix. Whitening multiplies displacements by √Υ and
// divides forces by it. Soft modes give 0.
func Upsilon(w, n float64) float64 {
	if soft(w) {
		return 0
	}

	return 2 * w / (1 + 2*n)
}
