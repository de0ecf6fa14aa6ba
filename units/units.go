// SPDX-License-Identifier: MIT

// Package units holds the physical constants shared by every kernel and the
// Bose–Einstein occupation numbers derived from them.
//
// Conventions:
//   - Frequencies are in Rydberg, temperatures in Kelvin.
//   - Modes with w < Epsilon are soft (translations, imaginary or numerically
//     zero) and are given zero occupation instead of an infinite one.
//
// All values are compile-time constants; there is no initialization or
// teardown and no mutable package state.
package units

import "math"

const (
	// RyToK converts an energy in Rydberg to the equivalent temperature in Kelvin.
	RyToK = 157887.32400374097

	// KB is Boltzmann's constant in eV/K.
	KB = 8.617330337217213e-05

	// Epsilon guards near-zero frequencies and near-resonant denominators.
	Epsilon = 1e-6
)

// maxExponent is the largest βw for which exp(βw)-1 is still representable.
// Above it the occupation underflows to zero.
const maxExponent = 700.0

// KelvinToRy returns the thermal energy k_B·T expressed in Rydberg.
func KelvinToRy(t float64) float64 {
	return t / RyToK
}

// ThermalEnergyEV returns k_B·T in eV.
func ThermalEnergyEV(t float64) float64 {
	return KB * t
}

// Occupation returns the Bose–Einstein occupation number of a mode with
// frequency w (Ry) at temperature t (K).
//
// Behavior highlights:
//   - t <= 0 yields 0 (ground state).
//   - w < Epsilon yields 0 (soft modes are excluded, never infinite).
//   - βw beyond maxExponent yields 0 instead of a denormal.
//
// Complexity: O(1).
func Occupation(w, t float64) float64 {
	if t <= 0 || w < Epsilon {
		return 0
	}
	x := w * RyToK / t
	if x > maxExponent {
		return 0
	}

	// Expm1 keeps precision when βw is small (high temperature).
	return 1.0 / math.Expm1(x)
}

// Occupations evaluates Occupation for every frequency in w.
// The returned slice is freshly allocated and has len(w) entries.
func Occupations(w []float64, t float64) []float64 {
	n := make([]float64, len(w))
	for i := range w {
		n[i] = Occupation(w[i], t)
	}

	return n
}
