// SPDX-License-Identifier: MIT
// Package kernel - centralized argument validators.
//
// Every validator returns an error wrapping one of the sentinels in
// errors.go, prefixed with a short tag naming the offending argument.

package kernel

import (
	"fmt"
	"math"
)

func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// validateLen checks len(v) == want.
func validateLen(tag string, v []float64, want int) error {
	if len(v) != want {
		return validatorErrorf(fmt.Sprintf("%s: len %d, want %d", tag, len(v), want), ErrDimensionMismatch)
	}

	return nil
}

// validateFinite rejects NaN and ±Inf entries.
func validateFinite(tag string, v []float64) error {
	if i := firstNonFinite(v); i >= 0 {
		return validatorErrorf(fmt.Sprintf("%s[%d]", tag, i), ErrNaNInf)
	}

	return nil
}

// validateTemperature accepts finite T ≥ 0 (Kelvin).
func validateTemperature(t float64) error {
	if math.IsNaN(t) || math.IsInf(t, 0) || t < 0 {
		return validatorErrorf(fmt.Sprintf("T=%g", t), ErrBadTemperature)
	}

	return nil
}

// firstNonFinite returns the index of the first NaN or ±Inf in v, or -1.
func firstNonFinite(v []float64) int {
	for i, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return i
		}
	}

	return -1
}
