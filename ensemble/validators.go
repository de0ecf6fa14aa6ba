// SPDX-License-Identifier: MIT
// Package ensemble: central validators.
//
// Purpose:
//   - One source of truth for the shape and numeric checks that New runs.
//   - Return plain sentinels wrapped with a validator tag.
//
// Determinism & Performance:
//   - Pure, allocation-free, O(len) scans in index order.

package ensemble

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// validatorErrorf tags a sentinel with the validator that raised it.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// ValidateShape checks the flat layout contract of an ensemble:
// len(x) = len(y) = nConfigs·nModes, len(rho) = nConfigs, len(w) = nModes.
// Complexity: O(1).
func ValidateShape(x, y, rho, w []float64, nConfigs, nModes int) error {
	if nConfigs <= 0 || nModes <= 0 {
		return validatorErrorf("ValidateShape", ErrEmpty)
	}
	size := nConfigs * nModes
	if len(x) != size {
		return validatorErrorf("ValidateShape: X", ErrDimensionMismatch)
	}
	if len(y) != size {
		return validatorErrorf("ValidateShape: Y", ErrDimensionMismatch)
	}
	if len(rho) != nConfigs {
		return validatorErrorf("ValidateShape: rho", ErrDimensionMismatch)
	}
	if len(w) != nModes {
		return validatorErrorf("ValidateShape: w", ErrDimensionMismatch)
	}

	return nil
}

// ValidateFinite rejects any NaN or ±Inf in v.
// The tag names the offending array in the wrapped error.
// Complexity: O(len(v)).
func ValidateFinite(tag string, v []float64) error {
	if floats.HasNaN(v) {
		return validatorErrorf("ValidateFinite: "+tag, ErrNaNInf)
	}
	for _, x := range v {
		if x > maxFinite || x < -maxFinite {
			return validatorErrorf("ValidateFinite: "+tag, ErrNaNInf)
		}
	}

	return nil
}

// ValidateWeights checks rho ≥ 0 element-wise and Σrho > 0.
// It returns the total weight so callers need not sum twice.
// Complexity: O(len(rho)).
func ValidateWeights(rho []float64) (float64, error) {
	if len(rho) == 0 {
		return 0, validatorErrorf("ValidateWeights", ErrEmpty)
	}
	if floats.Min(rho) < 0 {
		return 0, validatorErrorf("ValidateWeights", ErrNegativeWeight)
	}
	total := floats.Sum(rho)
	if total <= 0 {
		return 0, validatorErrorf("ValidateWeights", ErrZeroWeight)
	}

	return total, nil
}
