// SPDX-License-Identifier: MIT
// Package kernel: sentinel error set.
//
// All kernel errors are precondition violations or numerical guards. None of
// them is retried internally; the caller's output buffer is left untouched
// whenever one is returned.

package kernel

import "errors"

var (
	// ErrNilEnsemble is returned by NewEngine without an ensemble view.
	ErrNilEnsemble = errors.New("kernel: nil ensemble")

	// ErrDimensionMismatch indicates an input or output buffer whose length
	// disagrees with the number of modes, or a symmetrizer or layout built
	// for a different mode count.
	ErrDimensionMismatch = errors.New("kernel: dimension mismatch")

	// ErrBadLayout signals invalid finite-temperature block boundaries.
	ErrBadLayout = errors.New("kernel: invalid A/Y block layout")

	// ErrNaNInf is returned when an input buffer holds NaN or ±Inf.
	ErrNaNInf = errors.New("kernel: NaN or Inf in input")

	// ErrNonFinite is returned when a result would contain NaN or ±Inf.
	ErrNonFinite = errors.New("kernel: non-finite result")

	// ErrBadTemperature is returned for a negative or non-finite temperature.
	ErrBadTemperature = errors.New("kernel: temperature must be finite and non-negative")
)
