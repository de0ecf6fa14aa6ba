// SPDX-License-Identifier: MIT
// Package ensemble: sentinel error set.
// Every constructor and validator returns one of these sentinels, possibly
// wrapped with an operation tag; callers match them with errors.Is.

package ensemble

import "errors"

var (
	// ErrEmpty is returned when the ensemble has no configurations or no modes.
	ErrEmpty = errors.New("ensemble: no configurations or modes")

	// ErrDimensionMismatch indicates that a buffer length disagrees with
	// nConfigs/nModes.
	ErrDimensionMismatch = errors.New("ensemble: dimension mismatch")

	// ErrNaNInf signals a NaN or ±Inf in displacements, forces, weights or
	// frequencies.
	ErrNaNInf = errors.New("ensemble: NaN or Inf encountered")

	// ErrNegativeWeight signals a configuration with rho < 0.
	ErrNegativeWeight = errors.New("ensemble: negative configuration weight")

	// ErrZeroWeight signals that all weights vanish, so no average exists.
	ErrZeroWeight = errors.New("ensemble: total weight is zero")
)
