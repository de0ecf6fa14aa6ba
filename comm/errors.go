// SPDX-License-Identifier: MIT
// Package comm: sentinel error set.

package comm

import "errors"

var (
	// ErrEmptyGroup is returned when a group is requested with no peers.
	ErrEmptyGroup = errors.New("comm: group must have at least one peer")

	// ErrLengthMismatch signals peers contributing buffers of different
	// lengths to the same collective. Every peer of the call receives it.
	ErrLengthMismatch = errors.New("comm: buffer length differs across peers")
)
