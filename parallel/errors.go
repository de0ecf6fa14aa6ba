// SPDX-License-Identifier: MIT
// Package parallel: sentinel error set.

package parallel

import "errors"

var (
	// ErrInvalidCount is returned for a negative configuration count.
	ErrInvalidCount = errors.New("parallel: negative configuration count")

	// ErrNoCommunicator is returned by Distributed without a Communicator.
	ErrNoCommunicator = errors.New("parallel: distributed strategy has no communicator")

	// ErrCollective wraps any failure of the cross-rank reduction.
	ErrCollective = errors.New("parallel: collective reduction failed")
)
