// SPDX-License-Identifier: MIT

package kernel

import (
	"context"
	"errors"
	"time"

	"github.com/eliheady/python-sscha/parallel"
)

// Kernel names reported to a Recorder and in logs.
const (
	KernelD3ToVector = "d3_to_vector"
	KernelD3ToDyn    = "d3_to_dyn"
	KernelD4ToDyn    = "d4_to_dyn"
	KernelD3FT       = "d3_ft"
	KernelD4FT       = "d4_ft"

	// The propagator kernels never touch the ensemble and report 0 configs.
	KernelLambda        = "lambda"
	KernelInverseLambda = "inverse_lambda"
)

// Failure reasons reported to a Recorder.
const (
	ReasonPrecondition = "precondition"
	ReasonNonFinite    = "non_finite"
	ReasonCollective   = "collective"
	ReasonCancelled    = "cancelled"
	ReasonOther        = "other"
)

// Recorder receives one event per kernel call.
// Implementations must be safe for concurrent use.
type Recorder interface {
	// KernelDone reports a successful call that reduced configs configurations.
	KernelDone(kernel, strategy string, elapsed time.Duration, configs int)
	// KernelFailed reports a failed call with one of the Reason* values.
	KernelFailed(kernel, strategy, reason string)
}

type nopRecorder struct{}

func (nopRecorder) KernelDone(string, string, time.Duration, int) {}
func (nopRecorder) KernelFailed(string, string, string)           {}

// failureReason classifies err into a Reason* value.
func failureReason(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCancelled
	case errors.Is(err, parallel.ErrCollective):
		return ReasonCollective
	case errors.Is(err, ErrNonFinite):
		return ReasonNonFinite
	case errors.Is(err, ErrDimensionMismatch), errors.Is(err, ErrBadLayout),
		errors.Is(err, ErrNaNInf), errors.Is(err, ErrBadTemperature):
		return ReasonPrecondition
	}

	return ReasonOther
}
