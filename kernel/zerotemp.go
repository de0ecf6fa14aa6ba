// SPDX-License-Identifier: MIT
// Package kernel - zero-temperature tensor applications.
//
// The tensors themselves carry no thermal coefficients. The temperature t
// (K) only sets the width of the harmonic density matrix used to whiten the
// ensemble, so t = 0 is the usual choice. All three overwrite out on
// success. in and out must not alias.

package kernel

import (
	"context"
	"fmt"
)

// ApplyD3ToVector computes out_bc = Σ_a D3_abc in_a.
// in has NModes entries; out is a row-major NModes×NModes matrix.
//
// Errors: ErrBadTemperature, ErrDimensionMismatch, ErrNaNInf, ErrNonFinite,
// strategy errors.
// Complexity: O(nConfigs·N²).
func (e *Engine) ApplyD3ToVector(ctx context.Context, t float64, in, out []float64) error {
	if err := e.checkBuffers(KernelD3ToVector, t, in, e.n, out, e.n*e.n); err != nil {
		return err
	}
	wh := e.whitening(t)

	return e.run(ctx, plan{
		kernel:     KernelD3ToVector,
		wh:         wh,
		parts:      []part{newD3Vector(e.n, wh.vector(in))},
		unwhiten:   wh.scaleMatrix,
		symmetrize: e.sym.Dyn,
		commit:     func(raw []float64) { copy(out, raw) },
	})
}

// ApplyD3ToDyn computes out_a = Σ_bc D3_abc in_bc, the adjoint of
// ApplyD3ToVector. Only the symmetric part of in contributes.
//
// Errors: as ApplyD3ToVector.
// Complexity: O(nConfigs·N²).
func (e *Engine) ApplyD3ToDyn(ctx context.Context, t float64, in, out []float64) error {
	if err := e.checkBuffers(KernelD3ToDyn, t, in, e.n*e.n, out, e.n); err != nil {
		return err
	}
	wh := e.whitening(t)
	ms, tr := symmetricPart(e.n, wh.matrix(in))

	return e.run(ctx, plan{
		kernel:     KernelD3ToDyn,
		wh:         wh,
		parts:      []part{newD3Dyn(ms, tr)},
		unwhiten:   wh.scaleVector,
		symmetrize: e.sym.Vector,
		commit:     func(raw []float64) { copy(out, raw) },
	})
}

// ApplyD4ToDyn computes out_cd = Σ_ab D4_abcd in_ab.
// Only the symmetric part of in contributes; out is symmetric.
//
// Errors: as ApplyD3ToVector.
// Complexity: O(nConfigs·N²).
func (e *Engine) ApplyD4ToDyn(ctx context.Context, t float64, in, out []float64) error {
	if err := e.checkBuffers(KernelD4ToDyn, t, in, e.n*e.n, out, e.n*e.n); err != nil {
		return err
	}
	wh := e.whitening(t)
	ms, tr := symmetricPart(e.n, wh.matrix(in))

	return e.run(ctx, plan{
		kernel:     KernelD4ToDyn,
		wh:         wh,
		parts:      []part{newD4Dyn(ms, tr)},
		unwhiten:   wh.scaleMatrix,
		symmetrize: e.sym.Dyn,
		commit:     func(raw []float64) { copy(out, raw) },
	})
}

// checkBuffers validates temperature, lengths and finiteness, reporting
// failures to the recorder the same way run does.
func (e *Engine) checkBuffers(kernel string, t float64, in []float64, nIn int, out []float64, nOut int) error {
	err := validateTemperature(t)
	if err == nil {
		err = validateLen("in", in, nIn)
	}
	if err == nil {
		err = validateLen("out", out, nOut)
	}
	if err == nil {
		err = validateFinite("in", in)
	}
	if err != nil {
		return e.reject(kernel, err)
	}

	return nil
}

// reject wraps, logs and records a precondition failure.
func (e *Engine) reject(kernel string, err error) error {
	err = fmt.Errorf("%s: %w", kernel, err)
	e.log.Error(err, "kernel rejected input", "kernel", kernel)
	e.recorder.KernelFailed(kernel, e.strategy.Name(), failureReason(err))

	return err
}
