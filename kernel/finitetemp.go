// SPDX-License-Identifier: MIT
// Package kernel - finite-temperature Lanczos applications.
//
// Both kernels read ψ_in and ADD into ψ_out, so a driver can stack D3FT,
// D4FT and its harmonic part on the same output. Only the blocks named in
// each doc comment are touched. The Y block of ψ_in is expanded into the
// symmetric mode-space matrix Y_ab = ψ[N + IndexY(a,b)].

package kernel

import (
	"context"

	"github.com/eliheady/python-sscha/coeff"
	"github.com/eliheady/python-sscha/pairindex"
	"github.com/eliheady/python-sscha/units"
)

// pairCoefficients holds N×N row-major tables of the two-mode coefficients
// at one temperature. All three are symmetric.
type pairCoefficients struct {
	z, z1, x2 []float64
}

func (e *Engine) pairCoefficients(t float64) pairCoefficients {
	n := e.n
	w := e.view.Frequencies()
	occ := units.Occupations(w, t)
	pc := pairCoefficients{
		z:  make([]float64, n*n),
		z1: make([]float64, n*n),
		x2: make([]float64, n*n),
	}
	for a := 0; a < n; a++ {
		for b := a; b < n; b++ {
			z := coeff.Z(w[a], occ[a], w[b], occ[b])
			z1 := coeff.Z1(w[a], occ[a], w[b], occ[b])
			x2 := coeff.X2(w[a], occ[a], w[b], occ[b])
			pc.z[a*n+b], pc.z[b*n+a] = z, z
			pc.z1[a*n+b], pc.z1[b*n+a] = z1, z1
			pc.x2[a*n+b], pc.x2[b*n+a] = x2, x2
		}
	}

	return pc
}

// checkFT validates temperature, layout and buffers of a finite-T call.
func (e *Engine) checkFT(kernel string, t float64, l Layout, in, out []float64) error {
	err := validateTemperature(t)
	if err == nil && l.NModes != e.n {
		err = validatorErrorf("layout", ErrDimensionMismatch)
	}
	if err == nil {
		err = l.Validate(len(in))
	}
	if err == nil {
		err = validateLen("out", out, len(in))
	}
	if err == nil {
		err = validateFinite("in", in[:l.EndA])
	}
	if err != nil {
		return e.reject(kernel, err)
	}

	return nil
}

// weightedY returns the N×N matrix X2_ab·Y_ab built from the Y block of in.
func (e *Engine) weightedY(l Layout, in []float64, x2 []float64) []float64 {
	n := e.n
	m := make([]float64, n*n)
	pairindex.Each(n, func(k, a, b int) {
		v := x2[a*n+b] * in[l.StartY()+k]
		m[a*n+b], m[b*n+a] = v, v
	})

	return m
}

// addPairs adds coefficient-weighted entries of the symmetric matrix d into
// the Y and A blocks of out: Y_k += z_ab·d_ab, A_k += z1_ab·d_ab.
func (e *Engine) addPairs(l Layout, pc pairCoefficients, d, out []float64) {
	n := e.n
	pairindex.Each(n, func(k, a, b int) {
		ab := a*n + b
		out[l.StartY()+pairindex.IndexY(a, b, n)] += pc.z[ab] * d[ab]
		out[l.StartA+pairindex.IndexA(a, b, n)] += pc.z1[ab] * d[ab]
	})
}

// D3FT applies the cubic coupling to ψ at temperature t (K):
//
//	R_out += D3 · (X2∘Y)
//	Y_out += Z ∘ (D3 · R)
//	A_out += Z1 ∘ (D3 · R)
//
// Both contractions share one ensemble pass and one reduction. At t = 0
// the R block matches ApplyD3ToDyn(0, Y) and the A block receives nothing.
//
// Errors: ErrBadTemperature, ErrBadLayout, ErrDimensionMismatch, ErrNaNInf,
// ErrNonFinite, strategy errors.
// Complexity: O(nConfigs·N²).
func (e *Engine) D3FT(ctx context.Context, t float64, l Layout, in, out []float64) error {
	if err := e.checkFT(KernelD3FT, t, l, in, out); err != nil {
		return err
	}
	n, n2 := e.n, e.n*e.n
	pc := e.pairCoefficients(t)
	wh := e.whitening(t)
	ms, tr := symmetricPart(n, wh.matrix(e.weightedY(l, in, pc.x2)))

	return e.run(ctx, plan{
		kernel: KernelD3FT,
		wh:     wh,
		parts: []part{
			newD3Vector(n, wh.vector(in[:n])),
			newD3Dyn(ms, tr),
		},
		unwhiten: func(raw []float64) {
			wh.scaleMatrix(raw[:n2])
			wh.scaleVector(raw[n2:])
		},
		symmetrize: func(raw []float64) error {
			if err := e.sym.Dyn(raw[:n2]); err != nil {
				return err
			}
			return e.sym.Vector(raw[n2:])
		},
		commit: func(raw []float64) {
			for a, v := range raw[n2:] {
				out[a] += v
			}
			e.addPairs(l, pc, raw[:n2], out)
		},
	})
}

// D4FT applies the quartic coupling to ψ at temperature t (K). With
// δΦ = D4 : (X2∘Y):
//
//	Y_out += Z ∘ δΦ     (= Σ_ab X(a,b,c,d) D4_abcd Y_ab)
//	A_out += Z1 ∘ δΦ    (= Σ_ab X1(a,b,c,d) D4_abcd Y_ab)
//
// The R block is left untouched.
//
// Errors: as D3FT.
// Complexity: O(nConfigs·N²).
func (e *Engine) D4FT(ctx context.Context, t float64, l Layout, in, out []float64) error {
	if err := e.checkFT(KernelD4FT, t, l, in, out); err != nil {
		return err
	}
	pc := e.pairCoefficients(t)
	wh := e.whitening(t)
	ms, tr := symmetricPart(e.n, wh.matrix(e.weightedY(l, in, pc.x2)))

	return e.run(ctx, plan{
		kernel:     KernelD4FT,
		wh:         wh,
		parts:      []part{newD4Dyn(ms, tr)},
		unwhiten:   wh.scaleMatrix,
		symmetrize: e.sym.Dyn,
		commit:     func(raw []float64) { e.addPairs(l, pc, raw, out) },
	})
}
