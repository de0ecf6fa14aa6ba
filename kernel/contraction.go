// SPDX-License-Identifier: MIT
// Package kernel - per-configuration contractions of the stochastic D3/D4
// estimators.
//
// With whitened displacements x, forces y (see whitening.go) and Hermite
// polynomials
//
//	H2(a,b)   = x_a x_b − δ_ab
//	H3(a,b,c) = x_a x_b x_c − δ_ab x_c − δ_ac x_b − δ_bc x_a
//
// the tensors are estimated as weighted averages
//
//	D3_abc  = −⅓ ⟨H2(a,b) y_c + H2(a,c) y_b + H2(b,c) y_a⟩
//	D4_abcd = −¼ ⟨H3(a,b,c) y_d + H3(a,b,d) y_c + H3(a,c,d) y_b + H3(b,c,d) y_a⟩
//
// and never materialized: each contraction below folds one configuration
// into its output with O(N²) rank-1 updates. The 1/Σρ normalization is
// applied once after the reduction.
//
// A contraction owns its scratch vectors, so one value serves exactly one
// worker goroutine.

package kernel

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/floats"
)

// contraction adds the contribution of one configuration, with weight rho,
// displacements x and forces y, into out.
type contraction interface {
	add(rho float64, x, y, out []float64)
}

// part is one segment of a kernel's output: its length and a constructor
// for contractions with fresh scratch.
type part struct {
	size  int
	build func() contraction
}

func vec(v []float64) blas64.Vector {
	return blas64.Vector{N: len(v), Inc: 1, Data: v}
}

func general(n int, data []float64) blas64.General {
	return blas64.General{Rows: n, Cols: n, Stride: n, Data: data}
}

func addDiagonal(n int, alpha float64, m []float64) {
	for i := 0; i < n; i++ {
		m[i*n+i] += alpha
	}
}

// symmetricPart returns (M + Mᵀ)/2 as a blas64.Symmetric and its trace.
func symmetricPart(n int, m []float64) (blas64.Symmetric, float64) {
	data := make([]float64, n*n)
	var tr float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			data[i*n+j] = 0.5 * (m[i*n+j] + m[j*n+i])
		}
		tr += m[i*n+i]
	}

	return blas64.Symmetric{N: n, Stride: n, Data: data, Uplo: blas.Upper}, tr
}

// d3Vector accumulates out_bc += Σ_a D3_abc v_a.
//
// With s = x·v, t = y·v and u = s·x − v:
//
//	out += −(ρ/3) [u yᵀ + y uᵀ + t (x xᵀ − I)]
type d3Vector struct {
	n int
	v []float64
	u []float64
}

func newD3Vector(n int, v []float64) part {
	return part{size: n * n, build: func() contraction {
		return &d3Vector{n: n, v: v, u: make([]float64, n)}
	}}
}

func (k *d3Vector) add(rho float64, x, y, out []float64) {
	s := floats.Dot(x, k.v)
	t := floats.Dot(y, k.v)
	floats.ScaleTo(k.u, s, x)
	floats.Sub(k.u, k.v)

	alpha := -rho / 3
	m := general(k.n, out)
	blas64.Ger(alpha, vec(k.u), vec(y), m)
	blas64.Ger(alpha, vec(y), vec(k.u), m)
	blas64.Ger(alpha*t, vec(x), vec(x), m)
	addDiagonal(k.n, -alpha*t, out)
}

// d3Dyn accumulates out_a += Σ_bc D3_abc M_bc for the symmetric part Ms of M.
//
// With h = Ms y, g = Ms x, p = x·h, q = x·g and tr = trace(Ms):
//
//	out += −(ρ/3) [2 (p x − h) + (q − tr) y]
type d3Dyn struct {
	ms   blas64.Symmetric
	tr   float64
	h, g []float64
}

func newD3Dyn(ms blas64.Symmetric, tr float64) part {
	return part{size: ms.N, build: func() contraction {
		return &d3Dyn{ms: ms, tr: tr, h: make([]float64, ms.N), g: make([]float64, ms.N)}
	}}
}

func (k *d3Dyn) add(rho float64, x, y, out []float64) {
	blas64.Symv(1, k.ms, vec(y), 0, vec(k.h))
	blas64.Symv(1, k.ms, vec(x), 0, vec(k.g))
	p := floats.Dot(x, k.h)
	q := floats.Dot(x, k.g)

	alpha := -rho / 3
	floats.AddScaled(out, 2*alpha*p, x)
	floats.AddScaled(out, -2*alpha, k.h)
	floats.AddScaled(out, alpha*(q-k.tr), y)
}

// d4Dyn accumulates out_cd += Σ_ab D4_abcd M_ab for the symmetric part Ms.
//
// With h, g, p, q, tr as in d3Dyn and g' = (q − tr) x − 2g:
//
//	out += −(ρ/4) [g' yᵀ + y g'ᵀ + 2 (p x xᵀ − h xᵀ − x hᵀ − p I)]
type d4Dyn struct {
	ms       blas64.Symmetric
	tr       float64
	h, g, gp []float64
}

func newD4Dyn(ms blas64.Symmetric, tr float64) part {
	return part{size: ms.N * ms.N, build: func() contraction {
		n := ms.N
		return &d4Dyn{ms: ms, tr: tr, h: make([]float64, n), g: make([]float64, n), gp: make([]float64, n)}
	}}
}

func (k *d4Dyn) add(rho float64, x, y, out []float64) {
	n := k.ms.N
	blas64.Symv(1, k.ms, vec(y), 0, vec(k.h))
	blas64.Symv(1, k.ms, vec(x), 0, vec(k.g))
	p := floats.Dot(x, k.h)
	q := floats.Dot(x, k.g)
	floats.ScaleTo(k.gp, q-k.tr, x)
	floats.AddScaled(k.gp, -2, k.g)

	alpha := -rho / 4
	m := general(n, out)
	blas64.Ger(alpha, vec(k.gp), vec(y), m)
	blas64.Ger(alpha, vec(y), vec(k.gp), m)
	blas64.Ger(2*alpha*p, vec(x), vec(x), m)
	blas64.Ger(-2*alpha, vec(k.h), vec(x), m)
	blas64.Ger(-2*alpha, vec(x), vec(k.h), m)
	addDiagonal(n, -2*alpha*p, out)
}
