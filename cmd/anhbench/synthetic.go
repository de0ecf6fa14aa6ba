// SPDX-License-Identifier: MIT

package main

import (
	"math"
	"math/rand/v2"
)

// Synthetic ensemble parameters.
const (
	baseFrequency = 0.002 // Ry, about 316 K
	cubicCoupling = 0.05
	forceNoise    = 0.01
	weightSpread  = 0.2
)

// synthetic is a flat ensemble in configuration-fastest layout.
type synthetic struct {
	x, y, rho, w []float64
}

// synthesize draws unit Gaussians x and forces from a harmonic-plus-cubic
// model y_a = −x_a − g·x_a·x_{a+1} + noise, then maps them to raw mode
// displacements x/√(2w) and forces y·√(2w) of the T = 0 density matrix.
// Modes come in degenerate pairs so the degeneracy averaging has work to do.
func synthesize(nModes, nConfigs int, seed uint64) synthetic {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	s := synthetic{
		x:   make([]float64, nModes*nConfigs),
		y:   make([]float64, nModes*nConfigs),
		rho: make([]float64, nConfigs),
		w:   make([]float64, nModes),
	}
	for a := range s.w {
		s.w[a] = baseFrequency * (1 + float64(a/2)/float64(nModes))
	}
	for i := range s.x {
		s.x[i] = rng.NormFloat64()
	}
	for c := 0; c < nConfigs; c++ {
		s.rho[c] = 1 + weightSpread*(rng.Float64()-0.5)
		for a := 0; a < nModes; a++ {
			xa := s.x[a*nConfigs+c]
			xb := s.x[((a+1)%nModes)*nConfigs+c]
			s.y[a*nConfigs+c] = -xa - cubicCoupling*xa*xb + forceNoise*rng.NormFloat64()
		}
	}
	for a, w := range s.w {
		sq := math.Sqrt(2 * w)
		for c := 0; c < nConfigs; c++ {
			s.x[a*nConfigs+c] /= sq
			s.y[a*nConfigs+c] *= sq
		}
	}

	return s
}

// randomInputs returns a vector, a symmetric matrix and a ψ of length psiLen.
func randomInputs(n, psiLen int, seed uint64) (vec, dyn, psi []float64) {
	rng := rand.New(rand.NewPCG(seed+1, seed))
	vec = make([]float64, n)
	for i := range vec {
		vec[i] = rng.NormFloat64()
	}
	dyn = make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := rng.NormFloat64()
			dyn[i*n+j], dyn[j*n+i] = v, v
		}
	}
	psi = make([]float64, psiLen)
	for i := range psi {
		psi[i] = rng.NormFloat64()
	}

	return vec, dyn, psi
}
