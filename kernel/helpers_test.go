// SPDX-License-Identifier: MIT

package kernel_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/eliheady/python-sscha/coeff"
	"github.com/eliheady/python-sscha/ensemble"
	"github.com/eliheady/python-sscha/units"
)

const tol = 1e-10

// approx compares float slices with a relative and an absolute margin.
var approx = cmpopts.EquateApprox(1e-10, 1e-12)

// handView is the 2-mode, 3-configuration ensemble with y = −x:
// configurations x = (1,0), (0,1), (1,1), all with unit weight. w defaults
// to (0.01, 0.02) Ry; (0.5, 0.5) makes whitening the identity at T = 0.
func handView(t testing.TB, w ...float64) *ensemble.View {
	t.Helper()
	if len(w) == 0 {
		w = []float64{0.01, 0.02}
	}
	v, err := ensemble.New(
		[]float64{1, 0, 1, 0, 1, 1},
		[]float64{-1, 0, -1, 0, -1, -1},
		[]float64{1, 1, 1},
		w,
		3, 2,
	)
	require.NoError(t, err)

	return v
}

// sample holds a synthetic ensemble in configuration-fastest layout.
type sample struct {
	x, y, rho, w []float64
	c, n         int
}

// randomSample draws displacements from the T = 0 harmonic density matrix
// (variance 1/(2w)), a harmonic-plus-cubic force and positive weights.
// Frequencies are spread over [0.002, 0.004] Ry so occupations are
// non-trivial around 300 K.
func randomSample(seed int64, n, c int) sample {
	rng := rand.New(rand.NewSource(seed))
	s := sample{
		x:   make([]float64, n*c),
		y:   make([]float64, n*c),
		rho: make([]float64, c),
		w:   make([]float64, n),
		c:   c,
		n:   n,
	}
	for a := 0; a < n; a++ {
		s.w[a] = 0.002 + 0.002*float64(a)/float64(n)
	}
	for i := range s.x {
		s.x[i] = rng.NormFloat64()
	}
	for cfg := 0; cfg < c; cfg++ {
		s.rho[cfg] = 0.5 + rng.Float64()
		for a := 0; a < n; a++ {
			xa := s.x[a*c+cfg]
			xb := s.x[((a+1)%n)*c+cfg]
			s.y[a*c+cfg] = -xa - 0.1*xa*xb + 0.05*rng.NormFloat64()
		}
	}
	for a := 0; a < n; a++ {
		sq := math.Sqrt(2 * s.w[a])
		for cfg := 0; cfg < c; cfg++ {
			s.x[a*c+cfg] /= sq
			s.y[a*c+cfg] *= sq
		}
	}

	return s
}

func (s sample) view(t testing.TB) *ensemble.View {
	t.Helper()
	v, err := ensemble.New(s.x, s.y, s.rho, s.w, s.c, s.n)
	require.NoError(t, err)

	return v
}

func randomSlice(seed int64, n int) []float64 {
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = rng.NormFloat64()
	}

	return out
}

func symmetrize(n int, m []float64) []float64 {
	out := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			out[i*n+j] = 0.5 * (m[i*n+j] + m[j*n+i])
		}
	}

	return out
}

func delta(i, j int) float64 {
	if i == j {
		return 1
	}

	return 0
}

// upsilon returns the per-mode inverse variances at temperature temp.
func upsilon(w []float64, temp float64) []float64 {
	out := make([]float64, len(w))
	for a := range w {
		out[a] = coeff.Upsilon(w[a], units.Occupation(w[a], temp))
	}

	return out
}

// denseD3 materializes the stochastic D3 estimator at temperature temp
// directly from the Hermite polynomials of the harmonic density matrix,
// with z = Υ∘u and H2(a,b) = z_a z_b − Υ_a δ_ab.
func denseD3(s sample, temp float64) [][][]float64 {
	n, c := s.n, s.c
	ups := upsilon(s.w, temp)
	var total float64
	for _, r := range s.rho {
		total += r
	}
	d := make([][][]float64, n)
	for a := range d {
		d[a] = make([][]float64, n)
		for b := range d[a] {
			d[a][b] = make([]float64, n)
		}
	}
	for cfg := 0; cfg < c; cfg++ {
		x := func(a int) float64 { return ups[a] * s.x[a*c+cfg] }
		y := func(a int) float64 { return s.y[a*c+cfg] }
		h2 := func(a, b int) float64 { return x(a)*x(b) - ups[a]*delta(a, b) }
		w := s.rho[cfg] / total
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				for k := 0; k < n; k++ {
					d[a][b][k] -= w / 3 * (h2(a, b)*y(k) + h2(a, k)*y(b) + h2(b, k)*y(a))
				}
			}
		}
	}

	return d
}

// denseD4 materializes the stochastic D4 estimator at temperature temp as a
// flat n⁴ array indexed ((a·n+b)·n+c)·n+d.
func denseD4(s sample, temp float64) []float64 {
	n, c := s.n, s.c
	ups := upsilon(s.w, temp)
	var total float64
	for _, r := range s.rho {
		total += r
	}
	d := make([]float64, n*n*n*n)
	for cfg := 0; cfg < c; cfg++ {
		x := func(a int) float64 { return ups[a] * s.x[a*c+cfg] }
		y := func(a int) float64 { return s.y[a*c+cfg] }
		h3 := func(a, b, k int) float64 {
			return x(a)*x(b)*x(k) - ups[a]*(delta(a, b)*x(k)+delta(a, k)*x(b)) - ups[b]*delta(b, k)*x(a)
		}
		w := s.rho[cfg] / total
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				for k := 0; k < n; k++ {
					for l := 0; l < n; l++ {
						d[((a*n+b)*n+k)*n+l] -= w / 4 * (h3(a, b, k)*y(l) + h3(a, b, l)*y(k) +
							h3(a, k, l)*y(b) + h3(b, k, l)*y(a))
					}
				}
			}
		}
	}

	return d
}
