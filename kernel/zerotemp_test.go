// SPDX-License-Identifier: MIT

package kernel_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"

	"github.com/eliheady/python-sscha/comm"
	"github.com/eliheady/python-sscha/kernel"
	"github.com/eliheady/python-sscha/parallel"
	"github.com/eliheady/python-sscha/symmetry"
	"github.com/eliheady/python-sscha/units"
)

func TestApplyD3ToVector_HandScenario(t *testing.T) {
	ctx := context.Background()
	// At T = 0, Υ = 2w = (0.02, 0.04). Summing the raw Hermite terms over
	// the three configurations gives 0.1176, 0.038 and 0.0768 for the
	// (0,0), (0,1) and (1,1) entries, each scaled by −1/(3·Σρ) = −1/9.
	want := []float64{-0.1176 / 9, -0.038 / 9, -0.038 / 9, -0.0768 / 9}

	e, err := kernel.NewEngine(handView(t), nil)
	require.NoError(t, err)
	out := make([]float64, 4)
	require.NoError(t, e.ApplyD3ToVector(ctx, 0, []float64{1, 0}, out))
	require.Empty(t, cmp.Diff(want, out, approx))

	// One identity operation leaves the result unchanged.
	sym, err := symmetry.New([]float64{1, 0, 0, 1}, 1, 2, symmetry.Degeneracy{})
	require.NoError(t, err)
	e, err = kernel.NewEngine(handView(t), sym)
	require.NoError(t, err)
	out2 := make([]float64, 4)
	require.NoError(t, e.ApplyD3ToVector(ctx, 0, []float64{1, 0}, out2))
	require.Empty(t, cmp.Diff(out, out2, approx))
}

func TestApplyD3ToVector_DependsOnFrequencies(t *testing.T) {
	ctx := context.Background()
	apply := func(temp float64, w ...float64) []float64 {
		e, err := kernel.NewEngine(handView(t, w...), nil)
		require.NoError(t, err)
		out := make([]float64, 4)
		require.NoError(t, e.ApplyD3ToVector(ctx, temp, []float64{1, 0}, out))
		return out
	}

	// Υ = 1 for both modes: the data is already white.
	unit := apply(0, 0.5, 0.5)
	require.Empty(t, cmp.Diff([]float64{0, 1.0 / 9, 1.0 / 9, 1.0 / 9}, unit, approx))

	base := apply(0)
	require.NotEmpty(t, cmp.Diff(unit, base, approx))
	require.NotEmpty(t, cmp.Diff(base, apply(0, 0.5, 3), approx))
	require.NotEmpty(t, cmp.Diff(base, apply(0, 1e-3, 7), approx))

	// Thermal broadening lowers Υ, so the result moves with T too.
	require.NotEmpty(t, cmp.Diff(base, apply(2000), approx))

	// A soft mode drops out of every entry it touches.
	soft := apply(0, 0.5, units.Epsilon/2)
	require.Zero(t, soft[1])
	require.Zero(t, soft[2])
	require.Zero(t, soft[3])
	for _, v := range soft {
		require.False(t, math.IsNaN(v))
	}
}

func TestZeroTemperature_MatchesDenseTensors(t *testing.T) {
	ctx := context.Background()
	s := randomSample(1, 4, 60)
	n := s.n
	e, err := kernel.NewEngine(s.view(t), nil)
	require.NoError(t, err)
	d3 := denseD3(s, 0)
	d4 := denseD4(s, 0)

	v := randomSlice(2, n)
	m := randomSlice(3, n*n) // deliberately not symmetric

	got := make([]float64, n*n)
	require.NoError(t, e.ApplyD3ToVector(ctx, 0, v, got))
	want := make([]float64, n*n)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			for k := 0; k < n; k++ {
				want[b*n+k] += d3[a][b][k] * v[a]
			}
		}
	}
	require.Empty(t, cmp.Diff(want, got, approx), "D3·v")

	gotVec := make([]float64, n)
	require.NoError(t, e.ApplyD3ToDyn(ctx, 0, m, gotVec))
	wantVec := make([]float64, n)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			for k := 0; k < n; k++ {
				wantVec[a] += d3[a][b][k] * m[b*n+k]
			}
		}
	}
	require.Empty(t, cmp.Diff(wantVec, gotVec, approx), "D3:M")

	require.NoError(t, e.ApplyD4ToDyn(ctx, 0, m, got))
	clear(want)
	for a := 0; a < n; a++ {
		for b := 0; b < n; b++ {
			for k := 0; k < n; k++ {
				for l := 0; l < n; l++ {
					want[k*n+l] += d4[((a*n+b)*n+k)*n+l] * m[a*n+b]
				}
			}
		}
	}
	require.Empty(t, cmp.Diff(want, got, approx), "D4:M")
}

func TestD3_AdjointConsistency(t *testing.T) {
	ctx := context.Background()
	s := randomSample(4, 5, 40)
	n := s.n
	e, err := kernel.NewEngine(s.view(t), nil)
	require.NoError(t, err)

	v := randomSlice(5, n)
	m := symmetrize(n, randomSlice(6, n*n))

	dyn := make([]float64, n*n)
	require.NoError(t, e.ApplyD3ToVector(ctx, 300, v, dyn))
	vecOut := make([]float64, n)
	require.NoError(t, e.ApplyD3ToDyn(ctx, 300, m, vecOut))

	lhs := floats.Dot(m, dyn)
	rhs := floats.Dot(v, vecOut)
	require.InDelta(t, lhs, rhs, 1e-10*math.Max(1, math.Abs(lhs)))
}

func TestD4_OutputSymmetric(t *testing.T) {
	s := randomSample(7, 4, 30)
	n := s.n
	e, err := kernel.NewEngine(s.view(t), nil)
	require.NoError(t, err)

	out := make([]float64, n*n)
	require.NoError(t, e.ApplyD4ToDyn(context.Background(), 0, randomSlice(8, n*n), out))
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			require.InDelta(t, out[i*n+j], out[j*n+i], tol)
		}
	}
}

// runAll runs every ensemble kernel on fixed inputs: the three
// zero-temperature ones, then D3FT and D4FT at 300 K on a packed ψ.
func runAll(e *kernel.Engine, n int) ([][]float64, error) {
	const temp = 300.0
	ctx := context.Background()
	v := randomSlice(10, n)
	m := randomSlice(11, n*n)
	l := kernel.NewLayout(n)
	psi := randomSlice(16, l.Len())
	r1 := make([]float64, n*n)
	r2 := make([]float64, n)
	r3 := make([]float64, n*n)
	r4 := make([]float64, l.Len())
	r5 := make([]float64, l.Len())
	if err := e.ApplyD3ToVector(ctx, 0, v, r1); err != nil {
		return nil, err
	}
	if err := e.ApplyD3ToDyn(ctx, 0, m, r2); err != nil {
		return nil, err
	}
	if err := e.ApplyD4ToDyn(ctx, 0, m, r3); err != nil {
		return nil, err
	}
	if err := e.D3FT(ctx, temp, l, psi, r4); err != nil {
		return nil, err
	}
	if err := e.D4FT(ctx, temp, l, psi, r5); err != nil {
		return nil, err
	}

	return [][]float64{r1, r2, r3, r4, r5}, nil
}

func TestParallelismInvariance(t *testing.T) {
	s := randomSample(12, 5, 101)
	view := s.view(t)

	serial, err := kernel.NewEngine(view, nil)
	require.NoError(t, err)
	want, err := runAll(serial, s.n)
	require.NoError(t, err)

	for _, workers := range []int{2, 3, 8} {
		e, err := kernel.NewEngine(view, nil, kernel.WithStrategy(parallel.SharedMemory{Workers: workers}))
		require.NoError(t, err)
		require.Equal(t, "shared", e.Strategy())
		got, err := runAll(e, s.n)
		require.NoError(t, err)
		require.Empty(t, cmp.Diff(want, got, approx), "workers=%d", workers)
	}

	for _, ranks := range []int{2, 3} {
		peers, err := comm.NewLocalGroup(ranks)
		require.NoError(t, err)
		results := make([][][]float64, ranks)
		errs := make([]error, ranks)
		var wg sync.WaitGroup
		for r, p := range peers {
			e, err := kernel.NewEngine(view, nil, kernel.WithStrategy(parallel.Distributed{
				Comm:  p,
				Local: parallel.SharedMemory{Workers: 2},
			}))
			require.NoError(t, err)
			wg.Add(1)
			go func(r int) {
				defer wg.Done()
				results[r], errs[r] = runAll(e, s.n)
			}(r)
		}
		wg.Wait()
		for r := range results {
			require.NoError(t, errs[r], "ranks=%d rank=%d", ranks, r)
			require.Empty(t, cmp.Diff(want, results[r], approx), "ranks=%d rank=%d", ranks, r)
		}
		// Every rank sees the same bits.
		require.Equal(t, results[0], results[ranks-1])
	}
}

func TestSymmetrizedOutput_DegenerateModes(t *testing.T) {
	ctx := context.Background()
	s := randomSample(13, 3, 40)
	s.w = []float64{0.003, 0.003, 0.005}
	deg := symmetry.FromFrequencies(s.w, 1e-8)
	ops := []float64{
		1, 0, 0, 0, 1, 0, 0, 0, 1,
		0, 1, 0, 1, 0, 0, 0, 0, 1,
	}
	sym, err := symmetry.New(ops, 2, 3, deg)
	require.NoError(t, err)
	e, err := kernel.NewEngine(s.view(t), sym)
	require.NoError(t, err)

	out := make([]float64, 9)
	require.NoError(t, e.ApplyD4ToDyn(ctx, 0, randomSlice(14, 9), out))
	require.InDelta(t, out[0], out[4], tol)
	require.InDelta(t, out[2], out[5], tol)
	require.InDelta(t, out[6], out[7], tol)

	again := append([]float64(nil), out...)
	require.NoError(t, sym.Dyn(again))
	require.Empty(t, cmp.Diff(out, again, approx))

	vec := make([]float64, 3)
	require.NoError(t, e.ApplyD3ToDyn(ctx, 0, randomSlice(15, 9), vec))
	require.InDelta(t, vec[0], vec[1], tol)
}

func TestZeroTemperature_Errors(t *testing.T) {
	ctx := context.Background()
	e, err := kernel.NewEngine(handView(t), nil)
	require.NoError(t, err)

	require.ErrorIs(t, e.ApplyD3ToVector(ctx, 0, []float64{1}, make([]float64, 4)), kernel.ErrDimensionMismatch)
	require.ErrorIs(t, e.ApplyD3ToVector(ctx, 0, []float64{1, 0}, make([]float64, 3)), kernel.ErrDimensionMismatch)
	require.ErrorIs(t, e.ApplyD3ToDyn(ctx, 0, make([]float64, 4), make([]float64, 4)), kernel.ErrDimensionMismatch)
	require.ErrorIs(t, e.ApplyD4ToDyn(ctx, 0, make([]float64, 2), make([]float64, 4)), kernel.ErrDimensionMismatch)
	require.ErrorIs(t, e.ApplyD4ToDyn(ctx, 0, []float64{0, math.NaN(), 0, 0}, make([]float64, 4)), kernel.ErrNaNInf)
	require.ErrorIs(t, e.ApplyD3ToVector(ctx, -1, []float64{1, 0}, make([]float64, 4)), kernel.ErrBadTemperature)
	require.ErrorIs(t, e.ApplyD4ToDyn(ctx, math.Inf(1), make([]float64, 4), make([]float64, 4)), kernel.ErrBadTemperature)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	require.ErrorIs(t, e.ApplyD3ToVector(cancelled, 0, []float64{1, 0}, make([]float64, 4)), context.Canceled)
}

func TestNonFiniteResult_LeavesOutputUntouched(t *testing.T) {
	e, err := kernel.NewEngine(handView(t, 0.5, 0.5), nil)
	require.NoError(t, err)

	out := []float64{7, 7, 7, 7}
	err = e.ApplyD3ToVector(context.Background(), 0, []float64{math.MaxFloat64, math.MaxFloat64}, out)
	require.ErrorIs(t, err, kernel.ErrNonFinite)
	require.Equal(t, []float64{7, 7, 7, 7}, out)
}

func TestNewEngine_Errors(t *testing.T) {
	_, err := kernel.NewEngine(nil, nil)
	require.ErrorIs(t, err, kernel.ErrNilEnsemble)

	_, err = kernel.NewEngine(handView(t), symmetry.Identity(3))
	require.ErrorIs(t, err, kernel.ErrDimensionMismatch)

	require.Panics(t, func() { kernel.WithStrategy(nil) })
	require.Panics(t, func() { kernel.WithRecorder(nil) })
}

type fakeRecorder struct {
	mu      sync.Mutex
	done    map[string]int
	failed  map[string]string
	configs int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{done: map[string]int{}, failed: map[string]string{}}
}

func (f *fakeRecorder) KernelDone(k, _ string, _ time.Duration, configs int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.done[k]++
	f.configs += configs
}

func (f *fakeRecorder) KernelFailed(k, _, reason string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed[k] = reason
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	rec := newFakeRecorder()
	e, err := kernel.NewEngine(handView(t, 0.5, 0.5), nil, kernel.WithRecorder(rec))
	require.NoError(t, err)

	require.NoError(t, e.ApplyD3ToVector(ctx, 0, []float64{1, 0}, make([]float64, 4)))
	require.NoError(t, e.ApplyD4ToDyn(ctx, 0, make([]float64, 4), make([]float64, 4)))
	require.Error(t, e.ApplyD3ToDyn(ctx, 0, make([]float64, 3), make([]float64, 2)))
	require.Error(t, e.ApplyD3ToVector(ctx, 0, []float64{math.MaxFloat64, math.MaxFloat64}, make([]float64, 4)))

	require.Equal(t, 1, rec.done[kernel.KernelD3ToVector])
	require.Equal(t, 1, rec.done[kernel.KernelD4ToDyn])
	require.Equal(t, 6, rec.configs)
	require.Equal(t, kernel.ReasonPrecondition, rec.failed[kernel.KernelD3ToDyn])
	require.Equal(t, kernel.ReasonNonFinite, rec.failed[kernel.KernelD3ToVector])
}

func TestRecorder_Lambda(t *testing.T) {
	rec := newFakeRecorder()
	e, err := kernel.NewEngine(handView(t), nil, kernel.WithRecorder(rec))
	require.NoError(t, err)

	in := []float64{1, 2, 3, 4}
	require.NoError(t, e.ApplyLambda(100, in, make([]float64, 4)))
	require.NoError(t, e.ApplyLambda(0, in, make([]float64, 4)))
	require.NoError(t, e.ApplyInverseLambda(100, in, make([]float64, 4)))
	require.Error(t, e.ApplyInverseLambda(-5, in, make([]float64, 4)))

	require.Equal(t, 2, rec.done[kernel.KernelLambda])
	require.Equal(t, 1, rec.done[kernel.KernelInverseLambda])
	require.Zero(t, rec.configs)
	require.Equal(t, kernel.ReasonPrecondition, rec.failed[kernel.KernelInverseLambda])
	require.NotContains(t, rec.failed, kernel.KernelLambda)
}
