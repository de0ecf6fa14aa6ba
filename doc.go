// Package sscha is the anharmonic kernel layer of a finite-temperature
// Lanczos solver for the stochastic self-consistent harmonic approximation.
//
// The third- and fourth-order force constants (D3, D4) of a crystal are
// never stored. They are estimated from an importance-weighted ensemble of
// displaced configurations and applied directly to vectors and mode-space
// matrices, one pass over the ensemble per call.
//
// Layout:
//
//	units/       Ry/K/eV constants, Bose–Einstein occupations
//	ensemble/    validated read-only view over X, Y, rho and w
//	coeff/       finite-temperature pair and quadruplet coefficients
//	pairindex/   unordered mode pair ↔ Lanczos slot mapping
//	symmetry/    space-group and degenerate-subspace averaging
//	parallel/    serial, shared-memory and distributed reductions
//	comm/        all-reduce collective and an in-process group
//	kernel/      the D3/D4 applications (zero and finite temperature)
//	metrics/     Prometheus recorder for kernel calls
//	config/      viper-based runtime selection of the strategy
//	cmd/anhbench  benchmark harness on a synthetic ensemble
//
// Quick example:
//
//	view, _ := ensemble.New(x, y, rho, w, nConfigs, nModes)
//	e, _ := kernel.NewEngine(view, nil, kernel.WithStrategy(parallel.SharedMemory{}))
//	out := make([]float64, nModes*nModes)
//	err := e.ApplyD3ToVector(ctx, 0, v, out)
package sscha
