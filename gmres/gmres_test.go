// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gmres

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

// diag3 is A = diag(2,3,4) acting on vectors of length 4 (index 0 unused,
// matching the solver's sentinel-at-0 vector layout).
func diag3(y, x []float64) {
	y[0] = 0
	y[1] = 2 * x[1]
	y[2] = 3 * x[2]
	y[3] = 4 * x[3]
}

func Test_gmres_solves_diagonal_system(tst *testing.T) {

	chk.PrintTitle("gmres_solves_diagonal_system")

	b := []float64{0, 2, 3, 4}
	x := make([]float64, 4)
	opt := Options{Restart: 4, MaxCycles: 3, ErrAbs: 1e-12, ErrReduction: 1e-10}

	res, err := Solve(diag3, nil, b, x, opt)
	if err != nil {
		tst.Fatalf("Solve: %v", err)
	}
	if !res.Converged {
		tst.Fatalf("expected convergence, got rho/rho0=%v", res.RhoOverRho0)
	}
	chk.Scalar(tst, "x1", 1e-8, x[1], 1.0)
	chk.Scalar(tst, "x2", 1e-8, x[2], 1.0)
	chk.Scalar(tst, "x3", 1e-8, x[3], 1.0)
}

func Test_gmres_with_jacobi_precond(tst *testing.T) {

	chk.PrintTitle("gmres_with_jacobi_precond")

	b := []float64{0, 4, 9, 16}
	x := make([]float64, 4)
	opt := Options{Restart: 4, MaxCycles: 3, ErrAbs: 1e-12, ErrReduction: 1e-10}

	precond := func(z, r []float64) {
		z[0] = 0
		z[1] = r[1] / 2
		z[2] = r[2] / 3
		z[3] = r[3] / 4
	}

	res, err := Solve(diag3, precond, b, x, opt)
	if err != nil {
		tst.Fatalf("Solve: %v", err)
	}
	if !res.Converged {
		tst.Fatalf("expected convergence")
	}
	chk.Scalar(tst, "x1", 1e-8, x[1], 2.0)
	chk.Scalar(tst, "x2", 1e-8, x[2], 3.0)
	chk.Scalar(tst, "x3", 1e-8, x[3], 4.0)
}

func Test_gmres_diverges_on_impossible_tolerance(tst *testing.T) {

	chk.PrintTitle("gmres_diverges_on_impossible_tolerance")

	// a rank-deficient operator (only the first component passes through)
	// can never drive the full residual below a tight tolerance, so the
	// solver must report LinearSolverDiverged rather than loop forever.
	rank1 := func(y, x []float64) {
		y[0] = 0
		y[1] = x[1]
		y[2] = 0
		y[3] = 0
	}
	b := []float64{0, 1, 1, 1}
	x := make([]float64, 4)
	opt := Options{Restart: 2, MaxCycles: 2, ErrAbs: 1e-12, ErrReduction: 1e-12}

	_, err := Solve(rank1, nil, b, x, opt)
	if err == nil {
		tst.Fatalf("expected LinearSolverDiverged error")
	}
}
