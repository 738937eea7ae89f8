// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gmres implements the §4.G right-preconditioned restarted GMRES
// used to solve the surface-vorticity linear system each time step.
package gmres

import (
	"math"

	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/floats"

	"github.com/cpmech/vlsolver/errs"
)

// MatVec applies the (possibly panel-squared) operator: y = A x.
type MatVec func(y, x []float64)

// Precond applies M^-1 to a vector: z = M^-1 r. A nil Precond means
// unpreconditioned GMRES (M = I).
type Precond func(z, r []float64)

// Result reports the linear solve's outcome (§4.G).
type Result struct {
	Rho         float64 // final residual norm
	Rho0        float64 // initial residual norm
	RhoOverRho0 float64
	Iterations  int // total inner iterations across all restart cycles
	Converged   bool
}

// Options controls the restart length, outer-cycle cap and stopping
// tolerances (mirrors config.SolverParams so callers can pass it directly).
type Options struct {
	Restart      int
	MaxCycles    int
	ErrAbs       float64
	ErrReduction float64
}

// Solve runs right-preconditioned GMRES(Restart) for up to MaxCycles outer
// cycles, operating on vectors of length n = N_loops + N_kelvin_groups + 1
// (index 0 is the unused sentinel, §4.G). x is updated in place and must
// be preloaded with the initial guess (zero is fine).
func Solve(apply MatVec, precond Precond, b, x []float64, opt Options) (Result, error) {
	n := len(b)
	r := make([]float64, n)
	applyResidual(apply, b, x, r)
	rho0 := la.VecNorm(r)

	res := Result{Rho0: rho0}
	if rho0 == 0 {
		res.Rho = 0
		res.Converged = true
		return res, nil
	}

	for cycle := 0; cycle < opt.MaxCycles; cycle++ {
		rho, iters, err := cycleOnce(apply, precond, b, x, r, opt.Restart, rho0, opt.ErrAbs, opt.ErrReduction)
		res.Iterations += iters
		res.Rho = rho
		if err != nil {
			return res, err
		}
		res.RhoOverRho0 = rho / rho0
		if rho <= math.Max(rho0*opt.ErrReduction, opt.ErrAbs) {
			res.Converged = true
			return res, nil
		}
		applyResidual(apply, b, x, r)
	}

	return res, errs.NewLinearSolverDiverged(res.RhoOverRho0, res.Iterations)
}

func applyResidual(apply MatVec, b, x, r []float64) {
	n := len(b)
	ax := make([]float64, n)
	apply(ax, x)
	la.VecAdd2(r, 1, b, -1, ax) // r := b - A x
}

// cycleOnce runs one restart cycle of modified-Gram-Schmidt Arnoldi with
// Givens-rotation least-squares, updating x at the end via back-substitution.
func cycleOnce(apply MatVec, precond Precond, b, x, r0 []float64, restart int, rho0, errAbs, errReduction float64) (float64, int, error) {
	n := len(b)
	m := restart
	if m > n {
		m = n
	}
	if m < 1 {
		m = 1
	}

	V := make([][]float64, m+1)
	beta := la.VecNorm(r0)
	V[0] = make([]float64, n)
	la.VecCopy(V[0], 1.0/beta, r0)

	g := make([]float64, m+1)
	g[0] = beta

	H := make([][]float64, m+1)
	for i := range H {
		H[i] = make([]float64, m)
	}
	cs := make([]float64, m)
	sn := make([]float64, m)

	z := make([]float64, n) // preconditioned search vector, scratch
	w := make([]float64, n)

	k := 0
	rho := beta
	for ; k < m; k++ {
		if precond != nil {
			precond(z, V[k])
		} else {
			copy(z, V[k])
		}
		apply(w, z)

		// modified Gram-Schmidt
		for i := 0; i <= k; i++ {
			H[i][k] = la.VecDot(w, V[i])
			la.VecAdd2(w, 1, w, -H[i][k], V[i])
		}
		hNorm := la.VecNorm(w)

		// reorthogonalize if the new vector shrank a lot relative to h_kk
		if hNorm < 1e-10*math.Abs(H[k][k])+1e-300 {
			for i := 0; i <= k; i++ {
				corr := la.VecDot(w, V[i])
				H[i][k] += corr
				la.VecAdd2(w, 1, w, -corr, V[i])
			}
			hNorm = la.VecNorm(w)
		}

		H[k+1][k] = hNorm
		V[k+1] = make([]float64, n)
		if hNorm > 1e-300 {
			la.VecCopy(V[k+1], 1.0/hNorm, w)
		}

		// apply previous Givens rotations to the new column
		for i := 0; i < k; i++ {
			temp := cs[i]*H[i][k] + sn[i]*H[i+1][k]
			H[i+1][k] = -sn[i]*H[i][k] + cs[i]*H[i+1][k]
			H[i][k] = temp
		}

		// compute and apply the new rotation to zero H[k+1][k]
		cs[k], sn[k] = givens(H[k][k], H[k+1][k])
		H[k][k] = cs[k]*H[k][k] + sn[k]*H[k+1][k]
		H[k+1][k] = 0

		g[k+1] = -sn[k] * g[k]
		g[k] = cs[k] * g[k]

		rho = math.Abs(g[k+1])
		if rho <= math.Max(rho0*errReduction, errAbs) {
			k++
			break
		}
	}

	// back-substitute H y = g for y[0..k-1], then x += V y (preconditioned)
	y := make([]float64, k)
	for i := k - 1; i >= 0; i-- {
		sum := g[i] - floats.Dot(H[i][i+1:k], y[i+1:k])
		y[i] = sum / H[i][i]
	}

	dx := make([]float64, n)
	for i := 0; i < k; i++ {
		if precond != nil {
			precond(z, V[i])
		} else {
			copy(z, V[i])
		}
		la.VecAdd2(dx, 1, dx, y[i], z)
	}
	la.VecAdd2(x, 1, x, 1, dx)

	return rho, k, nil
}

// givens computes c, s such that [c s; -s c] [a; b] = [r; 0].
func givens(a, b float64) (c, s float64) {
	if b == 0 {
		return 1, 0
	}
	if math.Abs(b) > math.Abs(a) {
		t := a / b
		s = 1 / math.Sqrt(1+t*t)
		c = t * s
		return
	}
	t := b / a
	c = 1 / math.Sqrt(1+t*t)
	s = t * c
	return
}

// PanelOperator wraps a panel-mode A in the M^-1 A^T A form §4.G describes:
// the preconditioned operator applies A then A^T, and the caller must
// pre-multiply the RHS by A^T before calling Solve. Residual decrease must
// still be reported against the original (unsquared) system; SolveNormal
// does that bookkeeping.
type PanelOperator struct {
	A  MatVec
	At MatVec
}

func (p PanelOperator) Apply(y, x []float64) {
	n := len(x)
	tmp := make([]float64, n)
	p.A(tmp, x)
	p.At(y, tmp)
}

// SolveNormal solves the panel-mode normal equations A^T A x = A^T b, then
// reports the residual of the *original* system A x - b (§4.G's note that
// residual decrease is reported against Ax-b, not A^T A x - A^T b).
func SolveNormal(p PanelOperator, precond Precond, b, x []float64, opt Options) (Result, error) {
	n := len(b)
	ax := make([]float64, n)
	r := make([]float64, n)
	p.A(ax, x)
	la.VecAdd2(r, 1, b, -1, ax)
	rho0 := la.VecNorm(r)

	atb := make([]float64, n)
	p.At(atb, b)

	res, err := Solve(p.Apply, precond, atb, x, opt)

	p.A(ax, x)
	la.VecAdd2(r, 1, b, -1, ax)
	res.Rho = la.VecNorm(r)
	res.Rho0 = rho0
	if rho0 != 0 {
		res.RhoOverRho0 = res.Rho / rho0
	}
	return res, err
}
