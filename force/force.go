// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package force integrates the §4.J loads: bound Kutta-Jukowski forces per
// edge, Trefftz-plane induced drag, the unsteady dGamma/dt pressure term,
// and compressible Cp (Karman-Tsien, Prandtl-Glauert), with roll-ups at the
// aircraft/group/surface/span-station levels.
package force

import (
	"math"

	"github.com/cpmech/gosl/num"

	"github.com/cpmech/vlsolver/geom"
)

// Rho is the (constant, incompressible-reference) fluid density used by the
// Kutta-Jukowski and Trefftz-drag integrals.
const Rho = 1.0

// EdgeForce is the bound Kutta-Jukowski contribution of one edge, already
// split between its two adjacent loops.
type EdgeForce struct {
	EdgeID  int
	F       [3]float64 // total edge force
	ToLeft  float64    // fraction assigned to the left loop
	ToRight float64    // fraction assigned to the right loop
}

// KuttaJukowski computes F = rho * Gamma_edge * (V x L) for every non-TE
// edge of the finest level, splitting the force between its two loops by
// inverse-squared distance from each loop's centroid to the edge midpoint.
// A boundary edge (only one adjacent loop) uses that loop's velocity and
// assigns the whole force to it.
func KuttaJukowski(fine *geom.Level, loopVel map[int][3]float64) []EdgeForce {
	out := make([]EdgeForce, 0, len(fine.Edges))
	for i := range fine.Edges {
		e := &fine.Edges[i]
		if e.TE || (e.LeftLoop == 0 && e.RightLoop == 0) {
			continue
		}
		n1 := fine.NodeByID(e.N1)
		n2 := fine.NodeByID(e.N2)
		L := sub(n2.X, n1.X)
		mid := mid3(n1.X, n2.X)

		vl := loopVel[e.LeftLoop]
		vr := loopVel[e.RightLoop]
		if e.LeftLoop == 0 {
			vl = vr
		} else if e.RightLoop == 0 {
			vr = vl
		}
		v := [3]float64{(vl[0] + vr[0]) / 2, (vl[1] + vr[1]) / 2, (vl[2] + vr[2]) / 2}

		var f [3]float64
		cross(&f, v, L)
		f = scale(f, Rho*e.Gamma)

		var wl, wr float64
		switch {
		case e.RightLoop == 0:
			wl, wr = 1, 0
		case e.LeftLoop == 0:
			wl, wr = 0, 1
		default:
			dl := dist(mid, fine.LoopByID(e.LeftLoop).Centroid)
			dr := dist(mid, fine.LoopByID(e.RightLoop).Centroid)
			wl, wr = inverseSquareSplit(dl, dr)
		}

		out = append(out, EdgeForce{EdgeID: e.ID, F: f, ToLeft: wl, ToRight: wr})
	}
	return out
}

func inverseSquareSplit(dl, dr float64) (wl, wr float64) {
	dl = math.Max(dl, 1e-9)
	dr = math.Max(dr, 1e-9)
	il, ir := 1/(dl*dl), 1/(dr*dr)
	sum := il + ir
	return il / sum, ir / sum
}

// TrefftzDrag computes the induced drag at a trailing edge from the wake
// sheet's self-induced velocity evaluated on itself: F = rho * Gamma * (V_wake x L).
func TrefftzDrag(edgeGamma float64, L, vWake [3]float64) [3]float64 {
	var f [3]float64
	cross(&f, vWake, L)
	return scale(f, Rho*edgeGamma)
}

// UnsteadyCpContribution returns dCp = -(dGamma/dt)/Vref^2 for one loop,
// given a centered-difference Gamma time derivative (§4.J step 3, ring
// depth 3 supplies the samples upstream in timeloop).
func UnsteadyCpContribution(dGammaDt, vref float64) float64 {
	if vref == 0 {
		return 0
	}
	return -dGammaDt / (vref * vref)
}

// Cp returns the steady pressure coefficient 1-(|V|/Vref)^2, clipped to
// [cpMin,cpMax], then Karman-Tsien-corrected for the given free-stream Mach
// number (iterated to convergence via gosl's num.NlSolver, §4.J: "iterated
// to convergence, residual of the KT factor <= 1e-2").
func Cp(vMag, vref, mach, cpMin, cpMax float64) float64 {
	cpIncomp := 1 - (vMag/vref)*(vMag/vref)
	if cpIncomp < cpMin {
		cpIncomp = cpMin
	}
	if cpIncomp > cpMax {
		cpIncomp = cpMax
	}
	if mach <= 0 {
		return cpIncomp
	}
	return karmanTsien(cpIncomp, mach)
}

// karmanTsien solves Cp = Cp_incomp / (beta + (M^2/(1+beta))*(Cp/2)) for Cp,
// where beta = sqrt(1-M^2), via a 1-equation Newton iteration.
func karmanTsien(cpIncomp, mach float64) float64 {
	m2 := mach * mach
	if m2 >= 1 {
		return cpIncomp
	}
	beta := math.Sqrt(1 - m2)
	denom0 := beta + m2/(1+beta)*cpIncomp/2
	if denom0 == 0 {
		return cpIncomp
	}

	var nls num.NlSolver
	nls.Init(1, func(fx, x []float64) error {
		cp := x[0]
		fx[0] = cp*(beta+m2/(1+beta)*cp/2) - cpIncomp
		return nil
	}, nil, nil, true, true, nil)
	nls.SetTols(1e-2, 1e-2, 1e-14, num.EPS)
	x := []float64{cpIncomp / beta}
	if err := nls.Solve(x, true); err != nil {
		return cpIncomp / beta // fall back to the linearized estimate
	}
	return x[0]
}

// PrandtlGlauert scales a pressure perturbation for compressibility using
// the local Mach number, clamped to <= 0.999 per §4.J.
func PrandtlGlauert(cpIncomp, mach, vLocal, vref float64) float64 {
	mLocal := mach * vLocal / vref
	if mLocal > 0.999 {
		mLocal = 0.999
	}
	beta := math.Sqrt(1 - mLocal*mLocal)
	if beta <= 0 {
		return cpIncomp
	}
	return cpIncomp / beta
}

// RollUp sums per-loop forces/Cp into aircraft, group, surface and
// span-station totals. Callers select the grouping key function.
type RollUp struct {
	Totals map[string][3]float64
}

// NewRollUp sums edge forces by the supplied key, e.g. by loop.Component or
// loop.SpanIndex, as read off fine.Loops via the edge's owning loop.
func NewRollUp(fine *geom.Level, forces []EdgeForce, keyOf func(loopID int) string) *RollUp {
	r := &RollUp{Totals: make(map[string][3]float64)}
	for _, ef := range forces {
		e := fine.EdgeByID(ef.EdgeID)
		if e == nil {
			continue
		}
		if e.LeftLoop != 0 {
			k := keyOf(e.LeftLoop)
			r.add(k, scale(ef.F, ef.ToLeft))
		}
		if e.RightLoop != 0 {
			k := keyOf(e.RightLoop)
			r.add(k, scale(ef.F, ef.ToRight))
		}
	}
	return r
}

func (r *RollUp) add(key string, f [3]float64) {
	t := r.Totals[key]
	r.Totals[key] = add(t, f)
}

func sub(a, b [3]float64) [3]float64  { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func add(a, b [3]float64) [3]float64  { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}
func mid3(a, b [3]float64) [3]float64 {
	return [3]float64{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2, (a[2] + b[2]) / 2}
}
func dist(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
func cross(out *[3]float64, a, b [3]float64) {
	out[0] = a[1]*b[2] - a[2]*b[1]
	out[1] = a[2]*b[0] - a[0]*b[2]
	out[2] = a[0]*b[1] - a[1]*b[0]
}
