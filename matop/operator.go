// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package matop implements the discretized normal-velocity influence
// matrix A, augmented with Kelvin rows, as a matrix-free mat-vec (§4.E).
// The vector layout is [loop Γ values (1..Nloops)] followed by [Kelvin
// group multipliers (1..Ngroups)], with index 0 reserved as the sentinel.
package matop

import (
	"math"
	"sync"

	"github.com/cpmech/gosl/la"
	"github.com/cpmech/vlsolver/concur"
	"github.com/cpmech/vlsolver/config"
	"github.com/cpmech/vlsolver/geom"
	"github.com/cpmech/vlsolver/ilist"
	"github.com/cpmech/vlsolver/vortex"
	"github.com/cpmech/vlsolver/wake"
)

// KelvinRow augments A with `r[N+g] = lambda * sum_{i in group g} x[i]`.
type KelvinRow struct {
	Lambda float64
	Loops  []int // level-1 loop ids in this group
}

// Operator is the matrix-free mat-vec for A (and, in panel mode, its
// transpose-squared wrapper).
type Operator struct {
	H         *geom.Hierarchy
	Lists     *ilist.Result
	WakeLists *ilist.Result // wake-target lists, sources = wake sheet ids (may be nil)
	Sheets    *wake.State
	Kelvin    []KelvinRow
	Cfg       *config.Config

	// BaseLoops marks loops whose equation row is replaced by the identity
	// (base region, §4.H); rhs.Build already zeroes their RHS entry.
	BaseLoops map[int]bool

	// NLoops, NGroups size the vector layout; index 0 is the sentinel.
	NLoops  int
	NGroups int
}

// Len returns the mat-vec vector length N_loops + N_kelvin_groups + 1.
func (op *Operator) Len() int { return op.NLoops + op.NGroups + 1 }

// MatVec computes y = A x (panel-mode callers square it themselves via
// MatVecPanel, §4.G).
func (op *Operator) MatVec(y, x []float64) {
	for i := range y {
		y[i] = 0
	}

	// step 1: restrict loop-Γ from x into the hierarchy, then to all coarser
	// levels via area-weighted mean of children, then recompute every
	// level's edge-Γ from its adjacent loops (inv. 1) so the Biot-Savart
	// sources below read a circulation consistent with this x.
	fine := op.H.Fine()
	for i := range fine.Loops {
		fine.Loops[i].Gamma = x[fine.Loops[i].ID]
	}
	op.H.RestrictLoopGamma()
	op.H.UpdateEdgeGamma()

	// steps 2-4: accumulate per-level-1-target velocity from its own
	// entries plus every ancestor's promoted entries (prolongation). Each
	// worker owns a contiguous, disjoint range of fine.Loops and writes
	// only its own targets' vel[] slots (owner-computes, §5), so the
	// per-target reduction order — and hence the result at a fixed thread
	// count — does not depend on how the range is split.
	vel := make([][3]float64, op.NLoops+1)
	concur.Range(len(fine.Loops), func(lo, hi int) {
		for i := lo; i < hi; i++ {
			target := &fine.Loops[i]
			cov := op.Lists.Coverage(op.H, target.ID)
			v := op.accumulate(target.Centroid, cov)
			if op.WakeLists != nil && op.Sheets != nil {
				v = add(v, op.wakeContribution(target.Centroid, target.ID))
			}
			vel[target.ID] = v
		}
	})

	// step 5: dot each level-1 target velocity with its loop normal; add
	// supersonic principal-part terms where applicable.
	for i := range fine.Loops {
		loop := &fine.Loops[i]
		if op.BaseLoops[loop.ID] {
			y[loop.ID] = x[loop.ID]
			continue
		}
		v := vel[loop.ID]
		y[loop.ID] = v[0]*loop.Normal[0] + v[1]*loop.Normal[1] + v[2]*loop.Normal[2]
		y[loop.ID] += op.supersonicTerm(loop, x)
	}

	// step 6: Kelvin-row contributions.
	for g, row := range op.Kelvin {
		idx := op.NLoops + 1 + g
		var sum float64
		for _, lid := range row.Loops {
			sum += x[lid]
		}
		y[idx] = row.Lambda * sum
	}
}

// VelocityAt re-evaluates the induced velocity at a level-1 loop's
// centroid for whatever Γ distribution the hierarchy currently carries
// (callers restrict a solved x into it first via RestrictLoopGammaFrom),
// the same accumulation step 2-4 of MatVec performs internally. Used by
// the force integrator, which needs per-loop velocity, not the
// normal-dotted scalar MatVec returns.
func (op *Operator) VelocityAt(targetLoopID int) [3]float64 {
	target := op.H.Fine().LoopByID(targetLoopID)
	cov := op.Lists.Coverage(op.H, targetLoopID)
	v := op.accumulate(target.Centroid, cov)
	if op.WakeLists != nil && op.Sheets != nil {
		v = add(v, op.wakeContribution(target.Centroid, targetLoopID))
	}
	return v
}

// RestrictLoopGammaFrom writes the Γ values from vector x (indexed by
// level-1 loop id, as the mat-vec layout does) into the hierarchy and
// restricts them to every coarser level, the same first step MatVec
// performs, exposed so callers can re-evaluate VelocityAt for a solved x
// without re-running the whole mat-vec.
func (op *Operator) RestrictLoopGammaFrom(x []float64) {
	fine := op.H.Fine()
	for i := range fine.Loops {
		fine.Loops[i].Gamma = x[fine.Loops[i].ID]
	}
	op.H.RestrictLoopGamma()
	op.H.UpdateEdgeGamma()
}

// sourceKernel returns the velocity a unit-Γ vortex filament lying on
// source edge k would induce at point x (the per-unit-Γ sensitivity the
// forward accumulation scales by e.Gamma, and the adjoint scatter below
// scales by a target's row weight).
func (op *Operator) sourceKernel(k ilist.SourceKey, x [3]float64) (v [3]float64, ok bool) {
	e := op.H.Level(k.Level).EdgeByID(k.EdgeID)
	n1 := op.H.Level(k.Level).NodeByID(e.N1)
	n2 := op.H.Level(k.Level).NodeByID(e.N2)
	seg := vortex.Segment{P1: n1.X, P2: n2.X, Gamma: 1}
	u, err := seg.InducedVelocity(x, op.Cfg.Wake.CoreRadius, coreModel(op.Cfg))
	if err != nil {
		return v, false
	}
	return u, true
}

// mirrorKernel returns the velocity a unit-Γ image of source edge k,
// reflected across the plane normal to axis (1=y for the symmetry plane,
// 2=z for the ground plane), induces at x. The returned vector already has
// its axis component negated, matching the sign convention a reflection
// applies to the induced field (§4.E "Reflections").
func (op *Operator) mirrorKernel(k ilist.SourceKey, x [3]float64, axis int) (v [3]float64, ok bool) {
	e := op.H.Level(k.Level).EdgeByID(k.EdgeID)
	n1 := op.H.Level(k.Level).NodeByID(e.N1)
	n2 := op.H.Level(k.Level).NodeByID(e.N2)
	mp1, mp2 := n1.X, n2.X
	mp1[axis], mp2[axis] = -mp1[axis], -mp2[axis]
	seg := vortex.Segment{P1: mp1, P2: mp2, Gamma: 1}
	u, err := seg.InducedVelocity(x, op.Cfg.Wake.CoreRadius, coreModel(op.Cfg))
	if err != nil {
		return v, false
	}
	u[axis] = -u[axis]
	return u, true
}

// accumulate sums Biot-Savart contributions from every (level, edgeID)
// source in cov, evaluated at point X.
func (op *Operator) accumulate(x [3]float64, cov map[ilist.SourceKey]bool) [3]float64 {
	var total [3]float64
	for k := range cov {
		e := op.H.Level(k.Level).EdgeByID(k.EdgeID)
		if u, ok := op.sourceKernel(k, x); ok {
			total = add(total, scale(u, e.Gamma))
		}
	}
	if mirrored := op.reflect(x, cov); mirrored != nil {
		total = add(total, *mirrored)
	}
	return total
}

// reflect adds the mirrored-source contribution when a symmetry or ground
// plane is active (§4.E "Reflections").
func (op *Operator) reflect(x [3]float64, cov map[ilist.SourceKey]bool) *[3]float64 {
	if !op.Cfg.Opts.DoSymmetryPlaneY && !op.Cfg.Opts.DoGroundPlaneZ {
		return nil
	}
	var total [3]float64
	any := false
	for k := range cov {
		e := op.H.Level(k.Level).EdgeByID(k.EdgeID)
		if op.Cfg.Opts.DoSymmetryPlaneY {
			if u, ok := op.mirrorKernel(k, x, 1); ok {
				total = add(total, scale(u, -e.Gamma))
				any = true
			}
		}
		if op.Cfg.Opts.DoGroundPlaneZ {
			if u, ok := op.mirrorKernel(k, x, 2); ok {
				total = add(total, scale(u, -e.Gamma))
				any = true
			}
		}
	}
	if !any {
		return nil
	}
	return &total
}

// wakeContribution sums induced velocity from the wake sheets listed as
// admissible sources for the given level-1 target loop (§4.E step 3). The
// wake-target list's Sources are wake sheet ids (wake.Sheet.ID, 1-based),
// mirroring the surface list's (level, edgeID) sources in spirit: only the
// sheets the admissibility sweep actually attributed to this target are
// walked, not every sheet in the simulation.
func (op *Operator) wakeContribution(x [3]float64, targetLoopID int) [3]float64 {
	var total [3]float64
	tl, ok := op.WakeLists.Level1[targetLoopID]
	if !ok {
		return total
	}
	for _, e := range tl.Entries {
		for _, sid := range e.Sources {
			if sid <= 0 || sid > len(op.Sheets.Sheets) {
				continue
			}
			total = add(total, op.sheetInduced(op.Sheets.Sheets[sid-1], x))
		}
	}
	return total
}

// sheetInduced sums the induced velocity of every segment (ActiveLen is not
// consulted), at every coarsening level, of every strand in sh.
func (op *Operator) sheetInduced(sh *wake.Sheet, x [3]float64) [3]float64 {
	var total [3]float64
	for _, strand := range sh.Strands {
		for _, segs := range strand.Levels {
			for i := 0; i+1 < len(segs); i++ {
				s := vortex.Segment{P1: segs[i].Pos, P2: segs[i+1].Pos, Gamma: segs[i].Gamma}
				v, err := s.InducedVelocity(x, op.Cfg.Wake.CoreRadius, coreModel(op.Cfg))
				if err == nil {
					total = add(total, v)
				}
			}
		}
	}
	return total
}

// supersonicTerm adds the generalized principal-part downwash for any
// edge of this loop whose downwind loop lies in the Mach cone (§4.A,
// step 5's "add supersonic principal-part terms").
func (op *Operator) supersonicTerm(loop *geom.Loop, x []float64) float64 {
	if op.Cfg.FreeStream.Mach < 1.0 {
		return 0
	}
	beta := math.Sqrt(op.Cfg.FreeStream.Mach*op.Cfg.FreeStream.Mach - 1)
	if beta <= 0 {
		return 0
	}
	var total float64
	fine := op.H.Fine()
	for _, eid := range loop.Edges {
		e := fine.EdgeByID(eid)
		if e.LeftLoop == 0 || e.RightLoop == 0 {
			continue
		}
		left := fine.LoopByID(e.LeftLoop)
		right := fine.LoopByID(e.RightLoop)
		dl := distLoop(loop, left)
		dr := distLoop(loop, right)
		r := vortex.SupersonicPrincipalPart(x[eid], beta, dl, dr)
		if loop.ID == e.LeftLoop {
			total += r.Ws * r.WeightLeft
		} else if loop.ID == e.RightLoop {
			total += r.Ws * r.WeightRight
		}
	}
	return total
}

func distLoop(a, b *geom.Loop) float64 {
	dx := a.Centroid[0] - b.Centroid[0]
	dy := a.Centroid[1] - b.Centroid[1]
	dz := a.Centroid[2] - b.Centroid[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func add(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func scale(a [3]float64, s float64) [3]float64 {
	return [3]float64{a[0] * s, a[1] * s, a[2] * s}
}

func dot(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func coreModel(cfg *config.Config) vortex.CoreModel {
	if cfg.Wake.UseLambOseen {
		return vortex.LambOseen
	}
	return vortex.Rankine
}

// MatVecPanel implements the panel-mode wrapper y = A^T (A x), used inside
// GMRES per §4.G's note: "the mat-vec is used normally then transposed".
func (op *Operator) MatVecPanel(y, x []float64) {
	n := op.Len()
	tmp := make([]float64, n)
	op.MatVec(tmp, x)
	op.MatVecTranspose(y, tmp)
}

// MatVecTranspose computes y = A^T x. A is not symmetric: row i of the
// surface block is built from the normal of loop i and the sources its own
// interaction list names, while row j uses loop j's normal and its own,
// generally different, source list. Computing a genuine adjoint means
// running the forward chain's three linear stages in reverse, not calling
// MatVec a second time:
//
//	R:  level-1 loop Γ (x) -> every coarser level's loop Γ (area-weighted
//	    restriction, Hierarchy.RestrictLoopGamma)
//	D:  loop Γ (every level) -> edge Γ (Hierarchy.UpdateEdgeGamma, inv. 1)
//	C:  edge Γ -> normal-dotted induced velocity at every level-1 target's
//	    centroid, via each target's interaction-list coverage
//
// so A_surface = C . D . R and A_surface^T = R^T . D^T . C^T. R^T
// prolongates an adjoint loop-Γ value down to its children weighted by
// child area (mirroring R's restriction weights); D^T scatters an edge's
// adjoint value onto its left loop (+) and right loop (-); C^T scatters
// each target's row weight back onto the (level, edgeID) sources its
// coverage names, using the same per-unit-Γ kernel accumulate/reflect use.
// Kelvin rows are handled exactly (their column block is independent of
// the surface block in both directions). The wake-target contribution is
// a function of the wake's own, independently-advected Γ state, not of x,
// so it has no column in A and is correctly omitted here.
func (op *Operator) MatVecTranspose(y, x []float64) {
	for i := range y {
		y[i] = 0
	}

	// Kelvin block: A[N+1+g, i] = Lambda_g for i in group g, zero
	// elsewhere, so A^T[i, N+1+g] = Lambda_g for i in group g.
	for g, row := range op.Kelvin {
		idx := op.NLoops + 1 + g
		rg := x[idx]
		if rg == 0 {
			continue
		}
		for _, lid := range row.Loops {
			y[lid] += row.Lambda * rg
		}
	}

	fine := op.H.Fine()

	// C^T: scatter each non-base target's row weight onto its sources.
	adjEdge := make(map[ilist.SourceKey]float64)
	var mu sync.Mutex
	concur.Range(len(fine.Loops), func(lo, hi int) {
		local := make(map[ilist.SourceKey]float64)
		for i := lo; i < hi; i++ {
			target := &fine.Loops[i]
			if op.BaseLoops[target.ID] {
				continue
			}
			r := x[target.ID]
			if r == 0 {
				continue
			}
			cov := op.Lists.Coverage(op.H, target.ID)
			for k := range cov {
				var coeff float64
				if u, ok := op.sourceKernel(k, target.Centroid); ok {
					coeff += dot(u, target.Normal)
				}
				if op.Cfg.Opts.DoSymmetryPlaneY {
					if u, ok := op.mirrorKernel(k, target.Centroid, 1); ok {
						coeff -= dot(u, target.Normal)
					}
				}
				if op.Cfg.Opts.DoGroundPlaneZ {
					if u, ok := op.mirrorKernel(k, target.Centroid, 2); ok {
						coeff -= dot(u, target.Normal)
					}
				}
				if coeff != 0 {
					local[k] += coeff * r
				}
			}
		}
		mu.Lock()
		for k, v := range local {
			adjEdge[k] += v
		}
		mu.Unlock()
	})

	// D^T: scatter each edge's adjoint value onto its left (+) and right
	// (-) loop, per level, mirroring Edge.Gamma = LeftLoop.Gamma -
	// RightLoop.Gamma.
	L := op.H.NumLevels()
	adjLoop := make([]map[int]float64, L+1) // 1-based by level
	for l := 1; l <= L; l++ {
		adjLoop[l] = make(map[int]float64)
	}
	for k, a := range adjEdge {
		if a == 0 {
			continue
		}
		e := op.H.Level(k.Level).EdgeByID(k.EdgeID)
		if e.LeftLoop != 0 {
			adjLoop[k.Level][e.LeftLoop] += a
		}
		if e.RightLoop != 0 {
			adjLoop[k.Level][e.RightLoop] -= a
		}
	}

	// R^T: prolongate adjoint loop-Γ values from coarse to fine, weighted
	// by the same child-area fractions RestrictLoopGamma sums forward.
	for l := L; l >= 2; l-- {
		lv := op.H.Level(l)
		childLv := op.H.Level(l - 1)
		for id, a := range adjLoop[l] {
			if a == 0 {
				continue
			}
			loop := lv.LoopByID(id)
			if loop == nil || len(loop.ChildLoops) == 0 {
				continue
			}
			var sumA float64
			for _, cid := range loop.ChildLoops {
				sumA += childLv.LoopByID(cid).Area
			}
			if sumA <= 0 {
				continue
			}
			for _, cid := range loop.ChildLoops {
				c := childLv.LoopByID(cid)
				adjLoop[l-1][cid] += a * (c.Area / sumA)
			}
		}
	}

	// level 1's loop-Γ is x itself (R's identity base case), so its
	// adjoint value lands directly in y. Base-loop rows are replaced by
	// the identity in MatVec, so each base loop also gets its own x[id]
	// (the identity row's transpose) on top of the other rows' adjoint sum.
	for i := range fine.Loops {
		id := fine.Loops[i].ID
		if op.BaseLoops[id] {
			y[id] += x[id]
		}
		y[id] += adjLoop[1][id]
	}
}

// VecNorm exposes gosl's la.VecNorm, the same norm gmres uses for its
// residuals, so the linear-algebra surface routes through the library the
// teacher uses (§DESIGN.md matop grounding).
func VecNorm(v []float64) float64 {
	return la.VecNorm(v)
}
