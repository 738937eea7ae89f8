// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wakeupdate implements the §4.I wake-velocity accumulation,
// advection and circulation roll-up step, called once per GMRES solve
// (steady sub-iteration) or once per unsteady time step.
package wakeupdate

import (
	"math"

	"github.com/cpmech/vlsolver/concur"
	"github.com/cpmech/vlsolver/config"
	"github.com/cpmech/vlsolver/geom"
	"github.com/cpmech/vlsolver/ilist"
	"github.com/cpmech/vlsolver/vortex"
	"github.com/cpmech/vlsolver/wake"
)

// ExternalVelocity supplies free-stream, rotation and rotor-disk
// contributions at a point (the same collaborator rhs.VelocityField uses).
type ExternalVelocity interface {
	FreeStream(x [3]float64) [3]float64
	Rotation(x [3]float64) [3]float64
	RotorDisks(x [3]float64) [3]float64
	Mirror(x [3]float64) [3]float64
}

// Update runs one full wake-velocity-and-advection pass (§4.I steps 1-7)
// and returns the convergence metric: log10(max per-segment displacement).
func Update(st *wake.State, h *geom.Hierarchy, surfaceLists *ilist.Result, ext ExternalVelocity, cfg *config.Config, dt float64, steady bool) float64 {
	accumulateVelocities(st, h, surfaceLists, ext, cfg)
	forceTailsToFreeStream(st, ext)
	st.AverageAllCommonTE()
	maxDisp := advect(st, dt, steady, cfg)
	rollUp(st, cfg)
	if maxDisp <= 0 {
		return math.Inf(-1)
	}
	return math.Log10(maxDisp)
}

// accumulateVelocities implements steps 1-4: zero, add external fields, add
// surface-induced (with near-wall damping), add wake-on-wake induced.
func accumulateVelocities(st *wake.State, h *geom.Hierarchy, surfaceLists *ilist.Result, ext ExternalVelocity, cfg *config.Config) {
	for _, sh := range st.Sheets {
		// each strand's segments are private to that strand (seg.Vel is
		// written only here), so strands within a sheet split across
		// workers without any shared mutable state (owner-computes, §5).
		concur.Range(len(sh.Strands), func(lo, hi int) {
			for si := lo; si < hi; si++ {
				strand := sh.Strands[si]
				for lvl := range strand.Levels {
					for i := range strand.Levels[lvl] {
						seg := &strand.Levels[lvl][i]
						var v [3]float64
						if ext != nil {
							v = add(v, ext.FreeStream(seg.Pos))
							v = add(v, ext.Rotation(seg.Pos))
							v = add(v, ext.RotorDisks(seg.Pos))
							v = add(v, ext.Mirror(seg.Pos))
						}
						v = add(v, surfaceInduced(seg.Pos, h, surfaceLists, cfg))
						v = add(v, wakeOnWakeInduced(seg.Pos, st, cfg))
						seg.Vel = v
					}
				}
			}
		})
	}
}

// surfaceInduced sums Biot-Savart contributions from the admissible surface
// edges at a wake point (near-wall damping, §4.I step 3). When the wake point
// lies within one edge length of a source edge's midpoint, that edge's whole
// induced velocity is scaled by 1-exp(-r/edgeLength); the normal component is
// not treated separately from the tangential ones. The VLM branch applies
// this damping only while cfg.Wake.DampingVLM is set (OQ3), which
// config.Default turns on.
func surfaceInduced(x [3]float64, h *geom.Hierarchy, lists *ilist.Result, cfg *config.Config) [3]float64 {
	if lists == nil {
		return [3]float64{}
	}
	var total [3]float64
	for _, tl := range lists.Level1 {
		for _, entry := range tl.Entries {
			lv := h.Level(entry.Level)
			for _, eid := range entry.Sources {
				e := lv.EdgeByID(eid)
				if e == nil {
					continue
				}
				n1 := lv.NodeByID(e.N1)
				n2 := lv.NodeByID(e.N2)
				seg := vortex.Segment{P1: n1.X, P2: n2.X, Gamma: e.Gamma}
				v, err := seg.InducedVelocity(x, cfg.Wake.CoreRadius, coreModel(cfg))
				if err != nil {
					continue
				}
				if cfg.Model == config.VLM && !cfg.Wake.DampingVLM {
					total = add(total, v)
					continue
				}
				total = add(total, dampNearWall(v, x, n1.X, n2.X, cfg))
			}
		}
	}
	return total
}

func dampNearWall(v, x, p1, p2 [3]float64, cfg *config.Config) [3]float64 {
	mid := [3]float64{(p1[0] + p2[0]) / 2, (p1[1] + p2[1]) / 2, (p1[2] + p2[2]) / 2}
	r := dist(x, mid)
	panelLen := math.Max(dist(p1, p2), 1e-9)
	if r >= panelLen {
		return v
	}
	falloff := 1 - math.Exp(-r/panelLen)
	return [3]float64{v[0] * falloff, v[1] * falloff, v[2] * falloff}
}

func wakeOnWakeInduced(x [3]float64, st *wake.State, cfg *config.Config) [3]float64 {
	var total [3]float64
	for _, sh := range st.Sheets {
		if !sh.InBBox(x) {
			continue
		}
		for _, strand := range sh.Strands {
			segs := strand.Levels[0]
			for i := 0; i+1 < len(segs); i++ {
				if i >= strand.ActiveLen {
					break
				}
				s := vortex.Segment{P1: segs[i].Pos, P2: segs[i+1].Pos, Gamma: segs[i].Gamma}
				v, err := s.InducedVelocity(x, cfg.Wake.CoreRadius, coreModel(cfg))
				if err == nil {
					total = add(total, v)
				}
			}
		}
	}
	return total
}

// forceTailsToFreeStream implements step 5: the last level-1 segment of
// every strand (Levels[0][K-1], whatever ActiveLen is) is forced back to the
// free-stream velocity.
func forceTailsToFreeStream(st *wake.State, ext ExternalVelocity) {
	for _, sh := range st.Sheets {
		for _, strand := range sh.Strands {
			n := len(strand.Levels[0])
			if n == 0 {
				continue
			}
			last := &strand.Levels[0][n-1]
			if ext != nil {
				last.Vel = ext.FreeStream(last.Pos)
			} else {
				last.Vel = [3]float64{}
			}
		}
	}
}

// advect moves every level-1 segment (ActiveLen is not consulted) by v*dt
// (unsteady) or v*relaxSteady (steady pseudo-step), returning the maximum
// per-segment displacement.
func advect(st *wake.State, dt float64, steady bool, cfg *config.Config) float64 {
	step := dt
	if steady {
		step = cfg.Wake.RelaxSteady
	}
	maxDisp := 0.0
	for _, sh := range st.Sheets {
		for _, strand := range sh.Strands {
			for i := range strand.Levels[0] {
				seg := &strand.Levels[0][i]
				d := [3]float64{seg.Vel[0] * step, seg.Vel[1] * step, seg.Vel[2] * step}
				seg.Pos = add(seg.Pos, d)
				disp := math.Sqrt(d[0]*d[0] + d[1]*d[1] + d[2]*d[2])
				if disp > maxDisp {
					maxDisp = disp
				}
			}
		}
		sh.RecomputeBBox()
	}
	return maxDisp
}

// rollUp re-agglomerates every strand's coarser levels after advection
// (positions and Γ averaged from the level below). It does not write strand
// strengths: callers supply the latest/prior Γ per strand's root trailing
// edge via Strand.WriteStrengthsFromGamma.
func rollUp(st *wake.State, cfg *config.Config) {
	for _, sh := range st.Sheets {
		for _, strand := range sh.Strands {
			reagglomerate(strand)
		}
	}
}

func reagglomerate(s *wake.Strand) {
	for lvl := 1; lvl < len(s.Levels); lvl++ {
		below := s.Levels[lvl-1]
		for i := range s.Levels[lvl] {
			a, b := below[2*i], below[2*i+1]
			s.Levels[lvl][i].Pos = [3]float64{
				(a.Pos[0] + b.Pos[0]) / 2,
				(a.Pos[1] + b.Pos[1]) / 2,
				(a.Pos[2] + b.Pos[2]) / 2,
			}
			s.Levels[lvl][i].Gamma = 0.5 * (a.Gamma + b.Gamma)
		}
	}
}

func coreModel(cfg *config.Config) vortex.CoreModel {
	if cfg.Wake.UseLambOseen {
		return vortex.LambOseen
	}
	return vortex.Rankine
}

func add(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func dist(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
