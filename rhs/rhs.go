// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rhs assembles the right-hand side vector b for the surface
// linear system (§4.H), generalizing gofem's essential/natural boundary
// condition split (fem/essenbcs.go) to the free-stream/rotor/mirror/
// body-motion velocity sum dotted with each panel normal.
package rhs

import (
	"math"
	"sync"

	"github.com/cpmech/gosl/rnd"

	"github.com/cpmech/vlsolver/config"
	"github.com/cpmech/vlsolver/geom"
)

var gustSeedOnce sync.Once

// VelocityField supplies the non-free-stream velocity contributions at a
// point: rigid-body rotation, rotor-disk induced flow and mirror-plane
// reflections. A nil field contributes zero.
type VelocityField interface {
	Rotation(x [3]float64) [3]float64
	RotorDisks(x [3]float64) [3]float64
	Mirror(x [3]float64) [3]float64
	BodyMotion(x [3]float64) [3]float64
}

// HingeRotation rotates a control-surface loop's normal by its commanded
// deflection before the dot product is taken.
type HingeRotation func(loopID int, normal [3]float64) [3]float64

// Build fills b (length N_loops + N_kelvin_groups + 1) per §4.H: for every
// level-1 loop, b[i] = -n_i . (V_inf + V_rot + V_rotor + V_mirror -
// V_bodyMotion); base-region loops get b[i] = 0 (their matrix row is
// already replaced by the identity elsewhere, in the operator/preconditioner
// factoring step); Kelvin rows get b[N+g] = 0.
func Build(b []float64, h *geom.Hierarchy, cfg *config.Config, field VelocityField, hinge HingeRotation, baseLoops map[int]bool, nLoops, nGroups int) {
	for i := range b {
		b[i] = 0
	}
	vinf := freeStreamVector(cfg)
	fine := h.Fine()
	for i := range fine.Loops {
		loop := &fine.Loops[i]
		if baseLoops[loop.ID] {
			b[loop.ID] = 0
			continue
		}
		n := loop.Normal
		if hinge != nil {
			n = hinge(loop.ID, n)
		}
		v := vinf
		if field != nil {
			v = add3(v, field.Rotation(loop.Centroid))
			v = add3(v, field.RotorDisks(loop.Centroid))
			v = add3(v, field.Mirror(loop.Centroid))
			v = sub3(v, field.BodyMotion(loop.Centroid))
		}
		b[loop.ID] = -dot3(n, v)
	}
	for g := 0; g < nGroups; g++ {
		b[nLoops+1+g] = 0
	}
}

func freeStreamVector(cfg *config.Config) [3]float64 {
	d := cfg.FreeStream.Dir
	if d == ([3]float64{}) {
		d = alphaBetaDirection(cfg.FreeStream.Alpha, cfg.FreeStream.Beta)
	}
	v := cfg.FreeStream.Vref
	vec := [3]float64{d[0] * v, d[1] * v, d[2] * v}
	if cfg.FreeStream.Gust.Enabled {
		vec = add3(vec, gustPerturbation(d, cfg.FreeStream.Gust))
	}
	return vec
}

// gustPerturbation draws a bounded-uniform perturbation of the free-stream
// speed along its own direction, using gosl/rnd the way inp.Simulation
// seeds its adjustable random variables (rnd.Init once, then draws per
// call). Re-seeding happens at most once per process so repeated Build
// calls within one run do not collapse onto a single fixed sample.
func gustPerturbation(dir [3]float64, g config.GustParams) [3]float64 {
	if g.Sigma <= 0 {
		return [3]float64{}
	}
	gustSeedOnce.Do(func() { rnd.Init(g.Seed) })
	mag := rnd.Float64(-g.Sigma, g.Sigma)
	return [3]float64{dir[0] * mag, dir[1] * mag, dir[2] * mag}
}

// alphaBetaDirection derives a unit free-stream direction from angle of
// attack and sideslip using the aircraft-body convention (x forward, y
// right, z up).
func alphaBetaDirection(alpha, beta float64) [3]float64 {
	ca, sa := math.Cos(alpha), math.Sin(alpha)
	cb, sb := math.Cos(beta), math.Sin(beta)
	return [3]float64{ca * cb, sb, sa * cb}
}

func add3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

func sub3(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}
