// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"github.com/cpmech/vlsolver/errs"
)

// Provider is the external collaborator (§6 "IGeometry") that supplies
// nodes, loops, edges and the precomputed sequence of coarsened grid
// levels with parent/child loop links. It must remain stable for the
// solver's lifetime; the solver only reads through it.
type Provider interface {
	// NumberOfLevels returns L, the number of refinement levels (level 1 is
	// the solve grid, level L the coarsest).
	NumberOfLevels() int
	// Level returns the read-only arrays for one level (1-based).
	Level(level int) *Level
}

// Hierarchy is the solver's read-only view over a Provider (§4.B). It is
// built once at setup and never mutated thereafter, except for the Gamma
// fields on every level's loops/edges, which the solver updates each
// iteration (RestrictLoopGamma/UpdateEdgeGamma).
type Hierarchy struct {
	levels []*Level // index 0 = level 1
}

// NewHierarchy validates and wraps a Provider.
func NewHierarchy(p Provider) (h *Hierarchy, err error) {
	L := p.NumberOfLevels()
	if L < 1 {
		return nil, errs.New(errs.BadGeometry, "geometry provider must supply at least one level, got %d", L)
	}
	h = &Hierarchy{levels: make([]*Level, L)}
	for l := 1; l <= L; l++ {
		lv := p.Level(l)
		if lv == nil {
			return nil, errs.New(errs.BadGeometry, "geometry provider returned nil level %d", l)
		}
		h.levels[l-1] = lv
	}
	if err = h.checkAcyclic(); err != nil {
		return nil, err
	}
	return
}

// NumLevels returns L.
func (h *Hierarchy) NumLevels() int { return len(h.levels) }

// Level returns the 1-based level (1 = finest, L = coarsest).
func (h *Hierarchy) Level(l int) *Level {
	if l < 1 || l > len(h.levels) {
		return nil
	}
	return h.levels[l-1]
}

// Fine returns the solve-grid (level 1) arrays.
func (h *Hierarchy) Fine() *Level { return h.levels[0] }

// Coarsest returns level L's arrays.
func (h *Hierarchy) Coarsest() *Level { return h.levels[len(h.levels)-1] }

// checkAcyclic walks parent links from every loop on every level and fails
// with BadHierarchy if a cycle is found, or if the coarsest level is the
// only level (the preconditioner refuses to build in that case, §7).
func (h *Hierarchy) checkAcyclic() error {
	if len(h.levels) == 1 {
		return errs.New(errs.BadHierarchy, "coarsest level is the only level; preconditioner cannot build a coarse partition")
	}
	for l := 1; l <= len(h.levels); l++ {
		lv := h.Level(l)
		for i := range lv.Loops {
			seen := map[[2]int]bool{}
			level, idx := l, i+1
			for {
				key := [2]int{level, idx}
				if seen[key] {
					return errs.New(errs.BadHierarchy, "cycle detected in parent/child loop links starting at level=%d loop=%d", l, i+1)
				}
				seen[key] = true
				loop := h.Level(level).LoopByID(idx)
				if loop.ParentLoop == 0 {
					break
				}
				level, idx = level+1, loop.ParentLoop
				if level > len(h.levels) {
					return errs.New(errs.BadHierarchy, "parent link escapes coarsest level at level=%d loop=%d", l, i+1)
				}
			}
		}
	}
	return nil
}

// RestrictLoopGamma propagates level-1 loop circulations up to every
// coarser level via an area-weighted mean of children (§4.E step 1).
func (h *Hierarchy) RestrictLoopGamma() {
	for l := 2; l <= len(h.levels); l++ {
		lv := h.Level(l)
		for i := range lv.Loops {
			loop := &lv.Loops[i]
			if len(loop.ChildLoops) == 0 {
				continue
			}
			var sumGA, sumA float64
			childLv := h.Level(l - 1)
			for _, cid := range loop.ChildLoops {
				c := childLv.LoopByID(cid)
				sumGA += c.Gamma * c.Area
				sumA += c.Area
			}
			if sumA > 0 {
				loop.Gamma = sumGA / sumA
			}
		}
	}
}

// UpdateEdgeGamma recomputes every level's edge circulation from its
// adjacent loops' Gamma (inv. 1: Edge.Gamma = LeftLoop.Gamma -
// RightLoop.Gamma), treating a boundary (loop id 0) as Gamma=0. Callers run
// this after RestrictLoopGamma so the Biot-Savart accumulation sources
// (which read Edge.Gamma, not Loop.Gamma) see the circulation the mat-vec
// just restricted at every level, not just level 1.
func (h *Hierarchy) UpdateEdgeGamma() {
	for l := 1; l <= len(h.levels); l++ {
		lv := h.Level(l)
		for i := range lv.Edges {
			e := &lv.Edges[i]
			var left, right float64
			if loop := lv.LoopByID(e.LeftLoop); loop != nil {
				left = loop.Gamma
			}
			if loop := lv.LoopByID(e.RightLoop); loop != nil {
				right = loop.Gamma
			}
			e.Gamma = left - right
		}
	}
}
