// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package wake implements the trailing-wake state machine (§3, §4.C): a
// set of vortex sheets, each owning trailing strands, each strand a
// subdivided polyline from a trailing-edge node to the far field with its
// own multi-level binary-agglomeration hierarchy.
package wake

import (
	"github.com/cpmech/vlsolver/config"
	"github.com/cpmech/vlsolver/errs"
)

// Segment is one sub-vortex of a strand at some agglomeration level.
type Segment struct {
	Pos [3]float64 // node position at the start of this sub-segment
	Vel [3]float64 // induced-velocity slot, filled by wakeupdate
	Gamma float64
}

// Strand is an ordered sequence of sub-vortex segments rooted at a
// trailing-edge node. K = 2^k segments at level 1; adjacent pairs
// agglomerate into one coarser segment per level.
type Strand struct {
	RootNode int // trailing-edge node id this strand is anchored to
	K        int // number of level-1 segments (2^k)

	// Levels[0] is the finest (K segments), Levels[last] has 1 segment.
	Levels [][]Segment

	// ActiveLen is the live prefix length at level 1. In steady mode it
	// equals K always; in unsteady mode it grows by one per time step.
	ActiveLen int
}

// NewStrand builds a strand with K=2^k segments, all initialized to a
// straight line from root in dir over the given total length.
func NewStrand(root int, k int, origin, dir [3]float64, length float64, steady bool) *Strand {
	K := 1 << uint(k)
	s := &Strand{RootNode: root, K: K}
	s.Levels = make([][]Segment, k+1)
	ds := length / float64(K)
	fine := make([]Segment, K)
	for i := 0; i < K; i++ {
		var p [3]float64
		for d := 0; d < 3; d++ {
			p[d] = origin[d] + dir[d]*ds*float64(i)
		}
		fine[i] = Segment{Pos: p}
	}
	s.Levels[0] = fine
	s.agglomerateAll()
	if steady {
		s.ActiveLen = K
	} else {
		s.ActiveLen = 1
	}
	return s
}

// agglomerateAll rebuilds every coarser level from Levels[0] by averaging
// adjacent pairs, per §4.C.
func (s *Strand) agglomerateAll() {
	for lvl := 1; lvl < len(s.Levels); lvl++ {
		below := s.Levels[lvl-1]
		n := (len(below) + 1) / 2
		cur := make([]Segment, n)
		for i := 0; i < n; i++ {
			a := below[2*i]
			var b Segment
			if 2*i+1 < len(below) {
				b = below[2*i+1]
			} else {
				b = a
			}
			cur[i] = Segment{
				Pos:   midpoint(a.Pos, b.Pos),
				Gamma: 0.5 * (a.Gamma + b.Gamma),
			}
		}
		s.Levels[lvl] = cur
	}
}

func midpoint(a, b [3]float64) [3]float64 {
	return [3]float64{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2, (a[2] + b[2]) / 2}
}

// At returns the segment addressed by (level, index), 0-based index within
// that level.
func (s *Strand) At(level, index int) (*Segment, error) {
	if level < 0 || level >= len(s.Levels) {
		return nil, errs.New(errs.BadHierarchy, "strand level %d out of range [0,%d)", level, len(s.Levels))
	}
	lv := s.Levels[level]
	if index < 0 || index >= len(lv) {
		return nil, errs.New(errs.BadHierarchy, "strand index %d out of range [0,%d) at level %d", index, len(lv), level)
	}
	return &lv[index], nil
}

// Reanchor re-anchors segment 0's position to the strand's owning
// trailing-edge node's current location, done once per time step before
// advection (§4.C).
func (s *Strand) Reanchor(nodePos [3]float64) {
	if len(s.Levels) == 0 || len(s.Levels[0]) == 0 {
		return
	}
	delta := [3]float64{
		nodePos[0] - s.Levels[0][0].Pos[0],
		nodePos[1] - s.Levels[0][0].Pos[1],
		nodePos[2] - s.Levels[0][0].Pos[2],
	}
	s.Levels[0][0].Pos = nodePos
	// propagate rigidly is wrong for a free wake; only segment 0 moves, the
	// advection step (wakeupdate) handles the rest. delta kept for callers
	// that want to know how far the root moved this step.
	_ = delta
}

// GrowActive advances the unsteady live prefix by one segment, per §4.C.
// No-op in steady mode (ActiveLen stays at K).
func (s *Strand) GrowActive() {
	if s.ActiveLen < s.K {
		s.ActiveLen++
	}
}

// FreeStreamTail returns true for a level-1 index at or beyond the live
// prefix: the tail is pinned to the free-stream direction in unsteady mode.
func (s *Strand) FreeStreamTail(index int) bool {
	return index >= s.ActiveLen
}

// WriteStrengthsFromGamma assigns every level-1 segment's Gamma from a
// chosen Γ snapshot per config.GammaMapping: Implicit uses latest, Explicit
// uses prior (shifted), All unions both.
func (s *Strand) WriteStrengthsFromGamma(latest, prior float64, mapping config.GammaMapping) {
	var g float64
	switch mapping {
	case config.Implicit:
		g = latest
	case config.Explicit:
		g = prior
	case config.All:
		g = latest + prior
	}
	for i := range s.Levels[0] {
		s.Levels[0][i].Gamma = g
	}
	s.agglomerateAll()
}
