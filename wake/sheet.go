// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wake

import "math"

// CommonTE pairs two strands (possibly on different sheets) that coincide
// spatially at their trailing-edge node, e.g. a wing-body junction. After
// the averaging sweep in wakeupdate, both strands carry identical
// velocities at every sub-segment (inv. 4).
type CommonTE struct {
	SheetA, StrandA int
	SheetB, StrandB int
}

// Sheet is all strands leaving one contiguous trailing edge.
type Sheet struct {
	ID       int
	Strands  []*Strand
	BBoxMin  [3]float64
	BBoxMax  [3]float64
	Periodic bool // e.g. nacelle lips: first and last strand are adjacent
	CommonTE []CommonTE
}

// NewSheet creates an empty sheet with an inverted bounding box ready for
// Extend.
func NewSheet(id int) *Sheet {
	return &Sheet{
		ID:      id,
		BBoxMin: [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)},
		BBoxMax: [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)},
	}
}

// AddStrand appends a strand and extends the sheet's bounding box to cover
// every level-1 segment of it (ActiveLen is not consulted).
func (sh *Sheet) AddStrand(s *Strand) {
	sh.Strands = append(sh.Strands, s)
	for _, seg := range s.Levels[0] {
		sh.extend(seg.Pos)
	}
}

func (sh *Sheet) extend(p [3]float64) {
	for d := 0; d < 3; d++ {
		if p[d] < sh.BBoxMin[d] {
			sh.BBoxMin[d] = p[d]
		}
		if p[d] > sh.BBoxMax[d] {
			sh.BBoxMax[d] = p[d]
		}
	}
}

// RecomputeBBox rebuilds the bounding box from the current strand
// positions; called after advection moves nodes.
func (sh *Sheet) RecomputeBBox() {
	sh.BBoxMin = [3]float64{math.Inf(1), math.Inf(1), math.Inf(1)}
	sh.BBoxMax = [3]float64{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, s := range sh.Strands {
		for _, seg := range s.Levels[0] {
			sh.extend(seg.Pos)
		}
	}
}

// InBBox reports whether X lies within the sheet's axis-aligned bounding
// box; wakeupdate uses it to decide which sheets contribute wake-on-wake
// velocity at a point.
func (sh *Sheet) InBBox(x [3]float64) bool {
	for d := 0; d < 3; d++ {
		if x[d] < sh.BBoxMin[d] || x[d] > sh.BBoxMax[d] {
			return false
		}
	}
	return true
}

// State is the top-level wake container: the set of all vortex sheets.
type State struct {
	Sheets []*Sheet
}

// NewState returns an empty wake state.
func NewState() *State { return &State{} }

// AddSheet appends a new sheet and returns it.
func (st *State) AddSheet() *Sheet {
	sh := NewSheet(len(st.Sheets) + 1)
	st.Sheets = append(st.Sheets, sh)
	return sh
}

// AverageAllCommonTE performs the cross-sheet CommonTE velocity-averaging
// sweep described in §4.I step 6.
func (st *State) AverageAllCommonTE() {
	for _, sh := range st.Sheets {
		for _, pair := range sh.CommonTE {
			shA := st.Sheets[pair.SheetA-1]
			shB := st.Sheets[pair.SheetB-1]
			a := shA.Strands[pair.StrandA]
			b := shB.Strands[pair.StrandB]
			n := len(a.Levels[0])
			if len(b.Levels[0]) < n {
				n = len(b.Levels[0])
			}
			for i := 0; i < n; i++ {
				var avg [3]float64
				for d := 0; d < 3; d++ {
					avg[d] = 0.5 * (a.Levels[0][i].Vel[d] + b.Levels[0][i].Vel[d])
				}
				a.Levels[0][i].Vel = avg
				b.Levels[0][i].Vel = avg
			}
		}
	}
}
