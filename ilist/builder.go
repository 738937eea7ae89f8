// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package ilist builds, for each target (a panel centroid or a wake
// point), the minimal set of source entities that can influence it: fine
// edges plus coarsened-level edges collapsed to the coarsest admissible
// level, subject to a far-field admissibility test and two near-field
// vetoes (§4.D). This is the centerpiece of the solver: it is what makes
// the O(N^2) vortex-to-panel interaction cost near-linear.
package ilist

import (
	"math"
	"sort"

	"github.com/cpmech/vlsolver/config"
	"github.com/cpmech/vlsolver/geom"
)

// Entry is one (level, sorted-source-list) record attributed to a target
// or, during the backward sweep, to a coarse-loop node acting as a group
// of targets (§3 "Interaction entry").
type Entry struct {
	Level   int
	Sources []int // edge ids, sorted ascending (inv. 5)
}

// TargetList is the realized per-target (or per-node) set of entries after
// the backward sweep has promoted shared sources to coarser nodes and
// removed them from this target's own list.
type TargetList struct {
	Entries []Entry
}

// SourceKey identifies one (level, edgeID) pair inside the sweep's working
// sets.
type SourceKey struct {
	Level, EdgeID int
}

// Result holds the per-level-1-target realized entries plus, for every
// coarser level visited by the backward sweep, the entries promoted to
// that level's loop nodes. matop.Operator walks both: a target's own
// Level1[id] entries, plus every ancestor's Promoted[level][ancestorID]
// entries (step 4, "prolongate velocities back down to level 1").
type Result struct {
	Level1   map[int]*TargetList           // level-1 loop id -> realized entries
	Promoted map[int]map[int]*TargetList   // level -> loop id -> promoted entries
}

// Mode selects whether the list is rebuilt every call (relative motion
// present) or built once (no relative motion).
type Mode int

const (
	// FixedLoops: all components at rest relative to each other; built once.
	FixedLoops Mode = iota
	// MovingLoops: relative motion present; rebuilt when motion exceeds a
	// threshold.
	MovingLoops
)

// Build constructs the interaction lists for every level-1 loop centroid
// as a target, sourcing from the same loop hierarchy (panel-on-panel
// influence). cfg.Model selects the near-field veto appropriate to VLM or
// panel mode.
func Build(h *geom.Hierarchy, cfg *config.Config) (*Result, error) {
	L := h.NumLevels()
	fine := h.Fine()

	res := &Result{
		Level1:   make(map[int]*TargetList, len(fine.Loops)),
		Promoted: make(map[int]map[int]*TargetList, L),
	}
	for l := 1; l <= L; l++ {
		res.Promoted[l] = make(map[int]*TargetList)
	}

	farFactor := cfg.FarFactorEffective()

	// raw per-target descent --------------------------------------------------
	working := make(map[int]map[SourceKey]bool, len(fine.Loops)) // level-1 loopID -> source set
	for i := range fine.Loops {
		target := &fine.Loops[i]
		set := make(map[SourceKey]bool)
		descend(h, L, target.ID, target.Centroid, farFactor, cfg, set)
		working[target.ID] = set
	}

	// backward sweep, level by level from fine to coarse ----------------------
	// nodeEntries[level][loopID] holds the working set still attributed to
	// that node after promotions at lower levels have removed shared items.
	nodeEntries := make(map[int]map[int]map[SourceKey]bool, L)
	nodeEntries[1] = working

	for l := 2; l <= L; l++ {
		lv := h.Level(l)
		below := nodeEntries[l-1]
		cur := make(map[int]map[SourceKey]bool, len(lv.Loops))

		for i := range lv.Loops {
			parent := &lv.Loops[i]
			if len(parent.ChildLoops) == 0 {
				continue
			}
			// gather children sets present in `below`
			var childSets []map[SourceKey]bool
			var childCentroids [][3]float64
			for _, cid := range parent.ChildLoops {
				if s, ok := below[cid]; ok {
					childSets = append(childSets, s)
					childCentroids = append(childCentroids, h.Level(l-1).LoopByID(cid).Centroid)
				}
			}
			if len(childSets) < 2 {
				continue // nothing to promote with only one child present
			}

			// intersection of all children's sets, exploiting the sorted
			// invariant is implicit here via map intersection (O(sum|c_i|))
			common := intersectAll(childSets)

			maxChildToParent := 0.0
			for _, cc := range childCentroids {
				d := dist(cc, parent.Centroid)
				if d > maxChildToParent {
					maxChildToParent = d
				}
			}

			promoted := make(map[SourceKey]bool)
			for key := range common {
				srcLoop := sourceOwningLoop(h, key)
				minDist := math.Inf(1)
				for _, cc := range childCentroids {
					d := dist(cc, srcLoop)
					if d < minDist {
						minDist = d
					}
				}
				if minDist >= farFactor*maxChildToParent {
					promoted[key] = true
				}
			}
			if len(promoted) == 0 {
				continue
			}
			for key := range promoted {
				for _, s := range childSets {
					delete(s, key)
				}
			}
			cur[parent.ID] = promoted
		}
		nodeEntries[l] = cur
	}

	// materialize results -------------------------------------------------------
	for lid, set := range nodeEntries[1] {
		res.Level1[lid] = toTargetList(set)
	}
	for l := 2; l <= L; l++ {
		for lid, set := range nodeEntries[l] {
			res.Promoted[l][lid] = toTargetList(set)
		}
	}
	return res, nil
}

// toTargetList groups a flat (level,edgeID) set into sorted per-level
// Entry records (inv. 5).
func toTargetList(set map[SourceKey]bool) *TargetList {
	byLevel := make(map[int][]int)
	for k := range set {
		byLevel[k.Level] = append(byLevel[k.Level], k.EdgeID)
	}
	tl := &TargetList{}
	levels := make([]int, 0, len(byLevel))
	for l := range byLevel {
		levels = append(levels, l)
	}
	sort.Ints(levels)
	for _, l := range levels {
		ids := byLevel[l]
		sort.Ints(ids)
		tl.Entries = append(tl.Entries, Entry{Level: l, Sources: ids})
	}
	return tl
}

func intersectAll(sets []map[SourceKey]bool) map[SourceKey]bool {
	if len(sets) == 0 {
		return nil
	}
	out := make(map[SourceKey]bool)
	for k := range sets[0] {
		inAll := true
		for _, s := range sets[1:] {
			if !s[k] {
				inAll = false
				break
			}
		}
		if inAll {
			out[k] = true
		}
	}
	return out
}

func sourceOwningLoop(h *geom.Hierarchy, k SourceKey) [3]float64 {
	e := h.Level(k.Level).EdgeByID(k.EdgeID)
	var loopID int
	if e.LeftLoop != 0 {
		loopID = e.LeftLoop
	} else {
		loopID = e.RightLoop
	}
	if loopID == 0 {
		// no owning loop (pure wake edge); fall back to edge midpoint via
		// its nodes.
		n1 := h.Level(k.Level).NodeByID(e.N1)
		n2 := h.Level(k.Level).NodeByID(e.N2)
		return midpoint3(n1.X, n2.X)
	}
	return h.Level(k.Level).LoopByID(loopID).Centroid
}

func midpoint3(a, b [3]float64) [3]float64 {
	return [3]float64{(a[0] + b[0]) / 2, (a[1] + b[1]) / 2, (a[2] + b[2]) / 2}
}

func dist(a, b [3]float64) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// descend walks the source hierarchy top-down from the coarsest level,
// admitting loop Q at the coarsest level where it passes the far-field
// test, otherwise recursing into its children; a level-1 loop that is
// reached is always admitted, since there is no finer level to descend to.
// Found sources are recorded in set as (level, edgeID) keys.
func descend(h *geom.Hierarchy, level int, targetLoopID int, x [3]float64, farFactor float64, cfg *config.Config, set map[SourceKey]bool) {
	lv := h.Level(level)
	for i := range lv.Loops {
		q := &lv.Loops[i]
		if level == 1 && q.ID == targetLoopID {
			continue // never a source for itself
		}
		if level == 1 || admissible(x, q, farFactor) {
			for _, eid := range q.Edges {
				if vetoed(h, level, targetLoopID, eid, cfg) {
					continue
				}
				set[SourceKey{Level: level, EdgeID: eid}] = true
			}
			continue
		}
		if len(q.ChildLoops) == 0 {
			continue
		}
		descendInto(h, level-1, q.ChildLoops, targetLoopID, x, farFactor, cfg, set)
	}
}

// descendInto restricts the descent to a specific set of loop ids at
// `level` (the children of an inadmissible coarse loop), recursing further
// where needed.
func descendInto(h *geom.Hierarchy, level int, loopIDs []int, targetLoopID int, x [3]float64, farFactor float64, cfg *config.Config, set map[SourceKey]bool) {
	lv := h.Level(level)
	for _, id := range loopIDs {
		if level == 1 && id == targetLoopID {
			continue
		}
		q := lv.LoopByID(id)
		if level == 1 || admissible(x, q, farFactor) {
			for _, eid := range q.Edges {
				if vetoed(h, level, targetLoopID, eid, cfg) {
					continue
				}
				set[SourceKey{Level: level, EdgeID: eid}] = true
			}
			continue
		}
		if level == 1 || len(q.ChildLoops) == 0 {
			continue
		}
		descendInto(h, level-1, q.ChildLoops, targetLoopID, x, farFactor, cfg, set)
	}
}

// admissible implements §4.D's far-field test: a candidate loop Q is
// admissible for observer X when
//
//	FarFactor * (Q.CharLen + Q.CentroidOffset) <= |X - Q.Centroid|
//
// AND X is outside Q's (approximated, spherical) bounding region. A zero
// characteristic length forces an unconditional descend (never admit a
// degenerate coarse loop).
func admissible(x [3]float64, q *geom.Loop, farFactor float64) bool {
	if q.CharLen == 0 {
		return false
	}
	if math.IsInf(farFactor, 1) {
		return false // supersonic: force all sources to the finest level
	}
	d := dist(x, q.Centroid)
	threshold := farFactor * (q.CharLen + q.CentroidOffset)
	if d < threshold {
		return false
	}
	if d < q.CharLen {
		return false // inside the approximated bounding region
	}
	return true
}

// vetoed implements the two documented near-field exclusions (§4.D). It is
// intentionally conservative: a veto only fires when both the geometric
// and analysis-mode conditions are met, never on ambiguous input.
func vetoed(h *geom.Hierarchy, level, targetLoopID int, sourceEdgeID int, cfg *config.Config) bool {
	if targetLoopID == 0 || level != 1 {
		return false
	}
	fine := h.Fine()
	target := fine.LoopByID(targetLoopID)
	e := fine.EdgeByID(sourceEdgeID)
	var srcLoopID int
	if e.LeftLoop != 0 {
		srcLoopID = e.LeftLoop
	} else {
		srcLoopID = e.RightLoop
	}
	if srcLoopID == 0 || srcLoopID == targetLoopID {
		return false
	}
	src := fine.LoopByID(srcLoopID)

	switch cfg.Model {
	case config.VLM:
		// same-surface near-coplanar panels, different component
		if target.Component == src.Component {
			return false
		}
		length := math.Sqrt(src.Area)
		if length <= 0 {
			return false
		}
		d := dist(target.Centroid, src.Centroid)
		if d/length > 2 {
			return false
		}
		vec := [3]float64{target.Centroid[0] - src.Centroid[0], target.Centroid[1] - src.Centroid[1], target.Centroid[2] - src.Centroid[2]}
		dotN := math.Abs(vec[0]*src.Normal[0] + vec[1]*src.Normal[1] + vec[2]*src.Normal[2])
		return dotN <= math.Sqrt(src.Area)
	case config.Panel:
		// opposite-facing panels within 0.25x panel reference length
		refLen := math.Sqrt(target.Area)
		d := dist(target.Centroid, src.Centroid)
		if d > 0.25*refLen {
			return false
		}
		dotNN := target.Normal[0]*src.Normal[0] + target.Normal[1]*src.Normal[1] + target.Normal[2]*src.Normal[2]
		return dotNN < 0
	}
	return false
}

// Coverage returns the set of (level,edgeID) keys realized for target
// loopID, unioning its own Level1 entry with every ancestor's promoted
// entry (used by matop for prolongation and by tests to check inv. 5's
// "union of children covers parent" coverage property, §8#4).
func (r *Result) Coverage(h *geom.Hierarchy, loopID int) map[SourceKey]bool {
	out := make(map[SourceKey]bool)
	if tl, ok := r.Level1[loopID]; ok {
		addEntries(out, tl)
	}
	level, id := 1, loopID
	for {
		loop := h.Level(level).LoopByID(id)
		if loop == nil || loop.ParentLoop == 0 {
			break
		}
		level, id = level+1, loop.ParentLoop
		if tl, ok := r.Promoted[level][id]; ok {
			addEntries(out, tl)
		}
	}
	return out
}

func addEntries(out map[SourceKey]bool, tl *TargetList) {
	if tl == nil {
		return
	}
	for _, e := range tl.Entries {
		for _, id := range e.Sources {
			out[SourceKey{Level: e.Level, EdgeID: id}] = true
		}
	}
}
