// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom holds the arena-allocated grid hierarchy: dense 1-based
// integer identifiers for nodes, edges and loops across L refinement
// levels, plus the read-only parent/child links a GeometryProvider supplies
// (§3, §4.B). Index 0 is the sentinel for "no entity"/"boundary".
package geom

// SurfaceType tags a Loop's physical role.
type SurfaceType int

const (
	// LiftingWing is a thin, zero-thickness VLM surface.
	LiftingWing SurfaceType = iota
	// ThickBody is a closed panel-mode surface.
	ThickBody
	// Generic is any other surface (e.g. a wake-adjacent fairing).
	Generic
)

// Node is a 3D position; on the finest grid it also carries the
// trailing-edge circulation jump used by the Kutta condition (inv. 3).
type Node struct {
	ID     int
	X      [3]float64
	DGamma float64 // trailing-edge circulation jump, finest grid only
}

// Edge is an ordered pair of nodes with left/right loop references (0 =
// boundary) and cross-level child/parent links.
type Edge struct {
	ID        int
	N1, N2    int // node ids
	LeftLoop  int // 0 = boundary
	RightLoop int // 0 = boundary
	TE        bool
	Gamma     float64
	Fx, Fy, Fz float64 // working forces, §4.J

	ChildEdge  int // finer level, 0 if this is level 1
	ParentEdge int // coarser level, 0 if this is the coarsest level
}

// Loop is a 3- or 4-sided panel carrying one circulation value.
type Loop struct {
	ID       int
	Edges    []int // 3 or 4 edge ids, ordered
	Centroid [3]float64
	Normal   [3]float64
	Area     float64
	CharLen  float64 // characteristic length, used by ilist admissibility
	CentroidOffset float64

	Surface   SurfaceType
	Component int // component-group id
	SpanIndex int // span-station index

	Gamma float64

	ChildLoops []int // finer level
	ParentLoop int    // coarser level, 0 if coarsest

	KelvinGroup int // assigned by KelvinGroups, panel mode only
}

// Level holds one refinement level's arrays. Level 1 is the solve grid,
// level L the coarsest; level 0 (if present) is the user-facing render
// mesh and is not touched by the solver.
type Level struct {
	Nodes []Node
	Edges []Edge
	Loops []Loop
}

// NodeByID returns a pointer into the level's Nodes slice, or nil for id<=0.
func (lv *Level) NodeByID(id int) *Node {
	if id <= 0 || id > len(lv.Nodes) {
		return nil
	}
	return &lv.Nodes[id-1]
}

// EdgeByID returns a pointer into the level's Edges slice, or nil for id<=0.
func (lv *Level) EdgeByID(id int) *Edge {
	if id <= 0 || id > len(lv.Edges) {
		return nil
	}
	return &lv.Edges[id-1]
}

// LoopByID returns a pointer into the level's Loops slice, or nil for id<=0.
func (lv *Level) LoopByID(id int) *Loop {
	if id <= 0 || id > len(lv.Loops) {
		return nil
	}
	return &lv.Loops[id-1]
}
