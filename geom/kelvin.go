// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import "math"

// KelvinGroup is an integer label assigned to a set of connected surface
// loops by a flood-fill across non-trailing edges (§3). The base region is
// the group whose average outward normal points most downstream relative
// to the free-stream direction (OQ1: generalized from the original's
// hard-coded x-axis comparison).
type KelvinGroup struct {
	ID       int
	Loops    []int // level-1 loop ids in this group
	AvgNorm  [3]float64
	IsBase   bool
}

// KelvinGroups floods the finest-level loop graph across non-trailing
// edges, producing one group per connected surface (panel mode only). The
// group whose average outward normal is most aligned with the free-stream
// direction freeDir is marked IsBase and its loops have their circulation
// pinned by rhs.Build.
func KelvinGroups(fine *Level, freeDir [3]float64) []*KelvinGroup {
	n := len(fine.Loops)
	visited := make([]bool, n+1)
	var groups []*KelvinGroup

	// adjacency via shared non-trailing edges
	adj := make([][]int, n+1)
	for i := range fine.Edges {
		e := &fine.Edges[i]
		if e.TE {
			continue
		}
		if e.LeftLoop != 0 && e.RightLoop != 0 {
			adj[e.LeftLoop] = append(adj[e.LeftLoop], e.RightLoop)
			adj[e.RightLoop] = append(adj[e.RightLoop], e.LeftLoop)
		}
	}

	for start := 1; start <= n; start++ {
		if visited[start] {
			continue
		}
		g := &KelvinGroup{ID: len(groups) + 1}
		queue := []int{start}
		visited[start] = true
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			g.Loops = append(g.Loops, cur)
			for _, nb := range adj[cur] {
				if !visited[nb] {
					visited[nb] = true
					queue = append(queue, nb)
				}
			}
		}
		var sx, sy, sz float64
		for _, lid := range g.Loops {
			loop := fine.LoopByID(lid)
			sx += loop.Normal[0]
			sy += loop.Normal[1]
			sz += loop.Normal[2]
			loop.KelvinGroup = g.ID
		}
		count := float64(len(g.Loops))
		g.AvgNorm = [3]float64{sx / count, sy / count, sz / count}
		groups = append(groups, g)
	}

	// base region: most downstream, i.e. average normal most aligned with
	// the free-stream direction
	best := -1
	bestDot := math.Inf(-1)
	for i, g := range groups {
		dot := g.AvgNorm[0]*freeDir[0] + g.AvgNorm[1]*freeDir[1] + g.AvgNorm[2]*freeDir[2]
		if dot > bestDot {
			bestDot = dot
			best = i
		}
	}
	if best >= 0 {
		groups[best].IsBase = true
	}
	return groups
}
