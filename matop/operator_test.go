// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package matop

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/vlsolver/config"
	"github.com/cpmech/vlsolver/geom"
	"github.com/cpmech/vlsolver/ilist"
)

// pairProvider is two coplanar unit quads sharing edge 2, agglomerating
// into a single level-2 loop.
type pairProvider struct{}

func (pairProvider) NumberOfLevels() int { return 2 }

func (pairProvider) Level(l int) *geom.Level {
	if l == 1 {
		return &geom.Level{
			Nodes: []geom.Node{
				{ID: 1, X: [3]float64{0, 0, 0}},
				{ID: 2, X: [3]float64{1, 0, 0}},
				{ID: 3, X: [3]float64{1, 1, 0}},
				{ID: 4, X: [3]float64{0, 1, 0}},
				{ID: 5, X: [3]float64{2, 0, 0}},
				{ID: 6, X: [3]float64{2, 1, 0}},
			},
			Edges: []geom.Edge{
				{ID: 1, N1: 1, N2: 2, LeftLoop: 1},
				{ID: 2, N1: 2, N2: 3, LeftLoop: 1, RightLoop: 2},
				{ID: 3, N1: 3, N2: 4, LeftLoop: 1},
				{ID: 4, N1: 4, N2: 1, LeftLoop: 1, TE: true},
				{ID: 5, N1: 2, N2: 5, LeftLoop: 2},
				{ID: 6, N1: 5, N2: 6, LeftLoop: 2},
				{ID: 7, N1: 6, N2: 3, LeftLoop: 2, TE: true},
			},
			Loops: []geom.Loop{
				{ID: 1, Edges: []int{1, 2, 3, 4}, Centroid: [3]float64{0.5, 0.5, 0},
					Normal: [3]float64{0, 0, 1}, Area: 1, CharLen: 1, ParentLoop: 1},
				{ID: 2, Edges: []int{2, 5, 6, 7}, Centroid: [3]float64{1.5, 0.5, 0},
					Normal: [3]float64{0, 0, 1}, Area: 1, CharLen: 1, ParentLoop: 1},
			},
		}
	}
	return &geom.Level{
		Nodes: []geom.Node{{}},
		Edges: []geom.Edge{{}},
		Loops: []geom.Loop{
			{ID: 1, Centroid: [3]float64{1, 0.5, 0}, Area: 2, ChildLoops: []int{1, 2}},
		},
	}
}

func buildOperator(tst *testing.T) *Operator {
	h, err := geom.NewHierarchy(pairProvider{})
	if err != nil {
		tst.Fatalf("NewHierarchy: %v", err)
	}
	cfg := config.Default()
	cfg.Model = config.VLM
	lists, err := ilist.Build(h, cfg)
	if err != nil {
		tst.Fatalf("ilist.Build: %v", err)
	}
	return &Operator{
		H:       h,
		Lists:   lists,
		Sheets:  nil,
		Cfg:     cfg,
		NLoops:  2,
		NGroups: 0,
	}
}

func Test_matvec_runs(tst *testing.T) {

	chk.PrintTitle("matvec_runs")

	op := buildOperator(tst)
	n := op.Len()
	x := make([]float64, n)
	y := make([]float64, n)
	x[1] = 1.0
	x[2] = -1.0
	op.MatVec(y, x)

	if y[1] == 0 && y[2] == 0 {
		tst.Fatalf("expected nonzero normal-velocity influence, got all zeros")
	}
}

func Test_matvec_zero_gamma_zero_velocity(tst *testing.T) {

	chk.PrintTitle("matvec_zero_gamma_zero_velocity")

	op := buildOperator(tst)
	n := op.Len()
	x := make([]float64, n)
	y := make([]float64, n)
	op.MatVec(y, x)
	for i, v := range y {
		if v != 0 {
			tst.Fatalf("y[%d] = %v, expected 0 for zero circulation input", i, v)
		}
	}
}

func Test_matvec_kelvin_row(tst *testing.T) {

	chk.PrintTitle("matvec_kelvin_row")

	op := buildOperator(tst)
	op.NGroups = 1
	op.Kelvin = []KelvinRow{{Lambda: 1.0, Loops: []int{1, 2}}}
	n := op.Len()
	x := make([]float64, n)
	y := make([]float64, n)
	x[1] = 2.0
	x[2] = 3.0
	op.MatVec(y, x)
	chk.Scalar(tst, "kelvin row", 1e-14, y[n-1], 5.0)
}
