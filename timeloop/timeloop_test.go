// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timeloop

import (
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/vlsolver/config"
	"github.com/cpmech/vlsolver/geom"
	"github.com/cpmech/vlsolver/ilist"
	"github.com/cpmech/vlsolver/matop"
	"github.com/cpmech/vlsolver/wake"
)

// pairProvider mirrors matop's fixture: two coplanar unit quads sharing
// edge 2, agglomerating into a single level-2 loop.
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
					Normal: [3]float64{0, 0, 1}, Area: 1, CharLen: 1, ParentLoop: 1, Component: 1},
				{ID: 2, Edges: []int{2, 5, 6, 7}, Centroid: [3]float64{1.5, 0.5, 0},
					Normal: [3]float64{0, 0, 1}, Area: 1, CharLen: 1, ParentLoop: 1, Component: 1},
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

// zeroField is a VelocityField/ExternalVelocity with no rotation, rotor,
// mirror or body-motion contribution and a constant free-stream (rhs.Build
// derives the free stream from cfg directly; wakeupdate needs it supplied
// here too since it has no config.FreeStream collaborator of its own).
type zeroField struct{ V [3]float64 }

func (zeroField) Rotation(x [3]float64) [3]float64     { return [3]float64{} }
func (zeroField) RotorDisks(x [3]float64) [3]float64   { return [3]float64{} }
func (zeroField) Mirror(x [3]float64) [3]float64       { return [3]float64{} }
func (zeroField) BodyMotion(x [3]float64) [3]float64   { return [3]float64{} }
func (f zeroField) FreeStream(x [3]float64) [3]float64 { return f.V }

func buildDriver(tst *testing.T) *Driver {
	h, err := geom.NewHierarchy(pairProvider{})
	if err != nil {
		tst.Fatalf("NewHierarchy: %v", err)
	}
	cfg := config.Default()
	cfg.Model = config.VLM
	cfg.FreeStream.Vref = 1.0
	cfg.FreeStream.Alpha = 0.05
	cfg.Solver.Restart = 2
	cfg.Solver.MaxCycles = 5
	cfg.Time.NumberOfTimeSteps = 2
	cfg.Time.DeltaT = 0.1
	cfg.Time.WakeIterations = 2

	lists, err := ilist.Build(h, cfg)
	if err != nil {
		tst.Fatalf("ilist.Build: %v", err)
	}
	op := &matop.Operator{H: h, Lists: lists, Cfg: cfg, NLoops: 2, NGroups: 0}

	return &Driver{
		H:         h,
		Cfg:       cfg,
		Op:        op,
		Field:     zeroField{V: [3]float64{1, 0, 0}},
		Wake:      wake.NewState(),
		BaseLoops: map[int]bool{},
	}
}

func Test_run_steady_records_one_row_per_wake_iteration(tst *testing.T) {

	chk.PrintTitle("run_steady_records_one_row_per_wake_iteration")

	d := buildDriver(tst)
	rows, err := d.RunSteady()
	if err != nil {
		tst.Fatalf("RunSteady: %v", err)
	}
	if len(rows) != d.Cfg.Time.WakeIterations {
		tst.Fatalf("got %d rows, want %d", len(rows), d.Cfg.Time.WakeIterations)
	}
	if len(d.History()) != len(rows) {
		tst.Fatalf("History() length mismatch: %d vs %d", len(d.History()), len(rows))
	}
}

func Test_run_unsteady_advances_the_configured_step_count(tst *testing.T) {

	chk.PrintTitle("run_unsteady_advances_the_configured_step_count")

	d := buildDriver(tst)
	rows, err := d.RunUnsteady(false)
	if err != nil {
		tst.Fatalf("RunUnsteady: %v", err)
	}
	if len(rows) != d.Cfg.Time.NumberOfTimeSteps {
		tst.Fatalf("got %d rows, want %d", len(rows), d.Cfg.Time.NumberOfTimeSteps)
	}
	chk.Scalar(tst, "last step time", 1e-14, rows[len(rows)-1].Time,
		float64(d.Cfg.Time.NumberOfTimeSteps)*d.Cfg.Time.DeltaT)
}

func Test_cancel_stops_before_the_next_step(tst *testing.T) {

	chk.PrintTitle("cancel_stops_before_the_next_step")

	d := buildDriver(tst)
	d.Cancel()
	rows, err := d.RunUnsteady(false)
	if err != nil {
		tst.Fatalf("RunUnsteady: %v", err)
	}
	if len(rows) != 0 {
		tst.Fatalf("expected no steps after Cancel, got %d", len(rows))
	}
}

func Test_detect_wake_junctions_wires_into_driver(tst *testing.T) {

	chk.PrintTitle("detect_wake_junctions_wires_into_driver")

	d := buildDriver(tst)
	shA := d.Wake.AddSheet()
	shB := d.Wake.AddSheet()
	shA.AddStrand(wake.NewStrand(1, 1, [3]float64{0.5, 0.5, 0}, [3]float64{1, 0, 0}, 1.0, true))
	shB.AddStrand(wake.NewStrand(1, 1, [3]float64{0.5, 0.5, 0}, [3]float64{1, 0, 0}, 1.0, true))

	if err := d.DetectWakeJunctions(1e-6); err != nil {
		tst.Fatalf("DetectWakeJunctions: %v", err)
	}
	if len(shA.CommonTE) != 1 {
		tst.Fatalf("expected one CommonTE pair, got %d", len(shA.CommonTE))
	}
}

func Test_gamma_history_shifts(tst *testing.T) {

	chk.PrintTitle("gamma_history_shifts")

	d := buildDriver(tst)
	d.Shift([]float64{1, 2})
	d.Shift([]float64{3, 4})
	chk.Vector(tst, "latest", 1e-14, d.GammaHistory[0], []float64{3, 4})
	chk.Vector(tst, "previous", 1e-14, d.GammaHistory[1], []float64{1, 2})
}
