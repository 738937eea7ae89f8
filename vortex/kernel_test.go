// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vortex

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/vlsolver/errs"
)

func Test_segment01(tst *testing.T) {

	chk.PrintTitle("segment01")

	// a unit-strength segment on the x-axis from (-1,0,0) to (1,0,0);
	// evaluate directly above its midpoint.
	s := Segment{P1: [3]float64{-1, 0, 0}, P2: [3]float64{1, 0, 0}, Gamma: 1}
	v, err := s.InducedVelocity([3]float64{0, 0, 1}, 0, Rankine)
	if err != nil {
		tst.Fatalf("unexpected error: %v", err)
	}
	// induced velocity must be purely in -y (right-hand rule, Gamma along +x)
	if math.Abs(v[0]) > 1e-12 || math.Abs(v[2]) > 1e-12 {
		tst.Fatalf("expected velocity confined to y: got %v", v)
	}
	if v[1] >= 0 {
		tst.Fatalf("expected negative y induced velocity above a +x-strength segment, got %v", v[1])
	}
}

func Test_segment_degenerate(tst *testing.T) {

	chk.PrintTitle("segment_degenerate")

	s := Segment{P1: [3]float64{1, 1, 1}, P2: [3]float64{1, 1, 1}, Gamma: 1}
	_, err := s.InducedVelocity([3]float64{0, 0, 0}, 0, Rankine)
	if !errs.Is(err, errs.InvalidGeometry) {
		tst.Fatalf("expected InvalidGeometry for a degenerate (P1==P2) segment, got %v", err)
	}
}

func Test_segment_core_damping(tst *testing.T) {

	chk.PrintTitle("segment_core_damping")

	s := Segment{P1: [3]float64{-1, 0, 0}, P2: [3]float64{1, 0, 0}, Gamma: 1}
	vNoCore, _ := s.InducedVelocity([3]float64{0, 0, 0.01}, 0, Rankine)
	vCore, _ := s.InducedVelocity([3]float64{0, 0, 0.01}, 1.0, Rankine)
	if math.Abs(vCore[1]) >= math.Abs(vNoCore[1]) {
		tst.Fatalf("core smoothing should reduce the near-field singular velocity: core=%v nocore=%v", vCore[1], vNoCore[1])
	}
}

func Test_supersonic_split(tst *testing.T) {

	chk.PrintTitle("supersonic_split")

	r := SupersonicPrincipalPart(2.0, 1.5, 1.0, 3.0)
	chk.Scalar(tst, "weights sum to one", 1e-14, r.WeightLeft+r.WeightRight, 1.0)
	if r.WeightLeft <= r.WeightRight {
		tst.Fatalf("the closer loop (distLeft=1.0) should receive the larger weight")
	}
}
