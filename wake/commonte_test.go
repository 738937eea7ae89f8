// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wake

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/vlsolver/geom"
)

type junctionProvider struct{}

func (junctionProvider) NumberOfLevels() int { return 2 }

func (junctionProvider) Level(l int) *geom.Level {
	return &geom.Level{
		Nodes: []geom.Node{
			{ID: 1, X: [3]float64{0, 0, 0}},
			{ID: 2, X: [3]float64{0, 0, 0}}, // coincides with node 1: wing-body junction
			{ID: 3, X: [3]float64{0, 5, 0}}, // far away: no common TE
		},
	}
}

func Test_detect_common_te(tst *testing.T) {

	chk.PrintTitle("detect_common_te")

	h, err := geom.NewHierarchy(junctionProvider{})
	if err != nil {
		tst.Fatalf("NewHierarchy: %v", err)
	}

	st := NewState()
	shWing := st.AddSheet()
	shBody := st.AddSheet()
	shOther := st.AddSheet()
	shWing.AddStrand(NewStrand(1, 1, [3]float64{0, 0, 0}, [3]float64{1, 0, 0}, 1.0, true))
	shBody.AddStrand(NewStrand(2, 1, [3]float64{0, 0, 0}, [3]float64{1, 0, 0}, 1.0, true))
	shOther.AddStrand(NewStrand(3, 1, [3]float64{0, 5, 0}, [3]float64{1, 0, 0}, 1.0, true))

	if err := DetectCommonTE(h, st, 1e-6); err != nil {
		tst.Fatalf("DetectCommonTE: %v", err)
	}

	if len(shWing.CommonTE) != 1 {
		tst.Fatalf("expected exactly one CommonTE pair on the wing sheet, got %d", len(shWing.CommonTE))
	}
	pair := shWing.CommonTE[0]
	chk.IntAssert(pair.SheetA, 1)
	chk.IntAssert(pair.SheetB, 2)
	if len(shOther.CommonTE) != 0 {
		tst.Fatalf("the isolated strand must not be paired, got %d", len(shOther.CommonTE))
	}
}
