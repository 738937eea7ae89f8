// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wake

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/vlsolver/config"
)

func Test_strand_agglomeration(tst *testing.T) {

	chk.PrintTitle("strand_agglomeration")

	s := NewStrand(1, 2, [3]float64{0, 0, 0}, [3]float64{1, 0, 0}, 4.0, true)
	chk.IntAssert(s.K, 4)
	chk.IntAssert(len(s.Levels), 3)
	chk.IntAssert(len(s.Levels[0]), 4)
	chk.IntAssert(len(s.Levels[1]), 2)
	chk.IntAssert(len(s.Levels[2]), 1)
	chk.IntAssert(s.ActiveLen, 4)
}

func Test_strand_unsteady_growth(tst *testing.T) {

	chk.PrintTitle("strand_unsteady_growth")

	s := NewStrand(1, 2, [3]float64{0, 0, 0}, [3]float64{1, 0, 0}, 4.0, false)
	chk.IntAssert(s.ActiveLen, 1)
	for i := 0; i < 5; i++ {
		s.GrowActive()
	}
	chk.IntAssert(s.ActiveLen, s.K)
	if !s.FreeStreamTail(s.K) {
		tst.Fatalf("index at K should be free-stream tail")
	}
}

func Test_write_strengths(tst *testing.T) {

	chk.PrintTitle("write_strengths")

	s := NewStrand(1, 1, [3]float64{0, 0, 0}, [3]float64{1, 0, 0}, 2.0, true)
	s.WriteStrengthsFromGamma(2.0, 1.0, config.All)
	chk.Scalar(tst, "Gamma", 1e-14, s.Levels[0][0].Gamma, 3.0)
}

func Test_common_te_average(tst *testing.T) {

	chk.PrintTitle("common_te_average")

	st := NewState()
	sh1 := st.AddSheet()
	sh2 := st.AddSheet()
	s1 := NewStrand(1, 1, [3]float64{0, 0, 0}, [3]float64{1, 0, 0}, 2.0, true)
	s2 := NewStrand(2, 1, [3]float64{0, 1, 0}, [3]float64{1, 0, 0}, 2.0, true)
	s1.Levels[0][0].Vel = [3]float64{1, 0, 0}
	s2.Levels[0][0].Vel = [3]float64{3, 0, 0}
	sh1.AddStrand(s1)
	sh2.AddStrand(s2)
	sh1.CommonTE = []CommonTE{{SheetA: 1, StrandA: 0, SheetB: 2, StrandB: 0}}
	st.AverageAllCommonTE()
	chk.Scalar(tst, "averaged vx", 1e-14, s1.Levels[0][0].Vel[0], 2.0)
	chk.Scalar(tst, "averaged vx", 1e-14, s2.Levels[0][0].Vel[0], 2.0)
}
