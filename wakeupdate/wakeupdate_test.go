// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wakeupdate

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/vlsolver/config"
	"github.com/cpmech/vlsolver/wake"
)

type constExternal struct{ V [3]float64 }

func (c constExternal) FreeStream(x [3]float64) [3]float64 { return c.V }
func (c constExternal) Rotation(x [3]float64) [3]float64   { return [3]float64{} }
func (c constExternal) RotorDisks(x [3]float64) [3]float64 { return [3]float64{} }
func (c constExternal) Mirror(x [3]float64) [3]float64     { return [3]float64{} }

func Test_update_advects_with_freestream(tst *testing.T) {

	chk.PrintTitle("update_advects_with_freestream")

	st := wake.NewState()
	sh := st.AddSheet()
	s := wake.NewStrand(1, 2, [3]float64{0, 0, 0}, [3]float64{1, 0, 0}, 4.0, true)
	sh.AddStrand(s)

	cfg := config.Default()
	ext := constExternal{V: [3]float64{2, 0, 0}}

	before := s.Levels[0][0].Pos
	Update(st, nil, nil, ext, cfg, 0.5, false)
	after := s.Levels[0][0].Pos

	chk.Scalar(tst, "advected x", 1e-12, after[0]-before[0], 1.0) // 2 * 0.5
}

func Test_update_convergence_metric_is_neg_inf_when_static(tst *testing.T) {

	chk.PrintTitle("update_convergence_metric")

	st := wake.NewState()
	sh := st.AddSheet()
	s := wake.NewStrand(1, 1, [3]float64{0, 0, 0}, [3]float64{1, 0, 0}, 2.0, true)
	sh.AddStrand(s)

	cfg := config.Default()
	metric := Update(st, nil, nil, nil, cfg, 0.1, false)
	if !math.IsInf(metric, -1) {
		tst.Fatalf("expected -Inf metric for a wake with zero external/induced velocity, got %v", metric)
	}
}
