// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package acoustic

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/vlsolver/errs"
)

func mkSnap(t, cp float64) Snapshot {
	return Snapshot{
		Time:  t,
		Pos:   [][3]float64{{0, 0, 0}},
		Vel:   [][3]float64{{0, 0, 0}},
		Cp:    []float64{cp},
		DCpDt: []float64{0},
	}
}

func Test_history_evicts_oldest_past_depth(tst *testing.T) {

	chk.PrintTitle("history_evicts_oldest_past_depth")

	h := NewHistory(3)
	h.Add(mkSnap(0.0, 0))
	h.Add(mkSnap(0.1, 1))
	h.Add(mkSnap(0.2, 2))
	h.Add(mkSnap(0.3, 3))
	oldest, ok := h.Oldest()
	if !ok || oldest != 0.1 {
		tst.Fatalf("expected oldest=0.1, got %g (ok=%v)", oldest, ok)
	}
}

func Test_interpolator_linear_between_snapshots(tst *testing.T) {

	chk.PrintTitle("interpolator_linear_between_snapshots")

	a := NewAcousticInterpolator(10)
	a.Feed(mkSnap(0.0, 0.0))
	a.Feed(mkSnap(1.0, 2.0))
	s, err := a.At(0.5)
	if err != nil {
		tst.Fatalf("At: %v", err)
	}
	chk.Scalar(tst, "Cp at midpoint", 1e-14, s.Cp[0], 1.0)
}

func Test_interpolator_out_of_window_is_wake_out_of_domain(tst *testing.T) {

	chk.PrintTitle("interpolator_out_of_window_is_wake_out_of_domain")

	a := NewAcousticInterpolator(2)
	a.Feed(mkSnap(0.0, 0.0))
	a.Feed(mkSnap(0.1, 1.0))
	a.Feed(mkSnap(0.2, 2.0)) // evicts t=0.0
	_, err := a.At(0.05)
	if err == nil {
		tst.Fatalf("expected WakeOutOfDomain, got nil")
	}
	if !errs.Is(err, errs.WakeOutOfDomain) {
		tst.Fatalf("expected WakeOutOfDomain kind, got %v", err)
	}
}

func Test_retarded_time(tst *testing.T) {

	chk.PrintTitle("retarded_time")

	te := RetardedTime(1.0, 340.0, 340.0)
	chk.Scalar(tst, "retarded time", 1e-14, te, 0.0)
}
