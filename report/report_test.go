// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package report

import (
	"strings"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_span_load_report_renders_header_and_row(tst *testing.T) {

	chk.PrintTitle("span_load_report_renders_header_and_row")

	buf := SpanLoadReport([]SpanStation{{Index: 0, Y: 1.5, Cl: 0.8, Cd: 0.02, Cm: -0.1}})
	s := buf.String()
	if !strings.Contains(s, "idx") || !strings.Contains(s, "Cl") {
		tst.Fatalf("missing header columns: %q", s)
	}
	if !strings.Contains(s, "1.500000") || !strings.Contains(s, "0.800000") {
		tst.Fatalf("missing data row: %q", s)
	}
}

func Test_group_report_renders_header_and_row(tst *testing.T) {

	chk.PrintTitle("group_report_renders_header_and_row")

	buf := GroupReport([]GroupTotal{{Name: "wing", Fx: 1.0, Fy: 2.0, Fz: 3.0}})
	s := buf.String()
	if !strings.Contains(s, "group") || !strings.Contains(s, "Fx") {
		tst.Fatalf("missing header columns: %q", s)
	}
	if !strings.Contains(s, "wing") || !strings.Contains(s, "3.000000") {
		tst.Fatalf("missing data row: %q", s)
	}
}

func Test_rotor_report_renders_header_and_row(tst *testing.T) {

	chk.PrintTitle("rotor_report_renders_header_and_row")

	buf := RotorReport([]RotorTotal{{Name: "main", Thrust: 100.0, Torque: 50.0, PowerCoef: 0.01}})
	s := buf.String()
	if !strings.Contains(s, "rotor") || !strings.Contains(s, "thrust") {
		tst.Fatalf("missing header columns: %q", s)
	}
	if !strings.Contains(s, "main") || !strings.Contains(s, "100.000000") {
		tst.Fatalf("missing data row: %q", s)
	}
}

func Test_history_report_renders_header_and_row(tst *testing.T) {

	chk.PrintTitle("history_report_renders_header_and_row")

	buf := HistoryReport([]HistoryRow{{Step: 3, Time: 0.6, RhoOverRho0: 1e-5, MaxWakeDisp: 2e-3}})
	s := buf.String()
	if !strings.Contains(s, "step") || !strings.Contains(s, "rho/rho0") {
		tst.Fatalf("missing header columns: %q", s)
	}
	if !strings.Contains(s, "3") || !strings.Contains(s, "0.600000") {
		tst.Fatalf("missing data row: %q", s)
	}
}
