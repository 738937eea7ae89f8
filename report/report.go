// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package report writes the plain-text span-load, group, rotor and history
// reports, using gosl/io's buffered-write helpers the way the teacher's
// tools/GenVtu.go writes console and file output.
package report

import (
	"bytes"

	"github.com/cpmech/gosl/io"
)

// SpanStation is one span-load roll-up row.
type SpanStation struct {
	Index      int
	Y          float64
	Cl, Cd, Cm float64
}

// GroupTotal is one component-group roll-up row.
type GroupTotal struct {
	Name       string
	Fx, Fy, Fz float64
}

// RotorTotal is one rotor's integrated loads.
type RotorTotal struct {
	Name      string
	Thrust    float64
	Torque    float64
	PowerCoef float64
}

// HistoryRow is one time-step/iteration history entry.
type HistoryRow struct {
	Step        int
	Time        float64
	RhoOverRho0 float64
	MaxWakeDisp float64
}

// SpanLoadReport renders a span-load table as plain text.
func SpanLoadReport(rows []SpanStation) *bytes.Buffer {
	buf := new(bytes.Buffer)
	io.Ff(buf, "%6s %12s %10s %10s %10s\n", "idx", "y", "Cl", "Cd", "Cm")
	for _, r := range rows {
		io.Ff(buf, "%6d %12.6f %10.6f %10.6f %10.6f\n", r.Index, r.Y, r.Cl, r.Cd, r.Cm)
	}
	return buf
}

// GroupReport renders group force totals as plain text.
func GroupReport(rows []GroupTotal) *bytes.Buffer {
	buf := new(bytes.Buffer)
	io.Ff(buf, "%20s %12s %12s %12s\n", "group", "Fx", "Fy", "Fz")
	for _, r := range rows {
		io.Ff(buf, "%20s %12.6f %12.6f %12.6f\n", r.Name, r.Fx, r.Fy, r.Fz)
	}
	return buf
}

// RotorReport renders rotor totals as plain text.
func RotorReport(rows []RotorTotal) *bytes.Buffer {
	buf := new(bytes.Buffer)
	io.Ff(buf, "%20s %12s %12s %12s\n", "rotor", "thrust", "torque", "Cp")
	for _, r := range rows {
		io.Ff(buf, "%20s %12.6f %12.6f %12.6f\n", r.Name, r.Thrust, r.Torque, r.PowerCoef)
	}
	return buf
}

// HistoryReport renders the iteration/time-step history as an append-only
// table (§6 "history file"): one row per step.
func HistoryReport(rows []HistoryRow) *bytes.Buffer {
	buf := new(bytes.Buffer)
	io.Ff(buf, "%8s %12s %14s %14s\n", "step", "time", "rho/rho0", "max_wake_disp")
	for _, r := range rows {
		io.Ff(buf, "%8d %12.6f %14.6e %14.6e\n", r.Step, r.Time, r.RhoOverRho0, r.MaxWakeDisp)
	}
	return buf
}

// WriteReport writes a rendered report buffer to dirout/fnkey_label.txt and
// echoes a one-line confirmation to the console, mirroring the teacher's
// io.WriteFileV/io.Pf combination.
func WriteReport(dirout, fnkey, label string, buf *bytes.Buffer) {
	fn := io.Sf("%s/%s_%s.txt", dirout, fnkey, label)
	io.WriteFileV(fn, buf)
	io.Pf("report written: %s\n", fn)
}
