// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package acoustic implements the §9 design-note separation: a noise-export
// state machine kept out of the linear solver, consuming a bounded history
// of solver snapshots and interpolating the per-loop loading at an arbitrary
// (generally retarded) query time. The PSU-WopWop binary export format
// itself is out of scope; this package only prepares its input.
package acoustic

import (
	"github.com/cpmech/vlsolver/errs"
)

// Snapshot is one time step's worth of per-loop loading, the minimum a
// noise exporter needs: centroid position, velocity and surface pressure
// coefficient, indexed by loop id (1-based, parallel to geom.Level.Loops).
type Snapshot struct {
	Time  float64
	Pos   [][3]float64 // loop centroid, body frame
	Vel   [][3]float64 // loop centroid velocity
	Cp    []float64    // per-loop pressure coefficient
	DCpDt []float64    // per-loop unsteady Cp rate, for thickness/loading noise
}

// History is a fixed-depth ring of the most recent snapshots (§9 "periodic
// buffer swaps"), oldest entries evicted once Depth is exceeded. A query
// time older than the oldest retained snapshot cannot be interpolated and
// raises WakeOutOfDomain.
type History struct {
	Depth int
	buf   []Snapshot // time-ordered, oldest first
}

// NewHistory returns an empty history retaining at most depth snapshots.
func NewHistory(depth int) *History {
	return &History{Depth: depth}
}

// Add appends a new snapshot, evicting the oldest once Depth is exceeded.
// Snapshots must arrive in non-decreasing Time order.
func (h *History) Add(s Snapshot) {
	h.buf = append(h.buf, s)
	if len(h.buf) > h.Depth {
		h.buf = h.buf[len(h.buf)-h.Depth:]
	}
}

// Oldest and Newest report the retained time window, or (0, false) if empty.
func (h *History) Oldest() (float64, bool) {
	if len(h.buf) == 0 {
		return 0, false
	}
	return h.buf[0].Time, true
}

func (h *History) Newest() (float64, bool) {
	if len(h.buf) == 0 {
		return 0, false
	}
	return h.buf[len(h.buf)-1].Time, true
}

// AcousticInterpolator consumes a growing sequence of solver snapshots and
// answers point-in-time loading queries for a noise exporter, decoupled
// from the linear solver per the §9 design note.
type AcousticInterpolator struct {
	hist *History
}

// NewAcousticInterpolator wraps a History of the given retained depth.
func NewAcousticInterpolator(depth int) *AcousticInterpolator {
	return &AcousticInterpolator{hist: NewHistory(depth)}
}

// Feed appends the next solver snapshot.
func (a *AcousticInterpolator) Feed(s Snapshot) {
	a.hist.Add(s)
}

// At linearly interpolates the retained snapshots at query time t (e.g. a
// wake node's retarded emission time). Returns WakeOutOfDomain if t falls
// outside the retained window, either because it precedes the oldest
// buffered snapshot (already evicted) or because it has not arrived yet.
func (a *AcousticInterpolator) At(t float64) (Snapshot, error) {
	n := len(a.hist.buf)
	if n == 0 {
		return Snapshot{}, errs.New(errs.WakeOutOfDomain, "acoustic history is empty")
	}
	oldest, _ := a.hist.Oldest()
	newest, _ := a.hist.Newest()
	if t < oldest || t > newest {
		return Snapshot{}, errs.New(errs.WakeOutOfDomain,
			"query time %g exceeds retained history window [%g, %g]", t, oldest, newest)
	}
	if n == 1 {
		return a.hist.buf[0], nil
	}
	lo := 0
	hi := n - 1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if a.hist.buf[mid].Time <= t {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lerp(a.hist.buf[lo], a.hist.buf[hi], t), nil
}

// lerp linearly interpolates between two snapshots bracketing t. Snapshots
// must describe the same geometry (same loop count, same ordering).
func lerp(a, b Snapshot, t float64) Snapshot {
	if b.Time == a.Time {
		return a
	}
	w := (t - a.Time) / (b.Time - a.Time)
	n := len(a.Cp)
	out := Snapshot{
		Time:  t,
		Pos:   make([][3]float64, n),
		Vel:   make([][3]float64, n),
		Cp:    make([]float64, n),
		DCpDt: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		for d := 0; d < 3; d++ {
			out.Pos[i][d] = a.Pos[i][d] + w*(b.Pos[i][d]-a.Pos[i][d])
			out.Vel[i][d] = a.Vel[i][d] + w*(b.Vel[i][d]-a.Vel[i][d])
		}
		out.Cp[i] = a.Cp[i] + w*(b.Cp[i]-a.Cp[i])
		out.DCpDt[i] = a.DCpDt[i] + w*(b.DCpDt[i]-a.DCpDt[i])
	}
	return out
}

// RetardedTime returns the emission time a sound wave must have left the
// source at, to arrive at the observer at t, for a source at distance d
// from the observer (Doppler-free uniform-medium approximation: t_e =
// t_obs − d/c). speedOfSound is the ambient value; callers in non-standard
// atmospheres supply their own.
func RetardedTime(tObs, distance, speedOfSound float64) float64 {
	return tObs - distance/speedOfSound
}
