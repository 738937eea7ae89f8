// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package motion tracks rigid-body pose for component groups (wings,
// rotors, control surfaces) and the external rotor-disk/reflection
// collaborators (§6). Commanded schedules are gosl fun.Func callbacks, the
// same abstraction the teacher uses for time-varying gravity/source terms.
package motion

import (
	"math"

	"github.com/cpmech/gosl/fun"
)

// Quaternion is a unit rotation quaternion (w, x, y, z).
type Quaternion struct {
	W, X, Y, Z float64
}

// Identity returns the identity rotation.
func Identity() Quaternion { return Quaternion{W: 1} }

// FromAxisAngle builds a unit quaternion for a rotation of angle radians
// about the given (not necessarily unit) axis.
func FromAxisAngle(axis [3]float64, angle float64) Quaternion {
	n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if n < 1e-14 {
		return Identity()
	}
	h := angle / 2
	s := math.Sin(h) / n
	return Quaternion{W: math.Cos(h), X: axis[0] * s, Y: axis[1] * s, Z: axis[2] * s}
}

// Rotate applies the quaternion's rotation to v.
func (q Quaternion) Rotate(v [3]float64) [3]float64 {
	// v' = q v q^-1, expanded via the standard quaternion-vector formula.
	u := [3]float64{q.X, q.Y, q.Z}
	uv := cross(u, v)
	uuv := cross(u, uv)
	return [3]float64{
		v[0] + 2*(q.W*uv[0]+uuv[0]),
		v[1] + 2*(q.W*uv[1]+uuv[1]),
		v[2] + 2*(q.W*uv[2]+uuv[2]),
	}
}

// Inverse returns the conjugate (equal to the inverse for a unit quaternion).
func (q Quaternion) Inverse() Quaternion { return Quaternion{W: q.W, X: -q.X, Y: -q.Y, Z: -q.Z} }

// Mul composes two rotations: (q1 * q2) applies q2 first, then q1.
func (q1 Quaternion) Mul(q2 Quaternion) Quaternion {
	return Quaternion{
		W: q1.W*q2.W - q1.X*q2.X - q1.Y*q2.Y - q1.Z*q2.Z,
		X: q1.W*q2.X + q1.X*q2.W + q1.Y*q2.Z - q1.Z*q2.Y,
		Y: q1.W*q2.Y - q1.X*q2.Z + q1.Y*q2.W + q1.Z*q2.X,
		Z: q1.W*q2.Z + q1.X*q2.Y - q1.Y*q2.X + q1.Z*q2.W,
	}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

// Group is one rigid component group's kinematic state (§6/§4.K): pose
// Q(t), angular rate Omega, origin O, and an optional commanded-angle
// schedule (e.g. a control-surface hinge or a rotor's azimuth).
type Group struct {
	ID        int
	Q         Quaternion  // current orientation
	Omega     [3]float64  // body-frame angular rate
	Origin    [3]float64  // current translation
	IsRotor   bool
	Commanded fun.Func // commanded angle schedule, theta(t); nil if none

	// ForceHistory is a ring buffer of recent force samples used for the
	// rolling average over the slowest rotor's period (§4.K).
	ForceHistory []([3]float64)
	historyIdx   int
}

// NewGroup returns a Group at rest, identity orientation, with a rolling
// force-history buffer of the given depth.
func NewGroup(id, historyDepth int) *Group {
	return &Group{ID: id, Q: Identity(), ForceHistory: make([][3]float64, historyDepth)}
}

// CommandedAngle evaluates the commanded schedule at time t, or 0 if none.
func (g *Group) CommandedAngle(t float64) float64 {
	if g.Commanded == nil {
		return 0
	}
	return g.Commanded.F(t, nil)
}

// AdvancePose integrates the quaternion forward by dt using the current
// body-frame angular rate (first-order exponential-map update, adequate
// since dt is small relative to the rotor period by construction).
func (g *Group) AdvancePose(dt float64) {
	angle := math.Sqrt(g.Omega[0]*g.Omega[0]+g.Omega[1]*g.Omega[1]+g.Omega[2]*g.Omega[2]) * dt
	dq := FromAxisAngle(g.Omega, angle)
	g.Q = g.Q.Mul(dq)
	normalize(&g.Q)
}

func normalize(q *Quaternion) {
	n := math.Sqrt(q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z)
	if n < 1e-14 {
		return
	}
	q.W /= n
	q.X /= n
	q.Y /= n
	q.Z /= n
}

// RecordForce pushes a per-step force sample into the rolling-average ring.
func (g *Group) RecordForce(f [3]float64) {
	if len(g.ForceHistory) == 0 {
		return
	}
	g.ForceHistory[g.historyIdx%len(g.ForceHistory)] = f
	g.historyIdx++
}

// RollingAverageForce returns the mean of the stored samples.
func (g *Group) RollingAverageForce() [3]float64 {
	n := len(g.ForceHistory)
	if g.historyIdx < n {
		n = g.historyIdx
	}
	if n == 0 {
		return [3]float64{}
	}
	var sum [3]float64
	for _, f := range g.ForceHistory[:n] {
		sum[0] += f[0]
		sum[1] += f[1]
		sum[2] += f[2]
	}
	return [3]float64{sum[0] / float64(n), sum[1] / float64(n), sum[2] / float64(n)}
}

// RotorDisk is the external collaborator (§6) supplying induced velocity
// from a modeled rotor disk and a lifecycle pose callback.
type RotorDisk interface {
	Velocity(x [3]float64) (u, v, w, dCp, vmag float64)
	UpdatePose(t float64, q Quaternion)
}

// ReflectionSet bundles the symmetry-plane-Y and ground-plane-Z mirror
// transforms used throughout rhs/matop/wakeupdate (supplemented feature:
// the spec names the reflections inline in §4.E/§4.H/§4.I, this type gives
// callers one place to compute them consistently).
type ReflectionSet struct {
	SymmetryY bool
	GroundZ   bool
}

// MirrorPoints returns every mirrored copy of x implied by the active
// planes (0, 1 or 3 points, excluding x itself).
func (r ReflectionSet) MirrorPoints(x [3]float64) [][3]float64 {
	var out [][3]float64
	if r.SymmetryY {
		out = append(out, [3]float64{x[0], -x[1], x[2]})
	}
	if r.GroundZ {
		out = append(out, [3]float64{x[0], x[1], -x[2]})
	}
	if r.SymmetryY && r.GroundZ {
		out = append(out, [3]float64{x[0], -x[1], -x[2]})
	}
	return out
}
