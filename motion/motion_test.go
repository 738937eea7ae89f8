// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package motion

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_quaternion_rotate_90deg_about_z(tst *testing.T) {

	chk.PrintTitle("quaternion_rotate_90deg_about_z")

	q := FromAxisAngle([3]float64{0, 0, 1}, math.Pi/2)
	v := q.Rotate([3]float64{1, 0, 0})
	chk.Scalar(tst, "x", 1e-12, v[0], 0.0)
	chk.Scalar(tst, "y", 1e-12, v[1], 1.0)
	chk.Scalar(tst, "z", 1e-12, v[2], 0.0)
}

func Test_group_advance_pose_accumulates_rotation(tst *testing.T) {

	chk.PrintTitle("group_advance_pose_accumulates_rotation")

	g := NewGroup(1, 3)
	g.Omega = [3]float64{0, 0, math.Pi}
	for i := 0; i < 10; i++ {
		g.AdvancePose(0.1) // total angle: pi rad
	}
	v := g.Q.Rotate([3]float64{1, 0, 0})
	chk.Scalar(tst, "x after pi rotation", 1e-6, v[0], -1.0)
}

func Test_rolling_average_force(tst *testing.T) {

	chk.PrintTitle("rolling_average_force")

	g := NewGroup(1, 2)
	g.RecordForce([3]float64{2, 0, 0})
	g.RecordForce([3]float64{4, 0, 0})
	avg := g.RollingAverageForce()
	chk.Scalar(tst, "avg x", 1e-14, avg[0], 3.0)
}

func Test_reflection_set_mirror_points(tst *testing.T) {

	chk.PrintTitle("reflection_set_mirror_points")

	r := ReflectionSet{SymmetryY: true, GroundZ: true}
	pts := r.MirrorPoints([3]float64{1, 2, 3})
	chk.IntAssert(len(pts), 3)
}
