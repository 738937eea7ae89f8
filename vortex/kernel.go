// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vortex implements the induced-velocity kernels for a straight
// vortex segment and a trailing vortex strand sub-segment (§4.A): subsonic
// Biot-Savart with a Rankine or Lamb-Oseen smoothing core, and the
// supersonic generalized principal-part downwash for Mach >= 1.
package vortex

import (
	"math"

	"github.com/cpmech/gosl/utl"

	"github.com/cpmech/vlsolver/errs"
)

// CoreModel selects the vortex-core smoothing law.
type CoreModel int

const (
	// Rankine core: tangential velocity scales linearly inside the core.
	Rankine CoreModel = iota
	// LambOseen core: tangential velocity follows the viscous-diffusion
	// profile, smoother than Rankine near r=0.
	LambOseen
)

// Segment is a straight vortex filament from P1 to P2 with strength Gamma.
type Segment struct {
	P1, P2 [3]float64
	Gamma  float64
}

// sub subtracts two 3-vectors.
func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// InducedVelocity returns the velocity induced by s at point X using
// Biot-Savart with a smoothing core of radius sigma. core selects the
// smoothing law applied to the tangential component.
//
// Returns errs.InvalidGeometry when P1==P2 (§4.A), since a zero-length
// segment has no well-defined line direction to project onto.
func (s Segment) InducedVelocity(X [3]float64, sigma float64, core CoreModel) (v [3]float64, err error) {
	r1 := sub(X, s.P1)
	r2 := sub(X, s.P2)
	r0 := sub(s.P2, s.P1)

	len0 := math.Sqrt(utl.Dot3d(r0[:], r0[:]))
	if len0 < 1e-14 {
		return v, errs.New(errs.InvalidGeometry, "vortex segment has coincident endpoints P1=P2=%v", s.P1)
	}

	var cross [3]float64
	utl.Cross3d(cross[:], r1[:], r2[:])
	crossNormSq := utl.Dot3d(cross[:], cross[:])

	len1 := math.Sqrt(utl.Dot3d(r1[:], r1[:]))
	len2 := math.Sqrt(utl.Dot3d(r2[:], r2[:]))
	if len1 < 1e-12 || len2 < 1e-12 || crossNormSq < 1e-30 {
		return v, nil // on the filament line; zero contribution by convention
	}

	// perpendicular distance from X to the (infinite) line through P1,P2
	r := math.Sqrt(crossNormSq) / len0

	cosA := utl.Dot3d(r0[:], r1[:]) / (len0 * len1)
	cosB := utl.Dot3d(r0[:], r2[:]) / (len0 * len2)

	// classical Biot-Savart magnitude for a finite segment:
	//   K = Gamma/(4*pi*r) * (cosA - cosB)
	K := s.Gamma / (4 * math.Pi * r) * (cosA - cosB)

	smooth := coreFactor(r, sigma, core)
	K *= smooth

	unit := [3]float64{cross[0] / math.Sqrt(crossNormSq), cross[1] / math.Sqrt(crossNormSq), cross[2] / math.Sqrt(crossNormSq)}
	v = [3]float64{K * unit[0], K * unit[1], K * unit[2]}
	return v, nil
}

// coreFactor returns the tangential-component multiplier r²/(r²+σ²) for
// Rankine, or the Lamb-Oseen viscous-core analogue 1-exp(-1.25643·r²/σ²)
// (the constant puts the peak tangential velocity at r = σ).
func coreFactor(r, sigma float64, core CoreModel) float64 {
	if sigma <= 0 {
		return 1
	}
	switch core {
	case LambOseen:
		return 1 - math.Exp(-1.25643*r*r/(sigma*sigma))
	default: // Rankine
		return r * r / (r*r + sigma*sigma)
	}
}

// SupersonicResult holds a segment's generalized principal-part downwash
// Ws and the documented weights used to split it between the segment's two
// adjacent loops (§4.A, Mach>=1 edges whose downwind loop lies in the Mach
// cone).
type SupersonicResult struct {
	Ws           float64
	WeightLeft   float64
	WeightRight  float64
}

// SupersonicPrincipalPart computes the principal-part downwash for a
// segment whose downwind loop lies in the Mach cone of the observer,
// splitting it between the segment's two loops by inverse distance to each
// loop's centroid (documented weighting, mirroring the inverse-squared
// weighting force.go uses for Kutta-Jukowski force splitting).
func SupersonicPrincipalPart(edgeGamma float64, beta float64, distLeft, distRight float64) SupersonicResult {
	ws := edgeGamma / (2 * math.Pi * beta)
	wl := 1.0
	wr := 1.0
	if distLeft > 1e-12 {
		wl = 1 / distLeft
	}
	if distRight > 1e-12 {
		wr = 1 / distRight
	}
	sum := wl + wr
	if sum < 1e-300 {
		sum = 1
	}
	return SupersonicResult{Ws: ws, WeightLeft: wl / sum, WeightRight: wr / sum}
}
