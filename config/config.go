// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config holds the environment-free settings that drive one run of
// the solver: free-stream conditions, solver tolerances, preconditioner and
// wake parameters, and output paths. Nothing in this package reads the
// process environment; every value must be supplied by the caller (e.g. by
// loading a JSON file, as cmd/vlsolver does).
package config

import (
	"encoding/json"
	"math"

	"github.com/cpmech/gosl/chk"

	"github.com/cpmech/vlsolver/errs"
)

// AnalysisType selects the discretization used for the surface.
type AnalysisType int

const (
	// VLM is the vortex-lattice (thin lifting-surface) analysis type.
	VLM AnalysisType = iota
	// Panel is the thick-body source/doublet-free panel analysis type.
	Panel
)

// PreconditionerKind selects the §4.F block preconditioner variant.
type PreconditionerKind int

const (
	// BlockLU partitions fine loops into ~500-loop blocks and factors a
	// dense LU per block.
	BlockLU PreconditionerKind = iota
	// Jacobi applies a single diagonal relaxation factor.
	Jacobi
	// EdgeSSOR sweeps forward then backward over edges with precomputed
	// neighbor coefficients.
	EdgeSSOR
)

// GammaMapping selects which Γ snapshot feeds the wake strand strengths.
type GammaMapping int

const (
	// Implicit uses the latest (just-solved) Γ.
	Implicit GammaMapping = iota
	// Explicit uses the previous time step's Γ, shifted.
	Explicit
	// All unions the implicit and explicit contributions.
	All
)

// FreeStream holds the undisturbed flow conditions.
type FreeStream struct {
	Mach  float64    // free-stream Mach number
	Alpha float64    // angle of attack [rad]
	Beta  float64    // sideslip angle [rad]
	Vref  float64    // reference speed [length/time]
	Dir   [3]float64 // unit direction, derived from Alpha/Beta if zero
	Gust  GustParams // optional turbulence perturbation (supplemented feature)
}

// GustParams configures an optional bounded-uniform perturbation of the
// free-stream velocity, a configuration-gated, off-by-default RHS
// enrichment beyond anything any spec invariant requires.
type GustParams struct {
	Enabled bool
	Sigma   float64 // perturbation half-width, same units as Vref
	Seed    int     // rnd seed; 0 lets the generator pick its own
}

// WakeParams controls §4.C/§4.I wake representation and advection.
type WakeParams struct {
	SubSegExp    int     // k such that each strand has K=2^k segments; default 6 (64 segments)
	FarFactor    float64 // admissibility factor; default 5.0 subsonic, +Inf supersonic
	RelaxSteady  float64 // pseudo-time-step relaxation for steady wake iteration
	DampingVLM   bool    // apply near-surface damping in the VLM branch too (OQ3)
	CoreRadius   float64 // Rankine/Lamb-Oseen vortex core radius σ
	UseLambOseen bool    // true: Lamb-Oseen core; false: Rankine core
}

// SolverParams controls §4.F/§4.G GMRES and the preconditioner.
type SolverParams struct {
	Precond        PreconditionerKind
	BlockSize      int     // target loops per preconditioner block (≈500)
	BlockSizeSlack float64 // allowed overshoot factor (≈1.25)
	JacobiOmega    float64 // relaxation factor for Jacobi mode (≈0.25)
	Restart        int     // GMRES restart length R (≈500)
	MaxCycles      int     // outer GMRES restart cycles (≈3)
	ErrAbs         float64 // absolute residual stop
	ErrReduction   float64 // relative residual-reduction stop
}

// TimeParams controls §4.K time stepping.
type TimeParams struct {
	NumberOfTimeSteps int
	DeltaT            float64
	WakeIterations    int // steady-mode wake sub-iteration count
	Steady            bool
	GammaMap          GammaMapping
}

// Options bundles miscellaneous booleans and debug overrides (OQ1/OQ2).
type Options struct {
	DoSymmetryPlaneY bool
	DoGroundPlaneZ   bool
	ListBCs          bool
	Verbose          bool
}

// Config is the top-level, environment-free settings struct.
type Config struct {
	CaseName    string
	Model       AnalysisType
	FreeStream  FreeStream
	Wake        WakeParams
	Solver      SolverParams
	Time        TimeParams
	Opts        Options
	DirOut      string
	RestartFlag bool
}

// Default returns a Config with the numeric defaults named throughout the
// specification (previously hard-coded debug constants, now configuration).
func Default() (c *Config) {
	c = new(Config)
	c.FreeStream.Vref = 1.0
	c.Wake.SubSegExp = 6
	c.Wake.FarFactor = 5.0
	c.Wake.RelaxSteady = 0.25
	c.Wake.DampingVLM = true
	c.Wake.CoreRadius = 1e-3
	c.Wake.UseLambOseen = true
	c.Solver.BlockSize = 500
	c.Solver.BlockSizeSlack = 1.25
	c.Solver.JacobiOmega = 0.25
	c.Solver.Restart = 500
	c.Solver.MaxCycles = 3
	c.Solver.ErrAbs = 1e-10
	c.Solver.ErrReduction = 1e-6
	c.Time.WakeIterations = 3
	return
}

// FarFactorEffective returns +Inf for supersonic flow (force all sources to
// the finest level) and c.Wake.FarFactor otherwise.
func (c *Config) FarFactorEffective() float64 {
	if c.FreeStream.Mach >= 1.0 {
		return math.Inf(1)
	}
	return c.Wake.FarFactor
}

// Load reads a Config from a JSON file. No environment variables are
// consulted; everything the solver needs travels through this struct.
func Load(data []byte) (c *Config, err error) {
	c = Default()
	if err = json.Unmarshal(data, c); err != nil {
		return nil, chk.Err("cannot parse configuration: %v", err)
	}
	return
}

// Validate checks for configuration errors that are fatal at setup (§7
// UnknownPreconditioner/UnknownAnalysisType).
func (c *Config) Validate() (err error) {
	switch c.Solver.Precond {
	case BlockLU, Jacobi, EdgeSSOR:
	default:
		return errs.New(errs.UnknownPreconditioner, "unknown preconditioner kind: %v", c.Solver.Precond)
	}
	switch c.Model {
	case VLM, Panel:
	default:
		return errs.New(errs.UnknownAnalysisType, "unknown analysis type: %v", c.Model)
	}
	if c.Time.NumberOfTimeSteps < 0 {
		return chk.Err("number of time steps must be >= 0, got %d", c.Time.NumberOfTimeSteps)
	}
	return
}
