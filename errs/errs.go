// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errs defines the error kinds §7 of the specification names, so
// callers can discriminate them with errs.Is (built on errors.As) instead of
// string-matching chk.Err messages.
package errs

import (
	"errors"
	"fmt"
)

// Kind identifies one of the error kinds the core raises.
type Kind int

const (
	// BadGeometry: zero-area loop, duplicate nodes on an edge, zero-diagonal
	// influence.
	BadGeometry Kind = iota
	// BadHierarchy: cycle in parent/child, mismatched child cover, coarsest
	// level is the only level.
	BadHierarchy
	// LinearSolverDiverged: GMRES exhausted all outer cycles without
	// meeting tolerance.
	LinearSolverDiverged
	// WakeOutOfDomain: a wake node's time exceeds the history buffer during
	// interpolation.
	WakeOutOfDomain
	// UnknownPreconditioner: configuration error, fatal at setup.
	UnknownPreconditioner
	// UnknownAnalysisType: configuration error, fatal at setup.
	UnknownAnalysisType
	// InvalidGeometry: degenerate vortex segment (P1 == P2).
	InvalidGeometry
)

func (k Kind) String() string {
	switch k {
	case BadGeometry:
		return "BadGeometry"
	case BadHierarchy:
		return "BadHierarchy"
	case LinearSolverDiverged:
		return "LinearSolverDiverged"
	case WakeOutOfDomain:
		return "WakeOutOfDomain"
	case UnknownPreconditioner:
		return "UnknownPreconditioner"
	case UnknownAnalysisType:
		return "UnknownAnalysisType"
	case InvalidGeometry:
		return "InvalidGeometry"
	}
	return "Unknown"
}

// Error is a typed, chk-compatible error carrying a Kind plus context.
type Error struct {
	K    Kind
	Msg  string
	Args []interface{}
}

func (e *Error) Error() string {
	if len(e.Args) == 0 {
		return fmt.Sprintf("%s: %s", e.K, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.K, fmt.Sprintf(e.Msg, e.Args...))
}

// New builds an *Error of the given kind.
func New(k Kind, msg string, args ...interface{}) error {
	return &Error{K: k, Msg: msg, Args: args}
}

// Is reports whether err, or any error it wraps, is an *Error of the given
// Kind (found through errors.As).
func Is(err error, k Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.K == k
	}
	return false
}

// LinearSolverDivergedInfo carries the residual ratio recovery needs.
type LinearSolverDivergedInfo struct {
	Err         *Error
	RhoOverRho0 float64
	Iterations  int
}

// Error reports the wrapped *Error's message.
func (e *LinearSolverDivergedInfo) Error() string { return e.Err.Error() }

// Unwrap exposes the wrapped *Error so errors.As/errors.Is can see through
// LinearSolverDivergedInfo to the underlying Kind.
func (e *LinearSolverDivergedInfo) Unwrap() error { return e.Err }

// NewLinearSolverDiverged builds the divergence error with its recovery
// hint (final ρ/ρ₀); callers (GMRES) use it to let the time driver decide
// whether to reduce Δt or step the wake half-shape and retry.
func NewLinearSolverDiverged(rhoOverRho0 float64, iters int) error {
	return &LinearSolverDivergedInfo{
		Err:         &Error{K: LinearSolverDiverged, Msg: "GMRES exhausted all outer cycles, final rho/rho0=%.3e after %d iterations", Args: []interface{}{rhoOverRho0, iters}},
		RhoOverRho0: rhoOverRho0,
		Iterations:  iters,
	}
}
