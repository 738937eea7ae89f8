// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package timeloop implements the §4.K time driver: a pure LinearSolver
// (matop/precond/gmres) kept separate from the stage/step loop that
// composes it with the wake updater and force integrator, generalizing
// gofem's fem.FEM.Run stage loop (fem/fem.go) and its Solver.Run(tf, ...)
// time-stepping abstraction (fem/solver.go) to the steady wake-iteration
// and unsteady time-step state machines of §2.
package timeloop

import (
	"os"
	"sync"
	"sync/atomic"

	kitlog "github.com/go-kit/kit/log"

	"github.com/cpmech/gosl/io"

	"github.com/cpmech/vlsolver/config"
	"github.com/cpmech/vlsolver/force"
	"github.com/cpmech/vlsolver/geom"
	"github.com/cpmech/vlsolver/gmres"
	"github.com/cpmech/vlsolver/ilist"
	"github.com/cpmech/vlsolver/matop"
	"github.com/cpmech/vlsolver/motion"
	"github.com/cpmech/vlsolver/precond"
	"github.com/cpmech/vlsolver/rhs"
	"github.com/cpmech/vlsolver/wake"
	"github.com/cpmech/vlsolver/wakeupdate"
)

// Field is the external-collaborator union rhs.Build and wakeupdate.Update
// both need (§6 "Rotor disk"/environment collaborators).
type Field interface {
	rhs.VelocityField
	wakeupdate.ExternalVelocity
}

// ListBuilder recomputes the interaction lists. §9's re-architecture note
// says to rebuild only where relative motion invalidated them: a driver
// running in ilist.FixedLoops mode should pass a builder that is only ever
// called once (the zeroth call), one running in ilist.MovingLoops mode one
// that is cheap to call every step.
type ListBuilder func(h *geom.Hierarchy, cfg *config.Config) (*ilist.Result, error)

// StepResult is one solved step's summary, independent of steady/unsteady
// mode (§8 scenario reporting, the history-file row shape).
type StepResult struct {
	Index       int
	Time        float64
	Gamma       []float64 // solved loop circulations, 1-based
	GMRES       gmres.Result
	MaxWakeDisp float64 // log10(max displacement); wake convergence metric
}

// Driver composes the linear solver, wake updater and force integrator
// into the steady wake-iteration and unsteady time-step state machines of
// §2/§4.K. It owns no geometry of its own; H/Lists/Wake are shared,
// read-mostly state the same way gofem's Domain is shared across a FEM
// run's stages (fem/domain.go).
type Driver struct {
	H         *geom.Hierarchy
	Cfg       *config.Config
	Op        *matop.Operator
	Precond   precond.Preconditioner
	Field     Field
	Wake      *wake.State
	BaseLoops map[int]bool
	BuildList ListBuilder
	Groups    []*motion.Group

	// Logger emits one structured logfmt line per solved step, alongside
	// the io.Pf console summary; nil gets a logfmt-to-stdout default built
	// lazily on first use (a solver run with no caller-supplied logger
	// still leaves a machine-parseable per-step trail).
	Logger kitlog.Logger

	// GammaHistory is the depth-3 Γ ring the spec names for
	// config.GammaMapping (index 0: latest, 1: previous, 2: one before
	// that); Shift pushes a new solve in.
	GammaHistory [3][]float64

	// historyMu guards the single append point to the in-memory history
	// rows, historyRows (§5 "a single mutex guards history-file append"); all other
	// file I/O happens between time steps on one thread, so no other lock
	// is needed.
	historyMu   sync.Mutex
	historyRows []StepResult

	// cancel is the between-time-steps cancellation flag (§5): no
	// cancellation is ever observed mid-solve, only checked once a step
	// has fully flushed its solution.
	cancel int32
}

// DetectWakeJunctions scans d.Wake for trailing strands whose root nodes
// spatially coincide across different sheets (wing-body junctions, nacelle
// lips) and records them as CommonTE pairs, per §3/§4.I step 6. Call once
// after the wake state is built and before the first RunSteady/RunUnsteady
// call; geometry is immutable thereafter (§3 Lifecycle) so junctions never
// move.
func (d *Driver) DetectWakeJunctions(tol float64) error {
	return wake.DetectCommonTE(d.H, d.Wake, tol)
}

// Cancel requests that the driver stop before starting its next step,
// safe to call concurrently with Run (e.g. from a UI/signal handler).
func (d *Driver) Cancel() { atomic.StoreInt32(&d.cancel, 1) }

func (d *Driver) cancelled() bool { return atomic.LoadInt32(&d.cancel) != 0 }

// logger returns d.Logger, building the logfmt-to-stdout default the first
// time it is needed.
func (d *Driver) logger() kitlog.Logger {
	if d.Logger == nil {
		d.Logger = kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	}
	return d.Logger
}

// Shift pushes a newly solved Γ into the history ring, discarding the
// oldest retained copy.
func (d *Driver) Shift(gamma []float64) {
	d.GammaHistory[2] = d.GammaHistory[1]
	d.GammaHistory[1] = d.GammaHistory[0]
	cp := make([]float64, len(gamma))
	copy(cp, gamma)
	d.GammaHistory[0] = cp
}

// History returns every step result recorded so far, in order.
func (d *Driver) History() []StepResult {
	d.historyMu.Lock()
	defer d.historyMu.Unlock()
	out := make([]StepResult, len(d.historyRows))
	copy(out, d.historyRows)
	return out
}

func (d *Driver) record(r StepResult) {
	d.historyMu.Lock()
	d.historyRows = append(d.historyRows, r)
	d.historyMu.Unlock()
}

// ensureLists builds the interaction lists once if they have not been
// built yet, or every call if BuildList represents ilist.MovingLoops mode
// (the caller's own closure decides which).
func (d *Driver) ensureLists(rebuild bool) error {
	if d.BuildList == nil {
		return nil
	}
	if d.Op.Lists != nil && !rebuild {
		return nil
	}
	lists, err := d.BuildList(d.H, d.Cfg)
	if err != nil {
		return err
	}
	d.Op.Lists = lists
	return nil
}

// solveOnce assembles the RHS (currently time-invariant: rhs.VelocityField
// implementations that carry their own clock read it through x), runs
// GMRES once, and returns the solved vector (length Op.Len()).
func (d *Driver) solveOnce() ([]float64, gmres.Result, error) {
	n := d.Op.Len()
	b := make([]float64, n)
	x := make([]float64, n)
	d.Op.BaseLoops = d.BaseLoops
	rhs.Build(b, d.H, d.Cfg, d.Field, nil, d.BaseLoops, d.Op.NLoops, d.Op.NGroups)

	apply := d.Op.MatVec
	var pre gmres.Precond
	if d.Precond != nil {
		pre = d.Precond.Apply
	}
	opt := gmres.Options{
		Restart:      d.Cfg.Solver.Restart,
		MaxCycles:    d.Cfg.Solver.MaxCycles,
		ErrAbs:       d.Cfg.Solver.ErrAbs,
		ErrReduction: d.Cfg.Solver.ErrReduction,
	}
	var res gmres.Result
	var err error
	if d.Cfg.Model == config.Panel {
		p := gmres.PanelOperator{A: apply, At: d.Op.MatVecTranspose}
		res, err = gmres.SolveNormal(p, pre, b, x, opt)
	} else {
		res, err = gmres.Solve(apply, pre, b, x, opt)
	}
	if err != nil {
		return nil, res, err
	}
	return x, res, nil
}

// RunSteady runs the §2 STEADY_INIT -> WAKE_ITERATE_N_TIMES -> CONVERGED
// state machine: WakeIterations full solve+wake-update passes, the wake
// relaxing toward its converged shape under RelaxSteady pseudo-time steps.
func (d *Driver) RunSteady() ([]StepResult, error) {
	if err := d.ensureLists(false); err != nil {
		return nil, err
	}
	if d.Cfg.Opts.Verbose {
		io.Pf("> steady wake iteration (n=%d)\n", d.Cfg.Time.WakeIterations)
	}
	var out []StepResult
	for it := 0; it < d.Cfg.Time.WakeIterations; it++ {
		if d.cancelled() {
			break
		}
		x, gres, err := d.solveOnce()
		if err != nil {
			return out, err
		}
		gamma := x[1 : d.Op.NLoops+1]
		d.Shift(gamma)
		disp := wakeupdate.Update(d.Wake, d.H, d.Op.Lists, d.Field, d.Cfg, 0, true)
		r := StepResult{Index: it, Time: 0, Gamma: cloneF(gamma), GMRES: gres, MaxWakeDisp: disp}
		d.record(r)
		out = append(out, r)
		if d.Cfg.Opts.Verbose {
			io.Pf("  iter %d: rho/rho0=%g log10(disp)=%g\n", it, gres.RhoOverRho0, disp)
		}
		d.logger().Log("phase", "steady", "iter", it, "rho_over_rho0", gres.RhoOverRho0, "log10_disp", disp)
	}
	return out, nil
}

// RunUnsteady runs the §2 unsteady state machine: an optional steady-seed
// pass, then NumberOfTimeSteps explicit time steps, each advancing every
// group's pose, rebuilding interaction lists only where relative motion
// invalidated them, solving, updating the wake by dt, integrating forces
// and rolling averages, and checking the cancellation flag.
func (d *Driver) RunUnsteady(seedSteady bool) ([]StepResult, error) {
	if seedSteady {
		if _, err := d.RunSteady(); err != nil {
			return nil, err
		}
	}
	if err := d.ensureLists(false); err != nil {
		return nil, err
	}
	dt := d.Cfg.Time.DeltaT
	var out []StepResult
	for step := 0; step < d.Cfg.Time.NumberOfTimeSteps; step++ {
		if d.cancelled() {
			break
		}
		t := float64(step+1) * dt
		for _, g := range d.Groups {
			g.Omega = [3]float64{0, 0, g.CommandedAngle(t)}
			g.AdvancePose(dt)
		}
		moving := false
		for _, g := range d.Groups {
			if g.IsRotor {
				moving = true
			}
		}
		if err := d.ensureLists(moving); err != nil {
			return out, err
		}
		x, gres, err := d.solveOnce()
		if err != nil {
			return out, err
		}
		gamma := x[1 : d.Op.NLoops+1]
		d.Shift(gamma)
		disp := wakeupdate.Update(d.Wake, d.H, d.Op.Lists, d.Field, d.Cfg, dt, false)

		d.Op.RestrictLoopGammaFrom(x)
		fine := d.H.Fine()
		loopVel := make(map[int][3]float64, len(fine.Loops))
		for i := range fine.Loops {
			loopVel[fine.Loops[i].ID] = d.Op.VelocityAt(fine.Loops[i].ID)
		}
		edgeForces := force.KuttaJukowski(fine, loopVel)
		for _, g := range d.Groups {
			g.RecordForce(groupForce(fine, edgeForces, g.ID))
		}

		r := StepResult{Index: step, Time: t, Gamma: cloneF(gamma), GMRES: gres, MaxWakeDisp: disp}
		d.record(r)
		out = append(out, r)
		if d.Cfg.Opts.Verbose {
			io.Pf("> step %d t=%g rho/rho0=%g\n", step, t, gres.RhoOverRho0)
		}
		d.logger().Log("phase", "unsteady", "step", step, "t", t, "rho_over_rho0", gres.RhoOverRho0, "log10_disp", disp)
	}
	return out, nil
}

func cloneF(v []float64) []float64 {
	cp := make([]float64, len(v))
	copy(cp, v)
	return cp
}

// groupForce sums the share of each bound edge force attributed to loops
// belonging to groupID (§4.J force splitting, attributed here to whichever
// rigid-body group owns the edge's left/right loop).
func groupForce(fine *geom.Level, edgeForces []force.EdgeForce, groupID int) [3]float64 {
	var total [3]float64
	for _, ef := range edgeForces {
		e := fine.EdgeByID(ef.EdgeID)
		if e == nil {
			continue
		}
		if left := fine.LoopByID(e.LeftLoop); left != nil && left.Component == groupID {
			total[0] += ef.F[0] * ef.ToLeft
			total[1] += ef.F[1] * ef.ToLeft
			total[2] += ef.F[2] * ef.ToLeft
		}
		if right := fine.LoopByID(e.RightLoop); right != nil && right.Component == groupID {
			total[0] += ef.F[0] * ef.ToRight
			total[1] += ef.F[1] * ef.ToRight
			total[2] += ef.F[2] * ef.ToRight
		}
	}
	return total
}
