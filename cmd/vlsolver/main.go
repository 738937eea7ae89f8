// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command vlsolver is the thin CLI surface named in §6: it parses the
// Mach/alpha/beta sweep, step count, time step, wake-iteration count,
// preconditioner choice and restart flag into a config.Config, validates
// it, and prints the resulting run plan. §1 explicitly keeps geometry
// ingestion (a geom.Provider), rotor-disk models and file I/O as external
// collaborators, so this command does not itself drive timeloop.Driver —
// an embedding application wires a concrete geom.Provider and calls
// timeloop.Driver.RunSteady/RunUnsteady the way gofem's fem.Run is called
// from main.go, once a provider is available.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/cpmech/vlsolver/config"
)

func main() {
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	io.PfWhite("\nvlsolver -- unsteady panel/vortex-lattice aerodynamics solver\n\n")

	configFile := flag.String("config", "", "optional JSON config.Config file providing defaults")
	caseName := flag.String("case", "", "case name")
	machList := flag.String("mach", "0.1", "comma-separated Mach sweep, e.g. 0.1,0.3,0.6")
	alphaList := flag.String("alpha", "0", "comma-separated angle-of-attack sweep [deg]")
	betaList := flag.String("beta", "0", "comma-separated sideslip sweep [deg]")
	steps := flag.Int("steps", 0, "number of unsteady time steps (0: steady run)")
	dt := flag.Float64("dt", 0.01, "time step")
	wakeIters := flag.Int("wake-iters", 3, "steady wake sub-iteration count")
	precond := flag.String("precond", "blocklu", "preconditioner: blocklu|jacobi|ssor")
	model := flag.String("model", "vlm", "analysis type: vlm|panel")
	restart := flag.Bool("restart", false, "resume from a restart file")
	symY := flag.Bool("sym-y", false, "apply the y=0 symmetry plane")
	groundZ := flag.Bool("ground-z", false, "apply the z=0 ground plane")
	verbose := flag.Bool("v", false, "verbose per-iteration console output")
	flag.Parse()

	machs, err := parseFloats(*machList)
	if err != nil {
		chk.Panic("bad -mach list: %v", err)
	}
	alphas, err := parseFloats(*alphaList)
	if err != nil {
		chk.Panic("bad -alpha list: %v", err)
	}
	betas, err := parseFloats(*betaList)
	if err != nil {
		chk.Panic("bad -beta list: %v", err)
	}

	base := config.Default()
	if *configFile != "" {
		loaded, err := loadConfigFile(*configFile)
		if err != nil {
			chk.Panic("cannot read -config %q: %v", *configFile, err)
		}
		base = loaded
	}
	if *caseName != "" {
		base.CaseName = *caseName
	}
	if base.CaseName == "" {
		chk.Panic("please provide -case <name>")
	}
	base.RestartFlag = *restart
	base.Opts.Verbose = *verbose
	base.Opts.DoSymmetryPlaneY = *symY
	base.Opts.DoGroundPlaneZ = *groundZ
	base.Time.NumberOfTimeSteps = *steps
	base.Time.DeltaT = *dt
	base.Time.Steady = *steps == 0
	base.Time.WakeIterations = *wakeIters

	base.Model, err = parseModel(*model)
	if err != nil {
		chk.Panic("%v", err)
	}
	base.Solver.Precond, err = parsePrecond(*precond)
	if err != nil {
		chk.Panic("%v", err)
	}

	io.Pf("case       : %s\n", base.CaseName)
	io.Pf("model      : %s\n", *model)
	io.Pf("precond    : %s\n", *precond)
	io.Pf("steady     : %v\n", base.Time.Steady)
	io.Pf("wake iters : %d\n", base.Time.WakeIterations)
	io.Pf("time steps : %d (dt=%g)\n", base.Time.NumberOfTimeSteps, base.Time.DeltaT)
	io.Pf("restart    : %v\n", base.RestartFlag)
	io.Pf("\nsweep (mach, alpha[deg], beta[deg]):\n")

	for _, m := range machs {
		for _, a := range alphas {
			for _, b := range betas {
				cfg := *base
				cfg.FreeStream = config.FreeStream{
					Mach:  m,
					Alpha: degToRad(a),
					Beta:  degToRad(b),
					Vref:  1.0,
				}
				if err := cfg.Validate(); err != nil {
					chk.Panic("invalid configuration: %v", err)
				}
				io.Pf("  %-6g %-6g %-6g\n", m, a, b)
			}
		}
	}

	io.Pf("\nno geom.Provider supplied: this command only validates the run\n")
	io.Pf("plan above. Call timeloop.Driver.RunSteady/RunUnsteady from an\n")
	io.Pf("embedding application that wires a concrete geometry source.\n")
}

func degToRad(deg float64) float64 { return deg * 3.141592653589793 / 180.0 }

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("empty list")
	}
	return out, nil
}

func parseModel(s string) (config.AnalysisType, error) {
	switch strings.ToLower(s) {
	case "vlm":
		return config.VLM, nil
	case "panel":
		return config.Panel, nil
	}
	return 0, fmt.Errorf("unknown -model %q (want vlm|panel)", s)
}

func parsePrecond(s string) (config.PreconditionerKind, error) {
	switch strings.ToLower(s) {
	case "blocklu":
		return config.BlockLU, nil
	case "jacobi":
		return config.Jacobi, nil
	case "ssor":
		return config.EdgeSSOR, nil
	}
	return 0, fmt.Errorf("unknown -precond %q (want blocklu|jacobi|ssor)", s)
}

// loadConfigFile reads a JSON config.Config when -config is given; main uses
// it in place of config.Default() as the base that the command-line flags
// then override (fields absent from the file keep their zero values),
// mirroring fem.Start's simulation-file loading while keeping the core
// config.Config environment-free (§6).
func loadConfigFile(path string) (*config.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c config.Config
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}
