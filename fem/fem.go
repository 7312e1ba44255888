// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package fem contains elements and solvers for running simulations using the finite element method
package fem

import (
	"time"

	"github.com/mpfem/mpfem/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// FEM holds all data for a simulation using the finite element method
type FEM struct {
	Sim     *inp.Simulation // simulation data
	Summary *Summary        // summary structure
	DynCfs  *DynCoefs       // coefficients for dynamics/transient simulations
	Domains []*Domain       // all domains
	Solver  FEsolver        // finite element method solver; e.g. implicit or linear implicit
	DebugKb DebugKb_t       // debug Kb callback function
	Verbose bool            // show messages

	// internal
	started bool // at least one stage has been run
}

// NewFEM returns a new FEM structure
//  Input:
//   simfilepath -- simulation (.sim or .yaml) filename including full path
//   alias       -- word to be appended to simulation key; e.g. when running multiple FE solutions
//   erasePrev   -- erase previous results files
//   saveSummary -- save summary
//   readSummary -- read summary of previous simulation
//   verbose     -- show messages
//   goroutineId -- id of goroutine running this simulation
func NewFEM(simfilepath, alias string, erasePrev, saveSummary, readSummary, verbose bool, goroutineId int) (o *FEM, err error) {
	sim, err := inp.ReadSim(simfilepath, alias, erasePrev, goroutineId)
	if err != nil {
		return nil, chk.Err("cannot read simulation input data:\n%v", err)
	}
	return NewFEMsim(sim, saveSummary, readSummary, verbose)
}

// NewFEMsim returns a new FEM structure from simulation data that is already initialised
func NewFEMsim(sim *inp.Simulation, saveSummary, readSummary, verbose bool) (o *FEM, err error) {

	// new FEM object
	o = new(FEM)
	o.Sim = sim
	o.Verbose = verbose

	// summary
	if saveSummary {
		o.Summary = &Summary{Dirout: sim.DirOut, Fnkey: sim.Key, EncType: sim.EncType}
	}
	if readSummary {
		o.Summary, err = ReadSummary(sim.DirOut, sim.Key, sim.EncType)
		if err != nil {
			return nil, chk.Err("cannot read summary:\n%v", err)
		}
	}

	// auxiliary structures
	o.DynCfs = new(DynCoefs)
	err = o.DynCfs.Init(&sim.Solver)
	if err != nil {
		return nil, chk.Err("cannot initialise dynamic coefficients:\n%v", err)
	}

	// allocate domains
	o.Domains = NewDomains(sim, o.DynCfs)

	// allocate solver
	alloc, ok := solverallocators[sim.Solver.Type]
	if !ok {
		return nil, chk.Err("cannot find solver type named %q", sim.Solver.Type)
	}
	o.Solver, err = alloc(o.Domains, o.Summary, o.DynCfs)
	if err != nil {
		return nil, chk.Err("cannot allocate solver:\n%v", err)
	}
	return
}

// Run runs FE simulation
func (o *FEM) Run() (err error) {

	// log file
	err = inp.InitLogFile(o.Sim.DirOut, o.Sim.Key)
	if err != nil {
		return
	}
	defer func() {
		inp.LogErr(err, "FEM.Run")
		if e := inp.FlushLog(); err == nil {
			err = e
		}
	}()

	// loop over stages
	cputime := time.Now()
	for stgidx, stg := range o.Sim.Stages {

		// skip stage?
		if stg.Skip {
			continue
		}

		// set stage
		err = o.SetStage(stgidx)
		if err != nil {
			return
		}

		// initialise solution vectors; later stages start from the transferred state
		if !o.started {
			err = o.ZeroStage(stgidx, true)
			if err != nil {
				return
			}
			o.started = true
		}

		// time loop
		inp.Log("stage %d: running until t=%g", stgidx, stg.Control.Tf)
		err = o.Solver.Run(stg.Control.Tf, stg.Control.DtFunc, stg.Control.DtoFunc, o.Verbose, o.DebugKb)
		if err != nil {
			return chk.Err("stage %d failed:\n%v", stgidx, err)
		}
	}

	// message
	if o.Verbose {
		io.Pf("\n\n")
		if len(o.Domains) > 0 && o.Domains[0].Sol != nil {
			io.Pf("\nfinal time = %v\n", o.Domains[0].Sol.T)
		}
		io.Pflmag("cpu time   = %v\n", time.Since(cputime))
	}

	// save summary
	if o.Summary != nil {
		err = o.Summary.Save(o.Verbose)
	}
	return
}

// SetStage sets stage for all domains and resets solver data
//  Input:
//   stgidx -- stage index (in o.Sim.Stages)
func (o *FEM) SetStage(stgidx int) (err error) {
	if stgidx < 0 || stgidx >= len(o.Sim.Stages) {
		return chk.Err("stage index %d is out of range [0, %d)", stgidx, len(o.Sim.Stages))
	}
	return o.Solver.OnTopologyChange(stgidx)
}

// ZeroStage zeroes solution varaibles; i.e. it initialises solution vectors (Y, dYdt, internal
// values such as States.Sig, etc.) in all domains for all nodes and all elements
//  Input:
//   stgidx  -- stage index (in o.Sim.Stages)
//   zeroSol -- zero vectors in domains.Sol
func (o *FEM) ZeroStage(stgidx int, zeroSol bool) (err error) {
	for _, d := range o.Domains {
		err = d.SetIniVals(zeroSol)
		if err != nil {
			return chk.Err("cannot initialise values of stage %d:\n%v", stgidx, err)
		}
	}
	return
}

// SolveOneStage solves one stage that was already set
//  Input:
//   stgidx    -- stage index (in o.Sim.Stages)
//   zerostage -- zero vectors in domains.Sol => call ZeroStage
func (o *FEM) SolveOneStage(stgidx int, zerostage bool) (err error) {
	if zerostage {
		err = o.ZeroStage(stgidx, true)
		if err != nil {
			return
		}
	}
	stg := o.Sim.Stages[stgidx]
	return o.Solver.Run(stg.Control.Tf, stg.Control.DtFunc, stg.Control.DtoFunc, o.Verbose, o.DebugKb)
}
