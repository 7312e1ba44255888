// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
	"gonum.org/v1/gonum/floats"
)

// SolverLinImplicit solves **linear** FEM problems using an implicit procedure.
// The Jacobian is factorised once and reused while Δt does not change
type SolverLinImplicit struct {
	solverBase
	wb     []float64 // [nyb] workspace: δyb
	lastDt float64   // Δt used to compute the cached Jacobian
}

// set factory of solvers
func init() {
	solverallocators["lin-imp"] = func(doms []*Domain, sum *Summary, dc *DynCoefs) (FEsolver, error) {
		return NewSolverLinImplicit(doms, sum, dc)
	}
}

// NewSolverLinImplicit returns a new linear solver; one domain only
func NewSolverLinImplicit(doms []*Domain, sum *Summary, dc *DynCoefs) (o *SolverLinImplicit, err error) {
	if len(doms) != 1 {
		return nil, chk.Err("SolverLinImplicit works with one domain only; %d given", len(doms))
	}
	o = new(SolverLinImplicit)
	o.doms, o.sum, o.dc = doms, sum, dc
	return
}

// Run runs the time loop
func (o *SolverLinImplicit) Run(tf float64, dtFunc, dtoFunc dbf.T, verbose bool, dbgKb DebugKb_t) (err error) {

	// check
	err = o.start("SolverLinImplicit.Run")
	if err != nil {
		return
	}

	// control
	d := o.doms[0]
	grp := o.Groups[0]
	t := d.Sol.T
	tout := t + dtoFunc.F(t, nil)
	steady := d.Sim.Data.Steady
	o.active = 0

	// first output
	if o.sum != nil && len(o.sum.OutTimes) == 0 {
		err = o.output(t, verbose)
		if err != nil {
			return
		}
	}

	// time loop
	var Δt float64
	var lasttimestep bool
	for t < tf {

		// time increment
		Δt = dtFunc.F(t, nil)
		if t+Δt >= tf {
			Δt = tf - t
			lasttimestep = true
		}
		t += Δt

		// update time variable in solution array
		d.Sol.T = t
		d.Sol.Dt = Δt

		// dynamic coefficients
		if !steady {
			err = o.dc.CalcBoth(Δt)
			if err != nil {
				return chk.Err("cannot compute dynamic coefficients:\n%v", err)
			}
		}

		// message
		if verbose {
			io.PfWhite("%30.15f\r", t)
		}

		// solve linear problem
		err = o.step(d, grp, Δt, dbgKb)
		if err != nil {
			return chk.Err("linear step failed @ t=%g:\n%v", t, err)
		}
		grp.Accept()

		// perform output
		if t >= tout || lasttimestep {
			err = o.output(t, verbose)
			if err != nil {
				return
			}
			tout += dtoFunc.F(t, nil)
		}
	}
	return
}

// step solves the linear system of one time step
func (o *SolverLinImplicit) step(d *Domain, grp SolverGroup, Δt float64, dbgKb DebugKb_t) (err error) {

	// zero increments and backup internal variables
	for i := range d.Sol.ΔY {
		d.Sol.ΔY[i] = 0
	}
	err = d.backupIvs(false)
	if err != nil {
		return
	}

	// starred variables
	err = d.star_vars()
	if err != nil {
		return chk.Err("cannot compute starred variables:\n%v", err)
	}

	// assemble right-hand side vector (fb) with **negative** of residuals
	err = grp.ComputeF()
	if err != nil {
		return
	}
	if o.sum != nil {
		o.sum.AppendResid(true, floats.Norm(grp.F(), math.Inf(1)))
	}

	// assemble and factorise Jacobian matrix; just once unless Δt changes
	if !d.Sim.Data.Steady && grp.IsJacobian() && Δt != o.lastDt {
		err = o.DestroyNoxState()
		if err != nil {
			return
		}
	}
	if !grp.IsJacobian() {
		err = grp.ComputeJacobian()
		if err != nil {
			return
		}
		o.lastDt = Δt
		if dbgKb != nil {
			dbgKb(d, 0)
		}
	}

	// solve for wb := δyb
	if len(o.wb) != d.Nyb {
		o.wb = make([]float64, d.Nyb)
	}
	err = grp.ComputeNewton(o.wb)
	if err != nil {
		return
	}

	// update primary variables (y), rates and Lagrange multipliers (λ)
	for i := 0; i < d.Ny; i++ {
		d.Sol.Y[i] += o.wb[i]
		d.Sol.ΔY[i] += o.wb[i]
	}
	d.update_rates()
	for i := 0; i < d.Nlam; i++ {
		d.Sol.L[i] += o.wb[d.Ny+i]
	}

	// update secondary variables
	err = d.restoreIvs(false)
	if err != nil {
		return
	}
	return d.UpdateElems()
}
