// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/mpfem/mpfem/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/floats"
)

// SolverImplicit solves FEM problem using an implicit procedure (with Newthon-Raphson method)
type SolverImplicit struct {
	solverBase
	wbs   [][]float64 // [ndom][nyb] workspace: δyb
	zeros [][]float64 // [ndom][ny] zero vectors to compute the RMS error of δy

	// iterate solves the nonlinear problem of one domain
	iterate func(idx int, t float64, dbgKb DebugKb_t) (diverging bool, err error)
}

// set factory
func init() {
	solverallocators["imp"] = func(doms []*Domain, sum *Summary, dc *DynCoefs) (FEsolver, error) {
		return NewSolverImplicit(doms, sum, dc)
	}
}

// NewSolverImplicit returns a new implicit solver with one predictor per domain
func NewSolverImplicit(doms []*Domain, sum *Summary, dc *DynCoefs) (o *SolverImplicit, err error) {
	o = new(SolverImplicit)
	o.doms, o.sum, o.dc = doms, sum, dc
	o.iterate = o.run_iterations
	o.Preds = make([]Predictor, len(doms))
	for i, d := range doms {
		o.Preds[i], err = NewPredictor(d.Sim.Solver.Predictor)
		if err != nil {
			return nil, err
		}
		err = o.Preds[i].Init(&PredictorParams{DynCfs: dc, Steady: d.Sim.Data.Steady})
		if err != nil {
			return nil, err
		}
	}
	return
}

// Run runs the time loop
func (o *SolverImplicit) Run(tf float64, dtFunc, dtoFunc dbf.T, verbose bool, dbgKb DebugKb_t) (err error) {

	// check
	err = o.start("SolverImplicit.Run")
	if err != nil {
		return
	}

	// auxiliary
	md := 1.0    // time step multiplier if divergence control is on
	ndiverg := 0 // number of steps diverging
	sim := o.doms[0].Sim
	steady := sim.Data.Steady
	slv := &sim.Solver
	o.wbs = make([][]float64, len(o.doms))
	o.zeros = make([][]float64, len(o.doms))

	// control
	t := o.doms[0].Sol.T
	tout := t + dtoFunc.F(t, nil)

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

		// check for continued divergence
		if ndiverg >= slv.NdvgMax {
			return chk.Err("continuous divergence after %d steps reached", ndiverg)
		}

		// time increment
		Δt = dtFunc.F(t, nil) * md
		if t+Δt >= tf {
			Δt = tf - t
			lasttimestep = true
		}
		if Δt < slv.DtMin {
			if md < 1 {
				return chk.Err("Δt increment is too small: %g < %g", Δt, slv.DtMin)
			}
			return
		}

		// dynamic coefficients
		if !steady {
			err = o.dc.CalcBoth(Δt)
			if err != nil {
				return chk.Err("cannot compute dynamic coefficients:\n%v", err)
			}
		}

		// time update
		t += Δt

		// message
		if verbose && !sim.Data.ShowR {
			io.PfWhite("%30.15f\r", t)
		}

		// solve all domains
		var diverging bool
		diverging, err = o.step(t, Δt, dbgKb)
		if err != nil {
			return
		}
		if diverging {
			if verbose {
				io.Pfred(". . . iterations diverging (%2d) . . .\n", ndiverg+1)
			}
			t -= Δt
			md *= 0.5
			ndiverg++
			lasttimestep = false
			continue
		}
		if slv.DvgCtrl {
			ndiverg = 0
			md = 1.0
		}

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

// step solves all domains at time t. Groups accept the new state only after all domains have
// converged; with divergence control on, a diverging domain restores every domain to the
// state at the beginning of the step
func (o *SolverImplicit) step(t, Δt float64, dbgKb DebugKb_t) (diverging bool, err error) {

	// backup solutions
	dvgctrl := o.doms[0].Sim.Solver.DvgCtrl
	if dvgctrl {
		for _, d := range o.doms {
			err = d.backup()
			if err != nil {
				return
			}
		}
	}

	// run iterations
	for i, d := range o.doms {
		o.active = i
		d.Sol.T = t
		d.Sol.Dt = Δt
		diverging, err = o.iterate(i, t, dbgKb)
		if err != nil {
			return
		}
		if diverging {
			break
		}
	}

	// restore all domains
	if diverging && dvgctrl {
		for _, d := range o.doms {
			err = d.restore()
			if err != nil {
				return
			}
		}
		return
	}
	diverging = false

	// accept converged states
	for _, g := range o.Groups {
		g.Accept()
	}
	return
}

// run_iterations solves the nonlinear problem of domain idx
func (o *SolverImplicit) run_iterations(idx int, t float64, dbgKb DebugKb_t) (diverging bool, err error) {

	// auxiliary
	d := o.doms[idx]
	grp := o.Groups[idx]
	slv := &d.Sim.Solver
	if len(o.wbs[idx]) != d.Nyb {
		o.wbs[idx] = make([]float64, d.Nyb)
	}
	wb := o.wbs[idx]
	if len(o.zeros[idx]) != d.Ny {
		o.zeros[idx] = make([]float64, d.Ny)
	}

	// backup internal variables at beginning of step
	err = d.backupIvs(false)
	if err != nil {
		return
	}

	// calculate global starred vectors and interpolate starred variables from nodes to integration points
	err = d.star_vars()
	if err != nil {
		return false, chk.Err("cannot compute starred variables:\n%v", err)
	}

	// predictor
	err = o.Preds[idx].Compute(grp)
	if err != nil {
		return false, chk.Err("predictor failed:\n%v", err)
	}
	err = d.UpdateElems()
	if err != nil {
		return
	}

	// auxiliary variables
	var it int
	var largFb, largFb0, Lδu float64
	var prevFb, prevLδu float64

	// message
	if d.Sim.Data.ShowR {
		io.Pf("\n%13s%4s%23s%23s\n", "t", "it", "largFb", "Lδu")
		defer func() {
			io.Pf("%13.6e%4d%23.15e%23.15e\n", t, it, largFb, Lδu)
		}()
	}

	// iterations
	for it = 0; it < slv.NmaxIt; it++ {

		// assemble right-hand side vector (fb) with negative of residuals
		err = grp.ComputeF()
		if err != nil {
			return
		}

		// find largest absolute component of fb
		largFb = floats.Norm(grp.F(), math.Inf(1))

		// save residual
		if o.sum != nil {
			o.sum.AppendResid(it == 0, largFb)
		}

		// check largFb value
		if it == 0 {
			// store largest absolute component of fb
			largFb0 = largFb
		} else {
			// check convergence on Lf0
			if largFb < slv.FbTol*largFb0 { // converged on fb
				break
			}
			// check convergence on fb_min
			if largFb < slv.FbMin { // converged with smallest value of fb
				break
			}
		}

		// check divergence on fb
		if it > 1 && slv.DvgCtrl {
			if largFb > prevFb {
				diverging = true
				break
			}
		}
		prevFb = largFb

		// assemble and factorise Jacobian matrix
		if it == 0 || !slv.CteTg || !grp.IsJacobian() {
			err = grp.ComputeJacobian()
			if err != nil {
				return
			}
			if dbgKb != nil {
				dbgKb(d, it)
			}
		}

		// solve for wb := δyb
		err = grp.ComputeNewton(wb)
		if err != nil {
			return
		}

		// update primary variables (y) and rates
		for i := 0; i < d.Ny; i++ {
			d.Sol.Y[i] += wb[i]  // y += δy
			d.Sol.ΔY[i] += wb[i] // ΔY += δy
		}
		d.update_rates()

		// update Lagrange multipliers (λ)
		for i := 0; i < d.Nlam; i++ {
			d.Sol.L[i] += wb[d.Ny+i] // λ += δλ
		}

		// recover state at beginning of step and update secondary variables
		err = d.restoreIvs(false)
		if err != nil {
			return
		}
		err = d.UpdateElems()
		if err != nil {
			return
		}

		// compute RMS norm of δu and check convegence on δu
		Lδu = la.VecRmsError(wb[:d.Ny], o.zeros[idx], slv.Atol, slv.Rtol, d.Sol.Y)

		// message
		if d.Sim.Data.ShowR {
			io.Pf("%13.6e%4d%23.15e%23.15e\n", t, it, largFb, Lδu)
		}

		// stop if converged on δu
		if Lδu < slv.Itol {
			break
		}

		// check divergence on Lδu
		if it > 1 && slv.DvgCtrl {
			if Lδu > prevLδu {
				diverging = true
				break
			}
		}
		prevLδu = Lδu
	}

	// check if iterations diverged
	if it == slv.NmaxIt {
		inp.Log("max number of iterations reached @ t=%g: it = %d", t, it)
		return false, chk.Err("max number of iterations reached: it = %d", it)
	}
	return
}
