// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"gonum.org/v1/gonum/floats"
)

// PredConstDis keeps the converged values: y = yₙ
type PredConstDis struct{ predBase }

// PredConstVel extrapolates with the converged rates: y = yₙ + Δt・ẏₙ
type PredConstVel struct{ predBase }

// PredConstAcc extrapolates second order variables with converged accelerations:
//  u = uₙ + Δt・vₙ + ½Δt²・aₙ
type PredConstAcc struct{ predBase }

// PredConstPress keeps first order (pressure-like) variables; second order variables
// are extrapolated as in PredConstVel
type PredConstPress struct{ predBase }

// PredConstDisVelAccPress keeps values and rates of all variables
type PredConstDisVelAccPress struct{ predBase }

// add predictors to factory
func init() {
	predallocators["ConstDis"] = func() Predictor { return new(PredConstDis) }
	predallocators["ConstVel"] = func() Predictor { return new(PredConstVel) }
	predallocators["ConstAcc"] = func() Predictor { return new(PredConstAcc) }
	predallocators["ConstPress"] = func() Predictor { return new(PredConstPress) }
	predallocators["ConstDisVelAccPress"] = func() Predictor { return new(PredConstDisVelAccPress) }
}

// Name returns the name of predictor
func (o *PredConstDis) Name() string { return "ConstDis" }

// Compute computes the predicted iterate
func (o *PredConstDis) Compute(grp SolverGroup) (err error) {
	if err = o.checkSetup("PredConstDis.Compute", grp); err != nil {
		return
	}
	sol, conv := grp.Sol(), grp.Conv()
	o.start(sol, conv)
	o.finish(sol, conv, true)
	return
}

// Name returns the name of predictor
func (o *PredConstVel) Name() string { return "ConstVel" }

// Compute computes the predicted iterate
func (o *PredConstVel) Compute(grp SolverGroup) (err error) {
	if err = o.checkSetup("PredConstVel.Compute", grp); err != nil {
		return
	}
	sol, conv := grp.Sol(), grp.Conv()
	o.start(sol, conv)
	if !o.steady {
		extrapolate(sol.Y, conv.Dydt, sol.Dt, o.t1eqs)
		extrapolate(sol.Y, conv.Dydt, sol.Dt, o.t2eqs)
	}
	o.finish(sol, conv, true)
	return
}

// Name returns the name of predictor
func (o *PredConstAcc) Name() string { return "ConstAcc" }

// Compute computes the predicted iterate
func (o *PredConstAcc) Compute(grp SolverGroup) (err error) {
	if err = o.checkSetup("PredConstAcc.Compute", grp); err != nil {
		return
	}
	sol, conv := grp.Sol(), grp.Conv()
	o.start(sol, conv)
	if !o.steady {
		Δt := sol.Dt
		extrapolate(sol.Y, conv.Dydt, Δt, o.t1eqs)
		extrapolate(sol.Y, conv.Dydt, Δt, o.t2eqs)
		extrapolate(sol.Y, conv.D2ydt2, Δt*Δt/2.0, o.t2eqs)
	}
	o.finish(sol, conv, true)
	return
}

// Name returns the name of predictor
func (o *PredConstPress) Name() string { return "ConstPress" }

// Compute computes the predicted iterate
func (o *PredConstPress) Compute(grp SolverGroup) (err error) {
	if err = o.checkSetup("PredConstPress.Compute", grp); err != nil {
		return
	}
	sol, conv := grp.Sol(), grp.Conv()
	o.start(sol, conv)
	if !o.steady {
		extrapolate(sol.Y, conv.Dydt, sol.Dt, o.t2eqs)
	}
	o.finish(sol, conv, true)
	return
}

// Name returns the name of predictor
func (o *PredConstDisVelAccPress) Name() string { return "ConstDisVelAccPress" }

// Compute computes the predicted iterate
func (o *PredConstDisVelAccPress) Compute(grp SolverGroup) (err error) {
	if err = o.checkSetup("PredConstDisVelAccPress.Compute", grp); err != nil {
		return
	}
	sol, conv := grp.Sol(), grp.Conv()
	o.start(sol, conv)
	o.finish(sol, conv, false)
	return
}

// extrapolate computes y[I] += α・r[I] for all I in eqs
func extrapolate(y, r []float64, α float64, eqs []int) {
	if len(eqs) == 0 {
		return
	}
	dy := make([]float64, len(eqs))
	for k, I := range eqs {
		dy[k] = r[I]
	}
	floats.Scale(α, dy)
	for k, I := range eqs {
		y[I] += dy[k]
	}
}
