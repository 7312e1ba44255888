// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// DebugKb_t defines a function to debug the global Jacobian matrix
type DebugKb_t func(d *Domain, it int)

// FEsolver implements the actual solver (time loop)
type FEsolver interface {
	Run(tf float64, dtFunc, dtoFunc dbf.T, verbose bool, dbgKb DebugKb_t) (err error) // runs time loop
	OnTopologyChange(stgidx int) (err error)                                          // sets a new stage
}

// solverallocators holds all available solvers
var solverallocators = make(map[string]func(doms []*Domain, sum *Summary, dc *DynCoefs) (FEsolver, error))

// solverBase holds data shared by implicit solvers: one group (and one predictor) per domain
type solverBase struct {
	doms   []*Domain     // domains
	sum    *Summary      // summary; may be nil
	dc     *DynCoefs     // dynamic coefficients
	Groups []SolverGroup // [ndom] nonlinear solver groups; allocated when the first stage is set
	Preds  []Predictor   // [ndom] predictors; nil for linear problems
	active int           // index of active group
}

// DestroyNoxState drops the cached Jacobian (and factorisation) of the active group.
// The Jacobian is rebuilt by the next assembly.
//  Note: returns a PreconditionViolation error if there is no active group;
//        panics with an InvariantViolation error if the active group is not a *Group
func (o *solverBase) DestroyNoxState() (err error) {
	if o.active < 0 || o.active >= len(o.Groups) {
		return preconditionViolation("DestroyNoxState", "there is no active group")
	}
	grp, ok := o.Groups[o.active].(*Group)
	if !ok {
		panic(invariantViolation("DestroyNoxState", "active group must be of type *Group; got %T", o.Groups[o.active]))
	}
	grp.DestroyJacobian()
	return
}

// OnTopologyChange sets stage stgidx in all domains (with new equation numbers) and resets
// groups and predictors accordingly
func (o *solverBase) OnTopologyChange(stgidx int) (err error) {
	for _, d := range o.doms {
		err = d.SetStage(stgidx)
		if err != nil {
			return
		}
	}
	if o.Groups == nil {
		o.Groups = make([]SolverGroup, len(o.doms))
		for i, d := range o.doms {
			o.Groups[i] = NewGroup(d)
		}
	} else {
		for i, g := range o.Groups {
			o.active = i
			err = o.DestroyNoxState()
			if err != nil {
				return
			}
			if r, ok := g.(interface{ Resize() }); ok {
				r.Resize()
			}
		}
	}
	for i, p := range o.Preds {
		err = p.Setup(o.doms[i])
		if err != nil {
			return
		}
	}
	o.active = 0
	return
}

// start checks that stages are set and accepts the current state of all domains
func (o *solverBase) start(op string) (err error) {
	if len(o.doms) == 0 {
		return preconditionViolation(op, "at least one domain is required")
	}
	if len(o.Groups) != len(o.doms) {
		return preconditionViolation(op, "stage must be set first")
	}
	for _, g := range o.Groups {
		g.Accept()
	}
	return
}

// output saves results
func (o *solverBase) output(t float64, verbose bool) (err error) {
	if o.sum == nil {
		return
	}
	err = o.sum.SaveDomains(t, o.doms, verbose)
	if err != nil {
		return chk.Err("cannot save results:\n%v", err)
	}
	return
}
