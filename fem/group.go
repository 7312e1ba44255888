// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"gonum.org/v1/gonum/mat"
)

// SolverGroup defines the iterate of a nonlinear solver: the current solution together with the
// last accepted (converged) one, the residual and the (cached) Jacobian
type SolverGroup interface {
	Sol() *Solution                   // current iterate
	Conv() *Solution                  // last accepted state
	F() []float64                     // augmented residual vector: fb = -R
	ComputeF() (err error)            // computes fb at current iterate
	ComputeJacobian() (err error)     // assembles and factorises Kb at current iterate
	IsJacobian() bool                 // tells whether a factorised Jacobian is available
	ComputeNewton(dy []float64) error // solves Kb・dy = fb
	Accept()                          // accepts current iterate as converged
}

// Group implements SolverGroup for one domain using a dense LU factorisation of the Jacobian
type Group struct {
	Dom *Domain     // domain
	Fb  []float64   // [nyb] residual == -fb
	Kb  *la.Triplet // Jacobian == dRdy; nil when destroyed

	// internal
	lu   *mat.LU   // factorisation of Kb; nil when destroyed
	conv *Solution // last accepted state
	njac int       // number of Jacobian evaluations since last Accept
}

// NewGroup returns a new group for domain dom; the stage of dom must be set already
func NewGroup(dom *Domain) (o *Group) {
	o = &Group{Dom: dom}
	o.Resize()
	return
}

// Resize reallocates arrays after the number of equations of the domain has changed
func (o *Group) Resize() {
	o.DestroyJacobian()
	o.Fb = make([]float64, o.Dom.Nyb)
	if o.Dom.Sol != nil {
		o.conv = o.Dom.Sol.GetCopy()
	}
	o.njac = 0
}

// Sol returns the current iterate
func (o *Group) Sol() *Solution { return o.Dom.Sol }

// Conv returns the last accepted state
func (o *Group) Conv() *Solution { return o.conv }

// F returns the residual vector
func (o *Group) F() []float64 { return o.Fb }

// ComputeF computes the augmented right-hand side vector
func (o *Group) ComputeF() (err error) {
	if len(o.Fb) != o.Dom.Nyb {
		return preconditionViolation("Group.ComputeF", "group must be resized after topology changes")
	}
	return o.Dom.AssembleRhs(o.Fb)
}

// ComputeJacobian assembles and factorises the augmented Jacobian matrix.
// The triplet is (re)allocated if it has been destroyed
func (o *Group) ComputeJacobian() (err error) {
	nyb := o.Dom.Nyb
	if nyb == 0 {
		return preconditionViolation("Group.ComputeJacobian", "domain has no equations")
	}
	if o.Kb == nil {
		o.Kb = new(la.Triplet)
		o.Kb.Init(nyb, nyb, o.Dom.NnzKb+2*o.Dom.NnzA)
	}
	err = o.Dom.AssembleKb(o.Kb, o.njac == 0)
	if err != nil {
		return
	}
	o.njac++

	// factorisation
	o.lu, err = factorize(o.Kb)
	return
}

// factorize computes the LU factorisation of the dense form of K
func factorize(K *la.Triplet) (lu *mat.LU, err error) {
	D := K.ToDense() // column-major
	n := D.M
	lu = new(mat.LU)
	lu.Factorize(mat.NewDense(n, n, D.Data).T())
	if math.IsInf(lu.Cond(), 1) {
		return nil, chk.Err("Jacobian matrix is singular")
	}
	return
}

// IsJacobian tells whether the factorised Jacobian is available
func (o *Group) IsJacobian() bool { return o.lu != nil }

// ComputeNewton solves Kb・dy = fb using the cached factorisation
//  dy -- [nyb] output
func (o *Group) ComputeNewton(dy []float64) (err error) {
	if o.lu == nil {
		return preconditionViolation("Group.ComputeNewton", "Jacobian must be computed first")
	}
	if len(dy) != o.Dom.Nyb {
		return preconditionViolation("Group.ComputeNewton", "dy must have size %d; got %d", o.Dom.Nyb, len(dy))
	}
	x := mat.NewVecDense(len(dy), dy)
	err = o.lu.SolveVecTo(x, false, mat.NewVecDense(len(o.Fb), o.Fb))
	var cond mat.Condition
	if errors.As(err, &cond) {
		return nil // ill-conditioned but solved
	}
	return
}

// Accept stores the current iterate as the converged state
func (o *Group) Accept() {
	if o.conv == nil || len(o.conv.Y) != len(o.Dom.Sol.Y) || len(o.conv.L) != len(o.Dom.Sol.L) {
		o.conv = o.Dom.Sol.GetCopy()
	} else {
		o.conv.Set(o.Dom.Sol)
	}
	o.njac = 0
}

// DestroyJacobian drops the Jacobian matrix and its factorisation; they will be
// rebuilt on the next call to ComputeJacobian
func (o *Group) DestroyJacobian() {
	o.Kb = nil
	o.lu = nil
}
