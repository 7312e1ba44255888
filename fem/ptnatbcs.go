// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// PointNaturalBc holds information on point natural boundary conditions such as
// prescribed forces or fluxes at nodes
type PointNaturalBc struct {
	Key   string // key such as fx, fy, ql
	Eq    int    // equation
	X     []float64
	Fcn   dbf.T  // function
	Extra string // extra information
}

// PtNaturalBcs is a set of prescribed forces
type PtNaturalBcs struct {
	Eq2idx map[int]int       // maps eq number to indices in Bcs
	Bcs    []*PointNaturalBc // active boundary conditions
}

// Reset initialises internal structures
func (o *PtNaturalBcs) Reset() {
	o.Eq2idx = make(map[int]int)
	o.Bcs = make([]*PointNaturalBc, 0)
}

// AddToRhs adds the boundary conditions terms to the augmented fb vector
func (o PtNaturalBcs) AddToRhs(fb []float64, t float64) {
	for _, p := range o.Bcs {
		fb[p.Eq] += p.Fcn.F(t, p.X)
	}
}

// Set sets new point natural boundary condition
//  ukey -- DOF key corresponding to the force/flux key; e.g. "ux" for "fx"
func (o *PtNaturalBcs) Set(key, ukey string, nod *Node, fcn dbf.T, extra string) (err error) {
	d := nod.GetDof(ukey)
	if d == nil {
		return // node doesn't have key. ex: pl in qua8/qua4 elements
	}
	if fcn == nil {
		return chk.Err("function of point natural boundary condition %q must be given", key)
	}
	if idx, ok := o.Eq2idx[d.Eq]; ok {
		o.Bcs[idx].Key = key
		o.Bcs[idx].Eq = d.Eq
		o.Bcs[idx].X = nod.Vert.C
		o.Bcs[idx].Fcn = fcn
		o.Bcs[idx].Extra = extra
		return
	}
	o.Eq2idx[d.Eq] = len(o.Bcs)
	o.Bcs = append(o.Bcs, &PointNaturalBc{key, d.Eq, nod.Vert.C, fcn, extra})
	return
}
