// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
)

// EssentialBc holds information about essential bounday conditions such as constrained nodes.
// Lagrange multipliers are used to implement both single- and multi-point constraints.
//  In general, essential bcs / constraints are defined by means of:
//
//      A・y = c
//
//  The resulting Kb matrix will then have the following form:
//      _       _
//     |  K  At  | / δy \   / -R - At*λ \
//     |         | |    | = |           |
//     |_ A   0 _| \ δλ /   \  c - A*y  /
//         Kb       δyb          fb
//
type EssentialBc struct {
	Key   string    // key such as 'ux', 'uy', 'rigid', 'incsup'
	Eqs   []int     // equations numbers; can be more than one e.g. for inclined support
	ValsA []float64 // values for matrix A
	Fcn   dbf.T     // function that implements the "c" vector in  A・y = c
}

// EbcArray is an array of EssentialBc's
type EbcArray []*EssentialBc

// EssentialBcs implements a structure to record the definition of essential bcs / constraints.
// Each constraint will have a unique Lagrange multiplier index.
type EssentialBcs struct {
	Bcs  EbcArray     // active essential bcs / constraints
	NnzA int          // number of non-zeros in matrix A
	A    la.Triplet   // matrix of coefficients 'A'
	Am   *la.CCMatrix // compressed form of A matrix
}

// Init initialises this structure
func (o *EssentialBcs) Init() {
	o.Bcs = make([]*EssentialBc, 0)
	o.NnzA = 0
	o.Am = nil
}

// Build sorts constraints such that Lagrange multipliers are numbered in the order of equations
//  nλ   -- is the number of essential bcs / constraints == number of Lagrange multipliers
//  nnzA -- is the number of non-zeros in matrix 'A'
func (o *EssentialBcs) Build(ny int) (nλ, nnzA int, err error) {
	nλ = len(o.Bcs)
	if nλ == 0 {
		return
	}
	sort.Sort(o.Bcs)
	for _, bc := range o.Bcs {
		for _, eq := range bc.Eqs {
			if eq < 0 || eq >= ny {
				return 0, 0, chk.Err("essential boundary condition %q refers to equation %d out of range [0,%d)", bc.Key, eq, ny)
			}
		}
		nnzA += len(bc.ValsA)
	}
	o.NnzA = nnzA

	// set matrix A
	o.A.Init(nλ, ny, nnzA)
	for i, bc := range o.Bcs {
		for j, eq := range bc.Eqs {
			o.A.Put(i, eq, bc.ValsA[j])
		}
	}
	o.Am = o.A.ToMatrix(nil)
	return
}

// AddToRhs adds the essential bcs / constraints terms to the augmented fb vector
func (o *EssentialBcs) AddToRhs(fb []float64, sol *Solution) {

	// skip if there are no constraints
	if len(o.Bcs) == 0 {
		return
	}

	// add -At*λ to fb
	la.SpMatTrVecMulAdd(fb, -1, o.Am, sol.L) // fb += -1 * At * λ

	// assemble -rc = c - A*y into fb
	ny := len(sol.Y)
	for i, bc := range o.Bcs {
		fb[ny+i] = bc.Fcn.F(sol.T, nil)
	}
	la.SpMatVecMulAdd(fb[ny:], -1, o.Am, sol.Y) // fb += -1 * A * y
}

// AddToKb adds A and At to the augmented Kb matrix
func (o *EssentialBcs) AddToKb(Kb *la.Triplet) {
	if len(o.Bcs) == 0 {
		return
	}
	Kb.PutMatAndMatT(&o.A)
}

// GetIsEssenKeyMap returns the "YandC" map with special keys that EssentialBcs can handle,
// including:
//  rigid  -- define rigid element constraints
//  incsup -- inclined support constraints
func GetIsEssenKeyMap() map[string]bool {
	return map[string]bool{"rigid": true, "incsup": true}
}

// Set sets a constraint if it does not exist yet.
//  key   -- can be Dof key such as "ux", "uy" or constraint type such as "incsup" or "rigid"
//  extra -- is a keycode-style data. e.g. "!alp:30"
//  Note: the default key is single point constraint; e.g. "ux", "uy", ...
func (o *EssentialBcs) Set(key string, nodes []*Node, fcn dbf.T, extra string) (err error) {

	// auxiliary
	if len(nodes) == 0 {
		return chk.Err("at least one node is required to set essential boundary condition %q", key)
	}
	if nodes[0] == nil {
		return
	}
	if fcn == nil {
		fcn = &dbf.Cte{C: 0}
	}
	ndim := len(nodes[0].Vert.C)

	// rigid element
	if key == "rigid" {
		a := nodes[0].Dofs
		for i := 1; i < len(nodes); i++ {
			for j, b := range nodes[i].Dofs {
				o.set_eqs(key, []int{a[j].Eq, b.Eq}, []float64{1, -1}, &dbf.Cte{C: 0})
			}
		}
		return // success
	}

	// inclined support
	if key == "incsup" {

		// check
		if ndim != 2 {
			return chk.Err("inclined support works only in 2D for now")
		}

		// get data
		var α float64
		if val, found := io.Keycode(extra, "alp"); found {
			α = io.Atof(val) * math.Pi / 180.0
		}
		co, si := math.Cos(α), math.Sin(α)

		// set for all nodes
		for _, nod := range nodes {
			eqx := nod.GetEq("ux")
			eqy := nod.GetEq("uy")
			if eqx < 0 || eqy < 0 {
				return chk.Err("inclined support requires ux and uy at node %d", nod.Vert.Id)
			}
			o.set_eqs(key, []int{eqx, eqy}, []float64{co, si}, &dbf.Cte{C: 0})
		}
		return // success
	}

	// single-point constraint
	for _, nod := range nodes {

		// get DOF
		d := nod.GetDof(key)
		if d == nil {
			continue // node doesn't have key. ex: pl in solid-only region
		}

		// set constraint
		o.set_eqs(key, []int{d.Eq}, []float64{1}, fcn)
	}
	return
}

// List returns a simple list logging bcs at time t
func (o *EssentialBcs) List(t float64) (l string) {
	l = "\n==================================================================\n"
	l += io.Sf("%8s%8s%25s%25s\n", "eq", "key", "value @ t=0", io.Sf("value @ t=%g", t))
	l += "------------------------------------------------------------------\n"
	for _, bc := range o.Bcs {
		l += io.Sf("%8d%8s%25.13f%25.13f\n", bc.Eqs[0], bc.Key, bc.Fcn.F(0, nil), bc.Fcn.F(t, nil))
	}
	l += "==================================================================\n"
	return
}

// auxiliary /////////////////////////////////////////////////////////////////////////////////////////

// set_eqs sets/replace constraint and equations
func (o *EssentialBcs) set_eqs(key string, eqs []int, valsA []float64, fcn dbf.T) {

	// replace existent
	for _, eq := range eqs {
		for _, bc := range o.Bcs {
			for _, eqOld := range bc.Eqs {
				if eqOld == eq {
					bc.Key, bc.Eqs, bc.ValsA, bc.Fcn = key, eqs, valsA, fcn
					return
				}
			}
		}
	}

	// add new
	o.Bcs = append(o.Bcs, &EssentialBc{key, eqs, valsA, fcn})
}

// functions to implement Sort interface
func (o EbcArray) Len() int      { return len(o) }
func (o EbcArray) Swap(i, j int) { o[i], o[j] = o[j], o[i] }
func (o EbcArray) Less(i, j int) bool {
	return minInt(o[i].Eqs) < minInt(o[j].Eqs)
}

// minInt returns the smallest value in a
func minInt(a []int) (m int) {
	m = a[0]
	for _, v := range a {
		if v < m {
			m = v
		}
	}
	return
}
