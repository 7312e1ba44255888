// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/mpfem/mpfem/inp"
	"github.com/mpfem/mpfem/shp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
)

// ElemAle implements the mesh motion of arbitrary Lagrangian-Eulerian (ALE) formulations:
// the mesh displacements d = {dx, dy} are smoothed by solving a Laplace equation with
// Jacobian-based stiffening
//
//  ∇・(κ∇dᵢ) = 0   with   κ = (J0/J)^χ
//
//  where J0 is the Jacobian at the centre of the undeformed element. Small elements are
//  thus stiffer and keep their shape.
type ElemAle struct {

	// basic data
	Cell *inp.Cell   // the cell structure
	X    [][]float64 // matrix of nodal coordinates [ndim][nnode]
	Shp  *shp.Shape  // shape structure (private copy)
	Nd   int         // total number of unknowns
	Ndim int         // space dimension

	// parameters
	Chi float64 // stiffening exponent
	J0  float64 // Jacobian at centre

	// integration points
	IpsElem []*shp.Ipoint // integration points of element

	// problem variables
	Dmap []int // assembly map (location array/element equations)

	// natural boundary conditions (accepted but without contribution)
	NatBcs []*NaturalBc
}

// register element
func init() {

	// information allocator
	infogetters["ale"] = func(sim *inp.Simulation, cell *inp.Cell, edat *inp.ElemData) *Info {
		nverts := shp.GetNverts(cell.Type)
		if nverts < 0 || sim.Ndim != 2 {
			return nil
		}
		var info Info
		ykeys := []string{"dx", "dy"}
		info.Dofs = make([][]string, nverts)
		for m := 0; m < nverts; m++ {
			info.Dofs[m] = ykeys
		}
		info.Y2F = map[string]string{"dx": "fdx", "dy": "fdy"}
		return &info
	}

	// element allocator
	eallocators["ale"] = func(sim *inp.Simulation, cell *inp.Cell, edat *inp.ElemData, x [][]float64) (Elem, error) {

		// basic data
		var o ElemAle
		o.Cell = cell
		o.X = x
		o.Shp = shp.New(cell.Type)
		if o.Shp == nil {
			return nil, chk.Err("cannot find shape type %q", cell.Type)
		}
		o.Ndim = len(x)
		o.Nd = o.Ndim * o.Shp.Nverts

		// parameters
		o.Chi = 1
		if s_chi, found := io.Keycode(edat.Extra, "chi"); found {
			o.Chi = io.Atof(s_chi)
		}

		// integration points
		var err error
		o.IpsElem, err = shp.GetIps(cell.Type, edat.Nip)
		if err != nil {
			return nil, err
		}

		// reference Jacobian
		rc := []float64{0, 0, 0} // centre
		if cell.Type == "tri3" {
			rc[0], rc[1] = 1.0/3.0, 1.0/3.0
		}
		err = o.Shp.CalcAtR(x, rc, true)
		if err != nil {
			return nil, err
		}
		o.J0 = o.Shp.J
		if o.J0 <= 0 {
			return nil, chk.Err("ALE element %d has non-positive Jacobian = %g", cell.Id, o.J0)
		}

		// natural boundary conditions
		err = o.setStage(cell)
		if err != nil {
			return nil, err
		}
		return &o, nil
	}
}

// Id returns the cell Id
func (o *ElemAle) Id() int { return o.Cell.Id }

// SetEqs set equations
func (o *ElemAle) SetEqs(eqs [][]int, internal []int) (err error) {
	if len(eqs) != o.Shp.Nverts {
		return chk.Err("ElemAle: eid=%d: equations of %d nodes are required; %d given", o.Id(), o.Shp.Nverts, len(eqs))
	}
	o.Dmap = make([]int, o.Nd)
	for m := 0; m < o.Shp.Nverts; m++ {
		if len(eqs[m]) != o.Ndim {
			return chk.Err("ElemAle: eid=%d: node %d must have %d equations", o.Id(), m, o.Ndim)
		}
		for i := 0; i < o.Ndim; i++ {
			o.Dmap[i+m*o.Ndim] = eqs[m][i]
		}
	}
	return
}

// Lmap returns the location map
func (o *ElemAle) Lmap() []int { return o.Dmap }

// SetEleConds set element conditions
func (o *ElemAle) SetEleConds(key string, f dbf.T, extra string) (err error) {
	return chk.Err("ElemAle: element condition %q is not available", key)
}

// setStage resets conditions of a new stage
func (o *ElemAle) setStage(cell *inp.Cell) (err error) {
	o.Cell = cell
	o.NatBcs, err = GetNaturalBcs(cell, neumannKeysAll())
	return
}

// Evaluate computes -R and/or dR/dd
func (o *ElemAle) Evaluate(prm *EvalParams, dom *Domain, lm []int, out *ElemOutputs) (err error) {

	// check
	err = checkEvalArgs("ElemAle.Evaluate", o.Nd, prm, lm, out)
	if err != nil {
		return
	}
	out.clear(prm.Action)
	sol := prm.Sol

	// for each integration point
	nverts := o.Shp.Nverts
	for _, ip := range o.IpsElem {
		err = o.Shp.CalcAtIp(o.X, ip, true)
		if err != nil {
			return
		}
		if o.Shp.J <= 0 {
			return chk.Err("ElemAle: eid=%d: Jacobian is non-positive = %g", o.Id(), o.Shp.J)
		}
		κ := math.Pow(o.J0/o.Shp.J, o.Chi)
		coef := o.Shp.J * ip.W * κ
		G := o.Shp.G
		for m := 0; m < nverts; m++ {
			for n := 0; n < nverts; n++ {
				var gg float64
				for k := 0; k < o.Ndim; k++ {
					gg += G[m][k] * G[n][k]
				}
				for i := 0; i < o.Ndim; i++ {
					r, c := i+m*o.Ndim, i+n*o.Ndim
					if prm.Action.Rhs() {
						out.Vec[r] -= coef * gg * sol.Y[lm[c]]
					}
					if prm.Action.Kb() {
						out.Mat[r][c] += coef * gg
					}
				}
			}
		}
	}

	// boundary terms
	if prm.Action.Rhs() {
		for _, nbc := range o.NatBcs {
			err = o.EvaluateNeumann(prm, dom, lm, nbc, out.Vec)
			if err != nil {
				return
			}
		}
	}
	return
}

// EvaluateNeumann does nothing: mesh motion carries no boundary loads. All kinds of
// boundary integrals are accepted and fvec is left untouched
func (o *ElemAle) EvaluateNeumann(prm *EvalParams, dom *Domain, lm []int, nbc *NaturalBc, fvec []float64) (err error) {
	return checkNeumannArgs("ElemAle.EvaluateNeumann", o.Nd, prm, lm, nbc, fvec)
}
