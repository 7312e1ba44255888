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
)

// ElemP implements an element for transient diffusion (e.g. seepage or heat conduction)
// with the scalar field pl as primary variable
//
//  C・∂pl/∂t - ∇・(k∇pl) = s   with   ∂pl/∂t = β1・pl - ψ*
//
type ElemP struct {

	// basic data
	Cell *inp.Cell   // the cell structure
	X    [][]float64 // matrix of nodal coordinates [ndim][nnode]
	Shp  *shp.Shape  // shape structure (private copy)
	Np   int         // total number of unknowns == number of vertices
	Ndim int         // space dimension

	// parameters
	Kcnd float64 // conductivity
	Ccap float64 // capacity
	Sfcn dbf.T   // source term function

	// integration points
	IpsElem []*shp.Ipoint // integration points of element
	IpsFace []*shp.Ipoint // integration points corresponding to faces

	// problem variables
	Pmap []int // assembly map (location array/element equations)

	// natural boundary conditions
	NatBcs []*NaturalBc

	// local starred variables
	ψs []float64 // [nip] ψ* = β1.p + β2.dpdt

	// scratchpad. computed @ each ip
	gpl []float64 // [ndim] ∇pl
}

// keys of natural boundary conditions handled by ElemP
var pNatKeys = map[string]bool{"flux": true, "fluxsurf": true}

// register element
func init() {

	// information allocator
	infogetters["p"] = func(sim *inp.Simulation, cell *inp.Cell, edat *inp.ElemData) *Info {
		nverts := shp.GetNverts(cell.Type)
		if nverts < 0 {
			return nil
		}
		var info Info
		info.Dofs = make([][]string, nverts)
		for m := 0; m < nverts; m++ {
			info.Dofs[m] = []string{"pl"}
		}
		info.Y2F = map[string]string{"pl": "ql"}
		info.T1vars = []string{"pl"}
		return &info
	}

	// element allocator
	eallocators["p"] = func(sim *inp.Simulation, cell *inp.Cell, edat *inp.ElemData, x [][]float64) (Elem, error) {

		// basic data
		var o ElemP
		o.Cell = cell
		o.X = x
		o.Shp = shp.New(cell.Type)
		if o.Shp == nil {
			return nil, chk.Err("cannot find shape type %q", cell.Type)
		}
		o.Ndim = len(x)
		o.Np = o.Shp.Nverts

		// parameters
		mdat := sim.Materials.Get(edat.Mat)
		if mdat == nil {
			return nil, chk.Err("cannot find material %q for diffusion element {tag=%d id=%d}", edat.Mat, cell.Tag, cell.Id)
		}
		o.Kcnd = GetMatPrm(sim, edat.Mat, "k", 1)
		o.Ccap = GetMatPrm(sim, edat.Mat, "C", 1)
		if o.Kcnd <= 0 || o.Ccap < 0 {
			return nil, chk.Err("diffusion element requires k > 0 and C ≥ 0; k=%g C=%g are invalid", o.Kcnd, o.Ccap)
		}

		// integration points
		var err error
		o.IpsElem, o.IpsFace, err = GetIntegrationPoints(edat.Nip, edat.Nipf, cell.Type)
		if err != nil {
			return nil, err
		}

		// scratchpad
		o.ψs = make([]float64, len(o.IpsElem))
		o.gpl = make([]float64, o.Ndim)

		// natural boundary conditions
		err = o.setStage(cell)
		if err != nil {
			return nil, err
		}
		return &o, nil
	}
}

// Id returns the cell Id
func (o *ElemP) Id() int { return o.Cell.Id }

// SetEqs set equations
func (o *ElemP) SetEqs(eqs [][]int, internal []int) (err error) {
	if len(eqs) != o.Np {
		return chk.Err("ElemP: eid=%d: equations of %d nodes are required; %d given", o.Id(), o.Np, len(eqs))
	}
	o.Pmap = make([]int, o.Np)
	for m := 0; m < o.Np; m++ {
		if len(eqs[m]) != 1 {
			return chk.Err("ElemP: eid=%d: node %d must have one equation", o.Id(), m)
		}
		o.Pmap[m] = eqs[m][0]
	}
	return
}

// Lmap returns the location map
func (o *ElemP) Lmap() []int { return o.Pmap }

// SetEleConds set element conditions
func (o *ElemP) SetEleConds(key string, f dbf.T, extra string) (err error) {
	if key == "s" { // source
		o.Sfcn = f
		return
	}
	return chk.Err("ElemP: element condition %q is not available", key)
}

// setStage resets conditions of a new stage
func (o *ElemP) setStage(cell *inp.Cell) (err error) {
	o.Cell = cell
	o.Sfcn = nil
	o.NatBcs, err = GetNaturalBcs(cell, pNatKeys)
	return
}

// InterpStarVars interpolates star variables to integration points
func (o *ElemP) InterpStarVars(sol *Solution) (err error) {
	for idx, ip := range o.IpsElem {
		err = o.Shp.CalcAtIp(o.X, ip, false)
		if err != nil {
			return
		}
		o.ψs[idx] = 0
		for m := 0; m < o.Np; m++ {
			o.ψs[idx] += o.Shp.S[m] * sol.Psi[o.Pmap[m]]
		}
	}
	return
}

// Evaluate computes -R and/or dR/dpl
func (o *ElemP) Evaluate(prm *EvalParams, dom *Domain, lm []int, out *ElemOutputs) (err error) {

	// check
	err = checkEvalArgs("ElemP.Evaluate", o.Np, prm, lm, out)
	if err != nil {
		return
	}
	out.clear(prm.Action)
	sol := prm.Sol

	// auxiliary
	transient := !sol.Steady && sol.DynCfs != nil && o.Ccap > 0
	var β1 float64
	if transient {
		β1 = sol.DynCfs.β1
	}
	var src float64
	if o.Sfcn != nil {
		src = o.Sfcn.F(sol.T, nil)
	}

	// for each integration point
	for idx, ip := range o.IpsElem {

		// interpolation functions, gradients and variables @ ip
		err = o.Shp.CalcAtIp(o.X, ip, true)
		if err != nil {
			return
		}
		if o.Shp.J <= 0 {
			return chk.Err("ElemP: eid=%d: Jacobian is non-positive = %g", o.Id(), o.Shp.J)
		}
		coef := o.Shp.J * ip.W
		S, G := o.Shp.S, o.Shp.G
		var pl float64
		for i := 0; i < o.Ndim; i++ {
			o.gpl[i] = 0
		}
		for m := 0; m < o.Np; m++ {
			pl += S[m] * sol.Y[lm[m]]
			for i := 0; i < o.Ndim; i++ {
				o.gpl[i] += G[m][i] * sol.Y[lm[m]]
			}
		}

		// residual
		if prm.Action.Rhs() {
			var rate float64
			if transient {
				rate = β1*pl - o.ψs[idx]
			}
			for m := 0; m < o.Np; m++ {
				var div float64
				for i := 0; i < o.Ndim; i++ {
					div += G[m][i] * o.gpl[i]
				}
				out.Vec[m] -= coef * (S[m]*(o.Ccap*rate-src) + o.Kcnd*div)
			}
		}

		// tangent
		if prm.Action.Kb() {
			for m := 0; m < o.Np; m++ {
				for n := 0; n < o.Np; n++ {
					var gg float64
					for i := 0; i < o.Ndim; i++ {
						gg += G[m][i] * G[n][i]
					}
					out.Mat[m][n] += coef * (S[m]*S[n]*o.Ccap*β1 + o.Kcnd*gg)
				}
			}
		}
	}

	// boundary fluxes
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

// EvaluateNeumann adds prescribed normal (inward) fluxes to fvec
//  Note: fluxes on 3D faces are not available
func (o *ElemP) EvaluateNeumann(prm *EvalParams, dom *Domain, lm []int, nbc *NaturalBc, fvec []float64) (err error) {
	err = checkNeumannArgs("ElemP.EvaluateNeumann", o.Np, prm, lm, nbc, fvec)
	if err != nil {
		return
	}
	switch nbc.Kind {
	case LineNeumann:
	case SurfaceNeumann:
		return notImplemented("ElemP.EvaluateNeumann", "flux %q on 3D faces", nbc.Key)
	default:
		return notImplemented("ElemP.EvaluateNeumann", "boundary integral of kind %v", nbc.Kind)
	}
	if nbc.Key != "flux" {
		return preconditionViolation("ElemP.EvaluateNeumann", "key %q cannot be applied to diffusion elements", nbc.Key)
	}
	for _, ipf := range o.IpsFace {
		err = o.Shp.CalcAtFaceIp(o.X, ipf, nbc.IdxFace)
		if err != nil {
			return
		}
		nvec := o.Shp.Fnvec
		coef := ipf.W * nbc.Fcn.F(prm.Sol.T, nil) * math.Sqrt(nvec[0]*nvec[0]+nvec[1]*nvec[1])
		for j, m := range o.Shp.FaceLocalVerts[nbc.IdxFace] {
			fvec[m] += coef * o.Shp.Sf[j]
		}
	}
	return
}
