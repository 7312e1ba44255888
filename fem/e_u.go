// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/mpfem/mpfem/inp"
	"github.com/mpfem/mpfem/msolid"
	"github.com/mpfem/mpfem/shp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/utl"
	"gonum.org/v1/gonum/mat"
)

// ElemU represents a solid element with displacements u as primary variables
type ElemU struct {

	// basic data
	Cell *inp.Cell   // the cell structure
	X    [][]float64 // matrix of nodal coordinates [ndim][nnode]
	Shp  *shp.Shape  // shape structure (private copy)
	Nu   int         // total number of unknowns
	Ndim int         // space dimension

	// variables for dynamics
	Rho  float64 // density of solids
	Cdam float64 // coefficient for damping
	Gfcn dbf.T   // gravity function

	// optional data
	Thickness float64 // thickness (for plane-stress)
	Enhanced  bool    // incompatible modes

	// integration points
	IpsElem []*shp.Ipoint // integration points of element
	IpsFace []*shp.Ipoint // integration points corresponding to faces

	// material model and internal variables
	Mdl       msolid.Small    // material model
	States    []*msolid.State // [nip] states
	StatesBkp []*msolid.State // [nip] backup states
	StatesAux []*msolid.State // [nip] auxiliary backup states

	// problem variables
	Umap []int // assembly map (location array/element equations)

	// natural boundary conditions
	NatBcs []*NaturalBc

	// auxiliary data of enhanced formulation
	Aux *AuxData
	enh *uEnhanced

	// local starred variables
	ζs [][]float64 // [nip][ndim] t2 star vars: ζ* = α1.u + α2.v + α3.a
	χs [][]float64 // [nip][ndim] t2 star vars: χ* = α4.u + α5.v + α6.a

	// scratchpad. computed @ each ip
	grav []float64  // [ndim] gravity vector
	us   []float64  // [ndim] displacements @ ip
	B    *mat.Dense // [nsig][nu] B matrix
	D    *mat.Dense // [nsig][nsig] constitutive consistent tangent matrix
	Dsl  [][]float64 // [nsig][nsig] D computed by model
	K    *mat.Dense  // [nu][nu] consistent tangent (stiffness) matrix
	tmp  *mat.Dense  // [nsig][nu] D * B

	// strains
	ε  []float64 // total (updated) strains
	Δε []float64 // incremental strains leading to updated strains
}

// keys of natural boundary conditions handled by ElemU
var uNatKeys = map[string]bool{"qn": true, "qx": true, "qy": true, "qnsurf": true}

// initialisation ///////////////////////////////////////////////////////////////////////////////////

// register element
func init() {

	// information allocator
	infogetters["u"] = func(sim *inp.Simulation, cell *inp.Cell, edat *inp.ElemData) *Info {

		// number of nodes in element
		nverts := shp.GetNverts(cell.Type)
		if nverts < 0 || sim.Ndim != 2 {
			return nil
		}

		// solution variables
		var info Info
		ykeys := []string{"ux", "uy"}
		info.Dofs = make([][]string, nverts)
		for m := 0; m < nverts; m++ {
			info.Dofs[m] = ykeys
		}

		// maps
		info.Y2F = map[string]string{"ux": "fx", "uy": "fy"}

		// t1 and t2 variables
		info.T2vars = ykeys
		return &info
	}

	// element allocator
	eallocators["u"] = func(sim *inp.Simulation, cell *inp.Cell, edat *inp.ElemData, x [][]float64) (Elem, error) {

		// basic data
		var o ElemU
		o.Cell = cell
		o.X = x
		o.Shp = shp.New(cell.Type)
		if o.Shp == nil {
			return nil, chk.Err("cannot find shape type %q", cell.Type)
		}
		o.Ndim = len(x)
		o.Nu = o.Ndim * o.Shp.Nverts

		// parse flags
		o.Enhanced, o.Thickness = GetSolidFlags(sim.Data.Pstress, edat.Extra)

		// integration points
		var err error
		o.IpsElem, o.IpsFace, err = GetIntegrationPoints(edat.Nip, edat.Nipf, cell.Type)
		if err != nil {
			return nil, err
		}
		nip := len(o.IpsElem)

		// model
		mdat := sim.Materials.Get(edat.Mat)
		if mdat == nil {
			return nil, chk.Err("cannot find material %q for solid element {tag=%d id=%d}", edat.Mat, cell.Tag, cell.Id)
		}
		o.Mdl, err = msolid.GetModel(mdat.Model, o.Ndim, sim.Data.Pstress, mdat.Prms)
		if err != nil {
			return nil, chk.Err("cannot get model for solid element {tag=%d id=%d material=%q}:\n%v", cell.Tag, cell.Id, edat.Mat, err)
		}
		o.Rho = o.Mdl.GetRho()
		for _, p := range mdat.Prms {
			if p.N == "Cdam" {
				o.Cdam = p.V
			}
		}

		// local starred variables
		o.ζs = utl.Alloc(nip, o.Ndim)
		o.χs = utl.Alloc(nip, o.Ndim)

		// scratchpad. computed @ each ip
		nsig := 2 * o.Ndim
		o.grav = make([]float64, o.Ndim)
		o.us = make([]float64, o.Ndim)
		o.B = mat.NewDense(nsig, o.Nu, nil)
		o.D = mat.NewDense(nsig, nsig, nil)
		o.Dsl = utl.Alloc(nsig, nsig)
		o.K = mat.NewDense(o.Nu, o.Nu, nil)
		o.tmp = mat.NewDense(nsig, o.Nu, nil)

		// strains
		o.ε = make([]float64, nsig)
		o.Δε = make([]float64, nsig)

		// auxiliary data and enhanced modes
		o.Aux = NewAuxData()
		if o.Enhanced {
			o.enh, err = newUEnhanced(&o)
			if err != nil {
				return nil, err
			}
		}

		// surface loads (natural boundary conditions)
		err = o.setStage(cell)
		if err != nil {
			return nil, err
		}
		return &o, nil
	}
}

// implementation ///////////////////////////////////////////////////////////////////////////////////

// Id returns the cell Id
func (o *ElemU) Id() int { return o.Cell.Id }

// SetEqs set equations
func (o *ElemU) SetEqs(eqs [][]int, internal []int) (err error) {
	if len(eqs) != o.Shp.Nverts {
		return chk.Err("ElemU: eid=%d: equations of %d nodes are required; %d given", o.Id(), o.Shp.Nverts, len(eqs))
	}
	o.Umap = make([]int, o.Nu)
	for m := 0; m < o.Shp.Nverts; m++ {
		if len(eqs[m]) != o.Ndim {
			return chk.Err("ElemU: eid=%d: node %d must have %d equations", o.Id(), m, o.Ndim)
		}
		for i := 0; i < o.Ndim; i++ {
			o.Umap[i+m*o.Ndim] = eqs[m][i]
		}
	}
	return
}

// Lmap returns the location map
func (o *ElemU) Lmap() []int { return o.Umap }

// SetEleConds set element conditions
func (o *ElemU) SetEleConds(key string, f dbf.T, extra string) (err error) {
	if key == "g" { // gravity
		o.Gfcn = f
		return
	}
	return chk.Err("ElemU: element condition %q is not available", key)
}

// setStage resets conditions of a new stage
func (o *ElemU) setStage(cell *inp.Cell) (err error) {
	o.Cell = cell
	o.Gfcn = nil
	o.NatBcs, err = GetNaturalBcs(cell, uNatKeys)
	return
}

// InterpStarVars interpolates star variables to integration points
func (o *ElemU) InterpStarVars(sol *Solution) (err error) {
	for idx, ip := range o.IpsElem {
		err = o.Shp.CalcAtIp(o.X, ip, false)
		if err != nil {
			return
		}
		for i := 0; i < o.Ndim; i++ {
			o.ζs[idx][i] = 0
			o.χs[idx][i] = 0
			for m := 0; m < o.Shp.Nverts; m++ {
				r := o.Umap[i+m*o.Ndim]
				o.ζs[idx][i] += o.Shp.S[m] * sol.Zet[r]
				o.χs[idx][i] += o.Shp.S[m] * sol.Chi[r]
			}
		}
	}
	return
}

// Evaluate computes -R and/or dR/du
func (o *ElemU) Evaluate(prm *EvalParams, dom *Domain, lm []int, out *ElemOutputs) (err error) {

	// check
	err = checkEvalArgs("ElemU.Evaluate", o.Nu, prm, lm, out)
	if err != nil {
		return
	}
	if o.Enhanced && o.enh == nil {
		return notImplemented("ElemU.Evaluate", "enhanced modes are available for qua4 only; cell %d is %q", o.Id(), o.Cell.Type)
	}
	if len(o.States) != len(o.IpsElem) {
		return preconditionViolation("ElemU.Evaluate", "initial values of element %d must be set first", o.Id())
	}
	out.clear(prm.Action)
	sol := prm.Sol

	// gravity
	for i := 0; i < o.Ndim; i++ {
		o.grav[i] = 0
	}
	if o.Gfcn != nil {
		o.grav[o.Ndim-1] = -o.Gfcn.F(sol.T, nil)
	}

	// enhanced modes
	if o.enh != nil {
		err = o.enh.evaluate(prm, lm, out)
		if err != nil {
			return
		}
	} else {

		// for each integration point
		nverts := o.Shp.Nverts
		K := o.K
		if prm.Action.Kb() {
			K.Zero()
		}
		for idx, ip := range o.IpsElem {

			// interpolation functions, gradients and variables @ ip
			err = o.ipvars(idx, sol, lm)
			if err != nil {
				return
			}
			if o.Shp.J <= 0 {
				return chk.Err("ElemU: eid=%d: Jacobian is non-positive = %g", o.Id(), o.Shp.J)
			}
			coef := o.Shp.J * ip.W * o.Thickness

			// internal forces
			if prm.Action.Rhs() {
				σ := o.States[idx].Sig
				for m := 0; m < nverts; m++ {
					for i := 0; i < o.Ndim; i++ {
						out.Vec[i+m*o.Ndim] -= coef * o.B.At(0, i+m*o.Ndim) * σ[0]
						out.Vec[i+m*o.Ndim] -= coef * o.B.At(1, i+m*o.Ndim) * σ[1]
						out.Vec[i+m*o.Ndim] -= coef * o.B.At(3, i+m*o.Ndim) * σ[3]
					}
				}
			}

			// stiffness: K += coef * tr(B) * D * B
			if prm.Action.Kb() {
				err = o.calcD(idx, prm.FirstIt)
				if err != nil {
					return
				}
				o.tmp.Mul(o.D, o.B)
				var BtDB mat.Dense
				BtDB.Mul(o.B.T(), o.tmp)
				BtDB.Scale(coef, &BtDB)
				K.Add(K, &BtDB)
			}
		}
		if prm.Action.Kb() {
			for i := 0; i < o.Nu; i++ {
				for j := 0; j < o.Nu; j++ {
					out.Mat[i][j] = K.At(i, j)
				}
			}
		}
	}

	// inertia, damping and gravity
	err = o.addBodyTerms(prm, lm, out)
	if err != nil {
		return
	}

	// external forces
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

// EvaluateNeumann adds surface loads to fvec
//  Note: surface (3D) loads are not available
func (o *ElemU) EvaluateNeumann(prm *EvalParams, dom *Domain, lm []int, nbc *NaturalBc, fvec []float64) (err error) {
	err = checkNeumannArgs("ElemU.EvaluateNeumann", o.Nu, prm, lm, nbc, fvec)
	if err != nil {
		return
	}
	switch nbc.Kind {
	case LineNeumann:
	case SurfaceNeumann:
		return notImplemented("ElemU.EvaluateNeumann", "surface load %q on 3D faces", nbc.Key)
	default:
		return notImplemented("ElemU.EvaluateNeumann", "boundary integral of kind %v", nbc.Kind)
	}

	// check key before writing
	switch nbc.Key {
	case "qn", "qx", "qy":
	default:
		return preconditionViolation("ElemU.EvaluateNeumann", "key %q cannot be applied to solid elements", nbc.Key)
	}

	// compute surface integral
	for _, ipf := range o.IpsFace {
		err = o.Shp.CalcAtFaceIp(o.X, ipf, nbc.IdxFace)
		if err != nil {
			return
		}
		coef := ipf.W * nbc.Fcn.F(prm.Sol.T, nil) * o.Thickness
		nvec := o.Shp.Fnvec
		jf := math.Sqrt(nvec[0]*nvec[0] + nvec[1]*nvec[1])
		for j, m := range o.Shp.FaceLocalVerts[nbc.IdxFace] {
			switch nbc.Key {
			case "qn":
				for i := 0; i < o.Ndim; i++ {
					fvec[i+m*o.Ndim] += coef * o.Shp.Sf[j] * nvec[i] // +fe
				}
			case "qx":
				fvec[0+m*o.Ndim] += coef * o.Shp.Sf[j] * jf
			case "qy":
				fvec[1+m*o.Ndim] += coef * o.Shp.Sf[j] * jf
			}
		}
	}
	return
}

// Update perform (tangent) update
func (o *ElemU) Update(sol *Solution) (err error) {
	if o.Enhanced && o.enh == nil {
		return notImplemented("ElemU.Update", "enhanced modes are available for qua4 only; cell %d is %q", o.Id(), o.Cell.Type)
	}
	if o.enh != nil {
		return o.enh.update(sol)
	}
	for idx, ip := range o.IpsElem {

		// interpolation functions and gradients
		err = o.Shp.CalcAtIp(o.X, ip, true)
		if err != nil {
			return
		}
		o.calcB()

		// compute strains
		o.strains(sol, o.Umap)

		// call model update => update stresses
		err = o.Mdl.Update(o.States[idx], o.ε, o.Δε, o.Id(), idx)
		if err != nil {
			return chk.Err("Update failed (eid=%d, ip=%d)\nΔε=%v\n%v", o.Id(), idx, o.Δε, err)
		}
	}
	return
}

// internal variables ///////////////////////////////////////////////////////////////////////////////

// Ipoints returns the real coordinates of integration points [nip][ndim]
func (o *ElemU) Ipoints() (coords [][]float64) {
	coords = make([][]float64, len(o.IpsElem))
	for idx, ip := range o.IpsElem {
		coords[idx] = o.Shp.IpRealCoords(o.X, ip)
	}
	return
}

// SetIniIvs sets initial ivs for given values in sol
func (o *ElemU) SetIniIvs(sol *Solution) (err error) {

	// allocate slices of states
	nip := len(o.IpsElem)
	o.States = make([]*msolid.State, nip)
	o.StatesBkp = make([]*msolid.State, nip)
	o.StatesAux = make([]*msolid.State, nip)

	// for each integration point
	σ := make([]float64, 2*o.Ndim)
	for i := 0; i < nip; i++ {
		o.States[i], err = o.Mdl.InitIntVars(σ)
		if err != nil {
			return
		}
		o.StatesBkp[i] = o.States[i].GetCopy()
		o.StatesAux[i] = o.States[i].GetCopy()
	}

	// enhanced modes
	if o.enh != nil {
		return o.enh.init()
	}
	return
}

// BackupIvs create copy of internal variables
func (o *ElemU) BackupIvs(aux bool) (err error) {
	if aux {
		for i, s := range o.StatesAux {
			s.Set(o.States[i])
		}
	} else {
		for i, s := range o.StatesBkp {
			s.Set(o.States[i])
		}
	}
	if o.enh != nil {
		o.enh.backup(aux)
	}
	return
}

// RestoreIvs restore internal variables from copies
func (o *ElemU) RestoreIvs(aux bool) (err error) {
	if aux {
		for i, s := range o.States {
			s.Set(o.StatesAux[i])
		}
	} else {
		for i, s := range o.States {
			s.Set(o.StatesBkp[i])
		}
	}
	if o.enh != nil {
		o.enh.restore(aux)
	}
	return
}

// writer ///////////////////////////////////////////////////////////////////////////////////////////

// Encode encodes internal variables
func (o *ElemU) Encode(enc Encoder) (err error) {
	err = enc.Encode(o.States)
	if err != nil || o.enh == nil {
		return
	}
	return enc.Encode(o.enh.alphaValues())
}

// Decode decodes internal variables
func (o *ElemU) Decode(dec Decoder) (err error) {
	err = dec.Decode(&o.States)
	if err != nil {
		return
	}
	if o.enh != nil {
		var α []float64
		err = dec.Decode(&α)
		if err != nil {
			return
		}
		err = o.enh.setAlphaValues(α)
		if err != nil {
			return
		}
	}
	return o.BackupIvs(false)
}

// auxiliary ////////////////////////////////////////////////////////////////////////////////////////

// ipvars computes current values @ integration points. idx == index of integration point
func (o *ElemU) ipvars(idx int, sol *Solution, lm []int) (err error) {

	// interpolation functions and gradients
	err = o.Shp.CalcAtIp(o.X, o.IpsElem[idx], true)
	if err != nil {
		return
	}
	o.calcB()

	// recover u-variables @ ip
	for i := 0; i < o.Ndim; i++ {
		o.us[i] = 0
		for m := 0; m < o.Shp.Nverts; m++ {
			o.us[i] += o.Shp.S[m] * sol.Y[lm[i+m*o.Ndim]]
		}
	}
	return
}

// calcB computes the B matrix (Mandel's basis) using current gradients
func (o *ElemU) calcB() {
	o.B.Zero()
	G := o.Shp.G
	for m := 0; m < o.Shp.Nverts; m++ {
		setBcols(o.B, 2*m, G[m][0], G[m][1])
	}
}

// setBcols sets the two columns of B corresponding to gradient (gx, gy)
func setBcols(B *mat.Dense, c int, gx, gy float64) {
	B.Set(0, c, gx)
	B.Set(1, c+1, gy)
	B.Set(3, c, gy/math.Sqrt2)
	B.Set(3, c+1, gx/math.Sqrt2)
}

// strains computes total and incremental strains using current B matrix
func (o *ElemU) strains(sol *Solution, umap []int) {
	for i := range o.ε {
		o.ε[i], o.Δε[i] = 0, 0
		for j, J := range umap {
			o.ε[i] += o.B.At(i, j) * sol.Y[J]
			o.Δε[i] += o.B.At(i, j) * sol.ΔY[J]
		}
	}
}

// calcD computes the consistent tangent matrix @ integration point idx
func (o *ElemU) calcD(idx int, firstIt bool) (err error) {
	err = o.Mdl.CalcD(o.Dsl, o.States[idx], firstIt)
	if err != nil {
		return
	}
	for i, row := range o.Dsl {
		for j, v := range row {
			o.D.Set(i, j, v)
		}
	}
	return
}

// addBodyTerms adds inertia, damping and gravity terms
func (o *ElemU) addBodyTerms(prm *EvalParams, lm []int, out *ElemOutputs) (err error) {
	sol := prm.Sol
	dynamic := !sol.Steady && sol.DynCfs != nil
	if !dynamic && o.Gfcn == nil {
		return
	}
	var α1, α4 float64
	if dynamic {
		α1, α4 = sol.DynCfs.α1, sol.DynCfs.α4
	}
	nverts := o.Shp.Nverts
	for idx, ip := range o.IpsElem {
		err = o.ipvars(idx, sol, lm)
		if err != nil {
			return
		}
		coef := o.Shp.J * ip.W * o.Thickness
		S := o.Shp.S
		if prm.Action.Rhs() {
			for m := 0; m < nverts; m++ {
				for i := 0; i < o.Ndim; i++ {
					r := i + m*o.Ndim
					if dynamic {
						out.Vec[r] -= coef * S[m] * (o.Rho*(α1*o.us[i]-o.ζs[idx][i]) + o.Cdam*(α4*o.us[i]-o.χs[idx][i]))
					}
					out.Vec[r] += coef * S[m] * o.Rho * o.grav[i]
				}
			}
		}
		if prm.Action.Kb() && dynamic {
			for m := 0; m < nverts; m++ {
				for i := 0; i < o.Ndim; i++ {
					r := i + m*o.Ndim
					for n := 0; n < nverts; n++ {
						c := i + n*o.Ndim
						out.Mat[r][c] += coef * S[m] * S[n] * (o.Rho*α1 + o.Cdam*α4)
					}
				}
			}
		}
	}
	return
}
