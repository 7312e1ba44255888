// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
	"gonum.org/v1/gonum/mat"
)

// number of enhanced parameters of qua4 elements: two modes times two directions
const nEnh = 4

// uEnhanced implements incompatible modes for qua4 solid elements
//
//  u = Σ Nᵐ(r)・uᵐ + Σ Mᵃ(r)・αᵃ   with  M⁰ = 1 - r²  and  M¹ = 1 - s²
//
//  The enhanced parameters α are condensed out at element level:
//
//   K* = Kuu - Kua・Kaa⁻¹・Kau
//   f* = -fu + Kua・Kaa⁻¹・fa
//
//  Gradients of Mᵃ are computed with the Jacobian at the centre of the element and scaled
//  by J0/J so that the patch test is passed.
//
//  The coupling matrices are kept in the auxiliary data of the element since they are
//  needed when updating α after the global solution is corrected
type uEnhanced struct {
	e     *ElemU      // element
	J0    float64     // Jacobian at centre
	DRdx0 [][]float64 // [2][2] dR/dx at centre
	Ge    [][]float64 // [2][2] gradients of enhanced modes
	Be    *mat.Dense  // [nsig][nEnh] enhanced B matrix
	fu    []float64   // [nu] internal forces

	// keys of auxiliary data
	kaa, kau, kua, fa     AuxKey // coupling matrices and enhanced residual
	alpha, alpha0, dalpha AuxKey // current, start of step and increment of α
	du                    AuxKey // ΔU corresponding to fa
	alphaAux              AuxKey // α backup for divergence control
}

// newUEnhanced allocates structures for enhanced modes
//  Note: returns nil (without error) if the cell type is not qua4
func newUEnhanced(e *ElemU) (o *uEnhanced, err error) {
	if e.Cell.Type != "qua4" {
		return nil, nil
	}
	o = &uEnhanced{e: e}
	err = e.Shp.CalcAtR(e.X, []float64{0, 0, 0}, true)
	if err != nil {
		return nil, chk.Err("cannot compute Jacobian at centre of element %d:\n%v", e.Id(), err)
	}
	if e.Shp.J <= 0 {
		return nil, chk.Err("Jacobian at centre of element %d is non-positive = %g", e.Id(), e.Shp.J)
	}
	o.J0 = e.Shp.J
	o.DRdx0 = utl.Alloc(2, 2)
	for i := 0; i < 2; i++ {
		copy(o.DRdx0[i], e.Shp.DRdx[i])
	}
	o.Ge = utl.Alloc(2, 2)
	o.Be = mat.NewDense(2*e.Ndim, nEnh, nil)
	o.fu = make([]float64, e.Nu)

	// auxiliary data
	nu := e.Nu
	aux := e.Aux
	o.kaa = aux.Add("Kaa", mat.NewDense(nEnh, nEnh, nil))
	o.kau = aux.Add("Kau", mat.NewDense(nEnh, nu, nil))
	o.kua = aux.Add("Kua", mat.NewDense(nu, nEnh, nil))
	o.fa = aux.Add("fa", mat.NewDense(nEnh, 1, nil))
	o.alpha = aux.Add("alpha", mat.NewDense(nEnh, 1, nil))
	o.alpha0 = aux.Add("alpha0", mat.NewDense(nEnh, 1, nil))
	o.dalpha = aux.Add("dalpha", mat.NewDense(nEnh, 1, nil))
	o.du = aux.Add("dU", mat.NewDense(nu, 1, nil))
	o.alphaAux = aux.Add("alphaAux", mat.NewDense(nEnh, 1, nil))
	return
}

// init resets α and computes coupling matrices at the initial state
func (o *uEnhanced) init() (err error) {
	aux := o.e.Aux
	for _, k := range []AuxKey{o.alpha, o.alpha0, o.dalpha, o.du, o.alphaAux} {
		aux.At(k).Zero()
	}
	Kuu := mat.NewDense(o.e.Nu, o.e.Nu, nil)
	return o.compute(Kuu, true)
}

// compute computes Kuu, fu and the coupling matrices at the current state
func (o *uEnhanced) compute(Kuu *mat.Dense, firstIt bool) (err error) {

	// auxiliary
	e := o.e
	aux := e.Aux
	Kaa, Kau, Kua, fa := aux.At(o.kaa), aux.At(o.kau), aux.At(o.kua), aux.At(o.fa)
	Kuu.Zero()
	Kaa.Zero()
	Kau.Zero()
	Kua.Zero()
	fa.Zero()
	for i := range o.fu {
		o.fu[i] = 0
	}

	// for each integration point
	var DB, DBe, tmp mat.Dense
	for idx, ip := range e.IpsElem {

		// B matrices
		err = e.Shp.CalcAtIp(e.X, ip, true)
		if err != nil {
			return
		}
		if e.Shp.J <= 0 {
			return chk.Err("ElemU: eid=%d: Jacobian is non-positive = %g", e.Id(), e.Shp.J)
		}
		e.calcB()
		o.calcBe(ip.R, ip.S, e.Shp.J)
		coef := e.Shp.J * ip.W * e.Thickness

		// tangent
		err = e.calcD(idx, firstIt)
		if err != nil {
			return
		}
		DB.Mul(e.D, e.B)
		DBe.Mul(e.D, o.Be)
		tmp.Mul(e.B.T(), &DB)
		Kuu.Apply(addScaled(coef, &tmp), Kuu)
		tmp.Reset()
		tmp.Mul(e.B.T(), &DBe)
		Kua.Apply(addScaled(coef, &tmp), Kua)
		tmp.Reset()
		tmp.Mul(o.Be.T(), &DBe)
		Kaa.Apply(addScaled(coef, &tmp), Kaa)
		tmp.Reset()

		// internal forces
		σ := mat.NewVecDense(len(e.States[idx].Sig), e.States[idx].Sig)
		var fu, fe mat.VecDense
		fu.MulVec(e.B.T(), σ)
		fe.MulVec(o.Be.T(), σ)
		for i := range o.fu {
			o.fu[i] += coef * fu.AtVec(i)
		}
		for i := 0; i < nEnh; i++ {
			fa.Set(i, 0, fa.At(i, 0)+coef*fe.AtVec(i))
		}
	}
	Kau.Copy(Kua.T())
	return
}

// evaluate computes condensed -R and/or dR/du
func (o *uEnhanced) evaluate(prm *EvalParams, lm []int, out *ElemOutputs) (err error) {

	// matrices at current state
	e := o.e
	err = o.compute(e.K, prm.FirstIt)
	if err != nil {
		return
	}
	aux := e.Aux
	Kaa, Kau, Kua, fa, du := aux.At(o.kaa), aux.At(o.kau), aux.At(o.kua), aux.At(o.fa), aux.At(o.du)
	for i, I := range lm {
		du.Set(i, 0, prm.Sol.ΔY[I])
	}

	// factorisation of Kaa
	var lu mat.LU
	lu.Factorize(Kaa)
	if math.IsInf(lu.Cond(), 1) {
		return chk.Err("ElemU: eid=%d: matrix of enhanced modes is singular", e.Id())
	}

	// residual: -fu + Kua・Kaa⁻¹・fa
	if prm.Action.Rhs() {
		var y, z mat.Dense
		err = lu.SolveTo(&y, false, fa)
		if err != nil && !isCondition(err) {
			return
		}
		z.Mul(Kua, &y)
		for i := 0; i < e.Nu; i++ {
			out.Vec[i] = -o.fu[i] + z.At(i, 0)
		}
	}

	// tangent: Kuu - Kua・Kaa⁻¹・Kau
	if prm.Action.Kb() {
		var X, Z mat.Dense
		err = lu.SolveTo(&X, false, Kau)
		if err != nil && !isCondition(err) {
			return
		}
		Z.Mul(Kua, &X)
		for i := 0; i < e.Nu; i++ {
			for j := 0; j < e.Nu; j++ {
				out.Mat[i][j] = e.K.At(i, j) - Z.At(i, j)
			}
		}
	}
	return nil
}

// update computes α corresponding to the current displacements and updates stresses
//  Δα ← Δα - Kaa⁻¹・(fa + Kau・(ΔU - ΔU_prev))
func (o *uEnhanced) update(sol *Solution) (err error) {

	// auxiliary
	e := o.e
	aux := e.Aux
	Kaa, Kau, fa, du := aux.At(o.kaa), aux.At(o.kau), aux.At(o.fa), aux.At(o.du)
	α, α0, Δα := aux.At(o.alpha), aux.At(o.alpha0), aux.At(o.dalpha)

	// increment of α
	var dU, rhs, δα mat.Dense
	dU.Apply(func(i, j int, v float64) float64 { return sol.ΔY[e.Umap[i]] - v }, du)
	rhs.Mul(Kau, &dU)
	rhs.Add(&rhs, fa)
	var lu mat.LU
	lu.Factorize(Kaa)
	if math.IsInf(lu.Cond(), 1) {
		return chk.Err("ElemU: eid=%d: matrix of enhanced modes is singular", e.Id())
	}
	err = lu.SolveTo(&δα, false, &rhs)
	if err != nil && !isCondition(err) {
		return
	}
	Δα.Sub(Δα, &δα)
	α.Add(α0, Δα)

	// linearised state is now in equilibrium
	fa.Zero()
	for i, I := range e.Umap {
		du.Set(i, 0, sol.ΔY[I])
	}

	// stresses
	for idx, ip := range e.IpsElem {
		err = e.Shp.CalcAtIp(e.X, ip, true)
		if err != nil {
			return
		}
		e.calcB()
		o.calcBe(ip.R, ip.S, e.Shp.J)
		e.strains(sol, e.Umap)
		for i := range e.ε {
			for a := 0; a < nEnh; a++ {
				e.ε[i] += o.Be.At(i, a) * α.At(a, 0)
				e.Δε[i] += o.Be.At(i, a) * Δα.At(a, 0)
			}
		}
		err = e.Mdl.Update(e.States[idx], e.ε, e.Δε, e.Id(), idx)
		if err != nil {
			return chk.Err("Update failed (eid=%d, ip=%d)\nΔε=%v\n%v", e.Id(), idx, e.Δε, err)
		}
	}
	return
}

// backup stores α at the beginning of time steps (aux == false) or for divergence control
func (o *uEnhanced) backup(aux bool) {
	a := o.e.Aux
	if aux {
		a.At(o.alphaAux).Copy(a.At(o.alpha))
		return
	}
	a.At(o.alpha0).Copy(a.At(o.alpha))
	a.At(o.dalpha).Zero()
	a.At(o.du).Zero()
}

// restore recovers α after divergence; nothing is needed between iterations because
// the increment Δα is relative to the beginning of the time step
func (o *uEnhanced) restore(aux bool) {
	if !aux {
		return
	}
	a := o.e.Aux
	a.At(o.alpha).Copy(a.At(o.alphaAux))
	a.At(o.alpha0).Copy(a.At(o.alphaAux))
	a.At(o.dalpha).Zero()
	a.At(o.du).Zero()
}

// alphaValues returns a copy of α
func (o *uEnhanced) alphaValues() (α []float64) {
	α = make([]float64, nEnh)
	for i := range α {
		α[i] = o.e.Aux.At(o.alpha).At(i, 0)
	}
	return
}

// setAlphaValues sets α
func (o *uEnhanced) setAlphaValues(α []float64) (err error) {
	if len(α) != nEnh {
		return chk.Err("ElemU: eid=%d: %d enhanced parameters are required; %d given", o.e.Id(), nEnh, len(α))
	}
	for i, v := range α {
		o.e.Aux.At(o.alpha).Set(i, 0, v)
	}
	return
}

// calcBe computes the B matrix of enhanced modes @ (r,s)
func (o *uEnhanced) calcBe(r, s, J float64) {
	dMdR := [2][2]float64{{-2.0 * r, 0}, {0, -2.0 * s}}
	c := o.J0 / J
	for a := 0; a < 2; a++ {
		for j := 0; j < 2; j++ {
			o.Ge[a][j] = 0
			for k := 0; k < 2; k++ {
				o.Ge[a][j] += c * dMdR[a][k] * o.DRdx0[k][j]
			}
		}
	}
	o.Be.Zero()
	for a := 0; a < 2; a++ {
		setBcols(o.Be, 2*a, o.Ge[a][0], o.Ge[a][1])
	}
}

// addScaled returns a function for mat.Apply computing v + α・B[i][j]
func addScaled(α float64, B mat.Matrix) func(i, j int, v float64) float64 {
	return func(i, j int, v float64) float64 { return v + α*B.At(i, j) }
}

// isCondition tells whether err is only a warning about the condition number
func isCondition(err error) bool {
	_, ok := err.(mat.Condition)
	return ok
}
