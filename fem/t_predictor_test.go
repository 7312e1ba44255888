// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"testing"

	"github.com/mpfem/mpfem/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"
)

// testGroup implements SolverGroup with given solutions only
type testGroup struct {
	sol, conv *Solution
}

func (o *testGroup) Sol() *Solution                   { return o.sol }
func (o *testGroup) Conv() *Solution                  { return o.conv }
func (o *testGroup) F() []float64                     { return nil }
func (o *testGroup) ComputeF() error                  { return nil }
func (o *testGroup) ComputeJacobian() error           { return nil }
func (o *testGroup) IsJacobian() bool                 { return false }
func (o *testGroup) ComputeNewton(dy []float64) error { return nil }
func (o *testGroup) Accept()                          { o.conv.Set(o.sol) }

// predictorData returns a domain-like structure with one t1 and two t2 equations and a group
// with the converged state
//  y = {p, u0, u1}
func predictorData(tst *testing.T, steady bool) (dc *DynCoefs, dom *Domain, grp *testGroup) {
	dc = new(DynCoefs)
	require.NoError(tst, dc.Init(&inp.SolverData{Theta: 0.5, Theta1: 0.5, Theta2: 0.5, DtMin: 1e-8}))
	require.NoError(tst, dc.CalcBoth(0.1))
	dom = &Domain{Ny: 3, Nlam: 1, T1eqs: []int{0}, T2eqs: []int{1, 2}}
	dom.Sol = NewSolution(3, 1, steady, false, dc)
	conv := NewSolution(3, 1, steady, false, dc)
	copy(conv.Y, []float64{1, 2, 3})
	conv.L[0] = -4
	if !steady {
		copy(conv.Dydt, []float64{0.5, 1, 1.5})
		copy(conv.D2ydt2, []float64{0, 2, 4})
	}
	dom.Sol.Dt = 0.1
	for i := range dom.Sol.Y {
		dom.Sol.Y[i] = 666 // garbage
	}
	grp = &testGroup{dom.Sol, conv}
	return
}

func Test_pred01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("pred01. lifecycle of predictors")

	// factory
	require.Equal(tst, []string{"ConstAcc", "ConstDis", "ConstDisVelAccPress", "ConstPress", "ConstVel"}, PredictorNames())
	_, err := NewPredictor("Linear")
	require.Error(tst, err)

	dc, dom, grp := predictorData(tst, false)
	for _, name := range PredictorNames() {
		pred, err := NewPredictor(name)
		require.NoError(tst, err)
		chk.String(tst, pred.Name(), name)
		require.Equal(tst, PredUninitialized, pred.State())

		// calls out of order
		require.ErrorIs(tst, pred.Compute(grp), ErrPreconditionViolation)
		require.ErrorIs(tst, pred.Setup(dom), ErrPreconditionViolation)
		require.ErrorIs(tst, pred.Init(nil), ErrPreconditionViolation)
		require.ErrorIs(tst, pred.Init(&PredictorParams{}), ErrPreconditionViolation)
		require.Equal(tst, PredUninitialized, pred.State())

		// init
		require.NoError(tst, pred.Init(&PredictorParams{DynCfs: dc}))
		require.Equal(tst, PredInitialized, pred.State())
		require.ErrorIs(tst, pred.Compute(grp), ErrPreconditionViolation)
		require.ErrorIs(tst, pred.Setup(&Domain{}), ErrPreconditionViolation)
		require.Equal(tst, PredInitialized, pred.State())

		// setup
		require.NoError(tst, pred.Setup(dom))
		require.Equal(tst, PredReady, pred.State())
		require.NoError(tst, pred.Compute(grp))
		require.ErrorIs(tst, pred.Compute(nil), ErrPreconditionViolation)

		// number of equations changed
		_, dom4, grp4 := predictorData(tst, false)
		dom4.Ny = 4
		grp4.sol = NewSolution(4, 1, false, false, dc)
		grp4.conv = NewSolution(4, 1, false, false, dc)
		require.ErrorIs(tst, pred.Compute(grp4), ErrPreconditionViolation)
		require.Equal(tst, PredReady, pred.State())
		require.NoError(tst, pred.Setup(dom4))
		require.NoError(tst, pred.Compute(grp4))
	}
	require.Equal(tst, "Uninitialized", PredUninitialized.String())
	require.Equal(tst, "Initialized", PredInitialized.String())
	require.Equal(tst, "Ready", PredReady.String())
}

func Test_pred02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("pred02. predicted values")

	Δt := 0.1
	ydis := []float64{1, 2, 3}
	yvel := []float64{1 + Δt*0.5, 2 + Δt*1, 3 + Δt*1.5}
	yacc := []float64{1 + Δt*0.5, 2 + Δt*1 + Δt*Δt*2/2, 3 + Δt*1.5 + Δt*Δt*4/2}
	ypre := []float64{1, 2 + Δt*1, 3 + Δt*1.5}
	for name, ycorr := range map[string][]float64{
		"ConstDis":            ydis,
		"ConstVel":            yvel,
		"ConstAcc":            yacc,
		"ConstPress":          ypre,
		"ConstDisVelAccPress": ydis,
	} {
		dc, dom, grp := predictorData(tst, false)
		pred, err := NewPredictor(name)
		require.NoError(tst, err)
		require.NoError(tst, pred.Init(&PredictorParams{DynCfs: dc}))
		require.NoError(tst, pred.Setup(dom))

		// compute twice: same result
		for k := 0; k < 2; k++ {
			require.NoError(tst, pred.Compute(grp))
			sol, conv := grp.Sol(), grp.Conv()
			chk.Array(tst, name+": y", 1e-15, sol.Y, ycorr)
			chk.Array(tst, name+": λ", 1e-15, sol.L, []float64{-4})
			for i := range sol.Y {
				chk.Float64(tst, name+": Δy", 1e-15, sol.ΔY[i], sol.Y[i]-conv.Y[i])
			}

			// rates
			if name == "ConstDisVelAccPress" {
				chk.Array(tst, name+": dydt", 1e-15, sol.Dydt, conv.Dydt)
				chk.Array(tst, name+": d2ydt2", 1e-15, sol.D2ydt2, conv.D2ydt2)
			} else {
				β1, β2 := dc.GetBetas()
				α1, α2, α3, α4, α5, α6 := dc.GetAlphas()
				chk.Float64(tst, name+": dpdt", 1e-12, sol.Dydt[0], β1*sol.ΔY[0]-β2*conv.Dydt[0])
				for _, I := range []int{1, 2} {
					chk.Float64(tst, name+": v", 1e-12, sol.Dydt[I], α4*sol.ΔY[I]-α5*conv.Dydt[I]-α6*conv.D2ydt2[I])
					chk.Float64(tst, name+": a", 1e-12, sol.D2ydt2[I], α1*sol.ΔY[I]-α2*conv.Dydt[I]-α3*conv.D2ydt2[I])
				}
			}

			// converged state is not modified
			chk.Array(tst, name+": yn", 1e-15, conv.Y, []float64{1, 2, 3})
			chk.Array(tst, name+": vn", 1e-15, conv.Dydt, []float64{0.5, 1, 1.5})
		}
	}
}

func Test_pred03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("pred03. steady simulations")

	for _, name := range PredictorNames() {
		_, dom, grp := predictorData(tst, true)
		pred, err := NewPredictor(name)
		require.NoError(tst, err)
		require.NoError(tst, pred.Init(&PredictorParams{Steady: true}))
		require.NoError(tst, pred.Setup(dom))
		require.NoError(tst, pred.Compute(grp))
		chk.Array(tst, name+": y", 1e-15, grp.sol.Y, []float64{1, 2, 3})
		chk.Array(tst, name+": Δy", 1e-15, grp.sol.ΔY, []float64{0, 0, 0})
		require.Nil(tst, grp.sol.Dydt)
	}

	// precondition errors are typed
	pred, _ := NewPredictor("ConstDis")
	err := pred.Compute(nil)
	var ferr *Error
	require.True(tst, errors.As(err, &ferr))
	require.Equal(tst, "PredConstDis.Compute", ferr.Op)
}

func Test_pred04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("pred04. prediction from the latest accepted state")

	Δt := 0.1
	for _, name := range []string{"ConstVel", "ConstAcc"} {
		dc, dom, grp := predictorData(tst, false)
		pred, err := NewPredictor(name)
		require.NoError(tst, err)
		require.NoError(tst, pred.Init(&PredictorParams{DynCfs: dc}))
		require.NoError(tst, pred.Setup(dom))
		require.NoError(tst, pred.Compute(grp))

		// a different state is accepted
		sol := grp.Sol()
		copy(sol.Y, []float64{10, 20, 30})
		copy(sol.Dydt, []float64{-1, -2, -3})
		copy(sol.D2ydt2, []float64{0, 10, 20})
		sol.L[0] = 7
		grp.Accept()
		chk.Array(tst, name+": yn", 1e-15, grp.Conv().Y, []float64{10, 20, 30})

		// compute again
		require.NoError(tst, pred.Compute(grp))
		ycorr := []float64{10 - Δt*1, 20 - Δt*2, 30 - Δt*3}
		if name == "ConstAcc" {
			ycorr[1] += Δt * Δt * 10 / 2
			ycorr[2] += Δt * Δt * 20 / 2
		}
		chk.Array(tst, name+": y", 1e-13, sol.Y, ycorr)
		chk.Array(tst, name+": λ", 1e-15, sol.L, []float64{7})
		for i := range sol.Y {
			chk.Float64(tst, name+": Δy", 1e-15, sol.ΔY[i], sol.Y[i]-grp.Conv().Y[i])
		}
		chk.Array(tst, name+": vn", 1e-15, grp.Conv().Dydt, []float64{-1, -2, -3})
	}
}
