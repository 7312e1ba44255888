// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/stretchr/testify/require"
)

// checkUniaxial checks the solution of quadSolid: uniaxial compression in plane-strain
func checkUniaxial(tst *testing.T, dom *Domain) {

	// analytical solution
	E, ν, q := 1000.0, 0.25, -10.0
	εyy := (1.0 - ν*ν) * q / E
	εxx := -ν * (1.0 + ν) * q / E

	// displacements
	chk.Float64(tst, "ux @ 0", 1e-15, getValue(tst, dom, 0, "ux"), 0)
	chk.Float64(tst, "uy @ 0", 1e-15, getValue(tst, dom, 0, "uy"), 0)
	chk.Float64(tst, "ux @ 1", 1e-12, getValue(tst, dom, 1, "ux"), εxx)
	chk.Float64(tst, "ux @ 2", 1e-12, getValue(tst, dom, 2, "ux"), εxx)
	chk.Float64(tst, "uy @ 2", 1e-12, getValue(tst, dom, 2, "uy"), εyy)
	chk.Float64(tst, "uy @ 3", 1e-12, getValue(tst, dom, 3, "uy"), εyy)

	// stresses
	e := dom.Elems[0].(*ElemU)
	for idx, s := range e.States {
		io.Pforan("σ @ ip %d = %v\n", idx, s.Sig)
		chk.Float64(tst, "σxx", 1e-10, s.Sig[0], 0)
		chk.Float64(tst, "σyy", 1e-10, s.Sig[1], q)
		chk.Float64(tst, "σzz", 1e-10, s.Sig[2], ν*q)
		chk.Float64(tst, "σxy", 1e-10, s.Sig[3], 0)
	}
}

func Test_u01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("u01. uniaxial compression: implicit solver")

	analysis := newTestFEM(tst, "u01", io.Sf(quadSolid, "", "imp"), true)
	require.NoError(tst, analysis.Run())

	dom := analysis.Domains[0]
	chk.Int(tst, "ny", dom.Ny, 8)
	chk.Int(tst, "nlam", dom.Nlam, 4)
	chk.Float64(tst, "t", 1e-15, dom.Sol.T, 1)
	checkUniaxial(tst, dom)

	// summary
	sum := analysis.Summary
	chk.Array(tst, "output times", 1e-15, sum.OutTimes, []float64{0, 1})
	require.Len(tst, sum.Resids, 1)
	require.True(tst, len(sum.Resids[0]) >= 2, "at least two iterations are required")
}

func Test_u02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("u02. uniaxial compression: linear solver")

	analysis := newTestFEM(tst, "u02", io.Sf(quadSolid, "", "lin-imp"), false)
	require.NoError(tst, analysis.Run())
	checkUniaxial(tst, analysis.Domains[0])
}

func Test_u03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("u03. uniaxial compression with incompatible modes")

	analysis := newTestFEM(tst, "u03", io.Sf(quadSolid, "!enh:1", "imp"), false)
	require.NoError(tst, analysis.Run())

	dom := analysis.Domains[0]
	checkUniaxial(tst, dom)

	// enhanced parameters vanish under uniform stress
	e := dom.Elems[0].(*ElemU)
	require.True(tst, e.Enhanced)
	require.NotNil(tst, e.enh)
	α, err := e.Aux.Get("alpha")
	require.NoError(tst, err)
	r, c := α.Dims()
	chk.Int(tst, "nα", r*c, nEnh)
	for i := 0; i < r; i++ {
		chk.Float64(tst, io.Sf("α%d", i), 1e-12, α.At(i, 0), 0)
	}
	require.ElementsMatch(tst, e.Aux.Names(), []string{"Kaa", "Kau", "Kua", "alpha", "alpha0", "alphaAux", "dU", "dalpha", "fa"})
}

func Test_u04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("u04. incompatible modes are not available for tri3")

	sim := newTestSim(tst, "u04", `{
  "materials" : [ { "name" : "steel", "model" : "lin-elast", "prms" : [ { "n":"E", "v":1000 } ] } ],
  "regions" : [ {
    "mesh" : {
      "verts" : [ { "id":0, "tag":0, "c":[0,0] }, { "id":1, "tag":0, "c":[1,0] }, { "id":2, "tag":0, "c":[0,1] } ],
      "cells" : [ { "id":0, "tag":-1, "type":"tri3", "verts":[0,1,2], "ftags":[0,0,0] } ]
    },
    "elemsdata" : [ { "tag":-1, "mat":"steel", "type":"u", "extra":"!enh:1" } ]
  } ],
  "stages" : [ { "control" : { "tf":1 } } ]
}`)
	dom := NewDomain(sim, sim.Regions[0], nil)
	require.NoError(tst, dom.SetStage(0))

	e := dom.Elems[0].(*ElemU)
	require.True(tst, e.Enhanced)
	require.Nil(tst, e.enh)

	out := NewElemOutputs(e.Nu, true)
	err := e.Evaluate(&EvalParams{Action: ActRhsKb, Sol: dom.Sol}, dom, e.Lmap(), out)
	require.True(tst, errors.Is(err, ErrNotImplemented), "got %v", err)
	err = e.Update(dom.Sol)
	require.True(tst, errors.Is(err, ErrNotImplemented), "got %v", err)
}

func Test_u05(tst *testing.T) {

	//verbose()
	chk.PrintTitle("u05. element evaluation: tangent and residual")

	sim := newTestSim(tst, "u05", io.Sf(quadSolid, "", "imp"))
	dom := NewDomain(sim, sim.Regions[0], nil)
	require.NoError(tst, dom.SetStage(0))
	e := dom.Elems[0].(*ElemU)

	// rigid body motion => no internal forces
	lm := e.Lmap()
	for m := 0; m < 4; m++ {
		dom.Sol.Y[lm[0+m*2]] = 0.1
		dom.Sol.Y[lm[1+m*2]] = -0.2
		dom.Sol.ΔY[lm[0+m*2]] = 0.1
		dom.Sol.ΔY[lm[1+m*2]] = -0.2
	}
	require.NoError(tst, e.Update(dom.Sol))
	e.NatBcs = nil
	out := NewElemOutputs(e.Nu, true)
	require.NoError(tst, e.Evaluate(&EvalParams{Action: ActRhsKb, Sol: dom.Sol, FirstIt: true}, dom, lm, out))
	chk.Array(tst, "fint", 1e-13, out.Vec, make([]float64, e.Nu))

	// stiffness is symmetric and annihilates rigid translations
	for i := 0; i < e.Nu; i++ {
		var sx, sy float64
		for j := 0; j < e.Nu; j++ {
			chk.Float64(tst, io.Sf("K%d%d", i, j), 1e-12, out.Mat[i][j], out.Mat[j][i])
			if j%2 == 0 {
				sx += out.Mat[i][j]
			} else {
				sy += out.Mat[i][j]
			}
		}
		chk.Float64(tst, "K・tx", 1e-12, sx, 0)
		chk.Float64(tst, "K・ty", 1e-12, sy, 0)
	}

	// residual only: matrix is left untouched
	out.Mat[0][0] = 123
	require.NoError(tst, e.Evaluate(&EvalParams{Action: ActRhs, Sol: dom.Sol}, dom, lm, out))
	chk.Float64(tst, "untouched K00", 1e-15, out.Mat[0][0], 123)

	// wrong buffers
	err := e.Evaluate(&EvalParams{Action: ActKb, Sol: dom.Sol}, dom, lm, NewElemOutputs(e.Nu, false))
	require.True(tst, errors.Is(err, ErrPreconditionViolation), "got %v", err)
	err = e.Evaluate(&EvalParams{Action: ActRhs, Sol: dom.Sol}, dom, lm[:3], out)
	require.True(tst, errors.Is(err, ErrPreconditionViolation), "got %v", err)
	err = e.Evaluate(nil, dom, lm, out)
	require.True(tst, errors.Is(err, ErrPreconditionViolation), "got %v", err)
}

func Test_u06(tst *testing.T) {

	//verbose()
	chk.PrintTitle("u06. internal variables: backup, restore and encoding")

	analysis := newTestFEM(tst, "u06", io.Sf(quadSolid, "!enh:1", "imp"), true)
	require.NoError(tst, analysis.Run())
	dom := analysis.Domains[0]
	e := dom.Elems[0].(*ElemU)
	σyy := e.States[0].Sig[1]

	// backup/restore
	require.NoError(tst, e.BackupIvs(true))
	e.States[0].Sig[1] = 666
	require.NoError(tst, e.RestoreIvs(true))
	chk.Float64(tst, "σyy", 1e-15, e.States[0].Sig[1], σyy)

	// read results back
	sum, err := ReadSummary(analysis.Sim.DirOut, analysis.Sim.Key, analysis.Sim.EncType)
	require.NoError(tst, err)
	chk.Array(tst, "output times", 1e-15, sum.OutTimes, []float64{0, 1})
	y := append([]float64{}, dom.Sol.Y...)
	dom.Sol.Reset()
	e.States[0].Sig[1] = 0
	require.NoError(tst, dom.Read(sum, 0, 1))
	chk.Array(tst, "y", 1e-15, dom.Sol.Y, y)
	chk.Float64(tst, "t", 1e-15, dom.Sol.T, 1)
	chk.Float64(tst, "σyy", 1e-15, e.States[0].Sig[1], σyy)

	// initial state
	require.NoError(tst, dom.Read(sum, 0, 0))
	chk.Array(tst, "y0", 1e-15, dom.Sol.Y, make([]float64, dom.Ny))
}

func Test_u07(tst *testing.T) {

	//verbose()
	chk.PrintTitle("u07. natural boundary conditions of solid elements")

	sim := newTestSim(tst, "u07", io.Sf(quadSolid, "", "imp"))
	dom := NewDomain(sim, sim.Regions[0], nil)
	require.NoError(tst, dom.SetStage(0))
	e := dom.Elems[0].(*ElemU)
	lm := e.Lmap()
	require.Len(tst, e.NatBcs, 1)
	qn := e.NatBcs[0]
	chk.String(tst, qn.Key, "qn")
	chk.Int(tst, "face", qn.IdxFace, 2)

	// normal load on top face
	prm := &EvalParams{Action: ActRhs, Sol: dom.Sol}
	fvec := make([]float64, e.Nu)
	require.NoError(tst, e.EvaluateNeumann(prm, dom, lm, qn, fvec))
	chk.Array(tst, "qn", 1e-14, fvec, []float64{0, 0, 0, 0, 0, -5, 0, -5})

	// tangential load on top face
	qx := &NaturalBc{Key: "qx", Kind: LineNeumann, IdxFace: 2, Fcn: qn.Fcn}
	fvec = make([]float64, e.Nu)
	require.NoError(tst, e.EvaluateNeumann(prm, dom, lm, qx, fvec))
	chk.Array(tst, "qx", 1e-14, fvec, []float64{0, 0, 0, 0, -5, 0, -5, 0})

	// surface loads are not available; fvec is left untouched
	surf := &NaturalBc{Key: "qnsurf", Kind: SurfaceNeumann, IdxFace: 2, Fcn: qn.Fcn}
	err := e.EvaluateNeumann(prm, dom, lm, surf, fvec)
	require.True(tst, errors.Is(err, ErrNotImplemented), "got %v", err)
	chk.Array(tst, "untouched", 1e-15, fvec, []float64{0, 0, 0, 0, -5, 0, -5, 0})

	// wrong key or arguments
	flux := &NaturalBc{Key: "flux", Kind: LineNeumann, IdxFace: 2, Fcn: qn.Fcn}
	require.ErrorIs(tst, e.EvaluateNeumann(prm, dom, lm, flux, fvec), ErrPreconditionViolation)
	require.ErrorIs(tst, e.EvaluateNeumann(prm, dom, lm, qn, fvec[:3]), ErrPreconditionViolation)
	chk.Array(tst, "untouched", 1e-15, fvec, []float64{0, 0, 0, 0, -5, 0, -5, 0})

	// element conditions
	require.NoError(tst, e.SetEleConds("g", qn.Fcn, ""))
	require.Error(tst, e.SetEleConds("s", qn.Fcn, ""))
}
