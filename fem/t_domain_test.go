// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

// mixedRow has one solid, one diffusion and one ALE cell in a row
//
//   4 o-------o-------o-------o 7
//     |       |5      |6      |
//  -13|   u   |   p   |  ale  |-21
//     |       |       |       |
//   0 o-------o-------o-------o 3
//    -10      1       2
//
const mixedRow = `{
  "data" : { "desc" : "mixed", "steady" : %v, "nworkers" : %d },
  "functions" : [ { "name" : "load", "type" : "cte", "prms" : [ { "n":"c", "v":-1 } ] } ],
  "materials" : [
    { "name" : "steel", "model" : "lin-elast", "prms" : [ { "n":"E", "v":1000 }, { "n":"nu", "v":0.2 }, { "n":"rho", "v":2 } ] },
    { "name" : "soil", "model" : "diffusion", "prms" : [ { "n":"k", "v":3 }, { "n":"C", "v":0.5 } ] }
  ],
  "regions" : [ {
    "mesh" : {
      "verts" : [
        { "id":0, "tag":-1, "c":[0,0] },
        { "id":1, "tag":0,  "c":[1,0] },
        { "id":2, "tag":0,  "c":[2,0] },
        { "id":3, "tag":0,  "c":[3,0] },
        { "id":4, "tag":0,  "c":[0,1] },
        { "id":5, "tag":0,  "c":[1,1] },
        { "id":6, "tag":0,  "c":[2,1] },
        { "id":7, "tag":-7, "c":[3,1] }
      ],
      "cells" : [
        { "id":0, "tag":-1, "type":"qua4", "verts":[0,1,5,4], "ftags":[-10,0,0,-13] },
        { "id":1, "tag":-2, "type":"qua4", "verts":[1,2,6,5], "ftags":[0,0,0,0] },
        { "id":2, "tag":-3, "type":"qua4", "verts":[2,3,7,6], "ftags":[0,-21,0,0] }
      ]
    },
    "elemsdata" : [
      { "tag":-1, "mat":"steel", "type":"u" },
      { "tag":-2, "mat":"soil", "type":"p" },
      { "tag":-3, "type":"ale", "extra":"!chi:2" }
    ]
  } ],
  "solver" : { "type" : "imp", "ctetg" : false },
  "stages" : [
    {
      "facebcs" : [
        { "tag":-10, "keys":["ux","uy"], "funcs":["zero","zero"] },
        { "tag":-13, "keys":["ux"], "funcs":["zero"] },
        { "tag":-21, "keys":["qn"], "funcs":["load"] }
      ],
      "nodebcs" : [ { "tag":-7, "keys":["dx","fdy"], "funcs":["zero","load"] } ],
      "control" : { "tf":1, "dt":0.5 }
    },
    { "deactivate" : [-3], "control" : { "tf":2, "dt":0.5 } },
    { "activate" : [-3], "control" : { "tf":3, "dt":0.5 } }
  ]
}`

func Test_dom01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dom01. equation numbers: structure < fluid < ALE")

	sim := newTestSim(tst, "dom01", io.Sf(mixedRow, false, 1))
	dom := NewDomain(sim, sim.Regions[0], nil)
	require.NoError(tst, dom.SetStage(0))

	// nodes and dofs
	chk.Int(tst, "nnodes", len(dom.Nodes), 8)
	chk.Int(tst, "nelems", len(dom.Elems), 3)
	chk.Int(tst, "ny", dom.Ny, 20)
	vids := make([]int, len(dom.Nodes))
	for i, nod := range dom.Nodes {
		vids[i] = nod.Vert.Id
	}
	chk.Ints(tst, "vids", vids, []int{0, 1, 5, 4, 2, 6, 3, 7})

	// equations
	eqs := func(vid int, keys ...string) (res []int) {
		for _, key := range keys {
			res = append(res, dom.Vid2node[vid].GetEq(key))
		}
		return
	}
	chk.Ints(tst, "v0", eqs(0, "ux", "uy", "pl", "dx"), []int{0, 1, -1, -1})
	chk.Ints(tst, "v1", eqs(1, "ux", "uy", "pl", "dx"), []int{2, 3, 8, -1})
	chk.Ints(tst, "v5", eqs(5, "ux", "uy", "pl"), []int{4, 5, 9})
	chk.Ints(tst, "v4", eqs(4, "ux", "uy"), []int{6, 7})
	chk.Ints(tst, "v2", eqs(2, "ux", "pl", "dx", "dy"), []int{-1, 10, 12, 13})
	chk.Ints(tst, "v6", eqs(6, "pl", "dx", "dy"), []int{11, 14, 15})
	chk.Ints(tst, "v3", eqs(3, "dx", "dy"), []int{16, 17})
	chk.Ints(tst, "v7", eqs(7, "dx", "dy"), []int{18, 19})

	// classes are contiguous
	maxEq := map[FieldClass]int{}
	minEq := map[FieldClass]int{}
	for _, nod := range dom.Nodes {
		for _, dof := range nod.Dofs {
			c, ok := GetFieldClass(dof.Key)
			require.True(tst, ok)
			if v, ok := minEq[c]; !ok || dof.Eq < v {
				minEq[c] = dof.Eq
			}
			if dof.Eq > maxEq[c] {
				maxEq[c] = dof.Eq
			}
		}
	}
	require.Less(tst, maxEq[FieldStructure], minEq[FieldFluid])
	require.Less(tst, maxEq[FieldFluid], minEq[FieldAle])

	// location maps
	chk.Ints(tst, "lm u", dom.Elems[0].Lmap(), []int{0, 1, 2, 3, 4, 5, 6, 7})
	chk.Ints(tst, "lm p", dom.Elems[1].Lmap(), []int{8, 10, 11, 9})
	chk.Ints(tst, "lm ale", dom.Elems[2].Lmap(), []int{12, 13, 16, 17, 18, 19, 14, 15})

	// t1 and t2 equations
	chk.Ints(tst, "t1eqs", dom.T1eqs, []int{8, 9, 10, 11})
	chk.Ints(tst, "t2eqs", dom.T2eqs, []int{0, 1, 2, 3, 4, 5, 6, 7})

	// boundary conditions: ux,uy @ 0,1 + ux @ 4 + dx @ 7
	chk.Int(tst, "nlam", dom.Nlam, 6)
	chk.Int(tst, "nyb", dom.Nyb, 26)
	require.Len(tst, dom.PtNatBcs.Bcs, 1)
	chk.Int(tst, "fdy eq", dom.PtNatBcs.Bcs[0].Eq, 19)
	ale := dom.Elems[2].(*ElemAle)
	chk.Float64(tst, "χ", 1e-15, ale.Chi, 2)
	require.Len(tst, ale.NatBcs, 1)
}

func Test_dom02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dom02. parallel assembly equals serial assembly")

	dc := new(DynCoefs)
	sim := newTestSim(tst, "dom02", io.Sf(mixedRow, false, 1))
	require.NoError(tst, dc.Init(&sim.Solver))
	require.NoError(tst, dc.CalcBoth(0.1))
	dom := NewDomain(sim, sim.Regions[0], dc)
	require.NoError(tst, dom.SetStage(0))

	// some state
	for i := range dom.Sol.Y {
		dom.Sol.Y[i] = math.Sin(float64(i + 1))
		dom.Sol.ΔY[i] = 0.1 * math.Cos(float64(i+1))
		dom.Sol.Psi[i] = 0.3 * float64(i)
		dom.Sol.Zet[i] = -0.2 * float64(i)
		dom.Sol.Chi[i] = 0.1 * float64(i)
	}
	for i := range dom.Sol.L {
		dom.Sol.L[i] = float64(i)
	}
	require.NoError(tst, dom.star_vars())
	require.NoError(tst, dom.UpdateElems())

	// assemble
	assemble := func(nworkers int) (fb []float64, Kb [][]float64) {
		sim.Data.Nworkers = nworkers
		fb = make([]float64, dom.Nyb)
		require.NoError(tst, dom.AssembleRhs(fb))
		var T la.Triplet
		T.Init(dom.Nyb, dom.Nyb, dom.NnzKb+2*dom.NnzA)
		require.NoError(tst, dom.AssembleKb(&T, true))
		K := T.ToDense()
		Kb = make([][]float64, dom.Nyb)
		for i := range Kb {
			Kb[i] = make([]float64, dom.Nyb)
			for j := range Kb[i] {
				Kb[i][j] = K.Get(i, j)
			}
		}
		return
	}
	fbSer, KbSer := assemble(1)
	for _, nw := range []int{2, 3, 8} {
		fbPar, KbPar := assemble(nw)
		if diff := cmp.Diff(fbSer, fbPar); diff != "" {
			tst.Errorf("fb with nworkers=%d differs from serial (-want +got):\n%s", nw, diff)
		}
		if diff := cmp.Diff(KbSer, KbPar); diff != "" {
			tst.Errorf("Kb with nworkers=%d differs from serial (-want +got):\n%s", nw, diff)
		}
	}

	// constraints rows
	for i, bc := range dom.EssenBcs.Bcs {
		chk.Float64(tst, "A", 1e-15, KbSer[dom.Ny+i][bc.Eqs[0]], 1)
		chk.Float64(tst, "At", 1e-15, KbSer[bc.Eqs[0]][dom.Ny+i], 1)
	}

	// wrong size
	require.ErrorIs(tst, dom.AssembleRhs(make([]float64, 3)), ErrPreconditionViolation)
}

func Test_dom03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dom03. ALE elements")

	sim := newTestSim(tst, "dom03", io.Sf(mixedRow, true, 1))
	dom := NewDomain(sim, sim.Regions[0], nil)
	require.NoError(tst, dom.SetStage(0))
	e := dom.Elems[2].(*ElemAle)
	lm := e.Lmap()

	// natural boundary conditions of any kind have no contribution
	prm := &EvalParams{Action: ActRhs, Sol: dom.Sol}
	fvec := []float64{1, 2, 3, 4, 5, 6, 7, 8}
	for key, kind := range neumannKinds {
		nbc := &NaturalBc{Key: key, Kind: kind, IdxFace: 1, Fcn: e.NatBcs[0].Fcn}
		require.NoError(tst, e.EvaluateNeumann(prm, dom, lm, nbc, fvec))
		chk.Array(tst, "fvec", 1e-15, fvec, []float64{1, 2, 3, 4, 5, 6, 7, 8})
	}
	require.ErrorIs(tst, e.EvaluateNeumann(prm, dom, lm, nil, fvec), ErrPreconditionViolation)
	require.Error(tst, e.SetEleConds("g", nil, ""))

	// uniform translation => no residual; Laplacian rows sum to zero
	for i := 0; i < 4; i++ {
		dom.Sol.Y[lm[0+i*2]] = 0.5
		dom.Sol.Y[lm[1+i*2]] = -0.25
	}
	out := NewElemOutputs(len(lm), true)
	require.NoError(tst, e.Evaluate(&EvalParams{Action: ActRhsKb, Sol: dom.Sol}, dom, lm, out))
	chk.Array(tst, "R", 1e-14, out.Vec, make([]float64, len(lm)))
	for i := range out.Mat {
		var sum float64
		for j := range out.Mat[i] {
			sum += out.Mat[i][j]
			chk.Float64(tst, "sym", 1e-14, out.Mat[i][j], out.Mat[j][i])
		}
		chk.Float64(tst, "row sum", 1e-14, sum, 0)
	}
	chk.Float64(tst, "J0", 1e-15, e.J0, 0.25)
}

func Test_dom04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("dom04. stages: deactivation, reactivation and transfer of values")

	sim := newTestSim(tst, "dom04", io.Sf(mixedRow, true, 1))
	dom := NewDomain(sim, sim.Regions[0], nil)
	require.NoError(tst, dom.SetStage(0))
	aleElem := dom.Elems[2]

	// set values
	dom.Sol.T = 1
	dom.Sol.Y[dom.Vid2node[2].GetEq("pl")] = 7
	dom.Sol.Y[dom.Vid2node[5].GetEq("uy")] = -3
	dom.Sol.Y[dom.Vid2node[3].GetEq("dx")] = 11

	// deactivate ALE cell
	require.NoError(tst, dom.SetStage(1))
	chk.Int(tst, "ny", dom.Ny, 12)
	chk.Int(tst, "nelems", len(dom.Elems), 2)
	require.Nil(tst, dom.Vid2node[3])
	require.Nil(tst, dom.Cid2elem[2])
	chk.Int(tst, "eq dx @ 2", dom.Vid2node[2].GetEq("dx"), -1)
	chk.Float64(tst, "t", 1e-15, dom.Sol.T, 1)
	chk.Float64(tst, "pl @ 2", 1e-15, getValue(tst, dom, 2, "pl"), 7)
	chk.Float64(tst, "uy @ 5", 1e-15, getValue(tst, dom, 5, "uy"), -3)

	// stage without boundary conditions
	chk.Int(tst, "nlam", dom.Nlam, 0)
	require.Len(tst, dom.PtNatBcs.Bcs, 0)
	require.Len(tst, dom.Elems[0].(*ElemU).NatBcs, 0)

	// reactivate
	require.NoError(tst, dom.SetStage(2))
	chk.Int(tst, "ny", dom.Ny, 20)
	require.True(tst, aleElem == dom.Cid2elem[2], "element must be reused")
	chk.Float64(tst, "pl @ 2", 1e-15, getValue(tst, dom, 2, "pl"), 7)
	chk.Float64(tst, "uy @ 5", 1e-15, getValue(tst, dom, 5, "uy"), -3)
	chk.Float64(tst, "dx @ 3", 1e-15, getValue(tst, dom, 3, "dx"), 0)
	require.Len(tst, dom.Elems[2].(*ElemAle).NatBcs, 0)

	// wrong stage
	require.Error(tst, dom.SetStage(3))
}
