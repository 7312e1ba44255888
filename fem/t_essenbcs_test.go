// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"math"
	"testing"

	"github.com/mpfem/mpfem/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/la"
	"github.com/stretchr/testify/require"
)

// essenNodes returns two nodes with equations {ux,uy} = {0,1} and {2,3}
func essenNodes() (a, b *Node) {
	a = NewNode(&inp.Vert{Id: 0, C: []float64{0, 0}})
	b = NewNode(&inp.Vert{Id: 1, C: []float64{1, 0}})
	for k, nod := range []*Node{a, b} {
		nod.AddDof("ux")
		nod.AddDof("uy")
		nod.Dofs[0].Eq = 2 * k
		nod.Dofs[1].Eq = 2*k + 1
	}
	return
}

func Test_essen01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("essen01. constraints terms in augmented system")

	a, b := essenNodes()
	var ebcs EssentialBcs
	ebcs.Init()
	require.NoError(tst, ebcs.Set("incsup", []*Node{b}, nil, "!alp:30"))
	require.NoError(tst, ebcs.Set("ux", []*Node{a}, &dbf.Cte{C: 0.5}, ""))
	nλ, nnzA, err := ebcs.Build(4)
	require.NoError(tst, err)
	chk.Int(tst, "nλ", nλ, 2)
	chk.Int(tst, "nnzA", nnzA, 3)
	chk.Ints(tst, "eqs of first constraint", ebcs.Bcs[0].Eqs, []int{0})

	// right-hand side
	co, si := math.Cos(math.Pi/6.0), math.Sin(math.Pi/6.0)
	sol := NewSolution(4, 2, true, false, nil)
	copy(sol.Y, []float64{1, 2, 3, 4})
	copy(sol.L, []float64{10, 20})
	fb := make([]float64, 6)
	ebcs.AddToRhs(fb, sol)
	chk.Array(tst, "fb", 1e-15, fb, []float64{-10, 0, -20 * co, -20 * si, 0.5 - 1, -(3*co + 4*si)})

	// Jacobian
	var Kb la.Triplet
	Kb.Init(6, 6, 2*nnzA)
	ebcs.AddToKb(&Kb)
	chk.Int(tst, "number of entries", Kb.Len(), 2*nnzA)
	K := Kb.ToDense()
	for _, c := range []struct {
		i, j int
		v    float64
	}{{4, 0, 1}, {0, 4, 1}, {5, 2, co}, {2, 5, co}, {5, 3, si}, {3, 5, si}} {
		chk.Float64(tst, io.Sf("Kb(%d,%d)", c.i, c.j), 1e-15, K.Get(c.i, c.j), c.v)
	}
	chk.Float64(tst, "Kb(4,4)", 1e-15, K.Get(4, 4), 0)

	// no constraints: nothing is added
	ebcs.Init()
	nλ, _, err = ebcs.Build(4)
	require.NoError(tst, err)
	chk.Int(tst, "nλ", nλ, 0)
	for i := range fb {
		fb[i] = 7
	}
	ebcs.AddToRhs(fb, sol)
	chk.Array(tst, "fb untouched", 1e-15, fb, []float64{7, 7, 7, 7, 7, 7})
	Kb.Start()
	ebcs.AddToKb(&Kb)
	chk.Int(tst, "number of entries", Kb.Len(), 0)
}
