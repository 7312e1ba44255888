// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/stretchr/testify/require"
)

func Test_linelast01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("linelast01. plane-strain")

	E, ν := 1000.0, 0.25
	mdl, err := GetModel("lin-elast", 2, false, []*dbf.P{{N: "E", V: E}, {N: "nu", V: ν}, {N: "rho", V: 2}})
	require.NoError(tst, err)
	chk.Float64(tst, "rho", 1e-15, mdl.GetRho(), 2)

	λ := E * ν / ((1 + ν) * (1 - 2*ν))
	μ := E / (2 * (1 + ν))
	D := [][]float64{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}
	s, err := mdl.InitIntVars([]float64{1, 2, 3, 0})
	require.NoError(tst, err)
	require.NoError(tst, mdl.CalcD(D, s, true))
	chk.Deep2(tst, "D", 1e-12, D, [][]float64{
		{λ + 2*μ, λ, λ, 0},
		{λ, λ + 2*μ, λ, 0},
		{λ, λ, λ + 2*μ, 0},
		{0, 0, 0, 2 * μ},
	})

	// uniaxial strain increment
	Δε := []float64{0.001, 0, 0, math.Sqrt2 * 0.0005}
	require.NoError(tst, mdl.Update(s, Δε, Δε, 0, 0))
	chk.Array(tst, "σ", 1e-12, s.Sig, []float64{1 + (λ+2*μ)*0.001, 2 + λ*0.001, 3 + λ*0.001, 2 * μ * math.Sqrt2 * 0.0005})
	chk.Array(tst, "ε", 1e-17, s.Eps, Δε)
}

func Test_linelast02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("linelast02. plane-stress and errors")

	E, ν := 1000.0, 0.2
	mdl, err := GetModel("lin-elast", 2, true, []*dbf.P{{N: "E", V: E}, {N: "nu", V: ν}})
	require.NoError(tst, err)
	c := E / (1 - ν*ν)
	D := [][]float64{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}}
	require.NoError(tst, mdl.CalcD(D, nil, true))
	chk.Deep2(tst, "D", 1e-12, D, [][]float64{
		{c, c * ν, 0, 0},
		{c * ν, c, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, c * (1 - ν)},
	})

	_, err = GetModel("lin-elast", 2, false, []*dbf.P{{N: "nu", V: ν}})
	require.Error(tst, err)
	_, err = GetModel("lin-elast", 3, false, []*dbf.P{{N: "E", V: E}})
	require.Error(tst, err)
	_, err = GetModel("cam-clay", 2, false, nil)
	require.Error(tst, err)
}
