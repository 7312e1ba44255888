// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"errors"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func Test_aux01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("aux01. auxiliary data of elements")

	aux := NewAuxData()
	require.False(tst, aux.Has("Kaa"))
	require.Nil(tst, aux.At(0))

	// add copies the value
	M := mat.NewDense(2, 2, []float64{1, 2, 3, 4})
	kaa := aux.Add("Kaa", M)
	M.Set(0, 0, 100)
	got, err := aux.Get("Kaa")
	require.NoError(tst, err)
	chk.Float64(tst, "Kaa00", 1e-15, got.At(0, 0), 1)
	require.True(tst, got == aux.At(kaa))

	// overwrite keeps key
	fa := aux.Add("fa", mat.NewDense(2, 1, []float64{5, 6}))
	require.NotEqual(tst, kaa, fa)
	k2 := aux.Add("Kaa", mat.NewDense(3, 3, nil))
	require.Equal(tst, kaa, k2)
	r, c := aux.At(kaa).Dims()
	chk.Ints(tst, "dims", []int{r, c}, []int{3, 3})
	k3 := aux.Add("Kaa", mat.NewDense(3, 3, []float64{1, 0, 0, 0, 1, 0, 0, 0, 1}))
	require.Equal(tst, kaa, k3)
	chk.Float64(tst, "Kaa22", 1e-15, aux.At(kaa).At(2, 2), 1)
	chk.Float64(tst, "fa1", 1e-15, aux.At(fa).At(1, 0), 6)
	require.Equal(tst, []string{"Kaa", "fa"}, aux.Names())

	// missing entries
	_, err = aux.Get("Kau")
	require.True(tst, errors.Is(err, ErrAuxNotFound))
	require.True(tst, errors.Is(err, ErrPreconditionViolation))
	var ferr *Error
	require.True(tst, errors.As(err, &ferr))
	require.Equal(tst, "AuxData.Get", ferr.Op)
	require.Contains(tst, err.Error(), "Kau")
	require.Nil(tst, aux.At(-1))
	require.Nil(tst, aux.At(5))

	// nil values are not accepted
	require.Panics(tst, func() { aux.Add("nil", nil) })

	// zero value is usable
	var empty AuxData
	empty.Add("x", mat.NewDense(1, 1, []float64{7}))
	x, err := empty.Get("x")
	require.NoError(tst, err)
	chk.Float64(tst, "x", 1e-15, x.At(0, 0), 7)
}

func Test_errors01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("errors01. error kinds")

	err := notImplemented("ElemU.EvaluateNeumann", "surface load %q", "qnsurf")
	require.True(tst, errors.Is(err, ErrNotImplemented))
	require.False(tst, errors.Is(err, ErrPreconditionViolation))
	require.Equal(tst, `ElemU.EvaluateNeumann: not implemented: surface load "qnsurf"`, err.Error())

	err = preconditionViolation("Predictor.Compute", "")
	require.True(tst, errors.Is(err, ErrPreconditionViolation))
	require.Equal(tst, "Predictor.Compute: precondition violation", err.Error())

	err = invariantViolation("DestroyNoxState", "wrong group")
	require.True(tst, errors.Is(err, ErrInvariantViolation))
}

func Test_nbc01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("nbc01. kinds of natural boundary conditions")

	for key, kind := range map[string]NeumannKind{"qn": LineNeumann, "qx": LineNeumann, "qy": LineNeumann, "flux": LineNeumann, "qnsurf": SurfaceNeumann, "fluxsurf": SurfaceNeumann} {
		k, ok := GetNeumannKind(key)
		require.True(tst, ok, key)
		require.Equal(tst, kind, k, key)
	}
	_, ok := GetNeumannKind("ux")
	require.False(tst, ok)
	require.Equal(tst, "LineNeumann", LineNeumann.String())
	require.Equal(tst, "SurfaceNeumann", SurfaceNeumann.String())
	require.Equal(tst, "unknown", NeumannKind(0).String())

	require.True(tst, IsEssenKey("ux"))
	require.True(tst, IsEssenKey("dy"))
	require.True(tst, IsEssenKey("incsup"))
	require.False(tst, IsEssenKey("qn"))
	c, ok := GetFieldClass("pl")
	require.True(tst, ok)
	require.Equal(tst, FieldFluid, c)
}
