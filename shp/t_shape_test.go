// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func Test_shape01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shape01")

	r := []float64{0.1, 0.2, 0}

	verb := chk.Verbose
	for name, shape := range factory {

		io.Pfyel("--------------------------------- %-6s---------------------------------\n", name)

		// check S
		CheckShape(tst, shape, 1e-15, verb)

		// check Sf
		CheckShapeFace(tst, shape, 1e-15, verb)

		// check dSdR
		CheckDSdR(tst, shape, r, 1e-11, verb)
	}
}

func Test_shape02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shape02. Jacobian and G of qua4")

	xmat := [][]float64{
		{10, 13, 13, 10},
		{8, 8, 9, 9},
	}
	dx, dy := 3.0, 1.0
	dr, ds := 2.0, 2.0
	shape := New("qua4")
	err := shape.CalcAtR(xmat, []float64{0, 0, 0}, true)
	if err != nil {
		tst.Errorf("CalcAtR failed:\n%v", err)
		return
	}
	io.Pforan("J = %v\n", shape.J)
	chk.Float64(tst, "J", 1e-15, shape.J, (dx/dr)*(dy/ds))

	// G = dSdx = dSdR * dRdx with dRdx = diag(2/3, 2)
	chk.Array(tst, "G0", 1e-15, shape.G[0], []float64{-0.25 * 2.0 / 3.0, -0.25 * 2.0})
	chk.Array(tst, "G2", 1e-15, shape.G[2], []float64{0.25 * 2.0 / 3.0, 0.25 * 2.0})
}

func Test_shape03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shape03. face normals and integration of unit function")

	xmat := [][]float64{
		{0, 2, 2, 0},
		{0, 0, 1, 1},
	}
	shape := New("qua4")
	ipsf, err := GetIps("lin2", 2)
	if err != nil {
		tst.Errorf("GetIps failed:\n%v", err)
		return
	}

	// face lengths and outward normals
	lens := []float64{2, 1, 2, 1}
	nrms := [][]float64{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	for f := 0; f < 4; f++ {
		length := 0.0
		for _, ip := range ipsf {
			err = shape.CalcAtFaceIp(xmat, ip, f)
			if err != nil {
				tst.Errorf("CalcAtFaceIp failed:\n%v", err)
				return
			}
			jf := math.Sqrt(shape.Fnvec[0]*shape.Fnvec[0] + shape.Fnvec[1]*shape.Fnvec[1])
			length += ip.W * jf
			chk.Array(tst, io.Sf("n%d", f), 1e-15, []float64{shape.Fnvec[0] / jf, shape.Fnvec[1] / jf}, nrms[f])
		}
		chk.Float64(tst, io.Sf("length%d", f), 1e-15, length, lens[f])
	}

	// area
	for _, nip := range []int{1, 4, 9} {
		ips, err := GetIps("qua4", nip)
		if err != nil {
			tst.Errorf("GetIps failed:\n%v", err)
			return
		}
		area := 0.0
		for _, ip := range ips {
			shape.CalcAtIp(xmat, ip, true)
			area += ip.W * shape.J
		}
		chk.Float64(tst, io.Sf("area(nip=%d)", nip), 1e-14, area, 2)
	}
}

func Test_shape04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("shape04. inverse of dxdR")

	// distorted qua4: dRdx・dxdR = I
	shape := New("qua4")
	err := shape.CalcAtR([][]float64{
		{0, 2, 3, -1},
		{0, 0.5, 2, 1},
	}, []float64{0.3, -0.2, 0}, true)
	if err != nil {
		tst.Errorf("CalcAtR failed:\n%v", err)
		return
	}
	res := [][]float64{{0, 0}, {0, 0}}
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			res[i][j] = shape.DRdx[i][0]*shape.DxdR[0][j] + shape.DRdx[i][1]*shape.DxdR[1][j]
		}
	}
	chk.Deep2(tst, "dRdx・dxdR", 1e-14, res, [][]float64{{1, 0}, {0, 1}})

	// clockwise tri3: negative determinant
	shape = New("tri3")
	err = shape.CalcAtR([][]float64{
		{0, 0, 1},
		{0, 1, 0},
	}, []float64{0.2, 0.2, 0}, true)
	if err != nil {
		tst.Errorf("CalcAtR failed:\n%v", err)
		return
	}
	chk.Float64(tst, "J", 1e-15, shape.J, -1)

	// collapsed qua4
	shape = New("qua4")
	err = shape.CalcAtR([][]float64{
		{0, 1, 2, 3},
		{0, 0, 0, 0},
	}, []float64{0, 0, 0}, true)
	if err == nil {
		tst.Errorf("CalcAtR should have failed with collapsed element\n")
		return
	}
	io.Pforan("%v\n", err)
}

func Test_race01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("race01")

	nchan := 2
	done := make(chan int, nchan)

	shapes := make([]*Shape, nchan)
	for i := 0; i < nchan; i++ {
		shapes[i] = New("tri3")
	}

	for i := 0; i < nchan; i++ {
		go func(shape *Shape) {
			shape.CalcAtR([][]float64{
				{0, 1, 0},
				{0, 0, 1},
			}, []float64{0.5, 0.5, 0}, true)
			done <- 1
		}(shapes[i])
	}

	for i := 0; i < nchan; i++ {
		<-done
	}
	chk.Float64(tst, "J", 1e-15, shapes[0].J, 1)
}
