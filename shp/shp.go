// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package shp implements shape structures/routines
package shp

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/utl"
)

// constants
const MINDET = 1.0e-14 // minimum determinant allowed for dxdR

// ShpFunc is the shape functions callback function
type ShpFunc func(S []float64, dSdR [][]float64, r []float64, derivs bool)

// Shape holds geometry data
type Shape struct {

	// geometry
	Type           string      // name; e.g. "lin2"
	Func           ShpFunc     // shape/derivs function callback function
	FaceFunc       ShpFunc     // face shape/derivs function callback function
	FaceType       string      // geometry of face; e.g. "qua4" => "lin2"
	Gndim          int         // geometry of shape; e.g. "lin2" => gnd == 1 (even in 2D simulations)
	Nverts         int         // number of vertices in cell; e.g. "qua4" => 4
	FaceNvertsMax  int         // max number of vertices on face
	FaceLocalVerts [][]int     // face local vertices [nfaces][...]
	NatCoords      [][]float64 // natural coordinates [gndim][nverts]

	// scratchpad: volume
	S    []float64   // [nverts] shape functions
	G    [][]float64 // [nverts][gndim] G == dSdx. derivative of shape function
	J    float64     // Jacobian: determinant of dxdr
	DSdR [][]float64 // [nverts][gndim] derivatives of S w.r.t natural coordinates
	DxdR [][]float64 // [gndim][gndim] derivatives of real coordinates w.r.t natural coordinates
	DRdx [][]float64 // [gndim][gndim] dRdx == inverse(dxdR)

	// scratchpad: line
	Jvec []float64 // [2] dxdR for line elements
	Gvec []float64 // [nverts] G == dSdx. derivative of shape function

	// scratchpad: face
	Sf     []float64   // [FaceNvertsMax] shape functions values
	Fnvec  []float64   // [gndim] face normal vector multiplied by Jf
	DSfdRf [][]float64 // [FaceNvertsMax][gndim-1] derivatives of Sf w.r.t natural coordinates
	DxfdRf [][]float64 // [gndim][gndim-1] derivatives of real coordinates w.r.t natural coordinates

	// natural coordinates of current ip
	r []float64
}

// GetCopy returns a new copy of this shape structure. The scratchpad is allocated anew
func (o Shape) GetCopy() *Shape {
	p := &Shape{
		Type:           o.Type,
		Func:           o.Func,
		FaceFunc:       o.FaceFunc,
		FaceType:       o.FaceType,
		Gndim:          o.Gndim,
		Nverts:         o.Nverts,
		FaceNvertsMax:  o.FaceNvertsMax,
		FaceLocalVerts: o.FaceLocalVerts,
		NatCoords:      o.NatCoords,
	}
	p.init_scratchpad()
	return p
}

// factory holds all Shapes available
var factory = make(map[string]*Shape)

// Get returns an existent Shape structure
//  Note: 1) returns nil on errors
//        2) use goroutineId > 0 to get a copy
func Get(geoType string, goroutineId int) *Shape {
	s, ok := factory[geoType]
	if !ok {
		return nil
	}
	if goroutineId > 0 {
		return s.GetCopy()
	}
	return s
}

// New returns a private copy of a Shape structure; i.e. a structure whose scratchpad can be
// used concurrently with other copies
//  Note: returns nil if geoType is not available
func New(geoType string) *Shape {
	s, ok := factory[geoType]
	if !ok {
		return nil
	}
	return s.GetCopy()
}

// GetNverts returns the number of vertices of a geometry type or -1 if not available
func GetNverts(geoType string) int {
	s, ok := factory[geoType]
	if !ok {
		return -1
	}
	return s.Nverts
}

// GetFaceType returns the geometry of faces of geoType or "" if not available
func GetFaceType(geoType string) string {
	s, ok := factory[geoType]
	if !ok {
		return ""
	}
	return s.FaceType
}

// GetFaceLocalVerts returns the local vertices on face idxface
//  Note: returns nil if not available
func GetFaceLocalVerts(geoType string, idxface int) []int {
	s, ok := factory[geoType]
	if !ok {
		return nil
	}
	if idxface < 0 || idxface >= len(s.FaceLocalVerts) {
		return nil
	}
	return s.FaceLocalVerts[idxface]
}

// IpRealCoords returns the real coordinates (y) of an integration point
func (o *Shape) IpRealCoords(x [][]float64, ip *Ipoint) (y []float64) {
	ndim := len(x)
	y = make([]float64, ndim)
	o.Func(o.S, o.DSdR, ip.set(o.r), false)
	for i := 0; i < ndim; i++ {
		for m := 0; m < o.Nverts; m++ {
			y[i] += o.S[m] * x[i][m]
		}
	}
	return
}

// CalcAtIp calculates volume data such as S and G at an integration point
//  Input:
//   x[ndim][nverts] -- coordinates matrix of element
//   ip              -- integration point
//  Output:
//   S, DSdR, DxdR, DRdx, G, and J
func (o *Shape) CalcAtIp(x [][]float64, ip *Ipoint, derivs bool) (err error) {
	return o.CalcAtR(x, ip.set(o.r), derivs)
}

// CalcAtR calculates volume data such as S and G at natural coordinate r
//  Input:
//   x[ndim][nverts] -- coordinates matrix of element
//   r[3]            -- local/natural coordinates
//  Output:
//   S, DSdR, DxdR, DRdx, G, and J
func (o *Shape) CalcAtR(x [][]float64, r []float64, derivs bool) (err error) {

	// S and dSdR
	o.Func(o.S, o.DSdR, r, derivs)
	if !derivs {
		return
	}

	if o.Gndim == 1 {
		// calculate Jvec == dxdR
		for i := 0; i < len(x); i++ {
			o.Jvec[i] = 0.0
			for m := 0; m < o.Nverts; m++ {
				o.Jvec[i] += x[i][m] * o.DSdR[m][0] // dxdR := x * dSdR
			}
		}

		// calculate J = norm of Jvec
		o.J = 0
		for i := 0; i < len(x); i++ {
			o.J += o.Jvec[i] * o.Jvec[i]
		}
		o.J = math.Sqrt(o.J)
		if o.J < MINDET {
			return chk.Err("line Jacobian is too small: J = %g", o.J)
		}

		// calculate G
		for m := 0; m < o.Nverts; m++ {
			o.Gvec[m] = o.DSdR[m][0] / o.J
		}
		return
	}

	// dxdR := sum_n x * dSdR   =>  dx_i/dR_j := sum_n x^n_i * dS^n/dR_j
	for i := 0; i < o.Gndim; i++ {
		for j := 0; j < o.Gndim; j++ {
			o.DxdR[i][j] = 0.0
			for n := 0; n < o.Nverts; n++ {
				o.DxdR[i][j] += x[i][n] * o.DSdR[n][j]
			}
		}
	}

	// dRdx := inv(dxdR)
	o.J, err = o.invDxdR()
	if err != nil {
		return
	}

	// G == dSdx := dSdR * dRdx  =>  dS^m/dx_j := sum_i dS^m/dR_i * dR_i/dx_j
	for m := 0; m < o.Nverts; m++ {
		for j := 0; j < o.Gndim; j++ {
			o.G[m][j] = 0
			for i := 0; i < o.Gndim; i++ {
				o.G[m][j] += o.DSdR[m][i] * o.DRdx[i][j]
			}
		}
	}
	return
}

// CalcAtFaceIp calculates face data such as Sf and Fnvec
//  Input:
//   x[ndim][nverts] -- coordinates matrix of element
//   ipf             -- integration point on face
//   idxface         -- local index of face
//  Output:
//   Sf and Fnvec
func (o *Shape) CalcAtFaceIp(x [][]float64, ipf *Ipoint, idxface int) (err error) {

	// check
	if o.Gndim != 2 {
		return chk.Err("face data is available for 2D shapes only; %q has gndim = %d", o.Type, o.Gndim)
	}
	if idxface < 0 || idxface >= len(o.FaceLocalVerts) {
		return chk.Err("face index %d is out of range for %q", idxface, o.Type)
	}

	// Sf and dSfdR
	o.FaceFunc(o.Sf, o.DSfdRf, ipf.set(o.r), true)

	// dxfdRf := sum_n x * dSfdRf   =>  dxf_i/dRf_j := sum_n xf^n_i * dSf^n/dRf_j
	for i := 0; i < o.Gndim; i++ {
		o.DxfdRf[i][0] = 0.0
		for k, n := range o.FaceLocalVerts[idxface] {
			o.DxfdRf[i][0] += x[i][n] * o.DSfdRf[k][0]
		}
	}

	// face normal vector (outward for counter-clockwise numbering)
	o.Fnvec[0] = o.DxfdRf[1][0]
	o.Fnvec[1] = -o.DxfdRf[0][0]
	return
}

// init_scratchpad initialise volume data (scratchpad)
func (o *Shape) init_scratchpad() {

	// volume data
	o.S = make([]float64, o.Nverts)
	o.DSdR = utl.Alloc(o.Nverts, o.Gndim)
	o.DxdR = utl.Alloc(o.Gndim, o.Gndim)
	o.DRdx = utl.Alloc(o.Gndim, o.Gndim)
	o.G = utl.Alloc(o.Nverts, o.Gndim)
	o.r = make([]float64, 3)

	// face data
	if o.Gndim > 1 {
		o.Sf = make([]float64, o.FaceNvertsMax)
		o.DSfdRf = utl.Alloc(o.FaceNvertsMax, o.Gndim-1)
		o.DxfdRf = utl.Alloc(o.Gndim, o.Gndim-1)
		o.Fnvec = make([]float64, o.Gndim)
	}

	// lin data
	if o.Gndim == 1 {
		o.Jvec = make([]float64, 2)
		o.Gvec = make([]float64, o.Nverts)
	}
}

// invDxdR computes dRdx = inv(dxdR) and returns the determinant of dxdR
func (o *Shape) invDxdR() (det float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = chk.Err("inverse of (dxdR) failed:\n%v", r)
		}
	}()
	ai := la.NewMatrix(o.Gndim, o.Gndim)
	det = la.MatInvSmall(ai, la.NewMatrixDeep2(o.DxdR), MINDET)
	for i := 0; i < o.Gndim; i++ {
		for j := 0; j < o.Gndim; j++ {
			o.DRdx[i][j] = ai.Get(i, j)
		}
	}
	return
}
