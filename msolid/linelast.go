// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/utl"
)

// LinElast implements a linear elastic model
type LinElast struct {
	E       float64     // Young's modulus
	Nu      float64     // Poisson's coefficient
	Rho     float64     // density
	Pse     bool        // plane-stress
	Nsig    int         // number of stress components
	De      [][]float64 // elastic modulus
	ndim    int         // space dimension
	lam, mu float64     // Lamé's coefficients
}

// add model to factory
func init() {
	allocators["lin-elast"] = func() Model { return new(LinElast) }
}

// Init initialises model
func (o *LinElast) Init(ndim int, pstress bool, prms dbf.Params) (err error) {
	o.ndim, o.Pse = ndim, pstress
	if ndim != 2 {
		return chk.Err("lin-elast: only 2D problems are supported; ndim=%d is invalid", ndim)
	}
	o.Nsig = 4
	o.Nu = 0
	hasE := false
	for _, p := range prms {
		switch p.N {
		case "E":
			o.E, hasE = p.V, true
		case "nu":
			o.Nu = p.V
		case "rho":
			o.Rho = p.V
		}
	}
	if !hasE || o.E <= 0 {
		return chk.Err("lin-elast: parameter E must be given and positive")
	}
	if o.Nu < 0 || o.Nu >= 0.5 {
		return chk.Err("lin-elast: Poisson's coefficient must satisfy 0 ≤ ν < 0.5; ν=%g is invalid", o.Nu)
	}
	o.lam = o.E * o.Nu / ((1.0 + o.Nu) * (1.0 - 2.0*o.Nu))
	o.mu = o.E / (2.0 * (1.0 + o.Nu))
	o.De = utl.Alloc(o.Nsig, o.Nsig)
	o.calcDe()
	return
}

// GetPrms gets (an example) of parameters
func (o LinElast) GetPrms() dbf.Params {
	return []*dbf.P{
		{N: "E", V: 1000},
		{N: "nu", V: 0.25},
		{N: "rho", V: 1},
	}
}

// GetRho returns density
func (o LinElast) GetRho() float64 {
	return o.Rho
}

// InitIntVars initialises internal (secondary) variables
func (o LinElast) InitIntVars(σ []float64) (s *State, err error) {
	s = NewState(o.Nsig)
	copy(s.Sig, σ)
	return
}

// Update updates stresses for given strains
func (o *LinElast) Update(s *State, ε, Δε []float64, eid, ipid int) (err error) {
	for i := 0; i < o.Nsig; i++ {
		for j := 0; j < o.Nsig; j++ {
			s.Sig[i] += o.De[i][j] * Δε[j]
		}
		s.Eps[i] = ε[i]
	}
	return
}

// CalcD computes D = dσ_new/dε_new consistent with Update
func (o *LinElast) CalcD(D [][]float64, s *State, firstIt bool) (err error) {
	for i := 0; i < o.Nsig; i++ {
		copy(D[i], o.De[i])
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// calcDe computes the elastic modulus in Mandel's basis
func (o *LinElast) calcDe() {
	if o.Pse {
		c := o.E / (1.0 - o.Nu*o.Nu)
		o.De[0][0], o.De[0][1] = c, c*o.Nu
		o.De[1][0], o.De[1][1] = c*o.Nu, c
		o.De[3][3] = c * (1.0 - o.Nu)
		return
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			o.De[i][j] = o.lam
		}
		o.De[i][i] += 2.0 * o.mu
	}
	o.De[3][3] = 2.0 * o.mu
}
