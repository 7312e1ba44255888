// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package msolid implements models for solids based on continuum mechanics
//
//            |    Rate
//  ============================================
//            |
//            | dσdt = f(σ,dεdt)
//    Small   | σ_(n+1) = σ_(n) + Δt * f_(n+1)
//            | Update
//            | D = dσ/dε_(n+1)
//            | CalcD
//            |
package msolid

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// Model defines the interface for solid models
type Model interface {
	Init(ndim int, pstress bool, prms dbf.Params) error // initialises model
	InitIntVars(σ []float64) (*State, error)            // initialises AND allocates internal (secondary) variables
	GetPrms() dbf.Params                                // gets (an example) of parameters
	GetRho() float64                                    // returns density
}

// Small defines rate type solid models for small strain analyses
type Small interface {
	Model
	Update(s *State, ε, Δε []float64, eid, ipid int) error // updates stresses for given strains
	CalcD(D [][]float64, s *State, firstIt bool) error      // computes D = dσ_new/dε_new consistent with Update
}

// New returns new solid model
func New(name string) (model Model, err error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("model %q is not available in 'solid' database", name)
	}
	return allocator(), nil
}

// GetModel returns an initialised small strain model
func GetModel(name string, ndim int, pstress bool, prms dbf.Params) (model Small, err error) {
	mdl, err := New(name)
	if err != nil {
		return
	}
	var ok bool
	if model, ok = mdl.(Small); !ok {
		return nil, chk.Err("model %q is not a small strain model", name)
	}
	err = model.Init(ndim, pstress, prms)
	if err != nil {
		return nil, chk.Err("cannot initialise model %q:\n%v", name, err)
	}
	return
}

// allocators holds all available solid models; modelname => allocator
var allocators = map[string]func() Model{}
