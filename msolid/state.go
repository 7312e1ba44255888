// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package msolid

// State holds all continuum mechanics data, including for updating the state
//  Note: stresses and strains use Mandel's components: {xx, yy, zz, √2·xy}
type State struct {
	Sig []float64 // σ: current Cauchy stress tensor (effective) [nsig]
	Eps []float64 // ε: accumulated total strains [nsig]
}

// NewState allocates state structure for small strain analyses
func NewState(nsig int) *State {
	return &State{
		Sig: make([]float64, nsig),
		Eps: make([]float64, nsig),
	}
}

// Set copies states
//  Note: 1) this and other states must have been pre-allocated with the same sizes
//        2) this method does not check for errors
func (o *State) Set(other *State) {
	copy(o.Sig, other.Sig)
	copy(o.Eps, other.Eps)
}

// GetCopy returns a copy of this state
func (o *State) GetCopy() *State {
	other := NewState(len(o.Sig))
	other.Set(o)
	return other
}
