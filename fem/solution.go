// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

// Solution holds the solution data @ nodes.
//
//        / u \         / u \
//        |   | => y =  | p |
//  yb =  | p |         \ d / (ny x 1)
//        | d |
//        \ λ / (nyb x 1)
//
type Solution struct {

	// current state
	T      float64   // current time
	Dt     float64   // current time step
	Y      []float64 // DOFs (solution variables); e.g. y = {u, p, d}
	Dydt   []float64 // dy/dt
	D2ydt2 []float64 // d²y/dt²

	// auxiliary
	ΔY  []float64 // total increment (for nonlinear solver)
	Psi []float64 // t1 star vars; e.g. ψ* = β1.p + β2.dpdt
	Zet []float64 // t2 star vars; e.g. ζ* = α1.u + α2.v + α3.a
	Chi []float64 // t2 star vars; e.g. χ* = α4.u + α5.v + α6.a
	L   []float64 // Lagrange multipliers

	// problem definition and constants
	Steady  bool      // [from Sim] steady simulation
	Pstress bool      // [from Sim] plane-stress
	DynCfs  *DynCoefs // [from FEM] coefficients for dynamics/transient simulations
}

// NewSolution allocates a new Solution
func NewSolution(ny, nlam int, steady, pstress bool, dc *DynCoefs) (o *Solution) {
	o = &Solution{Steady: steady, Pstress: pstress, DynCfs: dc}
	o.Y = make([]float64, ny)
	o.ΔY = make([]float64, ny)
	o.L = make([]float64, nlam)
	if !steady {
		o.Dydt = make([]float64, ny)
		o.D2ydt2 = make([]float64, ny)
		o.Psi = make([]float64, ny)
		o.Zet = make([]float64, ny)
		o.Chi = make([]float64, ny)
	}
	return
}

// Reset clear values
func (o *Solution) Reset() {
	o.T = 0
	for i := 0; i < len(o.Y); i++ {
		o.Y[i] = 0
		o.ΔY[i] = 0
	}
	if !o.Steady {
		for i := 0; i < len(o.Y); i++ {
			o.Psi[i] = 0
			o.Zet[i] = 0
			o.Chi[i] = 0
			o.Dydt[i] = 0
			o.D2ydt2[i] = 0
		}
	}
	for i := 0; i < len(o.L); i++ {
		o.L[i] = 0
	}
}

// Set copies all values from another solution of the same size
func (o *Solution) Set(another *Solution) {
	o.T = another.T
	o.Dt = another.Dt
	copy(o.Y, another.Y)
	copy(o.ΔY, another.ΔY)
	copy(o.L, another.L)
	if !o.Steady {
		copy(o.Dydt, another.Dydt)
		copy(o.D2ydt2, another.D2ydt2)
		copy(o.Psi, another.Psi)
		copy(o.Zet, another.Zet)
		copy(o.Chi, another.Chi)
	}
}

// GetCopy returns a copy of this solution
func (o *Solution) GetCopy() (other *Solution) {
	other = NewSolution(len(o.Y), len(o.L), o.Steady, o.Pstress, o.DynCfs)
	other.Set(o)
	return
}
