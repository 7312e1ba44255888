// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/mpfem/mpfem/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// DynCoefs calculates θ-method, Newmark's or HHT coefficients.
//  Notes:
//   θ1  -- Newmark parameter (gamma)  [0 <= θ1 <= 1]
//   θ2  -- Newmark parameter (2*beta) [0 <= θ2 <= 1]
//   HHT -- use Hilber-Hughes-Taylor method ?
//   α   -- Hilber-Hughes-Taylor parameter [-1/3 <= α <= 0]
//   if HHT==True, θ1 and θ2 are automatically calculated for unconditional stability and the
//   Newmark coefficients are computed from them
type DynCoefs struct {

	// input
	θ, θ1, θ2, α float64
	HHT          bool
	dtmin        float64

	// derived
	β1, β2                 float64 // θ-method
	α1, α2, α3, α4, α5, α6 float64 // Newmark
}

// Init initialises this structure
func (o *DynCoefs) Init(dat *inp.SolverData) (err error) {

	// hmin
	o.dtmin = dat.DtMin

	// θ-method
	o.θ = dat.Theta
	if o.θ < 1e-5 || o.θ > 1.0 {
		return chk.Err("θ-method requires 1e-5 <= θ <= 1.0 (θ = %v is incorrect)", o.θ)
	}

	// HHT method
	o.HHT = dat.HHT
	o.α = dat.HHTalp
	if o.HHT {
		if o.α < -1.0/3.0 || o.α > 0.0 {
			return chk.Err("HHT method requires: -1/3 <= α <= 0 (α = %v is incorrect)", o.α)
		}
		o.θ1 = (1.0 - 2.0*o.α) / 2.0
		o.θ2 = (1.0 - o.α) * (1.0 - o.α) / 2.0

		// Newmark's method
	} else {
		o.θ1, o.θ2 = dat.Theta1, dat.Theta2
		if o.θ1 < 0.0001 || o.θ1 > 1.0 {
			return chk.Err("θ1 must be between 0.0001 and 1.0 (θ1 = %v is incorrect)", o.θ1)
		}
		if o.θ2 < 0.0001 || o.θ2 > 1.0 {
			return chk.Err("θ2 must be between 0.0001 and 1.0 (θ2 = %v is incorrect)", o.θ2)
		}
	}
	return
}

// CalcBoth computes betas and alphas
func (o *DynCoefs) CalcBoth(Δt float64) (err error) {
	err = o.CalcBetas(Δt)
	if err != nil {
		return
	}
	return o.CalcAlphas(Δt)
}

// CalcBetas computes only betas
func (o *DynCoefs) CalcBetas(Δt float64) (err error) {

	// timestep
	h := Δt
	if h < o.dtmin {
		return chk.Err("θ-method requires h >= %v (h = %v is incorrect)", o.dtmin, h)
	}

	// β coefficients
	o.β1 = 1.0 / (o.θ * h)
	o.β2 = (1.0 - o.θ) / o.θ
	return
}

// CalcAlphas computes only alphas
func (o *DynCoefs) CalcAlphas(Δt float64) (err error) {

	// timestep
	h := Δt
	if h < o.dtmin {
		return chk.Err("Newmark/HHT method requires h >= %v (h = %v is incorrect)", o.dtmin, h)
	}

	// α coefficients
	H := h * h / 2.0
	o.α1, o.α2, o.α3 = 1.0/(o.θ2*H), h/(o.θ2*H), 1.0/o.θ2-1.0
	o.α4, o.α5, o.α6 = o.θ1*h/(o.θ2*H), 2.0*o.θ1/o.θ2-1.0, (o.θ1/o.θ2-1.0)*h
	return
}

// GetBetas returns β1 and β2
func (o *DynCoefs) GetBetas() (β1, β2 float64) {
	return o.β1, o.β2
}

// GetAlphas returns α1 to α6
func (o *DynCoefs) GetAlphas() (α1, α2, α3, α4, α5, α6 float64) {
	return o.α1, o.α2, o.α3, o.α4, o.α5, o.α6
}

// String returns a summary of coefficients
func (o *DynCoefs) String() string {
	return io.Sf("θ=%v θ1=%v θ2=%v α=%v HHT=%v\nβ1=%v β2=%v\nα1=%v α2=%v α3=%v α4=%v α5=%v α6=%v",
		o.θ, o.θ1, o.θ2, o.α, o.HHT, o.β1, o.β2, o.α1, o.α2, o.α3, o.α4, o.α5, o.α6)
}
