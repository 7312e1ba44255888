// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"sort"

	"github.com/cpmech/gosl/chk"
)

// PredictorState holds the lifecycle state of predictors
type PredictorState int

const (
	PredUninitialized PredictorState = iota // just allocated
	PredInitialized                         // Init called
	PredReady                               // Setup called; Compute may be called
)

// String returns the name of state
func (o PredictorState) String() string {
	switch o {
	case PredUninitialized:
		return "Uninitialized"
	case PredInitialized:
		return "Initialized"
	case PredReady:
		return "Ready"
	}
	return "unknown"
}

// PredictorParams holds data required by predictors
type PredictorParams struct {
	DynCfs *DynCoefs // coefficients for dynamics/transient simulations
	Steady bool      // steady simulation
}

// Predictor computes the initial guess of a time step from the last converged state
//  Notes:
//   1) the lifecycle is Init => Setup => Compute; Setup must be called again after the
//      number of equations changes
//   2) Compute writes the iterate of the group only; the converged state is read only
type Predictor interface {
	Name() string                          // name of predictor
	Init(prm *PredictorParams) (err error) // initialises predictor with solver parameters
	Setup(dom *Domain) (err error)         // sets equations (t1 and t2 variables) of domain
	Compute(grp SolverGroup) (err error)   // computes predicted iterate
	State() PredictorState                 // current lifecycle state
}

// NewPredictor allocates a new predictor by name
func NewPredictor(name string) (pred Predictor, err error) {
	allocator, ok := predallocators[name]
	if !ok {
		return nil, chk.Err("cannot find predictor named %q. available: %v", name, PredictorNames())
	}
	return allocator(), nil
}

// PredictorNames returns the sorted names of available predictors
func PredictorNames() (names []string) {
	for name := range predallocators {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}

// predallocators holds all available predictors
var predallocators = make(map[string]func() Predictor)

// predBase implements the lifecycle shared by all predictors
type predBase struct {
	state  PredictorState
	prm    PredictorParams
	t1eqs  []int // first t-derivative equations
	t2eqs  []int // second t-derivative equations
	ny     int   // number of equations
	nlam   int   // number of Lagrange multipliers
	steady bool  // steady simulation
}

// State returns the lifecycle state
func (o *predBase) State() PredictorState { return o.state }

// Init initialises predictor
func (o *predBase) Init(prm *PredictorParams) (err error) {
	if prm == nil {
		return preconditionViolation("Predictor.Init", "parameters must be given")
	}
	if !prm.Steady && prm.DynCfs == nil {
		return preconditionViolation("Predictor.Init", "dynamic coefficients are required by transient simulations")
	}
	o.prm = *prm
	o.steady = prm.Steady
	o.state = PredInitialized
	return
}

// Setup sets equations
func (o *predBase) Setup(dom *Domain) (err error) {
	if err = o.checkInit("Predictor.Setup"); err != nil {
		return
	}
	if dom == nil || dom.Sol == nil {
		return preconditionViolation("Predictor.Setup", "stage of domain must be set first")
	}
	o.t1eqs = append([]int{}, dom.T1eqs...)
	o.t2eqs = append([]int{}, dom.T2eqs...)
	o.ny = dom.Ny
	o.nlam = dom.Nlam
	o.state = PredReady
	return
}

// checkInit returns an error if Init has not been called
func (o *predBase) checkInit(op string) error {
	if o.state < PredInitialized {
		return preconditionViolation(op, "predictor must be initialised first")
	}
	return nil
}

// checkSetup returns an error if Setup has not been called or if the group does not match
// the equations given in Setup
func (o *predBase) checkSetup(op string, grp SolverGroup) error {
	if o.state < PredReady {
		return preconditionViolation(op, "predictor must be set up first")
	}
	if grp == nil || grp.Sol() == nil || grp.Conv() == nil {
		return preconditionViolation(op, "group with current and converged states must be given")
	}
	if len(grp.Sol().Y) != o.ny || len(grp.Conv().Y) != o.ny {
		return preconditionViolation(op, "number of equations changed; Setup must be called again")
	}
	return nil
}

// start copies the converged state into the iterate
func (o *predBase) start(sol, conv *Solution) {
	copy(sol.Y, conv.Y)
	copy(sol.L, conv.L)
	if !o.steady {
		copy(sol.Dydt, conv.Dydt)
		copy(sol.D2ydt2, conv.D2ydt2)
	}
}

// finish computes the total increment and, if needed, rates consistent with the
// θ-method and Newmark's method; the coefficients must correspond to the current Δt
//  ẏ = β1・(y - yₙ) - β2・ẏₙ
//  v = α4・(u - uₙ) - α5・vₙ - α6・aₙ
//  a = α1・(u - uₙ) - α2・vₙ - α3・aₙ
func (o *predBase) finish(sol, conv *Solution, consistentRates bool) {
	for i := 0; i < o.ny; i++ {
		sol.ΔY[i] = sol.Y[i] - conv.Y[i]
	}
	if o.steady || !consistentRates {
		return
	}
	dc := o.prm.DynCfs
	for _, I := range o.t1eqs {
		sol.Dydt[I] = dc.β1*sol.ΔY[I] - dc.β2*conv.Dydt[I]
	}
	for _, I := range o.t2eqs {
		sol.Dydt[I] = dc.α4*sol.ΔY[I] - dc.α5*conv.Dydt[I] - dc.α6*conv.D2ydt2[I]
		sol.D2ydt2[I] = dc.α1*sol.ΔY[I] - dc.α2*conv.Dydt[I] - dc.α3*conv.D2ydt2[I]
	}
}
