// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/mpfem/mpfem/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/utl"
)

// Action tells Evaluate what to compute
type Action int

const (
	ActRhs   Action = iota // residual only
	ActRhsKb               // residual and tangent
	ActKb                  // tangent only
)

// Rhs tells whether the residual is requested
func (o Action) Rhs() bool { return o == ActRhs || o == ActRhsKb }

// Kb tells whether the tangent matrix is requested
func (o Action) Kb() bool { return o == ActKb || o == ActRhsKb }

// EvalParams holds the input to element evaluations
type EvalParams struct {
	Action  Action    // what to compute
	Sol     *Solution // current solution
	FirstIt bool      // first iteration of time step
}

// ElemOutputs holds buffers, provided by the caller, where elements write their contributions
//  Vec -- [ndof] negative of residual: -R
//  Mat -- [ndof][ndof] tangent matrix: dR/dy. May be nil if only the residual is requested
type ElemOutputs struct {
	Vec []float64
	Mat [][]float64
}

// NewElemOutputs allocates buffers for an element with ndof degrees of freedom
func NewElemOutputs(ndof int, withMat bool) (o *ElemOutputs) {
	o = &ElemOutputs{Vec: make([]float64, ndof)}
	if withMat {
		o.Mat = utl.Alloc(ndof, ndof)
	}
	return
}

// Zero clears buffers
func (o *ElemOutputs) Zero() {
	for i := range o.Vec {
		o.Vec[i] = 0
	}
	for i := range o.Mat {
		for j := range o.Mat[i] {
			o.Mat[i][j] = 0
		}
	}
}

// clear zeroes the buffers requested by act
func (o *ElemOutputs) clear(act Action) {
	if act.Rhs() {
		for i := range o.Vec {
			o.Vec[i] = 0
		}
	}
	if act.Kb() {
		for i := range o.Mat {
			for j := range o.Mat[i] {
				o.Mat[i][j] = 0
			}
		}
	}
}

// Elem defines what elements must calculate
type Elem interface {

	// information and initialisation
	Id() int                                         // returns the cell Id
	SetEqs(eqs [][]int, internal []int) (err error) // set equations
	Lmap() []int                                     // location map; i.e. global equation of each local DOF

	// conditions (element's)
	SetEleConds(key string, fcn dbf.T, extra string) (err error) // set element conditions

	// called for each iteration
	Evaluate(prm *EvalParams, dom *Domain, lm []int, out *ElemOutputs) (err error)                        // computes -R and/or dR/dy
	EvaluateNeumann(prm *EvalParams, dom *Domain, lm []int, nbc *NaturalBc, fvec []float64) (err error) // adds boundary loads to fvec
}

// ElemIntvars defines elements with internal variables
type ElemIntvars interface {
	SetIniIvs(sol *Solution) (err error) // sets initial ivs
	Update(sol *Solution) (err error)    // perform (tangent) update
	BackupIvs(aux bool) (err error)      // create copy of internal variables
	RestoreIvs(aux bool) (err error)     // restore internal variables from copies
	Encode(enc Encoder) (err error)      // encodes internal variables
	Decode(dec Decoder) (err error)      // decodes internal variables
}

// ElemStarVars defines elements that need star variables @ integration points
type ElemStarVars interface {
	InterpStarVars(sol *Solution) (err error) // interpolate star variables to integration points
}

// stageSetter is implemented by all elements in this package; it resets natural boundary
// conditions and element conditions when a stage is (re)set
type stageSetter interface {
	setStage(cell *inp.Cell) (err error)
}

// Info holds all information required to set a simulation stage
type Info struct {

	// essential
	Dofs [][]string        // solution variables PER NODE. ex for 2 nodes: [["ux", "uy"], ["ux", "uy"]]
	Y2F  map[string]string // maps "y" keys to "f" keys. ex: "ux" => "fx", "pl" => "ql"

	// internal Dofs; e.g. for mixed formulations
	NintDofs int // number of internal dofs

	// t1 and t2 variables (time-derivatives of first and second order)
	T1vars []string // "pl"
	T2vars []string // "ux", "uy"
}

// factory ////////////////////////////////////////////////////////////////////////////////////////

// InfoFunc defines a function that returns information about a certain element type
type InfoFunc func(sim *inp.Simulation, cell *inp.Cell, edat *inp.ElemData) *Info

// Allocator defines a function that allocates an element
type Allocator func(sim *inp.Simulation, cell *inp.Cell, edat *inp.ElemData, x [][]float64) (Elem, error)

// SetInfoFunc sets a new callback function to return information about an element
func SetInfoFunc(elemType string, fcn InfoFunc) {
	if _, ok := infogetters[elemType]; ok {
		chk.Panic("cannot set information function for %q because element type exists already", elemType)
	}
	infogetters[elemType] = fcn
}

// SetAllocator sets a new callback function to allocate an element
func SetAllocator(elemType string, fcn Allocator) {
	if _, ok := eallocators[elemType]; ok {
		chk.Panic("cannot set allocator function for %q because element type exists already", elemType)
	}
	eallocators[elemType] = fcn
}

// GetElemInfo returns information about elements/formulations
func GetElemInfo(cell *inp.Cell, reg *inp.Region, sim *inp.Simulation) (info *Info, inactive bool, err error) {
	edat := reg.Etag2data(cell.Tag)
	if edat == nil {
		err = chk.Err("cannot get data for element {tag=%d, id=%d}", cell.Tag, cell.Id)
		return
	}
	inactive = edat.Inact
	infogetter, ok := infogetters[edat.Type]
	if !ok {
		err = chk.Err("cannot get info for element {type=%q, tag=%d, id=%d}", edat.Type, cell.Tag, cell.Id)
		return
	}
	info = infogetter(sim, cell, edat)
	if info == nil {
		err = chk.Err("info for element {type=%q, tag=%d, id=%d} is not available", edat.Type, cell.Tag, cell.Id)
	}
	return
}

// NewElem returns a new element from its type; e.g. "u", "p" or "ale"
func NewElem(cell *inp.Cell, reg *inp.Region, sim *inp.Simulation) (ele Elem, err error) {
	edat := reg.Etag2data(cell.Tag)
	if edat == nil {
		err = chk.Err("cannot get data for element {tag=%d, id=%d}", cell.Tag, cell.Id)
		return
	}
	allocator, ok := eallocators[edat.Type]
	if !ok {
		err = chk.Err("cannot get allocator for element {type=%q, tag=%d, id=%d}", edat.Type, cell.Tag, cell.Id)
		return
	}
	x := BuildCoordsMatrix(cell, reg.Msh)
	ele, err = allocator(sim, cell, edat, x)
	if err != nil {
		err = chk.Err("cannot allocate element {type=%q, tag=%d, id=%d}:\n%v", edat.Type, cell.Tag, cell.Id, err)
	}
	return
}

// BuildCoordsMatrix returns the coordinate matrix of a particular Cell
func BuildCoordsMatrix(cell *inp.Cell, msh *inp.Mesh) (x [][]float64) {
	x = utl.Alloc(msh.Ndim, len(cell.Verts))
	for i := 0; i < msh.Ndim; i++ {
		for j, v := range cell.Verts {
			x[i][j] = msh.Verts[v].C[i]
		}
	}
	return
}

// infogetters holds all available formulations/info; elemType => infogetter
var infogetters = make(map[string]InfoFunc)

// eallocators holds all available elements; elemType => eallocator
var eallocators = make(map[string]Allocator)

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// checkEvalArgs checks the arguments given to Evaluate
func checkEvalArgs(op string, ndof int, prm *EvalParams, lm []int, out *ElemOutputs) (err error) {
	if prm == nil || prm.Sol == nil {
		return preconditionViolation(op, "evaluation parameters and solution must be given")
	}
	if len(lm) != ndof {
		return preconditionViolation(op, "location map must have %d entries; got %d", ndof, len(lm))
	}
	if out == nil {
		return preconditionViolation(op, "output buffers must be given")
	}
	if prm.Action.Rhs() && len(out.Vec) != ndof {
		return preconditionViolation(op, "output vector must have size %d; got %d", ndof, len(out.Vec))
	}
	if prm.Action.Kb() {
		if len(out.Mat) != ndof {
			return preconditionViolation(op, "output matrix must have %d rows; got %d", ndof, len(out.Mat))
		}
		for i, row := range out.Mat {
			if len(row) != ndof {
				return preconditionViolation(op, "row %d of output matrix must have %d columns; got %d", i, ndof, len(row))
			}
		}
	}
	return
}
