// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/mpfem/mpfem/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// NeumannKind defines the kind of boundary integral of natural boundary conditions
type NeumannKind int

const (
	LineNeumann    NeumannKind = iota + 1 // integral over edges of 2D elements
	SurfaceNeumann                        // integral over faces of 3D elements
)

// String returns the name of kind
func (o NeumannKind) String() string {
	switch o {
	case LineNeumann:
		return "LineNeumann"
	case SurfaceNeumann:
		return "SurfaceNeumann"
	}
	return "unknown"
}

// neumannKinds maps condition keys to kinds of boundary integrals
var neumannKinds = map[string]NeumannKind{
	"qn":       LineNeumann,    // normal traction
	"qx":       LineNeumann,    // traction along x
	"qy":       LineNeumann,    // traction along y
	"flux":     LineNeumann,    // normal flux of scalar field
	"qnsurf":   SurfaceNeumann, // normal traction on surfaces
	"fluxsurf": SurfaceNeumann, // normal flux on surfaces
}

// GetNeumannKind returns the kind of boundary integral corresponding to a condition key
func GetNeumannKind(key string) (kind NeumannKind, ok bool) {
	kind, ok = neumannKinds[key]
	return
}

// NaturalBc holds information on natural boundary conditions such as
// distributed loads or fluxes acting on faces
type NaturalBc struct {
	Key     string      // key such as qn, qx, flux
	Kind    NeumannKind // kind of boundary integral
	IdxFace int         // local index of face
	Fcn     dbf.T       // function callback
	Extra   string      // extra information
}

// GetNaturalBcs collects the natural boundary conditions of a cell
//  keys -- keys handled by the element calling this function
//  Note: essential conditions (e.g. "ux", "pl") are skipped
func GetNaturalBcs(cell *inp.Cell, keys map[string]bool) (nbcs []*NaturalBc, err error) {
	for _, fc := range cell.FaceBcs {
		if IsEssenKey(fc.Cond) {
			continue
		}
		kind, ok := GetNeumannKind(fc.Cond)
		if !ok || !keys[fc.Cond] {
			return nil, chk.Err("face condition %q cannot be applied to cell %d", fc.Cond, cell.Id)
		}
		nbcs = append(nbcs, &NaturalBc{fc.Cond, kind, fc.FaceId, fc.Func, fc.Extra})
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// checkNeumannArgs checks the arguments given to EvaluateNeumann
func checkNeumannArgs(op string, ndof int, prm *EvalParams, lm []int, nbc *NaturalBc, fvec []float64) (err error) {
	if prm == nil || prm.Sol == nil {
		return preconditionViolation(op, "evaluation parameters and solution must be given")
	}
	if nbc == nil {
		return preconditionViolation(op, "natural boundary condition must be given")
	}
	if len(lm) != ndof {
		return preconditionViolation(op, "location map must have %d entries; got %d", ndof, len(lm))
	}
	if len(fvec) != ndof {
		return preconditionViolation(op, "output vector must have size %d; got %d", ndof, len(fvec))
	}
	return
}

// neumannKeysAll returns all keys of natural boundary conditions
func neumannKeysAll() map[string]bool {
	keys := make(map[string]bool, len(neumannKinds))
	for key := range neumannKinds {
		keys[key] = true
	}
	return keys
}
