// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/mpfem/mpfem/inp"

	"github.com/cpmech/gosl/io"
)

// FieldClass classifies degrees of freedom; equations are numbered following this order
type FieldClass int

const (
	FieldStructure FieldClass = iota // displacements; e.g. "ux", "uy"
	FieldFluid                       // fluid or scalar fields; e.g. "pl"
	FieldAle                         // mesh motion; e.g. "dx", "dy"
	nFieldClasses
)

// dofClasses maps DOF keys to field classes
var dofClasses = map[string]FieldClass{
	"ux": FieldStructure,
	"uy": FieldStructure,
	"pl": FieldFluid,
	"dx": FieldAle,
	"dy": FieldAle,
}

// GetFieldClass returns the field class of a DOF key
func GetFieldClass(key string) (class FieldClass, ok bool) {
	class, ok = dofClasses[key]
	return
}

// IsEssenKey tells whether key corresponds to an essential boundary condition; i.e. a DOF key
// or a special constraint key
func IsEssenKey(key string) bool {
	if _, ok := dofClasses[key]; ok {
		return true
	}
	return GetIsEssenKeyMap()[key]
}

// Dof holds information about a degree-of-freedom == solution variable
type Dof struct {
	Key string // primary variable key. e.g. "ux"
	Eq  int    // equation number; -1 while not numbered
}

// Node holds node dofs information
type Node struct {
	Dofs []*Dof   // degrees-of-freedom == solution variables
	Vert *inp.Vert // pointer to Vertex
}

// NewNode allocates a new Node
func NewNode(v *inp.Vert) *Node {
	return &Node{Vert: v}
}

// AddDof adds a new dof to Node if it does not exist yet
func (o *Node) AddDof(key string) (added bool) {
	if o.GetDof(key) != nil {
		return false
	}
	o.Dofs = append(o.Dofs, &Dof{key, -1})
	return true
}

// GetDof returns the Dof structure for given Dof name (ukey)
//  Note: returns nil if not found
func (o *Node) GetDof(ukey string) *Dof {
	for _, d := range o.Dofs {
		if d.Key == ukey {
			return d
		}
	}
	return nil
}

// GetEq returns the equation number for given Dof name (ukey)
//  Note: returns -1 if not found
func (o *Node) GetEq(ukey string) (eq int) {
	for _, d := range o.Dofs {
		if d.Key == ukey {
			return d.Eq
		}
	}
	return -1
}

// String returns a string representation of this node
func (o *Node) String() (l string) {
	l = io.Sf("{\"vid\":%d, \"dofs\":[", o.Vert.Id)
	for i, d := range o.Dofs {
		if i > 0 {
			l += ", "
		}
		l += io.Sf("{\"%s\":%d}", d.Key, d.Eq)
	}
	l += "]}"
	return
}
