// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"
)

// AuxKey is a slot in AuxData resolved when the entry is added
type AuxKey int

// AuxData holds named matrices private to one element; e.g. coupling matrices of
// enhanced formulations that must survive across iterations
//  Note: AuxData must not be shared among elements
type AuxData struct {
	keys map[string]AuxKey // name => slot
	vals []*mat.Dense      // [nslots] values
}

// NewAuxData returns a new (empty) AuxData
func NewAuxData() *AuxData {
	return &AuxData{keys: make(map[string]AuxKey)}
}

// Add creates or overwrites the entry named name with a copy of M
//  Output:
//   key -- slot of entry; remains valid after overwriting the same name
func (o *AuxData) Add(name string, M mat.Matrix) (key AuxKey) {
	if M == nil {
		chk.Panic("cannot add nil matrix named %q to auxiliary data", name)
	}
	if o.keys == nil {
		o.keys = make(map[string]AuxKey)
	}
	key, ok := o.keys[name]
	if ok {
		r, c := M.Dims()
		if rr, cc := o.vals[key].Dims(); rr == r && cc == c {
			o.vals[key].Copy(M)
			return
		}
		o.vals[key] = mat.DenseCopyOf(M)
		return
	}
	key = AuxKey(len(o.vals))
	o.keys[name] = key
	o.vals = append(o.vals, mat.DenseCopyOf(M))
	return
}

// Get returns the entry named name
//  Note: the returned matrix is owned by this AuxData
func (o *AuxData) Get(name string) (M *mat.Dense, err error) {
	key, ok := o.keys[name]
	if !ok {
		return nil, &Error{ErrAuxNotFound, "AuxData.Get", name}
	}
	return o.vals[key], nil
}

// At returns the entry at slot key
//  Note: returns nil if key is out of range
func (o *AuxData) At(key AuxKey) *mat.Dense {
	if key < 0 || int(key) >= len(o.vals) {
		return nil
	}
	return o.vals[key]
}

// Has tells whether an entry named name exists
func (o *AuxData) Has(name string) bool {
	_, ok := o.keys[name]
	return ok
}

// Names returns the sorted names of all entries
func (o *AuxData) Names() (names []string) {
	names = make([]string, 0, len(o.keys))
	for name := range o.keys {
		names = append(names, name)
	}
	sort.Strings(names)
	return
}
