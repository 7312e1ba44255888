// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// FuncData holds function definition
type FuncData struct {
	Name string     `json:"name" yaml:"name"` // name of function. ex: zero, load, myfunction1, etc.
	Type string     `json:"type" yaml:"type"` // type of function. ex: cte, rmp
	Prms dbf.Params `json:"prms" yaml:"prms"` // parameters
}

// FuncsData holds functions
type FuncsData []*FuncData

// Get returns function by name
//  Note: "zero" and "none" are always available and return the constant zero function
func (o FuncsData) Get(name string) (fcn dbf.T, err error) {
	if name == "zero" || name == "none" {
		fcn = &dbf.Cte{C: 0}
		return
	}
	for _, f := range o {
		if f.Name == name {
			return newFunc(name, f)
		}
	}
	err = chk.Err("cannot find function named %q", name)
	return
}

// newFunc allocates function; panics from the functions database are returned as errors
func newFunc(name string, f *FuncData) (fcn dbf.T, err error) {
	defer func() {
		if r := recover(); r != nil {
			fcn, err = nil, chk.Err("cannot get function named %q because of the following error:\n%v", name, r)
		}
	}()
	fcn = dbf.New(f.Type, f.Prms)
	return
}
