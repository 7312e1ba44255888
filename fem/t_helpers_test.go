// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"testing"

	"github.com/mpfem/mpfem/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/stretchr/testify/require"
)

func verbose() {
	io.Verbose = true
	chk.Verbose = true
}

// quadSolid is a unit square (qua4) under a normal load on top
//
//   3 o-------o 2
//     |  -12  |
//  -13|       |
//     |  -10  |
//   0 o-------o 1
//
const quadSolid = `{
  "data" : { "desc" : "one quad", "steady" : true },
  "functions" : [ { "name" : "load", "type" : "cte", "prms" : [ { "n":"c", "v":-10 } ] } ],
  "materials" : [ { "name" : "steel", "model" : "lin-elast", "prms" : [ { "n":"E", "v":1000 }, { "n":"nu", "v":0.25 } ] } ],
  "regions" : [ {
    "mesh" : {
      "verts" : [
        { "id":0, "tag":-1, "c":[0,0] },
        { "id":1, "tag":-2, "c":[1,0] },
        { "id":2, "tag":0,  "c":[1,1] },
        { "id":3, "tag":0,  "c":[0,1] }
      ],
      "cells" : [ { "id":0, "tag":-1, "type":"qua4", "verts":[0,1,2,3], "ftags":[-10,0,-12,-13] } ]
    },
    "elemsdata" : [ { "tag":-1, "mat":"steel", "type":"u", "extra":"%s" } ]
  } ],
  "solver" : { "type" : "%s" },
  "stages" : [ {
    "facebcs" : [
      { "tag":-10, "keys":["uy"], "funcs":["zero"] },
      { "tag":-13, "keys":["ux"], "funcs":["zero"] },
      { "tag":-12, "keys":["qn"], "funcs":["load"] }
    ],
    "control" : { "tf":1, "dt":1 }
  } ]
}`

// columnDiffusion has two qua4 cells along x with pl prescribed on the left
// and a flux entering on the right
//
//   5 o-------o-------o 4
//     |       |       |
//  -13|   0   |   1   |-11
//     |       |       |
//   0 o-------o-------o 2
//             1
//
const columnDiffusion = `{
  "data" : { "desc" : "diffusion", "steady" : %v, "nworkers" : %d },
  "functions" : [
    { "name" : "q", "type" : "cte", "prms" : [ { "n":"c", "v":2 } ] },
    { "name" : "one", "type" : "cte", "prms" : [ { "n":"c", "v":1 } ] }
  ],
  "materials" : [ { "name" : "soil", "model" : "diffusion", "prms" : [ { "n":"k", "v":1 }, { "n":"C", "v":1 } ] } ],
  "regions" : [ {
    "mesh" : {
      "verts" : [
        { "id":0, "tag":0, "c":[0,0] },
        { "id":1, "tag":0, "c":[1,0] },
        { "id":2, "tag":0, "c":[2,0] },
        { "id":3, "tag":0, "c":[1,1] },
        { "id":4, "tag":0, "c":[2,1] },
        { "id":5, "tag":0, "c":[0,1] }
      ],
      "cells" : [
        { "id":0, "tag":-1, "type":"qua4", "verts":[0,1,3,5], "ftags":[0,0,0,-13] },
        { "id":1, "tag":-1, "type":"qua4", "verts":[1,2,4,3], "ftags":[0,-11,0,0] }
      ]
    },
    "elemsdata" : [ { "tag":-1, "mat":"soil", "type":"p" } ]
  } ],
  "solver" : { "type" : "imp", "theta" : 1 },
  "stages" : [ {
    "facebcs" : [ %s ],
    "eleconds" : [ %s ],
    "control" : { "tf":1, "dt":0.25 }
  } ]
}`

// newTestSim parses and initialises simulation data; results go to a temporary directory
func newTestSim(tst *testing.T, key, data string) *inp.Simulation {
	sim, err := inp.ParseSim([]byte(data), ".sim")
	require.NoError(tst, err)
	require.NoError(tst, sim.Init(""))
	sim.DirOut = tst.TempDir()
	sim.Key = key
	return sim
}

// newTestFEM allocates a FEM structure from simulation data
func newTestFEM(tst *testing.T, key, data string, saveSummary bool) *FEM {
	sim := newTestSim(tst, key, data)
	analysis, err := NewFEMsim(sim, saveSummary, false, chk.Verbose)
	require.NoError(tst, err)
	return analysis
}

// getValue returns the value of key at vertex vid
func getValue(tst *testing.T, dom *Domain, vid int, key string) float64 {
	nod := dom.Vid2node[vid]
	require.NotNil(tst, nod, "vertex %d is not active", vid)
	eq := nod.GetEq(key)
	require.True(tst, eq >= 0, "vertex %d has no %q", vid, key)
	return dom.Sol.Y[eq]
}
