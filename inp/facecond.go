// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"sort"

	"github.com/mpfem/mpfem/shp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
)

// FaceCond holds information of one single face boundary condition. Example:
//
//                      -12 => "qn"
//   36    -12     35   -11 => "ux"
//    (3)--------(2)
//     |    2     |     face id => conditions
//     |          |           0 => <nil>
//     |3        1| -11       1 => {"ux"} => localVerts={1,2} => globalVerts={34,35}
//     |          |           2 => {"qn"} => localVerts={2,3} => globalVerts={35,36}
//     |    0     |           3 => <nil>
//    (0)--------(1)
//   33            34
type FaceCond struct {
	FaceId      int    // msh: cell's face local id
	LocalVerts  []int  // msh: cell's face local vertices ids
	GlobalVerts []int  // msh: global vertices ids (sorted)
	Cond        string // sim: condition; e.g. "qn" or "ux"
	Func        dbf.T  // sim: function to compute boundary condition
	Extra       string // sim: extra information
}

// FaceConds hold many face boundary conditions
type FaceConds []*FaceCond

// SetFaceConds sets face boundary conditions map in cell
func (o *Cell) SetFaceConds(stg *Stage, functions FuncsData) (err error) {

	// for each face tag
	o.FaceBcs = make([]*FaceCond, 0)
	for faceId, faceTag := range o.FTags {

		// skip zero or positive tags
		if faceTag >= 0 {
			continue
		}

		// find face boundary condition and skip nil data
		faceBc := stg.GetFaceBc(faceTag)
		if faceBc == nil {
			continue
		}

		// local and global ids of vertices on face
		lverts := shp.GetFaceLocalVerts(o.Type, faceId)
		gverts := make([]int, len(lverts))
		for i, l := range lverts {
			gverts[i] = o.Verts[l]
		}
		sort.Ints(gverts)

		// for each boundary key such as "ux", "qn", etc.
		for j, key := range faceBc.Keys {
			if j >= len(faceBc.Funcs) {
				return chk.Err("face condition with tag %d has %d keys but only %d functions", faceTag, len(faceBc.Keys), len(faceBc.Funcs))
			}
			fcn, err := functions.Get(faceBc.Funcs[j])
			if err != nil {
				return chk.Err("cannot find function corresponding to face tag %d (@ cell %d):\n%v", faceTag, o.Id, err)
			}
			o.FaceBcs = append(o.FaceBcs, &FaceCond{faceId, lverts, gverts, key, fcn, faceBc.Extra})
		}
	}
	return
}
