// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"

	"github.com/mpfem/mpfem/shp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
)

// Vert holds vertex data
type Vert struct {
	Id  int       `json:"id" yaml:"id"`  // id
	Tag int       `json:"tag" yaml:"tag"` // tag
	C   []float64 `json:"c" yaml:"c"`   // coordinates (size==2)
}

// Cell holds cell data
type Cell struct {

	// input data
	Id    int    `json:"id" yaml:"id"`    // id
	Tag   int    `json:"tag" yaml:"tag"`   // tag
	Type  string `json:"type" yaml:"type"`  // geometry type (string); e.g. "qua4"
	Part  int    `json:"part" yaml:"part"`  // partition id
	Verts []int  `json:"verts" yaml:"verts"` // vertices
	FTags []int  `json:"ftags" yaml:"ftags"` // edge (2D) tags

	// derived
	Shp     *shp.Shape `json:"-" yaml:"-"` // shape structure (shared; read-only data)
	FaceBcs FaceConds  `json:"-" yaml:"-"` // face boundary condition
}

// CellFaceId structure
type CellFaceId struct {
	C   *Cell // cell
	Fid int   // face id
}

// Mesh holds a mesh for FE analyses
type Mesh struct {

	// from JSON
	Verts []*Vert `json:"verts" yaml:"verts"` // vertices
	Cells []*Cell `json:"cells" yaml:"cells"` // cells

	// derived
	FnamePath  string  `json:"-" yaml:"-"` // complete filename path
	Ndim       int     `json:"-" yaml:"-"` // space dimension
	Xmin, Xmax float64 `json:"-" yaml:"-"` // min and max x-coordinate
	Ymin, Ymax float64 `json:"-" yaml:"-"` // min and max y-coordinate

	// derived: maps
	VertTag2verts map[int][]*Vert      `json:"-" yaml:"-"` // vertex tag => set of vertices
	CellTag2cells map[int][]*Cell      `json:"-" yaml:"-"` // cell tag => set of cells
	FaceTag2cells map[int][]CellFaceId `json:"-" yaml:"-"` // face tag => set of cells
	FaceTag2verts map[int][]int        `json:"-" yaml:"-"` // face tag => vertices on tagged face
	Ctype2cells   map[string][]*Cell   `json:"-" yaml:"-"` // cell type => set of cells
	Part2cells    map[int][]*Cell      `json:"-" yaml:"-"` // partition number => set of cells
}

// ReadMsh reads a mesh for FE analyses
func ReadMsh(dir, fn string) (o *Mesh, err error) {

	// read file
	o = new(Mesh)
	o.FnamePath = filepath.Join(dir, fn)
	b, err := os.ReadFile(o.FnamePath)
	if err != nil {
		return nil, chk.Err("cannot read mesh file %q:\n%v", o.FnamePath, err)
	}

	// decode
	err = json.Unmarshal(b, o)
	if err != nil {
		return nil, chk.Err("cannot unmarshal mesh file %q:\n%v", o.FnamePath, err)
	}

	// derived data
	err = o.Init()
	if err != nil {
		return nil, chk.Err("mesh file %q is invalid:\n%v", o.FnamePath, err)
	}
	return
}

// NewMesh returns a new mesh from vertices and cells given in memory
func NewMesh(verts []*Vert, cells []*Cell) (o *Mesh, err error) {
	o = &Mesh{Verts: verts, Cells: cells}
	err = o.Init()
	if err != nil {
		return nil, err
	}
	return
}

// Init checks data and computes derived data
func (o *Mesh) Init() (err error) {

	// check
	if len(o.Verts) < 2 {
		return chk.Err("at least 2 vertices are required in mesh")
	}
	if len(o.Cells) < 1 {
		return chk.Err("at least 1 cell is required in mesh")
	}

	// vertex related derived data
	o.Ndim = 2
	o.Xmin = o.Verts[0].C[0]
	o.Ymin = o.Verts[0].C[1]
	o.Xmax = o.Xmin
	o.Ymax = o.Ymin
	o.VertTag2verts = make(map[int][]*Vert)
	for i, v := range o.Verts {

		// check vertex id
		if v.Id != i {
			return chk.Err("vertices ids must coincide with order in \"verts\" list. %d != %d", v.Id, i)
		}

		// ndim
		if len(v.C) != 2 {
			return chk.Err("only 2D meshes are supported; vertex %d has %d coordinates", v.Id, len(v.C))
		}

		// tags
		if v.Tag < 0 {
			o.VertTag2verts[v.Tag] = append(o.VertTag2verts[v.Tag], v)
		}

		// limits
		o.Xmin = utl.Min(o.Xmin, v.C[0])
		o.Xmax = utl.Max(o.Xmax, v.C[0])
		o.Ymin = utl.Min(o.Ymin, v.C[1])
		o.Ymax = utl.Max(o.Ymax, v.C[1])
	}

	// derived data
	o.CellTag2cells = make(map[int][]*Cell)
	o.FaceTag2cells = make(map[int][]CellFaceId)
	o.FaceTag2verts = make(map[int][]int)
	o.Ctype2cells = make(map[string][]*Cell)
	o.Part2cells = make(map[int][]*Cell)
	for i, c := range o.Cells {

		// check id and tag
		if c.Id != i {
			return chk.Err("cells ids must coincide with order in \"cells\" list. %d != %d", c.Id, i)
		}
		if c.Tag >= 0 {
			return chk.Err("cells tags must be negative. %d is invalid (@ cell %d)", c.Tag, c.Id)
		}

		// shape structure
		c.Shp = shp.Get(c.Type, 0)
		if c.Shp == nil {
			return chk.Err("cannot find shape type == %q (@ cell %d)", c.Type, c.Id)
		}
		if len(c.Verts) != c.Shp.Nverts {
			return chk.Err("cell %d of type %q must have %d vertices", c.Id, c.Type, c.Shp.Nverts)
		}
		for _, v := range c.Verts {
			if v < 0 || v >= len(o.Verts) {
				return chk.Err("cell %d references an invalid vertex %d", c.Id, v)
			}
		}

		// cell tags
		o.CellTag2cells[c.Tag] = append(o.CellTag2cells[c.Tag], c)

		// face tags
		for j, ftag := range c.FTags {
			if ftag < 0 {
				o.FaceTag2cells[ftag] = append(o.FaceTag2cells[ftag], CellFaceId{c, j})
				for _, l := range shp.GetFaceLocalVerts(c.Type, j) {
					o.FaceTag2verts[ftag] = append(o.FaceTag2verts[ftag], o.Verts[c.Verts[l]].Id)
				}
			}
		}

		// cell type => cells
		o.Ctype2cells[c.Type] = append(o.Ctype2cells[c.Type], c)

		// partition => cells
		o.Part2cells[c.Part] = append(o.Part2cells[c.Part], c)
	}

	// remove duplicates
	for ftag, verts := range o.FaceTag2verts {
		o.FaceTag2verts[ftag] = uniqueInts(verts)
	}
	return
}

// uniqueInts returns the sorted unique values of a
func uniqueInts(a []int) (res []int) {
	seen := make(map[int]bool)
	for _, v := range a {
		if !seen[v] {
			seen[v] = true
			res = append(res, v)
		}
	}
	sort.Ints(res)
	return
}

// String returns a JSON representation of *Vert
func (o *Vert) String() string {
	return io.Sf("{\"id\":%4d, \"tag\":%6d, \"c\":[%23.15e, %23.15e] }", o.Id, o.Tag, o.C[0], o.C[1])
}
