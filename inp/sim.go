// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from a .sim (JSON) or .yaml file
package inp

import (
	"encoding/json"
	goio "io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun/dbf"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"gopkg.in/yaml.v3"
)

// Data holds global data for simulations
type Data struct {
	Desc     string `json:"desc" yaml:"desc"`         // description of simulation
	DirOut   string `json:"dirout" yaml:"dirout"`     // directory for output; e.g. /tmp/mpfem
	Encoder  string `json:"encoder" yaml:"encoder"`   // encoder name; e.g. "gob" "json"
	Steady   bool   `json:"steady" yaml:"steady"`     // steady simulation
	Pstress  bool   `json:"pstress" yaml:"pstress"`   // plane-stress
	Nworkers int    `json:"nworkers" yaml:"nworkers"` // number of goroutines evaluating elements; ≤ 1 means serial
	ShowR    bool   `json:"showr" yaml:"showr"`       // show residual
}

// SolverData holds FEM solver data
type SolverData struct {

	// nonlinear solver
	Type    string  `json:"type" yaml:"type"`       // nonlinear solver type: {imp, lin-imp}
	NmaxIt  int     `json:"nmaxit" yaml:"nmaxit"`   // number of max iterations
	Atol    float64 `json:"atol" yaml:"atol"`       // absolute tolerance
	Rtol    float64 `json:"rtol" yaml:"rtol"`       // relative tolerance
	FbTol   float64 `json:"fbtol" yaml:"fbtol"`     // tolerance for convergence on fb
	FbMin   float64 `json:"fbmin" yaml:"fbmin"`     // minimum value of fb
	DvgCtrl bool    `json:"dvgctrl" yaml:"dvgctrl"` // use divergence control
	NdvgMax int     `json:"ndvgmax" yaml:"ndvgmax"` // max number of continued divergence
	CteTg   bool    `json:"ctetg" yaml:"ctetg"`     // use constant tangent (modified Newton) during iterations

	// predictor
	Predictor string `json:"predictor" yaml:"predictor"` // predictor name; e.g. ConstDis, ConstVel, ConstAcc

	// transient analyses
	DtMin float64 `json:"dtmin" yaml:"dtmin"` // minium value of Dt for transient (θ and Newmark / Dyn coefficients)
	Theta float64 `json:"theta" yaml:"theta"` // θ-method

	// dynamics
	Theta1 float64 `json:"theta1" yaml:"theta1"` // Newmark's method parameter
	Theta2 float64 `json:"theta2" yaml:"theta2"` // Newmark's method parameter
	HHTalp float64 `json:"hhtalp" yaml:"hhtalp"` // HHT method parameter
	HHT    bool    `json:"hht" yaml:"hht"`       // use HHT method instead of Newmark's method

	// constants
	Eps float64 `json:"eps" yaml:"eps"` // smallest number satisfying 1.0 + ϵ > 1.0

	// derived
	Itol float64 `json:"-" yaml:"-"` // iterations tolerance
}

// ElemData holds element data
type ElemData struct {
	Tag   int    `json:"tag" yaml:"tag"`     // tag of element
	Mat   string `json:"mat" yaml:"mat"`     // material name
	Type  string `json:"type" yaml:"type"`   // type of element. ex: u, p, ale
	Nip   int    `json:"nip" yaml:"nip"`     // number of integration points; 0 => use default
	Nipf  int    `json:"nipf" yaml:"nipf"`   // number of integration points on face; 0 => use default
	Extra string `json:"extra" yaml:"extra"` // extra flags (in keycode format). ex: "!thick:0.2 !enh:1"
	Inact bool   `json:"inact" yaml:"inact"` // whether element starts inactive or not
}

// MatData holds material data
type MatData struct {
	Name  string     `json:"name" yaml:"name"`   // name of material
	Model string     `json:"model" yaml:"model"` // name of model; e.g. "lin-elast", "diffusion", "ale"
	Prms  dbf.Params `json:"prms" yaml:"prms"`   // parameters
}

// MatsData holds all materials
type MatsData []*MatData

// Region holds region data
type Region struct {

	// input data
	Desc      string      `json:"desc" yaml:"desc"`           // description of region. ex: ground, indenter, etc.
	Mshfile   string      `json:"mshfile" yaml:"mshfile"`     // file path of file with mesh data
	Mesh      *Mesh       `json:"mesh" yaml:"mesh"`           // inline mesh; used when Mshfile is empty
	ElemsData []*ElemData `json:"elemsdata" yaml:"elemsdata"` // list of elements data
	AbsPath   bool        `json:"abspath" yaml:"abspath"`     // mesh filename is given in absolute path

	// derived
	Msh      *Mesh       `json:"-" yaml:"-"` // the mesh
	etag2idx map[int]int // maps element tag to element index in ElemsData slice
}

// FaceBc holds face boundary condition
type FaceBc struct {
	Tag   int      `json:"tag" yaml:"tag"`     // tag of face
	Keys  []string `json:"keys" yaml:"keys"`   // key indicating type of bcs. ex: qn, qx, flux, ux, uy, pl
	Funcs []string `json:"funcs" yaml:"funcs"` // name of function. ex: zero, load, myfunction1, etc.
	Extra string   `json:"extra" yaml:"extra"` // extra information
}

// NodeBc holds node boundary condition
type NodeBc struct {
	Tag   int      `json:"tag" yaml:"tag"`     // tag of node
	Keys  []string `json:"keys" yaml:"keys"`   // key indicating type of bcs. ex: ux, uy, pl, fx, fy, ql
	Funcs []string `json:"funcs" yaml:"funcs"` // name of function. ex: zero, load, myfunction1, etc.
	Extra string   `json:"extra" yaml:"extra"` // extra information
}

// EleCond holds element condition
type EleCond struct {
	Tag   int      `json:"tag" yaml:"tag"`     // tag of cell/element
	Keys  []string `json:"keys" yaml:"keys"`   // key indicating type of condition. ex: "g" (gravity), "s" (source)
	Funcs []string `json:"funcs" yaml:"funcs"` // name of function. ex: grav, none
	Extra string   `json:"extra" yaml:"extra"` // extra information
}

// TimeControl holds data for defining the simulation time stepping
type TimeControl struct {
	Tf     float64 `json:"tf" yaml:"tf"`         // final time
	Dt     float64 `json:"dt" yaml:"dt"`         // time step size (if constant)
	DtOut  float64 `json:"dtout" yaml:"dtout"`   // time step size for output
	DtFcn  string  `json:"dtfcn" yaml:"dtfcn"`   // time step size (function name)
	DtoFcn string  `json:"dtofcn" yaml:"dtofcn"` // time step size for output (function name)

	// derived
	DtFunc  dbf.T `json:"-" yaml:"-"` // time step function
	DtoFunc dbf.T `json:"-" yaml:"-"` // output time step function
}

// Stage holds stage data
type Stage struct {

	// main
	Desc       string `json:"desc" yaml:"desc"`             // description of simulation stage. ex: activation of top layer
	Activate   []int  `json:"activate" yaml:"activate"`     // array of tags of elements to be activated
	Deactivate []int  `json:"deactivate" yaml:"deactivate"` // array of tags of elements to be deactivated
	Skip       bool   `json:"skip" yaml:"skip"`             // do not run stage

	// conditions
	EleConds []*EleCond `json:"eleconds" yaml:"eleconds"` // element conditions. ex: gravity or source
	FaceBcs  []*FaceBc  `json:"facebcs" yaml:"facebcs"`   // face boundary conditions
	NodeBcs  []*NodeBc  `json:"nodebcs" yaml:"nodebcs"`   // node boundary conditions

	// timecontrol
	Control TimeControl `json:"control" yaml:"control"` // time control
}

// Simulation holds all simulation data
type Simulation struct {

	// input
	Data      Data       `json:"data" yaml:"data"`           // stores global simulation data
	Functions FuncsData  `json:"functions" yaml:"functions"` // stores all boundary condition functions
	Materials MatsData   `json:"materials" yaml:"materials"` // stores all materials
	Regions   []*Region  `json:"regions" yaml:"regions"`     // stores all regions
	Solver    SolverData `json:"solver" yaml:"solver"`       // FEM solver data
	Stages    []*Stage   `json:"stages" yaml:"stages"`       // stores all stages

	// derived
	GoroutineId int    `json:"-" yaml:"-"` // id of goroutine to avoid race problems
	DirOut      string `json:"-" yaml:"-"` // directory to save results
	Key         string `json:"-" yaml:"-"` // simulation key; e.g. mysim01.sim => mysim01 or mysim01-alias
	EncType     string `json:"-" yaml:"-"` // encoder type
	Ndim        int    `json:"-" yaml:"-"` // space dimension
}

// Simulation //////////////////////////////////////////////////////////////////////////////////////

// ReadSim reads all simulation data from a .sim (JSON) or .yaml file
func ReadSim(simfilepath, alias string, erasefiles bool, goroutineId int) (o *Simulation, err error) {

	// read file
	b, err := os.ReadFile(os.ExpandEnv(simfilepath))
	if err != nil {
		return nil, chk.Err("cannot read simulation file %q:\n%v", simfilepath, err)
	}

	// decode
	o, err = ParseSim(b, filepath.Ext(simfilepath))
	if err != nil {
		return nil, chk.Err("cannot parse simulation file %q:\n%v", simfilepath, err)
	}
	o.GoroutineId = goroutineId

	// input directory and filename key
	dir := os.ExpandEnv(filepath.Dir(simfilepath))
	fnkey := io.FnKey(filepath.Base(simfilepath))
	o.Key = fnkey
	if alias != "" {
		o.Key += "-" + alias
	}

	// output directory
	o.DirOut = o.Data.DirOut
	if o.DirOut == "" {
		o.DirOut = "/tmp/mpfem/" + fnkey
	}

	// create directory and erase previous simulation results
	if erasefiles {
		err = os.MkdirAll(o.DirOut, 0777)
		if err != nil {
			return nil, chk.Err("cannot create directory for output results (%s): %v", o.DirOut, err)
		}
		io.RemoveAll(io.Sf("%s/%s*", o.DirOut, o.Key))
	}

	// meshes, stages and derived data
	err = o.Init(dir)
	return
}

// ParseSim decodes simulation data without touching the filesystem (except for mesh files)
//  ext -- file extension selecting the decoder: ".yaml" and ".yml" use YAML; anything else JSON
//  Note: Init must be called afterwards
func ParseSim(b []byte, ext string) (o *Simulation, err error) {
	o = new(Simulation)
	o.Solver.SetDefault()
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, o)
	default:
		err = json.Unmarshal(b, o)
	}
	if err != nil {
		return nil, err
	}
	return
}

// Init initialises derived data; e.g. after ParseSim
//  dir -- directory of simulation file; used to find mesh files
func (o *Simulation) Init(dir string) (err error) {

	// encoder type
	o.EncType = o.Data.Encoder
	if o.EncType != "gob" && o.EncType != "json" {
		o.EncType = "gob"
	}

	// set solver constants
	o.Solver.PostProcess()
	if o.Solver.Type != "imp" && o.Solver.Type != "lin-imp" {
		return chk.Err("solver type %q is not available; options are \"imp\" and \"lin-imp\"", o.Solver.Type)
	}

	// materials
	for _, mat := range o.Materials {
		if mat.Name == "" {
			return chk.Err("material name cannot be empty")
		}
	}

	// for all regions
	if len(o.Regions) < 1 {
		return chk.Err("at least one region must be given")
	}
	for i, reg := range o.Regions {

		// mesh
		if reg.Mshfile != "" {
			ddir := dir
			if reg.AbsPath {
				ddir = ""
			}
			reg.Msh, err = ReadMsh(ddir, reg.Mshfile)
			if err != nil {
				return chk.Err("cannot read mesh file of region %d:\n%v", i, err)
			}
		} else {
			if reg.Mesh == nil {
				return chk.Err("region %d needs either a mesh file or an inline mesh", i)
			}
			reg.Msh = reg.Mesh
			err = reg.Msh.Init()
			if err != nil {
				return chk.Err("cannot initialise inline mesh of region %d:\n%v", i, err)
			}
		}

		// dependent variables
		reg.etag2idx = make(map[int]int)
		for j, ed := range reg.ElemsData {
			if _, ok := reg.etag2idx[ed.Tag]; ok {
				return chk.Err("element tag %d is repeated in region %d", ed.Tag, i)
			}
			reg.etag2idx[ed.Tag] = j
			if ed.Mat != "" && o.Materials.Get(ed.Mat) == nil {
				return chk.Err("cannot find material %q needed by element tag %d", ed.Mat, ed.Tag)
			}
		}

		// space dimension
		if i == 0 {
			o.Ndim = reg.Msh.Ndim
		} else if reg.Msh.Ndim != o.Ndim {
			return chk.Err("Ndim value is inconsistent: %d != %d", reg.Msh.Ndim, o.Ndim)
		}
	}

	// for all stages
	if len(o.Stages) < 1 {
		return chk.Err("at least one stage must be given")
	}
	var t float64
	for i, stg := range o.Stages {
		err = stg.Control.init(o.Functions, t)
		if err != nil {
			return chk.Err("time control of stage %d is incorrect:\n%v", i, err)
		}
		t += stg.Control.Tf
	}
	return
}

// init sets default values and derived functions
func (o *TimeControl) init(functions FuncsData, t float64) (err error) {

	// fix Tf
	if o.Tf < 1e-14 {
		o.Tf = 1
	}

	// fix Dt
	if o.DtFcn == "" {
		if o.Dt < 1e-14 {
			o.Dt = 1
		}
		o.DtFunc = &dbf.Cte{C: o.Dt}
	} else {
		o.DtFunc, err = functions.Get(o.DtFcn)
		if err != nil {
			return
		}
		o.Dt = o.DtFunc.F(t, nil)
	}

	// fix DtOut
	if o.DtoFcn == "" {
		if o.DtOut < 1e-14 {
			o.DtOut = o.Dt
			o.DtoFunc = o.DtFunc
		} else {
			if o.DtOut < o.Dt {
				o.DtOut = o.Dt
			}
			o.DtoFunc = &dbf.Cte{C: o.DtOut}
		}
	} else {
		o.DtoFunc, err = functions.Get(o.DtoFcn)
		if err != nil {
			return
		}
		o.DtOut = o.DtoFunc.F(t, nil)
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

// Etag2data returns the ElemData corresponding to element tag
//  Note: returns nil if not found
func (o *Region) Etag2data(etag int) *ElemData {
	idx, ok := o.etag2idx[etag]
	if !ok {
		return nil
	}
	return o.ElemsData[idx]
}

// Get returns material data by name
//  Note: returns nil if not found
func (o MatsData) Get(name string) *MatData {
	for _, mat := range o {
		if mat.Name == name {
			return mat
		}
	}
	return nil
}

// GetInfo writes the simulation input as indented JSON
func (o *Simulation) GetInfo(w goio.Writer) (err error) {
	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return
	}
	_, err = w.Write(b)
	return
}

// GetEleCond returns element condition structure by giving an elem tag
//  Note: returns nil if not found
func (o Stage) GetEleCond(elemtag int) *EleCond {
	for _, ec := range o.EleConds {
		if elemtag == ec.Tag {
			return ec
		}
	}
	return nil
}

// GetNodeBc returns node boundary condition structure by giving a node tag
//  Note: returns nil if not found
func (o Stage) GetNodeBc(nodetag int) *NodeBc {
	for _, nbc := range o.NodeBcs {
		if nodetag == nbc.Tag {
			return nbc
		}
	}
	return nil
}

// GetFaceBc returns face boundary condition structure by giving a face tag
//  Note: returns nil if not found
func (o Stage) GetFaceBc(facetag int) *FaceBc {
	for _, fbc := range o.FaceBcs {
		if facetag == fbc.Tag {
			return fbc
		}
	}
	return nil
}

// extra settings //////////////////////////////////////////////////////////////////////////////////

// SetDefault set defaults values
func (o *SolverData) SetDefault() {

	// nonlinear solver
	o.Type = "imp"
	o.NmaxIt = 20
	o.Atol = 1e-6
	o.Rtol = 1e-6
	o.FbTol = 1e-8
	o.FbMin = 1e-14
	o.NdvgMax = 20

	// predictor
	o.Predictor = "ConstDis"

	// transient analyses
	o.DtMin = 1e-8
	o.Theta = 0.5

	// dynamics
	o.Theta1 = 0.5
	o.Theta2 = 0.5

	// constants
	o.Eps = 1e-16
}

// PostProcess performs a post-processing of the just read file
func (o *SolverData) PostProcess() {
	if o.Predictor == "" {
		o.Predictor = "ConstDis"
	}
	o.Itol = utl.Max(10.0*o.Eps/o.Rtol, utl.Min(0.01, math.Sqrt(o.Rtol)))
}
