// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"fmt"

	"github.com/mpfem/mpfem/inp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
	"golang.org/x/sync/errgroup"
)

// Domain holds all Nodes and Elements active during a stage in addition to the Solution at nodes.
type Domain struct {

	// init: auxiliary variables
	Sim    *inp.Simulation // [from FEM] input data
	Reg    *inp.Region     // region data
	Msh    *inp.Mesh       // mesh data
	DynCfs *DynCoefs       // [from FEM] coefficients for dynamics/transient simulations

	// stage: nodes (active) and elements (active)
	Nodes  []*Node // active nodes (for each stage)
	Elems  []Elem  // [nactive] only active elements (for each stage)
	MyCids []int   // [nactive] the ids of active cells

	// stage: auxiliary maps for dofs and equation types
	F2Y      map[string]string // converts f-keys to y-keys; e.g.: "fx" => "ux"
	YandC    map[string]bool   // y and constraints keys; e.g. "ux", "pl", "incsup", "rigid"
	Dof2Tnum map[string]int    // {t1,t2}-types: dof => t_number; e.g. "ux" => 2, "pl" => 1

	// stage: auxiliary maps for nodes and elements
	Vid2node   []*Node // [nverts] VertexId => node. Inactive vertices are 'nil'
	Cid2elem   []Elem  // [ncells] CellId => element. Inactive cells are 'nil'
	Cid2active []bool  // [ncells] CellId => whether cell is active or not

	// stage: subsets of elements
	ElemIntvars  []ElemIntvars  // elements with internal vars
	ElemStarVars []ElemStarVars // elements that need star variables

	// stage: coefficients and prescribed forces
	EssenBcs EssentialBcs // constraints (Lagrange multipliers)
	PtNatBcs PtNaturalBcs // point loads such as prescribed forces at nodes

	// stage: t1 and t2 variables
	T1eqs []int // first t-derivative variables; e.g.:  dp/dt vars (subset of ykeys)
	T2eqs []int // second t-derivative variables; e.g.: d²u/dt² vars (subset of ykeys)

	// stage: dimensions
	NnzKb int // number of nonzeros in Kb matrix
	Ny    int // total number of dofs, except λ
	Nlam  int // total number of Lagrange multipliers
	NnzA  int // number of nonzeros in A (constraints) matrix
	Nyb   int // total number of equations: ny + nλ

	// stage: solution
	Sol *Solution // solution state

	// elements allocated in any stage; reused when cells are re-activated
	allElems []Elem // [ncells]

	// stage: location maps and output buffers
	lms  [][]int        // [nactive] location maps
	outs []*ElemOutputs // [nactive] element buffers

	// for divergence control
	bkpSol *Solution // backup solution
}

// NewDomains returns domains
func NewDomains(sim *inp.Simulation, dyncfs *DynCoefs) (doms []*Domain) {
	doms = make([]*Domain, len(sim.Regions))
	for i, reg := range sim.Regions {
		doms[i] = NewDomain(sim, reg, dyncfs)
	}
	return
}

// NewDomain returns a new domain corresponding to one region
func NewDomain(sim *inp.Simulation, reg *inp.Region, dyncfs *DynCoefs) (o *Domain) {
	o = new(Domain)
	o.Sim = sim
	o.Reg = reg
	o.Msh = reg.Msh
	o.DynCfs = dyncfs
	o.allElems = make([]Elem, len(reg.Msh.Cells))
	return
}

// SetStage set nodes, equation numbers and auxiliary data for given stage
//  Note: equations are numbered by field class first; i.e. all structure DOFs,
//        then all fluid DOFs and then all ALE DOFs. Values of nodes that remain
//        active are transferred from the previous stage.
func (o *Domain) SetStage(stgidx int) (err error) {

	// pointer to stage structure
	if stgidx < 0 || stgidx >= len(o.Sim.Stages) {
		return chk.Err("stage index %d is out of range", stgidx)
	}
	stg := o.Sim.Stages[stgidx]

	// activation and deactivation
	if stgidx > 0 {
		err = o.fix_inact_flags(stg.Activate, false)
		if err != nil {
			return
		}
		err = o.fix_inact_flags(stg.Deactivate, true)
		if err != nil {
			return
		}
	}

	// old state
	oldSol := o.Sol
	oldVid2node := o.Vid2node

	// nodes and elements (active)
	o.Nodes = make([]*Node, 0)
	o.Elems = make([]Elem, 0)
	o.MyCids = make([]int, 0)

	// auxiliary maps for dofs and equation types
	o.F2Y = make(map[string]string)
	o.YandC = GetIsEssenKeyMap()
	o.Dof2Tnum = make(map[string]int)

	// auxiliary maps for nodes and elements
	o.Vid2node = make([]*Node, len(o.Msh.Verts))
	o.Cid2elem = make([]Elem, len(o.Msh.Cells))
	o.Cid2active = make([]bool, len(o.Msh.Cells))

	// subsets of elements
	o.ElemIntvars = make([]ElemIntvars, 0)
	o.ElemStarVars = make([]ElemStarVars, 0)

	// nodes and DOFs of active cells ---------------------------------------------------------------

	infos := make([]*Info, len(o.Msh.Cells))
	for _, cell := range o.Msh.Cells {

		// set cell's face boundary conditions
		err = cell.SetFaceConds(stg, o.Sim.Functions)
		if err != nil {
			return chk.Err("cannot set face conditions of cell %d:\n%v", cell.Id, err)
		}

		// get element info
		info, inactive, err := GetElemInfo(cell, o.Reg, o.Sim)
		if err != nil {
			return chk.Err("get element information failed:\n%v", err)
		}

		// skip inactive element
		if inactive {
			continue
		}
		o.Cid2active[cell.Id] = true
		infos[cell.Id] = info
		if len(info.Dofs) != len(cell.Verts) {
			return chk.Err("element information of cell %d has DOFs for %d nodes but cell has %d vertices", cell.Id, len(info.Dofs), len(cell.Verts))
		}

		// store y and f information
		for ykey, fkey := range info.Y2F {
			o.F2Y[fkey] = ykey
			o.YandC[ykey] = true
		}

		// t1 and t2 equations
		for _, ykey := range info.T1vars {
			o.Dof2Tnum[ykey] = 1
		}
		for _, ykey := range info.T2vars {
			o.Dof2Tnum[ykey] = 2
		}

		// loop over nodes of this element
		for j, v := range cell.Verts {
			nod := o.Vid2node[v]
			if nod == nil {
				nod = NewNode(o.Msh.Verts[v])
				o.Vid2node[v] = nod
				o.Nodes = append(o.Nodes, nod)
			}
			for _, ukey := range info.Dofs[j] {
				if _, ok := GetFieldClass(ukey); !ok {
					return chk.Err("DOF key %q of cell %d has no field class", ukey, cell.Id)
				}
				nod.AddDof(ukey)
			}
		}
	}

	// equation numbers: structure < fluid < ALE
	var eq int
	for class := FieldStructure; class < nFieldClasses; class++ {
		for _, nod := range o.Nodes {
			for _, dof := range nod.Dofs {
				if c, _ := GetFieldClass(dof.Key); c == class {
					dof.Eq = eq
					eq++
				}
			}
		}
	}
	o.Ny = eq

	// elements -------------------------------------------------------------------------------------

	var newElems []Elem
	o.NnzKb = 0
	o.lms = make([][]int, 0)
	o.outs = make([]*ElemOutputs, 0)
	for _, cell := range o.Msh.Cells {
		if !o.Cid2active[cell.Id] {
			continue
		}
		info := infos[cell.Id]

		// new or existent element
		ele := o.allElems[cell.Id]
		if ele == nil {
			ele, err = NewElem(cell, o.Reg, o.Sim)
			if err != nil {
				return chk.Err("new element failed:\n%v", err)
			}
			o.allElems[cell.Id] = ele
			newElems = append(newElems, ele)
		} else if s, ok := ele.(stageSetter); ok {
			err = s.setStage(cell)
			if err != nil {
				return chk.Err("cannot reset stage data of element %d:\n%v", cell.Id, err)
			}
		}
		o.Cid2elem[cell.Id] = ele
		o.Elems = append(o.Elems, ele)
		o.MyCids = append(o.MyCids, ele.Id())

		// give equation numbers to element
		eqs := make([][]int, len(cell.Verts))
		for j, v := range cell.Verts {
			nod := o.Vid2node[v]
			for _, ukey := range info.Dofs[j] {
				eqs[j] = append(eqs[j], nod.GetEq(ukey))
			}
		}
		err = ele.SetEqs(eqs, nil)
		if err != nil {
			return chk.Err("cannot set element equations:\n%v", err)
		}

		// location map and buffers
		lm := ele.Lmap()
		o.lms = append(o.lms, lm)
		o.outs = append(o.outs, NewElemOutputs(len(lm), true))
		o.NnzKb += len(lm) * len(lm)

		// subsets of elements
		o.add_element_to_subsets(ele)
	}

	// element conditions, essential and natural boundary conditions --------------------------------

	// (re)set constraints and prescribed forces structures
	o.EssenBcs.Init()
	o.PtNatBcs.Reset()

	// element conditions
	for _, ec := range stg.EleConds {
		cells, ok := o.Msh.CellTag2cells[ec.Tag]
		if !ok {
			return chk.Err("cannot find cells with tag = %d to assign conditions", ec.Tag)
		}
		for _, cell := range cells {
			e := o.Cid2elem[cell.Id]
			if e == nil { // set conditions only for active elements
				continue
			}
			for j, key := range ec.Keys {
				if j >= len(ec.Funcs) {
					return chk.Err("element condition with tag %d has %d keys but only %d functions", ec.Tag, len(ec.Keys), len(ec.Funcs))
				}
				fcn, err := o.Sim.Functions.Get(ec.Funcs[j])
				if err != nil {
					return err
				}
				err = e.SetEleConds(key, fcn, ec.Extra)
				if err != nil {
					return chk.Err("cannot set element condition %q of cell %d:\n%v", key, cell.Id, err)
				}
			}
		}
	}

	// face essential boundary conditions
	for _, cell := range o.Msh.Cells {
		if !o.Cid2active[cell.Id] {
			continue
		}
		for _, fc := range cell.FaceBcs {
			if !o.YandC[fc.Cond] {
				continue
			}
			var enodes []*Node
			for _, v := range fc.GlobalVerts {
				enodes = append(enodes, o.Vid2node[v])
			}
			err = o.EssenBcs.Set(fc.Cond, enodes, fc.Func, fc.Extra)
			if err != nil {
				return chk.Err("setting of essential boundary conditions failed:\n%v", err)
			}
		}
	}

	// vertex bounday conditions
	for _, nc := range stg.NodeBcs {
		verts, ok := o.Msh.VertTag2verts[nc.Tag]
		if !ok {
			return chk.Err("cannot find vertices with tag = %d to assign node boundary conditions", nc.Tag)
		}
		for _, v := range verts {
			n := o.Vid2node[v.Id]
			if n == nil { // set BCs only for active nodes
				continue
			}
			for j, key := range nc.Keys {
				if j >= len(nc.Funcs) {
					return chk.Err("node condition with tag %d has %d keys but only %d functions", nc.Tag, len(nc.Keys), len(nc.Funcs))
				}
				fcn, err := o.Sim.Functions.Get(nc.Funcs[j])
				if err != nil {
					return err
				}
				if o.YandC[key] {
					err = o.EssenBcs.Set(key, []*Node{n}, fcn, nc.Extra)
				} else if ukey, ok := o.F2Y[key]; ok {
					err = o.PtNatBcs.Set(key, ukey, n, fcn, nc.Extra)
				} else {
					err = chk.Err("node condition %q is not available", key)
				}
				if err != nil {
					return chk.Err("cannot set node condition @ vertex %d:\n%v", v.Id, err)
				}
			}
		}
	}

	// sizes and solution ---------------------------------------------------------------------------

	// t1 and t2 equations
	o.T1eqs = make([]int, 0)
	o.T2eqs = make([]int, 0)
	for _, nod := range o.Nodes {
		for _, dof := range nod.Dofs {
			switch o.Dof2Tnum[dof.Key] {
			case 1:
				o.T1eqs = append(o.T1eqs, dof.Eq)
			case 2:
				o.T2eqs = append(o.T2eqs, dof.Eq)
			}
		}
	}

	// size of arrays
	o.Nlam, o.NnzA, err = o.EssenBcs.Build(o.Ny)
	if err != nil {
		return
	}
	o.Nyb = o.Ny + o.Nlam

	// solution structure
	o.Sol = NewSolution(o.Ny, o.Nlam, o.Sim.Data.Steady, o.Sim.Data.Pstress, o.DynCfs)
	if oldSol != nil {
		o.transfer(oldSol, oldVid2node)
	}
	o.bkpSol = nil

	// initial values of new elements
	for _, ele := range newElems {
		if e, ok := ele.(ElemIntvars); ok {
			err = e.SetIniIvs(o.Sol)
			if err != nil {
				return chk.Err("cannot set initial values of element %d:\n%v", ele.Id(), err)
			}
		}
	}
	return
}

// SetIniVals sets/resets initial values (nodes and integration points)
func (o *Domain) SetIniVals(zeroSol bool) (err error) {
	if o.Sol == nil {
		return preconditionViolation("Domain.SetIniVals", "stage must be set first")
	}
	if zeroSol {
		o.Sol.Reset()
	}
	for _, e := range o.ElemIntvars {
		err = e.SetIniIvs(o.Sol)
		if err != nil {
			return
		}
	}
	return
}

// assembly /////////////////////////////////////////////////////////////////////////////////////////

// AssembleRhs assembles the right-hand side vector (fb) with the negative of residuals,
// point natural boundary conditions and constraint terms
//  fb -- [nyb] augmented vector
func (o *Domain) AssembleRhs(fb []float64) (err error) {
	if len(fb) != o.Nyb {
		return preconditionViolation("Domain.AssembleRhs", "fb must have size %d; got %d", o.Nyb, len(fb))
	}
	for i := range fb {
		fb[i] = 0
	}
	err = o.evaluate(&EvalParams{Action: ActRhs, Sol: o.Sol})
	if err != nil {
		return
	}
	for k, lm := range o.lms {
		for i, I := range lm {
			fb[I] += o.outs[k].Vec[i]
		}
	}
	o.PtNatBcs.AddToRhs(fb, o.Sol.T)
	o.EssenBcs.AddToRhs(fb, o.Sol)
	return
}

// AssembleKb assembles the augmented Jacobian matrix (Kb)
func (o *Domain) AssembleKb(Kb *la.Triplet, firstIt bool) (err error) {
	err = o.evaluate(&EvalParams{Action: ActKb, Sol: o.Sol, FirstIt: firstIt})
	if err != nil {
		return
	}
	Kb.Start()
	for k, lm := range o.lms {
		for i, I := range lm {
			for j, J := range lm {
				Kb.Put(I, J, o.outs[k].Mat[i][j])
			}
		}
	}
	o.EssenBcs.AddToKb(Kb)
	return
}

// UpdateElems updates secondary variables of elements (e.g. stresses)
func (o *Domain) UpdateElems() (err error) {
	for _, e := range o.ElemIntvars {
		err = e.Update(o.Sol)
		if err != nil {
			return
		}
	}
	return
}

// star_vars computes starred variables; the dynamic coefficients must be computed already
func (o *Domain) star_vars() (err error) {

	// skip steady cases
	if o.Sim.Data.Steady {
		return
	}

	// compute starred vectors
	dc := o.DynCfs
	for _, I := range o.T1eqs {
		o.Sol.Psi[I] = dc.β1*o.Sol.Y[I] + dc.β2*o.Sol.Dydt[I]
	}
	for _, I := range o.T2eqs {
		o.Sol.Zet[I] = dc.α1*o.Sol.Y[I] + dc.α2*o.Sol.Dydt[I] + dc.α3*o.Sol.D2ydt2[I]
		o.Sol.Chi[I] = dc.α4*o.Sol.Y[I] + dc.α5*o.Sol.Dydt[I] + dc.α6*o.Sol.D2ydt2[I]
	}

	// set internal starred variables
	for _, e := range o.ElemStarVars {
		err = e.InterpStarVars(o.Sol)
		if err != nil {
			return
		}
	}
	return
}

// update_rates computes rates consistent with the θ-method and Newmark's method
func (o *Domain) update_rates() {
	if o.Sim.Data.Steady {
		return
	}
	dc := o.DynCfs
	for _, I := range o.T1eqs {
		o.Sol.Dydt[I] = dc.β1*o.Sol.Y[I] - o.Sol.Psi[I]
	}
	for _, I := range o.T2eqs {
		o.Sol.Dydt[I] = dc.α4*o.Sol.Y[I] - o.Sol.Chi[I]
		o.Sol.D2ydt2[I] = dc.α1*o.Sol.Y[I] - o.Sol.Zet[I]
	}
}

// auxiliary functions //////////////////////////////////////////////////////////////////////////////

// evaluate evaluates all elements; in parallel if more than one worker is requested
func (o *Domain) evaluate(prm *EvalParams) (err error) {
	nw := o.Sim.Data.Nworkers
	if nw <= 1 || len(o.Elems) < 2 {
		for k, e := range o.Elems {
			o.outs[k].Zero()
			err = e.Evaluate(prm, o, o.lms[k], o.outs[k])
			if err != nil {
				return fmt.Errorf("evaluation of element %d failed: %w", e.Id(), err)
			}
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(nw)
	for k, e := range o.Elems {
		k, e := k, e
		g.Go(func() error {
			o.outs[k].Zero()
			if err := e.Evaluate(prm, o, o.lms[k], o.outs[k]); err != nil {
				return fmt.Errorf("evaluation of element %d failed: %w", e.Id(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// transfer copies nodal values of a previous stage into the current solution
func (o *Domain) transfer(old *Solution, oldVid2node []*Node) {
	o.Sol.T = old.T
	o.Sol.Dt = old.Dt
	for _, nod := range o.Nodes {
		vid := nod.Vert.Id
		if vid >= len(oldVid2node) || oldVid2node[vid] == nil {
			continue
		}
		for _, dof := range nod.Dofs {
			oeq := oldVid2node[vid].GetEq(dof.Key)
			if oeq < 0 || oeq >= len(old.Y) {
				continue
			}
			o.Sol.Y[dof.Eq] = old.Y[oeq]
			if !o.Sol.Steady && !old.Steady {
				o.Sol.Dydt[dof.Eq] = old.Dydt[oeq]
				o.Sol.D2ydt2[dof.Eq] = old.D2ydt2[oeq]
			}
		}
	}
}

// add_element_to_subsets adds an Elem to many subsets as it fits
func (o *Domain) add_element_to_subsets(ele Elem) {
	if e, ok := ele.(ElemIntvars); ok {
		o.ElemIntvars = append(o.ElemIntvars, e)
	}
	if e, ok := ele.(ElemStarVars); ok {
		o.ElemStarVars = append(o.ElemStarVars, e)
	}
}

// fix_inact_flags sets inactive flags for new active/inactive elements
func (o *Domain) fix_inact_flags(eids_or_tags []int, deactivate bool) (err error) {
	for _, tag := range eids_or_tags {
		if tag >= 0 { // this means that tag == cell.Id
			if tag >= len(o.Msh.Cells) {
				return chk.Err("cannot find cell with id=%d", tag)
			}
			tag = o.Msh.Cells[tag].Tag
		}
		edat := o.Reg.Etag2data(tag)
		if edat == nil {
			return chk.Err("cannot get element's data with etag=%d", tag)
		}
		edat.Inact = deactivate
	}
	return
}

// backup saves a copy of solution and internal variables
func (o *Domain) backup() (err error) {
	if o.bkpSol == nil {
		o.bkpSol = o.Sol.GetCopy()
	} else {
		o.bkpSol.Set(o.Sol)
	}
	return o.backupIvs(true)
}

// restore restores solution and internal variables
func (o *Domain) restore() (err error) {
	if o.bkpSol == nil {
		return preconditionViolation("Domain.restore", "backup must be called first")
	}
	o.Sol.Set(o.bkpSol)
	return o.restoreIvs(true)
}

// backupIvs creates copies of internal variables
func (o *Domain) backupIvs(aux bool) (err error) {
	for _, e := range o.ElemIntvars {
		err = e.BackupIvs(aux)
		if err != nil {
			return
		}
	}
	return
}

// restoreIvs restores internal variables from copies
func (o *Domain) restoreIvs(aux bool) (err error) {
	for _, e := range o.ElemIntvars {
		err = e.RestoreIvs(aux)
		if err != nil {
			return
		}
	}
	return
}
