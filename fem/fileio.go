// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	goio "io"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Encoder defines encoders; e.g. gob or json
type Encoder interface {
	Encode(e interface{}) error
}

// Decoder defines decoders; e.g. gob or json
type Decoder interface {
	Decode(e interface{}) error
}

// GetEncoder returns a new encoder
func GetEncoder(w goio.Writer, enctype string) Encoder {
	if enctype == "json" {
		return json.NewEncoder(w)
	}
	return gob.NewEncoder(w)
}

// GetDecoder returns a new decoder
func GetDecoder(r goio.Reader, enctype string) Decoder {
	if enctype == "json" {
		return json.NewDecoder(r)
	}
	return gob.NewDecoder(r)
}

// SaveSol saves solution (o.Sol) to a file which name is set with tidx (time output index)
//  didx -- domain index
func (o *Domain) SaveSol(didx, tidx int, verbose bool) (err error) {
	var buf bytes.Buffer
	enc := GetEncoder(&buf, o.Sim.EncType)
	vals := []interface{}{o.Sol.T, o.Sol.Y, o.Sol.L}
	if !o.Sol.Steady {
		vals = append(vals, o.Sol.Dydt, o.Sol.D2ydt2)
	}
	for _, v := range vals {
		err = enc.Encode(v)
		if err != nil {
			return chk.Err("cannot encode solution:\n%v", err)
		}
	}
	fn := out_nod_path(o.Sim.DirOut, o.Sim.Key, o.Sim.EncType, didx, tidx)
	return save_file(fn, &buf, verbose)
}

// ReadSol reads Solution from a file which name is set with tidx (time output index).
// The stage must be set already such that the number of equations matches
func (o *Domain) ReadSol(dir, fnkey, enctype string, didx, tidx int) (err error) {
	if o.Sol == nil {
		return preconditionViolation("Domain.ReadSol", "stage must be set first")
	}
	fil, err := os.Open(out_nod_path(dir, fnkey, enctype, didx, tidx))
	if err != nil {
		return
	}
	defer fil.Close()
	dec := GetDecoder(fil, enctype)
	vals := []interface{}{&o.Sol.T, &o.Sol.Y, &o.Sol.L}
	if !o.Sol.Steady {
		vals = append(vals, &o.Sol.Dydt, &o.Sol.D2ydt2)
	}
	for _, v := range vals {
		err = dec.Decode(v)
		if err != nil {
			return chk.Err("cannot decode solution:\n%v", err)
		}
	}
	if len(o.Sol.Y) != o.Ny || len(o.Sol.L) != o.Nlam {
		return chk.Err("solution in file has %d equations and %d multipliers; domain has %d and %d", len(o.Sol.Y), len(o.Sol.L), o.Ny, o.Nlam)
	}
	return
}

// SaveIvs saves elements's internal values to a file which name is set with tidx (time output index)
func (o *Domain) SaveIvs(didx, tidx int, verbose bool) (err error) {
	var buf bytes.Buffer
	enc := GetEncoder(&buf, o.Sim.EncType)
	cids := []int{}
	var ivs []ElemIntvars
	for _, e := range o.Elems {
		if ei, ok := e.(ElemIntvars); ok {
			cids = append(cids, e.Id())
			ivs = append(ivs, ei)
		}
	}
	err = enc.Encode(cids)
	if err != nil {
		return chk.Err("cannot encode elements ids:\n%v", err)
	}
	for i, e := range ivs {
		err = e.Encode(enc)
		if err != nil {
			return chk.Err("cannot encode internal variables of element %d:\n%v", cids[i], err)
		}
	}
	fn := out_ele_path(o.Sim.DirOut, o.Sim.Key, o.Sim.EncType, didx, tidx)
	return save_file(fn, &buf, verbose)
}

// ReadIvs reads elements's internal values from a file which name is set with tidx (time output index)
func (o *Domain) ReadIvs(dir, fnkey, enctype string, didx, tidx int) (err error) {
	fil, err := os.Open(out_ele_path(dir, fnkey, enctype, didx, tidx))
	if err != nil {
		return
	}
	defer fil.Close()
	dec := GetDecoder(fil, enctype)
	cids := []int{}
	err = dec.Decode(&cids)
	if err != nil {
		return chk.Err("cannot decode elements ids:\n%v", err)
	}
	for _, cid := range cids {
		if cid < 0 || cid >= len(o.Cid2elem) || o.Cid2elem[cid] == nil {
			return chk.Err("cannot find active element with cid=%d", cid)
		}
		e, ok := o.Cid2elem[cid].(ElemIntvars)
		if !ok {
			return chk.Err("element with cid=%d has no internal variables", cid)
		}
		err = e.Decode(dec)
		if err != nil {
			return chk.Err("cannot decode element %d:\n%v", cid, err)
		}
	}
	return
}

// Save saves solution and internal values to files
func (o *Domain) Save(didx, tidx int, verbose bool) (err error) {
	err = o.SaveSol(didx, tidx, verbose)
	if err != nil {
		return
	}
	return o.SaveIvs(didx, tidx, verbose)
}

// Read performs the inverse operation of Save
func (o *Domain) Read(sum *Summary, didx, tidx int) (err error) {
	err = o.ReadIvs(sum.Dirout, sum.Fnkey, sum.EncType, didx, tidx)
	if err != nil {
		return
	}
	return o.ReadSol(sum.Dirout, sum.Fnkey, sum.EncType, didx, tidx)
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func out_nod_path(dir, fnkey, enctype string, didx, tidx int) string {
	return filepath.Join(dir, io.Sf("%s_d%d_nod_%010d.%s", fnkey, didx, tidx, enctype))
}

func out_ele_path(dir, fnkey, enctype string, didx, tidx int) string {
	return filepath.Join(dir, io.Sf("%s_d%d_ele_%010d.%s", fnkey, didx, tidx, enctype))
}

func save_file(filename string, buf *bytes.Buffer, verbose bool) (err error) {
	fil, err := os.Create(filename)
	if err != nil {
		return
	}
	defer func() {
		if e := fil.Close(); err == nil {
			err = e
		}
	}()
	_, err = fil.Write(buf.Bytes())
	if verbose {
		io.Pfblue2("file <%s> written\n", filename)
	}
	return
}
