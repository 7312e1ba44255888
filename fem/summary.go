// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Summary records summary of outputs
type Summary struct {

	// main data
	OutTimes []float64   // [nOutTimes] output times
	Resids   [][]float64 // [ntimesteps][nit] largest residuals of each iteration (includes all stages)
	Dirout   string      // directory where results are stored
	Fnkey    string      // filename key of simulation
	EncType  string      // encoder type; e.g. "gob" or "json"
}

// AppendResid appends a residual value; first indicates a new time step
func (o *Summary) AppendResid(first bool, largFb float64) {
	if first || len(o.Resids) == 0 {
		o.Resids = append(o.Resids, []float64{largFb})
		return
	}
	n := len(o.Resids) - 1
	o.Resids[n] = append(o.Resids[n], largFb)
}

// SaveDomains saves the results from all domains (nodes and elements)
func (o *Summary) SaveDomains(t float64, doms []*Domain, verbose bool) (err error) {
	tidx := len(o.OutTimes)
	for i, d := range doms {
		err = d.Save(i, tidx, verbose)
		if err != nil {
			return
		}
	}
	o.OutTimes = append(o.OutTimes, t)
	return
}

// Save saves summary to disk
func (o *Summary) Save(verbose bool) (err error) {
	var buf bytes.Buffer
	enc := GetEncoder(&buf, o.EncType)
	err = enc.Encode(o)
	if err != nil {
		return chk.Err("cannot encode summary:\n%v", err)
	}
	return save_file(out_sum_path(o.Dirout, o.Fnkey, o.EncType), &buf, verbose)
}

// ReadSummary reads summary back
func ReadSummary(dir, fnkey, enctype string) (o *Summary, err error) {
	fil, err := os.Open(out_sum_path(dir, fnkey, enctype))
	if err != nil {
		return
	}
	defer fil.Close()
	o = new(Summary)
	err = GetDecoder(fil, enctype).Decode(o)
	if err != nil {
		return nil, chk.Err("cannot decode summary:\n%v", err)
	}
	return
}

// auxiliary ///////////////////////////////////////////////////////////////////////////////////////

func out_sum_path(dir, fnkey, enctype string) string {
	return filepath.Join(dir, io.Sf("%s_sum.%s", fnkey, enctype))
}
