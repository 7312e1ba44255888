// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/mpfem/mpfem/fem"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func main() {

	// catch errors
	defer func() {
		if err := recover(); err != nil {
			io.PfRed("ERROR: %v\n", err)
			os.Exit(1)
		}
	}()

	// read input parameters
	fnamepath, _ := io.ArgToFilename(0, "", ".sim", true)
	verbose := io.ArgToBool(1, true)
	erasePrev := io.ArgToBool(2, true)
	saveSummary := io.ArgToBool(3, true)
	alias := io.ArgToString(4, "")

	// message
	if verbose {
		io.PfWhite("\nmpfem -- multiphysics finite element method\n\n")
		io.Pf("Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.\n")
		io.Pf("Use of this source code is governed by a BSD-style\n")
		io.Pf("license that can be found in the LICENSE file.\n\n")

		io.Pf("\n%v\n", argsTable(fnamepath, verbose, erasePrev, saveSummary, alias))
	}

	// analysis data
	readSummary := false
	analysis, err := fem.NewFEM(fnamepath, alias, erasePrev, saveSummary, readSummary, verbose, 0)
	if err != nil {
		chk.Panic("cannot allocate FEM:\n%v", err)
	}

	// run simulation
	err = analysis.Run()
	if err != nil {
		chk.Panic("Run failed:\n%v", err)
	}
}

// argsTable returns the table of input arguments
func argsTable(fnamepath string, verbose, erasePrev, saveSummary bool, alias string) string {
	return io.ArgsTable("INPUT ARGUMENTS",
		"filename path", "fnamepath", fnamepath,
		"show messages", "verbose", verbose,
		"erase previous results", "erasePrev", erasePrev,
		"save summary", "saveSummary", saveSummary,
		"word to add to results", "alias", alias,
	)
}
