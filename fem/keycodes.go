// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fem

import (
	"github.com/mpfem/mpfem/inp"
	"github.com/mpfem/mpfem/shp"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// GetSolidFlags parses the flags of solid elements
//  Input:
//   pstress -- plane-stress simulation
//   extra   -- keycodes; e.g. "!thick:0.2 !enh:1"
//  Output:
//   enhanced  -- use incompatible (enhanced) modes
//   thickness -- thickness for plane-stress; 1 otherwise
func GetSolidFlags(pstress bool, extra string) (enhanced bool, thickness float64) {

	// defaults
	thickness = 1.0

	// flag: enhanced modes
	if s_enh, found := io.Keycode(extra, "enh"); found {
		enhanced = io.Atob(s_enh)
	}

	// flag: thickess => plane-stress
	if s_thick, found := io.Keycode(extra, "thick"); found {
		thickness = io.Atof(s_thick)
	}

	// fix thickness flag
	if !pstress {
		thickness = 1.0
	}
	return
}

// GetIntegrationPoints returns the integration points of cell and of its faces
func GetIntegrationPoints(nip, nipf int, cellType string) (ipsElem, ipsFace []*shp.Ipoint, err error) {

	// get integration points of element
	ipsElem, err = shp.GetIps(cellType, nip)
	if err != nil {
		err = chk.Err("cannot get integration points for element with shape type=%q and nip=%d\n%v", cellType, nip, err)
		return
	}

	// get integration points of face
	faceType := shp.GetFaceType(cellType)
	ipsFace, err = shp.GetIps(faceType, nipf)
	if err != nil {
		err = chk.Err("cannot get integration points for face with face-shape type=%q and nip=%d\n%v", faceType, nipf, err)
	}
	return
}

// GetMatPrm returns the value of a parameter of material named matName
//  Note: returns the default value if the material or the parameter do not exist
func GetMatPrm(sim *inp.Simulation, matName, prmName string, dflt float64) float64 {
	mat := sim.Materials.Get(matName)
	if mat == nil {
		return dflt
	}
	for _, p := range mat.Prms {
		if p.N == prmName {
			return p.V
		}
	}
	return dflt
}
