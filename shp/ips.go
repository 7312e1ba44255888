// Copyright 2015 Dorival Pedroso and Raul Durand. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package shp

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Ipoint holds the natural coordinates and the weight of an integration point
type Ipoint struct {
	R, S, T float64 // natural coordinates
	W       float64 // weight
}

// set copies the natural coordinates into r and returns r
func (o *Ipoint) set(r []float64) []float64 {
	r[0], r[1], r[2] = o.R, o.S, o.T
	return r
}

// GetIps returns the integration points of geoType using nip points; nip == 0 => default
func GetIps(geoType string, nip int) (ips []*Ipoint, err error) {
	byNip, ok := ipsfactory[geoType]
	if !ok {
		return nil, chk.Err("cannot find integration points for geometry type %q", geoType)
	}
	if nip == 0 {
		nip = ipsdefault[geoType]
	}
	ips, ok = byNip[nip]
	if !ok {
		return nil, chk.Err("number of integration points nip=%d is not available for %q", nip, geoType)
	}
	return
}

// ipsdefault holds the default number of integration points of each geometry
var ipsdefault = map[string]int{"lin2": 2, "tri3": 1, "qua4": 4}

// ipsfactory holds integration points: geoType => nip => ips
var ipsfactory = make(map[string]map[int][]*Ipoint)

func init() {

	// Gauss-Legendre 1D
	a2 := 1.0 / math.Sqrt(3.0)
	a3 := math.Sqrt(3.0 / 5.0)
	gauss := map[int][][2]float64{ // nip => {coordinate, weight}
		1: {{0, 2}},
		2: {{-a2, 1}, {a2, 1}},
		3: {{-a3, 5.0 / 9.0}, {0, 8.0 / 9.0}, {a3, 5.0 / 9.0}},
	}

	// lin2
	ipsfactory["lin2"] = make(map[int][]*Ipoint)
	for nip, pts := range gauss {
		ips := make([]*Ipoint, nip)
		for i, p := range pts {
			ips[i] = &Ipoint{R: p[0], W: p[1]}
		}
		ipsfactory["lin2"][nip] = ips
	}

	// qua4: tensor products
	ipsfactory["qua4"] = make(map[int][]*Ipoint)
	for n, pts := range gauss {
		ips := make([]*Ipoint, 0, n*n)
		for _, ps := range pts {
			for _, pr := range pts {
				ips = append(ips, &Ipoint{R: pr[0], S: ps[0], W: pr[1] * ps[1]})
			}
		}
		ipsfactory["qua4"][n*n] = ips
	}

	// tri3
	ipsfactory["tri3"] = map[int][]*Ipoint{
		1: {{R: 1.0 / 3.0, S: 1.0 / 3.0, W: 0.5}},
		3: {
			{R: 1.0 / 6.0, S: 1.0 / 6.0, W: 1.0 / 6.0},
			{R: 2.0 / 3.0, S: 1.0 / 6.0, W: 1.0 / 6.0},
			{R: 1.0 / 6.0, S: 2.0 / 3.0, W: 1.0 / 6.0},
		},
	}
}
