// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package wake

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/gm"
	"github.com/cpmech/vlsolver/geom"
)

// DetectCommonTE discovers CommonTE pairs (§3 "CommonTE"): trailing-edge
// root nodes shared by two strands on different sheets, e.g. a wing-body
// junction or a nacelle lip. It bins every strand's root-node position
// with gosl/gm.Bins the way out.go bins node/integration-point coordinates
// for spatial lookup, then for each strand queries the bins for an
// already-seen root within tol; a hit on a *different* sheet is recorded
// as a CommonTE pair on both sheets. Populates st.Sheets[*].CommonTE and
// replaces any prior contents.
func DetectCommonTE(h *geom.Hierarchy, st *State, tol float64) error {
	for _, sh := range st.Sheets {
		sh.CommonTE = nil
	}

	type rootKey struct{ sheet, strand int }
	fine := h.Fine()

	var xi, xf [3]float64
	first := true
	for si, sh := range st.Sheets {
		for ti := range sh.Strands {
			n := fine.NodeByID(sh.Strands[ti].RootNode)
			if n == nil {
				return chk.Err("DetectCommonTE: strand %d on sheet %d roots at unknown node %d", ti, si, sh.Strands[ti].RootNode)
			}
			if first {
				xi, xf = n.X, n.X
				first = false
				continue
			}
			for d := 0; d < 3; d++ {
				if n.X[d] < xi[d] {
					xi[d] = n.X[d]
				}
				if n.X[d] > xf[d] {
					xf[d] = n.X[d]
				}
			}
		}
	}
	if first {
		return nil // no strands at all
	}
	for d := 0; d < 3; d++ {
		xi[d] -= tol
		xf[d] += tol
	}

	var bins gm.Bins
	bins.Init(xi[:], xf[:], 20)

	seen := make(map[int]rootKey) // bin-assigned sequential id -> owner
	id := 0
	for si, sh := range st.Sheets {
		for ti := range sh.Strands {
			n := fine.NodeByID(sh.Strands[ti].RootNode)
			hit := bins.Find(n.X[:])
			if hit >= 0 {
				owner := seen[hit]
				if owner.sheet != si {
					addCommonTE(st, owner.sheet, owner.strand, si, ti)
				}
			} else {
				if err := bins.Append(n.X[:], id); err != nil {
					return chk.Err("DetectCommonTE: bin append failed: %v", err)
				}
				seen[id] = rootKey{sheet: si, strand: ti}
				id++
			}
		}
	}
	return nil
}

func addCommonTE(st *State, sheetA, strandA, sheetB, strandB int) {
	pair := CommonTE{SheetA: sheetA + 1, StrandA: strandA, SheetB: sheetB + 1, StrandB: strandB}
	st.Sheets[sheetA].CommonTE = append(st.Sheets[sheetA].CommonTE, pair)
	st.Sheets[sheetB].CommonTE = append(st.Sheets[sheetB].CommonTE, pair)
}
