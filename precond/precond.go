// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package precond implements the §4.F block preconditioner for GMRES: a
// coarse-level partition into roughly-equal blocks of fine loops, a dense
// LU factorization per block (via gonum/mat, since gosl's la.LinSol targets
// whole-system sparse direct solves rather than ~500x500 dense blocks), and
// two simpler alternatives (Jacobi, edge-SSOR).
package precond

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/mat"

	"github.com/cpmech/vlsolver/concur"
	"github.com/cpmech/vlsolver/config"
	"github.com/cpmech/vlsolver/geom"
)

// Block is one partition of fine loops sharing a common coarse-level
// ancestor, plus its factored local operator.
type Block struct {
	Loops []int // level-1 loop ids in this block, ascending
	index map[int]int
	lu    *mat.LU
	n     int
}

// MatVecFunc probes the operator one unit column at a time (§4.F: "for
// each block form the local dense sub-matrix"); Operator.MatVec plays this
// role directly when called with an otherwise-zero x.
type MatVecFunc func(y, x []float64)

// Preconditioner applies M^-1 to a residual vector during GMRES.
type Preconditioner interface {
	Apply(z, r []float64)
}

// BlockLU is the §4.F primary preconditioner: independent dense-LU blocks.
type BlockLU struct {
	Blocks  []*Block
	NLoops  int
	NGroups int
}

// Partition walks the coarse hierarchy to choose a level l* whose parents
// each cover at most BlockSizeSlack*BlockSize fine loops, then bins fine
// loops by l*-ancestor so each resulting block holds roughly BlockSize
// loops without splitting a coarse parent across two blocks.
func Partition(h *geom.Hierarchy, cfg *config.Config) ([]*Block, error) {
	target := float64(cfg.Solver.BlockSize)
	maxSize := cfg.Solver.BlockSizeSlack * target

	lStar, err := chooseLevel(h, maxSize)
	if err != nil {
		return nil, err
	}

	lv := h.Level(lStar)
	fine := h.Fine()

	// group fine loop ids by their lStar-level ancestor
	ancestorOf := make(map[int]int, len(fine.Loops))
	for i := range fine.Loops {
		id := fine.Loops[i].ID
		ancestorOf[id] = ancestor(h, lStar, id)
	}
	byAncestor := make(map[int][]int)
	for id, anc := range ancestorOf {
		byAncestor[anc] = append(byAncestor[anc], id)
	}

	var blocks []*Block
	var cur []int
	for i := range lv.Loops {
		aid := lv.Loops[i].ID
		ids := byAncestor[aid]
		if len(ids) == 0 {
			continue
		}
		if len(cur)+len(ids) > int(maxSize) && len(cur) > 0 {
			blocks = append(blocks, newBlock(cur))
			cur = nil
		}
		cur = append(cur, ids...)
	}
	if len(cur) > 0 {
		blocks = append(blocks, newBlock(cur))
	}
	return blocks, nil
}

func newBlock(ids []int) *Block {
	sort.Ints(ids)
	idx := make(map[int]int, len(ids))
	for i, id := range ids {
		idx[id] = i
	}
	return &Block{Loops: ids, index: idx, n: len(ids)}
}

// ancestor walks ParentLoop links from level 1 up to level l.
func ancestor(h *geom.Hierarchy, l int, loopID int) int {
	id := loopID
	for lv := 1; lv < l; lv++ {
		loop := h.Level(lv).LoopByID(id)
		if loop == nil || loop.ParentLoop == 0 {
			return id
		}
		id = loop.ParentLoop
	}
	return id
}

// chooseLevel finds the coarsest level such that every parent's fine-loop
// descendant count is <= maxSize, falling back to the coarsest level if
// none qualifies (a single oversized block is still correct, just slower
// to apply).
func chooseLevel(h *geom.Hierarchy, maxSize float64) (int, error) {
	L := h.NumLevels()
	if L < 2 {
		return 0, chk.Err("precond: hierarchy must have at least 2 levels, got %d", L)
	}
	for l := L; l >= 2; l-- {
		if descendantCountsOK(h, l, maxSize) {
			return l, nil
		}
	}
	return L, nil
}

func descendantCountsOK(h *geom.Hierarchy, l int, maxSize float64) bool {
	lv := h.Level(l)
	for i := range lv.Loops {
		if float64(countDescendants(h, l, lv.Loops[i].ID)) > maxSize {
			return false
		}
	}
	return true
}

func countDescendants(h *geom.Hierarchy, l int, loopID int) int {
	if l == 1 {
		return 1
	}
	loop := h.Level(l).LoopByID(loopID)
	if loop == nil {
		return 0
	}
	n := 0
	for _, cid := range loop.ChildLoops {
		n += countDescendants(h, l-1, cid)
	}
	return n
}

// Factor builds and LU-factors A_k for every block by probing vec with one
// unit column per block loop (§4.F). baseLoops marks loops whose row is
// replaced by the identity (base region, §4.H). n is the number of fine
// loops; the probe vectors are 1-based (index 0 unused). Trailing-edge loops
// are not special-cased: vec is probed as given, so whatever TE-edge terms
// it includes end up in A_k; TE edges are not excluded here.
func Factor(blocks []*Block, n int, vec MatVecFunc, baseLoops map[int]bool) error {
	x := make([]float64, n+1)
	y := make([]float64, n+1)
	for _, blk := range blocks {
		dense := mat.NewDense(blk.n, blk.n, nil)
		for jj, jid := range blk.Loops {
			for i := range x {
				x[i] = 0
			}
			x[jid] = 1.0
			vec(y, x)
			for ii, iid := range blk.Loops {
				if baseLoops[iid] {
					dense.Set(ii, jj, boolToF(ii == jj))
					continue
				}
				dense.Set(ii, jj, y[iid])
			}
		}
		var lu mat.LU
		lu.Factorize(dense)
		blk.lu = &lu
	}
	return nil
}

func boolToF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Apply solves each block's A_k z_k = r_k independently. Blocks own
// disjoint loop-id ranges, so each worker only ever writes z[id] for ids
// in its own block (owner-computes, §5) — safe to run concurrently.
func (p *BlockLU) Apply(z, r []float64) {
	for i := range z {
		z[i] = r[i]
	}
	concur.Range(len(p.Blocks), func(lo, hi int) {
		for bi := lo; bi < hi; bi++ {
			blk := p.Blocks[bi]
			rk := mat.NewDense(blk.n, 1, nil)
			for jj, id := range blk.Loops {
				rk.Set(jj, 0, r[id])
			}
			zk := mat.NewDense(blk.n, 1, nil)
			if err := blk.lu.SolveTo(zk, false, rk); err != nil {
				continue // singular block: leave z_k = r_k (identity fallback)
			}
			for jj, id := range blk.Loops {
				z[id] = zk.At(jj, 0)
			}
		}
	})
}

// Jacobi is the §4.F diagonal alternative: z_i = omega * r_i / A_ii.
type Jacobi struct {
	Diag  []float64 // indexed by loop id, 1-based (index 0 unused)
	Omega float64
}

// NewJacobi probes the diagonal of the operator (A_ii for every loop id in
// 1..n) via one unit-vector mat-vec per loop.
func NewJacobi(n int, vec MatVecFunc, omega float64) *Jacobi {
	diag := make([]float64, n+1)
	x := make([]float64, n+1)
	y := make([]float64, n+1)
	for i := 1; i <= n; i++ {
		for j := range x {
			x[j] = 0
		}
		x[i] = 1
		vec(y, x)
		diag[i] = y[i]
	}
	return &Jacobi{Diag: diag, Omega: omega}
}

func (j *Jacobi) Apply(z, r []float64) {
	for i := range z {
		if i < len(j.Diag) && j.Diag[i] != 0 {
			z[i] = j.Omega * r[i] / j.Diag[i]
		} else {
			z[i] = r[i]
		}
	}
}

// EdgeCoef is one precomputed forward/backward sweep coefficient for the
// edge-SSOR alternative.
type EdgeCoef struct {
	Loop, Neighbor int
	Coef           float64
}

// EdgeSSOR performs forward-then-backward Gauss-Seidel sweeps over
// precomputed edge coefficients (§4.F).
type EdgeSSOR struct {
	Diag  []float64
	Edges []EdgeCoef
	Omega float64
}

// NewEdgeSSOR builds the neighbor coefficient table from the finest-level
// loop adjacency (shared edges), probing the operator's off-diagonal entry
// for each adjacency once.
func NewEdgeSSOR(h *geom.Hierarchy, n int, vec MatVecFunc, omega float64) *EdgeSSOR {
	fine := h.Fine()
	diag := make([]float64, n+1)
	x := make([]float64, n+1)
	y := make([]float64, n+1)
	for i := 1; i <= n; i++ {
		for j := range x {
			x[j] = 0
		}
		x[i] = 1
		vec(y, x)
		diag[i] = y[i]
	}
	seen := make(map[[2]int]bool)
	var edges []EdgeCoef
	for i := range fine.Loops {
		loop := &fine.Loops[i]
		for _, eid := range loop.Edges {
			e := fine.EdgeByID(eid)
			if e == nil || e.TE {
				continue
			}
			var nb int
			if e.LeftLoop == loop.ID {
				nb = e.RightLoop
			} else {
				nb = e.LeftLoop
			}
			if nb == 0 || nb == loop.ID {
				continue
			}
			key := [2]int{loop.ID, nb}
			if seen[key] {
				continue
			}
			seen[key] = true
			for j := range x {
				x[j] = 0
			}
			x[nb] = 1
			vec(y, x)
			edges = append(edges, EdgeCoef{Loop: loop.ID, Neighbor: nb, Coef: y[loop.ID]})
		}
	}
	return &EdgeSSOR{Diag: diag, Edges: edges, Omega: omega}
}

func (s *EdgeSSOR) Apply(z, r []float64) {
	for i := range z {
		z[i] = r[i]
	}
	adj := make(map[int][]EdgeCoef)
	for _, ec := range s.Edges {
		adj[ec.Loop] = append(adj[ec.Loop], ec)
		adj[ec.Neighbor] = append(adj[ec.Neighbor], EdgeCoef{Loop: ec.Neighbor, Neighbor: ec.Loop, Coef: ec.Coef})
	}
	// forward sweep
	for i := 1; i < len(s.Diag); i++ {
		if s.Diag[i] == 0 {
			continue
		}
		sum := r[i]
		for _, ec := range adj[i] {
			sum -= ec.Coef * z[ec.Neighbor]
		}
		z[i] = s.Omega * sum / s.Diag[i]
	}
	// backward sweep
	for i := len(s.Diag) - 1; i >= 1; i-- {
		if s.Diag[i] == 0 {
			continue
		}
		sum := r[i]
		for _, ec := range adj[i] {
			sum -= ec.Coef * z[ec.Neighbor]
		}
		z[i] = s.Omega * sum / s.Diag[i]
	}
}
