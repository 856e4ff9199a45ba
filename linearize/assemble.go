// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package linearize assembles a Graph's per-factor linearizations into
// a single sparse Jacobian and residual vector ready for an external
// sparse solve, following the column-map-then-walk-factors contract in
// spec.md §4.7. Grounded on fem/domain.go's SetupKb/FemOut-style
// Jacobian assembly, which walks active elements and Puts each local
// block into a shared la.Triplet at the equation numbers found in its
// own local-to-global map.
package linearize

import (
	"github.com/cpmech/gosl/la"

	"github.com/dpedroso-lab/factorgraph/factor"
	"github.com/dpedroso-lab/factorgraph/graph"
)

// System is the assembled linear system for one linearization point: a
// sparse m x N Jacobian (m = sum of factor residual dims not skipped,
// N = column map width) and the matching whitened, robust-weighted
// residual vector of length m.
type System struct {
	J              *la.Triplet // m x ColMap.N() sparse Jacobian; linsolve reduces this directly via ToMatrix(nil).ToDense()/la.SpTriMatTrVecMul
	R              []float64   // length m, whitened+weighted residual r̂
	ColMap         *graph.ColumnMap
	Rows           int
	SkippedFactors []int // indices of factors skipped because their robust weight was exactly zero
}

// Assemble walks g's factors in insertion order, linearizes each at
// values, and places its whitened/weighted residual and Jacobian
// blocks at the row offset implied by insertion order and the column
// offsets recorded in colmap. A factor whose robust weight is exactly
// zero contributes no rows, per spec.md §4.7's "rows ... may be
// skipped"; skipping it entirely (rather than writing zero rows) keeps
// the assembled system free of structurally-zero rows the solver would
// otherwise have to carry.
func Assemble(g *graph.Graph, values *graph.Values, colmap *graph.ColumnMap) (*System, error) {
	factors := g.Factors()

	// first pass: linearize everything and count surviving rows, so the
	// triplet can be sized once instead of growing.
	lins := make([]*factorLin, len(factors))
	rows := 0
	nnzEstimate := 0
	var skipped []int
	for i, f := range factors {
		lin, err := f.Linearize(values)
		if err != nil {
			return nil, err
		}
		if lin.Weight == 0 {
			skipped = append(skipped, i)
			continue
		}
		lins[i] = &factorLin{lin: lin, rowOffset: rows}
		rows += len(lin.Rhat)
		for _, b := range lin.Blocks {
			nnzEstimate += len(b.J) * colmap.Width(b.Key)
		}
	}

	n := colmap.N()
	trip := new(la.Triplet)
	trip.Init(rows, n, nnzEstimate+1)
	r := make([]float64, rows)

	for _, fl := range lins {
		if fl == nil {
			continue
		}
		for row, x := range fl.lin.Rhat {
			r[fl.rowOffset+row] = x
		}
		for _, b := range fl.lin.Blocks {
			col, ok := colmap.Offset(b.Key)
			if !ok {
				continue
			}
			for row := range b.J {
				for c := range b.J[row] {
					if b.J[row][c] == 0 {
						continue
					}
					trip.Put(fl.rowOffset+row, col+c, b.J[row][c])
				}
			}
		}
	}

	return &System{J: trip, R: r, ColMap: colmap, Rows: rows, SkippedFactors: skipped}, nil
}

type factorLin struct {
	lin       *factor.Linearized
	rowOffset int
}
