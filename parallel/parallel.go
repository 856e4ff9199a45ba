// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package parallel fans Factor.Linearize calls out across goroutines
// (and, when running under MPI, across processes) instead of walking
// the graph's factors one at a time the way linearize.Assemble does.
// Grounded on fem.go's Nproc/Proc partitioning: that code divides a
// simulation's domains across MPI ranks and falls back to a single
// serial process when MPI is off; here the same two-tier split applies
// to a graph's factor list, with goroutines standing in for a single
// process's worker pool.
package parallel

import (
	"runtime"
	"sync"

	"github.com/cpmech/gosl/la"

	"github.com/dpedroso-lab/factorgraph/factor"
	"github.com/dpedroso-lab/factorgraph/graph"
	"github.com/dpedroso-lab/factorgraph/linearize"
)

// DefaultWorkers returns runtime.NumCPU(), the goroutine-pool analogue
// of fem.go's o.Nproc defaulting to every available processor when MPI
// is off.
func DefaultWorkers() int { return runtime.NumCPU() }

// Linearize reproduces linearize.Assemble's System, evaluating each
// factor's Factor.Linearize concurrently across workers goroutines
// working disjoint, contiguous index ranges of g.Factors(). workers<=1
// or fewer factors than workers falls back to linearize.Assemble
// directly, since the goroutine fan-out only pays for itself once
// there is enough work to split.
func Linearize(g *graph.Graph, values *graph.Values, colmap *graph.ColumnMap, workers int) (*linearize.System, error) {
	factors := g.Factors()
	if workers <= 1 || len(factors) < workers {
		return linearize.Assemble(g, values, colmap)
	}

	lins := make([]*factor.Linearized, len(factors))
	errs := make([]error, len(factors))

	chunk := (len(factors) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		if start >= len(factors) {
			break
		}
		end := start + chunk
		if end > len(factors) {
			end = len(factors)
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				lin, err := factors[i].Linearize(values)
				if err != nil {
					errs[i] = err
					continue
				}
				lins[i] = lin
			}
		}(start, end)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return assembleFrom(lins, colmap)
}

// assembleFrom mirrors linearize.Assemble's second pass (row offset
// accounting, skip zero-weight factors, Put into a fresh Triplet) over
// already-computed Linearized results, since the concurrent first
// pass above has already produced them.
func assembleFrom(lins []*factor.Linearized, colmap *graph.ColumnMap) (*linearize.System, error) {
	rows := 0
	nnzEstimate := 0
	var skipped []int
	offsets := make([]int, len(lins))
	for i, lin := range lins {
		if lin.Weight == 0 {
			skipped = append(skipped, i)
			continue
		}
		offsets[i] = rows
		rows += len(lin.Rhat)
		for _, b := range lin.Blocks {
			nnzEstimate += len(b.J) * colmap.Width(b.Key)
		}
	}

	n := colmap.N()
	trip := new(la.Triplet)
	trip.Init(rows, n, nnzEstimate+1)
	r := make([]float64, rows)

	skippedSet := make(map[int]bool, len(skipped))
	for _, i := range skipped {
		skippedSet[i] = true
	}
	for i, lin := range lins {
		if skippedSet[i] {
			continue
		}
		rowOffset := offsets[i]
		for row, x := range lin.Rhat {
			r[rowOffset+row] = x
		}
		for _, b := range lin.Blocks {
			col, ok := colmap.Offset(b.Key)
			if !ok {
				continue
			}
			for row := range b.J {
				for c := range b.J[row] {
					if b.J[row][c] == 0 {
						continue
					}
					trip.Put(rowOffset+row, col+c, b.J[row][c])
				}
			}
		}
	}

	return &linearize.System{J: trip, R: r, ColMap: colmap, Rows: rows, SkippedFactors: skipped}, nil
}
