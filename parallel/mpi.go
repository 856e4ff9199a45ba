// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package parallel

import (
	"github.com/cpmech/gosl/mpi"

	"github.com/dpedroso-lab/factorgraph/graph"
	"github.com/dpedroso-lab/factorgraph/linearize"
	"github.com/dpedroso-lab/factorgraph/linsolve"
)

// MPILinearize mirrors fem.go's mpi.IsOn()/mpi.Rank()/mpi.Size() guard:
// off MPI, it falls back to the goroutine-parallel Linearize; under
// MPI, each rank assembles only its own contiguous slice of the
// graph's factors (using the full column map, so column numbering
// stays global across ranks) and the caller hands the resulting
// per-rank partial System to a distributed solver. Combining the
// per-rank partial Systems into one global solve is the distributed
// solver's job, the same division of responsibility fem.go draws by
// switching Sim.LinSol.Name to "mumps" and otherwise not touching the
// assembly path itself.
func MPILinearize(g *graph.Graph, values *graph.Values, colmap *graph.ColumnMap) (sys *linearize.System, solverName string, err error) {
	solverName = linsolve.DefaultSolverName
	if !mpi.IsOn() {
		sys, err = Linearize(g, values, colmap, DefaultWorkers())
		return
	}
	proc, nproc := mpi.Rank(), mpi.Size()
	if nproc > 1 {
		solverName = "mumps"
	}
	lo, hi := rangeFor(proc, nproc, g.Len())
	local := graph.NewGraph()
	for _, f := range g.Factors()[lo:hi] {
		local.Add(f)
	}
	sys, err = linearize.Assemble(local, values, colmap)
	return
}

// rangeFor divides n items into nproc contiguous, near-equal chunks
// and returns the [lo, hi) slice owned by proc.
func rangeFor(proc, nproc, n int) (lo, hi int) {
	chunk := (n + nproc - 1) / nproc
	lo = proc * chunk
	if lo > n {
		lo = n
	}
	hi = lo + chunk
	if hi > n {
		hi = n
	}
	return
}
