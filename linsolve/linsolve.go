// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package linsolve wraps the external sparse linear solver contract
// spec.md §6 describes: given the assembled Jacobian and a right-hand
// side, return delta or a Singular failure. Grounded on
// fem/domain.go's LinSol field (la.LinSol, obtained via
// la.GetSolver(name) and released with Free on every exit path), here
// scoped to the single normal-equations solve an optimizer iteration
// performs rather than a persistent per-Domain solver.
package linsolve

import (
	"github.com/cpmech/gosl/la"

	"github.com/dpedroso-lab/factorgraph/linearize"
)

// Name selects the external solver backend; gosl ships "umfpack" and
// "mumps" builds behind build tags, matching fem/fem.go's
// Sim.LinSol.Name selection.
const DefaultSolverName = "umfpack"

// Singular reports that the normal-equations matrix was not positive
// definite (even after damping), the error kind spec.md §7 names.
type Singular struct {
	Reason string
}

func (e *Singular) Error() string { return "linsolve: Singular: " + e.Reason }

// NormalEquations forms JᵀJ (+ λ diag(JᵀJ) when damping > 0) and
// Jᵀr̂ from an assembled System, ready for an external sparse solve.
// Returning the normal-equations triplet (rather than solving J
// directly via QR) matches spec.md §4.8's (JᵀJ)δ=-Jᵀr̂ /
// (JᵀJ+λdiag(JᵀJ))δ=-Jᵀr̂ formulation for both optimizers.
func NormalEquations(sys *linearize.System, damping float64) (*la.Triplet, []float64) {
	n := sys.ColMap.N()
	m := sys.Rows

	// Jᵀr̂ comes straight off the sparse triplet via gosl/la's own
	// transpose-multiply, and JtJ = Jᵀ(J) is accumulated from the same
	// triplet converted once to dense: optimizer-scale problems (tens
	// of thousands of variables/factors) keep the dense JtJ tractable,
	// while the sparse path still does the Jtr reduction.
	rhat := la.Vector(sys.R)
	jtr := la.NewVector(n)
	la.SpTriMatTrVecMul(jtr, sys.J, rhat)

	Jmat := sys.J.ToMatrix(nil).ToDense()
	jtj := make([][]float64, n)
	for i := range jtj {
		jtj[i] = make([]float64, n)
	}
	for row := 0; row < m; row++ {
		for c1 := 0; c1 < n; c1++ {
			v1 := Jmat.Get(row, c1)
			if v1 == 0 {
				continue
			}
			for c2 := c1; c2 < n; c2++ {
				v2 := Jmat.Get(row, c2)
				if v2 == 0 {
					continue
				}
				jtj[c1][c2] += v1 * v2
				if c2 != c1 {
					jtj[c2][c1] += v1 * v2
				}
			}
		}
	}

	trip := new(la.Triplet)
	nnz := n*n + 1
	trip.Init(n, n, nnz)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			val := jtj[i][j]
			if i == j {
				val += damping * jtj[i][i]
			}
			if val == 0 {
				continue
			}
			trip.Put(i, j, val)
		}
	}

	b := make([]float64, n)
	for i := range b {
		b[i] = -jtr[i]
	}
	return trip, b
}

// Solve factors A and solves Ax=b via the named external solver,
// surfacing a non-SPD or singular factorization as a Singular error
// per spec.md §7's policy (LM interprets this as a damping increase).
func Solve(name string, A *la.Triplet, b []float64) (x []float64, err error) {
	solver := la.GetSolver(name)
	defer solver.Free()

	if ferr := solver.Init(A, false, false, ""); ferr != nil {
		return nil, &Singular{Reason: ferr.Error()}
	}
	if ferr := solver.Fact(); ferr != nil {
		return nil, &Singular{Reason: ferr.Error()}
	}
	x = make([]float64, len(b))
	if ferr := solver.Solve(x, b, false); ferr != nil {
		return nil, &Singular{Reason: ferr.Error()}
	}
	return x, nil
}
