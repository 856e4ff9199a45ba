// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package optimize implements Gauss-Newton and Levenberg-Marquardt over
// a graph.Graph/graph.Values pair, sharing one convergence test and
// Report type per spec.md §4.8. Grounded in structure (solve, update,
// re-evaluate, test convergence, loop) on
// other_examples/978248c2_gonum-gonum__optimize-nlls-lmopt.go.go's LM
// driver, adapted to spec.md's damping/acceptance rules rather than
// gonum's Marquardt nu-doubling scheme, and reusing this repository's
// own graph/linearize/linsolve stack instead of gonum's dense mat.Dense
// normal-equations path.
package optimize

import (
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/io"

	"github.com/dpedroso-lab/factorgraph/graph"
	"github.com/dpedroso-lab/factorgraph/linearize"
	"github.com/dpedroso-lab/factorgraph/linsolve"
)

// TerminationReason identifies why an optimizer run stopped.
type TerminationReason string

const (
	ConvergedAbsolute TerminationReason = "converged-absolute"
	ConvergedRelative TerminationReason = "converged-relative"
	MaxIterations     TerminationReason = "max-iterations"
	LMFailure         TerminationReason = "lm-failure"
)

// Report is returned by both optimizers: final error, iteration count,
// and why the run stopped.
type Report struct {
	FinalError float64
	Iterations int
	Reason     TerminationReason
}

// Options configures either optimizer; zero-value Options is invalid,
// use DefaultOptions as a base.
type Options struct {
	MaxIterations int
	AbsTol        float64
	RelTol        float64

	// Levenberg-Marquardt only.
	InitialLambda  float64
	LambdaMin      float64
	LambdaMax      float64
	DecreaseFactor float64
	IncreaseFactor float64
	MaxRejections  int

	SolverName string
}

// DefaultOptions returns the defaults spec.md §4.8 names.
func DefaultOptions() Options {
	return Options{
		MaxIterations:  100,
		AbsTol:         1e-10,
		RelTol:         1e-8,
		InitialLambda:  1e-5,
		LambdaMin:      1e-20,
		LambdaMax:      1e20,
		DecreaseFactor: 2,
		IncreaseFactor: 3,
		MaxRejections:  5,
		SolverName:     linsolve.DefaultSolverName,
	}
}

// OptionsFromPrms builds Options from a named-parameter record the way
// mdl/solid/model.go's Model.Init(ndim, pstress, prms fun.Prms)
// populates a model struct from prms: start from DefaultOptions and
// override whatever named fields prms carries, leaving the rest at
// their defaults. The solver name, being a string rather than a
// float64 value, rides in p.Extra under the name "solver", the way
// mdl/solid/elasticity.go reads p.Extra for its "kgc" sub-model name.
func OptionsFromPrms(prms fun.Prms) Options {
	opts := DefaultOptions()
	for _, p := range prms {
		switch p.N {
		case "max-iterations":
			opts.MaxIterations = int(p.V)
		case "abs-tol":
			opts.AbsTol = p.V
		case "rel-tol":
			opts.RelTol = p.V
		case "initial-lambda":
			opts.InitialLambda = p.V
		case "lambda-min":
			opts.LambdaMin = p.V
		case "lambda-max":
			opts.LambdaMax = p.V
		case "decrease-factor":
			opts.DecreaseFactor = p.V
		case "increase-factor":
			opts.IncreaseFactor = p.V
		case "max-rejections":
			opts.MaxRejections = int(p.V)
		case "solver":
			if p.Extra != "" {
				opts.SolverName = p.Extra
			}
		}
	}
	return opts
}

// converged applies the shared (a)/(b) convergence test of spec.md
// §4.8: absolute or relative error change below tolerance. An error
// that has itself dropped to (near) zero also counts as an absolute
// convergence, covering the exact-solution-in-one-step case (a purely
// linear problem, or a prior anchoring an otherwise free variable)
// where the error CHANGE is large precisely because the step solved
// the problem exactly.
func converged(prevErr, curErr float64, opts Options) (TerminationReason, bool) {
	if curErr < opts.AbsTol {
		return ConvergedAbsolute, true
	}
	absChange := prevErr - curErr
	if absChange < 0 {
		absChange = -absChange
	}
	if absChange < opts.AbsTol {
		return ConvergedAbsolute, true
	}
	if prevErr != 0 {
		relChange := absChange / prevErr
		if relChange < opts.RelTol {
			return ConvergedRelative, true
		}
	}
	return "", false
}

// prepare validates keys (fatal TypeMismatch/MissingKey before any
// iteration, per spec.md §7) and returns the current total error.
func prepare(g *graph.Graph, values *graph.Values) (float64, error) {
	if err := g.CheckKeys(values); err != nil {
		return 0, err
	}
	eb, err := g.ErrorBreakdown(values)
	if err != nil {
		return 0, err
	}
	return eb.Total, nil
}

func linearizeAndSolve(g *graph.Graph, values *graph.Values, solverName string, damping float64) (*linearize.System, []float64, error) {
	colmap, err := g.BuildColumnMap(values)
	if err != nil {
		return nil, nil, err
	}
	sys, err := linearize.Assemble(g, values, colmap)
	if err != nil {
		return nil, nil, err
	}
	A, b := linsolve.NormalEquations(sys, damping)
	delta, err := linsolve.Solve(solverName, A, b)
	if err != nil {
		return sys, nil, err
	}
	return sys, delta, nil
}

func logRising(prev, cur float64) {
	if cur > prev {
		io.PfYel("optimize: warning: Gauss-Newton error rose from %.6e to %.6e (step accepted)\n", prev, cur)
	}
}
