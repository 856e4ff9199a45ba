package optimize

import (
	"github.com/cpmech/gosl/io"

	"github.com/dpedroso-lab/factorgraph/graph"
	"github.com/dpedroso-lab/factorgraph/linearize"
	"github.com/dpedroso-lab/factorgraph/linsolve"
)

// LevenbergMarquardt runs damped Gauss-Newton to convergence, the
// iteration cap, or lm-failure, mutating values in place on every
// accepted step. Damping follows spec.md §4.8: divide by
// DecreaseFactor on acceptance, multiply by IncreaseFactor on
// rejection (including a Singular normal system), clamped to
// [LambdaMin, LambdaMax], giving up after MaxRejections within one
// iteration.
func LevenbergMarquardt(g *graph.Graph, values *graph.Values, opts Options) (*Report, error) {
	curErr, err := prepare(g, values)
	if err != nil {
		return nil, err
	}

	lambda := opts.InitialLambda

	for iter := 0; iter < opts.MaxIterations; iter++ {
		colmap, err := g.BuildColumnMap(values)
		if err != nil {
			return nil, err
		}
		sys, err := linearize.Assemble(g, values, colmap)
		if err != nil {
			return nil, err
		}

		accepted := false
		var acceptedErr float64
		var trial *graph.Values

		for rej := 0; rej < opts.MaxRejections; rej++ {
			A, b := linsolve.NormalEquations(sys, lambda)
			delta, serr := linsolve.Solve(opts.SolverName, A, b)
			if serr != nil {
				lambda = clampLambda(lambda*opts.IncreaseFactor, opts)
				io.PfYel("optimize: LM: Singular normal system, raising lambda to %.3e\n", lambda)
				continue
			}

			candidate := values.Clone()
			candidate.Retract(sys.ColMap, delta)
			eb, eerr := g.ErrorBreakdown(candidate)
			if eerr != nil {
				return nil, eerr
			}

			if eb.Total <= curErr {
				accepted = true
				acceptedErr = eb.Total
				trial = candidate
				lambda = clampLambda(lambda/opts.DecreaseFactor, opts)
				break
			}
			lambda = clampLambda(lambda*opts.IncreaseFactor, opts)
		}

		if !accepted {
			return &Report{FinalError: curErr, Iterations: iter, Reason: LMFailure}, nil
		}
		values.Assign(trial)

		if reason, done := converged(curErr, acceptedErr, opts); done {
			return &Report{FinalError: acceptedErr, Iterations: iter + 1, Reason: reason}, nil
		}
		curErr = acceptedErr
	}
	return &Report{FinalError: curErr, Iterations: opts.MaxIterations, Reason: MaxIterations}, nil
}

func clampLambda(lambda float64, opts Options) float64 {
	if lambda < opts.LambdaMin {
		return opts.LambdaMin
	}
	if lambda > opts.LambdaMax {
		return opts.LambdaMax
	}
	return lambda
}
