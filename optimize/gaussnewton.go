package optimize

import "github.com/dpedroso-lab/factorgraph/graph"

// GaussNewton runs plain Gauss-Newton to convergence or the iteration
// cap, mutating values in place. If a step raises the error the step
// is still accepted (pure Gauss-Newton, per spec.md §4.8) but logged.
func GaussNewton(g *graph.Graph, values *graph.Values, opts Options) (*Report, error) {
	curErr, err := prepare(g, values)
	if err != nil {
		return nil, err
	}

	for iter := 0; iter < opts.MaxIterations; iter++ {
		sys, delta, err := linearizeAndSolve(g, values, opts.SolverName, 0)
		if err != nil {
			return &Report{FinalError: curErr, Iterations: iter, Reason: LMFailure}, err
		}
		values.Retract(sys.ColMap, delta)

		eb, err := g.ErrorBreakdown(values)
		if err != nil {
			return nil, err
		}
		newErr := eb.Total
		logRising(curErr, newErr)

		if reason, done := converged(curErr, newErr, opts); done {
			curErr = newErr
			return &Report{FinalError: curErr, Iterations: iter + 1, Reason: reason}, nil
		}
		curErr = newErr
	}
	return &Report{FinalError: curErr, Iterations: opts.MaxIterations, Reason: MaxIterations}, nil
}
