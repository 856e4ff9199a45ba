package optimize

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"

	"github.com/dpedroso-lab/factorgraph/factor"
	"github.com/dpedroso-lab/factorgraph/graph"
	"github.com/dpedroso-lab/factorgraph/kernel"
	"github.com/dpedroso-lab/factorgraph/manifold"
	"github.com/dpedroso-lab/factorgraph/noise"
	"github.com/dpedroso-lab/factorgraph/symbol"
)

// Test_options_from_prms01 checks OptionsFromPrms overrides named
// fields and leaves the rest at DefaultOptions, including the
// p.Extra-carried solver name.
func Test_options_from_prms01(tst *testing.T) {

	chk.PrintTitle("options_from_prms01. OptionsFromPrms overrides named fields, defaults the rest")

	opts := OptionsFromPrms(fun.Prms{
		&fun.Prm{N: "max-iterations", V: 7},
		&fun.Prm{N: "initial-lambda", V: 0.25},
		&fun.Prm{N: "solver", Extra: "mumps"},
	})
	def := DefaultOptions()

	chk.Scalar(tst, "MaxIterations", 0, float64(opts.MaxIterations), 7)
	chk.Scalar(tst, "InitialLambda", 0, opts.InitialLambda, 0.25)
	chk.Scalar(tst, "AbsTol", 0, opts.AbsTol, def.AbsTol)
	if opts.SolverName != "mumps" {
		tst.Fatalf("expected solver name %q, got %q", "mumps", opts.SolverName)
	}
}

// Test_scenario_single_so2_prior01 implements spec.md §8 scenario 1.
func Test_scenario_single_so2_prior01(tst *testing.T) {

	chk.PrintTitle("scenario_single_so2_prior01. GaussNewton converges in 1 iteration on a single SO2 prior")

	g := graph.NewGraph()
	vs := graph.NewValues()
	x0 := symbol.Make('x', 0)
	vs.Insert(x0, manifold.NewSO2(0))

	nm, err := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: 1}})
	if err != nil {
		tst.Fatalf("noise.New: %v", err)
	}
	f, err := factor.New(factor.NewPriorResidual(manifold.NewSO2(1.0)), []symbol.Key{x0}, nm, nil)
	if err != nil {
		tst.Fatalf("factor.New: %v", err)
	}
	g.Add(f)

	rep, err := GaussNewton(g, vs, DefaultOptions())
	if err != nil {
		tst.Fatalf("GaussNewton: %v", err)
	}
	if rep.Iterations != 1 {
		tst.Fatalf("expected 1 iteration, got %d", rep.Iterations)
	}
	chk.Scalar(tst, "final error", 1e-9, rep.FinalError, 0)

	got, _ := vs.Get(x0)
	chk.Scalar(tst, "X(0).Theta", 1e-8, got.(manifold.SO2).Theta, 1.0)
}

// Test_scenario_so2_between_chain01 implements spec.md §8 scenario 2.
func Test_scenario_so2_between_chain01(tst *testing.T) {

	chk.PrintTitle("scenario_so2_between_chain01. SO2 prior + Huber-weighted between chain converges to the consistent solution")

	g := graph.NewGraph()
	vs := graph.NewValues()
	x0, x1 := symbol.Make('x', 0), symbol.Make('x', 1)
	vs.Insert(x0, manifold.NewSO2(0))
	vs.Insert(x1, manifold.NewSO2(0))

	nmPrior, err := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: 1}})
	if err != nil {
		tst.Fatalf("noise.New: %v", err)
	}
	fp, err := factor.New(factor.NewPriorResidual(manifold.NewSO2(1.0)), []symbol.Key{x0}, nmPrior, nil)
	if err != nil {
		tst.Fatalf("factor.New(prior): %v", err)
	}
	g.Add(fp)

	nmBetween, err := noise.New("gaussian-diagonal", fun.Prms{&fun.Prm{N: "dim", V: 1}, &fun.Prm{N: "sigma", V: 0.1}})
	if err != nil {
		tst.Fatalf("noise.New: %v", err)
	}
	huber, err := kernel.New("huber", fun.Prms{&fun.Prm{N: "delta", V: 1.0}})
	if err != nil {
		tst.Fatalf("kernel.New: %v", err)
	}
	fb, err := factor.New(factor.NewBetweenResidual(manifold.NewSO2(1.0)), []symbol.Key{x0, x1}, nmBetween, huber)
	if err != nil {
		tst.Fatalf("factor.New(between): %v", err)
	}
	g.Add(fb)

	rep, err := GaussNewton(g, vs, DefaultOptions())
	if err != nil {
		tst.Fatalf("GaussNewton: %v", err)
	}
	chk.Scalar(tst, "final error", 1e-8, rep.FinalError, 0)

	got0, _ := vs.Get(x0)
	got1, _ := vs.Get(x1)
	chk.Scalar(tst, "X(0).Theta", 1e-6, got0.(manifold.SO2).Theta, 1.0)
	chk.Scalar(tst, "X(1).Theta", 1e-6, got1.(manifold.SO2).Theta, 2.0)
}

// Test_gn_converges_linear01 checks the "Gauss-Newton on a purely
// linear (vector-space) problem converges in <=2 iterations to the
// closed-form least-squares solution" invariant from spec.md §8.
func Test_gn_converges_linear01(tst *testing.T) {

	chk.PrintTitle("gn_converges_linear01. GaussNewton converges in <=2 iterations on a linear vector problem")

	g := graph.NewGraph()
	vs := graph.NewValues()
	x0 := symbol.Make('v', 0)
	vs.Insert(x0, manifold.NewVectorVarN([]float64{0, 0}))

	nm, err := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: 2}})
	if err != nil {
		tst.Fatalf("noise.New: %v", err)
	}
	target := manifold.NewVectorVarN([]float64{3.5, -2.1})
	f, err := factor.New(factor.NewPriorResidual(target), []symbol.Key{x0}, nm, nil)
	if err != nil {
		tst.Fatalf("factor.New: %v", err)
	}
	g.Add(f)

	rep, err := GaussNewton(g, vs, DefaultOptions())
	if err != nil {
		tst.Fatalf("GaussNewton: %v", err)
	}
	if rep.Iterations > 2 {
		tst.Fatalf("expected convergence within 2 iterations, got %d", rep.Iterations)
	}
	got, _ := vs.Get(x0)
	chk.Vector(tst, "X(0)", 1e-8, got.(manifold.VectorVarN).V, target.V)
}

// Test_lm_never_increases_error01 checks "LM never increases the error
// upon step acceptance" from spec.md §8 across a small chain problem.
func Test_lm_never_increases_error01(tst *testing.T) {

	chk.PrintTitle("lm_never_increases_error01. LM's final error never exceeds the initial error")

	g := graph.NewGraph()
	vs := graph.NewValues()
	x0, x1 := symbol.Make('x', 0), symbol.Make('x', 1)
	vs.Insert(x0, manifold.NewSO2(0.3))
	vs.Insert(x1, manifold.NewSO2(-0.4))

	nmPrior, _ := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: 1}})
	fp, _ := factor.New(factor.NewPriorResidual(manifold.NewSO2(1.0)), []symbol.Key{x0}, nmPrior, nil)
	g.Add(fp)

	nmBetween, _ := noise.New("gaussian-diagonal", fun.Prms{&fun.Prm{N: "dim", V: 1}, &fun.Prm{N: "sigma", V: 0.1}})
	fb, _ := factor.New(factor.NewBetweenResidual(manifold.NewSO2(1.0)), []symbol.Key{x0, x1}, nmBetween, nil)
	g.Add(fb)

	startErr, err := prepare(g, vs.Clone())
	if err != nil {
		tst.Fatalf("prepare: %v", err)
	}

	rep, err := LevenbergMarquardt(g, vs, DefaultOptions())
	if err != nil {
		tst.Fatalf("LevenbergMarquardt: %v", err)
	}
	if rep.FinalError > startErr+1e-12 {
		tst.Fatalf("LM final error %v exceeds starting error %v", rep.FinalError, startErr)
	}
}
