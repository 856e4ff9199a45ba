package linearize

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

func buildChainGraph() (*graph.Graph, *graph.Values) {
	g := graph.NewGraph()
	vs := graph.NewValues()

	k0, k1 := symbol.Make('x', 0), symbol.Make('x', 1)
	vs.Insert(k0, manifold.NewSO2(0))
	vs.Insert(k1, manifold.NewSO2(0))

	nmPrior, _ := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: 1}})
	prior := factor.NewPriorResidual(manifold.NewSO2(1.0))
	fp, _ := factor.New(prior, []symbol.Key{k0}, nmPrior, nil)
	g.Add(fp)

	nmBetween, _ := noise.New("gaussian-diagonal", fun.Prms{&fun.Prm{N: "dim", V: 1}, &fun.Prm{N: "sigma", V: 0.1}})
	between := factor.NewBetweenResidual(manifold.NewSO2(1.0))
	fb, _ := factor.New(between, []symbol.Key{k0, k1}, nmBetween, nil)
	g.Add(fb)

	return g, vs
}

func Test_assemble_determinism01(tst *testing.T) {

	chk.PrintTitle("assemble_determinism01. repeated Assemble on a fixed (Graph, Values) is byte-for-byte identical")

	g, vs := buildChainGraph()
	colmap, err := g.BuildColumnMap(vs)
	if err != nil {
		tst.Fatalf("BuildColumnMap: %v", err)
	}

	sys1, err := Assemble(g, vs, colmap)
	if err != nil {
		tst.Fatalf("Assemble: %v", err)
	}
	sys2, err := Assemble(g, vs, colmap)
	if err != nil {
		tst.Fatalf("Assemble: %v", err)
	}

	if sys1.Rows != sys2.Rows {
		tst.Fatalf("row count differs: %d vs %d", sys1.Rows, sys2.Rows)
	}
	for i := range sys1.R {
		chk.Scalar(tst, "r", 0, sys1.R[i], sys2.R[i])
	}
	if sys1.J.Len() != sys2.J.Len() {
		tst.Fatalf("nonzero count differs: %d vs %d", sys1.J.Len(), sys2.J.Len())
	}
}

func Test_assemble_skips_zero_weight_rows01(tst *testing.T) {

	chk.PrintTitle("assemble_skips_zero_weight_rows01. a factor forced to zero robust weight contributes no rows")

	g, vs := buildChainGraph()
	colmap, err := g.BuildColumnMap(vs)
	if err != nil {
		tst.Fatalf("BuildColumnMap: %v", err)
	}
	sys, err := Assemble(g, vs, colmap)
	if err != nil {
		tst.Fatalf("Assemble: %v", err)
	}
	if len(sys.SkippedFactors) != 0 {
		tst.Fatalf("expected no skipped factors at a generic linearization point, got %v", sys.SkippedFactors)
	}

	// same chain, but the between factor carries a Welsch kernel with
	// a = 0.1: its whitened residual is -10, so s/a² = 1e4 and the
	// weight exp(-1e4) underflows to exactly zero.
	gz := graph.NewGraph()
	gz.Add(g.Factors()[0])
	k0, k1 := symbol.Make('x', 0), symbol.Make('x', 1)
	nmBetween, _ := noise.New("gaussian-diagonal", fun.Prms{&fun.Prm{N: "dim", V: 1}, &fun.Prm{N: "sigma", V: 0.1}})
	fz, err := factor.New(factor.NewBetweenResidual(manifold.NewSO2(1.0)), []symbol.Key{k0, k1}, nmBetween, kernel.NewWelsch(0.1))
	if err != nil {
		tst.Fatalf("factor.New: %v", err)
	}
	gz.Add(fz)
	sysZ, err := Assemble(gz, vs, colmap)
	if err != nil {
		tst.Fatalf("Assemble: %v", err)
	}
	if len(sysZ.SkippedFactors) != 1 || sysZ.SkippedFactors[0] != 1 {
		tst.Fatalf("expected factor 1 to be skipped, got %v", sysZ.SkippedFactors)
	}
	if sysZ.Rows != 1 {
		tst.Fatalf("expected only the prior's row, got %d rows", sysZ.Rows)
	}
}
