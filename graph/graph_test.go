package graph

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"

	"github.com/dpedroso-lab/factorgraph/factor"
	"github.com/dpedroso-lab/factorgraph/manifold"
	"github.com/dpedroso-lab/factorgraph/noise"
	"github.com/dpedroso-lab/factorgraph/symbol"
)

func Test_values_type_mismatch01(tst *testing.T) {

	chk.PrintTitle("values_type_mismatch01. Insert rejects a key re-typed to a different Variable")

	vs := NewValues()
	k := symbol.Make('x', 0)
	if err := vs.Insert(k, manifold.NewSO2(0)); err != nil {
		tst.Fatalf("first insert: %v", err)
	}
	if err := vs.Insert(k, manifold.NewVectorVarN([]float64{1, 2})); err == nil {
		tst.Fatalf("expected TypeMismatch error")
	}
	if err := vs.Insert(k, manifold.NewSO2(1.5)); err != nil {
		tst.Fatalf("re-inserting the same type should be fine: %v", err)
	}
}

func Test_values_each_ordering01(tst *testing.T) {

	chk.PrintTitle("values_each_ordering01. Each visits keys in ascending order")

	vs := NewValues()
	vs.Insert(symbol.Make('x', 3), manifold.NewSO2(0))
	vs.Insert(symbol.Make('x', 1), manifold.NewSO2(0))
	vs.Insert(symbol.Make('x', 2), manifold.NewSO2(0))

	var seen []symbol.Key
	vs.Each(func(k symbol.Key, v manifold.Variable) { seen = append(seen, k) })
	for i := 1; i < len(seen); i++ {
		if !(seen[i-1] < seen[i]) {
			tst.Fatalf("keys not in ascending order: %v", seen)
		}
	}
}

func Test_graph_missing_key01(tst *testing.T) {

	chk.PrintTitle("graph_missing_key01. CheckKeys surfaces MissingKey before any iteration")

	g := NewGraph()
	k0 := symbol.Make('x', 0)
	res := factor.NewPriorResidual(manifold.NewSO2(1.0))
	nm, _ := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: 1}})
	f, err := factor.New(res, []symbol.Key{k0}, nm, nil)
	if err != nil {
		tst.Fatalf("factor.New: %v", err)
	}
	g.Add(f)

	vs := NewValues()
	if err := g.CheckKeys(vs); err == nil {
		tst.Fatalf("expected MissingKey error")
	}
	vs.Insert(k0, manifold.NewSO2(0))
	if err := g.CheckKeys(vs); err != nil {
		tst.Fatalf("CheckKeys: %v", err)
	}
}

func Test_column_map01(tst *testing.T) {

	chk.PrintTitle("column_map01. BuildColumnMap assigns offsets in first-seen order")

	g := NewGraph()
	k0, k1 := symbol.Make('x', 0), symbol.Make('x', 1)
	vs := NewValues()
	vs.Insert(k0, manifold.NewSO2(0))
	vs.Insert(k1, manifold.NewSO2(0))

	prior := factor.NewPriorResidual(manifold.NewSO2(1.0))
	nmPrior, _ := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: 1}})
	f0, _ := factor.New(prior, []symbol.Key{k0}, nmPrior, nil)

	between := factor.NewBetweenResidual(manifold.NewSO2(1.0))
	nmBetween, _ := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: 1}})
	f1, _ := factor.New(between, []symbol.Key{k0, k1}, nmBetween, nil)

	g.Add(f0)
	g.Add(f1)

	cm, err := g.BuildColumnMap(vs)
	if err != nil {
		tst.Fatalf("BuildColumnMap: %v", err)
	}
	off0, _ := cm.Offset(k0)
	off1, _ := cm.Offset(k1)
	chk.Scalar(tst, "off(x0)", 0, float64(off0), 0)
	chk.Scalar(tst, "off(x1)", 0, float64(off1), 1)
	chk.Scalar(tst, "N", 0, float64(cm.N()), 2)
}

func Test_error_breakdown01(tst *testing.T) {

	chk.PrintTitle("error_breakdown01. ErrorBreakdown sums per-factor costs")

	g := NewGraph()
	k0 := symbol.Make('x', 0)
	res := factor.NewPriorResidual(manifold.NewSO2(1.0))
	nm, _ := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: 1}})
	f, _ := factor.New(res, []symbol.Key{k0}, nm, nil)
	g.Add(f)

	vs := NewValues()
	vs.Insert(k0, manifold.NewSO2(1.0))

	eb, err := g.ErrorBreakdown(vs)
	if err != nil {
		tst.Fatalf("ErrorBreakdown: %v", err)
	}
	chk.Scalar(tst, "error at anchor", 1e-12, eb.Total, 0)
}
