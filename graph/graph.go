package graph

import (
	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/factorgraph/factor"
	"github.com/dpedroso-lab/factorgraph/symbol"
)

// Graph is an insertion-ordered collection of factors, grounded on
// fem/domain.go's Elems slice (an ordered, walk-once collection the
// rest of the package iterates to assemble a global system).
type Graph struct {
	factors []*factor.Factor
}

// NewGraph returns an empty Graph.
func NewGraph() *Graph { return &Graph{} }

// Add appends a factor, preserving insertion order.
func (g *Graph) Add(f *factor.Factor) { g.factors = append(g.factors, f) }

// Len returns the number of factors.
func (g *Graph) Len() int { return len(g.factors) }

// Factors returns the factors in insertion order; callers must not
// mutate the returned slice.
func (g *Graph) Factors() []*factor.Factor { return g.factors }

// Each calls fn for every factor in insertion order.
func (g *Graph) Each(fn func(i int, f *factor.Factor)) {
	for i, f := range g.factors {
		fn(i, f)
	}
}

// BuildColumnMap walks the graph's factors in order and assigns each
// newly seen variable key a column offset/width, per spec.md §4.7. The
// tangent width of a key is read from its current Variable in values
// (VectorVarN's width is instance-dependent, so the column map cannot
// be derived from factor metadata alone).
func (g *Graph) BuildColumnMap(values *Values) (*ColumnMap, error) {
	cm := &ColumnMap{offsets: map[symbol.Key]int{}, widths: map[symbol.Key]int{}}
	for fi, f := range g.factors {
		for _, key := range f.Keys {
			if _, seen := cm.offsets[key]; seen {
				continue
			}
			v, ok := values.Get(key)
			if !ok {
				return nil, chk.Err("graph: MissingKey: factor %d references key %v absent from Values", fi, key)
			}
			w := v.Dim()
			cm.offsets[key] = cm.n
			cm.widths[key] = w
			cm.order = append(cm.order, key)
			cm.n += w
		}
	}
	return cm, nil
}

// CheckKeys verifies every key referenced by every factor exists in
// values, returning a MissingKey error on the first one that does not.
// Policy (spec.md §7): this check is fatal and run before any
// iteration, never surfaced mid-optimization.
func (g *Graph) CheckKeys(values *Values) error {
	for fi, f := range g.factors {
		for _, key := range f.Keys {
			if _, ok := values.Get(key); !ok {
				return chk.Err("graph: MissingKey: factor %d references key %v absent from Values", fi, key)
			}
		}
	}
	return nil
}

// ErrorBreakdown returns each factor's weighted cost alongside the
// total, supplementing the core ½Σρ(‖r̂‖²) sum with a per-factor report
// useful for diagnosing which constraints dominate a graph's error
// (not named explicitly in spec.md's Optimizer report, but the natural
// decomposition of the error sum it defines in §4.8).
type ErrorBreakdown struct {
	PerFactor []float64
	Total     float64
}

// ErrorBreakdown computes the per-factor and total weighted error of
// the graph at the given values.
func (g *Graph) ErrorBreakdown(values *Values) (*ErrorBreakdown, error) {
	out := &ErrorBreakdown{PerFactor: make([]float64, len(g.factors))}
	for i, f := range g.factors {
		e, err := f.Error(values)
		if err != nil {
			return nil, err
		}
		out.PerFactor[i] = e
		out.Total += e
	}
	return out, nil
}
