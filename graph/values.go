// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package graph implements the two containers an optimization session
// is built from: Values (a type-checked key -> Variable map) and Graph
// (an insertion-ordered collection of factors). Grounded on
// fem/domain.go's Domain, which plays the analogous role of holding
// the mutable state (Sol, Nodes) an element set (Elems) is linearized
// and updated against.
package graph

import (
	"sort"

	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/factorgraph/manifold"
	"github.com/dpedroso-lab/factorgraph/symbol"
)

// Values holds the current assignment of variables keyed by symbol,
// type-checked on insertion per spec.md §7's TypeMismatch error kind.
type Values struct {
	vars map[symbol.Key]manifold.Variable
}

// NewValues returns an empty Values container.
func NewValues() *Values {
	return &Values{vars: map[symbol.Key]manifold.Variable{}}
}

// Insert adds or replaces the variable at key, rejecting a type that
// disagrees with the variable already stored under that same key
// (TypeMismatch). Other keys of the same symbol family are not
// compared, and no symbol.Registry is consulted.
func (vs *Values) Insert(key symbol.Key, v manifold.Variable) error {
	if existing, ok := vs.vars[key]; ok && existing.TypeTag() != v.TypeTag() {
		return chk.Err("graph: TypeMismatch: key %v already holds type %q, got %q", key, existing.TypeTag(), v.TypeTag())
	}
	vs.vars[key] = v
	return nil
}

// Get implements factor.ValueLookup.
func (vs *Values) Get(key symbol.Key) (manifold.Variable, bool) {
	v, ok := vs.vars[key]
	return v, ok
}

// Len returns the number of variables stored.
func (vs *Values) Len() int { return len(vs.vars) }

// Keys returns every stored key in deterministic (ascending) order.
func (vs *Values) Keys() []symbol.Key {
	keys := make([]symbol.Key, 0, len(vs.vars))
	for k := range vs.vars {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Each calls fn for every (key, variable) pair in deterministic key
// order, the bulk-iteration contract spec.md §4.6 requires.
func (vs *Values) Each(fn func(key symbol.Key, v manifold.Variable)) {
	for _, k := range vs.Keys() {
		fn(k, vs.vars[k])
	}
}

// Clone returns a shallow copy safe to mutate independently (used by
// Levenberg-Marquardt to restore state on a rejected step).
func (vs *Values) Clone() *Values {
	out := make(map[symbol.Key]manifold.Variable, len(vs.vars))
	for k, v := range vs.vars {
		out[k] = v
	}
	return &Values{vars: out}
}

// Assign replaces the receiver's contents with other's, used by
// Levenberg-Marquardt to commit an accepted trial step computed on a
// clone without changing the caller's *Values identity.
func (vs *Values) Assign(other *Values) {
	vs.vars = other.vars
}

// Retract updates every variable named in colmap by its slice of delta,
// v <- v (+) delta_slice(v); this is the only retraction path exposed,
// per spec.md §4.6 ("no partial retraction is exposed externally").
func (vs *Values) Retract(colmap *ColumnMap, delta []float64) {
	for _, k := range colmap.order {
		off, dim := colmap.offsets[k], colmap.widths[k]
		v := vs.vars[k]
		vs.vars[k] = manifold.Retract(v, delta[off:off+dim])
	}
}
