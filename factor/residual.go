// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package factor implements the Residual/Factor abstraction: an
// immutable tuple of (residual, key tuple, noise, robust kernel) whose
// Linearize step gathers variable values, evaluates the residual
// through seeded dual numbers to obtain value and Jacobian in one
// pass, whitens, and applies the robust kernel's row weight. Grounded
// on ele.Element's AddToRhs/AddToKb pair (ele/element.go), with the
// two combined into one Linearize call since spec.md's factor returns
// both the residual and its blocks together.
package factor

import (
	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/factorgraph/dual"
	"github.com/dpedroso-lab/factorgraph/manifold"
	"github.com/dpedroso-lab/factorgraph/symbol"
)

// Residual is implemented by every concrete error function e:
// (V1,...,Vk) -> R^m. Arity and variable types are fixed per concrete
// residual, as spec.md §4.5 requires.
type Residual interface {
	// Dim returns m, the residual's output dimension.
	Dim() int

	// VariableTypes returns the expected type tags of the k inputs, in
	// order; len(VariableTypes()) == k is the residual's arity.
	VariableTypes() []byte

	// EvaluateDual is the pure evaluator: given the k inputs already
	// perturbed by seeded duals, it returns the m-vector residual as
	// dual numbers carrying both value (X) and Jacobian columns (Dx).
	// It must not mutate its inputs or any shared state.
	EvaluateDual(inputs []manifold.DualElement) []dual.Number
}

// ValueLookup is the minimal interface Linearize needs from a Values
// container; graph.Values implements it. Kept separate from package
// graph to avoid an import cycle (graph needs Factor, Factor needs
// this lookup).
type ValueLookup interface {
	Get(key symbol.Key) (manifold.Variable, bool)
}

func checkFinite(r []dual.Number) error {
	for i, x := range r {
		if !dual.Finite(x) {
			return chk.Err("factor: non-finite value in residual output at row %d", i)
		}
	}
	return nil
}
