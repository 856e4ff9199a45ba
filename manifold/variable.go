// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package manifold implements the manifold-aware variable abstraction
// used throughout the optimizer: Lie groups SO(2)/SO(3)/SE(2)/SE(3),
// Euclidean vector spaces, and the IMU bias vector space. Every
// concrete type implements Variable (identity/inverse/compose/exp/log)
// and a dual-number counterpart (Perturb/DualElement) so that residuals
// built generically over these types flow through forward-mode
// automatic differentiation. See github.com/dpedroso-lab/factorgraph/dual.
package manifold

import (
	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/factorgraph/dual"
)

// Variable is implemented by every concrete manifold type: SO2, SO3,
// SE2, SE3, VectorVarN, ImuBias.
type Variable interface {
	// Dim returns the tangent space dimension D.
	Dim() int

	// TypeTag identifies the concrete type for Values type-checking.
	TypeTag() byte

	// Identity returns the identity element of the receiver's type.
	Identity() Variable

	// Inverse returns the receiver's group inverse.
	Inverse() Variable

	// Compose returns receiver ∘ other (group operation).
	Compose(other Variable) Variable

	// Exp is the exponential map ℝᴰ → V evaluated at tau; the receiver
	// is used only to select the concrete type being constructed, not
	// its value (mirrors the teacher's registry-of-constructors idiom
	// in mdl/solid/model.go, here realised via method dispatch instead
	// of a name string).
	Exp(tau []float64) Variable

	// Log is the local-coordinates map V → ℝᴰ evaluated at the
	// receiver, i.e. log(receiver) in the tangent space at identity.
	Log() []float64

	// Adjoint returns the D x D adjoint matrix of the receiver.
	Adjoint() [][]float64

	// Perturb returns the receiver composed with exp(tau) where tau is
	// a dual-seeded tangent vector, as a DualElement usable by residual
	// evaluators to obtain both value and Jacobian with respect to this
	// variable in one pass. len(tau) must equal Dim().
	Perturb(tau []dual.Number) DualElement
}

// DualElement is the dual-number counterpart of a manifold element: it
// supports exactly the group operations a residual needs (compose,
// inverse, log) with derivatives propagated through dual.Number.
type DualElement interface {
	ComposeD(other DualElement) DualElement
	InverseD() DualElement
	LogD() []dual.Number
}

// Convention selects whether Retract/Local use the right or left
// update rule; see UseLeftUpdate (set at build time via a build tag,
// see convention_right.go / convention_left.go).

// Retract implements oplus: v ⊕ tau.
//   right-update (default): v · exp(tau)
//   left-update:             exp(tau) · v
func Retract(v Variable, tau []float64) Variable {
	if len(tau) != v.Dim() {
		chk.Panic("manifold: Retract: tangent length %d != Dim() %d", len(tau), v.Dim())
	}
	e := v.Exp(tau)
	if UseLeftUpdate {
		return e.Compose(v)
	}
	return v.Compose(e)
}

// Local implements ominus: a ⊖ b ≝ log(a⁻¹ · b) under the right-update
// convention, or log(b · a⁻¹) under the left-update convention so that
// Local is always the inverse of Retract with matching tau.
func Local(a, b Variable) []float64 {
	if UseLeftUpdate {
		return b.Compose(a.Inverse()).Log()
	}
	return a.Inverse().Compose(b).Log()
}

// PerturbedRetract is the dual-number counterpart of Retract, used by
// residual evaluators: it returns v ⊕ tau as a DualElement where tau
// carries seeded gradients.
func PerturbedRetract(v Variable, tau []dual.Number) DualElement {
	return v.Perturb(tau)
}
