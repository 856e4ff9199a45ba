// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package noise implements noise models that whiten a residual and its
// Jacobian: given r and J_r, a Model returns (Wr, W J_r) with
// Wᵀ W = Σ⁻¹. Robust kernels (package kernel) see only whitened
// residuals, matching spec.md's layering.
package noise

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Model is implemented by every noise model (Gaussian, Unit).
type Model interface {
	// Dim returns m, the residual dimension this model whitens.
	Dim() int

	// Whiten returns Wr given the raw residual r (len(r) == Dim()).
	Whiten(r []float64) []float64

	// WhitenJacobian returns W·J for a single m x D Jacobian block as a
	// new matrix, leaving J unchanged; J has m rows.
	WhitenJacobian(J [][]float64) [][]float64
}

// allocators holds named noise-model constructors, mirroring
// mdl/solid/model.go's allocators map + New(name) factory; parameters
// are passed the way mdl/solid.Model.Init takes them, as fun.Prms.
var allocators = map[string]func(prms fun.Prms) (Model, error){}

// Register adds a named constructor to the noise-model registry.
func Register(name string, allocator func(prms fun.Prms) (Model, error)) {
	allocators[name] = allocator
}

// New returns a new noise model of the given registered kind.
func New(name string, prms fun.Prms) (Model, error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("noise model %q is not available in registry", name)
	}
	return allocator(prms)
}

// findPrm looks up a named parameter the way
// mdl/solid/elasticity.go's SmallElasticity.Init loops over prms,
// switching on p.N.
func findPrm(prms fun.Prms, name string) (float64, bool) {
	for _, p := range prms {
		if p.N == name {
			return p.V, true
		}
	}
	return 0, false
}

func init() {
	Register("unit", func(prms fun.Prms) (Model, error) {
		dim, ok := findPrm(prms, "dim")
		if !ok {
			return nil, chk.Err("unit noise model requires a 'dim' parameter")
		}
		return NewUnit(int(dim)), nil
	})
}
