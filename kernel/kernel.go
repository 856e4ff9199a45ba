// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package kernel implements robust loss kernels ρ that re-weight an
// already-whitened residual: the effective cost becomes ρ(‖r̂‖²)
// instead of ½‖r̂‖². For the iteratively-reweighted formulation each
// kernel exposes Weight(s) = ρ′(s); both rows of the whitened Jacobian
// and the whitened residual are scaled by sqrt(Weight(s)) before the
// solve, per spec.md §4.4's square-root-weighting default.
package kernel

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Kernel is implemented by every robust loss: Identity (L2), Huber,
// Cauchy, GemanMcClure, Welsch.
type Kernel interface {
	// Loss returns ρ(s) for s = ‖r̂‖².
	Loss(s float64) float64

	// Weight returns w(s) = ρ′(s), the scalar used to re-weight rows.
	Weight(s float64) float64
}

// allocators holds named kernel constructors, mirroring the
// mdl/solid.Model registry pattern used for noise models; parameters
// are passed as fun.Prms, as mdl/solid.Model.Init takes them.
var allocators = map[string]func(prms fun.Prms) (Kernel, error){}

// Register adds a named constructor to the kernel registry.
func Register(name string, allocator func(prms fun.Prms) (Kernel, error)) {
	allocators[name] = allocator
}

// New returns a new kernel of the given registered kind.
func New(name string, prms fun.Prms) (Kernel, error) {
	allocator, ok := allocators[name]
	if !ok {
		return nil, chk.Err("robust kernel %q is not available in registry", name)
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

// SqrtWeight returns sqrt(max(w(s), 0)); a kernel that (incorrectly)
// produces a tiny negative weight from floating point error near s=0
// is clamped rather than propagating NaN into the Jacobian.
func SqrtWeight(k Kernel, s float64) float64 {
	w := k.Weight(s)
	if w < 0 {
		w = 0
	}
	return math.Sqrt(w)
}
