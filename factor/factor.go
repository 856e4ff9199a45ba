package factor

import (
	"github.com/cpmech/gosl/chk"

	"github.com/dpedroso-lab/factorgraph/dual"
	"github.com/dpedroso-lab/factorgraph/kernel"
	"github.com/dpedroso-lab/factorgraph/manifold"
	"github.com/dpedroso-lab/factorgraph/noise"
	"github.com/dpedroso-lab/factorgraph/symbol"
)

// Factor is an immutable tuple (residual, key tuple, noise, robust).
type Factor struct {
	Residual Residual
	Keys     []symbol.Key
	Noise    noise.Model
	Robust   kernel.Kernel // nil is treated as kernel.Identity{}
}

// New constructs a Factor, checking the arity/dimension invariants
// spec.md §3 requires: len(keys) matches the residual's arity and the
// noise model's dimension matches the residual's output dimension.
func New(residual Residual, keys []symbol.Key, noiseModel noise.Model, robust kernel.Kernel) (*Factor, error) {
	types := residual.VariableTypes()
	if len(keys) != len(types) {
		return nil, chk.Err("factor: residual arity %d does not match key tuple length %d", len(types), len(keys))
	}
	if noiseModel.Dim() != residual.Dim() {
		return nil, chk.Err("factor: noise model dimension %d does not match residual dimension %d", noiseModel.Dim(), residual.Dim())
	}
	return &Factor{Residual: residual, Keys: keys, Noise: noiseModel, Robust: robust}, nil
}

func (f *Factor) robust() kernel.Kernel {
	if f.Robust == nil {
		return kernel.Identity{}
	}
	return f.Robust
}

// Block is the m x D_i Jacobian of one factor with respect to one of
// its input variables, after whitening and robust row-scaling.
type Block struct {
	Key symbol.Key
	J   [][]float64
}

// Linearized is the per-factor linearization product: the weighted,
// whitened blocks and residual that linearize.Assemble places into the
// global sparse Jacobian and residual vector.
type Linearized struct {
	Blocks []Block
	Rhat   []float64 // whitened + robust-weighted residual, len m
	Weight float64   // sqrt(kernel.Weight(s)) applied to Blocks/Rhat
	SqErr  float64   // s = ||whitened residual||^2 before robust weighting
}

// Linearize gathers this factor's inputs from values, evaluates the
// residual with seeded duals, whitens, and applies the robust kernel's
// row weight. See spec.md §4.5 for the four-step contract this
// implements.
func (f *Factor) Linearize(values ValueLookup) (*Linearized, error) {
	k := len(f.Keys)
	vars := make([]manifold.Variable, k)
	dims := make([]int, k)
	offsets := make([]int, k)
	width := 0
	for i, key := range f.Keys {
		v, ok := values.Get(key)
		if !ok {
			return nil, chk.Err("factor: missing key %v referenced by factor", key)
		}
		vars[i] = v
		dims[i] = v.Dim()
		offsets[i] = width
		width += dims[i]
	}

	duals := make([]manifold.DualElement, k)
	for i, v := range vars {
		tau := make([]dual.Number, dims[i])
		for j := 0; j < dims[i]; j++ {
			tau[j] = dual.Seed(0, offsets[i]+j, width)
		}
		duals[i] = v.Perturb(tau)
	}

	rdual := f.Residual.EvaluateDual(duals)
	if err := checkFinite(rdual); err != nil {
		return nil, err
	}

	m := len(rdual)
	r := make([]float64, m)
	J := make([][]float64, m)
	for row, x := range rdual {
		r[row] = x.X
		J[row] = append([]float64{}, x.Dx...)
	}

	rhat := f.Noise.Whiten(r)

	blocks := make([]Block, k)
	for i := range vars {
		sub := make([][]float64, m)
		for row := 0; row < m; row++ {
			sub[row] = append([]float64{}, J[row][offsets[i]:offsets[i]+dims[i]]...)
		}
		blocks[i] = Block{Key: f.Keys[i], J: f.Noise.WhitenJacobian(sub)}
	}

	var s float64
	for _, x := range rhat {
		s += x * x
	}

	rk := f.robust()
	sqrtW := kernel.SqrtWeight(rk, s)
	for row := range rhat {
		rhat[row] *= sqrtW
	}
	for bi := range blocks {
		for row := range blocks[bi].J {
			for col := range blocks[bi].J[row] {
				blocks[bi].J[row][col] *= sqrtW
			}
		}
	}

	return &Linearized{Blocks: blocks, Rhat: rhat, Weight: sqrtW, SqErr: s}, nil
}

// Error returns ½ρ(‖r̂‖²), the weighted cost contributed by this
// factor, matching the convergence-test error used in optimize.
func (f *Factor) Error(values ValueLookup) (float64, error) {
	lin, err := f.Linearize(values)
	if err != nil {
		return 0, err
	}
	return 0.5 * f.robust().Loss(lin.SqErr), nil
}
