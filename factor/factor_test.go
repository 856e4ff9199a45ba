package factor

import (
	"math/rand"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"github.com/cpmech/gosl/num"

	"github.com/dpedroso-lab/factorgraph/dual"
	"github.com/dpedroso-lab/factorgraph/manifold"
	"github.com/dpedroso-lab/factorgraph/noise"
	"github.com/dpedroso-lab/factorgraph/symbol"
)

// lookup is a bare-bones ValueLookup for tests, standing in for
// graph.Values without importing it (would cycle).
type lookup map[symbol.Key]manifold.Variable

func (l lookup) Get(k symbol.Key) (manifold.Variable, bool) { v, ok := l[k]; return v, ok }

// evalReal evaluates a residual at real (non-dual) values by perturbing
// each input with a zero-width dual tangent, the same trick constDual
// uses to lift a single Variable.
func evalReal(r Residual, vars []manifold.Variable) []float64 {
	duals := make([]manifold.DualElement, len(vars))
	for i, v := range vars {
		tau := make([]dual.Number, v.Dim())
		for j := range tau {
			tau[j] = dual.New(0, 0)
		}
		duals[i] = v.Perturb(tau)
	}
	out := r.EvaluateDual(duals)
	x := make([]float64, len(out))
	for i, o := range out {
		x[i] = o.X
	}
	return x
}

// finiteDiffBlock returns the central-difference m x dim Jacobian of r
// with respect to vars[i], holding every other variable fixed.
func finiteDiffBlock(r Residual, vars []manifold.Variable, i int, h float64) [][]float64 {
	dim := vars[i].Dim()
	m := r.Dim()
	J := make([][]float64, m)
	for row := range J {
		J[row] = make([]float64, dim)
	}
	for k := 0; k < dim; k++ {
		for row := 0; row < m; row++ {
			k, row := k, row
			J[row][k] = num.DerivCen(func(x float64, args ...interface{}) (res float64) {
				tau := make([]float64, dim)
				tau[k] = x
				perturbed := append([]manifold.Variable{}, vars...)
				perturbed[i] = manifold.Retract(vars[i], tau)
				return evalReal(r, perturbed)[row]
			}, 0)
		}
	}
	return J
}

func Test_prior_zero_at_anchor01(tst *testing.T) {

	chk.PrintTitle("prior_zero_at_anchor01. PriorResidual vanishes at its own anchor")

	v0 := manifold.NewSO2(0.73)
	res := NewPriorResidual(v0)
	nm, err := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: float64(res.Dim())}})
	if err != nil {
		tst.Fatalf("noise.New: %v", err)
	}
	k0 := symbol.Make('x', 0)
	f, err := New(res, []symbol.Key{k0}, nm, nil)
	if err != nil {
		tst.Fatalf("New: %v", err)
	}
	lin, err := f.Linearize(lookup{k0: v0})
	if err != nil {
		tst.Fatalf("Linearize: %v", err)
	}
	chk.Scalar(tst, "r(prior)", 1e-12, lin.Rhat[0], 0)
}

func Test_between_zero_at_delta01(tst *testing.T) {

	chk.PrintTitle("between_zero_at_delta01. BetweenResidual vanishes when v2 = v1*delta")

	v1 := manifold.NewSO2(0.2)
	delta := manifold.NewSO2(0.9)
	v2 := v1.Compose(delta).(manifold.SO2)

	res := NewBetweenResidual(delta)
	nm, err := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: float64(res.Dim())}})
	if err != nil {
		tst.Fatalf("noise.New: %v", err)
	}
	k1, k2 := symbol.Make('x', 0), symbol.Make('x', 1)
	f, err := New(res, []symbol.Key{k1, k2}, nm, nil)
	if err != nil {
		tst.Fatalf("New: %v", err)
	}
	lin, err := f.Linearize(lookup{k1: v1, k2: v2})
	if err != nil {
		tst.Fatalf("Linearize: %v", err)
	}
	chk.Scalar(tst, "r(between)", 1e-10, lin.Rhat[0], 0)
}

func Test_between_se3_zero_at_delta01(tst *testing.T) {

	chk.PrintTitle("between_se3_zero_at_delta01. SE3 between residual vanishes at the relative pose")

	v1 := manifold.NewSE3(manifold.NewSO3(1, 0.1, -0.2, 0.05), 1, 2, 3)
	delta := manifold.NewSE3(manifold.NewSO3(1, -0.05, 0.1, 0.2), 0.3, -0.1, 0.2)
	v2 := v1.Compose(delta).(manifold.SE3)

	res := NewBetweenResidual(delta)
	nm, err := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: float64(res.Dim())}})
	if err != nil {
		tst.Fatalf("noise.New: %v", err)
	}
	k1, k2 := symbol.Make('p', 0), symbol.Make('p', 1)
	f, err := New(res, []symbol.Key{k1, k2}, nm, nil)
	if err != nil {
		tst.Fatalf("New: %v", err)
	}
	lin, err := f.Linearize(lookup{k1: v1, k2: v2})
	if err != nil {
		tst.Fatalf("Linearize: %v", err)
	}
	for i, x := range lin.Rhat {
		chk.Scalar(tst, "r(between se3)", 1e-8, x, 0)
		_ = i
	}
}

// Test_autodiff_matches_finite_diff01 checks, for both built-in
// residuals across randomized SO2/vector inputs, that the Jacobian
// blocks Factor.Linearize produces via forward-mode duals agree with
// central finite differences to 1e-6, per the autodiff/finite-diff
// cross-check spec.md's testable properties require. Grounded on
// dual_test.go's Test_jacobian01 finite-difference style.
func Test_autodiff_matches_finite_diff01(tst *testing.T) {

	chk.PrintTitle("autodiff_matches_finite_diff01. autodiff Jacobian matches central differences")

	rng := rand.New(rand.NewSource(1))
	h := 1e-6

	for trial := 0; trial < 10; trial++ {
		v1 := manifold.NewSO2(rng.Float64()*4 - 2)
		delta := manifold.NewSO2(rng.Float64()*4 - 2)

		prior := NewPriorResidual(v1)
		checkJacobianAgainstFD(tst, prior, []manifold.Variable{v1}, h)

		v2 := v1.Compose(delta).(manifold.SO2)
		// perturb v2 away from the exact delta so the Jacobian is probed
		// at a generic, not residual-zero, point.
		v2 = v2.Compose(manifold.NewSO2(rng.Float64()*0.5 - 0.25)).(manifold.SO2)
		between := NewBetweenResidual(delta)
		checkJacobianAgainstFD(tst, between, []manifold.Variable{v1, v2}, h)

		a := manifold.NewVectorVarN([]float64{rng.Float64(), rng.Float64() - 1, rng.Float64() * 2})
		b := manifold.NewVectorVarN([]float64{rng.Float64() - 0.5, rng.Float64(), rng.Float64() - 1})
		d := a.Inverse().(manifold.VectorVarN).Compose(b).(manifold.VectorVarN)
		vecBetween := NewBetweenResidual(d)
		checkJacobianAgainstFD(tst, vecBetween, []manifold.Variable{a, b}, h)
	}
}

func checkJacobianAgainstFD(tst *testing.T, res Residual, vars []manifold.Variable, h float64) {
	dim := 0
	for _, v := range vars {
		dim += v.Dim()
	}
	nm, err := noise.New("unit", fun.Prms{&fun.Prm{N: "dim", V: float64(res.Dim())}})
	if err != nil {
		tst.Fatalf("noise.New: %v", err)
	}
	keys := make([]symbol.Key, len(vars))
	l := lookup{}
	for i, v := range vars {
		keys[i] = symbol.Make('v', uint64(i))
		l[keys[i]] = v
	}
	f, err := New(res, keys, nm, nil)
	if err != nil {
		tst.Fatalf("New: %v", err)
	}
	lin, err := f.Linearize(l)
	if err != nil {
		tst.Fatalf("Linearize: %v", err)
	}
	_ = dim

	for i := range vars {
		fd := finiteDiffBlock(res, vars, i, h)
		got := lin.Blocks[i].J
		for row := range got {
			for col := range got[row] {
				chk.Scalar(tst, "dr/dv", 1e-6, got[row][col], fd[row][col])
			}
		}
	}
}
