package noise

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
	"gonum.org/v1/gonum/mat"
)

// Gaussian whitens by multiplication with a square-root information
// matrix R (upper-triangular), Wr = R r, so that Rᵀ R = Σ⁻¹.
type Gaussian struct {
	dim int
	R   *mat.Dense // m x m square-root information matrix
}

// FromSqrtInfo builds a Gaussian noise model directly from a
// square-root information matrix (upper triangular by convention).
func FromSqrtInfo(R [][]float64) *Gaussian {
	m := len(R)
	d := mat.NewDense(m, m, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < m; j++ {
			d.Set(i, j, R[i][j])
		}
	}
	return &Gaussian{dim: m, R: d}
}

// FromCovariance builds a Gaussian noise model from a covariance
// matrix Σ via its Cholesky factor: Σ = LLᵀ, so R = L⁻ᵀ satisfies
// Rᵀ R = Σ⁻¹.
func FromCovariance(cov [][]float64) (*Gaussian, error) {
	m := len(cov)
	sym := mat.NewSymDense(m, nil)
	for i := 0; i < m; i++ {
		for j := i; j < m; j++ {
			sym.SetSym(i, j, cov[i][j])
		}
	}
	var chol mat.Cholesky
	if ok := chol.Factorize(sym); !ok {
		return nil, chk.Err("noise: covariance matrix is not positive-definite")
	}
	var L mat.TriDense
	chol.LTo(&L)
	var Linv mat.TriDense
	if err := Linv.InverseTri(&L); err != nil {
		return nil, chk.Err("noise: failed to invert Cholesky factor: %v", err)
	}
	// R = Linv^T so that R^T R = L^-1 L^-T = (L L^T)^-1 = Σ^-1.
	R := mat.NewDense(m, m, nil)
	R.CloneFrom(Linv.T())
	return &Gaussian{dim: m, R: R}, nil
}

// FromDiagonalSigmas builds a Gaussian noise model whose covariance is
// diagonal with the given per-component standard deviations.
func FromDiagonalSigmas(sigmas []float64) *Gaussian {
	m := len(sigmas)
	d := mat.NewDense(m, m, nil)
	for i, s := range sigmas {
		if s <= 0 {
			chk.Panic("noise: sigma[%d] must be positive, got %v", i, s)
		}
		d.Set(i, i, 1.0/s)
	}
	return &Gaussian{dim: m, R: d}
}

// FromSigma builds an isotropic Gaussian noise model of the given
// dimension with a single scalar standard deviation.
func FromSigma(dim int, sigma float64) *Gaussian {
	sigmas := make([]float64, dim)
	for i := range sigmas {
		sigmas[i] = sigma
	}
	return FromDiagonalSigmas(sigmas)
}

func (o *Gaussian) Dim() int { return o.dim }

func (o *Gaussian) Whiten(r []float64) []float64 {
	rv := mat.NewVecDense(o.dim, r)
	var out mat.VecDense
	out.MulVec(o.R, rv)
	return denseVec(&out)
}

// WhitenJacobian scales J by R; rows that are entirely zero (spec.md's
// "residual Jacobian is zero in a row" edge case) pass through R's
// linear combination and remain finite since R itself is finite.
func (o *Gaussian) WhitenJacobian(J [][]float64) [][]float64 {
	m := len(J)
	if m == 0 {
		return J
	}
	n := len(J[0])
	Jd := mat.NewDense(m, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			Jd.Set(i, j, J[i][j])
		}
	}
	var out mat.Dense
	out.Mul(o.R, Jd)
	result := make([][]float64, m)
	for i := 0; i < m; i++ {
		result[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			v := out.At(i, j)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				chk.Panic("noise: non-finite value produced while whitening Jacobian")
			}
			result[i][j] = v
		}
	}
	return result
}

func denseVec(v *mat.VecDense) []float64 {
	n := v.Len()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = v.AtVec(i)
	}
	return out
}

func init() {
	Register("gaussian-diagonal", func(prms fun.Prms) (Model, error) {
		dim, ok := findPrm(prms, "dim")
		if !ok {
			return nil, chk.Err("gaussian-diagonal noise model requires a 'dim' parameter")
		}
		sigma, ok := findPrm(prms, "sigma")
		if !ok {
			return nil, chk.Err("gaussian-diagonal noise model requires a 'sigma' parameter")
		}
		return FromSigma(int(dim), sigma), nil
	})
}
