package noise

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func Test_unit_is_identity01(tst *testing.T) {

	chk.PrintTitle("unit_is_identity01. Unit whitening leaves residual and Jacobian unchanged")

	u := NewUnit(3)
	r := []float64{1, -2, 3}
	wr := u.Whiten(r)
	chk.Vector(tst, "wr", 1e-15, wr, r)

	J := [][]float64{{1, 0}, {0, 1}, {1, 1}}
	WJ := u.WhitenJacobian(J)
	for i := range J {
		chk.Vector(tst, "WJ row", 1e-15, WJ[i], J[i])
	}
}

func Test_gaussian_sigma_scales_residual01(tst *testing.T) {

	chk.PrintTitle("gaussian_sigma_scales_residual01. FromSigma whitens by 1/sigma")

	sigma := 2.0
	g := FromSigma(2, sigma)
	r := []float64{4, -6}
	wr := g.Whiten(r)
	chk.Vector(tst, "wr", 1e-12, wr, []float64{2, -3})
}

func Test_gaussian_from_covariance_matches_sigma01(tst *testing.T) {

	chk.PrintTitle("gaussian_from_covariance_matches_sigma01. FromCovariance(diag(sigma^2)) agrees with FromSigma")

	sigma := 0.5
	cov := [][]float64{{sigma * sigma, 0}, {0, sigma * sigma}}
	g, err := FromCovariance(cov)
	if err != nil {
		tst.Fatalf("FromCovariance failed: %v", err)
	}
	want := FromSigma(2, sigma)
	r := []float64{1, 1}
	wr := g.Whiten(r)
	wrWant := want.Whiten(r)
	for i := range wr {
		if math.Abs(math.Abs(wr[i])-math.Abs(wrWant[i])) > 1e-9 {
			tst.Fatalf("mismatch at %d: %v vs %v", i, wr[i], wrWant[i])
		}
	}
}

func Test_whiten_zero_row_stable01(tst *testing.T) {

	chk.PrintTitle("whiten_zero_row_stable01. a zero Jacobian row whitens to a finite zero row")

	g := FromSigma(2, 0.1)
	J := [][]float64{{0, 0}, {1, 2}}
	WJ := g.WhitenJacobian(J)
	for _, v := range WJ[0] {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			tst.Fatalf("non-finite value in whitened zero row: %v", v)
		}
	}
	chk.Vector(tst, "WJ[0]", 1e-15, WJ[0], []float64{0, 0})
}
