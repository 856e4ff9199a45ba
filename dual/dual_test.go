package dual

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/num"
)

func Test_arithmetic01(tst *testing.T) {

	chk.PrintTitle("arithmetic01. add, sub, mul, div agree with finite differences")

	x, y := 1.7, -0.4
	ax := Seed(x, 0, 2)
	ay := Seed(y, 1, 2)

	sum := Add(ax, ay)
	dfdx := num.DerivCen(func(xv float64, args ...interface{}) (res float64) {
		return xv + y
	}, x)
	chk.Scalar(tst, "d(add)/dx", 1e-6, sum.Dx[0], dfdx)

	diff := Sub(ax, ay)
	dfdx = num.DerivCen(func(xv float64, args ...interface{}) (res float64) {
		return xv - y
	}, x)
	chk.Scalar(tst, "d(sub)/dx", 1e-6, diff.Dx[0], dfdx)

	prod := Mul(ax, ay)
	dfdx = num.DerivCen(func(xv float64, args ...interface{}) (res float64) {
		return xv * y
	}, x)
	chk.Scalar(tst, "d(mul)/dx", 1e-6, prod.Dx[0], dfdx)

	quot := Div(ax, ay)
	dfdy := num.DerivCen(func(yv float64, args ...interface{}) (res float64) {
		return x / yv
	}, y)
	chk.Scalar(tst, "d(div)/dy", 1e-5, quot.Dx[1], dfdy)
}

func Test_trig01(tst *testing.T) {

	chk.PrintTitle("trig01. sin/cos/atan2 derivatives")

	x := 0.37
	a := Seed(x, 0, 1)
	s := Sin(a)
	if math.Abs(s.X-math.Sin(x)) > 1e-12 {
		tst.Fatalf("sin value mismatch")
	}
	chk.Scalar(tst, "d(sin)/dx", 1e-9, s.Dx[0], math.Cos(x))

	c := Cos(a)
	chk.Scalar(tst, "d(cos)/dx", 1e-9, c.Dx[0], -math.Sin(x))

	y, xx := Seed(1.2, 0, 2), Seed(0.6, 1, 2)
	at := Atan2(y, xx)
	chk.Scalar(tst, "atan2 value", 1e-12, at.X, math.Atan2(1.2, 0.6))
	chk.Scalar(tst, "d(atan2)/dy", 1e-12, at.Dx[0], 0.6/(0.6*0.6+1.2*1.2))
	chk.Scalar(tst, "d(atan2)/dx", 1e-12, at.Dx[1], -1.2/(0.6*0.6+1.2*1.2))
}

func Test_jacobian01(tst *testing.T) {

	chk.PrintTitle("jacobian01. Jacobian() of a simple nonlinear map matches finite differences")

	f := func(in []Number) []Number {
		return []Number{
			Mul(in[0], in[1]),
			Add(Sin(in[0]), Mul(in[1], in[1])),
		}
	}
	x := []float64{0.5, 1.3}
	_, J := Jacobian(f, x)

	fr := func(v []float64) []float64 {
		return []float64{v[0] * v[1], math.Sin(v[0]) + v[1]*v[1]}
	}
	xx := append([]float64{}, x...)
	for j := 0; j < 2; j++ {
		for i := 0; i < 2; i++ {
			row := i
			col := j
			fd := num.DerivCen(func(xj float64, args ...interface{}) (res float64) {
				saved := xx[col]
				xx[col] = xj
				res = fr(xx)[row]
				xx[col] = saved
				return
			}, x[j])
			chk.Scalar(tst, "J", 1e-6, J[i][j], fd)
		}
	}
}
