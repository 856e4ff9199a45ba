// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package dual implements a forward-mode automatic differentiation
// scalar: a real part plus a fixed-size gradient vector. Binary
// operators propagate derivatives via the chain rule so that
// evaluating a function once yields both its value and its Jacobian
// with respect to however many inputs were seeded.
package dual

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Number is a dual scalar x + ẋ·ε with ẋ of fixed width, one partial
// derivative slot per seeded input.
type Number struct {
	X  float64   // real part
	Dx []float64 // gradient; len(Dx) == width of the surrounding computation
}

// New returns a constant dual number (zero gradient) of the given width.
func New(x float64, width int) Number {
	return Number{X: x, Dx: make([]float64, width)}
}

// Seed returns a dual number with the real part x and a one-hot
// gradient at index i, the standard basis vector eᵢ used to seed the
// i-th input when building a Jacobian column by column.
func Seed(x float64, i, width int) Number {
	n := New(x, width)
	n.Dx[i] = 1
	return n
}

func (a Number) width() int { return len(a.Dx) }

func checkWidth(a, b Number) int {
	if len(a.Dx) != len(b.Dx) {
		chk.Panic("dual: mismatched gradient widths %d != %d", len(a.Dx), len(b.Dx))
	}
	return len(a.Dx)
}

// Add returns a+b.
func Add(a, b Number) Number {
	w := checkWidth(a, b)
	r := New(a.X+b.X, w)
	for i := 0; i < w; i++ {
		r.Dx[i] = a.Dx[i] + b.Dx[i]
	}
	return r
}

// Sub returns a-b.
func Sub(a, b Number) Number {
	w := checkWidth(a, b)
	r := New(a.X-b.X, w)
	for i := 0; i < w; i++ {
		r.Dx[i] = a.Dx[i] - b.Dx[i]
	}
	return r
}

// Mul returns a*b.
func Mul(a, b Number) Number {
	w := checkWidth(a, b)
	r := New(a.X*b.X, w)
	for i := 0; i < w; i++ {
		r.Dx[i] = a.Dx[i]*b.X + a.X*b.Dx[i]
	}
	return r
}

// Div returns a/b.
func Div(a, b Number) Number {
	w := checkWidth(a, b)
	r := New(a.X/b.X, w)
	inv := 1.0 / (b.X * b.X)
	for i := 0; i < w; i++ {
		r.Dx[i] = (a.Dx[i]*b.X - a.X*b.Dx[i]) * inv
	}
	return r
}

// Neg returns -a.
func Neg(a Number) Number {
	r := New(-a.X, a.width())
	for i := range a.Dx {
		r.Dx[i] = -a.Dx[i]
	}
	return r
}

// Scale returns a*s for a real scalar s.
func Scale(a Number, s float64) Number {
	r := New(a.X*s, a.width())
	for i := range a.Dx {
		r.Dx[i] = a.Dx[i] * s
	}
	return r
}

// AddScalar returns a+s for a real scalar s.
func AddScalar(a Number, s float64) Number {
	r := a
	r.X += s
	return r
}

func chain(a Number, fx, dfx float64) Number {
	r := New(fx, a.width())
	for i := range a.Dx {
		r.Dx[i] = dfx * a.Dx[i]
	}
	return r
}

// Sin returns sin(a).
func Sin(a Number) Number { return chain(a, math.Sin(a.X), math.Cos(a.X)) }

// Cos returns cos(a).
func Cos(a Number) Number { return chain(a, math.Cos(a.X), -math.Sin(a.X)) }

// Tan returns tan(a).
func Tan(a Number) Number {
	c := math.Cos(a.X)
	return chain(a, math.Tan(a.X), 1/(c*c))
}

// Sqrt returns sqrt(a).
func Sqrt(a Number) Number {
	s := math.Sqrt(a.X)
	if s == 0 {
		chk.Panic("dual: sqrt derivative undefined at zero")
	}
	return chain(a, s, 0.5/s)
}

// Exp returns exp(a).
func Exp(a Number) Number {
	e := math.Exp(a.X)
	return chain(a, e, e)
}

// Log returns ln(a).
func Log(a Number) Number { return chain(a, math.Log(a.X), 1/a.X) }

// Asin returns asin(a).
func Asin(a Number) Number { return chain(a, math.Asin(a.X), 1/math.Sqrt(1-a.X*a.X)) }

// Acos returns acos(a).
func Acos(a Number) Number { return chain(a, math.Acos(a.X), -1/math.Sqrt(1-a.X*a.X)) }

// Atan2 returns atan2(y, x), the two-argument arctangent.
func Atan2(y, x Number) Number {
	w := checkWidth(y, x)
	denom := x.X*x.X + y.X*y.X
	r := New(math.Atan2(y.X, x.X), w)
	for i := 0; i < w; i++ {
		r.Dx[i] = (x.X*y.Dx[i] - y.X*x.Dx[i]) / denom
	}
	return r
}

// Abs returns |a|; the derivative at exactly zero is taken as zero.
func Abs(a Number) Number {
	if a.X == 0 {
		return New(0, a.width())
	}
	if a.X < 0 {
		return Neg(a)
	}
	return a
}

// Less compares real parts only, per spec.md's dual-scalar contract.
func Less(a, b Number) bool { return a.X < b.X }

// Finite reports whether the real part and every gradient entry are
// finite; used to surface the NonFinite error kind during linearization.
func Finite(a Number) bool {
	if math.IsNaN(a.X) || math.IsInf(a.X, 0) {
		return false
	}
	for _, d := range a.Dx {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			return false
		}
	}
	return true
}

// SeedVector seeds a slice of reals into dual numbers whose combined
// gradient width is len(x); duals[i] carries the standard basis vector
// e_i, so evaluating a function of these duals and reading column i of
// each output's Dx gives column i of the function's Jacobian.
func SeedVector(x []float64) []Number {
	w := len(x)
	out := make([]Number, w)
	for i, xi := range x {
		out[i] = Seed(xi, i, w)
	}
	return out
}

// Jacobian evaluates f at x with seeded duals and returns (value, J)
// where J is m x n, m = len(f(SeedVector(x))), n = len(x).
func Jacobian(f func([]Number) []Number, x []float64) (value []float64, J [][]float64) {
	duals := SeedVector(x)
	out := f(duals)
	m := len(out)
	n := len(x)
	value = make([]float64, m)
	J = make([][]float64, m)
	for i, o := range out {
		value[i] = o.X
		J[i] = make([]float64, n)
		copy(J[i], o.Dx)
	}
	return
}
