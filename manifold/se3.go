package manifold

import (
	"math"

	"github.com/dpedroso-lab/factorgraph/dual"
)

// TypeSE3 tags SE3 variables for Values type-checking.
const TypeSE3 byte = 'T'

// SE3 is a 3D pose (rotation, translation); tangent ordered (rotation,
// translation) per spec.md. DecoupledExp selects the build-time flag
// that replaces the true SE(3) exponential by the decoupled SO(3)xR³
// retraction (see se3_coupled.go / se3_decoupled.go).
type SE3 struct {
	R  SO3
	Tx, Ty, Tz float64
}

func NewSE3(r SO3, tx, ty, tz float64) SE3 { return SE3{R: r, Tx: tx, Ty: ty, Tz: tz} }

func (SE3) Dim() int      { return 6 }
func (SE3) TypeTag() byte { return TypeSE3 }
func (SE3) Identity() Variable { return SE3{R: SO3{W: 1}} }

func matVec3(m [][]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

func (o SE3) Inverse() Variable {
	ri := o.R.Inverse().(SO3)
	t := matVec3(ri.Matrix(), [3]float64{-o.Tx, -o.Ty, -o.Tz})
	return SE3{R: ri, Tx: t[0], Ty: t[1], Tz: t[2]}
}

func (o SE3) Compose(other Variable) Variable {
	b := other.(SE3)
	r := quatMul(o.R, b.R)
	t := matVec3(o.R.Matrix(), [3]float64{b.Tx, b.Ty, b.Tz})
	return SE3{R: r, Tx: o.Tx + t[0], Ty: o.Ty + t[1], Tz: o.Tz + t[2]}
}

// Adjoint of SE(3): block matrix [[R, 0],[[t]x R, R]] (6x6), using the
// standard formula that couples translation into the rotation block.
func (o SE3) Adjoint() [][]float64 {
	R := o.R.Matrix()
	tx := Hat([]float64{o.Tx, o.Ty, o.Tz})
	txR := mat3Mul(tx, R)
	A := make([][]float64, 6)
	for i := 0; i < 3; i++ {
		A[i] = append(append([]float64{}, R[i]...), 0, 0, 0)
		A[i+3] = append(append([]float64{}, txR[i]...), R[i]...)
	}
	return A
}

// DualSE3 is the dual-number counterpart of SE3.
type DualSE3 struct {
	R          DualSO3
	Tx, Ty, Tz dual.Number
}

func (d DualSE3) ComposeD(other DualElement) DualElement {
	b := other.(DualSE3)
	r := d.R.ComposeD(b.R).(DualSO3)
	t := dualMatVec3(dualQuatMatrix(d.R), [3]dual.Number{b.Tx, b.Ty, b.Tz})
	return DualSE3{R: r, Tx: dual.Add(d.Tx, t[0]), Ty: dual.Add(d.Ty, t[1]), Tz: dual.Add(d.Tz, t[2])}
}

func (d DualSE3) InverseD() DualElement {
	ri := d.R.InverseD().(DualSO3)
	t := dualMatVec3(dualQuatMatrix(ri), [3]dual.Number{dual.Neg(d.Tx), dual.Neg(d.Ty), dual.Neg(d.Tz)})
	return DualSE3{R: ri, Tx: t[0], Ty: t[1], Tz: t[2]}
}

func dualMatVec3(m [3][3]dual.Number, v [3]dual.Number) [3]dual.Number {
	var r [3]dual.Number
	for i := 0; i < 3; i++ {
		r[i] = dual.Add(dual.Add(dual.Mul(m[i][0], v[0]), dual.Mul(m[i][1], v[1])), dual.Mul(m[i][2], v[2]))
	}
	return r
}

func dualQuatMatrix(q DualSO3) [3][3]dual.Number {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	two := func(a, b dual.Number) dual.Number { return dual.Scale(dual.Mul(a, b), 2) }
	return [3][3]dual.Number{
		{dual.AddScalar(dual.Neg(dual.Scale(dual.Add(dual.Mul(y, y), dual.Mul(z, z)), 2)), 1), dual.Sub(two(x, y), two(z, w)), dual.Add(two(x, z), two(y, w))},
		{dual.Add(two(x, y), two(z, w)), dual.AddScalar(dual.Neg(dual.Scale(dual.Add(dual.Mul(x, x), dual.Mul(z, z)), 2)), 1), dual.Sub(two(y, z), two(x, w))},
		{dual.Sub(two(x, z), two(y, w)), dual.Add(two(y, z), two(x, w)), dual.AddScalar(dual.Neg(dual.Scale(dual.Add(dual.Mul(x, x), dual.Mul(y, y)), 2)), 1)},
	}
}

func dualHat(w [3]dual.Number) [3][3]dual.Number {
	zero := dual.New(0, len(w[0].Dx))
	return [3][3]dual.Number{
		{zero, dual.Neg(w[2]), w[1]},
		{w[2], zero, dual.Neg(w[0])},
		{dual.Neg(w[1]), w[0], zero},
	}
}

func dualMat3Mul(a, b [3][3]dual.Number) [3][3]dual.Number {
	var r [3][3]dual.Number
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			s := dual.Mul(a[i][0], b[0][j])
			s = dual.Add(s, dual.Mul(a[i][1], b[1][j]))
			s = dual.Add(s, dual.Mul(a[i][2], b[2][j]))
			r[i][j] = s
		}
	}
	return r
}

func dualIdentity3(width int) [3][3]dual.Number {
	zero := dual.New(0, width)
	one := dual.New(1, width)
	return [3][3]dual.Number{{one, zero, zero}, {zero, one, zero}, {zero, zero, one}}
}

func dualMat3AddScaled(a [3][3]dual.Number, b [3][3]dual.Number, s dual.Number) [3][3]dual.Number {
	var r [3][3]dual.Number
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = dual.Add(a[i][j], dual.Mul(b[i][j], s))
		}
	}
	return r
}

// dualRightJacobianInverse mirrors RightJacobianInverse but over duals,
// used to couple SE(3)'s translation tangent back out of Log.
func dualRightJacobianInverse(tau []dual.Number) [3][3]dual.Number {
	theta2 := dual.Add(dual.Add(dual.Mul(tau[0], tau[0]), dual.Mul(tau[1], tau[1])), dual.Mul(tau[2], tau[2]))
	theta := dual.Sqrt(dual.AddScalar(theta2, 1e-24))
	w := dualHat([3]dual.Number{tau[0], tau[1], tau[2]})
	w2 := dualMat3Mul(w, w)
	I := dualIdentity3(len(tau[0].Dx))
	if theta.X < so3SmallAngle {
		half := dualMat3AddScaled(I, w, dual.New(0.5, len(tau[0].Dx)))
		return dualMat3AddScaled(half, w2, dual.New(1.0/12, len(tau[0].Dx)))
	}
	coef := dual.Sub(dual.Div(dual.New(1, len(tau[0].Dx)), dual.Mul(theta, theta)),
		dual.Div(dual.AddScalar(dual.Cos(theta), 1), dual.Scale(dual.Mul(theta, dual.Sin(theta)), 2)))
	withHalf := dualMat3AddScaled(I, w, dual.New(0.5, len(tau[0].Dx)))
	return dualMat3AddScaled(withHalf, w2, coef)
}

func (o SE3) Perturb(tau []dual.Number) DualElement {
	w := len(tau)
	e := se3ExpDual(tau)
	base := DualSE3{
		R:  DualSO3{W: dual.New(o.R.W, w), X: dual.New(o.R.X, w), Y: dual.New(o.R.Y, w), Z: dual.New(o.R.Z, w)},
		Tx: dual.New(o.Tx, w), Ty: dual.New(o.Ty, w), Tz: dual.New(o.Tz, w),
	}
	if UseLeftUpdate {
		return e.ComposeD(base)
	}
	return base.ComposeD(e)
}
