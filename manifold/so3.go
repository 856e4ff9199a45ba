package manifold

import (
	"math"

	"github.com/dpedroso-lab/factorgraph/dual"
)

// TypeSO3 tags SO3 variables for Values type-checking.
const TypeSO3 byte = 'Q'

const so3SmallAngle = 1e-8

// SO3 is a 3D rotation represented as a unit quaternion (w, x, y, z),
// per spec.md's concrete-variable choice.
type SO3 struct {
	W, X, Y, Z float64
}

// NewSO3 returns the SO3 element for the given (already-normalized or
// not) quaternion; the constructor normalizes it.
func NewSO3(w, x, y, z float64) SO3 {
	n := math.Sqrt(w*w + x*x + y*y + z*z)
	if n == 0 {
		return SO3{W: 1}
	}
	return SO3{W: w / n, X: x / n, Y: y / n, Z: z / n}
}

func (SO3) Dim() int      { return 3 }
func (SO3) TypeTag() byte { return TypeSO3 }

func (SO3) Identity() Variable { return SO3{W: 1} }

func (o SO3) Inverse() Variable {
	return SO3{W: o.W, X: -o.X, Y: -o.Y, Z: -o.Z}
}

func quatMul(a, b SO3) SO3 {
	return SO3{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

func (o SO3) Compose(other Variable) Variable {
	return quatMul(o, other.(SO3))
}

// Exp is the Rodrigues formula expressed through the quaternion
// exponential: exp(tau) = (cos(θ/2), sin(θ/2) tau/θ).
func (SO3) Exp(tau []float64) Variable {
	theta := math.Sqrt(tau[0]*tau[0] + tau[1]*tau[1] + tau[2]*tau[2])
	if theta < so3SmallAngle {
		// Taylor series of sin(θ/2)/θ around θ=0 avoids the 0/0 form.
		half := 0.5 - theta*theta/48
		return SO3{W: 1 - theta*theta/8, X: tau[0] * half, Y: tau[1] * half, Z: tau[2] * half}
	}
	s := math.Sin(theta/2) / theta
	return SO3{W: math.Cos(theta / 2), X: tau[0] * s, Y: tau[1] * s, Z: tau[2] * s}
}

// Log returns the rotation vector θ·axis via the quaternion logarithm,
// the representation-matched counterpart of spec.md's trace-formula
// matrix log (both branch on small/near-π angle; see DESIGN.md).
func (o SO3) Log() []float64 {
	w := o.W
	v := [3]float64{o.X, o.Y, o.Z}
	if w < 0 {
		w, v = -w, [3]float64{-v[0], -v[1], -v[2]} // canonical sign: shortest rotation
	}
	n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
	if n < so3SmallAngle {
		// Taylor series of 2*atan2(n,w)/n around n=0.
		scale := 2.0/w - 2.0*n*n/(3*w*w*w)
		return []float64{v[0] * scale, v[1] * scale, v[2] * scale}
	}
	theta := 2 * math.Atan2(n, w)
	scale := theta / n
	return []float64{v[0] * scale, v[1] * scale, v[2] * scale}
}

// Adjoint of SO(3) at the receiver is its 3x3 rotation matrix.
func (o SO3) Adjoint() [][]float64 { return o.Matrix() }

// Matrix returns the 3x3 rotation matrix equivalent of the receiver.
func (o SO3) Matrix() [][]float64 {
	w, x, y, z := o.W, o.X, o.Y, o.Z
	return [][]float64{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	}
}

// Hat returns the skew-symmetric matrix [w]x such that [w]x v = w x v.
func Hat(w []float64) [][]float64 {
	return [][]float64{
		{0, -w[2], w[1]},
		{w[2], 0, -w[0]},
		{-w[1], w[0], 0},
	}
}

func mat3Add(a, b [][]float64) [][]float64 {
	r := make([][]float64, 3)
	for i := 0; i < 3; i++ {
		r[i] = []float64{a[i][0] + b[i][0], a[i][1] + b[i][1], a[i][2] + b[i][2]}
	}
	return r
}

func mat3Scale(a [][]float64, s float64) [][]float64 {
	r := make([][]float64, 3)
	for i := 0; i < 3; i++ {
		r[i] = []float64{a[i][0] * s, a[i][1] * s, a[i][2] * s}
	}
	return r
}

func mat3Mul(a, b [][]float64) [][]float64 {
	r := make([][]float64, 3)
	for i := 0; i < 3; i++ {
		r[i] = make([]float64, 3)
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += a[i][k] * b[k][j]
			}
			r[i][j] = s
		}
	}
	return r
}

func identity3() [][]float64 {
	return [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// RightJacobian returns H(θ), the right-Jacobian of the SO(3)
// exponential map, required by IMU preintegration.
func RightJacobian(tau []float64) [][]float64 {
	theta := math.Sqrt(tau[0]*tau[0] + tau[1]*tau[1] + tau[2]*tau[2])
	w := Hat(tau)
	if theta < so3SmallAngle {
		// H(θ) ≈ I - 1/2 [θ]x + 1/6 [θ]x²
		return mat3Add(mat3Add(identity3(), mat3Scale(w, -0.5)), mat3Scale(mat3Mul(w, w), 1.0/6.0))
	}
	a := (1 - math.Cos(theta)) / (theta * theta)
	b := (theta - math.Sin(theta)) / (theta * theta * theta)
	return mat3Add(mat3Add(identity3(), mat3Scale(w, -a)), mat3Scale(mat3Mul(w, w), b))
}

// RightJacobianInverse returns H(θ)⁻¹.
func RightJacobianInverse(tau []float64) [][]float64 {
	theta := math.Sqrt(tau[0]*tau[0] + tau[1]*tau[1] + tau[2]*tau[2])
	w := Hat(tau)
	if theta < so3SmallAngle {
		// H(θ)⁻¹ ≈ I + 1/2 [θ]x + 1/12 [θ]x²
		return mat3Add(mat3Add(identity3(), mat3Scale(w, 0.5)), mat3Scale(mat3Mul(w, w), 1.0/12.0))
	}
	coef := 1.0/(theta*theta) - (1+math.Cos(theta))/(2*theta*math.Sin(theta))
	return mat3Add(mat3Add(identity3(), mat3Scale(w, 0.5)), mat3Scale(mat3Mul(w, w), coef))
}

// Perturb returns o ⊕ tau (or exp(tau) ∘ o under the left-update
// build) as a dual-valued quaternion.
func (o SO3) Perturb(tau []dual.Number) DualElement {
	e := quatExpDual(tau)
	base := DualSO3{W: dual.New(o.W, len(tau)), X: dual.New(o.X, len(tau)), Y: dual.New(o.Y, len(tau)), Z: dual.New(o.Z, len(tau))}
	if UseLeftUpdate {
		return e.ComposeD(base)
	}
	return base.ComposeD(e)
}

func quatExpDual(tau []dual.Number) DualSO3 {
	w := len(tau)
	theta2 := dual.Add(dual.Add(dual.Mul(tau[0], tau[0]), dual.Mul(tau[1], tau[1])), dual.Mul(tau[2], tau[2]))
	theta := dual.Sqrt(dual.AddScalar(theta2, 1e-24)) // regularize sqrt at 0 for dual derivative
	half := dual.Scale(theta, 0.5)
	s := dual.Div(dual.Sin(half), theta)
	return DualSO3{
		W: dual.Cos(half),
		X: dual.Mul(tau[0], s), Y: dual.Mul(tau[1], s), Z: dual.Mul(tau[2], s),
		width: w,
	}
}

// DualSO3 is the dual-number counterpart of SO3.
type DualSO3 struct {
	W, X, Y, Z dual.Number
	width      int
}

func (d DualSO3) ComposeD(other DualElement) DualElement {
	b := other.(DualSO3)
	return DualSO3{
		W: dual.Sub(dual.Mul(d.W, b.W), dual.Add(dual.Mul(d.X, b.X), dual.Add(dual.Mul(d.Y, b.Y), dual.Mul(d.Z, b.Z)))),
		X: dual.Add(dual.Add(dual.Mul(d.W, b.X), dual.Mul(d.X, b.W)), dual.Sub(dual.Mul(d.Y, b.Z), dual.Mul(d.Z, b.Y))),
		Y: dual.Add(dual.Sub(dual.Mul(d.W, b.Y), dual.Mul(d.X, b.Z)), dual.Add(dual.Mul(d.Y, b.W), dual.Mul(d.Z, b.X))),
		Z: dual.Add(dual.Add(dual.Mul(d.W, b.Z), dual.Mul(d.X, b.Y)), dual.Sub(dual.Mul(d.Z, b.W), dual.Mul(d.Y, b.X))),
	}
}

func (d DualSO3) InverseD() DualElement {
	return DualSO3{W: d.W, X: dual.Neg(d.X), Y: dual.Neg(d.Y), Z: dual.Neg(d.Z)}
}

// LogD returns the dual-valued rotation vector, without the w<0
// sign-flip branch (discontinuous, and factor linearization points
// stay within a hemisphere between iterations).
func (d DualSO3) LogD() []dual.Number {
	n2 := dual.Add(dual.Add(dual.Mul(d.X, d.X), dual.Mul(d.Y, d.Y)), dual.Mul(d.Z, d.Z))
	n := dual.Sqrt(dual.AddScalar(n2, 1e-24))
	theta := dual.Scale(dual.Atan2(n, d.W), 2)
	scale := dual.Div(theta, n)
	return []dual.Number{dual.Mul(d.X, scale), dual.Mul(d.Y, scale), dual.Mul(d.Z, scale)}
}

// ExpSO3Dual is quatExpDual exported for packages (imu's preintegrated
// factor) that need the dual-valued SO(3) exponential of a tangent
// vector whose components already carry derivatives of their own,
// rather than perturbing an existing dual rotation.
func ExpSO3Dual(tau []dual.Number) DualSO3 { return quatExpDual(tau) }

// QuatMatrixDual is dualQuatMatrix exported for cross-package use.
func QuatMatrixDual(q DualSO3) [3][3]dual.Number { return dualQuatMatrix(q) }

// MatVec3Dual is dualMatVec3 exported for cross-package use.
func MatVec3Dual(m [3][3]dual.Number, v [3]dual.Number) [3]dual.Number { return dualMatVec3(m, v) }
