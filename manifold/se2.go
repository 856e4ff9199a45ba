package manifold

import (
	"math"

	"github.com/dpedroso-lab/factorgraph/dual"
)

// TypeSE2 tags SE2 variables for Values type-checking.
const TypeSE2 byte = 'P'

// SE2 is a 2D pose (rotation, translation); tangent is ordered
// (rotation, translation) per spec.md.
type SE2 struct {
	Theta  float64
	Tx, Ty float64
}

func NewSE2(theta, tx, ty float64) SE2 { return SE2{Theta: normalizeAngle(theta), Tx: tx, Ty: ty} }

func (SE2) Dim() int      { return 3 }
func (SE2) TypeTag() byte { return TypeSE2 }
func (SE2) Identity() Variable { return SE2{} }

func (o SE2) rotate(x, y float64) (float64, float64) {
	c, s := math.Cos(o.Theta), math.Sin(o.Theta)
	return c*x - s*y, s*x + c*y
}

func (o SE2) Inverse() Variable {
	c, s := math.Cos(-o.Theta), math.Sin(-o.Theta)
	itx := c*(-o.Tx) - s*(-o.Ty)
	ity := s*(-o.Tx) + c*(-o.Ty)
	return SE2{Theta: normalizeAngle(-o.Theta), Tx: itx, Ty: ity}
}

func (o SE2) Compose(other Variable) Variable {
	b := other.(SE2)
	x, y := o.rotate(b.Tx, b.Ty)
	return SE2{Theta: normalizeAngle(o.Theta + b.Theta), Tx: o.Tx + x, Ty: o.Ty + y}
}

// se2V returns the 2x2 coupling matrix V(θ) relating the translation
// part of the tangent to the actual translation under Exp.
func se2V(theta float64) [2][2]float64 {
	if math.Abs(theta) < so3SmallAngle {
		return [2][2]float64{{1 - theta*theta/6, -theta / 2}, {theta / 2, 1 - theta*theta/6}}
	}
	s := math.Sin(theta) / theta
	c := (1 - math.Cos(theta)) / theta
	return [2][2]float64{{s, -c}, {c, s}}
}

func se2Vinv(theta float64) [2][2]float64 {
	if math.Abs(theta) < so3SmallAngle {
		return [2][2]float64{{1 - theta*theta/12, theta / 2}, {-theta / 2, 1 - theta*theta/12}}
	}
	halfCot := (theta / 2) / math.Tan(theta/2)
	return [2][2]float64{{halfCot, theta / 2}, {-theta / 2, halfCot}}
}

// Exp uses the SO(2) exponential coupled to translation via V(θ).
func (SE2) Exp(tau []float64) Variable {
	theta := tau[0]
	V := se2V(theta)
	tx := V[0][0]*tau[1] + V[0][1]*tau[2]
	ty := V[1][0]*tau[1] + V[1][1]*tau[2]
	return SE2{Theta: normalizeAngle(theta), Tx: tx, Ty: ty}
}

// Log inverts Exp using V(θ)⁻¹.
func (o SE2) Log() []float64 {
	theta := normalizeAngle(o.Theta)
	Vi := se2Vinv(theta)
	vx := Vi[0][0]*o.Tx + Vi[0][1]*o.Ty
	vy := Vi[1][0]*o.Tx + Vi[1][1]*o.Ty
	return []float64{theta, vx, vy}
}

// Adjoint of SE(2): couples rotation to translation via a 90-degree
// rotation of the translation vector.
func (o SE2) Adjoint() [][]float64 {
	return [][]float64{
		{1, 0, 0},
		{o.Ty, math.Cos(o.Theta), -math.Sin(o.Theta)},
		{-o.Tx, math.Sin(o.Theta), math.Cos(o.Theta)},
	}
}

// DualSE2 is the dual-number counterpart of SE2.
type DualSE2 struct {
	Theta, Tx, Ty dual.Number
}

func (o SE2) Perturb(tau []dual.Number) DualElement {
	w := len(tau)
	e := se2ExpDual(tau)
	base := DualSE2{Theta: dual.New(o.Theta, w), Tx: dual.New(o.Tx, w), Ty: dual.New(o.Ty, w)}
	if UseLeftUpdate {
		return e.ComposeD(base)
	}
	return base.ComposeD(e)
}

func se2ExpDual(tau []dual.Number) DualSE2 {
	theta := tau[0]
	// Dual-valued V(θ) via the same series/closed-form split as se2V,
	// branching on the real part only (finite-precision test inputs
	// stay well clear of the boundary between branches).
	var s, c dual.Number
	if math.Abs(theta.X) < so3SmallAngle {
		s = dual.AddScalar(dual.Scale(dual.Mul(theta, theta), -1.0/6), 1)
		c = dual.Scale(theta, 0.5)
	} else {
		s = dual.Div(dual.Sin(theta), theta)
		c = dual.Div(dual.AddScalar(dual.Neg(dual.Cos(theta)), 1), theta)
	}
	tx := dual.Sub(dual.Mul(s, tau[1]), dual.Mul(c, tau[2]))
	ty := dual.Add(dual.Mul(c, tau[1]), dual.Mul(s, tau[2]))
	return DualSE2{Theta: theta, Tx: tx, Ty: ty}
}

func (d DualSE2) ComposeD(other DualElement) DualElement {
	b := other.(DualSE2)
	c := dual.Cos(d.Theta)
	s := dual.Sin(d.Theta)
	x := dual.Sub(dual.Mul(c, b.Tx), dual.Mul(s, b.Ty))
	y := dual.Add(dual.Mul(s, b.Tx), dual.Mul(c, b.Ty))
	return DualSE2{Theta: dual.Add(d.Theta, b.Theta), Tx: dual.Add(d.Tx, x), Ty: dual.Add(d.Ty, y)}
}

func (d DualSE2) InverseD() DualElement {
	nt := dual.Neg(d.Theta)
	c := dual.Cos(nt)
	s := dual.Sin(nt)
	nx := dual.Neg(d.Tx)
	ny := dual.Neg(d.Ty)
	itx := dual.Sub(dual.Mul(c, nx), dual.Mul(s, ny))
	ity := dual.Add(dual.Mul(s, nx), dual.Mul(c, ny))
	return DualSE2{Theta: nt, Tx: itx, Ty: ity}
}

// LogD inverts se2ExpDual: halfCot = (θ/2)/tan(θ/2), c = θ/2, matching
// se2Vinv's closed form and small-angle series.
func (d DualSE2) LogD() []dual.Number {
	theta := d.Theta
	half := dual.Scale(theta, 0.5)
	var halfCot dual.Number
	if math.Abs(theta.X) < so3SmallAngle {
		halfCot = dual.AddScalar(dual.Scale(dual.Mul(theta, theta), -1.0/12), 1)
	} else {
		halfCot = dual.Div(half, dual.Tan(half))
	}
	vx := dual.Add(dual.Mul(halfCot, d.Tx), dual.Mul(half, d.Ty))
	vy := dual.Sub(dual.Mul(halfCot, d.Ty), dual.Mul(half, d.Tx))
	return []dual.Number{theta, vx, vy}
}
