//go:build !se3decoupled

package manifold

import "github.com/dpedroso-lab/factorgraph/dual"

// DecoupledSE3Exp reports whether this build uses the decoupled SO(3)xR³
// retraction instead of the true SE(3) exponential; see se3_decoupled.go.
const DecoupledSE3Exp = false

// Exp is the true SE(3) exponential: rotation via SO(3)'s exponential,
// translation coupled through the right-Jacobian V(ω) the same way
// se2V couples SE(2)'s translation.
func (SE3) Exp(tau []float64) Variable {
	omega := tau[0:3]
	rho := tau[3:6]
	r := SO3{}.Exp(omega).(SO3)
	V := RightJacobian(omega) // V(ω) == H(ω), the SO(3) right-Jacobian, per the standard SE(3) exp derivation
	t := matVec3(V, [3]float64{rho[0], rho[1], rho[2]})
	return SE3{R: r, Tx: t[0], Ty: t[1], Tz: t[2]}
}

// Log inverts Exp using H(ω)⁻¹ to decouple translation from rotation.
func (o SE3) Log() []float64 {
	omega := o.R.Log()
	Hi := RightJacobianInverse(omega)
	rho := matVec3(Hi, [3]float64{o.Tx, o.Ty, o.Tz})
	return []float64{omega[0], omega[1], omega[2], rho[0], rho[1], rho[2]}
}

func (d DualSE3) LogD() []dual.Number {
	rLog := d.R.LogD()
	H := dualRightJacobianInverse(rLog)
	p := dualMatVec3(H, [3]dual.Number{d.Tx, d.Ty, d.Tz})
	return []dual.Number{rLog[0], rLog[1], rLog[2], p[0], p[1], p[2]}
}

func se3ExpDual(tau []dual.Number) DualSE3 {
	omega := []dual.Number{tau[0], tau[1], tau[2]}
	r := quatExpDual(omega)
	H := dualRightJacobian(omega)
	t := dualMatVec3(H, [3]dual.Number{tau[3], tau[4], tau[5]})
	return DualSE3{R: r, Tx: t[0], Ty: t[1], Tz: t[2]}
}

func dualRightJacobian(tau []dual.Number) [3][3]dual.Number {
	theta2 := dual.Add(dual.Add(dual.Mul(tau[0], tau[0]), dual.Mul(tau[1], tau[1])), dual.Mul(tau[2], tau[2]))
	theta := dual.Sqrt(dual.AddScalar(theta2, 1e-24))
	width := len(tau[0].Dx)
	w := dualHat([3]dual.Number{tau[0], tau[1], tau[2]})
	w2 := dualMat3Mul(w, w)
	I := dualIdentity3(width)
	if theta.X < so3SmallAngle {
		withNegHalf := dualMat3AddScaled(I, w, dual.New(-0.5, width))
		return dualMat3AddScaled(withNegHalf, w2, dual.New(1.0/6, width))
	}
	a := dual.Div(dual.AddScalar(dual.Neg(dual.Cos(theta)), 1), dual.Mul(theta, theta))
	b := dual.Div(dual.Sub(theta, dual.Sin(theta)), dual.Mul(dual.Mul(theta, theta), theta))
	withA := dualMat3AddScaled(I, w, dual.Neg(a))
	return dualMat3AddScaled(withA, w2, b)
}
