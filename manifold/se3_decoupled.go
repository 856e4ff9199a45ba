//go:build se3decoupled

package manifold

import "github.com/dpedroso-lab/factorgraph/dual"

// DecoupledSE3Exp reports whether this build uses the decoupled SO(3)xR³
// retraction instead of the true SE(3) exponential.
const DecoupledSE3Exp = true

// Exp is the decoupled SO(3)xR³ retraction: rotation and translation
// are independent, so the translation tangent maps directly onto the
// translation component with no V(ω) coupling.
func (SE3) Exp(tau []float64) Variable {
	r := SO3{}.Exp(tau[0:3]).(SO3)
	return SE3{R: r, Tx: tau[3], Ty: tau[4], Tz: tau[5]}
}

// Log inverts the decoupled Exp: rotation via SO(3)'s log, translation
// read off directly.
func (o SE3) Log() []float64 {
	omega := o.R.Log()
	return []float64{omega[0], omega[1], omega[2], o.Tx, o.Ty, o.Tz}
}

func (d DualSE3) LogD() []dual.Number {
	rLog := d.R.LogD()
	return []dual.Number{rLog[0], rLog[1], rLog[2], d.Tx, d.Ty, d.Tz}
}

func se3ExpDual(tau []dual.Number) DualSE3 {
	r := quatExpDual([]dual.Number{tau[0], tau[1], tau[2]})
	return DualSE3{R: r, Tx: tau[3], Ty: tau[4], Tz: tau[5]}
}
