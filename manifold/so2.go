package manifold

import (
	"math"

	"github.com/dpedroso-lab/factorgraph/dual"
)

// TypeSO2 tags SO2 variables for Values type-checking.
const TypeSO2 byte = 'R'

// SO2 is a planar rotation represented by its angle in radians.
type SO2 struct {
	Theta float64
}

// NewSO2 returns the SO2 element with the given angle.
func NewSO2(theta float64) SO2 { return SO2{Theta: theta} }

func (SO2) Dim() int      { return 1 }
func (SO2) TypeTag() byte { return TypeSO2 }

func (SO2) Identity() Variable { return SO2{Theta: 0} }

func (o SO2) Inverse() Variable { return SO2{Theta: -o.Theta} }

func (o SO2) Compose(other Variable) Variable {
	b := other.(SO2)
	return SO2{Theta: normalizeAngle(o.Theta + b.Theta)}
}

// Exp(θ) = rotation by θ; the receiver's value is irrelevant.
func (SO2) Exp(tau []float64) Variable {
	return SO2{Theta: normalizeAngle(tau[0])}
}

// Log returns θ normalized to (-π, π].
func (o SO2) Log() []float64 { return []float64{normalizeAngle(o.Theta)} }

// Adjoint of SO(2) is the scalar 1 (rotations commute in the plane).
func (SO2) Adjoint() [][]float64 { return [][]float64{{1}} }

// normalizeAngle maps an angle into (-π, π].
func normalizeAngle(theta float64) float64 {
	theta = math.Mod(theta+math.Pi, 2*math.Pi)
	if theta < 0 {
		theta += 2 * math.Pi
	}
	return theta - math.Pi
}

// DualSO2 is the dual-number counterpart of SO2.
type DualSO2 struct {
	Theta dual.Number
}

// Perturb is convention-independent: SO(2) is abelian, so left-update
// and right-update coincide.
func (o SO2) Perturb(tau []dual.Number) DualElement {
	return DualSO2{Theta: dual.AddScalar(tau[0], o.Theta)}
}

func (d DualSO2) ComposeD(other DualElement) DualElement {
	b := other.(DualSO2)
	return DualSO2{Theta: dual.Add(d.Theta, b.Theta)}
}

func (d DualSO2) InverseD() DualElement {
	return DualSO2{Theta: dual.Neg(d.Theta)}
}

// LogD returns θ without wrap-around normalization: dual arithmetic
// cannot differentiate through math.Mod's discontinuity, and residuals
// are always evaluated near the linearization point where no wrap
// occurs within a single Gauss-Newton/LM step.
func (d DualSO2) LogD() []dual.Number { return []dual.Number{d.Theta} }
