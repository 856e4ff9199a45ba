package factor

import (
	"github.com/dpedroso-lab/factorgraph/dual"
	"github.com/dpedroso-lab/factorgraph/manifold"
)

// PriorResidual anchors a single variable to a fixed value:
// r = log(prior⁻¹ · v), m = D(V).
type PriorResidual struct {
	Prior manifold.Variable
	typ   byte
}

// NewPriorResidual returns a prior residual anchoring to the given
// value; the residual's expected variable type is fixed to prior's.
func NewPriorResidual(prior manifold.Variable) *PriorResidual {
	return &PriorResidual{Prior: prior, typ: prior.TypeTag()}
}

func (o *PriorResidual) Dim() int               { return o.Prior.Dim() }
func (o *PriorResidual) VariableTypes() []byte  { return []byte{o.typ} }

func (o *PriorResidual) EvaluateDual(inputs []manifold.DualElement) []dual.Number {
	width := gradientWidth(inputs[0])
	priorDual := constDual(o.Prior, width)
	return priorDual.InverseD().ComposeD(inputs[0]).LogD()
}

// gradientWidth recovers the dual gradient width carried by a
// DualElement by inspecting one component of its local coordinates;
// every residual's inputs share one width (the factor's total tangent
// dimension), so any component will do.
func gradientWidth(d manifold.DualElement) int {
	log := d.LogD()
	if len(log) == 0 {
		return 0
	}
	return len(log[0].Dx)
}

// constDual lifts a real Variable into a DualElement with zero
// gradient, the dual-number counterpart of "a constant", by perturbing
// it with an all-zero tangent of the requested width.
func constDual(v manifold.Variable, width int) manifold.DualElement {
	tau := make([]dual.Number, v.Dim())
	for i := range tau {
		tau[i] = dual.New(0, width)
	}
	return v.Perturb(tau)
}
