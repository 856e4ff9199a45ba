package factor

import (
	"github.com/dpedroso-lab/factorgraph/dual"
	"github.com/dpedroso-lab/factorgraph/manifold"
)

// BetweenResidual constrains the relative transform between two
// variables of the same type: r = log(delta⁻¹ · (v1⁻¹ · v2)), m = D(V).
type BetweenResidual struct {
	Delta manifold.Variable
	typ   byte
}

// NewBetweenResidual returns a between residual for the given relative
// measurement; both inputs must have delta's type.
func NewBetweenResidual(delta manifold.Variable) *BetweenResidual {
	return &BetweenResidual{Delta: delta, typ: delta.TypeTag()}
}

func (o *BetweenResidual) Dim() int              { return o.Delta.Dim() }
func (o *BetweenResidual) VariableTypes() []byte { return []byte{o.typ, o.typ} }

func (o *BetweenResidual) EvaluateDual(inputs []manifold.DualElement) []dual.Number {
	v1, v2 := inputs[0], inputs[1]
	width := gradientWidth(v1)
	deltaDual := constDual(o.Delta, width)
	relative := v1.InverseD().ComposeD(v2)
	return deltaDual.InverseD().ComposeD(relative).LogD()
}
