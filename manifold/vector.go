package manifold

import "github.com/dpedroso-lab/factorgraph/dual"

// TypeVector tags VectorVarN variables for Values type-checking.
const TypeVector byte = 'V'

// VectorVarN is a Euclidean vector space of fixed size N: compose is
// addition, inverse is negation, exp and log are the identity map.
type VectorVarN struct {
	V []float64
}

func NewVectorVarN(v []float64) VectorVarN {
	return VectorVarN{V: append([]float64{}, v...)}
}

func (o VectorVarN) Dim() int      { return len(o.V) }
func (VectorVarN) TypeTag() byte   { return TypeVector }
func (o VectorVarN) Identity() Variable { return VectorVarN{V: make([]float64, len(o.V))} }

func (o VectorVarN) Inverse() Variable {
	n := make([]float64, len(o.V))
	for i, x := range o.V {
		n[i] = -x
	}
	return VectorVarN{V: n}
}

func (o VectorVarN) Compose(other Variable) Variable {
	b := other.(VectorVarN)
	r := make([]float64, len(o.V))
	for i := range o.V {
		r[i] = o.V[i] + b.V[i]
	}
	return VectorVarN{V: r}
}

func (o VectorVarN) Exp(tau []float64) Variable { return VectorVarN{V: append([]float64{}, tau...)} }
func (o VectorVarN) Log() []float64             { return append([]float64{}, o.V...) }

func (o VectorVarN) Adjoint() [][]float64 {
	n := len(o.V)
	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n)
		a[i][i] = 1
	}
	return a
}

// DualVectorVarN is the dual-number counterpart of VectorVarN.
type DualVectorVarN struct {
	V []dual.Number
}

func (o VectorVarN) Perturb(tau []dual.Number) DualElement {
	r := make([]dual.Number, len(o.V))
	for i, x := range o.V {
		r[i] = dual.AddScalar(tau[i], x)
	}
	return DualVectorVarN{V: r}
}

func (d DualVectorVarN) ComposeD(other DualElement) DualElement {
	b := other.(DualVectorVarN)
	r := make([]dual.Number, len(d.V))
	for i := range d.V {
		r[i] = dual.Add(d.V[i], b.V[i])
	}
	return DualVectorVarN{V: r}
}

func (d DualVectorVarN) InverseD() DualElement {
	r := make([]dual.Number, len(d.V))
	for i := range d.V {
		r[i] = dual.Neg(d.V[i])
	}
	return DualVectorVarN{V: r}
}

func (d DualVectorVarN) LogD() []dual.Number { return d.V }
