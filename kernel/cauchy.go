package kernel

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Cauchy is the Cauchy (Lorentzian) robust loss with scale a:
// ρ(s) = a² ln(1 + s/a²).
type Cauchy struct {
	A float64
}

func NewCauchy(a float64) Cauchy {
	if a <= 0 {
		chk.Panic("kernel: Cauchy scale must be positive, got %v", a)
	}
	return Cauchy{A: a}
}

func (o Cauchy) Loss(s float64) float64 {
	a2 := o.A * o.A
	return a2 * math.Log(1+s/a2)
}

func (o Cauchy) Weight(s float64) float64 {
	a2 := o.A * o.A
	return a2 / (a2 + s)
}

func init() {
	Register("cauchy", func(prms fun.Prms) (Kernel, error) {
		a, ok := findPrm(prms, "a")
		if !ok {
			return nil, chk.Err("cauchy kernel requires an 'a' parameter")
		}
		return NewCauchy(a), nil
	})
}
