package kernel

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Welsch is the Welsch (Leclerc) robust loss with scale a:
// ρ(s) = a² (1 - exp(-s/a²)).
type Welsch struct {
	A float64
}

func NewWelsch(a float64) Welsch {
	if a <= 0 {
		chk.Panic("kernel: Welsch scale must be positive, got %v", a)
	}
	return Welsch{A: a}
}

func (o Welsch) Loss(s float64) float64 {
	a2 := o.A * o.A
	return a2 * (1 - math.Exp(-s/a2))
}

func (o Welsch) Weight(s float64) float64 {
	a2 := o.A * o.A
	return math.Exp(-s / a2)
}

func init() {
	Register("welsch", func(prms fun.Prms) (Kernel, error) {
		a, ok := findPrm(prms, "a")
		if !ok {
			return nil, chk.Err("welsch kernel requires an 'a' parameter")
		}
		return NewWelsch(a), nil
	})
}
