package kernel

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// GemanMcClure is the Geman-McClure robust loss with scale a:
// ρ(s) = a²s / (a² + s).
type GemanMcClure struct {
	A float64
}

func NewGemanMcClure(a float64) GemanMcClure {
	if a <= 0 {
		chk.Panic("kernel: GemanMcClure scale must be positive, got %v", a)
	}
	return GemanMcClure{A: a}
}

func (o GemanMcClure) Loss(s float64) float64 {
	a2 := o.A * o.A
	return a2 * s / (a2 + s)
}

func (o GemanMcClure) Weight(s float64) float64 {
	a2 := o.A * o.A
	denom := a2 + s
	return (a2 * a2) / (denom * denom)
}

func init() {
	Register("geman-mcclure", func(prms fun.Prms) (Kernel, error) {
		a, ok := findPrm(prms, "a")
		if !ok {
			return nil, chk.Err("geman-mcclure kernel requires an 'a' parameter")
		}
		return NewGemanMcClure(a), nil
	})
}
