package kernel

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Huber is the Huber robust loss with tunable threshold delta:
//
//	ρ(s) = s                   if s <= δ²
//	ρ(s) = 2δ√s - δ²           if s >  δ²
type Huber struct {
	Delta float64
}

// NewHuber returns a Huber kernel with the given threshold.
func NewHuber(delta float64) Huber {
	if delta <= 0 {
		chk.Panic("kernel: Huber delta must be positive, got %v", delta)
	}
	return Huber{Delta: delta}
}

func (o Huber) Loss(s float64) float64 {
	d2 := o.Delta * o.Delta
	if s <= d2 {
		return s
	}
	return 2*o.Delta*math.Sqrt(s) - d2
}

func (o Huber) Weight(s float64) float64 {
	d2 := o.Delta * o.Delta
	if s <= d2 {
		return 1
	}
	return o.Delta / math.Sqrt(s)
}

func init() {
	Register("huber", func(prms fun.Prms) (Kernel, error) {
		delta, ok := findPrm(prms, "delta")
		if !ok {
			return nil, chk.Err("huber kernel requires a 'delta' parameter")
		}
		return NewHuber(delta), nil
	})
}
