package kernel

import "github.com/cpmech/gosl/fun"

// Identity is the default L2 kernel: ρ(s) = s, so the overall cost
// ½ρ(s) reduces to the ordinary ½‖r̂‖² least-squares cost and every row
// weight is 1.
type Identity struct{}

func (Identity) Loss(s float64) float64   { return s }
func (Identity) Weight(s float64) float64 { return 1 }

func init() {
	Register("l2", func(prms fun.Prms) (Kernel, error) { return Identity{}, nil })
}
