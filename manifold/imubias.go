package manifold

import "github.com/dpedroso-lab/factorgraph/dual"

// TypeImuBias tags ImuBias variables for Values type-checking.
const TypeImuBias byte = 'B'

// ImuBias is the (gyro bias, accel bias) pair, D=6, vector-space
// semantics (compose is addition).
type ImuBias struct {
	Gyro, Accel [3]float64
}

func NewImuBias(gyro, accel [3]float64) ImuBias { return ImuBias{Gyro: gyro, Accel: accel} }

func (ImuBias) Dim() int      { return 6 }
func (ImuBias) TypeTag() byte { return TypeImuBias }
func (ImuBias) Identity() Variable { return ImuBias{} }

func (o ImuBias) Inverse() Variable {
	return ImuBias{
		Gyro:  [3]float64{-o.Gyro[0], -o.Gyro[1], -o.Gyro[2]},
		Accel: [3]float64{-o.Accel[0], -o.Accel[1], -o.Accel[2]},
	}
}

func (o ImuBias) Compose(other Variable) Variable {
	b := other.(ImuBias)
	return ImuBias{
		Gyro:  [3]float64{o.Gyro[0] + b.Gyro[0], o.Gyro[1] + b.Gyro[1], o.Gyro[2] + b.Gyro[2]},
		Accel: [3]float64{o.Accel[0] + b.Accel[0], o.Accel[1] + b.Accel[1], o.Accel[2] + b.Accel[2]},
	}
}

func (ImuBias) Exp(tau []float64) Variable {
	return ImuBias{Gyro: [3]float64{tau[0], tau[1], tau[2]}, Accel: [3]float64{tau[3], tau[4], tau[5]}}
}

func (o ImuBias) Log() []float64 {
	return []float64{o.Gyro[0], o.Gyro[1], o.Gyro[2], o.Accel[0], o.Accel[1], o.Accel[2]}
}

func (ImuBias) Adjoint() [][]float64 {
	a := make([][]float64, 6)
	for i := range a {
		a[i] = make([]float64, 6)
		a[i][i] = 1
	}
	return a
}

// DualImuBias is the dual-number counterpart of ImuBias.
type DualImuBias struct {
	Gyro, Accel [3]dual.Number
}

func (o ImuBias) Perturb(tau []dual.Number) DualElement {
	return DualImuBias{
		Gyro:  [3]dual.Number{dual.AddScalar(tau[0], o.Gyro[0]), dual.AddScalar(tau[1], o.Gyro[1]), dual.AddScalar(tau[2], o.Gyro[2])},
		Accel: [3]dual.Number{dual.AddScalar(tau[3], o.Accel[0]), dual.AddScalar(tau[4], o.Accel[1]), dual.AddScalar(tau[5], o.Accel[2])},
	}
}

func (d DualImuBias) ComposeD(other DualElement) DualElement {
	b := other.(DualImuBias)
	var r DualImuBias
	for i := 0; i < 3; i++ {
		r.Gyro[i] = dual.Add(d.Gyro[i], b.Gyro[i])
		r.Accel[i] = dual.Add(d.Accel[i], b.Accel[i])
	}
	return r
}

func (d DualImuBias) InverseD() DualElement {
	var r DualImuBias
	for i := 0; i < 3; i++ {
		r.Gyro[i] = dual.Neg(d.Gyro[i])
		r.Accel[i] = dual.Neg(d.Accel[i])
	}
	return r
}

func (d DualImuBias) LogD() []dual.Number {
	return []dual.Number{d.Gyro[0], d.Gyro[1], d.Gyro[2], d.Accel[0], d.Accel[1], d.Accel[2]}
}
