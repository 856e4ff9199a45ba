package imu

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/stretchr/testify/require"

	"github.com/dpedroso-lab/factorgraph/factor"
	"github.com/dpedroso-lab/factorgraph/manifold"
	"github.com/dpedroso-lab/factorgraph/noise"
	"github.com/dpedroso-lab/factorgraph/symbol"
)

// lookup is a bare-bones factor.ValueLookup for tests.
type lookup map[symbol.Key]manifold.Variable

func (l lookup) Get(k symbol.Key) (manifold.Variable, bool) { v, ok := l[k]; return v, ok }

func testNoise() NoiseParams {
	return NoiseParams{
		GyroSigma:        1e-3,
		AccelSigma:       1e-3,
		GyroBiasSigma:    1e-4,
		AccelBiasSigma:   1e-4,
		IntegrationSigma: 1e-5,
		InitBiasSigma:    1e-4,
	}
}

func traceOf(cov [15][15]float64) float64 {
	var s float64
	for i := 0; i < 15; i++ {
		s += cov[i][i]
	}
	return s
}

func covSlice(cov [15][15]float64) [][]float64 {
	out := make([][]float64, 15)
	for i := range out {
		out[i] = append([]float64{}, cov[i][:]...)
	}
	return out
}

// Test_zero_motion01 implements spec.md §8 scenario 5: 100 samples at
// rest (already gravity-compensated, so the driver sees a zero
// specific force; see DESIGN.md's Open Question resolution on the
// scenario's raw "a=-g" accelerometer reading) integrate to an
// identity summary, and the resulting factor vanishes between
// identical endpoint states.
func Test_zero_motion01(tst *testing.T) {

	chk.PrintTitle("zero_motion01. 100 samples at rest integrate to an identity IMU summary")

	d := NewDriver([3]float64{}, [3]float64{}, testNoise())
	for i := 0; i < 100; i++ {
		d.Update([3]float64{}, [3]float64{}, 0.01)
	}

	chk.Vector(tst, "Theta", 1e-9, d.Theta[:], []float64{0, 0, 0})
	chk.Vector(tst, "Va", 1e-9, d.Va[:], []float64{0, 0, 0})
	chk.Vector(tst, "Pa", 1e-9, d.Pa[:], []float64{0, 0, 0})

	res := NewFactorResidual(d)
	nm, err := noise.FromCovariance(covSlice(d.Cov))
	require.NoError(tst, err, "noise.FromCovariance")
	poseI, poseJ := symbol.Make('x', 0), symbol.Make('x', 1)
	velI, velJ := symbol.Make('v', 0), symbol.Make('v', 1)
	biasI, biasJ := symbol.Make('b', 0), symbol.Make('b', 1)

	f, err := factor.New(res, []symbol.Key{poseI, velI, biasI, poseJ, velJ, biasJ}, nm, nil)
	require.NoError(tst, err, "factor.New")

	identity := manifold.NewSE3(manifold.NewSO3(1, 0, 0, 0), 0, 0, 0)
	zeroVel := manifold.NewVectorVarN([]float64{0, 0, 0})
	zeroBias := manifold.NewImuBias([3]float64{}, [3]float64{})

	l := lookup{
		poseI: identity, velI: zeroVel, biasI: zeroBias,
		poseJ: identity, velJ: zeroVel, biasJ: zeroBias,
	}
	lin, err := f.Linearize(l)
	require.NoError(tst, err, "Linearize")
	for i, x := range lin.Rhat {
		_ = i
		chk.Scalar(tst, "r(imu zero-motion)", 1e-6, x, 0)
	}
}

// Test_constant_angular_velocity01 implements spec.md §8 scenario 6:
// 100 samples of a pure z-axis angular rate integrate to a rotation of
// exactly ω·T about z (the preintegration ODE's non-commutativity
// correction vanishes for a single fixed axis), and the covariance
// trace never decreases sample to sample.
func Test_constant_angular_velocity01(tst *testing.T) {

	chk.PrintTitle("constant_angular_velocity01. constant z angular rate integrates to Rz(ω·T), covariance trace grows")

	d := NewDriver([3]float64{}, [3]float64{}, testNoise())
	prevTrace := traceOf(d.Cov)
	for i := 0; i < 100; i++ {
		d.Update([3]float64{0, 0, 1.0}, [3]float64{}, 0.01)
		cur := traceOf(d.Cov)
		require.GreaterOrEqualf(tst, cur, prevTrace-1e-15, "covariance trace decreased at sample %d", i)
		prevTrace = cur
	}

	chk.Vector(tst, "Theta", 1e-10, d.Theta[:], []float64{0, 0, 1.0})
}
