package imu

import "gonum.org/v1/gonum/mat"

func hat3(v [3]float64) [3][3]float64 {
	return [3][3]float64{
		{0, -v[2], v[1]},
		{v[2], 0, -v[0]},
		{-v[1], v[0], 0},
	}
}

func identity3() [3][3]float64 {
	return [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

func mat3Add(a, b [3][3]float64) [3][3]float64 {
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = a[i][j] + b[i][j]
		}
	}
	return r
}

func mat3Sub(a, b [3][3]float64) [3][3]float64 {
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = a[i][j] - b[i][j]
		}
	}
	return r
}

func mat3Scale(a [3][3]float64, s float64) [3][3]float64 {
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = a[i][j] * s
		}
	}
	return r
}

func skewScaled(v [3]float64, s float64) [3][3]float64 { return mat3Scale(hat3(v), s) }

func mat3Mul(a, b [3][3]float64) [3][3]float64 {
	var r [3][3]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var s float64
			for k := 0; k < 3; k++ {
				s += a[i][k] * b[k][j]
			}
			r[i][j] = s
		}
	}
	return r
}

func add3(a, b [3]float64) [3]float64   { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func sub3(a, b [3]float64) [3]float64   { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func scale3(a [3]float64, s float64) [3]float64 { return [3]float64{a[0] * s, a[1] * s, a[2] * s} }

func matVec3(m [3][3]float64, v [3]float64) [3]float64 {
	return [3]float64{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

func setBlock(A *[15][15]float64, r, c int, m [3][3]float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			A[r+i][c+j] = m[i][j]
		}
	}
}

func setBlockRect(B *[15][18]float64, r, c int, m [3][3]float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			B[r+i][c+j] = m[i][j]
		}
	}
}

func diagNoise18(n NoiseParams) [18][18]float64 {
	var q [18][18]float64
	sigmas := []float64{
		n.GyroSigma, n.GyroSigma, n.GyroSigma,
		n.AccelSigma, n.AccelSigma, n.AccelSigma,
		n.GyroBiasSigma, n.GyroBiasSigma, n.GyroBiasSigma,
		n.AccelBiasSigma, n.AccelBiasSigma, n.AccelBiasSigma,
		n.IntegrationSigma, n.IntegrationSigma, n.IntegrationSigma,
		n.InitBiasSigma, n.InitBiasSigma, n.InitBiasSigma,
	}
	for i, s := range sigmas {
		q[i][i] = s * s
	}
	return q
}

// propagateCov computes Σ' = A Σ Aᵀ + B Q Bᵀ via gonum/mat, the
// per-sample covariance recurrence of spec.md §4.9 step 5.
func propagateCov(A [15][15]float64, B [15][18]float64, Sigma [15][15]float64, Q [18][18]float64) [15][15]float64 {
	Ad := flatten15x15(A)
	Sd := flatten15x15(Sigma)
	Bd := flatten15x18(B)
	Qd := flatten18x18(Q)

	var term1, tmp mat.Dense
	tmp.Mul(Ad, Sd)
	term1.Mul(&tmp, Ad.T())

	var term2, tmp2 mat.Dense
	tmp2.Mul(Bd, Qd)
	term2.Mul(&tmp2, Bd.T())

	var out mat.Dense
	out.Add(&term1, &term2)

	var r [15][15]float64
	for i := 0; i < 15; i++ {
		for j := 0; j < 15; j++ {
			r[i][j] = out.At(i, j)
		}
	}
	return r
}

func flatten15x15(m [15][15]float64) *mat.Dense {
	data := make([]float64, 225)
	for i := 0; i < 15; i++ {
		copy(data[i*15:i*15+15], m[i][:])
	}
	return mat.NewDense(15, 15, data)
}

func flatten15x18(m [15][18]float64) *mat.Dense {
	data := make([]float64, 270)
	for i := 0; i < 15; i++ {
		copy(data[i*18:i*18+18], m[i][:])
	}
	return mat.NewDense(15, 18, data)
}

func flatten18x18(m [18][18]float64) *mat.Dense {
	data := make([]float64, 324)
	for i := 0; i < 18; i++ {
		copy(data[i*18:i*18+18], m[i][:])
	}
	return mat.NewDense(18, 18, data)
}
