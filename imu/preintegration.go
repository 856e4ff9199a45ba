// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package imu implements IMU preintegration (spec.md §4.9): a Driver
// that folds a sequence of high-rate gyro/accel samples into a single
// summary (Δθ, Δv^a, Δp^a, 15x15 covariance, bias Jacobians)
// independent of the keyframe's absolute pose/velocity, plus the
// six-variable factor built from that summary. Grounded in shape on
// msolid/driver.go's Driver, which likewise folds a sequence of path
// increments into accumulated State results one sample at a time via
// Run/updates, here replacing stress/strain state with the rotation/
// velocity/position/covariance/bias-Jacobian quintuple the on-manifold
// preintegration derivation (Forster et al.) propagates.
package imu

import (
	"github.com/dpedroso-lab/factorgraph/manifold"
)

// NoiseParams holds the continuous-time noise standard deviations
// feeding the 18x18 block-diagonal Q spec.md §4.9 step 5 names: gyro,
// accel, gyro-bias random walk, accel-bias random walk, an
// integration-noise block absorbing unmodeled higher-order terms, and
// an init-bias block seeding Σ's bias-block prior before the first
// sample (see NewDriver).
type NoiseParams struct {
	GyroSigma        float64
	AccelSigma       float64
	GyroBiasSigma    float64
	AccelBiasSigma   float64
	IntegrationSigma float64
	InitBiasSigma    float64
}

// Driver accumulates a preintegrated summary Δ = (θ, v^a, p^a, Δt)
// sample by sample, alongside its 15x15 state covariance and the bias
// Jacobians that let an optimizer correct Δ for a bias update without
// redoing the full integration.
type Driver struct {
	Theta [3]float64 // incremental rotation, Lie coordinates
	Va    [3]float64 // gravity-free body-frame velocity
	Pa    [3]float64 // gravity-free body-frame position
	DeltaT float64

	// Linearization-point biases Δ was integrated against; HThetaBg etc.
	// correct Δ to a nearby bias estimate via first-order Taylor
	// expansion rather than re-integrating.
	BiasGyro, BiasAccel [3]float64

	// Covariance of (θ, v^a, p^a, gyro-bias, accel-bias), in that order.
	Cov [15][15]float64

	// Bias Jacobians, maintained by the A-step recurrence of step 6.
	HThetaBg [3][3]float64
	HVBg, HVBa [3][3]float64
	HPBg, HPBa [3][3]float64

	noise NoiseParams
}

// NewDriver returns a Driver at the identity summary, seeded with an
// init-bias prior on the bias diagonal blocks of Cov (the one place
// the init-bias noise block contributes: it is a prior on the starting
// bias estimate, not a per-sample process noise, so step-wise
// propagation folds it into Cov once here rather than through B).
func NewDriver(biasGyro, biasAccel [3]float64, noise NoiseParams) *Driver {
	d := &Driver{BiasGyro: biasGyro, BiasAccel: biasAccel, noise: noise}
	s2 := noise.InitBiasSigma * noise.InitBiasSigma
	for i := 0; i < 3; i++ {
		d.Cov[9+i][9+i] = s2
		d.Cov[12+i][12+i] = s2
	}
	return d
}

// Update folds one (ω, a, dt) sample into the summary, following
// spec.md §4.9 steps 1-6.
func (d *Driver) Update(omega, accel [3]float64, dt float64) {
	// step 1: de-bias.
	wt := sub3(omega, d.BiasGyro)
	at := sub3(accel, d.BiasAccel)

	R := manifold.SO3{}.Exp(d.Theta[:]).(manifold.SO3).Matrix()
	Rat := matVec3(R, at)

	hInv := manifold.RightJacobianInverse(d.Theta[:])
	thetaDot := matVec3(hInv, wt)

	// steps 2-4.
	newTheta := add3(d.Theta, scale3(thetaDot, dt))
	newVa := add3(d.Va, scale3(Rat, dt))
	newPa := add3(d.Pa, add3(scale3(d.Va, dt), scale3(Rat, 0.5*dt*dt)))

	// step 5/6: analytic Jacobians A (state wrt state) and B (state wrt
	// noise), linearized at the pre-update point; see package doc.
	wdt := scale3(wt, dt)
	Hr := manifold.RightJacobian(wdt[:])
	atHat := hat3(at)
	atHatR := mat3Mul(R, atHat)

	dThetaThetadTheta := mat3Sub(identity3(), skewScaled(wdt, 1))
	dThetaThetadBg := mat3Scale(Hr, -dt)
	dVThetadTheta := mat3Scale(atHatR, -dt)
	dVdBa := mat3Scale(R, -dt)
	dPThetadTheta := mat3Scale(atHatR, -0.5*dt*dt)
	dPdBa := mat3Scale(R, -0.5*dt*dt)

	var A [15][15]float64
	setBlock(&A, 0, 0, dThetaThetadTheta)
	setBlock(&A, 0, 9, dThetaThetadBg)
	setBlock(&A, 3, 0, dVThetadTheta)
	setBlock(&A, 3, 3, identity3())
	setBlock(&A, 3, 12, dVdBa)
	setBlock(&A, 6, 0, dPThetadTheta)
	setBlock(&A, 6, 3, mat3Scale(identity3(), dt))
	setBlock(&A, 6, 6, identity3())
	setBlock(&A, 6, 12, dPdBa)
	setBlock(&A, 9, 9, identity3())
	setBlock(&A, 12, 12, identity3())

	var B [15][18]float64
	setBlockRect(&B, 0, 0, Hr)                              // dθ/d(gyro noise)
	setBlockRect(&B, 3, 3, mat3Scale(R, dt))                 // dv/d(accel noise)
	setBlockRect(&B, 6, 3, mat3Scale(R, 0.5*dt*dt))          // dp/d(accel noise)
	setBlockRect(&B, 9, 6, mat3Scale(identity3(), dt))       // dbg/d(gyro-bias rw)
	setBlockRect(&B, 12, 9, mat3Scale(identity3(), dt))      // dba/d(accel-bias rw)
	setBlockRect(&B, 3, 12, mat3Scale(identity3(), dt))      // dv/d(integration noise)
	setBlockRect(&B, 6, 12, mat3Scale(identity3(), 0.5*dt*dt)) // dp/d(integration noise)

	Q := diagNoise18(d.noise)

	d.Cov = propagateCov(A, B, d.Cov, Q)

	// bias Jacobian recurrence: H_{k+1} = A_state_theta * H_k + A_state_bg,
	// the same A blocks used above to propagate covariance.
	newHThetaBg := mat3Add(mat3Mul(dThetaThetadTheta, d.HThetaBg), dThetaThetadBg)
	newHVBg := mat3Add(d.HVBg, mat3Mul(dVThetadTheta, d.HThetaBg))
	newHVBa := mat3Add(d.HVBa, dVdBa)
	newHPBg := mat3Add(mat3Add(mat3Mul(dPThetadTheta, d.HThetaBg), mat3Scale(d.HVBg, dt)), d.HPBg)
	newHPBa := mat3Add(mat3Add(d.HPBa, mat3Scale(d.HVBa, dt)), dPdBa)

	d.Theta = newTheta
	d.Va = newVa
	d.Pa = newPa
	d.DeltaT += dt
	d.HThetaBg = newHThetaBg
	d.HVBg = newHVBg
	d.HVBa = newHVBa
	d.HPBg = newHPBg
	d.HPBa = newHPBa
}

// CorrectedTheta, CorrectedVa, CorrectedPa return Δ updated to a new
// bias estimate via the first-order bias Jacobians, the
// Δ̃X spec.md §4.9's factor residual uses instead of re-integrating.
func (d *Driver) CorrectedTheta(biasGyro [3]float64) [3]float64 {
	dbg := sub3(biasGyro, d.BiasGyro)
	return add3(d.Theta, matVec3(d.HThetaBg, dbg))
}

func (d *Driver) CorrectedVa(biasGyro, biasAccel [3]float64) [3]float64 {
	dbg := sub3(biasGyro, d.BiasGyro)
	dba := sub3(biasAccel, d.BiasAccel)
	return add3(add3(d.Va, matVec3(d.HVBg, dbg)), matVec3(d.HVBa, dba))
}

func (d *Driver) CorrectedPa(biasGyro, biasAccel [3]float64) [3]float64 {
	dbg := sub3(biasGyro, d.BiasGyro)
	dba := sub3(biasAccel, d.BiasAccel)
	return add3(add3(d.Pa, matVec3(d.HPBg, dbg)), matVec3(d.HPBa, dba))
}
