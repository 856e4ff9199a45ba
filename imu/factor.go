// Copyright 2024 The Factorgraph Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package imu

import (
	"github.com/dpedroso-lab/factorgraph/dual"
	"github.com/dpedroso-lab/factorgraph/manifold"
)

// Gravity is the world-frame gravity vector added into the velocity
// and position blocks of FactorResidual, following the right-handed,
// z-up convention spec.md §4.9 assumes.
var Gravity = [3]float64{0, 0, -9.81}

// FactorResidual is the 15-dimensional IMU factor of spec.md §4.9:
// r = log(X_j⁻¹ · (X_i · Δ̃X)), expanded block-by-block (rotation,
// velocity, position, bias random walk) since SE(3) alone can't carry
// velocity/bias. Its six inputs are, in order, (pose_i, v_i, bias_i,
// pose_j, v_j, bias_j). Δ̃X is Driver's summary corrected to the
// current bias estimate via the first-order Jacobians, computed here
// in dual arithmetic so the residual stays differentiable with respect
// to bias_i.
type FactorResidual struct {
	Driver *Driver
}

// NewFactorResidual builds the residual from a completed preintegration
// summary; the Driver is read-only from this point on.
func NewFactorResidual(d *Driver) *FactorResidual { return &FactorResidual{Driver: d} }

func (o *FactorResidual) Dim() int { return 15 }

func (o *FactorResidual) VariableTypes() []byte {
	return []byte{
		manifold.TypeSE3, manifold.TypeVector, manifold.TypeImuBias,
		manifold.TypeSE3, manifold.TypeVector, manifold.TypeImuBias,
	}
}

func (o *FactorResidual) EvaluateDual(inputs []manifold.DualElement) []dual.Number {
	poseI := inputs[0].(manifold.DualSE3)
	vI := inputs[1].(manifold.DualVectorVarN)
	biasI := inputs[2].(manifold.DualImuBias)
	poseJ := inputs[3].(manifold.DualSE3)
	vJ := inputs[4].(manifold.DualVectorVarN)
	biasJ := inputs[5].(manifold.DualImuBias)

	width := len(poseI.Tx.Dx)
	d := o.Driver

	biasILog := biasI.LogD()
	biasJLog := biasJ.LogD()
	var dbg, dba [3]dual.Number
	for i := 0; i < 3; i++ {
		dbg[i] = dual.AddScalar(biasILog[i], -d.BiasGyro[i])
		dba[i] = dual.AddScalar(biasILog[3+i], -d.BiasAccel[i])
	}

	correctedTheta := dualCorrect(d.Theta, d.HThetaBg, dbg, [3][3]float64{}, dba, width)
	correctedVa := dualCorrect(d.Va, d.HVBg, dbg, d.HVBa, dba, width)
	correctedPa := dualCorrect(d.Pa, d.HPBg, dbg, d.HPBa, dba, width)

	deltaR := manifold.ExpSO3Dual(correctedTheta)

	riInv := poseI.R.InverseD().(manifold.DualSO3)
	rMat := manifold.QuatMatrixDual(riInv)

	rRot := deltaR.InverseD().ComposeD(riInv.ComposeD(poseJ.R)).LogD()

	dt := d.DeltaT
	gdt := scale3(Gravity, dt)
	halfGdt2 := scale3(Gravity, 0.5*dt*dt)

	var vDiff [3]dual.Number
	for i := 0; i < 3; i++ {
		vDiff[i] = dual.AddScalar(dual.Sub(vJ.V[i], vI.V[i]), -gdt[i])
	}
	rotatedV := manifold.MatVec3Dual(rMat, vDiff)
	var rVel [3]dual.Number
	for i := 0; i < 3; i++ {
		rVel[i] = dual.Sub(rotatedV[i], correctedVa[i])
	}

	ti := [3]dual.Number{poseI.Tx, poseI.Ty, poseI.Tz}
	tj := [3]dual.Number{poseJ.Tx, poseJ.Ty, poseJ.Tz}
	var pDiff [3]dual.Number
	for i := 0; i < 3; i++ {
		moved := dual.Add(ti[i], dual.Scale(vI.V[i], dt))
		moved = dual.AddScalar(moved, halfGdt2[i])
		pDiff[i] = dual.Sub(tj[i], moved)
	}
	rotatedP := manifold.MatVec3Dual(rMat, pDiff)
	var rPos [3]dual.Number
	for i := 0; i < 3; i++ {
		rPos[i] = dual.Sub(rotatedP[i], correctedPa[i])
	}

	var rBias [6]dual.Number
	for i := 0; i < 6; i++ {
		rBias[i] = dual.Sub(biasJLog[i], biasILog[i])
	}

	r := make([]dual.Number, 0, 15)
	r = append(r, rRot...)
	r = append(r, rVel[:]...)
	r = append(r, rPos[:]...)
	r = append(r, rBias[:]...)
	return r
}

// dualCorrect applies base + HBg*dbg + HBa*dba component-wise, the
// dual-valued counterpart of Driver.CorrectedTheta/Va/Pa used inside
// the autodiff pass so the residual's Jacobian carries bias
// sensitivity rather than being frozen at the linearization point.
func dualCorrect(base [3]float64, hbg [3][3]float64, dbg [3]dual.Number, hba [3][3]float64, dba [3]dual.Number, width int) [3]dual.Number {
	var out [3]dual.Number
	for i := 0; i < 3; i++ {
		v := dual.New(base[i], width)
		for k := 0; k < 3; k++ {
			v = dual.Add(v, dual.Scale(dbg[k], hbg[i][k]))
			v = dual.Add(v, dual.Scale(dba[k], hba[i][k]))
		}
		out[i] = v
	}
	return out
}
