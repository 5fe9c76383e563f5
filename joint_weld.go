package vela2d

import "math"

// WeldJointDef configures a WeldJoint: two bodies rigidly glued at a shared
// anchor and reference angle, optionally with a soft angular spring instead
// of a rigid angular lock.
type WeldJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	ReferenceAngle             float64
	FrequencyHz                float64
	DampingRatio               float64
}

func MakeWeldJointDef(bodyA, bodyB *Body, anchor Vec2) WeldJointDef {
	return WeldJointDef{
		JointDef:       JointDef{BodyA: bodyA, BodyB: bodyB},
		LocalAnchorA:   bodyA.GetLocalPoint(anchor),
		LocalAnchorB:   bodyB.GetLocalPoint(anchor),
		ReferenceAngle: bodyB.GetAngle() - bodyA.GetAngle(),
	}
}

// WeldJoint rigidly connects two bodies as though welded together, or with
// a soft spring resisting relative rotation when FrequencyHz > 0.
type WeldJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	referenceAngle             float64
	frequencyHz, dampingRatio  float64

	bias    float64
	gamma   float64

	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	rA, rB                     Vec2
	mass Mat33

	impulse Vec3
}

func newWeldJoint(def WeldJointDef) *WeldJoint {
	return &WeldJoint{
		jointBase:      newJointBase(WeldJointType, def.JointDef),
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		referenceAngle: def.ReferenceAngle,
		frequencyHz:    def.FrequencyHz,
		dampingRatio:   def.DampingRatio,
	}
}

func (j *WeldJoint) GetAnchorA() Vec2 { return j.bodyA.GetWorldPoint(j.localAnchorA) }
func (j *WeldJoint) GetAnchorB() Vec2 { return j.bodyB.GetWorldPoint(j.localAnchorB) }

func (j *WeldJoint) GetReactionForce(invDt float64) Vec2 {
	return Vec2{j.impulse.X, j.impulse.Y}.Scale(invDt)
}
func (j *WeldJoint) GetReactionTorque(invDt float64) float64 { return j.impulse.Z * invDt }

func (j *WeldJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexA(&j.jointBase), data.indexB(&j.jointBase)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	aA := data.positions[j.indexA].A
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	aB := data.positions[j.indexB].A
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	qA, qB := NewRot(aA), NewRot(aB)
	j.rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	k := Mat33{}
	k.Ex.X = mA + mB + j.rA.Y*j.rA.Y*iA + j.rB.Y*j.rB.Y*iB
	k.Ey.X = -j.rA.Y*j.rA.X*iA - j.rB.Y*j.rB.X*iB
	k.Ez.X = -j.rA.Y*iA - j.rB.Y*iB
	k.Ex.Y = k.Ey.X
	k.Ey.Y = mA + mB + j.rA.X*j.rA.X*iA + j.rB.X*j.rB.X*iB
	k.Ez.Y = j.rA.X*iA + j.rB.X*iB
	k.Ex.Z = k.Ez.X
	k.Ey.Z = k.Ez.Y
	k.Ez.Z = iA + iB

	if j.frequencyHz > 0.0 {
		k.GetInverse22(&j.mass)

		invM := iA + iB
		m := 0.0
		if invM > 0.0 {
			m = 1.0 / invM
		}

		c := aB - aA - j.referenceAngle
		omega := 2.0 * Pi * j.frequencyHz
		d := 2.0 * m * j.dampingRatio * omega
		kSpring := m * omega * omega
		h := data.step.Dt

		j.gamma = h * (d + h*kSpring)
		if j.gamma != 0 {
			j.gamma = 1.0 / j.gamma
		}
		j.bias = c * h * kSpring * j.gamma

		invM += j.gamma
		if invM != 0 {
			invM = 1.0 / invM
		}
		j.mass.Ez.Z = invM
	} else if k.Ez.Z == 0 {
		k.GetInverse22(&j.mass)
		j.gamma = 0
		j.bias = 0
	} else {
		j.mass = invertSymmetric33(k)
		j.gamma = 0
		j.bias = 0
	}

	if data.step.WarmStarting {
		j.impulse = j.impulse.Scale(data.step.DtRatio)
		p := Vec2{j.impulse.X, j.impulse.Y}
		vA = vA.Sub(p.Scale(mA))
		wA -= iA * (j.rA.Cross(p) + j.impulse.Z)
		vB = vB.Add(p.Scale(mB))
		wB += iB * (j.rB.Cross(p) + j.impulse.Z)
	} else {
		j.impulse = Vec3{}
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

// invertSymmetric33 inverts a full symmetric 3x3 matrix (the rigid,
// non-springy weld case), matching b2Mat33::GetSymInverse33.
func invertSymmetric33(k Mat33) Mat33 {
	det := k.Ex.Dot(k.Ey.Cross(k.Ez))
	if det != 0 {
		det = 1.0 / det
	}

	a11, a12, a13 := k.Ex.X, k.Ey.X, k.Ez.X
	a22, a23 := k.Ey.Y, k.Ez.Y
	a33 := k.Ez.Z

	var out Mat33
	out.Ex.X = det * (a22*a33 - a23*a23)
	out.Ex.Y = det * (a13*a23 - a12*a33)
	out.Ex.Z = det * (a12*a23 - a13*a22)
	out.Ey.X = out.Ex.Y
	out.Ey.Y = det * (a11*a33 - a13*a13)
	out.Ey.Z = det * (a13*a12 - a11*a23)
	out.Ez.X = out.Ex.Z
	out.Ez.Y = out.Ey.Z
	out.Ez.Z = det * (a11*a22 - a12*a12)
	return out
}

func (j *WeldJoint) solveVelocityConstraints(data *solverData) {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	if j.frequencyHz > 0.0 {
		cdot2 := wB - wA
		impulse2 := -j.mass.Ez.Z * (cdot2 + j.bias + j.gamma*j.impulse.Z)
		j.impulse.Z += impulse2
		wA -= iA * impulse2
		wB += iB * impulse2

		vpA := vA.Add(CrossScalarVec(wA, j.rA))
		vpB := vB.Add(CrossScalarVec(wB, j.rB))
		cdot1 := vpB.Sub(vpA)

		impulse1 := j.mass.Solve22(cdot1.Neg())
		j.impulse.X += impulse1.X
		j.impulse.Y += impulse1.Y

		p := impulse1
		vA = vA.Sub(p.Scale(mA))
		wA -= iA * j.rA.Cross(p)
		vB = vB.Add(p.Scale(mB))
		wB += iB * j.rB.Cross(p)
	} else {
		vpA := vA.Add(CrossScalarVec(wA, j.rA))
		vpB := vB.Add(CrossScalarVec(wB, j.rB))
		cdot1 := vpB.Sub(vpA)
		cdot2 := wB - wA
		cdot := Vec3{cdot1.X, cdot1.Y, cdot2}

		impulse := j.mass.MulVec3(cdot.Scale(-1))
		j.impulse = j.impulse.Add(impulse)

		p := Vec2{impulse.X, impulse.Y}
		vA = vA.Sub(p.Scale(mA))
		wA -= iA * (j.rA.Cross(p) + impulse.Z)
		vB = vB.Add(p.Scale(mB))
		wB += iB * (j.rB.Cross(p) + impulse.Z)
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *WeldJoint) solvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A

	qA, qB := NewRot(aA), NewRot(aB)

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	var positionError, angularError float64

	k := Mat33{}
	k.Ex.X = mA + mB + rA.Y*rA.Y*iA + rB.Y*rB.Y*iB
	k.Ey.X = -rA.Y*rA.X*iA - rB.Y*rB.X*iB
	k.Ez.X = -rA.Y*iA - rB.Y*iB
	k.Ex.Y = k.Ey.X
	k.Ey.Y = mA + mB + rA.X*rA.X*iA + rB.X*rB.X*iB
	k.Ez.Y = rA.X*iA + rB.X*iB
	k.Ex.Z = k.Ez.X
	k.Ey.Z = k.Ez.Y
	k.Ez.Z = iA + iB

	if j.frequencyHz > 0.0 {
		c1 := cB.Add(rB).Sub(cA).Sub(rA)
		positionError = c1.Length()
		angularError = 0

		var m2 Mat33
		k.GetInverse22(&m2)
		impulse2 := m2.Solve22(c1.Neg())
		p := impulse2
		cA = cA.Sub(p.Scale(mA))
		aA -= iA * rA.Cross(p)
		cB = cB.Add(p.Scale(mB))
		aB += iB * rB.Cross(p)
	} else {
		c1 := cB.Add(rB).Sub(cA).Sub(rA)
		c2 := aB - aA - j.referenceAngle

		positionError = c1.Length()
		angularError = math.Abs(c2)

		c := Vec3{c1.X, c1.Y, c2}
		var impulse Vec3
		if k.Ez.Z > 0.0 {
			impulse = invertSymmetric33(k).MulVec3(c.Scale(-1))
		} else {
			var m2 Mat33
			k.GetInverse22(&m2)
			impulse2 := m2.Solve22(c1.Neg())
			impulse = Vec3{impulse2.X, impulse2.Y, 0}
		}

		p := Vec2{impulse.X, impulse.Y}
		cA = cA.Sub(p.Scale(mA))
		aA -= iA * (rA.Cross(p) + impulse.Z)
		cB = cB.Add(p.Scale(mB))
		aB += iB * (rB.Cross(p) + impulse.Z)
	}

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return positionError <= LinearSlop && angularError <= AngularSlop
}
