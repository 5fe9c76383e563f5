package vela2d

// MotorJointDef configures a MotorJoint: drives bodyB toward a fixed
// LinearOffset/AngularOffset relative to bodyA, useful for scripted motion
// (a moving platform, a simple AI-driven kinematic-feeling body) built out
// of an otherwise fully dynamic body.
type MotorJointDef struct {
	JointDef
	LinearOffset     Vec2
	AngularOffset    float64
	MaxForce         float64
	MaxTorque        float64
	CorrectionFactor float64
}

func MakeMotorJointDef(bodyA, bodyB *Body) MotorJointDef {
	return MotorJointDef{
		JointDef:         JointDef{BodyA: bodyA, BodyB: bodyB},
		LinearOffset:     bodyA.GetLocalPoint(bodyB.GetPosition()),
		AngularOffset:    bodyB.GetAngle() - bodyA.GetAngle(),
		MaxForce:         1.0,
		MaxTorque:        1.0,
		CorrectionFactor: 0.3,
	}
}

// MotorJoint has no rigid constraint at all: it's pure velocity-bias
// impulses toward the target offset, clamped by MaxForce/MaxTorque, so a
// heavily loaded motor joint yields instead of tearing the body free.
type MotorJoint struct {
	jointBase

	linearOffset     Vec2
	angularOffset    float64
	maxForce         float64
	maxTorque        float64
	correctionFactor float64

	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	rA, rB                     Vec2
	linearError                Vec2
	angularError               float64
	linearMass                 Mat22
	angularMass                float64

	linearImpulse  Vec2
	angularImpulse float64
}

func newMotorJoint(def MotorJointDef) *MotorJoint {
	return &MotorJoint{
		jointBase:        newJointBase(MotorJointType, def.JointDef),
		linearOffset:     def.LinearOffset,
		angularOffset:    def.AngularOffset,
		maxForce:         def.MaxForce,
		maxTorque:        def.MaxTorque,
		correctionFactor: def.CorrectionFactor,
	}
}

func (j *MotorJoint) GetAnchorA() Vec2 { return j.bodyA.GetPosition() }
func (j *MotorJoint) GetAnchorB() Vec2 { return j.bodyB.GetPosition() }

func (j *MotorJoint) GetReactionForce(invDt float64) Vec2 { return j.linearImpulse.Scale(invDt) }
func (j *MotorJoint) GetReactionTorque(invDt float64) float64 {
	return j.angularImpulse * invDt
}

func (j *MotorJoint) SetLinearOffset(v Vec2)     { j.linearOffset = v }
func (j *MotorJoint) LinearOffset() Vec2         { return j.linearOffset }
func (j *MotorJoint) SetAngularOffset(v float64) { j.angularOffset = v }
func (j *MotorJoint) AngularOffset() float64     { return j.angularOffset }
func (j *MotorJoint) SetMaxForce(v float64)      { j.maxForce = v }
func (j *MotorJoint) SetMaxTorque(v float64)     { j.maxTorque = v }
func (j *MotorJoint) SetCorrectionFactor(v float64) { j.correctionFactor = v }

func (j *MotorJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexA(&j.jointBase), data.indexB(&j.jointBase)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	aA := data.positions[j.indexA].A
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	aB := data.positions[j.indexB].A
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	qA, qB := NewRot(aA), NewRot(aB)

	j.rA = qA.MulVec2(j.linearOffset.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localCenterB.Neg())

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	k := Mat22{}
	k.Ex.X = mA + mB + iA*j.rA.Y*j.rA.Y + iB*j.rB.Y*j.rB.Y
	k.Ex.Y = -iA*j.rA.X*j.rA.Y - iB*j.rB.X*j.rB.Y
	k.Ey.X = k.Ex.Y
	k.Ey.Y = mA + mB + iA*j.rA.X*j.rA.X + iB*j.rB.X*j.rB.X
	j.linearMass = k.Inverse()

	j.angularMass = 0
	if iA+iB > 0 {
		j.angularMass = 1.0 / (iA + iB)
	}

	cA := data.positions[j.indexA].C
	cB := data.positions[j.indexB].C
	j.linearError = cB.Add(j.rB).Sub(cA).Sub(j.rA)
	j.angularError = aB - aA - j.angularOffset

	if data.step.WarmStarting {
		j.linearImpulse = j.linearImpulse.Scale(data.step.DtRatio)
		j.angularImpulse *= data.step.DtRatio

		p := j.linearImpulse
		vA = vA.Sub(p.Scale(mA))
		wA -= iA * (j.rA.Cross(p) + j.angularImpulse)
		vB = vB.Add(p.Scale(mB))
		wB += iB * (j.rB.Cross(p) + j.angularImpulse)
	} else {
		j.linearImpulse = Vec2{}
		j.angularImpulse = 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *MotorJoint) solveVelocityConstraints(data *solverData) {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB
	h := data.step.Dt
	invH := data.step.InvDt

	{
		cdot := wB - wA + invH*j.correctionFactor*j.angularError
		impulse := -j.angularMass * cdot
		oldImpulse := j.angularImpulse
		maxImpulse := h * j.maxTorque
		j.angularImpulse = ClampFloat(oldImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = j.angularImpulse - oldImpulse
		wA -= iA * impulse
		wB += iB * impulse
	}

	{
		vpA := vA.Add(CrossScalarVec(wA, j.rA))
		vpB := vB.Add(CrossScalarVec(wB, j.rB))
		cdot := vpB.Sub(vpA).Add(j.linearError.Scale(invH * j.correctionFactor))

		impulse := j.linearMass.MulVec2(cdot.Neg())
		oldImpulse := j.linearImpulse
		j.linearImpulse = j.linearImpulse.Add(impulse)

		maxImpulse := h * j.maxForce
		if j.linearImpulse.LengthSquared() > maxImpulse*maxImpulse {
			unit, _ := j.linearImpulse.Normalize()
			j.linearImpulse = unit.Scale(maxImpulse)
		}
		impulse = j.linearImpulse.Sub(oldImpulse)

		vA = vA.Sub(impulse.Scale(mA))
		wA -= iA * j.rA.Cross(impulse)
		vB = vB.Add(impulse.Scale(mB))
		wB += iB * j.rB.Cross(impulse)
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *MotorJoint) solvePositionConstraints(*solverData) bool { return true }
