package vela2d

// FrictionJointDef configures a FrictionJoint: applies bounded linear and
// angular drag between two bodies without otherwise constraining them,
// useful as a top-down "surface friction" model.
type FrictionJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	MaxForce                   float64
	MaxTorque                  float64
}

func MakeFrictionJointDef(bodyA, bodyB *Body, anchor Vec2) FrictionJointDef {
	return FrictionJointDef{
		JointDef:     JointDef{BodyA: bodyA, BodyB: bodyB},
		LocalAnchorA: bodyA.GetLocalPoint(anchor),
		LocalAnchorB: bodyB.GetLocalPoint(anchor),
	}
}

// FrictionJoint caps the relative linear and angular velocity between two
// bodies, the way a heavy surface contact or a damped hinge would.
type FrictionJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	maxForce, maxTorque        float64

	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	rA, rB                     Vec2
	linearMass                 Mat22
	angularMass                float64

	linearImpulse  Vec2
	angularImpulse float64
}

func newFrictionJoint(def FrictionJointDef) *FrictionJoint {
	return &FrictionJoint{
		jointBase:    newJointBase(FrictionJointType, def.JointDef),
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		maxForce:     def.MaxForce,
		maxTorque:    def.MaxTorque,
	}
}

func (j *FrictionJoint) GetAnchorA() Vec2 { return j.bodyA.GetWorldPoint(j.localAnchorA) }
func (j *FrictionJoint) GetAnchorB() Vec2 { return j.bodyB.GetWorldPoint(j.localAnchorB) }

func (j *FrictionJoint) GetReactionForce(invDt float64) Vec2 { return j.linearImpulse.Scale(invDt) }
func (j *FrictionJoint) GetReactionTorque(invDt float64) float64 {
	return j.angularImpulse * invDt
}

func (j *FrictionJoint) MaxForce() float64      { return j.maxForce }
func (j *FrictionJoint) SetMaxForce(v float64)  { j.maxForce = v }
func (j *FrictionJoint) MaxTorque() float64     { return j.maxTorque }
func (j *FrictionJoint) SetMaxTorque(v float64) { j.maxTorque = v }

func (j *FrictionJoint) initVelocityConstraints(data *solverData) {
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

func (j *FrictionJoint) solveVelocityConstraints(data *solverData) {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB
	h := data.step.Dt

	{
		cdot := wB - wA
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
		cdot := vpB.Sub(vpA)

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

func (j *FrictionJoint) solvePositionConstraints(*solverData) bool { return true }
