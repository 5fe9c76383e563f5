package vela2d

import "math"

// RevoluteJointDef configures a RevoluteJoint: a hinge at a shared anchor
// point, with an optional motor and an optional angle limit.
type RevoluteJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	ReferenceAngle             float64
	EnableLimit                bool
	LowerAngle, UpperAngle     float64
	EnableMotor                bool
	MotorSpeed                 float64
	MaxMotorTorque             float64
}

func MakeRevoluteJointDef(bodyA, bodyB *Body, anchor Vec2) RevoluteJointDef {
	return RevoluteJointDef{
		JointDef:       JointDef{BodyA: bodyA, BodyB: bodyB},
		LocalAnchorA:   bodyA.GetLocalPoint(anchor),
		LocalAnchorB:   bodyB.GetLocalPoint(anchor),
		ReferenceAngle: bodyB.GetAngle() - bodyA.GetAngle(),
	}
}

// RevoluteJoint pins two bodies together at a point and lets them rotate
// freely about it, unless a motor drives the relative angle or a limit
// clamps it.
type RevoluteJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	referenceAngle             float64

	enableMotor            bool
	motorSpeed             float64
	maxMotorTorque         float64
	enableLimit            bool
	lowerAngle, upperAngle float64

	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	rA, rB                     Vec2

	pivotMass  Mat22
	axialMass  float64
	motorImpulse            float64
	lowerImpulse, upperImpulse float64
	impulse    Vec2

	angle float64
}

func newRevoluteJoint(def RevoluteJointDef) *RevoluteJoint {
	return &RevoluteJoint{
		jointBase:      newJointBase(RevoluteJointType, def.JointDef),
		localAnchorA:   def.LocalAnchorA,
		localAnchorB:   def.LocalAnchorB,
		referenceAngle: def.ReferenceAngle,
		enableLimit:    def.EnableLimit,
		lowerAngle:     def.LowerAngle,
		upperAngle:     def.UpperAngle,
		enableMotor:    def.EnableMotor,
		motorSpeed:     def.MotorSpeed,
		maxMotorTorque: def.MaxMotorTorque,
	}
}

func (j *RevoluteJoint) GetAnchorA() Vec2 { return j.bodyA.GetWorldPoint(j.localAnchorA) }
func (j *RevoluteJoint) GetAnchorB() Vec2 { return j.bodyB.GetWorldPoint(j.localAnchorB) }

func (j *RevoluteJoint) GetReactionForce(invDt float64) Vec2 { return j.impulse.Scale(invDt) }
func (j *RevoluteJoint) GetReactionTorque(invDt float64) float64 {
	return (j.motorImpulse + j.lowerImpulse - j.upperImpulse) * invDt
}

func (j *RevoluteJoint) GetJointAngle() float64 { return j.bodyB.sweep.A - j.bodyA.sweep.A - j.referenceAngle }
func (j *RevoluteJoint) GetJointSpeed() float64 { return j.bodyB.angularVelocity - j.bodyA.angularVelocity }

func (j *RevoluteJoint) IsMotorEnabled() bool { return j.enableMotor }
func (j *RevoluteJoint) EnableMotor(v bool)   { j.enableMotor = v }
func (j *RevoluteJoint) MotorSpeed() float64  { return j.motorSpeed }
func (j *RevoluteJoint) SetMotorSpeed(v float64) { j.motorSpeed = v }
func (j *RevoluteJoint) MaxMotorTorque() float64 { return j.maxMotorTorque }
func (j *RevoluteJoint) SetMaxMotorTorque(v float64) { j.maxMotorTorque = v }
func (j *RevoluteJoint) GetMotorTorque(invDt float64) float64 { return j.motorImpulse * invDt }

func (j *RevoluteJoint) IsLimitEnabled() bool { return j.enableLimit }
func (j *RevoluteJoint) EnableLimit(v bool)   { j.enableLimit = v }
func (j *RevoluteJoint) LowerLimit() float64  { return j.lowerAngle }
func (j *RevoluteJoint) UpperLimit() float64  { return j.upperAngle }
func (j *RevoluteJoint) SetLimits(lower, upper float64) {
	j.lowerAngle, j.upperAngle = lower, upper
	j.lowerImpulse, j.upperImpulse = 0, 0
}

func (j *RevoluteJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexA(&j.jointBase), data.indexB(&j.jointBase)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	aA := data.positions[j.indexA].A
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	aB := data.positions[j.indexB].A
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	j.angle = aB - aA - j.referenceAngle

	qA, qB := NewRot(aA), NewRot(aB)
	j.rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	fixedRotation := (iA + iB) == 0.0
	if j.axialMass = 0; iA+iB > 0 {
		j.axialMass = 1.0 / (iA + iB)
	}

	k := Mat22{}
	k.Ex.X = mA + mB + j.rA.Y*j.rA.Y*iA + j.rB.Y*j.rB.Y*iB
	k.Ex.Y = -j.rA.Y*j.rA.X*iA - j.rB.Y*j.rB.X*iB
	k.Ey.X = k.Ex.Y
	k.Ey.Y = mA + mB + j.rA.X*j.rA.X*iA + j.rB.X*j.rB.X*iB
	j.pivotMass = k.Inverse()

	if !j.enableMotor || fixedRotation {
		j.motorImpulse = 0
	}
	if !j.enableLimit || fixedRotation {
		j.lowerImpulse, j.upperImpulse = 0, 0
	}

	if data.step.WarmStarting {
		j.motorImpulse *= data.step.DtRatio
		j.lowerImpulse *= data.step.DtRatio
		j.upperImpulse *= data.step.DtRatio
		j.impulse = j.impulse.Scale(data.step.DtRatio)

		axialImpulse := j.motorImpulse + j.lowerImpulse - j.upperImpulse
		p := j.impulse
		vA = vA.Sub(p.Scale(mA))
		wA -= iA * (j.rA.Cross(p) + axialImpulse)
		vB = vB.Add(p.Scale(mB))
		wB += iB * (j.rB.Cross(p) + axialImpulse)
	} else {
		j.motorImpulse, j.lowerImpulse, j.upperImpulse = 0, 0, 0
		j.impulse = Vec2{}
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *RevoluteJoint) solveVelocityConstraints(data *solverData) {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	fixedRotation := (iA + iB) == 0.0

	if j.enableMotor && !fixedRotation {
		cdot := wB - wA - j.motorSpeed
		impulse := -j.axialMass * cdot
		oldImpulse := j.motorImpulse
		maxImpulse := data.step.Dt * j.maxMotorTorque
		j.motorImpulse = ClampFloat(j.motorImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - oldImpulse
		wA -= iA * impulse
		wB += iB * impulse
	}

	if j.enableLimit && !fixedRotation {
		{
			c := j.angle - j.lowerAngle
			cdot := wB - wA
			impulse := -j.axialMass * (cdot + math.Max(c, 0.0)*data.step.InvDt)
			oldImpulse := j.lowerImpulse
			j.lowerImpulse = math.Max(j.lowerImpulse+impulse, 0.0)
			impulse = j.lowerImpulse - oldImpulse
			wA -= iA * impulse
			wB += iB * impulse
		}
		{
			c := j.upperAngle - j.angle
			cdot := wA - wB
			impulse := -j.axialMass * (cdot + math.Max(c, 0.0)*data.step.InvDt)
			oldImpulse := j.upperImpulse
			j.upperImpulse = math.Max(j.upperImpulse+impulse, 0.0)
			impulse = j.upperImpulse - oldImpulse
			wA += iA * impulse
			wB -= iB * impulse
		}
	}

	vpA := vA.Add(CrossScalarVec(wA, j.rA))
	vpB := vB.Add(CrossScalarVec(wB, j.rB))
	cdot := vpB.Sub(vpA)
	impulse := j.pivotMass.MulVec2(cdot.Neg())
	j.impulse = j.impulse.Add(impulse)

	vA = vA.Sub(impulse.Scale(mA))
	wA -= iA * j.rA.Cross(impulse)
	vB = vB.Add(impulse.Scale(mB))
	wB += iB * j.rB.Cross(impulse)

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *RevoluteJoint) solvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A

	qA, qB := NewRot(aA), NewRot(aB)

	angularError := 0.0
	positionError := 0.0

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB
	fixedRotation := (iA + iB) == 0.0

	if j.enableLimit && !fixedRotation {
		angle := aB - aA - j.referenceAngle
		c := 0.0
		if math.Abs(j.upperAngle-j.lowerAngle) < 2.0*AngularSlop {
			c = ClampFloat(angle-j.lowerAngle, -MaxAngularCorrection, MaxAngularCorrection)
		} else if angle <= j.lowerAngle {
			c = ClampFloat(angle-j.lowerAngle+AngularSlop, -MaxAngularCorrection, 0.0)
		} else if angle >= j.upperAngle {
			c = ClampFloat(angle-j.upperAngle-AngularSlop, 0.0, MaxAngularCorrection)
		}
		limitImpulse := -j.axialMass * c
		aA -= iA * limitImpulse
		aB += iB * limitImpulse
		angularError = math.Abs(c)
	}

	qA, qB = NewRot(aA), NewRot(aB)
	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	c := cB.Add(rB).Sub(cA).Sub(rA)
	positionError = c.Length()

	k := Mat22{}
	k.Ex.X = mA + mB + rA.Y*rA.Y*iA + rB.Y*rB.Y*iB
	k.Ex.Y = -rA.Y*rA.X*iA - rB.Y*rB.X*iB
	k.Ey.X = k.Ex.Y
	k.Ey.Y = mA + mB + rA.X*rA.X*iA + rB.X*rB.X*iB

	impulse := k.Solve(c.Neg())

	cA = cA.Sub(impulse.Scale(mA))
	aA -= iA * rA.Cross(impulse)
	cB = cB.Add(impulse.Scale(mB))
	aB += iB * rB.Cross(impulse)

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return positionError <= LinearSlop && angularError <= AngularSlop
}
