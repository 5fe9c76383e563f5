package vela2d

import "math"

// GearJointDef configures a GearJoint: couples the coordinates of two other
// joints (each a RevoluteJoint or a PrismaticJoint) so that
// coordinate1 + Ratio*coordinate2 stays constant — the classic gear/rack
// mechanism.
type GearJointDef struct {
	JointDef
	Joint1, Joint2 Joint
	Ratio          float64
}

// GearJoint copies its two constituent joints' bodies, anchors, axes and
// reference angles when it is created and works from that copy afterwards;
// later changes to Joint1/Joint2's own state are not seen by the gear.
type GearJoint struct {
	jointBase

	joint1, joint2 Joint
	typeA, typeB   JointType
	ratio          float64
	constant       float64

	bodyC, bodyD *Body

	localAnchorA, localAnchorB, localAnchorC, localAnchorD Vec2
	localAxisC, localAxisD                                 Vec2
	referenceAngleA, referenceAngleB                       float64

	indexA, indexB, indexC, indexD                             int
	lcA, lcB, lcC, lcD                                         Vec2
	mA, mB, mC, mD                                             float64
	iA, iB, iC, iD                                             float64

	jvAC, jvBD Vec2
	jwA, jwB, jwC, jwD float64
	mass               float64

	impulse float64
}

func newGearJoint(def GearJointDef) *GearJoint {
	j := &GearJoint{
		jointBase: newJointBase(GearJointType, def.JointDef),
		joint1:    def.Joint1,
		joint2:    def.Joint2,
		ratio:     def.Ratio,
		typeA:     def.Joint1.Type(),
		typeB:     def.Joint2.Type(),
	}

	switch a := def.Joint1.(type) {
	case *RevoluteJoint:
		j.bodyC = a.bodyA
		j.bodyA = a.bodyB
		j.localAnchorC = a.localAnchorA
		j.localAnchorA = a.localAnchorB
		j.referenceAngleA = a.referenceAngle
	case *PrismaticJoint:
		j.bodyC = a.bodyA
		j.bodyA = a.bodyB
		j.localAnchorC = a.localAnchorA
		j.localAnchorA = a.localAnchorB
		j.localAxisC = a.localXAxisA
		j.referenceAngleA = a.referenceAngle
	}

	switch b := def.Joint2.(type) {
	case *RevoluteJoint:
		j.bodyD = b.bodyA
		j.bodyB = b.bodyB
		j.localAnchorD = b.localAnchorA
		j.localAnchorB = b.localAnchorB
		j.referenceAngleB = b.referenceAngle
	case *PrismaticJoint:
		j.bodyD = b.bodyA
		j.bodyB = b.bodyB
		j.localAnchorD = b.localAnchorA
		j.localAnchorB = b.localAnchorB
		j.localAxisD = b.localXAxisA
		j.referenceAngleB = b.referenceAngle
	}

	coordinateA := j.gearCoordinate(j.typeA, j.bodyC, j.bodyA, j.localAnchorC, j.localAnchorA, j.localAxisC, j.referenceAngleA)
	coordinateB := j.gearCoordinate(j.typeB, j.bodyD, j.bodyB, j.localAnchorD, j.localAnchorB, j.localAxisD, j.referenceAngleB)
	j.constant = coordinateA + j.ratio*coordinateB

	return j
}

func (j *GearJoint) gearCoordinate(t JointType, bodyX, bodyY *Body, localAnchorX, localAnchorY, localAxisX Vec2, referenceAngle float64) float64 {
	if t == RevoluteJointType {
		return bodyY.sweep.A - bodyX.sweep.A - referenceAngle
	}
	pX := bodyX.GetTransform().MulVec2(localAnchorX.Sub(bodyX.sweep.LocalCenter))
	pY := bodyY.GetTransform().MulVec2(localAnchorY.Sub(bodyY.sweep.LocalCenter))
	axis := bodyX.GetTransform().Q.MulVec2(localAxisX)
	return pY.Sub(pX).Dot(axis)
}

func (j *GearJoint) GetAnchorA() Vec2 { return j.bodyA.GetWorldPoint(j.localAnchorA) }
func (j *GearJoint) GetAnchorB() Vec2 { return j.bodyB.GetWorldPoint(j.localAnchorB) }

func (j *GearJoint) GetReactionForce(invDt float64) Vec2 {
	return j.jvAC.Scale(j.impulse * invDt)
}
func (j *GearJoint) GetReactionTorque(invDt float64) float64 { return j.jwA * j.impulse * invDt }

func (j *GearJoint) Ratio() float64     { return j.ratio }
func (j *GearJoint) SetRatio(v float64) { j.ratio = v }

func (j *GearJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexA(&j.jointBase), data.indexB(&j.jointBase)
	j.indexC, j.indexD = data.indexOf[j.bodyC], data.indexOf[j.bodyD]
	j.lcA, j.lcB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.lcC, j.lcD = j.bodyC.sweep.LocalCenter, j.bodyD.sweep.LocalCenter
	j.mA, j.mB, j.mC, j.mD = j.bodyA.invMass, j.bodyB.invMass, j.bodyC.invMass, j.bodyD.invMass
	j.iA, j.iB, j.iC, j.iD = j.bodyA.invI, j.bodyB.invI, j.bodyC.invI, j.bodyD.invI

	aA, aB := data.positions[j.indexA].A, data.positions[j.indexB].A
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	aC, aD := data.positions[j.indexC].A, data.positions[j.indexD].A
	vC, wC := data.velocities[j.indexC].V, data.velocities[j.indexC].W
	vD, wD := data.velocities[j.indexD].V, data.velocities[j.indexD].W

	qA, qB, qC, qD := NewRot(aA), NewRot(aB), NewRot(aC), NewRot(aD)

	j.mass = 0

	if j.typeA == RevoluteJointType {
		j.jvAC = Vec2{}
		j.jwA = 1.0
		j.jwC = 1.0
		j.mass += j.iA + j.iC
	} else {
		axis := qC.MulVec2(j.localAxisC)
		rC := qC.MulVec2(j.localAnchorC.Sub(j.lcC))
		rA := qA.MulVec2(j.localAnchorA.Sub(j.lcA))
		j.jvAC = axis
		j.jwC = rC.Cross(axis)
		j.jwA = rA.Cross(axis)
		j.mass += j.mC + j.mA + j.iC*j.jwC*j.jwC + j.iA*j.jwA*j.jwA
	}

	if j.typeB == RevoluteJointType {
		j.jvBD = Vec2{}
		j.jwB = j.ratio
		j.jwD = j.ratio
		j.mass += j.ratio * j.ratio * (j.iB + j.iD)
	} else {
		axis := qD.MulVec2(j.localAxisD)
		rD := qD.MulVec2(j.localAnchorD.Sub(j.lcD))
		rB := qB.MulVec2(j.localAnchorB.Sub(j.lcB))
		j.jvBD = axis.Scale(j.ratio)
		j.jwD = j.ratio * rD.Cross(axis)
		j.jwB = j.ratio * rB.Cross(axis)
		j.mass += j.ratio * j.ratio * (j.mD + j.mB) + j.iD*j.jwD*j.jwD + j.iB*j.jwB*j.jwB
	}

	if j.mass > 0.0 {
		j.mass = 1.0 / j.mass
	}

	if data.step.WarmStarting {
		vA = vA.Add(j.jvAC.Scale(j.mA * j.impulse))
		wA += j.iA * j.impulse * j.jwA
		vB = vB.Add(j.jvBD.Scale(j.mB * j.impulse))
		wB += j.iB * j.impulse * j.jwB
		vC = vC.Sub(j.jvAC.Scale(j.mC * j.impulse))
		wC -= j.iC * j.impulse * j.jwC
		vD = vD.Sub(j.jvBD.Scale(j.mD * j.impulse))
		wD -= j.iD * j.impulse * j.jwD
	} else {
		j.impulse = 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
	data.velocities[j.indexC] = Velocity{V: vC, W: wC}
	data.velocities[j.indexD] = Velocity{V: vD, W: wD}
}

func (j *GearJoint) solveVelocityConstraints(data *solverData) {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W
	vC, wC := data.velocities[j.indexC].V, data.velocities[j.indexC].W
	vD, wD := data.velocities[j.indexD].V, data.velocities[j.indexD].W

	cdot := j.jvAC.Dot(vA.Sub(vC)) + j.jvBD.Dot(vB.Sub(vD)) + (j.jwA*wA + j.jwB*wB - j.jwC*wC - j.jwD*wD)
	impulse := -j.mass * cdot
	j.impulse += impulse

	vA = vA.Add(j.jvAC.Scale(j.mA * impulse))
	wA += j.iA * impulse * j.jwA
	vB = vB.Add(j.jvBD.Scale(j.mB * impulse))
	wB += j.iB * impulse * j.jwB
	vC = vC.Sub(j.jvAC.Scale(j.mC * impulse))
	wC -= j.iC * impulse * j.jwC
	vD = vD.Sub(j.jvBD.Scale(j.mD * impulse))
	wD -= j.iD * impulse * j.jwD

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
	data.velocities[j.indexC] = Velocity{V: vC, W: wC}
	data.velocities[j.indexD] = Velocity{V: vD, W: wD}
}

func (j *GearJoint) solvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	cC, aC := data.positions[j.indexC].C, data.positions[j.indexC].A
	cD, aD := data.positions[j.indexD].C, data.positions[j.indexD].A

	qA, qB, qC, qD := NewRot(aA), NewRot(aB), NewRot(aC), NewRot(aD)

	var jvAC, jvBD Vec2
	var jwA, jwB, jwC, jwD float64
	mass := 0.0

	coordinateA := 0.0
	if j.typeA == RevoluteJointType {
		jvAC = Vec2{}
		jwA, jwC = 1.0, 1.0
		mass += j.iA + j.iC
		coordinateA = aA - aC - j.referenceAngleA
	} else {
		axis := qC.MulVec2(j.localAxisC)
		rC := qC.MulVec2(j.localAnchorC.Sub(j.lcC))
		rA := qA.MulVec2(j.localAnchorA.Sub(j.lcA))
		jvAC = axis
		jwC = rC.Cross(axis)
		jwA = rA.Cross(axis)
		mass += j.mC + j.mA + j.iC*jwC*jwC + j.iA*jwA*jwA
		d := cA.Add(rA).Sub(cC).Sub(rC)
		coordinateA = d.Dot(axis)
	}

	coordinateB := 0.0
	if j.typeB == RevoluteJointType {
		jvBD = Vec2{}
		jwB, jwD = j.ratio, j.ratio
		mass += j.ratio * j.ratio * (j.iB + j.iD)
		coordinateB = aB - aD - j.referenceAngleB
	} else {
		axis := qD.MulVec2(j.localAxisD)
		rD := qD.MulVec2(j.localAnchorD.Sub(j.lcD))
		rB := qB.MulVec2(j.localAnchorB.Sub(j.lcB))
		jvBD = axis.Scale(j.ratio)
		jwD = j.ratio * rD.Cross(axis)
		jwB = j.ratio * rB.Cross(axis)
		mass += j.ratio*j.ratio*(j.mD+j.mB) + j.iD*jwD*jwD + j.iB*jwB*jwB
		d := cB.Add(rB).Sub(cD).Sub(rD)
		coordinateB = d.Dot(axis)
	}

	c := coordinateA + j.ratio*coordinateB - j.constant
	if mass > 0.0 {
		mass = 1.0 / mass
	}
	impulse := -mass * c

	cA = cA.Add(jvAC.Scale(j.mA * impulse))
	aA += j.iA * impulse * jwA
	cB = cB.Add(jvBD.Scale(j.mB * impulse))
	aB += j.iB * impulse * jwB
	cC = cC.Sub(jvAC.Scale(j.mC * impulse))
	aC -= j.iC * impulse * jwC
	cD = cD.Sub(jvBD.Scale(j.mD * impulse))
	aD -= j.iD * impulse * jwD

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}
	data.positions[j.indexC] = Position{C: cC, A: aC}
	data.positions[j.indexD] = Position{C: cD, A: aD}

	return math.Abs(c) < LinearSlop
}
