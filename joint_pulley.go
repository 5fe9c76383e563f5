package vela2d

import "math"

// PulleyJointDef configures a PulleyJoint: two bodies each roped over a
// fixed ground anchor to a shared pulley, with Ratio controlling the
// mechanical advantage between the two rope segments (lengthA +
// Ratio*lengthB stays constant).
type PulleyJointDef struct {
	JointDef
	GroundAnchorA, GroundAnchorB Vec2
	LocalAnchorA, LocalAnchorB   Vec2
	LengthA, LengthB             float64
	Ratio                        float64
}

const MinPulleyLength = 2.0

func MakePulleyJointDef(bodyA, bodyB *Body, groundAnchorA, groundAnchorB, anchorA, anchorB Vec2, ratio float64) PulleyJointDef {
	lengthA := anchorA.Sub(groundAnchorA).Length()
	lengthB := anchorB.Sub(groundAnchorB).Length()
	return PulleyJointDef{
		JointDef:      JointDef{BodyA: bodyA, BodyB: bodyB, CollideConnected: true},
		GroundAnchorA: groundAnchorA,
		GroundAnchorB: groundAnchorB,
		LocalAnchorA:  bodyA.GetLocalPoint(anchorA),
		LocalAnchorB:  bodyB.GetLocalPoint(anchorB),
		LengthA:       lengthA,
		LengthB:       lengthB,
		Ratio:         ratio,
	}
}

// PulleyJoint links two bodies through a rope-over-pulley constraint: as one
// rope segment shortens the other lengthens by Ratio, the way a block and
// tackle balances two loads.
type PulleyJoint struct {
	jointBase

	groundAnchorA, groundAnchorB Vec2
	localAnchorA, localAnchorB   Vec2
	lengthA, lengthB             float64
	ratio                        float64
	constant                     float64

	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	uA, uB                     Vec2
	rA, rB                     Vec2
	mass                       float64

	impulse float64
}

func newPulleyJoint(def PulleyJointDef) *PulleyJoint {
	return &PulleyJoint{
		jointBase:     newJointBase(PulleyJointType, def.JointDef),
		groundAnchorA: def.GroundAnchorA,
		groundAnchorB: def.GroundAnchorB,
		localAnchorA:  def.LocalAnchorA,
		localAnchorB:  def.LocalAnchorB,
		lengthA:       def.LengthA,
		lengthB:       def.LengthB,
		ratio:         def.Ratio,
		constant:      def.LengthA + def.Ratio*def.LengthB,
	}
}

func (j *PulleyJoint) GetAnchorA() Vec2 { return j.bodyA.GetWorldPoint(j.localAnchorA) }
func (j *PulleyJoint) GetAnchorB() Vec2 { return j.bodyB.GetWorldPoint(j.localAnchorB) }

func (j *PulleyJoint) GetReactionForce(invDt float64) Vec2 { return j.uB.Scale(j.impulse * invDt) }
func (j *PulleyJoint) GetReactionTorque(float64) float64   { return 0 }

func (j *PulleyJoint) Ratio() float64 { return j.ratio }
func (j *PulleyJoint) GetCurrentLengthA() float64 {
	return j.bodyA.GetWorldPoint(j.localAnchorA).Sub(j.groundAnchorA).Length()
}
func (j *PulleyJoint) GetCurrentLengthB() float64 {
	return j.bodyB.GetWorldPoint(j.localAnchorB).Sub(j.groundAnchorB).Length()
}

func (j *PulleyJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexA(&j.jointBase), data.indexB(&j.jointBase)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	qA, qB := NewRot(aA), NewRot(aB)

	j.rA = qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	j.uA = cA.Add(j.rA).Sub(j.groundAnchorA)
	j.uB = cB.Add(j.rB).Sub(j.groundAnchorB)

	lengthA := j.uA.Length()
	lengthB := j.uB.Length()

	if lengthA > 10.0*LinearSlop {
		j.uA = j.uA.Scale(1.0 / lengthA)
	} else {
		j.uA = Vec2{}
	}
	if lengthB > 10.0*LinearSlop {
		j.uB = j.uB.Scale(1.0 / lengthB)
	} else {
		j.uB = Vec2{}
	}

	ruA := j.rA.Cross(j.uA)
	ruB := j.rB.Cross(j.uB)

	mA := j.invMassA + j.invIA*ruA*ruA
	mB := j.invMassB + j.invIB*ruB*ruB

	invMass := mA + j.ratio*j.ratio*mB
	if invMass > 0.0 {
		j.mass = 1.0 / invMass
	} else {
		j.mass = 0
	}

	if data.step.WarmStarting {
		pA := j.uA.Scale(-j.impulse)
		pB := j.uB.Scale(-j.ratio * j.impulse)

		vA = vA.Add(pA.Scale(j.invMassA))
		wA += j.invIA * j.rA.Cross(pA)
		vB = vB.Add(pB.Scale(j.invMassB))
		wB += j.invIB * j.rB.Cross(pB)
	} else {
		j.impulse = 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *PulleyJoint) solveVelocityConstraints(data *solverData) {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	vpA := vA.Add(CrossScalarVec(wA, j.rA))
	vpB := vB.Add(CrossScalarVec(wB, j.rB))

	cdot := -j.uA.Dot(vpA) - j.ratio*j.uB.Dot(vpB)
	impulse := -j.mass * cdot
	j.impulse += impulse

	pA := j.uA.Scale(-impulse)
	pB := j.uB.Scale(-j.ratio * impulse)
	vA = vA.Add(pA.Scale(j.invMassA))
	wA += j.invIA * j.rA.Cross(pA)
	vB = vB.Add(pB.Scale(j.invMassB))
	wB += j.invIB * j.rB.Cross(pB)

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *PulleyJoint) solvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A

	qA, qB := NewRot(aA), NewRot(aB)

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	uA := cA.Add(rA).Sub(j.groundAnchorA)
	uB := cB.Add(rB).Sub(j.groundAnchorB)

	lengthA := uA.Length()
	lengthB := uB.Length()

	if lengthA > 10.0*LinearSlop {
		uA = uA.Scale(1.0 / lengthA)
	} else {
		uA = Vec2{}
	}
	if lengthB > 10.0*LinearSlop {
		uB = uB.Scale(1.0 / lengthB)
	} else {
		uB = Vec2{}
	}

	ruA := rA.Cross(uA)
	ruB := rB.Cross(uB)

	mA := j.invMassA + j.invIA*ruA*ruA
	mB := j.invMassB + j.invIB*ruB*ruB

	invMass := mA + j.ratio*j.ratio*mB
	mass := 0.0
	if invMass > 0.0 {
		mass = 1.0 / invMass
	}

	c := j.constant - lengthA - j.ratio*lengthB
	linearError := math.Abs(c)

	impulse := -mass * c

	pA := uA.Scale(-impulse)
	pB := uB.Scale(-j.ratio * impulse)

	cA = cA.Add(pA.Scale(j.invMassA))
	aA += j.invIA * rA.Cross(pA)
	cB = cB.Add(pB.Scale(j.invMassB))
	aB += j.invIB * rB.Cross(pB)

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return linearError < LinearSlop
}
