package vela2d

import "math"

// RopeJointDef configures a RopeJoint: an inequality distance constraint
// that only resists the two anchors moving further than MaxLength apart,
// never pulling them closer or pushing them further.
type RopeJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	MaxLength                  float64
}

func MakeRopeJointDef(bodyA, bodyB *Body, anchorA, anchorB Vec2, maxLength float64) RopeJointDef {
	return RopeJointDef{
		JointDef:     JointDef{BodyA: bodyA, BodyB: bodyB},
		LocalAnchorA: bodyA.GetLocalPoint(anchorA),
		LocalAnchorB: bodyB.GetLocalPoint(anchorB),
		MaxLength:    maxLength,
	}
}

// RopeJoint is a taut-rope constraint: slack until the anchors reach
// MaxLength apart, then rigid.
type RopeJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	maxLength                  float64

	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	u                          Vec2
	rA, rB                     Vec2
	mass                       float64
	length                     float64
	taut                       bool

	impulse float64
}

func newRopeJoint(def RopeJointDef) *RopeJoint {
	return &RopeJoint{
		jointBase:    newJointBase(RopeJointType, def.JointDef),
		localAnchorA: def.LocalAnchorA,
		localAnchorB: def.LocalAnchorB,
		maxLength:    def.MaxLength,
	}
}

func (j *RopeJoint) GetAnchorA() Vec2 { return j.bodyA.GetWorldPoint(j.localAnchorA) }
func (j *RopeJoint) GetAnchorB() Vec2 { return j.bodyB.GetWorldPoint(j.localAnchorB) }

func (j *RopeJoint) GetReactionForce(invDt float64) Vec2 { return j.u.Scale(j.impulse * invDt) }
func (j *RopeJoint) GetReactionTorque(float64) float64   { return 0 }

func (j *RopeJoint) MaxLength() float64     { return j.maxLength }
func (j *RopeJoint) SetMaxLength(v float64) { j.maxLength = v }
func (j *RopeJoint) IsTaut() bool           { return j.taut }

func (j *RopeJoint) initVelocityConstraints(data *solverData) {
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
	j.u = cB.Add(j.rB).Sub(cA).Sub(j.rA)

	_, j.length = j.u.Normalize()
	c := j.length - j.maxLength
	j.taut = c > 0.0

	if j.length > LinearSlop {
		j.u = j.u.Scale(1.0 / j.length)
	} else {
		j.u = Vec2{}
		j.mass = 0
		j.impulse = 0
		return
	}

	crA := j.rA.Cross(j.u)
	crB := j.rB.Cross(j.u)
	invMass := j.invMassA + j.invIA*crA*crA + j.invMassB + j.invIB*crB*crB
	if invMass != 0 {
		j.mass = 1.0 / invMass
	}

	if !j.taut {
		j.impulse = 0
	}

	if data.step.WarmStarting {
		j.impulse *= data.step.DtRatio
		p := j.u.Scale(j.impulse)
		vA = vA.Sub(p.Scale(j.invMassA))
		wA -= j.invIA * j.rA.Cross(p)
		vB = vB.Add(p.Scale(j.invMassB))
		wB += j.invIB * j.rB.Cross(p)
	} else {
		j.impulse = 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *RopeJoint) solveVelocityConstraints(data *solverData) {
	if !j.taut {
		return
	}

	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	vpA := vA.Add(CrossScalarVec(wA, j.rA))
	vpB := vB.Add(CrossScalarVec(wB, j.rB))
	c := j.length - j.maxLength
	cdot := j.u.Dot(vpB.Sub(vpA))
	if c < 0.0 {
		cdot += c * data.step.InvDt
	}

	impulse := -j.mass * cdot
	oldImpulse := j.impulse
	j.impulse = math.Min(0.0, oldImpulse+impulse)
	impulse = j.impulse - oldImpulse

	p := j.u.Scale(impulse)
	vA = vA.Sub(p.Scale(j.invMassA))
	wA -= j.invIA * j.rA.Cross(p)
	vB = vB.Add(p.Scale(j.invMassB))
	wB += j.invIB * j.rB.Cross(p)

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *RopeJoint) solvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A

	qA, qB := NewRot(aA), NewRot(aB)
	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	u := cB.Add(rB).Sub(cA).Sub(rA)

	normalized, length := u.Normalize()
	u = normalized
	c := ClampFloat(length-j.maxLength, 0.0, MaxLinearCorrection)

	impulse := -j.mass * c
	p := u.Scale(impulse)

	cA = cA.Sub(p.Scale(j.invMassA))
	aA -= j.invIA * rA.Cross(p)
	cB = cB.Add(p.Scale(j.invMassB))
	aB += j.invIB * rB.Cross(p)

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return length-j.maxLength < LinearSlop
}
