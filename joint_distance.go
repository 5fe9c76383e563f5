package vela2d

import "math"

// DistanceJointDef configures a DistanceJoint: two anchor points held a
// fixed Length apart, or springy toward that length when FrequencyHz > 0.
type DistanceJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	Length                     float64
	FrequencyHz                float64
	DampingRatio               float64
}

// MakeDistanceJointDef fills in LocalAnchorA/B and Length from the bodies'
// current world anchors, the usual convenience the teacher provides so a
// caller doesn't have to do the world-to-local math by hand.
func MakeDistanceJointDef(bodyA, bodyB *Body, anchorA, anchorB Vec2) DistanceJointDef {
	return DistanceJointDef{
		JointDef:      JointDef{BodyA: bodyA, BodyB: bodyB, CollideConnected: false},
		LocalAnchorA:  bodyA.GetLocalPoint(anchorA),
		LocalAnchorB:  bodyB.GetLocalPoint(anchorB),
		Length:        anchorB.Sub(anchorA).Length(),
	}
}

// DistanceJoint holds two points at a fixed distance, optionally with a
// spring that resists deviation rather than enforcing it rigidly.
type DistanceJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	length                     float64
	frequencyHz, dampingRatio  float64

	// solver scratch, rebuilt every step
	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64
	u                          Vec2
	rA, rB                     Vec2
	mass                       float64
	gamma, bias                float64
	impulse                    float64
}

func newDistanceJoint(def DistanceJointDef) *DistanceJoint {
	return &DistanceJoint{
		jointBase:     newJointBase(DistanceJointType, def.JointDef),
		localAnchorA:  def.LocalAnchorA,
		localAnchorB:  def.LocalAnchorB,
		length:        def.Length,
		frequencyHz:   def.FrequencyHz,
		dampingRatio:  def.DampingRatio,
	}
}

func (j *DistanceJoint) GetAnchorA() Vec2 { return j.bodyA.GetWorldPoint(j.localAnchorA) }
func (j *DistanceJoint) GetAnchorB() Vec2 { return j.bodyB.GetWorldPoint(j.localAnchorB) }

func (j *DistanceJoint) GetReactionForce(invDt float64) Vec2 {
	return j.u.Scale(j.impulse * invDt)
}
func (j *DistanceJoint) GetReactionTorque(float64) float64 { return 0 }

func (j *DistanceJoint) Length() float64            { return j.length }
func (j *DistanceJoint) SetLength(v float64)        { j.length = v }
func (j *DistanceJoint) FrequencyHz() float64       { return j.frequencyHz }
func (j *DistanceJoint) SetFrequencyHz(v float64)   { j.frequencyHz = v }
func (j *DistanceJoint) DampingRatio() float64      { return j.dampingRatio }
func (j *DistanceJoint) SetDampingRatio(v float64)  { j.dampingRatio = v }

func (j *DistanceJoint) initVelocityConstraints(data *solverData) {
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

	_, length := j.u.Normalize()

	if length < LinearSlop {
		j.u = Vec2{}
	}

	crAu := j.rA.Cross(j.u)
	crBu := j.rB.Cross(j.u)
	invMass := j.invMassA + j.invIA*crAu*crAu + j.invMassB + j.invIB*crBu*crBu
	if invMass != 0 {
		j.mass = 1.0 / invMass
	} else {
		j.mass = 0
	}

	if j.frequencyHz > 0.0 {
		c := length - j.length
		omega := 2.0 * Pi * j.frequencyHz
		d := 2.0 * j.mass * j.dampingRatio * omega
		k := j.mass * omega * omega
		h := data.step.Dt

		j.gamma = h * (d + h*k)
		if j.gamma != 0 {
			j.gamma = 1.0 / j.gamma
		}
		j.bias = c * h * k * j.gamma

		invMass += j.gamma
		if invMass != 0 {
			j.mass = 1.0 / invMass
		} else {
			j.mass = 0
		}
	} else {
		j.gamma = 0
		j.bias = 0
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

func (j *DistanceJoint) solveVelocityConstraints(data *solverData) {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	vpA := vA.Add(CrossScalarVec(wA, j.rA))
	vpB := vB.Add(CrossScalarVec(wB, j.rB))
	cdot := j.u.Dot(vpB.Sub(vpA))

	impulse := -j.mass * (cdot + j.bias + j.gamma*j.impulse)
	j.impulse += impulse

	p := j.u.Scale(impulse)
	vA = vA.Sub(p.Scale(j.invMassA))
	wA -= j.invIA * j.rA.Cross(p)
	vB = vB.Add(p.Scale(j.invMassB))
	wB += j.invIB * j.rB.Cross(p)

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

// solvePositionConstraints skips correction entirely when the joint is
// springy: a soft distance constraint has no rigid position error to fix.
func (j *DistanceJoint) solvePositionConstraints(data *solverData) bool {
	if j.frequencyHz > 0.0 {
		return true
	}

	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A

	qA, qB := NewRot(aA), NewRot(aB)
	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	u := cB.Add(rB).Sub(cA).Sub(rA)

	normalized, length := u.Normalize()
	u = normalized
	c := ClampFloat(length-j.length, -MaxLinearCorrection, MaxLinearCorrection)

	impulse := -j.mass * c
	p := u.Scale(impulse)

	cA = cA.Sub(p.Scale(j.invMassA))
	aA -= j.invIA * rA.Cross(p)
	cB = cB.Add(p.Scale(j.invMassB))
	aB += j.invIB * rB.Cross(p)

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return math.Abs(c) < LinearSlop
}
