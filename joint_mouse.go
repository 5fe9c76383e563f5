package vela2d

// MouseJointDef configures a MouseJoint: pulls bodyB's anchor toward a
// world-space Target through a damped spring (FrequencyHz, DampingRatio),
// capped by MaxForce, typically used to
// let a pointer drag a body around without teleporting it.
type MouseJointDef struct {
	JointDef
	Target       Vec2
	MaxForce     float64
	FrequencyHz  float64
	DampingRatio float64
}

func MakeMouseJointDef(bodyA, bodyB *Body, target Vec2) MouseJointDef {
	return MouseJointDef{
		JointDef:     JointDef{BodyA: bodyA, BodyB: bodyB, CollideConnected: true},
		Target:       target,
		FrequencyHz:  5.0,
		DampingRatio: 0.7,
	}
}

// MouseJoint is a single-point spring anchored to BodyB, driven toward a
// caller-updated world Target rather than another body's anchor.
type MouseJoint struct {
	jointBase

	localAnchorB               Vec2
	targetA                    Vec2
	frequencyHz, dampingRatio  float64
	maxForce                   float64

	beta  float64
	gamma float64

	indexB       int
	localCenterB Vec2
	invMassB     float64
	invIB        float64
	rB           Vec2
	mass         Mat22
	c            Vec2

	impulse Vec2
}

func newMouseJoint(def MouseJointDef) *MouseJoint {
	return &MouseJoint{
		jointBase:    newJointBase(MouseJointType, def.JointDef),
		targetA:      def.Target,
		localAnchorB: def.BodyB.GetLocalPoint(def.Target),
		frequencyHz:  def.FrequencyHz,
		dampingRatio: def.DampingRatio,
		maxForce:     def.MaxForce,
	}
}

func (j *MouseJoint) GetAnchorA() Vec2 { return j.targetA }
func (j *MouseJoint) GetAnchorB() Vec2 { return j.bodyB.GetWorldPoint(j.localAnchorB) }

func (j *MouseJoint) GetReactionForce(invDt float64) Vec2 { return j.impulse.Scale(invDt) }
func (j *MouseJoint) GetReactionTorque(float64) float64   { return 0 }

func (j *MouseJoint) Target() Vec2         { return j.targetA }
func (j *MouseJoint) SetTarget(v Vec2)     { j.targetA = v }
func (j *MouseJoint) MaxForce() float64    { return j.maxForce }
func (j *MouseJoint) SetMaxForce(v float64) { j.maxForce = v }

func (j *MouseJoint) initVelocityConstraints(data *solverData) {
	j.indexB = data.indexB(&j.jointBase)
	j.localCenterB = j.bodyB.sweep.LocalCenter
	j.invMassB = j.bodyB.invMass
	j.invIB = j.bodyB.invI

	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	qB := NewRot(aB)

	mass := j.bodyB.mass

	omega := 2.0 * Pi * j.frequencyHz
	d := 2.0 * mass * j.dampingRatio * omega
	k := mass * omega * omega
	h := data.step.Dt

	j.gamma = h * (d + h*k)
	if j.gamma != 0 {
		j.gamma = 1.0 / j.gamma
	}
	j.beta = h * k * j.gamma

	j.rB = qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))

	k2 := Mat22{}
	k2.Ex.X = j.invMassB + j.invIB*j.rB.Y*j.rB.Y + j.gamma
	k2.Ex.Y = -j.invIB * j.rB.X * j.rB.Y
	k2.Ey.X = k2.Ex.Y
	k2.Ey.Y = j.invMassB + j.invIB*j.rB.X*j.rB.X + j.gamma
	j.mass = k2.Inverse()

	j.c = cB.Add(j.rB).Sub(j.targetA)
	j.c = j.c.Scale(j.beta)

	wB *= 0.98

	if data.step.WarmStarting {
		j.impulse = j.impulse.Scale(data.step.DtRatio)
		vB = vB.Add(j.impulse.Scale(j.invMassB))
		wB += j.invIB * j.rB.Cross(j.impulse)
	} else {
		j.impulse = Vec2{}
	}

	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *MouseJoint) solveVelocityConstraints(data *solverData) {
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	cdot := vB.Add(CrossScalarVec(wB, j.rB)).Add(j.c).Add(j.impulse.Scale(j.gamma))
	impulse := j.mass.MulVec2(cdot.Neg())

	oldImpulse := j.impulse
	j.impulse = j.impulse.Add(impulse)
	maxImpulse := data.step.Dt * j.maxForce
	if j.impulse.LengthSquared() > maxImpulse*maxImpulse {
		unit, _ := j.impulse.Normalize()
		j.impulse = unit.Scale(maxImpulse)
	}
	impulse = j.impulse.Sub(oldImpulse)

	vB = vB.Add(impulse.Scale(j.invMassB))
	wB += j.invIB * j.rB.Cross(impulse)

	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *MouseJoint) solvePositionConstraints(*solverData) bool { return true }
