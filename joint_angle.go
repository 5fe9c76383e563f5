package vela2d

import "math"

// AngleJointDef configures an AngleJoint: locks the relative angle between
// two bodies to TargetAngle without constraining their relative position at
// all, useful for things like keeping a signpost upright while it swings
// freely on a separate point constraint, or gearing an instrument needle to
// a chassis without a shared pivot.
type AngleJointDef struct {
	JointDef
	TargetAngle  float64
	MaxTorque    float64
	FrequencyHz  float64
	DampingRatio float64
}

func MakeAngleJointDef(bodyA, bodyB *Body) AngleJointDef {
	return AngleJointDef{
		JointDef:    JointDef{BodyA: bodyA, BodyB: bodyB},
		TargetAngle: bodyB.GetAngle() - bodyA.GetAngle(),
	}
}

// AngleJoint is a pure angular constraint: rigid when FrequencyHz is 0,
// otherwise a soft spring toward TargetAngle, and always bounded by
// MaxTorque when MaxTorque > 0 (0 means unbounded).
type AngleJoint struct {
	jointBase

	targetAngle  float64
	maxTorque    float64
	frequencyHz  float64
	dampingRatio float64

	indexA, indexB int
	invIA, invIB   float64
	mass           float64
	bias, gamma    float64

	impulse float64
}

func newAngleJoint(def AngleJointDef) *AngleJoint {
	return &AngleJoint{
		jointBase:    newJointBase(AngleJointType, def.JointDef),
		targetAngle:  def.TargetAngle,
		maxTorque:    def.MaxTorque,
		frequencyHz:  def.FrequencyHz,
		dampingRatio: def.DampingRatio,
	}
}

func (j *AngleJoint) GetAnchorA() Vec2 { return j.bodyA.GetPosition() }
func (j *AngleJoint) GetAnchorB() Vec2 { return j.bodyB.GetPosition() }
func (j *AngleJoint) GetReactionForce(float64) Vec2 { return Vec2{} }
func (j *AngleJoint) GetReactionTorque(invDt float64) float64 { return j.impulse * invDt }

func (j *AngleJoint) TargetAngle() float64     { return j.targetAngle }
func (j *AngleJoint) SetTargetAngle(v float64) { j.targetAngle = v }

func (j *AngleJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexA(&j.jointBase), data.indexB(&j.jointBase)
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	aA := data.positions[j.indexA].A
	wA := data.velocities[j.indexA].W
	aB := data.positions[j.indexB].A
	wB := data.velocities[j.indexB].W

	invMass := j.invIA + j.invIB
	if invMass > 0 {
		j.mass = 1.0 / invMass
	} else {
		j.mass = 0
	}

	if j.frequencyHz > 0.0 {
		m := 0.0
		if invMass > 0 {
			m = 1.0 / invMass
		}
		c := aB - aA - j.targetAngle
		omega := 2.0 * Pi * j.frequencyHz
		d := 2.0 * m * j.dampingRatio * omega
		k := m * omega * omega
		h := data.step.Dt

		j.gamma = h * (d + h*k)
		if j.gamma != 0 {
			j.gamma = 1.0 / j.gamma
		}
		j.bias = c * h * k * j.gamma

		invMass += j.gamma
		if invMass != 0 {
			j.mass = 1.0 / invMass
		}
	} else {
		j.gamma, j.bias = 0, 0
	}

	if data.step.WarmStarting {
		j.impulse *= data.step.DtRatio
		wA -= j.invIA * j.impulse
		wB += j.invIB * j.impulse
	} else {
		j.impulse = 0
	}

	data.velocities[j.indexA] = Velocity{V: data.velocities[j.indexA].V, W: wA}
	data.velocities[j.indexB] = Velocity{V: data.velocities[j.indexB].V, W: wB}
}

func (j *AngleJoint) solveVelocityConstraints(data *solverData) {
	wA := data.velocities[j.indexA].W
	wB := data.velocities[j.indexB].W

	cdot := wB - wA
	impulse := -j.mass * (cdot + j.bias + j.gamma*j.impulse)

	if j.maxTorque > 0.0 {
		oldImpulse := j.impulse
		maxImpulse := data.step.Dt * j.maxTorque
		j.impulse = ClampFloat(oldImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = j.impulse - oldImpulse
	} else {
		j.impulse += impulse
	}

	wA -= j.invIA * impulse
	wB += j.invIB * impulse

	data.velocities[j.indexA] = Velocity{V: data.velocities[j.indexA].V, W: wA}
	data.velocities[j.indexB] = Velocity{V: data.velocities[j.indexB].V, W: wB}
}

func (j *AngleJoint) solvePositionConstraints(data *solverData) bool {
	if j.frequencyHz > 0.0 {
		return true
	}

	aA := data.positions[j.indexA].A
	aB := data.positions[j.indexB].A

	c := aB - aA - j.targetAngle
	correction := ClampFloat(c, -MaxAngularCorrection, MaxAngularCorrection)

	invMass := j.invIA + j.invIB
	impulse := 0.0
	if invMass > 0 {
		impulse = -correction / invMass
	}

	aA -= j.invIA * impulse
	aB += j.invIB * impulse

	data.positions[j.indexA] = Position{C: data.positions[j.indexA].C, A: aA}
	data.positions[j.indexB] = Position{C: data.positions[j.indexB].C, A: aB}

	return math.Abs(c) <= AngularSlop
}
