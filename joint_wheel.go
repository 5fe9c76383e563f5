package vela2d

import "math"

// WheelJointDef configures a WheelJoint: a body free to translate along a
// body-local axis (the suspension travel) and rotate freely about the
// anchor (the axle), with an optional spring resisting axis travel, an
// optional travel limit, and an optional motor driving relative angular
// velocity.
type WheelJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	LocalAxisA                 Vec2
	EnableLimit                bool
	LowerTranslation           float64
	UpperTranslation           float64
	EnableMotor                bool
	MaxMotorTorque             float64
	MotorSpeed                 float64
	FrequencyHz                float64
	DampingRatio               float64
}

func MakeWheelJointDef(bodyA, bodyB *Body, anchor, axis Vec2) WheelJointDef {
	return WheelJointDef{
		JointDef:     JointDef{BodyA: bodyA, BodyB: bodyB},
		LocalAnchorA: bodyA.GetLocalPoint(anchor),
		LocalAnchorB: bodyB.GetLocalPoint(anchor),
		LocalAxisA:   bodyA.GetLocalVector(axis),
		FrequencyHz:  2.0,
		DampingRatio: 0.7,
	}
}

// WheelJoint is the suspension joint: rigid perpendicular to its axis,
// spring-damped along it, with an independent angular motor for driving the
// wheel body's spin.
type WheelJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	localXAxisA, localYAxisA   Vec2

	enableLimit                        bool
	lowerTranslation, upperTranslation float64
	enableMotor                        bool
	maxMotorTorque, motorSpeed         float64
	frequencyHz, dampingRatio          float64

	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64

	ax, ay         Vec2
	sAx, sBx       float64
	sAy, sBy       float64
	perpMass       float64
	perpImpulse    float64
	angularMass    float64
	angularImpulse float64

	springMass    float64
	springImpulse float64
	bias, gamma   float64

	motorImpulse               float64
	lowerImpulse, upperImpulse float64
	translation                float64
	axialMass                  float64
}

func newWheelJoint(def WheelJointDef) *WheelJoint {
	axis := normalizeOrUnitX(def.LocalAxisA)
	return &WheelJoint{
		jointBase:        newJointBase(WheelJointType, def.JointDef),
		localAnchorA:     def.LocalAnchorA,
		localAnchorB:     def.LocalAnchorB,
		localXAxisA:      axis,
		localYAxisA:      CrossScalarVec(1.0, axis),
		enableLimit:      def.EnableLimit,
		lowerTranslation: def.LowerTranslation,
		upperTranslation: def.UpperTranslation,
		enableMotor:      def.EnableMotor,
		maxMotorTorque:   def.MaxMotorTorque,
		motorSpeed:       def.MotorSpeed,
		frequencyHz:      def.FrequencyHz,
		dampingRatio:     def.DampingRatio,
	}
}

func (j *WheelJoint) GetAnchorA() Vec2 { return j.bodyA.GetWorldPoint(j.localAnchorA) }
func (j *WheelJoint) GetAnchorB() Vec2 { return j.bodyB.GetWorldPoint(j.localAnchorB) }

func (j *WheelJoint) GetReactionForce(invDt float64) Vec2 {
	return j.ay.Scale(j.perpImpulse).Add(j.ax.Scale(j.springImpulse + j.lowerImpulse - j.upperImpulse)).Scale(invDt)
}
func (j *WheelJoint) GetReactionTorque(invDt float64) float64 {
	return (j.angularImpulse + j.motorImpulse) * invDt
}

func (j *WheelJoint) IsMotorEnabled() bool      { return j.enableMotor }
func (j *WheelJoint) EnableMotor(v bool)        { j.enableMotor = v }
func (j *WheelJoint) SetMotorSpeed(v float64)   { j.motorSpeed = v }
func (j *WheelJoint) SetMaxMotorTorque(v float64) { j.maxMotorTorque = v }
func (j *WheelJoint) GetMotorTorque(invDt float64) float64 { return j.motorImpulse * invDt }

func (j *WheelJoint) IsLimitEnabled() bool { return j.enableLimit }
func (j *WheelJoint) EnableLimit(v bool)   { j.enableLimit = v }
func (j *WheelJoint) SetLimits(lower, upper float64) {
	j.lowerTranslation, j.upperTranslation = lower, upper
	j.lowerImpulse, j.upperImpulse = 0, 0
}

func (j *WheelJoint) GetJointTranslation() float64 {
	d := j.bodyB.GetWorldPoint(j.localAnchorB).Sub(j.bodyA.GetWorldPoint(j.localAnchorA))
	axis := j.bodyA.GetWorldVector(j.localXAxisA)
	return d.Dot(axis)
}

func (j *WheelJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexA(&j.jointBase), data.indexB(&j.jointBase)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	qA, qB := NewRot(aA), NewRot(aB)

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	d := cB.Add(rB).Sub(cA).Sub(rA)

	j.ay = qA.MulVec2(j.localYAxisA)
	j.sAy = d.Add(rA).Cross(j.ay)
	j.sBy = rB.Cross(j.ay)

	invMass := mA + mB + iA*j.sAy*j.sAy + iB*j.sBy*j.sBy
	if invMass != 0 {
		j.perpMass = 1.0 / invMass
	}

	j.angularMass = 0
	if iA+iB > 0 {
		j.angularMass = 1.0 / (iA + iB)
	}

	j.ax = qA.MulVec2(j.localXAxisA)
	j.sAx = d.Add(rA).Cross(j.ax)
	j.sBx = rB.Cross(j.ax)

	invMassAxial := mA + mB + iA*j.sAx*j.sAx + iB*j.sBx*j.sBx
	if invMassAxial != 0 {
		j.axialMass = 1.0 / invMassAxial
	}

	j.translation = j.ax.Dot(d)

	if j.frequencyHz > 0.0 {
		j.springMass = j.axialMass
		c := j.translation
		omega := 2.0 * Pi * j.frequencyHz
		dCoef := 2.0 * j.springMass * j.dampingRatio * omega
		k := j.springMass * omega * omega
		h := data.step.Dt

		j.gamma = h * (dCoef + h*k)
		if j.gamma != 0 {
			j.gamma = 1.0 / j.gamma
		}
		j.bias = c * h * k * j.gamma

		invMassAxial2 := invMassAxial + j.gamma
		j.springMass = 0
		if invMassAxial2 != 0 {
			j.springMass = 1.0 / invMassAxial2
		}
	} else {
		j.springImpulse = 0
		j.gamma = 0
		j.bias = 0
	}

	if !j.enableLimit {
		j.lowerImpulse, j.upperImpulse = 0, 0
	}
	if !j.enableMotor {
		j.motorImpulse = 0
	}

	if data.step.WarmStarting {
		j.perpImpulse *= data.step.DtRatio
		j.springImpulse *= data.step.DtRatio
		j.motorImpulse *= data.step.DtRatio
		j.lowerImpulse *= data.step.DtRatio
		j.upperImpulse *= data.step.DtRatio
		j.angularImpulse *= data.step.DtRatio

		axialImpulse := j.springImpulse + j.lowerImpulse - j.upperImpulse
		p := j.ay.Scale(j.perpImpulse).Add(j.ax.Scale(axialImpulse))
		la := j.perpImpulse*j.sAy + j.angularImpulse + axialImpulse*j.sAx
		lb := j.perpImpulse*j.sBy + j.angularImpulse + axialImpulse*j.sBx

		vA = vA.Sub(p.Scale(mA))
		wA -= iA * la
		vB = vB.Add(p.Scale(mB))
		wB += iB * lb
	} else {
		j.perpImpulse, j.springImpulse, j.motorImpulse = 0, 0, 0
		j.lowerImpulse, j.upperImpulse, j.angularImpulse = 0, 0, 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *WheelJoint) solveVelocityConstraints(data *solverData) {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	if j.frequencyHz > 0.0 {
		cdot := j.ax.Dot(vB.Sub(vA)) + j.sBx*wB - j.sAx*wA
		impulse := -j.springMass * (cdot + j.bias + j.gamma*j.springImpulse)
		j.springImpulse += impulse

		p := j.ax.Scale(impulse)
		la, lb := impulse*j.sAx, impulse*j.sBx
		vA = vA.Sub(p.Scale(mA))
		wA -= iA * la
		vB = vB.Add(p.Scale(mB))
		wB += iB * lb
	}

	if j.enableLimit {
		{
			c := j.translation - j.lowerTranslation
			cdot := j.ax.Dot(vB.Sub(vA)) + j.sBx*wB - j.sAx*wA
			impulse := -j.axialMass * (cdot + math.Max(c, 0.0)*data.step.InvDt)
			oldImpulse := j.lowerImpulse
			j.lowerImpulse = math.Max(oldImpulse+impulse, 0.0)
			impulse = j.lowerImpulse - oldImpulse

			p := j.ax.Scale(impulse)
			vA = vA.Sub(p.Scale(mA))
			wA -= iA * impulse * j.sAx
			vB = vB.Add(p.Scale(mB))
			wB += iB * impulse * j.sBx
		}
		{
			c := j.upperTranslation - j.translation
			cdot := j.ax.Dot(vA.Sub(vB)) + j.sAx*wA - j.sBx*wB
			impulse := -j.axialMass * (cdot + math.Max(c, 0.0)*data.step.InvDt)
			oldImpulse := j.upperImpulse
			j.upperImpulse = math.Max(oldImpulse+impulse, 0.0)
			impulse = j.upperImpulse - oldImpulse

			p := j.ax.Scale(impulse)
			vA = vA.Add(p.Scale(mA))
			wA += iA * impulse * j.sAx
			vB = vB.Sub(p.Scale(mB))
			wB -= iB * impulse * j.sBx
		}
	}

	if j.enableMotor {
		cdot := wB - wA - j.motorSpeed
		impulse := -j.angularMass * cdot
		oldImpulse := j.motorImpulse
		maxImpulse := data.step.Dt * j.maxMotorTorque
		j.motorImpulse = ClampFloat(oldImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - oldImpulse

		wA -= iA * impulse
		wB += iB * impulse
	}

	{
		cdot := j.ay.Dot(vB.Sub(vA)) + j.sBy*wB - j.sAy*wA
		impulse := -j.perpMass * cdot
		j.perpImpulse += impulse

		p := j.ay.Scale(impulse)
		la, lb := impulse*j.sAy, impulse*j.sBy
		vA = vA.Sub(p.Scale(mA))
		wA -= iA * la
		vB = vB.Add(p.Scale(mB))
		wB += iB * lb
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *WheelJoint) solvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A

	qA, qB := NewRot(aA), NewRot(aB)

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	d := cB.Add(rB).Sub(cA).Sub(rA)

	ay := qA.MulVec2(j.localYAxisA)
	sAy := d.Add(rA).Cross(ay)
	sBy := rB.Cross(ay)

	c := ay.Dot(d)

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB
	invMass := mA + mB + iA*sAy*sAy + iB*sBy*sBy

	impulse := 0.0
	if invMass != 0.0 {
		impulse = -c / invMass
	}

	p := ay.Scale(impulse)
	la, lb := impulse*sAy, impulse*sBy

	cA = cA.Sub(p.Scale(mA))
	aA -= iA * la
	cB = cB.Add(p.Scale(mB))
	aB += iB * lb

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return math.Abs(c) <= LinearSlop
}
