package vela2d

import "math"

// PrismaticJointDef configures a PrismaticJoint: two bodies constrained to
// slide relative to each other along a single body-local axis, with an
// optional motor and translation limit along that axis.
type PrismaticJointDef struct {
	JointDef
	LocalAnchorA, LocalAnchorB Vec2
	LocalAxisA                 Vec2
	ReferenceAngle             float64
	EnableLimit                bool
	LowerTranslation            float64
	UpperTranslation            float64
	EnableMotor                bool
	MaxMotorForce               float64
	MotorSpeed                  float64
}

func MakePrismaticJointDef(bodyA, bodyB *Body, anchor, axis Vec2) PrismaticJointDef {
	return PrismaticJointDef{
		JointDef:       JointDef{BodyA: bodyA, BodyB: bodyB},
		LocalAnchorA:   bodyA.GetLocalPoint(anchor),
		LocalAnchorB:   bodyB.GetLocalPoint(anchor),
		LocalAxisA:     bodyA.GetLocalVector(axis),
		ReferenceAngle: bodyB.GetAngle() - bodyA.GetAngle(),
	}
}

// PrismaticJoint is the b2PrismaticJoint analogue: a slider constraint
// combined with a perpendicular lock and an angular lock, since a
// two-dimensional prismatic joint has exactly one free degree of freedom
// (translation along the axis).
type PrismaticJoint struct {
	jointBase

	localAnchorA, localAnchorB Vec2
	localXAxisA, localYAxisA   Vec2
	referenceAngle             float64

	enableLimit                          bool
	lowerTranslation, upperTranslation   float64
	enableMotor                          bool
	maxMotorForce, motorSpeed            float64

	indexA, indexB             int
	localCenterA, localCenterB Vec2
	invMassA, invMassB         float64
	invIA, invIB               float64

	impulse      Vec2 // perpendicular, angular
	motorImpulse float64
	lowerImpulse, upperImpulse float64

	axis, perp     Vec2
	s1, s2, a1, a2 float64
	k              Mat22
	axialMass      float64
	translation    float64
}

func newPrismaticJoint(def PrismaticJointDef) *PrismaticJoint {
	axis := normalizeOrUnitX(def.LocalAxisA)
	return &PrismaticJoint{
		jointBase:        newJointBase(PrismaticJointType, def.JointDef),
		localAnchorA:     def.LocalAnchorA,
		localAnchorB:     def.LocalAnchorB,
		localXAxisA:      axis,
		localYAxisA:      CrossScalarVec(1.0, axis),
		referenceAngle:   def.ReferenceAngle,
		enableLimit:      def.EnableLimit,
		lowerTranslation: def.LowerTranslation,
		upperTranslation: def.UpperTranslation,
		enableMotor:      def.EnableMotor,
		maxMotorForce:    def.MaxMotorForce,
		motorSpeed:       def.MotorSpeed,
	}
}

func normalizeOrUnitX(v Vec2) Vec2 {
	u, n := v.Normalize()
	if n < Epsilon {
		return Vec2{1, 0}
	}
	return u
}

func (j *PrismaticJoint) GetAnchorA() Vec2 { return j.bodyA.GetWorldPoint(j.localAnchorA) }
func (j *PrismaticJoint) GetAnchorB() Vec2 { return j.bodyB.GetWorldPoint(j.localAnchorB) }

func (j *PrismaticJoint) GetReactionForce(invDt float64) Vec2 {
	axialImpulse := j.motorImpulse + j.lowerImpulse - j.upperImpulse
	return j.perp.Scale(j.impulse.X).Add(j.axis.Scale(axialImpulse)).Scale(invDt)
}
func (j *PrismaticJoint) GetReactionTorque(invDt float64) float64 { return j.impulse.Y * invDt }

func (j *PrismaticJoint) GetJointTranslation() float64 {
	d := j.bodyB.GetWorldPoint(j.localAnchorB).Sub(j.bodyA.GetWorldPoint(j.localAnchorA))
	axis := j.bodyA.GetWorldVector(j.localXAxisA)
	return d.Dot(axis)
}

func (j *PrismaticJoint) IsMotorEnabled() bool       { return j.enableMotor }
func (j *PrismaticJoint) EnableMotor(v bool)         { j.enableMotor = v }
func (j *PrismaticJoint) SetMotorSpeed(v float64)    { j.motorSpeed = v }
func (j *PrismaticJoint) MotorSpeed() float64        { return j.motorSpeed }
func (j *PrismaticJoint) SetMaxMotorForce(v float64) { j.maxMotorForce = v }
func (j *PrismaticJoint) GetMotorForce(invDt float64) float64 { return j.motorImpulse * invDt }

func (j *PrismaticJoint) IsLimitEnabled() bool { return j.enableLimit }
func (j *PrismaticJoint) EnableLimit(v bool)   { j.enableLimit = v }
func (j *PrismaticJoint) SetLimits(lower, upper float64) {
	j.lowerTranslation, j.upperTranslation = lower, upper
	j.lowerImpulse, j.upperImpulse = 0, 0
}

func (j *PrismaticJoint) initVelocityConstraints(data *solverData) {
	j.indexA, j.indexB = data.indexA(&j.jointBase), data.indexB(&j.jointBase)
	j.localCenterA, j.localCenterB = j.bodyA.sweep.LocalCenter, j.bodyB.sweep.LocalCenter
	j.invMassA, j.invMassB = j.bodyA.invMass, j.bodyB.invMass
	j.invIA, j.invIB = j.bodyA.invI, j.bodyB.invI

	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	qA, qB := NewRot(aA), NewRot(aB)

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	d := cB.Add(rB).Sub(cA).Sub(rA)

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	j.axis = qA.MulVec2(j.localXAxisA)
	j.a1 = d.Add(rA).Cross(j.axis)
	j.a2 = rB.Cross(j.axis)
	invMass := mA + mB + iA*j.a1*j.a1 + iB*j.a2*j.a2
	if invMass != 0 {
		j.axialMass = 1.0 / invMass
	} else {
		j.axialMass = 0
	}

	j.perp = qA.MulVec2(j.localYAxisA)
	j.s1 = d.Add(rA).Cross(j.perp)
	j.s2 = rB.Cross(j.perp)

	k11 := mA + mB + iA*j.s1*j.s1 + iB*j.s2*j.s2
	k12 := iA*j.s1 + iB*j.s2
	k22 := iA + iB
	if k22 == 0 {
		k22 = 1.0
	}
	j.k = Mat22{Ex: Vec2{k11, k12}, Ey: Vec2{k12, k22}}

	j.translation = j.axis.Dot(d)

	if !j.enableMotor {
		j.motorImpulse = 0
	}
	if !j.enableLimit {
		j.lowerImpulse, j.upperImpulse = 0, 0
	}

	if data.step.WarmStarting {
		j.impulse = j.impulse.Scale(data.step.DtRatio)
		j.motorImpulse *= data.step.DtRatio
		j.lowerImpulse *= data.step.DtRatio
		j.upperImpulse *= data.step.DtRatio

		axialImpulse := j.motorImpulse + j.lowerImpulse - j.upperImpulse
		p := j.perp.Scale(j.impulse.X).Add(j.axis.Scale(axialImpulse))
		la := j.impulse.X*j.s1 + j.impulse.Y + axialImpulse*j.a1
		lb := j.impulse.X*j.s2 + j.impulse.Y + axialImpulse*j.a2

		vA = vA.Sub(p.Scale(mA))
		wA -= iA * la
		vB = vB.Add(p.Scale(mB))
		wB += iB * lb
	} else {
		j.impulse = Vec2{}
		j.motorImpulse, j.lowerImpulse, j.upperImpulse = 0, 0, 0
	}

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *PrismaticJoint) solveVelocityConstraints(data *solverData) {
	vA, wA := data.velocities[j.indexA].V, data.velocities[j.indexA].W
	vB, wB := data.velocities[j.indexB].V, data.velocities[j.indexB].W

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	if j.enableMotor {
		cdot := j.axis.Dot(vB.Sub(vA)) + j.a2*wB - j.a1*wA - j.motorSpeed
		impulse := j.axialMass * (-cdot)
		oldImpulse := j.motorImpulse
		maxImpulse := data.step.Dt * j.maxMotorForce
		j.motorImpulse = ClampFloat(oldImpulse+impulse, -maxImpulse, maxImpulse)
		impulse = j.motorImpulse - oldImpulse

		p := j.axis.Scale(impulse)
		la, lb := impulse*j.a1, impulse*j.a2
		vA = vA.Sub(p.Scale(mA))
		wA -= iA * la
		vB = vB.Add(p.Scale(mB))
		wB += iB * lb
	}

	if j.enableLimit {
		{
			c := j.translation - j.lowerTranslation
			cdot := j.axis.Dot(vB.Sub(vA)) + j.a2*wB - j.a1*wA
			impulse := j.axialMass * (-cdot - math.Max(c, 0.0)*data.step.InvDt)
			oldImpulse := j.lowerImpulse
			j.lowerImpulse = math.Max(oldImpulse+impulse, 0.0)
			impulse = j.lowerImpulse - oldImpulse

			p := j.axis.Scale(impulse)
			la, lb := impulse*j.a1, impulse*j.a2
			vA = vA.Sub(p.Scale(mA))
			wA -= iA * la
			vB = vB.Add(p.Scale(mB))
			wB += iB * lb
		}
		{
			c := j.upperTranslation - j.translation
			cdot := j.axis.Dot(vA.Sub(vB)) + j.a1*wA - j.a2*wB
			impulse := j.axialMass * (-cdot - math.Max(c, 0.0)*data.step.InvDt)
			oldImpulse := j.upperImpulse
			j.upperImpulse = math.Max(oldImpulse+impulse, 0.0)
			impulse = j.upperImpulse - oldImpulse

			p := j.axis.Scale(impulse)
			la, lb := impulse*j.a1, impulse*j.a2
			vA = vA.Add(p.Scale(mA))
			wA += iA * la
			vB = vB.Sub(p.Scale(mB))
			wB -= iB * lb
		}
	}

	cdot := Vec2{
		j.perp.Dot(vB.Sub(vA)) + j.s2*wB - j.s1*wA,
		wB - wA,
	}
	impulse := j.k.Solve(cdot.Neg())
	j.impulse = j.impulse.Add(impulse)

	p := j.perp.Scale(impulse.X)
	la := impulse.X*j.s1 + impulse.Y
	lb := impulse.X*j.s2 + impulse.Y

	vA = vA.Sub(p.Scale(mA))
	wA -= iA * la
	vB = vB.Add(p.Scale(mB))
	wB += iB * lb

	data.velocities[j.indexA] = Velocity{V: vA, W: wA}
	data.velocities[j.indexB] = Velocity{V: vB, W: wB}
}

func (j *PrismaticJoint) solvePositionConstraints(data *solverData) bool {
	cA, aA := data.positions[j.indexA].C, data.positions[j.indexA].A
	cB, aB := data.positions[j.indexB].C, data.positions[j.indexB].A

	qA, qB := NewRot(aA), NewRot(aB)

	mA, mB := j.invMassA, j.invMassB
	iA, iB := j.invIA, j.invIB

	rA := qA.MulVec2(j.localAnchorA.Sub(j.localCenterA))
	rB := qB.MulVec2(j.localAnchorB.Sub(j.localCenterB))
	d := cB.Add(rB).Sub(cA).Sub(rA)

	axis := qA.MulVec2(j.localXAxisA)
	a1 := d.Add(rA).Cross(axis)
	a2 := rB.Cross(axis)
	perp := qA.MulVec2(j.localYAxisA)
	s1 := d.Add(rA).Cross(perp)
	s2 := rB.Cross(perp)

	c1 := Vec2{perp.Dot(d), aB - aA - j.referenceAngle}

	linearError := math.Abs(c1.X)
	angularError := math.Abs(c1.Y)

	c2 := 0.0
	if j.enableLimit {
		translation := axis.Dot(d)
		if math.Abs(j.upperTranslation-j.lowerTranslation) < 2.0*LinearSlop {
			c2 = ClampFloat(translation, -MaxLinearCorrection, MaxLinearCorrection)
			linearError = math.Max(linearError, math.Abs(translation))
		} else if translation <= j.lowerTranslation {
			c2 = ClampFloat(translation-j.lowerTranslation+LinearSlop, -MaxLinearCorrection, 0.0)
			linearError = math.Max(linearError, j.lowerTranslation-translation)
		} else if translation >= j.upperTranslation {
			c2 = ClampFloat(translation-j.upperTranslation-LinearSlop, 0.0, MaxLinearCorrection)
			linearError = math.Max(linearError, translation-j.upperTranslation)
		}
	}

	k11 := mA + mB + iA*s1*s1 + iB*s2*s2
	k12 := iA*s1 + iB*s2
	k22 := iA + iB
	if k22 == 0 {
		k22 = 1.0
	}
	k13 := iA*s1*a1 + iB*s2*a2
	k23 := iA*a1 + iB*a2
	k33 := mA + mB + iA*a1*a1 + iB*a2*a2
	if k33 == 0 {
		k33 = 1.0
	}

	var impulse Vec2
	axialImpulse := 0.0
	if j.enableLimit {
		k := Mat33{
			Ex: Vec3{k11, k12, k13},
			Ey: Vec3{k12, k22, k23},
			Ez: Vec3{k13, k23, k33},
		}
		sol := k.Solve33(Vec3{c1.X, c1.Y, c2}.Scale(-1))
		impulse = Vec2{sol.X, sol.Y}
		axialImpulse = sol.Z
	} else {
		impulse = Mat22{Ex: Vec2{k11, k12}, Ey: Vec2{k12, k22}}.Solve(c1.Neg())
	}

	p := perp.Scale(impulse.X)
	la := impulse.X*s1 + impulse.Y
	lb := impulse.X*s2 + impulse.Y
	if j.enableLimit {
		p = p.Add(axis.Scale(axialImpulse))
		la += axialImpulse * a1
		lb += axialImpulse * a2
	}

	cA = cA.Sub(p.Scale(mA))
	aA -= iA * la
	cB = cB.Add(p.Scale(mB))
	aB += iB * lb

	data.positions[j.indexA] = Position{C: cA, A: aA}
	data.positions[j.indexB] = Position{C: cB, A: aB}

	return linearError <= LinearSlop && angularError <= AngularSlop
}
