package vela2d

import "math"

// velocityConstraintPoint is the per-manifold-point state the velocity
// solver iterates on: the moment arms from each body's center to the
// contact point, the effective masses along the normal and tangent, and the
// bias term that injects restitution into the normal impulse.
type velocityConstraintPoint struct {
	rA, rB Vec2

	normalImpulse  float64
	tangentImpulse float64

	normalMass  float64
	tangentMass float64
	velocityBias float64
}

// contactVelocityConstraint is one contact's velocity-solver state, built
// fresh from its manifold and fixtures at the start of every island solve.
type contactVelocityConstraint struct {
	points [MaxManifoldPoints]velocityConstraintPoint

	normal     Vec2
	normalMass Mat22
	k          Mat22

	indexA, indexB     int
	invMassA, invMassB float64
	invIA, invIB       float64

	friction     float64
	restitution  float64
	threshold    float64
	tangentSpeed float64

	pointCount   int
	contactIndex int
}

// contactPositionConstraint is the corresponding state for the position
// (NGS) solver: everything needed to reconstruct the world-space manifold
// from a candidate Position pair without re-running narrow phase.
type contactPositionConstraint struct {
	localPoints [MaxManifoldPoints]Vec2
	localNormal Vec2
	localPoint  Vec2

	indexA, indexB             int
	invMassA, invMassB         float64
	localCenterA, localCenterB Vec2
	invIA, invIB               float64

	manifoldType ManifoldType
	radiusA, radiusB float64
	pointCount   int
}

// contactSolver runs the sequential-impulse velocity solve (with a 2x2
// block solve for two-point manifolds) and the nonlinear Gauss-Seidel
// position correction pass, both operating on the Position/Velocity arrays
// an island shares across all of its contacts and joints.
type contactSolver struct {
	step       TimeStep
	positions  []Position
	velocities []Velocity
	contacts   []*Contact

	velocityConstraints []contactVelocityConstraint
	positionConstraints []contactPositionConstraint
}

func newContactSolver(step TimeStep, contacts []*Contact, positions []Position, velocities []Velocity, indexOf map[*Body]int) *contactSolver {
	cs := &contactSolver{
		step:                step,
		positions:           positions,
		velocities:          velocities,
		contacts:            contacts,
		velocityConstraints: make([]contactVelocityConstraint, len(contacts)),
		positionConstraints: make([]contactPositionConstraint, len(contacts)),
	}

	for i, c := range contacts {
		fixtureA, fixtureB := c.fixtureA, c.fixtureB
		bodyA, bodyB := fixtureA.body, fixtureB.body
		manifold := &c.manifold

		pointCount := manifold.PointCount

		vc := &cs.velocityConstraints[i]
		vc.friction = c.friction
		vc.restitution = c.restitution
		vc.threshold = c.restitutionThreshold
		vc.tangentSpeed = c.tangentSpeed
		vc.indexA = indexOf[bodyA]
		vc.indexB = indexOf[bodyB]
		vc.invMassA = bodyA.invMass
		vc.invMassB = bodyB.invMass
		vc.invIA = bodyA.invI
		vc.invIB = bodyB.invI
		vc.contactIndex = i
		vc.pointCount = pointCount

		pc := &cs.positionConstraints[i]
		pc.indexA = vc.indexA
		pc.indexB = vc.indexB
		pc.invMassA = vc.invMassA
		pc.invMassB = vc.invMassB
		pc.localCenterA = bodyA.sweep.LocalCenter
		pc.localCenterB = bodyB.sweep.LocalCenter
		pc.invIA = vc.invIA
		pc.invIB = vc.invIB
		pc.manifoldType = manifold.Type
		pc.radiusA = fixtureA.shape.Radius()
		pc.radiusB = fixtureB.shape.Radius()
		pc.pointCount = pointCount
		pc.localNormal = manifold.LocalNormal
		pc.localPoint = manifold.LocalPoint

		for j := 0; j < pointCount; j++ {
			mp := &manifold.Points[j]
			vp := &vc.points[j]
			if step.WarmStarting {
				vp.normalImpulse = step.DtRatio * mp.NormalImpulse
				vp.tangentImpulse = step.DtRatio * mp.TangentImpulse
			}
			pc.localPoints[j] = mp.LocalPoint
		}
	}
	return cs
}

// InitializeVelocityConstraints computes, per manifold point, the moment
// arms from each body's world center to the world-space contact point, the
// effective normal/tangent masses those arms and inverse masses/inertias
// produce, and the restitution bias — everything WarmStart and
// SolveVelocityConstraints need but that doesn't change as impulses are
// applied within the same step.
func (cs *contactSolver) initializeVelocityConstraints() {
	for i := range cs.velocityConstraints {
		vc := &cs.velocityConstraints[i]
		pc := &cs.positionConstraints[i]

		radiusA, radiusB := pc.radiusA, pc.radiusB
		manifold := &cs.contacts[vc.contactIndex].manifold

		indexA, indexB := vc.indexA, vc.indexB
		mA, iA := vc.invMassA, vc.invIA
		mB, iB := vc.invMassB, vc.invIB
		localCenterA, localCenterB := pc.localCenterA, pc.localCenterB

		cA, aA := cs.positions[indexA].C, cs.positions[indexA].A
		vA, wA := cs.velocities[indexA].V, cs.velocities[indexA].W
		cB, aB := cs.positions[indexB].C, cs.positions[indexB].A
		vB, wB := cs.velocities[indexB].V, cs.velocities[indexB].W

		xfA := Transform{Q: NewRot(aA)}
		xfA.P = cA.Sub(xfA.Q.MulVec2(localCenterA))
		xfB := Transform{Q: NewRot(aB)}
		xfB.P = cB.Sub(xfB.Q.MulVec2(localCenterB))

		var wm WorldManifold
		wm.Initialize(manifold, xfA, radiusA, xfB, radiusB)
		vc.normal = wm.Normal

		for j := 0; j < vc.pointCount; j++ {
			vp := &vc.points[j]
			vp.rA = wm.Points[j].Sub(cA)
			vp.rB = wm.Points[j].Sub(cB)

			rnA := vp.rA.Cross(vc.normal)
			rnB := vp.rB.Cross(vc.normal)
			kNormal := mA + mB + iA*rnA*rnA + iB*rnB*rnB
			if kNormal > 0.0 {
				vp.normalMass = 1.0 / kNormal
			}

			tangent := CrossVecScalar(vc.normal, 1.0)
			rtA := vp.rA.Cross(tangent)
			rtB := vp.rB.Cross(tangent)
			kTangent := mA + mB + iA*rtA*rtA + iB*rtB*rtB
			if kTangent > 0.0 {
				vp.tangentMass = 1.0 / kTangent
			}

			vp.velocityBias = 0.0
			vRel := vc.normal.Dot(vB.Add(CrossScalarVec(wB, vp.rB)).Sub(vA).Sub(CrossScalarVec(wA, vp.rA)))
			if vRel < -vc.threshold {
				vp.velocityBias = -vc.restitution * vRel
			}
		}

		if vc.pointCount == 2 {
			p1, p2 := &vc.points[0], &vc.points[1]
			rn1A, rn1B := p1.rA.Cross(vc.normal), p1.rB.Cross(vc.normal)
			rn2A, rn2B := p2.rA.Cross(vc.normal), p2.rB.Cross(vc.normal)

			k11 := mA + mB + iA*rn1A*rn1A + iB*rn1B*rn1B
			k22 := mA + mB + iA*rn2A*rn2A + iB*rn2B*rn2B
			k12 := mA + mB + iA*rn1A*rn2A + iB*rn1B*rn2B

			const maxConditionNumber = 1000.0
			if k11*k11 < maxConditionNumber*(k11*k22-k12*k12) {
				vc.k = Mat22{Ex: Vec2{k11, k12}, Ey: Vec2{k12, k22}}
				vc.normalMass = vc.k.Inverse()
			} else {
				vc.pointCount = 1
			}
		}
	}
}

// WarmStart re-applies the impulses carried over (via ContactID matching in
// Contact.update) from the previous step, so a resting stack doesn't have to
// re-converge its normal impulse from zero every frame.
func (cs *contactSolver) warmStart() {
	for i := range cs.velocityConstraints {
		vc := &cs.velocityConstraints[i]
		indexA, indexB := vc.indexA, vc.indexB
		mA, iA := vc.invMassA, vc.invIA
		mB, iB := vc.invMassB, vc.invIB

		vA, wA := cs.velocities[indexA].V, cs.velocities[indexA].W
		vB, wB := cs.velocities[indexB].V, cs.velocities[indexB].W

		tangent := CrossVecScalar(vc.normal, 1.0)

		for j := 0; j < vc.pointCount; j++ {
			vp := &vc.points[j]
			p := vc.normal.Scale(vp.normalImpulse).Add(tangent.Scale(vp.tangentImpulse))
			vA = vA.Sub(p.Scale(mA))
			wA -= iA * vp.rA.Cross(p)
			vB = vB.Add(p.Scale(mB))
			wB += iB * vp.rB.Cross(p)
		}

		cs.velocities[indexA] = Velocity{V: vA, W: wA}
		cs.velocities[indexB] = Velocity{V: vB, W: wB}
	}
}

// SolveVelocityConstraints runs one sequential-impulse iteration over every
// contact: friction first (capped by the previous iteration's normal
// impulse, since the friction cone depends on the normal force), then the
// normal constraint — a direct scalar solve for one point, a 2x2 block
// solve for two. When none of the block solver's cases is feasible, that
// contact's normal impulses are left unchanged for this iteration.
func (cs *contactSolver) solveVelocityConstraints() {
	for i := range cs.velocityConstraints {
		vc := &cs.velocityConstraints[i]
		indexA, indexB := vc.indexA, vc.indexB
		mA, iA := vc.invMassA, vc.invIA
		mB, iB := vc.invMassB, vc.invIB

		vA, wA := cs.velocities[indexA].V, cs.velocities[indexA].W
		vB, wB := cs.velocities[indexB].V, cs.velocities[indexB].W

		normal := vc.normal
		tangent := CrossVecScalar(normal, 1.0)
		friction := vc.friction

		for j := 0; j < vc.pointCount; j++ {
			vp := &vc.points[j]

			dv := vB.Add(CrossScalarVec(wB, vp.rB)).Sub(vA).Sub(CrossScalarVec(wA, vp.rA))
			vt := dv.Dot(tangent) - vc.tangentSpeed
			lambda := vp.tangentMass * (-vt)

			maxFriction := friction * vp.normalImpulse
			newImpulse := ClampFloat(vp.tangentImpulse+lambda, -maxFriction, maxFriction)
			lambda = newImpulse - vp.tangentImpulse
			vp.tangentImpulse = newImpulse

			p := tangent.Scale(lambda)
			vA = vA.Sub(p.Scale(mA))
			wA -= iA * vp.rA.Cross(p)
			vB = vB.Add(p.Scale(mB))
			wB += iB * vp.rB.Cross(p)
		}

		if vc.pointCount == 1 {
			vp := &vc.points[0]
			dv := vB.Add(CrossScalarVec(wB, vp.rB)).Sub(vA).Sub(CrossScalarVec(wA, vp.rA))
			vn := dv.Dot(normal)
			lambda := -vp.normalMass * (vn - vp.velocityBias)

			newImpulse := math.Max(vp.normalImpulse+lambda, 0.0)
			lambda = newImpulse - vp.normalImpulse
			vp.normalImpulse = newImpulse

			p := normal.Scale(lambda)
			vA = vA.Sub(p.Scale(mA))
			wA -= iA * vp.rA.Cross(p)
			vB = vB.Add(p.Scale(mB))
			wB += iB * vp.rB.Cross(p)
		} else {
			cs.solveBlock(vc, &vA, &wA, &vB, &wB)
		}

		cs.velocities[indexA] = Velocity{V: vA, W: wA}
		cs.velocities[indexB] = Velocity{V: vB, W: wB}
	}
}

// solveBlock implements the 2x2 block solver for a two-point manifold
// (Erin Catto's "block solver" note): it tries all four sign combinations
// of which point(s) are actively constrained (both, only 1, only 2, or
// neither) in turn, accepting the first whose resulting impulses and
// post-impulse velocities are both feasible.
func (cs *contactSolver) solveBlock(vc *contactVelocityConstraint, vA *Vec2, wA *float64, vB *Vec2, wB *float64) {
	mA, iA := vc.invMassA, vc.invIA
	mB, iB := vc.invMassB, vc.invIB
	normal := vc.normal
	cp1, cp2 := &vc.points[0], &vc.points[1]

	a := Vec2{cp1.normalImpulse, cp2.normalImpulse}

	dv1 := vB.Add(CrossScalarVec(*wB, cp1.rB)).Sub(*vA).Sub(CrossScalarVec(*wA, cp1.rA))
	dv2 := vB.Add(CrossScalarVec(*wB, cp2.rB)).Sub(*vA).Sub(CrossScalarVec(*wA, cp2.rA))

	vn1 := dv1.Dot(normal)
	vn2 := dv2.Dot(normal)

	b := Vec2{vn1 - cp1.velocityBias, vn2 - cp2.velocityBias}
	b = b.Sub(vc.k.MulVec2(a))

	const errorTolerance = -Epsilon * 100

	for {
		x := vc.normalMass.MulVec2(b.Neg())
		if x.X >= 0.0 && x.Y >= 0.0 {
			d := x.Sub(a)
			p1 := normal.Scale(d.X)
			p2 := normal.Scale(d.Y)
			*vA = vA.Sub(p1.Add(p2).Scale(mA))
			*wA -= iA * (cp1.rA.Cross(p1) + cp2.rA.Cross(p2))
			*vB = vB.Add(p1.Add(p2).Scale(mB))
			*wB += iB * (cp1.rB.Cross(p1) + cp2.rB.Cross(p2))
			cp1.normalImpulse, cp2.normalImpulse = x.X, x.Y
			return
		}

		x = Vec2{-cp1.normalMass * b.X, 0}
		vn2 = vc.k.Ey.Y*x.X + b.Y
		if x.X >= 0.0 && vn2 >= errorTolerance {
			d := x.Sub(a)
			p1 := normal.Scale(d.X)
			*vA = vA.Sub(p1.Scale(mA))
			*wA -= iA * cp1.rA.Cross(p1)
			*vB = vB.Add(p1.Scale(mB))
			*wB += iB * cp1.rB.Cross(p1)
			cp1.normalImpulse, cp2.normalImpulse = x.X, 0
			return
		}

		x = Vec2{0, -cp2.normalMass * b.Y}
		vn1 = vc.k.Ex.X*x.Y + b.X
		if x.Y >= 0.0 && vn1 >= errorTolerance {
			d := x.Sub(a)
			p2 := normal.Scale(d.Y)
			*vA = vA.Sub(p2.Scale(mA))
			*wA -= iA * cp2.rA.Cross(p2)
			*vB = vB.Add(p2.Scale(mB))
			*wB += iB * cp2.rB.Cross(p2)
			cp1.normalImpulse, cp2.normalImpulse = 0, x.Y
			return
		}

		x = Vec2{0, 0}
		vn1 = b.X
		vn2 = b.Y
		if vn1 >= errorTolerance && vn2 >= errorTolerance {
			d := x.Sub(a)
			p1 := normal.Scale(d.X)
			p2 := normal.Scale(d.Y)
			*vA = vA.Sub(p1.Add(p2).Scale(mA))
			*wA -= iA * (cp1.rA.Cross(p1) + cp2.rA.Cross(p2))
			*vB = vB.Add(p1.Add(p2).Scale(mB))
			*wB += iB * (cp1.rB.Cross(p1) + cp2.rB.Cross(p2))
			cp1.normalImpulse, cp2.normalImpulse = 0, 0
			return
		}

		// No sign combination is feasible (a degenerate manifold); leave
		// impulses as they were rather than looping.
		return
	}
}

// StoreImpulses copies the final normal/tangent impulses back into each
// contact's manifold, so Contact.update can warm-start from them next step.
func (cs *contactSolver) storeImpulses() {
	for i := range cs.velocityConstraints {
		vc := &cs.velocityConstraints[i]
		m := &cs.contacts[vc.contactIndex].manifold
		for j := 0; j < vc.pointCount; j++ {
			m.Points[j].NormalImpulse = vc.points[j].normalImpulse
			m.Points[j].TangentImpulse = vc.points[j].tangentImpulse
		}
	}
}

func (cs *contactSolver) impulses() []ContactImpulse {
	out := make([]ContactImpulse, len(cs.velocityConstraints))
	for i := range cs.velocityConstraints {
		vc := &cs.velocityConstraints[i]
		out[i].Count = vc.pointCount
		for j := 0; j < vc.pointCount; j++ {
			out[i].NormalImpulses[j] = vc.points[j].normalImpulse
			out[i].TangentImpulses[j] = vc.points[j].tangentImpulse
		}
	}
	return out
}

func positionSolverManifold(pc *contactPositionConstraint, xfA, xfB Transform, index int) (normal, point Vec2, separation float64) {
	switch pc.manifoldType {
	case ManifoldCircles:
		pointA := xfA.MulVec2(pc.localPoint)
		pointB := xfB.MulVec2(pc.localPoints[0])
		normal, _ = pointB.Sub(pointA).Normalize()
		point = pointA.Add(pointB).Scale(0.5)
		separation = pointB.Sub(pointA).Dot(normal) - pc.radiusA - pc.radiusB

	case ManifoldFaceA:
		normal = xfA.Q.MulVec2(pc.localNormal)
		planePoint := xfA.MulVec2(pc.localPoint)
		clipPoint := xfB.MulVec2(pc.localPoints[index])
		separation = clipPoint.Sub(planePoint).Dot(normal) - pc.radiusA - pc.radiusB
		point = clipPoint

	case ManifoldFaceB:
		normal = xfB.Q.MulVec2(pc.localNormal)
		planePoint := xfB.MulVec2(pc.localPoint)
		clipPoint := xfA.MulVec2(pc.localPoints[index])
		separation = clipPoint.Sub(planePoint).Dot(normal) - pc.radiusA - pc.radiusB
		point = clipPoint
		normal = normal.Neg()
	}
	return
}

// SolvePositionConstraints runs one nonlinear-Gauss-Seidel position
// correction iteration: for each contact, reconstructs the current
// world-space separation from the frozen local manifold data and the
// island's evolving Position array, and pushes the two bodies apart along
// the contact normal by a fraction of the penetration (clamped to
// MaxLinearCorrection to avoid a single deep-penetration contact
// destabilizing the whole island). Returns whether every contact's minimum
// separation is within slop, the convergence criterion the caller uses to
// stop early.
func (cs *contactSolver) solvePositionConstraints() bool {
	minSeparation := 0.0

	for i := range cs.positionConstraints {
		pc := &cs.positionConstraints[i]
		indexA, indexB := pc.indexA, pc.indexB
		mA, iA := pc.invMassA, pc.invIA
		mB, iB := pc.invMassB, pc.invIB
		localCenterA, localCenterB := pc.localCenterA, pc.localCenterB

		cA, aA := cs.positions[indexA].C, cs.positions[indexA].A
		cB, aB := cs.positions[indexB].C, cs.positions[indexB].A

		for j := 0; j < pc.pointCount; j++ {
			xfA := Transform{Q: NewRot(aA)}
			xfA.P = cA.Sub(xfA.Q.MulVec2(localCenterA))
			xfB := Transform{Q: NewRot(aB)}
			xfB.P = cB.Sub(xfB.Q.MulVec2(localCenterB))

			normal, point, separation := positionSolverManifold(pc, xfA, xfB, j)

			rA := point.Sub(cA)
			rB := point.Sub(cB)

			if separation < minSeparation {
				minSeparation = separation
			}

			c := ClampFloat(Baumgarte*(separation+LinearSlop), -MaxLinearCorrection, 0.0)

			rnA := rA.Cross(normal)
			rnB := rB.Cross(normal)
			k := mA + mB + iA*rnA*rnA + iB*rnB*rnB

			lambda := 0.0
			if k > 0.0 {
				lambda = -c / k
			}

			p := normal.Scale(lambda)
			cA = cA.Sub(p.Scale(mA))
			aA -= iA * rA.Cross(p)
			cB = cB.Add(p.Scale(mB))
			aB += iB * rB.Cross(p)
		}

		cs.positions[indexA] = Position{C: cA, A: aA}
		cs.positions[indexB] = Position{C: cB, A: aB}
	}

	return minSeparation >= -3.0*LinearSlop
}

// SolveTOIPositionConstraints is the same nonlinear-Gauss-Seidel pass used
// after a time-of-impact event, restricted to the two bodies actually
// involved in that TOI event (every other body in the constraint's contact
// is treated as immovable for this correction, since only the TOI pair's
// position needs fixing up before the island resumes its normal step).
func (cs *contactSolver) solveTOIPositionConstraints(toiIndexA, toiIndexB int) bool {
	minSeparation := 0.0

	for i := range cs.positionConstraints {
		pc := &cs.positionConstraints[i]
		indexA, indexB := pc.indexA, pc.indexB

		mA, iA := 0.0, 0.0
		if indexA == toiIndexA || indexA == toiIndexB {
			mA, iA = pc.invMassA, pc.invIA
		}
		mB, iB := 0.0, 0.0
		if indexB == toiIndexA || indexB == toiIndexB {
			mB, iB = pc.invMassB, pc.invIB
		}

		localCenterA, localCenterB := pc.localCenterA, pc.localCenterB
		cA, aA := cs.positions[indexA].C, cs.positions[indexA].A
		cB, aB := cs.positions[indexB].C, cs.positions[indexB].A

		for j := 0; j < pc.pointCount; j++ {
			xfA := Transform{Q: NewRot(aA)}
			xfA.P = cA.Sub(xfA.Q.MulVec2(localCenterA))
			xfB := Transform{Q: NewRot(aB)}
			xfB.P = cB.Sub(xfB.Q.MulVec2(localCenterB))

			normal, point, separation := positionSolverManifold(pc, xfA, xfB, j)

			rA := point.Sub(cA)
			rB := point.Sub(cB)

			if separation < minSeparation {
				minSeparation = separation
			}

			c := ClampFloat(ToiBaumgarte*(separation+LinearSlop), -MaxLinearCorrection, 0.0)

			rnA := rA.Cross(normal)
			rnB := rB.Cross(normal)
			k := mA + mB + iA*rnA*rnA + iB*rnB*rnB

			lambda := 0.0
			if k > 0.0 {
				lambda = -c / k
			}

			p := normal.Scale(lambda)
			cA = cA.Sub(p.Scale(mA))
			aA -= iA * rA.Cross(p)
			cB = cB.Add(p.Scale(mB))
			aB += iB * rB.Cross(p)
		}

		cs.positions[indexA] = Position{C: cA, A: aA}
		cs.positions[indexB] = Position{C: cB, A: aB}
	}

	return minSeparation >= -1.5*LinearSlop
}
