package vela2d

import "math"

// island is one connected component of the awake dynamic-body graph: every
// body reachable from another via a touching contact or an active joint
// gets solved together, since a velocity change to one can propagate to
// all the others within a single step.
type island struct {
	bodies   []*Body
	contacts []*Contact
	joints   []Joint

	listener ContactListener
}

func newIsland() *island {
	return &island{listener: NopContactListener{}}
}

func (isl *island) clear() {
	isl.bodies = isl.bodies[:0]
	isl.contacts = isl.contacts[:0]
	isl.joints = isl.joints[:0]
}

func (isl *island) add(b *Body)       { isl.bodies = append(isl.bodies, b) }
func (isl *island) addContact(c *Contact) { isl.contacts = append(isl.contacts, c) }
func (isl *island) addJoint(j Joint)   { isl.joints = append(isl.joints, j) }

// solve runs one full step's worth of constraint solving for the island:
// semi-implicit Euler velocity integration (gravity, damping), warm start,
// velocityIterations of sequential-impulse solving, position integration,
// positionIterations of nonlinear Gauss-Seidel correction, and finally the
// per-body sleep decision.
func (isl *island) solve(step TimeStep, gravity Vec2, allowSleep bool) Profile {
	var profile Profile

	h := step.Dt

	positions := make([]Position, len(isl.bodies))
	velocities := make([]Velocity, len(isl.bodies))
	indexOf := make(map[*Body]int, len(isl.bodies))

	for i, b := range isl.bodies {
		indexOf[b] = i
		positions[i] = Position{C: b.sweep.C, A: b.sweep.A}
		velocities[i] = Velocity{V: b.linearVelocity, W: b.angularVelocity}

		if b.bodyType == DynamicBody {
			v := velocities[i].V.Add(gravity.Scale(b.gravityScale).Add(b.force.Scale(b.invMass)).Scale(h))
			w := velocities[i].W + h*b.invI*b.torque

			v = v.Scale(1.0 / (1.0 + h*b.linearDamping))
			w = w / (1.0 + h*b.angularDamping)

			velocities[i] = Velocity{V: v, W: w}
		}
	}

	sd := &solverData{step: step, positions: positions, velocities: velocities, indexOf: indexOf}

	contactSolver := newContactSolver(step, isl.contacts, positions, velocities, indexOf)

	contactSolver.initializeVelocityConstraints()

	if step.WarmStarting {
		contactSolver.warmStart()
		for _, j := range isl.joints {
			j.initVelocityConstraints(sd)
		}
	} else {
		for _, j := range isl.joints {
			j.initVelocityConstraints(sd)
		}
	}

	for i := 0; i < step.VelocityIterations; i++ {
		for _, j := range isl.joints {
			j.solveVelocityConstraints(sd)
		}
		contactSolver.solveVelocityConstraints()
	}

	contactSolver.storeImpulses()

	for i, b := range isl.bodies {
		v, w := velocities[i].V, velocities[i].W

		translation := v.Scale(h)
		if translation.Dot(translation) > MaxTranslationSquared {
			ratio := MaxTranslation / translation.Length()
			v = v.Scale(ratio)
		}

		rotation := h * w
		if rotation*rotation > MaxRotationSquared {
			ratio := MaxRotation / math.Abs(rotation)
			w *= ratio
		}

		positions[i].C = positions[i].C.Add(v.Scale(h))
		positions[i].A += h * w
		velocities[i] = Velocity{V: v, W: w}
		_ = b
	}

	positionSolved := false
	for i := 0; i < step.PositionIterations; i++ {
		contactsOkay := contactSolver.solvePositionConstraints()

		jointsOkay := true
		for _, j := range isl.joints {
			jointOkay := j.solvePositionConstraints(sd)
			jointsOkay = jointsOkay && jointOkay
		}

		if contactsOkay && jointsOkay {
			positionSolved = true
			break
		}
	}
	_ = positionSolved

	for i, b := range isl.bodies {
		b.sweep.C = positions[i].C
		b.sweep.A = positions[i].A
		b.linearVelocity = velocities[i].V
		b.angularVelocity = velocities[i].W
		b.synchronizeTransform()
	}

	isl.reportImpulses(contactSolver)

	if allowSleep {
		minSleepTime := MaxFloat

		for _, b := range isl.bodies {
			if b.bodyType == StaticBody {
				continue
			}
			if !b.autoSleep || b.angularVelocity*b.angularVelocity > AngularSleepTolerance*AngularSleepTolerance ||
				b.linearVelocity.Dot(b.linearVelocity) > LinearSleepTolerance*LinearSleepTolerance {
				b.sleepTime = 0
				minSleepTime = 0
			} else {
				b.sleepTime += h
				minSleepTime = math.Min(minSleepTime, b.sleepTime)
			}
		}

		if minSleepTime >= TimeToSleep {
			for _, b := range isl.bodies {
				b.SetAwake(false)
			}
		}
	}

	return profile
}

// reportImpulses fires ContactListener.PostSolve for every non-sensor
// touching contact in the island with the impulses the velocity solver
// actually applied.
func (isl *island) reportImpulses(cs *contactSolver) {
	impulses := cs.impulses()
	for i, c := range isl.contacts {
		if c.isTouching && !c.isSensor() {
			isl.listener.PostSolve(c, &impulses[i])
		}
	}
}

// solveTOI runs a restricted solve for exactly the two bodies involved in a
// time-of-impact event (plus whatever else the caller has added to the
// island for context): up to 20 iterations of the TOI-flavored position
// corrector (which only moves toiIndexA/toiIndexB), a velocity solve for
// every body in the island, and finally position integration over the
// substep's remaining duration so bodies keep moving after the TOI contact
// point instead of freezing there.
func (isl *island) solveTOI(step TimeStep, toiIndexA, toiIndexB int) {
	positions := make([]Position, len(isl.bodies))
	velocities := make([]Velocity, len(isl.bodies))
	indexOf := make(map[*Body]int, len(isl.bodies))

	for i, b := range isl.bodies {
		indexOf[b] = i
		positions[i] = Position{C: b.sweep.C, A: b.sweep.A}
		velocities[i] = Velocity{V: b.linearVelocity, W: b.angularVelocity}
	}

	contactSolver := newContactSolver(step, isl.contacts, positions, velocities, indexOf)

	for i := 0; i < 20; i++ {
		if contactSolver.solveTOIPositionConstraints(toiIndexA, toiIndexB) {
			break
		}
	}

	// Leap of faith to new safe state: only the two TOI bodies get a fresh
	// C0/A0, matching the teacher's assumption that everything else in this
	// sub-island is either static or an unmoved bystander.
	isl.bodies[toiIndexA].sweep.C0 = positions[toiIndexA].C
	isl.bodies[toiIndexA].sweep.A0 = positions[toiIndexA].A
	isl.bodies[toiIndexB].sweep.C0 = positions[toiIndexB].C
	isl.bodies[toiIndexB].sweep.A0 = positions[toiIndexB].A

	// No warm starting: warm-start impulses were already applied by the
	// discrete solver earlier in the step.
	contactSolver.initializeVelocityConstraints()

	for i := 0; i < step.VelocityIterations; i++ {
		contactSolver.solveVelocityConstraints()
	}

	// Don't store these contact forces for warm starting — TOI impulses can
	// be unusually large.

	h := step.Dt

	for i, b := range isl.bodies {
		c, a := positions[i].C, positions[i].A
		v, w := velocities[i].V, velocities[i].W

		translation := v.Scale(h)
		if translation.Dot(translation) > MaxTranslationSquared {
			ratio := MaxTranslation / translation.Length()
			v = v.Scale(ratio)
		}

		rotation := h * w
		if rotation*rotation > MaxRotationSquared {
			ratio := MaxRotation / math.Abs(rotation)
			w *= ratio
		}

		c = c.Add(v.Scale(h))
		a += h * w

		positions[i] = Position{C: c, A: a}
		velocities[i] = Velocity{V: v, W: w}

		b.sweep.C = c
		b.sweep.A = a
		b.linearVelocity = v
		b.angularVelocity = w
		b.synchronizeTransform()
	}

	isl.reportImpulses(contactSolver)
}
