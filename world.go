package vela2d

import (
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// DestructionListener is notified when a joint or fixture is about to be
// destroyed as a side effect of destroying something else — a body being
// destroyed takes its joints and fixtures with it, and a caller that keeps
// its own references to them needs to know before those pointers dangle.
type DestructionListener interface {
	SayGoodbyeToJoint(j Joint)
	SayGoodbyeToFixture(f *Fixture)
}

// NopDestructionListener implements DestructionListener with no-ops.
type NopDestructionListener struct{}

func (NopDestructionListener) SayGoodbyeToJoint(Joint)      {}
func (NopDestructionListener) SayGoodbyeToFixture(*Fixture) {}

// World owns every body, joint, and contact in one simulation and drives
// them forward one fixed step at a time. Where the teacher links bodies and
// joints through intrusive doubly-linked lists, World keeps them in plain
// slices — nothing here needs O(1) removal from the middle of the list, and
// a slice is both simpler and friendlier to the range-heavy island/query
// code that walks the whole collection every step.
type World struct {
	ID uuid.UUID

	bodies []*Body
	joints []Joint

	gravity    Vec2
	allowSleep bool

	contactManager *ContactManager
	broadPhase     *BroadPhase

	destructionListener DestructionListener

	config WorldConfig

	locked      bool
	newFixture  bool
	clearForces bool
	stepComplete bool

	invDt0 float64

	profile Profile

	log *log.Logger
}

// NewWorld creates a World with the given gravity and DefaultWorldConfig.
// Use NewWorldWithConfig to override iteration counts or continuous-physics
// behavior.
func NewWorld(gravity Vec2) *World {
	return NewWorldWithConfig(gravity, DefaultWorldConfig())
}

func NewWorldWithConfig(gravity Vec2, config WorldConfig) *World {
	cm := newContactManager()
	return &World{
		ID:                  uuid.New(),
		gravity:             gravity,
		allowSleep:          config.AllowSleep,
		contactManager:      cm,
		broadPhase:          cm.broadPhase,
		destructionListener: NopDestructionListener{},
		config:              config,
		clearForces:         true,
		stepComplete:        true,
		log: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "vela2d",
			Level:           log.WarnLevel,
		}),
	}
}

// SetLogger replaces the World's step logger; pass nil to silence step
// logging entirely.
func (w *World) SetLogger(l *log.Logger) { w.log = l }

func (w *World) Bodies() []*Body { return w.bodies }
func (w *World) Joints() []Joint { return w.joints }

func (w *World) BodyCount() int  { return len(w.bodies) }
func (w *World) JointCount() int { return len(w.joints) }
func (w *World) ContactCount() int { return len(w.contactManager.contacts) }

func (w *World) SetGravity(g Vec2) { w.gravity = g }
func (w *World) Gravity() Vec2     { return w.gravity }

// Config returns the WorldConfig this World was constructed with, useful for
// recovering its default iteration counts when calling Step.
func (w *World) Config() WorldConfig { return w.config }

func (w *World) IsLocked() bool { return w.locked }

func (w *World) SetAutoClearForces(v bool) { w.clearForces = v }
func (w *World) GetAutoClearForces() bool  { return w.clearForces }

func (w *World) SetDestructionListener(l DestructionListener) { w.destructionListener = l }
func (w *World) SetContactFilter(f ContactFilter)              { w.contactManager.filter = f }
func (w *World) SetContactListener(l ContactListener)           { w.contactManager.listener = l }

func (w *World) Profile() Profile { return w.profile }

func (w *World) ProxyCount() int      { return w.broadPhase.ProxyCount() }
func (w *World) TreeHeight() int      { return w.broadPhase.TreeHeight() }
func (w *World) TreeQuality() float64 { return w.broadPhase.TreeQuality() }

// SetAllowSleeping toggles whether islands are allowed to put their bodies
// to sleep; disabling it wakes everything currently asleep.
func (w *World) SetAllowSleeping(v bool) {
	if v == w.allowSleep {
		return
	}
	w.allowSleep = v
	if !v {
		for _, b := range w.bodies {
			b.SetAwake(true)
		}
	}
}

// CreateBody adds a new Body to the world. Returns a PreconditionError if
// called during Step (from a ContactListener callback, for instance) — the
// teacher enforces the same restriction since the body/contact/island
// bookkeeping mid-step is not reentrant.
func (w *World) CreateBody(def BodyDef) (*Body, error) {
	if w.locked {
		return nil, newPrecondition("CreateBody: world is locked")
	}
	b := newBody(w, def)
	w.bodies = append(w.bodies, b)
	return b, nil
}

// DestroyBody removes b along with every joint and fixture attached to it,
// notifying the DestructionListener for each joint/fixture it takes down as
// a side effect.
func (w *World) DestroyBody(b *Body) error {
	if w.locked {
		return newPrecondition("DestroyBody: world is locked")
	}

	for len(b.joints) > 0 {
		j := b.joints[0].Joint
		w.destructionListener.SayGoodbyeToJoint(j)
		w.DestroyJoint(j)
	}

	for len(b.contacts) > 0 {
		w.contactManager.destroy(b.contacts[0].Contact)
	}

	for _, f := range b.fixtures {
		w.destructionListener.SayGoodbyeToFixture(f)
		f.destroyProxies(w.broadPhase)
	}
	b.fixtures = nil

	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
	return nil
}

// CreateJoint builds a joint from a concrete *JointDef-shaped value (see
// newJointFromDef for the accepted types), links it into both bodies' joint
// edge lists, and flags any existing contact between them for re-filtering
// if the new joint disables collision between its bodies.
func (w *World) CreateJoint(def interface{}) (Joint, error) {
	if w.locked {
		return nil, newPrecondition("CreateJoint: world is locked")
	}
	j, err := newJointFromDef(def)
	if err != nil {
		return nil, err
	}
	if j == nil {
		return nil, newPrecondition("CreateJoint: unrecognized joint definition type %T", def)
	}

	base := j.base()
	w.joints = append(w.joints, j)

	base.bodyA.joints = append(base.bodyA.joints, &JointEdge{Other: base.bodyB, Joint: j})
	base.bodyB.joints = append(base.bodyB.joints, &JointEdge{Other: base.bodyA, Joint: j})

	if !base.collideConnected {
		for _, edge := range base.bodyB.contacts {
			if edge.Other == base.bodyA {
				edge.Contact.flagFilter = true
			}
		}
	}

	return j, nil
}

// DestroyJoint unlinks j from both bodies and wakes them, matching the
// teacher's assumption that a removed constraint might let a previously
// resting configuration start moving again.
func (w *World) DestroyJoint(j Joint) error {
	if w.locked {
		return newPrecondition("DestroyJoint: world is locked")
	}

	base := j.base()

	for i, other := range w.joints {
		if other == j {
			w.joints = append(w.joints[:i], w.joints[i+1:]...)
			break
		}
	}

	base.bodyA.joints = removeJointEdge(base.bodyA.joints, j)
	base.bodyB.joints = removeJointEdge(base.bodyB.joints, j)

	base.bodyA.SetAwake(true)
	base.bodyB.SetAwake(true)

	if !base.collideConnected {
		for _, edge := range base.bodyB.contacts {
			if edge.Other == base.bodyA {
				edge.Contact.flagFilter = true
			}
		}
	}
	return nil
}

func removeJointEdge(edges []*JointEdge, j Joint) []*JointEdge {
	for i, e := range edges {
		if e.Joint == j {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}

// Step advances the simulation by dt using the given velocity and position
// solver iteration counts: refreshes contacts, solves every awake island,
// resolves time-of-impact events for bullets and fast-moving bodies, then
// optionally clears accumulated forces. Callers that want the world's
// configured default iteration counts instead of a per-call override can
// pass w.Config().VelocityIterations/PositionIterations.
func (w *World) Step(dt float64, velocityIterations, positionIterations int) Profile {
	w.profile = Profile{}

	if w.newFixture {
		w.contactManager.findNewContacts()
		w.newFixture = false
	}

	w.locked = true
	defer func() { w.locked = false }()

	step := TimeStep{
		Dt:                 dt,
		VelocityIterations: velocityIterations,
		PositionIterations: positionIterations,
		WarmStarting:       w.config.WarmStarting,
	}
	if dt > 0.0 {
		step.InvDt = 1.0 / dt
	}
	step.DtRatio = w.invDt0 * dt

	w.contactManager.collide()

	if w.stepComplete && step.Dt > 0.0 {
		w.solve(step)
	}

	if w.config.ContinuousPhysics && step.Dt > 0.0 {
		w.solveTOI(step)
	}

	if step.Dt > 0.0 {
		w.invDt0 = step.InvDt
	}

	if w.clearForces {
		w.ClearForces()
	}

	if w.log != nil {
		w.log.Debug("step",
			"bodies", len(w.bodies),
			"contacts", len(w.contactManager.contacts),
			"joints", len(w.joints),
			"dt", dt,
		)
	}

	return w.profile
}

func (w *World) ClearForces() {
	for _, b := range w.bodies {
		b.force = Vec2{}
		b.torque = 0
	}
}

// solve assembles and simulates every awake, active island reachable from a
// non-static seed body via touching contacts or active joints, then
// synchronizes fixtures for whatever moved and looks for the resulting new
// broad-phase pairs.
func (w *World) solve(step TimeStep) {
	for _, b := range w.bodies {
		b.onIsland = false
	}
	for _, c := range w.contactManager.contacts {
		c.onIsland = false
	}
	for _, j := range w.joints {
		j.base().islandFlag = false
	}

	stack := make([]*Body, 0, len(w.bodies))
	isl := newIsland()
	isl.listener = w.contactManager.listener

	for _, seed := range w.bodies {
		if seed.onIsland || !seed.IsAwake() || !seed.IsActive() || seed.bodyType == StaticBody {
			continue
		}

		isl.clear()
		stack = stack[:0]
		stack = append(stack, seed)
		seed.onIsland = true

		for len(stack) > 0 {
			b := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			isl.add(b)
			b.isAwake = true

			if b.bodyType == StaticBody {
				continue
			}

			for _, edge := range b.contacts {
				c := edge.Contact
				if c.onIsland || !c.enabled || !c.isTouching || c.isSensor() {
					continue
				}
				isl.addContact(c)
				c.onIsland = true

				other := edge.Other
				if !other.onIsland {
					stack = append(stack, other)
					other.onIsland = true
				}
			}

			for _, edge := range b.joints {
				jb := edge.Joint.base()
				if jb.islandFlag {
					continue
				}
				other := edge.Other
				if !other.IsActive() {
					continue
				}
				isl.addJoint(edge.Joint)
				jb.islandFlag = true

				if !other.onIsland {
					stack = append(stack, other)
					other.onIsland = true
				}
			}
		}

		profile := isl.solve(step, w.gravity, w.allowSleep)
		w.profile.SolveInit += profile.SolveInit
		w.profile.SolveVelocity += profile.SolveVelocity
		w.profile.SolvePosition += profile.SolvePosition

		for _, b := range isl.bodies {
			if b.bodyType == StaticBody {
				b.onIsland = false
			}
		}
	}

	for _, b := range w.bodies {
		if !b.onIsland || b.bodyType == StaticBody {
			continue
		}
		b.synchronizeFixtures()
	}

	w.contactManager.findNewContacts()
}

// solveTOI repeatedly finds the earliest time-of-impact event across every
// enabled contact and resolves it with a two-body sub-island, advancing the
// bodies involved to the moment of contact before letting the normal
// velocity solver take over for the remainder of the step.
func (w *World) solveTOI(step TimeStep) {
	if w.stepComplete {
		for _, b := range w.bodies {
			b.onIsland = false
			b.sweep.Alpha0 = 0.0
		}
		for _, c := range w.contactManager.contacts {
			c.toiFlag = false
			c.onIsland = false
			c.toiCount = 0
			c.toi = 1.0
		}
	}

	for {
		var minContact *Contact
		minAlpha := 1.0

		for _, c := range w.contactManager.contacts {
			if !c.enabled || c.toiCount > MaxSubSteps {
				continue
			}

			alpha := 1.0
			if c.toiFlag {
				alpha = c.toi
			} else {
				fA, fB := c.fixtureA, c.fixtureB
				if fA.isSensor || fB.isSensor {
					continue
				}

				bA, bB := fA.body, fB.body
				typeA, typeB := bA.bodyType, bB.bodyType

				activeA := bA.IsAwake() && typeA != StaticBody
				activeB := bB.IsAwake() && typeB != StaticBody
				if !activeA && !activeB {
					continue
				}

				collideA := bA.bullet || typeA != DynamicBody
				collideB := bB.bullet || typeB != DynamicBody
				if !collideA && !collideB {
					continue
				}

				alpha0 := bA.sweep.Alpha0
				if bA.sweep.Alpha0 < bB.sweep.Alpha0 {
					alpha0 = bB.sweep.Alpha0
					bA.sweep.Advance(alpha0)
				} else if bB.sweep.Alpha0 < bA.sweep.Alpha0 {
					alpha0 = bA.sweep.Alpha0
					bB.sweep.Advance(alpha0)
				}

				output := ComputeTimeOfImpact(TOIInput{
					ProxyA: MakeShapeProxy(fA.shape, c.childIndexA),
					ProxyB: MakeShapeProxy(fB.shape, c.childIndexB),
					SweepA: bA.sweep,
					SweepB: bB.sweep,
					TMax:   1.0,
				})

				if output.State == TOITouching || output.State == TOIFailed {
					alpha = math.Min(alpha0+(1.0-alpha0)*output.T, 1.0)
				} else {
					alpha = 1.0
				}

				c.toi = alpha
				c.toiFlag = true
			}

			if alpha < minAlpha {
				minContact = c
				minAlpha = alpha
			}
		}

		if minContact == nil || minAlpha > 1.0-10.0*Epsilon {
			w.stepComplete = true
			break
		}

		fA, fB := minContact.fixtureA, minContact.fixtureB
		bA, bB := fA.body, fB.body

		backupA, backupB := bA.sweep, bB.sweep

		bA.advance(minAlpha)
		bB.advance(minAlpha)

		minContact.update(w.contactManager.listener)
		minContact.toiFlag = false
		minContact.toiCount++

		if !minContact.enabled || !minContact.isTouching {
			minContact.enabled = false
			bA.sweep, bB.sweep = backupA, backupB
			bA.synchronizeTransform()
			bB.synchronizeTransform()
			continue
		}

		bA.SetAwake(true)
		bB.SetAwake(true)

		isl := newIsland()
		isl.listener = w.contactManager.listener
		isl.add(bA)
		isl.add(bB)
		isl.addContact(minContact)

		bA.onIsland, bB.onIsland = true, true
		minContact.onIsland = true

		for _, body := range [2]*Body{bA, bB} {
			if body.bodyType != DynamicBody {
				continue
			}
			for _, edge := range body.contacts {
				if len(isl.bodies) >= 2*MaxTOIContacts || len(isl.contacts) >= MaxTOIContacts {
					break
				}
				c := edge.Contact
				if c.onIsland {
					continue
				}
				other := edge.Other
				if other.bodyType == DynamicBody && !body.bullet && !other.bullet {
					continue
				}
				if c.isSensor() {
					continue
				}

				backup := other.sweep
				if !other.onIsland {
					other.advance(minAlpha)
				}

				c.update(w.contactManager.listener)

				if !c.enabled || !c.isTouching {
					other.sweep = backup
					other.synchronizeTransform()
					continue
				}

				c.onIsland = true
				isl.addContact(c)

				if other.onIsland {
					continue
				}
				other.onIsland = true
				if other.bodyType != StaticBody {
					other.SetAwake(true)
				}
				isl.add(other)
			}
		}

		toiIndexA, toiIndexB := 0, 1
		for i, b := range isl.bodies {
			if b == bA {
				toiIndexA = i
			}
			if b == bB {
				toiIndexB = i
			}
		}

		subStep := TimeStep{
			Dt:                 (1.0 - minAlpha) * step.Dt,
			PositionIterations: 20,
			VelocityIterations: step.VelocityIterations,
			WarmStarting:       false,
		}
		if subStep.Dt > 0 {
			subStep.InvDt = 1.0 / subStep.Dt
		}
		subStep.DtRatio = 1.0

		isl.solveTOI(subStep, toiIndexA, toiIndexB)

		for _, body := range isl.bodies {
			body.onIsland = false
			if body.bodyType != DynamicBody {
				continue
			}
			body.synchronizeFixtures()
			for _, edge := range body.contacts {
				edge.Contact.toiFlag = false
				edge.Contact.onIsland = false
			}
		}

		w.contactManager.findNewContacts()

		if w.config.SubStepping {
			w.stepComplete = false
			break
		}
	}
}
