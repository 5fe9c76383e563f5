package vela2d

// BodyType selects how a Body participates in the simulation: Static bodies
// have infinite mass and never move; Kinematic bodies move at a prescribed
// velocity and are unaffected by forces or collisions; Dynamic bodies are
// fully simulated.
type BodyType uint8

const (
	StaticBody BodyType = iota
	KinematicBody
	DynamicBody
)

// BodyDef describes a body to be created via World.CreateBody.
type BodyDef struct {
	Type            BodyType
	Position        Vec2
	Angle           float64
	LinearVelocity  Vec2
	AngularVelocity float64
	LinearDamping   float64
	AngularDamping  float64
	GravityScale    float64
	AllowSleep      bool
	Awake           bool
	FixedRotation   bool
	Bullet          bool
	Active          bool
	UserData        interface{}
}

// DefaultBodyDef returns a BodyDef for an awake, active, sleep-eligible
// static body at the origin with unit gravity scale — the same defaults the
// teacher's b2BodyDef constructor sets.
func DefaultBodyDef() BodyDef {
	return BodyDef{
		GravityScale: 1.0,
		AllowSleep:   true,
		Awake:        true,
		Active:       true,
	}
}

// ContactEdge links a Body to one Contact it participates in, and to the
// other Body on the far side of that contact — used by island assembly to
// walk the contact graph.
type ContactEdge struct {
	Other   *Body
	Contact *Contact
}

// JointEdge is ContactEdge's counterpart for the joint graph.
type JointEdge struct {
	Other *Body
	Joint Joint
}

// Body is one rigid body: a transform, a velocity, mass properties derived
// from its attached fixtures, and the fixture/joint/contact graph edges that
// let island assembly and the world's lifecycle management find its
// neighbors.
type Body struct {
	bodyType BodyType

	xf    Transform
	sweep Sweep

	linearVelocity  Vec2
	angularVelocity float64

	force  Vec2
	torque float64

	world *World

	fixtures []*Fixture
	joints   []*JointEdge
	contacts []*ContactEdge

	mass, invMass float64
	i, invI       float64

	linearDamping  float64
	angularDamping float64
	gravityScale   float64

	sleepTime float64

	isAwake       bool
	autoSleep     bool
	bullet        bool
	fixedRotation bool
	active        bool

	islandIndex int
	onIsland    bool

	userData interface{}
}

func newBody(world *World, def BodyDef) *Body {
	b := &Body{
		bodyType:        def.Type,
		xf:              Transform{P: def.Position, Q: NewRot(def.Angle)},
		linearVelocity:  def.LinearVelocity,
		angularVelocity: def.AngularVelocity,
		world:           world,
		linearDamping:   def.LinearDamping,
		angularDamping:  def.AngularDamping,
		gravityScale:    def.GravityScale,
		isAwake:         def.Awake,
		autoSleep:       def.AllowSleep,
		bullet:          def.Bullet,
		fixedRotation:   def.FixedRotation,
		active:          def.Active,
		userData:        def.UserData,
		invMass:         0,
	}
	if def.Type == DynamicBody {
		b.mass = 1.0
		b.invMass = 1.0
	}
	b.sweep.C0 = b.xf.P
	b.sweep.C = b.xf.P
	b.sweep.A0 = def.Angle
	b.sweep.A = def.Angle
	if !def.Awake {
		b.sleepTime = 0
	}
	return b
}

func (b *Body) Type() BodyType { return b.bodyType }

// SetType changes the body's type at runtime, resetting its velocity when
// the new type is static (a kinematic body keeps its velocity) and forcing
// every attached contact to be re-evaluated, matching the teacher's
// b2Body::SetType.
func (b *Body) SetType(t BodyType) error {
	if b.world.IsLocked() {
		return newPrecondition("SetType: world is locked")
	}
	if t > DynamicBody {
		return newPrecondition("SetType: %d is not a valid BodyType", t)
	}
	if b.bodyType == t {
		return nil
	}
	b.bodyType = t
	b.ResetMassData()
	if t == StaticBody {
		b.linearVelocity = Vec2{}
		b.angularVelocity = 0
		b.sweep.A0 = b.sweep.A
		b.sweep.C0 = b.sweep.C
		b.synchronizeFixtures()
	}
	b.SetAwake(true)
	b.force = Vec2{}
	b.torque = 0

	for _, edge := range b.contacts {
		edge.Contact.flagFilter = true
	}
	return nil
}

func (b *Body) World() *World { return b.world }

func (b *Body) Fixtures() []*Fixture   { return b.fixtures }
func (b *Body) Joints() []*JointEdge   { return b.joints }
func (b *Body) ContactEdges() []*ContactEdge { return b.contacts }

func (b *Body) UserData() interface{}     { return b.userData }
func (b *Body) SetUserData(v interface{}) { b.userData = v }

// CreateFixture attaches a new Fixture built from def, computes its
// broad-phase proxies against the body's current transform, and recomputes
// the body's mass data (a dynamic body's mass always reflects the density
// of everything currently attached).
func (b *Body) CreateFixture(def FixtureDef) (*Fixture, error) {
	if b.world.IsLocked() {
		return nil, newPrecondition("CreateFixture: world is locked")
	}
	f := newFixture(b, def)
	b.fixtures = append(b.fixtures, f)
	if b.active {
		f.createProxies(b.world.broadPhase, b.xf)
	}
	if f.density > 0.0 {
		b.ResetMassData()
	}
	return f, nil
}

// CreateFixtureFromShape is the common-case shortcut: a fixture with only a
// shape and density, all other properties left at their defaults.
func (b *Body) CreateFixtureFromShape(shape Shape, density float64) (*Fixture, error) {
	def := DefaultFixtureDef()
	def.Shape = shape
	def.Density = density
	return b.CreateFixture(def)
}

// DestroyFixture removes f: any contact referencing it is destroyed first,
// its broad-phase proxies are torn down, and the body's mass is recomputed.
func (b *Body) DestroyFixture(f *Fixture) error {
	if b.world.IsLocked() {
		return newPrecondition("DestroyFixture: world is locked")
	}
	idx := -1
	for i, bf := range b.fixtures {
		if bf == f {
			idx = i
			break
		}
	}
	if idx < 0 {
		return newPrecondition("DestroyFixture: fixture not attached to this body")
	}

	for i := 0; i < len(b.contacts); {
		edge := b.contacts[i]
		if edge.Contact.fixtureA == f || edge.Contact.fixtureB == f {
			b.world.contactManager.destroy(edge.Contact)
			continue
		}
		i++
	}

	if b.active {
		f.destroyProxies(b.world.broadPhase)
	}
	b.fixtures = append(b.fixtures[:idx], b.fixtures[idx+1:]...)
	b.ResetMassData()
	return nil
}

func (b *Body) GetTransform() Transform { return b.xf }

// SetTransform snaps the body to a new position/angle immediately (bypassing
// the solver's integration), and re-synchronizes every fixture's broad-phase
// proxy so the next Collide pass sees the new location.
func (b *Body) SetTransform(position Vec2, angle float64) error {
	if b.world.IsLocked() {
		return newPrecondition("SetTransform: world is locked")
	}
	b.xf.Q = NewRot(angle)
	b.xf.P = position

	b.sweep.C = b.xf.MulVec2(b.sweep.LocalCenter)
	b.sweep.A = angle
	b.sweep.C0 = b.sweep.C
	b.sweep.A0 = angle

	b.synchronizeFixtures()
	return nil
}

func (b *Body) GetPosition() Vec2      { return b.xf.P }
func (b *Body) GetAngle() float64      { return b.sweep.A }
func (b *Body) GetWorldCenter() Vec2   { return b.sweep.C }
func (b *Body) GetLocalCenter() Vec2   { return b.sweep.LocalCenter }

func (b *Body) SetLinearVelocity(v Vec2) {
	if b.bodyType == StaticBody {
		return
	}
	if v.Dot(v) > 0.0 {
		b.SetAwake(true)
	}
	b.linearVelocity = v
}

func (b *Body) GetLinearVelocity() Vec2 { return b.linearVelocity }

func (b *Body) SetAngularVelocity(w float64) {
	if b.bodyType == StaticBody {
		return
	}
	if w*w > 0.0 {
		b.SetAwake(true)
	}
	b.angularVelocity = w
}

func (b *Body) GetAngularVelocity() float64 { return b.angularVelocity }

func (b *Body) ApplyForce(force, point Vec2, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && !b.isAwake {
		b.SetAwake(true)
	}
	if !b.isAwake {
		return
	}
	b.force = b.force.Add(force)
	b.torque += point.Sub(b.sweep.C).Cross(force)
}

func (b *Body) ApplyForceToCenter(force Vec2, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && !b.isAwake {
		b.SetAwake(true)
	}
	if !b.isAwake {
		return
	}
	b.force = b.force.Add(force)
}

func (b *Body) ApplyTorque(torque float64, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && !b.isAwake {
		b.SetAwake(true)
	}
	if !b.isAwake {
		return
	}
	b.torque += torque
}

func (b *Body) ApplyLinearImpulse(impulse, point Vec2, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && !b.isAwake {
		b.SetAwake(true)
	}
	if !b.isAwake {
		return
	}
	b.linearVelocity = b.linearVelocity.Add(impulse.Scale(b.invMass))
	b.angularVelocity += b.invI * point.Sub(b.sweep.C).Cross(impulse)
}

func (b *Body) ApplyLinearImpulseToCenter(impulse Vec2, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && !b.isAwake {
		b.SetAwake(true)
	}
	if !b.isAwake {
		return
	}
	b.linearVelocity = b.linearVelocity.Add(impulse.Scale(b.invMass))
}

func (b *Body) ApplyAngularImpulse(impulse float64, wake bool) {
	if b.bodyType != DynamicBody {
		return
	}
	if wake && !b.isAwake {
		b.SetAwake(true)
	}
	if !b.isAwake {
		return
	}
	b.angularVelocity += b.invI * impulse
}

func (b *Body) GetMass() float64    { return b.mass }
func (b *Body) GetInertia() float64 { return b.i + b.mass*b.sweep.LocalCenter.Dot(b.sweep.LocalCenter) }

func (b *Body) GetMassData() MassData {
	return MassData{Mass: b.mass, Center: b.sweep.LocalCenter, I: b.GetInertia()}
}

// SetMassData overrides the mass computed from attached fixture densities —
// used when a caller wants an exact, hand-tuned mass distribution instead.
func (b *Body) SetMassData(data MassData) error {
	if b.world.IsLocked() {
		return newPrecondition("SetMassData: world is locked")
	}
	if b.bodyType != DynamicBody {
		return nil
	}

	b.invMass = 0
	b.i = 0
	b.invI = 0

	b.mass = data.Mass
	if b.mass <= 0.0 {
		b.mass = 1.0
	}
	b.invMass = 1.0 / b.mass

	if data.I > 0.0 && !b.fixedRotation {
		b.i = data.I - b.mass*data.Center.Dot(data.Center)
		b.invI = 1.0 / b.i
	}

	oldCenter := b.sweep.C
	b.sweep.LocalCenter = data.Center
	b.sweep.C = b.xf.MulVec2(b.sweep.LocalCenter)
	b.sweep.C0 = b.sweep.C

	b.linearVelocity = b.linearVelocity.Add(CrossScalarVec(b.angularVelocity, b.sweep.C.Sub(oldCenter)))
	return nil
}

// ResetMassData recomputes mass, center of mass, and rotational inertia from
// every attached fixture's density, the usual path (SetMassData is only for
// the rare hand-tuned override).
func (b *Body) ResetMassData() {
	b.mass = 0
	b.invMass = 0
	b.i = 0
	b.invI = 0
	b.sweep.LocalCenter = Vec2{}

	if b.bodyType == StaticBody || b.bodyType == KinematicBody {
		b.sweep.C0 = b.xf.P
		b.sweep.C = b.xf.P
		b.sweep.A0 = b.sweep.A
		return
	}

	localCenter := Vec2{}
	for _, f := range b.fixtures {
		if f.density == 0.0 {
			continue
		}
		massData := f.ComputeMass()
		b.mass += massData.Mass
		localCenter = localCenter.Add(massData.Center.Scale(massData.Mass))
		b.i += massData.I
	}

	if b.mass > 0.0 {
		b.invMass = 1.0 / b.mass
		localCenter = localCenter.Scale(b.invMass)
	} else {
		b.mass = 1.0
		b.invMass = 1.0
	}

	if b.i > 0.0 && !b.fixedRotation {
		b.i -= b.mass * localCenter.Dot(localCenter)
		b.invI = 1.0 / b.i
	} else {
		b.i = 0
		b.invI = 0
	}

	oldCenter := b.sweep.C
	b.sweep.LocalCenter = localCenter
	b.sweep.C = b.xf.MulVec2(b.sweep.LocalCenter)
	b.sweep.C0 = b.sweep.C

	b.linearVelocity = b.linearVelocity.Add(CrossScalarVec(b.angularVelocity, b.sweep.C.Sub(oldCenter)))
}

func (b *Body) GetWorldPoint(localPoint Vec2) Vec2   { return b.xf.MulVec2(localPoint) }
func (b *Body) GetWorldVector(localVector Vec2) Vec2 { return b.xf.Q.MulVec2(localVector) }
func (b *Body) GetLocalPoint(worldPoint Vec2) Vec2   { return b.xf.MulTVec2(worldPoint) }
func (b *Body) GetLocalVector(worldVector Vec2) Vec2 { return b.xf.Q.MulTVec2(worldVector) }

func (b *Body) GetLinearVelocityFromWorldPoint(worldPoint Vec2) Vec2 {
	return b.linearVelocity.Add(CrossScalarVec(b.angularVelocity, worldPoint.Sub(b.sweep.C)))
}

func (b *Body) GetLinearVelocityFromLocalPoint(localPoint Vec2) Vec2 {
	return b.GetLinearVelocityFromWorldPoint(b.GetWorldPoint(localPoint))
}

func (b *Body) LinearDamping() float64      { return b.linearDamping }
func (b *Body) SetLinearDamping(v float64)  { b.linearDamping = v }
func (b *Body) AngularDamping() float64     { return b.angularDamping }
func (b *Body) SetAngularDamping(v float64) { b.angularDamping = v }
func (b *Body) GravityScale() float64       { return b.gravityScale }
func (b *Body) SetGravityScale(v float64)   { b.gravityScale = v }

func (b *Body) IsBullet() bool     { return b.bullet }
func (b *Body) SetBullet(v bool)   { b.bullet = v }
func (b *Body) IsSleepingAllowed() bool { return b.autoSleep }

func (b *Body) SetSleepingAllowed(v bool) {
	b.autoSleep = v
	if !v {
		b.SetAwake(true)
	}
}

func (b *Body) IsAwake() bool { return b.isAwake }

// SetAwake toggles the body's awake flag. Waking a body resets its sleep
// timer; putting one to sleep zeroes its velocity so a stale velocity from
// before sleeping never leaks back in when it wakes.
func (b *Body) SetAwake(v bool) {
	if b.bodyType == StaticBody {
		return
	}
	if v {
		b.isAwake = true
		b.sleepTime = 0
	} else {
		b.isAwake = false
		b.sleepTime = 0
		b.linearVelocity = Vec2{}
		b.angularVelocity = 0
		b.force = Vec2{}
		b.torque = 0
	}
}

func (b *Body) IsActive() bool { return b.active }

// SetActive adds/removes the body's fixtures from the broad phase, letting a
// caller cheaply pause a subtree of the world. Fixtures and joints are kept;
// deactivating destroys every contact the body is part of.
func (b *Body) SetActive(v bool) error {
	if v == b.active {
		return nil
	}
	if b.world.IsLocked() {
		return newPrecondition("SetActive: world is locked")
	}
	b.active = v
	if v {
		for _, f := range b.fixtures {
			f.createProxies(b.world.broadPhase, b.xf)
		}
	} else {
		for _, f := range b.fixtures {
			f.destroyProxies(b.world.broadPhase)
		}
		for len(b.contacts) > 0 {
			b.world.contactManager.destroy(b.contacts[0].Contact)
		}
	}
	return nil
}

func (b *Body) IsFixedRotation() bool { return b.fixedRotation }

func (b *Body) SetFixedRotation(v bool) {
	if b.fixedRotation == v {
		return
	}
	b.fixedRotation = v
	b.angularVelocity = 0
	b.ResetMassData()
}

// ShouldCollide reports whether this body should ever generate contacts
// against other: false when they share a joint whose CollideConnected is
// false, matching the teacher's b2ContactManager filter check.
func (b *Body) ShouldCollide(other *Body) bool {
	for _, edge := range b.joints {
		if edge.Other == other && !edge.Joint.base().collideConnected {
			return false
		}
	}
	return true
}

func (b *Body) synchronizeFixtures() {
	xf1 := Transform{Q: NewRot(b.sweep.A0)}
	xf1.P = b.sweep.C0.Sub(xf1.Q.MulVec2(b.sweep.LocalCenter))
	for _, f := range b.fixtures {
		f.synchronize(b.world.broadPhase, xf1, b.xf)
	}
}

func (b *Body) synchronizeTransform() {
	b.xf.Q = NewRot(b.sweep.A)
	b.xf.P = b.sweep.C.Sub(b.xf.Q.MulVec2(b.sweep.LocalCenter))
}

// advance rewinds the body's current transform to sweep fraction alpha,
// used when a TOI event forces the island back to an earlier common time.
func (b *Body) advance(alpha float64) {
	b.sweep.C = b.sweep.C0.Scale(1 - alpha).Add(b.sweep.C.Scale(alpha))
	b.sweep.A = (1-alpha)*b.sweep.A0 + alpha*b.sweep.A
	b.sweep.Alpha0 = alpha
	b.synchronizeTransform()
}
