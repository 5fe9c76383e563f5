package vela2d

// Filter decides whether two fixtures are allowed to collide at all, before
// any shape test runs: two fixtures sharing a nonzero GroupIndex always
// collide (positive) or never collide (negative) regardless of the bitmasks;
// otherwise CategoryBits/MaskBits are tested against each other both ways.
type Filter struct {
	CategoryBits uint16
	MaskBits     uint16
	GroupIndex   int16
}

// DefaultFilter collides with everything and belongs to the default category.
func DefaultFilter() Filter {
	return Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF, GroupIndex: 0}
}

func shouldCollideFilter(a, b Filter) bool {
	if a.GroupIndex == b.GroupIndex && a.GroupIndex != 0 {
		return a.GroupIndex > 0
	}
	return (a.MaskBits&b.CategoryBits) != 0 && (a.CategoryBits&b.MaskBits) != 0
}

// FixtureDef describes a fixture to be attached to a body via
// Body.CreateFixture.
type FixtureDef struct {
	Shape                 Shape
	UserData              interface{}
	Friction              float64
	Restitution           float64
	RestitutionThreshold  float64
	Density               float64
	IsSensor              bool
	Filter                Filter
}

// DefaultFixtureDef returns a FixtureDef with the teacher's usual defaults:
// moderate friction, no restitution, zero density (the caller almost always
// wants a nonzero density, but zero is the safe default for a static body).
func DefaultFixtureDef() FixtureDef {
	return FixtureDef{
		Friction:             0.2,
		RestitutionThreshold: 1.0,
		Filter:               DefaultFilter(),
	}
}

// FixtureProxy is one child shape's entry in the broad-phase tree; a Polygon
// or Circle fixture has exactly one, a Chain fixture has one per segment.
type FixtureProxy struct {
	AABB       AABB
	Fixture    *Fixture
	ChildIndex int
	ProxyID    int
}

// Fixture binds a Shape to a Body with the material and filtering properties
// that make it participate in collision: density (for mass computation),
// friction/restitution (for the contact solver), and whether it is a sensor
// (reports overlap without generating a contact response).
type Fixture struct {
	body                 *Body
	shape                Shape
	density              float64
	friction             float64
	restitution          float64
	restitutionThreshold float64
	filter               Filter
	isSensor             bool
	userData             interface{}
	proxies              []FixtureProxy
}

func newFixture(body *Body, def FixtureDef) *Fixture {
	return &Fixture{
		body:                 body,
		shape:                def.Shape,
		density:              def.Density,
		friction:             def.Friction,
		restitution:          def.Restitution,
		restitutionThreshold: def.RestitutionThreshold,
		filter:               def.Filter,
		isSensor:             def.IsSensor,
		userData:             def.UserData,
	}
}

func (f *Fixture) Shape() Shape    { return f.shape }
func (f *Fixture) Body() *Body     { return f.body }
func (f *Fixture) IsSensor() bool  { return f.isSensor }
func (f *Fixture) SetSensor(v bool) { f.isSensor = v }

func (f *Fixture) Filter() Filter { return f.filter }

// SetFilterData replaces the collision filter and forces every existing
// contact touching this fixture to be re-evaluated on the next Collide pass,
// since a filter change can turn a colliding pair into a non-colliding one
// or vice versa.
func (f *Fixture) SetFilterData(filter Filter) {
	f.filter = filter
	if f.body == nil {
		return
	}
	for _, edge := range f.body.contacts {
		c := edge.Contact
		if c.fixtureA == f || c.fixtureB == f {
			c.flagFilter = true
		}
	}
}

func (f *Fixture) Friction() float64        { return f.friction }
func (f *Fixture) SetFriction(v float64)    { f.friction = v }
func (f *Fixture) Restitution() float64     { return f.restitution }
func (f *Fixture) SetRestitution(v float64) { f.restitution = v }

func (f *Fixture) RestitutionThreshold() float64     { return f.restitutionThreshold }
func (f *Fixture) SetRestitutionThreshold(v float64) { f.restitutionThreshold = v }

func (f *Fixture) Density() float64     { return f.density }
func (f *Fixture) SetDensity(v float64) { f.density = v }

func (f *Fixture) UserData() interface{}       { return f.userData }
func (f *Fixture) SetUserData(v interface{})   { f.userData = v }

func (f *Fixture) TestPoint(p Vec2) bool {
	return f.shape.TestPoint(f.body.xf, p)
}

func (f *Fixture) RayCast(input RayCastInput, childIndex int) (RayCastOutput, bool) {
	return f.shape.RayCast(input, f.body.xf, childIndex)
}

func (f *Fixture) ComputeMass() MassData {
	return f.shape.ComputeMass(f.density)
}

// GetAABB returns the tight (unfattened) AABB last computed for the given
// child, as stored in the broad-phase proxy.
func (f *Fixture) GetAABB(childIndex int) AABB {
	return f.proxies[childIndex].AABB
}

func (f *Fixture) createProxies(broadPhase *BroadPhase, xf Transform) {
	n := f.shape.ChildCount()
	f.proxies = make([]FixtureProxy, n)
	for i := 0; i < n; i++ {
		aabb := f.shape.ComputeAABB(xf, i)
		f.proxies[i] = FixtureProxy{AABB: aabb, Fixture: f, ChildIndex: i}
		f.proxies[i].ProxyID = broadPhase.CreateProxy(aabb, &f.proxies[i])
	}
}

func (f *Fixture) destroyProxies(broadPhase *BroadPhase) {
	for i := range f.proxies {
		broadPhase.DestroyProxy(f.proxies[i].ProxyID)
	}
	f.proxies = nil
}

// synchronize re-fits each proxy's AABB to the body's new transform, moving
// the broad-phase proxy (with a displacement hint so MoveProxy can bias the
// fattening in the direction of travel) whenever the tight AABB has escaped
// the existing fat one.
func (f *Fixture) synchronize(broadPhase *BroadPhase, xf1, xf2 Transform) {
	for i := range f.proxies {
		aabb1 := f.shape.ComputeAABB(xf1, f.proxies[i].ChildIndex)
		aabb2 := f.shape.ComputeAABB(xf2, f.proxies[i].ChildIndex)
		f.proxies[i].AABB = aabb2
		displacement := aabb2.Center().Sub(aabb1.Center())
		broadPhase.MoveProxy(f.proxies[i].ProxyID, aabb2, displacement)
	}
}
