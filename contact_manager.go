package vela2d

// contactKey identifies a specific fixture-child pair in the contact's own
// A/B order (the order newContact settles on). addPair looks the pair up in
// both orders before creating a contact, so the same physical pair maps to a
// single map entry regardless of which proxy moved first.
type contactKey struct {
	fixtureA, fixtureB     *Fixture
	childIndexA, childIndexB int
}

// ContactManager owns the broad phase, the live contact set, and the two
// callback interfaces a game supplies: it turns broad-phase proxy overlaps
// into Contact objects, keeps their manifolds current, and destroys them
// when the fat AABBs stop overlapping.
type ContactManager struct {
	broadPhase *BroadPhase
	contacts   map[contactKey]*Contact

	filter   ContactFilter
	listener ContactListener
}

func newContactManager() *ContactManager {
	return &ContactManager{
		broadPhase: NewBroadPhase(),
		contacts:   make(map[contactKey]*Contact),
		filter:     DefaultContactFilter{},
		listener:   NopContactListener{},
	}
}

func (cm *ContactManager) addPair(proxyUserDataA, proxyUserDataB interface{}) {
	proxyA, ok := proxyUserDataA.(*FixtureProxy)
	if !ok {
		return
	}
	proxyB, ok := proxyUserDataB.(*FixtureProxy)
	if !ok {
		return
	}

	fixtureA, fixtureB := proxyA.Fixture, proxyB.Fixture
	bodyA, bodyB := fixtureA.body, fixtureB.body
	if bodyA == bodyB {
		return
	}

	key := contactKey{fixtureA, fixtureB, proxyA.ChildIndex, proxyB.ChildIndex}
	if _, exists := cm.contacts[key]; exists {
		return
	}
	swapped := contactKey{fixtureB, fixtureA, proxyB.ChildIndex, proxyA.ChildIndex}
	if _, exists := cm.contacts[swapped]; exists {
		return
	}

	if !bodyB.ShouldCollide(bodyA) {
		return
	}
	if cm.filter != nil && !cm.filter.ShouldCollide(fixtureA, fixtureB) {
		return
	}

	c := newContact(fixtureA, proxyA.ChildIndex, fixtureB, proxyB.ChildIndex)
	if c == nil {
		return
	}

	// The contact may have swapped which fixture is "A"; re-derive the key
	// from the contact itself so lookups during destroy/collide agree.
	realKey := contactKey{c.fixtureA, c.fixtureB, c.childIndexA, c.childIndexB}
	cm.contacts[realKey] = c

	edgeA := &ContactEdge{Other: bodyB, Contact: c}
	edgeB := &ContactEdge{Other: bodyA, Contact: c}
	bodyA.contacts = append(bodyA.contacts, edgeA)
	bodyB.contacts = append(bodyB.contacts, edgeB)
}

// findNewContacts drains the broad phase's pending move buffer into new
// candidate pairs and turns each into a Contact via addPair.
func (cm *ContactManager) findNewContacts() {
	pairs := cm.broadPhase.UpdatePairs()
	for _, pair := range pairs {
		cm.addPair(cm.broadPhase.GetUserData(pair.ProxyIDA), cm.broadPhase.GetUserData(pair.ProxyIDB))
	}
}

// collide re-evaluates every live contact: destroys the ones whose fat
// AABBs no longer overlap or whose filter was invalidated, and otherwise
// hands them to Contact.update for a fresh manifold and touch-state
// transition.
func (cm *ContactManager) collide() {
	for key, c := range cm.contacts {
		fixtureA, fixtureB := c.fixtureA, c.fixtureB
		bodyA, bodyB := fixtureA.body, fixtureB.body

		if c.flagFilter {
			if !bodyB.ShouldCollide(bodyA) || (cm.filter != nil && !cm.filter.ShouldCollide(fixtureA, fixtureB)) {
				cm.destroyKey(key, c)
				continue
			}
			c.flagFilter = false
		}

		if !bodyA.isAwake && !bodyB.isAwake {
			continue
		}

		proxyIDA := fixtureA.proxies[c.childIndexA].ProxyID
		proxyIDB := fixtureB.proxies[c.childIndexB].ProxyID
		if !cm.broadPhase.TestOverlap(proxyIDA, proxyIDB) {
			cm.destroyKey(key, c)
			continue
		}

		c.update(cm.listener)
	}
}

func (cm *ContactManager) destroy(c *Contact) {
	key := contactKey{c.fixtureA, c.fixtureB, c.childIndexA, c.childIndexB}
	cm.destroyKey(key, c)
}

func (cm *ContactManager) destroyKey(key contactKey, c *Contact) {
	if c.isTouching && !c.isSensor() {
		cm.listener.EndContact(c)
	}

	bodyA, bodyB := c.fixtureA.body, c.fixtureB.body
	bodyA.contacts = removeContactEdge(bodyA.contacts, c)
	bodyB.contacts = removeContactEdge(bodyB.contacts, c)

	delete(cm.contacts, key)
}

func removeContactEdge(edges []*ContactEdge, c *Contact) []*ContactEdge {
	for i, e := range edges {
		if e.Contact == c {
			return append(edges[:i], edges[i+1:]...)
		}
	}
	return edges
}
