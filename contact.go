package vela2d

import "math"

// ContactFilter decides whether a candidate contact should be created at
// all, layered in front of the plain Filter bitmask test so a game can veto
// specific fixture pairs (e.g. "these two sensors never interact") that the
// bitmask scheme can't express.
type ContactFilter interface {
	ShouldCollide(fixtureA, fixtureB *Fixture) bool
}

// DefaultContactFilter applies only the fixtures' Filter bitmasks/group
// indices.
type DefaultContactFilter struct{}

func (DefaultContactFilter) ShouldCollide(a, b *Fixture) bool {
	return shouldCollideFilter(a.filter, b.filter)
}

// ContactListener receives the touch-state transition and pre/post-solve
// notifications a game uses to trigger gameplay logic (damage, sound, score)
// off physical events.
type ContactListener interface {
	BeginContact(c *Contact)
	EndContact(c *Contact)
	PreSolve(c *Contact, oldManifold *Manifold)
	PostSolve(c *Contact, impulse *ContactImpulse)
}

// ContactImpulse reports the normal/tangent impulses the solver actually
// applied for each manifold point, delivered to ContactListener.PostSolve
// after the velocity constraints for a step have been solved.
type ContactImpulse struct {
	NormalImpulses  [MaxManifoldPoints]float64
	TangentImpulses [MaxManifoldPoints]float64
	Count           int
}

// NopContactListener implements ContactListener with no-ops, used as the
// default so World never needs a nil check before calling out.
type NopContactListener struct{}

func (NopContactListener) BeginContact(*Contact)                    {}
func (NopContactListener) EndContact(*Contact)                      {}
func (NopContactListener) PreSolve(*Contact, *Manifold)             {}
func (NopContactListener) PostSolve(*Contact, *ContactImpulse)      {}

// collideFn evaluates the narrow-phase manifold for a specific ordered pair
// of concrete shape kinds. The pair's canonical order is fixed at contact
// creation time (see contactRegistry) so a collideFn never needs to consider
// which side is which.
type collideFn func(shapeA Shape, xfA Transform, shapeB Shape, xfB Transform) Manifold

type shapePairKey struct{ a, b ShapeType }

var contactRegistry = map[shapePairKey]collideFn{
	{ShapeCircle, ShapeCircle}: func(a Shape, xfA Transform, b Shape, xfB Transform) Manifold {
		return CollideCircles(a.(*Circle), xfA, b.(*Circle), xfB)
	},
	{ShapePolygon, ShapeCircle}: func(a Shape, xfA Transform, b Shape, xfB Transform) Manifold {
		return CollidePolygonAndCircle(a.(*Polygon), xfA, b.(*Circle), xfB)
	},
	{ShapeEdge, ShapeCircle}: func(a Shape, xfA Transform, b Shape, xfB Transform) Manifold {
		return CollideEdgeAndCircle(a.(*Edge), xfA, b.(*Circle), xfB)
	},
	{ShapePolygon, ShapePolygon}: func(a Shape, xfA Transform, b Shape, xfB Transform) Manifold {
		return CollidePolygons(a.(*Polygon), xfA, b.(*Polygon), xfB)
	},
	{ShapeEdge, ShapePolygon}: func(a Shape, xfA Transform, b Shape, xfB Transform) Manifold {
		return CollideEdgeAndPolygon(a.(*Edge), xfA, b.(*Polygon), xfB)
	},
}

// baseShapeType collapses Chain to Edge for dispatch purposes: a Chain
// contact always operates on one materialized Edge child, never the chain
// as a whole.
func baseShapeType(s Shape) ShapeType {
	if s.Type() == ShapeChain {
		return ShapeEdge
	}
	return s.Type()
}

func resolveContactShape(s Shape, childIndex int) Shape {
	if chain, ok := s.(*Chain); ok {
		return chain.ChildEdge(childIndex)
	}
	return s
}

// Contact is one candidate collision between two fixture children, created
// by ContactManager when their broad-phase proxies first overlap and
// destroyed when they no longer do. It persists across steps so the solver
// can warm-start impulses and so ContactListener sees begin/end events
// rather than a fresh manifold every frame.
type Contact struct {
	fixtureA, fixtureB       *Fixture
	childIndexA, childIndexB int
	collide                  collideFn

	manifold Manifold

	friction             float64
	restitution          float64
	restitutionThreshold float64
	tangentSpeed         float64

	isTouching bool
	enabled    bool

	onIsland   bool
	toiFlag    bool
	flagFilter bool
	toiCount   int
	toi        float64
}

// newContact resolves which of the two candidate fixtures registers first in
// contactRegistry and, if necessary, swaps them so fixtureA/fixtureB and the
// stored collideFn always agree on orientation. Returns nil if no
// narrow-phase function is registered for the pair in either order; an edge
// or chain against another edge or chain is the one combination with no
// entry.
func newContact(fA *Fixture, iA int, fB *Fixture, iB int) *Contact {
	typeA := baseShapeType(fA.shape)
	typeB := baseShapeType(fB.shape)

	if fn, ok := contactRegistry[shapePairKey{typeA, typeB}]; ok {
		return buildContact(fA, iA, fB, iB, fn)
	}
	if fn, ok := contactRegistry[shapePairKey{typeB, typeA}]; ok {
		return buildContact(fB, iB, fA, iA, fn)
	}
	return nil
}

func buildContact(fA *Fixture, iA int, fB *Fixture, iB int, fn collideFn) *Contact {
	return &Contact{
		fixtureA:             fA,
		fixtureB:             fB,
		childIndexA:          iA,
		childIndexB:          iB,
		collide:              fn,
		enabled:              true,
		friction:             mixFriction(fA.friction, fB.friction),
		restitution:          mixRestitution(fA.restitution, fB.restitution),
		restitutionThreshold: mixRestitutionThreshold(fA.restitutionThreshold, fB.restitutionThreshold),
	}
}

func mixFriction(a, b float64) float64 {
	prod := a * b
	if prod < 0 {
		prod = 0
	}
	return math.Sqrt(prod)
}

func mixRestitution(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func mixRestitutionThreshold(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func (c *Contact) FixtureA() *Fixture { return c.fixtureA }
func (c *Contact) FixtureB() *Fixture { return c.fixtureB }
func (c *Contact) ChildIndexA() int   { return c.childIndexA }
func (c *Contact) ChildIndexB() int   { return c.childIndexB }

func (c *Contact) Manifold() *Manifold { return &c.manifold }

func (c *Contact) WorldManifold() WorldManifold {
	var wm WorldManifold
	bA, bB := c.fixtureA.body, c.fixtureB.body
	wm.Initialize(&c.manifold, bA.xf, c.fixtureA.shape.Radius(), bB.xf, c.fixtureB.shape.Radius())
	return wm
}

func (c *Contact) IsTouching() bool { return c.isTouching }

func (c *Contact) IsEnabled() bool     { return c.enabled }
func (c *Contact) SetEnabled(v bool)   { c.enabled = v }

func (c *Contact) Friction() float64     { return c.friction }
func (c *Contact) SetFriction(v float64) { c.friction = v }
func (c *Contact) ResetFriction()        { c.friction = mixFriction(c.fixtureA.friction, c.fixtureB.friction) }

func (c *Contact) Restitution() float64     { return c.restitution }
func (c *Contact) SetRestitution(v float64) { c.restitution = v }
func (c *Contact) ResetRestitution() {
	c.restitution = mixRestitution(c.fixtureA.restitution, c.fixtureB.restitution)
}

func (c *Contact) RestitutionThreshold() float64     { return c.restitutionThreshold }
func (c *Contact) SetRestitutionThreshold(v float64) { c.restitutionThreshold = v }

func (c *Contact) TangentSpeed() float64     { return c.tangentSpeed }
func (c *Contact) SetTangentSpeed(v float64) { c.tangentSpeed = v }

func (c *Contact) isSensor() bool { return c.fixtureA.isSensor || c.fixtureB.isSensor }

func (c *Contact) evaluate(xfA, xfB Transform) Manifold {
	shapeA := resolveContactShape(c.fixtureA.shape, c.childIndexA)
	shapeB := resolveContactShape(c.fixtureB.shape, c.childIndexB)
	return c.collide(shapeA, xfA, shapeB, xfB)
}

// update re-runs narrow-phase collision, carries warm-start impulses forward
// by matching ContactID keys between the old and new manifold, and fires the
// listener's Begin/End/PreSolve callbacks on the resulting touching-state
// transition. Sensors skip manifold generation entirely and use a plain GJK
// overlap test instead, since a sensor never needs contact points.
func (c *Contact) update(listener ContactListener) {
	oldManifold := c.manifold
	wasTouching := c.isTouching
	touching := false

	bA, bB := c.fixtureA.body, c.fixtureB.body

	if c.isSensor() {
		shapeA := resolveContactShape(c.fixtureA.shape, c.childIndexA)
		shapeB := resolveContactShape(c.fixtureB.shape, c.childIndexB)
		touching = TestOverlapShapes(shapeA, 0, shapeB, 0, bA.xf, bB.xf)
		c.manifold.PointCount = 0
	} else {
		c.manifold = c.evaluate(bA.xf, bB.xf)
		touching = c.manifold.PointCount > 0

		for i := 0; i < c.manifold.PointCount; i++ {
			mp := &c.manifold.Points[i]
			mp.NormalImpulse = 0
			mp.TangentImpulse = 0
			for j := 0; j < oldManifold.PointCount; j++ {
				if oldManifold.Points[j].Id.Key() == mp.Id.Key() {
					mp.NormalImpulse = oldManifold.Points[j].NormalImpulse
					mp.TangentImpulse = oldManifold.Points[j].TangentImpulse
					break
				}
			}
		}

		if touching != wasTouching {
			bA.SetAwake(true)
			bB.SetAwake(true)
		}
	}

	c.isTouching = touching

	if listener == nil {
		return
	}
	if !wasTouching && touching {
		listener.BeginContact(c)
	}
	if wasTouching && !touching {
		listener.EndContact(c)
	}
	if !c.isSensor() && touching {
		listener.PreSolve(c, &oldManifold)
	}
}

