package vela2d

// ShapeType identifies a concrete Shape implementation for dispatch (contact
// creation, chain child expansion) without a type switch at every call site.
type ShapeType uint8

const (
	ShapeCircle ShapeType = iota
	ShapeEdge
	ShapePolygon
	ShapeChain
	shapeTypeCount
)

// MassData is the mass, centroid and rotational inertia (about the local
// origin) of a shape at unit or given density.
type MassData struct {
	Mass   float64
	Center Vec2
	I      float64
}

// Shape is a piece of collision geometry attached to a Fixture. A shape may
// have more than one "child" (a Chain yields one child per edge segment);
// most operations therefore take a childIndex.
type Shape interface {
	Type() ShapeType
	Radius() float64
	Clone() Shape
	ChildCount() int
	TestPoint(xf Transform, p Vec2) bool
	RayCast(input RayCastInput, xf Transform, childIndex int) (RayCastOutput, bool)
	ComputeAABB(xf Transform, childIndex int) AABB
	ComputeMass(density float64) MassData
}

// RayCastInput is a ray segment from P1 to P2, clipped to MaxFraction of its
// length.
type RayCastInput struct {
	P1, P2      Vec2
	MaxFraction float64
}

// RayCastOutput is the result of a successful ray cast: the surface normal
// at the hit point and the fraction along P1->P2 where the hit occurred.
type RayCastOutput struct {
	Normal   Vec2
	Fraction float64
}
