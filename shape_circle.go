package vela2d

import "math"

// Circle is a solid disc of a given radius centered at a local point.
type Circle struct {
	P      Vec2
	radius float64
}

func NewCircle(center Vec2, radius float64) *Circle {
	return &Circle{P: center, radius: radius}
}

func (c *Circle) Type() ShapeType { return ShapeCircle }

func (c *Circle) Radius() float64 { return c.radius }

func (c *Circle) SetRadius(r float64) { c.radius = r }

func (c *Circle) Clone() Shape {
	clone := *c
	return &clone
}

func (c *Circle) ChildCount() int { return 1 }

func (c *Circle) TestPoint(xf Transform, p Vec2) bool {
	center := xf.P.Add(xf.Q.MulVec2(c.P))
	d := p.Sub(center)
	return d.Dot(d) <= c.radius*c.radius
}

// RayCast solves the ray-circle intersection per Ericson/van den Bergen
// section 3.1.2: x = s + a*r, |x| = radius.
func (c *Circle) RayCast(input RayCastInput, xf Transform, childIndex int) (RayCastOutput, bool) {
	position := xf.P.Add(xf.Q.MulVec2(c.P))
	s := input.P1.Sub(position)
	b := s.Dot(s) - c.radius*c.radius

	r := input.P2.Sub(input.P1)
	cc := s.Dot(r)
	rr := r.Dot(r)
	sigma := cc*cc - rr*b

	if sigma < 0.0 || rr < Epsilon {
		return RayCastOutput{}, false
	}

	a := -(cc + math.Sqrt(sigma))
	if 0.0 <= a && a <= input.MaxFraction*rr {
		a /= rr
		normal, _ := s.Add(r.Scale(a)).Normalize()
		return RayCastOutput{Fraction: a, Normal: normal}, true
	}
	return RayCastOutput{}, false
}

func (c *Circle) ComputeAABB(xf Transform, childIndex int) AABB {
	p := xf.P.Add(xf.Q.MulVec2(c.P))
	return AABB{
		LowerBound: Vec2{p.X - c.radius, p.Y - c.radius},
		UpperBound: Vec2{p.X + c.radius, p.Y + c.radius},
	}
}

func (c *Circle) ComputeMass(density float64) MassData {
	mass := density * Pi * c.radius * c.radius
	return MassData{
		Mass:   mass,
		Center: c.P,
		I:      mass * (0.5*c.radius*c.radius + c.P.Dot(c.P)),
	}
}
