package vela2d

// Edge is a single line segment, optionally chained to neighbors via ghost
// vertices for smooth collision, and optionally OneSided so that a polygon
// approaching from the back face passes through instead of colliding — the
// rule a chain-of-edges "ground" shape needs to let bodies fall through a
// platform from below but rest on top of it.
type Edge struct {
	V1, V2         Vec2
	V0, V3         Vec2
	HasVertex0     bool
	HasVertex3     bool
	OneSided       bool
	radius         float64
}

func NewEdge(v1, v2 Vec2) *Edge {
	return &Edge{V1: v1, V2: v2, radius: PolygonRadius}
}

func (e *Edge) Type() ShapeType { return ShapeEdge }

func (e *Edge) Radius() float64 { return e.radius }

func (e *Edge) Clone() Shape {
	clone := *e
	return &clone
}

func (e *Edge) ChildCount() int { return 1 }

// TestPoint always returns false: an edge has zero area and cannot contain a
// point, matching the teacher.
func (e *Edge) TestPoint(xf Transform, p Vec2) bool { return false }

func (e *Edge) RayCast(input RayCastInput, xf Transform, childIndex int) (RayCastOutput, bool) {
	// Ray in the edge's local frame.
	p1 := xf.Q.MulTVec2(input.P1.Sub(xf.P))
	p2 := xf.Q.MulTVec2(input.P2.Sub(xf.P))
	d := p2.Sub(p1)

	v1, v2 := e.V1, e.V2
	edgeVec := v2.Sub(v1)
	normal, _ := Vec2{edgeVec.Y, -edgeVec.X}.Normalize()

	numerator := normal.Dot(v1.Sub(p1))
	denominator := normal.Dot(d)
	if denominator == 0.0 {
		return RayCastOutput{}, false
	}

	t := numerator / denominator
	if t < 0.0 || input.MaxFraction < t {
		return RayCastOutput{}, false
	}

	q := p1.Add(d.Scale(t))

	r := v2.Sub(v1)
	rr := r.Dot(r)
	if rr == 0.0 {
		return RayCastOutput{}, false
	}
	s := q.Sub(v1).Dot(r) / rr
	if s < 0.0 || 1.0 < s {
		return RayCastOutput{}, false
	}

	out := RayCastOutput{Fraction: t}
	if numerator > 0.0 {
		out.Normal = xf.Q.MulVec2(normal).Neg()
	} else {
		out.Normal = xf.Q.MulVec2(normal)
	}
	return out, true
}

func (e *Edge) ComputeAABB(xf Transform, childIndex int) AABB {
	v1 := xf.MulVec2(e.V1)
	v2 := xf.MulVec2(e.V2)
	lower := Min(v1, v2)
	upper := Max(v1, v2)
	r := Vec2{e.radius, e.radius}
	return AABB{LowerBound: lower.Sub(r), UpperBound: upper.Add(r)}
}

func (e *Edge) ComputeMass(density float64) MassData {
	return MassData{Mass: 0, Center: e.V1.Add(e.V2).Scale(0.5), I: 0}
}
