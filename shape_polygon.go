package vela2d

// Polygon is a convex hull of at most MaxPolygonVertices vertices, wound
// counter-clockwise, with one outward unit normal cached per edge.
type Polygon struct {
	Centroid Vec2
	Vertices []Vec2
	Normals  []Vec2
	radius   float64
}

func NewPolygon() *Polygon {
	return &Polygon{radius: PolygonRadius}
}

func (p *Polygon) Type() ShapeType { return ShapePolygon }

func (p *Polygon) Radius() float64 { return p.radius }

func (p *Polygon) Clone() Shape {
	clone := &Polygon{
		Centroid: p.Centroid,
		Vertices: append([]Vec2(nil), p.Vertices...),
		Normals:  append([]Vec2(nil), p.Normals...),
		radius:   p.radius,
	}
	return clone
}

func (p *Polygon) ChildCount() int { return 1 }

// SetAsBox builds an axis-aligned box centered at the local origin.
func (p *Polygon) SetAsBox(hx, hy float64) {
	p.Vertices = []Vec2{{-hx, -hy}, {hx, -hy}, {hx, hy}, {-hx, hy}}
	p.Normals = []Vec2{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	p.Centroid = Vec2{0, 0}
}

// SetAsOrientedBox builds a box centered at center, rotated by angle.
func (p *Polygon) SetAsOrientedBox(hx, hy float64, center Vec2, angle float64) {
	p.Vertices = []Vec2{{-hx, -hy}, {hx, -hy}, {hx, hy}, {-hx, hy}}
	p.Normals = []Vec2{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}
	p.Centroid = center

	xf := Transform{P: center, Q: NewRot(angle)}
	for i := range p.Vertices {
		p.Vertices[i] = xf.MulVec2(p.Vertices[i])
		p.Normals[i] = xf.Q.MulVec2(p.Normals[i])
	}
}

// Set builds a strictly convex hull from an arbitrary point cloud: nearby
// points are welded (tolerance half a linear slop) and the surviving points
// are wrapped by an incremental gift-wrap (Jarvis march), matching the
// teacher's PolygonShape.Set and, transitively, upstream Box2D. Returns a
// PreconditionError if fewer than 3 distinct points remain, or if the hull
// degenerates to a zero-area shape.
func (p *Polygon) Set(points []Vec2) error {
	if len(points) < 3 {
		return newPrecondition("Polygon.Set: need at least 3 points, got %d", len(points))
	}
	n := len(points)
	if n > MaxPolygonVertices {
		n = MaxPolygonVertices
	}

	// Weld duplicate/near-duplicate points.
	const tolSqr = (0.5 * LinearSlop) * (0.5 * LinearSlop)
	welded := make([]Vec2, 0, n)
	for i := 0; i < n; i++ {
		v := points[i]
		unique := true
		for _, w := range welded {
			if v.DistanceSquaredTo(w) < tolSqr {
				unique = false
				break
			}
		}
		if unique {
			welded = append(welded, v)
		}
	}
	n = len(welded)
	if n < 3 {
		return newPrecondition("Polygon.Set: fewer than 3 unique points after welding (%d)", n)
	}

	// Find the rightmost point (tie-broken by lowest y) to seed the hull.
	i0 := 0
	x0 := welded[0].X
	for i := 1; i < n; i++ {
		x := welded[i].X
		if x > x0 || (x == x0 && welded[i].Y < welded[i0].Y) {
			i0 = i
			x0 = x
		}
	}

	hullIdx := make([]int, 0, MaxPolygonVertices)
	ih := i0
	for {
		hullIdx = append(hullIdx, ih)
		ie := 0
		for j := 1; j < n; j++ {
			if ie == ih {
				ie = j
				continue
			}
			r := welded[ie].Sub(welded[hullIdx[len(hullIdx)-1]])
			v := welded[j].Sub(welded[hullIdx[len(hullIdx)-1]])
			c := r.Cross(v)
			if c < 0.0 {
				ie = j
			}
			if c == 0.0 && v.LengthSquared() > r.LengthSquared() {
				ie = j
			}
		}
		ih = ie
		if ie == i0 || len(hullIdx) >= MaxPolygonVertices {
			break
		}
	}

	if len(hullIdx) < 3 {
		return newPrecondition("Polygon.Set: convex hull degenerated to %d vertices", len(hullIdx))
	}

	verts := make([]Vec2, len(hullIdx))
	for i, idx := range hullIdx {
		verts[i] = welded[idx]
	}

	normals := make([]Vec2, len(verts))
	for i := range verts {
		i2 := (i + 1) % len(verts)
		edge := verts[i2].Sub(verts[i])
		n, length := CrossVecScalar(edge, 1.0).Normalize()
		if length < Epsilon {
			return newPrecondition("Polygon.Set: degenerate edge at vertex %d", i)
		}
		normals[i] = n
	}

	p.Vertices = verts
	p.Normals = normals
	p.Centroid = computeCentroid(verts)
	return nil
}

func computeCentroid(vs []Vec2) Vec2 {
	c := Vec2{0, 0}
	area := 0.0
	origin := vs[0]
	const inv3 = 1.0 / 3.0
	for i := 1; i+1 < len(vs); i++ {
		e1 := vs[i].Sub(origin)
		e2 := vs[i+1].Sub(origin)
		d := e1.Cross(e2)
		triArea := 0.5 * d
		area += triArea
		c = c.Add(e1.Add(e2).Scale(triArea * inv3))
	}
	if area > Epsilon {
		c = c.Scale(1.0 / area)
	}
	return c.Add(origin)
}

func (p *Polygon) TestPoint(xf Transform, point Vec2) bool {
	local := xf.Q.MulTVec2(point.Sub(xf.P))
	for i := range p.Vertices {
		if p.Normals[i].Dot(local.Sub(p.Vertices[i])) > 0.0 {
			return false
		}
	}
	return true
}

func (p *Polygon) RayCast(input RayCastInput, xf Transform, childIndex int) (RayCastOutput, bool) {
	p1 := xf.Q.MulTVec2(input.P1.Sub(xf.P))
	p2 := xf.Q.MulTVec2(input.P2.Sub(xf.P))
	d := p2.Sub(p1)

	lower, upper := 0.0, input.MaxFraction
	index := -1

	for i := range p.Vertices {
		numerator := p.Normals[i].Dot(p.Vertices[i].Sub(p1))
		denominator := p.Normals[i].Dot(d)
		if denominator == 0.0 {
			if numerator < 0.0 {
				return RayCastOutput{}, false
			}
			continue
		}
		t := numerator / denominator
		if denominator < 0.0 && t > lower {
			lower = t
			index = i
		} else if denominator > 0.0 && t < upper {
			upper = t
		}
		if upper < lower {
			return RayCastOutput{}, false
		}
	}

	if index >= 0 {
		return RayCastOutput{Fraction: lower, Normal: xf.Q.MulVec2(p.Normals[index])}, true
	}
	return RayCastOutput{}, false
}

func (p *Polygon) ComputeAABB(xf Transform, childIndex int) AABB {
	lower := xf.MulVec2(p.Vertices[0])
	upper := lower
	for i := 1; i < len(p.Vertices); i++ {
		v := xf.MulVec2(p.Vertices[i])
		lower = Min(lower, v)
		upper = Max(upper, v)
	}
	r := Vec2{p.radius, p.radius}
	// Fixed relative to the teacher: the upper bound must be outset by +r,
	// not inset by -r, or the fattened AABB no longer contains the shape.
	return AABB{LowerBound: lower.Sub(r), UpperBound: upper.Add(r)}
}

func (p *Polygon) ComputeMass(density float64) MassData {
	center := Vec2{0, 0}
	area := 0.0
	I := 0.0
	origin := p.Vertices[0]
	const k_inv3 = 1.0 / 3.0

	for i := 1; i+1 < len(p.Vertices); i++ {
		e1 := p.Vertices[i].Sub(origin)
		e2 := p.Vertices[i+1].Sub(origin)

		d := e1.Cross(e2)
		triangleArea := 0.5 * d
		area += triangleArea
		center = center.Add(e1.Add(e2).Scale(triangleArea * k_inv3))

		ex1, ey1 := e1.X, e1.Y
		ex2, ey2 := e2.X, e2.Y
		intx2 := ex1*ex1 + ex2*ex1 + ex2*ex2
		inty2 := ey1*ey1 + ey2*ey1 + ey2*ey2
		I += (0.25 * k_inv3 * d) * (intx2 + inty2)
	}

	mass := density * area
	if area > Epsilon {
		center = center.Scale(1.0 / area)
	}
	trueCenter := center.Add(origin)

	I = density * I
	// Shift to the body origin, then to the shape's local origin.
	I += mass * (trueCenter.Dot(trueCenter) - center.Dot(center))

	return MassData{Mass: mass, Center: trueCenter, I: I}
}

// Validate reports whether the hull is strictly convex, CCW, and has
// positive area, matching the invariants spec.md §8 requires of every
// polygon in the simulation.
func (p *Polygon) Validate() error {
	n := len(p.Vertices)
	if n < 3 {
		return newPrecondition("Polygon.Validate: fewer than 3 vertices")
	}
	for i := 0; i < n; i++ {
		i1 := i
		i2 := 0
		if i+1 < n {
			i2 = i + 1
		}
		edge := p.Vertices[i2].Sub(p.Vertices[i1])
		if edge.LengthSquared() < Epsilon*Epsilon {
			return newPrecondition("Polygon.Validate: near-zero-length edge at %d", i)
		}
		for j := 0; j < n; j++ {
			if j == i1 || j == i2 {
				continue
			}
			r := p.Vertices[j].Sub(p.Vertices[i1])
			if r.Cross(edge) > 0.0 {
				return newPrecondition("Polygon.Validate: not convex/CCW at edge %d", i)
			}
		}
	}
	area := 0.0
	origin := p.Vertices[0]
	for i := 1; i+1 < n; i++ {
		e1 := p.Vertices[i].Sub(origin)
		e2 := p.Vertices[i+1].Sub(origin)
		area += 0.5 * e1.Cross(e2)
	}
	if area <= Epsilon {
		return newPrecondition("Polygon.Validate: non-positive area %v", area)
	}
	return nil
}
