package vela2d

import "math"

// CollideEdgeAndCircle produces a Manifold for an edge (with optional ghost
// vertices) against a circle. When the circle's closest point on the edge is
// one of the endpoints, the ghost vertices are consulted so a circle rolling
// across a chain of edges does not catch on the seam between them (the
// "smooth collision" ghost vertices exist for).
func CollideEdgeAndCircle(edgeA *Edge, xfA Transform, circleB *Circle, xfB Transform) Manifold {
	var m Manifold

	q := xfA.MulTVec2(xfB.MulVec2(circleB.P))

	a, b := edgeA.V1, edgeA.V2
	e := b.Sub(a)

	// Barycentric coordinates of q along the edge.
	u := e.Dot(b.Sub(q))
	v := e.Dot(q.Sub(a))

	radius := edgeA.radius + circleB.radius

	// Region A: q is beyond vertex a.
	if v <= 0.0 {
		p := a
		d := q.Sub(p)
		dd := d.Dot(d)
		if dd > radius*radius {
			return m
		}
		if edgeA.HasVertex0 {
			a1 := edgeA.V0
			b1 := a
			e1 := b1.Sub(a1)
			u1 := e1.Dot(b1.Sub(q))
			// A concave neighbor means q is in the ghost vertex's Voronoi
			// region, not this one — skip so the seam doesn't double-count.
			if u1 > 0.0 {
				return m
			}
		}
		m.Type = ManifoldCircles
		m.LocalPoint = p
		m.Points[0].LocalPoint = circleB.P
		m.PointCount = 1
		return m
	}

	// Region B: q is beyond vertex b.
	if u <= 0.0 {
		p := b
		d := q.Sub(p)
		dd := d.Dot(d)
		if dd > radius*radius {
			return m
		}
		if edgeA.HasVertex3 {
			b2 := edgeA.V3
			a2 := b
			e2 := b2.Sub(a2)
			v2 := e2.Dot(q.Sub(a2))
			if v2 > 0.0 {
				return m
			}
		}
		m.Type = ManifoldCircles
		m.LocalPoint = p
		m.Points[0].LocalPoint = circleB.P
		m.PointCount = 1
		return m
	}

	// Region AB: q projects onto the interior of the edge.
	den := e.Dot(e)
	p := a.Scale(u / den).Add(b.Scale(v / den))
	d := q.Sub(p)
	dd := d.Dot(d)
	if dd > radius*radius {
		return m
	}

	normal := Vec2{e.Y, -e.X}
	if normal.Dot(q.Sub(a)) < 0.0 {
		normal = normal.Neg()
	}
	normal, _ = normal.Normalize()

	m.Type = ManifoldFaceA
	m.LocalNormal = normal
	m.LocalPoint = a
	m.Points[0].LocalPoint = circleB.P
	m.PointCount = 1
	return m
}

// epAxisType distinguishes which shape contributed an edge collider's
// candidate separating axis.
type epAxisType uint8

const (
	epAxisUnknown epAxisType = iota
	epAxisEdgeA
	epAxisEdgeB
)

type epAxis struct {
	kind       epAxisType
	index      int
	separation float64
}

// tempPolygon holds polygonB's vertices/normals pre-transformed into edgeA's
// local frame, sized to MaxPolygonVertices so the collider never allocates.
type tempPolygon struct {
	vertices [MaxPolygonVertices]Vec2
	normals  [MaxPolygonVertices]Vec2
	count    int
}

// epCollider collides an edge against a polygon while taking the edge's
// ghost-vertex neighbors into account, following the Gauss-map
// classification a chain of edges needs so a shape sliding across the seam
// between two segments is not caught by a spurious internal-vertex normal.
// It classifies each of the edge's ghost neighbors as convex or reflex,
// derives a valid normal range [lowerLimit, upperLimit] from that
// classification, and then restricts CollidePolygons' usual "best
// separating axis" search on the polygon side to normals falling inside
// that range.
type epCollider struct {
	polygonB tempPolygon

	xf               Transform
	centroidB        Vec2
	v0, v1, v2, v3   Vec2
	normal0, normal1 Vec2
	normal2, normal  Vec2
	lowerLimit       Vec2
	upperLimit       Vec2
	radius           float64
	front            bool
}

// collide runs the algorithm: classify the edge's neighbors, pick a
// primary separating axis from either the edge normal or the polygon's own
// face normals (restricted to the valid range), then clip exactly like
// CollidePolygons.
func (c *epCollider) collide(edgeA *Edge, xfA Transform, polygonB *Polygon, xfB Transform) Manifold {
	var m Manifold

	c.xf = xfA.MulT(xfB)
	c.centroidB = c.xf.MulVec2(polygonB.Centroid)

	c.v0, c.v1, c.v2, c.v3 = edgeA.V0, edgeA.V1, edgeA.V2, edgeA.V3
	hasVertex0 := edgeA.HasVertex0
	hasVertex3 := edgeA.HasVertex3

	edge1, _ := c.v2.Sub(c.v1).Normalize()
	c.normal1 = Vec2{edge1.Y, -edge1.X}
	offset1 := c.normal1.Dot(c.centroidB.Sub(c.v1))
	offset0, offset2 := 0.0, 0.0
	convex1, convex2 := false, false

	if hasVertex0 {
		edge0, _ := c.v1.Sub(c.v0).Normalize()
		c.normal0 = Vec2{edge0.Y, -edge0.X}
		convex1 = edge0.Cross(edge1) >= 0.0
		offset0 = c.normal0.Dot(c.centroidB.Sub(c.v0))
	}

	if hasVertex3 {
		edge2, _ := c.v3.Sub(c.v2).Normalize()
		c.normal2 = Vec2{edge2.Y, -edge2.X}
		convex2 = edge1.Cross(edge2) > 0.0
		offset2 = c.normal2.Dot(c.centroidB.Sub(c.v2))
	}

	// Determine front/back collision and the valid normal range, one case
	// per combination of neighbor presence and convexity.
	switch {
	case hasVertex0 && hasVertex3:
		switch {
		case convex1 && convex2:
			c.front = offset0 >= 0.0 || offset1 >= 0.0 || offset2 >= 0.0
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1, c.normal0, c.normal2
			} else {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1.Neg(), c.normal1.Neg(), c.normal1.Neg()
			}
		case convex1:
			c.front = offset0 >= 0.0 || (offset1 >= 0.0 && offset2 >= 0.0)
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1, c.normal0, c.normal1
			} else {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1.Neg(), c.normal2.Neg(), c.normal1.Neg()
			}
		case convex2:
			c.front = offset2 >= 0.0 || (offset0 >= 0.0 && offset1 >= 0.0)
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1, c.normal1, c.normal2
			} else {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1.Neg(), c.normal1.Neg(), c.normal0.Neg()
			}
		default:
			c.front = offset0 >= 0.0 && offset1 >= 0.0 && offset2 >= 0.0
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1, c.normal1, c.normal1
			} else {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1.Neg(), c.normal2.Neg(), c.normal0.Neg()
			}
		}
	case hasVertex0:
		if convex1 {
			c.front = offset0 >= 0.0 || offset1 >= 0.0
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1, c.normal0, c.normal1.Neg()
			} else {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1.Neg(), c.normal1, c.normal1.Neg()
			}
		} else {
			c.front = offset0 >= 0.0 && offset1 >= 0.0
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1, c.normal1, c.normal1.Neg()
			} else {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1.Neg(), c.normal1, c.normal0.Neg()
			}
		}
	case hasVertex3:
		if convex2 {
			c.front = offset1 >= 0.0 || offset2 >= 0.0
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1, c.normal1.Neg(), c.normal2
			} else {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1.Neg(), c.normal1.Neg(), c.normal1
			}
		} else {
			c.front = offset1 >= 0.0 && offset2 >= 0.0
			if c.front {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1, c.normal1.Neg(), c.normal1
			} else {
				c.normal, c.lowerLimit, c.upperLimit = c.normal1.Neg(), c.normal2.Neg(), c.normal1
			}
		}
	default:
		c.front = offset1 >= 0.0
		if c.front {
			c.normal, c.lowerLimit, c.upperLimit = c.normal1, c.normal1.Neg(), c.normal1.Neg()
		} else {
			c.normal, c.lowerLimit, c.upperLimit = c.normal1.Neg(), c.normal1, c.normal1
		}
	}

	c.polygonB.count = len(polygonB.Vertices)
	for i, v := range polygonB.Vertices {
		c.polygonB.vertices[i] = c.xf.MulVec2(v)
		c.polygonB.normals[i] = c.xf.Q.MulVec2(polygonB.Normals[i])
	}
	c.radius = polygonB.radius + edgeA.radius

	edgeAxis := c.computeEdgeSeparation()
	if edgeAxis.kind == epAxisUnknown || edgeAxis.separation > c.radius {
		return m
	}

	polygonAxis := c.computePolygonSeparation()
	if polygonAxis.kind != epAxisUnknown && polygonAxis.separation > c.radius {
		return m
	}

	// Hysteresis: prefer the edge axis unless the polygon axis is
	// meaningfully deeper, so a resting contact doesn't jitter between the
	// two reference faces frame to frame.
	const relativeTol = 0.98
	const absoluteTol = 0.001

	primary := edgeAxis
	if polygonAxis.kind != epAxisUnknown && polygonAxis.separation > relativeTol*edgeAxis.separation+absoluteTol {
		primary = polygonAxis
	}

	var ie [2]ClipVertex
	var rf struct {
		i1, i2      int
		v1, v2      Vec2
		normal      Vec2
		sideNormal1 Vec2
		sideOffset1 float64
		sideNormal2 Vec2
		sideOffset2 float64
	}

	if primary.kind == epAxisEdgeA {
		m.Type = ManifoldFaceA

		bestIndex := 0
		bestValue := c.normal.Dot(c.polygonB.normals[0])
		for i := 1; i < c.polygonB.count; i++ {
			value := c.normal.Dot(c.polygonB.normals[i])
			if value < bestValue {
				bestValue = value
				bestIndex = i
			}
		}

		i1 := bestIndex
		i2 := 0
		if i1+1 < c.polygonB.count {
			i2 = i1 + 1
		}

		ie[0] = ClipVertex{V: c.polygonB.vertices[i1], Id: ContactID{IndexA: 0, IndexB: uint8(i1), TypeA: FeatureFace, TypeB: FeatureVertex}}
		ie[1] = ClipVertex{V: c.polygonB.vertices[i2], Id: ContactID{IndexA: 0, IndexB: uint8(i2), TypeA: FeatureFace, TypeB: FeatureVertex}}

		if c.front {
			rf.i1, rf.i2 = 0, 1
			rf.v1, rf.v2 = c.v1, c.v2
			rf.normal = c.normal1
		} else {
			rf.i1, rf.i2 = 1, 0
			rf.v1, rf.v2 = c.v2, c.v1
			rf.normal = c.normal1.Neg()
		}
	} else {
		m.Type = ManifoldFaceB

		ie[0] = ClipVertex{V: c.v1, Id: ContactID{IndexA: 0, IndexB: uint8(primary.index), TypeA: FeatureVertex, TypeB: FeatureFace}}
		ie[1] = ClipVertex{V: c.v2, Id: ContactID{IndexA: 0, IndexB: uint8(primary.index), TypeA: FeatureVertex, TypeB: FeatureFace}}

		rf.i1 = primary.index
		if rf.i1+1 < c.polygonB.count {
			rf.i2 = rf.i1 + 1
		} else {
			rf.i2 = 0
		}
		rf.v1 = c.polygonB.vertices[rf.i1]
		rf.v2 = c.polygonB.vertices[rf.i2]
		rf.normal = c.polygonB.normals[rf.i1]
	}

	rf.sideNormal1 = Vec2{rf.normal.Y, -rf.normal.X}
	rf.sideNormal2 = rf.sideNormal1.Neg()
	rf.sideOffset1 = rf.sideNormal1.Dot(rf.v1)
	rf.sideOffset2 = rf.sideNormal2.Dot(rf.v2)

	clip1, np := ClipSegmentToLine(ie, rf.sideNormal1, rf.sideOffset1, uint8(rf.i1))
	if np < MaxManifoldPoints {
		return m
	}
	clip2, np := ClipSegmentToLine(clip1, rf.sideNormal2, rf.sideOffset2, uint8(rf.i2))
	if np < MaxManifoldPoints {
		return m
	}

	if primary.kind == epAxisEdgeA {
		m.LocalNormal = rf.normal
		m.LocalPoint = rf.v1
	} else {
		m.LocalNormal = polygonB.Normals[rf.i1]
		m.LocalPoint = polygonB.Vertices[rf.i1]
	}

	pointCount := 0
	for i := 0; i < MaxManifoldPoints; i++ {
		separation := rf.normal.Dot(clip2[i].V.Sub(rf.v1))
		if separation > c.radius {
			continue
		}
		cp := &m.Points[pointCount]
		if primary.kind == epAxisEdgeA {
			cp.LocalPoint = c.xf.MulTVec2(clip2[i].V)
			cp.Id = clip2[i].Id
		} else {
			cp.LocalPoint = clip2[i].V
			cp.Id = ContactID{
				IndexA: clip2[i].Id.IndexB, IndexB: clip2[i].Id.IndexA,
				TypeA: clip2[i].Id.TypeB, TypeB: clip2[i].Id.TypeA,
			}
		}
		pointCount++
	}
	m.PointCount = pointCount
	return m
}

func (c *epCollider) computeEdgeSeparation() epAxis {
	axis := epAxis{kind: epAxisEdgeA, separation: MaxFloat}
	if c.front {
		axis.index = 0
	} else {
		axis.index = 1
	}

	for i := 0; i < c.polygonB.count; i++ {
		s := c.normal.Dot(c.polygonB.vertices[i].Sub(c.v1))
		if s < axis.separation {
			axis.separation = s
		}
	}
	return axis
}

func (c *epCollider) computePolygonSeparation() epAxis {
	axis := epAxis{kind: epAxisUnknown, index: -1, separation: -MaxFloat}

	perp := Vec2{-c.normal.Y, c.normal.X}

	for i := 0; i < c.polygonB.count; i++ {
		n := c.polygonB.normals[i].Neg()

		s1 := n.Dot(c.polygonB.vertices[i].Sub(c.v1))
		s2 := n.Dot(c.polygonB.vertices[i].Sub(c.v2))
		s := math.Min(s1, s2)

		if s > c.radius {
			return epAxis{kind: epAxisEdgeB, index: i, separation: s}
		}

		// Restrict to the valid normal range derived from the edge's ghost
		// vertices, so an internal chain vertex never wins as the axis.
		if n.Dot(perp) >= 0.0 {
			if n.Sub(c.upperLimit).Dot(c.normal) < -AngularSlop {
				continue
			}
		} else {
			if n.Sub(c.lowerLimit).Dot(c.normal) < -AngularSlop {
				continue
			}
		}

		if s > axis.separation {
			axis = epAxis{kind: epAxisEdgeB, index: i, separation: s}
		}
	}
	return axis
}

// CollideEdgeAndPolygon produces a Manifold for an edge (or one segment of a
// Chain) against a polygon, taking the edge's ghost vertices into account so
// a shape sliding across a multi-segment Chain does not snag on the seam
// between adjacent edges. When edgeA.OneSided is set, a polygon approaching
// from the back face (centroid on the negative side of the edge normal) is
// not considered touching at all — this is what lets a one-way platform
// edge be walked through from below.
func CollideEdgeAndPolygon(edgeA *Edge, xfA Transform, polygonB *Polygon, xfB Transform) Manifold {
	if edgeA.OneSided {
		xf := xfA.MulT(xfB)
		v1, v2 := edgeA.V1, edgeA.V2
		edgeVec, _ := v2.Sub(v1).Normalize()
		normal := CrossVecScalar(edgeVec, 1.0)
		centroidB := xf.MulVec2(polygonB.Centroid)
		if normal.Dot(centroidB.Sub(v1)) < 0.0 {
			return Manifold{}
		}
	}

	c := &epCollider{}
	return c.collide(edgeA, xfA, polygonB, xfB)
}
