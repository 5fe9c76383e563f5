package vela2d

// CollideCircles produces a Manifold for two overlapping circles.
func CollideCircles(circleA *Circle, xfA Transform, circleB *Circle, xfB Transform) Manifold {
	var m Manifold
	pA := xfA.MulVec2(circleA.P)
	pB := xfB.MulVec2(circleB.P)

	d := pB.Sub(pA)
	distSqr := d.Dot(d)
	radius := circleA.radius + circleB.radius
	if distSqr > radius*radius {
		return m
	}

	m.Type = ManifoldCircles
	m.LocalPoint = circleA.P
	m.PointCount = 1
	m.Points[0].LocalPoint = circleB.P
	m.Points[0].Id = ContactID{}
	return m
}

// CollidePolygonAndCircle produces a Manifold for a polygon against a
// circle, testing which Voronoi region of the polygon's closest edge the
// circle center falls into.
func CollidePolygonAndCircle(polygonA *Polygon, xfA Transform, circleB *Circle, xfB Transform) Manifold {
	var m Manifold

	c := xfB.MulVec2(circleB.P)
	cLocal := xfA.MulTVec2(c)

	normalIndex := 0
	separation := -MaxFloat
	radius := polygonA.radius + circleB.radius
	vertexCount := len(polygonA.Vertices)

	for i := 0; i < vertexCount; i++ {
		s := polygonA.Normals[i].Dot(cLocal.Sub(polygonA.Vertices[i]))
		if s > radius {
			return m
		}
		if s > separation {
			separation = s
			normalIndex = i
		}
	}

	v1 := polygonA.Vertices[normalIndex]
	v2 := polygonA.Vertices[(normalIndex+1)%vertexCount]

	if separation < Epsilon {
		m.Type = ManifoldFaceA
		m.LocalNormal = polygonA.Normals[normalIndex]
		m.LocalPoint = v1.Add(v2).Scale(0.5)
		m.Points[0].LocalPoint = circleB.P
		m.PointCount = 1
		return m
	}

	u1 := cLocal.Sub(v1).Dot(v2.Sub(v1))
	u2 := cLocal.Sub(v2).Dot(v1.Sub(v2))

	switch {
	case u1 <= 0.0:
		if cLocal.DistanceSquaredTo(v1) > radius*radius {
			return m
		}
		m.Type = ManifoldFaceA
		m.LocalNormal, _ = cLocal.Sub(v1).Normalize()
		m.LocalPoint = v1
	case u2 <= 0.0:
		if cLocal.DistanceSquaredTo(v2) > radius*radius {
			return m
		}
		m.Type = ManifoldFaceA
		m.LocalNormal, _ = cLocal.Sub(v2).Normalize()
		m.LocalPoint = v2
	default:
		faceCenter := v1.Add(v2).Scale(0.5)
		s := cLocal.Sub(faceCenter).Dot(polygonA.Normals[normalIndex])
		if s > radius {
			return m
		}
		m.Type = ManifoldFaceA
		m.LocalNormal = polygonA.Normals[normalIndex]
		m.LocalPoint = faceCenter
	}

	m.Points[0].LocalPoint = circleB.P
	m.PointCount = 1
	return m
}
