package vela2d

// findMaxSeparation returns the maximum, over poly1's edge normals, of the
// minimum penetration of poly2's vertices along that normal — i.e. the best
// separating axis poly1 can offer.
func findMaxSeparation(poly1 *Polygon, xf1 Transform, poly2 *Polygon, xf2 Transform) (float64, int) {
	xf := xf2.MulT(xf1)

	bestIndex := 0
	maxSeparation := -MaxFloat
	for i := range poly1.Vertices {
		n := xf.Q.MulVec2(poly1.Normals[i])
		v1 := xf.MulVec2(poly1.Vertices[i])

		si := MaxFloat
		for j := range poly2.Vertices {
			sij := n.Dot(poly2.Vertices[j].Sub(v1))
			if sij < si {
				si = sij
			}
		}
		if si > maxSeparation {
			maxSeparation = si
			bestIndex = i
		}
	}
	return maxSeparation, bestIndex
}

func findIncidentEdge(poly1 *Polygon, xf1 Transform, edge1 int, poly2 *Polygon, xf2 Transform) [2]ClipVertex {
	normal1 := xf2.Q.MulTVec2(xf1.Q.MulVec2(poly1.Normals[edge1]))

	index := 0
	minDot := MaxFloat
	for i, n := range poly2.Normals {
		dot := normal1.Dot(n)
		if dot < minDot {
			minDot = dot
			index = i
		}
	}

	i1 := index
	i2 := (i1 + 1) % len(poly2.Vertices)

	var c [2]ClipVertex
	c[0].V = xf2.MulVec2(poly2.Vertices[i1])
	c[0].Id = ContactID{IndexA: uint8(edge1), IndexB: uint8(i1), TypeA: FeatureFace, TypeB: FeatureVertex}
	c[1].V = xf2.MulVec2(poly2.Vertices[i2])
	c[1].Id = ContactID{IndexA: uint8(edge1), IndexB: uint8(i2), TypeA: FeatureFace, TypeB: FeatureVertex}
	return c
}

// CollidePolygons finds a separating axis from each polygon's own edge
// normals, picks the deeper one as the reference face, clips the incident
// polygon's nearest edge against the reference edge's side planes, and
// keeps whatever survives within the combined skin radius. The normal
// always points from polyA to polyB.
func CollidePolygons(polyA *Polygon, xfA Transform, polyB *Polygon, xfB Transform) Manifold {
	var m Manifold
	totalRadius := polyA.radius + polyB.radius

	separationA, edgeA := findMaxSeparation(polyA, xfA, polyB, xfB)
	if separationA > totalRadius {
		return m
	}

	separationB, edgeB := findMaxSeparation(polyB, xfB, polyA, xfA)
	if separationB > totalRadius {
		return m
	}

	var poly1, poly2 *Polygon
	var xf1, xf2 Transform
	var edge1 int
	var flip bool

	const tol = 0.1 * LinearSlop
	if separationB > separationA+tol {
		poly1, poly2 = polyB, polyA
		xf1, xf2 = xfB, xfA
		edge1 = edgeB
		m.Type = ManifoldFaceB
		flip = true
	} else {
		poly1, poly2 = polyA, polyB
		xf1, xf2 = xfA, xfB
		edge1 = edgeA
		m.Type = ManifoldFaceA
		flip = false
	}

	incidentEdge := findIncidentEdge(poly1, xf1, edge1, poly2, xf2)

	count1 := len(poly1.Vertices)
	iv1 := edge1
	iv2 := (edge1 + 1) % count1

	v11 := poly1.Vertices[iv1]
	v12 := poly1.Vertices[iv2]

	localTangent, _ := v12.Sub(v11).Normalize()
	localNormal := CrossVecScalar(localTangent, 1.0)
	planePoint := v11.Add(v12).Scale(0.5)

	tangent := xf1.Q.MulVec2(localTangent)
	normal := CrossVecScalar(tangent, 1.0)

	v11 = xf1.MulVec2(v11)
	v12 = xf1.MulVec2(v12)

	frontOffset := normal.Dot(v11)
	sideOffset1 := -tangent.Dot(v11) + totalRadius
	sideOffset2 := tangent.Dot(v12) + totalRadius

	clip1, np := ClipSegmentToLine(incidentEdge, tangent.Neg(), sideOffset1, uint8(iv1))
	if np < 2 {
		return m
	}
	clip2, np := ClipSegmentToLine(clip1, tangent, sideOffset2, uint8(iv2))
	if np < 2 {
		return m
	}

	m.LocalNormal = localNormal
	m.LocalPoint = planePoint

	pointCount := 0
	for i := 0; i < MaxManifoldPoints; i++ {
		separation := normal.Dot(clip2[i].V) - frontOffset
		if separation <= totalRadius {
			cp := &m.Points[pointCount]
			cp.LocalPoint = xf2.MulTVec2(clip2[i].V)
			cp.Id = clip2[i].Id
			if flip {
				cp.Id.IndexA, cp.Id.IndexB = cp.Id.IndexB, cp.Id.IndexA
				cp.Id.TypeA, cp.Id.TypeB = cp.Id.TypeB, cp.Id.TypeA
			}
			pointCount++
		}
	}
	m.PointCount = pointCount
	return m
}
