package vela2d

// DistanceProxy is a convex hull view over one child of a Shape, used by GJK.
// A circle proxies to a single vertex with a positive radius; a polygon
// proxies to all of its vertices with its skin radius.
type DistanceProxy struct {
	Vertices []Vec2
	Radius   float64
}

// MakeShapeProxy builds a DistanceProxy for the given child of shape.
func MakeShapeProxy(shape Shape, childIndex int) DistanceProxy {
	switch s := shape.(type) {
	case *Circle:
		return DistanceProxy{Vertices: []Vec2{s.P}, Radius: s.radius}
	case *Polygon:
		return DistanceProxy{Vertices: s.Vertices, Radius: s.radius}
	case *Edge:
		return DistanceProxy{Vertices: []Vec2{s.V1, s.V2}, Radius: s.radius}
	case *Chain:
		e := s.ChildEdge(childIndex)
		return DistanceProxy{Vertices: []Vec2{e.V1, e.V2}, Radius: e.radius}
	default:
		return DistanceProxy{}
	}
}

// SupportPoint returns the index of the vertex furthest in direction d.
func (p DistanceProxy) SupportPoint(d Vec2) int {
	best := 0
	bestValue := p.Vertices[0].Dot(d)
	for i := 1; i < len(p.Vertices); i++ {
		v := p.Vertices[i].Dot(d)
		if v > bestValue {
			best = i
			bestValue = v
		}
	}
	return best
}

func (p DistanceProxy) Vertex(i int) Vec2 { return p.Vertices[i] }

// SimplexCache lets Distance warm-start from the previous frame's simplex
// instead of re-searching from scratch.
type SimplexCache struct {
	Metric        float64
	Count         int
	IndexA, IndexB [3]uint8
}

type simplexVertex struct {
	wA, wB Vec2
	w      Vec2
	a      float64
	indexA, indexB int
}

type simplex struct {
	v          [3]simplexVertex
	count      int
}

func (s *simplex) readCache(cache *SimplexCache, proxyA, proxyB DistanceProxy, xfA, xfB Transform) {
	s.count = cache.Count
	for i := 0; i < s.count; i++ {
		v := &s.v[i]
		v.indexA = int(cache.IndexA[i])
		v.indexB = int(cache.IndexB[i])
		wALocal := proxyA.Vertex(v.indexA)
		wBLocal := proxyB.Vertex(v.indexB)
		v.wA = xfA.MulVec2(wALocal)
		v.wB = xfB.MulVec2(wBLocal)
		v.w = v.wB.Sub(v.wA)
		v.a = -1.0
	}

	if s.count == 0 {
		v := &s.v[0]
		v.indexA, v.indexB = 0, 0
		wALocal := proxyA.Vertex(0)
		wBLocal := proxyB.Vertex(0)
		v.wA = xfA.MulVec2(wALocal)
		v.wB = xfB.MulVec2(wBLocal)
		v.w = v.wB.Sub(v.wA)
		v.a = 1.0
		s.count = 1
	}
}

func (s *simplex) writeCache(cache *SimplexCache) {
	cache.Count = s.count
	for i := 0; i < s.count; i++ {
		cache.IndexA[i] = uint8(s.v[i].indexA)
		cache.IndexB[i] = uint8(s.v[i].indexB)
	}
}

func (s *simplex) searchDirection() Vec2 {
	switch s.count {
	case 1:
		return s.v[0].w.Neg()
	case 2:
		e12 := s.v[1].w.Sub(s.v[0].w)
		sgn := e12.Cross(s.v[0].w.Neg())
		if sgn > 0.0 {
			return CrossScalarVec(1.0, e12)
		}
		return CrossVecScalar(e12, 1.0)
	default:
		return Vec2{}
	}
}

func (s *simplex) closestPoint() Vec2 {
	switch s.count {
	case 1:
		return s.v[0].w
	case 2:
		return s.v[0].w.Scale(s.v[0].a).Add(s.v[1].w.Scale(s.v[1].a))
	default:
		return Vec2{}
	}
}

func (s *simplex) witnessPoints() (pA, pB Vec2) {
	switch s.count {
	case 1:
		return s.v[0].wA, s.v[0].wB
	case 2:
		pA = s.v[0].wA.Scale(s.v[0].a).Add(s.v[1].wA.Scale(s.v[1].a))
		pB = s.v[0].wB.Scale(s.v[0].a).Add(s.v[1].wB.Scale(s.v[1].a))
		return
	case 3:
		pA = s.v[0].wA.Scale(s.v[0].a).Add(s.v[1].wA.Scale(s.v[1].a)).Add(s.v[2].wA.Scale(s.v[2].a))
		return pA, pA
	default:
		return
	}
}

// solve2 finds the barycentric coordinates of the closest point on segment
// v0v1 to the origin, discarding a vertex if the closest point is a corner.
func (s *simplex) solve2() {
	w1 := s.v[0].w
	w2 := s.v[1].w
	e12 := w2.Sub(w1)

	d12_2 := -w1.Dot(e12)
	if d12_2 <= 0.0 {
		s.v[0].a = 1.0
		s.count = 1
		return
	}

	d12_1 := w2.Dot(e12)
	if d12_1 <= 0.0 {
		s.v[1].a = 1.0
		s.count = 1
		s.v[0] = s.v[1]
		return
	}

	inv := 1.0 / (d12_1 + d12_2)
	s.v[0].a = d12_1 * inv
	s.v[1].a = d12_2 * inv
	s.count = 2
}

// solve3 finds the barycentric coordinates of the closest point on triangle
// v0v1v2 to the origin using the Voronoi region tests from Ericson's
// "Real-Time Collision Detection" 5.1.5.
func (s *simplex) solve3() {
	w1, w2, w3 := s.v[0].w, s.v[1].w, s.v[2].w

	e12 := w2.Sub(w1)
	w1e12 := w1.Dot(e12)
	w2e12 := w2.Dot(e12)
	d12_1 := w2e12
	d12_2 := -w1e12

	e13 := w3.Sub(w1)
	w1e13 := w1.Dot(e13)
	w3e13 := w3.Dot(e13)
	d13_1 := w3e13
	d13_2 := -w1e13

	e23 := w3.Sub(w2)
	w2e23 := w2.Dot(e23)
	w3e23 := w3.Dot(e23)
	d23_1 := w3e23
	d23_2 := -w2e23

	n123 := e12.Cross(e13)

	d123_1 := n123 * w2.Cross(w3)
	d123_2 := n123 * w3.Cross(w1)
	d123_3 := n123 * w1.Cross(w2)

	if d12_2 <= 0.0 && d13_2 <= 0.0 {
		s.v[0].a = 1.0
		s.count = 1
		return
	}

	if d12_1 > 0.0 && d12_2 > 0.0 && d123_3 <= 0.0 {
		inv := 1.0 / (d12_1 + d12_2)
		s.v[0].a = d12_1 * inv
		s.v[1].a = d12_2 * inv
		s.count = 2
		return
	}

	if d13_1 > 0.0 && d13_2 > 0.0 && d123_2 <= 0.0 {
		inv := 1.0 / (d13_1 + d13_2)
		s.v[0].a = d13_1 * inv
		s.v[2].a = d13_2 * inv
		s.count = 2
		s.v[1] = s.v[2]
		return
	}

	if d12_1 <= 0.0 && d23_2 <= 0.0 {
		s.v[1].a = 1.0
		s.count = 1
		s.v[0] = s.v[1]
		return
	}

	if d13_1 <= 0.0 && d23_1 <= 0.0 {
		s.v[2].a = 1.0
		s.count = 1
		s.v[0] = s.v[2]
		return
	}

	if d23_1 > 0.0 && d23_2 > 0.0 && d123_1 <= 0.0 {
		inv := 1.0 / (d23_1 + d23_2)
		s.v[1].a = d23_1 * inv
		s.v[2].a = d23_2 * inv
		s.count = 2
		s.v[0] = s.v[2]
		return
	}

	inv := 1.0 / (d123_1 + d123_2 + d123_3)
	s.v[0].a = d123_1 * inv
	s.v[1].a = d123_2 * inv
	s.v[2].a = d123_3 * inv
	s.count = 3
}

// DistanceInput bundles the two proxies, their transforms, and whether the
// shapes' skin radii should be subtracted from the reported distance.
type DistanceInput struct {
	ProxyA, ProxyB       DistanceProxy
	TransformA, TransformB Transform
	UseRadii             bool
}

// DistanceOutput is the closest points on each proxy and the distance
// between them (after radius correction, if requested).
type DistanceOutput struct {
	PointA, PointB Vec2
	Distance       float64
	Iterations     int
}

// Distance runs GJK to find the closest points between two convex proxies.
// A degenerate case (repeated support point, indicating the simplex has
// cycled) terminates early with the current best estimate rather than
// looping — the "recovered in place" numeric failure mode spec.md §7
// describes.
func Distance(cache *SimplexCache, input DistanceInput) DistanceOutput {
	proxyA := input.ProxyA
	proxyB := input.ProxyB
	xfA := input.TransformA
	xfB := input.TransformB

	var s simplex
	s.readCache(cache, proxyA, proxyB, xfA, xfB)

	const maxIters = MaxGJKIterations

	saveA := [3]int{}
	saveB := [3]int{}
	saveCount := 0

	iter := 0
	for iter < maxIters {
		saveCount = s.count
		for i := 0; i < saveCount; i++ {
			saveA[i] = s.v[i].indexA
			saveB[i] = s.v[i].indexB
		}

		switch s.count {
		case 1:
		case 2:
			s.solve2()
		case 3:
			s.solve3()
		}

		if s.count == 3 {
			break
		}

		d := s.searchDirection()
		if d.LengthSquared() < Epsilon*Epsilon {
			break
		}

		vertex := &s.v[s.count]
		vertex.indexA = proxyA.SupportPoint(xfA.Q.MulTVec2(d.Neg()))
		vertex.wA = xfA.MulVec2(proxyA.Vertex(vertex.indexA))
		vertex.indexB = proxyB.SupportPoint(xfB.Q.MulTVec2(d))
		vertex.wB = xfB.MulVec2(proxyB.Vertex(vertex.indexB))
		vertex.w = vertex.wB.Sub(vertex.wA)

		iter++

		duplicate := false
		for i := 0; i < saveCount; i++ {
			if vertex.indexA == saveA[i] && vertex.indexB == saveB[i] {
				duplicate = true
				break
			}
		}
		if duplicate {
			break
		}

		s.count++
	}

	pA, pB := s.witnessPoints()
	output := DistanceOutput{PointA: pA, PointB: pB, Distance: pA.DistanceTo(pB), Iterations: iter}

	s.writeCache(cache)

	if input.UseRadii {
		rA, rB := proxyA.Radius, proxyB.Radius
		if output.Distance > rA+rB && output.Distance > Epsilon {
			output.Distance -= rA + rB
			normal, _ := output.PointB.Sub(output.PointA).Normalize()
			output.PointA = output.PointA.Add(normal.Scale(rA))
			output.PointB = output.PointB.Sub(normal.Scale(rB))
		} else {
			mid := output.PointA.Add(output.PointB).Scale(0.5)
			output.PointA = mid
			output.PointB = mid
			output.Distance = 0
		}
	}

	return output
}
