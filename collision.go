package vela2d

import "math"

// AABB is an axis-aligned bounding box with LowerBound <= UpperBound on
// every axis.
type AABB struct {
	LowerBound, UpperBound Vec2
}

func (a AABB) Center() Vec2 { return a.LowerBound.Add(a.UpperBound).Scale(0.5) }

func (a AABB) Extents() Vec2 { return a.UpperBound.Sub(a.LowerBound).Scale(0.5) }

func (a AABB) Perimeter() float64 {
	wx := a.UpperBound.X - a.LowerBound.X
	wy := a.UpperBound.Y - a.LowerBound.Y
	return 2.0 * (wx + wy)
}

func (a AABB) Combine(b AABB) AABB {
	return AABB{LowerBound: Min(a.LowerBound, b.LowerBound), UpperBound: Max(a.UpperBound, b.UpperBound)}
}

func CombineAABBs(a, b AABB) AABB {
	return AABB{LowerBound: Min(a.LowerBound, b.LowerBound), UpperBound: Max(a.UpperBound, b.UpperBound)}
}

func (a AABB) Contains(b AABB) bool {
	return a.LowerBound.X <= b.LowerBound.X && a.LowerBound.Y <= b.LowerBound.Y &&
		b.UpperBound.X <= a.UpperBound.X && b.UpperBound.Y <= a.UpperBound.Y
}

func (a AABB) IsValid() bool {
	d := a.UpperBound.Sub(a.LowerBound)
	valid := d.X >= 0.0 && d.Y >= 0.0
	return valid && a.LowerBound.IsValid() && a.UpperBound.IsValid()
}

// TestOverlap is symmetric and reflexive by construction: componentwise
// interval overlap is a commutative, self-satisfying relation on any
// non-empty box.
func (a AABB) TestOverlap(b AABB) bool {
	d1 := b.LowerBound.Sub(a.UpperBound)
	d2 := a.LowerBound.Sub(b.UpperBound)
	if d1.X > 0.0 || d1.Y > 0.0 {
		return false
	}
	if d2.X > 0.0 || d2.Y > 0.0 {
		return false
	}
	return true
}

// RayCast implements the slab method (Real-Time Collision Detection, p179).
func (a AABB) RayCast(input RayCastInput) (RayCastOutput, bool) {
	tmin := -MaxFloat
	tmax := MaxFloat

	p := input.P1
	d := input.P2.Sub(input.P1)
	absD := Vec2{math.Abs(d.X), math.Abs(d.Y)}

	normal := Vec2{}

	axes := [2]struct{ p, d, lo, hi, absD float64 }{
		{p.X, d.X, a.LowerBound.X, a.UpperBound.X, absD.X},
		{p.Y, d.Y, a.LowerBound.Y, a.UpperBound.Y, absD.Y},
	}

	for i, ax := range axes {
		if ax.absD < Epsilon {
			if ax.p < ax.lo || ax.hi < ax.p {
				return RayCastOutput{}, false
			}
			continue
		}
		invD := 1.0 / ax.d
		t1 := (ax.lo - ax.p) * invD
		t2 := (ax.hi - ax.p) * invD
		s := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			s = 1.0
		}
		if t1 > tmin {
			normal = Vec2{}
			if i == 0 {
				normal.X = s
			} else {
				normal.Y = s
			}
			tmin = t1
		}
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return RayCastOutput{}, false
		}
	}

	if tmin < 0.0 || input.MaxFraction < tmin {
		return RayCastOutput{}, false
	}
	return RayCastOutput{Fraction: tmin, Normal: normal}, true
}

// ContactFeatureType distinguishes a face feature from a vertex feature in a
// ContactID, used to decide how a manifold point's flip behaves.
type ContactFeatureType uint8

const (
	FeatureVertex ContactFeatureType = iota
	FeatureFace
)

// ContactID identifies a manifold point by the specific features that
// produced it, so that impulses can be warm-started across frames by
// matching keys rather than positions.
type ContactID struct {
	IndexA, IndexB uint8
	TypeA, TypeB   ContactFeatureType
}

func (id ContactID) Key() uint32 {
	return uint32(id.IndexA) | uint32(id.IndexB)<<8 | uint32(id.TypeA)<<16 | uint32(id.TypeB)<<24
}

// ManifoldPoint is one contact point, expressed in the local frame of the
// incident shape: shape B for circle and FaceA manifolds, shape A for FaceB
// manifolds.
type ManifoldPoint struct {
	LocalPoint          Vec2
	NormalImpulse       float64
	TangentImpulse      float64
	Id                  ContactID
}

type ManifoldType uint8

const (
	ManifoldCircles ManifoldType = iota
	ManifoldFaceA
	ManifoldFaceB
)

// Manifold is the output of a narrow-phase collide function: up to
// MaxManifoldPoints contact points sharing one reference normal/point.
type Manifold struct {
	Type        ManifoldType
	LocalPoint  Vec2
	LocalNormal Vec2
	Points      [MaxManifoldPoints]ManifoldPoint
	PointCount  int
}

// WorldManifold expresses a Manifold's points and per-point separations in
// world space, splitting the difference between the two shapes' skins.
type WorldManifold struct {
	Normal       Vec2
	Points       [MaxManifoldPoints]Vec2
	Separations  [MaxManifoldPoints]float64
}

func (wm *WorldManifold) Initialize(m *Manifold, xfA Transform, radiusA float64, xfB Transform, radiusB float64) {
	if m.PointCount == 0 {
		return
	}

	switch m.Type {
	case ManifoldCircles:
		wm.Normal = Vec2{1, 0}
		pointA := xfA.MulVec2(m.LocalPoint)
		pointB := xfB.MulVec2(m.Points[0].LocalPoint)
		if pointA.DistanceSquaredTo(pointB) > Epsilon*Epsilon {
			wm.Normal, _ = pointB.Sub(pointA).Normalize()
		}
		cA := pointA.Add(wm.Normal.Scale(radiusA))
		cB := pointB.Sub(wm.Normal.Scale(radiusB))
		wm.Points[0] = cA.Add(cB).Scale(0.5)
		wm.Separations[0] = cB.Sub(cA).Dot(wm.Normal)

	case ManifoldFaceA:
		wm.Normal = xfA.Q.MulVec2(m.LocalNormal)
		planePoint := xfA.MulVec2(m.LocalPoint)
		for i := 0; i < m.PointCount; i++ {
			clip := xfB.MulVec2(m.Points[i].LocalPoint)
			cA := clip.Add(wm.Normal.Scale(radiusA - clip.Sub(planePoint).Dot(wm.Normal)))
			cB := clip.Sub(wm.Normal.Scale(radiusB))
			wm.Points[i] = cA.Add(cB).Scale(0.5)
			wm.Separations[i] = cB.Sub(cA).Dot(wm.Normal)
		}

	case ManifoldFaceB:
		wm.Normal = xfB.Q.MulVec2(m.LocalNormal)
		planePoint := xfB.MulVec2(m.LocalPoint)
		for i := 0; i < m.PointCount; i++ {
			clip := xfA.MulVec2(m.Points[i].LocalPoint)
			cB := clip.Add(wm.Normal.Scale(radiusB - clip.Sub(planePoint).Dot(wm.Normal)))
			cA := clip.Sub(wm.Normal.Scale(radiusA))
			wm.Points[i] = cA.Add(cB).Scale(0.5)
			wm.Separations[i] = cA.Sub(cB).Dot(wm.Normal)
		}
		wm.Normal = wm.Normal.Neg()
	}
}

// PointState classifies how a manifold point behaved between two frames,
// used by listeners that want persist/add/remove events rather than raw
// manifolds.
type PointState uint8

const (
	PointNull PointState = iota
	PointAdd
	PointPersist
	PointRemove
)

// GetPointStates diffs two manifolds by ContactID key.
func GetPointStates(m1, m2 *Manifold) (state1, state2 [MaxManifoldPoints]PointState) {
	for i := 0; i < m1.PointCount; i++ {
		id := m1.Points[i].Id
		state1[i] = PointRemove
		for j := 0; j < m2.PointCount; j++ {
			if m2.Points[j].Id.Key() == id.Key() {
				state1[i] = PointPersist
				break
			}
		}
	}
	for i := 0; i < m2.PointCount; i++ {
		id := m2.Points[i].Id
		state2[i] = PointAdd
		for j := 0; j < m1.PointCount; j++ {
			if m1.Points[j].Id.Key() == id.Key() {
				state2[i] = PointPersist
				break
			}
		}
	}
	return
}

// ClipVertex is one endpoint of a segment being clipped against a half-plane,
// carrying the ContactID it would produce if it survives clipping.
type ClipVertex struct {
	V  Vec2
	Id ContactID
}

// ClipSegmentToLine applies Sutherland-Hodgman clipping of a two-point
// segment against the half-plane normal·x <= offset, tagging any newly
// created intersection point's ContactID with vertexIndexA.
func ClipSegmentToLine(vIn [2]ClipVertex, normal Vec2, offset float64, vertexIndexA uint8) ([2]ClipVertex, int) {
	var vOut [2]ClipVertex
	numOut := 0

	distance0 := normal.Dot(vIn[0].V) - offset
	distance1 := normal.Dot(vIn[1].V) - offset

	if distance0 <= 0.0 {
		vOut[numOut] = vIn[0]
		numOut++
	}
	if distance1 <= 0.0 {
		vOut[numOut] = vIn[1]
		numOut++
	}

	if distance0*distance1 < 0.0 {
		interp := distance0 / (distance0 - distance1)
		vOut[numOut].V = vIn[0].V.Add(vIn[1].V.Sub(vIn[0].V).Scale(interp))
		vOut[numOut].Id.IndexA = vertexIndexA
		vOut[numOut].Id.IndexB = vIn[0].Id.IndexB
		vOut[numOut].Id.TypeA = FeatureVertex
		vOut[numOut].Id.TypeB = FeatureFace
		numOut++
	}

	return vOut, numOut
}

// TestOverlapShapes performs an exact GJK-based overlap test between two
// shape children, used by World.TestOverlap.
func TestOverlapShapes(shapeA Shape, indexA int, shapeB Shape, indexB int, xfA, xfB Transform) bool {
	input := DistanceInput{
		ProxyA:     MakeShapeProxy(shapeA, indexA),
		ProxyB:     MakeShapeProxy(shapeB, indexB),
		TransformA: xfA,
		TransformB: xfB,
		UseRadii:   true,
	}
	cache := &SimplexCache{}
	output := Distance(cache, input)
	return output.Distance < 10.0*Epsilon
}
