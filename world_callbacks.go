package vela2d

// QueryCallback reports one fixture whose fat AABB overlaps a QueryAABB
// call. Returning false stops the query early.
type QueryCallback func(fixture *Fixture) bool

// QueryAABB visits every fixture whose broad-phase (fattened) AABB overlaps
// aabb. This is a broad-phase-only test — a hit fixture's actual shape may
// not overlap aabb at all, the same tradeoff the teacher's b2World::QueryAABB
// makes in exchange for speed.
func (w *World) QueryAABB(aabb AABB, callback QueryCallback) {
	w.broadPhase.Query(aabb, func(proxyID int) bool {
		proxy, ok := w.broadPhase.GetUserData(proxyID).(*FixtureProxy)
		if !ok {
			return true
		}
		return callback(proxy.Fixture)
	})
}

// RayCastCallback reports one fixture hit by a RayCast call, along with the
// world-space hit point, surface normal, and fraction along the ray. The
// return value tells the cast how to continue: 0 terminates the cast
// entirely, any positive value becomes the ray's max fraction for the rest
// of the cast (returning fraction clips the ray at this hit, the usual
// "find the closest hit" idiom; returning 1 keeps the full length so the
// cast finds every hit), and a negative value ignores this hit and leaves
// the ray's length unchanged.
type RayCastCallback func(fixture *Fixture, point, normal Vec2, fraction float64) float64

// RayCast casts a ray from point1 to point2 against every fixture in the
// world, invoking callback for each hit in an unspecified order (a caller
// wanting the single closest hit should clip the ray in the callback, as
// the doc on RayCastCallback describes).
func (w *World) RayCast(point1, point2 Vec2, callback RayCastCallback) {
	input := RayCastInput{P1: point1, P2: point2, MaxFraction: 1.0}

	w.broadPhase.RayCast(input, func(nodeID int, input RayCastInput) float64 {
		proxy, ok := w.broadPhase.GetUserData(nodeID).(*FixtureProxy)
		if !ok {
			return input.MaxFraction
		}

		output, hit := proxy.Fixture.RayCast(input, proxy.ChildIndex)
		if !hit {
			return input.MaxFraction
		}

		fraction := output.Fraction
		point := point1.Scale(1.0 - fraction).Add(point2.Scale(fraction))
		return callback(proxy.Fixture, point, output.Normal, fraction)
	})
}

// TestOverlap reports whether a's and b's (unfattened) shapes actually
// intersect, using GJK distance rather than the broad phase's fat AABBs —
// the exact test QueryAABB deliberately skips for speed.
func (w *World) TestOverlap(a, b *Fixture) bool {
	return TestOverlapShapes(a.shape, 0, b.shape, 0, a.body.xf, b.body.xf)
}
