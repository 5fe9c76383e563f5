package vela2d

import "math"

type separationType uint8

const (
	sepPoints separationType = iota
	sepFaceA
	sepFaceB
)

// separationFunction evaluates the signed separation along a fixed axis as
// two swept shapes move from t=0 to t=1, letting TimeOfImpact search
// (bisection alternating with secant steps) for the first time that
// separation crosses a target value
// without stepping through every intermediate frame.
type separationFunction struct {
	proxyA, proxyB DistanceProxy
	sweepA, sweepB Sweep
	localPoint     Vec2
	axis           Vec2
	kind           separationType
}

func (f *separationFunction) initialize(cache *SimplexCache, proxyA DistanceProxy, sweepA Sweep, proxyB DistanceProxy, sweepB Sweep, t1 float64) float64 {
	f.proxyA = proxyA
	f.proxyB = proxyB
	f.sweepA = sweepA
	f.sweepB = sweepB

	count := cache.Count
	xfA := sweepA.GetTransform(t1)
	xfB := sweepB.GetTransform(t1)

	if count == 1 {
		f.kind = sepPoints
		localPointA := proxyA.Vertex(int(cache.IndexA[0]))
		localPointB := proxyB.Vertex(int(cache.IndexB[0]))
		pointA := xfA.MulVec2(localPointA)
		pointB := xfB.MulVec2(localPointB)
		f.axis, _ = pointB.Sub(pointA).Normalize()
		return pointB.Sub(pointA).Dot(f.axis)
	}

	if cache.IndexA[0] == cache.IndexA[1] {
		f.kind = sepFaceB
		localPointB1 := proxyB.Vertex(int(cache.IndexB[0]))
		localPointB2 := proxyB.Vertex(int(cache.IndexB[1]))
		f.axis = CrossVecScalar(localPointB2.Sub(localPointB1), 1.0)
		f.axis, _ = f.axis.Normalize()
		normal := xfB.Q.MulVec2(f.axis)

		f.localPoint = localPointB1.Add(localPointB2).Scale(0.5)
		pointB := xfB.MulVec2(f.localPoint)

		localPointA := proxyA.Vertex(int(cache.IndexA[0]))
		pointA := xfA.MulVec2(localPointA)

		separation := pointA.Sub(pointB).Dot(normal)
		if separation < 0.0 {
			f.axis = f.axis.Neg()
			separation = -separation
		}
		return separation
	}

	f.kind = sepFaceA
	localPointA1 := proxyA.Vertex(int(cache.IndexA[0]))
	localPointA2 := proxyA.Vertex(int(cache.IndexA[1]))
	f.axis = CrossVecScalar(localPointA2.Sub(localPointA1), 1.0)
	f.axis, _ = f.axis.Normalize()
	normal := xfA.Q.MulVec2(f.axis)

	f.localPoint = localPointA1.Add(localPointA2).Scale(0.5)
	pointA := xfA.MulVec2(f.localPoint)

	localPointB := proxyB.Vertex(int(cache.IndexB[0]))
	pointB := xfB.MulVec2(localPointB)

	separation := pointB.Sub(pointA).Dot(normal)
	if separation < 0.0 {
		f.axis = f.axis.Neg()
		separation = -separation
	}
	return separation
}

func (f *separationFunction) findMinSeparation(t float64) (float64, int, int) {
	xfA := f.sweepA.GetTransform(t)
	xfB := f.sweepB.GetTransform(t)

	switch f.kind {
	case sepPoints:
		axisA := xfA.Q.MulTVec2(f.axis)
		axisB := xfB.Q.MulTVec2(f.axis.Neg())
		indexA := f.proxyA.SupportPoint(axisA)
		indexB := f.proxyB.SupportPoint(axisB)
		pointA := xfA.MulVec2(f.proxyA.Vertex(indexA))
		pointB := xfB.MulVec2(f.proxyB.Vertex(indexB))
		return pointB.Sub(pointA).Dot(f.axis), indexA, indexB

	case sepFaceA:
		normal := xfA.Q.MulVec2(f.axis)
		pointA := xfA.MulVec2(f.localPoint)
		axisB := xfB.Q.MulTVec2(normal.Neg())
		indexB := f.proxyB.SupportPoint(axisB)
		pointB := xfB.MulVec2(f.proxyB.Vertex(indexB))
		return pointB.Sub(pointA).Dot(normal), -1, indexB

	default: // sepFaceB
		normal := xfB.Q.MulVec2(f.axis)
		pointB := xfB.MulVec2(f.localPoint)
		axisA := xfA.Q.MulTVec2(normal.Neg())
		indexA := f.proxyA.SupportPoint(axisA)
		pointA := xfA.MulVec2(f.proxyA.Vertex(indexA))
		return pointA.Sub(pointB).Dot(normal), indexA, -1
	}
}

func (f *separationFunction) evaluate(indexA, indexB int, t float64) float64 {
	xfA := f.sweepA.GetTransform(t)
	xfB := f.sweepB.GetTransform(t)

	switch f.kind {
	case sepPoints:
		pointA := xfA.MulVec2(f.proxyA.Vertex(indexA))
		pointB := xfB.MulVec2(f.proxyB.Vertex(indexB))
		return pointB.Sub(pointA).Dot(f.axis)

	case sepFaceA:
		normal := xfA.Q.MulVec2(f.axis)
		pointA := xfA.MulVec2(f.localPoint)
		pointB := xfB.MulVec2(f.proxyB.Vertex(indexB))
		return pointB.Sub(pointA).Dot(normal)

	default: // sepFaceB
		normal := xfB.Q.MulVec2(f.axis)
		pointB := xfB.MulVec2(f.localPoint)
		pointA := xfA.MulVec2(f.proxyA.Vertex(indexA))
		return pointA.Sub(pointB).Dot(normal)
	}
}

// TOIState is the outcome of a TimeOfImpact computation.
type TOIState uint8

const (
	TOIUnknown TOIState = iota
	TOIFailed
	TOIOverlapped
	TOITouching
	TOISeparated
)

// TOIInput bundles the two swept proxies and the fraction of the step to
// search up to.
type TOIInput struct {
	ProxyA, ProxyB DistanceProxy
	SweepA, SweepB Sweep
	TMax           float64
}

// TOIOutput reports the state reached and, for Touching, the time fraction
// at which the shapes first come within target separation.
type TOIOutput struct {
	State TOIState
	T     float64
}

// ComputeTimeOfImpact finds the first time in [0, input.TMax] at which two
// moving convex shapes come within a target separation of each other, using
// conservative advancement (Erin Catto, "Continuous Collision"). A root
// finder that fails to converge within its iteration budget reports
// TOIFailed with the best t reached so far rather than looping forever —
// the solver then treats that as a touching event at the best-found time,
// per spec.md §7.
func ComputeTimeOfImpact(input TOIInput) TOIOutput {
	output := TOIOutput{State: TOIUnknown, T: input.TMax}

	proxyA, proxyB := input.ProxyA, input.ProxyB
	sweepA, sweepB := input.SweepA, input.SweepB
	sweepA.Normalize()
	sweepB.Normalize()

	tMax := input.TMax

	totalRadius := proxyA.Radius + proxyB.Radius
	target := math.Max(LinearSlop, totalRadius-3.0*LinearSlop)
	tolerance := 0.25 * LinearSlop

	t1 := 0.0
	const maxIterations = 20
	iter := 0

	cache := &SimplexCache{}
	distInput := DistanceInput{ProxyA: proxyA, ProxyB: proxyB}

	for {
		xfA := sweepA.GetTransform(t1)
		xfB := sweepB.GetTransform(t1)

		distInput.TransformA = xfA
		distInput.TransformB = xfB
		distInput.UseRadii = false
		distOutput := Distance(cache, distInput)

		if distOutput.Distance <= 0.0 {
			output.State = TOIOverlapped
			output.T = 0.0
			break
		}

		if distOutput.Distance < target+tolerance {
			output.State = TOITouching
			output.T = t1
			break
		}

		var fcn separationFunction
		fcn.initialize(cache, proxyA, sweepA, proxyB, sweepB, t1)

		done := false
		t2 := tMax
		pushBackIter := 0
		for {
			s2, indexA, indexB := fcn.findMinSeparation(t2)

			if s2 > target+tolerance {
				output.State = TOISeparated
				output.T = tMax
				done = true
				break
			}
			if s2 > target-tolerance {
				t1 = t2
				break
			}

			s1 := fcn.evaluate(indexA, indexB, t1)
			if s1 < target-tolerance {
				output.State = TOIFailed
				output.T = t1
				done = true
				break
			}
			if s1 <= target+tolerance {
				output.State = TOITouching
				output.T = t1
				done = true
				break
			}

			rootIter := 0
			a1, a2 := t1, t2
			for {
				var t float64
				if rootIter&1 != 0 {
					t = a1 + (target-s1)*(a2-a1)/(s2-s1)
				} else {
					t = 0.5 * (a1 + a2)
				}
				rootIter++

				s := fcn.evaluate(indexA, indexB, t)
				if math.Abs(s-target) < tolerance {
					t2 = t
					break
				}
				if s > target {
					a1, s1 = t, s
				} else {
					a2, s2 = t, s
				}
				if rootIter == 50 {
					break
				}
			}
			pushBackIter++
			if pushBackIter == MaxPolygonVertices {
				break
			}
		}

		iter++
		if done {
			break
		}
		if iter == maxIterations {
			output.State = TOIFailed
			output.T = t1
			break
		}
	}

	return output
}
