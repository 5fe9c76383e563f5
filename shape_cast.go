package vela2d

import "math"

// ShapeCastInput sweeps proxyB by TranslationB against a stationary proxyA
// and asks for the first time (as a fraction of TranslationB) at which they
// would touch.
type ShapeCastInput struct {
	ProxyA, ProxyB             DistanceProxy
	TransformA, TransformB     Transform
	TranslationB               Vec2
}

// ShapeCastOutput reports whether a hit was found, the point/normal of first
// contact (in proxyB's translation direction), and the fraction of
// TranslationB traveled.
type ShapeCastOutput struct {
	Point, Normal Vec2
	Lambda        float64
	Hit           bool
}

// ShapeCast is the static-shape sibling of ComputeTimeOfImpact: rather than
// sweeping two moving bodies against each other over a time interval, it
// sweeps a translating proxyB against a stationary proxyA and reports the
// first fraction of the translation at which they come within touching
// distance. It uses conservative advancement on the GJK distance: each
// iteration measures the current gap and moves forward by that gap divided
// by the closing speed along the current separating axis. It does not use
// TimeOfImpact's separationFunction, and World.Step does not call it; it is
// a standalone query.
func ShapeCast(input ShapeCastInput) ShapeCastOutput {
	proxyA, proxyB := input.ProxyA, input.ProxyB
	if len(proxyA.Vertices) == 0 || len(proxyB.Vertices) == 0 {
		return ShapeCastOutput{}
	}

	radius := proxyA.Radius + proxyB.Radius
	target := math.Max(LinearSlop, radius-3.0*LinearSlop)
	tolerance := 0.25 * LinearSlop

	xfA := input.TransformA
	lambda := 0.0
	const maxIterations = 20

	cache := &SimplexCache{}

	for iter := 0; iter < maxIterations; iter++ {
		xfB := Transform{P: input.TransformB.P.Add(input.TranslationB.Scale(lambda)), Q: input.TransformB.Q}

		distOutput := Distance(cache, DistanceInput{
			ProxyA: proxyA, ProxyB: proxyB,
			TransformA: xfA, TransformB: xfB,
			UseRadii: false,
		})

		if distOutput.Distance <= 0.0 {
			return ShapeCastOutput{Hit: true, Lambda: lambda, Point: distOutput.PointA, Normal: Vec2{}}
		}

		if distOutput.Distance < target+tolerance {
			normal, _ := distOutput.PointA.Sub(distOutput.PointB).Normalize()
			return ShapeCastOutput{
				Hit:    true,
				Lambda: lambda,
				Point:  distOutput.PointB,
				Normal: normal,
			}
		}

		// Advance along the translation direction by the closing rate
		// implied by the current separating axis, a linear (non-rotating)
		// sweep with no root finding.
		axis, _ := distOutput.PointA.Sub(distOutput.PointB).Normalize()
		closingSpeed := input.TranslationB.Dot(axis.Neg())
		if closingSpeed <= Epsilon {
			return ShapeCastOutput{Hit: false, Lambda: 1.0}
		}
		dLambda := (distOutput.Distance - target) / closingSpeed
		lambda += dLambda
		if lambda >= 1.0 {
			return ShapeCastOutput{Hit: false, Lambda: 1.0}
		}
	}

	return ShapeCastOutput{Hit: false, Lambda: lambda}
}
