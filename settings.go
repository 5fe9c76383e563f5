package vela2d

import "math"

// Tunable constants, grounded on the teacher's CommonB2Settings.go, with the
// AABBMultiplier default corrected to match spec.md's stated value (4,
// against the teacher's 2.0 — see DESIGN.md).
const (
	MaxManifoldPoints  = 2
	MaxPolygonVertices = 8

	AABBExtension  = 0.1
	AABBMultiplier = 4.0

	LinearSlop   = 0.005
	AngularSlop  = 2.0 / 180.0 * math.Pi
	PolygonRadius = 2.0 * LinearSlop

	MaxSubSteps    = 8
	MaxTOIContacts = 32

	VelocityThreshold = 1.0

	MaxLinearCorrection  = 0.2
	MaxAngularCorrection = 8.0 / 180.0 * math.Pi

	MaxTranslation      = 2.0
	MaxTranslationSquared = MaxTranslation * MaxTranslation
	MaxRotation         = 0.5 * math.Pi
	MaxRotationSquared  = MaxRotation * MaxRotation

	Baumgarte    = 0.2
	ToiBaumgarte = 0.75

	LinearSleepTolerance  = 0.01
	AngularSleepTolerance = 2.0 / 180.0 * math.Pi
	TimeToSleep           = 0.5

	MaxGJKIterations = 20

	Epsilon = 1.1920928955078125e-07
	Pi      = math.Pi
	MaxFloat = math.MaxFloat64
)

// DefaultWorldConfig bundles the per-World tunables that a scenario config
// (internal/config) may override; these are the values used when a World is
// constructed without an explicit WorldConfig.
type WorldConfig struct {
	VelocityIterations int
	PositionIterations int
	WarmStarting       bool
	ContinuousPhysics  bool
	SubStepping        bool
	AllowSleep         bool
}

func DefaultWorldConfig() WorldConfig {
	return WorldConfig{
		VelocityIterations: 8,
		PositionIterations: 3,
		WarmStarting:       true,
		ContinuousPhysics:  true,
		SubStepping:        false,
		AllowSleep:         true,
	}
}
