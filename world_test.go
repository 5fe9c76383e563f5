package vela2d

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroundedWorld(t *testing.T) (*World, *Body) {
	t.Helper()
	world := NewWorld(Vec2{X: 0, Y: -10})

	groundDef := DefaultBodyDef()
	groundDef.Position = Vec2{X: 0, Y: 0}
	ground, err := world.CreateBody(groundDef)
	require.NoError(t, err)
	require.NotNil(t, ground)

	groundShape := NewPolygon()
	groundShape.SetAsBox(50, 1)
	_, err = ground.CreateFixtureFromShape(groundShape, 0)
	require.NoError(t, err)

	return world, ground
}

func step60(t *testing.T, world *World, n int) {
	t.Helper()
	cfg := world.Config()
	for i := 0; i < n; i++ {
		world.Step(1.0/60.0, cfg.VelocityIterations, cfg.PositionIterations)
	}
}

func TestBodyFallsUnderGravity(t *testing.T) {
	world, _ := newGroundedWorld(t)

	bodyDef := DefaultBodyDef()
	bodyDef.Type = DynamicBody
	bodyDef.Position = Vec2{X: 0, Y: 10}
	body, err := world.CreateBody(bodyDef)
	require.NoError(t, err)
	require.NotNil(t, body)
	_, err = body.CreateFixtureFromShape(NewCircle(Vec2{}, 0.5), 1.0)
	require.NoError(t, err)

	startY := body.GetPosition().Y
	step60(t, world, 30)

	assert.Less(t, body.GetPosition().Y, startY, "body should have fallen")
	assert.Less(t, body.GetLinearVelocity().Y, 0.0, "body should be moving downward")
}

func TestBodyRestsOnGroundAndSleeps(t *testing.T) {
	world, _ := newGroundedWorld(t)

	bodyDef := DefaultBodyDef()
	bodyDef.Type = DynamicBody
	bodyDef.Position = Vec2{X: 0, Y: 1.5}
	body, err := world.CreateBody(bodyDef)
	require.NoError(t, err)
	_, err = body.CreateFixtureFromShape(NewCircle(Vec2{}, 0.5), 1.0)
	require.NoError(t, err)

	step60(t, world, 300)

	assert.InDelta(t, 1.5, body.GetPosition().Y, 0.05, "circle of radius 0.5 should settle atop the ground box's top face at y=1.5")
	assert.False(t, body.IsAwake(), "a body resting long enough should fall asleep")
}

func TestStaticBodyNeverMoves(t *testing.T) {
	world, ground := newGroundedWorld(t)

	step60(t, world, 60)

	assert.Equal(t, Vec2{X: 0, Y: 0}, ground.GetPosition())
}

func TestDistanceJointHoldsPendulumLength(t *testing.T) {
	world := NewWorld(Vec2{X: 0, Y: -10})

	anchorDef := DefaultBodyDef()
	anchorDef.Position = Vec2{X: 0, Y: 10}
	anchor, err := world.CreateBody(anchorDef)
	require.NoError(t, err)
	_, err = anchor.CreateFixtureFromShape(NewCircle(Vec2{}, 0.1), 0)
	require.NoError(t, err)

	bobDef := DefaultBodyDef()
	bobDef.Type = DynamicBody
	bobDef.Position = Vec2{X: 4, Y: 10}
	bob, err := world.CreateBody(bobDef)
	require.NoError(t, err)
	_, err = bob.CreateFixtureFromShape(NewCircle(Vec2{}, 0.5), 1.0)
	require.NoError(t, err)

	def := MakeDistanceJointDef(anchor, bob, anchor.GetPosition(), bob.GetPosition())
	joint, err := world.CreateJoint(def)
	require.NoError(t, err)
	require.NotNil(t, joint)
	require.Equal(t, 1, world.JointCount())

	cfg := world.Config()
	for i := 0; i < 180; i++ {
		world.Step(1.0/60.0, cfg.VelocityIterations, cfg.PositionIterations)
		length := bob.GetPosition().DistanceTo(anchor.GetPosition())
		assert.InDelta(t, 4.0, length, 0.05, "distance joint should keep the pendulum arm near its rest length")
	}
}

func TestDestroyJointRemovesEdges(t *testing.T) {
	world := NewWorld(Vec2{})

	defA := DefaultBodyDef()
	defA.Type = DynamicBody
	a, err := world.CreateBody(defA)
	require.NoError(t, err)
	_, err = a.CreateFixtureFromShape(NewCircle(Vec2{}, 0.5), 1.0)
	require.NoError(t, err)

	defB := DefaultBodyDef()
	defB.Type = DynamicBody
	defB.Position = Vec2{X: 2, Y: 0}
	b, err := world.CreateBody(defB)
	require.NoError(t, err)
	_, err = b.CreateFixtureFromShape(NewCircle(Vec2{}, 0.5), 1.0)
	require.NoError(t, err)

	def := MakeDistanceJointDef(a, b, a.GetPosition(), b.GetPosition())
	joint, err := world.CreateJoint(def)
	require.NoError(t, err)
	require.Equal(t, 1, world.JointCount())

	require.NoError(t, world.DestroyJoint(joint))
	assert.Equal(t, 0, world.JointCount())
	assert.Empty(t, a.Joints())
	assert.Empty(t, b.Joints())
}

func TestWorldUnlocksAfterStep(t *testing.T) {
	world := NewWorld(Vec2{})
	world.Step(1.0/60.0, 8, 3)
	assert.False(t, world.IsLocked(), "world should unlock itself after Step returns")
}

func TestPreconditionErrorsOnLockedWorld(t *testing.T) {
	world := NewWorld(Vec2{})
	bodyDef := DefaultBodyDef()
	body, err := world.CreateBody(bodyDef)
	require.NoError(t, err)

	world.locked = true
	defer func() { world.locked = false }()

	_, err = world.CreateBody(bodyDef)
	assert.True(t, IsPrecondition(err))

	err = world.DestroyBody(body)
	assert.True(t, IsPrecondition(err))

	_, err = body.CreateFixtureFromShape(NewCircle(Vec2{}, 0.5), 1.0)
	assert.True(t, IsPrecondition(err))

	err = body.SetType(KinematicBody)
	assert.True(t, IsPrecondition(err))
}

func TestSetTypeRejectsInvalidBodyType(t *testing.T) {
	world := NewWorld(Vec2{})
	body, err := world.CreateBody(DefaultBodyDef())
	require.NoError(t, err)

	err = body.SetType(BodyType(99))
	assert.True(t, IsPrecondition(err))
}

func TestCreateJointRejectsZeroRatioPulley(t *testing.T) {
	world := NewWorld(Vec2{X: 0, Y: -10})
	a, err := world.CreateBody(DefaultBodyDef())
	require.NoError(t, err)
	b, err := world.CreateBody(DefaultBodyDef())
	require.NoError(t, err)

	def := MakePulleyJointDef(a, b, Vec2{Y: 10}, Vec2{X: 10, Y: 10}, a.GetPosition(), b.GetPosition(), 0)
	_, err = world.CreateJoint(def)
	assert.True(t, IsPrecondition(err))
}
