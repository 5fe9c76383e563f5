package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vela-phys/vela2d"
)

func TestShapeConfigBuildsCircle(t *testing.T) {
	sc := ShapeConfig{Radius: 1.5}
	shape, err := sc.build()
	require.NoError(t, err)

	circle, ok := shape.(*vela2d.Circle)
	require.True(t, ok)
	assert.Equal(t, 1.5, circle.Radius())
}

func TestShapeConfigBuildsPolygon(t *testing.T) {
	sc := ShapeConfig{Vertices: [][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}}
	shape, err := sc.build()
	require.NoError(t, err)

	_, ok := shape.(*vela2d.Polygon)
	require.True(t, ok)
}

func TestShapeConfigRejectsEmpty(t *testing.T) {
	_, err := ShapeConfig{}.build()
	require.Error(t, err)
}

func TestScenarioBuildWiresNamedBodiesAndJoints(t *testing.T) {
	scenario := ScenarioConfig{
		Tuning: DefaultTuningConfig(),
		Bodies: []BodyConfig{
			{Name: "anchor", Type: "static", X: 0, Y: 10, Shape: ShapeConfig{Radius: 0.1}},
			{Name: "bob", Type: "dynamic", X: 4, Y: 10, Shape: ShapeConfig{Radius: 0.5}, Density: 1},
		},
		Joints: []JointConfig{
			{BodyA: "anchor", BodyB: "bob", Length: 4},
		},
	}

	world, bodies, err := scenario.Build()
	require.NoError(t, err)
	require.Len(t, bodies, 2)
	assert.Equal(t, 2, world.BodyCount())
	assert.Equal(t, 1, world.JointCount())

	bob := bodies["bob"]
	require.NotNil(t, bob)
	assert.Equal(t, vela2d.DynamicBody, bob.Type())
}

func TestScenarioBuildRejectsUnknownJointBody(t *testing.T) {
	scenario := ScenarioConfig{
		Tuning: DefaultTuningConfig(),
		Bodies: []BodyConfig{
			{Name: "only", Type: "dynamic", Shape: ShapeConfig{Radius: 1}, Density: 1},
		},
		Joints: []JointConfig{
			{BodyA: "only", BodyB: "missing"},
		},
	}

	_, _, err := scenario.Build()
	require.Error(t, err)
}
