package vela2d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircleComputeMass(t *testing.T) {
	c := NewCircle(Vec2{}, 2.0)
	md := c.ComputeMass(1.0)

	assert.InDelta(t, math.Pi*4, md.Mass, 1e-9)
	assert.Equal(t, Vec2{}, md.Center)
}

func TestCircleTestPoint(t *testing.T) {
	c := NewCircle(Vec2{X: 1, Y: 1}, 1.0)
	xf := Transform{P: Vec2{}, Q: NewRot(0)}

	assert.True(t, c.TestPoint(xf, Vec2{X: 1, Y: 1}))
	assert.True(t, c.TestPoint(xf, Vec2{X: 1.9, Y: 1}))
	assert.False(t, c.TestPoint(xf, Vec2{X: 3, Y: 3}))
}

func TestPolygonSetAsBoxIsSymmetric(t *testing.T) {
	p := NewPolygon()
	p.SetAsBox(2, 1)

	require.Len(t, p.Vertices, 4)
	assert.Equal(t, Vec2{}, p.Centroid)

	md := p.ComputeMass(1.0)
	assert.InDelta(t, 8.0, md.Mass, 1e-9)
	assert.InDelta(t, 0, md.Center.X, 1e-9)
	assert.InDelta(t, 0, md.Center.Y, 1e-9)
}

func TestPolygonSetRejectsTooFewPoints(t *testing.T) {
	p := NewPolygon()
	err := p.Set([]Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}})
	require.Error(t, err)
	assert.True(t, IsPrecondition(err))
}

func TestPolygonSetBuildsConvexHull(t *testing.T) {
	p := NewPolygon()
	// A unit square plus an interior point that must be discarded by the hull.
	err := p.Set([]Vec2{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0.5, Y: 0.5},
	})
	require.NoError(t, err)
	assert.Len(t, p.Vertices, 4)
}
