package vela2d

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVec2Arithmetic(t *testing.T) {
	a := Vec2{X: 1, Y: 2}
	b := Vec2{X: 3, Y: -1}

	assert.Equal(t, Vec2{X: 4, Y: 1}, a.Add(b))
	assert.Equal(t, Vec2{X: -2, Y: 3}, a.Sub(b))
	assert.Equal(t, Vec2{X: -1, Y: -2}, a.Neg())
	assert.Equal(t, Vec2{X: 2, Y: 4}, a.Scale(2))
	assert.InDelta(t, 1, a.Dot(b), 1e-9)
	assert.InDelta(t, -7, a.Cross(b), 1e-9)
}

func TestVec2Normalize(t *testing.T) {
	v := Vec2{X: 3, Y: 4}
	unit, length := v.Normalize()

	assert.InDelta(t, 5, length, 1e-9)
	assert.InDelta(t, 1, unit.Length(), 1e-9)

	zero := Vec2{}
	unitZero, lengthZero := zero.Normalize()
	assert.Equal(t, zero, unitZero)
	assert.Zero(t, lengthZero)
}

func TestVec2IsValid(t *testing.T) {
	require.True(t, Vec2{X: 1, Y: 2}.IsValid())
	require.False(t, Vec2{X: math.NaN(), Y: 0}.IsValid())
	require.False(t, Vec2{X: math.Inf(1), Y: 0}.IsValid())
}

func TestClampFloat(t *testing.T) {
	assert.Equal(t, 0.0, ClampFloat(-5, 0, 10))
	assert.Equal(t, 10.0, ClampFloat(15, 0, 10))
	assert.Equal(t, 5.0, ClampFloat(5, 0, 10))
}

func TestSkewIsPerpendicular(t *testing.T) {
	v := Vec2{X: 2, Y: 3}
	skewed := v.Skew()
	assert.InDelta(t, 0, v.Dot(skewed), 1e-9)
}
