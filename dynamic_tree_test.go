package vela2d

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDynamicTreeShiftOriginRebasesEveryProxy(t *testing.T) {
	tree := NewDynamicTree()

	idA := tree.CreateProxy(AABB{LowerBound: Vec2{X: 0, Y: 0}, UpperBound: Vec2{X: 1, Y: 1}}, "a")
	idB := tree.CreateProxy(AABB{LowerBound: Vec2{X: 100, Y: 100}, UpperBound: Vec2{X: 101, Y: 101}}, "b")

	before := tree.GetFatAABB(idA)

	origin := Vec2{X: 50, Y: 20}
	tree.ShiftOrigin(origin)

	afterA := tree.GetFatAABB(idA)
	afterB := tree.GetFatAABB(idB)

	assert.InDelta(t, before.LowerBound.X-origin.X, afterA.LowerBound.X, 1e-9)
	assert.InDelta(t, before.LowerBound.Y-origin.Y, afterA.LowerBound.Y, 1e-9)
	assert.InDelta(t, before.UpperBound.X-origin.X, afterA.UpperBound.X, 1e-9)

	assert.InDelta(t, 100-origin.X-AABBExtension, afterB.LowerBound.X, 1e-9)
	assert.InDelta(t, 100-origin.Y-AABBExtension, afterB.LowerBound.Y, 1e-9)

	assert.Equal(t, "a", tree.GetUserData(idA))
	assert.Equal(t, "b", tree.GetUserData(idB))
}

func TestBroadPhaseShiftOriginDelegatesToTree(t *testing.T) {
	bp := NewBroadPhase()
	id := bp.CreateProxy(AABB{LowerBound: Vec2{X: 5, Y: 5}, UpperBound: Vec2{X: 6, Y: 6}}, nil)

	bp.ShiftOrigin(Vec2{X: 5, Y: 5})

	fat := bp.GetFatAABB(id)
	assert.InDelta(t, -AABBExtension, fat.LowerBound.X, 1e-9)
	assert.InDelta(t, -AABBExtension, fat.LowerBound.Y, 1e-9)
}
