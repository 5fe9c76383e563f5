package vela2d

import "sort"

// ProxyPair identifies two broad-phase proxies whose fat AABBs newly
// overlap, a candidate for narrow-phase contact creation.
type ProxyPair struct {
	ProxyIDA, ProxyIDB int
}

// BroadPhase layers a move-buffer and pair generator on top of a DynamicTree:
// proxies that moved since the last UpdatePairs are re-queried against the
// tree to find new overlapping candidates, exactly the split spec.md's data
// flow describes between the tree (spatial index) and the broad phase
// (candidate pairs).
type BroadPhase struct {
	tree       *DynamicTree
	proxyCount int
	moveBuffer []int
	queryProxyID int
	pairs      []ProxyPair
}

func NewBroadPhase() *BroadPhase {
	return &BroadPhase{tree: NewDynamicTree()}
}

func (bp *BroadPhase) CreateProxy(aabb AABB, userData interface{}) int {
	id := bp.tree.CreateProxy(aabb, userData)
	bp.proxyCount++
	bp.bufferMove(id)
	return id
}

func (bp *BroadPhase) DestroyProxy(id int) {
	bp.unbufferMove(id)
	bp.proxyCount--
	bp.tree.DestroyProxy(id)
}

func (bp *BroadPhase) MoveProxy(id int, aabb AABB, displacement Vec2) {
	moved := bp.tree.MoveProxy(id, aabb, displacement)
	if moved {
		bp.bufferMove(id)
	}
}

// TouchProxy forces a proxy back into the move buffer without changing its
// AABB, used when a fixture's filter changes and existing contacts must be
// re-evaluated.
func (bp *BroadPhase) TouchProxy(id int) {
	bp.bufferMove(id)
}

func (bp *BroadPhase) bufferMove(id int) {
	bp.moveBuffer = append(bp.moveBuffer, id)
}

func (bp *BroadPhase) unbufferMove(id int) {
	for i, v := range bp.moveBuffer {
		if v == id {
			bp.moveBuffer[i] = bp.moveBuffer[len(bp.moveBuffer)-1]
			bp.moveBuffer = bp.moveBuffer[:len(bp.moveBuffer)-1]
			return
		}
	}
}

// ShiftOrigin re-centers every proxy's fat AABB by subtracting newOrigin,
// passed straight through to the underlying tree.
func (bp *BroadPhase) ShiftOrigin(newOrigin Vec2) { bp.tree.ShiftOrigin(newOrigin) }

func (bp *BroadPhase) GetFatAABB(id int) AABB { return bp.tree.GetFatAABB(id) }

func (bp *BroadPhase) GetUserData(id int) interface{} { return bp.tree.GetUserData(id) }

func (bp *BroadPhase) TestOverlap(idA, idB int) bool {
	return bp.tree.GetFatAABB(idA).TestOverlap(bp.tree.GetFatAABB(idB))
}

func (bp *BroadPhase) ProxyCount() int { return bp.proxyCount }

func (bp *BroadPhase) TreeHeight() int { return bp.tree.GetHeight() }

func (bp *BroadPhase) TreeQuality() float64 { return bp.tree.GetAreaRatio() }

func (bp *BroadPhase) Query(aabb AABB, callback func(id int) bool) {
	bp.tree.Query(aabb, callback)
}

func (bp *BroadPhase) RayCast(input RayCastInput, callback func(id int, input RayCastInput) float64) {
	bp.tree.RayCast(input, callback)
}

// UpdatePairs re-queries the tree for every proxy touched since the last
// call, collects (proxyA, proxyB) candidates (skipping self-pairs and a
// proxy re-finding itself), deduplicates, and returns the result — leaving
// the move buffer empty for the next step.
func (bp *BroadPhase) UpdatePairs() []ProxyPair {
	bp.pairs = bp.pairs[:0]

	for _, queryID := range bp.moveBuffer {
		bp.queryProxyID = queryID
		fatAABB := bp.tree.GetFatAABB(queryID)
		bp.tree.Query(fatAABB, func(id int) bool {
			if id == bp.queryProxyID {
				return true
			}
			bp.pairs = append(bp.pairs, ProxyPair{ProxyIDA: minInt(id, bp.queryProxyID), ProxyIDB: maxInt(id, bp.queryProxyID)})
			return true
		})
	}

	bp.moveBuffer = bp.moveBuffer[:0]

	sort.Slice(bp.pairs, func(i, j int) bool {
		if bp.pairs[i].ProxyIDA != bp.pairs[j].ProxyIDA {
			return bp.pairs[i].ProxyIDA < bp.pairs[j].ProxyIDA
		}
		return bp.pairs[i].ProxyIDB < bp.pairs[j].ProxyIDB
	})

	out := bp.pairs[:0:0]
	for i := 0; i < len(bp.pairs); i++ {
		if i > 0 && bp.pairs[i] == bp.pairs[i-1] {
			continue
		}
		out = append(out, bp.pairs[i])
	}
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
