package vela2d

import "math"

const nullNode = -1

type treeNode struct {
	aabb     AABB
	userData interface{}

	// parent and next share a slot, exactly as in the source design: a
	// node is either attached to the tree (parent meaningful) or sitting
	// on the free list (next meaningful). Since Go has no anonymous union,
	// the field is simply reused with an explicit name that says which use
	// is live, rather than pretending it's two separate fields.
	parentOrNext int

	child1, child2 int
	height         int
	moved          bool
}

func (n *treeNode) isLeaf() bool { return n.child1 == nullNode }

// DynamicTree is an AABB tree spatial index (a "bounding volume hierarchy")
// used by BroadPhase to accelerate overlap and ray queries over a changing
// set of fattened AABBs. Proxy ids are stable for the lifetime of the proxy
// and are recycled from a free list on destroy.
type DynamicTree struct {
	root  int
	nodes []treeNode
	freeList int
	insertionCount int
}

func NewDynamicTree() *DynamicTree {
	t := &DynamicTree{root: nullNode}
	t.nodes = make([]treeNode, 16)
	for i := 0; i < len(t.nodes)-1; i++ {
		t.nodes[i].parentOrNext = i + 1
		t.nodes[i].height = -1
	}
	t.nodes[len(t.nodes)-1].parentOrNext = nullNode
	t.nodes[len(t.nodes)-1].height = -1
	t.freeList = 0
	return t
}

func (t *DynamicTree) allocateNode() int {
	if t.freeList == nullNode {
		old := len(t.nodes)
		grown := make([]treeNode, old*2)
		copy(grown, t.nodes)
		t.nodes = grown
		for i := old; i < len(t.nodes)-1; i++ {
			t.nodes[i].parentOrNext = i + 1
			t.nodes[i].height = -1
		}
		t.nodes[len(t.nodes)-1].parentOrNext = nullNode
		t.nodes[len(t.nodes)-1].height = -1
		t.freeList = old
	}
	id := t.freeList
	t.freeList = t.nodes[id].parentOrNext
	t.nodes[id] = treeNode{parentOrNext: nullNode, child1: nullNode, child2: nullNode, height: 0}
	return id
}

func (t *DynamicTree) freeNode(id int) {
	t.nodes[id].parentOrNext = t.freeList
	t.nodes[id].height = -1
	t.freeList = id
}

// CreateProxy inserts a leaf whose AABB is aabb fattened by AABBExtension on
// every axis, and returns a stable proxy id.
func (t *DynamicTree) CreateProxy(aabb AABB, userData interface{}) int {
	id := t.allocateNode()
	r := Vec2{AABBExtension, AABBExtension}
	t.nodes[id].aabb = AABB{LowerBound: aabb.LowerBound.Sub(r), UpperBound: aabb.UpperBound.Add(r)}
	t.nodes[id].userData = userData
	t.nodes[id].height = 0
	t.nodes[id].moved = true
	t.insertLeaf(id)
	return id
}

func (t *DynamicTree) DestroyProxy(id int) {
	t.removeLeaf(id)
	t.freeNode(id)
}

// MoveProxy re-inserts the proxy with a new fat AABB (the tight aabb
// extended by AABBExtension and further along the displacement direction by
// AABBMultiplier) unless the existing fat AABB both still contains the
// tight aabb and isn't grossly oversized for it. That second test — a
// "huge" envelope built by expanding the freshly computed fat AABB by
// another 4r on every side — is what catches a proxy that moved fast once
// (earning a big lookahead-extended fat AABB) and then stopped: without it,
// the oversized fat AABB would contain every future small movement forever
// and the proxy would never shrink back down or re-tighten its broad-phase
// pairs. Returns whether a re-insertion happened.
func (t *DynamicTree) MoveProxy(id int, aabb AABB, displacement Vec2) bool {
	r := Vec2{AABBExtension, AABBExtension}
	fat := AABB{LowerBound: aabb.LowerBound.Sub(r), UpperBound: aabb.UpperBound.Add(r)}

	if displacement.X < 0.0 {
		fat.LowerBound.X += AABBMultiplier * displacement.X
	} else {
		fat.UpperBound.X += AABBMultiplier * displacement.X
	}
	if displacement.Y < 0.0 {
		fat.LowerBound.Y += AABBMultiplier * displacement.Y
	} else {
		fat.UpperBound.Y += AABBMultiplier * displacement.Y
	}

	treeAABB := t.nodes[id].aabb
	if treeAABB.Contains(aabb) {
		huge := Vec2{4.0 * AABBExtension, 4.0 * AABBExtension}
		hugeAABB := AABB{LowerBound: fat.LowerBound.Sub(huge), UpperBound: fat.UpperBound.Add(huge)}
		if hugeAABB.Contains(treeAABB) {
			return false
		}
	}

	t.removeLeaf(id)
	t.nodes[id].aabb = fat
	t.nodes[id].moved = true
	t.insertLeaf(id)
	return true
}

// ShiftOrigin subtracts newOrigin from every node's bounds, letting a
// long-lived world re-center its coordinates before floating point
// precision at large coordinates becomes a problem. Nodes on the free list
// are shifted too since it's cheaper than skipping them, and it's harmless:
// allocateNode always resets a reused node's aabb before it's read again.
func (t *DynamicTree) ShiftOrigin(newOrigin Vec2) {
	for i := range t.nodes {
		t.nodes[i].aabb.LowerBound = t.nodes[i].aabb.LowerBound.Sub(newOrigin)
		t.nodes[i].aabb.UpperBound = t.nodes[i].aabb.UpperBound.Sub(newOrigin)
	}
}

func (t *DynamicTree) GetFatAABB(id int) AABB { return t.nodes[id].aabb }

func (t *DynamicTree) GetUserData(id int) interface{} { return t.nodes[id].userData }

func (t *DynamicTree) WasMoved(id int) bool { return t.nodes[id].moved }

func (t *DynamicTree) ClearMoved(id int) { t.nodes[id].moved = false }

func (t *DynamicTree) insertLeaf(leaf int) {
	t.insertionCount++

	if t.root == nullNode {
		t.root = leaf
		t.nodes[leaf].parentOrNext = nullNode
		return
	}

	leafAABB := t.nodes[leaf].aabb
	index := t.root
	for !t.nodes[index].isLeaf() {
		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2

		area := t.nodes[index].aabb.Perimeter()
		combined := CombineAABBs(t.nodes[index].aabb, leafAABB)
		combinedArea := combined.Perimeter()

		cost := 2.0 * combinedArea
		inheritanceCost := 2.0 * (combinedArea - area)

		cost1 := t.childCost(child1, leafAABB) + inheritanceCost
		cost2 := t.childCost(child2, leafAABB) + inheritanceCost

		if cost < cost1 && cost < cost2 {
			break
		}
		if cost1 < cost2 {
			index = child1
		} else {
			index = child2
		}
	}

	sibling := index
	oldParent := t.nodes[sibling].parentOrNext
	newParent := t.allocateNode()
	t.nodes[newParent].parentOrNext = oldParent
	t.nodes[newParent].aabb = CombineAABBs(leafAABB, t.nodes[sibling].aabb)
	t.nodes[newParent].height = t.nodes[sibling].height + 1

	if oldParent != nullNode {
		if t.nodes[oldParent].child1 == sibling {
			t.nodes[oldParent].child1 = newParent
		} else {
			t.nodes[oldParent].child2 = newParent
		}
		t.nodes[newParent].child1 = sibling
		t.nodes[newParent].child2 = leaf
		t.nodes[sibling].parentOrNext = newParent
		t.nodes[leaf].parentOrNext = newParent
	} else {
		t.nodes[newParent].child1 = sibling
		t.nodes[newParent].child2 = leaf
		t.nodes[sibling].parentOrNext = newParent
		t.nodes[leaf].parentOrNext = newParent
		t.root = newParent
	}

	index = t.nodes[leaf].parentOrNext
	for index != nullNode {
		index = t.balance(index)

		child1 := t.nodes[index].child1
		child2 := t.nodes[index].child2

		t.nodes[index].height = 1 + maxInt(t.nodes[child1].height, t.nodes[child2].height)
		t.nodes[index].aabb = CombineAABBs(t.nodes[child1].aabb, t.nodes[child2].aabb)

		index = t.nodes[index].parentOrNext
	}
}

func (t *DynamicTree) childCost(child int, leafAABB AABB) float64 {
	combined := CombineAABBs(leafAABB, t.nodes[child].aabb)
	if t.nodes[child].isLeaf() {
		return combined.Perimeter()
	}
	oldArea := t.nodes[child].aabb.Perimeter()
	newArea := combined.Perimeter()
	return (newArea - oldArea)
}

func (t *DynamicTree) removeLeaf(leaf int) {
	if leaf == t.root {
		t.root = nullNode
		return
	}

	parent := t.nodes[leaf].parentOrNext
	grandParent := t.nodes[parent].parentOrNext
	var sibling int
	if t.nodes[parent].child1 == leaf {
		sibling = t.nodes[parent].child2
	} else {
		sibling = t.nodes[parent].child1
	}

	if grandParent != nullNode {
		if t.nodes[grandParent].child1 == parent {
			t.nodes[grandParent].child1 = sibling
		} else {
			t.nodes[grandParent].child2 = sibling
		}
		t.nodes[sibling].parentOrNext = grandParent
		t.freeNode(parent)

		index := grandParent
		for index != nullNode {
			index = t.balance(index)
			child1 := t.nodes[index].child1
			child2 := t.nodes[index].child2
			t.nodes[index].aabb = CombineAABBs(t.nodes[child1].aabb, t.nodes[child2].aabb)
			t.nodes[index].height = 1 + maxInt(t.nodes[child1].height, t.nodes[child2].height)
			index = t.nodes[index].parentOrNext
		}
	} else {
		t.root = sibling
		t.nodes[sibling].parentOrNext = nullNode
		t.freeNode(parent)
	}
}

// balance performs one AVL-style rotation to keep the subtree rooted at iA
// within a height difference of 1 between children, restoring the invariant
// spec.md §8 requires after every tree mutation.
func (t *DynamicTree) balance(iA int) int {
	a := &t.nodes[iA]
	if a.isLeaf() || a.height < 2 {
		return iA
	}

	iB, iC := a.child1, a.child2
	b, c := &t.nodes[iB], &t.nodes[iC]

	balance := c.height - b.height

	if balance > 1 {
		iF, iG := c.child1, c.child2
		f, g := &t.nodes[iF], &t.nodes[iG]

		c.child1 = iA
		c.parentOrNext = a.parentOrNext
		a.parentOrNext = iC

		if c.parentOrNext != nullNode {
			if t.nodes[c.parentOrNext].child1 == iA {
				t.nodes[c.parentOrNext].child1 = iC
			} else {
				t.nodes[c.parentOrNext].child2 = iC
			}
		} else {
			t.root = iC
		}

		if f.height > g.height {
			c.child2 = iF
			a.child2 = iG
			g.parentOrNext = iA
			a.aabb = CombineAABBs(b.aabb, g.aabb)
			c.aabb = CombineAABBs(a.aabb, f.aabb)
			a.height = 1 + maxInt(b.height, g.height)
			c.height = 1 + maxInt(a.height, f.height)
		} else {
			c.child2 = iG
			a.child2 = iF
			f.parentOrNext = iA
			a.aabb = CombineAABBs(b.aabb, f.aabb)
			c.aabb = CombineAABBs(a.aabb, g.aabb)
			a.height = 1 + maxInt(b.height, f.height)
			c.height = 1 + maxInt(a.height, g.height)
		}
		return iC
	}

	if balance < -1 {
		iD, iE := b.child1, b.child2
		d, e := &t.nodes[iD], &t.nodes[iE]

		b.child1 = iA
		b.parentOrNext = a.parentOrNext
		a.parentOrNext = iB

		if b.parentOrNext != nullNode {
			if t.nodes[b.parentOrNext].child1 == iA {
				t.nodes[b.parentOrNext].child1 = iB
			} else {
				t.nodes[b.parentOrNext].child2 = iB
			}
		} else {
			t.root = iB
		}

		if d.height > e.height {
			b.child2 = iD
			a.child1 = iE
			e.parentOrNext = iA
			a.aabb = CombineAABBs(c.aabb, e.aabb)
			b.aabb = CombineAABBs(a.aabb, d.aabb)
			a.height = 1 + maxInt(c.height, e.height)
			b.height = 1 + maxInt(a.height, d.height)
		} else {
			b.child2 = iE
			a.child1 = iD
			d.parentOrNext = iA
			a.aabb = CombineAABBs(c.aabb, d.aabb)
			b.aabb = CombineAABBs(a.aabb, e.aabb)
			a.height = 1 + maxInt(c.height, d.height)
			b.height = 1 + maxInt(a.height, e.height)
		}
		return iB
	}

	return iA
}

func (t *DynamicTree) GetHeight() int {
	if t.root == nullNode {
		return 0
	}
	return t.nodes[t.root].height
}

// GetAreaRatio compares total node perimeter to the root's, a measure of
// how much the tree has bloated from repeated insert/remove churn.
func (t *DynamicTree) GetAreaRatio() float64 {
	if t.root == nullNode {
		return 0.0
	}
	rootArea := t.nodes[t.root].aabb.Perimeter()
	totalArea := 0.0
	for i := range t.nodes {
		n := &t.nodes[i]
		if n.height < 0 {
			continue
		}
		totalArea += n.aabb.Perimeter()
	}
	return totalArea / rootArea
}

// Query invokes callback for every leaf whose fat AABB overlaps aabb;
// callback returns false to stop the traversal early.
func (t *DynamicTree) Query(aabb AABB, callback func(nodeID int) bool) {
	if t.root == nullNode {
		return
	}
	stack := []int{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}
		n := &t.nodes[id]
		if !n.aabb.TestOverlap(aabb) {
			continue
		}
		if n.isLeaf() {
			if !callback(id) {
				return
			}
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}

// RayCast invokes callback(nodeID) for every leaf whose fat AABB the segment
// may cross, letting callback progressively narrow the ray's max fraction
// (returning 0 to terminate, a positive value to make it the new max
// fraction, or a negative value to continue with the fraction unchanged).
func (t *DynamicTree) RayCast(input RayCastInput, callback func(nodeID int, input RayCastInput) float64) {
	p1, p2 := input.P1, input.P2
	r := p2.Sub(p1)
	if r.LengthSquared() < Epsilon {
		return
	}
	r, _ = r.Normalize()
	v := CrossScalarVec(1.0, r)
	absV := Vec2{math.Abs(v.X), math.Abs(v.Y)}

	maxFraction := input.MaxFraction
	t1 := p1
	t2 := p1.Add(p2.Sub(p1).Scale(maxFraction))
	segmentAABB := AABB{LowerBound: Min(t1, t2), UpperBound: Max(t1, t2)}

	stack := []int{t.root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == nullNode {
			continue
		}
		n := &t.nodes[id]
		if !n.aabb.TestOverlap(segmentAABB) {
			continue
		}

		c := n.aabb.Center()
		h := n.aabb.Extents()
		separation := math.Abs(v.Dot(p1.Sub(c))) - absV.Dot(h)
		if separation > 0.0 {
			continue
		}

		if n.isLeaf() {
			subInput := RayCastInput{P1: input.P1, P2: input.P2, MaxFraction: maxFraction}
			f := callback(id, subInput)
			if f == 0.0 {
				return
			}
			if f > 0.0 {
				maxFraction = f
				t2 = p1.Add(p2.Sub(p1).Scale(maxFraction))
				segmentAABB = AABB{LowerBound: Min(t1, t2), UpperBound: Max(t1, t2)}
			}
		} else {
			stack = append(stack, n.child1, n.child2)
		}
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
