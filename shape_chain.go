package vela2d

// Chain is a free-form, two-sided sequence of line segments. Each consecutive
// pair of vertices is a child Edge; ghost vertices are threaded from
// neighbors so narrow-phase collision against a chain is as smooth as
// against one continuous edge.
type Chain struct {
	Vertices []Vec2

	prevVertex    Vec2
	nextVertex    Vec2
	hasPrevVertex bool
	hasNextVertex bool

	radius float64
}

func NewChain() *Chain {
	return &Chain{radius: PolygonRadius}
}

func (c *Chain) Type() ShapeType { return ShapeChain }

func (c *Chain) Radius() float64 { return c.radius }

func (c *Chain) Clone() Shape {
	clone := *c
	clone.Vertices = append([]Vec2(nil), c.Vertices...)
	return &clone
}

func (c *Chain) ChildCount() int {
	if len(c.Vertices) == 0 {
		return 0
	}
	return len(c.Vertices) - 1
}

// CreateLoop builds a closed chain: the last vertex is wired back to the
// first with ghost vertices on both ends.
func (c *Chain) CreateLoop(vertices []Vec2) error {
	if len(vertices) < 3 {
		return newPrecondition("Chain.CreateLoop: need at least 3 vertices, got %d", len(vertices))
	}
	for i := 1; i < len(vertices); i++ {
		if vertices[i-1].DistanceSquaredTo(vertices[i]) <= LinearSlop*LinearSlop {
			return newPrecondition("Chain.CreateLoop: vertices %d and %d are too close together", i-1, i)
		}
	}
	c.Vertices = make([]Vec2, len(vertices)+1)
	copy(c.Vertices, vertices)
	c.Vertices[len(vertices)] = vertices[0]
	c.prevVertex = c.Vertices[len(c.Vertices)-2]
	c.nextVertex = c.Vertices[1]
	c.hasPrevVertex = true
	c.hasNextVertex = true
	return nil
}

// CreateChain builds an open chain with no implicit ghost vertices; call
// SetPrevVertex/SetNextVertex to stitch it to neighboring chains.
func (c *Chain) CreateChain(vertices []Vec2) error {
	if len(vertices) < 2 {
		return newPrecondition("Chain.CreateChain: need at least 2 vertices, got %d", len(vertices))
	}
	for i := 1; i < len(vertices); i++ {
		if vertices[i-1].DistanceSquaredTo(vertices[i]) <= LinearSlop*LinearSlop {
			return newPrecondition("Chain.CreateChain: vertices %d and %d are too close together", i-1, i)
		}
	}
	c.Vertices = append([]Vec2(nil), vertices...)
	c.hasPrevVertex = false
	c.hasNextVertex = false
	return nil
}

func (c *Chain) SetPrevVertex(v Vec2) { c.prevVertex = v; c.hasPrevVertex = true }
func (c *Chain) SetNextVertex(v Vec2) { c.nextVertex = v; c.hasNextVertex = true }

// ChildEdge materializes the childIndex'th segment as a standalone Edge with
// ghost vertices populated from the chain's neighbors, ready for narrow-phase
// collision.
func (c *Chain) ChildEdge(childIndex int) *Edge {
	e := NewEdge(c.Vertices[childIndex], c.Vertices[childIndex+1])
	e.radius = c.radius

	if childIndex > 0 {
		e.V0 = c.Vertices[childIndex-1]
		e.HasVertex0 = true
	} else {
		e.V0 = c.prevVertex
		e.HasVertex0 = c.hasPrevVertex
	}

	if childIndex < len(c.Vertices)-2 {
		e.V3 = c.Vertices[childIndex+2]
		e.HasVertex3 = true
	} else {
		e.V3 = c.nextVertex
		e.HasVertex3 = c.hasNextVertex
	}
	return e
}

func (c *Chain) TestPoint(xf Transform, p Vec2) bool { return false }

func (c *Chain) RayCast(input RayCastInput, xf Transform, childIndex int) (RayCastOutput, bool) {
	i2 := childIndex + 1
	if i2 == len(c.Vertices) {
		i2 = 0
	}
	edge := NewEdge(c.Vertices[childIndex], c.Vertices[i2])
	return edge.RayCast(input, xf, 0)
}

func (c *Chain) ComputeAABB(xf Transform, childIndex int) AABB {
	i2 := childIndex + 1
	if i2 == len(c.Vertices) {
		i2 = 0
	}
	v1 := xf.MulVec2(c.Vertices[childIndex])
	v2 := xf.MulVec2(c.Vertices[i2])
	return AABB{LowerBound: Min(v1, v2), UpperBound: Max(v1, v2)}
}

func (c *Chain) ComputeMass(density float64) MassData {
	return MassData{}
}
