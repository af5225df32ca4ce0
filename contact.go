package plume

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/akmonengine/plume/body"
	"github.com/akmonengine/plume/shape"
)

// Contact is a triangle-node contact manifold, expressed in the local frame
// of one triangle segment. Like Collision it lives for a single step.
type Contact struct {
	Node    *body.Node
	Segment *shape.Segment

	// Point is the node position latched by Prepare, after projection.
	Point mgl64.Vec2

	Restitution float64
	Threshold   float64
	// DiffVN and DiffVT accumulate the normal and tangential velocity
	// corrections applied across substeps.
	DiffVN, DiffVT float64

	Active bool

	bias float64
}

// Prepare latches the detection-time position and the restitution bias. It
// runs once per step, between detection and the first substep.
func (c *Contact) Prepare() {
	c.Point = c.Node.Position
	vn := c.Node.Velocity.Dot(c.Segment.Normal)
	c.bias = vn * c.Restitution
}

// Reset clears the manifold for reuse.
func (c *Contact) Reset() {
	c.DiffVN = 0
	c.DiffVT = 0
	c.Active = false
}

// Substep applies one solver iteration in the segment's local frame: a
// friction correction along the tangent, clamped by the accumulated normal
// velocity correction, then a restitution correction along the normal.
// A tangential speed above 1 halves the friction bound (dynamic vs static
// friction).
func (c *Contact) Substep() {
	if !c.Active {
		return
	}
	node := c.Node

	// tangent: friction
	vt := node.Velocity.Dot(c.Segment.Tangent)
	maxFriction := node.Friction * math.Abs(c.DiffVN)
	if math.Abs(vt) > 1 {
		maxFriction /= 2 // moving: dynamic friction
	}
	newDiffVT := clamp(-maxFriction, c.DiffVT-vt, maxFriction)
	node.Velocity = node.Velocity.Add(c.Segment.Tangent.Mul(newDiffVT - c.DiffVT))
	c.DiffVT = newDiffVT

	// normal: restitution
	vn := node.Velocity.Dot(c.Segment.Normal)
	newDiffVN := c.DiffVN - vn - c.bias
	node.Velocity = node.Velocity.Add(c.Segment.Normal.Mul(newDiffVN - c.DiffVN))
	c.DiffVN = newDiffVN
}

// collideTriangle runs the exact containment test and fills the contact. A
// node strictly inside the triangle is projected out along the normal of the
// segment with the largest signed distance (the nearest edge), and the
// contact attaches to that segment.
func collideTriangle(t *shape.Triangle, node *body.Node, c *Contact) {
	c.Active = false

	if !t.Bounds().Contains(node.Position) {
		return
	}

	var dots [3]float64
	for i := range t.Segments {
		dots[i] = t.Segments[i].DistanceAlongNormal(node.Position)
		if dots[i] > 0 {
			return
		}
	}
	for i := range t.Segments {
		// on the segment: inside the AABB with zero signed distance
		if dots[i] == 0 {
			c.Active = true
			c.Node = node
			c.Segment = &t.Segments[i]
			c.Restitution = t.Restitution
			return
		}
	}

	// strictly inside: project onto the nearest edge
	k := 0
	if dots[1] > dots[k] {
		k = 1
	}
	if dots[2] > dots[k] {
		k = 2
	}
	seg := &t.Segments[k]
	node.Position = node.Position.Sub(seg.Normal.Mul(dots[k]))

	c.Active = true
	c.Node = node
	c.Segment = seg
	c.Restitution = t.Restitution
}

// TriangleCollisionDetector finds triangle-node contacts through the same
// uniform grid broad phase as the rect detector.
type TriangleCollisionDetector struct {
	Triangles []*shape.Triangle

	grid   grid[*shape.Triangle]
	logger golog.Logger
}

// NewTriangleCollisionDetector creates a detector with the given cell sizes.
// A non-positive size is auto-derived from the obstacle set at the first
// detection.
func NewTriangleCollisionDetector(sizeX, sizeY float64, logger golog.Logger) *TriangleCollisionDetector {
	return &TriangleCollisionDetector{
		grid:   newGrid[*shape.Triangle](sizeX, sizeY),
		logger: logger,
	}
}

// AddTriangle registers a triangle and marks the grid dirty.
func (d *TriangleCollisionDetector) AddTriangle(t *shape.Triangle) {
	d.Triangles = append(d.Triangles, t)
	d.grid.invalidate()
}

// Detect appends a prepared manifold to out for every node touching a
// triangle of its bin, marking those nodes as colliding.
func (d *TriangleCollisionDetector) Detect(nodes []*body.Node, threshold float64, out []*Contact) []*Contact {
	if len(d.Triangles) == 0 || len(nodes) == 0 {
		return out
	}
	if !d.grid.ready {
		d.grid.rebuild(d.Triangles, (*shape.Triangle).Bounds, d.logger, "triangle")
	}

	for _, node := range nodes {
		for _, triangle := range d.grid.at(node.Position.X(), node.Position.Y()) {
			c := &Contact{Threshold: threshold}
			collideTriangle(triangle, node, c)
			if c.Active {
				node.Colliding = true
				c.Prepare()
				out = append(out, c)
			}
		}
	}
	return out
}
