package plume

import (
	"math"

	"github.com/edaniels/golog"

	"github.com/akmonengine/plume/body"
	"github.com/akmonengine/plume/shape"
)

// Collision is a rect-node contact manifold. It lives for a single step: the
// detector projects the node onto the nearest face at construction, and each
// solver iteration accumulates velocity corrections against that face.
type Collision struct {
	Rect *shape.Rect
	Node *body.Node

	Threshold float64
	// DiffVX and DiffVY accumulate the velocity corrections applied across
	// substeps, so the whole step amounts to a single consistent impulse
	// rather than n independent ones.
	DiffVX, DiffVY float64

	// xNotY is true when the shallower penetration axis is x.
	xNotY    bool
	disabled bool
	bias     float64
}

// newCollision builds the manifold for a node inside rect. The node is
// projected to the nearest face. A node already separating along the contact
// axis disables the manifold; a node slower than the restitution threshold
// gets a zero bias so slow contacts settle instead of jittering.
func newCollision(rect *shape.Rect, node *body.Node, threshold float64) *Collision {
	c := &Collision{Rect: rect, Node: node, Threshold: threshold}

	diffL := node.Position.X() - rect.Left
	diffR := rect.Right - node.Position.X()
	diffB := node.Position.Y() - rect.Bottom
	diffT := rect.Top - node.Position.Y()

	c.xNotY = math.Min(diffL, diffR) < math.Min(diffB, diffT)
	if c.xNotY {
		if diffL < diffR {
			node.Position[0] = rect.Left
			switch {
			case node.Velocity.X() < 0:
				c.disabled = true
			case node.Velocity.X() < threshold:
				c.bias = 0
			default:
				c.bias = -node.Velocity.X() * rect.Restitution
			}
		} else {
			node.Position[0] = rect.Right
			switch {
			case node.Velocity.X() > 0:
				c.disabled = true
			case node.Velocity.X() > -threshold:
				c.bias = 0
			default:
				c.bias = -node.Velocity.X() * rect.Restitution
			}
		}
	} else {
		if diffB < diffT {
			node.Position[1] = rect.Bottom
			switch {
			case node.Velocity.Y() < 0:
				c.disabled = true
			case node.Velocity.Y() < threshold:
				c.bias = 0
			default:
				c.bias = -node.Velocity.Y() * rect.Restitution
			}
		} else {
			node.Position[1] = rect.Top
			switch {
			case node.Velocity.Y() > 0:
				c.disabled = true
			case node.Velocity.Y() > -threshold:
				c.bias = 0
			default:
				c.bias = -node.Velocity.Y() * rect.Restitution
			}
		}
	}
	return c
}

// Substep applies one solver iteration: a friction correction along the face,
// clamped by the accumulated normal velocity correction, then a normal
// correction driving the node toward the bias velocity. A tangential speed
// above 1 halves the friction bound (dynamic vs static friction).
func (c *Collision) Substep() {
	if c.disabled {
		return
	}
	node := c.Node

	if c.xNotY {
		// friction
		maxFriction := node.Friction * math.Abs(c.DiffVX)
		if math.Abs(node.Velocity.Y()) > 1 {
			maxFriction /= 2 // moving: dynamic friction
		}
		newDiffVY := clamp(-maxFriction, c.DiffVY-node.Velocity.Y(), maxFriction)
		node.Velocity[1] += newDiffVY - c.DiffVY
		c.DiffVY = newDiffVY
		// restitution
		newDiffVX := c.DiffVX + c.bias - node.Velocity.X()
		node.Velocity[0] += newDiffVX - c.DiffVX
		c.DiffVX = newDiffVX
	} else {
		// friction
		maxFriction := node.Friction * math.Abs(c.DiffVY)
		if math.Abs(node.Velocity.X()) > 1 {
			maxFriction /= 2 // moving: dynamic friction
		}
		newDiffVX := clamp(-maxFriction, c.DiffVX-node.Velocity.X(), maxFriction)
		node.Velocity[0] += newDiffVX - c.DiffVX
		c.DiffVX = newDiffVX
		// restitution
		newDiffVY := c.DiffVY + c.bias - node.Velocity.Y()
		node.Velocity[1] += newDiffVY - c.DiffVY
		c.DiffVY = newDiffVY
	}
}

func clamp(lower, v, upper float64) float64 {
	return math.Max(lower, math.Min(v, upper))
}

// CollisionDetector finds rect-node contacts through a uniform spatial grid
// broad phase followed by the exact containment test.
type CollisionDetector struct {
	Rects []*shape.Rect

	grid   grid[*shape.Rect]
	logger golog.Logger
}

// NewCollisionDetector creates a detector with the given cell sizes. A
// non-positive size is auto-derived from the obstacle set at the first
// detection.
func NewCollisionDetector(sizeX, sizeY float64, logger golog.Logger) *CollisionDetector {
	return &CollisionDetector{
		grid:   newGrid[*shape.Rect](sizeX, sizeY),
		logger: logger,
	}
}

// AddRect registers a rect and marks the grid dirty.
func (d *CollisionDetector) AddRect(r *shape.Rect) {
	d.Rects = append(d.Rects, r)
	d.grid.invalidate()
}

// Detect appends a manifold to out for every node contained in a rect of its
// bin, marking those nodes as colliding. Manifolds are produced node-major,
// rect-minor; the solver relies on this order.
func (d *CollisionDetector) Detect(nodes []*body.Node, threshold float64, out []*Collision) []*Collision {
	if len(d.Rects) == 0 || len(nodes) == 0 {
		return out
	}
	if !d.grid.ready {
		d.grid.rebuild(d.Rects, (*shape.Rect).Bounds, d.logger, "rect")
	}

	for _, node := range nodes {
		for _, rect := range d.grid.at(node.Position.X(), node.Position.Y()) {
			if rect.Contains(node.Position) {
				out = append(out, newCollision(rect, node, threshold))
				node.Colliding = true
			}
		}
	}
	return out
}
