package body

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

// Bound on how far a node may travel in a single step. Large velocities are
// rescaled so that |dt·v| never exceeds this, which keeps a single
// ill-conditioned substep from blowing up the whole simulation.
const (
	MaxTranslation        = 2.0
	maxTranslationSquared = MaxTranslation * MaxTranslation
)

var ErrNonPositiveMass = errors.New("node mass must be positive")

// Refresher is anything whose derived quantities depend on a node parameter.
// Constraints attached to a node register themselves so that changing the
// node's mass or fixity re-derives their cached effective masses.
type Refresher interface {
	Refresh()
}

// Node is a point mass. It has no orientation and no rotational inertia;
// bodies are assembled from nodes joined by distance constraints.
type Node struct {
	Dt float64

	Position         mgl64.Vec2
	PreviousPosition mgl64.Vec2
	Velocity         mgl64.Vec2

	Friction float64
	// Colliding is set by the detectors when a contact manifold is produced
	// for this node, and cleared at the start of every step.
	Colliding bool

	attachments []Refresher

	mass    float64
	invMass float64
	fixed   bool
}

// NewNode creates a point mass at (x, y). Fixed nodes have zero inverse mass
// and never move; mass is still recorded so the node can be unfixed later.
func NewNode(dt, x, y, mass, friction float64, fixed bool) (*Node, error) {
	if mass <= 0 {
		return nil, errors.Wrapf(ErrNonPositiveMass, "mass %g", mass)
	}
	n := &Node{
		Dt:       dt,
		Position: mgl64.Vec2{x, y},
		Friction: friction,
		fixed:    fixed,
	}
	n.SetMass(mass)
	return n, nil
}

func (n *Node) Mass() float64 {
	return n.mass
}

// SetMass updates the mass and re-derives the inverse mass and every attached
// constraint's effective mass.
func (n *Node) SetMass(mass float64) {
	n.mass = mass
	if n.fixed {
		n.invMass = 0
	} else {
		n.invMass = 1 / mass
	}
	n.refreshAttachments()
}

func (n *Node) InvMass() float64 {
	return n.invMass
}

func (n *Node) Fixed() bool {
	return n.fixed
}

// SetFixed pins or releases the node. Releasing restores invMass = 1/mass
// exactly. Attached constraints are refreshed because their active state and
// effective mass depend on fixity.
func (n *Node) SetFixed(fixed bool) {
	if n.fixed != fixed {
		if fixed {
			n.invMass = 0
		} else {
			n.invMass = 1 / n.mass
		}
	}
	n.fixed = fixed
	n.refreshAttachments()
}

// Attach registers a constraint whose derived state depends on this node.
func (n *Node) Attach(r Refresher) {
	n.attachments = append(n.attachments, r)
}

func (n *Node) refreshAttachments() {
	for _, r := range n.attachments {
		r.Refresh()
	}
}

// UpdatePosition is the position half of the semi-implicit integrator, run
// exactly once per step after all impulses have been applied.
func (n *Node) UpdatePosition() {
	n.PreviousPosition = n.Position
	if n.fixed {
		n.Velocity = mgl64.Vec2{}
		return
	}
	translationSquared := n.Dt * n.Dt * n.Velocity.LenSqr()
	if translationSquared > maxTranslationSquared {
		n.Velocity = n.Velocity.Mul(MaxTranslation / math.Sqrt(translationSquared))
	}
	n.Position = n.Position.Add(n.Velocity.Mul(n.Dt))
}

// Translate moves the node without touching its velocity. Used to pose
// bodies before stepping.
func (n *Node) Translate(dx, dy float64) {
	n.Position[0] += dx
	n.Position[1] += dy
}
