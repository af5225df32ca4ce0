package constraint

import (
	"math"

	"github.com/akmonengine/plume/body"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
)

var (
	ErrCoincidentEndpoints  = errors.New("constraint endpoints coincide")
	ErrNonPositiveStiffness = errors.New("constraint stiffness must be positive")
)

// Constraint is a distance element between two nodes, solved by sequential
// impulses in two phases: Prestep runs once per step to cache per-constraint
// data and apply any carried impulse, Substep runs once per solver iteration.
// Both return the impulse they applied. Refresh re-derives the cached solver
// constants and must be called whenever dt, stiffness, damping, or an
// endpoint's mass or fixity changes.
type Constraint interface {
	Prestep() float64
	Substep() float64
	Refresh()
}

// element carries the state shared by rigid links and damped springs: the
// endpoints, the rest configuration, the actuation state, and the cached
// unit direction from node A to node B.
type element struct {
	NodeA *body.Node
	NodeB *body.Node

	Actuated bool
	// Active is false when both endpoints are fixed; an inactive element
	// applies no impulses.
	Active bool

	// ExpandFactor scales the target length; actuation drives it.
	ExpandFactor float64
	// RelaxLength is the distance between the endpoints at construction.
	RelaxLength float64
	// MaxLength is set to RelaxLength at construction; it is not updated as
	// the element stretches.
	MaxLength float64
	// MaxImpulse caps a Link's accumulated impulse magnitude when positive.
	// Spring does not apply it.
	MaxImpulse float64

	dt           float64
	stiffness    float64
	dampingRatio float64
	frequency    float64

	mass    float64
	invMass float64
	u       mgl64.Vec2
	bias    float64
	impulse float64
}

func newElement(dt float64, a, b *body.Node, stiffness, dampingRatio float64,
	actuated bool, maxImpulse float64) (element, error) {
	if stiffness <= 0 {
		return element{}, errors.Wrapf(ErrNonPositiveStiffness, "stiffness %g", stiffness)
	}
	e := element{
		NodeA: a, NodeB: b,
		Actuated:     actuated,
		ExpandFactor: 1.0,
		MaxImpulse:   maxImpulse,
		dt:           dt,
		stiffness:    stiffness,
		dampingRatio: dampingRatio,
	}
	e.RelaxLength = e.distanceUnitVector()
	if e.RelaxLength <= 0 {
		return element{}, errors.Wrapf(ErrCoincidentEndpoints, "at %v", a.Position)
	}
	e.MaxLength = e.RelaxLength
	return e, nil
}

// Length is the current distance between the endpoints.
func (e *element) Length() float64 {
	return e.NodeB.Position.Sub(e.NodeA.Position).Len()
}

func (e *element) Dt() float64 {
	return e.dt
}

func (e *element) Stiffness() float64 {
	return e.stiffness
}

func (e *element) DampingRatio() float64 {
	return e.dampingRatio
}

// Frequency is the element's natural frequency, in Hz.
func (e *element) Frequency() float64 {
	return e.frequency
}

// Contract sets the target length to factor·RelaxLength. This is how
// actuation drives motion without changing stiffness.
func (e *element) Contract(factor float64) {
	e.ExpandFactor = factor
}

// Relax restores the rest target length.
func (e *element) Relax() {
	e.ExpandFactor = 1.0
}

// Force is the average constraint force over the last step.
func (e *element) Force() float64 {
	return e.impulse / e.dt
}

// Impulse is the accumulated impulse of the current step.
func (e *element) Impulse() float64 {
	return e.impulse
}

// distanceUnitVector returns the distance between the endpoints and refreshes
// the cached unit direction. The direction is left untouched when the
// endpoints coincide.
func (e *element) distanceUnitVector() float64 {
	d := e.NodeB.Position.Sub(e.NodeA.Position)
	dist := d.Len()
	if dist > 0 {
		e.u = d.Mul(1 / dist)
	}
	return dist
}

// relativeVelocity is the endpoint velocity difference projected onto the
// element's direction.
func (e *element) relativeVelocity() float64 {
	return e.u.Dot(e.NodeB.Velocity.Sub(e.NodeA.Velocity))
}

// applyImpulse applies a signed impulse along the element's direction,
// pulling the endpoints together when negative.
func (e *element) applyImpulse(impulse float64) {
	if impulse == 0 {
		return
	}
	p := e.u.Mul(impulse)
	if !e.NodeA.Fixed() {
		e.NodeA.Velocity = e.NodeA.Velocity.Sub(p.Mul(e.NodeA.InvMass()))
	}
	if !e.NodeB.Fixed() {
		e.NodeB.Velocity = e.NodeB.Velocity.Add(p.Mul(e.NodeB.InvMass()))
	}
}

func clamp(lower, v, upper float64) float64 {
	return math.Max(lower, math.Min(v, upper))
}
