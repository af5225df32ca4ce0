package constraint

import (
	"math"

	"github.com/akmonengine/plume/body"
)

// Link is a rigid distance constraint solved by sequential impulses with a
// soft-constraint γ term and a Baumgarte positional bias. The γ
// regularization makes the rigid equality constraint behave like a stiff
// spring-damper with analytically chosen parameters, which keeps the solver
// stable under stiff settings at large timesteps. The accumulated impulse is
// warm-started across steps.
type Link struct {
	element

	gamma float64
}

// NewLink creates a rigid link between a and b. The rest length is the
// current endpoint distance and must be positive.
func NewLink(dt float64, a, b *body.Node, stiffness, dampingRatio float64,
	actuated bool, maxImpulse float64) (*Link, error) {
	e, err := newElement(dt, a, b, stiffness, dampingRatio, actuated, maxImpulse)
	if err != nil {
		return nil, err
	}
	l := &Link{element: e}
	l.Refresh()
	a.Attach(l)
	b.Attach(l)
	return l, nil
}

func (l *Link) SetDt(dt float64) {
	l.dt = dt
	l.Refresh()
}

func (l *Link) SetStiffness(stiffness float64) {
	l.stiffness = stiffness
	l.Refresh()
}

func (l *Link) SetDampingRatio(dampingRatio float64) {
	l.dampingRatio = dampingRatio
	l.Refresh()
}

// Refresh re-derives the effective mass, the natural frequency and the γ
// regularization term. The warm-started impulse is discarded: a constraint
// change invalidates it.
func (l *Link) Refresh() {
	l.Active = !(l.NodeA.Fixed() && l.NodeB.Fixed())
	if !l.Active {
		return
	}
	l.invMass = l.NodeA.InvMass() + l.NodeB.InvMass()
	if l.invMass == 0 {
		l.mass = 0
	} else {
		l.mass = 1 / l.invMass
	}

	omega := math.Sqrt(l.stiffness * l.invMass)
	l.frequency = omega / (2 * math.Pi)
	damping := 2 * l.mass * l.dampingRatio * omega
	l.gamma = 1 / (l.dt * (damping + l.dt*l.stiffness))

	l.invMass += l.gamma
	l.mass = 1 / l.invMass
	l.impulse = 0
}

// Prestep refreshes the direction and the Baumgarte bias, then applies the
// previous step's accumulated impulse as a warm start. A degenerate element
// (coincident endpoints) is skipped for the step.
func (l *Link) Prestep() float64 {
	if !l.Active {
		return 0
	}
	d := l.distanceUnitVector()
	if d <= 0 {
		return 0
	}
	l.bias = (d - l.ExpandFactor*l.RelaxLength) * l.dt * l.stiffness * l.gamma
	l.applyImpulse(l.impulse)
	return l.impulse
}

// Substep applies one sequential-impulse iteration driving the relative
// velocity along the link toward the bias target.
func (l *Link) Substep() float64 {
	if !l.Active {
		return 0
	}
	vr := l.relativeVelocity()
	impulse := -l.mass * (vr + l.bias + l.gamma*l.impulse)
	if l.MaxImpulse > 0 {
		impulse = clamp(-l.MaxImpulse, l.impulse+impulse, l.MaxImpulse) - l.impulse
	}
	l.impulse += impulse
	l.applyImpulse(impulse)
	return impulse
}
