package constraint

import (
	"math"

	"github.com/akmonengine/plume/body"
)

// Spring is an explicit damped harmonic element. Unlike Link it carries no γ
// regularization and no warm start: the impulse is re-seeded every prestep
// from the positional error, and each substep adds a viscous drag impulse
// d = 2·M·ζ·ω against the relative velocity.
type Spring struct {
	element

	damping  float64
	vSubstep float64
}

// NewSpring creates a damped spring between a and b. The rest length is the
// current endpoint distance and must be positive.
func NewSpring(dt float64, a, b *body.Node, stiffness, dampingRatio float64,
	actuated bool, maxImpulse float64) (*Spring, error) {
	e, err := newElement(dt, a, b, stiffness, dampingRatio, actuated, maxImpulse)
	if err != nil {
		return nil, err
	}
	s := &Spring{element: e}
	s.Refresh()
	a.Attach(s)
	b.Attach(s)
	return s, nil
}

func (s *Spring) SetDt(dt float64) {
	s.dt = dt
	s.Refresh()
}

func (s *Spring) SetStiffness(stiffness float64) {
	s.stiffness = stiffness
	s.Refresh()
}

func (s *Spring) SetDampingRatio(dampingRatio float64) {
	s.dampingRatio = dampingRatio
	s.Refresh()
}

// Refresh re-derives the effective mass, the natural frequency and the
// linear viscous damping coefficient.
func (s *Spring) Refresh() {
	s.Active = !(s.NodeA.Fixed() && s.NodeB.Fixed())
	if !s.Active {
		return
	}
	s.invMass = s.NodeA.InvMass() + s.NodeB.InvMass()
	s.mass = 1 / s.invMass

	omega := math.Sqrt(s.stiffness * s.invMass)
	s.frequency = omega / (2 * math.Pi)
	s.damping = 2 * s.mass * s.dampingRatio * omega
	s.impulse = 0
}

// Prestep seeds the step's impulse from the positional error and applies it.
// The sign is opposite Link's bias: here the term is used directly as an
// impulse, not as a velocity-level bias.
func (s *Spring) Prestep() float64 {
	if !s.Active {
		return 0
	}
	s.vSubstep = 0
	d := s.distanceUnitVector()
	if d <= 0 {
		return 0
	}
	s.bias = (s.ExpandFactor*s.RelaxLength - d) * s.stiffness * s.dt
	s.impulse = s.bias
	s.applyImpulse(s.impulse)
	return s.impulse
}

// Substep applies the viscous drag impulse against the relative velocity
// along the spring.
func (s *Spring) Substep() float64 {
	if !s.Active {
		return 0
	}
	vrn := s.relativeVelocity()
	vDrag := s.dt * s.damping * (s.vSubstep - vrn)
	s.vSubstep = vrn + vDrag
	s.impulse += vDrag
	s.applyImpulse(vDrag)
	return vDrag
}
