package plume

import (
	"github.com/edaniels/golog"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"

	"github.com/akmonengine/plume/body"
	"github.com/akmonengine/plume/constraint"
	"github.com/akmonengine/plume/sensor"
	"github.com/akmonengine/plume/shape"
)

var ErrInvalidStep = errors.New("step size must be positive and substeps >= 1")

// Space is the root container of a simulation: it owns the nodes, the
// constraints, the static obstacles, the detectors and the sensors, and it
// advances them all with a fixed step.
//
// Step runs single-threaded and to completion; sequential impulses are
// order-dependent, so the per-substep ordering is part of the contract and
// results are reproducible for a given assembly order.
type Space struct {
	// Substeps is the number of solver iterations per step, typically 8-20.
	Substeps int
	Gravity  mgl64.Vec2
	// RestitutionThreshold is the normal speed below which contacts settle
	// instead of bouncing.
	RestitutionThreshold float64

	Nodes     []*body.Node
	Links     []*constraint.Link
	Springs   []*constraint.Spring
	Rects     []*shape.Rect
	Triangles []*shape.Triangle

	Sensors *sensor.Hub

	rectDetector     *CollisionDetector
	triangleDetector *TriangleCollisionDetector

	// scratch manifold buffers, reused across steps
	collisions []*Collision
	contacts   []*Contact

	dt     float64
	time   float64
	ticks  int
	logger golog.Logger
}

// NewSpace creates an empty space. The detectors auto-size their grid cells;
// use NewSpaceFromConfig to set explicit cell sizes.
func NewSpace(dt float64, substeps int, gravityX, gravityY, restitutionThreshold float64,
	logger golog.Logger) (*Space, error) {
	return newSpace(dt, substeps, gravityX, gravityY, restitutionThreshold, -1, -1, -1, -1, logger)
}

func newSpace(dt float64, substeps int, gravityX, gravityY, restitutionThreshold float64,
	rectCellX, rectCellY, triangleCellX, triangleCellY float64, logger golog.Logger) (*Space, error) {
	if dt <= 0 || substeps < 1 {
		return nil, errors.Wrapf(ErrInvalidStep, "dt %g, substeps %d", dt, substeps)
	}
	s := &Space{
		Substeps:             substeps,
		Gravity:              mgl64.Vec2{gravityX, gravityY},
		RestitutionThreshold: restitutionThreshold,
		Sensors:              &sensor.Hub{},
		rectDetector:         NewCollisionDetector(rectCellX, rectCellY, logger),
		triangleDetector:     NewTriangleCollisionDetector(triangleCellX, triangleCellY, logger),
		dt:                   dt,
		logger:               logger,
	}
	if logger != nil {
		logger.Debugf("space created: dt=%g substeps=%d gravity=(%g, %g)",
			dt, substeps, gravityX, gravityY)
	}
	return s, nil
}

func (s *Space) Dt() float64 {
	return s.dt
}

// SetDt changes the step size and refreshes every node and constraint, since
// their derived solver constants depend on it.
func (s *Space) SetDt(dt float64) {
	s.dt = dt
	for _, node := range s.Nodes {
		node.Dt = dt
	}
	for _, link := range s.Links {
		link.SetDt(dt)
	}
	for _, spring := range s.Springs {
		spring.SetDt(dt)
	}
	if s.logger != nil {
		s.logger.Debugf("space dt set to %g", dt)
	}
}

// Time is the simulated wall clock, in seconds.
func (s *Space) Time() float64 {
	return s.time
}

// Ticks is the number of completed steps.
func (s *Space) Ticks() int {
	return s.ticks
}

func (s *Space) AddNode(x, y, mass, friction float64, fixed bool) (*body.Node, error) {
	node, err := body.NewNode(s.dt, x, y, mass, friction, fixed)
	if err != nil {
		return nil, err
	}
	s.Nodes = append(s.Nodes, node)
	return node, nil
}

func (s *Space) AddLink(a, b *body.Node, stiffness, dampingRatio float64,
	actuated bool, maxImpulse float64) (*constraint.Link, error) {
	link, err := constraint.NewLink(s.dt, a, b, stiffness, dampingRatio, actuated, maxImpulse)
	if err != nil {
		return nil, err
	}
	s.Links = append(s.Links, link)
	return link, nil
}

func (s *Space) AddSpring(a, b *body.Node, stiffness, dampingRatio float64,
	actuated bool, maxImpulse float64) (*constraint.Spring, error) {
	spring, err := constraint.NewSpring(s.dt, a, b, stiffness, dampingRatio, actuated, maxImpulse)
	if err != nil {
		return nil, err
	}
	s.Springs = append(s.Springs, spring)
	return spring, nil
}

func (s *Space) AddRect(left, right, bottom, top, restitution float64) (*shape.Rect, error) {
	rect, err := shape.NewRect(left, right, bottom, top, restitution)
	if err != nil {
		return nil, err
	}
	s.Rects = append(s.Rects, rect)
	s.rectDetector.AddRect(rect)
	return rect, nil
}

func (s *Space) AddTriangle(ax, ay, bx, by, cx, cy, restitution float64) (*shape.Triangle, error) {
	triangle, err := shape.NewTriangle(ax, ay, bx, by, cx, cy, restitution)
	if err != nil {
		return nil, err
	}
	s.Triangles = append(s.Triangles, triangle)
	s.triangleDetector.AddTriangle(triangle)
	return triangle, nil
}

func (s *Space) AddAngleSensor(origin, satellite *body.Node) *sensor.AngleSensor {
	a := sensor.NewAngleSensor(origin, satellite)
	s.Sensors.AddSensor(a)
	return a
}

func (s *Space) AddRelativeAngleSensor(origin, satellite *body.Node, ref *sensor.AngleSensor) *sensor.AngleSensor {
	a := sensor.NewRelativeAngleSensor(origin, satellite, ref)
	s.Sensors.AddSensor(a)
	return a
}

func (s *Space) AddTouchSensor(nodes []*body.Node) *sensor.TouchSensor {
	t := sensor.NewTouchSensor(nodes)
	s.Sensors.AddSensor(t)
	return t
}

func (s *Space) AddAngularVelocitySensor(angle *sensor.AngleSensor) *sensor.AngularVelocitySensor {
	v := sensor.NewAngularVelocitySensor(angle, s.dt)
	s.Sensors.AddSensor(v)
	return v
}

// Step advances the simulation by one dt:
//
//  1. gravity impulses, colliding flags cleared
//  2. constraint presteps (warm starts and seed impulses)
//  3. fresh contact manifolds from both detectors
//  4. Substeps solver iterations, contacts before constraints so that
//     constraints cannot pull nodes back into obstacles before the contact
//     has reacted
//  5. position update
//
// Manifolds are not persisted across steps; warm starting is a property of
// link impulses only.
func (s *Space) Step() {
	for _, node := range s.Nodes {
		node.Colliding = false
		if !node.Fixed() {
			node.Velocity = node.Velocity.Add(s.Gravity.Mul(s.dt))
		}
	}

	for _, link := range s.Links {
		link.Prestep()
	}
	for _, spring := range s.Springs {
		spring.Prestep()
	}

	s.collisions = s.rectDetector.Detect(s.Nodes, s.RestitutionThreshold, s.collisions[:0])
	s.contacts = s.triangleDetector.Detect(s.Nodes, s.RestitutionThreshold, s.contacts[:0])

	for k := 0; k < s.Substeps; k++ {
		for _, collision := range s.collisions {
			collision.Substep()
		}
		for _, contact := range s.contacts {
			contact.Substep()
		}
		for _, link := range s.Links {
			link.Substep()
		}
		for _, spring := range s.Springs {
			spring.Substep()
		}
	}

	for _, node := range s.Nodes {
		node.UpdatePosition()
	}

	s.time += s.dt
	s.ticks++
}
