// Package sensor exposes derived quantities of a simulation: joint angles
// that stay continuous across ±π, filtered angular velocities, and aggregate
// touch state. Sensors are updated by the host after each step, not by the
// space itself, so a consistent post-step snapshot is read.
package sensor

import (
	"math"

	"github.com/akmonengine/plume/body"
)

// Sensor produces one scalar reading. Update recomputes it from the current
// simulation state and returns it; Value returns the last computed reading.
type Sensor interface {
	Update() float64
	Value() float64
}

// Hub holds an ordered list of sensors.
type Hub struct {
	Sensors []Sensor
}

func (h *Hub) AddSensor(s Sensor) {
	h.Sensors = append(h.Sensors, s)
}

// UpdateAll updates every sensor in order. Order matters: a relative angle
// sensor reads its reference's current value.
func (h *Hub) UpdateAll() {
	for _, s := range h.Sensors {
		s.Update()
	}
}

// AngleSensor reads the angle of the satellite node around the origin node.
// The value captured at construction is subtracted so the first reading is
// zero, and after initialization readings are unwrapped branch-by-branch:
// successive values differ by less than π, so the signal is continuous and
// unbounded, suitable for differentiation.
type AngleSensor struct {
	Origin    *body.Node
	Satellite *body.Node
	// Ref, when set, makes the reading relative to another angle sensor's
	// current value (joint angles between limbs).
	Ref *AngleSensor

	value          float64
	referenceAngle float64
	initialized    bool
}

func NewAngleSensor(origin, satellite *body.Node) *AngleSensor {
	s := &AngleSensor{Origin: origin, Satellite: satellite}
	s.referenceAngle = s.Update()
	s.value = 0
	return s
}

func NewRelativeAngleSensor(origin, satellite *body.Node, ref *AngleSensor) *AngleSensor {
	s := &AngleSensor{Origin: origin, Satellite: satellite, Ref: ref}
	s.referenceAngle = s.Update()
	s.value = 0
	return s
}

func (s *AngleSensor) Update() float64 {
	old := s.value
	d := s.Satellite.Position.Sub(s.Origin.Position)
	s.value = math.Atan2(d.Y(), d.X()) - s.referenceAngle
	if s.Ref != nil {
		s.value -= s.Ref.Value()
	}
	if s.initialized {
		// unwrap to the branch nearest the previous reading
		s.value += math.Round((old-s.value)/(2*math.Pi)) * (2 * math.Pi)
	}
	s.initialized = true
	return s.value
}

func (s *AngleSensor) Value() float64 {
	return s.value
}

// AngularVelocitySensor is a low-pass filtered finite difference of an angle
// sensor: ω ← ω/2 + (θ - θ_prev)/(2·dt). The angle sensor must be updated
// first each step.
type AngularVelocitySensor struct {
	Sensor *AngleSensor
	Dt     float64

	value         float64
	previousAngle float64
}

func NewAngularVelocitySensor(sensor *AngleSensor, dt float64) *AngularVelocitySensor {
	return &AngularVelocitySensor{
		Sensor:        sensor,
		Dt:            dt,
		previousAngle: sensor.Value(),
	}
}

func (s *AngularVelocitySensor) Update() float64 {
	angle := s.Sensor.Value()
	s.value = 0.5*s.value + 0.5*(angle-s.previousAngle)/s.Dt
	s.previousAngle = angle
	return s.value
}

func (s *AngularVelocitySensor) Value() float64 {
	return s.value
}

// TouchSensor reads 0.0 when any of its nodes collided during the last step,
// 1.0 otherwise.
type TouchSensor struct {
	Nodes []*body.Node

	value float64
}

func NewTouchSensor(nodes []*body.Node) *TouchSensor {
	s := &TouchSensor{Nodes: nodes}
	s.value = s.Update()
	return s
}

func (s *TouchSensor) Update() float64 {
	colliding := false
	for _, node := range s.Nodes {
		colliding = colliding || node.Colliding
	}
	if colliding {
		s.value = 0.0
	} else {
		s.value = 1.0
	}
	return s.value
}

func (s *TouchSensor) Value() float64 {
	return s.value
}
