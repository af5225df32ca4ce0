package constraint

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSpringPrestepSeedsImpulseFromPositionalError(t *testing.T) {
	tests := []struct {
		name    string
		stretch float64
	}{
		{"stretched", 0.2},
		{"compressed", -0.2},
		{"at rest", 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestNode(t, 0, 0, 1, false)
			b := newTestNode(t, 2, 0, 1, false)
			s, err := NewSpring(0.01, a, b, 100, 0.5, false, 0)
			if err != nil {
				t.Fatal(err)
			}

			b.Translate(tt.stretch, 0)

			got := s.Prestep()
			want := (s.RelaxLength - (2 + tt.stretch)) * 100 * 0.01
			if math.Abs(got-want) > 1e-12 {
				t.Errorf("Prestep() = %v, want %v", got, want)
			}
			if s.Impulse() != got {
				t.Errorf("Impulse() = %v, want the seeded value %v", s.Impulse(), got)
			}
		})
	}
}

func TestSpringNoWarmStartAcrossSteps(t *testing.T) {
	a := newTestNode(t, 0, 0, 1, false)
	b := newTestNode(t, 2, 0, 1, false)
	s, err := NewSpring(0.01, a, b, 100, 0.5, false, 0)
	if err != nil {
		t.Fatal(err)
	}

	b.Translate(0.3, 0)
	s.Prestep()
	for k := 0; k < 10; k++ {
		s.Substep()
	}

	// restore the rest configuration: the next prestep reseeds from the
	// positional error alone, so the impulse is zero again
	b.Position = mgl64.Vec2{2, 0}
	a.Velocity, b.Velocity = mgl64.Vec2{}, mgl64.Vec2{}
	if got := s.Prestep(); got != 0 {
		t.Errorf("Prestep() = %v, want 0 at rest length", got)
	}
}

func TestSpringZeroDampingSubstepIsNoOp(t *testing.T) {
	a := newTestNode(t, 0, 0, 1, false)
	b := newTestNode(t, 2, 0, 1, false)
	s, err := NewSpring(0.01, a, b, 100, 0.0, false, 0)
	if err != nil {
		t.Fatal(err)
	}

	a.Velocity = mgl64.Vec2{0.5, 0}
	b.Velocity = mgl64.Vec2{-0.5, 0}

	for k := 0; k < 5; k++ {
		if got := s.Substep(); got != 0 {
			t.Fatalf("Substep() = %v, want 0 with zero damping", got)
		}
	}
	if a.Velocity != (mgl64.Vec2{0.5, 0}) || b.Velocity != (mgl64.Vec2{-0.5, 0}) {
		t.Error("zero-damping substeps must not touch velocities")
	}
}

func TestSpringDampingOpposesRelativeVelocity(t *testing.T) {
	a := newTestNode(t, 0, 0, 1, false)
	b := newTestNode(t, 2, 0, 1, false)
	s, err := NewSpring(0.01, a, b, 100, 0.8, false, 0)
	if err != nil {
		t.Fatal(err)
	}

	// endpoints separating along the spring axis
	a.Velocity = mgl64.Vec2{-1, 0}
	b.Velocity = mgl64.Vec2{1, 0}
	before := s.relativeVelocity()

	s.Prestep()
	s.Substep()

	after := s.relativeVelocity()
	if math.Abs(after) >= math.Abs(before) {
		t.Errorf("relative velocity |%v| should shrink below |%v|", after, before)
	}
}

func TestSpringRefreshDerivedQuantities(t *testing.T) {
	a := newTestNode(t, 0, 0, 2, false)
	b := newTestNode(t, 1, 0, 2, false)
	s, err := NewSpring(0.01, a, b, 400, 0.5, false, 0)
	if err != nil {
		t.Fatal(err)
	}

	// invMass = 1, omega = sqrt(400), damping = 2 M zeta omega = 2*1*0.5*20
	if math.Abs(s.damping-20) > 1e-12 {
		t.Errorf("damping = %v, want 20", s.damping)
	}
	wantFrequency := 20 / (2 * math.Pi)
	if math.Abs(s.Frequency()-wantFrequency) > 1e-12 {
		t.Errorf("Frequency() = %v, want %v", s.Frequency(), wantFrequency)
	}

	s.Refresh()
	if math.Abs(s.damping-20) > 1e-12 {
		t.Error("Refresh should be idempotent")
	}
}

func TestSpringBothFixedInactive(t *testing.T) {
	a := newTestNode(t, 0, 0, 1, true)
	b := newTestNode(t, 1, 0, 1, true)
	s, err := NewSpring(0.01, a, b, 100, 0.5, false, 0)
	if err != nil {
		t.Fatal(err)
	}

	if s.Active {
		t.Error("spring with both endpoints fixed should be inactive")
	}
	if got := s.Substep(); got != 0 {
		t.Errorf("Substep() = %v, want 0", got)
	}
}
