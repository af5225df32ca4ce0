package main

import (
	"github.com/edaniels/golog"

	"github.com/akmonengine/plume"
	"github.com/akmonengine/plume/body"
)

// A one-legged hopper: a heavy hip node over a foot node, joined by an
// actuated spring. Contracting and relaxing the spring in a fixed rhythm
// makes it bounce on the ground; sensors report the leg angle and whether
// the foot touches anything.
func main() {
	logger := golog.NewDevelopmentLogger("hopper")

	space, err := plume.NewSpace(0.005, 10, 0, -9.81, 0.1, logger)
	if err != nil {
		logger.Fatal(err)
	}

	if _, err := space.AddRect(-10, 10, -1, 0, 0.2); err != nil {
		logger.Fatal(err)
	}
	// a ramp on the right
	if _, err := space.AddTriangle(4, 0, 8, 0, 8, 2, 0.2); err != nil {
		logger.Fatal(err)
	}

	hip, err := space.AddNode(0, 1.0, 5.0, 0.8, false)
	if err != nil {
		logger.Fatal(err)
	}
	foot, err := space.AddNode(0, 0.2, 1.0, 0.8, false)
	if err != nil {
		logger.Fatal(err)
	}
	leg, err := space.AddSpring(hip, foot, 400, 0.3, true, 0)
	if err != nil {
		logger.Fatal(err)
	}

	legAngle := space.AddAngleSensor(hip, foot)
	legSpeed := space.AddAngularVelocitySensor(legAngle)
	touch := space.AddTouchSensor([]*body.Node{foot})

	for tick := 0; tick < 2000; tick++ {
		// crouch for 40 ticks, push off for 40
		if tick%80 < 40 {
			leg.Contract(0.6)
		} else {
			leg.Relax()
		}

		space.Step()
		space.Sensors.UpdateAll()

		if tick%100 == 0 {
			logger.Infof("t=%.2f hip=(%.3f, %.3f) angle=%.3f omega=%.3f airborne=%v",
				space.Time(), hip.Position.X(), hip.Position.Y(),
				legAngle.Value(), legSpeed.Value(), touch.Value() == 1.0)
		}
	}
}
