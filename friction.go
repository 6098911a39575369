package plume

import (
	"github.com/akmonengine/plume/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// KineticFriction applies a velocity-independent force -Coeff * mass
// opposing each body's direction of motion.
type KineticFriction struct {
	Coeff float64
}

func (f KineticFriction) Step(substeps int, bodies ...*actor.Body) error {
	for _, body := range bodies {
		velocity := body.Velocity()
		norm := velocity.Len()
		var force mgl64.Vec2
		if norm > 0 {
			force = velocity.Mul(-f.Coeff * body.Mass() / norm)
		}
		applyNewtonian(substeps, []*actor.Body{body}, []mgl64.Vec2{force})
	}
	return nil
}

func (KineticFriction) Reset(*State) error { return nil }

// Drag applies a force -Coeff * mass * velocity. Unlike KineticFriction it
// scales with speed, which keeps joystick-controlled velocities from
// exploding.
type Drag struct {
	Coeff float64
}

func (f Drag) Step(substeps int, bodies ...*actor.Body) error {
	for _, body := range bodies {
		force := body.Velocity().Mul(-f.Coeff * body.Mass())
		applyNewtonian(substeps, []*actor.Body{body}, []mgl64.Vec2{force})
	}
	return nil
}

func (Drag) Reset(*State) error { return nil }
