package plume

import (
	"math"

	"github.com/akmonengine/plume/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Force acts on one or more bodies by adjusting their velocities. The
// orchestrator calls Step once per substep for every body combination the
// force is bound to, and Reset once per episode.
type Force interface {
	Step(substeps int, bodies ...*actor.Body) error
	Reset(state *State) error
}

// Corrective adjusts body velocities after all forces have been applied
// within a substep, typically to enforce a constraint (collision
// separation, rigid tether, maze confinement). Physics itself implements
// Corrective, so orchestrators compose.
type Corrective interface {
	ApplyPhysics(state *State, substeps int) error
	Reset(state *State) error
}

// Selector names the layers that can fill one argument slot of a force.
type Selector []string

// On is a convenience constructor for a Selector.
func On(layers ...string) Selector {
	return Selector(layers)
}

// ForceBinding pairs a force with one selector per argument slot. The
// orchestrator steps the force over the cartesian product of the selectors'
// layers, and of the bodies within the chosen layers.
type ForceBinding struct {
	Force     Force
	Selectors []Selector
}

// Bind builds a ForceBinding.
func Bind(force Force, selectors ...Selector) ForceBinding {
	return ForceBinding{Force: force, Selectors: selectors}
}

// applyNewtonian converts raw forces to velocity deltas, F = ma integrated
// over one substep. Dividing by substeps keeps a force's effective strength
// independent of the substep count. Bodies with non-finite mass are skipped
// so an immovable body never accumulates NaN velocity.
func applyNewtonian(substeps int, bodies []*actor.Body, forces []mgl64.Vec2) {
	for i, body := range bodies {
		mass := body.Mass()
		if math.IsInf(mass, 0) || math.IsNaN(mass) {
			continue
		}
		deltaVel := forces[i].Mul(1 / (mass * float64(substeps)))
		body.SetVelocity(body.Velocity().Add(deltaVel))
	}
}
