package plume

import (
	"fmt"

	"github.com/akmonengine/plume/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// DistanceForce attracts or repels two bodies as a function of their
// distance alone. Fn maps a scalar distance to a signed force magnitude
// applied along the line between the centroids; positive pushes the second
// body away from the first. If Symmetric is false only the second body is
// affected.
type DistanceForce struct {
	Fn        func(distance float64) float64
	Symmetric bool
}

func (f DistanceForce) Step(substeps int, bodies ...*actor.Body) error {
	if len(bodies) != 2 {
		return fmt.Errorf("distance force acts on exactly 2 bodies, got %d", len(bodies))
	}
	b0, b1 := bodies[0], bodies[1]

	diff := b1.Position().Sub(b0.Position())
	dist := diff.Len()
	if dist == 0 {
		return nil
	}
	force1 := diff.Mul(f.Fn(dist) / dist)

	var force0 mgl64.Vec2
	if f.Symmetric {
		force0 = force1.Mul(-1)
	}
	applyNewtonian(substeps, bodies, []mgl64.Vec2{force0, force1})
	return nil
}

func (DistanceForce) Reset(*State) error { return nil }

// LinearForceFn returns a force magnitude linear in distance. The event
// horizon is the distance at which the force crosses zero; applyDistant and
// applyNearby gate the force beyond and within it.
func LinearForceFn(zeroIntercept, slope float64, applyDistant, applyNearby bool) func(float64) float64 {
	eventHorizon := -zeroIntercept / slope
	return func(distance float64) float64 {
		magnitude := zeroIntercept + slope*distance
		if !applyDistant && distance > eventHorizon {
			magnitude = 0
		}
		if !applyNearby && distance < eventHorizon {
			magnitude = 0
		}
		return magnitude
	}
}

// SpringForceFn returns a Hooke's law force with the given spring constant
// and equilibrium distance.
func SpringForceFn(springConstant, equilibrium float64) func(float64) float64 {
	return func(distance float64) float64 {
		return -springConstant * (distance - equilibrium)
	}
}
