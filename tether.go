package plume

import (
	"fmt"
	"math"

	"github.com/akmonengine/plume/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Tether rigidly links all bodies of its layers so they move as one
// aggregate, optionally around a fixed anchor point. It is used as a
// corrective, after forces have set the per-body velocities.
//
// The tether only adjusts velocities and angular velocities. If member
// positions are changed directly, e.g. by a collision separation, the
// rigidity is momentarily violated.
type Tether struct {
	Layers []string
	// UpdateAngleVel simulates the aggregate's rotation. If false, every
	// member receives the aggregate translational velocity and zero
	// angular velocity.
	UpdateAngleVel bool
	// Anchor fixes the rotation center; the aggregate then has zero
	// translational velocity and members stay at a fixed distance from
	// the anchor.
	Anchor *mgl64.Vec2
}

// NewTether links the given layers with rotation enabled.
func NewTether(layers ...string) *Tether {
	return &Tether{Layers: layers, UpdateAngleVel: true}
}

func (t *Tether) ApplyPhysics(state *State, substeps int) error {
	var bodies []*actor.Body
	for _, name := range t.Layers {
		bodies = append(bodies, state.Layer(name)...)
	}
	tetherBodies(bodies, substeps, t.UpdateAngleVel, t.Anchor)
	return nil
}

func (t *Tether) Reset(*State) error { return nil }

// TetherZippedLayers tethers same-index bodies across its layers into
// independent rigid groups, one group per index, instead of one global
// group. The layers must have equal lengths.
type TetherZippedLayers struct {
	Layers         []string
	UpdateAngleVel bool
	Anchor         *mgl64.Vec2
}

// NewTetherZippedLayers zips the given layers with rotation enabled.
func NewTetherZippedLayers(layers ...string) *TetherZippedLayers {
	return &TetherZippedLayers{Layers: layers, UpdateAngleVel: true}
}

func (t *TetherZippedLayers) ApplyPhysics(state *State, substeps int) error {
	layers := make([][]*actor.Body, len(t.Layers))
	for i, name := range t.Layers {
		layers[i] = state.Layer(name)
		if len(layers[i]) != len(layers[0]) {
			return fmt.Errorf("%w: layer %q has %d bodies, layer %q has %d",
				ErrLayerLengthMismatch, name, len(layers[i]), t.Layers[0], len(layers[0]))
		}
	}

	group := make([]*actor.Body, len(layers))
	for i := range layers[0] {
		for j := range layers {
			group[j] = layers[j][i]
		}
		tetherBodies(group, substeps, t.UpdateAngleVel, t.Anchor)
	}
	return nil
}

func (t *TetherZippedLayers) Reset(*State) error { return nil }

// tetherBodies reassigns the bodies' velocities so they share one rigid
// motion: the aggregate translational velocity plus, with rotation, one
// aggregate angular velocity derived from the total angular momentum about
// the aggregate center. No-op on an empty set or infinite total mass.
func tetherBodies(bodies []*actor.Body, substeps int, updateAngleVel bool, anchor *mgl64.Vec2) {
	if len(bodies) == 0 {
		return
	}

	totalMass := 0.0
	for _, b := range bodies {
		totalMass += b.Mass()
	}
	if math.IsInf(totalMass, 0) {
		return
	}

	var centerOfMass, totalMomentum mgl64.Vec2
	for _, b := range bodies {
		centerOfMass = centerOfMass.Add(b.Position().Mul(b.Mass()))
		totalMomentum = totalMomentum.Add(b.Velocity().Mul(b.Mass()))
	}
	centerOfMass = centerOfMass.Mul(1 / totalMass)
	totalVelocity := totalMomentum.Mul(1 / totalMass)

	if anchor != nil {
		centerOfMass = *anchor
		totalVelocity = mgl64.Vec2{}
	}

	if !updateAngleVel {
		for _, b := range bodies {
			b.SetVelocity(totalVelocity)
			b.SetAngleVel(0)
		}
		return
	}

	totalAngularMomentum := 0.0
	totalMomentOfInertia := 0.0
	radii := make([]float64, len(bodies))
	perpendiculars := make([]mgl64.Vec2, len(bodies))
	for i, b := range bodies {
		momentum, moment, radius, perpendicular := changeRotationCoordinates(
			b, centerOfMass, totalVelocity, substeps)
		totalAngularMomentum += momentum
		totalMomentOfInertia += moment
		radii[i] = radius
		perpendiculars[i] = perpendicular
	}
	totalAngularVelocity := totalAngularMomentum / totalMomentOfInertia

	for i, b := range bodies {
		b.SetVelocity(totalVelocity.Add(perpendiculars[i].Mul(radii[i] * totalAngularVelocity)))
		b.SetAngleVel(totalAngularVelocity)
	}
}

// changeRotationCoordinates expresses a body's rotation about a new
// origin: its angular momentum (orbital via the lever arm, plus spin), its
// moment of inertia by the parallel-axis theorem, and the lever-arm radius
// and perpendicular direction.
//
// The lever arm is taken at the midpoint of the body's motion over the
// substep, which keeps the orbit radius stable under discrete time. A body
// sitting on the origin contributes its spin only.
func changeRotationCoordinates(body *actor.Body, origin, originVelocity mgl64.Vec2, substeps int) (momentum, moment, radius float64, perpendicular mgl64.Vec2) {
	deltaPosition := body.Velocity().Mul(1 / float64(substeps))
	parallel := body.Position().Add(deltaPosition.Mul(0.5)).Sub(origin)
	radius = parallel.Len()

	inertia := body.MomentOfInertia()
	if radius == 0 {
		return body.AngleVel() * inertia, inertia, 0, mgl64.Vec2{}
	}

	parallel = parallel.Mul(1 / radius)
	perpendicular = mgl64.Vec2{-parallel[1], parallel[0]}

	perpVelocity := body.Velocity().Sub(originVelocity).Dot(perpendicular)
	momentum = perpVelocity*body.Mass()*radius + body.AngleVel()*inertia
	moment = inertia + body.Mass()*radius*radius
	return momentum, moment, radius, perpendicular
}
