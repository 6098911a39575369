package plume

import (
	"fmt"

	"github.com/akmonengine/plume/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// DownGravity pulls bodies along the y axis with force G * mass, as if on a
// planet surface. A negative G pulls down.
type DownGravity struct {
	G float64
}

func (f DownGravity) Step(substeps int, bodies ...*actor.Body) error {
	for _, body := range bodies {
		force := mgl64.Vec2{0, f.G * body.Mass()}
		applyNewtonian(substeps, []*actor.Body{body}, []mgl64.Vec2{force})
	}
	return nil
}

func (DownGravity) Reset(*State) error { return nil }

// Gravity acts between two bodies with force magnitude G * m0 * m1 *
// distance. A negative G attracts. Coincident centroids yield zero force. If
// Symmetric is false only the second body is affected, the first acting as a
// fixed attractor.
type Gravity struct {
	G         float64
	Symmetric bool
}

func (f Gravity) Step(substeps int, bodies ...*actor.Body) error {
	if len(bodies) != 2 {
		return fmt.Errorf("gravity acts on exactly 2 bodies, got %d", len(bodies))
	}
	b0, b1 := bodies[0], bodies[1]

	diff := b1.Position().Sub(b0.Position())
	dist := diff.Len()
	if dist == 0 {
		return nil
	}
	magnitude := f.G * b0.Mass() * b1.Mass() * dist
	force1 := diff.Mul(magnitude / dist)

	var force0 mgl64.Vec2
	if f.Symmetric {
		force0 = force1.Mul(-1)
	}
	applyNewtonian(substeps, bodies, []mgl64.Vec2{force0, force1})
	return nil
}

func (Gravity) Reset(*State) error { return nil }
