package plume

import (
	"fmt"
	"math"

	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/constraint"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// separationEpsilon keeps the position correction conservative. Too small
// and the corner fallback triggers unnecessarily often; around 1e-2 is
// fine.
const separationEpsilon = 1e-2

// normalTolerance bounds how far a contact normal's magnitude may deviate
// from 1 before the geometry is considered invalid.
const normalTolerance = 1e-4

// Collision resolves contacts between two rigid bodies with approximate
// continuous-time contact inference: the contact point is inferred as the
// true point of collision between the previous and current substep.
//
// Bodies must be star-shaped about their centroid for guaranteed correct
// resolution. Non-star-shaped bodies can rarely collide corner to corner
// in a way that falls back to a positional correction without an impulse.
//
// Collision implements Force and is bound with two selectors, one per
// body slot.
type Collision struct {
	// Elasticity is in [0, 1]: 1 bounces fully, 0 sticks completely.
	Elasticity float64
	// Symmetric updates both bodies. If false the second body is treated
	// as immovable, which models bounces off walls fixed in the world.
	Symmetric bool
	// UpdateAngleVel simulates the full rotational mechanics. If false,
	// angular velocities are untouched and the contact is treated as
	// lying between the two centroids.
	UpdateAngleVel bool
	// MaxRecursionDepth bounds re-resolution after a correction exposes
	// another contact in the same substep, e.g. colliding into a corner.
	// 0 (no recursion) is usually fine.
	MaxRecursionDepth int
	// Events, if set, receives the contacting pairs for Enter/Stay/Exit
	// notification.
	Events *Events

	Logger *zap.Logger
}

// NewCollision returns a fully elastic, asymmetric, rotational collision.
func NewCollision() *Collision {
	return &Collision{Elasticity: 1, UpdateAngleVel: true}
}

func (c *Collision) logger() *zap.Logger {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c.Logger
}

// Step resolves the contact between exactly two bodies, if any.
func (c *Collision) Step(substeps int, bodies ...*actor.Body) error {
	if len(bodies) != 2 {
		return fmt.Errorf("collision acts on exactly 2 bodies, got %d", len(bodies))
	}
	return c.step(bodies[0], bodies[1], substeps, 0)
}

func (c *Collision) Reset(*State) error { return nil }

func (c *Collision) step(b0, b1 *actor.Body, substeps, depth int) error {
	if depth > c.MaxRecursionDepth {
		return nil
	}
	if b0 == b1 {
		return nil
	}
	if !b0.Overlaps(b1) {
		return nil
	}
	c.Events.recordContact(b0, b1)

	dt := 1 / float64(substeps)
	contact, found := inferContact(b0, b1, dt)

	if !found {
		// The bodies overlap but neither contains a vertex of the other:
		// a corner-to-corner contact. Infer which corner hit which face
		// between substeps and separate positionally.
		c.logger().Debug("corner contact fallback",
			zap.Int("body0", b0.ID()), zap.Int("body1", b1.ID()))
		c.makeDisjoint(b0, b1)
	} else if contact.future {
		// The true collision time is still ahead; leave the bodies alone.
		return nil
	} else {
		// Separate along the perpendicular overlap margin. The raw
		// since-collision displacement can have a very acute angle and
		// large magnitude under angular velocity or multiple contacts;
		// the perpendicular is more stable.
		if c.Symmetric {
			b0.SetPosition(b0.Position().Sub(contact.perpendicular.Mul(0.5 + separationEpsilon)))
			b1.SetPosition(b1.Position().Add(contact.perpendicular.Mul(0.5 + separationEpsilon)))
		} else {
			b0.SetPosition(b0.Position().Sub(contact.perpendicular.Mul(1 + separationEpsilon)))
		}

		norm := contact.normal.Len()
		if math.Abs(norm-1) > normalTolerance {
			return fmt.Errorf("%w: normal magnitude %v", ErrInvalidCollisionGeometry, norm)
		}

		if c.UpdateAngleVel {
			constraint.ResolveRotational(b0, b1, contact.point, contact.normal, c.Elasticity, c.Symmetric)
		} else {
			constraint.ResolveLinear(b0, b1, contact.normal, c.Elasticity, c.Symmetric)
		}
	}

	// The correction may have created another contact; re-resolve.
	return c.step(b0, b1, substeps, depth+1)
}

// contact is the ephemeral record of one collision event, computed and
// consumed within a single resolution call.
type contact struct {
	point mgl64.Vec2
	// normal is the unit normal of the crossed edge, pointing toward the
	// body whose vertex crossed it.
	normal mgl64.Vec2
	// since is the relative displacement of the bodies since the
	// collision instant.
	since mgl64.Vec2
	// perpendicular is the component of since normal to the crossed
	// edge, the margin by which the bodies overlap.
	perpendicular mgl64.Vec2
	found         bool
	future        bool
}

// inferContact finds the collision point, normal, and relative
// displacement since the collision for two overlapping bodies. Detection
// is directed (vertices of one body crossing edges of the other), so both
// directions are tried and the one with the larger displacement wins.
func inferContact(b0, b1 *actor.Body, dt float64) (contact, bool) {
	// Contact on b0's boundary: vertices of b1 inside b0.
	c0 := directedContact(b1, b0, dt)
	// Contact on b1's boundary: vertices of b0 inside b1.
	c1 := directedContact(b0, b1, dt)

	var since0, since1 mgl64.Vec2
	if c0.found {
		// Negate for symmetry: c0 was computed with the roles swapped.
		c0.normal = c0.normal.Mul(-1)
		c0.since = c0.since.Mul(-1)
		since0 = c0.since
	}
	if c1.found {
		since1 = c1.since
	}

	if since0.Len() > since1.Len() {
		return c0, c0.found
	}
	return c1, c1.found
}

// directedContact finds the contact event for vertices of b0 currently
// inside b1. For each contained vertex it reconstructs the vertex
// trajectory over the last dt in b1's moving frame, intersects those
// trajectories with b1's edges, and picks the crossing whose vertex has
// traveled deepest past its edge.
//
// Crossing coefficients are extrapolated outside [0, 1] along the
// trajectory so crossings from earlier substeps are caught (the relative
// velocity may have just changed) and imminent crossings are recognized as
// future events.
func directedContact(b0, b1 *actor.Body, dt float64) contact {
	vertices0 := b0.Vertices()
	var contained []mgl64.Vec2
	for _, v := range vertices0 {
		if b1.ContainsPoint(v) {
			contained = append(contained, v)
		}
	}
	if len(contained) == 0 {
		return contact{}
	}

	previous := relativeMotionTrajectory(contained, b0, b1, dt)

	vertices1 := b1.Vertices()
	vertices1Next := make([]mgl64.Vec2, len(vertices1))
	copy(vertices1Next, vertices1[1:])
	vertices1Next[len(vertices1)-1] = vertices1[0]

	crossA, crossB := actor.SegmentCrossingCoefficients(previous, contained, vertices1, vertices1Next)

	// A crossing needs B in [0, 1] (within the edge); A is left free to
	// admit historical and future crossings.
	anyCrossing := false
	for i := range crossA {
		for j := range crossA[i] {
			if crossB[i][j] >= 0 && crossB[i][j] <= 1 {
				anyCrossing = true
			} else {
				crossA[i][j] = math.Inf(-1)
			}
		}
	}
	if !anyCrossing {
		// Possible despite the overlap because of the interpolation
		// epsilon in the crossing coefficients.
		return contact{}
	}

	// For each vertex, the crossing closest to its current position: the
	// most recent or most imminent one.
	crossingPoints := make([]mgl64.Vec2, len(contained))
	diffs := make([]mgl64.Vec2, len(contained))
	dists := make([]float64, len(contained))
	edgeInds := make([]int, len(contained))
	for i := range contained {
		best := 0
		for j := range crossA[i] {
			if math.Abs(1-crossA[i][j]) < math.Abs(1-crossA[i][best]) {
				best = j
			}
		}
		edgeInds[i] = best
		if math.IsInf(crossA[i][best], -1) {
			// No crossing on this vertex's trajectory at all.
			dists[i] = 0
			continue
		}
		crossingPoints[i] = previous[i].Add(contained[i].Sub(previous[i]).Mul(crossA[i][best]))
		diffs[i] = contained[i].Sub(crossingPoints[i])
		dists[i] = diffs[i].Len()
	}

	// The deepest vertex is the presumed true collision point.
	deepest := 0
	for i := range dists {
		if dists[i] > dists[deepest] {
			deepest = i
		}
	}
	edge := edgeInds[deepest]

	result := contact{
		point: crossingPoints[deepest],
		since: diffs[deepest],
		found: true,
	}

	if crossA[deepest][edge] > 1 {
		result.future = true
		return result
	}

	deltaVertex := vertices1Next[edge].Sub(vertices1[edge])
	normal := mgl64.Vec2{deltaVertex[1], -deltaVertex[0]}
	result.normal = normal.Mul(1 / normal.Len())

	projection := deltaVertex.Mul(result.since.Dot(deltaVertex) / deltaVertex.Dot(deltaVertex))
	result.perpendicular = result.since.Sub(projection)

	return result
}

// relativeMotionTrajectory maps points rigidly attached to pathBody to
// their positions one dt ago in the moving frame of anchorBody, i.e. the
// coordinate system in which anchorBody is static.
func relativeMotionTrajectory(points []mgl64.Vec2, pathBody, anchorBody *actor.Body, dt float64) []mgl64.Vec2 {
	anchorVel := anchorBody.Velocity().Mul(dt)
	transform := mgl64.Translate2D(anchorVel[0], anchorVel[1]).
		Mul3(rotateAround(anchorBody.Position(), anchorBody.AngleVel()*dt)).
		Mul3(mgl64.Translate2D(-pathBody.Velocity()[0]*dt, -pathBody.Velocity()[1]*dt)).
		Mul3(rotateAround(pathBody.Position(), -pathBody.AngleVel()*dt))

	previous := make([]mgl64.Vec2, len(points))
	for i, p := range points {
		h := transform.Mul3x1(mgl64.Vec3{p[0], p[1], 1})
		previous[i] = mgl64.Vec2{h[0], h[1]}
	}
	return previous
}

func rotateAround(center mgl64.Vec2, angle float64) mgl64.Mat3 {
	return mgl64.Translate2D(center[0], center[1]).
		Mul3(mgl64.HomogRotate2D(angle)).
		Mul3(mgl64.Translate2D(-center[0], -center[1]))
}

// makeDisjoint translates the bodies apart when a contact exists but no
// vertex of either body is inside the other. With an infinitesimal dt this
// could not happen, since every collision begins with a vertex entering a
// body; with discrete time a collision almost exactly at two sharp corners
// can miss the vertex entrypoint. It also separates bodies that were
// placed into overlap directly, without moving there by their physics.
//
// This is a positional heuristic only: velocities are not updated.
func (c *Collision) makeDisjoint(b0, b1 *actor.Body) {
	crossingPoints, inds := actor.EdgeCrossings(b0, b1)
	if len(inds) <= 1 {
		return
	}

	inds0 := make([]int, len(inds))
	inds1 := make([]int, len(inds))
	for k, ind := range inds {
		inds0[k] = ind[0]
		inds1[k] = ind[1]
	}

	// correction_i is how much body i alone must move for the two to be
	// disjoint; the larger one identifies which body carries the
	// offending corner, fixing the sign of the shared correction.
	correction0 := positionCorrection(crossingPoints, b0, inds0, b1, inds1)
	correction1 := positionCorrection(crossingPoints, b1, inds1, b0, inds0)

	var correction mgl64.Vec2
	if correction0.Len() > correction1.Len() {
		correction = correction0.Mul(-(1 + separationEpsilon))
	} else {
		correction = correction0.Mul(1 + separationEpsilon)
	}
	if math.IsInf(correction[0], 0) || math.IsInf(correction[1], 0) ||
		math.IsNaN(correction[0]) || math.IsNaN(correction[1]) {
		return
	}

	if c.Symmetric {
		b0.SetPosition(b0.Position().Add(correction.Mul(0.5)))
		b1.SetPosition(b1.Position().Sub(correction.Mul(0.5)))
	} else {
		b0.SetPosition(b0.Position().Add(correction))
	}
}

// positionCorrection finds how far b0 must move to alleviate the boundary
// crossing nearest its centroid. It derives a direction from the edge of
// b1 at that crossing, then walks b0's nearby vertices for the deepest
// offender in that direction.
func positionCorrection(crossingPoints []mgl64.Vec2, b0 *actor.Body, inds0 []int, b1 *actor.Body, inds1 []int) mgl64.Vec2 {
	vertices := b0.Vertices()
	otherVertices := b1.Vertices()

	// Crossing nearest b0's centroid.
	nearest := 0
	for k := 1; k < len(crossingPoints); k++ {
		if dist2(crossingPoints[k], b0.Position()) < dist2(crossingPoints[nearest], b0.Position()) {
			nearest = k
		}
	}
	pt0 := crossingPoints[nearest]

	// Direction perpendicular-ish to the local boundary, pointing away
	// from b1's centroid, taken from b1's edge at the nearest crossing.
	edgeEnd := inds1[nearest]
	edgeStart := (edgeEnd - 1 + len(otherVertices)) % len(otherVertices)
	boundary := otherVertices[edgeEnd].Sub(otherVertices[edgeStart])
	boundary = boundary.Mul(1 / boundary.Len())
	sign := 1.0
	if b1.Position().Sub(otherVertices[edgeStart]).Dot(boundary) > 0 {
		sign = -1
	}
	normV := boundary.Mul(sign)

	// Walk b0's vertices from the crossed edge endpoint that lies in the
	// normV direction, staying on that side, tracking the deepest
	// penetration. Considering only these vertices avoids wrong answers
	// for star-shaped bodies.
	indForward := inds0[nearest]
	indBackward := (indForward - 1 + len(vertices)) % len(vertices)
	var parity, current int
	switch {
	case vertices[indForward].Sub(pt0).Dot(normV) > 0:
		parity, current = 1, indForward
	case vertices[indBackward].Sub(pt0).Dot(normV) > 0:
		parity, current = -1, indBackward
	default:
		// Neither endpoint is past the boundary: the bodies are barely
		// touching, likely an artifact of the separation margin.
		return mgl64.Vec2{math.Inf(1), math.Inf(1)}
	}

	worst := 0.0
	for range vertices {
		penalty := vertices[current].Sub(pt0).Dot(normV)
		if penalty <= 0 {
			break
		}
		if penalty > worst {
			worst = penalty
		}
		current = (current + parity + len(vertices)) % len(vertices)
	}

	return normV.Mul(worst)
}

func dist2(a, b mgl64.Vec2) float64 {
	return a.Sub(b).Dot(a.Sub(b))
}
