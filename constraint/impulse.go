// Package constraint holds the closed-form velocity responses for two-body
// contacts. The geometric work (contact point, normal, overlap) is done by
// the collision resolver; once those are known, the bodies' vertices are
// never consulted again.
package constraint

import (
	"math"

	"github.com/akmonengine/plume/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ResolveLinear updates the bodies' velocities for a collision in which
// angular velocity cannot change. The collision is treated as occurring at
// the bodies' shared center of mass: only the velocity components parallel
// to the contact normal are reflected about the mass-weighted
// center-of-mass velocity, scaled by (1 + elasticity). Kinetic energy and
// momentum are conserved, angular momentum is not.
//
// If symmetric is false, b1 is treated as immovable and b0 reflects off it.
// Infinite masses are handled by taking the algebraic limit instead of
// relying on IEEE arithmetic, so an immovable body's velocity is never
// touched and no NaN can leak into the state.
func ResolveLinear(b0, b1 *actor.Body, normal mgl64.Vec2, elasticity float64, symmetric bool) {
	v0Normal := normal.Mul(b0.Velocity().Dot(normal))
	v1Normal := normal.Mul(b1.Velocity().Dot(normal))
	m0 := b0.Mass()
	m1 := b1.Mass()

	// Velocity of the system center of mass, the inertial frame in which
	// each body's normal velocity is reflected.
	var centerOfMassVel mgl64.Vec2
	switch {
	case !symmetric:
		centerOfMassVel = v1Normal
	case math.IsInf(m0, 1) && math.IsInf(m1, 1):
		return
	case math.IsInf(m1, 1):
		centerOfMassVel = v1Normal
	case math.IsInf(m0, 1):
		centerOfMassVel = v0Normal
	default:
		centerOfMassVel = v0Normal.Mul(m0).Add(v1Normal.Mul(m1)).Mul(1 / (m0 + m1))
	}

	delta0 := centerOfMassVel.Sub(v0Normal).Mul(1 + elasticity)
	delta1 := centerOfMassVel.Sub(v1Normal).Mul(1 + elasticity)

	if !math.IsInf(m0, 1) {
		b0.SetVelocity(b0.Velocity().Add(delta0))
	}
	if symmetric && !math.IsInf(m1, 1) {
		b1.SetVelocity(b1.Velocity().Add(delta1))
	}
}

// ResolveRotational updates velocities and angular velocities for a full
// Newtonian collision at the given contact point.
//
// For each body, the torque-impulse relation ties the angular change to the
// linear change through the lever arm s = r sin(theta), the perpendicular
// distance from the contact point to the centroid projected along the
// normal:
//
//	I*dw = M*dv*s
//
// Combining both bodies' relations with conservation of linear momentum and
// of kinetic energy (scaled by elasticity) yields one linear system; its
// closed-form solution is
//
//	a  = m0 + m1 + m0*m1*(s0²/I0 + s1²/I1)
//	bb = (1 + elasticity)*(v0 - v1 + w0*s0 - w1*s1)
//	dv0 = -m1*bb/a, dv1 = m0*bb/a            (symmetric)
//	dv0 = -bb/(1 + m0*(s0²/I0 + s1²/I1))     (b1 immovable)
//
// where v, dv are scalar components along the normal. The asymmetric form
// is the symmetric one with m1 divided out, which is also the exact limit
// used when an infinite mass appears in a symmetric collision.
func ResolveRotational(b0, b1 *actor.Body, point, normal mgl64.Vec2, elasticity float64, symmetric bool) {
	m0 := b0.Mass()
	m1 := b1.Mass()
	w0 := b0.AngleVel()
	w1 := b1.AngleVel()

	// Per-mass rotational inertia stays finite for immovable bodies, which
	// keeps the limit algebra below exact.
	rot0 := b0.RotationalInertia()
	rot1 := b1.RotationalInertia()
	inertiaPerMass0 := rot0[0] + rot0[1]
	inertiaPerMass1 := rot1[0] + rot1[1]

	v0 := b0.Velocity().Dot(normal)
	v1 := b1.Velocity().Dot(normal)

	s0 := actor.Cross(point.Sub(b0.Position()), normal)
	s1 := actor.Cross(point.Sub(b1.Position()), normal)

	// s²/I with I = m*(Ix+Iy); an infinite mass zeroes the term.
	angular0 := s0 * s0 / (m0 * inertiaPerMass0)
	angular1 := s1 * s1 / (m1 * inertiaPerMass1)
	if math.IsInf(m0, 1) {
		angular0 = 0
	}
	if math.IsInf(m1, 1) {
		angular1 = 0
	}

	bb := (1 + elasticity) * (v0 - v1 + w0*s0 - w1*s1)

	var deltaV0, deltaV1 float64
	switch {
	case !symmetric || math.IsInf(m1, 1):
		if math.IsInf(m0, 1) {
			return
		}
		deltaV0 = -bb / (1 + m0*(angular0+angular1))
	case math.IsInf(m0, 1):
		deltaV1 = bb / (1 + m1*(angular0+angular1))
	default:
		a := m0 + m1 + m0*m1*(angular0+angular1)
		deltaV0 = -m1 * bb / a
		deltaV1 = m0 * bb / a
	}

	// I*dw = M*dv*s, and the mass cancels against I = m*(Ix+Iy).
	deltaW0 := deltaV0 * s0 / inertiaPerMass0
	deltaW1 := deltaV1 * s1 / inertiaPerMass1

	if deltaV0 != 0 {
		b0.SetVelocity(b0.Velocity().Add(normal.Mul(deltaV0)))
		b0.SetAngleVel(w0 + deltaW0)
	}
	if deltaV1 != 0 {
		b1.SetVelocity(b1.Velocity().Add(normal.Mul(deltaV1)))
		b1.SetAngleVel(w1 + deltaW1)
	}
}
