package actor

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrDegenerateShape is returned when a polygon's vertex loop encloses zero
// signed area, so no triangulation (and no mass distribution) exists.
var ErrDegenerateShape = errors.New("polygon has zero signed area")

// Counter hands out monotonically increasing body ids. Each simulation owns
// its own Counter, so ids never leak across independent worlds.
type Counter struct {
	next int
}

// Next returns the next unused id.
func (c *Counter) Next() int {
	id := c.next
	c.next++
	return id
}

// BodyConfig carries the construction factors of a Body. Zero values for
// Scale, AspectRatio, Mass and Opacity default to 1, 1, 1 and 255.
type BodyConfig struct {
	Position mgl64.Vec2
	// Shape names an entry of Shapes. Ignored when Vertices is non-nil.
	// Empty defaults to "square".
	Shape string
	// Vertices defines a custom polygon. Winding may be either direction;
	// it is normalized to counterclockwise.
	Vertices    []mgl64.Vec2
	Angle       float64
	Scale       float64
	AspectRatio float64
	Velocity    mgl64.Vec2
	AngleVel    float64
	// Mass may be math.Inf(1) for immovable bodies.
	Mass     float64
	Color    [3]float64
	Opacity  int
	Metadata any
}

// Body is a rigid 2D polygon with mass, position, orientation and velocity
// state. Its transformed boundary ("path") is cached and kept consistent
// with (scale, aspect ratio, angle, position) by the setters; the cached
// path is what all geometric queries run against.
//
// Position and velocity are mgl64.Vec2 values, exchanged only through
// setters. Value semantics make it impossible to alias the stored vectors
// and desynchronize the cached path with an in-place mutation.
type Body struct {
	id        int
	shapeName string

	// shape is the centroid-centered, counterclockwise, unscaled polygon.
	shape []mgl64.Vec2
	// baseInertia holds the per-area second moments (Ix, Iy) of shape about
	// its centroid, before scale and aspect ratio are applied. rotInertia is
	// the scaled version, re-derived whenever scale or aspect ratio change.
	baseInertia mgl64.Vec2
	rotInertia  mgl64.Vec2

	position    mgl64.Vec2
	angle       float64
	scale       float64
	aspectRatio float64
	velocity    mgl64.Vec2
	angleVel    float64
	mass        float64

	color    [3]float64
	opacity  int
	metadata any

	// path is the transformed boundary as a closed loop: len(shape)+1
	// points, the last repeating the first.
	path      []mgl64.Vec2
	maxRadius float64
}

// NewBody builds a Body from cfg, assigning it the next id from ids. The
// polygon is re-expressed about its centroid and the body position shifted
// by that centroid, so the world-space geometry of explicit vertices is
// preserved.
func NewBody(cfg BodyConfig, ids *Counter) (*Body, error) {
	vertices := cfg.Vertices
	shapeName := CustomShape
	if vertices == nil {
		shapeName = cfg.Shape
		if shapeName == "" {
			shapeName = "square"
		}
		named, ok := Shapes[shapeName]
		if !ok {
			return nil, fmt.Errorf("unknown shape %q", cfg.Shape)
		}
		vertices = named
	}

	scale := cfg.Scale
	if scale == 0 {
		scale = 1
	}
	aspectRatio := cfg.AspectRatio
	if aspectRatio == 0 {
		aspectRatio = 1
	}
	mass := cfg.Mass
	if mass == 0 {
		mass = 1
	}
	opacity := cfg.Opacity
	if opacity == 0 {
		opacity = 255
	}

	centered, baseInertia, centroid, err := computeShapeProperties(vertices)
	if err != nil {
		return nil, err
	}

	b := &Body{
		id:          ids.Next(),
		shapeName:   shapeName,
		shape:       centered,
		baseInertia: baseInertia,
		position:    cfg.Position.Add(centroid),
		angle:       cfg.Angle,
		scale:       scale,
		aspectRatio: aspectRatio,
		velocity:    cfg.Velocity,
		angleVel:    cfg.AngleVel,
		mass:        mass,
		color:       cfg.Color,
		opacity:     opacity,
		metadata:    cfg.Metadata,
	}
	b.setPath()
	return b, nil
}

// computeShapeProperties triangulates the polygon from the origin and
// accumulates signed area, area-weighted centroid, and the per-edge second
// moments via the closed form for a triangle with one vertex at the origin:
//
//	I += (1/12) * cross(v0, v1) * (v0*v0 + v1*v1 + v0*v1)   (per axis)
//
// A clockwise input yields negative area; the vertex order is reversed and
// the accumulated area and inertia negated. The shape is then translated so
// its centroid sits at the origin, and the inertia re-expressed about the
// centroid by the parallel-axis theorem. The returned inertia components
// are per unit area, so later scale and aspect-ratio changes can rescale
// them without re-triangulating.
func computeShapeProperties(vertices []mgl64.Vec2) (centered []mgl64.Vec2, inertia, centroid mgl64.Vec2, err error) {
	n := len(vertices)
	var area float64
	for i := 0; i < n; i++ {
		v0 := vertices[i]
		v1 := vertices[(i+1)%n]

		cross := Cross(v0, v1)
		inertia = inertia.Add(mgl64.Vec2{
			cross * (v0[0]*v0[0] + v1[0]*v1[0] + v0[0]*v1[0]),
			cross * (v0[1]*v0[1] + v1[1]*v1[1] + v0[1]*v1[1]),
		}.Mul(1.0 / 12.0))

		triangleArea := cross / 2
		triangleCentroid := v0.Add(v1).Mul(1.0 / 3.0)
		area += triangleArea
		centroid = centroid.Add(triangleCentroid.Mul(triangleArea))
	}
	if math.Abs(area) < 1e-12 {
		return nil, mgl64.Vec2{}, mgl64.Vec2{}, ErrDegenerateShape
	}
	centroid = centroid.Mul(1 / area)

	ordered := vertices
	if area < 0 {
		ordered = make([]mgl64.Vec2, n)
		for i, v := range vertices {
			ordered[n-1-i] = v
		}
		inertia = inertia.Mul(-1)
		area = -area
	}

	centered = make([]mgl64.Vec2, n)
	for i, v := range ordered {
		centered[i] = v.Sub(centroid)
	}

	// Parallel-axis theorem: re-express the moments about the centroid.
	inertia = inertia.Sub(mgl64.Vec2{
		area * centroid[0] * centroid[0],
		area * centroid[1] * centroid[1],
	})
	inertia = inertia.Mul(1 / area)

	return centered, inertia, centroid, nil
}

// setPath rebuilds the cached path from the centered shape and the current
// scale, aspect ratio, angle and position, and re-derives the scaled
// rotational inertia components.
func (b *Body) setPath() {
	scaleX := b.scale
	scaleY := b.scale * b.aspectRatio
	transform := mgl64.Translate2D(b.position[0], b.position[1]).
		Mul3(mgl64.HomogRotate2D(b.angle)).
		Mul3(mgl64.Scale2D(scaleX, scaleY))

	path := make([]mgl64.Vec2, len(b.shape)+1)
	maxRadius := 0.0
	for i, v := range b.shape {
		path[i] = transformPoint(transform, v)
		if r := path[i].Sub(b.position).Len(); r > maxRadius {
			maxRadius = r
		}
	}
	path[len(b.shape)] = path[0]

	b.path = path
	b.maxRadius = maxRadius
	b.rotInertia = mgl64.Vec2{
		b.baseInertia[0] * scaleX * scaleX,
		b.baseInertia[1] * scaleY * scaleY,
	}
}

func transformPoint(m mgl64.Mat3, v mgl64.Vec2) mgl64.Vec2 {
	out := m.Mul3x1(mgl64.Vec3{v[0], v[1], 1})
	return mgl64.Vec2{out[0], out[1]}
}

// SetPosition moves the body, translating the cached path in place.
func (b *Body) SetPosition(position mgl64.Vec2) {
	delta := position.Sub(b.position)
	for i := range b.path {
		b.path[i] = b.path[i].Add(delta)
	}
	b.position = position
}

// SetAngle rotates the body about its centroid, rotating the cached path in
// place.
func (b *Body) SetAngle(angle float64) {
	rotate := mgl64.Translate2D(b.position[0], b.position[1]).
		Mul3(mgl64.HomogRotate2D(angle - b.angle)).
		Mul3(mgl64.Translate2D(-b.position[0], -b.position[1]))
	for i := range b.path {
		b.path[i] = transformPoint(rotate, b.path[i])
	}
	b.angle = angle
}

// SetScale changes the body size, rebuilding the cached path and rescaling
// the rotational inertia.
func (b *Body) SetScale(scale float64) {
	b.scale = scale
	b.setPath()
}

// SetAspectRatio changes the height/width ratio, rebuilding the cached path
// and rescaling the rotational inertia.
func (b *Body) SetAspectRatio(aspectRatio float64) {
	b.aspectRatio = aspectRatio
	b.setPath()
}

// SetVelocity replaces the body's velocity.
func (b *Body) SetVelocity(velocity mgl64.Vec2) { b.velocity = velocity }

// SetAngleVel replaces the body's angular velocity.
func (b *Body) SetAngleVel(angleVel float64) { b.angleVel = angleVel }

// SetMass replaces the body's mass. math.Inf(1) makes the body immovable
// for Newtonian forces.
func (b *Body) SetMass(mass float64) { b.mass = mass }

// SetColor replaces the body's color components.
func (b *Body) SetColor(color [3]float64) { b.color = color }

// SetOpacity replaces the body's opacity in [0, 255].
func (b *Body) SetOpacity(opacity int) { b.opacity = opacity }

// SetMetadata replaces the body's opaque metadata.
func (b *Body) SetMetadata(metadata any) { b.metadata = metadata }

// UpdatePosFromVel integrates position and angle from the current velocity
// and angular velocity over dt.
func (b *Body) UpdatePosFromVel(dt float64) {
	b.SetPosition(b.position.Add(b.velocity.Mul(dt)))
	if b.angleVel != 0 {
		b.SetAngle(b.angle + dt*b.angleVel)
	}
}

// IsSymmetricCircle reports whether the body is a circle with aspect ratio
// 1, enabling the radial fast path for point containment.
func (b *Body) IsSymmetricCircle() bool {
	return b.shapeName == circleName && b.aspectRatio == 1
}

// ContainsPoint reports whether the point lies inside the body. Symmetric
// circles use a center-distance test; this fast path applies to point
// containment only, never to collision geometry, which works on the
// vertices themselves.
func (b *Body) ContainsPoint(point mgl64.Vec2) bool {
	if b.IsSymmetricCircle() {
		return point.Sub(b.position).Len() <= b.maxRadius
	}
	return pathContains(b.path, point)
}

// ContainsPoints reports containment for each of the given points.
func (b *Body) ContainsPoints(points []mgl64.Vec2) []bool {
	contained := make([]bool, len(points))
	for i, p := range points {
		contained[i] = b.ContainsPoint(p)
	}
	return contained
}

// Overlaps reports whether this body and the other overlap: a cheap
// bounding-radius rejection, then a full boundary-intersection test.
// Circles get no special treatment here; collision resolution depends on
// the vertices themselves, and a radius shortcut would disagree with them.
func (b *Body) Overlaps(other *Body) bool {
	centerDist := b.position.Sub(other.position).Len()
	if centerDist > b.maxRadius+other.maxRadius {
		return false
	}
	if _, inds := EdgeCrossings(b, other); len(inds) > 0 {
		return true
	}
	// No boundary crossings: overlap only if one body contains the other.
	return pathContains(b.path, other.path[0]) || pathContains(other.path, b.path[0])
}

// ID returns the body's unique id within its world.
func (b *Body) ID() int { return b.id }

// ShapeName returns the named shape this body was built from, or
// CustomShape.
func (b *Body) ShapeName() string { return b.shapeName }

// Position returns the body's centroid location.
func (b *Body) Position() mgl64.Vec2 { return b.position }

// Angle returns the body's orientation in radians.
func (b *Body) Angle() float64 { return b.angle }

// Scale returns the body's size factor.
func (b *Body) Scale() float64 { return b.scale }

// AspectRatio returns the body's height/width ratio.
func (b *Body) AspectRatio() float64 { return b.aspectRatio }

// Velocity returns the body's velocity.
func (b *Body) Velocity() mgl64.Vec2 { return b.velocity }

// AngleVel returns the body's angular velocity in radians per step.
func (b *Body) AngleVel() float64 { return b.angleVel }

// Mass returns the body's mass.
func (b *Body) Mass() float64 { return b.mass }

// Color returns the body's color components.
func (b *Body) Color() [3]float64 { return b.color }

// Opacity returns the body's opacity in [0, 255].
func (b *Body) Opacity() int { return b.opacity }

// Metadata returns the body's opaque metadata.
func (b *Body) Metadata() any { return b.metadata }

// MaxRadius returns the largest distance from the centroid to a vertex.
func (b *Body) MaxRadius() float64 { return b.maxRadius }

// Vertices returns the transformed boundary vertices. The slice aliases the
// cached path and must not be mutated.
func (b *Body) Vertices() []mgl64.Vec2 { return b.path[:len(b.path)-1] }

// Path returns the transformed boundary as a closed loop (the last point
// repeats the first). The slice aliases the cache and must not be mutated.
func (b *Body) Path() []mgl64.Vec2 { return b.path }

// RotationalInertia returns the per-axis inertia components (Ix, Iy) at the
// current scale and aspect ratio, per unit mass.
func (b *Body) RotationalInertia() mgl64.Vec2 { return b.rotInertia }

// MomentOfInertia returns mass * (Ix + Iy), the resistance to angular
// acceleration about the centroid.
func (b *Body) MomentOfInertia() float64 {
	return b.mass * (b.rotInertia[0] + b.rotInertia[1])
}
