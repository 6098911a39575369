package actor

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CustomShape is the shape name given to bodies built from explicit vertices.
const CustomShape = "custom"

// circleName must match the key in Shapes used for circular bodies. Bodies
// with this shape and aspect ratio 1 get the symmetric-circle fast path for
// point containment.
const circleName = "circle"

// Shapes is a selection of simple polygons keyed by name. A name from this
// map can be given as BodyConfig.Shape instead of explicit vertices.
var Shapes = map[string][]mgl64.Vec2{
	"triangle": RegularPolygon(3, math.Pi/2),
	"square":   RegularPolygon(4, math.Pi/4),
	"pentagon": RegularPolygon(5, math.Pi/2),
	"hexagon":  RegularPolygon(6, 0),
	"octagon":  RegularPolygon(8, 0),
	"circle":   RegularPolygon(30, 0),
	"star_4":   StarPolygon(4, math.Pi/4),
	"star_5":   StarPolygon(5, math.Pi+math.Pi/10),
	"star_6":   StarPolygon(6, 0),
	"spoke_4":  SpokesPolygon(4, math.Pi/4),
	"spoke_5":  SpokesPolygon(5, math.Pi+math.Pi/10),
	"spoke_6":  SpokesPolygon(6, 0),
}

// RegularPolygon returns the vertices of a regular polygon with unit
// circumradius, wound counterclockwise starting at angle theta0.
func RegularPolygon(numSides int, theta0 float64) []mgl64.Vec2 {
	vertices := make([]mgl64.Vec2, numSides)
	for i := range vertices {
		theta := theta0 + 2*math.Pi*float64(i)/float64(numSides)
		vertices[i] = mgl64.Vec2{math.Cos(theta), math.Sin(theta)}
	}
	return vertices
}

// StarPolygon returns a star with numSides points, alternating unit outer
// radius and 0.5 inner radius.
func StarPolygon(numSides int, theta0 float64) []mgl64.Vec2 {
	return alternatingPolygon(numSides, theta0, 0.5)
}

// SpokesPolygon returns a fat star with numSides spokes and 0.8 inner radius.
func SpokesPolygon(numSides int, theta0 float64) []mgl64.Vec2 {
	return alternatingPolygon(numSides, theta0, 0.8)
}

func alternatingPolygon(numSides int, theta0, innerRadius float64) []mgl64.Vec2 {
	vertices := make([]mgl64.Vec2, 2*numSides)
	for i := range vertices {
		theta := theta0 + math.Pi*float64(i)/float64(numSides)
		radius := 1.0
		if i%2 == 1 {
			radius = innerRadius
		}
		vertices[i] = mgl64.Vec2{radius * math.Cos(theta), radius * math.Sin(theta)}
	}
	return vertices
}

// BorderWallShapes returns four rectangles forming a border around the
// [0, 1] x [0, 1] frame. visibleThickness is how far each wall reaches into
// the frame; totalThickness is the full wall depth. Keeping totalThickness
// non-negligible avoids near-collinear wall vertices, which destabilize
// collisions.
func BorderWallShapes(visibleThickness, totalThickness float64) [][]mgl64.Vec2 {
	bottom := []mgl64.Vec2{
		{0, visibleThickness},
		{1, visibleThickness},
		{1, visibleThickness - totalThickness},
		{0, visibleThickness - totalThickness},
	}
	across := 1 + totalThickness - 2*visibleThickness

	shift := func(shape []mgl64.Vec2, delta mgl64.Vec2) []mgl64.Vec2 {
		out := make([]mgl64.Vec2, len(shape))
		for i, v := range shape {
			out[i] = v.Add(delta)
		}
		return out
	}
	flip := func(shape []mgl64.Vec2) []mgl64.Vec2 {
		out := make([]mgl64.Vec2, len(shape))
		for i, v := range shape {
			out[i] = mgl64.Vec2{v[1], v[0]}
		}
		return out
	}

	return [][]mgl64.Vec2{
		bottom,
		shift(bottom, mgl64.Vec2{0, across}),
		flip(bottom),
		shift(flip(bottom), mgl64.Vec2{across, 0}),
	}
}
