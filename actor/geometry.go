package actor

import (
	"github.com/go-gl/mathgl/mgl64"
)

// crossingEpsilon stabilizes the segment-crossing denominator against
// parallel segments.
const crossingEpsilon = 1e-8

// Cross returns the 2D cross product (z-component of the 3D cross product).
func Cross(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}

// SegmentCrossingCoefficients computes, for every pair of a set-0 segment
// [start0[i], end0[i]] and a set-1 segment [start1[j], end1[j]], the
// coefficients A and B solving
//
//	start0 + A*(end0-start0) = start1 + B*(end1-start1)
//
// The segments cross iff A and B are both in [0, 1], but the coefficients
// are returned unrestricted so callers can extrapolate beyond the segment
// endpoints (the collision resolver uses this to catch historical and
// imminent crossings).
func SegmentCrossingCoefficients(start0, end0, start1, end1 []mgl64.Vec2) (a, b [][]float64) {
	a = make([][]float64, len(start0))
	b = make([][]float64, len(start0))
	for i := range start0 {
		a[i] = make([]float64, len(start1))
		b[i] = make([]float64, len(start1))
		delta0 := end0[i].Sub(start0[i])
		for j := range start1 {
			delta1 := end1[j].Sub(start1[j])
			denominator := Cross(delta0, delta1) + crossingEpsilon
			offset := start1[j].Sub(start0[i])
			a[i][j] = Cross(offset, delta1) / denominator
			b[i][j] = Cross(offset, delta0) / denominator
		}
	}
	return a, b
}

// SegmentCrossings finds all pairwise crossing points between two sets of
// segments. inds[k] holds the (set-0, set-1) segment indices of crossing k.
func SegmentCrossings(start0, end0, start1, end1 []mgl64.Vec2) (points []mgl64.Vec2, inds [][2]int) {
	a, b := SegmentCrossingCoefficients(start0, end0, start1, end1)
	for i := range start0 {
		for j := range start1 {
			if a[i][j] <= 0 || a[i][j] >= 1 || b[i][j] <= 0 || b[i][j] >= 1 {
				continue
			}
			point := start0[i].Add(end0[i].Sub(start0[i]).Mul(a[i][j]))
			points = append(points, point)
			inds = append(inds, [2]int{i, j})
		}
	}
	return points, inds
}

// EdgeCrossings finds all points where the boundaries of two bodies cross.
func EdgeCrossings(b0, b1 *Body) (points []mgl64.Vec2, inds [][2]int) {
	path0 := b0.Path()
	path1 := b1.Path()
	return SegmentCrossings(
		path0[:len(path0)-1], path0[1:],
		path1[:len(path1)-1], path1[1:],
	)
}

// pathContains reports whether point p lies inside the closed polygon loop
// path (even-odd rule). The last path vertex must repeat the first.
func pathContains(path []mgl64.Vec2, p mgl64.Vec2) bool {
	inside := false
	for i := 0; i < len(path)-1; i++ {
		v0, v1 := path[i], path[i+1]
		if (v0[1] > p[1]) == (v1[1] > p[1]) {
			continue
		}
		x := v0[0] + (p[1]-v0[1])/(v1[1]-v0[1])*(v1[0]-v0[0])
		if p[0] < x {
			inside = !inside
		}
	}
	return inside
}
