package maze

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/akmonengine/plume/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func openGrid(size int) [][]bool {
	cells := make([][]bool, size)
	for i := range cells {
		cells[i] = make([]bool, size)
	}
	return cells
}

func TestNew(t *testing.T) {
	m := New(openGrid(4))
	if m.Size != 4 {
		t.Errorf("Size = %d, want 4", m.Size)
	}
	if m.GridSide != 0.25 || m.HalfGridSide != 0.125 {
		t.Errorf("grid side = (%v, %v), want (0.25, 0.125)", m.GridSide, m.HalfGridSide)
	}
}

func TestOpenVertex(t *testing.T) {
	cells := openGrid(4)
	cells[1][2] = true // wall at x=2, y=1
	m := New(cells)

	if m.OpenVertex(2, 1) {
		t.Error("OpenVertex(2, 1) = true, want wall")
	}
	if !m.OpenVertex(1, 2) {
		t.Error("OpenVertex(1, 2) = false, want open")
	}
	if !m.IsWall(2, 1) || m.IsWall(1, 2) {
		t.Error("IsWall disagrees with OpenVertex")
	}

	// Out-of-range cells count as walls.
	for _, ij := range [][2]int{{-1, 0}, {0, -1}, {4, 0}, {0, 4}} {
		if m.OpenVertex(ij[0], ij[1]) {
			t.Errorf("OpenVertex(%d, %d) = true, want out-of-range wall", ij[0], ij[1])
		}
	}
}

func TestValidDirections(t *testing.T) {
	cells := openGrid(3)
	cells[1][0] = true // wall at x=0, y=1
	m := New(cells)

	got := m.ValidDirections(1, 1)
	// From the center: negative x is walled, the other three are open.
	want := [2][2]bool{{false, true}, {true, true}}
	if got != want {
		t.Errorf("ValidDirections(1, 1) = %v, want %v", got, want)
	}

	// A corner can only move inward.
	got = m.ValidDirections(0, 0)
	want = [2][2]bool{{false, true}, {false, false}}
	if got != want {
		t.Errorf("ValidDirections(0, 0) = %v, want %v", got, want)
	}
}

func TestNeighbors(t *testing.T) {
	cells := openGrid(3)
	cells[1][2] = true
	m := New(cells)

	got := m.Neighbors(1, 1)
	want := [][2]int{{0, 1}, {2, 1}, {1, 0}}
	if len(got) != len(want) {
		t.Fatalf("Neighbors(1, 1) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("neighbor %d = %v, want %v", i, got[i], want[i])
		}
	}

	dict := m.NeighborDict()
	if len(dict) != 9 {
		t.Errorf("NeighborDict has %d entries, want 9", len(dict))
	}
	// The wall cell itself never appears as anyone's neighbor.
	for cell, neighbors := range dict {
		for _, n := range neighbors {
			if n == [2]int{1, 2} {
				t.Errorf("wall cell listed as neighbor of %v", cell)
			}
		}
	}
}

func TestAddWall(t *testing.T) {
	m := New(openGrid(4))
	m.AddWall([2]int{1, 2}, [2]int{0, 0})

	// AddWall indexes cells[x][y], so the walled vertices are (0, 1) and
	// (0, 2).
	if m.OpenVertex(0, 1) || m.OpenVertex(0, 2) {
		t.Error("walled cells still open")
	}
	if !m.OpenVertex(0, 0) || !m.OpenVertex(0, 3) {
		t.Error("cells outside the range were walled")
	}
}

func TestAddOuterWalls(t *testing.T) {
	m := New(openGrid(4))
	m.AddOuterWalls()

	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			border := i == 0 || j == 0 || i == 3 || j == 3
			if border == m.OpenVertex(i, j) {
				t.Errorf("OpenVertex(%d, %d) = %v, want %v", i, j, !border, border)
			}
		}
	}
}

func TestToBodiesRoundTrip(t *testing.T) {
	cells := openGrid(4)
	cells[0][1] = true
	cells[2][2] = true
	cells[3][0] = true
	original := New(cells)

	walls, err := original.ToBodies(&actor.Counter{}, math.Inf(1))
	if err != nil {
		t.Fatal(err)
	}
	if len(walls) != 3 {
		t.Fatalf("got %d wall bodies, want 3", len(walls))
	}
	for _, wall := range walls {
		if !math.IsInf(wall.Mass(), 1) {
			t.Errorf("wall mass = %v, want +Inf", wall.Mass())
		}
	}

	inferred, err := FromBodies(walls)
	if err != nil {
		t.Fatal(err)
	}
	if inferred.Size != 4 {
		t.Fatalf("inferred size = %d, want 4", inferred.Size)
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if inferred.OpenVertex(i, j) != original.OpenVertex(i, j) {
				t.Errorf("cell (%d, %d) did not round-trip", i, j)
			}
		}
	}
}

func TestFromBodiesNoGridSize(t *testing.T) {
	// 0.504 is not within tolerance of a multiple of 1/N for any N up to
	// MaxSize.
	wall, err := actor.NewBody(actor.BodyConfig{
		Vertices: []mgl64.Vec2{{0, 0}, {0.504, 0}, {0.504, 0.504}, {0, 0.504}},
		Mass:     math.Inf(1),
	}, &actor.Counter{})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := FromBodies([]*actor.Body{wall}); !errors.Is(err, ErrNoGridSize) {
		t.Errorf("err = %v, want ErrNoGridSize", err)
	}
}

func TestWallShapesInFrame(t *testing.T) {
	cells := openGrid(2)
	cells[0][0] = true
	cells[1][1] = true
	m := New(cells)

	shapes := m.WallShapes()
	if len(shapes) != 2 {
		t.Fatalf("got %d shapes, want 2", len(shapes))
	}
	for _, shape := range shapes {
		if len(shape) != 4 {
			t.Fatalf("wall shape has %d vertices, want 4", len(shape))
		}
		for _, v := range shape {
			if v[0] < 0 || v[0] > 1 || v[1] < 0 || v[1] > 1 {
				t.Errorf("vertex %v outside the unit frame", v)
			}
		}
	}
}

func TestBackgroundGridShapes(t *testing.T) {
	m := New(openGrid(2))
	shapes := m.BackgroundGridShapes(0.01)
	if len(shapes) != 4 {
		t.Fatalf("got %d grid shapes, want 4", len(shapes))
	}
	for _, shape := range shapes {
		if len(shape) != 4 {
			t.Errorf("grid shape has %d vertices, want 4", len(shape))
		}
	}
}

func TestSampleRandomPosition(t *testing.T) {
	m := New(openGrid(2))
	rng := rand.New(rand.NewSource(1))

	onCenterline := func(x float64) bool {
		return x == 0.25 || x == 0.75
	}
	for i := 0; i < 20; i++ {
		pos, err := m.SampleRandomPosition(rng, false)
		if err != nil {
			t.Fatal(err)
		}
		if !onCenterline(pos[0]) || !onCenterline(pos[1]) {
			t.Fatalf("position %v not at a grid intersection", pos)
		}
	}
	for i := 0; i < 20; i++ {
		pos, err := m.SampleRandomPosition(rng, true)
		if err != nil {
			t.Fatal(err)
		}
		// Off intersection the position still lies on one centerline.
		if !onCenterline(pos[0]) && !onCenterline(pos[1]) {
			t.Fatalf("position %v not on a corridor centerline", pos)
		}
		if pos[0] < 0.25 || pos[0] > 0.75 || pos[1] < 0.25 || pos[1] > 0.75 {
			t.Fatalf("position %v outside the corridor span", pos)
		}
	}
}

func TestSampleRandomPositionAllWalls(t *testing.T) {
	cells := [][]bool{{true, true}, {true, true}}
	m := New(cells)
	if _, err := m.SampleRandomPosition(rand.New(rand.NewSource(1)), false); !errors.Is(err, ErrNoOpenPoint) {
		t.Errorf("err = %v, want ErrNoOpenPoint", err)
	}
}

func TestSampleDistinctOpenPoints(t *testing.T) {
	cells := openGrid(2)
	cells[0][0] = true
	m := New(cells)
	rng := rand.New(rand.NewSource(1))

	points, err := m.SampleDistinctOpenPoints(rng, 3)
	if err != nil {
		t.Fatal(err)
	}
	seen := map[[2]int]bool{}
	for _, p := range points {
		if seen[p] {
			t.Errorf("point %v sampled twice", p)
		}
		seen[p] = true
		if m.cells[p[0]][p[1]] {
			t.Errorf("point %v is a wall", p)
		}
	}

	if _, err := m.SampleDistinctOpenPoints(rng, 4); !errors.Is(err, ErrNoOpenPoint) {
		t.Errorf("err = %v, want ErrNoOpenPoint", err)
	}

	if _, err := m.SampleOpenPoint(rng); err != nil {
		t.Fatal(err)
	}
}
