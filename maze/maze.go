// Package maze mediates between a binary grid and the wall bodies that
// represent it: a maze can be inferred from wall geometry, converted back
// to wall shapes, and queried for open directions and sampled positions.
package maze

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/akmonengine/plume/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// vertexEpsilon is the tolerance for checking that wall vertices are
// multiples of a candidate grid side.
const vertexEpsilon = 1e-4

// MaxSize bounds the grid-size search during inference; no sane maze in a
// unit frame is finer than this.
const MaxSize = 100

// ErrNoGridSize is returned when no grid size up to MaxSize divides the
// wall vertices.
var ErrNoGridSize = errors.New("cannot find a maze grid size from wall bodies")

// ErrNoOpenPoint is returned when a sample is requested from a maze with no
// open cells.
var ErrNoOpenPoint = errors.New("maze has no open point")

// Maze is a square binary grid over the [0, 1] x [0, 1] frame. True cells
// are walls. cells[j][i] covers the square whose center is
// (HalfGridSide + i*GridSide, HalfGridSide + j*GridSide).
type Maze struct {
	cells [][]bool

	Size         int
	GridSide     float64
	HalfGridSide float64
}

// New builds a Maze from a square boolean grid.
func New(cells [][]bool) *Maze {
	size := len(cells)
	return &Maze{
		cells:        cells,
		Size:         size,
		GridSide:     1 / float64(size),
		HalfGridSide: 0.5 / float64(size),
	}
}

// FromBodies infers a maze from wall bodies. It finds the smallest N such
// that 1/N divides every wall vertex coordinate, then marks each grid cell
// whose center lies inside a wall.
func FromBodies(walls []*actor.Body) (*Maze, error) {
	size := 1
	for {
		if size > MaxSize {
			return nil, ErrNoGridSize
		}
		if wallVerticesFitGrid(walls, size) {
			break
		}
		size++
	}

	halfGridSide := 1 / (2 * float64(size))
	gridSide := 1 / float64(size)
	cells := make([][]bool, size)
	for j := range cells {
		cells[j] = make([]bool, size)
		for i := range cells[j] {
			center := mgl64.Vec2{
				halfGridSide + float64(i)*gridSide,
				halfGridSide + float64(j)*gridSide,
			}
			for _, wall := range walls {
				if wall.ContainsPoint(center) {
					cells[j][i] = true
					break
				}
			}
		}
	}
	return New(cells), nil
}

func wallVerticesFitGrid(walls []*actor.Body, size int) bool {
	for _, wall := range walls {
		for _, v := range wall.Vertices() {
			for axis := 0; axis < 2; axis++ {
				rounded := math.Round(v[axis]*float64(size)) / float64(size)
				if math.Abs(rounded-v[axis]) > vertexEpsilon {
					return false
				}
			}
		}
	}
	return true
}

// IsWall reports whether grid cell (i, j) is a wall. Out-of-range cells are
// walls.
func (m *Maze) IsWall(i, j int) bool {
	return !m.OpenVertex(i, j)
}

// OpenVertex reports whether the (i, j) cell is open, i.e. not a wall.
func (m *Maze) OpenVertex(i, j int) bool {
	if i < 0 || j < 0 || i >= m.Size || j >= m.Size {
		return false
	}
	return !m.cells[j][i]
}

// ValidDirections reports the open neighbors of the (i, j) cell.
// The result is indexed [axis][direction], direction 0 negative, 1
// positive.
func (m *Maze) ValidDirections(i, j int) [2][2]bool {
	return [2][2]bool{
		{m.OpenVertex(i-1, j), m.OpenVertex(i+1, j)},
		{m.OpenVertex(i, j-1), m.OpenVertex(i, j+1)},
	}
}

// Neighbors returns the open 4-neighbors of cell (i, j), in the grid's
// (row, column) indexing.
func (m *Maze) Neighbors(i, j int) [][2]int {
	var neighbors [][2]int
	if i > 0 && !m.cells[i-1][j] {
		neighbors = append(neighbors, [2]int{i - 1, j})
	}
	if i < m.Size-1 && !m.cells[i+1][j] {
		neighbors = append(neighbors, [2]int{i + 1, j})
	}
	if j > 0 && !m.cells[i][j-1] {
		neighbors = append(neighbors, [2]int{i, j - 1})
	}
	if j < m.Size-1 && !m.cells[i][j+1] {
		neighbors = append(neighbors, [2]int{i, j + 1})
	}
	return neighbors
}

// NeighborDict returns the open neighbors of every cell.
func (m *Maze) NeighborDict() map[[2]int][][2]int {
	neighbors := make(map[[2]int][][2]int, m.Size*m.Size)
	for i := 0; i < m.Size; i++ {
		for j := 0; j < m.Size; j++ {
			neighbors[[2]int{i, j}] = m.Neighbors(i, j)
		}
	}
	return neighbors
}

// AddWall fills the rectangle of cells spanned by the inclusive index
// ranges with walls.
func (m *Maze) AddWall(xRange, yRange [2]int) {
	for x := xRange[0]; x <= xRange[1]; x++ {
		for y := yRange[0]; y <= yRange[1]; y++ {
			m.cells[x][y] = true
		}
	}
}

// AddOuterWalls makes the maze borders walls. This can disrupt properties
// of the maze, e.g. introduce dead ends where there were none.
func (m *Maze) AddOuterWalls() {
	for i := 0; i < m.Size; i++ {
		m.cells[0][i] = true
		m.cells[m.Size-1][i] = true
		m.cells[i][0] = true
		m.cells[i][m.Size-1] = true
	}
}

// WallShapes returns one square vertex loop per wall cell, in world
// coordinates. Bodies built from these shapes round-trip through
// FromBodies.
func (m *Maze) WallShapes() [][]mgl64.Vec2 {
	var shapes [][]mgl64.Vec2
	for x := 0; x < m.Size; x++ {
		for y := 0; y < m.Size; y++ {
			if !m.cells[y][x] {
				continue
			}
			x0 := float64(x) * m.GridSide
			x1 := float64(x+1) * m.GridSide
			y0 := float64(y) * m.GridSide
			y1 := float64(y+1) * m.GridSide
			shapes = append(shapes, []mgl64.Vec2{
				{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0},
			})
		}
	}
	return shapes
}

// ToBodies converts the wall cells to one square body per cell, drawing ids
// from ids. mass is typically math.Inf(1) so the walls are immovable.
func (m *Maze) ToBodies(ids *actor.Counter, mass float64) ([]*actor.Body, error) {
	shapes := m.WallShapes()
	bodies := make([]*actor.Body, 0, len(shapes))
	for _, shape := range shapes {
		body, err := actor.NewBody(actor.BodyConfig{
			Vertices: shape,
			Mass:     mass,
		}, ids)
		if err != nil {
			return nil, fmt.Errorf("maze wall body: %w", err)
		}
		bodies = append(bodies, body)
	}
	return bodies, nil
}

// BackgroundGridShapes returns thin rectangles along the channel
// centerlines of the maze, a purely visual aid for renderers.
func (m *Maze) BackgroundGridShapes(lineThickness float64) [][]mgl64.Vec2 {
	var shapes [][]mgl64.Vec2
	addShape := func(minX, maxX, minY, maxY float64) {
		shapes = append(shapes, []mgl64.Vec2{
			{minX, minY}, {maxX, minY}, {maxX, maxY}, {minX, maxY},
		})
	}
	for i := 0; i < m.Size; i++ {
		center := m.HalfGridSide + float64(i)*m.GridSide
		addShape(center-0.5*lineThickness, center+0.5*lineThickness, 0, 1)
		addShape(0, 1, center-0.5*lineThickness, center+0.5*lineThickness)
	}
	return shapes
}

// SampleRandomPosition samples a random open position on the edges of the
// maze. With offIntersection, the position is uniform along the sampled
// edge rather than at its endpoint.
func (m *Maze) SampleRandomPosition(rng *rand.Rand, offIntersection bool) (mgl64.Vec2, error) {
	type edge struct {
		cell       [2]int // (x, y) of the lower/left endpoint
		horizontal bool
	}
	var edges []edge
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			if m.cells[y][x] {
				continue
			}
			if x+1 < m.Size && !m.cells[y][x+1] {
				edges = append(edges, edge{cell: [2]int{x, y}, horizontal: true})
			}
			if y+1 < m.Size && !m.cells[y+1][x] {
				edges = append(edges, edge{cell: [2]int{x, y}, horizontal: false})
			}
		}
	}
	if len(edges) == 0 {
		return mgl64.Vec2{}, ErrNoOpenPoint
	}

	picked := edges[rng.Intn(len(edges))]
	position := mgl64.Vec2{float64(picked.cell[0]), float64(picked.cell[1])}
	if offIntersection {
		offset := rng.Float64()
		if picked.horizontal {
			position[0] += offset
		} else {
			position[1] += offset
		}
	}
	return mgl64.Vec2{
		m.HalfGridSide + position[0]*m.GridSide,
		m.HalfGridSide + position[1]*m.GridSide,
	}, nil
}

// SampleOpenPoint samples a uniformly random open cell.
func (m *Maze) SampleOpenPoint(rng *rand.Rand) ([2]int, error) {
	points, err := m.SampleDistinctOpenPoints(rng, 1)
	if err != nil {
		return [2]int{}, err
	}
	return points[0], nil
}

// SampleDistinctOpenPoints samples numPoints distinct open cells.
func (m *Maze) SampleDistinctOpenPoints(rng *rand.Rand, numPoints int) ([][2]int, error) {
	var candidates [][2]int
	for i := 0; i < m.Size; i++ {
		for j := 0; j < m.Size; j++ {
			if !m.cells[i][j] {
				candidates = append(candidates, [2]int{i, j})
			}
		}
	}
	if len(candidates) < numPoints {
		return nil, ErrNoOpenPoint
	}
	rng.Shuffle(len(candidates), func(a, b int) {
		candidates[a], candidates[b] = candidates[b], candidates[a]
	})
	return candidates[:numPoints], nil
}
