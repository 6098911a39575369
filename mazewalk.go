package plume

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/maze"
	"github.com/go-gl/mathgl/mgl64"
)

// mazeWalk holds the state shared by the maze walk forces: the walking
// speed and the maze inferred from the wall layer on reset.
type mazeWalk struct {
	speed     float64
	mazeLayer string
	maze      *maze.Maze
}

func (w *mazeWalk) Reset(state *State) error {
	m, err := maze.FromBodies(state.Layer(w.mazeLayer))
	if err != nil {
		return fmt.Errorf("maze layer %q: %w", w.mazeLayer, err)
	}
	w.maze = m
	return nil
}

// posVel returns the body's position, its velocity normalized to the walk
// speed per axis, and whether the next substep carries it into a grid
// intersection.
func (w *mazeWalk) posVel(body *actor.Body, substeps int) (position, velocity mgl64.Vec2, enteringIntersection bool) {
	position = body.Position()
	velocity = sign2(body.Velocity()).Mul(w.speed)
	next := position.Add(velocity.Mul(1 / float64(substeps)))

	nearest := w.nearestPoint(position)
	intersection := mgl64.Vec2{
		w.maze.HalfGridSide + float64(nearest[0])*w.maze.GridSide,
		w.maze.HalfGridSide + float64(nearest[1])*w.maze.GridSide,
	}

	distStep := math.Abs(next[0]-position[0]) + math.Abs(next[1]-position[1])
	distIntersection := math.Abs(next[0]-intersection[0]) + math.Abs(next[1]-intersection[1])
	enteringIntersection = distStep > distIntersection

	return position, velocity, enteringIntersection
}

// nearestPoint returns the grid indices of the maze vertex nearest to a
// position.
func (w *mazeWalk) nearestPoint(position mgl64.Vec2) [2]int {
	return [2]int{
		int(math.Round(position[0]/w.maze.GridSide - 0.5)),
		int(math.Round(position[1]/w.maze.GridSide - 0.5)),
	}
}

// RandomMazeWalk walks bodies through the maze at constant speed, taking
// random turns at corners and intersections. It is a force, typically
// bound to a prey or distractor layer.
type RandomMazeWalk struct {
	mazeWalk
	// PreventBacktracking stops the walk from reversing direction at an
	// intersection.
	PreventBacktracking bool
	// AllowWallBacktracking permits reversing when the walk runs into a
	// dead end. If false the walk turns at walls but never goes back the
	// way it came.
	AllowWallBacktracking bool
	// OnlyTurnAtWall continues straight through intersections, turning
	// only when blocked.
	OnlyTurnAtWall bool

	rng *rand.Rand
}

// NewRandomMazeWalk walks at the given speed through the maze inferred
// from mazeLayer. Backtracking is prevented by default. A nil rng falls
// back to a fixed-seed source.
func NewRandomMazeWalk(speed float64, mazeLayer string, rng *rand.Rand) *RandomMazeWalk {
	if rng == nil {
		rng = rand.New(rand.NewSource(defaultSeed))
	}
	return &RandomMazeWalk{
		mazeWalk:            mazeWalk{speed: speed, mazeLayer: mazeLayer},
		PreventBacktracking: true,
		rng:                 rng,
	}
}

func (w *RandomMazeWalk) Step(substeps int, bodies ...*actor.Body) error {
	for _, body := range bodies {
		w.stepBody(body, substeps)
	}
	return nil
}

func (w *RandomMazeWalk) stepBody(body *actor.Body, substeps int) {
	if math.IsInf(body.Mass(), 0) {
		return
	}

	position, velocity, enteringIntersection := w.posVel(body, substeps)
	nearest := w.nearestPoint(position)

	var valid [2][2]bool
	switch {
	case enteringIntersection:
		valid = w.maze.ValidDirections(nearest[0], nearest[1])
		w.restrictDirections(&valid, velocity)
	case velocity == (mgl64.Vec2{}):
		// Stationary: start moving along the grid line the body sits on,
		// or in any open direction if it sits at a vertex.
		var onGrid [2]bool
		for axis := 0; axis < 2; axis++ {
			rounded := w.maze.HalfGridSide + float64(nearest[axis])*w.maze.GridSide
			onGrid[axis] = math.Abs(rounded-position[axis]) < gridEpsilon
		}
		if onGrid[0] && onGrid[1] {
			valid = w.maze.ValidDirections(nearest[0], nearest[1])
		} else {
			axis := 1
			if !onGrid[0] && onGrid[1] {
				axis = 0
			}
			valid[axis] = [2]bool{true, true}
		}
	default:
		body.SetVelocity(velocity)
		return
	}

	// Sample a direction among the valid ones. The current velocity
	// component is kept, as it may be needed to reach the intersection.
	best := 0
	bestSample := 0.0
	for i := 0; i < 4; i++ {
		if !valid[i/2][i%2] {
			continue
		}
		sample := w.rng.Float64()
		if sample > bestSample {
			best = i
			bestSample = sample
		}
	}
	velocity[best/2] = (1 + gridEpsilon) * w.speed * float64(2*(best%2)-1)
	body.SetVelocity(velocity)
}

// restrictDirections masks the valid directions according to the
// backtracking options, in place.
func (w *RandomMazeWalk) restrictDirections(valid *[2][2]bool, velocity mgl64.Vec2) {
	if !w.PreventBacktracking {
		return
	}
	axis := 0
	if math.Abs(velocity[1]) > math.Abs(velocity[0]) {
		axis = 1
	}
	direction := sign(velocity[axis])
	if direction == 0 {
		return
	}
	forward := int(0.5 * (1 + direction))
	backward := int(0.5 * (1 - direction))

	canContinue := valid[axis][forward]
	if !canContinue && w.AllowWallBacktracking {
		return
	}
	if canContinue && w.OnlyTurnAtWall {
		*valid = [2][2]bool{}
		valid[axis][forward] = true
		return
	}
	valid[axis][backward] = false
}

// DeterministicMazeWalk walks bodies through the maze following a scripted
// sequence of step velocities, consumed front to back each time a body
// enters an intersection. To drive multiple bodies, interleave their
// velocities.
type DeterministicMazeWalk struct {
	mazeWalk
	stepVelocities []mgl64.Vec2
}

func NewDeterministicMazeWalk(speed float64, mazeLayer string, stepVelocities []mgl64.Vec2) *DeterministicMazeWalk {
	return &DeterministicMazeWalk{
		mazeWalk:       mazeWalk{speed: speed, mazeLayer: mazeLayer},
		stepVelocities: stepVelocities,
	}
}

func (w *DeterministicMazeWalk) Step(substeps int, bodies ...*actor.Body) error {
	for _, body := range bodies {
		w.stepBody(body, substeps)
	}
	return nil
}

func (w *DeterministicMazeWalk) stepBody(body *actor.Body, substeps int) {
	_, velocity, enteringIntersection := w.posVel(body, substeps)
	if !enteringIntersection && velocity != (mgl64.Vec2{}) {
		return
	}
	if len(w.stepVelocities) == 0 {
		return
	}

	next := w.stepVelocities[0]
	w.stepVelocities = w.stepVelocities[1:]
	if sign(next[0]) == sign(velocity[0]) && sign(next[1]) == sign(velocity[1]) {
		return
	}
	merged := velocity.Mul(1 - gridEpsilon).Add(next)
	body.SetVelocity(mgl64.Vec2{
		clip(merged[0], -w.speed, w.speed),
		clip(merged[1], -w.speed, w.speed),
	})
}
