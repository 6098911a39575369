package plume

import (
	"fmt"
	"math"

	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/maze"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

// gridEpsilon is the imprecision tolerance when deciding whether a body
// sits on a maze grid line.
const gridEpsilon = 1e-5

// MazePhysics constrains bodies in its avatar layers to move on the grid
// of the maze inferred from the wall bodies in MazeLayer. It is used as a
// corrective, and must be the last one so its velocities are enacted
// unchanged. It also requires a single-substep orchestrator.
type MazePhysics struct {
	MazeLayer    string
	AvatarLayers []string
	// ConstantSpeed, if positive, pins moving avatars to a fixed speed.
	ConstantSpeed float64
	// MaxSpeed, if positive, clips each velocity component. Ignored when
	// ConstantSpeed is set.
	MaxSpeed float64
	Logger   *zap.Logger

	maze *maze.Maze
}

func (p *MazePhysics) logger() *zap.Logger {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return p.Logger
}

// Reset re-infers the maze from the wall bodies.
func (p *MazePhysics) Reset(state *State) error {
	m, err := maze.FromBodies(state.Layer(p.MazeLayer))
	if err != nil {
		return fmt.Errorf("maze layer %q: %w", p.MazeLayer, err)
	}
	p.maze = m
	p.logger().Debug("maze inferred",
		zap.String("layer", p.MazeLayer), zap.Int("size", m.Size))
	return nil
}

func (p *MazePhysics) ApplyPhysics(state *State, substeps int) error {
	if substeps != 1 {
		return fmt.Errorf("%w: got %d", ErrMazeSubsteps, substeps)
	}
	for _, name := range p.AvatarLayers {
		for _, body := range state.Layer(name) {
			if err := p.updateBodyInMaze(body); err != nil {
				return fmt.Errorf("layer %q body %d: %w", name, body.ID(), err)
			}
		}
	}
	return nil
}

func (p *MazePhysics) updateBodyInMaze(body *actor.Body) error {
	velocity := body.Velocity()
	if velocity == (mgl64.Vec2{}) ||
		math.IsNaN(velocity[0]) || math.IsNaN(velocity[1]) {
		return nil
	}

	if p.ConstantSpeed > 0 {
		velocity = velocity.Add(sign2(velocity)).Mul(p.ConstantSpeed)
	} else if p.MaxSpeed > 0 {
		velocity = mgl64.Vec2{
			clip(velocity[0], -p.MaxSpeed, p.MaxSpeed),
			clip(velocity[1], -p.MaxSpeed, p.MaxSpeed),
		}
	}

	position, affordances, err := p.positionAffordances(body.Position())
	if err != nil {
		return err
	}
	body.SetPosition(position)
	newVelocity, err := p.newVelocity(position, velocity, affordances, -1)
	if err != nil {
		return err
	}

	p.updateBodyAngle(body, newVelocity)
	body.SetVelocity(newVelocity)
	return nil
}

// positionAffordances computes how far a position may travel along each
// grid axis before hitting an intersection or leaving the maze. Axis
// coordinates within gridEpsilon of a grid line are snapped so numerical
// drift does not accumulate; the snapped position is returned.
//
// affordances[axis][0] is the (non-positive) reach in the negative
// direction, affordances[axis][1] the reach in the positive direction.
func (p *MazePhysics) positionAffordances(position mgl64.Vec2) (mgl64.Vec2, [2][2]float64, error) {
	gridSide := p.maze.GridSide
	halfGridSide := p.maze.HalfGridSide

	var nearestInds, inds [2]int
	var onGrid [2]bool
	for axis := 0; axis < 2; axis++ {
		nearestInds[axis] = int(math.Round(position[axis]/gridSide - 0.5))
		rounded := halfGridSide + float64(nearestInds[axis])*gridSide
		if math.Abs(rounded-position[axis]) < gridEpsilon {
			onGrid[axis] = true
			position[axis] = rounded
			inds[axis] = nearestInds[axis]
		} else {
			inds[axis] = int(math.Floor((position[axis] - halfGridSide) / gridSide))
		}
	}

	var affordances [2][2]float64
	switch {
	case !onGrid[0] && !onGrid[1]:
		return position, affordances, ErrOffMazeGrid
	case onGrid[0] && onGrid[1]:
		// At a grid vertex: reach one grid side into each open direction.
		valid := p.maze.ValidDirections(inds[0], inds[1])
		for axis := 0; axis < 2; axis++ {
			if valid[axis][0] {
				affordances[axis][0] = -gridSide
			}
			if valid[axis][1] {
				affordances[axis][1] = gridSide
			}
		}
	default:
		// On a grid edge: reach is bounded by the edge's two vertices.
		axis := 0
		if onGrid[0] {
			axis = 1
		}
		affordances[axis][0] = float64(inds[axis])*gridSide + halfGridSide - position[axis]
		affordances[axis][1] = float64(inds[axis]+1)*gridSide + halfGridSide - position[axis]
	}

	return position, affordances, nil
}

// newVelocity clips a requested velocity to the affordances. If the
// primary axis is blocked it resorts to the perpendicular axis; if the
// velocity overshoots an intersection, the remainder is re-clipped against
// the intersection's own affordances.
func (p *MazePhysics) newVelocity(position, velocity mgl64.Vec2, affordances [2][2]float64, axis int) (mgl64.Vec2, error) {
	if axis < 0 {
		axis = 0
		if math.Abs(velocity[1]) > math.Abs(velocity[0]) {
			axis = 1
		}
	}

	if affordances[axis][0] <= velocity[axis] && velocity[axis] <= affordances[axis][1] {
		velocity[1-axis] = 0
		return velocity, nil
	}

	direction := 0
	if velocity[axis] > 0 {
		direction = 1
	}
	if affordances[axis][direction] == 0 {
		// Blocked along this axis; resort to the other one.
		axis = 1 - axis
		direction = 0
		if velocity[axis] > 0 {
			direction = 1
		}
		if affordances[axis][direction] == 0 || velocity[axis] == 0 {
			return mgl64.Vec2{}, nil
		}
		return p.newVelocity(position, velocity, affordances, axis)
	}

	// The velocity reaches past a vertex: travel to the vertex, then
	// spend the remainder against the vertex's affordances.
	position[axis] += affordances[axis][direction]
	_, vertexAffordances, err := p.positionAffordances(position)
	if err != nil {
		return mgl64.Vec2{}, err
	}

	scaling := affordances[axis][direction] / velocity[axis]
	remainder := velocity.Mul(1 - scaling)
	postVertex, err := p.newVelocity(position, remainder, vertexAffordances, -1)
	if err != nil {
		return mgl64.Vec2{}, err
	}

	velocity = velocity.Mul(scaling)
	velocity[1-axis] = 0
	return velocity.Add(postVertex), nil
}

// updateBodyAngle reorients the body to face its direction of travel, so
// avatars rotate as they take turns.
func (p *MazePhysics) updateBodyAngle(body *actor.Body, velocity mgl64.Vec2) {
	var angle float64
	switch {
	case velocity[0] == 0 && velocity[1] == 0:
		return
	case velocity[1] == 0:
		angle = -0.5 * sign(velocity[0]) * math.Pi
	case velocity[1] > 0:
		angle = math.Atan(-velocity[0] / velocity[1])
	default:
		angle = math.Pi + math.Atan(-velocity[0]/velocity[1])
	}

	if math.Abs(angle-body.Angle()) > gridEpsilon {
		body.SetAngle(angle)
	}
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	default:
		return 0
	}
}

func sign2(v mgl64.Vec2) mgl64.Vec2 {
	return mgl64.Vec2{sign(v[0]), sign(v[1])}
}

func clip(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
