package plume

import (
	"errors"
	"math"
	"testing"

	"github.com/akmonengine/plume/actor"
	"github.com/akmonengine/plume/maze"
	"github.com/go-gl/mathgl/mgl64"
)

// mazeState builds a 3x3 maze with a single wall cell at grid (2, 0) and an
// avatar at the given position and velocity. Grid vertices sit at odd
// multiples of 1/6.
func mazeState(t *testing.T, position, velocity mgl64.Vec2) (*State, *actor.Body, *MazePhysics) {
	t.Helper()
	state := NewState()

	cells := [][]bool{
		{false, false, true},
		{false, false, false},
		{false, false, false},
	}
	walls, err := maze.New(cells).ToBodies(state.Counter(), math.Inf(1))
	if err != nil {
		t.Fatal(err)
	}
	state.AddLayer("walls", walls...)

	avatar, err := state.NewBody("avatar", actor.BodyConfig{
		Shape:    "circle",
		Scale:    0.05,
		Position: position,
		Velocity: velocity,
	})
	if err != nil {
		t.Fatal(err)
	}

	physics := &MazePhysics{MazeLayer: "walls", AvatarLayers: []string{"avatar"}}
	if err := physics.Reset(state); err != nil {
		t.Fatal(err)
	}
	return state, avatar, physics
}

func TestMazePhysicsSubsteps(t *testing.T) {
	state, _, physics := mazeState(t, mgl64.Vec2{1. / 6, 1. / 6}, mgl64.Vec2{0.1, 0})
	if err := physics.ApplyPhysics(state, 2); !errors.Is(err, ErrMazeSubsteps) {
		t.Errorf("err = %v, want ErrMazeSubsteps", err)
	}
}

func TestMazePhysicsOffGrid(t *testing.T) {
	state, _, physics := mazeState(t, mgl64.Vec2{0.25, 0.25}, mgl64.Vec2{0.1, 0})
	if err := physics.ApplyPhysics(state, 1); !errors.Is(err, ErrOffMazeGrid) {
		t.Errorf("err = %v, want ErrOffMazeGrid", err)
	}
}

func TestMazePhysicsStationaryOffGridTolerated(t *testing.T) {
	// A motionless body is never checked against the grid.
	state, _, physics := mazeState(t, mgl64.Vec2{0.25, 0.25}, mgl64.Vec2{})
	if err := physics.ApplyPhysics(state, 1); err != nil {
		t.Fatal(err)
	}
}

func TestMazePhysicsVertexClipping(t *testing.T) {
	tests := []struct {
		name     string
		velocity mgl64.Vec2
		want     mgl64.Vec2
	}{
		// The (1/6, 1/6) vertex is the bottom-left corner: negative
		// directions lead off the maze.
		{"blocked direction stops", mgl64.Vec2{-0.1, 0}, mgl64.Vec2{}},
		{"open direction passes", mgl64.Vec2{0.1, 0}, mgl64.Vec2{0.1, 0}},
		{"diagonal keeps dominant axis", mgl64.Vec2{0.05, 0.1}, mgl64.Vec2{0, 0.1}},
		// A step of 0.4 overshoots the (1/2, 1/6) vertex, whose +x
		// continuation is the wall cell: travel stops at the vertex, one
		// grid side away.
		{"overshoot into wall", mgl64.Vec2{0.4, 0}, mgl64.Vec2{1. / 3, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, avatar, physics := mazeState(t, mgl64.Vec2{1. / 6, 1. / 6}, tt.velocity)
			if err := physics.ApplyPhysics(state, 1); err != nil {
				t.Fatal(err)
			}
			if !vec2Equal(avatar.Velocity(), tt.want, 1e-9) {
				t.Errorf("velocity = %v, want %v", avatar.Velocity(), tt.want)
			}
		})
	}
}

func TestMazePhysicsEdgeRedirect(t *testing.T) {
	// Mid-edge, the perpendicular component is dropped and motion continues
	// along the corridor.
	state, avatar, physics := mazeState(t, mgl64.Vec2{0.25, 1. / 6}, mgl64.Vec2{0.1, 0.5})
	if err := physics.ApplyPhysics(state, 1); err != nil {
		t.Fatal(err)
	}

	if !vec2Equal(avatar.Velocity(), mgl64.Vec2{0.1, 0}, 1e-9) {
		t.Errorf("velocity = %v, want (0.1, 0)", avatar.Velocity())
	}
	if !floatEqual(avatar.Position()[1], 1./6, 1e-9) {
		t.Errorf("y position = %v, want snapped to 1/6", avatar.Position()[1])
	}
}

func TestMazePhysicsSnapsDrift(t *testing.T) {
	// Numerical drift below gridEpsilon is snapped back onto the grid line.
	drifted := mgl64.Vec2{0.25, 1./6 + 5e-6}
	state, avatar, physics := mazeState(t, drifted, mgl64.Vec2{0.1, 0})
	if err := physics.ApplyPhysics(state, 1); err != nil {
		t.Fatal(err)
	}
	if avatar.Position()[1] == drifted[1] {
		t.Error("drifted y position was not snapped")
	}
	if !floatEqual(avatar.Position()[1], 1./6, 1e-9) {
		t.Errorf("y position = %v, want 1/6", avatar.Position()[1])
	}
}

func TestMazePhysicsConstantSpeed(t *testing.T) {
	state, avatar, physics := mazeState(t, mgl64.Vec2{0.25, 1. / 6}, mgl64.Vec2{0.2, 0})
	physics.ConstantSpeed = 0.1
	if err := physics.ApplyPhysics(state, 1); err != nil {
		t.Fatal(err)
	}

	// The requested velocity maps to (v + sign(v)) * speed.
	if !vec2Equal(avatar.Velocity(), mgl64.Vec2{1.2 * 0.1, 0}, 1e-9) {
		t.Errorf("velocity = %v, want (0.12, 0)", avatar.Velocity())
	}
}

func TestMazePhysicsMaxSpeed(t *testing.T) {
	state, avatar, physics := mazeState(t, mgl64.Vec2{0.25, 1. / 6}, mgl64.Vec2{0.08, 0})
	physics.MaxSpeed = 0.05
	if err := physics.ApplyPhysics(state, 1); err != nil {
		t.Fatal(err)
	}
	if !vec2Equal(avatar.Velocity(), mgl64.Vec2{0.05, 0}, 1e-9) {
		t.Errorf("velocity = %v, want clipped (0.05, 0)", avatar.Velocity())
	}
}

func TestMazePhysicsFacingAngle(t *testing.T) {
	tests := []struct {
		name     string
		velocity mgl64.Vec2
		want     float64
	}{
		{"right", mgl64.Vec2{0.1, 0}, -math.Pi / 2},
		{"up", mgl64.Vec2{0, 0.1}, 0},
		{"down", mgl64.Vec2{0, -0.1}, math.Pi},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Mid-maze vertex so every direction is open.
			state, avatar, physics := mazeState(t, mgl64.Vec2{0.5, 0.5}, tt.velocity)
			if err := physics.ApplyPhysics(state, 1); err != nil {
				t.Fatal(err)
			}
			if !floatEqual(avatar.Angle(), tt.want, 1e-9) {
				t.Errorf("angle = %v, want %v", avatar.Angle(), tt.want)
			}
		})
	}
}
