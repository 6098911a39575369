package plume

import (
	"errors"
	"math"
	"testing"

	"github.com/akmonengine/plume/actor"
	"github.com/go-gl/mathgl/mgl64"
)

func tetherState(t *testing.T, layer string, cfgs ...actor.BodyConfig) (*State, []*actor.Body) {
	t.Helper()
	state := NewState()
	bodies := make([]*actor.Body, len(cfgs))
	for i, cfg := range cfgs {
		if cfg.Shape == "" {
			cfg.Shape = "circle"
		}
		if cfg.Scale == 0 {
			cfg.Scale = 0.1
		}
		b, err := state.NewBody(layer, cfg)
		if err != nil {
			t.Fatal(err)
		}
		bodies[i] = b
	}
	return state, bodies
}

func TestTetherTranslational(t *testing.T) {
	// Without rotation every member gets the mass-weighted mean velocity and
	// zero spin.
	state, bodies := tetherState(t, "pair",
		actor.BodyConfig{Position: mgl64.Vec2{0.2, 0.5}, Velocity: mgl64.Vec2{1, 0}, Mass: 3},
		actor.BodyConfig{Position: mgl64.Vec2{0.8, 0.5}, Velocity: mgl64.Vec2{-1, 0}, AngleVel: 2},
	)

	tether := &Tether{Layers: []string{"pair"}}
	if err := tether.ApplyPhysics(state, 1); err != nil {
		t.Fatal(err)
	}

	want := mgl64.Vec2{0.5, 0}
	for i, b := range bodies {
		if !vec2Equal(b.Velocity(), want, 1e-9) {
			t.Errorf("body %d velocity = %v, want %v", i, b.Velocity(), want)
		}
		if b.AngleVel() != 0 {
			t.Errorf("body %d angle vel = %v, want 0", i, b.AngleVel())
		}
	}
}

func TestTetherRotational(t *testing.T) {
	// Two equal masses moving oppositely: zero net momentum turns entirely
	// into a shared rotation about the center of mass.
	state, bodies := tetherState(t, "pair",
		actor.BodyConfig{Position: mgl64.Vec2{0.1, 0}, Velocity: mgl64.Vec2{0, 1}},
		actor.BodyConfig{Position: mgl64.Vec2{-0.1, 0}, Velocity: mgl64.Vec2{0, -1}},
	)

	tether := NewTether("pair")
	if err := tether.ApplyPhysics(state, 1); err != nil {
		t.Fatal(err)
	}

	b0, b1 := bodies[0], bodies[1]
	if b0.AngleVel() == 0 {
		t.Error("rotational tether left zero angular velocity")
	}
	if !floatEqual(b0.AngleVel(), b1.AngleVel(), 1e-9) {
		t.Errorf("angular velocities differ: %v vs %v", b0.AngleVel(), b1.AngleVel())
	}
	if !vec2Equal(totalMomentum(b0, b1), mgl64.Vec2{}, 1e-9) {
		t.Errorf("net momentum = %v, want zero", totalMomentum(b0, b1))
	}
	// Opposite members orbit oppositely.
	if !vec2Equal(b0.Velocity(), b1.Velocity().Mul(-1), 1e-9) {
		t.Errorf("velocities not antisymmetric: %v vs %v", b0.Velocity(), b1.Velocity())
	}
}

func TestTetherAnchorSpinOnly(t *testing.T) {
	// A body spinning in place on the anchor keeps its spin and gains no
	// translation.
	state, bodies := tetherState(t, "one",
		actor.BodyConfig{Position: mgl64.Vec2{0.5, 0.5}, AngleVel: 2},
	)

	anchor := mgl64.Vec2{0.5, 0.5}
	tether := NewTether("one")
	tether.Anchor = &anchor
	if err := tether.ApplyPhysics(state, 1); err != nil {
		t.Fatal(err)
	}

	b := bodies[0]
	if !vec2Equal(b.Velocity(), mgl64.Vec2{}, 1e-9) {
		t.Errorf("velocity = %v, want zero", b.Velocity())
	}
	if !floatEqual(b.AngleVel(), 2, 1e-9) {
		t.Errorf("angle vel = %v, want 2", b.AngleVel())
	}
}

func TestTetherAnchorOrbit(t *testing.T) {
	// A body moving tangentially past an anchor is redirected into an orbit
	// around it.
	state, bodies := tetherState(t, "one",
		actor.BodyConfig{Position: mgl64.Vec2{0.2, 0}, Velocity: mgl64.Vec2{0, 0.4}},
	)

	anchor := mgl64.Vec2{0, 0}
	tether := NewTether("one")
	tether.Anchor = &anchor
	if err := tether.ApplyPhysics(state, 100); err != nil {
		t.Fatal(err)
	}

	b := bodies[0]
	if b.AngleVel() <= 0 {
		t.Errorf("angle vel = %v, want counterclockwise orbit", b.AngleVel())
	}
	if b.Velocity()[1] <= 0 {
		t.Errorf("velocity = %v, want tangential motion upward", b.Velocity())
	}
	if b.Velocity().Len() > 0.4+1e-9 {
		t.Errorf("speed = %v, want at most the incoming 0.4", b.Velocity().Len())
	}
}

func TestTetherInfiniteMassNoOp(t *testing.T) {
	state, bodies := tetherState(t, "pair",
		actor.BodyConfig{Position: mgl64.Vec2{0.2, 0.5}, Velocity: mgl64.Vec2{1, 0}},
		actor.BodyConfig{Position: mgl64.Vec2{0.8, 0.5}, Mass: math.Inf(1)},
	)

	if err := NewTether("pair").ApplyPhysics(state, 1); err != nil {
		t.Fatal(err)
	}

	if !vec2Equal(bodies[0].Velocity(), mgl64.Vec2{1, 0}, 0) {
		t.Errorf("velocity = %v, want unchanged (1, 0)", bodies[0].Velocity())
	}
}

func TestTetherEmptyLayer(t *testing.T) {
	state := NewState()
	state.AddLayer("empty")
	if err := NewTether("empty").ApplyPhysics(state, 1); err != nil {
		t.Fatal(err)
	}
}

func TestTetherZippedLayersGroups(t *testing.T) {
	// Same-index bodies across the layers form independent rigid groups.
	state := NewState()
	cfg := func(pos, vel mgl64.Vec2) actor.BodyConfig {
		return actor.BodyConfig{Shape: "circle", Scale: 0.05, Position: pos, Velocity: vel}
	}
	var bodies [4]*actor.Body
	var err error
	if bodies[0], err = state.NewBody("left", cfg(mgl64.Vec2{0.1, 0.1}, mgl64.Vec2{1, 0})); err != nil {
		t.Fatal(err)
	}
	if bodies[1], err = state.NewBody("left", cfg(mgl64.Vec2{0.1, 0.9}, mgl64.Vec2{0, 2})); err != nil {
		t.Fatal(err)
	}
	if bodies[2], err = state.NewBody("right", cfg(mgl64.Vec2{0.3, 0.1}, mgl64.Vec2{0, 0})); err != nil {
		t.Fatal(err)
	}
	if bodies[3], err = state.NewBody("right", cfg(mgl64.Vec2{0.3, 0.9}, mgl64.Vec2{0, 0})); err != nil {
		t.Fatal(err)
	}

	zipped := NewTetherZippedLayers("left", "right")
	zipped.UpdateAngleVel = false
	if err := zipped.ApplyPhysics(state, 1); err != nil {
		t.Fatal(err)
	}

	// Group 0 is bodies 0 and 2, group 1 is bodies 1 and 3.
	if !vec2Equal(bodies[0].Velocity(), mgl64.Vec2{0.5, 0}, 1e-9) ||
		!vec2Equal(bodies[2].Velocity(), mgl64.Vec2{0.5, 0}, 1e-9) {
		t.Errorf("group 0 velocities = %v, %v, want (0.5, 0)",
			bodies[0].Velocity(), bodies[2].Velocity())
	}
	if !vec2Equal(bodies[1].Velocity(), mgl64.Vec2{0, 1}, 1e-9) ||
		!vec2Equal(bodies[3].Velocity(), mgl64.Vec2{0, 1}, 1e-9) {
		t.Errorf("group 1 velocities = %v, %v, want (0, 1)",
			bodies[1].Velocity(), bodies[3].Velocity())
	}
}

func TestTetherZippedLayersLengthMismatch(t *testing.T) {
	state := NewState()
	cfg := actor.BodyConfig{Shape: "circle", Scale: 0.05}
	if _, err := state.NewBody("left", cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := state.NewBody("right", cfg); err != nil {
		t.Fatal(err)
	}
	if _, err := state.NewBody("right", cfg); err != nil {
		t.Fatal(err)
	}

	err := NewTetherZippedLayers("left", "right").ApplyPhysics(state, 1)
	if !errors.Is(err, ErrLayerLengthMismatch) {
		t.Errorf("err = %v, want ErrLayerLengthMismatch", err)
	}
}
