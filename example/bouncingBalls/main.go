package main

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/akmonengine/plume"
	"github.com/akmonengine/plume/actor"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const (
	ballCount = 8
	steps     = 300
)

// SetupScene builds a bordered frame with balls bouncing around inside it.
func SetupScene(rng *rand.Rand) (*plume.State, *plume.Physics, *plume.Events) {
	state := plume.NewState()

	for _, shape := range actor.BorderWallShapes(0.05, 0.2) {
		wall, err := actor.NewBody(actor.BodyConfig{
			Vertices: shape,
			Mass:     math.Inf(1),
		}, state.Counter())
		if err != nil {
			panic(err)
		}
		state.AddLayer("walls", wall)
	}

	for i := 0; i < ballCount; i++ {
		_, err := state.NewBody("balls", actor.BodyConfig{
			Shape:    "circle",
			Scale:    0.03,
			Position: mgl64.Vec2{0.15 + 0.7*rng.Float64(), 0.3 + 0.6*rng.Float64()},
			Velocity: mgl64.Vec2{0.4 * (rng.Float64() - 0.5), 0.4 * (rng.Float64() - 0.5)},
			Mass:     1,
		})
		if err != nil {
			panic(err)
		}
	}

	events := plume.NewEvents()
	wallBounce := plume.NewCollision()
	wallBounce.Events = events

	ballBounce := plume.NewCollision()
	ballBounce.Symmetric = true
	ballBounce.Events = events

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}

	physics := &plume.Physics{
		Forces: []plume.ForceBinding{
			plume.Bind(plume.DownGravity{G: -0.5}, plume.On("balls")),
			plume.Bind(wallBounce, plume.On("balls"), plume.On("walls")),
			// Bound over the layer twice, the collision is stepped for every
			// ball pair; same-body pairs are skipped by the resolver.
			plume.Bind(ballBounce, plume.On("balls"), plume.On("balls")),
		},
		Substeps: 10,
		Events:   events,
		Logger:   logger,
	}
	return state, physics, events
}

func main() {
	rng := rand.New(rand.NewSource(7))
	state, physics, events := SetupScene(rng)

	events.Subscribe(plume.COLLISION_ENTER, func(event plume.Event) {
		enter := event.(plume.CollisionEnterEvent)
		fmt.Printf("  contact: body %d hits body %d\n", enter.BodyA.ID(), enter.BodyB.ID())
	})
	events.Subscribe(plume.COLLISION_EXIT, func(event plume.Event) {
		exit := event.(plume.CollisionExitEvent)
		fmt.Printf("  contact: body %d leaves body %d\n", exit.BodyA.ID(), exit.BodyB.ID())
	})

	if err := physics.Reset(state); err != nil {
		panic(err)
	}

	for step := 0; step < steps; step++ {
		if err := physics.Step(state); err != nil {
			panic(err)
		}

		if step%50 == 0 {
			fmt.Printf("--- step %d ---\n", step)
			for _, ball := range state.Layer("balls") {
				fmt.Printf("  ball %d: position %v velocity %v\n",
					ball.ID(), ball.Position(), ball.Velocity())
			}
		}
	}

	fmt.Println("done")
}
