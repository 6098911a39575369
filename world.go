// Package plume is the simulation kernel of a 2D object-oriented task
// engine. It advances rigid polygonal bodies through time under composable
// forces, detects and resolves collisions with continuous-time contact
// inference, and enforces rigid tether and maze constraints.
//
// Bodies live in a State, an ordered collection of named layers. A Physics
// orchestrator is configured with force bindings and corrective physics and
// drives the state through fixed substeps:
//
//	state := plume.NewState()
//	avatar, _ := state.NewBody("avatar", actor.BodyConfig{Shape: "circle", Scale: 0.1})
//
//	physics := &plume.Physics{
//		Forces: []plume.ForceBinding{
//			plume.Bind(plume.Drag{Coeff: 0.25}, plume.On("avatar")),
//			plume.Bind(plume.NewCollision(), plume.On("avatar"), plume.On("walls")),
//		},
//		Substeps: 10,
//	}
//	physics.Reset(state)
//	for running {
//		physics.Step(state)
//	}
package plume

import (
	"fmt"

	"github.com/akmonengine/plume/actor"
	"go.uber.org/zap"
)

// State is an ordered mapping from layer name to bodies. Layer iteration
// order is insertion order. The state owns the body id counter; the caller
// owns the layer contents and may remove bodies between steps.
type State struct {
	names  []string
	layers map[string][]*actor.Body
	ids    actor.Counter
}

// NewState returns an empty state.
func NewState() *State {
	return &State{layers: map[string][]*actor.Body{}}
}

// AddLayer appends bodies to the named layer, creating it if absent.
func (s *State) AddLayer(name string, bodies ...*actor.Body) {
	if _, ok := s.layers[name]; !ok {
		s.names = append(s.names, name)
	}
	s.layers[name] = append(s.layers[name], bodies...)
}

// Layer returns the bodies of the named layer.
func (s *State) Layer(name string) []*actor.Body {
	return s.layers[name]
}

// SetLayer replaces the contents of the named layer, creating it if absent.
func (s *State) SetLayer(name string, bodies []*actor.Body) {
	if _, ok := s.layers[name]; !ok {
		s.names = append(s.names, name)
	}
	s.layers[name] = bodies
}

// LayerNames returns the layer names in insertion order.
func (s *State) LayerNames() []string {
	return s.names
}

// Counter returns the state's body id source.
func (s *State) Counter() *actor.Counter {
	return &s.ids
}

// NewBody builds a body with an id from the state's counter and appends it
// to the named layer.
func (s *State) NewBody(layer string, cfg actor.BodyConfig) (*actor.Body, error) {
	body, err := actor.NewBody(cfg, &s.ids)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", layer, err)
	}
	s.AddLayer(layer, body)
	return body, nil
}

// ForEachBody calls fn for every body, in layer insertion order.
func (s *State) ForEachBody(fn func(layer string, body *actor.Body)) {
	for _, name := range s.names {
		for _, body := range s.layers[name] {
			fn(name, body)
		}
	}
}

// Physics composes forces and corrective physics and integrates positions.
// One Step runs Substeps substeps; within each, every force binding is
// applied over the cartesian product of its selectors, then every
// corrective runs, then positions integrate at dt = 1/Substeps. Correctives
// therefore see post-force velocities while all positions are still
// pre-integration.
//
// Physics implements Corrective, so a Physics can be nested as the
// corrective of another.
type Physics struct {
	Forces     []ForceBinding
	Corrective []Corrective
	Substeps   int
	// Events, if set, is flushed after each full step so listeners see one
	// contact transition per step.
	Events *Events
	Logger *zap.Logger
}

func (p *Physics) substeps() int {
	if p.Substeps < 1 {
		return 1
	}
	return p.Substeps
}

func (p *Physics) logger() *zap.Logger {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return p.Logger
}

// Step advances the state by one full step.
func (p *Physics) Step(state *State) error {
	substeps := p.substeps()
	for i := 0; i < substeps; i++ {
		if err := p.ApplyPhysics(state, substeps); err != nil {
			return err
		}
	}
	p.Events.Flush()
	return nil
}

// ApplyPhysics runs one substep: forces, correctives, then integration.
func (p *Physics) ApplyPhysics(state *State, substeps int) error {
	for _, binding := range p.Forces {
		if err := p.applyBinding(state, binding, substeps); err != nil {
			return err
		}
	}

	for _, corrective := range p.Corrective {
		if err := corrective.ApplyPhysics(state, substeps); err != nil {
			return err
		}
	}

	dt := 1 / float64(substeps)
	state.ForEachBody(func(_ string, body *actor.Body) {
		body.UpdatePosFromVel(dt)
	})
	return nil
}

// applyBinding steps a force over the cartesian product of its selectors'
// layers and, within each layer combination, of the layers' bodies.
func (p *Physics) applyBinding(state *State, binding ForceBinding, substeps int) error {
	layers := make([]string, len(binding.Selectors))
	bodies := make([]*actor.Body, len(binding.Selectors))

	var stepBodies func(slot int) error
	stepBodies = func(slot int) error {
		if slot == len(layers) {
			return binding.Force.Step(substeps, bodies...)
		}
		for _, body := range state.Layer(layers[slot]) {
			bodies[slot] = body
			if err := stepBodies(slot + 1); err != nil {
				return err
			}
		}
		return nil
	}

	var stepLayers func(slot int) error
	stepLayers = func(slot int) error {
		if slot == len(layers) {
			return stepBodies(0)
		}
		for _, name := range binding.Selectors[slot] {
			if _, ok := state.layers[name]; !ok {
				return fmt.Errorf("force binding: %w %q", ErrUnknownLayer, name)
			}
			layers[slot] = name
			if err := stepLayers(slot + 1); err != nil {
				return err
			}
		}
		return nil
	}

	return stepLayers(0)
}

// Reset resets every force and corrective. Called once per episode before
// any step, e.g. to re-infer a maze from wall geometry.
func (p *Physics) Reset(state *State) error {
	p.logger().Debug("physics reset",
		zap.Int("substeps", p.substeps()),
		zap.Strings("layers", state.LayerNames()))
	for _, binding := range p.Forces {
		if err := binding.Force.Reset(state); err != nil {
			return err
		}
	}
	for _, corrective := range p.Corrective {
		if err := corrective.Reset(state); err != nil {
			return err
		}
	}
	return nil
}
