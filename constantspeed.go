package plume

// ConstantSpeed normalizes the velocities of all bodies in its layers to a
// fixed speed. Bodies at rest stay at rest. Typically used as a corrective.
type ConstantSpeed struct {
	Layers []string
	Speed  float64
}

func (c *ConstantSpeed) ApplyPhysics(state *State, substeps int) error {
	for _, name := range c.Layers {
		for _, body := range state.Layer(name) {
			norm := body.Velocity().Len()
			if norm > 0 {
				body.SetVelocity(body.Velocity().Mul(c.Speed / norm))
			}
		}
	}
	return nil
}

func (c *ConstantSpeed) Reset(*State) error { return nil }
