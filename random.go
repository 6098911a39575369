package plume

import (
	"math"
	"math/rand"

	"github.com/akmonengine/plume/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// defaultSeed seeds forces whose caller did not inject a source, so runs
// stay reproducible by default.
const defaultSeed = 1

// RandomForce perturbs bodies with a force of magnitude uniform in
// [0, MaxMagnitude] and direction uniform in [0, 2*pi). Rand may be nil, in
// which case a fixed-seed source is used.
type RandomForce struct {
	MaxMagnitude float64
	Rand         *rand.Rand
}

func (f *RandomForce) Step(substeps int, bodies ...*actor.Body) error {
	rng := f.rng()
	for _, body := range bodies {
		r := rng.Float64() * f.MaxMagnitude
		theta := rng.Float64() * 2 * math.Pi
		force := mgl64.Vec2{r * math.Cos(theta), r * math.Sin(theta)}
		applyNewtonian(substeps, []*actor.Body{body}, []mgl64.Vec2{force})
	}
	return nil
}

func (f *RandomForce) Reset(*State) error { return nil }

func (f *RandomForce) rng() *rand.Rand {
	if f.Rand == nil {
		f.Rand = rand.New(rand.NewSource(defaultSeed))
	}
	return f.Rand
}
