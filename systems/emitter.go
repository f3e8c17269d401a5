package systems

import (
	"github.com/pthm-cable/slits/histogram"
)

// DefaultMaxParticles caps the population of one epoch.
const DefaultMaxParticles = 100000

// Vertical extent of the screen in scene units.
const (
	screenHalfHeight = 2.0
)

// Particle is a single impact on the screen in scene space.
type Particle struct {
	X float64 `csv:"x"`
	Y float64 `csv:"y"`
	Z float64 `csv:"z"`
}

// Emitter produces batches of particle impacts.
type Emitter struct {
	Sampler      Sampler
	MaxParticles int
}

// NewEmitter creates an emitter with the given sampler and population cap.
func NewEmitter(s Sampler, maxParticles int) *Emitter {
	if maxParticles <= 0 {
		maxParticles = DefaultMaxParticles
	}
	return &Emitter{Sampler: s, MaxParticles: maxParticles}
}

// BatchResult is the state after one batch.
type BatchResult struct {
	Particles  []Particle     // existing with the new particles appended
	Map        *histogram.Map // Updated copy of the input map
	Emitted    int            // Particles added by this batch
	Clamped    bool           // Cap reached; continuous firing should stop
	Rejections int            // Sampler candidates rejected across the batch
	Fallbacks  int            // Draws that hit the sampler attempt ceiling
}

// Headroom returns how many more particles fit under the cap.
func (e *Emitter) Headroom(existing int) int {
	if existing >= e.MaxParticles {
		return 0
	}
	return e.MaxParticles - existing
}

// Generate emits up to count particles on top of existing. m is never
// modified; the result carries an updated clone. New particles are appended
// to existing, reusing its spare capacity, so the first len(existing)
// elements are never written. Callers that branch more than once from the
// same slice must cap it with s[:len(s):len(s)].
func (e *Emitter) Generate(rng Rand, count int, m *histogram.Map, existing []Particle) BatchResult {
	if count < 0 {
		count = 0
	}
	res := BatchResult{}

	headroom := e.Headroom(len(existing))
	if count > headroom {
		count = headroom
		res.Clamped = true
	}
	if len(existing)+count >= e.MaxParticles {
		res.Clamped = true
	}

	next := m.Clone()
	e.preseed(rng, count, next)

	out := existing

	z := -next.Params().ScreenDistance
	bs := next.BinSize()
	for i := 0; i < count; i++ {
		key, rejected, fallback := e.Sampler.PickBin(next, rng)
		res.Rejections += rejected
		if fallback {
			res.Fallbacks++
		}

		next.Increment(key)
		out = append(out, Particle{
			X: next.Center(key) + (rng.Float64()-0.5)*bs,
			Y: (rng.Float64() - 0.5) * 2 * screenHalfHeight,
			Z: z,
		})
	}

	res.Particles = out
	res.Map = next
	res.Emitted = count
	return res
}

// preseed bins a uniform position per requested particle so the map holds
// an entry for every naive landing spot before sampling runs.
func (e *Emitter) preseed(rng Rand, count int, m *histogram.Map) {
	opts := m.Options()
	span := opts.RangeMax - opts.RangeMin
	if span <= 0 {
		return
	}
	lo := m.KeyFor(opts.RangeMin)
	for i := 0; i < count; i++ {
		x := opts.RangeMin + rng.Float64()*span
		step := histogram.Key((x - opts.RangeMin) / opts.BinSize)
		m.GetOrCreate(lo + step)
	}
}
