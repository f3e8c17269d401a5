package systems

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/slits/histogram"
	"github.com/pthm-cable/slits/optics"
)

func TestGenerateSingleParticle(t *testing.T) {
	m := histogram.New(optics.DefaultParams(), histogram.DefaultOptions())
	e := NewEmitter(DefaultSampler(), DefaultMaxParticles)

	res := e.Generate(rand.New(rand.NewSource(42)), 1, m, nil)

	if len(res.Particles) != 1 || res.Emitted != 1 {
		t.Fatalf("particles = %d emitted = %d, want 1", len(res.Particles), res.Emitted)
	}
	nonZero := 0
	for _, b := range res.Map.Bins() {
		switch b.Count {
		case 0:
		case 1:
			nonZero++
		default:
			t.Fatalf("bin %d count = %d", b.Key, b.Count)
		}
	}
	if nonZero != 1 {
		t.Errorf("bins with count 1 = %d, want exactly 1", nonZero)
	}
	if res.Map.Len() != 801 {
		t.Errorf("map grew to %d bins", res.Map.Len())
	}
	if res.Clamped {
		t.Error("single particle should not hit the cap")
	}
}

func TestGenerateCountConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	m := histogram.New(wideSlits(), histogram.DefaultOptions())
	e := NewEmitter(DefaultSampler(), DefaultMaxParticles)

	var particles []Particle
	for i := 0; i < 5; i++ {
		res := e.Generate(rng, 1000, m, particles)
		particles, m = res.Particles, res.Map
	}

	if len(particles) != 5000 {
		t.Fatalf("particles = %d, want 5000", len(particles))
	}
	sum := 0
	for _, b := range m.Bins() {
		sum += b.Count
	}
	if sum != 5000 || m.TotalCount() != 5000 {
		t.Errorf("bin sum = %d total = %d, want 5000", sum, m.TotalCount())
	}
}

func TestGenerateParticleGeometry(t *testing.T) {
	p := wideSlits()
	m := histogram.New(p, histogram.DefaultOptions())
	e := NewEmitter(DefaultSampler(), DefaultMaxParticles)
	res := e.Generate(rand.New(rand.NewSource(5)), 2000, m, nil)

	bs := m.BinSize()
	for _, pt := range res.Particles {
		if pt.Z != -p.ScreenDistance {
			t.Fatalf("z = %v, want %v", pt.Z, -p.ScreenDistance)
		}
		if math.Abs(pt.Y) > 2 {
			t.Fatalf("y = %v outside the screen", pt.Y)
		}
		if math.Abs(pt.X) > 2+bs {
			t.Fatalf("x = %v outside the screen", pt.X)
		}
		k := res.Map.KeyFor(pt.X)
		if math.Abs(pt.X-res.Map.Center(k)) < bs/2-1e-9 {
			if b, _ := res.Map.Bin(k); b.Count == 0 {
				t.Fatalf("particle at %v landed in an empty bin", pt.X)
			}
		}
	}
}

func TestGenerateIsPure(t *testing.T) {
	m := histogram.New(wideSlits(), histogram.DefaultOptions())
	existing := []Particle{{X: 0.1, Y: 0.2, Z: -3}}
	e := NewEmitter(DefaultSampler(), DefaultMaxParticles)

	res := e.Generate(rand.New(rand.NewSource(9)), 100, m, existing)

	if m.TotalCount() != 0 {
		t.Errorf("input map mutated: total = %d", m.TotalCount())
	}
	if len(existing) != 1 || existing[0] != (Particle{X: 0.1, Y: 0.2, Z: -3}) {
		t.Error("input particles mutated")
	}
	if len(res.Particles) != 101 || res.Particles[0] != existing[0] {
		t.Errorf("result should start with the existing particles, got %d", len(res.Particles))
	}
}

func TestGenerateAppendsInPlace(t *testing.T) {
	m := histogram.New(wideSlits(), histogram.DefaultOptions())
	e := NewEmitter(DefaultSampler(), DefaultMaxParticles)
	rng := rand.New(rand.NewSource(4))

	backing := make([]Particle, 0, 64)
	first := e.Generate(rng, 10, m, backing)
	snapshot := append([]Particle(nil), first.Particles...)

	second := e.Generate(rng, 5, first.Map, first.Particles)
	if len(second.Particles) != 15 {
		t.Fatalf("len = %d, want 15", len(second.Particles))
	}
	if &second.Particles[0] != &backing[:1][0] {
		t.Error("spare capacity was not reused")
	}
	for i, p := range first.Particles {
		if p != snapshot[i] {
			t.Fatalf("particle %d of the earlier batch changed", i)
		}
	}
	if first.Map.TotalCount() != 10 || second.Map.TotalCount() != 15 {
		t.Errorf("map totals = %d / %d, want 10 / 15", first.Map.TotalCount(), second.Map.TotalCount())
	}
}

func TestGenerateClampsAtCapacity(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	m := histogram.New(optics.DefaultParams(), histogram.DefaultOptions())
	e := NewEmitter(DefaultSampler(), 2500)

	var particles []Particle
	for i := 0; i < 5; i++ {
		res := e.Generate(rng, 1000, m, particles)
		particles, m = res.Particles, res.Map
		if len(particles) > e.MaxParticles {
			t.Fatalf("population %d exceeds cap %d", len(particles), e.MaxParticles)
		}
		if i == 2 && (!res.Clamped || res.Emitted != 500) {
			t.Errorf("third batch: clamped=%v emitted=%d, want true 500", res.Clamped, res.Emitted)
		}
		if i > 2 && res.Emitted != 0 {
			t.Errorf("batch %d emitted %d past the cap", i, res.Emitted)
		}
	}
	if m.TotalCount() != 2500 {
		t.Errorf("TotalCount() = %d, want 2500", m.TotalCount())
	}
}

func TestGenerateNegativeCount(t *testing.T) {
	m := histogram.New(optics.DefaultParams(), histogram.DefaultOptions())
	res := NewEmitter(DefaultSampler(), 10).Generate(rand.New(rand.NewSource(1)), -5, m, nil)
	if res.Emitted != 0 || len(res.Particles) != 0 {
		t.Errorf("emitted %d particles for a negative count", res.Emitted)
	}
}
