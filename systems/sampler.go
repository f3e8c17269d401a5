// Package systems contains the particle-generation algorithms: bin sampling,
// batch emission and the fast-fire schedule.
package systems

import (
	"github.com/pthm-cable/slits/histogram"
)

// Rand is the subset of *math/rand.Rand used by the samplers.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Sampler defaults.
const (
	DefaultAcceptFloor = 0.01
	DefaultMaxAttempts = 100000
)

// Sampler draws bins weighted by their intensity.
//
// A candidate bin is drawn uniformly from the key set and accepted when a
// uniform p satisfies AcceptFloor < p < intensity. This is not textbook
// envelope rejection sampling; bins barely above the floor are slightly
// under-drawn, and the rendered pattern is calibrated against that.
type Sampler struct {
	AcceptFloor float64 `yaml:"accept_floor"`
	MaxAttempts int     `yaml:"max_attempts"` // Rejections before falling back to the centre bin
}

// DefaultSampler returns a sampler with the standard acceptance window.
func DefaultSampler() Sampler {
	return Sampler{
		AcceptFloor: DefaultAcceptFloor,
		MaxAttempts: DefaultMaxAttempts,
	}
}

// PickBin returns the key of an accepted bin and the number of rejected
// candidates. When MaxAttempts candidates are rejected it returns the bin
// nearest x=0 with fallback set.
func (s Sampler) PickBin(m *histogram.Map, rng Rand) (key histogram.Key, rejections int, fallback bool) {
	keys := m.Keys()
	if len(keys) == 0 {
		return 0, 0, true
	}

	attempts := s.MaxAttempts
	if attempts <= 0 {
		attempts = DefaultMaxAttempts
	}

	for i := 0; i < attempts; i++ {
		k := keys[rng.Intn(len(keys))]
		b, _ := m.Bin(k)
		p := rng.Float64()
		if p < b.Intensity && p > s.AcceptFloor {
			return k, i, false
		}
	}
	return NearestToCenter(keys), attempts, true
}

// NearestToCenter returns the key closest to zero. Ties go to the
// non-negative key.
func NearestToCenter(keys []histogram.Key) histogram.Key {
	best := keys[0]
	for _, k := range keys[1:] {
		if abs(k) < abs(best) || (abs(k) == abs(best) && k > best) {
			best = k
		}
	}
	return best
}

func abs(k histogram.Key) histogram.Key {
	if k < 0 {
		return -k
	}
	return k
}
