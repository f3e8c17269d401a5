// Package histogram implements the intensity map: a histogram over lateral
// screen positions where each bin carries an observed particle count and the
// theoretical intensity at its centre.
package histogram

import (
	"maps"
	"math"
	"sort"

	"github.com/pthm-cable/slits/optics"
)

// Key identifies a bin as the fixed-point index round(x / binSize).
type Key int64

// Bin aggregates the particles that landed in one position interval.
type Bin struct {
	Key       Key
	Count     int
	Intensity float64 // Sampling intensity at the bin centre, fixed per epoch
}

// Options controls bin geometry.
type Options struct {
	BinSize  float64 `yaml:"bin_size"`
	RangeMin float64 `yaml:"range_min"`
	RangeMax float64 `yaml:"range_max"`
	Floor    float64 `yaml:"intensity_floor"`
}

// DefaultOptions covers the four-unit screen with 0.005-wide bins.
func DefaultOptions() Options {
	return Options{
		BinSize:  0.005,
		RangeMin: -2,
		RangeMax: 2,
		Floor:    optics.DefaultFloor,
	}
}

// Map is the intensity map for one epoch. Bins are created lazily and never
// removed until Reset. A Map is not safe for concurrent mutation.
type Map struct {
	params optics.Params
	opts   Options
	bins   map[Key]Bin
	keys   []Key // creation order, append-only; indexable for uniform draws
	total  int
}

// New builds a map with one bin per step across the configured range.
func New(p optics.Params, opts Options) *Map {
	if opts.BinSize <= 0 {
		opts.BinSize = DefaultOptions().BinSize
	}
	m := &Map{opts: opts}
	m.Reset(p)
	return m
}

// Reset discards every bin and rebuilds the map for p.
func (m *Map) Reset(p optics.Params) {
	m.params = p
	lo, hi := m.keyRange()
	n := 0
	if hi >= lo {
		n = int(hi-lo) + 1
	}
	m.bins = make(map[Key]Bin, n)
	m.keys = make([]Key, 0, n)
	m.total = 0
	for k := lo; k <= hi; k++ {
		m.create(k)
	}
}

// keyRange returns the first and last key inside [RangeMin, RangeMax].
func (m *Map) keyRange() (Key, Key) {
	bs := m.opts.BinSize
	lo := math.Ceil(m.opts.RangeMin/bs - 1e-9)
	hi := math.Floor(m.opts.RangeMax/bs + 1e-9)
	return Key(lo), Key(hi)
}

func (m *Map) create(k Key) Bin {
	b := Bin{
		Key:       k,
		Intensity: optics.SamplingIntensity(m.Center(k), m.params, m.opts.Floor),
	}
	m.bins[k] = b
	m.keys = append(m.keys, k)
	return b
}

// GetOrCreate returns the bin for k, synthesising it if absent.
func (m *Map) GetOrCreate(k Key) Bin {
	if b, ok := m.bins[k]; ok {
		return b
	}
	return m.create(k)
}

// Increment adds one particle to the bin for k and returns the updated bin.
func (m *Map) Increment(k Key) Bin {
	b := m.GetOrCreate(k)
	b.Count++
	m.bins[k] = b
	m.total++
	return b
}

// KeyFor maps a lateral position to its bin key.
func (m *Map) KeyFor(x float64) Key {
	return Key(math.Round(x / m.opts.BinSize))
}

// Center returns the lateral position of a bin centre.
func (m *Map) Center(k Key) float64 {
	return float64(k) * m.opts.BinSize
}

// Bin returns the bin for k without creating it.
func (m *Map) Bin(k Key) (Bin, bool) {
	b, ok := m.bins[k]
	return b, ok
}

// Keys returns the bin keys in creation order. The slice must not be modified.
func (m *Map) Keys() []Key {
	return m.keys
}

// Bins returns a copy of every bin sorted by key.
func (m *Map) Bins() []Bin {
	out := make([]Bin, 0, len(m.bins))
	for _, b := range m.bins {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Len returns the number of bins.
func (m *Map) Len() int {
	return len(m.bins)
}

// TotalCount returns the number of particles recorded this epoch.
func (m *Map) TotalCount() int {
	return m.total
}

// MaxCount returns the largest bin count, at least 1 so it can be used as
// a normalising divisor.
func (m *Map) MaxCount() int {
	maxCount := 1
	for _, b := range m.bins {
		if b.Count > maxCount {
			maxCount = b.Count
		}
	}
	return maxCount
}

// Params returns the parameters the intensities were computed for.
func (m *Map) Params() optics.Params {
	return m.params
}

// Options returns the bin geometry.
func (m *Map) Options() Options {
	return m.opts
}

// BinSize returns the bin width.
func (m *Map) BinSize() float64 {
	return m.opts.BinSize
}

// Clone returns an independent copy. The key list is shared up to its
// current length; a bin created in either map reallocates the clone's list
// or writes past the clone's length, so neither sees the other's keys.
func (m *Map) Clone() *Map {
	n := len(m.keys)
	return &Map{
		params: m.params,
		opts:   m.opts,
		bins:   maps.Clone(m.bins),
		keys:   m.keys[:n:n],
		total:  m.total,
	}
}
