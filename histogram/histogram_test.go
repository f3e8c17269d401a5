package histogram

import (
	"reflect"
	"testing"

	"github.com/pthm-cable/slits/optics"
)

func wideSlits() optics.Params {
	return optics.Params{
		SlitWidth:      500 * optics.Micrometre,
		SlitSeparation: 1500 * optics.Micrometre,
		Wavelength:     400 * optics.Nanometre,
		ScreenDistance: 3,
		DisplayScale:   1,
	}
}

func TestNewDefaultRange(t *testing.T) {
	m := New(optics.DefaultParams(), DefaultOptions())

	if m.Len() != 801 {
		t.Fatalf("Len() = %d, want 801", m.Len())
	}
	for _, k := range []Key{-400, 0, 400} {
		b, ok := m.Bin(k)
		if !ok {
			t.Fatalf("bin %d missing", k)
		}
		if b.Count != 0 {
			t.Errorf("bin %d count = %d, want 0", k, b.Count)
		}
	}
	if _, ok := m.Bin(401); ok {
		t.Error("bin 401 should be outside the range")
	}
	if m.TotalCount() != 0 {
		t.Errorf("TotalCount() = %d, want 0", m.TotalCount())
	}
}

func TestIntensityMatchesSamplingFunction(t *testing.T) {
	p := wideSlits()
	m := New(p, DefaultOptions())
	for _, b := range m.Bins() {
		want := optics.SamplingIntensity(m.Center(b.Key), p, optics.DefaultFloor)
		if b.Intensity != want {
			t.Fatalf("bin %d intensity = %v, want %v", b.Key, b.Intensity, want)
		}
	}
}

func TestRebuildIsBitIdentical(t *testing.T) {
	p := wideSlits()
	a := New(p, DefaultOptions()).Bins()
	b := New(p, DefaultOptions()).Bins()
	if !reflect.DeepEqual(a, b) {
		t.Fatal("two builds with identical params differ")
	}
}

func TestGetOrCreateOutsideRange(t *testing.T) {
	m := New(wideSlits(), DefaultOptions())
	before := m.Len()

	b := m.GetOrCreate(1000)
	if b.Key != 1000 || b.Count != 0 {
		t.Errorf("new bin = %+v", b)
	}
	if m.Len() != before+1 {
		t.Errorf("Len() = %d, want %d", m.Len(), before+1)
	}
	if m.GetOrCreate(1000) != b {
		t.Error("second lookup should return the same bin")
	}
	if m.Increment(1000).Count != 1 || m.GetOrCreate(1000).Count != 1 {
		t.Error("Increment should be visible to later lookups")
	}
	if m.Keys()[len(m.Keys())-1] != 1000 {
		t.Error("new key should be appended to Keys()")
	}
}

func TestIncrementAndReset(t *testing.T) {
	m := New(wideSlits(), DefaultOptions())
	m.Increment(0)
	m.Increment(0)
	m.Increment(-5000)

	if m.TotalCount() != 3 {
		t.Errorf("TotalCount() = %d, want 3", m.TotalCount())
	}
	if m.MaxCount() != 2 {
		t.Errorf("MaxCount() = %d, want 2", m.MaxCount())
	}

	m.Reset(optics.DefaultParams())
	if m.TotalCount() != 0 || m.Len() != 801 {
		t.Errorf("after Reset: total=%d len=%d", m.TotalCount(), m.Len())
	}
	if _, ok := m.Bin(-5000); ok {
		t.Error("Reset should discard out-of-range bins")
	}
	if m.Params() != optics.DefaultParams() {
		t.Error("Reset should adopt the new params")
	}
}

func TestKeyFor(t *testing.T) {
	m := New(optics.DefaultParams(), DefaultOptions())
	tests := []struct {
		x    float64
		want Key
	}{
		{0, 0},
		{0.0024, 0},
		{0.0026, 1},
		{-0.0026, -1},
		{2, 400},
		{-2, -400},
	}
	for _, tt := range tests {
		if got := m.KeyFor(tt.x); got != tt.want {
			t.Errorf("KeyFor(%v) = %d, want %d", tt.x, got, tt.want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := New(wideSlits(), DefaultOptions())
	m.Increment(3)
	c := m.Clone()
	c.Increment(3)
	c.GetOrCreate(9999)

	if b, _ := m.Bin(3); b.Count != 1 {
		t.Errorf("original count = %d, want 1", b.Count)
	}
	if _, ok := m.Bin(9999); ok {
		t.Error("clone leaked a new bin into the original")
	}
	if c.TotalCount() != 2 {
		t.Errorf("clone total = %d, want 2", c.TotalCount())
	}

	// New keys on the source after cloning stay out of the clone.
	n := c.Len()
	m.GetOrCreate(-7777)
	if c.Len() != n || len(c.Keys()) != n {
		t.Errorf("clone grew to %d bins / %d keys, want %d", c.Len(), len(c.Keys()), n)
	}
	if last := c.Keys()[n-1]; last != 9999 {
		t.Errorf("clone's last key = %d, want 9999", last)
	}
}

func TestMaxCountEmptyIsOne(t *testing.T) {
	m := New(optics.DefaultParams(), DefaultOptions())
	if m.MaxCount() != 1 {
		t.Errorf("MaxCount() = %d, want 1", m.MaxCount())
	}
}
