package telemetry

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/slits/histogram"
	"github.com/pthm-cable/slits/optics"
	"github.com/pthm-cable/slits/systems"
)

// fringeParams gives two bright fringes across the screen with dark bands at
// x = ±1.
func fringeParams() optics.Params {
	return optics.Params{
		SlitWidth:      1e-4,
		SlitSeparation: 1e-3,
		Wavelength:     5e-7,
		ScreenDistance: 1,
		DisplayScale:   1,
	}
}

func filledMap(t *testing.T, p optics.Params, n int, seed int64) *histogram.Map {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	e := systems.NewEmitter(systems.DefaultSampler(), n)
	res := e.Generate(rng, n, histogram.New(p, histogram.DefaultOptions()), nil)
	if res.Emitted != n {
		t.Fatalf("emitted %d, want %d", res.Emitted, n)
	}
	return res.Map
}

func TestExpectedWeights(t *testing.T) {
	bins := []histogram.Bin{
		{Key: -1, Intensity: 0},
		{Key: 0, Intensity: 1},
		{Key: 1, Intensity: 0.005},
		{Key: 2, Intensity: 0.51},
	}
	got := ExpectedWeights(bins, 0.01)
	want := []float64{0, 0.99, 0, 0.5}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("weight[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFitPattern_Empty(t *testing.T) {
	m := histogram.New(optics.DefaultParams(), histogram.DefaultOptions())
	fit := FitPattern(m, systems.DefaultAcceptFloor)
	if fit.Particles != 0 || fit.ChiSquare != 0 || fit.ReducedChiSquare() != 0 {
		t.Errorf("fit = %+v, want zero", fit)
	}
}

func TestFitPattern_MatchesSampler(t *testing.T) {
	tests := []struct {
		name   string
		params optics.Params
	}{
		{"uniform", optics.DefaultParams()},
		{"fringes", fringeParams()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := filledMap(t, tt.params, 20000, 7)
			fit := FitPattern(m, systems.DefaultAcceptFloor)

			if fit.Particles != 20000 {
				t.Errorf("particles = %d, want 20000", fit.Particles)
			}
			if math.Abs(fit.MeanX) > 0.05 {
				t.Errorf("mean x = %v, want ~0 for a symmetric pattern", fit.MeanX)
			}
			if fit.DOF < 100 {
				t.Errorf("dof = %d, expected most bins to carry weight", fit.DOF)
			}
			if r := fit.ReducedChiSquare(); r <= 0 || r > 2 {
				t.Errorf("reduced chi-square = %v, want close to 1", r)
			}
		})
	}
}

func TestFitPattern_DetectsWrongPattern(t *testing.T) {
	// Particles drawn for one pattern scored against another.
	drawn := filledMap(t, optics.DefaultParams(), 20000, 11)
	scored := histogram.New(fringeParams(), histogram.DefaultOptions())
	for _, b := range drawn.Bins() {
		for i := 0; i < b.Count; i++ {
			scored.Increment(b.Key)
		}
	}

	fit := FitPattern(scored, systems.DefaultAcceptFloor)
	if r := fit.ReducedChiSquare(); r < 5 {
		t.Errorf("reduced chi-square = %v, expected a clear mismatch", r)
	}
}

func TestCollector_Window(t *testing.T) {
	c := NewCollector(1.0, 0.1, systems.DefaultAcceptFloor)

	if c.ShouldFlush(9) {
		t.Error("flush before window elapsed")
	}
	if !c.ShouldFlush(10) {
		t.Error("expected flush after 10 frames")
	}

	c.RecordBatch(batch(1000, 3000, 0, false))
	c.RecordBatch(batch(500, 1000, 2, true))

	m := filledMap(t, optics.DefaultParams(), 1500, 3)
	s := c.Flush(10, stateOf(1500, false, 4), m)

	if s.Batches != 2 || s.Emitted != 1500 || s.Rejections != 4000 {
		t.Errorf("counters = %+v", s)
	}
	if s.Fallbacks != 2 || s.CapacityStops != 1 {
		t.Errorf("fallbacks/stops = %d/%d", s.Fallbacks, s.CapacityStops)
	}
	if math.Abs(s.AcceptRate-1500.0/5500.0) > 1e-12 {
		t.Errorf("accept rate = %v", s.AcceptRate)
	}
	if s.SimTimeSec != 1.0 || s.Epoch != 4 || s.TotalParticles != 1500 {
		t.Errorf("window = %+v", s)
	}
	if s.Chi2DOF <= 0 || s.Bins == 0 {
		t.Errorf("pattern columns not filled: %+v", s)
	}

	// Window restarts at the flush frame with cleared counters.
	if c.ShouldFlush(15) {
		t.Error("new window flushed early")
	}
	next := c.Flush(20, stateOf(1500, false, 4), nil)
	if next.WindowStartFrame != 10 || next.Batches != 0 || next.AcceptRate != 0 {
		t.Errorf("second window = %+v", next)
	}
}

func TestNewCollector_MinimumWindow(t *testing.T) {
	c := NewCollector(0, 0.016, 0.01)
	if !c.ShouldFlush(1) {
		t.Error("window shorter than a frame should flush every frame")
	}
}
