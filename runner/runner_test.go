package runner

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/slits/config"
	"github.com/pthm-cable/slits/telemetry"
)

func testConfig(t *testing.T, maxParticles int) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Firing.MaxParticles = maxParticles
	cfg.Firing.BatchSize = 500
	cfg.Telemetry.StatsWindow = 0.25
	return cfg
}

func TestHeadlessFastFireReachesCap(t *testing.T) {
	dir := t.TempDir()
	var windows []telemetry.WindowStats
	r, err := New(testConfig(t, 5000), Options{
		Seed:          3,
		OutputDir:     dir,
		StatsCallback: func(s telemetry.WindowStats) { windows = append(windows, s) },
	})
	if err != nil {
		t.Fatal(err)
	}

	if !r.Experiment().ToggleFastFire() {
		t.Fatal("fast fire did not start")
	}
	for i := 0; i < 1000 && !r.Done(); i++ {
		r.StepHeadless()
	}
	if !r.Done() {
		t.Fatalf("cap not reached after %d frames", r.Frame())
	}
	if r.Experiment().IsFiring() {
		t.Error("fast fire still on at capacity")
	}

	// Let the last window flush.
	for i := 0; i < 20; i++ {
		r.StepHeadless()
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	if len(windows) == 0 {
		t.Fatal("no stats windows flushed")
	}
	emitted, stops := 0, 0
	for _, w := range windows {
		emitted += w.Emitted
		stops += w.CapacityStops
	}
	if emitted != 5000 {
		t.Errorf("windows recorded %d particles, want 5000", emitted)
	}
	if stops != 1 {
		t.Errorf("capacity stops = %d, want 1", stops)
	}
	if r.LastStats().TotalParticles != 5000 {
		t.Errorf("last window total = %d", r.LastStats().TotalParticles)
	}

	for _, name := range []string{telemetry.TelemetryFile, telemetry.PerfFile, telemetry.HistogramFile, telemetry.ParticlesFile, telemetry.ConfigFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing %s: %v", name, err)
		}
	}
	rows, err := telemetry.ReadHistogram(filepath.Join(dir, telemetry.HistogramFile))
	if err != nil {
		t.Fatal(err)
	}
	total := 0
	for _, row := range rows {
		total += row.Count
	}
	if total != 5000 {
		t.Errorf("exported histogram holds %d particles, want 5000", total)
	}
}

func TestHeadlessManualFiresOncePerFrame(t *testing.T) {
	r, err := New(testConfig(t, 100), Options{Seed: 9})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	for i := 0; i < 30; i++ {
		r.StepHeadless()
	}
	if got := r.Experiment().State().TotalFired; got != 30 {
		t.Errorf("total = %d after 30 frames, want 30", got)
	}

	for i := 0; i < 100; i++ {
		r.StepHeadless()
	}
	if got := r.Experiment().State().TotalFired; got != 100 {
		t.Errorf("total = %d, want cap 100", got)
	}
}

func TestSeedDeterminism(t *testing.T) {
	run := func() []float64 {
		r, err := New(testConfig(t, 1000), Options{Seed: 42})
		if err != nil {
			t.Fatal(err)
		}
		defer r.Close()
		r.Experiment().ToggleFastFire()
		for i := 0; i < 200 && !r.Done(); i++ {
			r.StepHeadless()
		}
		ps := r.Experiment().Particles()
		xs := make([]float64, len(ps))
		for i, p := range ps {
			xs[i] = p.X
		}
		return xs
	}

	a, b := run(), run()
	if len(a) != len(b) || len(a) == 0 {
		t.Fatalf("lengths %d, %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverge at particle %d", i)
		}
	}
}

func TestSeedFallsBackToConfig(t *testing.T) {
	cfg := testConfig(t, 10)
	cfg.Experiment.Seed = 77
	r, err := New(cfg, Options{})
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if r.Seed() != 77 {
		t.Errorf("seed = %d, want 77", r.Seed())
	}
}

func TestLogStatsDoesNotPanic(t *testing.T) {
	r, err := New(testConfig(t, 50), Options{Seed: 1, LogStats: true})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 40; i++ {
		r.StepHeadless()
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(r.LastStats().LogValue().String(), "total") {
		t.Error("stats window missing total")
	}
}
