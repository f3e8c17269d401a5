package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pthm-cable/slits/optics"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Derived.InitialParams != optics.DefaultParams() {
		t.Errorf("initial params = %+v, want %+v", cfg.Derived.InitialParams, optics.DefaultParams())
	}
	if cfg.Firing.MaxParticles != 100000 || cfg.Firing.BatchSize != 1000 {
		t.Errorf("firing = %+v", cfg.Firing)
	}
	if cfg.Derived.FireInterval != 10*time.Millisecond {
		t.Errorf("fire interval = %v, want 10ms", cfg.Derived.FireInterval)
	}
	if cfg.Histogram.BinSize != 0.005 || cfg.Histogram.RangeMin != -2 || cfg.Histogram.RangeMax != 2 {
		t.Errorf("histogram = %+v", cfg.Histogram)
	}
	if cfg.Histogram.Floor != 0.01 || cfg.Sampler.AcceptFloor != 0.01 {
		t.Errorf("floors = %v / %v, want 0.01", cfg.Histogram.Floor, cfg.Sampler.AcceptFloor)
	}
	if len(cfg.ParticleTypes) != len(optics.DefaultParticleTypes()) {
		t.Errorf("particle types = %d, want %d", len(cfg.ParticleTypes), len(optics.DefaultParticleTypes()))
	}
}

func TestDefaultsMatchBuiltinPresets(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	builtin := optics.DefaultParticleTypes()
	for i, pt := range cfg.ParticleTypes {
		b := builtin[i]
		if pt.Name != b.Name {
			t.Fatalf("type %d name = %q, want %q", i, pt.Name, b.Name)
		}
		pairs := [][2]optics.Range{
			{pt.Wavelength, b.Wavelength},
			{pt.SlitWidth, b.SlitWidth},
			{pt.SlitSeparation, b.SlitSeparation},
		}
		for _, pr := range pairs {
			if !approxEqual(pr[0].Min, pr[1].Min) || !approxEqual(pr[0].Max, pr[1].Max) {
				t.Errorf("%s: yaml range %+v, builtin %+v", pt.Name, pr[0], pr[1])
			}
		}
	}
}

func approxEqual(a, b float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= 1e-9*b
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	overlay := `
experiment:
  particle_type: electrons
  params:
    screen_distance: 5
firing:
  batch_size: 250
`
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Firing.BatchSize != 250 {
		t.Errorf("batch size = %d, want 250", cfg.Firing.BatchSize)
	}
	if cfg.Firing.MaxParticles != 100000 {
		t.Errorf("overlay clobbered max_particles: %d", cfg.Firing.MaxParticles)
	}
	p := cfg.Derived.InitialParams
	if p.ScreenDistance != 5 || p.DisplayScale != 1 {
		t.Errorf("params = %+v", p)
	}
	if p.Wavelength != 1e-12 || p.SlitWidth != 1e-7 {
		t.Errorf("electron preset not applied: %+v", p)
	}
}

func TestExplicitParamsBeatParticleType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	overlay := `
experiment:
  particle_type: electrons
  params:
    slit_width: 5.0e-7
`
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	p := cfg.Derived.InitialParams
	if p.SlitWidth != 5e-7 {
		t.Errorf("slit width = %g, want the explicit 5e-7", p.SlitWidth)
	}
	if p.Wavelength != 1e-12 || p.SlitSeparation != 1e-7 {
		t.Errorf("unset lengths should take the electron preset: %+v", p)
	}

	// The written snapshot reloads to the same experiment.
	out := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(out); err != nil {
		t.Fatal(err)
	}
	back, err := Load(out)
	if err != nil {
		t.Fatalf("Load snapshot: %v", err)
	}
	if back.Derived.InitialParams != p {
		t.Errorf("snapshot params = %+v, want %+v", back.Derived.InitialParams, p)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unknown particle", "experiment:\n  particle_type: gravitons\n"},
		{"bad wavelength", "experiment:\n  params:\n    wavelength: 0\n"},
		{"bad bin size", "histogram:\n  bin_size: 0\n"},
		{"empty range", "histogram:\n  range_min: 1\n  range_max: 1\n"},
		{"bad interval", "firing:\n  interval_ms: 0\n"},
		{"bad cap", "firing:\n  max_particles: 0\n"},
		{"bad catch up", "firing:\n  max_catch_up: 0\n"},
		{"zero frame dt", "telemetry:\n  frame_dt: 0\n"},
		{"negative frame dt", "telemetry:\n  frame_dt: -0.01\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Load error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Firing.BatchSize = 42

	path := filepath.Join(t.TempDir(), "out.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}
	back, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if back.Firing.BatchSize != 42 {
		t.Errorf("batch size = %d, want 42", back.Firing.BatchSize)
	}
}

func TestExperimentOptions(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	opts := cfg.ExperimentOptions()
	if opts.MaxParticles != cfg.Firing.MaxParticles || opts.FireInterval != cfg.Derived.FireInterval {
		t.Errorf("options = %+v", opts)
	}
	if opts.Sampler.MaxAttempts != 100000 {
		t.Errorf("sampler = %+v", opts.Sampler)
	}
}

func TestCfgBeforeInitPanics(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Cfg()
}
