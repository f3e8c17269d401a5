// Package config provides configuration loading and access for the experiment.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/slits/experiment"
	"github.com/pthm-cable/slits/histogram"
	"github.com/pthm-cable/slits/optics"
	"github.com/pthm-cable/slits/systems"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidConfig is returned by Validate for impossible settings.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all application configuration.
type Config struct {
	Screen        ScreenConfig          `yaml:"screen"`
	Experiment    ExperimentConfig      `yaml:"experiment"`
	Histogram     histogram.Options     `yaml:"histogram"`
	Sampler       systems.Sampler       `yaml:"sampler"`
	Firing        FiringConfig          `yaml:"firing"`
	Telemetry     TelemetryConfig       `yaml:"telemetry"`
	ParticleTypes []optics.ParticleType `yaml:"particle_types"`
	DisplayScales []float64             `yaml:"display_scales"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds window settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// ExperimentConfig holds the startup experiment.
type ExperimentConfig struct {
	ParticleType string        `yaml:"particle_type"` // Empty = use Params as given
	Params       optics.Params `yaml:"params"`
	Seed         int64         `yaml:"seed"` // 0 = time-based
}

// FiringConfig holds particle cap and fast-fire settings.
type FiringConfig struct {
	MaxParticles int     `yaml:"max_particles"`
	IntervalMS   float64 `yaml:"interval_ms"`
	BatchSize    int     `yaml:"batch_size"`
	MaxCatchUp   int     `yaml:"max_catch_up"` // Batches released per frame at most
}

// TelemetryConfig holds stats and perf window settings.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"` // Seconds of simulated time per stats window
	PerfWindow  int     `yaml:"perf_window"`  // Frames averaged by the perf collector
	FrameDT     float64 `yaml:"frame_dt"`     // Seconds per frame in headless mode
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	FireInterval  time.Duration
	FrameDT       time.Duration
	InitialParams optics.Params // Experiment.Params with the particle type applied
}

// paramOverrides records which lengths a user file sets explicitly. Those
// win over the particle type's preset.
type paramOverrides struct {
	Experiment struct {
		Params struct {
			SlitWidth      *float64 `yaml:"slit_width"`
			SlitSeparation *float64 `yaml:"slit_separation"`
			Wavelength     *float64 `yaml:"wavelength"`
		} `yaml:"params"`
	} `yaml:"experiment"`
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	var ov paramOverrides
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &ov); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.computeDerived(ov); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived(ov paramOverrides) error {
	if len(c.ParticleTypes) == 0 {
		c.ParticleTypes = optics.DefaultParticleTypes()
	}
	if len(c.DisplayScales) == 0 {
		c.DisplayScales = optics.DefaultDisplayScales()
	}

	c.Derived.FireInterval = time.Duration(c.Firing.IntervalMS * float64(time.Millisecond))
	c.Derived.FrameDT = time.Duration(c.Telemetry.FrameDT * float64(time.Second))

	p := c.Experiment.Params
	if name := c.Experiment.ParticleType; name != "" {
		pt, ok := optics.FindParticleType(c.ParticleTypes, name)
		if !ok {
			return fmt.Errorf("%w: unknown particle type %q", ErrInvalidConfig, name)
		}
		p = pt.Apply(p)

		set := ov.Experiment.Params
		if set.SlitWidth != nil {
			p.SlitWidth = *set.SlitWidth
		}
		if set.SlitSeparation != nil {
			p.SlitSeparation = *set.SlitSeparation
		}
		if set.Wavelength != nil {
			p.Wavelength = *set.Wavelength
		}
	}
	c.Derived.InitialParams = p
	return nil
}

// Validate checks for settings the experiment cannot run with.
func (c *Config) Validate() error {
	if err := c.Derived.InitialParams.Validate(); err != nil {
		return fmt.Errorf("%w: experiment.params: %w", ErrInvalidConfig, err)
	}
	h := c.Histogram
	if h.BinSize <= 0 {
		return fmt.Errorf("%w: histogram.bin_size must be positive", ErrInvalidConfig)
	}
	if h.RangeMax <= h.RangeMin {
		return fmt.Errorf("%w: histogram range [%g, %g] is empty", ErrInvalidConfig, h.RangeMin, h.RangeMax)
	}
	if c.Sampler.MaxAttempts <= 0 {
		return fmt.Errorf("%w: sampler.max_attempts must be positive", ErrInvalidConfig)
	}
	if c.Firing.MaxParticles <= 0 || c.Firing.BatchSize <= 0 {
		return fmt.Errorf("%w: firing.max_particles and firing.batch_size must be positive", ErrInvalidConfig)
	}
	if c.Derived.FireInterval <= 0 {
		return fmt.Errorf("%w: firing.interval_ms must be positive", ErrInvalidConfig)
	}
	if c.Firing.MaxCatchUp <= 0 {
		return fmt.Errorf("%w: firing.max_catch_up must be positive", ErrInvalidConfig)
	}
	if c.Derived.FrameDT <= 0 {
		return fmt.Errorf("%w: telemetry.frame_dt must be positive", ErrInvalidConfig)
	}
	for _, pt := range c.ParticleTypes {
		for _, r := range []optics.Range{pt.Wavelength, pt.SlitWidth, pt.SlitSeparation} {
			if r.Min <= 0 || r.Max < r.Min {
				return fmt.Errorf("%w: particle type %q has range [%g, %g]", ErrInvalidConfig, pt.Name, r.Min, r.Max)
			}
		}
	}
	return nil
}

// ExperimentOptions converts the config into experiment options.
func (c *Config) ExperimentOptions() experiment.Options {
	return experiment.Options{
		Histogram:    c.Histogram,
		Sampler:      c.Sampler,
		MaxParticles: c.Firing.MaxParticles,
		FireInterval: c.Derived.FireInterval,
		BatchSize:    c.Firing.BatchSize,
		MaxCatchUp:   c.Firing.MaxCatchUp,
	}
}

// WriteYAML writes the configuration to a YAML file. The resolved initial
// params are written so the file reloads to the same experiment.
func (c *Config) WriteYAML(path string) error {
	out := *c
	if out.Derived.InitialParams != (optics.Params{}) {
		out.Experiment.Params = out.Derived.InitialParams
	}
	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
