// Package runner owns one experiment session: the experiment itself, its
// random source and the telemetry that observes it. It has no graphics so
// headless runs and tests use it directly.
package runner

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pthm-cable/slits/config"
	"github.com/pthm-cable/slits/experiment"
	"github.com/pthm-cable/slits/telemetry"
)

// Options configures a session.
type Options struct {
	Seed          int64 // 0 = config seed, then time-based
	LogStats      bool
	OutputDir     string // Empty disables CSV output
	StatsCallback func(telemetry.WindowStats)
}

// Runner steps an experiment frame by frame and feeds telemetry.
type Runner struct {
	cfg  *config.Config
	exp  *experiment.Experiment
	seed int64

	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)

	frame     int32
	lastStats telemetry.WindowStats
	lastEpoch uint64
}

// New creates a session from cfg.
func New(cfg *config.Config, opts Options) (*Runner, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Experiment.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	r := &Runner{
		cfg:           cfg,
		seed:          seed,
		collector:     telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Telemetry.FrameDT, cfg.Sampler.AcceptFloor),
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,
	}

	eo := cfg.ExperimentOptions()
	eo.OnBatch = r.collector.RecordBatch
	exp, err := experiment.New(cfg.Derived.InitialParams, eo, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	r.exp = exp
	r.lastEpoch = exp.Epoch()

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("initializing output: %w", err)
	}
	r.outputManager = om
	if err := om.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config", "error", err)
	}

	slog.Info("session started",
		"seed", seed,
		"epoch", r.lastEpoch,
		"max_particles", exp.MaxParticles(),
		"output_dir", om.Dir(),
	)
	return r, nil
}

// Experiment returns the session's experiment.
func (r *Runner) Experiment() *experiment.Experiment { return r.exp }

// Perf returns the frame timing collector.
func (r *Runner) Perf() *telemetry.PerfCollector { return r.perfCollector }

// Seed returns the random seed in use.
func (r *Runner) Seed() int64 { return r.seed }

// Frame returns the number of frames stepped.
func (r *Runner) Frame() int32 { return r.frame }

// LastStats returns the most recently flushed stats window.
func (r *Runner) LastStats() telemetry.WindowStats { return r.lastStats }

// Done reports whether the particle cap has been reached.
func (r *Runner) Done() bool {
	return r.exp.State().TotalFired >= r.exp.MaxParticles()
}

// Step advances the fast-fire schedule by dt, counts the frame and flushes
// telemetry when a window completes. Callers bracket it with the perf
// collector's StartFrame and EndFrame.
func (r *Runner) Step(dt time.Duration) []experiment.BatchReport {
	r.perfCollector.StartPhase(telemetry.PhaseFire)
	reports := r.exp.Advance(dt)
	r.frame++

	r.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	r.trackEpoch()
	r.flushTelemetry()
	return reports
}

// StepHeadless runs one frame at the configured fixed dt. Without fast-fire
// it fires a single particle per frame.
func (r *Runner) StepHeadless() {
	r.perfCollector.StartFrame()
	if !r.exp.IsFiring() && !r.Done() {
		r.perfCollector.StartPhase(telemetry.PhaseFire)
		r.exp.FireOnce()
	}
	r.Step(r.cfg.Derived.FrameDT)
	r.perfCollector.EndFrame()
}

// trackEpoch logs epoch changes made through the experiment.
func (r *Runner) trackEpoch() {
	epoch := r.exp.Epoch()
	if epoch == r.lastEpoch {
		return
	}
	slog.Info("epoch changed", "from", r.lastEpoch, "to", epoch, "frame", r.frame)
	r.lastEpoch = epoch
}

// flushTelemetry checks if the stats window should be flushed.
func (r *Runner) flushTelemetry() {
	if !r.collector.ShouldFlush(r.frame) {
		return
	}

	stats := r.collector.Flush(r.frame, r.exp.State(), r.exp.Map())
	perfStats := r.perfCollector.Stats()
	r.lastStats = stats

	if r.statsCallback != nil {
		r.statsCallback(stats)
	}

	if r.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if r.outputManager != nil {
		if err := r.outputManager.WriteTelemetry(stats); err != nil {
			slog.Error("failed to write telemetry", "error", err)
		}
		if err := r.outputManager.WritePerf(perfStats, stats.WindowEndFrame); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// Export writes the current histogram and particles to the output dir.
func (r *Runner) Export() error {
	if r.outputManager == nil {
		return nil
	}
	if err := r.outputManager.WriteHistogram(r.exp.Map(), r.exp.Epoch()); err != nil {
		return err
	}
	return r.outputManager.WriteParticles(r.exp.Particles())
}

// Close stops firing, exports the final state and closes output files.
func (r *Runner) Close() error {
	r.exp.StopFastFire()
	err := r.Export()
	if cerr := r.outputManager.Close(); err == nil {
		err = cerr
	}
	state := r.exp.State()
	slog.Info("session finished", "frames", r.frame, "total", state.TotalFired, "epoch", state.Epoch)
	return err
}
