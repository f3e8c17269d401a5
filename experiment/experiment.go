// Package experiment owns the state of a running double-slit experiment:
// the parameters of the current epoch, the intensity map, the particle list
// and the fast-fire schedule.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pthm-cable/slits/histogram"
	"github.com/pthm-cable/slits/optics"
	"github.com/pthm-cable/slits/systems"
)

// Options configures an Experiment.
type Options struct {
	Histogram    histogram.Options
	Sampler      systems.Sampler
	MaxParticles int
	FireInterval time.Duration
	BatchSize    int
	MaxCatchUp   int

	// OnBatch, if set, receives a report after every batch. It runs outside
	// the experiment lock but must not block.
	OnBatch func(BatchReport)
}

// DefaultOptions returns the standard tunables.
func DefaultOptions() Options {
	return Options{
		Histogram:    histogram.DefaultOptions(),
		Sampler:      systems.DefaultSampler(),
		MaxParticles: systems.DefaultMaxParticles,
		FireInterval: systems.DefaultFireInterval,
		BatchSize:    systems.DefaultBatchSize,
		MaxCatchUp:   systems.DefaultMaxCatchUp,
	}
}

// FireState is the externally visible firing status.
type FireState struct {
	Firing     bool
	TotalFired int
	Epoch      uint64
}

// BatchReport describes one emitted batch.
type BatchReport struct {
	Epoch      uint64
	Requested  int
	Emitted    int
	Total      int
	Rejections int
	Fallbacks  int
	Stopped    bool // Fast-fire was stopped because the cap was reached
	Duration   time.Duration
}

// Experiment is the simulation core. All methods are safe for concurrent
// use; mutations are serialised so no two batches overlap.
type Experiment struct {
	mu sync.Mutex

	opts    Options
	rng     systems.Rand
	emitter *systems.Emitter
	fire    *systems.FireController

	params    optics.Params
	hist      *histogram.Map
	particles []systems.Particle
	epoch     uint64
}

// New creates an idle experiment for p.
func New(p optics.Params, opts Options, rng systems.Rand) (*Experiment, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("creating experiment: %w", err)
	}
	if rng == nil {
		return nil, errors.New("creating experiment: nil random source")
	}
	e := &Experiment{
		opts:    opts,
		rng:     rng,
		emitter: systems.NewEmitter(opts.Sampler, opts.MaxParticles),
		fire:    systems.NewFireController(opts.FireInterval, opts.BatchSize, opts.MaxCatchUp),
		params:  p,
	}
	e.resetLocked()
	return e, nil
}

// resetLocked starts a new epoch. Caller holds mu.
func (e *Experiment) resetLocked() {
	e.hist = histogram.New(e.params, e.opts.Histogram)
	e.particles = nil
	e.epoch++
}

// SetParameters starts a new epoch when p differs from the current
// parameters: particles are discarded, the map is rebuilt and fast-fire is
// stopped. Invalid parameters are rejected and leave the state untouched.
func (e *Experiment) SetParameters(p optics.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if p == e.params {
		return nil
	}
	wasFiring := e.fire.IsFiring()
	e.fire.Stop()
	e.params = p
	e.resetLocked()

	slog.Info("parameters changed",
		"epoch", e.epoch,
		"slit_width", p.SlitWidth,
		"slit_separation", p.SlitSeparation,
		"wavelength", p.Wavelength,
		"screen_distance", p.ScreenDistance,
		"display_scale", p.DisplayScale,
		"fast_fire_stopped", wasFiring,
	)
	return nil
}

// FireOnce emits a single particle.
func (e *Experiment) FireOnce() BatchReport {
	e.mu.Lock()
	r := e.fireLocked(1)
	e.mu.Unlock()

	e.notify(r)
	return r
}

// ToggleFastFire flips fast-fire on or off and returns the new state.
// At capacity it always leaves fast-fire off.
func (e *Experiment) ToggleFastFire() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	firing := e.fire.Toggle(len(e.particles), e.emitter.MaxParticles)
	slog.Info("fast fire toggled", "firing", firing, "total", len(e.particles), "epoch", e.epoch)
	return firing
}

// StopFastFire turns fast-fire off. It is idempotent.
func (e *Experiment) StopFastFire() {
	e.mu.Lock()
	e.fire.Stop()
	e.mu.Unlock()
}

// ClearParticles discards all particles and rebuilds the map. The fast-fire
// state is left as it was.
func (e *Experiment) ClearParticles() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.resetLocked()
	slog.Info("particles cleared", "epoch", e.epoch, "firing", e.fire.IsFiring())
}

// Advance moves the fast-fire schedule forward by dt and emits every batch
// that fell due.
func (e *Experiment) Advance(dt time.Duration) []BatchReport {
	e.mu.Lock()
	due := e.fire.Advance(dt)
	var reports []BatchReport
	for i := 0; i < due && e.fire.IsFiring(); i++ {
		reports = append(reports, e.fireLocked(e.fire.BatchSize))
	}
	e.mu.Unlock()

	for _, r := range reports {
		e.notify(r)
	}
	return reports
}

// Run drives the fast-fire schedule from wall-clock time until ctx is done.
// It is for hosts without a frame loop; hosts that render frames call
// Advance with their own frame time instead.
func (e *Experiment) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = e.fire.Interval
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			e.Advance(now.Sub(last))
			last = now
		}
	}
}

// fireLocked emits a batch of up to n particles. Caller holds mu.
func (e *Experiment) fireLocked(n int) BatchReport {
	start := time.Now()
	res := e.emitter.Generate(e.rng, n, e.hist, e.particles)
	e.particles = res.Particles
	e.hist = res.Map

	stopped := false
	if res.Clamped && e.fire.IsFiring() {
		e.fire.Stop()
		stopped = true
		slog.Info("particle cap reached, fast fire stopped", "total", len(e.particles), "epoch", e.epoch)
	}
	if res.Fallbacks > 0 {
		slog.Warn("sampler fell back to the centre bin", "fallbacks", res.Fallbacks, "epoch", e.epoch)
	}

	return BatchReport{
		Epoch:      e.epoch,
		Requested:  n,
		Emitted:    res.Emitted,
		Total:      len(e.particles),
		Rejections: res.Rejections,
		Fallbacks:  res.Fallbacks,
		Stopped:    stopped,
		Duration:   time.Since(start),
	}
}

func (e *Experiment) notify(r BatchReport) {
	if e.opts.OnBatch != nil {
		e.opts.OnBatch(r)
	}
}

// Particles returns the particles of the current epoch. Later batches append
// past the returned length and a reset starts a new slice, so the view is
// stable. It must not be modified by the caller.
func (e *Experiment) Particles() []systems.Particle {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := len(e.particles)
	return e.particles[:n:n]
}

// Map returns the intensity map of the current epoch. The returned map is a
// snapshot: later batches publish a new map instead of mutating it.
func (e *Experiment) Map() *histogram.Map {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist
}

// IsFiring reports whether fast-fire is active.
func (e *Experiment) IsFiring() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fire.IsFiring()
}

// State returns the firing status.
func (e *Experiment) State() FireState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return FireState{
		Firing:     e.fire.IsFiring(),
		TotalFired: len(e.particles),
		Epoch:      e.epoch,
	}
}

// Params returns the parameters of the current epoch.
func (e *Experiment) Params() optics.Params {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

// Epoch returns the current epoch number. It increases on every reset.
func (e *Experiment) Epoch() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.epoch
}

// MaxParticles returns the population cap.
func (e *Experiment) MaxParticles() int {
	return e.emitter.MaxParticles
}
