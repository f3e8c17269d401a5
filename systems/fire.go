package systems

import "time"

// Fast-fire defaults.
const (
	DefaultFireInterval = 10 * time.Millisecond
	DefaultBatchSize    = 1000
	DefaultMaxCatchUp   = 4
)

// FireState is the fast-fire mode.
type FireState uint8

const (
	Idle FireState = iota
	Firing
)

func (s FireState) String() string {
	if s == Firing {
		return "firing"
	}
	return "idle"
}

// FireController schedules fast-fire batches from an explicit clock.
// The owner calls Advance with elapsed time and fires the returned number of
// batches. Stopping is synchronous: once Stop returns no batch is due.
type FireController struct {
	Interval   time.Duration
	BatchSize  int
	MaxCatchUp int // Batches released by one Advance; excess time is dropped

	state   FireState
	elapsed time.Duration
}

// NewFireController creates an idle controller.
func NewFireController(interval time.Duration, batchSize, maxCatchUp int) *FireController {
	if interval <= 0 {
		interval = DefaultFireInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if maxCatchUp <= 0 {
		maxCatchUp = DefaultMaxCatchUp
	}
	return &FireController{
		Interval:   interval,
		BatchSize:  batchSize,
		MaxCatchUp: maxCatchUp,
	}
}

// State returns the current mode.
func (f *FireController) State() FireState {
	return f.state
}

// IsFiring reports whether fast-fire is active.
func (f *FireController) IsFiring() bool {
	return f.state == Firing
}

// Toggle flips between Idle and Firing. At or above capacity it forces Idle.
// Returns whether the controller is firing afterwards.
func (f *FireController) Toggle(total, maxParticles int) bool {
	if total >= maxParticles || f.state == Firing {
		f.Stop()
		return false
	}
	f.start()
	return true
}

func (f *FireController) start() {
	f.state = Firing
	f.elapsed = 0
}

// Stop cancels fast-fire and any time accumulated toward the next batch.
// Safe to call in any state.
func (f *FireController) Stop() {
	f.state = Idle
	f.elapsed = 0
}

// Advance moves the schedule forward by dt and returns how many batches are due.
func (f *FireController) Advance(dt time.Duration) int {
	if f.state != Firing || dt <= 0 {
		return 0
	}
	f.elapsed += dt
	due := int(f.elapsed / f.Interval)
	if due > f.MaxCatchUp {
		due = f.MaxCatchUp
		f.elapsed = 0
		return due
	}
	f.elapsed -= time.Duration(due) * f.Interval
	return due
}
