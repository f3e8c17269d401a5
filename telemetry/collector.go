package telemetry

import (
	"math"
	"time"

	"github.com/pthm-cable/slits/experiment"
	"github.com/pthm-cable/slits/histogram"
)

// Collector accumulates batch reports within time windows and produces WindowStats.
type Collector struct {
	windowDurationSec    float64
	windowDurationFrames int32
	dt                   float64
	acceptFloor          float64

	// Current window tracking
	windowStartFrame int32

	// Counters for current window
	batches       int
	emitted       int
	rejections    int
	fallbacks     int
	capacityStops int
	batchTime     time.Duration
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulated seconds
// dt: seconds per frame
// acceptFloor: sampler acceptance floor used for the expected pattern
func NewCollector(windowDurationSec, dt, acceptFloor float64) *Collector {
	framesPerWindow := int32(1)
	if dt > 0 {
		framesPerWindow = int32(math.Round(windowDurationSec / dt))
	}
	if framesPerWindow < 1 {
		framesPerWindow = 1
	}
	return &Collector{
		windowDurationSec:    windowDurationSec,
		windowDurationFrames: framesPerWindow,
		dt:                   dt,
		acceptFloor:          acceptFloor,
	}
}

// RecordBatch adds one batch report to the current window.
func (c *Collector) RecordBatch(r experiment.BatchReport) {
	c.batches++
	c.emitted += r.Emitted
	c.rejections += r.Rejections
	c.fallbacks += r.Fallbacks
	c.batchTime += r.Duration
	if r.Stopped {
		c.capacityStops++
	}
}

// ShouldFlush returns true if enough frames have passed to flush the window.
func (c *Collector) ShouldFlush(currentFrame int32) bool {
	return currentFrame-c.windowStartFrame >= c.windowDurationFrames
}

// Flush produces stats for the current window and starts a new one.
func (c *Collector) Flush(currentFrame int32, state experiment.FireState, m *histogram.Map) WindowStats {
	s := WindowStats{
		WindowStartFrame: c.windowStartFrame,
		WindowEndFrame:   currentFrame,
		SimTimeSec:       float64(currentFrame) * c.dt,
		Epoch:            state.Epoch,
		Batches:          c.batches,
		Emitted:          c.emitted,
		Rejections:       c.rejections,
		Fallbacks:        c.fallbacks,
		CapacityStops:    c.capacityStops,
		TotalParticles:   state.TotalFired,
		Firing:           state.Firing,
	}
	if attempts := c.emitted + c.rejections; attempts > 0 {
		s.AcceptRate = float64(c.emitted) / float64(attempts)
	}
	if c.batches > 0 {
		s.BatchMeanUS = float64(c.batchTime.Microseconds()) / float64(c.batches)
	}
	if m != nil {
		s.applyPattern(FitPattern(m, c.acceptFloor))
	}

	c.reset(currentFrame)
	return s
}

func (c *Collector) reset(frame int32) {
	c.windowStartFrame = frame
	c.batches = 0
	c.emitted = 0
	c.rejections = 0
	c.fallbacks = 0
	c.capacityStops = 0
	c.batchTime = 0
}
