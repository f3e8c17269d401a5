package telemetry

import (
	"time"

	"github.com/pthm-cable/slits/experiment"
)

func batch(emitted, rejections, fallbacks int, stopped bool) experiment.BatchReport {
	return experiment.BatchReport{
		Requested:  emitted,
		Emitted:    emitted,
		Rejections: rejections,
		Fallbacks:  fallbacks,
		Stopped:    stopped,
		Duration:   time.Millisecond,
	}
}

func stateOf(total int, firing bool, epoch uint64) experiment.FireState {
	return experiment.FireState{TotalFired: total, Firing: firing, Epoch: epoch}
}
