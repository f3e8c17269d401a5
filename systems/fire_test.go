package systems

import (
	"testing"
	"time"
)

func TestToggleTwiceReturnsToIdle(t *testing.T) {
	f := NewFireController(0, 0, 0)
	if f.State() != Idle {
		t.Fatal("initial state should be idle")
	}
	if !f.Toggle(0, 100) {
		t.Fatal("first toggle should start firing")
	}
	if f.Toggle(0, 100) {
		t.Fatal("second toggle should stop firing")
	}
	if f.State() != Idle {
		t.Errorf("state = %v, want idle", f.State())
	}
}

func TestToggleAtCapacityForcesIdle(t *testing.T) {
	f := NewFireController(0, 0, 0)
	if f.Toggle(100, 100) {
		t.Error("toggle from idle at capacity should stay idle")
	}
	f.Toggle(0, 100)
	if f.Toggle(100, 100) || f.IsFiring() {
		t.Error("toggle while firing at capacity should stop")
	}
}

func TestAdvanceSchedule(t *testing.T) {
	f := NewFireController(10*time.Millisecond, 1000, 4)

	if n := f.Advance(50 * time.Millisecond); n != 0 {
		t.Errorf("idle Advance = %d, want 0", n)
	}

	f.Toggle(0, 100)
	steps := []struct {
		dt   time.Duration
		want int
	}{
		{5 * time.Millisecond, 0},
		{5 * time.Millisecond, 1},
		{25 * time.Millisecond, 2},
		{5 * time.Millisecond, 1},
		{time.Second, 4},
		{5 * time.Millisecond, 0},
	}
	for i, s := range steps {
		if got := f.Advance(s.dt); got != s.want {
			t.Errorf("step %d: Advance(%v) = %d, want %d", i, s.dt, got, s.want)
		}
	}
}

func TestStopDiscardsPendingTime(t *testing.T) {
	f := NewFireController(10*time.Millisecond, 1000, 4)
	f.Toggle(0, 100)
	f.Advance(9 * time.Millisecond)
	f.Stop()
	f.Stop()

	if n := f.Advance(time.Second); n != 0 {
		t.Errorf("Advance after Stop = %d, want 0", n)
	}

	f.Toggle(0, 100)
	if n := f.Advance(time.Millisecond); n != 0 {
		t.Errorf("restart carried stale time: Advance = %d", n)
	}
}

func TestFireStateString(t *testing.T) {
	if Idle.String() != "idle" || Firing.String() != "firing" {
		t.Errorf("unexpected names %q %q", Idle, Firing)
	}
}
