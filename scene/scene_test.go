package scene

import (
	"math"
	"testing"

	"github.com/pthm-cable/slits/histogram"
	"github.com/pthm-cable/slits/optics"
)

func TestApparatusSlitsSymmetric(t *testing.T) {
	for _, pt := range optics.DefaultParticleTypes() {
		p := pt.Apply(optics.DefaultParams())
		l := Apparatus(p)

		left, right := l.Slits[0], l.Slits[1]
		if math.Abs(float64(left.Center()+right.Center())) > 1e-6 {
			t.Errorf("%s: slits not symmetric: %+v", pt.Name, l.Slits)
		}
		if left.Width() <= 0 || left.Max >= right.Min {
			t.Errorf("%s: slits overlap or empty: %+v", pt.Name, l.Slits)
		}
		if l.ScreenZ != float32(-p.ScreenDistance) || l.SourceZ != SourceZ {
			t.Errorf("%s: z positions %+v", pt.Name, l)
		}
	}
}

func TestApparatusSeparationMonotonic(t *testing.T) {
	p := optics.DefaultParams()
	prev := float32(0)
	for _, d := range []float64{1e-9, 1e-8, 1e-7, 1e-6} {
		l := Apparatus(p.WithSlitSeparation(d))
		sep := l.Slits[1].Center() - l.Slits[0].Center()
		if sep < prev {
			t.Errorf("separation %g drawn narrower than previous", d)
		}
		prev = sep
	}
}

func TestTicks(t *testing.T) {
	ticks := Ticks(optics.DefaultParams().WithDisplayScale(10))
	if len(ticks) != 41 {
		t.Fatalf("ticks = %d, want 41", len(ticks))
	}
	if ticks[0].X != -2 || ticks[40].X != 2 {
		t.Errorf("ends = %v, %v", ticks[0].X, ticks[40].X)
	}
	majors := 0
	for _, tk := range ticks {
		if tk.Major {
			majors++
			if tk.Label == "" {
				t.Errorf("major tick at %v has no label", tk.X)
			}
		} else if tk.Label != "" {
			t.Errorf("minor tick at %v labelled %q", tk.X, tk.Label)
		}
	}
	if majors != 9 {
		t.Errorf("majors = %d, want 9", majors)
	}
	if ticks[25].Label != "25 mm" {
		t.Errorf("label at 0.5 = %q, want 25 mm", ticks[25].Label)
	}
}

func TestBarsScaleToPeak(t *testing.T) {
	m := histogram.New(optics.DefaultParams(), histogram.DefaultOptions())
	for i := 0; i < 4; i++ {
		m.Increment(0)
	}
	m.Increment(10)

	bars := Bars(m, nil)
	if len(bars) != 2 {
		t.Fatalf("bars = %d, want 2 (empty bins skipped)", len(bars))
	}
	if bars[0].Height != BarMaxHeight {
		t.Errorf("peak height = %v, want %v", bars[0].Height, BarMaxHeight)
	}
	if bars[1].Height != BarMaxHeight/4 {
		t.Errorf("height = %v, want %v", bars[1].Height, BarMaxHeight/4)
	}
	if math.Abs(float64(bars[1].X)-0.05) > 1e-6 {
		t.Errorf("bar x = %v, want 0.05", bars[1].X)
	}
}

func TestCurve(t *testing.T) {
	p := optics.DefaultParams()
	pts := Curve(p, 100, nil)
	if len(pts) != 101 {
		t.Fatalf("points = %d, want 101", len(pts))
	}
	if pts[0].X != -2 || pts[100].X != 2 {
		t.Errorf("curve spans [%v, %v], want [-2, 2]", pts[0].X, pts[100].X)
	}
	mid := pts[50]
	if math.Abs(float64(mid.Y-(-PatternHalf+BarMaxHeight))) > 1e-5 {
		t.Errorf("central maximum at y = %v", mid.Y)
	}
	if mid.Z != float32(-p.ScreenDistance+OverlayGap) {
		t.Errorf("curve z = %v", mid.Z)
	}
}

func TestBinAt(t *testing.T) {
	m := histogram.New(optics.DefaultParams(), histogram.DefaultOptions())
	if k, ok := BinAt(m, 0.0126); !ok || k != 3 {
		t.Errorf("BinAt(0.0126) = %d, %v; want 3, true", k, ok)
	}
	if _, ok := BinAt(m, 2.5); ok {
		t.Error("expected miss off the pattern")
	}
}

func TestBarShade(t *testing.T) {
	low, high := BarShade(0), BarShade(BarMaxHeight)
	if high.G <= low.G {
		t.Errorf("full bar green %d not brighter than empty %d", high.G, low.G)
	}
	if low.A != 200 || high.A != 200 {
		t.Errorf("alpha = %d / %d, want 200", low.A, high.A)
	}
	if BarShade(-1) != low || BarShade(2*BarMaxHeight) != high {
		t.Error("shade not clamped to the ramp")
	}
	mid := BarShade(BarMaxHeight / 2)
	if mid.G <= low.G || mid.G >= high.G {
		t.Errorf("mid green %d outside (%d, %d)", mid.G, low.G, high.G)
	}
}
