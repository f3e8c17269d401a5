// Package scene lays out the apparatus and the overlays in scene units.
// It has no drawing code so the layout can be tested without a window.
package scene

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/pthm-cable/slits/histogram"
	"github.com/pthm-cable/slits/optics"
)

// Fixed apparatus dimensions.
const (
	SourceZ      = 2.0
	ScreenSize   = 4.1
	PatternHalf  = 2.0 // Half width of the sampled region on the screen
	TickStep     = 0.1
	MajorEvery   = 5 // Ticks per labelled tick
	BarMaxHeight = 4.0
	OverlayGap   = 0.02 // Distance overlays float in front of the screen
)

// Span is an x interval.
type Span struct {
	Min, Max float32
}

// Width returns Max - Min.
func (s Span) Width() float32 { return s.Max - s.Min }

// Center returns the midpoint.
func (s Span) Center() float32 { return (s.Min + s.Max) / 2 }

// Layout positions the fixed parts of the apparatus.
type Layout struct {
	SourceZ    float32
	ScreenZ    float32
	PlateWidth float32
	Slits      [2]Span // Openings in the slit plate, left then right
}

// Visual limits for the slit openings. Real slits are far below a scene
// unit, so the plate shows them on a compressed log scale.
const (
	minSeparation = 0.2
	maxSeparation = 1.2
	minOpening    = 0.02
)

// Apparatus returns the layout for p.
func Apparatus(p optics.Params) Layout {
	sep := minSeparation + 0.1*math.Log10(p.SlitSeparation/optics.Nanometre)
	sep = clamp(sep, minSeparation, maxSeparation)

	open := minOpening
	if p.SlitSeparation > 0 {
		open = sep * p.SlitWidth / p.SlitSeparation
	}
	open = clamp(open, minOpening, sep*0.9)

	half := float32(sep / 2)
	o := float32(open / 2)
	return Layout{
		SourceZ:    SourceZ,
		ScreenZ:    float32(-p.ScreenDistance),
		PlateWidth: ScreenSize,
		Slits: [2]Span{
			{Min: -half - o, Max: -half + o},
			{Min: half - o, Max: half + o},
		},
	}
}

// Tick is a ruler mark under the screen.
type Tick struct {
	X     float32
	Major bool
	Label string // Set on major ticks only
}

// Ticks returns ruler marks every TickStep across the pattern, labelled in
// millimetres at the display scale of p.
func Ticks(p optics.Params) []Tick {
	n := int(math.Round(PatternHalf / TickStep))
	ticks := make([]Tick, 0, 2*n+1)
	for i := -n; i <= n; i++ {
		x := float64(i) * TickStep
		t := Tick{X: float32(x)}
		if i%MajorEvery == 0 {
			t.Major = true
			t.Label = optics.ScaleLabel(x, p.DisplayScale)
		}
		ticks = append(ticks, t)
	}
	return ticks
}

// Bar is one histogram column.
type Bar struct {
	X      float32 // Bin centre
	Width  float32
	Height float32
	Count  int
}

// Bars appends a column for every non-empty bin of m to dst. Heights are
// scaled so the fullest bin reaches BarMaxHeight.
func Bars(m *histogram.Map, dst []Bar) []Bar {
	dst = dst[:0]
	maxCount := float32(m.MaxCount())
	w := float32(m.BinSize())
	for _, b := range m.Bins() {
		if b.Count == 0 {
			continue
		}
		dst = append(dst, Bar{
			X:      float32(m.Center(b.Key)),
			Width:  w,
			Height: float32(b.Count) / maxCount * BarMaxHeight,
			Count:  b.Count,
		})
	}
	return dst
}

// Bar colour ramp, blended in Lab by bar height.
var (
	barLow  = colorful.Color{R: 0.10, G: 0.35, B: 0.18}
	barHigh = colorful.Color{R: 0.35, G: 0.95, B: 0.45}
)

// RGBA is an 8-bit colour.
type RGBA struct {
	R, G, B, A uint8
}

// BarShade returns the fill colour of a bar of the given height.
func BarShade(height float32) RGBA {
	t := math.Max(0, math.Min(1, float64(height/BarMaxHeight)))
	r, g, b := barLow.BlendLab(barHigh, t).Clamped().RGB255()
	return RGBA{R: r, G: g, B: b, A: 200}
}

// Point is a position in scene space.
type Point struct {
	X, Y, Z float32
}

// Curve samples the intensity curve for p as a polyline standing on the
// bottom edge of the screen.
func Curve(p optics.Params, resolution int, dst []Point) []Point {
	dst = dst[:0]
	z := float32(-p.ScreenDistance + OverlayGap)
	base := float32(-PatternHalf)
	for _, cp := range optics.CurvePoints(p, resolution) {
		dst = append(dst, Point{
			X: float32(cp.X),
			Y: base + float32(cp.Intensity)*BarMaxHeight,
			Z: z,
		})
	}
	return dst
}

// BinAt returns the key of the bin under scene x, and false when x is off
// the pattern.
func BinAt(m *histogram.Map, x float64) (histogram.Key, bool) {
	if x < -PatternHalf || x > PatternHalf {
		return 0, false
	}
	k := m.KeyFor(x)
	_, ok := m.Bin(k)
	return k, ok
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
