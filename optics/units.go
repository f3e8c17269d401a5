package optics

import (
	"fmt"
	"math"
)

// Fraction maps v onto [0, 1] across the range on a log scale. Ranges that
// span orders of magnitude get even slider travel per decade.
func (r Range) Fraction(v float64) float64 {
	if r.Max <= r.Min || r.Min <= 0 {
		return 0
	}
	v = r.Clamp(v)
	return math.Log(v/r.Min) / math.Log(r.Max/r.Min)
}

// At is the inverse of Fraction.
func (r Range) At(f float64) float64 {
	if r.Max <= r.Min || r.Min <= 0 {
		return r.Min
	}
	f = math.Max(0, math.Min(1, f))
	return r.Clamp(r.Min * math.Pow(r.Max/r.Min, f))
}

var lengthUnits = []struct {
	scale  float64
	symbol string
}{
	{1, "m"},
	{Millimetre, "mm"},
	{Micrometre, "µm"},
	{Nanometre, "nm"},
	{Picometre, "pm"},
}

// FormatLength renders a length in metres with the largest unit that keeps
// the mantissa at or above one.
func FormatLength(v float64) string {
	if v == 0 {
		return "0 m"
	}
	a := math.Abs(v)
	for _, u := range lengthUnits {
		if a >= u.scale*(1-1e-9) {
			return fmt.Sprintf("%.3g %s", v/u.scale, u.symbol)
		}
	}
	last := lengthUnits[len(lengthUnits)-1]
	return fmt.Sprintf("%.3g %s", v/last.scale, last.symbol)
}

// ScaleLabel is the ruler label for scene position x at the given display
// scale, in millimetres.
func ScaleLabel(x, displayScale float64) string {
	return fmt.Sprintf("%.4g mm", x*displayScale*5)
}
