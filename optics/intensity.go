package optics

import "math"

// Divisors for the phase terms. The screen view used for sampling spreads
// the pattern over four scene units, the curve overlay over one.
const (
	SamplingDivisor = 4.0
	CurveDivisor    = 1.0
)

// DefaultFloor is the intensity below which sampling treats a bin as dark.
const DefaultFloor = 0.01

// Intensity evaluates the normalised two-slit intensity at lateral scene
// position x (millimetres):
//
//	β = π·w·x / (divisor·scale·λ·L)
//	γ = π·d·x / (divisor·scale·λ·L)
//	I = (sin β / β)² · cos² γ
//
// The central maximum (β == 0) and degenerate non-finite phases return 1.
func Intensity(x float64, p Params, divisor float64) float64 {
	den := divisor * p.DisplayScale * p.Wavelength * p.ScreenDistance
	xm := x * SceneUnit
	beta := math.Pi * p.SlitWidth * xm / den
	gamma := math.Pi * p.SlitSeparation * xm / den

	if beta == 0 || !finite(beta) || !finite(gamma) {
		return 1
	}

	sinc := math.Sin(beta) / beta
	c := math.Cos(gamma)
	return sinc * sinc * c * c
}

// SamplingIntensity is Intensity with the sampling divisor and values below
// floor clamped to exactly 0, so long numerical tails are never drawn.
func SamplingIntensity(x float64, p Params, floor float64) float64 {
	v := Intensity(x, p, SamplingDivisor)
	if v < floor {
		return 0
	}
	return v
}

// CurveIntensity is the unfloored intensity used by the curve overlay.
func CurveIntensity(x float64, p Params) float64 {
	return Intensity(x, p, CurveDivisor)
}

// CurvePoint is one sample of the theoretical curve in scene coordinates.
type CurvePoint struct {
	X         float64 // Scene x in [-2, 2]
	Intensity float64
}

// CurvePoints samples the curve overlay at resolution+1 points. The physical
// sweep covers [-0.5, 0.5] and is stretched onto the four-unit screen.
func CurvePoints(p Params, resolution int) []CurvePoint {
	if resolution < 1 {
		resolution = 1
	}
	pts := make([]CurvePoint, resolution+1)
	for i := range pts {
		t := float64(i)/float64(resolution) - 0.5
		pts[i] = CurvePoint{
			X:         t * 4,
			Intensity: CurveIntensity(t, p),
		}
	}
	return pts
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
