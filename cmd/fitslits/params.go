package main

import (
	"math"

	"github.com/pthm-cable/slits/optics"
)

// ParamSpec defines a single fitted parameter. Bounds are in metres and the
// search runs over log10 of the value.
type ParamSpec struct {
	Name string // Human-readable name
	Path string // Config path for logging
	Min  float64
	Max  float64
}

// ParamVector holds the fitted slit geometry.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the slit width and separation specs bounded by the
// particle type's ranges.
func NewParamVector(pt optics.ParticleType) *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{Name: "slit_width", Path: "experiment.params.slit_width", Min: pt.SlitWidth.Min, Max: pt.SlitWidth.Max},
			{Name: "slit_separation", Path: "experiment.params.slit_separation", Min: pt.SlitSeparation.Min, Max: pt.SlitSeparation.Max},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw values to [0,1] on a log scale.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		lo, hi := math.Log10(spec.Min), math.Log10(spec.Max)
		if hi == lo {
			continue
		}
		normalized[i] = (math.Log10(raw[i]) - lo) / (hi - lo)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw values. Out-of-range inputs
// are clamped first.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		f := math.Max(0, math.Min(1, normalized[i]))
		lo, hi := math.Log10(spec.Min), math.Log10(spec.Max)
		raw[i] = math.Pow(10, lo+f*(hi-lo))
	}
	return raw
}

// Apply returns base with the fitted geometry set.
func (pv *ParamVector) Apply(base optics.Params, raw []float64) optics.Params {
	return base.WithSlitWidth(raw[0]).WithSlitSeparation(raw[1])
}
