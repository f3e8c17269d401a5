// Package optics provides the two-slit Fraunhofer intensity model and the
// experiment parameters it is evaluated against.
package optics

import (
	"errors"
	"fmt"
	"math"
)

// SceneUnit is the length of one lateral scene unit in metres.
// Screen positions are expressed in millimetres.
const SceneUnit = 1e-3

// ErrInvalidParams is returned when a parameter set cannot describe an experiment.
var ErrInvalidParams = errors.New("invalid experiment parameters")

// Params describes one experiment setup. Lengths are in metres.
// A Params value is immutable for the lifetime of an epoch; any change
// invalidates all state derived from it.
type Params struct {
	SlitWidth      float64 `yaml:"slit_width"`
	SlitSeparation float64 `yaml:"slit_separation"`
	Wavelength     float64 `yaml:"wavelength"`
	ScreenDistance float64 `yaml:"screen_distance"`
	DisplayScale   float64 `yaml:"display_scale"` // Lateral magnification of the screen view
}

// DefaultParams returns the startup configuration: 1 nm slits, 1 nm
// wavelength and a screen 3 m behind the plate.
func DefaultParams() Params {
	return Params{
		SlitWidth:      1e-9,
		SlitSeparation: 1e-9,
		Wavelength:     1e-9,
		ScreenDistance: 3,
		DisplayScale:   1,
	}
}

// Validate reports the first field that is out of range.
func (p Params) Validate() error {
	checks := []struct {
		name  string
		value float64
		ok    bool
	}{
		{"slit_width", p.SlitWidth, p.SlitWidth > 0},
		{"slit_separation", p.SlitSeparation, p.SlitSeparation >= 0},
		{"wavelength", p.Wavelength, p.Wavelength > 0},
		{"screen_distance", p.ScreenDistance, p.ScreenDistance > 0},
		{"display_scale", p.DisplayScale, p.DisplayScale > 0},
	}
	for _, c := range checks {
		if math.IsNaN(c.value) || math.IsInf(c.value, 0) || !c.ok {
			return fmt.Errorf("%w: %s = %g", ErrInvalidParams, c.name, c.value)
		}
	}
	return nil
}

// WithWavelength returns a copy of p with a new wavelength.
func (p Params) WithWavelength(v float64) Params {
	p.Wavelength = v
	return p
}

// WithSlitWidth returns a copy of p with a new slit width.
func (p Params) WithSlitWidth(v float64) Params {
	p.SlitWidth = v
	return p
}

// WithSlitSeparation returns a copy of p with a new slit separation.
func (p Params) WithSlitSeparation(v float64) Params {
	p.SlitSeparation = v
	return p
}

// WithDisplayScale returns a copy of p with a new display scale.
func (p Params) WithDisplayScale(v float64) Params {
	p.DisplayScale = v
	return p
}
