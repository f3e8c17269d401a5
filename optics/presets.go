package optics

import "strings"

// Length units in metres.
const (
	Picometre  = 1e-12
	Nanometre  = 1e-9
	Micrometre = 1e-6
	Millimetre = 1e-3
)

// Range is a closed interval of allowed values in metres.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Clamp limits v to the range.
func (r Range) Clamp(v float64) float64 {
	if v < r.Min {
		return r.Min
	}
	if v > r.Max {
		return r.Max
	}
	return v
}

// Contains reports whether v lies within the range.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// ParticleType is a family of projectiles with the slider ranges that make
// its interference pattern visible on the screen.
type ParticleType struct {
	Name           string `yaml:"name"`
	Wavelength     Range  `yaml:"wavelength"`
	SlitWidth      Range  `yaml:"slit_width"`
	SlitSeparation Range  `yaml:"slit_separation"`
}

// Apply returns base with wavelength, width and separation set to the
// lower end of each range.
func (t ParticleType) Apply(base Params) Params {
	base.Wavelength = t.Wavelength.Min
	base.SlitWidth = t.SlitWidth.Min
	base.SlitSeparation = t.SlitSeparation.Min
	return base
}

// Constrain clamps the slider-controlled fields of p into this type's ranges.
func (t ParticleType) Constrain(p Params) Params {
	p.Wavelength = t.Wavelength.Clamp(p.Wavelength)
	p.SlitWidth = t.SlitWidth.Clamp(p.SlitWidth)
	p.SlitSeparation = t.SlitSeparation.Clamp(p.SlitSeparation)
	return p
}

// DefaultParticleTypes returns the built-in particle families.
func DefaultParticleTypes() []ParticleType {
	return []ParticleType{
		{
			Name:           "photons",
			Wavelength:     Range{1 * Nanometre, 1200 * Nanometre},
			SlitWidth:      Range{100 * Micrometre, 1000 * Micrometre},
			SlitSeparation: Range{100 * Micrometre, 2000 * Micrometre},
		},
		{
			Name:           "electrons",
			Wavelength:     Range{1 * Picometre, 40 * Picometre},
			SlitWidth:      Range{100 * Nanometre, 1000 * Nanometre},
			SlitSeparation: Range{100 * Nanometre, 2000 * Nanometre},
		},
		{
			Name:           "muons",
			Wavelength:     Range{100 * Picometre, 2500 * Picometre},
			SlitWidth:      Range{1 * Micrometre, 100 * Micrometre},
			SlitSeparation: Range{1 * Micrometre, 200 * Micrometre},
		},
		{
			Name:           "protons",
			Wavelength:     Range{1 * Nanometre, 30 * Nanometre},
			SlitWidth:      Range{1 * Micrometre, 100 * Micrometre},
			SlitSeparation: Range{1 * Micrometre, 200 * Micrometre},
		},
		{
			Name:           "neutrons",
			Wavelength:     Range{1 * Nanometre, 30 * Nanometre},
			SlitWidth:      Range{1 * Micrometre, 100 * Micrometre},
			SlitSeparation: Range{1 * Micrometre, 200 * Micrometre},
		},
		{
			Name:           "helium atoms",
			Wavelength:     Range{20 * Picometre, 450 * Picometre},
			SlitWidth:      Range{1 * Micrometre, 50 * Micrometre},
			SlitSeparation: Range{1 * Micrometre, 100 * Micrometre},
		},
		{
			Name:           "sodium molecules",
			Wavelength:     Range{5 * Picometre, 130 * Picometre},
			SlitWidth:      Range{1 * Micrometre, 100 * Micrometre},
			SlitSeparation: Range{1 * Micrometre, 200 * Micrometre},
		},
		{
			Name:           "caesium atoms",
			Wavelength:     Range{4 * Picometre, 80 * Picometre},
			SlitWidth:      Range{1 * Micrometre, 100 * Micrometre},
			SlitSeparation: Range{1 * Micrometre, 200 * Micrometre},
		},
	}
}

// FindParticleType looks a type up by case-insensitive name.
func FindParticleType(types []ParticleType, name string) (ParticleType, bool) {
	for _, t := range types {
		if strings.EqualFold(t.Name, name) {
			return t, true
		}
	}
	return ParticleType{}, false
}

// DefaultDisplayScales are the magnification steps offered by the scale selector.
func DefaultDisplayScales() []float64 {
	return []float64{1, 10, 100, 1000, 10000, 100000}
}
