package main

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/slits/optics"
	"github.com/pthm-cable/slits/telemetry"
)

// ErrNoCounts is returned when a histogram holds no particles.
var ErrNoCounts = errors.New("histogram has no counts")

// minProb keeps log-likelihood finite for counts in bins the model calls dark.
const minProb = 1e-12

// Observation is a histogram reduced to bin centres and counts.
type Observation struct {
	Centers []float64
	Counts  []float64
	Total   float64
}

// NewObservation keeps the rows of the latest epoch in the file.
func NewObservation(rows []telemetry.HistogramRow) (Observation, error) {
	var epoch uint64
	for _, r := range rows {
		if r.Epoch > epoch {
			epoch = r.Epoch
		}
	}
	var obs Observation
	for _, r := range rows {
		if r.Epoch != epoch {
			continue
		}
		obs.Centers = append(obs.Centers, r.Center)
		obs.Counts = append(obs.Counts, float64(r.Count))
	}
	obs.Total = floats.Sum(obs.Counts)
	if obs.Total <= 0 {
		return obs, ErrNoCounts
	}
	return obs, nil
}

// Model scores parameter sets against an observation.
type Model struct {
	Obs         Observation
	Floor       float64 // Histogram intensity floor
	AcceptFloor float64 // Sampler acceptance floor

	weights []float64
}

// NegLogLikelihood returns the multinomial negative log-likelihood of the
// observed counts under the sampler's distribution for p.
func (m *Model) NegLogLikelihood(p optics.Params) float64 {
	sum := m.fill(p)
	if sum <= 0 {
		return math.Inf(1)
	}

	var nll float64
	for i, c := range m.Obs.Counts {
		if c == 0 {
			continue
		}
		prob := math.Max(m.weights[i]/sum, minProb)
		nll -= c * math.Log(prob)
	}
	return nll
}

// Expected returns the counts p predicts for each observed bin.
func (m *Model) Expected(p optics.Params) []float64 {
	out := make([]float64, len(m.Obs.Centers))
	if sum := m.fill(p); sum > 0 {
		floats.ScaleTo(out, m.Obs.Total/sum, m.weights)
	}
	return out
}

// fill evaluates the sampler weights for p and returns their sum.
func (m *Model) fill(p optics.Params) float64 {
	if len(m.weights) != len(m.Obs.Centers) {
		m.weights = make([]float64, len(m.Obs.Centers))
	}
	for i, x := range m.Obs.Centers {
		w := optics.SamplingIntensity(x, p, m.Floor) - m.AcceptFloor
		if w < 0 {
			w = 0
		}
		m.weights[i] = w
	}
	return floats.Sum(m.weights)
}

// FitOptions controls the search.
type FitOptions struct {
	GridWidth      int // Grid points over the width range
	GridSeparation int // Grid points over the separation range
	MaxEvals       int // Nelder-Mead function evaluations
}

// DefaultFitOptions returns a grid fine enough to land in the right fringe
// order for a few dozen fringes across the screen.
func DefaultFitOptions() FitOptions {
	return FitOptions{
		GridWidth:      21,
		GridSeparation: 201,
		MaxEvals:       2000,
	}
}

// FitResult is the best parameter set found.
type FitResult struct {
	Params    optics.Params
	NLL       float64
	GridNLL   float64
	Evals     int
	Refined   bool   // Nelder-Mead improved on the grid
	Status    string // Nelder-Mead termination status
	Err       error
	Particles int
}

// Fit searches slit width and separation for base's wavelength, distance
// and scale. A log-spaced grid picks the basin and Nelder-Mead refines it.
func Fit(model *Model, base optics.Params, pv *ParamVector, opts FitOptions) FitResult {
	if opts.GridWidth < 2 {
		opts.GridWidth = 2
	}
	if opts.GridSeparation < 2 {
		opts.GridSeparation = 2
	}

	evals := 0
	objective := func(x []float64) float64 {
		evals++
		return model.NegLogLikelihood(pv.Apply(base, pv.Denormalize(x)))
	}

	best := []float64{0, 0}
	bestF := math.Inf(1)
	x := make([]float64, 2)
	for i := 0; i < opts.GridWidth; i++ {
		x[0] = float64(i) / float64(opts.GridWidth-1)
		for j := 0; j < opts.GridSeparation; j++ {
			x[1] = float64(j) / float64(opts.GridSeparation-1)
			if f := objective(x); f < bestF {
				bestF = f
				copy(best, x)
			}
		}
	}

	res := FitResult{
		Params:    pv.Apply(base, pv.Denormalize(best)),
		NLL:       bestF,
		GridNLL:   bestF,
		Particles: int(model.Obs.Total),
	}

	problem := optimize.Problem{Func: objective}
	settings := &optimize.Settings{FuncEvaluations: opts.MaxEvals}
	method := &optimize.NelderMead{
		SimplexSize: 0.5 / float64(opts.GridSeparation-1),
	}
	result, err := optimize.Minimize(problem, best, settings, method)
	res.Err = err
	if result != nil {
		res.Status = result.Status.String()
	}
	if result != nil && result.F < bestF {
		res.Params = pv.Apply(base, pv.Denormalize(result.X))
		res.NLL = result.F
		res.Refined = true
	}
	res.Evals = evals
	return res
}
