package telemetry

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/slits/histogram"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartFrame int32   `csv:"-"`
	WindowEndFrame   int32   `csv:"window_end"`
	SimTimeSec       float64 `csv:"sim_time"`
	Epoch            uint64  `csv:"epoch"`

	// Firing during window
	Batches       int     `csv:"batches"`
	Emitted       int     `csv:"emitted"`
	Rejections    int     `csv:"rejections"`
	Fallbacks     int     `csv:"fallbacks"`
	CapacityStops int     `csv:"capacity_stops"`
	AcceptRate    float64 `csv:"accept_rate"`
	BatchMeanUS   float64 `csv:"batch_mean_us"`

	// State at window end
	TotalParticles int  `csv:"total"`
	Firing         bool `csv:"firing"`

	// Pattern against theory at window end
	Pattern PatternFit `csv:"-"`
	MeanX   float64    `csv:"mean_x"`
	StdX    float64    `csv:"std_x"`
	Chi2    float64    `csv:"chi2"`
	Chi2DOF float64    `csv:"chi2_dof"`
	Bins    int        `csv:"bins"`
}

// PatternFit compares observed bin counts with the distribution the sampler
// draws from.
type PatternFit struct {
	Particles    int
	OccupiedBins int
	MeanX        float64 // Count-weighted mean bin centre
	StdX         float64 // Count-weighted standard deviation of bin centres
	ChiSquare    float64 // Pearson statistic over bins with non-zero expectation
	DOF          int
}

// ReducedChiSquare returns ChiSquare per degree of freedom, 0 when undefined.
func (f PatternFit) ReducedChiSquare() float64 {
	if f.DOF <= 0 {
		return 0
	}
	return f.ChiSquare / float64(f.DOF)
}

// ExpectedWeights returns the per-bin acceptance probability of the sampler,
// max(0, intensity - acceptFloor), aligned with bins.
func ExpectedWeights(bins []histogram.Bin, acceptFloor float64) []float64 {
	w := make([]float64, len(bins))
	for i, b := range bins {
		if v := b.Intensity - acceptFloor; v > 0 {
			w[i] = v
		}
	}
	return w
}

// FitPattern computes pattern statistics for m.
func FitPattern(m *histogram.Map, acceptFloor float64) PatternFit {
	bins := m.Bins()
	fit := PatternFit{Particles: m.TotalCount()}
	if fit.Particles == 0 || len(bins) == 0 {
		return fit
	}

	xs := make([]float64, len(bins))
	counts := make([]float64, len(bins))
	for i, b := range bins {
		xs[i] = m.Center(b.Key)
		counts[i] = float64(b.Count)
		if b.Count > 0 {
			fit.OccupiedBins++
		}
	}

	fit.MeanX = stat.Mean(xs, counts)
	if fit.Particles > 1 {
		fit.StdX = stat.StdDev(xs, counts)
	}

	weights := ExpectedWeights(bins, acceptFloor)
	sumW := floats.Sum(weights)
	if sumW <= 0 {
		return fit
	}

	var obs, exp []float64
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		obs = append(obs, counts[i])
		exp = append(exp, w/sumW*float64(fit.Particles))
	}
	fit.ChiSquare = stat.ChiSquare(obs, exp)
	if math.IsNaN(fit.ChiSquare) || math.IsInf(fit.ChiSquare, 0) {
		fit.ChiSquare = 0
	}
	fit.DOF = len(obs) - 1
	return fit
}

// applyPattern copies the flat CSV columns from the pattern fit.
func (s *WindowStats) applyPattern(f PatternFit) {
	s.Pattern = f
	s.MeanX = f.MeanX
	s.StdX = f.StdX
	s.Chi2 = f.ChiSquare
	s.Chi2DOF = f.ReducedChiSquare()
	s.Bins = f.OccupiedBins
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartFrame)),
		slog.Int("window_end", int(s.WindowEndFrame)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Uint64("epoch", s.Epoch),
		slog.Int("batches", s.Batches),
		slog.Int("emitted", s.Emitted),
		slog.Int("rejections", s.Rejections),
		slog.Int("fallbacks", s.Fallbacks),
		slog.Int("capacity_stops", s.CapacityStops),
		slog.Float64("accept_rate", s.AcceptRate),
		slog.Int("total", s.TotalParticles),
		slog.Bool("firing", s.Firing),
		slog.Float64("mean_x", s.MeanX),
		slog.Float64("std_x", s.StdX),
		slog.Float64("chi2_dof", s.Chi2DOF),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
