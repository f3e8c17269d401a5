package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/slits/config"
	"github.com/pthm-cable/slits/histogram"
	"github.com/pthm-cable/slits/systems"
)

// Output file names.
const (
	TelemetryFile = "telemetry.csv"
	PerfFile      = "perf.csv"
	HistogramFile = "histogram.csv"
	ParticlesFile = "particles.csv"
	ConfigFile    = "config.yaml"
)

// HistogramRow is one bin of an exported histogram.
type HistogramRow struct {
	Epoch     uint64  `csv:"epoch"`
	Key       int64   `csv:"key"`
	Center    float64 `csv:"center"`
	Count     int     `csv:"count"`
	Intensity float64 `csv:"intensity"`
}

// HistogramRows flattens m into sorted rows.
func HistogramRows(m *histogram.Map, epoch uint64) []HistogramRow {
	bins := m.Bins()
	rows := make([]HistogramRow, len(bins))
	for i, b := range bins {
		rows[i] = HistogramRow{
			Epoch:     epoch,
			Key:       int64(b.Key),
			Center:    m.Center(b.Key),
			Count:     b.Count,
			Intensity: b.Intensity,
		}
	}
	return rows
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir           string
	telemetryFile *os.File
	perfFile      *os.File

	// Track if headers have been written
	telemetryHeaderWritten bool
	perfHeaderWritten      bool
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}

	f, err := os.Create(filepath.Join(dir, TelemetryFile))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", TelemetryFile, err)
	}
	om.telemetryFile = f

	f, err = os.Create(filepath.Join(dir, PerfFile))
	if err != nil {
		om.telemetryFile.Close()
		return nil, fmt.Errorf("creating %s: %w", PerfFile, err)
	}
	om.perfFile = f

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteTelemetry appends a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(om.telemetryFile, []WindowStats{stats}, &om.telemetryHeaderWritten); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WritePerf appends a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int32) error {
	if om == nil {
		return nil
	}
	if err := appendCSV(om.perfFile, []PerfStatsCSV{stats.ToCSV(windowEnd)}, &om.perfHeaderWritten); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// appendCSV writes records, including headers only on the first call.
func appendCSV(f *os.File, records any, headerWritten *bool) error {
	if !*headerWritten {
		if err := gocsv.Marshal(records, f); err != nil {
			return err
		}
		*headerWritten = true
		return nil
	}
	return gocsv.MarshalWithoutHeaders(records, f)
}

// WriteHistogram replaces histogram.csv with the bins of m.
func (om *OutputManager) WriteHistogram(m *histogram.Map, epoch uint64) error {
	if om == nil {
		return nil
	}
	return writeCSVFile(filepath.Join(om.dir, HistogramFile), HistogramRows(m, epoch))
}

// WriteParticles replaces particles.csv with the given impacts.
func (om *OutputManager) WriteParticles(particles []systems.Particle) error {
	if om == nil {
		return nil
	}
	return writeCSVFile(filepath.Join(om.dir, ParticlesFile), particles)
}

func writeCSVFile(path string, records any) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Base(path), err)
	}
	if err := gocsv.MarshalFile(records, f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}

// ReadHistogram loads rows written by WriteHistogram.
func ReadHistogram(path string) ([]HistogramRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening histogram: %w", err)
	}
	defer f.Close()

	var rows []HistogramRow
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("parsing histogram: %w", err)
	}
	return rows, nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, f := range []*os.File{om.telemetryFile, om.perfFile} {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
