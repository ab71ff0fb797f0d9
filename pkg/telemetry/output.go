package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/lao-tseu-is-alive/go-flock3d/pkg/simulation"
)

// Recorder appends FlockStats rows to telemetry.csv in an output directory.
// A nil *Recorder is valid and discards everything, so callers need not check
// whether output is enabled.
type Recorder struct {
	dir           string
	file          *os.File
	headerWritten bool
	rows          int
}

// NewRecorder creates dir if needed and opens telemetry.csv inside it.
// Returns nil if dir is empty (output disabled).
func NewRecorder(dir string) (*Recorder, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, "telemetry.csv")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating telemetry.csv: %w", err)
	}

	return &Recorder{dir: dir, file: f}, nil
}

// WriteConfig saves the configuration of the run as config.yaml.
func (r *Recorder) WriteConfig(cfg *simulation.Config) error {
	if r == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(r.dir, "config.yaml"))
}

// Write appends one row. The first row also writes the CSV header.
func (r *Recorder) Write(stats FlockStats) error {
	if r == nil {
		return nil
	}

	records := []FlockStats{stats}

	if !r.headerWritten {
		if err := gocsv.Marshal(records, r.file); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
		r.headerWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, r.file); err != nil {
			return fmt.Errorf("writing telemetry: %w", err)
		}
	}

	r.rows++
	return nil
}

// Rows returns the number of rows written so far.
func (r *Recorder) Rows() int {
	if r == nil {
		return 0
	}
	return r.rows
}

// Dir returns the output directory path.
func (r *Recorder) Dir() string {
	if r == nil {
		return ""
	}
	return r.dir
}

// Close closes telemetry.csv.
func (r *Recorder) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// ReadAll loads every row of a telemetry.csv file.
func ReadAll(path string) ([]FlockStats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	var rows []FlockStats
	if err := gocsv.UnmarshalFile(f, &rows); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return rows, nil
}
