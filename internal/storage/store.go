// Package storage keeps finished runs on disk. Each run is a directory with
// metadata.json and trajectory.csv; index.db catalogs the metadata.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/san-kum/ltisim/internal/sim"
)

var ErrRunNotFound = errors.New("storage: run not found")

const (
	metadataFile   = "metadata.json"
	trajectoryFile = "trajectory.csv"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) BaseDir() string { return s.baseDir }

type RunMetadata struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Timestamp  time.Time          `json:"timestamp"`
	Precision  string             `json:"precision"`
	Dt         float64            `json:"dt"`
	Steps      int                `json:"steps"`
	Shape      sim.Shape          `json:"shape"`
	Controller string             `json:"controller"`
	Metrics    Metrics            `json:"metrics"`
}

// Trajectory is a run read back from trajectory.csv. Inputs and Outputs
// have one entry fewer than Times and States.
type Trajectory struct {
	Times   []float64
	States  [][]float64
	Inputs  [][]float64
	Outputs [][]float64
}

// Save writes a run directory. meta.ID, Timestamp, Steps and Metrics are
// filled in from the result.
func (s *Store) Save(meta RunMetadata, result *sim.Result) (string, error) {
	now := time.Now()
	meta.ID = fmt.Sprintf("%s_%d", meta.Name, now.UnixNano())
	meta.Timestamp = now
	meta.Steps = result.StepsTaken
	meta.Metrics = result.Metrics

	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", err
	}

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	if err := s.writeRun(runDir, data, meta.Shape, result); err != nil {
		os.RemoveAll(runDir)
		return "", err
	}
	return meta.ID, nil
}

func (s *Store) writeRun(runDir string, meta []byte, shape sim.Shape, result *sim.Result) error {
	if err := os.WriteFile(filepath.Join(runDir, metadataFile), append(meta, '\n'), 0644); err != nil {
		return err
	}

	csvFile, err := os.Create(filepath.Join(runDir, trajectoryFile))
	if err != nil {
		return err
	}
	if err := WriteTrajectoryCSV(csvFile, shape, result); err != nil {
		csvFile.Close()
		return err
	}
	return csvFile.Close()
}

// WriteTrajectoryCSV writes time, x*, u* and y* columns. The last row holds
// the final state only; its input and output cells are empty.
func WriteTrajectoryCSV(out io.Writer, shape sim.Shape, result *sim.Result) error {
	if len(result.Times) != len(result.States) {
		return fmt.Errorf("storage: %d times for %d states", len(result.Times), len(result.States))
	}
	w := csv.NewWriter(out)

	header := []string{"time"}
	for i := range shape.NX {
		header = append(header, fmt.Sprintf("x%d", i))
	}
	for i := range shape.NU {
		header = append(header, fmt.Sprintf("u%d", i))
	}
	for i := range shape.NY {
		header = append(header, fmt.Sprintf("y%d", i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i := range result.States {
		row := []string{formatFloat(result.Times[i])}
		row = appendValues(row, result.States[i], shape.NX)
		if i < len(result.Inputs) {
			row = appendValues(row, result.Inputs[i], shape.NU)
		} else {
			row = appendValues(row, nil, shape.NU)
		}
		if i < len(result.Outputs) {
			row = appendValues(row, result.Outputs[i], shape.NY)
		} else {
			row = appendValues(row, nil, shape.NY)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func appendValues(row []string, vals []float64, n int) []string {
	for j := range n {
		if j < len(vals) {
			row = append(row, formatFloat(vals[j]))
		} else {
			row = append(row, "")
		}
	}
	return row
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// List reads every run directory, newest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	slices.SortFunc(runs, func(a, b RunMetadata) int {
		return b.Timestamp.Compare(a.Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w", runID, err)
	}
	return &meta, nil
}

func (s *Store) LoadTrajectory(runID string) (*Trajectory, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, trajectoryFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}

	traj := &Trajectory{}
	if len(records) < 2 {
		return traj, nil
	}

	var xCols, uCols, yCols []int
	for j, name := range records[0] {
		switch {
		case strings.HasPrefix(name, "x"):
			xCols = append(xCols, j)
		case strings.HasPrefix(name, "u"):
			uCols = append(uCols, j)
		case strings.HasPrefix(name, "y"):
			yCols = append(yCols, j)
		}
	}

	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("storage: row %d: %w", i+1, err)
		}
		traj.Times = append(traj.Times, t)

		x, err := parseColumns(record, xCols)
		if err != nil {
			return nil, fmt.Errorf("storage: row %d: %w", i+1, err)
		}
		traj.States = append(traj.States, x)

		// The final-state row carries no input or output.
		if i == len(records)-2 {
			continue
		}
		u, err := parseColumns(record, uCols)
		if err != nil {
			return nil, fmt.Errorf("storage: row %d: %w", i+1, err)
		}
		y, err := parseColumns(record, yCols)
		if err != nil {
			return nil, fmt.Errorf("storage: row %d: %w", i+1, err)
		}
		traj.Inputs = append(traj.Inputs, u)
		traj.Outputs = append(traj.Outputs, y)
	}
	return traj, nil
}

func parseColumns(record []string, cols []int) ([]float64, error) {
	vals := make([]float64, 0, len(cols))
	for _, j := range cols {
		v, err := strconv.ParseFloat(record[j], 64)
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	return vals, nil
}

// OutputSeries returns channel ch of the recorded outputs.
func (t *Trajectory) OutputSeries(ch int) []float64 {
	out := make([]float64, 0, len(t.Outputs))
	for _, y := range t.Outputs {
		if ch < len(y) {
			out = append(out, y[ch])
		}
	}
	return out
}

// StateSeries returns component i of the recorded states.
func (t *Trajectory) StateSeries(i int) []float64 {
	out := make([]float64, 0, len(t.States))
	for _, x := range t.States {
		if i < len(x) {
			out = append(out, x[i])
		}
	}
	return out
}
