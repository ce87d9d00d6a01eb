// Package store persists simulation runs to disk: one directory per
// run holding metadata as JSON and the trajectory as CSV.
package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/san-kum/netdyn/internal/config"
	"github.com/san-kum/netdyn/internal/sim"
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

type RunMetadata struct {
	ID         string             `json:"id"`
	Model      string             `json:"model"`
	Topology   string             `json:"topology"`
	Vertices   int                `json:"vertices"`
	Integrator string             `json:"integrator"`
	Timestamp  time.Time          `json:"timestamp"`
	Seed       int64              `json:"seed"`
	Dt         float64            `json:"dt"`
	Duration   float64            `json:"duration"`
	Workers    int                `json:"workers"`
	Steps      int                `json:"steps"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// Save writes one run directory under the base dir and returns its id.
func (s *Store) Save(cfg *config.Config, metrics map[string]float64, result *sim.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Model, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:         runID,
		Model:      cfg.Model,
		Topology:   cfg.Topology,
		Vertices:   cfg.Vertices,
		Integrator: cfg.Integrator,
		Timestamp:  time.Now(),
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
		Workers:    cfg.Workers,
		Steps:      result.StepsTaken,
		Metrics:    metrics,
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	csvFile, err := os.Create(filepath.Join(runDir, "states.csv"))
	if err != nil {
		return "", err
	}
	defer csvFile.Close()

	if err := WriteCSV(csvFile, result); err != nil {
		return "", err
	}
	return runID, nil
}

// Load reads a run's metadata back by id.
func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// List returns the ids of all saved runs.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// WriteCSV writes a trajectory as CSV with a time column followed by
// one column per state component.
func WriteCSV(out io.Writer, result *sim.Result) error {
	w := csv.NewWriter(out)

	if len(result.States) == 0 {
		return nil
	}

	header := make([]string, 0, len(result.States[0])+1)
	header = append(header, "time")
	for i := range result.States[0] {
		header = append(header, "x"+strconv.Itoa(i))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, s := range result.States {
		row := make([]string, 0, len(s)+1)
		row = append(row, strconv.FormatFloat(result.Times[i], 'g', -1, 64))
		for _, v := range s {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
