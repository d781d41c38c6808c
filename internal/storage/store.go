// Package storage persists generation runs: one directory per run
// with a metadata document and the batch arrays in long-format CSV.
package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/trajgen/internal/config"
	"github.com/san-kum/trajgen/internal/traj"
)

const (
	statesFile    = "states.csv"
	inputsFile    = "inputs.csv"
	waypointsFile = "waypoints.csv"
	metaFile      = "metadata.json"
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
	ID            string             `json:"id"`
	Timestamp     time.Time          `json:"timestamp"`
	Config        config.Config      `json:"config"`
	NTrajectories int                `json:"n_trajectories"`
	Steps         int                `json:"steps"`
	Failed        int                `json:"failed"`
	Metrics       map[string]float64 `json:"metrics"`
}

func (s *Store) Save(cfg *config.Config, b *traj.Batch, mets map[string]float64) (string, error) {
	runID := fmt.Sprintf("gen_%d", time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	meta := RunMetadata{
		ID:            runID,
		Timestamp:     time.Now(),
		Config:        *cfg,
		NTrajectories: b.Len(),
		Steps:         b.Steps(),
		Failed:        len(b.Errors),
		Metrics:       mets,
	}

	metaF, err := os.Create(filepath.Join(runDir, metaFile))
	if err != nil {
		return "", err
	}
	defer metaF.Close()

	enc := json.NewEncoder(metaF)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeMatrices(filepath.Join(runDir, statesFile), []string{"traj", "step", "x", "y", "vx", "vy"}, b.States); err != nil {
		return "", err
	}
	if err := writeMatrices(filepath.Join(runDir, inputsFile), []string{"traj", "step", "ax", "ay"}, b.Inputs); err != nil {
		return "", err
	}
	if err := writeMatrices(filepath.Join(runDir, waypointsFile), []string{"traj", "point", "x", "y"}, b.Waypoints); err != nil {
		return "", err
	}

	return runID, nil
}

func writeMatrices(path string, header []string, ms []*mat.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		return err
	}

	for i, m := range ms {
		rows, cols := m.Dims()
		for r := 0; r < rows; r++ {
			rec := make([]string, 0, cols+2)
			rec = append(rec, strconv.Itoa(i), strconv.Itoa(r))
			for c := 0; c < cols; c++ {
				rec = append(rec, strconv.FormatFloat(m.At(r, c), 'g', -1, 64))
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
	}
	return w.Error()
}

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
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metaFile))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Store) LoadStates(runID string) ([]*mat.Dense, error) {
	return readMatrices(filepath.Join(s.baseDir, runID, statesFile), 4)
}

func (s *Store) LoadInputs(runID string) ([]*mat.Dense, error) {
	return readMatrices(filepath.Join(s.baseDir, runID, inputsFile), 2)
}

func (s *Store) LoadWaypoints(runID string) ([]*mat.Dense, error) {
	return readMatrices(filepath.Join(s.baseDir, runID, waypointsFile), 2)
}

func readMatrices(path string, cols int) ([]*mat.Dense, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 1 {
		return []*mat.Dense{}, nil
	}

	// rows grouped by trajectory index, appended in row order
	grouped := make([][]float64, 0)
	counts := make([]int, 0)
	for _, rec := range records[1:] {
		if len(rec) != cols+2 {
			return nil, fmt.Errorf("storage: row has %d fields, want %d", len(rec), cols+2)
		}
		idx, err := strconv.Atoi(rec[0])
		if err != nil {
			return nil, fmt.Errorf("storage: bad trajectory index %q: %w", rec[0], err)
		}
		for idx >= len(grouped) {
			grouped = append(grouped, nil)
			counts = append(counts, 0)
		}
		for c := 0; c < cols; c++ {
			v, err := strconv.ParseFloat(rec[2+c], 64)
			if err != nil {
				return nil, fmt.Errorf("storage: bad value %q: %w", rec[2+c], err)
			}
			grouped[idx] = append(grouped[idx], v)
		}
		counts[idx]++
	}

	out := make([]*mat.Dense, len(grouped))
	for i, data := range grouped {
		out[i] = mat.NewDense(counts[i], cols, data)
	}
	return out, nil
}
