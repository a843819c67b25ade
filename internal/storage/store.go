package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/cylheat/internal/config"
	"github.com/san-kum/cylheat/internal/heat"
)

const (
	metadataFile = "metadata.json"
	fieldFile    = "field.csv"
	historyFile  = "history.csv"
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

type SnapshotMeta struct {
	Step    int    `json:"step"`
	Reached bool   `json:"reached"`
	File    string `json:"file"`
}

type RunMetadata struct {
	ID            string           `json:"id"`
	Label         string           `json:"label"`
	Timestamp     time.Time        `json:"timestamp"`
	Nr            int              `json:"nr"`
	Nz            int              `json:"nz"`
	Dt            float64          `json:"dt"`
	Steps         int              `json:"steps"`
	StepsTaken    int              `json:"steps_taken"`
	Converged     bool             `json:"converged"`
	ConvergedStep int              `json:"converged_step,omitempty"`
	LastChange    Float            `json:"last_change"`
	Alpha         float64          `json:"alpha"`
	Snapshots     []SnapshotMeta   `json:"snapshots"`
	Metrics       map[string]Float `json:"metrics"`
	Config        *config.Config   `json:"config"`
}

// Save writes metadata.json, field.csv, history.csv and one CSV per
// snapshot into a fresh run directory and returns the run id. On failure
// the run directory is removed so List never sees a partial run.
func (s *Store) Save(label string, cfg *config.Config, result *heat.Result) (_ string, err error) {
	now := time.Now()
	runID := fmt.Sprintf("%s_%s", label, now.Format("20060102-150405"))
	runDir := filepath.Join(s.baseDir, runID)
	for n := 1; ; n++ {
		if _, err := os.Stat(runDir); os.IsNotExist(err) {
			break
		}
		runID = fmt.Sprintf("%s_%s-%d", label, now.Format("20060102-150405"), n)
		runDir = filepath.Join(s.baseDir, runID)
	}

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			os.RemoveAll(runDir)
		}
	}()

	nr, nz := result.Final.Dims()
	meta := RunMetadata{
		ID:            runID,
		Label:         label,
		Timestamp:     now,
		Nr:            nr,
		Nz:            nz,
		Dt:            cfg.Time.Dt,
		Steps:         cfg.Time.Steps,
		StepsTaken:    result.StepsTaken,
		Converged:     result.Converged,
		ConvergedStep: result.ConvergedStep,
		LastChange:    Float(result.LastChange()),
		Alpha:         result.Alpha,
		Snapshots:     make([]SnapshotMeta, 0, len(result.Snapshots)),
		Metrics:       floatMap(result.Metrics),
		Config:        cfg,
	}

	if err := writeField(filepath.Join(runDir, fieldFile), result.Mesh, result.Final); err != nil {
		return "", err
	}
	for _, snap := range result.Snapshots {
		name := fmt.Sprintf("snapshot_%d.csv", snap.Step)
		if err := writeField(filepath.Join(runDir, name), result.Mesh, snap.Field); err != nil {
			return "", err
		}
		meta.Snapshots = append(meta.Snapshots, SnapshotMeta{Step: snap.Step, Reached: snap.Reached, File: name})
	}
	if err := writeHistory(filepath.Join(runDir, historyFile), result.History); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), &meta); err != nil {
		return "", err
	}

	return runID, nil
}

func writeMetadata(path string, meta *RunMetadata) error {
	b, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0644)
}

// writeField stores the grid with the z coordinates as header row and the
// r coordinate as first column.
func writeField(path string, mesh *heat.Mesh, f *heat.Field) error {
	if nr, nz := f.Dims(); nr != len(mesh.R) || nz != len(mesh.Z) {
		return fmt.Errorf("%w: field %dx%d on mesh %dx%d", heat.ErrDimensionMismatch, nr, nz, len(mesh.R), len(mesh.Z))
	}
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)

	header := []string{"r\\z"}
	for _, z := range mesh.Z {
		header = append(header, strconv.FormatFloat(z, 'g', -1, 64))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, row := range f.Rows() {
		record := []string{strconv.FormatFloat(mesh.R[i], 'g', -1, 64)}
		for _, v := range row {
			record = append(record, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func writeHistory(path string, history []heat.HistoryEntry) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"step", "max_change"}); err != nil {
		return err
	}
	for _, h := range history {
		row := []string{strconv.Itoa(h.Step), strconv.FormatFloat(h.MaxChange, 'g', -1, 64)}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// List returns the stored runs, oldest first.
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

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	metaPath := filepath.Join(s.baseDir, runID, metadataFile)
	data, err := os.ReadFile(metaPath)
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}

	return &meta, nil
}

// LoadField reads the final field and rebuilds its mesh coordinates.
func (s *Store) LoadField(runID string) (*heat.Field, *heat.Mesh, error) {
	return readField(filepath.Join(s.baseDir, runID, fieldFile))
}

// LoadSnapshots reads every snapshot listed in the run's metadata.
func (s *Store) LoadSnapshots(runID string) ([]heat.Snapshot, *heat.Mesh, error) {
	meta, err := s.Load(runID)
	if err != nil {
		return nil, nil, err
	}

	var mesh *heat.Mesh
	snaps := make([]heat.Snapshot, 0, len(meta.Snapshots))
	for _, sm := range meta.Snapshots {
		f, m, err := readField(filepath.Join(s.baseDir, runID, sm.File))
		if err != nil {
			return nil, nil, fmt.Errorf("snapshot %d: %w", sm.Step, err)
		}
		mesh = m
		snaps = append(snaps, heat.Snapshot{Step: sm.Step, Reached: sm.Reached, Field: f})
	}
	return snaps, mesh, nil
}

func readField(path string) (*heat.Field, *heat.Mesh, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 || len(records[0]) < 2 {
		return nil, nil, fmt.Errorf("%s: no field data", filepath.Base(path))
	}

	mesh := &heat.Mesh{}
	for _, cell := range records[0][1:] {
		z, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, nil, err
		}
		mesh.Z = append(mesh.Z, z)
	}

	rows := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		r, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, err
		}
		mesh.R = append(mesh.R, r)

		row := make([]float64, 0, len(record)-1)
		for _, cell := range record[1:] {
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				return nil, nil, err
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}

	if n := len(mesh.R); n > 1 {
		mesh.Dr = (mesh.R[n-1] - mesh.R[0]) / float64(n-1)
	}
	if n := len(mesh.Z); n > 1 {
		mesh.Dz = (mesh.Z[n-1] - mesh.Z[0]) / float64(n-1)
	}

	f, err := heat.FieldFromRows(rows)
	if err != nil {
		return nil, nil, err
	}
	return f, mesh, nil
}

func (s *Store) LoadHistory(runID string) ([]heat.HistoryEntry, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, historyFile))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, err
	}

	if len(records) < 2 {
		return []heat.HistoryEntry{}, nil
	}

	history := make([]heat.HistoryEntry, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) < 2 {
			continue
		}
		step, err := strconv.Atoi(record[0])
		if err != nil {
			continue
		}
		change, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			continue
		}
		history = append(history, heat.HistoryEntry{Step: step, MaxChange: change})
	}

	return history, nil
}
