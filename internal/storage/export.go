package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/cylheat/internal/heat"
)

type ExportData struct {
	Run       *RunMetadata   `json:"run,omitempty"`
	R         []float64      `json:"r"`
	Z         []float64      `json:"z"`
	Field     [][]Float      `json:"field"`
	History   []HistoryPoint `json:"history"`
	Converged bool           `json:"converged"`
	Step      int            `json:"converged_step,omitempty"`
}

// HistoryPoint is a heat.HistoryEntry whose change may be non-finite.
type HistoryPoint struct {
	Step      int   `json:"step"`
	MaxChange Float `json:"max_change"`
}

// NewExportData flattens a result into its JSON form.
func NewExportData(meta *RunMetadata, mesh *heat.Mesh, final *heat.Field, history []heat.HistoryEntry) ExportData {
	data := ExportData{
		Run:     meta,
		R:       mesh.R,
		Z:       mesh.Z,
		Field:   floatRows(final.Rows()),
		History: make([]HistoryPoint, len(history)),
	}
	for i, h := range history {
		data.History[i] = HistoryPoint{Step: h.Step, MaxChange: Float(h.MaxChange)}
	}
	if meta != nil {
		data.Converged = meta.Converged
		data.Step = meta.ConvergedStep
	}
	return data
}

func ExportJSON(w io.Writer, data ExportData) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// Export writes a stored run as JSON.
func (s *Store) Export(w io.Writer, runID string) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	final, mesh, err := s.LoadField(runID)
	if err != nil {
		return err
	}
	history, err := s.LoadHistory(runID)
	if err != nil {
		return err
	}
	return ExportJSON(w, NewExportData(meta, mesh, final, history))
}
