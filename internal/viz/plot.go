package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/cylheat/internal/heat"
)

// logFloor stands in for log10(0) so exact convergence stays plottable;
// logCeil stands in for a diverged (Inf or NaN) change.
const logFloor = -16.0

var logCeil = math.Log10(math.MaxFloat64)

// Log10Changes returns log10 of every max change, clamped to
// [logFloor, logCeil].
func Log10Changes(history []heat.HistoryEntry) []float64 {
	out := make([]float64, len(history))
	for i, h := range history {
		if math.IsNaN(h.MaxChange) || math.IsInf(h.MaxChange, 1) {
			out[i] = logCeil
			continue
		}
		if h.MaxChange <= 0 {
			out[i] = logFloor
			continue
		}
		out[i] = math.Max(logFloor, math.Log10(h.MaxChange))
	}
	return out
}

// HistoryPlot draws log10(max change) against step. An empty history
// gives an empty string.
func HistoryPlot(history []heat.HistoryEntry, width, height int) string {
	data := Log10Changes(history)
	if len(data) == 0 {
		return ""
	}
	if len(data) == 1 {
		data = append(data, data[0])
	}
	caption := "log10(max change) vs step"
	if len(history) > 0 {
		caption += " [" + itoa(history[0].Step) + ".." + itoa(history[len(history)-1].Step) + "]"
	}
	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
}
