package export

import (
	"errors"
	"io"

	"github.com/san-kum/cylheat/internal/heat"
	"github.com/san-kum/cylheat/internal/viz"
	"github.com/wcharczuk/go-chart/v2"
)

var ErrTooFewPoints = errors.New("need at least two history entries")

// HistoryChart builds a chart of log10(max change) against time step.
func HistoryChart(history []heat.HistoryEntry, width, height int) (*chart.Chart, error) {
	if len(history) < 2 {
		return nil, ErrTooFewPoints
	}

	xs := make([]float64, len(history))
	for i, h := range history {
		xs[i] = float64(h.Step)
	}
	ys := viz.Log10Changes(history)

	yAxis := chart.YAxis{Name: "log10(max change)"}
	lo, hi := ys[0], ys[0]
	for _, y := range ys {
		lo = min(lo, y)
		hi = max(hi, y)
	}
	if lo == hi {
		yAxis.Range = &chart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}

	return &chart.Chart{
		Title:  "Convergence history",
		Width:  width,
		Height: height,
		XAxis:  chart.XAxis{Name: "Time Step"},
		YAxis:  yAxis,
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "max change",
				XValues: xs,
				YValues: ys,
			},
		},
	}, nil
}

// HistoryPNG writes the convergence chart as PNG.
func HistoryPNG(w io.Writer, history []heat.HistoryEntry, width, height int) error {
	c, err := HistoryChart(history, width, height)
	if err != nil {
		return err
	}
	return c.Render(chart.PNG, w)
}
