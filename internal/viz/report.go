package viz

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/cylheat/internal/heat"
)

// ReportOptions controls what Report includes.
type ReportOptions struct {
	Levels        int
	SurfaceWidth  int
	SurfaceHeight int
	Table         bool
	Plot          bool
}

func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Levels:        DefaultLevels,
		SurfaceWidth:  40,
		SurfaceHeight: 14,
		Table:         true,
		Plot:          true,
	}
}

// SnapshotTitle labels a snapshot panel; unreached steps are marked.
func SnapshotTitle(kind string, s heat.Snapshot) string {
	title := fmt.Sprintf("%s Temperature Distribution at Time Step %d", kind, s.Step)
	if !s.Reached {
		title += " (final field)"
	}
	return title
}

// SnapshotPanels renders the 2D contour and 3D surface of one snapshot
// side by side.
func SnapshotPanels(s heat.Snapshot, mesh *heat.Mesh, opts ReportOptions) string {
	contour := Panel(SnapshotTitle("2D", s), Contour(s.Field, mesh, opts.Levels))
	surface := Panel(SnapshotTitle("3D", s),
		Surface(s.Field, mesh, nil, opts.SurfaceWidth, opts.SurfaceHeight)+"\n"+
			mutedStyle().Render(fmt.Sprintf("T ∈ [%.2f, %.2f] °C", s.Field.Min(), s.Field.Max())))
	if !s.Field.IsFinite() {
		surface += "\n" + mutedStyle().Render("field holds non-finite values; clamped to the finite range")
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, contour, " ", surface)
}

// Summary is the one-line outcome of a run.
func Summary(res *heat.Result) string {
	if res.Converged {
		return fmt.Sprintf("Solution Converged at time step %d!", res.ConvergedStep)
	}
	return fmt.Sprintf("Step budget exhausted after %d steps (last max change %.3g)", res.StepsTaken, res.LastChange())
}

// Report renders every snapshot followed by the error history.
func Report(res *heat.Result, opts ReportOptions) string {
	var b strings.Builder
	b.WriteString(titleStyle().Render(Summary(res)))
	b.WriteString("\n\n")

	for _, s := range res.Snapshots {
		b.WriteString(SnapshotPanels(s, res.Mesh, opts))
		b.WriteString("\n")
	}

	if opts.Plot && len(res.History) > 0 {
		b.WriteString("\n")
		b.WriteString(HistoryPlot(res.History, 70, 10))
		b.WriteString("\n")
	}
	if opts.Table {
		b.WriteString("\nError Table:\n")
		b.WriteString(ErrorTable(res.History))
		b.WriteString("\n")
	}
	return b.String()
}
