package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/cylheat/internal/heat"
)

type viewMode int

const (
	modeContour viewMode = iota
	modeSurface
	modeTable
)

func (m viewMode) String() string {
	switch m {
	case modeSurface:
		return "surface"
	case modeTable:
		return "table"
	default:
		return "contour"
	}
}

// tableWindow is the number of history rows shown per page.
const tableWindow = 15

// Viewer pages through the snapshots of a finished run.
type Viewer struct {
	snapshots []heat.Snapshot
	mesh      *heat.Mesh
	history   []heat.HistoryEntry
	summary   string
	index     int
	mode      viewMode
	camera    *Camera
	theme     int
	tableTop  int
	width     int
	height    int
}

func NewViewer(res *heat.Result) Viewer {
	return NewViewerFrom(res.Snapshots, res.Mesh, res.History, Summary(res))
}

// NewViewerFrom builds a viewer from stored pieces of a run.
func NewViewerFrom(snaps []heat.Snapshot, mesh *heat.Mesh, history []heat.HistoryEntry, summary string) Viewer {
	return Viewer{
		snapshots: snaps,
		mesh:      mesh,
		history:   history,
		summary:   summary,
		camera:    NewCamera(),
		width:     80,
		height:    24,
	}
}

func (v Viewer) Init() tea.Cmd { return nil }

func (v Viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width, v.height = msg.Width, msg.Height
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return v, tea.Quit
		case "right", "l":
			if n := len(v.snapshots); n > 0 {
				v.index = (v.index + 1) % n
			}
		case "left", "h":
			if n := len(v.snapshots); n > 0 {
				v.index = (v.index - 1 + n) % n
			}
		case "v":
			v.mode = (v.mode + 1) % 3
		case "up", "w":
			if v.mode == modeTable {
				v.tableTop = max(0, v.tableTop-tableWindow)
			} else {
				v.camera.RotateX(0.1)
			}
		case "down", "s":
			if v.mode == modeTable {
				if v.tableTop+tableWindow < len(v.history) {
					v.tableTop += tableWindow
				}
			} else {
				v.camera.RotateX(-0.1)
			}
		case "a":
			v.camera.RotateY(0.15)
		case "d":
			v.camera.RotateY(-0.15)
		case "+", "=":
			v.camera.ZoomIn()
		case "-":
			v.camera.ZoomOut()
		case "t":
			v.theme = (v.theme + 1) % len(Themes)
			CurrentTheme = Themes[v.theme]
		}
	}
	return v, nil
}

func (v Viewer) View() string {
	var b strings.Builder
	b.WriteString(titleStyle().Render(v.summary))
	b.WriteString("\n")

	if len(v.snapshots) == 0 {
		b.WriteString(mutedStyle().Render("no snapshots\n"))
		return b.String()
	}
	s := v.snapshots[v.index]
	b.WriteString(mutedStyle().Render(fmt.Sprintf("snapshot %d/%d · view %s · theme %s",
		v.index+1, len(v.snapshots), v.mode, CurrentTheme.Name)))
	b.WriteString("\n")

	switch v.mode {
	case modeContour:
		b.WriteString(Panel(SnapshotTitle("2D", s), Contour(s.Field, v.mesh, DefaultLevels)))
	case modeSurface:
		w := max(20, min(v.width-6, 100))
		h := max(8, min(v.height-8, 30))
		b.WriteString(Panel(SnapshotTitle("3D", s), SurfaceCanvas(s.Field, v.mesh, v.camera, w, h).String()))
	case modeTable:
		end := min(len(v.history), v.tableTop+tableWindow)
		b.WriteString(ErrorTable(v.history[v.tableTop:end]))
	}

	b.WriteString("\n")
	b.WriteString(SparklineChart(Log10Changes(v.history), 60))
	b.WriteString("\n")
	b.WriteString(mutedStyle().Render("←/→ snapshot · v view · w/s/a/d rotate · +/- zoom · t theme · q quit"))
	return b.String()
}

// Index reports the snapshot currently shown.
func (v Viewer) Index() int { return v.index }

// RunViewer starts the viewer on the terminal and blocks until it exits.
func RunViewer(res *heat.Result) error {
	_, err := tea.NewProgram(NewViewer(res), tea.WithAltScreen()).Run()
	return err
}

// RunViewerFrom opens the viewer on a stored run.
func RunViewerFrom(snaps []heat.Snapshot, mesh *heat.Mesh, history []heat.HistoryEntry, summary string) error {
	_, err := tea.NewProgram(NewViewerFrom(snaps, mesh, history, summary), tea.WithAltScreen()).Run()
	return err
}
