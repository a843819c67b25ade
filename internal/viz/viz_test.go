package viz

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/cylheat/internal/heat"
)

func smallResult(t *testing.T) *heat.Result {
	t.Helper()
	p := heat.DefaultParams()
	p.Geometry.Nr, p.Geometry.Nz = 8, 8
	p.Steps = 20
	p.Snapshots = []int{0, 5, 10}
	res, err := heat.Solve(context.Background(), p)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	return res
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(4, 0)
	c.Set(-1, 2)

	if got := c.Lit(); got != 2 {
		t.Errorf("expected 2 lit dots, got %d", got)
	}
	if !c.IsSet(3, 3) || c.IsSet(1, 1) {
		t.Error("IsSet disagrees with Set")
	}

	c.Clear()
	if c.Lit() != 0 {
		t.Error("Clear left dots lit")
	}

	line := NewCanvas(10, 2)
	line.DrawLine(0, 0, 19, 0)
	if got := line.Lit(); got != 20 {
		t.Errorf("horizontal line: expected 20 dots, got %d", got)
	}
	if strings.Count(line.String(), "\n") != 1 {
		t.Error("expected one newline between two rows")
	}
}

func TestJet(t *testing.T) {
	tests := []struct {
		t       float64
		r, g, b uint8
	}{
		{0, 0, 0, 128},
		{0.5, 128, 255, 128},
		{1, 128, 0, 0},
		{-3, 0, 0, 128},
	}
	for _, tt := range tests {
		r, g, b := Jet(tt.t)
		if r != tt.r || g != tt.g || b != tt.b {
			t.Errorf("Jet(%v) = (%d,%d,%d), want (%d,%d,%d)", tt.t, r, g, b, tt.r, tt.g, tt.b)
		}
	}
	if JetHex(1) != "#800000" {
		t.Errorf("JetHex(1) = %s", JetHex(1))
	}
}

func TestLevels(t *testing.T) {
	f, err := heat.FieldFromRows([][]float64{{0, 1}, {2, 4}})
	if err != nil {
		t.Fatal(err)
	}
	lv := Levels(f, 4)
	want := [][]int{{0, 1}, {2, 3}}
	for i := range want {
		for j := range want[i] {
			if lv[i][j] != want[i][j] {
				t.Errorf("level[%d][%d] = %d, want %d", i, j, lv[i][j], want[i][j])
			}
		}
	}

	flat := heat.NewField(3, 3)
	flat.Fill(7)
	for _, row := range Levels(flat, 10) {
		for _, l := range row {
			if l != 0 {
				t.Fatal("flat field should be all level 0")
			}
		}
	}
}

func TestContour(t *testing.T) {
	res := smallResult(t)
	out := Contour(res.Final, res.Mesh, DefaultLevels)

	if got := strings.Count(out, "│"); got != 8 {
		t.Errorf("expected one axis bar per radial row, got %d", got)
	}
	if !strings.Contains(out, "°C") {
		t.Error("missing colorbar")
	}
}

func TestErrorTable(t *testing.T) {
	history := []heat.HistoryEntry{{Step: 2, MaxChange: 0.5}, {Step: 3, MaxChange: 0.25}}
	out := ErrorTable(history)
	for _, want := range []string{"Time Step", "Max Change", "0.5", "0.25"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q", want)
		}
	}
}

func TestHistoryPlot(t *testing.T) {
	if HistoryPlot(nil, 40, 5) != "" {
		t.Error("empty history should give an empty plot")
	}
	out := HistoryPlot([]heat.HistoryEntry{{Step: 2, MaxChange: 1e-3}}, 40, 5)
	if !strings.Contains(out, "[2..2]") {
		t.Errorf("caption missing step range: %q", out)
	}

	logs := Log10Changes([]heat.HistoryEntry{{MaxChange: 0}, {MaxChange: 100}})
	if logs[0] != logFloor || logs[1] != 2 {
		t.Errorf("unexpected log values %v", logs)
	}
}

func TestSurface(t *testing.T) {
	res := smallResult(t)
	c := SurfaceCanvas(res.Final, res.Mesh, nil, 40, 12)
	if c.Lit() == 0 {
		t.Error("surface rendered nothing")
	}
	if Surface(res.Final, res.Mesh, nil, 40, 12) != c.String() {
		t.Error("Surface and SurfaceCanvas disagree")
	}
}

func TestReport(t *testing.T) {
	res := smallResult(t)
	out := Report(res, DefaultReportOptions())
	for _, want := range []string{
		"2D Temperature Distribution at Time Step 0",
		"3D Temperature Distribution at Time Step 5",
		"Error Table",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q", want)
		}
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestViewer(t *testing.T) {
	res := smallResult(t)
	var m tea.Model = NewViewer(res)

	m, _ = m.Update(key("right"))
	if got := m.(Viewer).Index(); got != 1 {
		t.Errorf("expected index 1, got %d", got)
	}
	m, _ = m.Update(key("left"))
	m, _ = m.Update(key("left"))
	if got := m.(Viewer).Index(); got != len(res.Snapshots)-1 {
		t.Errorf("left should wrap to the last snapshot, got %d", got)
	}

	for _, k := range []string{"v", "a", "+", "v"} {
		m, _ = m.Update(key(k))
		if m.View() == "" {
			t.Errorf("empty view after %q", k)
		}
	}
	if !strings.Contains(m.View(), "view table") {
		t.Error("two v presses should reach the table view")
	}

	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func divergedField(t *testing.T) *heat.Field {
	t.Helper()
	f, err := heat.FieldFromRows([][]float64{
		{0, 1, math.Inf(1)},
		{2, math.NaN(), 4},
		{math.Inf(-1), 3, 2},
	})
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func TestLevelsNonFinite(t *testing.T) {
	lv := Levels(divergedField(t), 4)
	want := [][]int{{0, 1, 3}, {2, 0, 3}, {0, 3, 2}}
	for i := range want {
		for j := range want[i] {
			if lv[i][j] != want[i][j] {
				t.Errorf("level[%d][%d] = %d, want %d", i, j, lv[i][j], want[i][j])
			}
		}
	}
}

func TestRenderNonFinite(t *testing.T) {
	f := divergedField(t)
	mesh := heat.NewMesh(heat.Geometry{InnerRadius: 0.1, OuterRadius: 0.2, Length: 0.5, Nr: 3, Nz: 3})

	if out := Contour(f, mesh, DefaultLevels); !strings.Contains(out, "4.00 °C") {
		t.Errorf("colorbar should span the finite range: %q", out)
	}
	if SurfaceCanvas(f, mesh, nil, 40, 12).Lit() == 0 {
		t.Error("surface rendered nothing")
	}

	logs := Log10Changes([]heat.HistoryEntry{{MaxChange: math.Inf(1)}, {MaxChange: math.NaN()}})
	for _, l := range logs {
		if l != logCeil {
			t.Errorf("non-finite change should clamp to %v, got %v", logCeil, l)
		}
	}
	if HistoryPlot([]heat.HistoryEntry{{Step: 2, MaxChange: 1}, {Step: 3, MaxChange: math.Inf(1)}}, 40, 5) == "" {
		t.Error("plot of a diverged history is empty")
	}
}

func TestReportDiverged(t *testing.T) {
	p := heat.DefaultParams()
	p.Dt = 10
	res, err := heat.Solve(context.Background(), p)
	if !errors.Is(err, heat.ErrNonFinite) {
		t.Fatalf("expected ErrNonFinite, got %v", err)
	}
	if res == nil || res.Final.IsFinite() {
		t.Fatal("expected a partial result holding a non-finite field")
	}

	out := Report(res, DefaultReportOptions())
	if !strings.Contains(out, "non-finite") {
		t.Error("report should flag the non-finite field")
	}
	if !strings.Contains(Summary(res), "Step budget exhausted") {
		t.Errorf("unexpected summary %q", Summary(res))
	}
}

func TestRender3DNearClip(t *testing.T) {
	cam := &Camera{Distance: 6, Near: 0.1, Zoom: 1}

	behind := NewWireframe()
	behind.AddEdge(Vec3{}, Vec3{Z: 6})
	c := NewCanvas(20, 10)
	Render3D(c, behind, cam)
	if c.Lit() != 0 {
		t.Errorf("edge crossing the near plane drew %d dots", c.Lit())
	}

	front := NewWireframe()
	front.AddEdge(Vec3{}, Vec3{X: 0.5})
	Render3D(c, front, cam)
	if c.Lit() == 0 {
		t.Error("visible edge drew nothing")
	}
}
