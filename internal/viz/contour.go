package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/cylheat/internal/heat"
)

const DefaultLevels = 20

const cell = "██"

// Levels assigns every node to one of n equal-width bands between the
// field's finite minimum and maximum. Non-finite nodes clamp to the end
// bands (NaN to the lowest). A flat field is all level 0.
func Levels(f *heat.Field, n int) [][]int {
	if n < 1 {
		n = 1
	}
	nr, nz := f.Dims()
	lo, hi, _ := f.FiniteRange()

	out := make([][]int, nr)
	for i := range out {
		out[i] = make([]int, nz)
		if hi == lo {
			continue
		}
		for j := range out[i] {
			l := int(math.Floor(heat.Normalize(f.At(i, j), lo, hi) * float64(n)))
			out[i][j] = min(max(l, 0), n-1)
		}
	}
	return out
}

// Contour renders a filled contour map with z across and r increasing
// upwards, followed by a colorbar.
func Contour(f *heat.Field, mesh *heat.Mesh, levels int) string {
	if levels < 1 {
		levels = DefaultLevels
	}
	lv := Levels(f, levels)
	nr, nz := f.Dims()

	styles := make([]lipgloss.Style, levels)
	for l := range styles {
		styles[l] = lipgloss.NewStyle().Foreground(LevelColor(l, levels))
	}

	var b strings.Builder
	for i := nr - 1; i >= 0; i-- {
		label := "      "
		if i == nr-1 || i == 0 || i == nr/2 {
			label = fmt.Sprintf("%6.3f", mesh.R[i])
		}
		b.WriteString(label + " │")
		for j := 0; j < nz; j++ {
			b.WriteString(styles[lv[i][j]].Render(cell))
		}
		b.WriteByte('\n')
	}

	width := nz * len([]rune(cell))
	b.WriteString("       └" + strings.Repeat("─", width) + "\n")
	left := fmt.Sprintf("%.3f", mesh.Z[0])
	right := fmt.Sprintf("%.3f", mesh.Z[nz-1])
	gap := width - len(left) - len(right)
	if gap < 1 {
		gap = 1
	}
	b.WriteString("        " + left + strings.Repeat(" ", gap) + right + "\n")
	b.WriteString("        r (m) ↑   z (m) →\n")
	lo, hi, _ := f.FiniteRange()
	b.WriteString(Colorbar(lo, hi, levels))
	return b.String()
}

// Colorbar renders the band colors between the min and max labels.
func Colorbar(lo, hi float64, levels int) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%8.2f ", lo))
	for l := 0; l < levels; l++ {
		b.WriteString(lipgloss.NewStyle().Foreground(LevelColor(l, levels)).Render("█"))
	}
	b.WriteString(fmt.Sprintf(" %.2f °C", hi))
	return b.String()
}
