package viz

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/san-kum/cylheat/internal/heat"
)

// ErrorTable renders the history as a grid table: an index column, the
// time step and its max change.
func ErrorTable(history []heat.HistoryEntry) string {
	rows := make([][]string, len(history))
	for i, h := range history {
		rows[i] = []string{
			strconv.Itoa(i),
			strconv.Itoa(h.Step),
			strconv.FormatFloat(h.MaxChange, 'g', 6, 64),
		}
	}

	header := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	body := lipgloss.NewStyle().Padding(0, 1)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderRow(true).
		BorderStyle(lipgloss.NewStyle().Foreground(CurrentTheme.Muted)).
		Headers("", "Time Step", "Max Change").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if col == 0 {
				return body.Foreground(CurrentTheme.Muted)
			}
			return body
		})
	return t.String()
}
