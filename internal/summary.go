package stattop

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// SummaryTable lists the speed and total of each network series next to the chart.
// Rows that do not fit in the height limit continue in another table to the right.
type SummaryTable struct {
	rows        [][]string
	maxHeight   int
	borderStyle lipgloss.Style
}

func NewSummaryTable() *SummaryTable {
	return &SummaryTable{
		borderStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// AddSeries appends a row. The label is drawn in the series colour with a legend dot.
func (st *SummaryTable) AddSeries(label, color, speed, total string) *SummaryTable {
	name := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Render("● " + label)
	st.rows = append(st.rows, []string{name, orDash(speed), orDash(total)})
	return st
}

// MaxHeight limits the height of each table, 0 means no limit
func (st *SummaryTable) MaxHeight(height int) *SummaryTable {
	st.maxHeight = height
	return st
}

func (st *SummaryTable) Render() string {
	if len(st.rows) == 0 {
		return ""
	}

	// header and three border lines
	perTable := len(st.rows)
	if st.maxHeight > 0 {
		perTable = max(1, st.maxHeight-4)
	}

	var tables []string
	for i := 0; i < len(st.rows); i += perTable {
		end := min(i+perTable, len(st.rows))
		tables = append(tables, table.New().
			Border(lipgloss.NormalBorder()).
			BorderStyle(st.borderStyle).
			Headers("", "Speed", "Total").
			Rows(st.rows[i:end]...).
			String())
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tables...)
}

func (st *SummaryTable) String() string {
	return st.Render()
}
