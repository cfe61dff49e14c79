package stattop

import (
	"github.com/charmbracelet/lipgloss"
)

// Cell builds a pane for the content size the grid gives it. The size excludes the
// pane border.
type Cell func(width, height int) Pane

type gridRow struct {
	weight int
	cells  []Cell
}

// GridLayout divides a fixed area into weighted rows of equal width cells
type GridLayout struct {
	width  int
	height int
	rows   []gridRow
}

func NewGrid(width, height int) *GridLayout {
	return &GridLayout{width: width, height: height}
}

// AddRow adds a row taking weight shares of the grid height
func (g *GridLayout) AddRow(weight int, cells ...Cell) *GridLayout {
	g.rows = append(g.rows, gridRow{weight: weight, cells: cells})
	return g
}

func (g *GridLayout) Render() string {
	if len(g.rows) == 0 {
		return ""
	}

	weights := make([]int, len(g.rows))
	for i, row := range g.rows {
		weights[i] = row.weight
	}
	heights := splitHeight(g.height, weights)

	rowViews := make([]string, 0, len(g.rows))
	for i, row := range g.rows {
		if len(row.cells) == 0 {
			continue
		}
		widths := splitWidth(g.width, len(row.cells))
		views := make([]string, len(row.cells))
		for j, cell := range row.cells {
			views[j] = cell(widths[j], max(0, heights[i]-2)).Render()
		}
		rowViews = append(rowViews, lipgloss.JoinHorizontal(lipgloss.Top, views...))
	}

	return lipgloss.JoinVertical(lipgloss.Left, rowViews...)
}

// splitWidth divides total into n column widths that add up to total, each
// leaving room for a two column border
func splitWidth(total, n int) []int {
	widths := make([]int, n)
	if n == 0 {
		return widths
	}
	base := total / n
	for i := range widths {
		widths[i] = base
	}
	widths[n-1] += total - base*n
	for i := range widths {
		widths[i] = max(0, widths[i]-2)
	}
	return widths
}

// splitHeight divides total between rows by weight. The last row takes the
// remainder and no row is shorter than a bordered line of text.
func splitHeight(total int, weights []int) []int {
	heights := make([]int, len(weights))
	if len(weights) == 0 {
		return heights
	}
	sum := 0
	for _, w := range weights {
		sum += max(0, w)
	}

	used := 0
	for i, w := range weights {
		if i == len(weights)-1 {
			heights[i] = max(3, total-used)
			break
		}
		share := total / len(weights)
		if sum > 0 {
			share = total * max(0, w) / sum
		}
		heights[i] = max(3, share)
		used += heights[i]
	}
	return heights
}
