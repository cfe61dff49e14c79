package stattop

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pane represents a bordered panel in the dashboard.
//
// Example usage:
//
//	pane := NewPane("CPU", 30, 12).
//	    SetAccent(COLOR_CPU).
//	    SetContent(screen.RenderChart(CPU_CHART, 28, 9)).
//	    SetFooter("45%")
//	fmt.Println(pane.Render())
type Pane struct {
	title       string
	content     string
	footer      string
	width       int
	height      int
	borderStyle lipgloss.Style
	titleStyle  lipgloss.Style
	footerStyle lipgloss.Style
}

// NewPane creates a new pane with default styling
func NewPane(title string, width, height int) Pane {
	return Pane{
		title:  title,
		width:  width,
		height: height,
		borderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")),
		titleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true),
		footerStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
	}
}

// SetContent sets the pane content
func (p Pane) SetContent(content string) Pane {
	p.content = content
	return p
}

// SetFooter sets a line shown under the content, used for the value labels
func (p Pane) SetFooter(footer string) Pane {
	p.footer = footer
	return p
}

// SetAccent colours the title with the chart colour and the border with a darker shade of it
func (p Pane) SetAccent(color string) Pane {
	p.titleStyle = p.titleStyle.Foreground(lipgloss.Color(color))
	p.borderStyle = p.borderStyle.BorderForeground(lipgloss.Color(ShadeColor(color, -40)))
	return p
}

// ContentSize returns the space left for content inside the border, title and footer
func (p Pane) ContentSize() (width, height int) {
	height = p.height
	if p.title != "" {
		height--
	}
	if p.footer != "" {
		height--
	}
	return max(0, p.width), max(0, height)
}

// Render draws the pane
func (p Pane) Render() string {
	var b strings.Builder

	if p.title != "" {
		b.WriteString(p.titleStyle.Render(p.title) + "\n")
	}
	b.WriteString(p.content)
	if p.footer != "" {
		b.WriteString("\n" + p.footerStyle.Render(p.footer))
	}

	return p.borderStyle.
		Width(p.width).
		Height(p.height).
		Render(b.String())
}
