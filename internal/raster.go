package stattop

import (
	"image"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	ui "github.com/gizak/termui/v3"
)

// termui's x axis is stretched to make circles look round in a terminal cell
const xStretch = 2.0

// drawWidget draws a termui widget into an off-screen buffer of the given size.
// No termbox session is needed, so the result can be composed with lipgloss.
func drawWidget(d ui.Drawable, width, height int) *ui.Buffer {
	d.Lock()
	defer d.Unlock()

	d.SetRect(0, 0, width, height)
	buf := ui.NewBuffer(d.GetRect())
	d.Draw(buf)
	return buf
}

// bufferString converts a buffer into styled text, one line per row. Runs of cells
// sharing a style are rendered together to keep the escape sequences short.
func bufferString(buf *ui.Buffer) string {
	rect := buf.Rectangle
	lines := make([]string, 0, rect.Dy())

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		var line strings.Builder
		var run strings.Builder
		runStyle := ui.StyleClear

		flush := func() {
			if run.Len() == 0 {
				return
			}
			line.WriteString(lipglossStyle(runStyle).Render(run.String()))
			run.Reset()
		}

		for x := rect.Min.X; x < rect.Max.X; x++ {
			cell := buf.GetCell(image.Pt(x, y))
			if cell.Style != runStyle {
				flush()
				runStyle = cell.Style
			}
			r := cell.Rune
			if r == 0 {
				r = ' '
			}
			run.WriteRune(r)
		}
		flush()
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// cutout clears the middle of a pie drawn in rect, turning it into a donut.
// ratio is the inner radius relative to the outer one.
func cutout(buf *ui.Buffer, rect image.Rectangle, ratio float64) {
	center := rect.Min.Add(rect.Size().Div(2))
	radius := math.Min(float64(rect.Dx()/2)/xStretch, float64(rect.Dy()/2))
	inner := radius * ratio
	if inner < 1 {
		return
	}

	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dx := float64(x-center.X) / xStretch
			dy := float64(y - center.Y)
			if dx*dx+dy*dy < inner*inner {
				buf.SetCell(ui.CellClear, image.Pt(x, y))
			}
		}
	}
}

// centerText writes text in the middle of rect
func centerText(buf *ui.Buffer, rect image.Rectangle, text string, fg ui.Color) {
	if len(text) > rect.Dx() {
		return
	}
	center := rect.Min.Add(rect.Size().Div(2))
	buf.SetString(text, ui.NewStyle(fg, ui.ColorClear, ui.ModifierBold), image.Pt(center.X-len(text)/2, center.Y))
}

func blank(width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	row := strings.Repeat(" ", width)
	rows := make([]string, height)
	for i := range rows {
		rows[i] = row
	}
	return strings.Join(rows, "\n")
}

func lipglossStyle(s ui.Style) lipgloss.Style {
	style := lipgloss.NewStyle()
	if s.Fg != ui.ColorClear {
		style = style.Foreground(lipgloss.Color(strconv.Itoa(int(s.Fg))))
	}
	if s.Bg != ui.ColorClear {
		style = style.Background(lipgloss.Color(strconv.Itoa(int(s.Bg))))
	}
	if s.Modifier&ui.ModifierBold != 0 {
		style = style.Bold(true)
	}
	if s.Modifier&ui.ModifierUnderline != 0 {
		style = style.Underline(true)
	}
	if s.Modifier&ui.ModifierReverse != 0 {
		style = style.Reverse(true)
	}
	return style
}

// ansi256 maps a #rrggbb colour to the closest entry of the xterm 6x6x6 colour cube
func ansi256(hex string) ui.Color {
	num, err := strconv.ParseUint(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return ui.ColorWhite
	}
	level := func(c uint64) int {
		// cube levels are 0, 95, 135, 175, 215, 255
		if c < 48 {
			return 0
		}
		if c < 115 {
			return 1
		}
		return int((c - 35) / 40)
	}
	r := level(num >> 16 & 0xff)
	g := level(num >> 8 & 0xff)
	b := level(num & 0xff)
	return ui.Color(16 + 36*r + 6*g + b)
}
