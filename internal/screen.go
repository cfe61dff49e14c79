package stattop

import (
	"fmt"
	"math"
	"sync"

	ui "github.com/gizak/termui/v3"
	"github.com/gizak/termui/v3/widgets"
)

const COLOR_FREE = "#20262f"

// Screen is the terminal rendering surface. It owns a fixed set of elements, like the
// canvases and text nodes of a page, and renders termui widgets for the charts bound
// to them. It implements Surface and Labels.
type Screen struct {
	mu       sync.Mutex
	elements map[string]bool
	donuts   map[string]*donutChart
	lines    map[string]*lineChart
	texts    map[string]string
	classes  map[string]map[string]bool
}

// DefaultElements are the elements of the stattop layout
func DefaultElements() []string {
	return []string{
		CPU_CHART, MEM_CHART, DISK_CHART,
		CPU_HISTORY_CHART, MEM_HISTORY_CHART, NETWORK_CHART,
		CPU_VALUE, MEM_VALUE, DISK_VALUE,
		SENT_VALUE, RECV_VALUE, SENT_TOTAL, RECV_TOTAL,
		SERVER_STATUS, LAST_UPDATE,
	}
}

// NewScreen creates a screen with the default stattop layout
func NewScreen() *Screen {
	return NewScreenWithElements(DefaultElements()...)
}

// NewScreenWithElements creates a screen that only has the given elements
func NewScreenWithElements(ids ...string) *Screen {
	s := &Screen{
		elements: make(map[string]bool, len(ids)),
		donuts:   make(map[string]*donutChart),
		lines:    make(map[string]*lineChart),
		texts:    make(map[string]string),
		classes:  make(map[string]map[string]bool),
	}
	for _, id := range ids {
		s.elements[id] = true
	}
	return s
}

func (s *Screen) CreateDonut(id, label, color string) (ChartHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.elements[id] {
		return nil, fmt.Errorf("%w: %s", ErrSurfaceNotFound, id)
	}

	pie := widgets.NewPieChart()
	pie.Border = false
	pie.AngleOffset = -math.Pi / 2
	pie.Colors = []ui.Color{ansi256(color), ansi256(COLOR_FREE)}
	pie.Data = []float64{0, 100}

	d := &donutChart{label: label, color: color, pie: pie, pending: []float64{0, 100}}
	s.donuts[id] = d
	return d, nil
}

func (s *Screen) CreateLine(id, label, color string, isPercent bool) (LineHandle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.elements[id] {
		return nil, fmt.Errorf("%w: %s", ErrSurfaceNotFound, id)
	}

	plot := widgets.NewPlot()
	plot.Border = false
	plot.ShowAxes = true
	plot.Marker = widgets.MarkerBraille
	plot.PlotType = widgets.LineChart
	plot.AxesColor = ansi256("#9aa4b2")
	plot.LineColors = nil
	plot.DataLabels = nil
	plot.Data = nil

	l := &lineChart{plot: plot, isPercent: isPercent}
	l.AddSeries(label, color)
	// termui derives the scale from the data when MaxVal is 0, which breaks on all-zero series
	l.Redraw()
	s.lines[id] = l
	return l, nil
}

func (s *Screen) SetText(id, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.elements[id] {
		s.texts[id] = text
	}
}

func (s *Screen) SetClass(id, class string, present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.elements[id] {
		return
	}
	if s.classes[id] == nil {
		s.classes[id] = make(map[string]bool)
	}
	if present {
		s.classes[id][class] = true
	} else {
		delete(s.classes[id], class)
	}
}

// Text returns the text of an element, "" if never set
func (s *Screen) Text(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.texts[id]
}

// HasClass reports whether class is set on an element
func (s *Screen) HasClass(id, class string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.classes[id][class]
}

// RenderChart draws the chart bound to id into a width x height block of text.
// Unknown ids and blocks too small to hold a chart render as blank space.
func (s *Screen) RenderChart(id string, width, height int) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d, ok := s.donuts[id]; ok {
		return d.render(width, height)
	}
	if l, ok := s.lines[id]; ok {
		return l.render(width, height)
	}
	return blank(width, height)
}

// Legend returns the series labels and colours of a line chart
func (s *Screen) Legend(id string) (labels, colors []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l, ok := s.lines[id]; ok {
		return append([]string(nil), l.labels...), append([]string(nil), l.colors...)
	}
	return nil, nil
}

type donutChart struct {
	label   string
	color   string
	pie     *widgets.PieChart
	pending []float64
}

func (d *donutChart) SetData(dataset int, values []float64) {
	if dataset != 0 {
		return
	}
	d.pending = append(d.pending[:0], values...)
}

func (d *donutChart) Redraw() {
	d.pie.Lock()
	defer d.pie.Unlock()

	data := make([]float64, len(d.pending))
	for i, v := range d.pending {
		data[i] = math.Max(0, v)
	}
	// a pie with nothing in it would divide by zero
	if sum(data) == 0 {
		data = []float64{0, 100}
	}
	d.pie.Data = data
}

func (d *donutChart) render(width, height int) string {
	if width < 4 || height < 2 {
		return blank(width, height)
	}
	buf := drawWidget(d.pie, width, height)
	cutout(buf, d.pie.Inner, 0.6)
	if len(d.pie.Data) > 0 {
		centerText(buf, d.pie.Inner, FormatPercent(math.Round(d.pie.Data[0]*10)/10), ansi256(d.color))
	}
	return bufferString(buf)
}

type lineChart struct {
	plot      *widgets.Plot
	labels    []string
	colors    []string
	isPercent bool
	pending   [][]float64
}

func (l *lineChart) AddSeries(label, color string) int {
	l.labels = append(l.labels, label)
	l.colors = append(l.colors, color)
	l.pending = append(l.pending, make([]float64, MAX_DATA_POINTS))

	l.plot.Lock()
	l.plot.DataLabels = append(l.plot.DataLabels, label)
	l.plot.LineColors = append(l.plot.LineColors, ansi256(color))
	l.plot.Data = append(l.plot.Data, make([]float64, MAX_DATA_POINTS))
	l.plot.Unlock()

	return len(l.pending) - 1
}

func (l *lineChart) SetData(dataset int, values []float64) {
	if dataset < 0 || dataset >= len(l.pending) {
		return
	}
	l.pending[dataset] = append(l.pending[dataset][:0], values...)
}

func (l *lineChart) Redraw() {
	l.plot.Lock()
	defer l.plot.Unlock()

	maxVal := 100.0
	if !l.isPercent {
		maxVal = speedScale(l.pending)
	}
	l.plot.MaxVal = maxVal

	data := make([][]float64, len(l.pending))
	for i, series := range l.pending {
		// the braille canvas cannot plot below its bottom edge or above its top
		clamped := make([]float64, len(series))
		for j, v := range series {
			clamped[j] = math.Min(maxVal, math.Max(0, v))
		}
		// a line needs two points
		for len(clamped) < 2 {
			clamped = append([]float64{0}, clamped...)
		}
		data[i] = clamped
	}
	l.plot.Data = data
}

func (l *lineChart) render(width, height int) string {
	// axes take 5 columns and 2 rows
	if width < 12 || height < 4 {
		return blank(width, height)
	}
	points := 2
	for _, series := range l.plot.Data {
		points = max(points, len(series))
	}
	l.plot.Lock()
	l.plot.HorizontalScale = max(1, (width-5)/(points-1))
	l.plot.Unlock()
	return bufferString(drawWidget(l.plot, width, height))
}

// speedScale picks a y-axis maximum with some headroom above the fastest sample
func speedScale(series [][]float64) float64 {
	peak := 0.0
	for _, s := range series {
		for _, v := range s {
			peak = math.Max(peak, v)
		}
	}
	if peak <= 0 {
		return 1
	}
	return peak * 1.2
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
