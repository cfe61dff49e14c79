package stattop

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Element ids shared by the chart adapter, the poller and the screen
const (
	CPU_CHART         = "cpuChart"
	MEM_CHART         = "memChart"
	DISK_CHART        = "diskChart"
	CPU_HISTORY_CHART = "cpuHistoryChart"
	MEM_HISTORY_CHART = "memHistoryChart"
	NETWORK_CHART     = "networkChart"

	CPU_VALUE     = "cpuValue"
	MEM_VALUE     = "memValue"
	DISK_VALUE    = "diskValue"
	SENT_VALUE    = "sent"
	RECV_VALUE    = "recv"
	SENT_TOTAL    = "sentTotal"
	RECV_TOTAL    = "recvTotal"
	SERVER_STATUS = "serverStatus"
	LAST_UPDATE   = "lastUpdate"

	STATUS_ONLINE_CLASS = "status-online"
)

const (
	COLOR_CPU      = "#ff4b5c"
	COLOR_MEMORY   = "#3ac569"
	COLOR_DISK     = "#0096ff"
	COLOR_UPLOAD   = "#0096ff"
	COLOR_DOWNLOAD = "#3ac569"
)

// ChartHandle is a chart bound to one element of a Surface.
// Data set with SetData becomes visible on the next Redraw.
type ChartHandle interface {
	SetData(dataset int, values []float64)
	Redraw()
}

// LineHandle is a line chart that can carry more than one series on a shared x-axis
type LineHandle interface {
	ChartHandle
	AddSeries(label, color string) int
}

// Surface creates charts on named elements. Creating a chart on an element the
// surface does not have fails with ErrSurfaceNotFound.
type Surface interface {
	CreateDonut(id, label, color string) (ChartHandle, error)
	CreateLine(id, label, color string, isPercent bool) (LineHandle, error)
}

// Labels sets text and classes on named elements
type Labels interface {
	SetText(id, text string)
	SetClass(id, class string, present bool)
}

// Sample holds the instantaneous values of one poll cycle
type Sample struct {
	CPU       float64
	Memory    float64
	Disk      float64
	SentSpeed float64
	RecvSpeed float64
}

// History holds the window snapshots, oldest first
type History struct {
	CPU    []float64
	Memory []float64
	Sent   []float64
	Recv   []float64
}

// ChartAdapter owns the six dashboard charts and redraws them from a sample and history
type ChartAdapter struct {
	cpu           ChartHandle
	memory        ChartHandle
	disk          ChartHandle
	cpuHistory    LineHandle
	memoryHistory LineHandle
	network       LineHandle
}

// NewChartAdapter creates every chart on surface. Any missing element is a
// configuration error and the adapter is not usable.
func NewChartAdapter(surface Surface) (*ChartAdapter, error) {
	var err error
	c := &ChartAdapter{}

	if c.cpu, err = surface.CreateDonut(CPU_CHART, "CPU", COLOR_CPU); err != nil {
		return nil, fmt.Errorf("creating cpu chart: %w", err)
	}
	if c.memory, err = surface.CreateDonut(MEM_CHART, "Memory", COLOR_MEMORY); err != nil {
		return nil, fmt.Errorf("creating memory chart: %w", err)
	}
	if c.disk, err = surface.CreateDonut(DISK_CHART, "Disk", COLOR_DISK); err != nil {
		return nil, fmt.Errorf("creating disk chart: %w", err)
	}
	if c.cpuHistory, err = surface.CreateLine(CPU_HISTORY_CHART, "CPU", COLOR_CPU, true); err != nil {
		return nil, fmt.Errorf("creating cpu history chart: %w", err)
	}
	if c.memoryHistory, err = surface.CreateLine(MEM_HISTORY_CHART, "Memory", COLOR_MEMORY, true); err != nil {
		return nil, fmt.Errorf("creating memory history chart: %w", err)
	}
	if c.network, err = surface.CreateLine(NETWORK_CHART, "Upload", COLOR_UPLOAD, false); err != nil {
		return nil, fmt.Errorf("creating network chart: %w", err)
	}
	c.network.AddSeries("Download", COLOR_DOWNLOAD)

	return c, nil
}

// Update pushes the current values into the donuts and the window snapshots into the
// line charts, then redraws all of them
func (c *ChartAdapter) Update(current Sample, history History) {
	c.cpu.SetData(0, DonutData(current.CPU))
	c.memory.SetData(0, DonutData(current.Memory))
	c.disk.SetData(0, DonutData(current.Disk))

	c.cpuHistory.SetData(0, history.CPU)
	c.memoryHistory.SetData(0, history.Memory)
	c.network.SetData(0, history.Sent)
	c.network.SetData(1, history.Recv)

	for _, h := range []ChartHandle{c.cpu, c.memory, c.disk, c.cpuHistory, c.memoryHistory, c.network} {
		h.Redraw()
	}
}

// DonutData returns the (value, remainder) pair of a donut out of 100.
// The remainder never goes negative.
func DonutData(value float64) []float64 {
	return []float64{value, math.Max(0, 100-value)}
}

// ShadeColor lightens (positive percent) or darkens (negative percent) a #rrggbb colour
func ShadeColor(color string, percent float64) string {
	num, err := strconv.ParseUint(strings.TrimPrefix(color, "#"), 16, 32)
	if err != nil {
		return color
	}
	amt := int(math.Round(2.55 * percent))
	clamp := func(v int) int { return max(0, min(255, v)) }

	r := clamp(int(num>>16) + amt)
	g := clamp(int(num>>8&0xff) + amt)
	b := clamp(int(num&0xff) + amt)
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}
