package stattop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	EXPORT_WIDTH  = 1024
	EXPORT_HEIGHT = 400
)

// ExportCharts writes the usage and network histories as PNG files into dir and
// returns their paths
func ExportCharts(history History, dir string, at time.Time) ([]string, error) {
	stamp := at.Format("20060102-150405")

	usage := historyChart("Usage", "%", 100,
		exportSeries{"CPU", COLOR_CPU, history.CPU},
		exportSeries{"Memory", COLOR_MEMORY, history.Memory},
	)
	network := historyChart("Network", "MB/s", speedScale([][]float64{history.Sent, history.Recv}),
		exportSeries{"Upload", COLOR_UPLOAD, history.Sent},
		exportSeries{"Download", COLOR_DOWNLOAD, history.Recv},
	)

	graphs := []struct {
		name  string
		graph chart.Chart
	}{
		{"usage", usage},
		{"network", network},
	}

	var paths []string
	for _, g := range graphs {
		path := filepath.Join(dir, fmt.Sprintf("stattop-%s-%s.png", g.name, stamp))
		if err := writePNG(path, g.graph); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

type exportSeries struct {
	name   string
	color  string
	values []float64
}

func historyChart(title, unit string, maxVal float64, series ...exportSeries) chart.Chart {
	graph := chart.Chart{
		Title:  title,
		Width:  EXPORT_WIDTH,
		Height: EXPORT_HEIGHT,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16},
		},
		XAxis: chart.XAxis{Name: fmt.Sprintf("last %d samples, %ds apart", MAX_DATA_POINTS, POLL_INTERVAL)},
		YAxis: chart.YAxis{
			Name:  unit,
			Range: &chart.ContinuousRange{Min: 0, Max: maxVal},
		},
	}

	for _, s := range series {
		ys := append([]float64(nil), s.values...)
		for len(ys) < 2 {
			ys = append([]float64{0}, ys...)
		}
		xs := make([]float64, len(ys))
		for i := range xs {
			xs[i] = float64(i)
		}
		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    s.name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: drawing.ColorFromHex(strings.TrimPrefix(s.color, "#")),
				StrokeWidth: 2,
			},
		})
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	return graph
}

func writePNG(path string, graph chart.Chart) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := graph.Render(chart.PNG, f); err != nil {
		return fmt.Errorf("rendering %s: %w", path, err)
	}
	return f.Close()
}
