package stattop

import (
	"errors"
	"reflect"
	"testing"
)

func TestDonutData(t *testing.T) {
	tests := []struct {
		value float64
		want  []float64
	}{
		{0, []float64{0, 100}},
		{45, []float64{45, 55}},
		{100, []float64{100, 0}},
		{120, []float64{120, 0}},
	}

	for _, tt := range tests {
		if got := DonutData(tt.value); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("DonutData(%v) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestShadeColor(t *testing.T) {
	tests := []struct {
		color   string
		percent float64
		want    string
	}{
		{"#ff4b5c", 0, "#ff4b5c"},
		{"#000000", 100, "#ffffff"},
		{"#ffffff", -100, "#000000"},
		{"#0096ff", -40, "#003099"},
		{"not-a-colour", 20, "not-a-colour"},
	}

	for _, tt := range tests {
		if got := ShadeColor(tt.color, tt.percent); got != tt.want {
			t.Errorf("ShadeColor(%q, %v) = %q, want %q", tt.color, tt.percent, got, tt.want)
		}
	}
}

func TestNewChartAdapter(t *testing.T) {
	surface := newFakeSurface()
	if _, err := NewChartAdapter(surface); err != nil {
		t.Fatalf("NewChartAdapter() error: %v", err)
	}

	for _, id := range []string{CPU_CHART, MEM_CHART, DISK_CHART, CPU_HISTORY_CHART, MEM_HISTORY_CHART, NETWORK_CHART} {
		if surface.charts[id] == nil {
			t.Errorf("chart %s was not created", id)
		}
	}
	if got := surface.charts[NETWORK_CHART].series; !reflect.DeepEqual(got, []string{"Upload", "Download"}) {
		t.Errorf("network series = %v, want [Upload Download]", got)
	}
}

func TestNewChartAdapter_MissingElement(t *testing.T) {
	for _, id := range []string{CPU_CHART, DISK_CHART, NETWORK_CHART} {
		t.Run(id, func(t *testing.T) {
			_, err := NewChartAdapter(newFakeSurface(id))
			if !errors.Is(err, ErrSurfaceNotFound) {
				t.Errorf("NewChartAdapter() error = %v, want ErrSurfaceNotFound", err)
			}
		})
	}
}

func TestChartAdapter_Update(t *testing.T) {
	surface := newFakeSurface()
	adapter, err := NewChartAdapter(surface)
	if err != nil {
		t.Fatalf("NewChartAdapter() error: %v", err)
	}

	history := History{
		CPU:    []float64{1, 2, 3},
		Memory: []float64{4, 5, 6},
		Sent:   []float64{0, 0.5},
		Recv:   []float64{0, 1.5},
	}
	adapter.Update(Sample{CPU: 45, Memory: 60, Disk: 80}, history)

	donuts := map[string][]float64{
		CPU_CHART:  {45, 55},
		MEM_CHART:  {60, 40},
		DISK_CHART: {80, 20},
	}
	for id, want := range donuts {
		if got := surface.charts[id].data[0]; !reflect.DeepEqual(got, want) {
			t.Errorf("%s data = %v, want %v", id, got, want)
		}
	}

	network := surface.charts[NETWORK_CHART]
	if !reflect.DeepEqual(network.data[0], history.Sent) || !reflect.DeepEqual(network.data[1], history.Recv) {
		t.Errorf("network data = %v, want sent %v recv %v", network.data, history.Sent, history.Recv)
	}
	if got := surface.charts[CPU_HISTORY_CHART].data[0]; !reflect.DeepEqual(got, history.CPU) {
		t.Errorf("cpu history = %v, want %v", got, history.CPU)
	}

	for id, h := range surface.charts {
		if h.redraws != 1 {
			t.Errorf("%s redrawn %d times, want 1", id, h.redraws)
		}
	}
}
