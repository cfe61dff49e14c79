package stattop

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	dto "github.com/prometheus/client_model/go"
)

const nodeExporterScrape = `# HELP node_cpu_seconds_total Seconds the CPUs spent in each mode.
# TYPE node_cpu_seconds_total counter
node_cpu_seconds_total{cpu="0",mode="idle"} %v
node_cpu_seconds_total{cpu="0",mode="user"} %v
# TYPE node_memory_MemAvailable_bytes gauge
node_memory_MemAvailable_bytes 25
# TYPE node_memory_MemTotal_bytes gauge
node_memory_MemTotal_bytes 100
# TYPE node_filesystem_avail_bytes gauge
node_filesystem_avail_bytes{device="/dev/sda1",mountpoint="/"} 20
node_filesystem_avail_bytes{device="/dev/sda2",mountpoint="/boot"} 1
# TYPE node_filesystem_size_bytes gauge
node_filesystem_size_bytes{device="/dev/sda1",mountpoint="/"} 100
node_filesystem_size_bytes{device="/dev/sda2",mountpoint="/boot"} 1000
# TYPE node_network_transmit_bytes_total counter
node_network_transmit_bytes_total{device="eth0"} 1000
node_network_transmit_bytes_total{device="wlan0"} 24
node_network_transmit_bytes_total{device="lo"} 500
# TYPE node_network_receive_bytes_total counter
node_network_receive_bytes_total{device="eth0"} 2000
node_network_receive_bytes_total{device="lo"} 500
`

func TestNodeExporterSource_Fetch(t *testing.T) {
	// idle and user seconds per scrape
	scrapes := [][2]float64{{100, 50}, {130, 70}}
	var mu sync.Mutex
	n := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		s := scrapes[min(n, len(scrapes)-1)]
		n++
		mu.Unlock()
		fmt.Fprintf(w, nodeExporterScrape, s[0], s[1])
	}))
	defer server.Close()

	source := NewNodeExporterSource(mustParseURL(t, server.URL+"/metrics"))

	first, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("first Fetch() error: %v", err)
	}
	if first.CPU != 0 {
		t.Errorf("first CPU = %v, want 0", first.CPU)
	}

	second, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("second Fetch() error: %v", err)
	}

	checks := []struct {
		name      string
		got, want float64
	}{
		{"cpu", second.CPU, 40},
		{"memory", second.Memory, 75},
		{"disk", second.Disk, 80},
		{"sent", second.Network.TotalSent, 1024},
		{"recv", second.Network.TotalRecv, 2000},
	}
	for _, c := range checks {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
}

func TestNodeExporterSource_Check(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"node exporter", fmt.Sprintf(nodeExporterScrape, 1, 1), false},
		{"some other exporter", "# TYPE http_requests_total counter\nhttp_requests_total 3\n", true},
		{"not metrics", "{\"cpu\":1}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			err := NewNodeExporterSource(mustParseURL(t, server.URL)).Check(context.Background())
			if (err != nil) != tt.wantErr {
				t.Errorf("Check() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNodeExporterSource_HTTPStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := NewNodeExporterSource(mustParseURL(t, server.URL)).Fetch(context.Background())
	var statusErr *HTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("Fetch() error = %v, want HTTP 503", err)
	}
}

func TestCPUUsage_CounterReset(t *testing.T) {
	source := &NodeExporterSource{lastIdle: 1000, lastTotal: 2000}
	family := cpuFamily(10, 5)
	if got := source.cpuUsage(family); got != 0 {
		t.Errorf("cpuUsage() after reset = %v, want 0", got)
	}
	if source.lastTotal != 15 {
		t.Errorf("lastTotal = %v, want 15", source.lastTotal)
	}
}

func cpuFamily(idle, user float64) *dto.MetricFamily {
	metric := func(mode string, v float64) *dto.Metric {
		name := "mode"
		return &dto.Metric{
			Label:   []*dto.LabelPair{{Name: &name, Value: &mode}},
			Counter: &dto.Counter{Value: &v},
		}
	}
	return &dto.MetricFamily{Metric: []*dto.Metric{metric("idle", idle), metric("user", user)}}
}
