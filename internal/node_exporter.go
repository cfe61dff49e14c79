package stattop

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// NodeExporterSource scrapes a node_exporter /metrics endpoint directly
type NodeExporterSource struct {
	url    *url.URL
	client *http.Client

	// cpu seconds from the previous scrape, summed over all cpus
	lastIdle  float64
	lastTotal float64
}

func NewNodeExporterSource(metricsURL *url.URL) *NodeExporterSource {
	return &NodeExporterSource{
		url: metricsURL,
		client: &http.Client{
			Timeout: FetchTimeout(),
		},
	}
}

func (n *NodeExporterSource) Name() string {
	return n.url.Host
}

// Check scrapes once and verifies the endpoint looks like node_exporter
func (n *NodeExporterSource) Check(ctx context.Context) error {
	families, err := n.scrape(ctx)
	if err != nil {
		return err
	}
	if _, ok := families["node_cpu_seconds_total"]; !ok {
		return fmt.Errorf("%s does not expose node_cpu_seconds_total", n.url)
	}
	return nil
}

func (n *NodeExporterSource) Fetch(ctx context.Context) (Stats, error) {
	families, err := n.scrape(ctx)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	stats.CPU = n.cpuUsage(families["node_cpu_seconds_total"])
	stats.Memory = usedPercent(
		sumValues(families["node_memory_MemAvailable_bytes"], nil),
		sumValues(families["node_memory_MemTotal_bytes"], nil),
	)

	isRoot := func(m *dto.Metric) bool { return labelValue(m, "mountpoint") == "/" }
	stats.Disk = usedPercent(
		sumValues(families["node_filesystem_avail_bytes"], isRoot),
		sumValues(families["node_filesystem_size_bytes"], isRoot),
	)

	notLoopback := func(m *dto.Metric) bool { return labelValue(m, "device") != "lo" }
	stats.Network.TotalSent = sumValues(families["node_network_transmit_bytes_total"], notLoopback)
	stats.Network.TotalRecv = sumValues(families["node_network_receive_bytes_total"], notLoopback)

	return stats, nil
}

func (n *NodeExporterSource) scrape(ctx context.Context) (map[string]*dto.MetricFamily, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.url.String(), nil)
	if err != nil {
		return nil, &NetworkError{URL: n.url.String(), Err: err}
	}
	resp, err := n.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: n.url.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPStatusError{URL: n.url.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{URL: n.url.String(), Err: err}
	}

	var parser expfmt.TextParser
	families, err := parser.TextToMetricFamilies(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	return families, nil
}

// cpuUsage compares idle seconds against seconds spent in all modes since the
// previous scrape. The first scrape has nothing to compare against and reports 0.
func (n *NodeExporterSource) cpuUsage(family *dto.MetricFamily) float64 {
	var idle, total float64
	for _, m := range family.GetMetric() {
		v := m.GetCounter().GetValue()
		total += v
		if labelValue(m, "mode") == "idle" {
			idle += v
		}
	}

	first := n.lastTotal == 0
	deltaIdle := idle - n.lastIdle
	deltaTotal := total - n.lastTotal
	n.lastIdle = idle
	n.lastTotal = total

	// a counter reset shows up as a negative delta, skip that interval
	if first || deltaTotal <= 0 || deltaIdle < 0 {
		return 0
	}
	return 100 - 100*deltaIdle/deltaTotal
}

func usedPercent(available, total float64) float64 {
	if total <= 0 {
		return 0
	}
	return 100 * (1 - available/total)
}

func sumValues(family *dto.MetricFamily, keep func(*dto.Metric) bool) float64 {
	sum := 0.0
	for _, m := range family.GetMetric() {
		if keep != nil && !keep(m) {
			continue
		}
		switch {
		case m.Counter != nil:
			sum += m.GetCounter().GetValue()
		case m.Gauge != nil:
			sum += m.GetGauge().GetValue()
		case m.Untyped != nil:
			sum += m.GetUntyped().GetValue()
		}
	}
	return sum
}

func labelValue(m *dto.Metric, name string) string {
	for _, label := range m.GetLabel() {
		if label.GetName() == name {
			return label.GetValue()
		}
	}
	return ""
}
