package agent

import (
	"context"

	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"

	stattop "github.com/jondoveston/stattop/internal"
)

// statsCollector exposes a fresh sample on every Prometheus scrape
type statsCollector struct {
	sampler Sampler

	up     *prometheus.Desc
	cpu    *prometheus.Desc
	memory *prometheus.Desc
	disk   *prometheus.Desc
	sent   *prometheus.Desc
	recv   *prometheus.Desc
}

func newStatsCollector(sampler Sampler) *statsCollector {
	return &statsCollector{
		sampler: sampler,
		up:      prometheus.NewDesc("stattop_up", "Whether the last host sample succeeded.", nil, nil),
		cpu:     prometheus.NewDesc("stattop_cpu_usage_percent", "CPU usage since the previous sample.", nil, nil),
		memory:  prometheus.NewDesc("stattop_memory_usage_percent", "Used memory.", nil, nil),
		disk:    prometheus.NewDesc("stattop_disk_usage_percent", "Used space of the monitored filesystem.", nil, nil),
		sent:    prometheus.NewDesc("stattop_network_sent_bytes_total", "Bytes sent over all interfaces.", nil, nil),
		recv:    prometheus.NewDesc("stattop_network_received_bytes_total", "Bytes received over all interfaces.", nil, nil),
	}
}

func (c *statsCollector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{c.up, c.cpu, c.memory, c.disk, c.sent, c.recv} {
		ch <- d
	}
}

func (c *statsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), stattop.FetchTimeout())
	defer cancel()

	stats, err := c.sampler.Sample(ctx)
	if err != nil {
		log.Errorf("Sampling for /metrics failed: %v", err)
		ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 0)
		return
	}

	ch <- prometheus.MustNewConstMetric(c.up, prometheus.GaugeValue, 1)
	ch <- prometheus.MustNewConstMetric(c.cpu, prometheus.GaugeValue, stats.CPU)
	ch <- prometheus.MustNewConstMetric(c.memory, prometheus.GaugeValue, stats.Memory)
	ch <- prometheus.MustNewConstMetric(c.disk, prometheus.GaugeValue, stats.Disk)
	ch <- prometheus.MustNewConstMetric(c.sent, prometheus.CounterValue, stats.Network.TotalSent)
	ch <- prometheus.MustNewConstMetric(c.recv, prometheus.CounterValue, stats.Network.TotalRecv)
}
