package stattop

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/api"
	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
)

const DEFAULT_PROMETHEUS_JOB = "node_exporter"

// PrometheusSource reads node_exporter series for one instance through the Prometheus HTTP API
type PrometheusSource struct {
	api      v1.API
	url      *url.URL
	job      string
	instance string
}

// NewPrometheusSource creates a source for the given instance. An empty instance is
// resolved to the first healthy target of job on the first fetch.
func NewPrometheusSource(prometheusURL *url.URL, job, instance string) (*PrometheusSource, error) {
	client, err := api.NewClient(api.Config{
		Address: prometheusURL.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus client: %w", err)
	}
	if job == "" {
		job = DEFAULT_PROMETHEUS_JOB
	}

	return &PrometheusSource{
		api:      v1.NewAPI(client),
		url:      prometheusURL,
		job:      job,
		instance: instance,
	}, nil
}

func (p *PrometheusSource) Name() string {
	if p.instance != "" {
		return p.instance
	}
	return p.url.Host
}

// Check verifies the API answers and at least one target of the job is up
func (p *PrometheusSource) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout())
	defer cancel()

	instances, err := p.Instances(ctx)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		return fmt.Errorf("no %s targets found in prometheus", p.job)
	}
	return nil
}

// Instances lists the targets of the job that are currently up, sorted
func (p *PrometheusSource) Instances(ctx context.Context) ([]string, error) {
	vector, err := p.queryVector(ctx, fmt.Sprintf("up{job=%q}", p.job))
	if err != nil {
		return nil, err
	}

	instances := make([]string, 0, vector.Len())
	for _, sample := range vector {
		if sample.Value == 1 {
			instances = append(instances, string(sample.Metric["instance"]))
		}
	}
	sort.Strings(instances)
	return instances, nil
}

func (p *PrometheusSource) Fetch(ctx context.Context) (Stats, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout())
	defer cancel()

	if p.instance == "" {
		instances, err := p.Instances(ctx)
		if err != nil {
			return Stats{}, err
		}
		if len(instances) == 0 {
			return Stats{}, &ParseError{Err: fmt.Errorf("no %s targets are up", p.job)}
		}
		p.instance = instances[0]
		log.Infof("Using Prometheus instance %s", p.instance)
	}

	sel := fmt.Sprintf("instance=%q,job=%q", p.instance, p.job)
	var stats Stats
	queries := []struct {
		dest  *float64
		query string
	}{
		{&stats.CPU, fmt.Sprintf(`100 - (avg by (instance) (rate(node_cpu_seconds_total{%s,mode="idle"}[1m])) * 100)`, sel)},
		{&stats.Memory, fmt.Sprintf(`100 * (1 - node_memory_MemAvailable_bytes{%s} / node_memory_MemTotal_bytes{%s})`, sel, sel)},
		{&stats.Disk, fmt.Sprintf(`100 * (1 - node_filesystem_avail_bytes{%s,mountpoint="/"} / node_filesystem_size_bytes{%s,mountpoint="/"})`, sel, sel)},
		{&stats.Network.TotalSent, fmt.Sprintf(`sum(node_network_transmit_bytes_total{%s,device!="lo"})`, sel)},
		{&stats.Network.TotalRecv, fmt.Sprintf(`sum(node_network_receive_bytes_total{%s,device!="lo"})`, sel)},
	}

	found := 0
	for _, q := range queries {
		vector, err := p.queryVector(ctx, q.query)
		if err != nil {
			return Stats{}, err
		}
		// an absent series reads as 0, the same as a missing JSON field
		if vector.Len() > 0 {
			*q.dest = float64(vector[0].Value)
			found++
		}
	}
	// a stale or vanished instance answers every query with nothing
	if found == 0 {
		return Stats{}, &ParseError{Err: fmt.Errorf("no %s series for instance %s", p.job, p.instance)}
	}
	return stats, nil
}

func (p *PrometheusSource) queryVector(ctx context.Context, query string) (model.Vector, error) {
	result, warnings, err := p.api.Query(ctx, query, time.Now())
	if err != nil {
		var apiErr *v1.Error
		if errors.As(err, &apiErr) && apiErr.Type == v1.ErrBadResponse {
			return nil, &ParseError{Err: err}
		}
		return nil, &NetworkError{URL: p.url.String(), Err: err}
	}
	if len(warnings) > 0 {
		log.Warnf("Prometheus warnings: %v", warnings)
	}

	vector, ok := result.(model.Vector)
	if !ok {
		return nil, &ParseError{Err: fmt.Errorf("query %q returned %T, want vector", query, result)}
	}
	return vector, nil
}
