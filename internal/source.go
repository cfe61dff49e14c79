package stattop

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/gommon/log"
)

// Source produces one Stats reading per call. Network values are cumulative totals;
// rates are derived by the poller.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Stats, error)
}

// StatsSource polls a JSON stats endpoint such as the one served by `stattop agent`
type StatsSource struct {
	url    *url.URL
	client *http.Client
}

func NewStatsSource(statsURL *url.URL) *StatsSource {
	return &StatsSource{
		url: statsURL,
		client: &http.Client{
			Timeout: FetchTimeout(),
		},
	}
}

func (s *StatsSource) Name() string {
	return s.url.Host
}

func (s *StatsSource) Fetch(ctx context.Context) (Stats, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url.String(), nil)
	if err != nil {
		return Stats{}, &NetworkError{URL: s.url.String(), Err: err}
	}
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Stats{}, &NetworkError{URL: s.url.String(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Stats{}, &HTTPStatusError{URL: s.url.String(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Stats{}, &NetworkError{URL: s.url.String(), Err: err}
	}
	return ParseStats(body)
}

// DetectSource tries URL variants of base until one of the supported backends answers.
// The JSON stats endpoint is preferred, then Prometheus, then node_exporter.
func DetectSource(ctx context.Context, base *url.URL) (Source, error) {
	variants := generateURLVariants(base)

	for _, variant := range variants {
		statsURL := *variant
		if statsURL.Path == "" || statsURL.Path == "/" {
			statsURL.Path = "/api/stats"
		}
		log.Debugf("Trying stats endpoint: %s", &statsURL)
		ss := NewStatsSource(&statsURL)
		if _, err := ss.Fetch(ctx); err != nil {
			log.Debugf("Stats endpoint check failed: %v", err)
			continue
		}
		log.Infof("Found stats endpoint at %s", &statsURL)
		return ss, nil
	}

	for _, variant := range variants {
		log.Debugf("Trying Prometheus backend: %s", variant)
		ps, err := NewPrometheusSource(variant, "", "")
		if err != nil {
			log.Debugf("Failed to create Prometheus client: %v", err)
			continue
		}
		if err := ps.Check(ctx); err != nil {
			log.Debugf("Prometheus check failed: %v", err)
			continue
		}
		log.Infof("Found Prometheus backend at %s", variant)
		return ps, nil
	}

	for _, variant := range variants {
		log.Debugf("Trying node_exporter backend: %s", variant)
		ns := NewNodeExporterSource(variant)
		if err := ns.Check(ctx); err != nil {
			log.Debugf("node_exporter check failed: %v", err)
			continue
		}
		log.Infof("Found node_exporter backend at %s", variant)
		return ns, nil
	}

	return nil, fmt.Errorf("no stats backend found at %s", base.Host)
}

// generateURLVariants creates different URL combinations to try
func generateURLVariants(base *url.URL) []*url.URL {
	var variants []*url.URL
	hostname := base.Hostname()
	port := base.Port()
	path := base.Path

	// prefer plain HTTP unless https was asked for, the agent does not do TLS
	schemes := []string{"http", "https"}
	if base.Scheme == "https" {
		schemes = []string{"https", "http"}
	}

	// 8082 agent, 9090 Prometheus, 9100 node_exporter
	ports := []string{"8082", "9090", "9100"}
	if port != "" {
		ports = append([]string{port}, ports...)
	}

	seen := make(map[string]bool)
	uniquePorts := []string{}
	for _, p := range ports {
		if !seen[p] {
			seen[p] = true
			uniquePorts = append(uniquePorts, p)
		}
	}
	ports = uniquePorts

	paths := []string{path}
	if path == "" || path == "/" {
		paths = []string{"", "/metrics"}
	}

	for _, scheme := range schemes {
		for _, p := range ports {
			for _, urlPath := range paths {
				variants = append(variants, &url.URL{
					Scheme: scheme,
					Host:   hostname + ":" + p,
					Path:   urlPath,
				})
			}
		}
	}

	return variants
}
