package stattop

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func TestStatsSource_Fetch(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		want      Stats
		wantErrAs any
	}{
		{
			name:   "ok",
			status: http.StatusOK,
			body:   `{"cpu":45,"memory":60,"disk":80,"network":{"totalSent":1024,"totalRecv":2048}}`,
			want:   Stats{CPU: 45, Memory: 60, Disk: 80, Network: NetworkTotals{TotalSent: 1024, TotalRecv: 2048}},
		},
		{
			name:      "server error",
			status:    http.StatusInternalServerError,
			body:      `{"error":"boom"}`,
			wantErrAs: new(*HTTPStatusError),
		},
		{
			name:      "not found",
			status:    http.StatusNotFound,
			body:      `not found`,
			wantErrAs: new(*HTTPStatusError),
		},
		{
			name:      "bad json",
			status:    http.StatusOK,
			body:      `{"cpu":`,
			wantErrAs: new(*ParseError),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotCacheControl string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotCacheControl = r.Header.Get("Cache-Control")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			source := NewStatsSource(mustParseURL(t, server.URL+"/api/stats"))
			got, err := source.Fetch(context.Background())

			if gotCacheControl != "no-cache" {
				t.Errorf("Cache-Control = %q, want no-cache", gotCacheControl)
			}
			if tt.wantErrAs != nil {
				if !errors.As(err, tt.wantErrAs) {
					t.Fatalf("Fetch() error = %v, want %T", err, tt.wantErrAs)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Fetch() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestStatsSource_FetchUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	addr := server.URL
	server.Close()

	source := NewStatsSource(mustParseURL(t, addr+"/api/stats"))
	_, err := source.Fetch(context.Background())

	var netErr *NetworkError
	if !errors.As(err, &netErr) {
		t.Fatalf("Fetch() error = %v, want *NetworkError", err)
	}
	if ErrorKind(err) != "network" {
		t.Errorf("ErrorKind() = %q, want network", ErrorKind(err))
	}
}

func TestStatsSource_FetchCancelled(t *testing.T) {
	block := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer server.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewStatsSource(mustParseURL(t, server.URL)).Fetch(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestGenerateURLVariants(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		wantFirst string
		wantCount int
	}{
		{
			name:      "bare host",
			base:      "http://server.lan",
			wantFirst: "http://server.lan:8082",
			wantCount: 12,
		},
		{
			name:      "explicit port comes first",
			base:      "http://server.lan:9999",
			wantFirst: "http://server.lan:9999",
			wantCount: 16,
		},
		{
			name:      "known port is not repeated",
			base:      "http://server.lan:9100",
			wantFirst: "http://server.lan:9100",
			wantCount: 12,
		},
		{
			name:      "explicit path is kept",
			base:      "https://server.lan/custom",
			wantFirst: "https://server.lan:8082/custom",
			wantCount: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			variants := generateURLVariants(mustParseURL(t, tt.base))
			if len(variants) != tt.wantCount {
				t.Errorf("got %d variants, want %d", len(variants), tt.wantCount)
			}
			if got := variants[0].String(); got != tt.wantFirst {
				t.Errorf("first variant = %q, want %q", got, tt.wantFirst)
			}
		})
	}
}

func TestDetectSource_StatsEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/stats" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{"cpu":1}`)
	}))
	defer server.Close()

	source, err := DetectSource(context.Background(), mustParseURL(t, server.URL))
	if err != nil {
		t.Fatalf("DetectSource() error: %v", err)
	}
	if _, ok := source.(*StatsSource); !ok {
		t.Errorf("DetectSource() = %T, want *StatsSource", source)
	}
}
