package stattop

import (
	"errors"
	"testing"
)

func TestParseStats(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    Stats
		wantErr bool
	}{
		{
			name: "complete body",
			body: `{"cpu":45,"memory":60.5,"disk":80,"network":{"totalSent":104857600,"totalRecv":2097152}}`,
			want: Stats{CPU: 45, Memory: 60.5, Disk: 80, Network: NetworkTotals{TotalSent: 104857600, TotalRecv: 2097152}},
		},
		{
			name: "missing fields default to zero",
			body: `{"cpu":12}`,
			want: Stats{CPU: 12},
		},
		{
			name: "missing network totals",
			body: `{"cpu":1,"memory":2,"disk":3,"network":{}}`,
			want: Stats{CPU: 1, Memory: 2, Disk: 3},
		},
		{
			name: "unknown fields are ignored",
			body: `{"cpu":5,"uptime":1234}`,
			want: Stats{CPU: 5},
		},
		{name: "null", body: `null`, wantErr: true},
		{name: "array", body: `[1,2,3]`, wantErr: true},
		{name: "wrong type", body: `{"cpu":"high"}`, wantErr: true},
		{name: "truncated", body: `{"cpu":45,`, wantErr: true},
		{name: "html error page", body: `<html>502</html>`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStats([]byte(tt.body))
			if tt.wantErr {
				var parseErr *ParseError
				if !errors.As(err, &parseErr) {
					t.Fatalf("ParseStats() error = %v, want *ParseError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStats() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestMarshalStats(t *testing.T) {
	in := Stats{CPU: 45, Memory: 60, Disk: 80, Network: NetworkTotals{TotalSent: 1, TotalRecv: 2}}
	body, err := MarshalStats(in)
	if err != nil {
		t.Fatalf("MarshalStats() error: %v", err)
	}
	want := `{"cpu":45,"memory":60,"disk":80,"network":{"totalSent":1,"totalRecv":2}}`
	if string(body) != want {
		t.Errorf("MarshalStats() = %s, want %s", body, want)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"network", &NetworkError{URL: "http://x", Err: errors.New("refused")}, "network"},
		{"status", &HTTPStatusError{URL: "http://x", StatusCode: 500}, "http_status"},
		{"parse", &ParseError{Err: errors.New("bad")}, "parse"},
		{"wrapped parse", errors.Join(errors.New("context"), &ParseError{Err: errors.New("bad")}), "parse"},
		{"other", errors.New("boom"), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorKind(tt.err); got != tt.want {
				t.Errorf("ErrorKind() = %q, want %q", got, tt.want)
			}
		})
	}
}
