package stattop

import (
	"errors"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// NetworkTotals are cumulative byte counters since some reference point on the host
type NetworkTotals struct {
	TotalSent float64 `json:"totalSent"`
	TotalRecv float64 `json:"totalRecv"`
}

// Stats is one reading of the stats endpoint. Percentages are 0-100.
type Stats struct {
	CPU     float64       `json:"cpu"`
	Memory  float64       `json:"memory"`
	Disk    float64       `json:"disk"`
	Network NetworkTotals `json:"network"`
}

// ParseStats decodes a stats body. Missing fields stay 0, but a body that is not a
// JSON object or has a field of the wrong type is a ParseError.
func ParseStats(body []byte) (Stats, error) {
	var s *Stats
	if err := json.Unmarshal(body, &s); err != nil {
		return Stats{}, &ParseError{Err: err}
	}
	if s == nil {
		return Stats{}, &ParseError{Err: errors.New("expected a JSON object, got null")}
	}
	return *s, nil
}

// MarshalStats encodes s in the wire format served by the agent
func MarshalStats(s Stats) ([]byte, error) {
	return json.Marshal(s)
}
