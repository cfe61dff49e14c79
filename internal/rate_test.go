package stattop

import (
	"testing"
)

func TestRate(t *testing.T) {
	tests := []struct {
		name     string
		previous float64
		current  float64
		interval float64
		want     float64
	}{
		{"zero counters", 0, 0, 2, 0},
		{"five MB/s", 104857600, 115343360, 2, 5},
		{"one MB/s", 104857600, 104857600 + 2097152, 2, 1},
		{"counter reset clamps to zero", 115343360, 1024, 2, 0},
		{"zero interval", 0, 1048576, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Rate(tt.previous, tt.current, tt.interval); got != tt.want {
				t.Errorf("Rate(%v, %v, %v) = %v, want %v", tt.previous, tt.current, tt.interval, got, tt.want)
			}
		})
	}
}

func TestCounterState_Update(t *testing.T) {
	type reading struct {
		sent, recv         float64
		wantSent, wantRecv float64
	}
	tests := []struct {
		name     string
		readings []reading
	}{
		{
			name: "first sample is suppressed",
			readings: []reading{
				{sent: 104857600, recv: 104857600, wantSent: 0, wantRecv: 0},
				{sent: 115343360, recv: 104857600 + 2097152, wantSent: 5, wantRecv: 1},
			},
		},
		{
			name: "zero totals stay suppressed",
			readings: []reading{
				{sent: 0, recv: 0},
				{sent: 0, recv: 0},
				{sent: 2097152, recv: 2097152},
				{sent: 4194304, recv: 6291456, wantSent: 1, wantRecv: 2},
			},
		},
		{
			name: "one idle direction suppresses the other",
			readings: []reading{
				{sent: 104857600, recv: 0},
				{sent: 115343360, recv: 0, wantSent: 0, wantRecv: 0},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCounterState()
			for i, r := range tt.readings {
				gotSent, gotRecv := c.Update(r.sent, r.recv)
				if gotSent != r.wantSent || gotRecv != r.wantRecv {
					t.Errorf("reading %d: Update() = (%v, %v), want (%v, %v)", i, gotSent, gotRecv, r.wantSent, r.wantRecv)
				}
			}
		})
	}
}
