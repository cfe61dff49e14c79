package stattop

const bytesPerMB = 1024 * 1024

// Rate converts two readings of a cumulative byte counter taken interval seconds apart
// into MB/s. A counter that went backwards (reset or wrap) yields 0.
func Rate(previous, current, interval float64) float64 {
	if interval <= 0 || current < previous {
		return 0
	}
	return (current - previous) / bytesPerMB / interval
}

// CounterState remembers the last cumulative network totals seen by the poller
type CounterState struct {
	LastSent float64
	LastRecv float64
	Interval float64
}

// NewCounterState returns a zeroed state using the poll interval
func NewCounterState() CounterState {
	return CounterState{Interval: POLL_INTERVAL}
}

// Update records the new totals and returns the upload and download speeds in MB/s.
// Speeds are only derived once both previous totals are non-zero, so the first poll
// after startup always reports 0/0. A direction whose counter is still zero also
// suppresses the other direction for that cycle.
func (c *CounterState) Update(sent, recv float64) (sentSpeed, recvSpeed float64) {
	if c.LastSent != 0 && c.LastRecv != 0 {
		sentSpeed = Rate(c.LastSent, sent, c.Interval)
		recvSpeed = Rate(c.LastRecv, recv, c.Interval)
	}
	c.LastSent = sent
	c.LastRecv = recv
	return sentSpeed, recvSpeed
}
