package stattop

// SlidingWindow is a fixed-capacity FIFO of the most recent samples of one metric.
// Once full, every Push evicts the oldest sample.
type SlidingWindow struct {
	values   []float64
	capacity int
}

// NewSlidingWindow creates an empty window. Non-positive capacities fall back to MAX_DATA_POINTS.
func NewSlidingWindow(capacity int) *SlidingWindow {
	if capacity <= 0 {
		capacity = MAX_DATA_POINTS
	}
	return &SlidingWindow{
		values:   make([]float64, 0, capacity),
		capacity: capacity,
	}
}

// NewZeroFilledWindow creates a window already holding capacity zeros, so line charts
// start out with a flat baseline of full width.
func NewZeroFilledWindow(capacity int) *SlidingWindow {
	w := NewSlidingWindow(capacity)
	w.values = w.values[:w.capacity]
	return w
}

// Push appends v, dropping the oldest sample first if the window is full
func (w *SlidingWindow) Push(v float64) {
	if len(w.values) >= w.capacity {
		copy(w.values, w.values[1:])
		w.values = w.values[:len(w.values)-1]
	}
	w.values = append(w.values, v)
}

// Snapshot returns a copy of the samples ordered oldest to newest
func (w *SlidingWindow) Snapshot() []float64 {
	out := make([]float64, len(w.values))
	copy(out, w.values)
	return out
}

// Latest returns the newest sample, or 0 for an empty window
func (w *SlidingWindow) Latest() float64 {
	if len(w.values) == 0 {
		return 0
	}
	return w.values[len(w.values)-1]
}

func (w *SlidingWindow) Len() int {
	return len(w.values)
}

func (w *SlidingWindow) Cap() int {
	return w.capacity
}
