package stattop

import (
	"context"
	"fmt"
	"sync"
)

type fakeHandle struct {
	data    map[int][]float64
	series  []string
	redraws int
}

func newFakeHandle(label string) *fakeHandle {
	return &fakeHandle{data: make(map[int][]float64), series: []string{label}}
}

func (h *fakeHandle) SetData(dataset int, values []float64) {
	h.data[dataset] = append([]float64(nil), values...)
}

func (h *fakeHandle) Redraw() {
	h.redraws++
}

func (h *fakeHandle) AddSeries(label, color string) int {
	h.series = append(h.series, label)
	return len(h.series) - 1
}

// fakeSurface records every chart it creates. Ids listed in missing fail creation.
type fakeSurface struct {
	charts  map[string]*fakeHandle
	missing map[string]bool
}

func newFakeSurface(missing ...string) *fakeSurface {
	s := &fakeSurface{charts: make(map[string]*fakeHandle), missing: make(map[string]bool)}
	for _, id := range missing {
		s.missing[id] = true
	}
	return s
}

func (s *fakeSurface) CreateDonut(id, label, color string) (ChartHandle, error) {
	if s.missing[id] {
		return nil, fmt.Errorf("%w: %s", ErrSurfaceNotFound, id)
	}
	h := newFakeHandle(label)
	s.charts[id] = h
	return h, nil
}

func (s *fakeSurface) CreateLine(id, label, color string, isPercent bool) (LineHandle, error) {
	if s.missing[id] {
		return nil, fmt.Errorf("%w: %s", ErrSurfaceNotFound, id)
	}
	h := newFakeHandle(label)
	s.charts[id] = h
	return h, nil
}

type fakeLabels struct {
	texts   map[string]string
	classes map[string]map[string]bool
}

func newFakeLabels() *fakeLabels {
	return &fakeLabels{texts: make(map[string]string), classes: make(map[string]map[string]bool)}
}

func (l *fakeLabels) SetText(id, text string) {
	l.texts[id] = text
}

func (l *fakeLabels) SetClass(id, class string, present bool) {
	if l.classes[id] == nil {
		l.classes[id] = make(map[string]bool)
	}
	l.classes[id][class] = present
}

type fetchResult struct {
	stats Stats
	err   error
}

// fakeSource returns queued results in order and repeats the last one when the queue
// runs dry. It records how many fetches ran at the same time.
type fakeSource struct {
	mu       sync.Mutex
	results  []fetchResult
	calls    int
	inFlight int
	maxSeen  int
	block    chan struct{}
}

func (f *fakeSource) Name() string {
	return "fake"
}

func (f *fakeSource) Fetch(ctx context.Context) (Stats, error) {
	f.mu.Lock()
	f.inFlight++
	f.maxSeen = max(f.maxSeen, f.inFlight)
	f.calls++
	var r fetchResult
	if len(f.results) > 0 {
		r = f.results[0]
		if len(f.results) > 1 {
			f.results = f.results[1:]
		}
	}
	block := f.block
	f.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
		}
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return r.stats, r.err
}

func (f *fakeSource) stats() (calls, maxInFlight int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, f.maxSeen
}
