package stattop

import (
	"context"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/gommon/log"
)

// Status is the connection state shown in the status bar
type Status int

const (
	StatusUnknown Status = iota
	StatusOnline
	StatusOffline
)

func (s Status) String() string {
	switch s {
	case StatusOnline:
		return "Online"
	case StatusOffline:
		return "Offline"
	default:
		return "Connecting"
	}
}

// Poller owns all dashboard state: the rolling windows, the last network totals and
// the charts. Only Apply and Fail mutate it, and callers must not run them concurrently.
type Poller struct {
	source   Source
	charts   *ChartAdapter
	labels   Labels
	counters CounterState

	cpu    *SlidingWindow
	memory *SlidingWindow
	sent   *SlidingWindow
	recv   *SlidingWindow

	current    Sample
	totals     NetworkTotals
	status     Status
	lastUpdate time.Time
	lastErr    error

	// now is swapped in tests
	now func() time.Time
}

// NewPoller creates the charts on surface and zero-filled windows for every line chart.
// It fails when the surface is missing a chart element.
func NewPoller(source Source, surface Surface, labels Labels) (*Poller, error) {
	charts, err := NewChartAdapter(surface)
	if err != nil {
		return nil, err
	}
	return &Poller{
		source:   source,
		charts:   charts,
		labels:   labels,
		counters: NewCounterState(),
		cpu:      NewZeroFilledWindow(MAX_DATA_POINTS),
		memory:   NewZeroFilledWindow(MAX_DATA_POINTS),
		sent:     NewZeroFilledWindow(MAX_DATA_POINTS),
		recv:     NewZeroFilledWindow(MAX_DATA_POINTS),
		status:   StatusUnknown,
		now:      time.Now,
	}, nil
}

// Run polls until ctx is done. The next poll is scheduled only after the previous one
// has finished, so two cycles never overlap however slow the source is.
func (p *Poller) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			p.Poll(ctx)
			timer.Reset(PollDuration())
		}
	}
}

// Poll runs one cycle: fetch, then Apply or Fail. The fetch error, if any, is returned
// for the caller's information only; the dashboard has already been updated.
func (p *Poller) Poll(ctx context.Context) error {
	stats, err := p.source.Fetch(ctx)
	if err != nil {
		p.Fail(err)
		return err
	}
	p.Apply(stats)
	return nil
}

// Apply feeds one successful reading through rates, windows, charts and labels
func (p *Poller) Apply(stats Stats) {
	sentSpeed, recvSpeed := p.counters.Update(stats.Network.TotalSent, stats.Network.TotalRecv)

	p.cpu.Push(stats.CPU)
	p.memory.Push(stats.Memory)
	p.sent.Push(sentSpeed)
	p.recv.Push(recvSpeed)

	p.current = Sample{
		CPU:       stats.CPU,
		Memory:    stats.Memory,
		Disk:      stats.Disk,
		SentSpeed: sentSpeed,
		RecvSpeed: recvSpeed,
	}
	p.totals = stats.Network
	p.charts.Update(p.current, p.History())

	p.labels.SetText(CPU_VALUE, FormatPercent(stats.CPU))
	p.labels.SetText(MEM_VALUE, FormatPercent(stats.Memory))
	p.labels.SetText(DISK_VALUE, FormatPercent(stats.Disk))
	p.labels.SetText(SENT_VALUE, FormatSpeed(sentSpeed))
	p.labels.SetText(RECV_VALUE, FormatSpeed(recvSpeed))
	p.labels.SetText(SENT_TOTAL, FormatBytes(stats.Network.TotalSent))
	p.labels.SetText(RECV_TOTAL, FormatBytes(stats.Network.TotalRecv))

	p.lastUpdate = p.now()
	p.lastErr = nil
	p.labels.SetClass(SERVER_STATUS, STATUS_ONLINE_CLASS, true)
	p.labels.SetText(LAST_UPDATE, p.lastUpdate.Format("15:04:05"))

	if p.status != StatusOnline {
		log.Infof("%s is online", p.source.Name())
	}
	p.status = StatusOnline
}

// Fail marks the dashboard offline. Windows and charts keep their last values.
func (p *Poller) Fail(err error) {
	log.Errorf("Failed to fetch stats from %s (%s): %v", p.source.Name(), ErrorKind(err), err)

	p.lastErr = err
	p.labels.SetClass(SERVER_STATUS, STATUS_ONLINE_CLASS, false)
	p.labels.SetText(LAST_UPDATE, StatusOffline.String())
	p.status = StatusOffline
}

// History returns snapshots of every window
func (p *Poller) History() History {
	return History{
		CPU:    p.cpu.Snapshot(),
		Memory: p.memory.Snapshot(),
		Sent:   p.sent.Snapshot(),
		Recv:   p.recv.Snapshot(),
	}
}

func (p *Poller) Status() Status {
	return p.status
}

func (p *Poller) Current() Sample {
	return p.current
}

func (p *Poller) Totals() NetworkTotals {
	return p.totals
}

func (p *Poller) LastUpdate() time.Time {
	return p.lastUpdate
}

func (p *Poller) LastError() error {
	return p.lastErr
}

func (p *Poller) Source() Source {
	return p.source
}

// FormatPercent renders a percentage the way the value labels show it, e.g. "45%" or "45.5%"
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}

// FormatSpeed renders MB/s with two decimals
func FormatSpeed(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64) + " MB/s"
}

// FormatBytes renders a byte total in binary units
func FormatBytes(v float64) string {
	if v <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(v))
}
