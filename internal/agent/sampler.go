package agent

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/net"

	stattop "github.com/jondoveston/stattop/internal"
)

// Sampler reads the current host stats
type Sampler interface {
	Sample(ctx context.Context) (stattop.Stats, error)
}

// HostSampler samples the local host with gopsutil. It is safe for concurrent use.
// CPU usage is measured against the sampler's own previous reading, so separate
// samplers do not shorten each other's interval.
type HostSampler struct {
	mu       sync.Mutex
	diskPath string
	baseline cpuBaseline
}

func NewHostSampler(diskPath string) *HostSampler {
	if diskPath == "" {
		diskPath = "/"
	}
	return &HostSampler{diskPath: diskPath}
}

// Sample returns cpu usage since the previous call (since boot on the first call),
// memory and disk usage of diskPath in percent, and cumulative network totals over
// all interfaces
func (h *HostSampler) Sample(ctx context.Context) (stattop.Stats, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// false = aggregated over all cpus
	times, err := cpu.TimesWithContext(ctx, false)
	if err != nil {
		return stattop.Stats{}, fmt.Errorf("error getting CPU usage: %w", err)
	}
	if len(times) == 0 {
		return stattop.Stats{}, fmt.Errorf("error getting CPU usage: no readings")
	}
	cpuUsage := h.baseline.update(times[0])

	memUsage, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return stattop.Stats{}, fmt.Errorf("error getting memory usage: %w", err)
	}

	diskUsage, err := disk.UsageWithContext(ctx, h.diskPath)
	if err != nil {
		return stattop.Stats{}, fmt.Errorf("error getting disk usage: %w", err)
	}

	// false = aggregated over all interfaces
	netStats, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return stattop.Stats{}, fmt.Errorf("error getting network usage: %w", err)
	}
	if len(netStats) == 0 {
		return stattop.Stats{}, fmt.Errorf("error getting network usage: no interfaces")
	}

	return stattop.Stats{
		CPU:    cpuUsage,
		Memory: memUsage.UsedPercent,
		Disk:   diskUsage.UsedPercent,
		Network: stattop.NetworkTotals{
			TotalSent: float64(netStats[0].BytesSent),
			TotalRecv: float64(netStats[0].BytesRecv),
		},
	}, nil
}

// cpuBaseline holds the busy and total cpu seconds of the previous reading
type cpuBaseline struct {
	busy  float64
	total float64
}

// update returns the busy share of cpu time since the previous reading and makes t
// the new baseline. Guest time is already counted in user time.
func (b *cpuBaseline) update(t cpu.TimesStat) float64 {
	total := t.User + t.System + t.Idle + t.Nice + t.Iowait + t.Irq + t.Softirq + t.Steal
	busy := total - t.Idle - t.Iowait

	deltaBusy := busy - b.busy
	deltaTotal := total - b.total
	b.busy = busy
	b.total = total

	// counters went backwards or did not move
	if deltaTotal <= 0 || deltaBusy < 0 {
		return 0
	}
	return math.Min(100, 100*deltaBusy/deltaTotal)
}
