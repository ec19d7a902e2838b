package observability

import (
	"context"
	"log/slog"
	"math"
	"runtime"
	"runtime/debug"
	"time"
)

// MemoryMonitor samples heap usage against GOMEMLIMIT (set by automemlimit
// from the container limit) and calls onPressure while usage is above
// threshold.
type MemoryMonitor struct {
	threshold  float64
	interval   time.Duration
	onPressure func(ratio float64)

	// overridable in tests
	readStats func(*runtime.MemStats)
	limit     func() int64
}

// NewMemoryMonitor creates a monitor polling every interval. threshold is a
// fraction of the memory limit, e.g. 0.8.
func NewMemoryMonitor(threshold float64, interval time.Duration, onPressure func(ratio float64)) *MemoryMonitor {
	return &MemoryMonitor{
		threshold:  threshold,
		interval:   interval,
		onPressure: onPressure,
		readStats:  runtime.ReadMemStats,
		limit:      func() int64 { return debug.SetMemoryLimit(-1) },
	}
}

// Usage returns current usage as a fraction of the memory limit. ok is false
// when no limit is set.
func (m *MemoryMonitor) Usage() (ratio float64, ok bool) {
	limit := m.limit()
	if limit <= 0 || limit == math.MaxInt64 {
		return 0, false
	}
	var stats runtime.MemStats
	m.readStats(&stats)
	return float64(stats.Sys-stats.HeapReleased) / float64(limit), true
}

// Run polls until ctx is done.
func (m *MemoryMonitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ratio, ok := m.Usage()
			if !ok || ratio <= m.threshold {
				continue
			}
			slog.Warn("memory pressure detected", "usage_ratio", ratio, "threshold", m.threshold)
			if m.onPressure != nil {
				m.onPressure(ratio)
			}
		}
	}
}
