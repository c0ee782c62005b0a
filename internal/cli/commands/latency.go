package commands

import (
	"slices"
	"sync"
	"time"
)

// DefaultLatencyWindow is the number of job durations a LatencyTracker keeps.
const DefaultLatencyWindow = 1000

// LatencyTracker keeps the most recent job durations in a ring buffer and
// reports percentiles over them. It is safe for concurrent use.
type LatencyTracker struct {
	mu      sync.Mutex
	samples []time.Duration
	next    int   // next write position
	count   int64 // total samples recorded
}

// NewLatencyTracker creates a tracker over the last window samples.
func NewLatencyTracker(window int) *LatencyTracker {
	if window <= 0 {
		window = DefaultLatencyWindow
	}
	return &LatencyTracker{samples: make([]time.Duration, window)}
}

// Record adds one duration.
func (t *LatencyTracker) Record(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.samples[t.next] = d
	t.next = (t.next + 1) % len(t.samples)
	t.count++
}

// LatencyStats is a snapshot of a LatencyTracker.
type LatencyStats struct {
	Count int64         `json:"count"`
	Mean  time.Duration `json:"mean_ns"`
	P50   time.Duration `json:"p50_ns"`
	P99   time.Duration `json:"p99_ns"`
	Max   time.Duration `json:"max_ns"`
}

// TailRatio returns P99/P50, 1 when there is no data.
func (s LatencyStats) TailRatio() float64 {
	if s.P50 <= 0 {
		return 1
	}
	return float64(s.P99) / float64(s.P50)
}

// Stats returns percentiles over the retained window.
func (t *LatencyTracker) Stats() LatencyStats {
	t.mu.Lock()
	n := int(min(t.count, int64(len(t.samples))))
	sorted := slices.Clone(t.samples[:n])
	count := t.count
	t.mu.Unlock()

	s := LatencyStats{Count: count}
	if n == 0 {
		return s
	}
	slices.Sort(sorted)

	var sum time.Duration
	for _, d := range sorted {
		sum += d
	}
	s.Mean = sum / time.Duration(n)
	s.P50 = percentile(sorted, 0.50)
	s.P99 = percentile(sorted, 0.99)
	s.Max = sorted[n-1]
	return s
}

// percentile reads the nearest-rank value below p from sorted samples.
func percentile(sorted []time.Duration, p float64) time.Duration {
	i := int(float64(len(sorted)-1) * p)
	return sorted[max(0, min(i, len(sorted)-1))]
}
