package rank

import (
	"slices"
	"sync"
	"time"
)

// Scoring backends reported by Stats.
const (
	BackendKeyword   = "keyword"
	BackendEmbedding = "embedding"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
	failed     bool
}

// StatsSnapshot is a point-in-time aggregate of one backend's latency samples.
type StatsSnapshot struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Stats tracks recent scoring latencies per backend within a rolling
// window. A nil *Stats discards samples.
type Stats struct {
	mu       sync.Mutex
	backends map[string][]sample
	maxAge   time.Duration
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		backends: make(map[string][]sample),
		maxAge:   maxAge,
	}
}

// Record adds one call's latency for backend; err marks the call failed.
func (s *Stats) Record(backend string, durationMs int64, err error) {
	if s == nil {
		return
	}
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.backends[backend] = append(s.backends[backend], sample{timestamp: now, durationMs: durationMs, failed: err != nil})
}

// Snapshot aggregates each backend that has samples inside the window.
func (s *Stats) Snapshot() map[string]StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	out := make(map[string]StatsSnapshot, len(s.backends))
	for backend, samples := range s.backends {
		out[backend] = aggregate(samples)
	}
	return out
}

// Backend returns the snapshot for a single backend.
func (s *Stats) Backend(name string) StatsSnapshot {
	return s.Snapshot()[name]
}

func aggregate(samples []sample) StatsSnapshot {
	values := make([]int64, 0, len(samples))
	var (
		sum    int64
		failed int
	)
	for _, sm := range samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		if sm.failed {
			failed++
		}
	}
	slices.Sort(values)

	return StatsSnapshot{
		Count:  len(values),
		Errors: failed,
		MinMs:  values[0],
		MaxMs:  values[len(values)-1],
		AvgMs:  float64(sum) / float64(len(values)),
		P50Ms:  percentile(values, 50),
		P95Ms:  percentile(values, 95),
		P99Ms:  percentile(values, 99),
	}
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	for backend, samples := range s.backends {
		samples = slices.DeleteFunc(samples, func(sm sample) bool {
			return sm.timestamp.Before(cutoff)
		})
		if len(samples) == 0 {
			delete(s.backends, backend)
			continue
		}
		s.backends[backend] = samples
	}
}

// percentile interpolates linearly between the two nearest ranks.
func percentile(sorted []int64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return float64(sorted[0])
	case pct >= 100:
		return float64(sorted[len(sorted)-1])
	}

	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return float64(sorted[lower])
	}
	lo, hi := float64(sorted[lower]), float64(sorted[lower+1])
	return lo + (hi-lo)*(index-float64(lower))
}
