package refine

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
	failed     bool
}

// StatsSnapshot is a point-in-time aggregate of LLM call samples.
// Latency figures cover successful calls only.
type StatsSnapshot struct {
	Provider string  `json:"provider,omitempty"`
	Count    int     `json:"count"`
	Failures int     `json:"failures"`
	MinMs    int64   `json:"min_ms"`
	MaxMs    int64   `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
}

// LLMStats tracks recent LLM calls within a rolling window.
type LLMStats struct {
	mu       sync.Mutex
	provider string
	samples  []sample
	maxAge   time.Duration
}

func NewLLMStats(provider string, maxAge time.Duration) *LLMStats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &LLMStats{
		provider: provider,
		samples:  make([]sample, 0, 256),
		maxAge:   maxAge,
	}
}

// Record adds a successful call.
func (s *LLMStats) Record(durationMs int64) {
	s.add(durationMs, false)
}

// RecordFailure adds a call that returned an error.
func (s *LLMStats) RecordFailure(durationMs int64) {
	s.add(durationMs, true)
}

func (s *LLMStats) add(durationMs int64, failed bool) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{
		timestamp:  now,
		durationMs: durationMs,
		failed:     failed,
	})
}

func (s *LLMStats) Snapshot() StatsSnapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := StatsSnapshot{Provider: s.provider}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		if sm.failed {
			snap.Failures++
			continue
		}
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	if len(values) == 0 {
		return snap
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *LLMStats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
