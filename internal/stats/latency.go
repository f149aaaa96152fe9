package stats

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

// Snapshot is a point-in-time aggregate of latency samples.
type Snapshot struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Latency tracks recent call latencies within a rolling window.
type Latency struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
}

func NewLatency(maxAge time.Duration) *Latency {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Latency{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

func (s *Latency) Record(durationMs int64) {
	s.record(durationMs, false)
}

// Observe records the time elapsed since start, flagging the sample as an
// error when err is non-nil.
func (s *Latency) Observe(start time.Time, err error) {
	s.record(time.Since(start).Milliseconds(), err != nil)
}

func (s *Latency) record(durationMs int64, failed bool) {
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

func (s *Latency) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	if len(s.samples) == 0 {
		return Snapshot{}
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	var failed int
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
		if sm.failed {
			failed++
		}
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	return Snapshot{
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

func (s *Latency) pruneLocked(now time.Time) {
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

// Registry groups latency trackers by upstream name.
type Registry struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[string]*Latency
}

func NewRegistry(window time.Duration) *Registry {
	return &Registry{
		window:  window,
		entries: make(map[string]*Latency),
	}
}

// For returns the tracker for name, creating it on first use.
func (r *Registry) For(name string) *Latency {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.entries[name]
	if !ok {
		l = NewLatency(r.window)
		r.entries[name] = l
	}
	return l
}

// Snapshots returns a snapshot of every tracker keyed by name.
func (r *Registry) Snapshots() map[string]Snapshot {
	r.mu.Lock()
	names := make([]string, 0, len(r.entries))
	trackers := make([]*Latency, 0, len(r.entries))
	for name, l := range r.entries {
		names = append(names, name)
		trackers = append(trackers, l)
	}
	r.mu.Unlock()

	out := make(map[string]Snapshot, len(names))
	for i, name := range names {
		out[name] = trackers[i].Snapshot()
	}
	return out
}
