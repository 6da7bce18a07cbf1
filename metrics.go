package qsim

import (
	"sort"
	"sync"
	"time"
)

// registerMetrics tracks per-register operation counts and latency, a
// trimmed adaptation of the teacher's metrics.go with the job-queue,
// circuit-breaker, and rate-limiter fields dropped since those now
// live in kernel.KernelMetrics; only the percentile-latency
// bookkeeping idiom survives, applied to gate/measurement/arithmetic
// dispatch instead of job execution.
type registerMetrics struct {
	mu sync.RWMutex

	OpCount       map[string]int64
	TotalOpTime   time.Duration
	AverageOpTime time.Duration
	P95OpTime     time.Duration

	latencyWindows []time.Duration
	windowSize     int
}

func newRegisterMetrics() *registerMetrics {
	return &registerMetrics{
		OpCount:        make(map[string]int64),
		latencyWindows: make([]time.Duration, 0, 1000),
		windowSize:     1000,
	}
}

func (m *registerMetrics) record(op string, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.OpCount[op]++
	m.TotalOpTime += d

	var total int64
	for _, c := range m.OpCount {
		total += c
	}
	m.AverageOpTime = m.TotalOpTime / time.Duration(total)

	m.latencyWindows = append(m.latencyWindows, d)
	if len(m.latencyWindows) > m.windowSize {
		m.latencyWindows = m.latencyWindows[1:]
	}
	m.updateP95()
}

func (m *registerMetrics) updateP95() {
	sorted := make([]time.Duration, len(m.latencyWindows))
	copy(sorted, m.latencyWindows)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	if len(sorted) == 0 {
		return
	}
	idx := int(float64(len(sorted)) * 0.95)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	m.P95OpTime = sorted[idx]
}

// Snapshot returns a point-in-time copy of this register's operation
// counters.
func (m *registerMetrics) Snapshot() map[string]int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]int64, len(m.OpCount))
	for k, v := range m.OpCount {
		out[k] = v
	}
	return out
}

// Metrics returns a snapshot of this register's per-operation
// invocation counts, keyed by operation name. Latency statistics are
// not included.
func (r *Register) Metrics() map[string]int64 {
	return r.metrics.Snapshot()
}
