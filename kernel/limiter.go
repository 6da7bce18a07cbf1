package kernel

import (
	"sync"
	"time"
)

// RateLimiter is a process-wide token bucket over CPU dispatches: each
// call to Limit draws one token and tokens refill over time. It counts
// a rate, not concurrent operations, and KernelService only logs an
// empty bucket; it does not refuse or delay the dispatch. Grounded
// directly on the teacher's ratelimiter.go token-bucket algorithm;
// renamed into the host-fallback-throttle domain.
type RateLimiter struct {
	tokens     int
	maxTokens  int
	refillRate time.Duration
	lastRefill time.Time
	mu         sync.Mutex
	metrics    *KernelMetrics
}

// NewRateLimiter constructs a token bucket with maxTokens burst
// capacity, replenished one token every refillRate.
func NewRateLimiter(maxTokens int, refillRate time.Duration) *RateLimiter {
	now := time.Now()
	return &RateLimiter{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		lastRefill: now.Add(-refillRate),
	}
}

func (rl *RateLimiter) Observe(metrics *KernelMetrics) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.metrics = metrics
}

// Limit consumes a token if one is available. Returns true ("limit
// this operation") when the bucket is empty.
func (rl *RateLimiter) Limit() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()
	if rl.tokens > 0 {
		rl.tokens--
		return false
	}
	return true
}

func (rl *RateLimiter) Renormalize() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.refill()
}

func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsedNs := now.Sub(rl.lastRefill).Nanoseconds()
	refillRateNs := rl.refillRate.Nanoseconds()

	tokensToAdd := (elapsedNs + (refillRateNs / 2)) / refillRateNs
	if tokensToAdd > 0 {
		rl.tokens = minInt(rl.maxTokens, rl.tokens+int(tokensToAdd))
		rl.lastRefill = rl.lastRefill.Add(time.Duration(tokensToAdd) * rl.refillRate)
	}
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
