package kernel

import (
	"math"
	"time"
)

// RetryPolicy bounds one retry of a failed accelerator dispatch before
// the service falls back to the CPU kernel, grounded on the teacher's
// retry.go.
type RetryPolicy struct {
	MaxAttempts int
	Strategy    RetryStrategy
}

// RetryStrategy computes the delay before the next attempt.
type RetryStrategy interface {
	NextDelay(attempt int) time.Duration
}

// ExponentialBackoff doubles the delay on each attempt.
type ExponentialBackoff struct {
	Initial time.Duration
}

func (eb *ExponentialBackoff) NextDelay(attempt int) time.Duration {
	return eb.Initial * time.Duration(math.Pow(2, float64(attempt-1)))
}

// DefaultRetryPolicy is one bounded retry with a short initial
// backoff, matching SPEC_FULL §2's "one bounded retry of a failed
// accelerator dispatch before falling back to the CPU kernel".
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 2,
		Strategy:    &ExponentialBackoff{Initial: 10 * time.Millisecond},
	}
}
