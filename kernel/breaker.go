package kernel

import (
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

// CircuitState mirrors the teacher's circuitbreaker.go three-state
// machine, renamed into the kernel-launch-guard domain.
type CircuitState int

const (
	CircuitClosed CircuitState = iota
	CircuitOpen
	CircuitHalfOpen
)

// CircuitBreaker guards acceleratorDispatcher calls: after maxFailures
// consecutive launch failures it opens and every subsequent call is
// rejected until resetTimeout has elapsed, at which point it goes
// half-open and allows a bounded number of probe attempts.
//
// Grounded directly on circuitbreaker.go's state machine; field names
// and transition logic are kept close to the original since the
// pattern transfers unchanged.
type CircuitBreaker struct {
	mu sync.RWMutex

	maxFailures      int
	resetTimeout     time.Duration
	halfOpenMax      int
	failureCount     int
	state            CircuitState
	openTime         time.Time
	halfOpenAttempts int
	metrics          *KernelMetrics
}

// NewCircuitBreaker constructs a breaker in the closed state.
func NewCircuitBreaker(maxFailures int, resetTimeout time.Duration, halfOpenMax int) *CircuitBreaker {
	return &CircuitBreaker{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		halfOpenMax:  halfOpenMax,
		state:        CircuitClosed,
	}
}

func (cb *CircuitBreaker) Observe(metrics *KernelMetrics) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.metrics = metrics
}

func (cb *CircuitBreaker) Limit() bool {
	return !cb.Allow()
}

func (cb *CircuitBreaker) Renormalize() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == CircuitOpen && time.Since(cb.openTime) > cb.resetTimeout {
		cb.state = CircuitHalfOpen
		cb.halfOpenAttempts = 0
		errnie.Info("kernel circuit breaker renormalized to half-open state")
	}
}

// RecordFailure registers an accelerator dispatch failure and opens
// the breaker once maxFailures is reached.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failureCount++
	if cb.failureCount >= cb.maxFailures {
		switch cb.state {
		case CircuitHalfOpen:
			cb.state = CircuitOpen
			cb.openTime = time.Now()
			errnie.Info("kernel circuit breaker reopened from half-open state")
		case CircuitClosed:
			cb.state = CircuitOpen
			cb.openTime = time.Now()
			errnie.Info("kernel circuit breaker opened after repeated accelerator failures")
		}
	}
}

// RecordSuccess registers a successful accelerator dispatch.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitHalfOpen:
		cb.halfOpenAttempts++
		if cb.halfOpenAttempts >= cb.halfOpenMax {
			cb.state = CircuitClosed
			cb.failureCount = 0
			cb.halfOpenAttempts = 0
		}
	case CircuitClosed:
		cb.failureCount = 0
	}
}

// Allow reports whether an accelerator dispatch attempt should
// proceed given the current circuit state.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return true
	case CircuitOpen:
		if time.Since(cb.openTime) > cb.resetTimeout {
			cb.state = CircuitHalfOpen
			cb.halfOpenAttempts = 0
			return true
		}
		return false
	case CircuitHalfOpen:
		return cb.halfOpenAttempts < cb.halfOpenMax
	default:
		return false
	}
}

// State reports the current circuit state, for diagnostics/tests.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.state
}
