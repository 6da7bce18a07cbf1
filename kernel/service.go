/*
Package kernel implements the accelerator kernel service (component
4.2): a process-wide singleton that owns a catalogue of numerical
kernels (apply2x2, rol, ror, add, sub, addbcd, subbcd, addc, subc) and
a uniform Dispatcher interface over a CPU reference implementation and
an accelerator stub, guarded by a circuit breaker, a resource governor,
and a host-fallback rate limiter.
*/
package kernel

import (
	"context"
	"sync"
	"time"

	"github.com/theapemachine/errnie"
)

// KernelService is the process-wide singleton described by §4.2/§5:
// read-only after one-time initialization, serialized access to its
// effective "command queue" (here, just the accelerator breaker's
// admission decision).
type KernelService struct {
	mu sync.Mutex

	cpu         *cpuDispatcher
	accelerator *acceleratorDispatcher

	breaker  *CircuitBreaker
	limiter  *RateLimiter
	governor *ResourceGovernor
	retry    *RetryPolicy
	metrics  *KernelMetrics

	// launchTimeout bounds one accelerator dispatch attempt; an
	// attempt that runs longer is treated as a failure the same way a
	// forced failure is, per §4.2a. Zero means unbounded.
	launchTimeout time.Duration

	initialized bool
}

var (
	instance     *KernelService
	instanceOnce sync.Once
)

// Options configure a KernelService at construction.
type Options struct {
	Platform, Device   int
	AcceleratorEnabled bool
	Workers            int

	// LaunchTimeout bounds one accelerator dispatch attempt; threaded
	// from Config.KernelLaunchTimeout. Zero means unbounded.
	LaunchTimeout time.Duration
}

// Init constructs (or, on any call after the first, returns) the
// process-wide KernelService. Every call after the first is a no-op
// that logs that the request was ignored, whatever its options; the
// options are not compared with those of the first call. Realized
// with sync.Once plus a logged short-circuit on subsequent calls.
func Init(opts Options) *KernelService {
	first := false
	instanceOnce.Do(func() {
		first = true
		instance = newService(opts)
	})
	if !first {
		errnie.Info("kernel service already initialized; ignoring re-initialization request")
	}
	return instance
}

// Instance returns the process-wide KernelService, lazily initializing
// it with defaults if Init was never called.
func Instance() *KernelService {
	instanceOnce.Do(func() {
		instance = newService(Options{})
	})
	return instance
}

func newService(opts Options) *KernelService {
	workers := opts.Workers
	if workers < 1 {
		workers = defaultWorkers()
	}

	svc := &KernelService{
		cpu:           newCPUDispatcher(workers),
		breaker:       NewCircuitBreaker(3, 5*time.Second, 1),
		limiter:       NewRateLimiter(workers*4, 10*time.Millisecond),
		governor:      NewResourceGovernor(0.9, 0.9, time.Second),
		retry:         DefaultRetryPolicy(),
		metrics:       NewMetrics(),
		launchTimeout: opts.LaunchTimeout,
	}

	if opts.AcceleratorEnabled {
		acc, err := newAcceleratorDispatcher(opts.Platform, opts.Device, true, workers)
		if err == nil {
			svc.accelerator = acc
		} else {
			errnie.Info("accelerator dispatcher unavailable, using CPU kernel reference implementation only")
		}
	}

	svc.initialized = true
	return svc
}

// Dispatch selects a Dispatcher for one kernel launch: the
// accelerator path if configured, the breaker is closed/half-open, and
// the resource governor does not object; the CPU path otherwise. On an
// accelerator failure it records the failure, retries once per
// svc.retry, then falls back to the CPU dispatcher.
func (s *KernelService) Dispatch(ctx context.Context) Dispatcher {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accelerator == nil {
		return s.cpuFallback()
	}

	s.breaker.Observe(s.metrics)
	s.governor.Observe(s.metrics)

	if s.breaker.Limit() || s.governor.Limit() {
		s.metrics.RecordDispatch(0, false, false)
		return s.cpuFallback()
	}

	return &guardedDispatcher{svc: s}
}

// launchSucceeds runs body against the accelerator dispatcher and
// reports whether the attempt both avoided a forced failure and
// finished within launchTimeout; a launch that overruns its budget is
// a failure even though body already ran to completion, since this
// stub has no true cancellation path into a remote device.
func (s *KernelService) launchSucceeds(body func(d Dispatcher)) bool {
	if !s.accelerator.succeeds() {
		return false
	}
	attemptStart := time.Now()
	body(s.accelerator)
	if s.launchTimeout > 0 && time.Since(attemptStart) > s.launchTimeout {
		return false
	}
	return true
}

// cpuFallback returns the CPU dispatcher after consulting the host
// fallback throttle: every CPU dispatcher that Dispatch hands out
// draws a token from s.limiter's bucket, and an exhausted bucket is
// logged rather than refused outright, since the CPU kernel is the
// mandatory reference implementation and must never be denied
// entirely (§7). The CPU fallback that guardedDispatcher runs after
// failed accelerator attempts does not go through here and draws no
// token.
func (s *KernelService) cpuFallback() Dispatcher {
	s.limiter.Observe(s.metrics)
	if s.limiter.Limit() {
		errnie.Info("host CPU-fallback throttle exhausted; continuing to serve from the CPU kernel")
	}
	return s.cpu
}

// Metrics returns the service's dispatch telemetry.
func (s *KernelService) Metrics() *KernelMetrics {
	return s.metrics
}

func defaultWorkers() int {
	n := numCPU()
	if n < 1 {
		return 1
	}
	return n
}
