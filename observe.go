package qsim

import "sync"

// MeasurementEvent is broadcast to observers after M/MAll collapses
// the state vector: the qubits measured and an outcome. For M the
// outcome is the measured bit (0 or 1); for MAll it is the permutation
// that was tested, whether or not the test succeeded.
type MeasurementEvent struct {
	Qubits  []int
	Outcome uint64
}

// Observer receives measurement diagnostics. Implementations must not
// block; Notify is called synchronously from the measuring goroutine.
type Observer interface {
	Notify(MeasurementEvent)
}

// observerHub is a nil-safe, no-op-by-default broadcast tap for
// measurement events, adapted from space.go/broadcastgroup.go's
// pub/sub machinery with the value-store and TTL-cleanup goroutine
// stripped: a register has no async job results to buffer, only a
// live fan-out to whatever diagnostics tooling is attached.
type observerHub struct {
	mu        sync.RWMutex
	observers []Observer
}

func newObserverHub() *observerHub {
	return &observerHub{}
}

// Attach registers an observer. Safe to call concurrently with Notify.
func (h *observerHub) Attach(o Observer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.observers = append(h.observers, o)
}

func (h *observerHub) notify(evt MeasurementEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, o := range h.observers {
		o.Notify(evt)
	}
}

// Attach registers an Observer to receive future measurement events
// from this register.
func (r *Register) Attach(o Observer) {
	r.observers.Attach(o)
}
