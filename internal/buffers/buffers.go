/*
Package buffers implements the amplitude buffer manager (component 4.3):
the owner of a register's dense complex amplitude array and its scatter
scratch buffer. The packed-parameter marshalling the design notes (§9)
call for lives in the kernel package's own typed ABI structs
(Apply2x2Params/ScatterParams/CarryParams), not here — a buffer manager
has no reason to duplicate parameter storage a caller already builds
fresh per call.

A Manager is owned exclusively by one Register; nothing outside the
root package should reach into it directly.
*/
package buffers

import "sync"

// Manager owns the dense amplitude array of a register plus the
// scratch buffers used by scatter-style arithmetic kernels.
//
// The register API is single-writer per §5 of the spec, so the
// embedded mutex is defensive rather than load-bearing — guarding a
// shared mutable struct is the teacher's habit in qvalue.go/qspace.go
// even where the call discipline already rules out races, because
// callers of a library should not have to trust an undocumented
// threading contract.
type Manager struct {
	mu sync.RWMutex

	state   []complex128
	scratch []complex128

	poisoned bool
}

// New allocates a Manager sized for qubitCount qubits, i.e. a state
// vector of length 2^qubitCount.
func New(qubitCount int) *Manager {
	m := &Manager{}
	m.Resize(qubitCount)
	return m
}

// Resize reallocates state and scratch to 2^qubitCount, discarding the
// previous contents. The old slices are dropped for the GC to reclaim;
// there is no in-place move because the size, and therefore the
// backing array, always changes shape on resize.
func (m *Manager) Resize(qubitCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	size := uint64(1) << uint(qubitCount)
	m.state = make([]complex128, size)
	m.scratch = make([]complex128, size)
}

// State returns the live amplitude slice for in-place mutation. The
// caller holds the single-writer discipline; Manager does not enforce
// it beyond the mutex already serializing concurrent map-for-write
// calls against a Resize.
func (m *Manager) State() []complex128 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Scratch returns the pre-sized scatter destination buffer. Callers
// must zero it themselves before use if the kernel requires a
// zero-initialized destination (addc/subc do; add/sub/rol/ror do not,
// since every destination index is written exactly once).
func (m *Manager) Scratch() []complex128 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.scratch
}

// Swap replaces the active state vector with newState — the
// move-on-resize semantics the design notes call for, here realized as
// a plain pointer assignment since Go slices already carry a move
// semantics on assignment. When the sizes match, the previous state
// slice becomes the scratch buffer, so a state swapped in from Scratch
// never stays aliased with the next scatter's destination.
func (m *Manager) Swap(newState []complex128) {
	m.mu.Lock()
	defer m.mu.Unlock()
	old := m.state
	m.state = newState
	if len(old) == len(newState) {
		m.scratch = old
	}
}

// ZeroScratch clears the scratch buffer in place, for kernels (addc,
// subc) that scatter-accumulate into a zero-initialized destination.
func (m *Manager) ZeroScratch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.scratch {
		m.scratch[i] = 0
	}
}

// Poison marks the buffer manager as having suffered a kernel-launch
// failure. Every subsequent register method must check Poisoned and
// refuse to touch state.
func (m *Manager) Poison() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.poisoned = true
}

// Poisoned reports whether a prior kernel-launch failure has left the
// buffer in an indeterminate state.
func (m *Manager) Poisoned() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.poisoned
}

// Len returns the current amplitude vector length (2^qubit_count).
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.state)
}
