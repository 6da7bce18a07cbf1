package qsim

import (
	"sync"
	"time"
)

// CoherenceEvent records one Cohere/Decohere/Dispose transition: the
// operation name, the qubit counts on each side, and when it
// happened. Purely informational — nothing in the engine replays or
// reacts to this ledger, unlike the teacher's entanglement.go where
// StateChange entries are replayed to late-joining jobs.
type CoherenceEvent struct {
	Timestamp  time.Time
	Op         string
	LeftWidth  int
	RightWidth int
	Sequence   uint64
}

// coherenceLog is a register's append-only history of
// Cohere/Decohere/Dispose calls, adapted from entanglement.go's
// stateLedger with the replay-on-join machinery stripped out since a
// register has no concept of late-joining consumers.
type coherenceLog struct {
	mu       sync.RWMutex
	events   []CoherenceEvent
	sequence uint64
}

func newCoherenceLog() *coherenceLog {
	return &coherenceLog{}
}

func (c *coherenceLog) record(op string, leftWidth, rightWidth int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sequence++
	c.events = append(c.events, CoherenceEvent{
		Timestamp:  time.Now(),
		Op:         op,
		LeftWidth:  leftWidth,
		RightWidth: rightWidth,
		Sequence:   c.sequence,
	})
}

// Events returns a defensive copy of the recorded coherence history.
func (c *coherenceLog) Events() []CoherenceEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]CoherenceEvent, len(c.events))
	copy(out, c.events)
	return out
}
