package qsim

import (
	"context"
	"math"
)

// Cohere tensors other onto r: the magnitudes of the two state
// vectors' outer product become the new amplitudes, scaled by one
// freshly-drawn global phase, per §4.7. r grows to qubit_count +
// other.qubit_count qubits; other is read-only.
func (r *Register) Cohere(ctx context.Context, other *Register) error {
	if err := r.checkPoisoned("Cohere"); err != nil {
		return err
	}
	if err := other.checkPoisoned("Cohere"); err != nil {
		return err
	}

	r.normalizeIfNeeded()
	other.normalizeIfNeeded()

	nQubitCount := r.qubitCount + other.qubitCount
	nMaxQPower := uint64(1) << uint(nQubitCount)
	startMask := r.maxQPower - 1
	endMask := (nMaxQPower - 1) &^ startMask

	selfState := r.buf.State()
	otherState := other.buf.State()
	phase := r.freshPhase()

	nState := make([]complex128, nMaxQPower)
	for i := range nState {
		a := selfState[uint64(i)&startMask]
		b := otherState[(uint64(i)&endMask)>>uint(r.qubitCount)]
		magA := real(a)*real(a) + imag(a)*imag(a)
		magB := real(b)*real(b) + imag(b)*imag(b)
		nState[i] = phase * complex(math.Sqrt(magA*magB), 0)
	}

	r.qubitCount = nQubitCount
	r.maxQPower = nMaxQPower
	r.buf.Resize(nQubitCount)
	r.buf.Swap(nState)
	r.updateRunningNorm(ctx)
	r.coherence.record("Cohere", r.qubitCount-other.qubitCount, other.qubitCount)
	return nil
}

// Decohere partially traces out the qubit window [start, start+length)
// into dest (which must already be a length-qubit register), keeping
// only the marginal magnitude distributions on both sides — a
// pseudo-quantum operation that destroys cross-term phase information,
// per §4.7. r shrinks to qubit_count - length qubits.
func (r *Register) Decohere(ctx context.Context, start, length int, dest *Register) error {
	if err := r.checkPoisoned("Decohere"); err != nil {
		return err
	}
	if err := checkRange("Decohere", start, length, r.qubitCount); err != nil {
		return err
	}
	if dest.qubitCount != length {
		return newInvalidArgument("Decohere", errRangeOutOfBounds)
	}

	r.normalizeIfNeeded()

	end := start + length
	partPower := uint64(1) << uint(length)
	remainderPower := uint64(1) << uint(r.qubitCount-length)
	mask := (partPower - 1) << uint(start)
	startMask := (uint64(1) << uint(start)) - 1
	endMask := ((uint64(1) << uint(r.qubitCount)) - 1) &^ ((uint64(1) << uint(end)) - 1)

	partStateProb := make([]float64, partPower)
	remainderStateProb := make([]float64, remainderPower)
	state := r.buf.State()
	for i := uint64(0); i < r.maxQPower; i++ {
		a := state[i]
		prob := real(a)*real(a) + imag(a)*imag(a)
		partStateProb[(i&mask)>>uint(start)] += prob
		remainderStateProb[(i&startMask)+((i&endMask)>>uint(length))] += prob
	}

	destPhase := dest.freshPhase()
	destState := make([]complex128, partPower)
	var partTotal float64
	for _, p := range partStateProb {
		partTotal += p
	}
	if partTotal == 0 {
		destState[0] = destPhase
	} else {
		for i, p := range partStateProb {
			destState[i] = complex(math.Sqrt(p/partTotal), 0) * destPhase
		}
	}
	dest.buf.Swap(destState)

	selfPhase := r.freshPhase()
	remState := make([]complex128, remainderPower)
	var remTotal float64
	for _, p := range remainderStateProb {
		remTotal += p
	}
	if remTotal == 0 {
		remState[0] = selfPhase
	} else {
		for i, p := range remainderStateProb {
			remState[i] = complex(math.Sqrt(p/remTotal), 0) * selfPhase
		}
	}

	r.qubitCount -= length
	r.maxQPower = remainderPower
	r.buf.Resize(r.qubitCount)
	r.buf.Swap(remState)

	r.updateRunningNorm(ctx)
	dest.updateRunningNorm(ctx)
	r.coherence.record("Decohere", r.qubitCount, length)
	return nil
}

// Dispose partially traces out the qubit window [start, start+length)
// and discards it, keeping only r's marginal distribution, per §4.7.
func (r *Register) Dispose(ctx context.Context, start, length int) error {
	if err := r.checkPoisoned("Dispose"); err != nil {
		return err
	}
	if err := checkRange("Dispose", start, length, r.qubitCount); err != nil {
		return err
	}

	r.normalizeIfNeeded()

	end := start + length
	remainderPower := uint64(1) << uint(r.qubitCount-length)
	startMask := (uint64(1) << uint(start)) - 1
	endMask := ((uint64(1) << uint(r.qubitCount)) - 1) &^ ((uint64(1) << uint(end)) - 1)

	remainderStateProb := make([]float64, remainderPower)
	state := r.buf.State()
	for i := uint64(0); i < r.maxQPower; i++ {
		a := state[i]
		prob := real(a)*real(a) + imag(a)*imag(a)
		remainderStateProb[(i&startMask)+((i&endMask)>>uint(length))] += prob
	}

	phase := r.freshPhase()
	remState := make([]complex128, remainderPower)
	var total float64
	for _, p := range remainderStateProb {
		total += p
	}
	if total == 0 {
		remState[0] = phase
	} else {
		for i, p := range remainderStateProb {
			remState[i] = complex(math.Sqrt(p/total), 0) * phase
		}
	}

	r.qubitCount -= length
	r.maxQPower = remainderPower
	r.buf.Resize(r.qubitCount)
	r.buf.Swap(remState)

	r.updateRunningNorm(ctx)
	r.coherence.record("Dispose", r.qubitCount, length)
	return nil
}
