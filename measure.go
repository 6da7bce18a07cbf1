package qsim

import (
	"context"
	"math"
	"time"
)

// probOfBit returns the sum of |amplitude|^2 over every index with
// bit q set (oneChance) when want is true, or bit q clear
// (zeroChance) when want is false.
func (r *Register) probOfBit(ctx context.Context, q int, want bool) float64 {
	qp := uint64(1) << uint(q)
	state := r.buf.State()
	return r.pool.pool.Reduce(ctx, 0, r.maxQPower, func(i uint64) float64 {
		set := (i & qp) != 0
		if set != want {
			return 0
		}
		a := state[i]
		return real(a)*real(a) + imag(a)*imag(a)
	})
}

// Prob returns the probability that qubit q measures |1>, per §4.5.
func (r *Register) Prob(ctx context.Context, q int) (float64, error) {
	if err := r.checkPoisoned("Prob"); err != nil {
		return 0, err
	}
	if q < 0 || q >= r.qubitCount {
		return 0, newInvalidArgument("Prob", errRangeOutOfBounds)
	}
	r.normalizeIfNeeded()
	return r.probOfBit(ctx, q, true), nil
}

// ProbAll returns |state_vec[permutation]|^2.
func (r *Register) ProbAll(permutation uint64) (float64, error) {
	if err := r.checkPoisoned("ProbAll"); err != nil {
		return 0, err
	}
	if permutation >= r.maxQPower {
		return 0, newInvalidArgument("ProbAll", errRangeOutOfBounds)
	}
	r.normalizeIfNeeded()
	a := r.buf.State()[permutation]
	return real(a)*real(a) + imag(a)*imag(a), nil
}

// ProbArray returns the full probability distribution over basis
// states, one entry per amplitude.
func (r *Register) ProbArray() ([]float64, error) {
	if err := r.checkPoisoned("ProbArray"); err != nil {
		return nil, err
	}
	r.normalizeIfNeeded()
	state := r.buf.State()
	out := make([]float64, len(state))
	for i, a := range state {
		out[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return out, nil
}

// M performs a single-qubit projective measurement on qubit q, per
// §4.5: drawing u, comparing to oneChance, zeroing the opposite
// outcome's amplitudes, and re-randomizing the surviving phases.
func (r *Register) M(ctx context.Context, q int) (bool, error) {
	if err := r.checkPoisoned("M"); err != nil {
		return false, err
	}
	if q < 0 || q >= r.qubitCount {
		return false, newInvalidArgument("M", errRangeOutOfBounds)
	}
	start := time.Now()
	r.normalizeIfNeeded()

	u := r.rng.Float64()
	oneChance := r.probOfBit(ctx, q, true)
	result := u < oneChance

	nrmlzr := 1.0
	if result {
		nrmlzr = math.Sqrt(oneChance)
	} else {
		nrmlzr = math.Sqrt(1 - oneChance)
	}
	if nrmlzr == 0 {
		nrmlzr = 1
	}

	theta := r.rng.Float64() * 2 * math.Pi
	phase := complex(math.Cos(theta), math.Sin(theta)) / complex(nrmlzr, 0)

	qp := uint64(1) << uint(q)
	state := r.buf.State()
	r.pool.pool.Striped(ctx, 0, r.maxQPower, func(i uint64, worker int) {
		set := (i & qp) != 0
		if set == result {
			state[i] = complex(real(state[i]), imag(state[i])) * phase
		} else {
			state[i] = 0
		}
	})

	r.updateRunningNorm(ctx)
	r.observers.notify(MeasurementEvent{Qubits: []int{q}, Outcome: boolToOutcome(result)})
	r.metrics.record("M", time.Since(start))
	return result, nil
}

// MAll performs a full-permutation Bernoulli measurement against the
// basis state permutation, per §4.5.
func (r *Register) MAll(ctx context.Context, permutation uint64) (bool, error) {
	if err := r.checkPoisoned("MAll"); err != nil {
		return false, err
	}
	if permutation >= r.maxQPower {
		return false, newInvalidArgument("MAll", errRangeOutOfBounds)
	}
	start := time.Now()

	u := r.rng.Float64()
	state := r.buf.State()
	toTest := state[permutation]
	oneChance := real(toTest)*real(toTest) + imag(toTest)*imag(toTest)
	result := u < oneChance

	theta := r.rng.Float64() * 2 * math.Pi
	phase := complex(math.Cos(theta), math.Sin(theta))

	if result {
		r.pool.pool.Striped(ctx, 0, r.maxQPower, func(i uint64, worker int) {
			if i == permutation {
				state[i] = phase
			} else {
				state[i] = 0
			}
		})
	} else {
		nrmlzr := math.Sqrt(1 - oneChance)
		if nrmlzr == 0 {
			nrmlzr = 1
		}
		r.pool.pool.Striped(ctx, 0, r.maxQPower, func(i uint64, worker int) {
			if i == permutation {
				state[i] = 0
			} else {
				state[i] = state[i] / complex(nrmlzr, 0)
			}
		})
	}

	r.runningNorm = 1.0
	r.observers.notify(MeasurementEvent{Qubits: allQubits(r.qubitCount), Outcome: permutation})
	r.metrics.record("MAll", time.Since(start))
	return result, nil
}

func boolToOutcome(b bool) uint64 {
	if b {
		return 1
	}
	return 0
}

func allQubits(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}
