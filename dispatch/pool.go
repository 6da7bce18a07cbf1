/*
Package dispatch implements the parallel dispatch primitives of
component 4.1: a fixed-size goroutine pool that drains a half-open
integer range [begin, end) through a shared work-stealing cursor.

The driver is a direct translation of original_source/par_for.hpp's
std::atomic<bitCapInt> idx fetch-add loop into goroutines and an
atomic.Uint64, in the same spirit as the teacher's pool.go/worker.go
goroutine-lifecycle management — except here the pool is stateless
compute dispatched fresh per call, not a long-lived job queue.
*/
package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
)

// Pool runs striped, scatter, and reduce bodies over a fixed number of
// worker goroutines. A Pool is stateless and safe to reuse across many
// dispatches; it holds no buffers of its own.
type Pool struct {
	Workers int
}

// New returns a Pool sized to workers goroutines. Callers typically
// pass runtime.NumCPU() per §5 of the spec.
func New(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{Workers: workers}
}

// StripedFunc is the body of a Striped dispatch: executed exactly once
// per index i, in no particular order, by worker goroutine id.
type StripedFunc func(i uint64, worker int)

// Striped runs f exactly once for every i in [begin, end), partitioned
// across p.Workers goroutines via a shared atomic fetch-add cursor —
// work-stealing, not static partitioning, so uneven per-index cost
// does not stall the whole dispatch behind the slowest static shard.
//
// ctx is checked only between a worker's consecutive index fetches,
// never inside a single index's body, matching SPEC_FULL §5's
// cooperative-cancellation granularity.
func (p *Pool) Striped(ctx context.Context, begin, end uint64, f StripedFunc) {
	if begin >= end {
		return
	}
	cursor := atomic.Uint64{}
	cursor.Store(begin)

	var wg sync.WaitGroup
	for w := 0; w < p.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for {
				if ctx != nil {
					select {
					case <-ctx.Done():
						return
					default:
					}
				}
				i := cursor.Add(1) - 1
				if i >= end {
					return
				}
				f(i, worker)
			}
		}(w)
	}
	wg.Wait()
}

// ScatterFunc is the body of a Scatter dispatch: read-only against
// src, writes land on dst at indices the kernel's permutation
// guarantees are disjoint across workers.
type ScatterFunc func(i uint64, worker int, src []complex128, dst []complex128)

// Scatter runs f over [begin, end), reading from src and writing into
// dst. The precondition that dst is pre-zeroed (when the kernel
// requires it) is the caller's responsibility, mirroring §4.1's
// "dst is pre-zeroed" contract for copy bodies.
func (p *Pool) Scatter(ctx context.Context, begin, end uint64, src, dst []complex128, f ScatterFunc) {
	p.Striped(ctx, begin, end, func(i uint64, worker int) {
		f(i, worker, src, dst)
	})
}

// Reduce computes the parallel sum of f(i) over [begin, end) — the
// driver behind the L2-norm reducer (running_norm = sqrt(Reduce(...))
// over |state[i]|^2).
func (p *Pool) Reduce(ctx context.Context, begin, end uint64, f func(i uint64) float64) float64 {
	if begin >= end {
		return 0
	}
	cursor := atomic.Uint64{}
	cursor.Store(begin)

	partials := make([]float64, p.Workers)
	var wg sync.WaitGroup
	for w := 0; w < p.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			var sum float64
			for {
				if ctx != nil {
					select {
					case <-ctx.Done():
						return
					default:
					}
				}
				i := cursor.Add(1) - 1
				if i >= end {
					break
				}
				sum += f(i)
			}
			partials[worker] = sum
		}(w)
	}
	wg.Wait()

	var total float64
	for _, s := range partials {
		total += s
	}
	return total
}

// RegisterBodyFunc is the body of the register-body driver (§4.1):
// rotate a contiguous stride of size startPower within a window
// [k, k+endPower) — used by INC/DEC's three-reversal rotate.
type RegisterBodyFunc func(k uint64, worker int)

// RegisterBody iterates the outer loop over subgroup windows of size
// endPower spaced across [0, maxQPower), invoking f once per window
// start k, fanned out across p.Workers goroutines the same way Striped
// is.
func (p *Pool) RegisterBody(ctx context.Context, maxQPower, endPower uint64, f RegisterBodyFunc) {
	p.Striped(ctx, 0, maxQPower/endPower, func(windowIdx uint64, worker int) {
		f(windowIdx*endPower, worker)
	})
}
