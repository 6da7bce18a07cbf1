package kernel

import (
	"context"
	"time"
)

// guardedDispatcher wraps the accelerator dispatcher with the circuit
// breaker and retry policy: each call attempts the accelerator path,
// retries once on failure per svc.retry, and falls back to the CPU
// dispatcher rather than surfacing an error to the caller — a
// kernel-launch failure is swallowed at this layer exactly because the
// spec treats launch failure as something the service absorbs via
// fallback, not something a register sees (see SPEC_FULL §7's
// distinction between that and a genuinely poisoned buffer).
type guardedDispatcher struct {
	svc *KernelService
}

// attempt runs body against the accelerator dispatcher, retrying once
// on failure, recording the outcome on the breaker and metrics, and
// reporting whether the accelerator path succeeded. An attempt that
// runs past svc.launchTimeout counts as a failure exactly like a
// forced one, per Config.KernelLaunchTimeout's contract.
func (g *guardedDispatcher) attempt(body func(d Dispatcher)) bool {
	svc := g.svc
	start := time.Now()

	for attemptN := 1; attemptN <= svc.retry.MaxAttempts; attemptN++ {
		if attemptN > 1 {
			time.Sleep(svc.retry.Strategy.NextDelay(attemptN))
		}
		if svc.launchSucceeds(body) {
			svc.breaker.RecordSuccess()
			svc.metrics.RecordDispatch(time.Since(start), true, false)
			return true
		}
		svc.breaker.RecordFailure()
	}
	svc.metrics.RecordDispatch(time.Since(start), false, true)
	return false
}

func (g *guardedDispatcher) Apply2x2(ctx context.Context, state []complex128, p Apply2x2Params) {
	if !g.attempt(func(d Dispatcher) { d.Apply2x2(ctx, state, p) }) {
		g.svc.cpu.Apply2x2(ctx, state, p)
	}
}
func (g *guardedDispatcher) Rol(ctx context.Context, state, dst []complex128, p ScatterParams) {
	if !g.attempt(func(d Dispatcher) { d.Rol(ctx, state, dst, p) }) {
		g.svc.cpu.Rol(ctx, state, dst, p)
	}
}
func (g *guardedDispatcher) Ror(ctx context.Context, state, dst []complex128, p ScatterParams) {
	if !g.attempt(func(d Dispatcher) { d.Ror(ctx, state, dst, p) }) {
		g.svc.cpu.Ror(ctx, state, dst, p)
	}
}
func (g *guardedDispatcher) Add(ctx context.Context, state, dst []complex128, p ScatterParams) {
	if !g.attempt(func(d Dispatcher) { d.Add(ctx, state, dst, p) }) {
		g.svc.cpu.Add(ctx, state, dst, p)
	}
}
func (g *guardedDispatcher) Sub(ctx context.Context, state, dst []complex128, p ScatterParams) {
	if !g.attempt(func(d Dispatcher) { d.Sub(ctx, state, dst, p) }) {
		g.svc.cpu.Sub(ctx, state, dst, p)
	}
}
func (g *guardedDispatcher) AddBCD(ctx context.Context, state, dst []complex128, p ScatterParams) {
	if !g.attempt(func(d Dispatcher) { d.AddBCD(ctx, state, dst, p) }) {
		g.svc.cpu.AddBCD(ctx, state, dst, p)
	}
}
func (g *guardedDispatcher) SubBCD(ctx context.Context, state, dst []complex128, p ScatterParams) {
	if !g.attempt(func(d Dispatcher) { d.SubBCD(ctx, state, dst, p) }) {
		g.svc.cpu.SubBCD(ctx, state, dst, p)
	}
}
func (g *guardedDispatcher) AddC(ctx context.Context, state, dst []complex128, p CarryParams, phase complex128) {
	if !g.attempt(func(d Dispatcher) { d.AddC(ctx, state, dst, p, phase) }) {
		g.svc.cpu.AddC(ctx, state, dst, p, phase)
	}
}
func (g *guardedDispatcher) SubC(ctx context.Context, state, dst []complex128, p CarryParams, phase complex128) {
	if !g.attempt(func(d Dispatcher) { d.SubC(ctx, state, dst, p, phase) }) {
		g.svc.cpu.SubC(ctx, state, dst, p, phase)
	}
}
