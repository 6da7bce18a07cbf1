package kernel

import (
	"context"

	"github.com/theapemachine/qsim/dispatch"
)

// Dispatcher is the uniform interface every kernel backend satisfies:
// one method per catalogued kernel (§4.2). A register marshals its
// packed parameters and calls through this interface without knowing
// which backend actually ran the work.
type Dispatcher interface {
	Apply2x2(ctx context.Context, state []complex128, p Apply2x2Params)
	Rol(ctx context.Context, state, dst []complex128, p ScatterParams)
	Ror(ctx context.Context, state, dst []complex128, p ScatterParams)
	Add(ctx context.Context, state, dst []complex128, p ScatterParams)
	Sub(ctx context.Context, state, dst []complex128, p ScatterParams)
	AddBCD(ctx context.Context, state, dst []complex128, p ScatterParams)
	SubBCD(ctx context.Context, state, dst []complex128, p ScatterParams)
	AddC(ctx context.Context, state, dst []complex128, p CarryParams, phase complex128)
	SubC(ctx context.Context, state, dst []complex128, p CarryParams, phase complex128)
}

// cpuDispatcher is the mandatory host-executed reference
// implementation, always available and used both by default and as
// the fallback when the accelerator breaker is open.
type cpuDispatcher struct {
	pool *dispatch.Pool
}

func newCPUDispatcher(workers int) *cpuDispatcher {
	return &cpuDispatcher{pool: dispatch.New(workers)}
}

func (d *cpuDispatcher) Apply2x2(ctx context.Context, state []complex128, p Apply2x2Params) {
	Apply2x2(ctx, d.pool, state, p)
}
func (d *cpuDispatcher) Rol(ctx context.Context, state, dst []complex128, p ScatterParams) {
	Rol(ctx, d.pool, state, dst, p)
}
func (d *cpuDispatcher) Ror(ctx context.Context, state, dst []complex128, p ScatterParams) {
	Ror(ctx, d.pool, state, dst, p)
}
func (d *cpuDispatcher) Add(ctx context.Context, state, dst []complex128, p ScatterParams) {
	Add(ctx, d.pool, state, dst, p)
}
func (d *cpuDispatcher) Sub(ctx context.Context, state, dst []complex128, p ScatterParams) {
	Sub(ctx, d.pool, state, dst, p)
}
func (d *cpuDispatcher) AddBCD(ctx context.Context, state, dst []complex128, p ScatterParams) {
	AddBCD(ctx, d.pool, state, dst, p)
}
func (d *cpuDispatcher) SubBCD(ctx context.Context, state, dst []complex128, p ScatterParams) {
	SubBCD(ctx, d.pool, state, dst, p)
}
func (d *cpuDispatcher) AddC(ctx context.Context, state, dst []complex128, p CarryParams, phase complex128) {
	AddC(ctx, d.pool, state, dst, p, phase)
}
func (d *cpuDispatcher) SubC(ctx context.Context, state, dst []complex128, p CarryParams, phase complex128) {
	SubC(ctx, d.pool, state, dst, p, phase)
}

// acceleratorDispatcher represents a real accelerator backend. Device
// discovery and program compilation are out of scope per spec.md §1 —
// this implementation's constructor fails with BackendUnavailable
// unless a platform/device pair was supplied via Config, and even then
// it runs the CPU kernel logic internally, since there is no real
// OpenCL/CUDA binding in this module. Grounded on §9's design note
// "recast as a service object explicitly passed to register
// constructors."
type acceleratorDispatcher struct {
	cpuDispatcher
	platform, device int

	// forceFail lets package-internal tests simulate accelerator
	// launch failures without a real device; nil means "always
	// succeeds", the default and only behavior reachable from outside
	// this package.
	forceFail func() bool
}

func (a *acceleratorDispatcher) succeeds() bool {
	if a.forceFail == nil {
		return true
	}
	return !a.forceFail()
}

func newAcceleratorDispatcher(platform, device int, configured bool, workers int) (*acceleratorDispatcher, error) {
	if !configured {
		return nil, &SimError{
			Kind: BackendUnavailable,
			Op:   "NewKernelService",
			Err:  ErrNoAcceleratorConfigured,
		}
	}
	return &acceleratorDispatcher{
		cpuDispatcher: cpuDispatcher{pool: dispatch.New(workers)},
		platform:      platform,
		device:        device,
	}, nil
}
