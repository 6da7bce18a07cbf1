package qsim

import (
	"runtime"

	"github.com/theapemachine/qsim/dispatch"
)

// dispatchPoolAdapter owns the fork-join worker pool a register uses
// for its own reductions (L2Norm) independently of whatever pool the
// kernel service's CPU dispatcher holds internally.
type dispatchPoolAdapter struct {
	pool *dispatch.Pool
}

func newDispatchPoolAdapter(workers int) *dispatchPoolAdapter {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &dispatchPoolAdapter{pool: dispatch.New(workers)}
}
