/*
Package qsim implements a dense state-vector quantum register
simulator: a numerical engine that maintains the full amplitude vector
of an n-qubit pure quantum state and transforms it under a library of
unitary gates, measurements, and arithmetic macro-operations.

The engine is "pseudo-quantum": it exposes operations a physical
quantum device cannot, such as reading exact amplitude probabilities,
cloning state, and running classically-computed permutation operators
followed by coherent re-amplitude assignment.
*/
package qsim

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"math"
	mrand "math/rand/v2"

	"github.com/theapemachine/qsim/internal/buffers"
	"github.com/theapemachine/qsim/kernel"
)

const maxQubitWidth = 64

// Source is the pluggable uniform-[0,1) random source every register
// draws from for phase randomization and measurement sampling — the
// "random-seed sourcing" the spec treats as a pluggable external
// collaborator (§1), grounded on the teacher's qvalue.go which already
// imports math/rand/v2 for its own collapse sampling.
type Source interface {
	Float64() float64
}

// defaultSource wraps math/rand/v2's PCG generator, seeded from
// crypto/rand at construction.
type defaultSource struct {
	r *mrand.Rand
}

func newDefaultSource() *defaultSource {
	var seed1, seed2 uint64
	var buf [16]byte
	if _, err := rand.Read(buf[:]); err == nil {
		seed1 = binary.LittleEndian.Uint64(buf[0:8])
		seed2 = binary.LittleEndian.Uint64(buf[8:16])
	}
	return &defaultSource{r: mrand.New(mrand.NewPCG(seed1, seed2))}
}

func (s *defaultSource) Float64() float64 {
	return s.r.Float64()
}

// Register is the central entity: an n-qubit pure state represented as
// a dense complex128 amplitude vector, per §3 of the spec.
type Register struct {
	qubitCount  int
	maxQPower   uint64
	runningNorm float64
	rng         Source

	buf *buffers.Manager
	svc *kernel.KernelService
	cfg *Config

	pool *dispatchPoolAdapter

	coherence *coherenceLog
	observers *observerHub
	metrics   *registerMetrics
}

// New constructs an n-qubit register in the all-zeros state |0...0>,
// with the amplitude at index 0 set to a fresh random global phase
// per §3's phase convention.
func New(qubitCount int, cfg *Config) (*Register, error) {
	return newRegister(qubitCount, 0, cfg)
}

// NewWithPermutation constructs an n-qubit register with the amplitude
// at basis index p set to a fresh random global phase, all others
// zero.
func NewWithPermutation(qubitCount int, permutation uint64, cfg *Config) (*Register, error) {
	return newRegister(qubitCount, permutation, cfg)
}

func newRegister(qubitCount int, permutation uint64, cfg *Config) (*Register, error) {
	if qubitCount < 1 || qubitCount > maxQubitWidth {
		return nil, newInvalidArgument("New", errQubitCountOutOfRange)
	}
	if cfg == nil {
		cfg = NewConfig()
	}
	maxQPower := uint64(1) << uint(qubitCount)
	if permutation >= maxQPower {
		return nil, newInvalidArgument("New", errRangeOutOfBounds)
	}

	r := &Register{
		qubitCount:  qubitCount,
		maxQPower:   maxQPower,
		runningNorm: 1.0,
		rng:         newDefaultSource(),
		buf:         buffers.New(qubitCount),
		svc:         kernel.Init(kernel.Options{Platform: cfg.Platform, Device: cfg.Device, AcceleratorEnabled: cfg.AcceleratorEnabled, Workers: cfg.Workers, LaunchTimeout: cfg.KernelLaunchTimeout}),
		cfg:         cfg,
		coherence:   newCoherenceLog(),
		observers:   newObserverHub(),
		metrics:     newRegisterMetrics(),
	}
	r.pool = newDispatchPoolAdapter(cfg.Workers)

	r.buf.State()[permutation] = r.freshPhase()
	return r, nil
}

// Clone returns an independent deep copy of src: amplitudes, qubit
// count, and running norm are copied; the RNG is freshly reseeded, per
// §3's lifecycle clause.
func Clone(src *Register) (*Register, error) {
	if src.buf.Poisoned() {
		return nil, newKernelPoisoned("Clone")
	}

	r := &Register{
		qubitCount:  src.qubitCount,
		maxQPower:   src.maxQPower,
		runningNorm: src.runningNorm,
		rng:         newDefaultSource(),
		buf:         buffers.New(src.qubitCount),
		svc:         src.svc,
		cfg:         src.cfg,
		coherence:   newCoherenceLog(),
		observers:   newObserverHub(),
		metrics:     newRegisterMetrics(),
	}
	r.pool = newDispatchPoolAdapter(src.cfg.Workers)

	copy(r.buf.State(), src.buf.State())
	return r, nil
}

// QubitCount returns the number of qubits this register represents.
func (r *Register) QubitCount() int { return r.qubitCount }

// MaxQPower returns 2^qubit_count, the amplitude vector length.
func (r *Register) MaxQPower() uint64 { return r.maxQPower }

// CloneRawState returns a defensive copy of the raw amplitude vector,
// normalizing first per the normalization invariant on observable
// reads (§3).
func (r *Register) CloneRawState() ([]complex128, error) {
	if err := r.checkPoisoned("CloneRawState"); err != nil {
		return nil, err
	}
	r.normalizeIfNeeded()
	out := make([]complex128, len(r.buf.State()))
	copy(out, r.buf.State())
	return out, nil
}

func (r *Register) checkPoisoned(op string) error {
	if r.buf.Poisoned() {
		return newKernelPoisoned(op)
	}
	return nil
}

// freshPhase draws one e^{i*theta} with theta uniform in [0, 2*pi),
// per §3's phase convention: every state-resetting assignment gets a
// freshly-drawn global phase because unobservable global phases are
// free and are actively randomized.
func (r *Register) freshPhase() complex128 {
	theta := r.rng.Float64() * 2 * math.Pi
	return complex(math.Cos(theta), math.Sin(theta))
}

func (r *Register) normalizeIfNeeded() {
	if math.Abs(r.runningNorm-1.0) <= r.cfg.NormTolerance {
		return
	}
	kernel.Normalize(r.buf.State(), r.runningNorm)
	r.runningNorm = 1.0
}

func (r *Register) updateRunningNorm(ctx context.Context) {
	r.runningNorm = kernel.L2Norm(ctx, r.pool.pool, r.buf.State())
}

func (r *Register) dispatcher(ctx context.Context) kernel.Dispatcher {
	return r.svc.Dispatch(ctx)
}
