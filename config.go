package qsim

import "time"

// Config carries the environment the kernel service needs at
// construction plus the dispatch/arithmetic tolerances a register
// consults on every operation. Modeled on the teacher's config.go,
// extended with functional options in the style of the teacher's
// JobOption — the teacher's Config has a single field, this one has
// several, so the options pattern replaces direct struct-literal
// construction.
type Config struct {
	// Platform, Device select the accelerator backend at kernel
	// service initialization; default (0, 0) per spec.md §6.
	Platform, Device int
	// AcceleratorEnabled gates whether the kernel service even
	// attempts to build an accelerator dispatcher; false by default
	// since device discovery is out of scope per spec.md §1.
	AcceleratorEnabled bool

	// Workers is the dispatch pool size; defaults to
	// runtime.NumCPU() when zero.
	Workers int

	// KernelLaunchTimeout bounds one dispatch attempt before the
	// service treats it as a failure and retries/falls back.
	KernelLaunchTimeout time.Duration

	// NormTolerance is the acceptable drift of running_norm from 1.0
	// before a NumericWarning triggers a silent renormalization.
	NormTolerance float64
}

// Option configures a Config, mirroring the teacher's JobOption
// pattern (job.go).
type Option func(*Config)

// NewConfig returns a Config with the spec's stated defaults,
// overridable via Option.
func NewConfig(opts ...Option) *Config {
	c := &Config{
		Platform:            0,
		Device:              0,
		AcceleratorEnabled:  false,
		Workers:             0,
		KernelLaunchTimeout: 5 * time.Second,
		NormTolerance:       1e-9,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithAccelerator configures the accelerator platform/device pair and
// enables the accelerator dispatch path.
func WithAccelerator(platform, device int) Option {
	return func(c *Config) {
		c.Platform = platform
		c.Device = device
		c.AcceleratorEnabled = true
	}
}

// WithWorkers overrides the dispatch pool size.
func WithWorkers(workers int) Option {
	return func(c *Config) {
		c.Workers = workers
	}
}

// WithKernelLaunchTimeout overrides the kernel-launch timeout.
func WithKernelLaunchTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.KernelLaunchTimeout = d
	}
}

// WithNormTolerance overrides the acceptable running-norm drift.
func WithNormTolerance(tol float64) Option {
	return func(c *Config) {
		c.NormTolerance = tol
	}
}
