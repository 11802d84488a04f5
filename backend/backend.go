package backend

import (
	"errors"
	"log/slog"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/wgpu/hal"
)

// Backend names.
const (
	BackendGL   = "gl"
	BackendWGPU = "wgpu"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered
	// or its factory could not create it.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNoDevice is returned by backends that need a HAL device when none was given.
	ErrNoDevice = errors.New("backend: no device")
)

// Config is what a backend factory receives when a device is created.
type Config struct {
	// StrictValidation enables committed-resource validation on every
	// pipeline the backend creates.
	StrictValidation bool

	// MutableOverwrite lets shader resource bindings replace bound mutable variables.
	MutableOverwrite bool

	// Logger overrides the package logger for this backend. When nil the
	// backend follows gpubind.SetLogger.
	Logger *slog.Logger

	// SamplerPolicy overrides the backend's immutable sampler policy.
	SamplerPolicy *gpubind.SamplerPolicy

	// Device and Queue are the HAL objects for backends that create GPU
	// objects. Backends that only compute layouts ignore them.
	Device hal.Device
	Queue  hal.Queue
}

// Policy returns the configured sampler policy, or def when none was set.
func (c *Config) Policy(def gpubind.SamplerPolicy) gpubind.SamplerPolicy {
	if c.SamplerPolicy != nil {
		return *c.SamplerPolicy
	}
	return def
}

// Log returns the configured logger or the package logger.
func (c *Config) Log() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return gpubind.Logger()
}

// Option configures a backend when it is opened.
//
// Example:
//
//	b, err := backend.Open(backend.BackendWGPU,
//	    backend.WithHALDevice(dev, queue),
//	    backend.WithStrictValidation(true))
type Option func(*Config)

func defaultConfig() Config {
	return Config{StrictValidation: true}
}

// WithStrictValidation enables or disables committed-resource validation.
func WithStrictValidation(enabled bool) Option {
	return func(c *Config) {
		c.StrictValidation = enabled
	}
}

// WithMutableOverwrite allows bound mutable variables to be replaced.
func WithMutableOverwrite() Option {
	return func(c *Config) {
		c.MutableOverwrite = true
	}
}

// WithLogger gives the backend its own logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = l
	}
}

// WithSamplerPolicy overrides how immutable samplers are matched.
func WithSamplerPolicy(p gpubind.SamplerPolicy) Option {
	return func(c *Config) {
		c.SamplerPolicy = &p
	}
}

// WithHALDevice sets the device and queue used to create GPU objects.
func WithHALDevice(dev hal.Device, queue hal.Queue) Option {
	return func(c *Config) {
		c.Device = dev
		c.Queue = queue
	}
}

// NewConfig applies opts to the default configuration.
func NewConfig(opts ...Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// PipelineOptions translates the configuration into pipeline options.
func (c *Config) PipelineOptions() []gpubind.PipelineOption {
	return []gpubind.PipelineOption{gpubind.WithStrictValidation(c.StrictValidation)}
}

// SRBOptions translates the configuration into shader resource binding options.
func (c *Config) SRBOptions() []gpubind.SRBOption {
	if c.MutableOverwrite {
		return []gpubind.SRBOption{gpubind.WithMutableOverwrite()}
	}
	return nil
}
