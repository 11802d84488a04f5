package backend

import (
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gpubind"
)

// Factory creates a backend for a device.
type Factory func(cfg Config) (gpubind.Backend, error)

var (
	registryMu sync.RWMutex
	backends   = make(map[string]Factory)
	// Priority order for Default (first one that opens wins).
	backendPriority = []string{BackendWGPU, BackendGL}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names, sorted.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Open creates the named backend. Backends without their own logger in
// the configuration follow gpubind.SetLogger until released.
func Open(name string, opts ...Option) (gpubind.Backend, error) {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotAvailable, name)
	}
	return open(name, factory, NewConfig(opts...))
}

func open(name string, factory Factory, cfg Config) (gpubind.Backend, error) {
	b, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrBackendNotAvailable, name, err)
	}
	if b == nil {
		return nil, fmt.Errorf("%w: %s", ErrBackendNotAvailable, name)
	}
	if cfg.Logger == nil {
		gpubind.PropagateLogger(b)
	}
	cfg.Log().Debug("backend: opened", "backend", name)
	return b, nil
}

// Default opens the best available backend based on priority.
// Priority order: wgpu > gl, then any other registered backend by name.
// Backends whose factory fails are skipped.
func Default(opts ...Option) (gpubind.Backend, error) {
	registryMu.RLock()
	order := slices.Clone(backendPriority)
	rest := make([]string, 0, len(backends))
	for name := range backends {
		if !slices.Contains(backendPriority, name) {
			rest = append(rest, name)
		}
	}
	factories := make(map[string]Factory, len(backends))
	for name, f := range backends {
		factories[name] = f
	}
	registryMu.RUnlock()

	slices.Sort(rest)
	order = append(order, rest...)

	cfg := NewConfig(opts...)
	log := cfg.Log()
	for _, name := range order {
		factory, ok := factories[name]
		if !ok {
			continue
		}
		b, err := open(name, factory, cfg)
		if err == nil {
			return b, nil
		}
		log.Debug("backend: skipped", "backend", name, "error", err)
	}
	return nil, ErrBackendNotAvailable
}

// MustDefault returns the default backend or panics.
func MustDefault(opts ...Option) gpubind.Backend {
	b, err := Default(opts...)
	if err != nil {
		panic(err)
	}
	return b
}
