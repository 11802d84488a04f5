package wgpu

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/gpubind/backend"
)

// ErrNoHALProvider is returned when a device provider does not expose HAL objects.
var ErrNoHALProvider = errors.New("wgpu: provider does not expose HAL types")

// init registers the wgpu backend on package import. The backend needs a
// HAL device, so opening it without WithHALDevice fails and Default moves
// on to the next backend.
func init() {
	backend.Register(backend.BackendWGPU, func(cfg backend.Config) (gpubind.Backend, error) {
		b, err := New(cfg)
		if err != nil {
			return nil, err
		}
		return b, nil
	})
}

// groupEntry is the layout of one signature.
type groupEntry struct {
	layout *GroupLayout
	bgl    hal.BindGroupLayout
}

// Backend binds resources through WebGPU bind groups. Each signature
// becomes one bind group layout and its binding index is the group index.
// Backend is safe for concurrent use.
type Backend struct {
	cfg    backend.Config
	device hal.Device
	queue  hal.Queue
	policy gpubind.SamplerPolicy
	logger atomic.Pointer[slog.Logger]

	cache *LayoutCache

	mu     sync.Mutex
	groups map[*gpubind.Signature]groupEntry
}

// New creates a wgpu backend on cfg.Device.
func New(cfg backend.Config) (*Backend, error) {
	if cfg.Device == nil {
		return nil, backend.ErrNoDevice
	}
	b := &Backend{
		cfg:    cfg,
		device: cfg.Device,
		queue:  cfg.Queue,
		policy: cfg.Policy(gpubind.SamplerPolicyCombinedSuffix),
		cache:  NewLayoutCache(),
		groups: make(map[*gpubind.Signature]groupEntry),
	}
	b.logger.Store(cfg.Log())
	return b, nil
}

// NewFromProvider creates a backend on the HAL device of a gpucontext
// provider. The provider must also implement HalDevice and HalQueue.
func NewFromProvider(provider gpucontext.DeviceProvider, opts ...backend.Option) (*Backend, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHALProvider
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHALProvider)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHALProvider)
	}
	cfg := backend.NewConfig(append(opts, backend.WithHALDevice(device, queue))...)
	return New(cfg)
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendWGPU }

// SamplerPolicy returns the immutable sampler policy, CombinedSuffix unless overridden.
func (b *Backend) SamplerPolicy() gpubind.SamplerPolicy { return b.policy }

// Device returns the HAL device.
func (b *Backend) Device() hal.Device { return b.device }

// Queue returns the HAL queue, which may be nil.
func (b *Backend) Queue() hal.Queue { return b.queue }

// LayoutCache returns the shared bind group layout cache.
func (b *Backend) LayoutCache() *LayoutCache { return b.cache }

// SetLogger replaces the backend logger.
func (b *Backend) SetLogger(l *slog.Logger) {
	if l != nil {
		b.logger.Store(l)
	}
}

func (b *Backend) log() *slog.Logger { return b.logger.Load() }

func (b *Backend) signatureOptions() []gpubind.SignatureOption {
	return []gpubind.SignatureOption{
		gpubind.WithBackend(backend.BackendWGPU),
		gpubind.WithSamplerPolicy(b.policy),
		gpubind.WithSamplerFactory(samplerFactory{device: b.device}),
		gpubind.WithReleaseHook(b.ForgetSignature),
	}
}

// BuildSignature creates a signature, its immutable samplers and its bind
// group layout.
func (b *Backend) BuildSignature(desc gpubind.SignatureDesc) (*gpubind.Signature, error) {
	sig, err := gpubind.NewSignature(desc, b.signatureOptions()...)
	if err != nil {
		return nil, err
	}
	return b.register(sig)
}

// BuildImplicitSignature derives a signature from reflected shaders.
func (b *Backend) BuildImplicitSignature(name string, layout gpubind.LayoutDesc, shaders []*gpubind.Shader) (*gpubind.Signature, error) {
	sig, err := gpubind.BuildImplicitSignature(name, layout, shaders, b.signatureOptions()...)
	if err != nil {
		return nil, err
	}
	return b.register(sig)
}

func (b *Backend) register(sig *gpubind.Signature) (*gpubind.Signature, error) {
	g, _, err := b.layoutFor(sig)
	if err != nil {
		sig.Release()
		return nil, err
	}
	b.log().Debug("wgpu: signature built",
		"signature", sig.Name(),
		"group", sig.BindingIndex(),
		"entries", len(g.Entries))
	return sig, nil
}

// layoutFor returns the bind group layout of sig, creating it on first use.
// Signatures built by other means are accepted too.
func (b *Backend) layoutFor(sig *gpubind.Signature) (*GroupLayout, hal.BindGroupLayout, error) {
	b.mu.Lock()
	ge, ok := b.groups[sig]
	b.mu.Unlock()
	if ok {
		return ge.layout, ge.bgl, nil
	}

	g, err := BuildGroupLayout(sig)
	if err != nil {
		return nil, nil, err
	}
	label := "empty"
	if sig != nil {
		label = sig.Name()
	}
	bgl, err := b.cache.GetOrCreate(b.device, label, g)
	if err != nil {
		return nil, nil, fmt.Errorf("wgpu: bind group layout %q: %w", label, err)
	}

	b.mu.Lock()
	b.groups[sig] = groupEntry{layout: g, bgl: bgl}
	b.mu.Unlock()
	return g, bgl, nil
}

// ForgetSignature drops the layout memoized for sig. Signatures built by
// the backend are forgotten on their last Release; others must be
// forgotten by the caller. The bind group layout stays in the LayoutCache,
// where other signatures may share it.
func (b *Backend) ForgetSignature(sig *gpubind.Signature) {
	b.mu.Lock()
	delete(b.groups, sig)
	b.mu.Unlock()
}

// Signatures returns the number of signatures with a memoized layout.
func (b *Backend) Signatures() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.groups)
}

// GroupLayout returns the bind group layout computed for sig.
func (b *Backend) GroupLayout(sig *gpubind.Signature) (*GroupLayout, error) {
	g, _, err := b.layoutFor(sig)
	return g, err
}

// NewPipeline resolves shaders against layout with the backend's validation setting.
func (b *Backend) NewPipeline(name string, layout *gpubind.PipelineLayout, shaders []*gpubind.Shader) (*gpubind.Pipeline, error) {
	return gpubind.NewPipeline(name, layout, shaders, b.cfg.PipelineOptions()...)
}

// NewShaderResourceBinding creates a binding for sig with the backend's options.
func (b *Backend) NewShaderResourceBinding(sig *gpubind.Signature, initStatic bool) *gpubind.ShaderResourceBinding {
	return gpubind.NewShaderResourceBinding(sig, initStatic, b.cfg.SRBOptions()...)
}

// ApplyBindings checks a ShaderModule's declared bindings against layout.
// Other programs go through the generic binder.
func (b *Backend) ApplyBindings(prog gpubind.Program, layout *gpubind.PipelineLayout, stages gpubind.ShaderStages) gpubind.BindReport {
	var rep gpubind.BindReport
	if sm, ok := prog.(*ShaderModule); ok {
		rep = b.checkModule(sm, layout, stages)
	} else {
		rep = layout.ApplyBindings(prog, stages)
	}
	b.log().Debug("wgpu: bindings applied",
		"program", prog.Label(),
		"matched", rep.Matched,
		"mismatched", rep.Mismatched,
		"skipped", rep.Skipped)
	return rep
}

// Validate checks the caches bound for a draw or dispatch.
func (b *Backend) Validate(p *gpubind.Pipeline, caches []*gpubind.ResourceCache) bool {
	return p.ValidateAllResourcesBound(caches)
}

// Release destroys the cached bind group layouts and detaches the backend
// from package logger updates. Signatures and pipeline layouts created by
// the backend must be released first.
func (b *Backend) Release() {
	b.mu.Lock()
	b.groups = make(map[*gpubind.Signature]groupEntry)
	b.mu.Unlock()
	b.cache.Destroy(b.device)
	gpubind.DetachLogger(b)
}
