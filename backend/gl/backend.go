package gl

import (
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/gpubind/backend"
)

// init registers the gl backend on package import.
func init() {
	backend.Register(backend.BackendGL, func(cfg backend.Config) (gpubind.Backend, error) {
		return New(cfg), nil
	})
}

// Backend binds resources the OpenGL way. It creates no GPU objects and
// is safe for concurrent use.
type Backend struct {
	cfg    backend.Config
	policy gpubind.SamplerPolicy
	logger atomic.Pointer[slog.Logger]
	glsl   *GLSLCache
}

// New creates a gl backend.
func New(cfg backend.Config) *Backend {
	b := &Backend{
		cfg:    cfg,
		policy: cfg.Policy(gpubind.SamplerPolicyTextureName),
		glsl:   NewGLSLCache(DefaultGLSLCacheSize),
	}
	b.logger.Store(cfg.Log())
	return b
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return backend.BackendGL }

// SamplerPolicy returns the immutable sampler policy, TextureName unless overridden.
func (b *Backend) SamplerPolicy() gpubind.SamplerPolicy { return b.policy }

// SetLogger replaces the backend logger.
func (b *Backend) SetLogger(l *slog.Logger) {
	if l != nil {
		b.logger.Store(l)
	}
}

func (b *Backend) log() *slog.Logger { return b.logger.Load() }

func (b *Backend) signatureOptions() []gpubind.SignatureOption {
	return []gpubind.SignatureOption{
		gpubind.WithBackend(backend.BackendGL),
		gpubind.WithSamplerPolicy(b.policy),
	}
}

// BuildSignature creates a signature whose immutable samplers have no
// native object; they are resolved when textures are bound.
func (b *Backend) BuildSignature(desc gpubind.SignatureDesc) (*gpubind.Signature, error) {
	sig, err := gpubind.NewSignature(desc, b.signatureOptions()...)
	if err != nil {
		return nil, err
	}
	b.log().Debug("gl: signature built", "signature", sig.Name(), "bindings", sig.BindingCounts().String())
	return sig, nil
}

// BuildImplicitSignature derives a signature from reflected shaders.
func (b *Backend) BuildImplicitSignature(name string, layout gpubind.LayoutDesc, shaders []*gpubind.Shader) (*gpubind.Signature, error) {
	return gpubind.BuildImplicitSignature(name, layout, shaders, b.signatureOptions()...)
}

// NewPipeline resolves shaders against layout with the backend's validation setting.
func (b *Backend) NewPipeline(name string, layout *gpubind.PipelineLayout, shaders []*gpubind.Shader) (*gpubind.Pipeline, error) {
	return gpubind.NewPipeline(name, layout, shaders, b.cfg.PipelineOptions()...)
}

// NewShaderResourceBinding creates a binding for sig with the backend's options.
func (b *Backend) NewShaderResourceBinding(sig *gpubind.Signature, initStatic bool) *gpubind.ShaderResourceBinding {
	return gpubind.NewShaderResourceBinding(sig, initStatic, b.cfg.SRBOptions()...)
}

// ApplyBindings assigns every signature of layout its binding bases in prog.
func (b *Backend) ApplyBindings(prog gpubind.Program, layout *gpubind.PipelineLayout, stages gpubind.ShaderStages) gpubind.BindReport {
	rep := layout.ApplyBindings(prog, stages)
	b.log().Debug("gl: bindings applied",
		"program", prog.Label(),
		"rebound", rep.Rebound,
		"matched", rep.Matched,
		"mismatched", rep.Mismatched)
	return rep
}

// Validate checks the caches bound for a draw or dispatch.
func (b *Backend) Validate(p *gpubind.Pipeline, caches []*gpubind.ResourceCache) bool {
	return p.ValidateAllResourcesBound(caches)
}

// GLSL translates an entry point of module with the binding bases of one
// signature slot. Translations are cached.
func (b *Backend) GLSL(module *ir.Module, base gpubind.BindingTable, opts GLSLOptions) (string, glsl.TranslationInfo, error) {
	src, info, err := b.glsl.Generate(module, base, opts)
	if err != nil {
		return "", info, err
	}
	b.log().Debug("gl: glsl generated", "entry", opts.EntryPoint, "base", base.String())
	return src, info, nil
}

// GLSLCache returns the backend's translation cache.
func (b *Backend) GLSLCache() *GLSLCache { return b.glsl }

// Release drops cached translations and detaches the backend from package
// logger updates.
func (b *Backend) Release() {
	b.glsl.Purge()
	gpubind.DetachLogger(b)
}
