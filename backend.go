package gpubind

// Backend adapts the binding model to one family of native graphics APIs.
// Implementations live under backend/ and register themselves with the
// backend registry; a device picks one when it is created.
type Backend interface {
	// Name returns the backend identifier, e.g. "gl" or "wgpu".
	Name() string

	// SamplerPolicy returns how the backend matches immutable samplers.
	SamplerPolicy() SamplerPolicy

	// BuildSignature creates a signature tagged with the backend name.
	BuildSignature(desc SignatureDesc) (*Signature, error)

	// BuildImplicitSignature derives a signature from reflected shaders.
	BuildImplicitSignature(name string, layout LayoutDesc, shaders []*Shader) (*Signature, error)

	// ApplyBindings maps layout onto the native binding points of prog.
	ApplyBindings(prog Program, layout *PipelineLayout, stages ShaderStages) BindReport

	// Validate checks that caches hold everything the pipeline's shaders use.
	Validate(p *Pipeline, caches []*ResourceCache) bool

	// Release frees backend objects. The backend must not be used afterwards.
	Release()
}
