package gpubind

// SignatureOption configures a Signature during creation.
//
// Example:
//
//	sig, err := gpubind.NewSignature(desc,
//	    gpubind.WithSamplerPolicy(gpubind.SamplerPolicyTextureName),
//	    gpubind.WithBackend("gl"))
type SignatureOption func(*signatureOptions)

type signatureOptions struct {
	policy    SamplerPolicy
	factory   SamplerFactory
	backend   string
	onRelease []func(*Signature)
}

func defaultSignatureOptions() signatureOptions {
	return signatureOptions{
		policy:  SamplerPolicyCombinedSuffix,
		factory: inertSamplerFactory{},
	}
}

// WithSamplerPolicy selects how immutable samplers are matched to textures.
func WithSamplerPolicy(p SamplerPolicy) SignatureOption {
	return func(o *signatureOptions) {
		o.policy = p
	}
}

// WithSamplerFactory sets the factory that creates immutable sampler objects.
// The signature destroys the samplers through the same factory on release.
func WithSamplerFactory(f SamplerFactory) SignatureOption {
	return func(o *signatureOptions) {
		if f != nil {
			o.factory = f
		}
	}
}

// WithBackend tags the signature with the name of the backend building it.
// Signatures with different tags cannot share a pipeline layout.
func WithBackend(name string) SignatureOption {
	return func(o *signatureOptions) {
		o.backend = name
	}
}

// WithReleaseHook registers fn to run once the last reference to the
// signature is released, after its immutable samplers are destroyed.
func WithReleaseHook(fn func(*Signature)) SignatureOption {
	return func(o *signatureOptions) {
		if fn != nil {
			o.onRelease = append(o.onRelease, fn)
		}
	}
}

// PipelineOption configures a Pipeline during creation.
type PipelineOption func(*pipelineOptions)

type pipelineOptions struct {
	strict bool
}

func defaultPipelineOptions() pipelineOptions {
	return pipelineOptions{strict: devChecksEnabled}
}

// WithStrictValidation enables or disables committed-resource validation
// for a pipeline. Validation is enabled by default unless the module is
// built with the nodevchecks tag, in which case it cannot be enabled.
func WithStrictValidation(enabled bool) PipelineOption {
	return func(o *pipelineOptions) {
		o.strict = enabled && devChecksEnabled
	}
}

// SRBOption configures a ShaderResourceBinding during creation.
type SRBOption func(*srbOptions)

type srbOptions struct {
	mutableOverwrite bool
}

// WithMutableOverwrite allows bound mutable variables to be replaced.
// By default a second binding of a mutable variable is rejected.
func WithMutableOverwrite() SRBOption {
	return func(o *srbOptions) {
		o.mutableOverwrite = true
	}
}
