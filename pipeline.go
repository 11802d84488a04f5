package gpubind

import "fmt"

// Pipeline ties shaders to a pipeline layout. Every reflected resource is
// resolved to a signature resource or immutable sampler when the pipeline
// is created.
type Pipeline struct {
	name    string
	layout  *PipelineLayout
	shaders []*Shader

	// attributions[s][r] resolves resource r of shader s.
	attributions [][]ResourceAttribution

	opts pipelineOptions
}

// NewPipeline resolves the resources of shaders against layout. A resource
// that is not present in any signature, or that does not match the
// signature's declaration, fails pipeline creation.
func NewPipeline(name string, layout *PipelineLayout, shaders []*Shader, opts ...PipelineOption) (*Pipeline, error) {
	p := &Pipeline{
		name:         name,
		layout:       layout,
		shaders:      shaders,
		attributions: make([][]ResourceAttribution, len(shaders)),
		opts:         defaultPipelineOptions(),
	}
	for _, opt := range opts {
		opt(&p.opts)
	}

	for s, sh := range shaders {
		p.attributions[s] = make([]ResourceAttribution, len(sh.Resources))
		for r := range sh.Resources {
			res := &sh.Resources[r]
			attr := layout.GetResourceAttribution(res.Name, sh.Stage)
			if !attr.IsValid() {
				return nil, fmt.Errorf("%w: shader '%s' (%s), resource '%s', pipeline '%s'",
					ErrResourceNotFound, sh.Name, sh.Stage, res.Name, name)
			}

			if attr.IsImmutableSampler() {
				if res.Type != ResourceSampler {
					return nil, fmt.Errorf("%w: shader '%s' (%s), resource '%s' is assigned an immutable sampler but is a %s",
						ErrIncompatibleResource, sh.Name, sh.Stage, res.Name, res.Type)
				}
			} else {
				rd := attr.ResourceDesc()
				if err := res.checkCompatibility(&rd); err != nil {
					return nil, fmt.Errorf("shader '%s' (%s), signature '%s': %w",
						sh.Name, sh.Stage, attr.Signature.Name(), err)
				}
			}
			p.attributions[s][r] = attr
		}
	}
	return p, nil
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string { return p.name }

// Layout returns the pipeline layout.
func (p *Pipeline) Layout() *PipelineLayout { return p.layout }

// Shaders returns the shaders of the pipeline.
func (p *Pipeline) Shaders() []*Shader { return p.shaders }

// Attribution returns the attribution of resource r of shader s.
func (p *Pipeline) Attribution(s, r int) ResourceAttribution {
	return p.attributions[s][r]
}

// ActiveStages returns the union of the shader stages.
func (p *Pipeline) ActiveStages() ShaderStages {
	var st ShaderStages
	for _, sh := range p.shaders {
		st |= sh.Stage
	}
	return st
}

// StrictValidation reports whether committed-resource validation is enabled.
func (p *Pipeline) StrictValidation() bool { return p.opts.strict }
