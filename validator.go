package gpubind

// ValidateAllResourcesBound checks that every resource required by the
// pipeline's shaders is bound in the cache of its signature. caches[i] is
// the cache for the signature at binding index i. Every failure is logged;
// the result is false if any check failed, in which case the draw or
// dispatch must not be issued.
func (p *Pipeline) ValidateAllResourcesBound(caches []*ResourceCache) bool {
	if !devChecksEnabled || !p.opts.strict {
		return true
	}

	ok := true
	for s, sh := range p.shaders {
		for r := range sh.Resources {
			attr := p.attributions[s][r]
			if attr.IsImmutableSampler() {
				continue
			}
			var cache *ResourceCache
			if int(attr.SignatureIndex) < len(caches) {
				cache = caches[attr.SignatureIndex]
			}
			if cache == nil {
				Logger().Error("gpubind: no resource cache for signature",
					"pipeline", p.name, "signature", attr.Signature.Name())
				ok = false
				continue
			}
			if !ValidateCommittedResource(p.name, sh, &sh.Resources[r], attr, cache) {
				ok = false
			}
		}
	}
	return ok
}

// ValidateResources validates against shader resource bindings, one per
// signature binding index (nil entries for empty slots).
func (p *Pipeline) ValidateResources(srbs ...*ShaderResourceBinding) bool {
	caches := make([]*ResourceCache, p.layout.SignatureCount())
	for _, b := range srbs {
		if b == nil || b.Signature() == nil {
			continue
		}
		if i := int(b.Signature().BindingIndex()); i < len(caches) {
			caches[i] = b.Cache()
		}
	}
	return p.ValidateAllResourcesBound(caches)
}

// Validator checks committed resources of a single signature against
// reflected shaders.
type Validator struct {
	shaders []*Shader
	opts    pipelineOptions
}

// NewValidator creates a validator for shaders.
func NewValidator(shaders []*Shader, opts ...PipelineOption) *Validator {
	v := &Validator{shaders: shaders, opts: defaultPipelineOptions()}
	for _, opt := range opts {
		opt(&v.opts)
	}
	return v
}

// Check validates the shader resources that resolve to sig. Resources
// served by other signatures are not checked.
func (v *Validator) Check(cache *ResourceCache, sig *Signature) bool {
	if !devChecksEnabled || !v.opts.strict {
		return true
	}
	ok := true
	for _, sh := range v.shaders {
		for r := range sh.Resources {
			res := &sh.Resources[r]
			attr := sig.GetBindingAttribution(res.Name, sh.Stage)
			if !attr.IsValid() || attr.IsImmutableSampler() {
				continue
			}
			if !ValidateCommittedResource(sig.Name(), sh, res, attr, cache) {
				ok = false
			}
		}
	}
	return ok
}

// ValidateCommittedResource checks every array element of one shader
// resource: the slot must be bound with the right kind of object, texture
// and image views must match the declared dimension and multisampling, and
// textures with an immutable sampler must carry it. Elements are checked up
// to the number of slots the signature provides; a runtime-sized shader
// array checks its first element. Each failure is logged.
func ValidateCommittedResource(owner string, sh *Shader, res *ShaderResource, attr ResourceAttribution, cache *ResourceCache) bool {
	sig := attr.Signature
	rd := sig.desc.Resources[attr.ResourceIndex]
	ra := sig.attribs[attr.ResourceIndex]
	if rd.Type == ResourceSampler {
		return true
	}
	rng, err := ClassifyResource(&rd)
	if err != nil {
		return true
	}

	log := Logger()
	ok := true
	fail := func(msg string, elem uint32, args ...any) {
		ok = false
		log.Error(msg, append([]any{
			"variable", arrayElementName(res.Name, elem, res.ArraySize),
			"shader", sh.Name,
			"owner", owner,
		}, args...)...)
	}

	isTexView := res.Type == ResourceTextureSRV || res.Type == ResourceTextureUAV || res.Type == ResourceInputAttachment
	immutable := sig.immutableSamplerFor(attr.ResourceIndex)

	// Runtime-sized shader arrays need at least their first element.
	count := max(res.ArraySize, 1)
	if slots := rd.slotCount(); count > slots {
		for elem := slots; elem < count; elem++ {
			fail("gpubind: shader array element has no slot in the signature", elem,
				"signature", sig.Name(), "slots", slots)
		}
		count = slots
	}

	for elem := uint32(0); elem < count; elem++ {
		off := ra.CacheOffset + elem
		switch rng {
		case RangeUniformBuffer:
			if !cache.IsUBBound(off) {
				fail("gpubind: no resource is bound to variable", elem)
			}

		case RangeStorageBuffer:
			if !cache.IsSSBOBound(off) {
				fail("gpubind: no resource is bound to variable", elem)
			}

		case RangeTexture, RangeImage:
			bound := cache.IsTextureBound(off, isTexView)
			if rng == RangeImage {
				bound = cache.IsImageBound(off, isTexView)
			}
			if !bound {
				fail("gpubind: no resource is bound to variable", elem)
				continue
			}
			slot, _ := cache.Slot(rng, off)
			if view := slot.TextureView(); view != nil {
				if !view.Dimension().Compatible(res.Dimension) {
					fail("gpubind: resource view dimension is incompatible with the shader", elem,
						"expected", res.Dimension.String(), "actual", view.Dimension().String())
				}
				if view.Multisampled() != res.Multisampled {
					fail("gpubind: resource view multisample state differs from the shader", elem,
						"expected", res.Multisampled, "actual", view.Multisampled())
				}
			}
			if rng == RangeTexture && immutable != nil {
				switch {
				case slot.Sampler == nil:
					fail("gpubind: immutable sampler is not initialized for texture", elem)
				case slot.Sampler != Sampler(immutable):
					fail("gpubind: texture slot holds a sampler other than its immutable sampler", elem,
						"expected", immutable.Label(), "actual", slot.Sampler.Label())
				}
			}
		}
	}
	return ok
}
