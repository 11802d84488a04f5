package gpubind

import "fmt"

// SetStatic binds res to element arrayIndex of the static variable name
// visible in stage. Static variables live in the signature's own cache and
// are copied into shader resource bindings by CopyStaticResources.
func (s *Signature) SetStatic(stage ShaderStages, name string, arrayIndex uint32, res Resource) error {
	i, ok := s.FindResource(stage, name)
	if !ok {
		return signatureErr(s.desc.Name, name, ErrVariableNotFound)
	}
	if s.desc.Resources[i].VarType != VarStatic {
		return signatureErr(s.desc.Name, name, ErrNotStaticVariable)
	}
	if err := s.bindResource(s.staticCache, i, arrayIndex, res); err != nil {
		return signatureErr(s.desc.Name, name, err)
	}
	return nil
}

// StaticCache returns the cache holding the signature's static resources.
func (s *Signature) StaticCache() *ResourceCache { return s.staticCache }

// bindResource writes res into the slots of resource i in cache. A nil res
// unbinds the element.
func (s *Signature) bindResource(cache *ResourceCache, i, arrayIndex uint32, res Resource) error {
	rd := &s.desc.Resources[i]
	attr := s.attribs[i]
	if arrayIndex >= rd.slotCount() {
		return fmt.Errorf("%w: %d >= %d", ErrArrayIndexOutOfRange, arrayIndex, rd.slotCount())
	}

	if rd.Type == ResourceSampler {
		return s.bindSampler(cache, i, arrayIndex, res)
	}

	rng, err := ClassifyResource(rd)
	if err != nil {
		return err
	}
	off := attr.CacheOffset + arrayIndex
	if res == nil {
		cache.Reset(rng, off)
		return nil
	}

	switch rd.Type {
	case ResourceConstantBuffer:
		if buf, ok := res.(Buffer); ok {
			cache.SetUniformBuffer(off, buf)
			return nil
		}
	case ResourceTextureSRV, ResourceInputAttachment:
		if view, ok := res.(TextureView); ok {
			cache.SetTexture(off, view, s.immutableSamplerFor(i) == nil)
			return nil
		}
	case ResourceBufferSRV:
		if view, ok := res.(BufferView); ok {
			if rd.Flags&FlagFormattedBuffer != 0 {
				if !view.Formatted() {
					break
				}
				cache.SetTexelBuffer(off, view)
			} else {
				cache.SetSSBO(off, view)
			}
			return nil
		}
	case ResourceTextureUAV:
		if view, ok := res.(TextureView); ok {
			cache.SetTexImage(off, view)
			return nil
		}
	case ResourceBufferUAV:
		if view, ok := res.(BufferView); ok {
			if rd.Flags&FlagFormattedBuffer != 0 {
				if !view.Formatted() {
					break
				}
				cache.SetBufImage(off, view)
			} else {
				cache.SetSSBO(off, view)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %T cannot be bound to %s", ErrResourceKindMismatch, res, rd.Type)
}

// bindSampler writes a separate sampler into the texture slots of every
// texture it is assigned to. Samplers have no cache slots of their own.
func (s *Signature) bindSampler(cache *ResourceCache, i, arrayIndex uint32, res Resource) error {
	var smp Sampler
	if res != nil {
		var ok bool
		if smp, ok = res.(Sampler); !ok {
			return fmt.Errorf("%w: %T is not a sampler", ErrResourceKindMismatch, res)
		}
	}
	if s.attribs[i].ImmutableSamplerAssigned {
		Logger().Warn("gpubind: sampler has an immutable sampler assigned, binding ignored",
			"signature", s.desc.Name, "sampler", s.desc.Resources[i].Name)
		return nil
	}

	for t := range s.desc.Resources {
		td := &s.desc.Resources[t]
		ta := s.attribs[t]
		if td.Type != ResourceTextureSRV || ta.ImmutableSamplerAssigned || ta.SamplerIndex != i {
			continue
		}
		if arrayIndex < td.slotCount() {
			cache.SetSampler(ta.CacheOffset+arrayIndex, smp)
		}
	}
	return nil
}

// immutableSamplerFor returns the immutable sampler bound to a texture
// directly or through its assigned sampler resource.
func (s *Signature) immutableSamplerFor(i uint32) *ImmutableSampler {
	attr := s.attribs[i]
	if attr.ImmutableSamplerAssigned {
		return s.ImmutableSampler(attr.SamplerIndex)
	}
	if attr.SamplerIndex == InvalidSamplerIndex {
		return nil
	}
	if sa := s.attribs[attr.SamplerIndex]; sa.ImmutableSamplerAssigned {
		return s.ImmutableSampler(sa.SamplerIndex)
	}
	return nil
}

// CopyStaticResources shares every static resource of the signature into
// dst at the same cache offsets. A static slot with nothing assigned is
// logged and copied as unbound; the draw using dst then fails validation.
// Texture slots keep their immutable samplers. Slots dst was not sized for
// are logged and skipped, and dst is then not marked initialized.
func (s *Signature) CopyStaticResources(dst *ResourceCache) {
	src := s.staticCache
	complete := true
	lo, hi := s.ResourceIndexRange(VarStatic)
	for i := lo; i < hi; i++ {
		rd := &s.desc.Resources[i]
		if rd.Type == ResourceSampler {
			continue
		}
		rng, err := ClassifyResource(rd)
		if err != nil {
			continue
		}
		attr := s.attribs[i]
		keepSampler := rng == RangeTexture && s.immutableSamplerFor(i) != nil

		for elem := uint32(0); elem < rd.slotCount(); elem++ {
			off := attr.CacheOffset + elem
			slot, _ := src.Slot(rng, off)
			if !slot.IsBound() {
				Logger().Error("gpubind: no resource is assigned to static shader variable",
					"signature", s.desc.Name,
					"variable", arrayElementName(rd.Name, elem, rd.ArraySize))
			}
			if !dst.inRange(rng, off) {
				Logger().Error("gpubind: destination cache has no slot for static shader variable",
					"signature", s.desc.Name,
					"variable", arrayElementName(rd.Name, elem, rd.ArraySize),
					"range", rng.String(), "offset", off)
				complete = false
				continue
			}
			dst.copySlot(rng, off, slot, keepSampler)
		}
	}
	if complete {
		dst.SetStaticResourcesInitialized()
	}
}

// InitSRBResourceCache sizes cache for every resource of the signature and
// writes the immutable samplers into their texture slots.
func (s *Signature) InitSRBResourceCache(cache *ResourceCache) {
	cache.content = CacheContentSRB
	cache.Initialize(s.bindingCount)

	for i := range s.desc.Resources {
		rd := &s.desc.Resources[i]
		if rd.Type != ResourceTextureSRV {
			continue
		}
		smp := s.immutableSamplerFor(uint32(i)) //nolint:gosec // G115: resource count fits uint32
		if smp == nil {
			continue
		}
		off := s.attribs[i].CacheOffset
		for elem := uint32(0); elem < rd.slotCount(); elem++ {
			cache.SetSampler(off+elem, smp)
		}
	}
}

// arrayElementName formats name[elem] for arrays and name otherwise.
func arrayElementName(name string, elem, size uint32) string {
	if size <= 1 {
		return name
	}
	return fmt.Sprintf("%s[%d]", name, elem)
}
