package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpubind"
)

var (
	// ErrResourceNotBound is returned when a bind group is created while a
	// variable has no resource.
	ErrResourceNotBound = errors.New("wgpu: resource is not bound")

	// ErrForeignResource is returned for bound resources that were not
	// created by this package.
	ErrForeignResource = errors.New("wgpu: resource has no HAL object")

	// ErrUnpairedSampler is returned for a sampler variable that no texture
	// refers to; its binding has nowhere to be stored.
	ErrUnpairedSampler = errors.New("wgpu: sampler is not paired with a texture")
)

// BindGroupEntries builds the bind group entries of a shader resource
// binding. Every variable must be bound.
func BindGroupEntries(g *GroupLayout, srb *gpubind.ShaderResourceBinding) ([]gputypes.BindGroupEntry, error) {
	sig := srb.Signature()
	cache := srb.Cache()
	entries := make([]gputypes.BindGroupEntry, 0, len(g.Entries))

	for i := uint32(0); i < sig.NumResources(); i++ {
		rd := sig.Resource(i)
		count := max(rd.ArraySize, 1)
		for e := uint32(0); e < count; e++ {
			entry := gputypes.BindGroupEntry{Binding: g.Binding(i, e)}
			var err error
			if rd.Type == gpubind.ResourceSampler {
				err = samplerResource(&entry, sig, cache, i, e)
			} else {
				err = slotResource(&entry, sig, cache, i, e)
			}
			if err != nil {
				return nil, fmt.Errorf("signature %q: %s: %w", sig.Name(), elementName(&rd, e), err)
			}
			entries = append(entries, entry)
		}
	}

	for j := uint32(0); j < sig.NumImmutableSamplers(); j++ {
		binding := g.ImmutableSamplerBinding(j)
		if binding == InvalidBinding {
			continue
		}
		entry := gputypes.BindGroupEntry{Binding: binding}
		if err := samplerBinding(&entry, sig.ImmutableSampler(j)); err != nil {
			return nil, fmt.Errorf("signature %q: immutable sampler %q: %w",
				sig.Name(), sig.ImmutableSamplerDesc(j).SamplerOrTextureName, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func slotResource(entry *gputypes.BindGroupEntry, sig *gpubind.Signature, cache *gpubind.ResourceCache, i, e uint32) error {
	rng := sig.ResourceRange(i)
	slot, ok := cache.Slot(rng, sig.Attribs(i).CacheOffset+e)
	if !ok || !slot.IsBound() {
		return ErrResourceNotBound
	}

	switch obj := slot.Object.(type) {
	case *Buffer:
		if obj.native == nil {
			return ErrForeignResource
		}
		entry.Resource = gputypes.BufferBinding{Buffer: obj.native.NativeHandle(), Offset: 0, Size: obj.size}
	case *BufferRange:
		if obj.buf.native == nil {
			return ErrForeignResource
		}
		entry.Resource = gputypes.BufferBinding{Buffer: obj.buf.native.NativeHandle(), Offset: obj.offset, Size: obj.size}
	case *TextureView:
		if obj.native == nil {
			return ErrForeignResource
		}
		entry.Resource = gputypes.TextureViewBinding{TextureView: gputypes.TextureViewHandle(obj.native.NativeHandle())}
	default:
		return fmt.Errorf("%w: %T", ErrForeignResource, slot.Object)
	}
	return nil
}

// samplerResource finds the sampler bound to element e of sampler variable
// i. Separate samplers are stored in the slots of their textures.
func samplerResource(entry *gputypes.BindGroupEntry, sig *gpubind.Signature, cache *gpubind.ResourceCache, i, e uint32) error {
	if a := sig.Attribs(i); a.ImmutableSamplerAssigned {
		return samplerBinding(entry, sig.ImmutableSampler(a.SamplerIndex))
	}
	for t := uint32(0); t < sig.NumResources(); t++ {
		ta := sig.Attribs(t)
		if sig.Resource(t).Type != gpubind.ResourceTextureSRV || ta.ImmutableSamplerAssigned || ta.SamplerIndex != i {
			continue
		}
		slot, ok := cache.Slot(gpubind.RangeTexture, ta.CacheOffset+e)
		if !ok || slot.Sampler == nil {
			return ErrResourceNotBound
		}
		return samplerBinding(entry, slot.Sampler)
	}
	return ErrUnpairedSampler
}

func samplerBinding(entry *gputypes.BindGroupEntry, s gpubind.Sampler) error {
	var native hal.Sampler
	switch smp := s.(type) {
	case *Sampler:
		native = smp.native
	case *gpubind.ImmutableSampler:
		native, _ = smp.Native().(hal.Sampler)
	}
	if native == nil {
		return fmt.Errorf("%w: sampler", ErrForeignResource)
	}
	entry.Resource = gputypes.SamplerBinding{Sampler: gputypes.SamplerHandle(native.NativeHandle())}
	return nil
}

func elementName(rd *gpubind.ResourceDesc, e uint32) string {
	if rd.ArraySize > 1 {
		return fmt.Sprintf("%s[%d]", rd.Name, e)
	}
	return rd.Name
}

// CreateBindGroup creates the bind group of srb on the backend's device.
func (b *Backend) CreateBindGroup(srb *gpubind.ShaderResourceBinding) (hal.BindGroup, error) {
	sig := srb.Signature()
	g, bgl, err := b.layoutFor(sig)
	if err != nil {
		return nil, err
	}
	entries, err := BindGroupEntries(g, srb)
	if err != nil {
		return nil, err
	}
	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   sig.Name(),
		Layout:  bgl,
		Entries: entries,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create bind group %q: %w", sig.Name(), err)
	}
	b.log().Debug("wgpu: bind group created", "signature", sig.Name(), "entries", len(entries))
	return bg, nil
}
