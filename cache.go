package gpubind

import "fmt"

// CacheContentType tells what a resource cache holds.
type CacheContentType uint8

const (
	// CacheContentSignature caches hold the static resources of a signature.
	CacheContentSignature CacheContentType = iota

	// CacheContentSRB caches hold every resource of a shader resource binding.
	CacheContentSRB
)

func (t CacheContentType) String() string {
	if t == CacheContentSignature {
		return "Signature"
	}
	return "SRB"
}

// CachedResource is one slot of a resource cache.
type CachedResource struct {
	// Object is a Buffer in uniform buffer slots, a BufferView in storage
	// buffer slots, and a TextureView or formatted BufferView in texture
	// and image slots.
	Object Resource

	// Sampler is the sampler used with a texture slot.
	Sampler Sampler
}

// IsBound reports whether the slot holds a resource.
func (r *CachedResource) IsBound() bool {
	return r.Object != nil
}

// TextureView returns the slot's texture view, or nil.
func (r *CachedResource) TextureView() TextureView {
	v, _ := r.Object.(TextureView)
	return v
}

// BufferView returns the slot's buffer view, or nil.
func (r *CachedResource) BufferView() BufferView {
	v, _ := r.Object.(BufferView)
	return v
}

// Buffer returns the slot's buffer, or nil.
func (r *CachedResource) Buffer() Buffer {
	b, _ := r.Object.(Buffer)
	return b
}

// ResourceCache is a table of bound resources indexed by binding range and
// cache offset. It is not safe for concurrent use.
type ResourceCache struct {
	content CacheContentType
	slots   [NumBindingRanges][]CachedResource

	staticInitialized bool
	revision          uint64
}

// NewResourceCache creates a cache with counts[r] slots in every range r.
func NewResourceCache(content CacheContentType, counts BindingTable) *ResourceCache {
	c := &ResourceCache{content: content}
	c.Initialize(counts)
	return c
}

// Initialize resizes the cache and unbinds every slot.
func (c *ResourceCache) Initialize(counts BindingTable) {
	for r := range c.slots {
		c.slots[r] = make([]CachedResource, counts[r])
	}
	c.staticInitialized = false
	c.revision++
}

// ContentType returns what the cache holds.
func (c *ResourceCache) ContentType() CacheContentType { return c.content }

// BindingCounts returns the number of slots per range.
func (c *ResourceCache) BindingCounts() BindingTable {
	var t BindingTable
	for r := range c.slots {
		t[r] = uint32(len(c.slots[r])) //nolint:gosec // G115: slot counts come from a BindingTable
	}
	return t
}

// Revision increments on every change to the cache.
func (c *ResourceCache) Revision() uint64 { return c.revision }

// Slot returns the slot at offset off of range r.
func (c *ResourceCache) Slot(r BindingRange, off uint32) (CachedResource, bool) {
	if !c.inRange(r, off) {
		return CachedResource{}, false
	}
	return c.slots[r][off], true
}

func (c *ResourceCache) inRange(r BindingRange, off uint32) bool {
	return r < NumBindingRanges && off < uint32(len(c.slots[r])) //nolint:gosec // G115: see BindingCounts
}

func (c *ResourceCache) slot(r BindingRange, off uint32) *CachedResource {
	c.revision++
	return &c.slots[r][off]
}

// SetUniformBuffer binds buf to a uniform buffer slot.
// off must be within the range.
func (c *ResourceCache) SetUniformBuffer(off uint32, buf Buffer) {
	s := c.slot(RangeUniformBuffer, off)
	s.Object = buf
}

// SetSSBO binds a buffer view to a storage buffer slot.
func (c *ResourceCache) SetSSBO(off uint32, view BufferView) {
	s := c.slot(RangeStorageBuffer, off)
	s.Object = view
}

// SetTexture binds a texture view to a texture slot. When setSampler is
// true the view's default sampler replaces the slot's sampler; otherwise the
// slot keeps its sampler, which is how immutable samplers survive rebinding.
func (c *ResourceCache) SetTexture(off uint32, view TextureView, setSampler bool) {
	s := c.slot(RangeTexture, off)
	s.Object = view
	if !setSampler {
		return
	}
	s.Sampler = nil
	if sv, ok := view.(SampledView); ok {
		s.Sampler = sv.Sampler()
	}
}

// SetSampler sets the sampler of a texture slot.
func (c *ResourceCache) SetSampler(off uint32, sam Sampler) {
	s := c.slot(RangeTexture, off)
	s.Sampler = sam
}

// SetTexelBuffer binds a formatted buffer view to a texture slot.
func (c *ResourceCache) SetTexelBuffer(off uint32, view BufferView) {
	s := c.slot(RangeTexture, off)
	s.Object = view
	s.Sampler = nil
}

// SetTexImage binds a texture view to an image slot.
func (c *ResourceCache) SetTexImage(off uint32, view TextureView) {
	s := c.slot(RangeImage, off)
	s.Object = view
}

// SetBufImage binds a formatted buffer view to an image slot.
func (c *ResourceCache) SetBufImage(off uint32, view BufferView) {
	s := c.slot(RangeImage, off)
	s.Object = view
}

// Set binds res to slot off of range r, checking that the resource kind
// matches the range. A nil res unbinds the slot.
func (c *ResourceCache) Set(r BindingRange, off uint32, res Resource) error {
	if !c.inRange(r, off) {
		return fmt.Errorf("%w: %s offset %d", ErrOffsetOutOfRange, r, off)
	}
	if res == nil {
		c.Reset(r, off)
		return nil
	}

	switch r {
	case RangeUniformBuffer:
		if buf, ok := res.(Buffer); ok {
			c.SetUniformBuffer(off, buf)
			return nil
		}
	case RangeStorageBuffer:
		if view, ok := res.(BufferView); ok {
			c.SetSSBO(off, view)
			return nil
		}
	case RangeTexture:
		switch v := res.(type) {
		case TextureView:
			c.SetTexture(off, v, true)
			return nil
		case BufferView:
			if v.Formatted() {
				c.SetTexelBuffer(off, v)
				return nil
			}
		}
	case RangeImage:
		switch v := res.(type) {
		case TextureView:
			c.SetTexImage(off, v)
			return nil
		case BufferView:
			if v.Formatted() {
				c.SetBufImage(off, v)
				return nil
			}
		}
	}
	return fmt.Errorf("%w: %T in %s range", ErrResourceKindMismatch, res, r)
}

// Reset unbinds slot off of range r. The slot's sampler is kept.
func (c *ResourceCache) Reset(r BindingRange, off uint32) {
	s := c.slot(r, off)
	s.Object = nil
}

// IsBound reports whether slot off of range r holds a resource.
func (c *ResourceCache) IsBound(r BindingRange, off uint32) bool {
	return c.inRange(r, off) && c.slots[r][off].IsBound()
}

// IsUBBound reports whether a uniform buffer slot holds a buffer.
func (c *ResourceCache) IsUBBound(off uint32) bool {
	return c.IsBound(RangeUniformBuffer, off) && c.slots[RangeUniformBuffer][off].Buffer() != nil
}

// IsSSBOBound reports whether a storage buffer slot holds a buffer view.
func (c *ResourceCache) IsSSBOBound(off uint32) bool {
	return c.IsBound(RangeStorageBuffer, off) && c.slots[RangeStorageBuffer][off].BufferView() != nil
}

// IsTextureBound reports whether a texture slot holds a texture view
// (texView true) or a texel buffer view (texView false).
func (c *ResourceCache) IsTextureBound(off uint32, texView bool) bool {
	return c.isViewBound(RangeTexture, off, texView)
}

// IsImageBound reports whether an image slot holds a texture view
// (texView true) or a buffer view (texView false).
func (c *ResourceCache) IsImageBound(off uint32, texView bool) bool {
	return c.isViewBound(RangeImage, off, texView)
}

func (c *ResourceCache) isViewBound(r BindingRange, off uint32, texView bool) bool {
	if !c.IsBound(r, off) {
		return false
	}
	s := &c.slots[r][off]
	if texView {
		return s.TextureView() != nil
	}
	return s.BufferView() != nil
}

// CopyStaticFrom copies the static resources of sig into the cache.
func (c *ResourceCache) CopyStaticFrom(sig *Signature) {
	sig.CopyStaticResources(c)
}

// StaticResourcesInitialized reports whether static resources were copied.
func (c *ResourceCache) StaticResourcesInitialized() bool { return c.staticInitialized }

// SetStaticResourcesInitialized marks static resources as copied.
func (c *ResourceCache) SetStaticResourcesInitialized() { c.staticInitialized = true }

// copySlot shares the occupant of src into slot off of range r. The
// destination sampler is kept when keepSampler is true.
func (c *ResourceCache) copySlot(r BindingRange, off uint32, src CachedResource, keepSampler bool) {
	s := c.slot(r, off)
	s.Object = src.Object
	if !keepSampler {
		s.Sampler = src.Sampler
	}
}
