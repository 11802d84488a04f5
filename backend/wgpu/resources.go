package wgpu

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpubind"
)

// Buffer is a HAL buffer bound to uniform buffer variables.
type Buffer struct {
	label  string
	size   uint64
	native hal.Buffer
}

// NewBuffer creates a buffer of size bytes with usage on device.
func NewBuffer(device hal.Device, label string, size uint64, usage gputypes.BufferUsage) (*Buffer, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	b, err := device.CreateBuffer(&hal.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create buffer %q: %w", label, err)
	}
	return &Buffer{label: label, size: size, native: b}, nil
}

// NewUniformBuffer creates a buffer usable as a uniform buffer.
func NewUniformBuffer(device hal.Device, label string, size uint64) (*Buffer, error) {
	return NewBuffer(device, label, size, gputypes.BufferUsageUniform|gputypes.BufferUsageCopyDst)
}

// NewStorageBuffer creates a buffer usable as a storage buffer.
func NewStorageBuffer(device hal.Device, label string, size uint64) (*Buffer, error) {
	return NewBuffer(device, label, size, gputypes.BufferUsageStorage|gputypes.BufferUsageCopyDst)
}

// Label implements gpubind.Resource.
func (b *Buffer) Label() string { return b.label }

// Size implements gpubind.Buffer.
func (b *Buffer) Size() uint64 { return b.size }

// HAL returns the native buffer.
func (b *Buffer) HAL() hal.Buffer { return b.native }

// Whole returns a view of the entire buffer.
func (b *Buffer) Whole() *BufferRange {
	return &BufferRange{buf: b, size: b.size}
}

// Range returns a view of size bytes starting at offset.
func (b *Buffer) Range(offset, size uint64) (*BufferRange, error) {
	if offset+size > b.size || offset+size < offset {
		return nil, fmt.Errorf("wgpu: range [%d, %d) outside buffer %q of %d bytes", offset, offset+size, b.label, b.size)
	}
	return &BufferRange{buf: b, offset: offset, size: size}, nil
}

// Destroy releases the native buffer.
func (b *Buffer) Destroy(device hal.Device) {
	if b.native != nil {
		device.DestroyBuffer(b.native)
		b.native = nil
	}
}

// BufferRange is a view of a buffer bound to storage buffer variables.
// WebGPU has no typed buffer views, so ranges are never formatted.
type BufferRange struct {
	buf    *Buffer
	offset uint64
	size   uint64
}

// Label implements gpubind.Resource.
func (r *BufferRange) Label() string { return r.buf.label }

// Buffer implements gpubind.BufferView.
func (r *BufferRange) Buffer() gpubind.Buffer { return r.buf }

// Formatted implements gpubind.BufferView.
func (r *BufferRange) Formatted() bool { return false }

// Offset returns the first byte of the range.
func (r *BufferRange) Offset() uint64 { return r.offset }

// Size returns the length of the range in bytes.
func (r *BufferRange) Size() uint64 { return r.size }

// TextureDesc describes a texture created with NewTextureView.
type TextureDesc struct {
	Width, Height uint32

	// Layers is the array layer count; cube views need 6 per cube.
	Layers uint32

	Format gputypes.TextureFormat

	// Dimension is the view dimension used for binding validation.
	Dimension gpubind.ResourceDimension

	// SampleCount is 1 for single-sampled textures.
	SampleCount uint32

	// Storage adds storage binding usage for image variables.
	Storage bool
}

// TextureView is a HAL texture view bound to texture and image variables.
// Views created with NewTextureView own their texture.
type TextureView struct {
	label   string
	dim     gpubind.ResourceDimension
	msaa    bool
	texture hal.Texture
	native  hal.TextureView
}

// NewTextureView creates a texture and its default view on device.
func NewTextureView(device hal.Device, label string, desc TextureDesc) (*TextureView, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	layers := max(desc.Layers, 1)
	samples := max(desc.SampleCount, 1)
	usage := gputypes.TextureUsageTextureBinding | gputypes.TextureUsageCopyDst
	if desc.Storage {
		usage |= gputypes.TextureUsageStorageBinding
	}

	dimension := gputypes.TextureDimension2D
	switch desc.Dimension {
	case gpubind.DimTex1D, gpubind.DimTex1DArray:
		dimension = gputypes.TextureDimension1D
	case gpubind.DimTex3D:
		dimension = gputypes.TextureDimension3D
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: desc.Width, Height: max(desc.Height, 1), DepthOrArrayLayers: layers},
		MipLevelCount: 1,
		SampleCount:   samples,
		Dimension:     dimension,
		Format:        desc.Format,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create texture %q: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{Label: label + "_view"})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("wgpu: create view of %q: %w", label, err)
	}

	dim := desc.Dimension
	if dim == gpubind.DimUndefined {
		dim = gpubind.DimTex2D
	}
	return &TextureView{label: label, dim: dim, msaa: samples > 1, texture: tex, native: view}, nil
}

// WrapTextureView adapts a view created elsewhere. The caller keeps
// ownership of the view and its texture.
func WrapTextureView(label string, view hal.TextureView, dim gpubind.ResourceDimension, multisampled bool) *TextureView {
	return &TextureView{label: label, dim: dim, msaa: multisampled, native: view}
}

// Label implements gpubind.Resource.
func (v *TextureView) Label() string { return v.label }

// Dimension implements gpubind.TextureView.
func (v *TextureView) Dimension() gpubind.ResourceDimension { return v.dim }

// Multisampled implements gpubind.TextureView.
func (v *TextureView) Multisampled() bool { return v.msaa }

// HAL returns the native view.
func (v *TextureView) HAL() hal.TextureView { return v.native }

// Destroy releases the view, and the texture when the view owns it.
func (v *TextureView) Destroy(device hal.Device) {
	if v.native != nil {
		device.DestroyTextureView(v.native)
		v.native = nil
	}
	if v.texture != nil {
		device.DestroyTexture(v.texture)
		v.texture = nil
	}
}
