package gpubind

// Resource is a GPU object that can occupy a cache slot. Caches hold
// references and never destroy what they hold; a resource lives as long as
// its longest holder.
type Resource interface {
	Label() string
}

// Buffer is bound to uniform buffer slots.
type Buffer interface {
	Resource
	Size() uint64
}

// BufferView is bound to storage buffer slots, or to texture and image slots
// when the view is formatted.
type BufferView interface {
	Resource
	Buffer() Buffer
	Formatted() bool
}

// TextureView is bound to texture and image slots.
type TextureView interface {
	Resource
	Dimension() ResourceDimension
	Multisampled() bool
}

// Sampler is bound next to texture views.
type Sampler interface {
	Resource
	Desc() SamplerDesc
}

// SampledView is implemented by texture views that carry a default sampler.
type SampledView interface {
	TextureView
	Sampler() Sampler
}
