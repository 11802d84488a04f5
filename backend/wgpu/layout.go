package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpubind"
)

// InvalidBinding marks a resource or immutable sampler without a bind group entry.
const InvalidBinding = ^uint32(0)

var (
	// ErrUnsupportedResource is returned for resource types WebGPU cannot bind.
	ErrUnsupportedResource = errors.New("wgpu: resource type has no bind group layout entry")

	// ErrNoVisibility is returned when a resource is only visible to stages
	// WebGPU does not have.
	ErrNoVisibility = errors.New("wgpu: resource is not visible to any WebGPU stage")
)

// GroupLayout is the bind group layout of one signature. Resources take
// one binding per array element in declaration order; a runtime array
// takes one. Immutable samplers that are not served by a sampler resource
// follow the resources.
type GroupLayout struct {
	Entries []gputypes.BindGroupLayoutEntry

	first     []uint32
	immutable []uint32
}

// Binding returns the binding number of element elem of resource i, or
// InvalidBinding.
func (g *GroupLayout) Binding(i, elem uint32) uint32 {
	if int(i) >= len(g.first) {
		return InvalidBinding
	}
	return g.first[i] + elem
}

// ImmutableSamplerBinding returns the binding number of immutable sampler
// j, or InvalidBinding when a sampler resource carries it.
func (g *GroupLayout) ImmutableSamplerBinding(j uint32) uint32 {
	if int(j) >= len(g.immutable) {
		return InvalidBinding
	}
	return g.immutable[j]
}

// BuildGroupLayout computes the bind group layout entries of sig.
func BuildGroupLayout(sig *gpubind.Signature) (*GroupLayout, error) {
	g := &GroupLayout{}
	if sig == nil {
		return g, nil
	}

	n := sig.NumResources()
	g.first = make([]uint32, n)
	served := make([]bool, sig.NumImmutableSamplers())

	var next uint32
	for i := uint32(0); i < n; i++ {
		rd := sig.Resource(i)
		if rd.Type == gpubind.ResourceSampler {
			if a := sig.Attribs(i); a.ImmutableSamplerAssigned {
				served[a.SamplerIndex] = true
			}
		}

		base, err := layoutEntry(&rd)
		if err != nil {
			return nil, fmt.Errorf("signature %q: resource %q: %w", sig.Name(), rd.Name, err)
		}

		g.first[i] = next
		count := max(rd.ArraySize, 1)
		for e := uint32(0); e < count; e++ {
			entry := base
			entry.Binding = next
			g.Entries = append(g.Entries, entry)
			next++
		}
	}

	g.immutable = make([]uint32, len(served))
	for j := range served {
		if served[j] {
			g.immutable[j] = InvalidBinding
			continue
		}
		sd := sig.ImmutableSamplerDesc(uint32(j)) //nolint:gosec // G115: sampler count fits uint32
		entry := gputypes.BindGroupLayoutEntry{
			Binding: next,
			Sampler: &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		}
		if !setVisibility(&entry, sd.ShaderStages) {
			return nil, fmt.Errorf("signature %q: immutable sampler %q: %w", sig.Name(), sd.SamplerOrTextureName, ErrNoVisibility)
		}
		g.immutable[j] = next
		g.Entries = append(g.Entries, entry)
		next++
	}
	return g, nil
}

func layoutEntry(rd *gpubind.ResourceDesc) (gputypes.BindGroupLayoutEntry, error) {
	var e gputypes.BindGroupLayoutEntry
	if !setVisibility(&e, rd.ShaderStages) {
		return e, ErrNoVisibility
	}
	if rd.Flags&gpubind.FlagFormattedBuffer != 0 {
		return e, fmt.Errorf("%w: formatted %s", ErrUnsupportedResource, rd.Type)
	}

	switch rd.Type {
	case gpubind.ResourceConstantBuffer:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}
	case gpubind.ResourceBufferSRV:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}
	case gpubind.ResourceBufferUAV:
		e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}
	case gpubind.ResourceTextureSRV:
		e.Texture = &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case gpubind.ResourceTextureUAV:
		e.Storage = &gputypes.StorageTextureBindingLayout{
			Access:        gputypes.StorageTextureAccessReadWrite,
			Format:        gputypes.TextureFormatRGBA8Unorm,
			ViewDimension: gputypes.TextureViewDimension2D,
		}
	case gpubind.ResourceSampler:
		e.Sampler = &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering}
	default:
		return e, fmt.Errorf("%w: %s", ErrUnsupportedResource, rd.Type)
	}
	return e, nil
}

// setVisibility maps stages onto the entry. Hull, domain and geometry
// stages have no WebGPU equivalent and are dropped.
func setVisibility(e *gputypes.BindGroupLayoutEntry, stages gpubind.ShaderStages) bool {
	if stages&gpubind.StageVertex != 0 {
		e.Visibility |= gputypes.ShaderStageVertex
	}
	if stages&gpubind.StageFragment != 0 {
		e.Visibility |= gputypes.ShaderStageFragment
	}
	if stages&gpubind.StageCompute != 0 {
		e.Visibility |= gputypes.ShaderStageCompute
	}
	return e.Visibility != 0
}
