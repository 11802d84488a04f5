package gpubind

import (
	"strings"

	"github.com/gogpu/gputypes"
)

// SamplerDesc is the state of a sampler object.
type SamplerDesc struct {
	MinFilter gputypes.FilterMode
	MagFilter gputypes.FilterMode
	MipFilter gputypes.FilterMode

	AddressU gputypes.AddressMode
	AddressV gputypes.AddressMode
	AddressW gputypes.AddressMode

	// MaxAnisotropy is 1 for no anisotropic filtering.
	MaxAnisotropy uint16
}

// DefaultSamplerDesc returns a linear clamp-to-edge sampler.
func DefaultSamplerDesc() SamplerDesc {
	return SamplerDesc{
		MinFilter:     gputypes.FilterModeLinear,
		MagFilter:     gputypes.FilterModeLinear,
		MipFilter:     gputypes.FilterModeLinear,
		AddressU:      gputypes.AddressModeClampToEdge,
		AddressV:      gputypes.AddressModeClampToEdge,
		AddressW:      gputypes.AddressModeClampToEdge,
		MaxAnisotropy: 1,
	}
}

// ImmutableSamplerDesc declares a sampler baked into a signature.
type ImmutableSamplerDesc struct {
	// ShaderStages is the set of stages the sampler is visible to.
	ShaderStages ShaderStages

	// SamplerOrTextureName is either the name of a sampler resource or the
	// name of the texture the sampler is assigned to.
	SamplerOrTextureName string

	Desc SamplerDesc
}

// InvalidImmutableSamplerIndex is returned when no immutable sampler matches.
const InvalidImmutableSamplerIndex = ^uint32(0)

// SamplerPolicy selects how immutable samplers are matched to texture resources.
type SamplerPolicy uint8

const (
	// SamplerPolicyCombinedSuffix assigns immutable samplers to texture SRVs
	// flagged as combined samplers only. Sampler resources match by their
	// own name or by texture name plus the combined sampler suffix.
	SamplerPolicyCombinedSuffix SamplerPolicy = iota

	// SamplerPolicyTextureName assigns immutable samplers to every texture
	// SRV by texture name, ignoring the suffix. OpenGL has no separate
	// sampler objects in shaders, so immutable samplers are declared for
	// textures directly.
	SamplerPolicyTextureName
)

func (p SamplerPolicy) String() string {
	switch p {
	case SamplerPolicyCombinedSuffix:
		return "CombinedSuffix"
	case SamplerPolicyTextureName:
		return "TextureName"
	default:
		return "SamplerPolicy(?)"
	}
}

// FindImmutableSampler returns the index of the immutable sampler assigned
// to the resource name visible in stages. When suffix is non-empty, a
// resource named after the immutable sampler plus the suffix also matches;
// this is how separate samplers of combined texture samplers find the
// sampler declared for their texture. Returns InvalidImmutableSamplerIndex
// when nothing matches.
func FindImmutableSampler(samplers []ImmutableSamplerDesc, stages ShaderStages, name, suffix string) uint32 {
	for i := range samplers {
		s := &samplers[i]
		if !s.ShaderStages.Overlaps(stages) {
			continue
		}
		if streqSuff(name, s.SamplerOrTextureName, suffix) {
			return uint32(i) //nolint:gosec // G115: sampler count is bounded by signature size
		}
	}
	return InvalidImmutableSamplerIndex
}

// streqSuff reports whether ref equals str, or str followed by suffix.
func streqSuff(ref, str, suffix string) bool {
	if ref == str {
		return true
	}
	return suffix != "" && strings.HasPrefix(ref, str) && ref[len(str):] == suffix
}

// ImmutableSampler is a sampler object created for a signature.
type ImmutableSampler struct {
	desc   SamplerDesc
	label  string
	native any
}

// NewImmutableSampler wraps a backend sampler object. native may be nil
// for backends that resolve samplers when programs are linked.
func NewImmutableSampler(label string, desc SamplerDesc, native any) *ImmutableSampler {
	return &ImmutableSampler{desc: desc, label: label, native: native}
}

// Label implements Resource.
func (s *ImmutableSampler) Label() string { return s.label }

// Desc returns the sampler state.
func (s *ImmutableSampler) Desc() SamplerDesc { return s.desc }

// Native returns the backend sampler object.
func (s *ImmutableSampler) Native() any { return s.native }

// SamplerFactory creates the sampler objects of a signature's immutable samplers.
type SamplerFactory interface {
	CreateSampler(label string, desc SamplerDesc) (*ImmutableSampler, error)
	DestroySampler(s *ImmutableSampler)
}

// inertSamplerFactory creates samplers with no native object.
type inertSamplerFactory struct{}

func (inertSamplerFactory) CreateSampler(label string, desc SamplerDesc) (*ImmutableSampler, error) {
	return NewImmutableSampler(label, desc, nil), nil
}

func (inertSamplerFactory) DestroySampler(*ImmutableSampler) {}
