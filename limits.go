package gpubind

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
)

// NonUniformIndexing describes device support for indexing resource arrays
// with non-uniform values.
type NonUniformIndexing uint8

const (
	NonUniformUnsupported NonUniformIndexing = iota
	NonUniformEmulated
	NonUniformNative
)

// ResourceLimits bound the descriptors a pipeline layout may use. A zero
// limit is not checked.
type ResourceLimits struct {
	MaxBindGroups uint32

	MaxUniformBuffersPerStage  uint32
	MaxStorageBuffersPerStage  uint32
	MaxSampledTexturesPerStage uint32
	MaxStorageTexturesPerStage uint32
	MaxSamplersPerStage        uint32

	NonUniformIndexing NonUniformIndexing
}

// LimitsFromGPU converts WebGPU device limits.
func LimitsFromGPU(l gputypes.Limits) ResourceLimits {
	return ResourceLimits{
		MaxBindGroups:              l.MaxBindGroups,
		MaxUniformBuffersPerStage:  l.MaxUniformBuffersPerShaderStage,
		MaxStorageBuffersPerStage:  l.MaxStorageBuffersPerShaderStage,
		MaxSampledTexturesPerStage: l.MaxSampledTexturesPerShaderStage,
		MaxStorageTexturesPerStage: l.MaxStorageTexturesPerShaderStage,
		MaxSamplersPerStage:        l.MaxSamplersPerShaderStage,
		NonUniformIndexing:         NonUniformUnsupported,
	}
}

type descriptorCategory uint8

const (
	catUniformBuffer descriptorCategory = iota
	catStorageBuffer
	catSampledTexture
	catStorageTexture
	catSampler
	numDescriptorCategories
)

var categoryNames = [numDescriptorCategories]string{
	"uniform buffers", "storage buffers", "sampled textures", "storage textures", "samplers",
}

func categorize(rd *ResourceDesc) (descriptorCategory, bool) {
	if rd.Type == ResourceSampler {
		return catSampler, true
	}
	rng, err := ClassifyResource(rd)
	if err != nil {
		return 0, false
	}
	switch rng {
	case RangeUniformBuffer:
		return catUniformBuffer, true
	case RangeTexture:
		return catSampledTexture, true
	case RangeImage:
		return catStorageTexture, true
	default:
		return catStorageBuffer, true
	}
}

func (l *ResourceLimits) limit(c descriptorCategory) uint32 {
	switch c {
	case catUniformBuffer:
		return l.MaxUniformBuffersPerStage
	case catStorageBuffer:
		return l.MaxStorageBuffersPerStage
	case catSampledTexture:
		return l.MaxSampledTexturesPerStage
	case catStorageTexture:
		return l.MaxStorageTexturesPerStage
	default:
		return l.MaxSamplersPerStage
	}
}

// ValidateResourceLimits counts the descriptors every shader stage sees
// through layout and compares them with limits. Immutable samplers that are
// not sampler resources count as samplers. Runtime arrays produce a warning
// when the device cannot index them natively. All violations are returned
// joined.
func ValidateResourceLimits(layout *PipelineLayout, limits ResourceLimits) error {
	if !devChecksEnabled {
		return nil
	}

	var (
		counts [6][numDescriptorCategories]uint32
		errs   []error
		log    = Logger()
	)
	addStages := func(stages ShaderStages, c descriptorCategory, n uint32) {
		for bit := 0; bit < len(counts); bit++ {
			if stages&(1<<bit) != 0 {
				counts[bit][c] += n
			}
		}
	}

	if limits.MaxBindGroups != 0 && layout.SignatureCount() > limits.MaxBindGroups {
		errs = append(errs, fmt.Errorf("%w: %d bind groups, max %d", ErrResourceLimit, layout.SignatureCount(), limits.MaxBindGroups))
	}

	for i := uint32(0); i < layout.SignatureCount(); i++ {
		sig := layout.Signature(i)
		if sig == nil {
			continue
		}
		for r := range sig.desc.Resources {
			rd := &sig.desc.Resources[r]
			c, ok := categorize(rd)
			if !ok {
				continue
			}
			addStages(rd.ShaderStages, c, rd.slotCount())

			if rd.Flags&FlagRuntimeArray != 0 {
				switch limits.NonUniformIndexing {
				case NonUniformUnsupported:
					log.Warn("gpubind: runtime array declared but non-uniform indexing is not supported by the device",
						"signature", sig.Name(), "resource", rd.Name)
				case NonUniformEmulated:
					log.Warn("gpubind: non-uniform indexing of runtime arrays is emulated and may be slow",
						"signature", sig.Name(), "resource", rd.Name)
				}
			}
		}
		for s := range sig.desc.ImmutableSamplers {
			smp := &sig.desc.ImmutableSamplers[s]
			if r, ok := sig.FindResource(smp.ShaderStages, smp.SamplerOrTextureName); ok && sig.desc.Resources[r].Type == ResourceSampler {
				continue
			}
			addStages(smp.ShaderStages, catSampler, 1)
		}
	}

	for bit := range counts {
		for c := descriptorCategory(0); c < numDescriptorCategories; c++ {
			lim := limits.limit(c)
			if lim != 0 && counts[bit][c] > lim {
				errs = append(errs, fmt.Errorf("%w: %s stage uses %d %s, max %d",
					ErrResourceLimit, ShaderStages(1<<bit), counts[bit][c], categoryNames[c], lim))
			}
		}
	}
	return errors.Join(errs...)
}
