package wgpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpubind"
)

// samplerFactory creates immutable samplers on a HAL device.
type samplerFactory struct {
	device hal.Device
}

func (f samplerFactory) CreateSampler(label string, desc gpubind.SamplerDesc) (*gpubind.ImmutableSampler, error) {
	s, err := f.device.CreateSampler(samplerDescriptor(label, desc))
	if err != nil {
		return nil, fmt.Errorf("wgpu: create sampler %q: %w", label, err)
	}
	return gpubind.NewImmutableSampler(label, desc, s), nil
}

func (f samplerFactory) DestroySampler(s *gpubind.ImmutableSampler) {
	if hs, ok := s.Native().(hal.Sampler); ok && hs != nil {
		f.device.DestroySampler(hs)
	}
}

func samplerDescriptor(label string, d gpubind.SamplerDesc) *hal.SamplerDescriptor {
	return &hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: d.AddressU,
		AddressModeV: d.AddressV,
		AddressModeW: d.AddressW,
		MagFilter:    d.MagFilter,
		MinFilter:    d.MinFilter,
		MipmapFilter: d.MipFilter,
	}
}

// Sampler is a sampler object that can be bound to sampler variables.
type Sampler struct {
	label  string
	desc   gpubind.SamplerDesc
	native hal.Sampler
}

// NewSampler creates a sampler on device.
func NewSampler(device hal.Device, label string, desc gpubind.SamplerDesc) (*Sampler, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	s, err := device.CreateSampler(samplerDescriptor(label, desc))
	if err != nil {
		return nil, fmt.Errorf("wgpu: create sampler %q: %w", label, err)
	}
	return &Sampler{label: label, desc: desc, native: s}, nil
}

// Label implements gpubind.Resource.
func (s *Sampler) Label() string { return s.label }

// Desc implements gpubind.Sampler.
func (s *Sampler) Desc() gpubind.SamplerDesc { return s.desc }

// HAL returns the native sampler.
func (s *Sampler) HAL() hal.Sampler { return s.native }

// Destroy releases the native sampler.
func (s *Sampler) Destroy(device hal.Device) {
	if s.native != nil {
		device.DestroySampler(s.native)
		s.native = nil
	}
}
