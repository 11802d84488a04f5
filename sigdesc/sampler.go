package sigdesc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/gpubind"
)

// ErrBadSampler is returned for unknown filter or address mode names.
var ErrBadSampler = errors.New("sigdesc: bad sampler")

// ImmutableSampler describes a sampler baked into a signature. Filter and
// Address set every axis at once; the per-axis keys override them. Unset
// fields keep the values of gpubind.DefaultSamplerDesc.
type ImmutableSampler struct {
	// Name is the sampler or texture the sampler is assigned to.
	Name   string               `toml:"name" yaml:"name"`
	Stages gpubind.ShaderStages `toml:"stages" yaml:"stages"`

	Filter    string `toml:"filter" yaml:"filter"`
	MinFilter string `toml:"min_filter" yaml:"min_filter"`
	MagFilter string `toml:"mag_filter" yaml:"mag_filter"`
	MipFilter string `toml:"mip_filter" yaml:"mip_filter"`

	Address  string `toml:"address" yaml:"address"`
	AddressU string `toml:"address_u" yaml:"address_u"`
	AddressV string `toml:"address_v" yaml:"address_v"`
	AddressW string `toml:"address_w" yaml:"address_w"`

	MaxAnisotropy uint16 `toml:"max_anisotropy" yaml:"max_anisotropy"`
}

var filterModes = map[string]gputypes.FilterMode{
	"nearest": gputypes.FilterModeNearest,
	"linear":  gputypes.FilterModeLinear,
}

var addressModes = map[string]gputypes.AddressMode{
	"repeat":        gputypes.AddressModeRepeat,
	"mirror-repeat": gputypes.AddressModeMirrorRepeat,
	"mirror":        gputypes.AddressModeMirrorRepeat,
	"clamp":         gputypes.AddressModeClampToEdge,
	"clamp-to-edge": gputypes.AddressModeClampToEdge,
}

func immutableSamplers(in []ImmutableSampler) ([]gpubind.ImmutableSamplerDesc, error) {
	var out []gpubind.ImmutableSamplerDesc
	for i := range in {
		d, err := in[i].desc()
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, nil
}

func (s *ImmutableSampler) desc() (gpubind.ImmutableSamplerDesc, error) {
	d := gpubind.DefaultSamplerDesc()
	if s.MaxAnisotropy != 0 {
		d.MaxAnisotropy = s.MaxAnisotropy
	}

	filters := []struct {
		dst   []*gputypes.FilterMode
		value string
	}{
		{[]*gputypes.FilterMode{&d.MinFilter, &d.MagFilter, &d.MipFilter}, s.Filter},
		{[]*gputypes.FilterMode{&d.MinFilter}, s.MinFilter},
		{[]*gputypes.FilterMode{&d.MagFilter}, s.MagFilter},
		{[]*gputypes.FilterMode{&d.MipFilter}, s.MipFilter},
	}
	for _, f := range filters {
		if f.value == "" {
			continue
		}
		m, ok := filterModes[strings.ToLower(f.value)]
		if !ok {
			return gpubind.ImmutableSamplerDesc{}, fmt.Errorf("%w %q: filter %q", ErrBadSampler, s.Name, f.value)
		}
		for _, p := range f.dst {
			*p = m
		}
	}

	addresses := []struct {
		dst   []*gputypes.AddressMode
		value string
	}{
		{[]*gputypes.AddressMode{&d.AddressU, &d.AddressV, &d.AddressW}, s.Address},
		{[]*gputypes.AddressMode{&d.AddressU}, s.AddressU},
		{[]*gputypes.AddressMode{&d.AddressV}, s.AddressV},
		{[]*gputypes.AddressMode{&d.AddressW}, s.AddressW},
	}
	for _, a := range addresses {
		if a.value == "" {
			continue
		}
		m, ok := addressModes[strings.ToLower(a.value)]
		if !ok {
			return gpubind.ImmutableSamplerDesc{}, fmt.Errorf("%w %q: address mode %q", ErrBadSampler, s.Name, a.value)
		}
		for _, p := range a.dst {
			*p = m
		}
	}

	return gpubind.ImmutableSamplerDesc{
		ShaderStages:         s.Stages,
		SamplerOrTextureName: s.Name,
		Desc:                 d,
	}, nil
}
