package gl

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/gpubind/internal/wgslreflect"
)

// Errors returned when building programs.
var (
	ErrInvalidProgram = errors.New("gl: invalid program")
	ErrNoLocation     = errors.New("gl: no such location")
	ErrFixedBinding   = errors.New("gl: binding cannot be changed after linking")
)

// Capabilities describe which bindings a context can change after a
// program is linked. Uniform blocks and sampler uniforms can always be
// rebound.
type Capabilities struct {
	// StorageBlockBinding reports glShaderStorageBlockBinding support.
	StorageBlockBinding bool
	// ImageUniformBinding reports that image units can be set through glUniform1i.
	ImageUniformBinding bool
}

// DesktopCapabilities is an OpenGL 4.3+ core context.
func DesktopCapabilities() Capabilities {
	return Capabilities{StorageBlockBinding: true, ImageUniformBinding: true}
}

// ESCapabilities is an OpenGL ES 3.1 context, where storage block and
// image bindings are fixed in the shader source.
func ESCapabilities() Capabilities {
	return Capabilities{}
}

// ProgramResource is an active resource of a linked program.
type ProgramResource struct {
	Name  string
	Range gpubind.BindingRange
	// ArraySize is the number of elements; 0 is treated as 1.
	ArraySize uint32
	// Binding is the binding of element 0 after linking.
	Binding uint32
}

// ProgramInfo lists the active resources of a linked program.
type ProgramInfo struct {
	Label     string
	Resources []ProgramResource
}

// Program models the binding state of a linked program. Every array
// element has its own location, numbered per range in declaration order.
type Program struct {
	label     string
	caps      Capabilities
	locations [gpubind.NumBindingRanges]map[string]uint32
	bindings  [gpubind.NumBindingRanges][]uint32
}

var _ gpubind.Program = (*Program)(nil)

// NewProgram creates a program from its active resources.
func NewProgram(info ProgramInfo, caps Capabilities) (*Program, error) {
	p := &Program{label: info.Label, caps: caps}
	for r := range p.locations {
		p.locations[r] = make(map[string]uint32)
	}
	for _, res := range info.Resources {
		if res.Range >= gpubind.NumBindingRanges {
			return nil, fmt.Errorf("%w: %s: resource %q has no binding range", ErrInvalidProgram, info.Label, res.Name)
		}
		locs := p.locations[res.Range]
		if _, dup := locs[res.Name]; dup {
			return nil, fmt.Errorf("%w: %s: resource %q declared twice", ErrInvalidProgram, info.Label, res.Name)
		}
		n := max(res.ArraySize, 1)
		locs[res.Name] = uint32(len(p.bindings[res.Range])) //nolint:gosec // G115: bounded by resource count
		for i := uint32(0); i < n; i++ {
			p.bindings[res.Range] = append(p.bindings[res.Range], res.Binding+i)
		}
	}
	return p, nil
}

// ProgramFromModule links the entry points of a reflected WGSL module into
// a program as GenerateGLSL with bases would produce it: every resource is
// bound at its @binding plus the base of its range. Samplers are folded
// into the textures they sample and have no location of their own.
func ProgramFromModule(label string, m *wgslreflect.Module, entries []string, base gpubind.BindingTable, caps Capabilities) (*Program, error) {
	info := ProgramInfo{Label: label}
	seen := make(map[string]bool)
	for _, entry := range entries {
		if _, ok := m.Shader(entry); !ok {
			return nil, fmt.Errorf("%w: %s: no entry point %q", ErrInvalidProgram, label, entry)
		}
		for _, g := range m.EntryGlobals(entry) {
			res := g.Resource
			if res.Type == gpubind.ResourceSampler || seen[res.Name] {
				continue
			}
			seen[res.Name] = true
			rng, err := gpubind.ClassifyResource(&gpubind.ResourceDesc{Type: res.Type, Flags: res.Flags})
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", ErrInvalidProgram, label, err)
			}
			info.Resources = append(info.Resources, ProgramResource{
				Name:      res.Name,
				Range:     rng,
				ArraySize: res.ArraySize,
				Binding:   g.Binding + base[rng],
			})
		}
	}
	return NewProgram(info, caps)
}

// Label implements gpubind.Program.
func (p *Program) Label() string { return p.label }

// Location implements gpubind.Program.
func (p *Program) Location(r gpubind.BindingRange, name string) (uint32, bool) {
	if r >= gpubind.NumBindingRanges {
		return 0, false
	}
	loc, ok := p.locations[r][name]
	return loc, ok
}

// CanRebind implements gpubind.Program.
func (p *Program) CanRebind(r gpubind.BindingRange) bool {
	switch r {
	case gpubind.RangeUniformBuffer, gpubind.RangeTexture:
		return true
	case gpubind.RangeImage:
		return p.caps.ImageUniformBinding
	case gpubind.RangeStorageBuffer:
		return p.caps.StorageBlockBinding
	default:
		return false
	}
}

// Rebind implements gpubind.Program.
func (p *Program) Rebind(r gpubind.BindingRange, loc, binding uint32) error {
	if !p.CanRebind(r) {
		return fmt.Errorf("%w: %s range in %s", ErrFixedBinding, r, p.label)
	}
	if int(loc) >= len(p.bindings[r]) {
		return fmt.Errorf("%w: %s location %d in %s", ErrNoLocation, r, loc, p.label)
	}
	p.bindings[r][loc] = binding
	return nil
}

// CurrentBinding implements gpubind.Program.
func (p *Program) CurrentBinding(r gpubind.BindingRange, loc uint32) (uint32, bool) {
	if r >= gpubind.NumBindingRanges || int(loc) >= len(p.bindings[r]) {
		return 0, false
	}
	return p.bindings[r][loc], true
}
