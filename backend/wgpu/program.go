package wgpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/gpubind/internal/wgslreflect"
)

// ErrFixedBinding is returned when a WGSL binding is changed after the
// module was compiled.
var ErrFixedBinding = errors.New("wgpu: WGSL bindings are fixed by @group and @binding")

// ShaderModule is a reflected WGSL module used as a program. Bindings are
// declared in the source, so a ShaderModule can only be checked against a
// pipeline layout, never rebound.
type ShaderModule struct {
	label   string
	module  *wgslreflect.Module
	entries []string
}

// NewShaderModule reflects source. With no entries, every entry point of
// the module belongs to the program.
func NewShaderModule(label, source string, entries ...string) (*ShaderModule, error) {
	m, err := wgslreflect.Reflect(source)
	if err != nil {
		return nil, err
	}
	return ShaderModuleFromReflection(label, m, entries...)
}

// ShaderModuleFromReflection wraps an already reflected module.
func ShaderModuleFromReflection(label string, m *wgslreflect.Module, entries ...string) (*ShaderModule, error) {
	if len(entries) == 0 {
		for _, sh := range m.Shaders() {
			entries = append(entries, sh.Name)
		}
	}
	for _, e := range entries {
		if _, ok := m.Shader(e); !ok {
			return nil, fmt.Errorf("wgpu: module %q has no entry point %q", label, e)
		}
	}
	return &ShaderModule{label: label, module: m, entries: entries}, nil
}

// Shaders returns the reflection of the program's entry points.
func (s *ShaderModule) Shaders() []*gpubind.Shader {
	out := make([]*gpubind.Shader, 0, len(s.entries))
	for _, e := range s.entries {
		sh, _ := s.module.Shader(e)
		out = append(out, sh)
	}
	return out
}

// Module returns the reflected module.
func (s *ShaderModule) Module() *wgslreflect.Module { return s.module }

// Label implements gpubind.Program.
func (s *ShaderModule) Label() string { return s.label }

// Location returns the index of the global called name among the module's
// bound variables.
func (s *ShaderModule) Location(r gpubind.BindingRange, name string) (uint32, bool) {
	for i, g := range s.module.Globals() {
		if g.Resource.Name == name && globalRange(&g) == r {
			return uint32(i), true //nolint:gosec // G115: global count fits uint32
		}
	}
	return 0, false
}

// CanRebind implements gpubind.Program. WGSL bindings never change.
func (s *ShaderModule) CanRebind(gpubind.BindingRange) bool { return false }

// Rebind implements gpubind.Program and always fails.
func (s *ShaderModule) Rebind(gpubind.BindingRange, uint32, uint32) error { return ErrFixedBinding }

// CurrentBinding returns the @binding of the global at loc.
func (s *ShaderModule) CurrentBinding(r gpubind.BindingRange, loc uint32) (uint32, bool) {
	globals := s.module.Globals()
	if int(loc) >= len(globals) || globalRange(&globals[loc]) != r {
		return 0, false
	}
	return globals[loc].Binding, true
}

func globalRange(g *wgslreflect.Global) gpubind.BindingRange {
	rd := gpubind.ResourceDesc{
		Name:      g.Resource.Name,
		Type:      g.Resource.Type,
		Flags:     g.Resource.Flags,
		ArraySize: g.Resource.ArraySize,
	}
	r, err := gpubind.ClassifyResource(&rd)
	if err != nil {
		return gpubind.RangeUnknown
	}
	return r
}

// checkModule compares the @group and @binding of every variable the
// program uses with the binding the layout assigns it. WGSL bindings
// cannot be changed, so differences are only reported.
func (b *Backend) checkModule(sm *ShaderModule, layout *gpubind.PipelineLayout, stages gpubind.ShaderStages) gpubind.BindReport {
	var rep gpubind.BindReport
	log := b.log()
	seen := make(map[wgslreflect.Global]bool)

	for _, sh := range sm.Shaders() {
		if !sh.Stage.Overlaps(stages) {
			continue
		}
		for _, g := range sm.module.EntryGlobals(sh.Name) {
			if seen[g] {
				continue
			}
			seen[g] = true

			attr := layout.GetResourceAttribution(g.Resource.Name, sh.Stage)
			if !attr.IsValid() {
				log.Warn("wgpu: variable is not declared in the pipeline layout",
					"program", sm.label, "variable", g.Resource.Name, "stage", sh.Stage.String())
				rep.Skipped++
				continue
			}

			gl, _, err := b.layoutFor(attr.Signature)
			if err != nil {
				log.Warn("wgpu: bind group layout unavailable",
					"program", sm.label, "signature", attr.Signature.Name(), "error", err)
				rep.Skipped++
				continue
			}
			want := gl.ImmutableSamplerBinding(attr.ImmutableSamplerIndex)
			if !attr.IsImmutableSampler() {
				want = gl.Binding(attr.ResourceIndex, 0)
			}

			if g.Group == attr.SignatureIndex && g.Binding == want {
				rep.Matched++
				continue
			}
			rep.Mismatched++
			log.Warn("wgpu: binding differs from the pipeline layout",
				"program", sm.label,
				"resource", g.Resource.Name,
				"expected", fmt.Sprintf("@group(%d) @binding(%d)", attr.SignatureIndex, want),
				"actual", fmt.Sprintf("@group(%d) @binding(%d)", g.Group, g.Binding))
		}
	}
	return rep
}
