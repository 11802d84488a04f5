// Package wgslreflect reflects the resources of WGSL shaders through the
// naga IR.
package wgslreflect

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

var (
	// ErrNoEntryPoint is returned when a module declares no entry points.
	ErrNoEntryPoint = errors.New("wgslreflect: module has no entry points")

	// ErrUnsupportedStage is returned for entry points of unknown stages.
	ErrUnsupportedStage = errors.New("wgslreflect: unsupported shader stage")
)

// Global is a resource variable with an explicit @group/@binding.
type Global struct {
	Group   uint32
	Binding uint32

	// Resource is the reflected descriptor. Its Name is the WGSL variable name.
	Resource gpubind.ShaderResource
}

// Module is a reflected shader module.
type Module struct {
	ir      *ir.Module
	globals []Global
	shaders []*gpubind.Shader
	// uses maps an entry point name to indices into globals.
	uses map[string][]int
}

// Reflect parses WGSL source and reflects every entry point.
func Reflect(source string) (*Module, error) {
	ast, err := naga.Parse(source)
	if err != nil {
		return nil, fmt.Errorf("wgslreflect: parse: %w", err)
	}
	module, err := naga.Lower(ast)
	if err != nil {
		return nil, fmt.Errorf("wgslreflect: lower: %w", err)
	}
	return FromIR(module)
}

// FromIR reflects an already lowered module.
func FromIR(module *ir.Module) (*Module, error) {
	if len(module.EntryPoints) == 0 {
		return nil, ErrNoEntryPoint
	}

	m := &Module{ir: module, uses: make(map[string][]int)}

	// globalIndex maps a GlobalVariable handle to its position in m.globals.
	globalIndex := make(map[uint32]int)
	for h := range module.GlobalVariables {
		gv := &module.GlobalVariables[h]
		if gv.Binding == nil {
			continue
		}
		res, ok := classify(module, gv)
		if !ok {
			continue
		}
		globalIndex[uint32(h)] = len(m.globals) //nolint:gosec // G115: handle is a slice index
		m.globals = append(m.globals, Global{
			Group:    gv.Binding.Group,
			Binding:  gv.Binding.Binding,
			Resource: res,
		})
	}

	// Helper functions are not traced through calls. Their globals count as
	// used by every entry point.
	entryFuncs := make(map[int]bool, len(module.EntryPoints))
	for _, ep := range module.EntryPoints {
		entryFuncs[int(ep.Function)] = true
	}
	var shared []uint32
	for f := range module.Functions {
		if !entryFuncs[f] {
			shared = append(shared, referencedGlobals(&module.Functions[f])...)
		}
	}

	for i := range module.EntryPoints {
		ep := module.EntryPoints[i]
		stage := stageOf(&ep)
		if stage == gpubind.StageNone {
			return nil, fmt.Errorf("%w: entry point %q", ErrUnsupportedStage, ep.Name)
		}
		if int(ep.Function) >= len(module.Functions) {
			return nil, fmt.Errorf("wgslreflect: entry point %q: function %d out of range", ep.Name, ep.Function)
		}
		refs := append(referencedGlobals(&module.Functions[ep.Function]), shared...)

		var used []int
		for _, h := range refs {
			if i, ok := globalIndex[h]; ok && !slices.Contains(used, i) {
				used = append(used, i)
			}
		}
		slices.Sort(used)
		m.uses[ep.Name] = used

		sh := &gpubind.Shader{Name: ep.Name, Stage: stage}
		for _, i := range used {
			sh.Resources = append(sh.Resources, m.globals[i].Resource)
		}
		m.shaders = append(m.shaders, sh)
	}
	return m, nil
}

// IR returns the lowered naga module.
func (m *Module) IR() *ir.Module { return m.ir }

// Globals returns every bound resource variable of the module.
func (m *Module) Globals() []Global { return m.globals }

// Shaders returns one reflected shader per entry point, in declaration order.
func (m *Module) Shaders() []*gpubind.Shader { return m.shaders }

// Shader returns the reflection of the named entry point.
func (m *Module) Shader(entry string) (*gpubind.Shader, bool) {
	for _, sh := range m.shaders {
		if sh.Name == entry {
			return sh, true
		}
	}
	return nil, false
}

// EntryGlobals returns the bound variables the named entry point uses.
func (m *Module) EntryGlobals(entry string) []Global {
	used := m.uses[entry]
	out := make([]Global, 0, len(used))
	for _, i := range used {
		out = append(out, m.globals[i])
	}
	return out
}

// Stages returns the union of the stages of all entry points.
func (m *Module) Stages() gpubind.ShaderStages {
	var s gpubind.ShaderStages
	for _, sh := range m.shaders {
		s |= sh.Stage
	}
	return s
}

func referencedGlobals(fn *ir.Function) []uint32 {
	var out []uint32
	for _, e := range fn.Expressions {
		if g, ok := e.Kind.(ir.ExprGlobalVariable); ok {
			out = append(out, uint32(g.Variable))
		}
	}
	return out
}

func stageOf(ep *ir.EntryPoint) gpubind.ShaderStages {
	switch ep.Stage {
	case ir.StageVertex:
		return gpubind.StageVertex
	case ir.StageFragment:
		return gpubind.StageFragment
	case ir.StageCompute:
		return gpubind.StageCompute
	default:
		return gpubind.StageNone
	}
}
