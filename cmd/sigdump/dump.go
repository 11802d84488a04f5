package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/gpubind/backend"
	"github.com/gogpu/gpubind/backend/gl"
	"github.com/gogpu/gpubind/backend/wgpu"
	"github.com/gogpu/gpubind/internal/wgslreflect"
	"github.com/gogpu/gpubind/sigdesc"
)

// options are the inputs of one dump.
type options struct {
	desc    string
	shader  string
	backend string
	glsl    string
}

// openBackend opens the named backend. The wgpu backend runs on the noop
// HAL, so layouts are computed without a GPU.
func openBackend(name string) (gpubind.Backend, func(), error) {
	if name != backend.BackendWGPU {
		b, err := backend.Open(name)
		if err != nil {
			return nil, nil, err
		}
		return b, b.Release, nil
	}

	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, nil, fmt.Errorf("noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, nil, errors.New("noop: no adapter")
	}
	dev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, nil, fmt.Errorf("noop device: %w", err)
	}
	b, err := backend.Open(backend.BackendWGPU, backend.WithHALDevice(dev.Device, dev.Queue))
	if err != nil {
		dev.Device.Destroy()
		instance.Destroy()
		return nil, nil, err
	}
	return b, func() {
		b.Release()
		dev.Device.Destroy()
		instance.Destroy()
	}, nil
}

// dump builds the signatures of the description, prints their layout and,
// with a shader, checks the shader's bindings against it.
func dump(w io.Writer, opts options) error {
	file, err := sigdesc.Load(opts.desc)
	if err != nil {
		return err
	}
	descs, err := file.SignatureDescs()
	if err != nil {
		return err
	}

	b, closeBackend, err := openBackend(opts.backend)
	if err != nil {
		return err
	}
	defer closeBackend()

	var sigs []*gpubind.Signature
	defer func() {
		for _, s := range sigs {
			s.Release()
		}
	}()
	for _, d := range descs {
		sig, err := b.BuildSignature(d)
		if err != nil {
			return err
		}
		sigs = append(sigs, sig)
	}

	var module *wgslreflect.Module
	label := strings.TrimSuffix(filepath.Base(opts.shader), filepath.Ext(opts.shader))
	if opts.shader != "" {
		src, err := os.ReadFile(opts.shader)
		if err != nil {
			return err
		}
		if module, err = wgslreflect.Reflect(string(src)); err != nil {
			return fmt.Errorf("%s: %w", opts.shader, err)
		}
		if len(sigs) == 0 {
			layout, err := file.LayoutDesc()
			if err != nil {
				return err
			}
			sig, err := b.BuildImplicitSignature(label, layout, module.Shaders())
			if err != nil {
				return err
			}
			sigs = append(sigs, sig)
		}
	}
	if len(sigs) == 0 {
		return fmt.Errorf("%s: no signatures", opts.desc)
	}

	for _, s := range sigs {
		printSignature(w, s)
	}
	layout, err := gpubind.NewPipelineLayout(sigs...)
	if err != nil {
		return err
	}
	printLayout(w, layout)

	if module == nil {
		return nil
	}
	return checkShader(w, b, label, module, layout, opts.glsl)
}

func checkShader(w io.Writer, b gpubind.Backend, label string, m *wgslreflect.Module, layout *gpubind.PipelineLayout, glslEntry string) error {
	if _, err := gpubind.NewPipeline(label, layout, m.Shaders()); err != nil {
		fmt.Fprintf(w, "pipeline %q: %v\n", label, err)
	} else {
		fmt.Fprintf(w, "pipeline %q: ok\n", label)
	}

	var prog gpubind.Program
	switch b.(type) {
	case *wgpu.Backend:
		sm, err := wgpu.ShaderModuleFromReflection(label, m)
		if err != nil {
			return err
		}
		prog = sm
	case *gl.Backend:
		var entries []string
		for _, sh := range m.Shaders() {
			entries = append(entries, sh.Name)
		}
		p, err := gl.ProgramFromModule(label, m, entries, gpubind.BindingTable{}, gl.DesktopCapabilities())
		if err != nil {
			return err
		}
		prog = p
	default:
		return fmt.Errorf("backend %q cannot check shaders", b.Name())
	}

	rep := b.ApplyBindings(prog, layout, m.Stages())
	fmt.Fprintf(w, "bindings: %d matched, %d rebound, %d mismatched, %d skipped\n",
		rep.Matched, rep.Rebound, rep.Mismatched, rep.Skipped)

	if glslEntry != "" {
		opts := gl.GLSLOptions{EntryPoint: glslEntry}
		generate := gl.GenerateGLSL
		if glb, ok := b.(*gl.Backend); ok {
			generate = glb.GLSL
		}
		src, _, err := generate(m.IR(), layout.BaseBindings(0), opts)
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		fmt.Fprint(w, src)
	}
	return nil
}

func printSignature(w io.Writer, s *gpubind.Signature) {
	fmt.Fprintf(w, "signature %q: index %d, backend %s, hash %#016x\n", s.Name(), s.BindingIndex(), s.Backend(), s.Hash())

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "  #\tname\ttype\tvar\tstages\tarray\trange\toffset\tsampler")
	for i := uint32(0); i < s.NumResources(); i++ {
		rd := s.Resource(i)
		attr := s.Attribs(i)
		fmt.Fprintf(tw, "  %d\t%s\t%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			i, rd.Name, rd.Type, rd.VarType, rd.ShaderStages, rd.ArraySize,
			rangeName(s.ResourceRange(i)), offset(attr.CacheOffset), samplerOf(s, attr))
	}
	tw.Flush()

	for i := uint32(0); i < s.NumImmutableSamplers(); i++ {
		d := s.ImmutableSamplerDesc(i)
		fmt.Fprintf(w, "  immutable sampler %d: %s (%s)\n", i, d.SamplerOrTextureName, d.ShaderStages)
	}
	fmt.Fprintf(w, "  bindings: %s (static %s)\n", s.BindingCounts(), s.StaticBindingCounts())
}

func printLayout(w io.Writer, l *gpubind.PipelineLayout) {
	fmt.Fprintf(w, "layout: %d signatures, stages %s\n", l.SignatureCount(), l.ActiveStages())
	for i := uint32(0); i < l.SignatureCount(); i++ {
		s := l.Signature(i)
		if s == nil {
			continue
		}
		fmt.Fprintf(w, "  [%d] %s base %s\n", i, s.Name(), l.BaseBindings(i))
	}
	fmt.Fprintf(w, "  total %s\n", l.TotalBindingCounts())
}

func rangeName(r gpubind.BindingRange) string {
	if r == gpubind.RangeUnknown {
		return "-"
	}
	return r.String()
}

func offset(o uint32) string {
	if o == gpubind.InvalidCacheOffset {
		return "-"
	}
	return fmt.Sprint(o)
}

func samplerOf(s *gpubind.Signature, attr gpubind.ResourceAttribs) string {
	switch {
	case attr.SamplerIndex == gpubind.InvalidSamplerIndex:
		return "-"
	case attr.ImmutableSamplerAssigned:
		return fmt.Sprintf("immutable %d", attr.SamplerIndex)
	default:
		return s.Resource(attr.SamplerIndex).Name
	}
}
