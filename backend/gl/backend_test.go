package gl

import (
	"errors"
	"testing"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/gpubind/backend"
)

func TestRegistered(t *testing.T) {
	if !backend.IsRegistered(backend.BackendGL) {
		t.Fatal("gl backend should be registered on import")
	}
	b, err := backend.Open(backend.BackendGL)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Release()
	if _, ok := b.(*Backend); !ok {
		t.Fatalf("Open() = %T, want *Backend", b)
	}
	if b.Name() != backend.BackendGL {
		t.Errorf("Name() = %q", b.Name())
	}
}

func TestSamplerPolicy(t *testing.T) {
	if got := New(backend.NewConfig()).SamplerPolicy(); got != gpubind.SamplerPolicyTextureName {
		t.Errorf("default policy = %s, want TextureName", got)
	}
	cfg := backend.NewConfig(backend.WithSamplerPolicy(gpubind.SamplerPolicyCombinedSuffix))
	if got := New(cfg).SamplerPolicy(); got != gpubind.SamplerPolicyCombinedSuffix {
		t.Errorf("overridden policy = %s", got)
	}
}

func frameDesc() gpubind.SignatureDesc {
	return gpubind.SignatureDesc{
		Name: "frame",
		Resources: []gpubind.ResourceDesc{
			{Name: "Camera", ShaderStages: gpubind.StageVertex | gpubind.StageFragment, ArraySize: 1, Type: gpubind.ResourceConstantBuffer},
			{Name: "albedo", ShaderStages: gpubind.StageFragment, ArraySize: 1, Type: gpubind.ResourceTextureSRV, VarType: gpubind.VarMutable},
			{Name: "particles", ShaderStages: gpubind.StageFragment, ArraySize: 1, Type: gpubind.ResourceBufferUAV, VarType: gpubind.VarMutable},
		},
		ImmutableSamplers: []gpubind.ImmutableSamplerDesc{
			{ShaderStages: gpubind.StageFragment, SamplerOrTextureName: "albedo", Desc: gpubind.DefaultSamplerDesc()},
		},
	}
}

func TestBuildSignature(t *testing.T) {
	b := New(backend.NewConfig())
	sig, err := b.BuildSignature(frameDesc())
	if err != nil {
		t.Fatalf("BuildSignature() error = %v", err)
	}
	defer sig.Release()

	if sig.Backend() != backend.BackendGL {
		t.Errorf("Backend() = %q", sig.Backend())
	}
	i, ok := sig.FindResource(gpubind.StageFragment, "albedo")
	if !ok {
		t.Fatal("albedo not found")
	}
	// The immutable sampler is assigned by texture name without a combined flag.
	if !sig.Attribs(i).ImmutableSamplerAssigned {
		t.Error("albedo should carry the immutable sampler")
	}

	if _, err := b.BuildSignature(gpubind.SignatureDesc{
		Name: "dup",
		Resources: []gpubind.ResourceDesc{
			{Name: "a", ShaderStages: gpubind.StageVertex, ArraySize: 1, Type: gpubind.ResourceConstantBuffer},
			{Name: "a", ShaderStages: gpubind.StageVertex, ArraySize: 1, Type: gpubind.ResourceConstantBuffer},
		},
	}); !errors.Is(err, gpubind.ErrDuplicateResource) {
		t.Errorf("error = %v, want %v", err, gpubind.ErrDuplicateResource)
	}
}

func TestBuildImplicitSignature(t *testing.T) {
	b := New(backend.NewConfig())
	shaders := []*gpubind.Shader{{
		Name:  "fs",
		Stage: gpubind.StageFragment,
		Resources: []gpubind.ShaderResource{
			{Name: "tex", Type: gpubind.ResourceTextureSRV, ArraySize: 1, Dimension: gpubind.DimTex2D},
		},
	}}
	sig, err := b.BuildImplicitSignature("implicit", gpubind.LayoutDesc{}, shaders)
	if err != nil {
		t.Fatalf("BuildImplicitSignature() error = %v", err)
	}
	if sig.Backend() != backend.BackendGL || sig.SamplerPolicy() != gpubind.SamplerPolicyTextureName {
		t.Errorf("signature built with backend %q policy %s", sig.Backend(), sig.SamplerPolicy())
	}
}

func glLayout(t *testing.T, b *Backend) *gpubind.PipelineLayout {
	t.Helper()
	sig, err := b.BuildSignature(frameDesc())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(sig.Release)
	layout, err := gpubind.NewPipelineLayout(sig)
	if err != nil {
		t.Fatal(err)
	}
	return layout
}

func linkedProgram(t *testing.T, caps Capabilities, ssboBinding uint32) *Program {
	t.Helper()
	prog, err := NewProgram(ProgramInfo{
		Label: "lit",
		Resources: []ProgramResource{
			{Name: "Camera", Range: gpubind.RangeUniformBuffer, ArraySize: 1, Binding: 7},
			{Name: "albedo", Range: gpubind.RangeTexture, ArraySize: 1, Binding: 9},
			{Name: "particles", Range: gpubind.RangeStorageBuffer, ArraySize: 1, Binding: ssboBinding},
		},
	}, caps)
	if err != nil {
		t.Fatalf("NewProgram() error = %v", err)
	}
	return prog
}

func TestApplyBindings(t *testing.T) {
	b := New(backend.NewConfig())
	layout := glLayout(t, b)
	stages := gpubind.StageVertex | gpubind.StageFragment

	tests := []struct {
		name string
		caps Capabilities
		ssbo uint32
		want gpubind.BindReport
	}{
		{"desktop", DesktopCapabilities(), 4, gpubind.BindReport{Rebound: 3}},
		{"es fixed storage mismatch", ESCapabilities(), 4, gpubind.BindReport{Rebound: 2, Mismatched: 1}},
		{"es fixed storage match", ESCapabilities(), 0, gpubind.BindReport{Rebound: 2, Matched: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prog := linkedProgram(t, tt.caps, tt.ssbo)
			if got := b.ApplyBindings(prog, layout, stages); got != tt.want {
				t.Errorf("ApplyBindings() = %+v, want %+v", got, tt.want)
			}
			if got, _ := prog.CurrentBinding(gpubind.RangeUniformBuffer, 0); got != 0 {
				t.Errorf("Camera binding = %d, want 0", got)
			}
		})
	}
}

func TestPipelineAndValidate(t *testing.T) {
	b := New(backend.NewConfig(backend.WithStrictValidation(true)))
	layout := glLayout(t, b)
	shaders := []*gpubind.Shader{{
		Name:  "fs",
		Stage: gpubind.StageFragment,
		Resources: []gpubind.ShaderResource{
			{Name: "albedo", Type: gpubind.ResourceTextureSRV, ArraySize: 1, Dimension: gpubind.DimTex2D},
		},
	}}
	p, err := b.NewPipeline("lit", layout, shaders)
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	srb := b.NewShaderResourceBinding(layout.Signature(0), true)
	defer srb.Release()
	caches := []*gpubind.ResourceCache{srb.Cache()}
	if p.StrictValidation() && b.Validate(p, caches) {
		t.Error("Validate() = true with albedo unbound")
	}
	if err := srb.SetVariable(gpubind.StageFragment, "albedo", 0, &texView{}); err != nil {
		t.Fatal(err)
	}
	if !b.Validate(p, caches) {
		t.Error("Validate() = false with albedo bound")
	}
}

type texView struct{}

func (texView) Label() string                         { return "albedo" }
func (texView) Dimension() gpubind.ResourceDimension { return gpubind.DimTex2D }
func (texView) Multisampled() bool                    { return false }
