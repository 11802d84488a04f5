package gpubind

import (
	"errors"
	"testing"
)

// twoGroupLayout builds a per-frame signature at index 0 and a per-material
// signature at index 1.
func twoGroupLayout(t *testing.T, opts ...SignatureOption) (*PipelineLayout, *Signature, *Signature) {
	t.Helper()
	frame := mustSignature(t, SignatureDesc{
		Name: "frame",
		Resources: []ResourceDesc{
			{Name: "Camera", ShaderStages: StageVertex | StageFragment, ArraySize: 1, Type: ResourceConstantBuffer},
			{Name: "shadow", ShaderStages: StageFragment, ArraySize: 1, Type: ResourceTextureSRV},
		},
		ImmutableSamplers: []ImmutableSamplerDesc{
			{ShaderStages: StageFragment, SamplerOrTextureName: "shadow_cmp"},
		},
	}, opts...)
	material := mustSignature(t, SignatureDesc{
		Name:         "material",
		BindingIndex: 1,
		Resources: []ResourceDesc{
			{Name: "Material", ShaderStages: StageFragment, ArraySize: 1, Type: ResourceConstantBuffer, VarType: VarMutable},
			{Name: "albedo", ShaderStages: StageFragment, ArraySize: 2, Type: ResourceTextureSRV, VarType: VarMutable},
			{Name: "lights", ShaderStages: StageFragment, Type: ResourceBufferSRV, VarType: VarMutable, Flags: FlagRuntimeArray},
		},
	}, opts...)
	layout, err := NewPipelineLayout(material, frame)
	if err != nil {
		t.Fatalf("NewPipelineLayout() error = %v", err)
	}
	return layout, frame, material
}

func TestPipelineLayoutBases(t *testing.T) {
	layout, frame, material := twoGroupLayout(t)

	if layout.SignatureCount() != 2 {
		t.Fatalf("SignatureCount() = %d, want 2", layout.SignatureCount())
	}
	if layout.Signature(0) != frame || layout.Signature(1) != material {
		t.Error("signatures not placed by binding index")
	}
	if got := layout.BaseBindings(0); got != (BindingTable{}) {
		t.Errorf("BaseBindings(0) = %v", got)
	}
	if got, want := layout.BaseBindings(1), frame.BindingCounts(); got != want {
		t.Errorf("BaseBindings(1) = %v, want %v", got, want)
	}
	if got, want := layout.TotalBindingCounts(), (BindingTable{2, 3, 0, 1}); got != want {
		t.Errorf("TotalBindingCounts() = %v, want %v", got, want)
	}
	if got, want := layout.ActiveStages(), StageVertex|StageFragment; got != want {
		t.Errorf("ActiveStages() = %s", got)
	}
}

func TestPipelineLayoutSparse(t *testing.T) {
	sig := mustSignature(t, SignatureDesc{
		Name:         "late",
		BindingIndex: 2,
		Resources:    []ResourceDesc{{Name: "cb", ShaderStages: StageCompute, ArraySize: 1, Type: ResourceConstantBuffer}},
	})
	layout, err := NewPipelineLayout(nil, sig)
	if err != nil {
		t.Fatalf("NewPipelineLayout() error = %v", err)
	}
	if layout.SignatureCount() != 3 || layout.Signature(0) != nil || layout.Signature(2) != sig {
		t.Errorf("unexpected placement: count=%d", layout.SignatureCount())
	}
	attr := layout.GetResourceAttribution("cb", StageCompute)
	if !attr.IsValid() || attr.SignatureIndex != 2 {
		t.Errorf("attribution = %+v", attr)
	}
}

func TestPipelineLayoutErrors(t *testing.T) {
	a := mustSignature(t, SignatureDesc{Name: "a"})
	b := mustSignature(t, SignatureDesc{Name: "b"})
	if _, err := NewPipelineLayout(a, b); !errors.Is(err, ErrDuplicateBindingIndex) {
		t.Errorf("error = %v, want %v", err, ErrDuplicateBindingIndex)
	}

	gl := mustSignature(t, SignatureDesc{Name: "gl"}, WithBackend("gl"))
	wgpu := mustSignature(t, SignatureDesc{Name: "wgpu", BindingIndex: 1}, WithBackend("wgpu"))
	if _, err := NewPipelineLayout(gl, wgpu); !errors.Is(err, ErrBackendMismatch) {
		t.Errorf("error = %v, want %v", err, ErrBackendMismatch)
	}
}

func TestGetResourceAttribution(t *testing.T) {
	layout, frame, material := twoGroupLayout(t)

	tests := []struct {
		name      string
		stage     ShaderStages
		sig       *Signature
		sigIndex  uint32
		immutable bool
	}{
		{"Camera", StageVertex, frame, 0, false},
		{"shadow", StageFragment, frame, 0, false},
		{"shadow_cmp", StageFragment, frame, 0, true},
		{"albedo", StageFragment, material, 1, false},
		{"lights", StageFragment, material, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := layout.GetResourceAttribution(tt.name, tt.stage)
			if !attr.IsValid() {
				t.Fatal("attribution is invalid")
			}
			if attr.Signature != tt.sig || attr.SignatureIndex != tt.sigIndex {
				t.Errorf("resolved to %s@%d, want %s@%d", attr.Signature.Name(), attr.SignatureIndex, tt.sig.Name(), tt.sigIndex)
			}
			if attr.IsImmutableSampler() != tt.immutable {
				t.Errorf("IsImmutableSampler() = %v", attr.IsImmutableSampler())
			}
		})
	}

	if attr := layout.GetResourceAttribution("albedo", StageVertex); attr.IsValid() {
		t.Error("albedo should not resolve for the vertex stage")
	}
	if attr := layout.GetResourceAttribution("nothing", StageAll); attr.IsValid() || attr.Signature != nil {
		t.Errorf("unknown name resolved: %+v", attr)
	}
}

func TestPipelineLayoutCompatibility(t *testing.T) {
	a, _, _ := twoGroupLayout(t)
	b, _, _ := twoGroupLayout(t)
	if !a.IsCompatibleWith(b) {
		t.Error("identical layouts should be compatible")
	}

	only, err := NewPipelineLayout(a.Signature(0))
	if err != nil {
		t.Fatal(err)
	}
	if a.IsCompatibleWith(only) || only.IsCompatibleWith(a) {
		t.Error("layout missing a signature should not be compatible")
	}
}

func pipelineShaders() []*Shader {
	return []*Shader{
		{
			Name:      "vs",
			Stage:     StageVertex,
			Resources: []ShaderResource{{Name: "Camera", Type: ResourceConstantBuffer, ArraySize: 1}},
		},
		{
			Name:  "fs",
			Stage: StageFragment,
			Resources: []ShaderResource{
				{Name: "Camera", Type: ResourceConstantBuffer, ArraySize: 1},
				{Name: "Material", Type: ResourceConstantBuffer, ArraySize: 1},
				{Name: "albedo", Type: ResourceTextureSRV, ArraySize: 2, Dimension: DimTex2D},
				{Name: "shadow", Type: ResourceTextureSRV, ArraySize: 1, Dimension: DimTex2D},
				{Name: "shadow_cmp", Type: ResourceSampler, ArraySize: 1},
				{Name: "lights", Type: ResourceBufferSRV, ArraySize: 0},
			},
		},
	}
}

func TestNewPipeline(t *testing.T) {
	layout, frame, material := twoGroupLayout(t)
	p, err := NewPipeline("lit", layout, pipelineShaders())
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	if p.Name() != "lit" || p.Layout() != layout || len(p.Shaders()) != 2 {
		t.Error("accessors do not return construction values")
	}
	if p.ActiveStages() != StageVertex|StageFragment {
		t.Errorf("ActiveStages() = %s", p.ActiveStages())
	}
	if a := p.Attribution(1, 2); a.Signature != material {
		t.Errorf("albedo resolved to %s", a.Signature.Name())
	}
	if a := p.Attribution(1, 4); a.Signature != frame || !a.IsImmutableSampler() {
		t.Errorf("shadow_cmp attribution = %+v", a)
	}
}

func TestNewPipelineErrors(t *testing.T) {
	layout, _, _ := twoGroupLayout(t)

	tests := []struct {
		name string
		res  ShaderResource
		want error
	}{
		{"missing", ShaderResource{Name: "Unknown", Type: ResourceConstantBuffer, ArraySize: 1}, ErrResourceNotFound},
		{"type", ShaderResource{Name: "Material", Type: ResourceBufferSRV, ArraySize: 1}, ErrIncompatibleResource},
		{"array too large", ShaderResource{Name: "albedo", Type: ResourceTextureSRV, ArraySize: 3}, ErrIncompatibleResource},
		{"array larger than runtime slot", ShaderResource{Name: "lights", Type: ResourceBufferSRV, ArraySize: 2}, ErrIncompatibleResource},
		{"runtime array without flag", ShaderResource{Name: "albedo", Type: ResourceTextureSRV, ArraySize: 0}, ErrIncompatibleResource},
		{"formatted", ShaderResource{Name: "lights", Type: ResourceBufferSRV, Flags: FlagFormattedBuffer, ArraySize: 1}, ErrIncompatibleResource},
		{"immutable sampler as texture", ShaderResource{Name: "shadow_cmp", Type: ResourceTextureSRV, ArraySize: 1}, ErrIncompatibleResource},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shaders := []*Shader{{Name: "fs", Stage: StageFragment, Resources: []ShaderResource{tt.res}}}
			p, err := NewPipeline("bad", layout, shaders)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if p != nil {
				t.Error("NewPipeline returned a pipeline on error")
			}
		})
	}

	t.Run("smaller array is accepted", func(t *testing.T) {
		shaders := []*Shader{{Name: "fs", Stage: StageFragment, Resources: []ShaderResource{
			{Name: "albedo", Type: ResourceTextureSRV, ArraySize: 1, Dimension: DimTex2D},
		}}}
		if _, err := NewPipeline("ok", layout, shaders); err != nil {
			t.Errorf("error = %v", err)
		}
	})
}
