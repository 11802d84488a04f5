package gl

import (
	"errors"
	"testing"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/gpubind/internal/wgslreflect"
	"github.com/gogpu/naga/ir"
)

func TestNewProgramLocations(t *testing.T) {
	prog, err := NewProgram(ProgramInfo{
		Label: "arrays",
		Resources: []ProgramResource{
			{Name: "a", Range: gpubind.RangeTexture, ArraySize: 3, Binding: 10},
			{Name: "b", Range: gpubind.RangeTexture, Binding: 20},
			{Name: "a", Range: gpubind.RangeImage, ArraySize: 1, Binding: 0},
		},
	}, DesktopCapabilities())
	if err != nil {
		t.Fatalf("NewProgram() error = %v", err)
	}

	if loc, ok := prog.Location(gpubind.RangeTexture, "b"); !ok || loc != 3 {
		t.Errorf("Location(b) = %d, %v; want 3 after three elements of a", loc, ok)
	}
	for i := uint32(0); i < 3; i++ {
		if got, _ := prog.CurrentBinding(gpubind.RangeTexture, i); got != 10+i {
			t.Errorf("a[%d] binding = %d, want %d", i, got, 10+i)
		}
	}
	if _, ok := prog.Location(gpubind.RangeUniformBuffer, "a"); ok {
		t.Error("a resolved in the wrong range")
	}
	if _, ok := prog.CurrentBinding(gpubind.RangeTexture, 4); ok {
		t.Error("CurrentBinding past the last location succeeded")
	}
	if _, ok := prog.Location(gpubind.RangeUnknown, "a"); ok {
		t.Error("Location in RangeUnknown succeeded")
	}
}

func TestNewProgramErrors(t *testing.T) {
	tests := []struct {
		name string
		res  []ProgramResource
	}{
		{"duplicate", []ProgramResource{
			{Name: "x", Range: gpubind.RangeUniformBuffer},
			{Name: "x", Range: gpubind.RangeUniformBuffer},
		}},
		{"no range", []ProgramResource{{Name: "x", Range: gpubind.RangeUnknown}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProgram(ProgramInfo{Label: "bad", Resources: tt.res}, DesktopCapabilities())
			if !errors.Is(err, ErrInvalidProgram) {
				t.Errorf("error = %v, want %v", err, ErrInvalidProgram)
			}
		})
	}
}

func TestProgramRebind(t *testing.T) {
	prog, err := NewProgram(ProgramInfo{
		Label: "es",
		Resources: []ProgramResource{
			{Name: "ub", Range: gpubind.RangeUniformBuffer},
			{Name: "ssbo", Range: gpubind.RangeStorageBuffer},
			{Name: "img", Range: gpubind.RangeImage},
		},
	}, ESCapabilities())
	if err != nil {
		t.Fatal(err)
	}

	if !prog.CanRebind(gpubind.RangeUniformBuffer) || !prog.CanRebind(gpubind.RangeTexture) {
		t.Error("uniform blocks and textures are always rebindable")
	}
	if prog.CanRebind(gpubind.RangeStorageBuffer) || prog.CanRebind(gpubind.RangeImage) {
		t.Error("ES storage and image bindings are fixed")
	}
	if err := prog.Rebind(gpubind.RangeUniformBuffer, 0, 5); err != nil {
		t.Fatalf("Rebind() error = %v", err)
	}
	if got, _ := prog.CurrentBinding(gpubind.RangeUniformBuffer, 0); got != 5 {
		t.Errorf("binding = %d, want 5", got)
	}
	if err := prog.Rebind(gpubind.RangeStorageBuffer, 0, 1); !errors.Is(err, ErrFixedBinding) {
		t.Errorf("error = %v, want %v", err, ErrFixedBinding)
	}
	if err := prog.Rebind(gpubind.RangeUniformBuffer, 7, 1); !errors.Is(err, ErrNoLocation) {
		t.Errorf("error = %v, want %v", err, ErrNoLocation)
	}
}

// reflectedModule has a uniform buffer, a texture and its sampler used by
// fs_main, and a storage buffer used by cs_main.
func reflectedModule(t *testing.T) *wgslreflect.Module {
	t.Helper()
	f32 := ir.ScalarType{Kind: ir.ScalarFloat, Width: 4}
	mod := &ir.Module{
		Types: []ir.Type{
			{Name: "", Inner: ir.VectorType{Size: ir.Vec4, Scalar: f32}},
			{Name: "", Inner: ir.SamplerType{Comparison: false}},
			{Name: "", Inner: ir.ImageType{Dim: ir.Dim2D, Class: ir.ImageClassSampled}},
		},
		GlobalVariables: []ir.GlobalVariable{
			{Name: "camera", Space: ir.SpaceUniform, Binding: &ir.ResourceBinding{Group: 0, Binding: 0}, Type: 0},
			{Name: "albedo", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Group: 0, Binding: 1}, Type: 2},
			{Name: "albedo_sampler", Space: ir.SpaceHandle, Binding: &ir.ResourceBinding{Group: 0, Binding: 2}, Type: 1},
			{Name: "particles", Space: ir.SpaceStorage, Binding: &ir.ResourceBinding{Group: 0, Binding: 3}, Type: 0},
		},
		Functions: []ir.Function{
			{Name: "fs_main", Expressions: []ir.Expression{
				{Kind: ir.ExprGlobalVariable{Variable: 0}},
				{Kind: ir.ExprGlobalVariable{Variable: 1}},
				{Kind: ir.ExprGlobalVariable{Variable: 2}},
			}},
			{Name: "cs_main", Expressions: []ir.Expression{
				{Kind: ir.ExprGlobalVariable{Variable: 3}},
			}},
		},
		EntryPoints: []ir.EntryPoint{
			{Name: "fs_main", Stage: ir.StageFragment, Function: 0},
			{Name: "cs_main", Stage: ir.StageCompute, Function: 1},
		},
	}
	m, err := wgslreflect.FromIR(mod)
	if err != nil {
		t.Fatalf("FromIR() error = %v", err)
	}
	return m
}

func TestProgramFromModule(t *testing.T) {
	m := reflectedModule(t)
	base := gpubind.BindingTable{2, 3, 0, 5}

	prog, err := ProgramFromModule("fs", m, []string{"fs_main"}, base, DesktopCapabilities())
	if err != nil {
		t.Fatalf("ProgramFromModule() error = %v", err)
	}
	tests := []struct {
		r       gpubind.BindingRange
		name    string
		binding uint32
	}{
		{gpubind.RangeUniformBuffer, "camera", 2},
		{gpubind.RangeTexture, "albedo", 4},
	}
	for _, tt := range tests {
		loc, ok := prog.Location(tt.r, tt.name)
		if !ok {
			t.Errorf("%s not linked", tt.name)
			continue
		}
		if got, _ := prog.CurrentBinding(tt.r, loc); got != tt.binding {
			t.Errorf("%s binding = %d, want %d", tt.name, got, tt.binding)
		}
	}
	if _, ok := prog.Location(gpubind.RangeTexture, "albedo_sampler"); ok {
		t.Error("samplers should not have a location")
	}
	if _, ok := prog.Location(gpubind.RangeStorageBuffer, "particles"); ok {
		t.Error("particles is not used by fs_main")
	}

	cs, err := ProgramFromModule("cs", m, []string{"cs_main"}, base, DesktopCapabilities())
	if err != nil {
		t.Fatal(err)
	}
	if loc, ok := cs.Location(gpubind.RangeStorageBuffer, "particles"); !ok {
		t.Error("particles not linked")
	} else if got, _ := cs.CurrentBinding(gpubind.RangeStorageBuffer, loc); got != 8 {
		t.Errorf("particles binding = %d, want 8", got)
	}

	if _, err := ProgramFromModule("bad", m, []string{"vs_main"}, base, DesktopCapabilities()); !errors.Is(err, ErrInvalidProgram) {
		t.Errorf("error = %v, want %v", err, ErrInvalidProgram)
	}
}
