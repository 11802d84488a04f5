package gpubind

import (
	"errors"
	"testing"
)

func TestShaderStagesHelpers(t *testing.T) {
	s := StageVertex | StageFragment | StageCompute
	if s.Count() != 3 {
		t.Errorf("Count() = %d, want 3", s.Count())
	}
	if got := s.LowestStage(); got != StageVertex {
		t.Errorf("LowestStage() = %s", got)
	}
	if got := StageNone.LowestStage(); got != StageNone {
		t.Errorf("LowestStage() of empty mask = %s", got)
	}
	var seen []ShaderStages
	s.Each(func(st ShaderStages) { seen = append(seen, st) })
	if len(seen) != 3 || seen[0] != StageVertex || seen[1] != StageFragment || seen[2] != StageCompute {
		t.Errorf("Each() visited %v", seen)
	}
	if got := s.String(); got != "Vertex|Fragment|Compute" {
		t.Errorf("String() = %q", got)
	}
}

func TestShaderStagesUnmarshalText(t *testing.T) {
	tests := []struct {
		in   string
		want ShaderStages
	}{
		{"Vertex", StageVertex},
		{"vertex|fragment", StageVertex | StageFragment},
		{"Vertex, Pixel", StageVertex | StageFragment},
		{"AllGraphics", StageAllGraphics},
		{"all", StageAll},
		{"None", StageNone},
		{"", StageNone},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var got ShaderStages
			if err := got.UnmarshalText([]byte(tt.in)); err != nil {
				t.Fatalf("UnmarshalText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("UnmarshalText(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}

	var s ShaderStages
	if err := s.UnmarshalText([]byte("Vertex|Tessellation")); !errors.Is(err, ErrUnknownName) {
		t.Errorf("error = %v, want %v", err, ErrUnknownName)
	}
}

func TestEnumTextRoundTrip(t *testing.T) {
	t.Run("stages", func(t *testing.T) {
		in := StageHull | StageGeometry
		text, _ := in.MarshalText()
		var out ShaderStages
		if err := out.UnmarshalText(text); err != nil || out != in {
			t.Errorf("round trip %s -> %q -> %s (%v)", in, text, out, err)
		}
	})
	t.Run("flags", func(t *testing.T) {
		in := FlagCombinedSampler | FlagRuntimeArray
		text, _ := in.MarshalText()
		var out ResourceFlags
		if err := out.UnmarshalText(text); err != nil || out != in {
			t.Errorf("round trip %s -> %q -> %s (%v)", in, text, out, err)
		}
	})
	t.Run("resource types", func(t *testing.T) {
		for typ := ResourceConstantBuffer; typ <= ResourceAccelStruct; typ++ {
			text, _ := typ.MarshalText()
			var out ResourceType
			if err := out.UnmarshalText(text); err != nil || out != typ {
				t.Errorf("round trip %s -> %q -> %s (%v)", typ, text, out, err)
			}
		}
	})
	t.Run("dimensions", func(t *testing.T) {
		for d := DimUndefined; d <= DimTexCubeArray; d++ {
			text, _ := d.MarshalText()
			var out ResourceDimension
			if err := out.UnmarshalText(text); err != nil || out != d {
				t.Errorf("round trip %s -> %q -> %s (%v)", d, text, out, err)
			}
		}
	})
}

func TestEnumUnmarshalText(t *testing.T) {
	var v VariableType
	if err := v.UnmarshalText([]byte("dynamic")); err != nil || v != VarDynamic {
		t.Errorf("VariableType = %s, %v", v, err)
	}
	var f ResourceFlags
	if err := f.UnmarshalText([]byte("FormattedBuffer , NoDynamicBuffers")); err != nil || f != FlagFormattedBuffer|FlagNoDynamicBuffers {
		t.Errorf("ResourceFlags = %s, %v", f, err)
	}
	var p SamplerPolicy
	if err := p.UnmarshalText([]byte("TextureName")); err != nil || p != SamplerPolicyTextureName {
		t.Errorf("SamplerPolicy = %s, %v", p, err)
	}

	tests := []struct {
		name string
		fn   func() error
	}{
		{"variable", func() error { var x VariableType; return x.UnmarshalText([]byte("Sometimes")) }},
		{"type", func() error { var x ResourceType; return x.UnmarshalText([]byte("Texture")) }},
		{"flag", func() error { var x ResourceFlags; return x.UnmarshalText([]byte("Combined")) }},
		{"dimension", func() error { var x ResourceDimension; return x.UnmarshalText([]byte("Tex4D")) }},
		{"policy", func() error { var x SamplerPolicy; return x.UnmarshalText([]byte("Nearest")) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrUnknownName) {
				t.Errorf("error = %v, want %v", err, ErrUnknownName)
			}
		})
	}
}
