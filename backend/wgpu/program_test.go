package wgpu

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/gpubind/internal/wgslreflect"
)

// recorder keeps the messages of every record it handles.
type recorder struct {
	mu   sync.Mutex
	msgs []string
}

func (r *recorder) Enabled(context.Context, slog.Level) bool { return true }
func (r *recorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	r.msgs = append(r.msgs, rec.Message)
	r.mu.Unlock()
	return nil
}
func (r *recorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *recorder) WithGroup(string) slog.Handler      { return r }

func (r *recorder) count(msg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, m := range r.msgs {
		if m == msg {
			n++
		}
	}
	return n
}

func TestShaderModuleLocation(t *testing.T) {
	sm, err := NewShaderModule("lit", litShader)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		r      gpubind.BindingRange
		name   string
		loc    uint32
		found  bool
		attach uint32
	}{
		{gpubind.RangeUniformBuffer, "camera", 0, true, 0},
		{gpubind.RangeTexture, "albedo", 1, true, 0},
		{gpubind.RangeTexture, "albedo_sampler", 0, false, 0},
		{gpubind.RangeTexture, "camera", 0, false, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.r.String(), func(t *testing.T) {
			loc, ok := sm.Location(tt.r, tt.name)
			if ok != tt.found || (ok && loc != tt.loc) {
				t.Fatalf("Location() = %d, %v; want %d, %v", loc, ok, tt.loc, tt.found)
			}
			if !ok {
				return
			}
			b, ok := sm.CurrentBinding(tt.r, loc)
			if !ok || b != tt.attach {
				t.Errorf("CurrentBinding() = %d, %v; want %d", b, ok, tt.attach)
			}
		})
	}

	if _, ok := sm.CurrentBinding(gpubind.RangeUniformBuffer, 1); ok {
		t.Error("CurrentBinding() accepted a location of another range")
	}
	if _, ok := sm.CurrentBinding(gpubind.RangeUniformBuffer, 99); ok {
		t.Error("CurrentBinding() accepted an out of range location")
	}
	if sm.CanRebind(gpubind.RangeTexture) {
		t.Error("CanRebind() = true")
	}
	if err := sm.Rebind(gpubind.RangeTexture, 1, 3); !errors.Is(err, ErrFixedBinding) {
		t.Errorf("Rebind() error = %v, want %v", err, ErrFixedBinding)
	}
}

func TestShaderModuleEntries(t *testing.T) {
	m, err := wgslreflect.Reflect(litShader)
	if err != nil {
		t.Fatal(err)
	}

	all, err := ShaderModuleFromReflection("all", m)
	if err != nil {
		t.Fatal(err)
	}
	if got := len(all.Shaders()); got != 2 {
		t.Errorf("Shaders() = %d, want 2", got)
	}

	vs, err := ShaderModuleFromReflection("vs", m, "vs_main")
	if err != nil {
		t.Fatal(err)
	}
	if sh := vs.Shaders(); len(sh) != 1 || sh[0].Stage != gpubind.StageVertex {
		t.Errorf("Shaders() = %+v", sh)
	}

	if _, err := ShaderModuleFromReflection("bad", m, "cs_main"); err == nil {
		t.Error("unknown entry point accepted")
	}
}

func TestApplyBindingsShaderModule(t *testing.T) {
	tests := []struct {
		name       string
		tint       bool
		stages     gpubind.ShaderStages
		matched    int
		mismatched int
	}{
		{"matching layout", false, gpubind.StageAll, 3, 0},
		{"shifted bindings", true, gpubind.StageAll, 1, 2},
		{"vertex only", false, gpubind.StageVertex, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			rec := &recorder{}
			b.SetLogger(slog.New(rec))

			frame, err := b.BuildSignature(frameDesc())
			if err != nil {
				t.Fatal(err)
			}
			defer frame.Release()
			material, err := b.BuildSignature(litMaterialDesc(tt.tint))
			if err != nil {
				t.Fatal(err)
			}
			defer material.Release()
			layout, err := gpubind.NewPipelineLayout(frame, material)
			if err != nil {
				t.Fatal(err)
			}

			sm, err := NewShaderModule("lit", litShader)
			if err != nil {
				t.Fatal(err)
			}
			rep := b.ApplyBindings(sm, layout, tt.stages)
			if rep.Matched != tt.matched || rep.Mismatched != tt.mismatched || rep.Rebound != 0 {
				t.Errorf("report = %+v, want %d matched, %d mismatched", rep, tt.matched, tt.mismatched)
			}
			if got := rec.count("wgpu: binding differs from the pipeline layout"); got != tt.mismatched {
				t.Errorf("mismatch warnings = %d, want %d", got, tt.mismatched)
			}
		})
	}
}

func TestApplyBindingsUndeclaredVariable(t *testing.T) {
	b := newBackend(t)
	rec := &recorder{}
	b.SetLogger(slog.New(rec))

	frame, err := b.BuildSignature(frameDesc())
	if err != nil {
		t.Fatal(err)
	}
	defer frame.Release()
	layout, err := gpubind.NewPipelineLayout(frame)
	if err != nil {
		t.Fatal(err)
	}
	sm, err := NewShaderModule("lit", litShader)
	if err != nil {
		t.Fatal(err)
	}

	rep := b.ApplyBindings(sm, layout, gpubind.StageAll)
	if rep.Matched != 1 || rep.Skipped != 2 {
		t.Errorf("report = %+v, want 1 matched, 2 skipped", rep)
	}
	if got := rec.count("wgpu: variable is not declared in the pipeline layout"); got != 2 {
		t.Errorf("warnings = %d, want 2", got)
	}
}
