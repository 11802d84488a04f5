//go:build !nodevchecks

package wgpu

import (
	"testing"

	"github.com/gogpu/gpubind"
)

func TestValidateAndPipeline(t *testing.T) {
	b := newBackend(t)
	frame, err := b.BuildSignature(frameDesc())
	if err != nil {
		t.Fatal(err)
	}
	defer frame.Release()
	layout, err := gpubind.NewPipelineLayout(frame)
	if err != nil {
		t.Fatal(err)
	}
	sm, err := NewShaderModule("lit", litShader, "vs_main")
	if err != nil {
		t.Fatal(err)
	}
	p, err := b.NewPipeline("vs", layout, sm.Shaders())
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	srb := b.NewShaderResourceBinding(frame, true)
	defer srb.Release()
	if b.Validate(p, []*gpubind.ResourceCache{srb.Cache()}) {
		t.Error("Validate() = true with camera unbound")
	}

	buf, err := NewUniformBuffer(b.Device(), "camera", 64)
	if err != nil {
		t.Fatal(err)
	}
	defer buf.Destroy(b.Device())
	if err := srb.SetVariable(gpubind.StageVertex, "camera", 0, buf); err != nil {
		t.Fatal(err)
	}
	if !b.Validate(p, []*gpubind.ResourceCache{srb.Cache()}) {
		t.Error("Validate() = false with camera bound")
	}
}
