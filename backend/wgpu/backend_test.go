package wgpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/gpubind/backend"
)

// noopDevice opens a device on the noop HAL. Cleanup runs when the test ends.
func noopDevice(t *testing.T) (hal.Device, hal.Queue) {
	t.Helper()
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return openDev.Device, openDev.Queue
}

func newBackend(t *testing.T) *Backend {
	t.Helper()
	device, queue := noopDevice(t)
	b, err := New(backend.NewConfig(backend.WithHALDevice(device, queue)))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(b.Release)
	return b
}

func TestNewRequiresDevice(t *testing.T) {
	if _, err := New(backend.NewConfig()); !errors.Is(err, backend.ErrNoDevice) {
		t.Errorf("New() error = %v, want %v", err, backend.ErrNoDevice)
	}
	if _, err := backend.Open(backend.BackendWGPU); !errors.Is(err, backend.ErrNoDevice) {
		t.Errorf("Open() error = %v, want %v", err, backend.ErrNoDevice)
	}
}

func TestOpenRegistered(t *testing.T) {
	device, queue := noopDevice(t)
	b, err := backend.Open(backend.BackendWGPU, backend.WithHALDevice(device, queue))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Release()

	if b.Name() != backend.BackendWGPU {
		t.Errorf("Name() = %q", b.Name())
	}
	if b.SamplerPolicy() != gpubind.SamplerPolicyCombinedSuffix {
		t.Errorf("SamplerPolicy() = %s, want CombinedSuffix", b.SamplerPolicy())
	}
}

type mockDevice struct{}

func (m *mockDevice) Poll(wait bool) {}
func (m *mockDevice) Destroy()       {}

type mockQueue struct{}

type mockAdapter struct{}

// mockProvider implements gpucontext.DeviceProvider.
type mockProvider struct{}

func (m *mockProvider) Device() gpucontext.Device             { return &mockDevice{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return &mockQueue{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return &mockAdapter{} }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatBGRA8Unorm }

// halMockProvider also exposes HAL objects.
type halMockProvider struct {
	mockProvider
	device hal.Device
	queue  hal.Queue
}

func (m *halMockProvider) HalDevice() any { return m.device }
func (m *halMockProvider) HalQueue() any  { return m.queue }

func TestNewFromProvider(t *testing.T) {
	if _, err := NewFromProvider(&mockProvider{}); !errors.Is(err, ErrNoHALProvider) {
		t.Errorf("error = %v, want %v", err, ErrNoHALProvider)
	}
	if _, err := NewFromProvider(&halMockProvider{}); !errors.Is(err, ErrNoHALProvider) {
		t.Errorf("nil HAL device: error = %v, want %v", err, ErrNoHALProvider)
	}

	device, queue := noopDevice(t)
	b, err := NewFromProvider(&halMockProvider{device: device, queue: queue},
		backend.WithSamplerPolicy(gpubind.SamplerPolicyTextureName))
	if err != nil {
		t.Fatalf("NewFromProvider() error = %v", err)
	}
	defer b.Release()
	if b.Device() != device || b.Queue() != queue {
		t.Error("provider device and queue not used")
	}
	if b.SamplerPolicy() != gpubind.SamplerPolicyTextureName {
		t.Errorf("SamplerPolicy() = %s, want TextureName", b.SamplerPolicy())
	}
}

func TestBuildSignatureCreatesLayout(t *testing.T) {
	b := newBackend(t)
	sig, err := b.BuildSignature(materialDesc("material"))
	if err != nil {
		t.Fatalf("BuildSignature() error = %v", err)
	}
	defer sig.Release()

	if sig.Backend() != backend.BackendWGPU {
		t.Errorf("Backend() = %q", sig.Backend())
	}
	if smp := sig.ImmutableSampler(0); smp == nil {
		t.Fatal("immutable sampler not created")
	} else if _, ok := smp.Native().(hal.Sampler); !ok {
		t.Errorf("immutable sampler native = %T, want hal.Sampler", smp.Native())
	}

	// A second signature differing only in names shares the layout.
	other, err := b.BuildSignature(renamed(materialDesc("copy")))
	if err != nil {
		t.Fatalf("BuildSignature() error = %v", err)
	}
	defer other.Release()
	if b.LayoutCache().Len() != 1 {
		t.Errorf("cached layouts = %d, want 1", b.LayoutCache().Len())
	}
	if hits, misses := b.LayoutCache().Stats(); hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses; want 1, 1", hits, misses)
	}
}

func TestSignatureReleaseForgetsLayout(t *testing.T) {
	b := newBackend(t)
	sig, err := b.BuildSignature(materialDesc("material"))
	if err != nil {
		t.Fatalf("BuildSignature() error = %v", err)
	}
	if b.Signatures() != 1 {
		t.Fatalf("Signatures() = %d, want 1", b.Signatures())
	}

	srb := b.NewShaderResourceBinding(sig, true)
	sig.Release()
	if b.Signatures() != 1 {
		t.Error("layout forgotten while a binding still holds the signature")
	}
	srb.Release()
	if b.Signatures() != 0 {
		t.Errorf("Signatures() = %d after the last release, want 0", b.Signatures())
	}
	if b.LayoutCache().Len() != 1 {
		t.Errorf("cached layouts = %d, want 1", b.LayoutCache().Len())
	}

	// Signatures built elsewhere are forgotten explicitly.
	ext, err := gpubind.NewSignature(frameDesc(), gpubind.WithBackend(backend.BackendWGPU))
	if err != nil {
		t.Fatal(err)
	}
	defer ext.Release()
	if _, err := b.GroupLayout(ext); err != nil {
		t.Fatalf("GroupLayout() error = %v", err)
	}
	b.ForgetSignature(ext)
	if b.Signatures() != 0 {
		t.Errorf("Signatures() = %d after ForgetSignature, want 0", b.Signatures())
	}
}

func TestBuildSignatureRejectsUnsupported(t *testing.T) {
	b := newBackend(t)
	_, err := b.BuildSignature(gpubind.SignatureDesc{
		Name: "hull",
		Resources: []gpubind.ResourceDesc{
			{Name: "Patch", ShaderStages: gpubind.StageHull, ArraySize: 1, Type: gpubind.ResourceConstantBuffer},
		},
	})
	if !errors.Is(err, ErrNoVisibility) {
		t.Errorf("error = %v, want %v", err, ErrNoVisibility)
	}
}

func TestBuildImplicitSignature(t *testing.T) {
	b := newBackend(t)
	sm, err := NewShaderModule("lit", litShader)
	if err != nil {
		t.Fatalf("NewShaderModule() error = %v", err)
	}
	sig, err := b.BuildImplicitSignature("lit", gpubind.LayoutDesc{}, sm.Shaders())
	if err != nil {
		t.Fatalf("BuildImplicitSignature() error = %v", err)
	}
	defer sig.Release()

	g, err := b.GroupLayout(sig)
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Entries) != 3 {
		t.Errorf("entries = %d, want 3", len(g.Entries))
	}
}

func TestCreatePipelineLayout(t *testing.T) {
	b := newBackend(t)
	frame, err := b.BuildSignature(frameDesc())
	if err != nil {
		t.Fatal(err)
	}
	defer frame.Release()
	material, err := b.BuildSignature(litMaterialDesc(false))
	if err != nil {
		t.Fatal(err)
	}
	defer material.Release()

	layout, err := gpubind.NewPipelineLayout(frame, material)
	if err != nil {
		t.Fatal(err)
	}
	pl, err := b.CreatePipelineLayout("lit", layout)
	if err != nil {
		t.Fatalf("CreatePipelineLayout() error = %v", err)
	}
	b.DestroyPipelineLayout(pl)

	glSig, err := gpubind.NewSignature(frameDesc(), gpubind.WithBackend(backend.BackendGL))
	if err != nil {
		t.Fatal(err)
	}
	glLayout, err := gpubind.NewPipelineLayout(glSig)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.CreatePipelineLayout("gl", glLayout); !errors.Is(err, gpubind.ErrBackendMismatch) {
		t.Errorf("error = %v, want %v", err, gpubind.ErrBackendMismatch)
	}
}
