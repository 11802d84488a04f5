package gpubind

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

type fakeBuffer struct {
	label string
	size  uint64
}

func (b *fakeBuffer) Label() string { return b.label }
func (b *fakeBuffer) Size() uint64  { return b.size }

type fakeBufferView struct {
	label     string
	buf       *fakeBuffer
	formatted bool
}

func (v *fakeBufferView) Label() string   { return v.label }
func (v *fakeBufferView) Buffer() Buffer  { return v.buf }
func (v *fakeBufferView) Formatted() bool { return v.formatted }

type fakeTextureView struct {
	label string
	dim   ResourceDimension
	msaa  bool
}

func (v *fakeTextureView) Label() string                { return v.label }
func (v *fakeTextureView) Dimension() ResourceDimension { return v.dim }
func (v *fakeTextureView) Multisampled() bool           { return v.msaa }

type fakeSampledView struct {
	fakeTextureView
	sampler Sampler
}

func (v *fakeSampledView) Sampler() Sampler { return v.sampler }

type fakeSampler struct {
	label string
}

func (s *fakeSampler) Label() string     { return s.label }
func (s *fakeSampler) Desc() SamplerDesc { return DefaultSamplerDesc() }

func tex2D(label string) *fakeTextureView {
	return &fakeTextureView{label: label, dim: DimTex2D}
}

// logRecorder captures log records for assertions.
type logRecorder struct {
	mu      sync.Mutex
	records []slog.Record
}

func (r *logRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *logRecorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
	return nil
}

func (r *logRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }
func (r *logRecorder) WithGroup(string) slog.Handler      { return r }

// count returns the number of records at level whose message contains msg.
func (r *logRecorder) count(level slog.Level, msg string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.records {
		if rec.Level == level && strings.Contains(rec.Message, msg) {
			n++
		}
	}
	return n
}

// attr returns the value of key in the first record whose message contains msg.
func (r *logRecorder) attr(msg, key string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.records {
		if !strings.Contains(rec.Message, msg) {
			continue
		}
		var val string
		rec.Attrs(func(a slog.Attr) bool {
			if a.Key == key {
				val = a.Value.String()
				return false
			}
			return true
		})
		return val
	}
	return ""
}

// captureLogs routes the package logger to a recorder for the test.
func captureLogs(t *testing.T) *logRecorder {
	t.Helper()
	orig := Logger()
	rec := &logRecorder{}
	SetLogger(slog.New(rec))
	t.Cleanup(func() { SetLogger(orig) })
	return rec
}

// mustSignature builds a signature or fails the test.
func mustSignature(t *testing.T, desc SignatureDesc, opts ...SignatureOption) *Signature {
	t.Helper()
	sig, err := NewSignature(desc, opts...)
	if err != nil {
		t.Fatalf("NewSignature(%q) error = %v", desc.Name, err)
	}
	return sig
}
