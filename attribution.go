package gpubind

import (
	"fmt"
	"sort"
)

// InvalidResourceIndex marks an attribution that is not a signature resource.
const InvalidResourceIndex = ^uint32(0)

// ResourceAttribution is the result of resolving a shader resource name
// against the signatures of a pipeline layout.
type ResourceAttribution struct {
	// Signature containing the resource, nil when the name was not found.
	Signature *Signature

	// SignatureIndex is the signature's binding index in the layout.
	SignatureIndex uint32

	// ResourceIndex is the resource index in the signature, or
	// InvalidResourceIndex for an immutable sampler match.
	ResourceIndex uint32

	// ImmutableSamplerIndex is the immutable sampler index, or
	// InvalidImmutableSamplerIndex for a resource match.
	ImmutableSamplerIndex uint32
}

// IsValid reports whether the name was resolved.
func (a ResourceAttribution) IsValid() bool {
	return a.Signature != nil &&
		(a.ResourceIndex != InvalidResourceIndex || a.ImmutableSamplerIndex != InvalidImmutableSamplerIndex)
}

// IsImmutableSampler reports whether the name resolved to an immutable
// sampler that is not also a signature resource.
func (a ResourceAttribution) IsImmutableSampler() bool {
	return a.IsValid() && a.ResourceIndex == InvalidResourceIndex
}

// ResourceDesc returns the resolved resource description.
func (a ResourceAttribution) ResourceDesc() ResourceDesc {
	return a.Signature.Resource(a.ResourceIndex)
}

// Attribs returns the resolved resource attributes.
func (a ResourceAttribution) Attribs() ResourceAttribs {
	return a.Signature.Attribs(a.ResourceIndex)
}

// PipelineLayout is the ordered set of signatures bound to a pipeline.
// Signature i occupies slot BindingIndex; slots may be empty.
type PipelineLayout struct {
	signatures []*Signature
	bases      []BindingTable
	total      BindingTable
	backend    string
	stages     ShaderStages
}

// NewPipelineLayout places every signature at its binding index. Nil
// signatures are skipped.
func NewPipelineLayout(sigs ...*Signature) (*PipelineLayout, error) {
	l := &PipelineLayout{}

	ordered := make([]*Signature, 0, len(sigs))
	for _, s := range sigs {
		if s != nil {
			ordered = append(ordered, s)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].BindingIndex() < ordered[j].BindingIndex()
	})

	for i, s := range ordered {
		if i > 0 && ordered[i-1].BindingIndex() == s.BindingIndex() {
			return nil, fmt.Errorf("%w: '%s' and '%s' both use index %d",
				ErrDuplicateBindingIndex, ordered[i-1].Name(), s.Name(), s.BindingIndex())
		}
		if i == 0 {
			l.backend = s.Backend()
		} else if s.Backend() != l.backend {
			return nil, fmt.Errorf("%w: '%s' (%s) and '%s' (%s)",
				ErrBackendMismatch, ordered[0].Name(), l.backend, s.Name(), s.Backend())
		}
		l.stages |= s.ActiveStages()
	}

	n := 0
	if len(ordered) > 0 {
		n = int(ordered[len(ordered)-1].BindingIndex()) + 1
	}
	l.signatures = make([]*Signature, n)
	l.bases = make([]BindingTable, n)
	for _, s := range ordered {
		l.signatures[s.BindingIndex()] = s
	}

	// Base bindings are prefix sums over binding-index order.
	var running BindingTable
	for i, s := range l.signatures {
		l.bases[i] = running
		if s != nil {
			running = running.Add(s.BindingCounts())
		}
	}
	l.total = running
	return l, nil
}

// SignatureCount returns the number of signature slots, including empty ones.
func (l *PipelineLayout) SignatureCount() uint32 {
	return uint32(len(l.signatures)) //nolint:gosec // G115: binding index is uint8
}

// Signature returns the signature at binding index i, or nil.
func (l *PipelineLayout) Signature(i uint32) *Signature {
	if int(i) >= len(l.signatures) {
		return nil
	}
	return l.signatures[i]
}

// BaseBindings returns the first native binding of every range for the
// signature at binding index i.
func (l *PipelineLayout) BaseBindings(i uint32) BindingTable {
	if int(i) >= len(l.bases) {
		return l.total
	}
	return l.bases[i]
}

// TotalBindingCounts returns the binding counts of all signatures combined.
func (l *PipelineLayout) TotalBindingCounts() BindingTable { return l.total }

// Backend returns the backend shared by all signatures.
func (l *PipelineLayout) Backend() string { return l.backend }

// ActiveStages returns the union of the signatures' active stages.
func (l *PipelineLayout) ActiveStages() ShaderStages { return l.stages }

// GetResourceAttribution resolves name in stage. Signatures are searched in
// binding-index order; within a signature a resource wins over an
// immutable sampler.
func (l *PipelineLayout) GetResourceAttribution(name string, stage ShaderStages) ResourceAttribution {
	for i, s := range l.signatures {
		if s == nil {
			continue
		}
		a := s.GetBindingAttribution(name, stage)
		if a.IsValid() {
			a.SignatureIndex = uint32(i) //nolint:gosec // G115: binding index is uint8
			return a
		}
	}
	return invalidAttribution()
}

func invalidAttribution() ResourceAttribution {
	return ResourceAttribution{
		ResourceIndex:         InvalidResourceIndex,
		ImmutableSamplerIndex: InvalidImmutableSamplerIndex,
	}
}

// IsCompatibleWith reports whether every signature slot of l is compatible
// with the same slot of o.
func (l *PipelineLayout) IsCompatibleWith(o *PipelineLayout) bool {
	n := max(len(l.signatures), len(o.signatures))
	for i := 0; i < n; i++ {
		if !SignaturesCompatible(l.Signature(uint32(i)), o.Signature(uint32(i))) { //nolint:gosec // G115: binding index is uint8
			return false
		}
	}
	return true
}
