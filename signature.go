package gpubind

import (
	"fmt"
	"sync/atomic"
)

// DefaultCombinedSamplerSuffix is the suffix BuildSignature uses for
// combined texture samplers.
const DefaultCombinedSamplerSuffix = "_sampler"

// SignatureDesc declares the resources of a signature.
type SignatureDesc struct {
	// Name is used in logs and errors.
	Name string

	// Resources must be sorted by VarType.
	Resources []ResourceDesc

	ImmutableSamplers []ImmutableSamplerDesc

	// BindingIndex is the position of the signature in a pipeline layout.
	BindingIndex uint8

	// UseCombinedTextureSamplers pairs every texture SRV with the sampler
	// resource named texture name + CombinedSamplerSuffix.
	UseCombinedTextureSamplers bool
	CombinedSamplerSuffix      string
}

// combinedSuffix returns the suffix in effect, or "" when combined
// samplers are not used.
func (d *SignatureDesc) combinedSuffix() string {
	if !d.UseCombinedTextureSamplers {
		return ""
	}
	return d.CombinedSamplerSuffix
}

func (d *SignatureDesc) clone() SignatureDesc {
	c := *d
	c.Resources = append([]ResourceDesc(nil), d.Resources...)
	c.ImmutableSamplers = append([]ImmutableSamplerDesc(nil), d.ImmutableSamplers...)
	return c
}

// Sentinel attribute values.
const (
	InvalidCacheOffset  = ^uint32(0)
	InvalidSamplerIndex = ^uint32(0)
)

// ResourceAttribs are the layout attributes assigned to one resource.
type ResourceAttribs struct {
	// CacheOffset is the slot of the first array element in the resource's
	// binding range. Samplers have InvalidCacheOffset.
	CacheOffset uint32

	// SamplerIndex is an immutable sampler index when
	// ImmutableSamplerAssigned is set, otherwise the index of the sampler
	// resource assigned to a texture, or InvalidSamplerIndex.
	SamplerIndex uint32

	// ImmutableSamplerAssigned is set when an immutable sampler is bound
	// to the resource.
	ImmutableSamplerAssigned bool
}

// IsSamplerAssigned reports whether a sampler resource or immutable sampler
// is assigned.
func (a ResourceAttribs) IsSamplerAssigned() bool {
	return a.SamplerIndex != InvalidSamplerIndex
}

// IsCompatibleWith compares two attributes ignoring the sampler index.
func (a ResourceAttribs) IsCompatibleWith(o ResourceAttribs) bool {
	return a.CacheOffset == o.CacheOffset && a.ImmutableSamplerAssigned == o.ImmutableSamplerAssigned
}

// Signature is the canonical list of resources consumed by a pipeline and
// their binding-slot layout. A signature is immutable after construction
// and safe for concurrent reads; static resources must be set before the
// signature is shared.
type Signature struct {
	desc    SignatureDesc
	attribs []ResourceAttribs

	bindingCount BindingTable
	staticCount  BindingTable
	varRanges    [numVariableTypes][2]uint32
	activeStages ShaderStages

	samplers    []*ImmutableSampler
	staticCache *ResourceCache

	hash    uint64
	policy  SamplerPolicy
	backend string
	factory SamplerFactory

	refs      atomic.Int32
	onRelease []func(*Signature)
}

// BuildSignature builds an unnamed signature. Combined texture samplers
// are enabled with DefaultCombinedSamplerSuffix when any texture carries
// FlagCombinedSampler.
func BuildSignature(resources []ResourceDesc, samplers []ImmutableSamplerDesc, opts ...SignatureOption) (*Signature, error) {
	desc := SignatureDesc{
		Resources:         resources,
		ImmutableSamplers: samplers,
	}
	for i := range resources {
		if resources[i].Flags&FlagCombinedSampler != 0 {
			desc.UseCombinedTextureSamplers = true
			desc.CombinedSamplerSuffix = DefaultCombinedSamplerSuffix
			break
		}
	}
	return NewSignature(desc, opts...)
}

// NewSignature validates desc and builds the signature layout. No partial
// signature is returned on failure; immutable samplers created before the
// failure are destroyed.
func NewSignature(desc SignatureDesc, opts ...SignatureOption) (*Signature, error) {
	o := defaultSignatureOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if err := validateSignatureDesc(&desc); err != nil {
		return nil, err
	}

	s := &Signature{
		desc:      desc.clone(),
		policy:    o.policy,
		backend:   o.backend,
		factory:   o.factory,
		onRelease: o.onRelease,
	}
	if err := s.createSamplers(); err != nil {
		s.destroySamplers()
		return nil, err
	}
	if err := s.createLayout(); err != nil {
		s.destroySamplers()
		return nil, err
	}
	s.hash = s.computeHash()
	s.refs.Store(1)

	Logger().Debug("gpubind: signature created",
		"name", s.desc.Name,
		"backend", s.backend,
		"resources", len(s.desc.Resources),
		"bindings", s.bindingCount.String(),
		"hash", s.hash)
	return s, nil
}

func validateSignatureDesc(desc *SignatureDesc) error {
	if desc.UseCombinedTextureSamplers && desc.CombinedSamplerSuffix == "" {
		return signatureErr(desc.Name, "", ErrMissingSamplerSuffix)
	}

	for i := range desc.Resources {
		res := &desc.Resources[i]
		if err := res.validate(); err != nil {
			return signatureErr(desc.Name, res.Name, err)
		}
		if i > 0 && res.VarType < desc.Resources[i-1].VarType {
			return signatureErr(desc.Name, res.Name, ErrUnsortedResources)
		}
		for j := 0; j < i; j++ {
			prev := &desc.Resources[j]
			if prev.Name == res.Name && prev.ShaderStages.Overlaps(res.ShaderStages) {
				return signatureErr(desc.Name, res.Name,
					fmt.Errorf("%w: stages %s overlap with resource #%d", ErrDuplicateResource,
						prev.ShaderStages&res.ShaderStages, j))
			}
		}
	}

	for i := range desc.ImmutableSamplers {
		smp := &desc.ImmutableSamplers[i]
		if smp.SamplerOrTextureName == "" {
			return signatureErr(desc.Name, "", ErrEmptyResourceName)
		}
		if smp.ShaderStages == StageNone {
			return signatureErr(desc.Name, smp.SamplerOrTextureName, ErrNoShaderStages)
		}
		for j := 0; j < i; j++ {
			prev := &desc.ImmutableSamplers[j]
			if prev.SamplerOrTextureName == smp.SamplerOrTextureName && prev.ShaderStages.Overlaps(smp.ShaderStages) {
				return signatureErr(desc.Name, smp.SamplerOrTextureName, ErrDuplicateImmutableSampler)
			}
		}
	}
	return nil
}

func (s *Signature) createSamplers() error {
	if len(s.desc.ImmutableSamplers) == 0 {
		return nil
	}
	s.samplers = make([]*ImmutableSampler, 0, len(s.desc.ImmutableSamplers))
	for i := range s.desc.ImmutableSamplers {
		d := &s.desc.ImmutableSamplers[i]
		smp, err := s.factory.CreateSampler(s.desc.Name+"."+d.SamplerOrTextureName, d.Desc)
		if err != nil {
			return signatureErr(s.desc.Name, d.SamplerOrTextureName, fmt.Errorf("create immutable sampler: %w", err))
		}
		s.samplers = append(s.samplers, smp)
	}
	return nil
}

func (s *Signature) destroySamplers() {
	for _, smp := range s.samplers {
		if smp != nil {
			s.factory.DestroySampler(smp)
		}
	}
	s.samplers = nil
}

// createLayout assigns cache offsets and sampler indices. Resources are
// scanned in order and each range keeps a running counter, so offsets are
// deterministic and contiguous within a range.
func (s *Signature) createLayout() error {
	res := s.desc.Resources
	s.attribs = make([]ResourceAttribs, len(res))

	for v := range s.varRanges {
		s.varRanges[v] = [2]uint32{uint32(len(res)), uint32(len(res))} //nolint:gosec // G115: resource count fits uint32
	}
	for i := range res {
		v := res[i].VarType
		if s.varRanges[v][0] == uint32(len(res)) { //nolint:gosec // G115: see above
			s.varRanges[v][0] = uint32(i) //nolint:gosec // G115: see above
		}
		s.varRanges[v][1] = uint32(i) + 1 //nolint:gosec // G115: see above
		s.activeStages |= res[i].ShaderStages
	}
	for i := range s.desc.ImmutableSamplers {
		s.activeStages |= s.desc.ImmutableSamplers[i].ShaderStages
	}

	suffix := s.desc.combinedSuffix()
	for i := range res {
		rd := &res[i]

		if rd.Type == ResourceSampler {
			idx := FindImmutableSampler(s.desc.ImmutableSamplers, rd.ShaderStages, rd.Name, suffix)
			s.attribs[i] = ResourceAttribs{
				CacheOffset:              InvalidCacheOffset,
				SamplerIndex:             idx,
				ImmutableSamplerAssigned: idx != InvalidImmutableSamplerIndex,
			}
			continue
		}

		rng, err := ClassifyResource(rd)
		if err != nil {
			return signatureErr(s.desc.Name, rd.Name, err)
		}

		immutable := InvalidImmutableSamplerIndex
		samplerIdx := InvalidSamplerIndex
		if rd.Type == ResourceTextureSRV {
			switch s.policy {
			case SamplerPolicyTextureName:
				immutable = FindImmutableSampler(s.desc.ImmutableSamplers, rd.ShaderStages, rd.Name, "")
			default:
				if rd.Flags&FlagCombinedSampler != 0 {
					immutable = FindImmutableSampler(s.desc.ImmutableSamplers, rd.ShaderStages, rd.Name, suffix)
				}
			}
			if immutable != InvalidImmutableSamplerIndex {
				samplerIdx = immutable
			} else {
				samplerIdx = s.findAssignedSampler(rd)
			}
		}

		s.attribs[i] = ResourceAttribs{
			CacheOffset:              s.bindingCount[rng],
			SamplerIndex:             samplerIdx,
			ImmutableSamplerAssigned: immutable != InvalidImmutableSamplerIndex,
		}
		s.bindingCount[rng] += rd.slotCount()
		if rd.VarType == VarStatic {
			s.staticCount[rng] += rd.slotCount()
		}
	}

	s.staticCache = NewResourceCache(CacheContentSignature, s.staticCount)
	return nil
}

// findAssignedSampler returns the index of the sampler resource paired
// with a texture through the combined sampler suffix. The sampler must
// have the same variable type as the texture.
func (s *Signature) findAssignedSampler(tex *ResourceDesc) uint32 {
	suffix := s.desc.combinedSuffix()
	if suffix == "" {
		return InvalidSamplerIndex
	}
	lo, hi := s.ResourceIndexRange(tex.VarType)
	for i := lo; i < hi; i++ {
		rd := &s.desc.Resources[i]
		if rd.Type == ResourceSampler && rd.ShaderStages.Overlaps(tex.ShaderStages) &&
			streqSuff(rd.Name, tex.Name, suffix) {
			return i
		}
	}
	return InvalidSamplerIndex
}

// Name returns the signature name.
func (s *Signature) Name() string { return s.desc.Name }

// Desc returns a copy of the signature description.
func (s *Signature) Desc() SignatureDesc { return s.desc.clone() }

// Hash returns the structural hash. Empty signatures hash to zero.
func (s *Signature) Hash() uint64 { return s.hash }

// Backend returns the name of the backend that built the signature.
func (s *Signature) Backend() string { return s.backend }

// SamplerPolicy returns the immutable sampler policy in effect.
func (s *Signature) SamplerPolicy() SamplerPolicy { return s.policy }

// BindingIndex returns the position of the signature in a pipeline layout.
func (s *Signature) BindingIndex() uint8 { return s.desc.BindingIndex }

// ActiveStages returns the union of all resource and sampler stages.
func (s *Signature) ActiveStages() ShaderStages { return s.activeStages }

// NumResources returns the number of resources.
func (s *Signature) NumResources() uint32 {
	return uint32(len(s.desc.Resources)) //nolint:gosec // G115: resource count fits uint32
}

// Resource returns the description of resource i.
func (s *Signature) Resource(i uint32) ResourceDesc { return s.desc.Resources[i] }

// Attribs returns the layout attributes of resource i.
func (s *Signature) Attribs(i uint32) ResourceAttribs { return s.attribs[i] }

// BindingCount returns the number of slots in range r.
func (s *Signature) BindingCount(r BindingRange) uint32 { return s.bindingCount[r] }

// BindingCounts returns the slot counts of all ranges.
func (s *Signature) BindingCounts() BindingTable { return s.bindingCount }

// StaticBindingCounts returns the slot counts of static resources.
func (s *Signature) StaticBindingCounts() BindingTable { return s.staticCount }

// ResourceIndexRange returns the half-open range of resource indices with
// variable type v.
func (s *Signature) ResourceIndexRange(v VariableType) (lo, hi uint32) {
	r := s.varRanges[v]
	return r[0], r[1]
}

// NumImmutableSamplers returns the number of immutable samplers.
func (s *Signature) NumImmutableSamplers() uint32 {
	return uint32(len(s.desc.ImmutableSamplers)) //nolint:gosec // G115: sampler count fits uint32
}

// ImmutableSamplerDesc returns the description of immutable sampler i.
func (s *Signature) ImmutableSamplerDesc(i uint32) ImmutableSamplerDesc {
	return s.desc.ImmutableSamplers[i]
}

// ImmutableSampler returns the sampler object of immutable sampler i.
func (s *Signature) ImmutableSampler(i uint32) *ImmutableSampler {
	if int(i) >= len(s.samplers) {
		return nil
	}
	return s.samplers[i]
}

// FindResource returns the index of the resource called name visible in stage.
func (s *Signature) FindResource(stage ShaderStages, name string) (uint32, bool) {
	for i := range s.desc.Resources {
		rd := &s.desc.Resources[i]
		if rd.Name == name && rd.ShaderStages.Overlaps(stage) {
			return uint32(i), true //nolint:gosec // G115: resource count fits uint32
		}
	}
	return 0, false
}

// FindImmutableSampler returns the immutable sampler matching a sampler
// resource name in stage, honouring the combined sampler suffix.
func (s *Signature) FindImmutableSampler(stage ShaderStages, name string) uint32 {
	return FindImmutableSampler(s.desc.ImmutableSamplers, stage, name, s.desc.combinedSuffix())
}

// GetBindingAttribution resolves name in stage against this signature alone.
func (s *Signature) GetBindingAttribution(name string, stage ShaderStages) ResourceAttribution {
	if i, ok := s.FindResource(stage, name); ok {
		return ResourceAttribution{
			Signature:             s,
			SignatureIndex:        uint32(s.desc.BindingIndex),
			ResourceIndex:         i,
			ImmutableSamplerIndex: InvalidImmutableSamplerIndex,
		}
	}
	if i := s.FindImmutableSampler(stage, name); i != InvalidImmutableSamplerIndex {
		return ResourceAttribution{
			Signature:             s,
			SignatureIndex:        uint32(s.desc.BindingIndex),
			ResourceIndex:         InvalidResourceIndex,
			ImmutableSamplerIndex: i,
		}
	}
	return invalidAttribution()
}

// ResourceRange returns the binding range of resource i, or RangeUnknown
// for samplers.
func (s *Signature) ResourceRange(i uint32) BindingRange {
	r, err := ClassifyResource(&s.desc.Resources[i])
	if err != nil {
		return RangeUnknown
	}
	return r
}

// Retain adds a reference to the signature.
func (s *Signature) Retain() *Signature {
	s.refs.Add(1)
	return s
}

// Release drops a reference. The last release destroys the immutable
// samplers and runs the release hooks.
func (s *Signature) Release() {
	if s.refs.Add(-1) == 0 {
		s.destroySamplers()
		for _, fn := range s.onRelease {
			fn(s)
		}
	}
}
