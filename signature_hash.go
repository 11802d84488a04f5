package gpubind

import (
	"encoding/binary"
	"hash"
	"hash/fnv"
)

// computeHash hashes every field that affects binding (resource names are
// excluded) followed by the resolved cache offsets.
func (s *Signature) computeHash() uint64 {
	if len(s.desc.Resources) == 0 && len(s.desc.ImmutableSamplers) == 0 {
		return 0
	}

	h := fnv.New64a()
	hashWriteUint32(h, uint32(s.desc.BindingIndex))
	hashWriteBool(h, s.desc.UseCombinedTextureSamplers)
	hashWriteString(h, s.desc.combinedSuffix())

	hashWriteUint32(h, s.NumResources())
	for i := range s.desc.Resources {
		rd := &s.desc.Resources[i]
		hashWriteUint32(h, uint32(rd.ShaderStages))
		hashWriteUint32(h, rd.ArraySize)
		hashWriteUint32(h, uint32(rd.Type))
		hashWriteUint32(h, uint32(rd.VarType))
		hashWriteUint32(h, uint32(rd.Flags))
	}

	hashWriteUint32(h, s.NumImmutableSamplers())
	for i := range s.desc.ImmutableSamplers {
		smp := &s.desc.ImmutableSamplers[i]
		hashWriteUint32(h, uint32(smp.ShaderStages))
		hashSamplerDesc(h, &smp.Desc)
	}

	for _, a := range s.attribs {
		hashWriteUint32(h, a.CacheOffset)
	}
	return h.Sum64()
}

func hashSamplerDesc(h hash.Hash64, d *SamplerDesc) {
	hashWriteUint32(h, uint32(d.MinFilter))
	hashWriteUint32(h, uint32(d.MagFilter))
	hashWriteUint32(h, uint32(d.MipFilter))
	hashWriteUint32(h, uint32(d.AddressU))
	hashWriteUint32(h, uint32(d.AddressV))
	hashWriteUint32(h, uint32(d.AddressW))
	hashWriteUint32(h, uint32(d.MaxAnisotropy))
}

func hashWriteUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

//nolint:gosec // G115: names in a signature description are short
func hashWriteString(h hash.Hash64, s string) {
	hashWriteUint32(h, uint32(len(s)))
	_, _ = h.Write([]byte(s))
}

func hashWriteBool(h hash.Hash64, v bool) {
	if v {
		_, _ = h.Write([]byte{1})
	} else {
		_, _ = h.Write([]byte{0})
	}
}

// IsCompatibleWith reports whether shader resource bindings created for s
// can be used with pipelines expecting other, and the other way round.
// The sampler index assigned to textures is not compared.
func (s *Signature) IsCompatibleWith(other *Signature) bool {
	if s == other {
		return true
	}
	if other == nil {
		return s.isEmpty()
	}
	if s.hash != other.hash {
		return false
	}
	if s.bindingCount != other.bindingCount {
		return false
	}
	if !signatureDescsCompatible(&s.desc, &other.desc) {
		return false
	}
	for i := range s.attribs {
		if !s.attribs[i].IsCompatibleWith(other.attribs[i]) {
			return false
		}
	}
	return true
}

func (s *Signature) isEmpty() bool {
	return len(s.desc.Resources) == 0 && len(s.desc.ImmutableSamplers) == 0
}

// SignaturesCompatible is IsCompatibleWith where nil and empty signatures
// are interchangeable.
func SignaturesCompatible(a, b *Signature) bool {
	switch {
	case a == b:
		return true
	case a == nil:
		return b.isEmpty()
	default:
		return a.IsCompatibleWith(b)
	}
}

func signatureDescsCompatible(a, b *SignatureDesc) bool {
	if a.BindingIndex != b.BindingIndex ||
		a.UseCombinedTextureSamplers != b.UseCombinedTextureSamplers ||
		a.combinedSuffix() != b.combinedSuffix() {
		return false
	}
	if len(a.Resources) != len(b.Resources) || len(a.ImmutableSamplers) != len(b.ImmutableSamplers) {
		return false
	}
	for i := range a.Resources {
		if !a.Resources[i].compatibleWith(&b.Resources[i]) {
			return false
		}
	}
	for i := range a.ImmutableSamplers {
		sa, sb := &a.ImmutableSamplers[i], &b.ImmutableSamplers[i]
		if sa.ShaderStages != sb.ShaderStages || sa.Desc != sb.Desc {
			return false
		}
	}
	return true
}
