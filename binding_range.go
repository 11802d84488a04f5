package gpubind

import "fmt"

// BindingRange is a category of native binding points.
type BindingRange uint8

const (
	RangeUniformBuffer BindingRange = iota
	RangeTexture
	RangeImage
	RangeStorageBuffer

	// NumBindingRanges is the number of binding ranges.
	NumBindingRanges = 4

	// RangeUnknown is returned for resources that occupy no cache slot.
	RangeUnknown BindingRange = 0xFF
)

func (r BindingRange) String() string {
	switch r {
	case RangeUniformBuffer:
		return "Uniform buffer"
	case RangeTexture:
		return "Texture"
	case RangeImage:
		return "Image"
	case RangeStorageBuffer:
		return "Storage buffer"
	default:
		return "Unknown"
	}
}

// BindingTable holds one counter per binding range.
type BindingTable [NumBindingRanges]uint32

// Add returns the element-wise sum of t and o.
func (t BindingTable) Add(o BindingTable) BindingTable {
	for i := range t {
		t[i] += o[i]
	}
	return t
}

// Total returns the sum of all ranges.
func (t BindingTable) Total() uint32 {
	var n uint32
	for _, v := range t {
		n += v
	}
	return n
}

func (t BindingTable) String() string {
	return fmt.Sprintf("UB=%d Tex=%d Img=%d SSBO=%d",
		t[RangeUniformBuffer], t[RangeTexture], t[RangeImage], t[RangeStorageBuffer])
}

// ClassifyResource returns the binding range a resource occupies. Samplers
// have no cache slot and acceleration structures have no range; both fail
// with ErrUnsupportedResourceType.
func ClassifyResource(desc *ResourceDesc) (BindingRange, error) {
	switch desc.Type {
	case ResourceConstantBuffer:
		return RangeUniformBuffer, nil
	case ResourceTextureSRV, ResourceInputAttachment:
		return RangeTexture, nil
	case ResourceBufferSRV:
		if desc.Flags&FlagFormattedBuffer != 0 {
			return RangeTexture, nil
		}
		return RangeStorageBuffer, nil
	case ResourceTextureUAV:
		return RangeImage, nil
	case ResourceBufferUAV:
		if desc.Flags&FlagFormattedBuffer != 0 {
			return RangeImage, nil
		}
		return RangeStorageBuffer, nil
	default:
		return RangeUnknown, fmt.Errorf("%w: %s", ErrUnsupportedResourceType, desc.Type)
	}
}

// slotCount returns the number of cache slots the resource occupies.
// Runtime arrays declared with no size take a single slot.
func (d *ResourceDesc) slotCount() uint32 {
	if d.ArraySize == 0 {
		return 1
	}
	return d.ArraySize
}
