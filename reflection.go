package gpubind

import "fmt"

// ShaderResource is a resource reflected from a compiled shader module.
type ShaderResource struct {
	Name string
	Type ResourceType

	// Flags carries FlagFormattedBuffer and FlagCombinedSampler as reflected.
	Flags ResourceFlags

	// ArraySize is 1 for non-arrays and 0 for runtime-sized arrays.
	ArraySize uint32

	Dimension    ResourceDimension
	Multisampled bool
}

// IsFormattedBuffer reports whether the resource is a typed buffer.
func (r *ShaderResource) IsFormattedBuffer() bool {
	return r.Flags&FlagFormattedBuffer != 0
}

// Shader is the reflection of one shader stage.
type Shader struct {
	// Name is used in logs and errors.
	Name string

	// Stage is the single stage the shader runs in.
	Stage ShaderStages

	// Resources in declaration order.
	Resources []ShaderResource

	// CombinedSamplerSuffix is set when the shader samples textures through
	// combined samplers named texture name + suffix.
	CombinedSamplerSuffix string
}

// checkCompatibility reports why a shader resource cannot be served by a
// signature resource.
func (r *ShaderResource) checkCompatibility(rd *ResourceDesc) error {
	if r.Type != rd.Type {
		return fmt.Errorf("%w: '%s' is declared as %s in the shader and %s in the signature",
			ErrIncompatibleResource, r.Name, r.Type, rd.Type)
	}
	if r.IsFormattedBuffer() != (rd.Flags&FlagFormattedBuffer != 0) {
		return fmt.Errorf("%w: '%s' formatted buffer flag differs between shader and signature",
			ErrIncompatibleResource, r.Name)
	}
	runtime := rd.Flags&FlagRuntimeArray != 0
	if r.ArraySize == 0 && !runtime {
		return fmt.Errorf("%w: '%s' is a runtime-sized array in the shader, but the signature lacks %s",
			ErrIncompatibleResource, r.Name, FlagRuntimeArray)
	}
	if r.ArraySize > rd.slotCount() {
		return fmt.Errorf("%w: '%s' has array size %d in the shader, but only %d in the signature",
			ErrIncompatibleResource, r.Name, r.ArraySize, rd.slotCount())
	}
	return nil
}
