package gpubind

import "fmt"

// ResourceType is the kind of a shader resource.
type ResourceType uint8

const (
	ResourceUnknown ResourceType = iota
	ResourceConstantBuffer
	ResourceTextureSRV
	ResourceBufferSRV
	ResourceTextureUAV
	ResourceBufferUAV
	ResourceSampler
	ResourceInputAttachment
	ResourceAccelStruct
)

var resourceTypeNames = [...]string{
	ResourceUnknown:         "Unknown",
	ResourceConstantBuffer:  "ConstantBuffer",
	ResourceTextureSRV:      "TextureSRV",
	ResourceBufferSRV:       "BufferSRV",
	ResourceTextureUAV:      "TextureUAV",
	ResourceBufferUAV:       "BufferUAV",
	ResourceSampler:         "Sampler",
	ResourceInputAttachment: "InputAttachment",
	ResourceAccelStruct:     "AccelStruct",
}

func (t ResourceType) String() string {
	if int(t) < len(resourceTypeNames) {
		return resourceTypeNames[t]
	}
	return fmt.Sprintf("ResourceType(%d)", uint8(t))
}

// VariableType controls when a resource may be bound.
//
// Static resources are bound once through the signature and copied into
// every shader resource binding. Mutable resources are bound once per
// shader resource binding. Dynamic resources may be rebound at any time.
type VariableType uint8

const (
	VarStatic VariableType = iota
	VarMutable
	VarDynamic

	numVariableTypes = 3
)

var variableTypeNames = [...]string{"Static", "Mutable", "Dynamic"}

func (v VariableType) String() string {
	if int(v) < len(variableTypeNames) {
		return variableTypeNames[v]
	}
	return fmt.Sprintf("VariableType(%d)", uint8(v))
}

// ResourceFlags modify how a resource is classified and bound.
type ResourceFlags uint8

const (
	FlagNone ResourceFlags = 0

	// FlagNoDynamicBuffers marks a buffer that is never bound with a dynamic offset.
	FlagNoDynamicBuffers ResourceFlags = 1 << (iota - 1)

	// FlagCombinedSampler marks a texture SRV sampled through a combined sampler.
	FlagCombinedSampler

	// FlagFormattedBuffer marks a buffer SRV/UAV accessed through a typed view.
	FlagFormattedBuffer

	// FlagRuntimeArray marks an array whose size is only known at runtime.
	FlagRuntimeArray
)

var resourceFlagNames = [...]string{"NoDynamicBuffers", "CombinedSampler", "FormattedBuffer", "RuntimeArray"}

func (f ResourceFlags) String() string {
	if f == FlagNone {
		return "None"
	}
	s := ""
	for i, name := range resourceFlagNames {
		if f&(1<<i) == 0 {
			continue
		}
		if s != "" {
			s += "|"
		}
		s += name
	}
	return s
}

// allowedFlags returns the flags legal for a resource type.
func allowedFlags(t ResourceType) ResourceFlags {
	switch t {
	case ResourceConstantBuffer:
		return FlagNoDynamicBuffers | FlagRuntimeArray
	case ResourceTextureSRV:
		return FlagCombinedSampler | FlagRuntimeArray
	case ResourceBufferSRV, ResourceBufferUAV:
		return FlagNoDynamicBuffers | FlagFormattedBuffer | FlagRuntimeArray
	case ResourceTextureUAV, ResourceSampler, ResourceAccelStruct:
		return FlagRuntimeArray
	default:
		return FlagNone
	}
}

// ResourceDimension is the dimensionality of a bound view.
type ResourceDimension uint8

const (
	DimUndefined ResourceDimension = iota
	DimBuffer
	DimTex1D
	DimTex1DArray
	DimTex2D
	DimTex2DArray
	DimTex3D
	DimTexCube
	DimTexCubeArray
)

var dimensionNames = [...]string{
	"Undefined", "Buffer", "Tex1D", "Tex1DArray", "Tex2D", "Tex2DArray", "Tex3D", "TexCube", "TexCubeArray",
}

func (d ResourceDimension) String() string {
	if int(d) < len(dimensionNames) {
		return dimensionNames[d]
	}
	return fmt.Sprintf("ResourceDimension(%d)", uint8(d))
}

// Compatible reports whether a view of dimension d satisfies a shader
// declaration of dimension want. Undefined accepts any view, and a
// 2D array view may back a 2D declaration.
func (d ResourceDimension) Compatible(want ResourceDimension) bool {
	if want == DimUndefined || d == want {
		return true
	}
	switch want {
	case DimTex2D:
		return d == DimTex2DArray
	case DimTex1D:
		return d == DimTex1DArray
	}
	return false
}

// ResourceDesc describes one shader resource of a signature.
type ResourceDesc struct {
	// Name is the resource name used by shaders.
	Name string

	// ShaderStages is the set of stages the resource is visible to.
	ShaderStages ShaderStages

	// ArraySize is the number of array elements. Zero is only legal
	// together with FlagRuntimeArray.
	ArraySize uint32

	// Type is the resource kind.
	Type ResourceType

	// VarType is the variable mutability class.
	VarType VariableType

	// Flags modify classification and binding.
	Flags ResourceFlags
}

// validate checks the descriptor on its own.
func (d *ResourceDesc) validate() error {
	if d.Name == "" {
		return ErrEmptyResourceName
	}
	if d.ShaderStages == StageNone {
		return ErrNoShaderStages
	}
	if d.Type == ResourceUnknown || d.Type > ResourceAccelStruct {
		return fmt.Errorf("%w: %s", ErrUnsupportedResourceType, d.Type)
	}
	if d.VarType >= numVariableTypes {
		return fmt.Errorf("gpubind: invalid variable type %d", uint8(d.VarType))
	}
	if d.ArraySize == 0 && d.Flags&FlagRuntimeArray == 0 {
		return ErrInvalidArraySize
	}
	if bad := d.Flags &^ allowedFlags(d.Type); bad != 0 {
		return fmt.Errorf("%w: %s is not allowed for %s", ErrInvalidResourceFlags, bad, d.Type)
	}
	return nil
}

// compatibleWith reports whether two descriptors bind identically. Names
// are not compared.
func (d *ResourceDesc) compatibleWith(o *ResourceDesc) bool {
	return d.ShaderStages == o.ShaderStages &&
		d.ArraySize == o.ArraySize &&
		d.Type == o.Type &&
		d.VarType == o.VarType &&
		d.Flags == o.Flags
}
