package gpubind

import (
	"fmt"
	"sort"
)

// LayoutVariable overrides the variable type and stages of shader
// resources called Name.
type LayoutVariable struct {
	ShaderStages ShaderStages
	Name         string
	Type         VariableType
	Flags        ResourceFlags
}

// LayoutDesc describes how an implicit signature is derived from shaders.
type LayoutDesc struct {
	DefaultVariableType VariableType
	Variables           []LayoutVariable
	ImmutableSamplers   []ImmutableSamplerDesc
}

// findVariable returns the variable matching name in stage.
func (l *LayoutDesc) findVariable(stage ShaderStages, name string) (*LayoutVariable, bool) {
	for i := range l.Variables {
		v := &l.Variables[i]
		if v.Name == name && v.ShaderStages.Overlaps(stage) {
			return v, true
		}
	}
	return nil, false
}

type implicitKey struct {
	name   string
	stages ShaderStages
}

type implicitResource struct {
	desc         ResourceDesc
	dimension    ResourceDimension
	multisampled bool
}

// BuildImplicitSignature derives a signature from the reflected resources
// of shaders. Resources are keyed by name and effective stages: a layout
// variable spanning several stages merges the declarations of those stages
// into one resource, which must then agree on type, dimension, array size
// and multisampling. Runtime-sized arrays need an explicit signature.
func BuildImplicitSignature(name string, layout LayoutDesc, shaders []*Shader, opts ...SignatureOption) (*Signature, error) {
	var (
		resources []implicitResource
		index     = make(map[implicitKey]int)
		suffix    string
	)

	for _, sh := range shaders {
		if sh.CombinedSamplerSuffix != "" {
			if suffix != "" && suffix != sh.CombinedSamplerSuffix {
				return nil, signatureErr(name, "", fmt.Errorf("%w: '%s' in shader '%s', '%s' in earlier shaders",
					ErrCombinedSamplerSuffix, sh.CombinedSamplerSuffix, sh.Name, suffix))
			}
			suffix = sh.CombinedSamplerSuffix
		}

		for i := range sh.Resources {
			attr := &sh.Resources[i]

			varType := layout.DefaultVariableType
			stages := sh.Stage
			flags := attr.Flags
			if v, ok := layout.findVariable(sh.Stage, attr.Name); ok {
				varType = v.Type
				stages = v.ShaderStages
				flags |= v.Flags
			}

			key := implicitKey{name: attr.Name, stages: stages}
			if j, ok := index[key]; ok {
				if err := mergeImplicit(name, &resources[j], attr); err != nil {
					return nil, err
				}
				resources[j].desc.Flags |= flags & FlagCombinedSampler
				continue
			}

			if attr.ArraySize == 0 {
				return nil, signatureErr(name, attr.Name, fmt.Errorf("%w: resource in shader '%s'", ErrRuntimeArray, sh.Name))
			}
			index[key] = len(resources)
			resources = append(resources, implicitResource{
				desc: ResourceDesc{
					Name:         attr.Name,
					ShaderStages: stages,
					ArraySize:    attr.ArraySize,
					Type:         attr.Type,
					VarType:      varType,
					Flags:        flags &^ FlagRuntimeArray,
				},
				dimension:    attr.Dimension,
				multisampled: attr.Multisampled,
			})
		}
	}

	sort.SliceStable(resources, func(i, j int) bool {
		return resources[i].desc.VarType < resources[j].desc.VarType
	})

	desc := SignatureDesc{
		Name:                       name,
		Resources:                  make([]ResourceDesc, len(resources)),
		ImmutableSamplers:          layout.ImmutableSamplers,
		UseCombinedTextureSamplers: suffix != "",
		CombinedSamplerSuffix:      suffix,
	}
	for i := range resources {
		desc.Resources[i] = resources[i].desc
	}
	return NewSignature(desc, opts...)
}

func mergeImplicit(sig string, res *implicitResource, attr *ShaderResource) error {
	var what string
	switch {
	case res.desc.Type != attr.Type:
		what = "type"
	case res.dimension != attr.Dimension:
		what = "resource dimension"
	case res.desc.ArraySize != attr.ArraySize:
		what = "array size"
	case res.multisampled != attr.Multisampled:
		what = "multisample state"
	case (res.desc.Flags&FlagFormattedBuffer != 0) != attr.IsFormattedBuffer():
		what = "formatted buffer flag"
	default:
		return nil
	}
	return signatureErr(sig, attr.Name,
		fmt.Errorf("%w: resource is shared between multiple shaders, but its %s varies", ErrResourceMerge, what))
}
