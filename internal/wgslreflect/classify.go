package wgslreflect

import (
	"github.com/gogpu/gpubind"
	"github.com/gogpu/naga/ir"
)

// classify maps a bound global variable to a shader resource. Variables
// in other address spaces, and handle types that are not images or
// samplers, are not resources.
func classify(module *ir.Module, gv *ir.GlobalVariable) (gpubind.ShaderResource, bool) {
	res := gpubind.ShaderResource{Name: gv.Name, ArraySize: 1}

	inner := typeInner(module, gv.Type)
	if arr, ok := inner.(ir.ArrayType); ok && gv.Space == ir.SpaceHandle {
		// Arrays of textures or samplers. Runtime-sized arrays have no
		// constant size.
		if arr.Size.Constant != nil {
			res.ArraySize = *arr.Size.Constant
		} else {
			res.ArraySize = 0
		}
		inner = typeInner(module, arr.Base)
	}

	switch gv.Space {
	case ir.SpaceUniform:
		res.Type = gpubind.ResourceConstantBuffer
		res.Dimension = gpubind.DimBuffer
		return res, true
	case ir.SpaceStorage:
		// Access qualifiers are not carried through lowering, so every
		// storage buffer is reflected as writable.
		res.Type = gpubind.ResourceBufferUAV
		res.Dimension = gpubind.DimBuffer
		return res, true
	case ir.SpaceHandle:
	default:
		return res, false
	}

	switch t := inner.(type) {
	case ir.SamplerType:
		res.Type = gpubind.ResourceSampler
		return res, true
	case ir.ImageType:
		res.Dimension = dimensionOf(t)
		switch t.Class {
		case ir.ImageClassSampled, ir.ImageClassDepth:
			res.Type = gpubind.ResourceTextureSRV
		case ir.ImageClassStorage:
			res.Type = gpubind.ResourceTextureUAV
		default:
			return res, false
		}
		return res, true
	default:
		return res, false
	}
}

func typeInner(module *ir.Module, h ir.TypeHandle) any {
	if int(h) >= len(module.Types) {
		return nil
	}
	return module.Types[h].Inner
}

func dimensionOf(t ir.ImageType) gpubind.ResourceDimension {
	switch t.Dim {
	case ir.Dim1D:
		return gpubind.DimTex1D
	case ir.Dim2D:
		if t.Arrayed {
			return gpubind.DimTex2DArray
		}
		return gpubind.DimTex2D
	case ir.Dim3D:
		return gpubind.DimTex3D
	case ir.DimCube:
		if t.Arrayed {
			return gpubind.DimTexCubeArray
		}
		return gpubind.DimTexCube
	default:
		return gpubind.DimUndefined
	}
}
