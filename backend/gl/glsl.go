package gl

import (
	"fmt"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"
)

// GLSLOptions select the generated language version and entry point.
type GLSLOptions struct {
	// Version defaults to GLSL 3.30.
	Version    glsl.Version
	EntryPoint string
}

// GenerateGLSL translates module to GLSL with the binding bases of one
// signature slot, so that @binding(n) in range r becomes base[r]+n.
// Samplers are combined with their textures and share the texture base.
func GenerateGLSL(module *ir.Module, base gpubind.BindingTable, opts GLSLOptions) (string, glsl.TranslationInfo, error) {
	version := opts.Version
	if version.Major == 0 {
		version = glsl.Version330
	}
	src, info, err := glsl.Compile(module, glsl.Options{
		LangVersion:        version,
		EntryPoint:         opts.EntryPoint,
		UniformBindingBase: base[gpubind.RangeUniformBuffer],
		TextureBindingBase: base[gpubind.RangeTexture],
		SamplerBindingBase: base[gpubind.RangeTexture],
		StorageBindingBase: base[gpubind.RangeStorageBuffer],
	})
	if err != nil {
		return "", glsl.TranslationInfo{}, fmt.Errorf("gl: generate %q: %w", opts.EntryPoint, err)
	}
	return src, info, nil
}
