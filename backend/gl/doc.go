// Package gl implements the OpenGL-family binding backend.
//
// OpenGL has flat binding ranges per resource category and no separate
// sampler objects in shaders, so immutable samplers are assigned to
// textures by texture name. After linking, the bindings of a program are
// either set through the API (uniform blocks, sampler uniforms and, where
// the driver allows, storage blocks and image uniforms) or baked into the
// generated GLSL with binding bases.
//
// The backend registers itself as "gl" on import:
//
//	import _ "github.com/gogpu/gpubind/backend/gl"
package gl
