// Package backend selects the binding backend a device uses.
//
// Backends adapt the gpubind binding model to one family of native APIs.
// They register a factory from an init() function and are opened by name
// when a device is created:
//
//	import (
//		"github.com/gogpu/gpubind/backend"
//		_ "github.com/gogpu/gpubind/backend/gl"
//		_ "github.com/gogpu/gpubind/backend/wgpu"
//	)
//
//	b, err := backend.Open(backend.BackendGL)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Release()
//
// # Backend Selection
//
// Default opens the best backend that can be created with the given
// options:
//
//	b, err := backend.Default(backend.WithHALDevice(dev, queue))
//
// The wgpu backend needs a HAL device and is skipped without one, so a
// process without a GPU falls back to gl, which only computes layouts and
// program bindings.
//
// # Available Backends
//
//   - "wgpu": bind group layouts, pipeline layouts and bind groups on gogpu/wgpu/hal
//   - "gl": OpenGL-style flat binding ranges with texture-name immutable samplers
package backend
