// Package wgpu binds signatures through WebGPU bind groups on a gogpu/wgpu
// HAL device.
//
// Each signature becomes one bind group layout whose group index is the
// signature's binding index. Resources take consecutive bindings in
// declaration order, one per array element. Immutable samplers that no
// sampler variable carries get their own bindings after the resources.
// Layouts with identical entries are created once and shared through a
// LayoutCache.
//
// The backend registers itself as "wgpu" when imported and needs a device:
//
//	b, err := backend.Open(backend.BackendWGPU, backend.WithHALDevice(device, queue))
//
// WGSL modules carry their bindings in @group and @binding attributes.
// ApplyBindings on a ShaderModule reports where those differ from the
// pipeline layout; it cannot change them.
package wgpu
