// Package gpubind implements the pipeline resource signature and binding
// model shared by the gpubind backends.
//
// # Overview
//
// A pipeline declares the shader resources it consumes (constant buffers,
// textures, storage buffers, images, samplers) through a [Signature]. The
// signature assigns every resource a slot in one of four binding ranges,
// owns the immutable samplers, and computes a structural hash used to decide
// whether two signatures can be substituted for each other.
//
// Resources are bound through a [ResourceCache]. A signature owns a cache
// holding its static resources; every [ShaderResourceBinding] owns a cache
// with static, mutable and dynamic resources. Static resources are copied
// into the binding's cache once, when it is initialized.
//
// # Quick Start
//
//	sig, err := gpubind.BuildSignature([]gpubind.ResourceDesc{
//	    {Name: "albedo", ShaderStages: gpubind.StageFragment, ArraySize: 1,
//	        Type: gpubind.ResourceTextureSRV, VarType: gpubind.VarStatic},
//	    {Name: "Scene", ShaderStages: gpubind.StageVertex | gpubind.StageFragment, ArraySize: 1,
//	        Type: gpubind.ResourceConstantBuffer, VarType: gpubind.VarMutable},
//	}, nil)
//	if err != nil {
//	    return err
//	}
//	srb := gpubind.NewShaderResourceBinding(sig, true)
//	err = srb.SetVariable(gpubind.StageVertex, "Scene", 0, sceneBuffer)
//
// # Backends
//
// Native binding models live in sub-packages: backend/gl maps the ranges onto
// OpenGL uniform, texture, image and shader storage bindings; backend/wgpu
// maps signatures onto WebGPU bind group layouts through gogpu/wgpu/hal.
// A backend is selected once, with backend.Open, and signatures built by
// different backends are never mixed in one [PipelineLayout].
//
// # Validation
//
// Development checks ([Pipeline.ValidateResources], [ValidateResourceLimits])
// are compiled out with the nodevchecks build tag and can be switched off
// at runtime with [WithStrictValidation].
package gpubind
