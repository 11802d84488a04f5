package gpubind

import (
	"errors"
	"fmt"
)

// Construction errors. They are fatal to signature creation.
var (
	// ErrUnsortedResources is returned when resources are not sorted by variable type.
	ErrUnsortedResources = errors.New("gpubind: resources must be sorted by variable type")

	// ErrInvalidArraySize is returned for a zero array size without the runtime-array flag.
	ErrInvalidArraySize = errors.New("gpubind: invalid array size")

	// ErrDuplicateResource is returned when two resources share a name and a shader stage.
	ErrDuplicateResource = errors.New("gpubind: duplicate resource")

	// ErrInvalidResourceFlags is returned when flags are not legal for the resource type.
	ErrInvalidResourceFlags = errors.New("gpubind: invalid resource flags")

	// ErrEmptyResourceName is returned for a resource or immutable sampler without a name.
	ErrEmptyResourceName = errors.New("gpubind: resource name is empty")

	// ErrNoShaderStages is returned for a resource visible to no shader stage.
	ErrNoShaderStages = errors.New("gpubind: resource has no shader stages")

	// ErrDuplicateImmutableSampler is returned when two immutable samplers
	// share a name and a shader stage.
	ErrDuplicateImmutableSampler = errors.New("gpubind: duplicate immutable sampler")

	// ErrMissingSamplerSuffix is returned when combined texture samplers are
	// enabled without a suffix.
	ErrMissingSamplerSuffix = errors.New("gpubind: combined sampler suffix is empty")

	// ErrUnsupportedResourceType is returned when a resource type has no binding range.
	ErrUnsupportedResourceType = errors.New("gpubind: unsupported resource type")

	// ErrResourceMerge is returned when a resource shared between shaders
	// is declared differently in each of them.
	ErrResourceMerge = errors.New("gpubind: incompatible resource declarations")

	// ErrRuntimeArray is returned when an implicit signature meets a runtime-sized array.
	ErrRuntimeArray = errors.New("gpubind: runtime-sized array requires an explicit signature")

	// ErrCombinedSamplerSuffix is returned when shaders disagree on the combined sampler suffix.
	ErrCombinedSamplerSuffix = errors.New("gpubind: combined sampler suffix mismatch")
)

// Binding errors. They are fatal when a pipeline layout is resolved.
var (
	// ErrResourceNotFound is returned when a shader resource is not present
	// in any signature of a pipeline layout.
	ErrResourceNotFound = errors.New("gpubind: resource not found in any signature")

	// ErrIncompatibleResource is returned when a shader resource does not
	// match the signature resource it resolved to.
	ErrIncompatibleResource = errors.New("gpubind: shader resource is incompatible with signature")

	// ErrDuplicateBindingIndex is returned when two signatures of a layout
	// use the same binding index.
	ErrDuplicateBindingIndex = errors.New("gpubind: duplicate signature binding index")

	// ErrBackendMismatch is returned when signatures built by different
	// backends are combined.
	ErrBackendMismatch = errors.New("gpubind: signatures belong to different backends")

	// ErrResourceLimit is returned when a pipeline layout exceeds device limits.
	ErrResourceLimit = errors.New("gpubind: resource limit exceeded")
)

// Application errors returned by caches and shader resource bindings.
var (
	// ErrResourceKindMismatch is returned when a resource does not match the
	// kind expected by a binding range.
	ErrResourceKindMismatch = errors.New("gpubind: resource kind does not match binding range")

	// ErrOffsetOutOfRange is returned for a cache offset past the range size.
	ErrOffsetOutOfRange = errors.New("gpubind: cache offset out of range")

	// ErrArrayIndexOutOfRange is returned for an array index past the resource array size.
	ErrArrayIndexOutOfRange = errors.New("gpubind: array index out of range")

	// ErrVariableNotFound is returned when a name does not identify a resource.
	ErrVariableNotFound = errors.New("gpubind: variable not found")

	// ErrStaticVariable is returned when a static variable is set through a
	// shader resource binding.
	ErrStaticVariable = errors.New("gpubind: static variables must be set through the signature")

	// ErrNotStaticVariable is returned when a non-static variable is set on a signature.
	ErrNotStaticVariable = errors.New("gpubind: only static variables can be set on a signature")

	// ErrMutableVariableBound is returned when a bound mutable variable is replaced.
	ErrMutableVariableBound = errors.New("gpubind: mutable variable is already bound")

	// ErrBindingReleased is returned when a released shader resource binding is used.
	ErrBindingReleased = errors.New("gpubind: shader resource binding is released")
)

// SignatureError describes a failure attributed to one resource of a signature.
type SignatureError struct {
	// Signature is the signature name.
	Signature string
	// Resource is the resource name, empty when the failure is not tied to a resource.
	Resource string
	// Err is the underlying sentinel error.
	Err error
}

func (e *SignatureError) Error() string {
	if e.Resource == "" {
		return fmt.Sprintf("signature '%s': %v", e.Signature, e.Err)
	}
	return fmt.Sprintf("signature '%s': resource '%s': %v", e.Signature, e.Resource, e.Err)
}

func (e *SignatureError) Unwrap() error { return e.Err }

func signatureErr(sig, res string, err error) error {
	return &SignatureError{Signature: sig, Resource: res, Err: err}
}
