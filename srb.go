package gpubind

// ShaderResourceBinding holds the resources bound to one use of a
// signature. It is not safe for concurrent use.
type ShaderResourceBinding struct {
	sig   *Signature
	cache *ResourceCache
	opts  srbOptions
}

// NewShaderResourceBinding creates a binding for sig. When initStatic is
// true the signature's static resources are copied immediately; otherwise
// InitializeStaticResources must be called before the binding is used.
func NewShaderResourceBinding(sig *Signature, initStatic bool, opts ...SRBOption) *ShaderResourceBinding {
	b := &ShaderResourceBinding{
		sig:   sig.Retain(),
		cache: &ResourceCache{},
	}
	for _, opt := range opts {
		opt(&b.opts)
	}
	sig.InitSRBResourceCache(b.cache)
	if initStatic {
		b.InitializeStaticResources()
	}
	return b
}

// Signature returns the signature the binding was created for, or nil
// after Release.
func (b *ShaderResourceBinding) Signature() *Signature { return b.sig }

// Cache returns the binding's resource cache.
func (b *ShaderResourceBinding) Cache() *ResourceCache { return b.cache }

// InitializeStaticResources copies the signature's static resources. It is
// a no-op after the first call and after Release.
func (b *ShaderResourceBinding) InitializeStaticResources() {
	if b.sig == nil || b.cache.StaticResourcesInitialized() {
		return
	}
	b.sig.CopyStaticResources(b.cache)
}

// StaticResourcesInitialized reports whether static resources were copied.
func (b *ShaderResourceBinding) StaticResourcesInitialized() bool {
	return b.cache.StaticResourcesInitialized()
}

// SetVariable binds res to element arrayIndex of the variable name visible
// in stage. Static variables are rejected; a bound mutable variable can
// only be replaced when the binding was created with WithMutableOverwrite.
// A nil res unbinds the element.
func (b *ShaderResourceBinding) SetVariable(stage ShaderStages, name string, arrayIndex uint32, res Resource) error {
	sig := b.sig
	if sig == nil {
		return ErrBindingReleased
	}
	i, ok := sig.FindResource(stage, name)
	if !ok {
		return signatureErr(sig.Name(), name, ErrVariableNotFound)
	}
	rd := &sig.desc.Resources[i]

	switch rd.VarType {
	case VarStatic:
		return signatureErr(sig.Name(), name, ErrStaticVariable)
	case VarMutable:
		if res != nil && !b.opts.mutableOverwrite && b.isBound(i, arrayIndex, res) {
			Logger().Error("gpubind: non-null resource is already bound to mutable variable",
				"signature", sig.Name(),
				"variable", arrayElementName(rd.Name, arrayIndex, rd.ArraySize))
			return signatureErr(sig.Name(), name, ErrMutableVariableBound)
		}
	}

	if err := sig.bindResource(b.cache, i, arrayIndex, res); err != nil {
		return signatureErr(sig.Name(), name, err)
	}
	return nil
}

// isBound reports whether element arrayIndex of resource i holds a
// resource other than res.
func (b *ShaderResourceBinding) isBound(i, arrayIndex uint32, res Resource) bool {
	rd := &b.sig.desc.Resources[i]
	if rd.Type == ResourceSampler || arrayIndex >= rd.slotCount() {
		return false
	}
	rng, err := ClassifyResource(rd)
	if err != nil {
		return false
	}
	slot, ok := b.cache.Slot(rng, b.sig.attribs[i].CacheOffset+arrayIndex)
	return ok && slot.IsBound() && slot.Object != res
}

// GetVariable returns the resource bound to element arrayIndex of the
// variable name visible in stage.
func (b *ShaderResourceBinding) GetVariable(stage ShaderStages, name string, arrayIndex uint32) (Resource, bool) {
	if b.sig == nil {
		return nil, false
	}
	i, ok := b.sig.FindResource(stage, name)
	if !ok {
		return nil, false
	}
	rd := &b.sig.desc.Resources[i]
	rng, err := ClassifyResource(rd)
	if err != nil || arrayIndex >= rd.slotCount() {
		return nil, false
	}
	slot, ok := b.cache.Slot(rng, b.sig.attribs[i].CacheOffset+arrayIndex)
	if !ok || !slot.IsBound() {
		return nil, false
	}
	return slot.Object, true
}

// Release empties the cache and drops the binding's reference to its
// signature. Later SetVariable calls return ErrBindingReleased.
func (b *ShaderResourceBinding) Release() {
	if b.sig == nil {
		return
	}
	b.cache.Initialize(BindingTable{})
	b.sig.Release()
	b.sig = nil
}
