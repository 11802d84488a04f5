package wgpu

import (
	"fmt"

	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/gpubind"
)

// CreatePipelineLayout creates the HAL pipeline layout of layout. Group i
// is the bind group layout of the signature with binding index i; unused
// indices get an empty group.
func (b *Backend) CreatePipelineLayout(label string, layout *gpubind.PipelineLayout) (hal.PipelineLayout, error) {
	if name := layout.Backend(); name != "" && name != b.Name() {
		return nil, fmt.Errorf("%w: layout was built for %q", gpubind.ErrBackendMismatch, name)
	}

	n := layout.SignatureCount()
	groups := make([]hal.BindGroupLayout, 0, n)
	for i := uint32(0); i < n; i++ {
		_, bgl, err := b.layoutFor(layout.Signature(i))
		if err != nil {
			return nil, err
		}
		groups = append(groups, bgl)
	}

	pl, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            label,
		BindGroupLayouts: groups,
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu: create pipeline layout %q: %w", label, err)
	}
	b.log().Debug("wgpu: pipeline layout created", "label", label, "groups", n)
	return pl, nil
}

// DestroyPipelineLayout releases a layout created by CreatePipelineLayout.
func (b *Backend) DestroyPipelineLayout(pl hal.PipelineLayout) {
	if pl != nil {
		b.device.DestroyPipelineLayout(pl)
	}
}
