package wgpu

import (
	"encoding/binary"
	"errors"
	"hash"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrNilDevice is returned when a cache is asked to create objects without a device.
var ErrNilDevice = errors.New("wgpu: device is nil")

// LayoutCache shares bind group layouts between signatures with identical
// entries. Signatures that differ only in resource names map to the same
// layout.
//
// LayoutCache is safe for concurrent use. Lookups take a read lock and
// creation is double-checked under the write lock.
type LayoutCache struct {
	mu      sync.RWMutex
	layouts map[uint64]hal.BindGroupLayout

	hits   uint64
	misses uint64
}

// NewLayoutCache creates an empty cache.
func NewLayoutCache() *LayoutCache {
	return &LayoutCache{layouts: make(map[uint64]hal.BindGroupLayout)}
}

// GetOrCreate returns the bind group layout for g, creating it on device
// on first use.
func (c *LayoutCache) GetOrCreate(device hal.Device, label string, g *GroupLayout) (hal.BindGroupLayout, error) {
	key := HashEntries(g.Entries)

	c.mu.RLock()
	if bgl, ok := c.layouts[key]; ok {
		c.mu.RUnlock()
		atomic.AddUint64(&c.hits, 1)
		return bgl, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()

	if bgl, ok := c.layouts[key]; ok {
		atomic.AddUint64(&c.hits, 1)
		return bgl, nil
	}
	if device == nil {
		return nil, ErrNilDevice
	}

	bgl, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   label,
		Entries: g.Entries,
	})
	if err != nil {
		return nil, err
	}
	c.layouts[key] = bgl
	atomic.AddUint64(&c.misses, 1)
	return bgl, nil
}

// Stats returns cache hit and miss counts.
func (c *LayoutCache) Stats() (hits, misses uint64) {
	return atomic.LoadUint64(&c.hits), atomic.LoadUint64(&c.misses)
}

// Len returns the number of cached layouts.
func (c *LayoutCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.layouts)
}

// Destroy releases every cached layout. The cache is empty afterwards.
func (c *LayoutCache) Destroy(device hal.Device) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if device != nil {
		for _, bgl := range c.layouts {
			device.DestroyBindGroupLayout(bgl)
		}
	}
	c.layouts = make(map[uint64]hal.BindGroupLayout)
}

// HashEntries computes the cache key of a list of layout entries.
func HashEntries(entries []gputypes.BindGroupLayoutEntry) uint64 {
	h := fnv.New64a()
	writeUint32(h, uint32(len(entries))) //nolint:gosec // G115: entry count fits uint32
	for i := range entries {
		e := &entries[i]
		writeUint32(h, e.Binding)
		writeUint32(h, uint32(e.Visibility))
		switch {
		case e.Buffer != nil:
			writeUint32(h, 1)
			writeUint32(h, uint32(e.Buffer.Type))
			writeUint64(h, e.Buffer.MinBindingSize)
		case e.Texture != nil:
			writeUint32(h, 2)
			writeUint32(h, uint32(e.Texture.SampleType))
			writeUint32(h, uint32(e.Texture.ViewDimension))
		case e.Storage != nil:
			writeUint32(h, 3)
			writeUint32(h, uint32(e.Storage.Access))
			writeUint32(h, uint32(e.Storage.Format))
			writeUint32(h, uint32(e.Storage.ViewDimension))
		case e.Sampler != nil:
			writeUint32(h, 4)
			writeUint32(h, uint32(e.Sampler.Type))
		}
	}
	return h.Sum64()
}

func writeUint32(h hash.Hash64, v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, _ = h.Write(buf[:])
}

func writeUint64(h hash.Hash64, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.Write(buf[:])
}
