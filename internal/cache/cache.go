package cache

import "sync"

// LRU is a thread-safe cache holding at most limit entries.
// LRU must not be copied after creation.
type LRU[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*node[K, V]
	order   list[K, V]
	limit   int
	onEvict func(K, V)

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache. A limit of 0 means unlimited. onEvict, if not nil,
// is called with the cache lock held for every entry removed by eviction
// or Purge.
func New[K comparable, V any](limit int, onEvict func(K, V)) *LRU[K, V] {
	return &LRU[K, V]{
		entries: make(map[K]*node[K, V]),
		limit:   limit,
		onEvict: onEvict,
	}
}

// Get returns the value for key and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.moveToFront(n)
	return n.value, true
}

// GetOrCreate returns the cached value for key or stores the result of
// create. create runs under the cache lock, so concurrent callers never
// create the same key twice. Errors are returned and nothing is stored.
func (c *LRU[K, V]) GetOrCreate(key K, create func() (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		c.hits++
		c.order.moveToFront(n)
		return n.value, nil
	}
	c.misses++

	v, err := create()
	if err != nil {
		return v, err
	}
	n := &node[K, V]{key: key, value: v}
	c.entries[key] = n
	c.order.pushFront(n)

	for c.limit > 0 && c.order.len > c.limit {
		c.evict(c.order.back())
	}
	return v, nil
}

// Delete removes key without calling the eviction callback.
func (c *LRU[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return false
	}
	c.order.unlink(n)
	delete(c.entries, key)
	return true
}

// Purge evicts every entry.
func (c *LRU[K, V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for n := c.order.back(); n != nil; n = c.order.back() {
		c.evict(n)
	}
}

// Len returns the number of cached entries.
func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats returns a snapshot of the cache counters.
func (c *LRU[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{
		Len:       len(c.entries),
		Limit:     c.limit,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// evict removes n. Caller must hold c.mu.
func (c *LRU[K, V]) evict(n *node[K, V]) {
	c.order.unlink(n)
	delete(c.entries, n.key)
	c.evictions++
	if c.onEvict != nil {
		c.onEvict(n.key, n.value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	Len   int
	Limit int

	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 before the first lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
