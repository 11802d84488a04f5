// Package cache provides a bounded, thread-safe LRU cache.
//
//	c := cache.New[string, int](64, nil)
//	v, err := c.GetOrCreate("key", func() (int, error) { return 42, nil })
//
// When the cache grows past its limit the least recently used entry is
// evicted and handed to the eviction callback, which releases whatever
// the value owns.
package cache
