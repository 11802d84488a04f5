package gl

import (
	"fmt"

	"github.com/gogpu/naga/glsl"
	"github.com/gogpu/naga/ir"

	"github.com/gogpu/gpubind"
	"github.com/gogpu/gpubind/internal/cache"
)

// DefaultGLSLCacheSize is the number of translations a backend keeps.
const DefaultGLSLCacheSize = 64

type glslKey struct {
	module  *ir.Module
	entry   string
	version string
	base    gpubind.BindingTable
}

type glslResult struct {
	src  string
	info glsl.TranslationInfo
}

// GLSLCache memoizes GenerateGLSL per module, entry point, version and
// binding bases. Modules are keyed by pointer and must not be modified
// after their first translation.
type GLSLCache struct {
	lru *cache.LRU[glslKey, glslResult]
}

// NewGLSLCache creates a cache holding at most size translations.
func NewGLSLCache(size int) *GLSLCache {
	return &GLSLCache{lru: cache.New[glslKey, glslResult](size, nil)}
}

// Generate returns the cached translation or calls GenerateGLSL.
func (c *GLSLCache) Generate(module *ir.Module, base gpubind.BindingTable, opts GLSLOptions) (string, glsl.TranslationInfo, error) {
	key := glslKey{module: module, entry: opts.EntryPoint, version: fmt.Sprint(opts.Version), base: base}
	r, err := c.lru.GetOrCreate(key, func() (glslResult, error) {
		src, info, err := GenerateGLSL(module, base, opts)
		return glslResult{src: src, info: info}, err
	})
	return r.src, r.info, err
}

// Stats returns the cache counters.
func (c *GLSLCache) Stats() cache.Stats { return c.lru.Stats() }

// Purge drops every translation.
func (c *GLSLCache) Purge() { c.lru.Purge() }
