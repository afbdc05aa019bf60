package texture

import (
	"sync"

	"cpu-rasterizer/internal/raster"
)

const (
	checkerSize = 64
	checkerCell = 8

	checkerMagenta uint32 = 0xFFFF00FF
	checkerDark    uint32 = 0xFF282828
)

// Resolver resolves a texture name to a packed texture.
type Resolver interface {
	Resolve(texName string) raster.Texture
}

// Cache is a concurrency-safe texture cache keyed by path. Names that
// cannot be resolved or decoded map to a magenta checkerboard so missing
// assets are visible rather than silently flat.
type Cache struct {
	mu    sync.RWMutex
	items map[string]*cacheEntry
	index *Index

	checker raster.Texture
}

type cacheEntry struct {
	tex raster.Texture
	err error
}

// NewCache creates a new texture cache backed by the given index. index
// may be nil when only LoadFile is used.
func NewCache(index *Index) *Cache {
	if index == nil {
		index = &Index{entries: map[string]string{}}
	}
	return &Cache{
		items:   make(map[string]*cacheEntry),
		index:   index,
		checker: Checkerboard(),
	}
}

// Checkerboard builds the 64×64 fallback texture with 8-pixel cells.
func Checkerboard() raster.Texture {
	tex := raster.Texture{
		Pixels: make([]uint32, checkerSize*checkerSize),
		Width:  checkerSize,
		Height: checkerSize,
	}
	for y := 0; y < checkerSize; y++ {
		for x := 0; x < checkerSize; x++ {
			c := checkerDark
			if (x/checkerCell+y/checkerCell)&1 == 1 {
				c = checkerMagenta
			}
			tex.Pixels[y*checkerSize+x] = c
		}
	}
	return tex
}

// Fallback returns the checkerboard texture.
func (c *Cache) Fallback() raster.Texture { return c.checker }

// Resolve loads and caches a texture by name. Unknown or broken textures
// resolve to the checkerboard.
func (c *Cache) Resolve(texName string) raster.Texture {
	path, ok := c.index.ResolvePath(texName)
	if !ok {
		return c.checker
	}
	tex, err := c.LoadFile(path)
	if err != nil {
		return c.checker
	}
	return tex
}

// LoadFile loads path once and returns the cached result afterwards,
// including a cached error.
func (c *Cache) LoadFile(path string) (raster.Texture, error) {
	// Fast path: read lock
	c.mu.RLock()
	if entry, exists := c.items[path]; exists {
		c.mu.RUnlock()
		return entry.tex, entry.err
	}
	c.mu.RUnlock()

	// Slow path: load from disk
	tex, err := Load(path)

	// Write lock with double-check
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, exists := c.items[path]; exists {
		return entry.tex, entry.err
	}
	c.items[path] = &cacheEntry{tex: tex, err: err}
	return tex, err
}

// Get returns a previously loaded texture.
func (c *Cache) Get(path string) (raster.Texture, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.items[path]
	if !ok || entry.err != nil {
		return raster.Texture{}, false
	}
	return entry.tex, true
}

// Len returns the number of cached paths, failures included.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}
