package scene

import "cpu-rasterizer/internal/ecs"

// Block is one archetype table's drawable columns. The slices are borrowed
// from the world and are valid until its next structural change.
type Block struct {
	Meshes     []MeshRef
	Transforms []Transform
	Materials  []Material
	Textures   []TextureRef
	N          int
}

// DrawableCache lists the tables holding every drawable component. It is
// rebuilt only when the world's version moves.
type DrawableCache struct {
	blocks  []Block
	version uint64
	valid   bool
	n       int
}

// Refresh rebuilds the block list if w changed structurally since the
// last call. Cost is proportional to the number of tables.
func (c *DrawableCache) Refresh(w *ecs.World) {
	v := w.Version()
	if c.valid && v == c.version {
		return
	}

	want := RegisterComponents(w)
	c.blocks = c.blocks[:0]
	c.n = 0
	for i := 0; i < w.TableCount(); i++ {
		t := w.Table(i)
		if t.Len() == 0 || !t.ContainsAll(want) {
			continue
		}
		b := Block{
			Meshes:     ecs.Column[MeshRef](w, t),
			Transforms: ecs.Column[Transform](w, t),
			Materials:  ecs.Column[Material](w, t),
			Textures:   ecs.Column[TextureRef](w, t),
			N:          t.Len(),
		}
		c.blocks = append(c.blocks, b)
		c.n += b.N
	}
	c.version = v
	c.valid = true
}

// Blocks returns the cached blocks in table order.
func (c *DrawableCache) Blocks() []Block { return c.blocks }

// Version is the world version the blocks were built from.
func (c *DrawableCache) Version() uint64 { return c.version }

// Len is the total number of drawables across blocks.
func (c *DrawableCache) Len() int { return c.n }
