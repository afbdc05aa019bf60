// Package scene defines the drawable components and the cache that turns
// archetype tables into contiguous draw blocks.
package scene

import (
	"slices"

	"cpu-rasterizer/internal/ecs"
	"cpu-rasterizer/internal/mathutil"
	"cpu-rasterizer/internal/mesh"
	"cpu-rasterizer/internal/raster"
)

// MeshRef borrows a mesh.Asset's triangle-expanded streams.
type MeshRef raster.Mesh

// Transform is a drawable's object-to-world matrix.
type Transform struct {
	World mathutil.Mat4
}

// Material is a drawable's flat colour and Lambert coefficients.
type Material raster.Material

// DefaultMaterial is white with ka = kd = 0.75.
func DefaultMaterial() Material {
	return Material{Colour: raster.Colour{R: 1, G: 1, B: 1}, Ka: 0.75, Kd: 0.75}
}

// TextureRef borrows a texel grid. The zero value means untextured.
type TextureRef raster.Texture

// Valid reports whether the reference points at a usable texture.
func (t TextureRef) Valid() bool { return raster.Texture(t).Valid() }

// RegisterComponents registers the four drawable component types so
// tables can be matched before the first drawable is spawned.
func RegisterComponents(w *ecs.World) []ecs.ComponentID {
	return sortedIDs(
		ecs.Register[MeshRef](w),
		ecs.Register[Transform](w),
		ecs.Register[Material](w),
		ecs.Register[TextureRef](w),
	)
}

// Spawn creates a drawable entity referencing asset.
func Spawn(w *ecs.World, asset *mesh.Asset, world mathutil.Mat4, colour raster.Colour, ka, kd float32, tex TextureRef) ecs.Entity {
	e := w.CreateEntity()
	ecs.Add(w, e, MeshRef(asset.Mesh()))
	ecs.Add(w, e, Transform{World: world})
	ecs.Add(w, e, Material{Colour: colour, Ka: ka, Kd: kd})
	ecs.Add(w, e, tex)
	return e
}

func sortedIDs(ids ...ecs.ComponentID) []ecs.ComponentID {
	slices.Sort(ids)
	return ids
}
