package scene

import (
	"math"

	"cpu-rasterizer/internal/ecs"
	"cpu-rasterizer/internal/mathutil"
	"cpu-rasterizer/internal/mesh"
	"cpu-rasterizer/internal/raster"
)

// Layout kinds accepted by Populate.
const (
	LayoutCubes   = "cubes"
	LayoutSpheres = "spheres"
	LayoutMixed   = "mixed"
)

// Layout describes a procedural scene: Objects shapes on a ring around
// the origin, optionally standing on a floor.
type Layout struct {
	Kind    string
	Objects int
	Radius  float32
	Floor   bool
	// Texture is applied to every shape when valid.
	Texture TextureRef
}

var palette = []raster.Colour{
	{R: 0.90, G: 0.35, B: 0.25},
	{R: 0.25, G: 0.60, B: 0.90},
	{R: 0.95, G: 0.80, B: 0.30},
	{R: 0.40, G: 0.80, B: 0.45},
	{R: 0.75, G: 0.45, B: 0.85},
	{R: 0.95, G: 0.95, B: 0.95},
}

// Populate spawns the layout's drawables into w and returns how many were
// created. Unknown kinds fall back to LayoutMixed.
func Populate(w *ecs.World, l Layout) int {
	RegisterComponents(w)
	radius := l.Radius
	if radius <= 0 {
		radius = 2.5
	}

	cube := mesh.Build(mesh.Cube(1), true)
	sphere := mesh.Build(mesh.Sphere(0.6, 16, 24), true)

	n := 0
	for i := range max(l.Objects, 0) {
		a := 2 * math.Pi * float64(i) / float64(max(l.Objects, 1))
		s, c := math.Sincos(a)
		world := mathutil.Translate(radius*float32(s), 0, radius*float32(c)).
			Mul(mathutil.RotXYZ(0.3*float32(i), float32(a), 0))

		asset := cube
		switch l.Kind {
		case LayoutSpheres:
			asset = sphere
		case LayoutCubes:
		default:
			if i%2 == 1 {
				asset = sphere
			}
		}
		Spawn(w, asset, world, palette[i%len(palette)], 0.25, 0.75, l.Texture)
		n++
	}

	if l.Floor {
		floor := mesh.Build(mesh.Plane(4*radius), true)
		d := DefaultMaterial()
		Spawn(w, floor, mathutil.Translate(0, -1, 0), raster.Colour{R: 0.55, G: 0.55, B: 0.6}, d.Ka, d.Kd, TextureRef{})
		n++
	}
	return n
}
