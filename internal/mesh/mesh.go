// Package mesh builds procedural indexed meshes and flattens them into the
// triangle-expanded assets the rasterizer consumes.
package mesh

import (
	"math"

	"cpu-rasterizer/internal/mathutil"
	"cpu-rasterizer/internal/raster"
)

// Vertex is an indexed-mesh vertex. P has w=1, N has w=0.
type Vertex struct {
	P    mathutil.Vec4
	N    mathutil.Vec4
	U, V float32
}

// Indexed is a vertex list plus triangles referencing it.
type Indexed struct {
	Vertices  []Vertex
	Triangles [][3]uint32
}

func (m *Indexed) addVertex(p mathutil.Vec3, n mathutil.Vec3, u, v float32) {
	m.Vertices = append(m.Vertices, Vertex{P: p.Point(), N: n.Dir(), U: u, V: v})
}

func (m *Indexed) addTriangle(a, b, c uint32) {
	m.Triangles = append(m.Triangles, [3]uint32{a, b, c})
}

// Rectangle is a quad in the z=0 plane spanning (x1,y1)..(x2,y2).
func Rectangle(x1, y1, x2, y2 float32) *Indexed {
	m := &Indexed{}
	v1 := mathutil.Vec3{x1, y1, 0}
	v2 := mathutil.Vec3{x2, y1, 0}
	v4 := mathutil.Vec3{x1, y2, 0}
	n := v2.Sub(v1).Cross(v4.Sub(v1)).Normalize()

	m.addVertex(v1, n, 0, 1)
	m.addVertex(v2, n, 1, 1)
	m.addVertex(mathutil.Vec3{x2, y2, 0}, n, 1, 0)
	m.addVertex(v4, n, 0, 0)
	m.addTriangle(0, 2, 1)
	m.addTriangle(0, 3, 2)
	return m
}

// Plane is a size×size ground quad in the y=0 plane facing +y.
func Plane(size float32) *Indexed {
	h := size * 0.5
	m := &Indexed{}
	up := mathutil.Vec3{0, 1, 0}
	m.addVertex(mathutil.Vec3{-h, 0, -h}, up, 0, 0)
	m.addVertex(mathutil.Vec3{h, 0, -h}, up, 1, 0)
	m.addVertex(mathutil.Vec3{h, 0, h}, up, 1, 1)
	m.addVertex(mathutil.Vec3{-h, 0, h}, up, 0, 1)
	m.addTriangle(0, 2, 1)
	m.addTriangle(0, 3, 2)
	return m
}

var cubeCorners = [8]mathutil.Vec3{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

var cubeNormals = [6]mathutil.Vec3{
	{0, 0, -1}, {0, 0, 1}, {-1, 0, 0}, {1, 0, 0}, {0, -1, 0}, {0, 1, 0},
}

var cubeFaces = [6][4]int{
	{1, 0, 3, 2},
	{4, 5, 6, 7},
	{3, 0, 4, 7},
	{5, 1, 2, 6},
	{0, 1, 5, 4},
	{2, 3, 7, 6},
}

// Cube is an axis-aligned cube of edge size centred at the origin with
// four vertices per face so normals stay flat.
func Cube(size float32) *Indexed {
	h := size * 0.5
	m := &Indexed{}
	uv := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	for f, face := range cubeFaces {
		base := uint32(len(m.Vertices))
		for k, ci := range face {
			m.addVertex(cubeCorners[ci].Scale(h), cubeNormals[f], uv[k][0], uv[k][1])
		}
		m.addTriangle(base, base+2, base+1)
		m.addTriangle(base, base+3, base+2)
	}
	return m
}

// Sphere is a UV sphere around the z axis. Fewer than 2 latitude or 3
// longitude divisions are raised to those minimums.
func Sphere(radius float32, latDiv, lonDiv int) *Indexed {
	latDiv = max(latDiv, 2)
	lonDiv = max(lonDiv, 3)

	m := &Indexed{}
	for lat := 0; lat <= latDiv; lat++ {
		theta := math.Pi * float64(lat) / float64(latDiv)
		st, ct := math.Sincos(theta)
		for lon := 0; lon <= lonDiv; lon++ {
			phi := 2 * math.Pi * float64(lon) / float64(lonDiv)
			sp, cp := math.Sincos(phi)

			p := mathutil.Vec3{
				radius * float32(st*cp),
				radius * float32(st*sp),
				radius * float32(ct),
			}
			m.addVertex(p, p.Normalize(),
				float32(lon)/float32(lonDiv), float32(lat)/float32(latDiv))
		}
	}

	stride := uint32(lonDiv + 1)
	for lat := 0; lat < latDiv; lat++ {
		for lon := 0; lon < lonDiv; lon++ {
			v0 := uint32(lat)*stride + uint32(lon)
			v1 := v0 + 1
			v2 := uint32(lat+1)*stride + uint32(lon)
			v3 := v2 + 1
			m.addTriangle(v0, v1, v2)
			m.addTriangle(v1, v3, v2)
		}
	}
	return m
}

// Asset is a triangle-expanded mesh: vertex 3t+k is corner k of triangle
// t. It owns its slices; drawables borrow them.
type Asset struct {
	Positions []mathutil.Vec4
	Normals   []mathutil.Vec4
	UVs       []float32
	TriCount  int
	HasUV     bool
}

// Build expands m into an Asset. Triangles with out-of-range indices are
// skipped. UVs are emitted when withUV is set.
func Build(m *Indexed, withUV bool) *Asset {
	a := &Asset{HasUV: withUV}
	n := uint32(len(m.Vertices))
	for _, tri := range m.Triangles {
		if tri[0] >= n || tri[1] >= n || tri[2] >= n {
			continue
		}
		for _, vi := range tri {
			v := m.Vertices[vi]
			p, nn := v.P, v.N
			p[3] = 1
			nn[3] = 0
			a.Positions = append(a.Positions, p)
			a.Normals = append(a.Normals, nn)
			if withUV {
				a.UVs = append(a.UVs, v.U, v.V)
			}
		}
		a.TriCount++
	}
	return a
}

// Mesh borrows the asset's streams as a rasterizer mesh.
func (a *Asset) Mesh() raster.Mesh {
	return raster.Mesh{
		Positions: a.Positions,
		Normals:   a.Normals,
		UVs:       a.UVs,
		TriCount:  a.TriCount,
		HasUV:     a.HasUV,
	}
}
