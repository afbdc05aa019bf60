package raster

import "cpu-rasterizer/internal/mathutil"

// Mesh is a triangle-expanded vertex stream: three positions and normals
// per triangle, two UV floats per vertex when HasUV is set.
type Mesh struct {
	Positions []mathutil.Vec4
	Normals   []mathutil.Vec4
	UVs       []float32
	TriCount  int
	HasUV     bool
}

// Params is the per-dispatch state shared by every band.
type Params struct {
	VP       mathutil.Mat4
	Light    mathutil.Vec4
	Textures bool
	FlipV    bool
	Options
}

// DrawMesh transforms, rejects and rasterizes every triangle of m into
// rows y0..y1 of t.
func DrawMesh(t *Target, y0, y1 int, p *Params, world mathutil.Mat4, m *Mesh, mat Material, tex Texture, st *Stats) {
	if len(m.Positions) == 0 || len(m.Normals) == 0 || m.TriCount == 0 {
		return
	}
	if !t.Valid() || !t.HasDepth() || y0 > y1 {
		return
	}

	count := min(m.TriCount, len(m.Positions)/3, len(m.Normals)/3)
	useTex := p.Textures && tex.Valid() && m.HasUV && len(m.UVs) >= count*6
	mvp := p.VP.Mul(world)
	fw, fh := float32(t.Width), float32(t.Height)

	tri := Triangle{Material: mat, Texture: tex, Textured: useTex}
	var uv [6]float32
	for i := 0; i < count; i++ {
		base := i * 3
		st.Triangles++

		c0 := mvp.MulVec4(m.Positions[base])
		c1 := mvp.MulVec4(m.Positions[base+1])
		c2 := mvp.MulVec4(m.Positions[base+2])
		if BehindCamera(c0, c1, c2) {
			st.CulledW++
			continue
		}
		if OutsideFrustum(c0, c1, c2) {
			st.CulledFrustum++
			continue
		}

		if useTex {
			copy(uv[:], m.UVs[base*2:base*2+6])
			if p.FlipV {
				uv[1] = 1 - uv[1]
				uv[3] = 1 - uv[3]
				uv[5] = 1 - uv[5]
			}
		}

		tri.V[0] = ToScreen(c0, world, m.Normals[base], fw, fh, uv[0], uv[1])
		tri.V[1] = ToScreen(c1, world, m.Normals[base+1], fw, fh, uv[2], uv[3])
		tri.V[2] = ToScreen(c2, world, m.Normals[base+2], fw, fh, uv[4], uv[5])
		DrawTriangle(t, y0, y1, &tri, p.Light, p.Options, st)
	}
}
