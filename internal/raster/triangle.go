package raster

import (
	"math"

	"cpu-rasterizer/internal/mathutil"
)

// Vertex is a triangle corner after the perspective divide. X and Y are in
// pixels with y pointing down, Z is the stored depth 1 − ndc.z and W the
// clip-space w kept for perspective-correct attributes.
type Vertex struct {
	X, Y, Z, W float32
	N          mathutil.Vec4
	U, V       float32
}

// Material is the flat surface description of a drawable.
type Material struct {
	Colour Colour
	Ka, Kd float32
}

// Triangle is one setup unit handed to DrawTriangle.
type Triangle struct {
	V        [3]Vertex
	Material Material
	Texture  Texture
	Textured bool
}

// Options selects the pixel walker.
type Options struct {
	// Lanes walks flat-shaded spans four pixels at a time. Output is
	// identical to the scalar walker.
	Lanes bool
}

// Stats counts rasterizer work for one band. Triangle counters are per
// band, so a frame split into S bands reports every triangle S times.
type Stats struct {
	Triangles     uint64
	CulledW       uint64
	CulledFrustum uint64
	CulledArea    uint64
	CulledBounds  uint64
	Pixels        uint64
}

// Add accumulates o into s.
func (s *Stats) Add(o Stats) {
	s.Triangles += o.Triangles
	s.CulledW += o.CulledW
	s.CulledFrustum += o.CulledFrustum
	s.CulledArea += o.CulledArea
	s.CulledBounds += o.CulledBounds
	s.Pixels += o.Pixels
}

// ToScreen maps a clip-space position to a Vertex on a fw×fh target. The
// object-space normal is carried to world space by world and normalized.
func ToScreen(clip mathutil.Vec4, world mathutil.Mat4, n mathutil.Vec4, fw, fh, u, v float32) Vertex {
	w := clip[3]
	if w == 0 {
		w = 1
	}
	ndcX := clip[0] / w
	ndcY := clip[1] / w
	ndcZ := clip[2] / w
	return Vertex{
		X: (ndcX + 1) * 0.5 * fw,
		Y: fh - (ndcY+1)*0.5*fh,
		Z: 1 - ndcZ,
		W: w,
		N: world.MulVec4(mathutil.Vec4{n[0], n[1], n[2], 0}).Normalize3(),
		U: u,
		V: v,
	}
}

// spanSteps are the per-pixel x increments of every interpolated quantity.
type spanSteps struct {
	e0, e1, e2 float32
	z          float32
	invW       float32
	uw, vw     float32
}

// DrawTriangle rasterizes tri into rows y0..y1 of t with a strict
// larger-is-nearer depth test. Pixels outside the band are never touched.
// t must carry a depth plane; DrawMesh checks this once per mesh.
//
// This is the HOT PATH: no allocation, attributes advance by addition.
func DrawTriangle(t *Target, y0, y1 int, tri *Triangle, light mathutil.Vec4, opts Options, st *Stats) {
	v0, v1, v2 := &tri.V[0], &tri.V[1], &tri.V[2]

	area := edgeFn(v0.X, v0.Y, v1.X, v1.Y, v2.X, v2.Y)
	if area == 0 {
		st.CulledArea++
		return
	}
	sign := float32(1)
	if area < 0 {
		sign = -1
	}
	invArea := 1 / (area * sign)

	minx := int(math.Floor(float64(min(v0.X, v1.X, v2.X))))
	maxx := int(math.Ceil(float64(max(v0.X, v1.X, v2.X))))
	miny := int(math.Floor(float64(min(v0.Y, v1.Y, v2.Y))))
	maxy := int(math.Ceil(float64(max(v0.Y, v1.Y, v2.Y))))

	if maxx < 0 || maxy < y0 || minx >= t.Width || miny > y1 {
		st.CulledBounds++
		return
	}
	minx = max(minx, 0)
	maxx = min(maxx, t.Width-1)
	miny = max(miny, y0)
	maxy = min(maxy, y1)
	if minx > maxx || miny > maxy {
		st.CulledBounds++
		return
	}

	mat := tri.Material
	intensity := Intensity(v0.N, v1.N, v2.N, light, mat.Ka, mat.Kd)

	// Sign-corrected edge functions: every edge is ≥ 0 inside regardless
	// of winding.
	e0a := (v2.Y - v1.Y) * sign
	e0b := (v1.X - v2.X) * sign
	e0c := (v2.X*v1.Y - v2.Y*v1.X) * sign

	e1a := (v0.Y - v2.Y) * sign
	e1b := (v2.X - v0.X) * sign
	e1c := (v0.X*v2.Y - v0.Y*v2.X) * sign

	e2a := (v1.Y - v0.Y) * sign
	e2b := (v0.X - v1.X) * sign
	e2c := (v1.X*v0.Y - v1.Y*v0.X) * sign

	startX := float32(minx) + 0.5
	startY := float32(miny) + 0.5

	w0Row := e0a*startX + e0b*startY + e0c
	w1Row := e1a*startX + e1b*startY + e1c
	w2Row := e2a*startX + e2b*startY + e2c

	dx := spanSteps{e0: e0a, e1: e1a, e2: e2a}
	dx.z = (e0a*v0.Z + e1a*v1.Z + e2a*v2.Z) * invArea
	dzdy := (e0b*v0.Z + e1b*v1.Z + e2b*v2.Z) * invArea
	zRow := (w0Row*v0.Z + w1Row*v1.Z + w2Row*v2.Z) * invArea

	var invWRow, uwRow, vwRow float32
	var dInvWdy, dUWdy, dVWdy float32
	textured := tri.Textured && tri.Texture.Valid()
	if textured {
		iw0, iw1, iw2 := 1/v0.W, 1/v1.W, 1/v2.W
		u0, u1, u2 := v0.U*iw0, v1.U*iw1, v2.U*iw2
		t0, t1, t2 := v0.V*iw0, v1.V*iw1, v2.V*iw2

		dx.invW = (e0a*iw0 + e1a*iw1 + e2a*iw2) * invArea
		dInvWdy = (e0b*iw0 + e1b*iw1 + e2b*iw2) * invArea
		dx.uw = (e0a*u0 + e1a*u1 + e2a*u2) * invArea
		dUWdy = (e0b*u0 + e1b*u1 + e2b*u2) * invArea
		dx.vw = (e0a*t0 + e1a*t1 + e2a*t2) * invArea
		dVWdy = (e0b*t0 + e1b*t1 + e2b*t2) * invArea

		invWRow = (w0Row*iw0 + w1Row*iw1 + w2Row*iw2) * invArea
		uwRow = (w0Row*u0 + w1Row*u1 + w2Row*u2) * invArea
		vwRow = (w0Row*t0 + w1Row*t1 + w2Row*t2) * invArea
	}

	var flat uint32
	if !textured {
		flat = mat.Colour.Scale(intensity).Pack()
	}

	for y := miny; y <= maxy; y++ {
		coff := y*t.ColorPitch + minx
		zoff := y*t.DepthPitch + minx
		crow := t.Color[coff : coff+maxx-minx+1]
		zrow := t.Depth[zoff : zoff+maxx-minx+1]

		switch {
		case textured:
			st.Pixels += walkTextured(crow, zrow, w0Row, w1Row, w2Row, zRow,
				invWRow, uwRow, vwRow, &dx, tri.Texture, intensity)
		case opts.Lanes:
			st.Pixels += walkFlatLanes(crow, zrow, w0Row, w1Row, w2Row, zRow, &dx, flat)
		default:
			st.Pixels += walkFlat(crow, zrow, w0Row, w1Row, w2Row, zRow, &dx, flat)
		}

		w0Row += e0b
		w1Row += e1b
		w2Row += e2b
		zRow += dzdy
		if textured {
			invWRow += dInvWdy
			uwRow += dUWdy
			vwRow += dVWdy
		}
	}
}

// walkFlat writes one span of a flat-shaded triangle and returns the
// number of pixels written.
func walkFlat(crow []uint32, zrow []float32, w0, w1, w2, z float32, dx *spanSteps, c uint32) uint64 {
	var n uint64
	for x := range crow {
		if w0 >= 0 && w1 >= 0 && w2 >= 0 && z > zrow[x] {
			zrow[x] = z
			crow[x] = c
			n++
		}
		w0 += dx.e0
		w1 += dx.e1
		w2 += dx.e2
		z += dx.z
	}
	return n
}

func walkTextured(crow []uint32, zrow []float32, w0, w1, w2, z, invW, uw, vw float32,
	dx *spanSteps, tex Texture, intensity float32) uint64 {
	var n uint64
	for x := range crow {
		if w0 >= 0 && w1 >= 0 && w2 >= 0 && z > zrow[x] {
			rcp := float32(1)
			if invW > MinW {
				rcp = 1 / invW
			}
			texel := tex.SampleNearest(uw*rcp, vw*rcp)
			zrow[x] = z
			crow[x] = Modulate(texel, intensity)
			n++
		}
		w0 += dx.e0
		w1 += dx.e1
		w2 += dx.e2
		z += dx.z
		invW += dx.invW
		uw += dx.uw
		vw += dx.vw
	}
	return n
}

// edgeFn is the signed doubled area of (a, b, p).
func edgeFn(ax, ay, bx, by, px, py float32) float32 {
	return (px-ax)*(by-ay) - (py-ay)*(bx-ax)
}
