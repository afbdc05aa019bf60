package raster

import (
	"math"
	"math/rand"
	"testing"

	"cpu-rasterizer/internal/mathutil"
)

// fullScreen is a clip-space triangle (w=1) that covers the whole viewport
// at ndc depth z.
func fullScreen(z float32) *Mesh {
	return &Mesh{
		Positions: []mathutil.Vec4{{-1, -1, z, 1}, {3, -1, z, 1}, {-1, 3, z, 1}},
		Normals:   []mathutil.Vec4{{0, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}},
		TriCount:  1,
	}
}

func identityParams() *Params {
	return &Params{VP: mathutil.Mat4Identity(), Light: mathutil.Vec4{0, 1, 0, 0}}
}

var red = Material{Colour: Colour{1, 0, 0}, Ka: 1, Kd: 0}

func near(a, b, eps float32) bool {
	return float32(math.Abs(float64(a-b))) <= eps
}

// =============================================================================
// Scenario tests
// =============================================================================

func TestDrawMeshFlatTriangle(t *testing.T) {
	tg := NewOfflineTarget(100, 100)
	var st Stats
	DrawMesh(&tg, 0, 99, identityParams(), mathutil.Mat4Identity(), fullScreen(0.2), red, Texture{}, &st)

	if got := tg.Row(50)[50]; got != 0xFF0000FF {
		t.Errorf("pixel(50,50) = %#08x, want 0xff0000ff", got)
	}
	if got := tg.DepthRow(50)[50]; !near(got, 0.8, 1e-5) {
		t.Errorf("depth(50,50) = %v, want 0.8", got)
	}
	if st.Pixels != 100*100 {
		t.Errorf("Pixels = %d, want %d", st.Pixels, 100*100)
	}
}

func TestDepthTestStrictGreater(t *testing.T) {
	tg := NewOfflineTarget(32, 32)
	p := identityParams()
	id := mathutil.Mat4Identity()
	var st Stats

	DrawMesh(&tg, 0, 31, p, id, fullScreen(0.5), red, Texture{}, &st)

	green := Material{Colour: Colour{0, 1, 0}, Ka: 1}
	// Same depth: ties do not overwrite.
	DrawMesh(&tg, 0, 31, p, id, fullScreen(0.5), green, Texture{}, &st)
	if got := tg.Row(16)[16]; got != 0xFF0000FF {
		t.Errorf("tie overwrote pixel: got %#08x", got)
	}

	// Farther (smaller stored depth): rejected.
	DrawMesh(&tg, 0, 31, p, id, fullScreen(0.7), green, Texture{}, &st)
	if got := tg.Row(16)[16]; got != 0xFF0000FF {
		t.Errorf("farther triangle overwrote pixel: got %#08x", got)
	}

	// Nearer: wins.
	DrawMesh(&tg, 0, 31, p, id, fullScreen(0.1), green, Texture{}, &st)
	if got := tg.Row(16)[16]; got != 0xFF00FF00 {
		t.Errorf("nearer triangle = %#08x, want 0xff00ff00", got)
	}
	if got := tg.DepthRow(16)[16]; !near(got, 0.9, 1e-5) {
		t.Errorf("depth = %v, want 0.9", got)
	}
}

// =============================================================================
// Rejection
// =============================================================================

func TestRejections(t *testing.T) {
	tests := []struct {
		name  string
		pos   []mathutil.Vec4
		check func(Stats) bool
	}{
		{
			name: "zero area",
			pos:  []mathutil.Vec4{{-0.5, -0.5, 0.5, 1}, {-0.5, -0.5, 0.5, 1}, {0.5, 0.5, 0.5, 1}},
			check: func(s Stats) bool {
				return s.CulledArea == 1
			},
		},
		{
			name: "beyond far plane",
			pos:  []mathutil.Vec4{{-1, -1, 1.5, 1}, {3, -1, 1.5, 1}, {-1, 3, 1.5, 1}},
			check: func(s Stats) bool {
				return s.CulledFrustum == 1
			},
		},
		{
			name: "behind camera",
			pos:  []mathutil.Vec4{{-1, -1, 0.5, 1}, {3, -1, 0.5, 0}, {-1, 3, 0.5, 1}},
			check: func(s Stats) bool {
				return s.CulledW == 1
			},
		},
		{
			name: "left of viewport",
			pos:  []mathutil.Vec4{{-3, 0, 0.5, 1}, {-2, 0, 0.5, 1}, {-2, 1, 0.5, 1}},
			check: func(s Stats) bool {
				return s.CulledFrustum == 1
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := NewOfflineTarget(16, 16)
			m := fullScreen(0)
			m.Positions = tt.pos
			var st Stats
			DrawMesh(&tg, 0, 15, identityParams(), mathutil.Mat4Identity(), m, red, Texture{}, &st)

			if st.Pixels != 0 {
				t.Errorf("Pixels = %d, want 0", st.Pixels)
			}
			if !tt.check(st) {
				t.Errorf("unexpected stats %+v", st)
			}
			for i, c := range tg.Color {
				if c != 0 {
					t.Fatalf("Color[%d] = %#08x, want untouched", i, c)
				}
			}
		})
	}
}

func TestOutsideFrustumNeedsAllThree(t *testing.T) {
	a := mathutil.Vec4{2, 0, 0.5, 1}
	b := mathutil.Vec4{2, 0, 0.5, 1}
	c := mathutil.Vec4{0, 0, 0.5, 1}
	if OutsideFrustum(a, b, c) {
		t.Error("triangle with one vertex inside should not be rejected")
	}
	if !OutsideFrustum(a, b, a) {
		t.Error("triangle fully right of x=w should be rejected")
	}
}

// =============================================================================
// Bands
// =============================================================================

func TestDrawRespectsBand(t *testing.T) {
	tg := NewOfflineTarget(20, 40)
	var st Stats
	DrawMesh(&tg, 10, 19, identityParams(), mathutil.Mat4Identity(), fullScreen(0.3), red, Texture{}, &st)

	for y := 0; y < 40; y++ {
		want := uint32(0)
		if y >= 10 && y <= 19 {
			want = 0xFF0000FF
		}
		for x, c := range tg.Row(y) {
			if c != want {
				t.Fatalf("pixel(%d,%d) = %#08x, want %#08x", x, y, c, want)
			}
		}
	}
	if st.Pixels != 20*10 {
		t.Errorf("Pixels = %d, want 200", st.Pixels)
	}
}

// =============================================================================
// Walkers
// =============================================================================

func TestLanesMatchScalar(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	const w, h = 97, 61

	scalar := NewOfflineTarget(w, h)
	lanes := NewOfflineTarget(w, h)

	for i := 0; i < 200; i++ {
		m := &Mesh{TriCount: 1}
		for k := 0; k < 3; k++ {
			m.Positions = append(m.Positions, mathutil.Vec4{
				rng.Float32()*3 - 1.5,
				rng.Float32()*3 - 1.5,
				rng.Float32(),
				1,
			})
			m.Normals = append(m.Normals, mathutil.Vec4{rng.Float32(), 1, rng.Float32(), 0})
		}
		mat := Material{
			Colour: Colour{rng.Float32(), rng.Float32(), rng.Float32()},
			Ka:     0.3,
			Kd:     0.7,
		}

		p := identityParams()
		var s1, s2 Stats
		DrawMesh(&scalar, 0, h-1, p, mathutil.Mat4Identity(), m, mat, Texture{}, &s1)
		p.Lanes = true
		DrawMesh(&lanes, 0, h-1, p, mathutil.Mat4Identity(), m, mat, Texture{}, &s2)
		if s1 != s2 {
			t.Fatalf("triangle %d: stats scalar=%+v lanes=%+v", i, s1, s2)
		}
	}

	for i := range scalar.Color {
		if scalar.Color[i] != lanes.Color[i] {
			t.Fatalf("Color[%d]: scalar %#08x, lanes %#08x", i, scalar.Color[i], lanes.Color[i])
		}
		if math.Float32bits(scalar.Depth[i]) != math.Float32bits(lanes.Depth[i]) {
			t.Fatalf("Depth[%d]: scalar %v, lanes %v", i, scalar.Depth[i], lanes.Depth[i])
		}
	}
}

func TestTexturedPath(t *testing.T) {
	const top, bottom = 0xFF112233, 0xFF445566
	tex := Texture{Pixels: []uint32{top, bottom}, Width: 1, Height: 2}

	m := fullScreen(0.5)
	m.HasUV = true
	// v follows screen y: 1 at the bottom edge, -1 above the top.
	m.UVs = []float32{0, 1, 2, 1, 0, -1}

	tests := []struct {
		name  string
		flipV bool
		y     int
		want  uint32
	}{
		{"upper half", false, 25, top},
		{"lower half", false, 75, bottom},
		{"upper half flipped", true, 25, bottom},
		{"lower half flipped", true, 75, top},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tg := NewOfflineTarget(100, 100)
			p := identityParams()
			p.Textures = true
			p.FlipV = tt.flipV
			var st Stats
			DrawMesh(&tg, 0, 99, p, mathutil.Mat4Identity(), m, red, tex, &st)
			if got := tg.Row(tt.y)[50]; got != tt.want {
				t.Errorf("pixel(50,%d) = %#08x, want %#08x", tt.y, got, tt.want)
			}
		})
	}

	// Textures disabled falls back to the flat colour.
	tg := NewOfflineTarget(100, 100)
	var st Stats
	DrawMesh(&tg, 0, 99, identityParams(), mathutil.Mat4Identity(), m, red, tex, &st)
	if got := tg.Row(25)[50]; got != 0xFF0000FF {
		t.Errorf("untextured pixel = %#08x, want 0xff0000ff", got)
	}
}

// =============================================================================
// Helpers
// =============================================================================

func TestSampleNearestWraps(t *testing.T) {
	tex := Texture{Pixels: []uint32{1, 2, 3, 4}, Width: 2, Height: 2}
	tests := []struct {
		u, v float32
		want uint32
	}{
		{0.1, 0.1, 1},
		{0.6, 0.1, 2},
		{0.1, 0.6, 3},
		{1.6, 0.6, 4},
		{-0.4, -0.9, 2},
	}
	for _, tt := range tests {
		if got := tex.SampleNearest(tt.u, tt.v); got != tt.want {
			t.Errorf("SampleNearest(%v, %v) = %d, want %d", tt.u, tt.v, got, tt.want)
		}
	}
}

func TestIntensity(t *testing.T) {
	up := mathutil.Vec4{0, 1, 0, 0}
	down := mathutil.Vec4{0, -1, 0, 0}
	if got := Intensity(up, up, up, up, 0.25, 0.75); !near(got, 1, 1e-6) {
		t.Errorf("facing light = %v, want 1", got)
	}
	if got := Intensity(down, down, down, up, 0.25, 0.75); got != 0.25 {
		t.Errorf("facing away = %v, want ambient 0.25", got)
	}
}

func TestPackRGB(t *testing.T) {
	tests := []struct {
		r, g, b float32
		want    uint32
	}{
		{1, 0, 0, 0xFF0000FF},
		{0, 0, 1, 0xFFFF0000},
		{2, -1, 0.5, 0xFF8000FF},
	}
	for _, tt := range tests {
		if got := PackRGB(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("PackRGB(%v,%v,%v) = %#08x, want %#08x", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
	if got := Modulate(0xFF808080, 0.5); got != 0xFF404040 {
		t.Errorf("Modulate = %#08x, want 0xff404040", got)
	}
}

func TestTargetClearAndImage(t *testing.T) {
	tg := NewOfflineTarget(4, 3)
	tg.ClearColor(0xFF0000FF, 1, 1)
	if tg.Row(0)[0] != 0 || tg.Row(1)[3] != 0xFF0000FF || tg.Row(2)[0] != 0 {
		t.Error("ClearColor touched rows outside its range")
	}
	img := tg.ToNRGBA()
	if c := img.NRGBAAt(2, 1); c.R != 0xFF || c.G != 0 || c.A != 0xFF {
		t.Errorf("ToNRGBA pixel = %v, want opaque red", c)
	}
	if (Target{}).Valid() {
		t.Error("zero Target should be invalid")
	}
}
