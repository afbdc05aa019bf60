package postprocess

import (
	"math"

	"cpu-rasterizer/internal/raster"
)

// AdvancedSettings groups the effects applied in one combined sweep per
// row: bloom, fog, screen-space reflection, depth of field, god rays,
// motion blur and film grain, in that order.
type AdvancedSettings struct {
	Enabled bool `json:"enabled"`

	BloomEnabled   bool    `json:"bloom_enabled"`
	BloomThreshold float32 `json:"bloom_threshold"`
	BloomIntensity float32 `json:"bloom_intensity"`

	FilmGrainEnabled  bool    `json:"film_grain_enabled"`
	FilmGrainStrength float32 `json:"film_grain_strength"`
	FilmGrainSpeed    float32 `json:"film_grain_speed"`

	MotionBlurEnabled  bool    `json:"motion_blur_enabled"`
	MotionBlurStrength float32 `json:"motion_blur_strength"`

	FogEnabled bool          `json:"fog_enabled"`
	FogColour  raster.Colour `json:"fog_colour"`
	FogStart   float32       `json:"fog_start"`
	FogEnd     float32       `json:"fog_end"`

	SSREnabled  bool    `json:"ssr_enabled"`
	SSRStrength float32 `json:"ssr_strength"`

	DepthOfFieldEnabled bool    `json:"depth_of_field_enabled"`
	DOFFocus            float32 `json:"dof_focus"`
	DOFRange            float32 `json:"dof_range"`

	GodRaysEnabled  bool       `json:"god_rays_enabled"`
	GodRaysStrength float32    `json:"god_rays_strength"`
	GodRaysPos      [2]float32 `json:"god_rays_pos"`
}

// DefaultAdvanced enables bloom only.
func DefaultAdvanced() AdvancedSettings {
	return AdvancedSettings{
		Enabled:            true,
		BloomEnabled:       true,
		BloomThreshold:     0.75,
		BloomIntensity:     0.3,
		FilmGrainStrength:  0.03,
		FilmGrainSpeed:     1,
		MotionBlurStrength: 0.2,
		FogColour:          raster.Colour{R: 0.65, G: 0.7, B: 0.8},
		FogStart:           0.35,
		FogEnd:             0.95,
		SSRStrength:        0.2,
		DOFFocus:           0.4,
		DOFRange:           0.25,
		GodRaysStrength:    0.2,
		GodRaysPos:         [2]float32{0.5, 0.2},
	}
}

// Active reports whether any sub-effect is on.
func (s *AdvancedSettings) Active() bool {
	return s.Enabled && (s.BloomEnabled || s.FilmGrainEnabled || s.MotionBlurEnabled ||
		s.FogEnabled || s.SSREnabled || s.DepthOfFieldEnabled || s.GodRaysEnabled)
}

// NeedsDepth reports whether a sub-effect reads the depth plane.
func (s *AdvancedSettings) NeedsDepth() bool {
	return s.FogEnabled || s.DepthOfFieldEnabled || s.SSREnabled
}

// NeedsSnapshot reports whether rows outside a band are read, which
// requires a whole-frame copy taken before the sweep.
func (s *AdvancedSettings) NeedsSnapshot() bool { return s.SSREnabled }

// Scratch is a per-band row buffer reused across frames.
type Scratch struct {
	row []uint32
}

func (sc *Scratch) rowBuf(n int) []uint32 {
	if cap(sc.row) < n {
		sc.row = make([]uint32, n)
	}
	return sc.row[:n]
}

// AdvancedRows applies the combined sweep to rows y0..y1 of t. Every
// effect samples a copy of the row taken before the sweep, never pixels
// already written by it. Reflections read mirror rows from snap, a copy
// of the whole frame; when snap is not valid they read t directly.
func AdvancedRows(t *raster.Target, snap *raster.Target, s *AdvancedSettings, time float32, y0, y1 int, sc *Scratch) {
	if !t.Valid() || !s.Active() {
		return
	}
	useDepth := s.NeedsDepth()
	if useDepth && !t.HasDepth() {
		return
	}

	mirrorSrc := t
	if snap != nil && snap.Valid() && snap.Width == t.Width && snap.Height == t.Height {
		mirrorSrc = snap
	}

	w := t.Width
	h := t.Height
	fogRange := max(0.001, s.FogEnd-s.FogStart)
	dofRange := max(0.001, s.DOFRange)
	mb := clamp01(s.MotionBlurStrength)
	invW := 1 / max(1, float32(w-1))
	invH := 1 / max(1, float32(h-1))
	pre := sc.rowBuf(w)

	for y := max(y0, 0); y <= min(y1, h-1); y++ {
		row := t.Row(y)
		copy(pre, row)

		var zrow []float32
		if useDepth {
			zrow = t.DepthRow(y)
		}
		var mirror []uint32
		if s.SSREnabled {
			mirror = mirrorSrc.Row(h - 1 - y)
		}

		for x := 0; x < w; x++ {
			r, g, b := Unpack(pre[x])

			if s.BloomEnabled {
				boost := max(0, luminance(r, g, b)-s.BloomThreshold) * s.BloomIntensity
				r += boost
				g += boost
				b += boost
			}

			var depth float32
			if zrow != nil {
				depth = clamp01(zrow[x])
			}

			if s.FogEnabled {
				ft := clamp01((depth - s.FogStart) / fogRange)
				r = lerp(r, s.FogColour.R, ft)
				g = lerp(g, s.FogColour.G, ft)
				b = lerp(b, s.FogColour.B, ft)
			}

			if s.SSREnabled {
				mr, mg, mbl := Unpack(mirror[x])
				k := s.SSRStrength * (1 - depth)
				r = lerp(r, mr, k)
				g = lerp(g, mg, k)
				b = lerp(b, mbl, k)
			}

			if s.DepthOfFieldEnabled {
				bt := clamp01(float32(math.Abs(float64(depth-s.DOFFocus))) / dofRange)
				if bt > 0 {
					br, bg, bb := blur2(pre, x)
					r = lerp(r, br, bt)
					g = lerp(g, bg, bt)
					b = lerp(b, bb, bt)
				}
			}

			if s.GodRaysEnabled {
				dx := float32(x)*invW - s.GodRaysPos[0]
				dy := float32(y)*invH - s.GodRaysPos[1]
				dist := float32(math.Sqrt(float64(dx*dx + dy*dy)))
				shaft := clamp01(1-dist*1.5) * s.GodRaysStrength
				r += shaft
				g += shaft
				b += shaft
			}

			if s.MotionBlurEnabled {
				br, bg, bb := blur2(pre, x)
				r = lerp(r, br, mb)
				g = lerp(g, bg, mb)
				b = lerp(b, bb, mb)
			}

			if s.FilmGrainEnabled {
				n := (hash11(float32(x)*0.17+float32(y)*0.29+time*s.FilmGrainSpeed) - 0.5) * s.FilmGrainStrength
				r += n
				g += n
				b += n
			}

			row[x] = Pack(r, g, b)
		}
	}
}

// blur2 averages the horizontal neighbours of x, clamped at the edges.
func blur2(row []uint32, x int) (float32, float32, float32) {
	x0 := max(x-1, 0)
	x1 := min(x+1, len(row)-1)
	r0, g0, b0 := Unpack(row[x0])
	r1, g1, b1 := Unpack(row[x1])
	return (r0 + r1) * 0.5, (g0 + g1) * 0.5, (b0 + b1) * 0.5
}

// Snapshot copies rows y0..y1 of src into dst. dst must match src's size.
func Snapshot(dst, src *raster.Target, y0, y1 int) {
	if !dst.Valid() || !src.Valid() || dst.Width != src.Width || dst.Height != src.Height {
		return
	}
	for y := max(y0, 0); y <= min(y1, src.Height-1); y++ {
		copy(dst.Row(y), src.Row(y))
	}
}
