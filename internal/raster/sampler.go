package raster

import "math"

// Texture is a borrowed RGBA8 texel grid, row-major, no padding.
type Texture struct {
	Pixels []uint32
	Width  int
	Height int
}

// Valid reports whether the texture can be sampled.
func (t Texture) Valid() bool {
	return t.Width > 0 && t.Height > 0 && len(t.Pixels) >= t.Width*t.Height
}

// SampleNearest performs nearest-neighbour lookup with UV wrapping.
func (t Texture) SampleNearest(u, v float32) uint32 {
	u -= float32(math.Floor(float64(u)))
	v -= float32(math.Floor(float64(v)))
	if u < 0 {
		u += 1
	}
	if v < 0 {
		v += 1
	}
	tx := int(u*float32(t.Width)) % t.Width
	ty := int(v*float32(t.Height)) % t.Height
	return t.Pixels[ty*t.Width+tx]
}
