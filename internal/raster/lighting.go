package raster

import "cpu-rasterizer/internal/mathutil"

// Colour is a linear RGB triple in [0,1].
type Colour struct {
	R, G, B float32
}

// Scale multiplies every channel by s.
func (c Colour) Scale(s float32) Colour {
	return Colour{c.R * s, c.G * s, c.B * s}
}

// Pack converts c to an opaque A<<24|B<<16|G<<8|R pixel.
func (c Colour) Pack() uint32 {
	return PackRGB(c.R, c.G, c.B)
}

// PackRGB clamps each channel to [0,1] and rounds to the nearest 8-bit
// value.
func PackRGB(r, g, b float32) uint32 {
	return 0xFF000000 |
		uint32(clamp255(b*255))<<16 |
		uint32(clamp255(g*255))<<8 |
		uint32(clamp255(r*255))
}

// Intensity is the flat Lambert term ka + kd·max(0, n·L) for a face whose
// normal is the normalized sum of the three vertex normals.
func Intensity(n0, n1, n2, light mathutil.Vec4, ka, kd float32) float32 {
	n := n0.Add(n1).Add(n2).Normalize3()
	ndotl := n.Dot(light)
	if ndotl < 0 {
		ndotl = 0
	}
	return ka + kd*ndotl
}

// Modulate scales a texel's RGB by intensity and forces it opaque.
func Modulate(texel uint32, intensity float32) uint32 {
	r := float32(texel&0xFF) * intensity
	g := float32((texel>>8)&0xFF) * intensity
	b := float32((texel>>16)&0xFF) * intensity
	return 0xFF000000 | uint32(clamp255(b))<<16 | uint32(clamp255(g))<<8 | uint32(clamp255(r))
}

func clamp255(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
