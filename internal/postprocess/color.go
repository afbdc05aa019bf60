// Package postprocess holds the screen-space passes that run row by row
// over a rasterized target, plus image helpers for exported frames.
package postprocess

import (
	"math"

	"cpu-rasterizer/internal/raster"
)

// Rec. 709 luma weights.
const (
	lumR = 0.2126
	lumG = 0.7152
	lumB = 0.0722
)

// Unpack splits an A<<24|B<<16|G<<8|R pixel into [0,1] channels.
func Unpack(c uint32) (r, g, b float32) {
	return float32(c&0xFF) / 255, float32((c>>8)&0xFF) / 255, float32((c>>16)&0xFF) / 255
}

// Pack is raster.PackRGB: clamp to [0,1], round, force opaque.
func Pack(r, g, b float32) uint32 { return raster.PackRGB(r, g, b) }

func luminance(r, g, b float32) float32 {
	return r*lumR + g*lumG + b*lumB
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func fract(v float32) float32 {
	return v - float32(math.Floor(float64(v)))
}

// hash11 is the classic sine hash: fract(sin(12.9898x)·43758.5453).
// Deterministic for equal inputs, which keeps rain and grain repeatable.
func hash11(x float32) float32 {
	return fract(float32(math.Sin(float64(x*12.9898))) * 43758.5453)
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }
