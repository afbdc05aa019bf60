package raster

import "image"

// FarDepth is the depth clear value. Depth is stored as 1 − ndc.z, so
// larger values are nearer and a cleared buffer accepts any fragment in
// front of the far plane.
const FarDepth float32 = 0

// Target is the frame being drawn: packed A<<24|B<<16|G<<8|R colour and a
// float depth plane. Pitches are in elements, not bytes. Rows of one
// dispatch are touched by exactly one band, so a Target is shared by value
// across workers without locking.
type Target struct {
	Width      int
	Height     int
	Color      []uint32
	ColorPitch int
	Depth      []float32
	DepthPitch int
}

// NewOfflineTarget allocates a tightly packed colour and depth pair.
func NewOfflineTarget(w, h int) Target {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	t := Target{
		Width:      w,
		Height:     h,
		Color:      make([]uint32, w*h),
		ColorPitch: w,
		Depth:      make([]float32, w*h),
		DepthPitch: w,
	}
	t.ClearDepth(0, h-1)
	return t
}

// Valid reports whether the colour plane can hold Width×Height pixels.
func (t Target) Valid() bool {
	return t.Width > 0 && t.Height > 0 && t.ColorPitch >= t.Width &&
		len(t.Color) >= (t.Height-1)*t.ColorPitch+t.Width
}

// HasDepth reports whether a usable depth plane is bound.
func (t Target) HasDepth() bool {
	return t.Width > 0 && t.Height > 0 && t.DepthPitch >= t.Width &&
		len(t.Depth) >= (t.Height-1)*t.DepthPitch+t.Width
}

func (t Target) ColorPitchBytes() int { return 4 * t.ColorPitch }

// Row returns the Width pixels of row y.
func (t Target) Row(y int) []uint32 {
	off := y * t.ColorPitch
	return t.Color[off : off+t.Width]
}

// DepthRow returns the Width depth values of row y.
func (t Target) DepthRow(y int) []float32 {
	off := y * t.DepthPitch
	return t.Depth[off : off+t.Width]
}

// ClearColor fills rows y0..y1 inclusive with c.
func (t Target) ClearColor(c uint32, y0, y1 int) {
	if !t.Valid() {
		return
	}
	y0, y1 = clampRows(y0, y1, t.Height)
	for y := y0; y <= y1; y++ {
		row := t.Row(y)
		for x := range row {
			row[x] = c
		}
	}
}

// ClearDepth resets rows y0..y1 inclusive to FarDepth.
func (t Target) ClearDepth(y0, y1 int) {
	if !t.HasDepth() {
		return
	}
	y0, y1 = clampRows(y0, y1, t.Height)
	for y := y0; y <= y1; y++ {
		row := t.DepthRow(y)
		for x := range row {
			row[x] = FarDepth
		}
	}
}

// CopyFrom copies src's colour into t row by row. Sizes must match.
func (t Target) CopyFrom(src Target) bool {
	if !t.Valid() || !src.Valid() || t.Width != src.Width || t.Height != src.Height {
		return false
	}
	for y := 0; y < t.Height; y++ {
		copy(t.Row(y), src.Row(y))
	}
	return true
}

// ToNRGBA converts the colour plane to an opaque image for export.
func (t Target) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, t.Width, t.Height))
	if !t.Valid() {
		return img
	}
	for y := 0; y < t.Height; y++ {
		row := t.Row(y)
		off := y * img.Stride
		for x, c := range row {
			i := off + x*4
			img.Pix[i] = uint8(c)
			img.Pix[i+1] = uint8(c >> 8)
			img.Pix[i+2] = uint8(c >> 16)
			img.Pix[i+3] = 0xFF
		}
	}
	return img
}

func clampRows(y0, y1, h int) (int, int) {
	if y0 < 0 {
		y0 = 0
	}
	if y1 > h-1 {
		y1 = h - 1
	}
	return y0, y1
}
