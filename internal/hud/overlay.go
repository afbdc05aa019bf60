// Package hud draws diagnostic text over a rendered frame.
package hud

import (
	"image"
	"image/color"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"cpu-rasterizer/internal/raster"
)

// Overlay draws lines of text in the top-left corner of a target.
type Overlay struct {
	Face   font.Face
	Colour color.NRGBA
	// Shadow is drawn one pixel down and right when its alpha is non-zero.
	Shadow color.NRGBA
	Margin int
}

// New returns an overlay using the 7×13 bitmap face.
func New() *Overlay {
	return &Overlay{
		Face:   basicfont.Face7x13,
		Colour: color.NRGBA{R: 0xF0, G: 0xF0, B: 0xF0, A: 0xFF},
		Shadow: color.NRGBA{A: 0xFF},
		Margin: 4,
	}
}

// Draw writes lines into t, one per font line height. Text falling
// outside the target is clipped.
func (o *Overlay) Draw(t raster.Target, lines ...string) {
	if !t.Valid() || len(lines) == 0 {
		return
	}
	dst := &targetImage{t: t}
	m := o.Face.Metrics()
	step := m.Height.Ceil()
	y := o.Margin + m.Ascent.Ceil()

	for _, line := range lines {
		if o.Shadow.A != 0 {
			o.drawString(dst, line, o.Margin+1, y+1, o.Shadow)
		}
		o.drawString(dst, line, o.Margin, y, o.Colour)
		y += step
	}
}

func (o *Overlay) drawString(dst *targetImage, s string, x, y int, c color.NRGBA) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: o.Face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// Width returns the advance of s in pixels.
func (o *Overlay) Width(s string) int {
	return font.MeasureString(o.Face, s).Ceil()
}

// targetImage adapts a Target's packed colour plane to draw.Image.
type targetImage struct {
	t raster.Target
}

func (im *targetImage) ColorModel() color.Model { return color.NRGBAModel }

func (im *targetImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, im.t.Width, im.t.Height)
}

func (im *targetImage) At(x, y int) color.Color {
	if !(image.Point{x, y}.In(im.Bounds())) {
		return color.NRGBA{}
	}
	c := im.t.Color[y*im.t.ColorPitch+x]
	return color.NRGBA{R: uint8(c), G: uint8(c >> 8), B: uint8(c >> 16), A: 0xFF}
}

func (im *targetImage) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}.In(im.Bounds())) {
		return
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	im.t.Color[y*im.t.ColorPitch+x] = 0xFF000000 | uint32(n.B)<<16 | uint32(n.G)<<8 | uint32(n.R)
}
