package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample shrinks img so its longer side is at most maxDim, keeping the
// aspect ratio, with CatmullRom filtering. Images with transparent pixels
// are filtered premultiplied so edges do not pick up dark halos. Images
// already small enough are returned as is.
func Downsample(img *image.NRGBA, maxDim int) *image.NRGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxDim <= 0 || (w <= maxDim && h <= maxDim) {
		return img
	}

	dw, dh := maxDim, maxDim
	if w >= h {
		dh = max(1, h*maxDim/w)
	} else {
		dw = max(1, w*maxDim/h)
	}
	dstRect := image.Rect(0, 0, dw, dh)

	if opaque(img) {
		dst := image.NewNRGBA(dstRect)
		draw.CatmullRom.Scale(dst, dstRect, img, b, draw.Src, nil)
		return dst
	}

	premul := image.NewRGBA(b)
	draw.Draw(premul, b, img, b.Min, draw.Src)

	scaled := image.NewRGBA(dstRect)
	draw.CatmullRom.Scale(scaled, dstRect, premul, b, draw.Src, nil)

	result := image.NewNRGBA(dstRect)
	for y := 0; y < dh; y++ {
		for x := 0; x < dw; x++ {
			si := scaled.PixOffset(x, y)
			di := result.PixOffset(x, y)
			a := float32(scaled.Pix[si+3])
			if a > 1 {
				inv := 255 / a
				result.Pix[di] = clamp8(float32(scaled.Pix[si]) * inv)
				result.Pix[di+1] = clamp8(float32(scaled.Pix[si+1]) * inv)
				result.Pix[di+2] = clamp8(float32(scaled.Pix[si+2]) * inv)
			}
			result.Pix[di+3] = scaled.Pix[si+3]
		}
	}
	return result
}

func opaque(img *image.NRGBA) bool {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			if img.Pix[off+x*4+3] != 0xFF {
				return false
			}
		}
	}
	return true
}

func clamp8(v float32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
