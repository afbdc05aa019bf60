package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/webp"

	"cpu-rasterizer/internal/raster"
)

type decodeFunc func(io.Reader) (image.Image, error)

// decoders by lowercase extension. TGA has no magic number and registers
// with an empty one, so image.Decode would hand it every file; decoders
// are picked explicitly instead.
var decoders = map[string]decodeFunc{
	".png":  png.Decode,
	".jpg":  jpeg.Decode,
	".jpeg": jpeg.Decode,
	".tga":  tga.Decode,
	".bmp":  bmp.Decode,
	".webp": webp.Decode,
}

// Load reads and decodes an image file (PNG, JPEG, TGA, BMP or WebP) into
// a packed RGBA8 texture. The decoder follows the extension; unknown
// extensions are sniffed.
func Load(path string) (raster.Texture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return raster.Texture{}, fmt.Errorf("texture: read %s: %w", path, err)
	}
	dec, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		dec = sniff(raw)
	}
	tex, err := decodeWith(dec, raw)
	if err != nil {
		return raster.Texture{}, fmt.Errorf("texture: decode %s: %w", path, err)
	}
	return tex, nil
}

// Decode decodes an in-memory image, choosing the decoder from its
// leading bytes. Data matching no signature is tried as TGA.
func Decode(data []byte) (raster.Texture, error) {
	return decodeWith(sniff(data), data)
}

func decodeWith(dec decodeFunc, data []byte) (raster.Texture, error) {
	img, err := dec(bytes.NewReader(data))
	if err != nil {
		return raster.Texture{}, err
	}
	if img.Bounds().Empty() {
		return raster.Texture{}, fmt.Errorf("texture: empty image")
	}
	return FromImage(img), nil
}

func sniff(data []byte) decodeFunc {
	switch {
	case bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return png.Decode
	case bytes.HasPrefix(data, []byte{0xFF, 0xD8}):
		return jpeg.Decode
	case bytes.HasPrefix(data, []byte("BM")):
		return bmp.Decode
	case len(data) >= 12 && string(data[:4]) == "RIFF" && string(data[8:12]) == "WEBP":
		return webp.Decode
	}
	return tga.Decode
}

// FromImage packs any image as A<<24|B<<16|G<<8|R texels, row-major.
func FromImage(src image.Image) raster.Texture {
	n := toNRGBA(src)
	b := n.Bounds()
	w, h := b.Dx(), b.Dy()
	tex := raster.Texture{Pixels: make([]uint32, w*h), Width: w, Height: h}
	for y := 0; y < h; y++ {
		off := y * n.Stride
		for x := 0; x < w; x++ {
			i := off + x*4
			tex.Pixels[y*w+x] = uint32(n.Pix[i+3])<<24 | uint32(n.Pix[i+2])<<16 |
				uint32(n.Pix[i+1])<<8 | uint32(n.Pix[i])
		}
	}
	return tex
}

// ToNRGBA unpacks a texture back into an image, for dumps and previews.
func ToNRGBA(tex raster.Texture) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, tex.Width, tex.Height))
	if !tex.Valid() {
		return img
	}
	for y := 0; y < tex.Height; y++ {
		off := y * img.Stride
		for x := 0; x < tex.Width; x++ {
			c := tex.Pixels[y*tex.Width+x]
			i := off + x*4
			img.Pix[i] = uint8(c)
			img.Pix[i+1] = uint8(c >> 8)
			img.Pix[i+2] = uint8(c >> 16)
			img.Pix[i+3] = uint8(c >> 24)
		}
	}
	return img
}

// toNRGBA converts any image to NRGBA format with a zero origin.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok && n.Rect.Min == (image.Point{}) {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	switch src.(type) {
	case *image.YCbCr, *image.Gray:
		// No alpha: draw and force opaque.
		draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
		for i := 3; i < len(dst.Pix); i += 4 {
			dst.Pix[i] = 255
		}
	default:
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				i := dst.PixOffset(x-b.Min.X, y-b.Min.Y)
				dst.Pix[i] = c.R
				dst.Pix[i+1] = c.G
				dst.Pix[i+2] = c.B
				dst.Pix[i+3] = c.A
			}
		}
	}
	return dst
}
