package postprocess

import (
	"math"

	"cpu-rasterizer/internal/raster"
)

// ToneMapSettings controls the colour grading pass. Sub-effects apply in
// the order exposure, contrast, saturation, vignette.
type ToneMapSettings struct {
	Enabled           bool    `json:"enabled"`
	ExposureEnabled   bool    `json:"exposure_enabled"`
	Exposure          float32 `json:"exposure"`
	ContrastEnabled   bool    `json:"contrast_enabled"`
	Contrast          float32 `json:"contrast"`
	SaturationEnabled bool    `json:"saturation_enabled"`
	Saturation        float32 `json:"saturation"`
	VignetteEnabled   bool    `json:"vignette_enabled"`
	VignetteStrength  float32 `json:"vignette_strength"`
	VignettePower     float32 `json:"vignette_power"`
}

// DefaultToneMap returns a mild grade with every sub-effect on.
func DefaultToneMap() ToneMapSettings {
	return ToneMapSettings{
		Enabled:           true,
		ExposureEnabled:   true,
		Exposure:          1.05,
		ContrastEnabled:   true,
		Contrast:          1.05,
		SaturationEnabled: true,
		Saturation:        1.08,
		VignetteEnabled:   true,
		VignetteStrength:  0.25,
		VignettePower:     1.4,
	}
}

// Active reports whether the pass would change anything.
func (s *ToneMapSettings) Active() bool {
	return s.Enabled && (s.ExposureEnabled || s.ContrastEnabled || s.SaturationEnabled || s.VignetteEnabled)
}

// ToneMapRows grades rows y0..y1 of t in place.
func ToneMapRows(t *raster.Target, s *ToneMapSettings, y0, y1 int) {
	if !t.Valid() || !s.Active() {
		return
	}
	invW := 1 / float32(t.Width)
	invH := 1 / float32(t.Height)
	halfW := 0.5 * float32(t.Width)
	halfH := 0.5 * float32(t.Height)

	for y := max(y0, 0); y <= min(y1, t.Height-1); y++ {
		row := t.Row(y)
		fy := (float32(y) - halfH) * invH
		for x, c := range row {
			r, g, b := Unpack(c)

			if s.ExposureEnabled {
				r *= s.Exposure
				g *= s.Exposure
				b *= s.Exposure
			}
			if s.ContrastEnabled {
				r = (r-0.5)*s.Contrast + 0.5
				g = (g-0.5)*s.Contrast + 0.5
				b = (b-0.5)*s.Contrast + 0.5
			}
			if s.SaturationEnabled {
				lum := luminance(r, g, b)
				r = lum + (r-lum)*s.Saturation
				g = lum + (g-lum)*s.Saturation
				b = lum + (b-lum)*s.Saturation
			}
			if s.VignetteEnabled {
				fx := (float32(x) - halfW) * invW
				d2 := fx*fx + fy*fy
				v := 1 - s.VignetteStrength*float32(math.Pow(float64(d2), float64(s.VignettePower)))
				r *= v
				g *= v
				b *= v
			}

			row[x] = Pack(r, g, b)
		}
	}
}
