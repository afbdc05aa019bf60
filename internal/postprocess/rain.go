package postprocess

import (
	"math"

	"cpu-rasterizer/internal/raster"
)

// RainSettings controls the screen-space rain streaks. Streaks are denser
// and more opaque over near geometry.
type RainSettings struct {
	Enabled           bool          `json:"enabled"`
	Intensity         float32       `json:"intensity"`
	StreakDensity     float32       `json:"streak_density"`
	StreakLength      float32       `json:"streak_length"`
	StreakSpeed       float32       `json:"streak_speed"`
	StreakProbability float32       `json:"streak_probability"`
	DepthWeight       float32       `json:"depth_weight"`
	DepthBias         float32       `json:"depth_bias"`
	Wind              float32       `json:"wind"`
	Darken            float32       `json:"darken"`
	Tint              raster.Colour `json:"tint"`
}

// DefaultRain returns the stock rain look, disabled.
func DefaultRain() RainSettings {
	return RainSettings{
		Intensity:         0.35,
		StreakDensity:     0.025,
		StreakLength:      0.2,
		StreakSpeed:       1.4,
		StreakProbability: 0.45,
		DepthWeight:       0.8,
		DepthBias:         0.1,
		Wind:              0.15,
		Darken:            0.35,
		Tint:              raster.Colour{R: 0.6, G: 0.7, B: 0.8},
	}
}

// Active reports whether the pass would change anything. A zero streak
// probability disables the pass outright, column 0 included.
func (s *RainSettings) Active() bool {
	return s.Enabled && s.Intensity > 0 && s.StreakProbability > 0
}

// RainRows draws rain over rows y0..y1 of t at time seconds. t must have
// depth.
func RainRows(t *raster.Target, s *RainSettings, time float32, y0, y1 int) {
	if !t.Valid() || !t.HasDepth() || !s.Active() {
		return
	}
	length := max(s.StreakLength, 0.001)
	prob := clamp01(s.StreakProbability)
	drift := s.Wind * time

	for y := max(y0, 0); y <= min(y1, t.Height-1); y++ {
		row := t.Row(y)
		zrow := t.DepthRow(y)
		fy := float32(t.Height - 1 - y)

		for x := range row {
			seed := hash11(float32(x) * 0.271)
			if seed > prob {
				continue
			}
			phase := fract(fy*s.StreakDensity - time*s.StreakSpeed + seed*10 + drift)
			if phase >= length {
				continue
			}

			depthFactor := clamp01(s.DepthBias + (1-zrow[x])*s.DepthWeight)
			drop := (1 - phase/length) * s.Intensity * depthFactor
			if drop <= 0 {
				continue
			}
			drop *= 0.75 + 0.25*float32(math.Sin(float64(float32(x)*0.15+time)))

			r, g, b := Unpack(row[x])
			darken := 1 - drop*s.Darken
			row[x] = Pack(
				r*darken+s.Tint.R*drop,
				g*darken+s.Tint.G*drop,
				b*darken+s.Tint.B*drop,
			)
		}
	}
}
