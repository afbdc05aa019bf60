package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"cpu-rasterizer/internal/postprocess"
)

// Config holds the render, scene and output settings of a run.
type Config struct {
	// Paths. Relative paths resolve against BaseDir, which defaults to the
	// directory of the loaded config file.
	BaseDir    string `json:"base_dir"`
	TextureDir string `json:"texture_dir"`
	Texture    string `json:"texture"`
	OutputDir  string `json:"output_dir"`

	// Frame
	Width    int  `json:"width"`
	Height   int  `json:"height"`
	Workers  int  `json:"workers"`
	Lanes    bool `json:"lanes"`
	RingSize int  `json:"ring_size"`

	// Scene
	Scene           string  `json:"scene"`
	Objects         int     `json:"objects"`
	TexturesEnabled bool    `json:"textures_enabled"`
	FlipV           bool    `json:"flip_v"`
	OrbitRadius     float32 `json:"orbit_radius"`
	OrbitPeriod     float32 `json:"orbit_period"`

	// Timing and export
	Frames     int `json:"frames"`
	FPS        int `json:"fps"`
	RecordStep int `json:"record_step"`
	Thumbnail  int `json:"thumbnail_size"`

	// Effects
	ToneMap  postprocess.ToneMapSettings  `json:"tone_map"`
	Rain     postprocess.RainSettings     `json:"rain"`
	Advanced postprocess.AdvancedSettings `json:"advanced"`
}

// Default returns a Config with the effect blocks at their stock values.
// Scalar fields are left for Resolve.
func Default() Config {
	return Config{
		ToneMap:  postprocess.DefaultToneMap(),
		Rain:     postprocess.DefaultRain(),
		Advanced: postprocess.DefaultAdvanced(),
	}
}

// Load reads a JSON config file over Default. Effect fields missing from
// the file keep their stock values; other fields keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.BaseDir == "" {
		cfg.BaseDir = filepath.Dir(path)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.TextureDir != "" {
		c.TextureDir = flags.TextureDir
	}
	if flags.Scene != "" {
		c.Scene = flags.Scene
	}
	if flags.Width > 0 {
		c.Width = flags.Width
	}
	if flags.Height > 0 {
		c.Height = flags.Height
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Frames > 0 {
		c.Frames = flags.Frames
	}

	if c.OutputDir == "" {
		c.OutputDir = "frames"
	}
	c.OutputDir = c.resolvePath(c.OutputDir)
	if c.TextureDir != "" {
		c.TextureDir = c.resolvePath(c.TextureDir)
	}

	// Defaults for render settings
	if c.Width <= 0 {
		c.Width = 1024
	}
	if c.Height <= 0 {
		c.Height = 768
	}
	if c.Workers <= 0 {
		c.Workers = max(runtime.NumCPU()-1, 0)
	}
	if c.RingSize <= 0 {
		c.RingSize = 3
	}
	if c.Scene == "" {
		c.Scene = "mixed"
	}
	if c.Objects <= 0 {
		c.Objects = 8
	}
	if c.OrbitRadius <= 0 {
		c.OrbitRadius = 6
	}
	if c.OrbitPeriod <= 0 {
		c.OrbitPeriod = 8
	}
	if c.Frames <= 0 {
		c.Frames = 120
	}
	if c.FPS <= 0 {
		c.FPS = 30
	}
	if c.RecordStep <= 0 {
		c.RecordStep = 1
	}
	if c.Thumbnail < 0 {
		c.Thumbnail = 0
	}
}

func (c *Config) resolvePath(p string) string {
	if filepath.IsAbs(p) || c.BaseDir == "" {
		return p
	}
	return filepath.Join(c.BaseDir, p)
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	OutputDir  string
	TextureDir string
	Scene      string
	Width      int
	Height     int
	Workers    int
	Frames     int
}
