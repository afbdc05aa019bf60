package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"cpu-rasterizer/internal/batch"
	"cpu-rasterizer/internal/config"
	"cpu-rasterizer/internal/driver"
	"cpu-rasterizer/internal/ecs"
	"cpu-rasterizer/internal/hud"
	"cpu-rasterizer/internal/mathutil"
	"cpu-rasterizer/internal/present"
	"cpu-rasterizer/internal/renderer"
	"cpu-rasterizer/internal/scene"
	"cpu-rasterizer/internal/texture"
)

func main() {
	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	frames := flag.Int("frames", 0, "Number of frames to render (default: 120)")
	width := flag.Int("width", 0, "Frame width (default: 1024)")
	height := flag.Int("height", 0, "Frame height (default: 768)")
	workers := flag.Int("workers", 0, "Number of pool workers (default: NumCPU-1)")
	outputDir := flag.String("output", "", "Output directory (default: frames)")
	texDir := flag.String("textures", "", "Texture directory")
	sceneKind := flag.String("scene", "", "Scene layout: cubes, spheres, mixed")
	showHUD := flag.Bool("hud", false, "Draw frame statistics into each frame")
	verbose := flag.Bool("v", false, "Log renderer lifecycle to stderr")

	flag.Parse()

	if *verbose {
		renderer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	// Load config
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// CLI flags override config file
	cfg.Resolve(config.Flags{
		OutputDir:  *outputDir,
		TextureDir: *texDir,
		Scene:      *sceneKind,
		Width:      *width,
		Height:     *height,
		Workers:    *workers,
		Frames:     *frames,
	})

	// Scene
	world := ecs.NewWorld()
	var tex scene.TextureRef
	if cfg.TexturesEnabled {
		texIndex := texture.BuildIndex(cfg.TextureDir)
		texCache := texture.NewCache(texIndex)
		tex = scene.TextureRef(texCache.Resolve(cfg.Texture))
		fmt.Printf("Textures: %d indexed\n", texIndex.Len())
	}
	drawables := scene.Populate(world, scene.Layout{
		Kind:    cfg.Scene,
		Objects: cfg.Objects,
		Floor:   true,
		Texture: tex,
	})

	// Renderer: offline pair, ring used only for recording
	ring := present.NewRing(cfg.Width, cfg.Height, 1)
	r := renderer.New(world, ring, renderer.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Workers:  cfg.Workers,
		Offline:  true,
		Textures: cfg.TexturesEnabled,
		FlipV:    cfg.FlipV,
		Lanes:    cfg.Lanes,
	})
	defer r.Close()

	settings := driver.DefaultSettings()
	settings.ToneMap = cfg.ToneMap
	settings.Rain = cfg.Rain
	settings.Advanced = cfg.Advanced
	settings.Record = true

	cam := driver.NewOrbitCamera(mathutil.Vec3{}, cfg.OrbitRadius, 1.5, 3, cfg.OrbitPeriod, cfg.OrbitPeriod/2)
	d := driver.New(r, cam, settings)
	if *showHUD {
		d.HUD = hud.New()
	}

	// Print summary
	fmt.Printf("CPU rasterizer → WebP (%s scene)\n", cfg.Scene)
	fmt.Printf("Size: %dx%d, Drawables: %d, Workers: %d\n", cfg.Width, cfg.Height, drawables, r.Workers())
	fmt.Printf("Frames: %d @ %d fps, Output: %s\n", cfg.Frames, cfg.FPS, cfg.OutputDir)
	fmt.Println("------------------------------------------------------------")

	// Render
	start := time.Now()
	ring.RecordBegin(0, cfg.RecordStep)
	dt := 1 / float32(cfg.FPS)
	for i := 0; i < cfg.Frames; i++ {
		d.Tick(dt)
	}
	ring.RecordEnd()
	renderTime := time.Since(start)

	recorded := ring.RecordedFrames()
	st := d.Stats()
	fmt.Printf("Rendered %d frames in %.2fs (%.1f frames/sec)\n",
		st.Frames, renderTime.Seconds(), float64(st.Frames)/renderTime.Seconds())
	fmt.Printf("Last frame: %d triangles, %d pixels\n", st.Raster.Triangles, st.Raster.Pixels)

	// Export
	start = time.Now()
	results := batch.Run(batch.Config{
		OutputDir: cfg.OutputDir,
		Thumbnail: cfg.Thumbnail,
		Workers:   max(cfg.Workers, 1),
		Progress:  true,
	}, recorded)

	fmt.Println("------------------------------------------------------------")
	fmt.Printf("Exported in %.1fs\n", time.Since(start).Seconds())

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, res := range results {
		if res.Success {
			success++
		} else {
			failed++
			errors = append(errors, res)
		}
	}

	fmt.Printf("Written: %d/%d\n", success, len(results))

	if len(errors) > 0 {
		fmt.Printf("\nFailed (%d):\n", failed)
		for _, e := range errors[:min(len(errors), 20)] {
			fmt.Printf("  %s: %s\n", e.Image, e.Error)
		}
	}

	// Write manifest
	manifestPath := filepath.Join(cfg.OutputDir, "manifest.json")
	os.MkdirAll(cfg.OutputDir, 0755)
	if err := batch.WriteManifest(manifestPath, batch.BuildManifest(results, cfg.FPS/cfg.RecordStep)); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	} else {
		fmt.Printf("Manifest: %s\n", manifestPath)
	}

	if failed > 0 {
		os.Exit(1)
	}
}
