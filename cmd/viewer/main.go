package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"cpu-rasterizer/internal/config"
	"cpu-rasterizer/internal/driver"
	"cpu-rasterizer/internal/ecs"
	"cpu-rasterizer/internal/hud"
	"cpu-rasterizer/internal/mathutil"
	"cpu-rasterizer/internal/present"
	"cpu-rasterizer/internal/raster"
	"cpu-rasterizer/internal/renderer"
	"cpu-rasterizer/internal/scene"
	"cpu-rasterizer/internal/texture"
)

// viewer renders on Update and shows the ring's latest frame on Draw.
//
// Keys: R rain, T tone map, B bloom, F fog, G grain, L lane walker,
// C record on/off, P play back the recording, Esc quits.
type viewer struct {
	r     *renderer.Renderer
	d     *driver.Driver
	ring  *present.Ring
	w, h  int
	lanes bool

	screen *ebiten.Image
	pix    []byte
}

func (v *viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	v.handleKeys()

	if v.ring.State() == present.Playback {
		if !v.ring.PlaybackNext() && v.ring.State() == present.Live {
			fmt.Println("Playback finished")
		}
		return nil
	}
	v.d.Tick(1 / float32(ebiten.TPS()))
	return nil
}

func (v *viewer) handleKeys() {
	s := &v.d.Settings
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		s.Rain.Enabled = !s.Rain.Enabled
	case inpututil.IsKeyJustPressed(ebiten.KeyT):
		s.ToneMap.Enabled = !s.ToneMap.Enabled
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		s.Advanced.BloomEnabled = !s.Advanced.BloomEnabled
	case inpututil.IsKeyJustPressed(ebiten.KeyF):
		s.Advanced.FogEnabled = !s.Advanced.FogEnabled
	case inpututil.IsKeyJustPressed(ebiten.KeyG):
		s.Advanced.FilmGrainEnabled = !s.Advanced.FilmGrainEnabled
	case inpututil.IsKeyJustPressed(ebiten.KeyL):
		v.lanes = !v.lanes
		v.r.SetLanes(v.lanes)
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		if v.ring.State() == present.Recording {
			v.ring.RecordEnd()
			fmt.Printf("Recorded %d frames\n", len(v.ring.RecordedFrames()))
		} else {
			v.ring.RecordBegin(0, 1)
			fmt.Println("Recording")
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		if v.ring.State() == present.Playback {
			v.ring.PlaybackStop()
		} else if v.ring.PlaybackStart(true) {
			fmt.Println("Playback")
		}
	}
}

func (v *viewer) Draw(dst *ebiten.Image) {
	t, ok := v.ring.Latest()
	if !ok {
		return
	}
	v.ring.RecordShown()
	if v.screen == nil {
		v.screen = ebiten.NewImage(v.w, v.h)
		v.pix = make([]byte, 4*v.w*v.h)
	}
	copyPixels(v.pix, t)
	v.screen.WritePixels(v.pix)
	dst.DrawImage(v.screen, nil)
}

func (v *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.w, v.h
}

// copyPixels unpacks A<<24|B<<16|G<<8|R pixels into RGBA bytes.
func copyPixels(dst []byte, t raster.Target) {
	i := 0
	for y := 0; y < t.Height; y++ {
		for _, c := range t.Row(y) {
			dst[i] = byte(c)
			dst[i+1] = byte(c >> 8)
			dst[i+2] = byte(c >> 16)
			dst[i+3] = 0xFF
			i += 4
		}
	}
}

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	width := flag.Int("width", 0, "Frame width (default: 1024)")
	height := flag.Int("height", 0, "Frame height (default: 768)")
	workers := flag.Int("workers", 0, "Number of pool workers (default: NumCPU-1)")
	texDir := flag.String("textures", "", "Texture directory")
	sceneKind := flag.String("scene", "", "Scene layout: cubes, spheres, mixed")
	verbose := flag.Bool("v", false, "Log renderer lifecycle to stderr")
	flag.Parse()

	if *verbose {
		renderer.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	}

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		TextureDir: *texDir,
		Scene:      *sceneKind,
		Width:      *width,
		Height:     *height,
		Workers:    *workers,
	})

	world := ecs.NewWorld()
	var tex scene.TextureRef
	if cfg.TexturesEnabled {
		tex = scene.TextureRef(texture.NewCache(texture.BuildIndex(cfg.TextureDir)).Resolve(cfg.Texture))
	}
	scene.Populate(world, scene.Layout{Kind: cfg.Scene, Objects: cfg.Objects, Floor: true, Texture: tex})

	ring := present.NewRing(cfg.Width, cfg.Height, cfg.RingSize)
	r := renderer.New(world, ring, renderer.Options{
		Width:    cfg.Width,
		Height:   cfg.Height,
		Workers:  cfg.Workers,
		Textures: cfg.TexturesEnabled,
		FlipV:    cfg.FlipV,
		Lanes:    cfg.Lanes,
	})
	defer r.Close()

	settings := driver.DefaultSettings()
	settings.ToneMap = cfg.ToneMap
	settings.Rain = cfg.Rain
	settings.Advanced = cfg.Advanced

	cam := driver.NewOrbitCamera(mathutil.Vec3{}, cfg.OrbitRadius, 1.5, 3, cfg.OrbitPeriod, cfg.OrbitPeriod/2)
	d := driver.New(r, cam, settings)
	d.HUD = hud.New()

	v := &viewer{r: r, d: d, ring: ring, w: cfg.Width, h: cfg.Height, lanes: cfg.Lanes}

	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowTitle("cpu-rasterizer")
	if err := ebiten.RunGame(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
