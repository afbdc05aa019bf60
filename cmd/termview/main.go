package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"

	"cpu-rasterizer/internal/config"
	"cpu-rasterizer/internal/driver"
	"cpu-rasterizer/internal/ecs"
	"cpu-rasterizer/internal/mathutil"
	"cpu-rasterizer/internal/present"
	"cpu-rasterizer/internal/renderer"
	"cpu-rasterizer/internal/scene"
)

// Each terminal cell shows two vertically stacked pixels: the upper half
// block takes the top pixel as foreground and the bottom one as
// background.
const halfBlock = '▀'

type termView struct {
	screen tcell.Screen
	world  *ecs.World
	cfg    config.Config

	r    *renderer.Renderer
	d    *driver.Driver
	ring *present.Ring

	paused bool
	last   time.Time
}

func newTermView(cfg config.Config, world *ecs.World) (*termView, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	tv := &termView{screen: screen, world: world, cfg: cfg, last: time.Now()}
	tv.resize()
	return tv, nil
}

// resize rebuilds the ring and renderer for the current terminal size.
func (tv *termView) resize() {
	cols, rows := tv.screen.Size()
	w, h := max(cols, 1), max(rows*2, 2)

	var settings driver.Settings
	var cam *driver.OrbitCamera
	if tv.d != nil {
		settings = tv.d.Settings
		cam = tv.d.Camera
		tv.r.Close()
	} else {
		settings = driver.DefaultSettings()
		settings.ToneMap = tv.cfg.ToneMap
		settings.Rain = tv.cfg.Rain
		settings.Advanced = tv.cfg.Advanced
		cam = driver.NewOrbitCamera(mathutil.Vec3{}, tv.cfg.OrbitRadius, 1.5, 3, tv.cfg.OrbitPeriod, tv.cfg.OrbitPeriod/2)
	}

	tv.ring = present.NewRing(w, h, tv.cfg.RingSize)
	tv.r = renderer.New(tv.world, tv.ring, renderer.Options{
		Width:   w,
		Height:  h,
		Workers: tv.cfg.Workers,
		Lanes:   tv.cfg.Lanes,
	})
	// Terminal cells are about twice as tall as wide, which the half
	// blocks already undo, so the pixel aspect is w/h.
	tv.r.SetProjection(mathutil.Perspective(mathutil.Deg2Rad(renderer.DefaultFovY),
		float32(w)/float32(h), renderer.DefaultNear, renderer.DefaultFar))
	tv.d = driver.New(tv.r, cam, settings)
}

func (tv *termView) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			s := &tv.d.Settings
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				tv.paused = !tv.paused
			case 'r':
				s.Rain.Enabled = !s.Rain.Enabled
			case 't':
				s.ToneMap.Enabled = !s.ToneMap.Enabled
			case 'f':
				s.Advanced.FogEnabled = !s.Advanced.FogEnabled
			}
		}

	case *tcell.EventResize:
		tv.resize()
		tv.screen.Sync()
	}
	return true
}

func (tv *termView) draw() {
	t, ok := tv.ring.Latest()
	if !ok {
		return
	}
	cols, rows := tv.screen.Size()
	for cy := 0; cy < rows && 2*cy < t.Height; cy++ {
		top := t.Row(2 * cy)
		bottom := top
		if 2*cy+1 < t.Height {
			bottom = t.Row(2*cy + 1)
		}
		for cx := 0; cx < cols && cx < t.Width; cx++ {
			style := tcell.StyleDefault.
				Foreground(toColor(top[cx])).
				Background(toColor(bottom[cx]))
			tv.screen.SetContent(cx, cy, halfBlock, nil, style)
		}
	}

	st := tv.d.Stats()
	status := fmt.Sprintf(" %dx%d  %.1f ms  %d px  workers %d ", t.Width, t.Height,
		float64(st.LastFrame.Microseconds())/1000, st.Raster.Pixels, tv.r.Workers())
	for i, ch := range status {
		if i >= cols {
			break
		}
		tv.screen.SetContent(i, 0, ch, nil, tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack))
	}
	tv.screen.Show()
}

func toColor(c uint32) tcell.Color {
	return tcell.NewRGBColor(int32(c&0xFF), int32((c>>8)&0xFF), int32((c>>16)&0xFF))
}

func (tv *termView) run() {
	ticker := time.NewTicker(33 * time.Millisecond) // ~30 FPS
	defer ticker.Stop()

	eventChan := make(chan tcell.Event, 100)
	go func() {
		for {
			eventChan <- tv.screen.PollEvent()
		}
	}()

	for {
		select {
		case ev := <-eventChan:
			if ev == nil || !tv.handleInput(ev) {
				return
			}

		case now := <-ticker.C:
			dt := float32(now.Sub(tv.last).Seconds())
			tv.last = now
			if !tv.paused {
				tv.d.Tick(dt)
			}
			tv.draw()
		}
	}
}

func (tv *termView) cleanup() {
	tv.r.Close()
	tv.screen.Fini()
}

func main() {
	configFile := flag.String("config", "", "Path to config.json file")
	workers := flag.Int("workers", 0, "Number of pool workers (default: NumCPU-1)")
	sceneKind := flag.String("scene", "", "Scene layout: cubes, spheres, mixed")
	logFile := flag.String("log", "", "Write renderer logs to this file")
	flag.Parse()

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{Scene: *sceneKind, Workers: *workers})

	if *logFile != "" {
		f, err := os.Create(*logFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening log: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		renderer.SetLogger(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	world := ecs.NewWorld()
	scene.Populate(world, scene.Layout{Kind: cfg.Scene, Objects: cfg.Objects, Floor: true})

	tv, err := newTermView(cfg, world)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}
	defer tv.cleanup()

	tv.run()
}
