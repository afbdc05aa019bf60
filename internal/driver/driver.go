// Package driver runs the per-tick frame sequence on a renderer: acquire
// a target, draw the world, apply effects and present.
package driver

import (
	"fmt"
	"time"

	"cpu-rasterizer/internal/hud"
	"cpu-rasterizer/internal/mathutil"
	"cpu-rasterizer/internal/postprocess"
	"cpu-rasterizer/internal/raster"
	"cpu-rasterizer/internal/renderer"
)

// State is how far a tick got.
type State uint8

const (
	Idle State = iota
	Acquired
	Drawn
	Effects
	Presented
	Skipped
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Acquired:
		return "acquired"
	case Drawn:
		return "drawn"
	case Effects:
		return "effects"
	case Presented:
		return "presented"
	case Skipped:
		return "skipped"
	}
	return "unknown"
}

// Settings are the per-frame knobs. They are read at every tick.
type Settings struct {
	ClearColor uint32
	Light      mathutil.Vec4
	ToneMap    postprocess.ToneMapSettings
	Rain       postprocess.RainSettings
	Advanced   postprocess.AdvancedSettings
	// Record stores every offline frame in the presenter's recording.
	Record bool
}

// DefaultSettings returns the stock look: a dark clear colour, light from
// the upper right, default tone map and bloom, rain off.
func DefaultSettings() Settings {
	return Settings{
		ClearColor: 0xFF201814,
		Light:      mathutil.Vec4{0.4, 1, 0.6, 0},
		ToneMap:    postprocess.DefaultToneMap(),
		Rain:       postprocess.DefaultRain(),
		Advanced:   postprocess.DefaultAdvanced(),
	}
}

// FrameStats summarizes the ticks run so far.
type FrameStats struct {
	Frames    uint64
	Skipped   uint64
	Elapsed   time.Duration
	LastFrame time.Duration
	Raster    raster.Stats
}

// FPS is the average presented frames per second of simulated time.
func (s FrameStats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

// Driver ticks a renderer. It is driven from one goroutine.
type Driver struct {
	r      *renderer.Renderer
	Camera *OrbitCamera
	Settings
	// HUD, when set, draws frame statistics before Present.
	HUD *hud.Overlay

	elapsed float32
	state   State
	stats   FrameStats
}

// New returns a driver for r. cam may be nil for a fixed identity view.
func New(r *renderer.Renderer, cam *OrbitCamera, s Settings) *Driver {
	return &Driver{r: r, Camera: cam, Settings: s}
}

// State returns the state reached by the last tick.
func (d *Driver) State() State { return d.state }

// Time returns the simulated seconds elapsed.
func (d *Driver) Time() float32 { return d.elapsed }

// Stats returns the frame statistics.
func (d *Driver) Stats() FrameStats { return d.stats }

// Tick advances time by dt seconds and runs one frame. It returns
// Presented, or Skipped when no target was free.
func (d *Driver) Tick(dt float32) State {
	d.elapsed += dt
	d.stats.Elapsed = time.Duration(float64(d.elapsed) * float64(time.Second))
	if d.Camera != nil {
		d.Camera.Update(dt)
	}
	d.state = Idle

	start := time.Now()
	if !d.r.BeginFrame(d.ClearColor) {
		d.stats.Skipped++
		d.state = Skipped
		return d.state
	}
	d.state = Acquired

	view := mathutil.Mat4Identity()
	if d.Camera != nil {
		view = d.Camera.View()
	}
	d.r.DrawWorld(view, d.Light.Normalize3())
	d.state = Drawn

	d.r.ApplyToneMap(&d.ToneMap)
	d.r.ApplyRain(&d.Rain, d.elapsed)
	d.r.ApplyAdvancedFX(&d.Advanced, d.elapsed)
	d.state = Effects

	d.stats.Raster = d.r.Stats()
	if d.HUD != nil {
		d.HUD.Draw(d.r.Target(), d.hudLines()...)
	}
	if d.Record {
		d.r.RecordFrame()
	}
	d.r.Present()

	d.stats.Frames++
	d.stats.LastFrame = time.Since(start)
	d.state = Presented
	return d.state
}

func (d *Driver) hudLines() []string {
	st := d.stats.Raster
	return []string{
		fmt.Sprintf("frame %d  %.1f ms", d.stats.Frames+1, float64(d.stats.LastFrame.Microseconds())/1000),
		fmt.Sprintf("tris %d  px %d", st.Triangles, st.Pixels),
		fmt.Sprintf("workers %d", d.r.Workers()),
	}
}
