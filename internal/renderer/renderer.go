// Package renderer drives frames through the worker pool: it binds a
// target, clears it, rasterizes every drawable and runs the screen-space
// passes, one barrier dispatch per step.
package renderer

import (
	"sync/atomic"

	"cpu-rasterizer/internal/ecs"
	"cpu-rasterizer/internal/mathutil"
	"cpu-rasterizer/internal/parallel"
	"cpu-rasterizer/internal/postprocess"
	"cpu-rasterizer/internal/raster"
	"cpu-rasterizer/internal/scene"
)

// Presenter supplies targets to draw into and takes finished ones.
type Presenter interface {
	// TryAcquire returns a free target, or false when none is available.
	TryAcquire() (raster.Target, bool)
	// Present hands a finished target to the display side.
	Present(t raster.Target)
	// Flush drops every queued frame.
	Flush()
}

// Discarder takes back an acquired target that will not be presented. A
// Presenter may implement it; otherwise Flush is used.
type Discarder interface {
	Discard(t raster.Target)
}

// Recorder stores copies of offline frames. A Presenter may implement it.
type Recorder interface {
	RecordSubmit(t raster.Target) bool
}

// Options configures a Renderer.
type Options struct {
	// Width and Height size the offline target pair.
	Width, Height int
	// Workers is the pool size; negative selects GOMAXPROCS-1.
	Workers int
	// Offline renders into the persistent target pair even when a
	// presenter is set. The presenter is then only used as a Recorder.
	Offline  bool
	Textures bool
	FlipV    bool
	Lanes    bool
}

// Targets at least this large are cleared on the pool.
const parallelClearPixels = 256 * 256

// Default projection.
const (
	DefaultFovY = 90
	DefaultNear = 0.1
	DefaultFar  = 100
)

// jobDesc is the state every band of a dispatch reads. It is written only
// inside the pool's publish callback and is read-only while the dispatch
// runs.
type jobDesc struct {
	kind       parallel.JobKind
	vp         mathutil.Mat4
	light      mathutil.Vec4
	width      int
	height     int
	textures   bool
	flipV      bool
	lanes      bool
	clear      uint32
	clearColor bool
	useSnap    bool
	time       float32
	tone       postprocess.ToneMapSettings
	rain       postprocess.RainSettings
	adv        postprocess.AdvancedSettings
}

type counters struct {
	triangles     atomic.Uint64
	culledW       atomic.Uint64
	culledFrustum atomic.Uint64
	culledArea    atomic.Uint64
	culledBounds  atomic.Uint64
	pixels        atomic.Uint64
}

func (c *counters) add(s *raster.Stats) {
	c.triangles.Add(s.Triangles)
	c.culledW.Add(s.CulledW)
	c.culledFrustum.Add(s.CulledFrustum)
	c.culledArea.Add(s.CulledArea)
	c.culledBounds.Add(s.CulledBounds)
	c.pixels.Add(s.Pixels)
}

func (c *counters) reset() {
	c.triangles.Store(0)
	c.culledW.Store(0)
	c.culledFrustum.Store(0)
	c.culledArea.Store(0)
	c.culledBounds.Store(0)
	c.pixels.Store(0)
}

// Renderer owns the worker pool, the drawable cache and, in offline mode,
// a persistent colour and depth pair.
//
// Thread safety: a Renderer is driven from one goroutine. The ECS world
// must not change structurally while DrawWorld runs.
type Renderer struct {
	world     *ecs.World
	presenter Presenter
	opts      Options
	offline   bool

	pool    *parallel.Pool
	cache   scene.DrawableCache
	proj    mathutil.Mat4
	scratch []postprocess.Scratch

	target    raster.Target
	bound     bool
	offTarget raster.Target
	snapshot  raster.Target
	job       jobDesc
	stats     counters
	frames    uint64
	closed    bool
}

// New creates a renderer and starts its pool. presenter may be nil, in
// which case frames are drawn into an offline target pair.
func New(world *ecs.World, presenter Presenter, opts Options) *Renderer {
	r := &Renderer{
		world:     world,
		presenter: presenter,
		opts:      opts,
		offline:   presenter == nil || opts.Offline,
	}
	r.pool = parallel.NewPool(opts.Workers, r.runBand)
	r.scratch = make([]postprocess.Scratch, r.pool.Slices())

	aspect := float32(1)
	if opts.Width > 0 && opts.Height > 0 {
		aspect = float32(opts.Width) / float32(opts.Height)
	}
	r.proj = mathutil.Perspective(mathutil.Deg2Rad(DefaultFovY), aspect, DefaultNear, DefaultFar)

	Logger().Info("renderer: pool started",
		"workers", r.pool.Workers(), "slices", r.pool.Slices(), "offline", r.offline)
	return r
}

// Close stops the pool and flushes the presenter. Idempotent.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	r.pool.Close()
	if r.presenter != nil && !r.offline {
		r.presenter.Flush()
	}
	Logger().Info("renderer: pool stopped")
}

// Workers returns the pool size.
func (r *Renderer) Workers() int { return r.pool.Workers() }

// Frames returns how many frames were begun.
func (r *Renderer) Frames() uint64 { return r.frames }

// Offline reports whether frames go to the persistent target pair.
func (r *Renderer) Offline() bool { return r.offline }

// SetProjection replaces the projection matrix.
func (r *Renderer) SetProjection(m mathutil.Mat4) { r.proj = m }

// Projection returns the projection matrix.
func (r *Renderer) Projection() mathutil.Mat4 { return r.proj }

// SetTextures toggles the textured path.
func (r *Renderer) SetTextures(on bool) { r.opts.Textures = on }

// SetFlipV toggles flipping texture V coordinates.
func (r *Renderer) SetFlipV(on bool) { r.opts.FlipV = on }

// SetLanes toggles the four-pixel walker.
func (r *Renderer) SetLanes(on bool) { r.opts.Lanes = on }

// Target returns the bound target. Between frames in offline mode it is
// the persistent pair, which still holds the last frame.
func (r *Renderer) Target() raster.Target {
	if r.bound {
		return r.target
	}
	if r.offline {
		return r.offTarget
	}
	return raster.Target{}
}

// Bound reports whether a frame is in progress.
func (r *Renderer) Bound() bool { return r.bound }

// Stats returns the rasterizer counters of the current or last frame,
// summed over bands.
func (r *Renderer) Stats() raster.Stats {
	return raster.Stats{
		Triangles:     r.stats.triangles.Load(),
		CulledW:       r.stats.culledW.Load(),
		CulledFrustum: r.stats.culledFrustum.Load(),
		CulledArea:    r.stats.culledArea.Load(),
		CulledBounds:  r.stats.culledBounds.Load(),
		Pixels:        r.stats.pixels.Load(),
	}
}

// BeginFrame binds a target and clears it. Colour is cleared to clear
// unless clear is zero; depth always starts at FarDepth. It returns false
// when no target is available, in which case the frame must be skipped.
func (r *Renderer) BeginFrame(clear uint32) bool {
	if r.bound {
		return true
	}
	if r.offline {
		r.ensureOffline()
		r.target = r.offTarget
	} else {
		t, ok := r.presenter.TryAcquire()
		if !ok {
			Logger().Debug("renderer: no free target, frame skipped")
			return false
		}
		r.target = t
	}
	if !r.target.Valid() {
		Logger().Debug("renderer: target not usable, frame skipped",
			"width", r.target.Width, "height", r.target.Height)
		if !r.offline {
			r.giveBack(r.target)
		}
		r.target = raster.Target{}
		return false
	}

	r.bound = true
	r.frames++
	r.stats.reset()
	r.clear(clear)
	return true
}

func (r *Renderer) giveBack(t raster.Target) {
	if d, ok := r.presenter.(Discarder); ok {
		d.Discard(t)
		return
	}
	r.presenter.Flush()
}

func (r *Renderer) ensureOffline() {
	w, h := max(r.opts.Width, 1), max(r.opts.Height, 1)
	if r.offTarget.Width == w && r.offTarget.Height == h {
		return
	}
	r.offTarget = raster.NewOfflineTarget(w, h)
	Logger().Info("renderer: offline target resized", "width", w, "height", h)
}

func (r *Renderer) clear(c uint32) {
	t := r.target
	if t.Width*t.Height < parallelClearPixels {
		if c != 0 {
			t.ClearColor(c, 0, t.Height-1)
		}
		t.ClearDepth(0, t.Height-1)
		return
	}
	r.dispatch(parallel.JobClear, func(j *jobDesc) {
		j.clear = c
		j.clearColor = c != 0
	})
}

// DrawWorld rasterizes every drawable of the world with view and a
// directional light. lightDir is used as given; callers normalize it.
func (r *Renderer) DrawWorld(view mathutil.Mat4, lightDir mathutil.Vec4) {
	if !r.bound || !r.target.HasDepth() {
		return
	}
	r.cache.Refresh(r.world)
	if r.cache.Len() == 0 {
		Logger().Debug("renderer: nothing to draw")
		return
	}

	vp := r.proj.Mul(view)
	light := mathutil.Vec4{lightDir[0], lightDir[1], lightDir[2], 0}
	r.dispatch(parallel.JobDraw, func(j *jobDesc) {
		j.vp = vp
		j.light = light
		j.textures = r.opts.Textures
		j.flipV = r.opts.FlipV
		j.lanes = r.opts.Lanes
	})
}

// ApplyToneMap grades the bound target.
func (r *Renderer) ApplyToneMap(s *postprocess.ToneMapSettings) {
	if !r.bound || s == nil || !s.Active() {
		return
	}
	r.dispatch(parallel.JobToneMap, func(j *jobDesc) { j.tone = *s })
}

// ApplyRain draws rain at time seconds. It needs a depth plane.
func (r *Renderer) ApplyRain(s *postprocess.RainSettings, time float32) {
	if !r.bound || s == nil || !s.Active() || !r.target.HasDepth() {
		return
	}
	r.dispatch(parallel.JobRain, func(j *jobDesc) {
		j.rain = *s
		j.time = time
	})
}

// ApplyAdvancedFX runs the combined advanced sweep at time seconds. When
// reflections are on, the frame is first copied by a snapshot dispatch
// so every band reads mirror rows from the same pre-pass image.
func (r *Renderer) ApplyAdvancedFX(s *postprocess.AdvancedSettings, time float32) {
	if !r.bound || s == nil || !s.Active() {
		return
	}
	if s.NeedsDepth() && !r.target.HasDepth() {
		return
	}

	useSnap := s.NeedsSnapshot()
	if useSnap {
		if r.snapshot.Width != r.target.Width || r.snapshot.Height != r.target.Height {
			r.snapshot = raster.NewOfflineTarget(r.target.Width, r.target.Height)
		}
		r.dispatch(parallel.JobSnapshot, nil)
	}
	r.dispatch(parallel.JobAdvanced, func(j *jobDesc) {
		j.adv = *s
		j.time = time
		j.useSnap = useSnap
	})
}

// RecordFrame copies the bound offline target into the presenter's
// recording. It reports whether a frame was stored.
func (r *Renderer) RecordFrame() bool {
	if !r.bound || !r.offline {
		return false
	}
	rec, ok := r.presenter.(Recorder)
	if !ok {
		return false
	}
	return rec.RecordSubmit(r.target)
}

// Present hands the bound target to the presenter and unbinds it. In
// offline mode the target stays in the persistent pair.
func (r *Renderer) Present() {
	if !r.bound {
		return
	}
	if !r.offline {
		r.presenter.Present(r.target)
	}
	r.bound = false
	r.target = raster.Target{}
}

// dispatch publishes the job and runs it over every row of the bound
// target. After Close the pool runs every band on the caller.
func (r *Renderer) dispatch(kind parallel.JobKind, set func(j *jobDesc)) {
	h := r.target.Height
	r.pool.Dispatch(kind, h, func() {
		r.job.kind = kind
		r.job.width = r.target.Width
		r.job.height = h
		if set != nil {
			set(&r.job)
		}
	})
}

// runBand is the pool handler.
func (r *Renderer) runBand(kind parallel.JobKind, slice int, b parallel.Band) {
	t := &r.target
	j := &r.job
	switch kind {
	case parallel.JobClear:
		if j.clearColor {
			t.ClearColor(j.clear, b.Y0, b.Y1)
		}
		t.ClearDepth(b.Y0, b.Y1)
	case parallel.JobDraw:
		r.drawBand(b)
	case parallel.JobToneMap:
		postprocess.ToneMapRows(t, &j.tone, b.Y0, b.Y1)
	case parallel.JobRain:
		postprocess.RainRows(t, &j.rain, j.time, b.Y0, b.Y1)
	case parallel.JobSnapshot:
		postprocess.Snapshot(&r.snapshot, t, b.Y0, b.Y1)
	case parallel.JobAdvanced:
		var snap *raster.Target
		if j.useSnap {
			snap = &r.snapshot
		}
		postprocess.AdvancedRows(t, snap, &j.adv, j.time, b.Y0, b.Y1, &r.scratch[slice])
	}
}

func (r *Renderer) drawBand(b parallel.Band) {
	j := &r.job
	p := raster.Params{
		VP:       j.vp,
		Light:    j.light,
		Textures: j.textures,
		FlipV:    j.flipV,
		Options:  raster.Options{Lanes: j.lanes},
	}
	var st raster.Stats
	for _, blk := range r.cache.Blocks() {
		for i := 0; i < blk.N; i++ {
			m := raster.Mesh(blk.Meshes[i])
			raster.DrawMesh(&r.target, b.Y0, b.Y1, &p, blk.Transforms[i].World, &m,
				raster.Material(blk.Materials[i]), raster.Texture(blk.Textures[i]), &st)
		}
	}
	r.stats.add(&st)
}
