package renderer

import (
	"math"
	"slices"
	"testing"

	"cpu-rasterizer/internal/ecs"
	"cpu-rasterizer/internal/mathutil"
	"cpu-rasterizer/internal/mesh"
	"cpu-rasterizer/internal/postprocess"
	"cpu-rasterizer/internal/present"
	"cpu-rasterizer/internal/raster"
	"cpu-rasterizer/internal/scene"
)

// fullScreenAsset is a clip-space triangle covering the viewport at ndc
// depth z, for use with identity projection and view.
func fullScreenAsset(z float32) *mesh.Asset {
	return &mesh.Asset{
		Positions: []mathutil.Vec4{{-1, -1, z, 1}, {3, -1, z, 1}, {-1, 3, z, 1}},
		Normals:   []mathutil.Vec4{{0, 1, 0, 0}, {0, 1, 0, 0}, {0, 1, 0, 0}},
		TriCount:  1,
	}
}

func identityRenderer(t *testing.T, w *ecs.World, workers int) *Renderer {
	t.Helper()
	r := New(w, nil, Options{Width: 100, Height: 100, Workers: workers})
	r.SetProjection(mathutil.Mat4Identity())
	t.Cleanup(r.Close)
	return r
}

func checkBarrier(t *testing.T, r *Renderer, step string) {
	t.Helper()
	if r.pool.Running() != 0 || r.pool.Done() != r.pool.Workers() {
		t.Errorf("%s: running=%d done=%d, want 0 and %d",
			step, r.pool.Running(), r.pool.Done(), r.pool.Workers())
	}
}

// =============================================================================
// Scenario tests
// =============================================================================

func TestFlatTriangleScenario(t *testing.T) {
	w := ecs.NewWorld()
	scene.Spawn(w, fullScreenAsset(0.2), mathutil.Mat4Identity(), raster.Colour{R: 1}, 1, 0, scene.TextureRef{})

	r := identityRenderer(t, w, 3)
	if !r.BeginFrame(0xFF000000) {
		t.Fatal("BeginFrame = false, want true")
	}
	r.DrawWorld(mathutil.Mat4Identity(), mathutil.Vec4{0, 1, 0, 0})

	tg := r.Target()
	if got := tg.Row(50)[50]; got != 0xFF0000FF {
		t.Errorf("pixel(50,50) = %#08x, want 0xff0000ff", got)
	}
	if got := tg.DepthRow(50)[50]; math.Abs(float64(got-0.8)) > 1e-5 {
		t.Errorf("depth(50,50) = %v, want 0.8", got)
	}
	if st := r.Stats(); st.Pixels != 100*100 {
		t.Errorf("Stats().Pixels = %d, want %d", st.Pixels, 100*100)
	}
	checkBarrier(t, r, "draw")
}

func TestLightUsedAsGiven(t *testing.T) {
	w := ecs.NewWorld()
	scene.Spawn(w, fullScreenAsset(0.2), mathutil.Mat4Identity(), raster.Colour{R: 1}, 0, 0.25, scene.TextureRef{})

	r := identityRenderer(t, w, 1)
	if !r.BeginFrame(0xFF000000) {
		t.Fatal("BeginFrame = false")
	}
	r.DrawWorld(mathutil.Mat4Identity(), mathutil.Vec4{0, 2, 0, 5})

	// kd·(n·L) = 0.25·2, w ignored.
	if got := r.Target().Row(10)[10]; got != 0xFF000080 {
		t.Errorf("pixel = %#08x, want 0xff000080", got)
	}
}

func TestEmptyWorldKeepsClearColour(t *testing.T) {
	r := identityRenderer(t, ecs.NewWorld(), 2)
	if !r.BeginFrame(0xFF112233) {
		t.Fatal("BeginFrame = false")
	}
	r.DrawWorld(mathutil.Mat4Identity(), mathutil.Vec4{0, 1, 0, 0})

	tg := r.Target()
	for i, c := range tg.Color {
		if c != 0xFF112233 {
			t.Fatalf("pixel %d = %#08x, want clear colour", i, c)
		}
	}
	if st := r.Stats(); st != (raster.Stats{}) {
		t.Errorf("Stats() = %+v, want zero", st)
	}
}

func TestParallelClear(t *testing.T) {
	w := ecs.NewWorld()
	r := New(w, nil, Options{Width: 300, Height: 300, Workers: 3})
	defer r.Close()

	// Dirty the persistent pair, then begin again.
	r.BeginFrame(0xFF0000FF)
	tg := r.Target()
	for i := range tg.Depth {
		tg.Depth[i] = 0.5
	}
	r.Present()

	gen := r.pool.Generation()
	r.BeginFrame(0xFF00FF00)
	if r.pool.Generation() == gen {
		t.Error("large target was not cleared on the pool")
	}
	tg = r.Target()
	for i := range tg.Color {
		if tg.Color[i] != 0xFF00FF00 || tg.Depth[i] != raster.FarDepth {
			t.Fatalf("pixel %d = %#08x depth %v after clear", i, tg.Color[i], tg.Depth[i])
		}
	}
	checkBarrier(t, r, "clear")
}

func TestZeroClearKeepsColourResetsDepth(t *testing.T) {
	r := identityRenderer(t, ecs.NewWorld(), 1)
	r.BeginFrame(0xFF445566)
	r.Target().Depth[0] = 0.9
	r.Present()

	r.BeginFrame(0)
	tg := r.Target()
	if tg.Color[0] != 0xFF445566 {
		t.Errorf("colour = %#08x, want previous frame kept", tg.Color[0])
	}
	if tg.Depth[0] != raster.FarDepth {
		t.Errorf("depth = %v, want FarDepth", tg.Depth[0])
	}
}

// =============================================================================
// Determinism
// =============================================================================

func renderScene(t *testing.T) []uint32 {
	t.Helper()
	w := ecs.NewWorld()
	sphere := mesh.Build(mesh.Sphere(1, 12, 16), true)
	cube := mesh.Build(mesh.Cube(1.2), true)
	scene.Spawn(w, sphere, mathutil.Translate(-1, 0, 0), raster.Colour{R: 0.9, G: 0.3, B: 0.2}, 0.2, 0.8, scene.TextureRef{})
	scene.Spawn(w, cube, mathutil.Translate(1, 0, 0).Mul(mathutil.RotXYZ(0.3, 0.6, 0)), raster.Colour{R: 0.2, G: 0.5, B: 0.9}, 0.2, 0.8, scene.TextureRef{})

	r := New(w, nil, Options{Width: 96, Height: 72, Workers: 3, Lanes: true})
	defer r.Close()

	view := mathutil.LookAt(mathutil.Vec3{0, 1, 5}, mathutil.Vec3{}, mathutil.Vec3{0, 1, 0})
	tone := postprocess.DefaultToneMap()
	rain := postprocess.DefaultRain()
	rain.Enabled = true
	adv := postprocess.DefaultAdvanced()
	adv.FogEnabled = true
	adv.SSREnabled = true
	adv.FilmGrainEnabled = true
	adv.GodRaysEnabled = true

	if !r.BeginFrame(0xFF202020) {
		t.Fatal("BeginFrame = false")
	}
	r.DrawWorld(view, mathutil.Vec4{0.3, 1, 0.5, 0})
	r.ApplyToneMap(&tone)
	r.ApplyRain(&rain, 1.5)
	r.ApplyAdvancedFX(&adv, 1.5)
	checkBarrier(t, r, "advanced")
	return slices.Clone(r.Target().Color)
}

func TestDeterministicFrames(t *testing.T) {
	a := renderScene(t)
	b := renderScene(t)
	if !slices.Equal(a, b) {
		t.Fatal("two renders of the same frame differ")
	}
	bg := 0
	for _, c := range a {
		if c == a[0] {
			bg++
		}
	}
	if bg == len(a) {
		t.Error("frame is uniform, nothing was drawn")
	}
}

// =============================================================================
// Presenter mode
// =============================================================================

type fakePresenter struct {
	free      []raster.Target
	presented []raster.Target
	recorded  int
	flushed   bool
}

func (p *fakePresenter) TryAcquire() (raster.Target, bool) {
	if len(p.free) == 0 {
		return raster.Target{}, false
	}
	t := p.free[0]
	p.free = p.free[1:]
	return t, true
}

func (p *fakePresenter) Present(t raster.Target) { p.presented = append(p.presented, t) }
func (p *fakePresenter) Flush()                  { p.flushed = true }

func (p *fakePresenter) RecordSubmit(raster.Target) bool {
	p.recorded++
	return true
}

func TestPresenterAcquirePresent(t *testing.T) {
	p := &fakePresenter{free: []raster.Target{raster.NewOfflineTarget(16, 8)}}
	r := New(ecs.NewWorld(), p, Options{Workers: 1})

	if !r.BeginFrame(0xFFFFFFFF) {
		t.Fatal("first BeginFrame = false")
	}
	if r.RecordFrame() {
		t.Error("RecordFrame recorded a presenter frame")
	}
	r.Present()
	if len(p.presented) != 1 || p.presented[0].Color[0] != 0xFFFFFFFF {
		t.Fatalf("presented = %d frames, want 1 cleared frame", len(p.presented))
	}
	if r.Bound() {
		t.Error("target still bound after Present")
	}

	if r.BeginFrame(0) {
		t.Error("BeginFrame with no free target = true, want false")
	}
	r.DrawWorld(mathutil.Mat4Identity(), mathutil.Vec4{0, 1, 0, 0})
	r.Present()
	if len(p.presented) != 1 {
		t.Errorf("skipped frame was presented")
	}

	r.Close()
	if !p.flushed {
		t.Error("Close did not flush the presenter")
	}
}

func TestOfflineRecordFrame(t *testing.T) {
	p := &fakePresenter{}
	r := New(ecs.NewWorld(), p, Options{Width: 8, Height: 8, Offline: true})
	defer r.Close()

	if !r.BeginFrame(0xFF000000) {
		t.Fatal("BeginFrame = false")
	}
	if !r.RecordFrame() || p.recorded != 1 {
		t.Errorf("RecordFrame stored %d frames, want 1", p.recorded)
	}
	r.Present()
	if len(p.presented) != 0 {
		t.Error("offline frame handed to presenter")
	}
	if tg := r.Target(); tg.Width != 8 {
		t.Errorf("offline target lost after Present: %+v", tg)
	}
}

func TestUnusableTargetGivenBack(t *testing.T) {
	ring := present.NewRing(0, 0, 1)
	r := New(ecs.NewWorld(), ring, Options{Workers: 1})
	defer r.Close()

	for i := 0; i < 2; i++ {
		if r.BeginFrame(0) {
			t.Fatalf("frame %d: BeginFrame on zero-size target = true", i)
		}
		if r.Bound() {
			t.Fatalf("frame %d: zero-size target left bound", i)
		}
	}
	if _, ok := ring.TryAcquire(); !ok {
		t.Error("ring slot still held after skipped frames")
	}

	p := &fakePresenter{free: []raster.Target{{}}}
	r2 := New(ecs.NewWorld(), p, Options{Workers: 0})
	defer r2.Close()
	if r2.BeginFrame(0) || !p.flushed {
		t.Error("presenter without Discard was not flushed after an unusable target")
	}
}

func TestFrameAfterClose(t *testing.T) {
	w := ecs.NewWorld()
	scene.Spawn(w, fullScreenAsset(0.5), mathutil.Mat4Identity(), raster.Colour{G: 1}, 1, 0, scene.TextureRef{})

	r := New(w, nil, Options{Width: 20, Height: 20, Workers: 4})
	r.SetProjection(mathutil.Mat4Identity())
	r.Close()
	r.Close()

	if !r.BeginFrame(0xFF000000) {
		t.Fatal("BeginFrame after Close = false")
	}
	r.DrawWorld(mathutil.Mat4Identity(), mathutil.Vec4{0, 1, 0, 0})
	for i, c := range r.Target().Color {
		if c != 0xFF00FF00 {
			t.Fatalf("pixel %d = %#08x, want 0xff00ff00", i, c)
		}
	}
}

func TestDefaultProjection(t *testing.T) {
	r := New(ecs.NewWorld(), nil, Options{Width: 200, Height: 100, Workers: 0})
	defer r.Close()
	want := mathutil.Perspective(mathutil.Deg2Rad(90), 2, 0.1, 100)
	if r.Projection() != want {
		t.Errorf("Projection() = %v, want %v", r.Projection(), want)
	}
}
