package driver

import (
	"math"
	"testing"

	"cpu-rasterizer/internal/ecs"
	"cpu-rasterizer/internal/hud"
	"cpu-rasterizer/internal/mathutil"
	"cpu-rasterizer/internal/mesh"
	"cpu-rasterizer/internal/present"
	"cpu-rasterizer/internal/raster"
	"cpu-rasterizer/internal/renderer"
	"cpu-rasterizer/internal/scene"
)

func cubeWorld() *ecs.World {
	w := ecs.NewWorld()
	scene.Spawn(w, mesh.Build(mesh.Cube(1), false), mathutil.Mat4Identity(),
		raster.Colour{R: 0.8, G: 0.6, B: 0.2}, 0.3, 0.7, scene.TextureRef{})
	return w
}

func TestTickPresentsOffline(t *testing.T) {
	r := renderer.New(cubeWorld(), nil, renderer.Options{Width: 64, Height: 48, Workers: 2})
	defer r.Close()

	cam := NewOrbitCamera(mathutil.Vec3{}, 4, 1, 2, 8, 2)
	d := New(r, cam, DefaultSettings())

	for i := range 3 {
		if got := d.Tick(1.0 / 30); got != Presented {
			t.Fatalf("tick %d = %v, want presented", i, got)
		}
	}
	st := d.Stats()
	if st.Frames != 3 || st.Skipped != 0 {
		t.Errorf("Frames=%d Skipped=%d, want 3 and 0", st.Frames, st.Skipped)
	}
	if st.Raster.Pixels == 0 {
		t.Error("cube drew no pixels")
	}
	if st.FPS() < 29 || st.FPS() > 31 {
		t.Errorf("FPS() = %v, want ~30", st.FPS())
	}
}

func TestTickSkipsWithoutTarget(t *testing.T) {
	ring := present.NewRing(32, 32, 1)
	r := renderer.New(cubeWorld(), ring, renderer.Options{Workers: 1})
	defer r.Close()
	d := New(r, nil, DefaultSettings())

	// Hold the only slot so the renderer cannot acquire it.
	held, _ := ring.TryAcquire()
	if got := d.Tick(0.1); got != Skipped {
		t.Errorf("Tick = %v, want skipped", got)
	}
	ring.Present(held)
	ring.Latest()
	ring.Release()

	if got := d.Tick(0.1); got != Presented {
		t.Errorf("Tick = %v, want presented", got)
	}
	if st := d.Stats(); st.Skipped != 1 || st.Frames != 1 {
		t.Errorf("Skipped=%d Frames=%d, want 1 and 1", st.Skipped, st.Frames)
	}
	if _, ok := ring.Latest(); !ok {
		t.Error("presented frame not visible on the ring")
	}
}

func TestRecordThroughRing(t *testing.T) {
	ring := present.NewRing(40, 30, 2)
	r := renderer.New(cubeWorld(), ring, renderer.Options{Width: 40, Height: 30, Workers: 1, Offline: true})
	defer r.Close()

	s := DefaultSettings()
	s.Record = true
	d := New(r, NewOrbitCamera(mathutil.Vec3{}, 4, 1, 1, 2, 0), s)
	d.HUD = hud.New()

	ring.RecordBegin(0, 1)
	for range 4 {
		d.Tick(0.25)
	}
	ring.RecordEnd()

	frames := ring.RecordedFrames()
	if len(frames) != 4 {
		t.Fatalf("recorded %d frames, want 4", len(frames))
	}
	same := true
	for i, c := range frames[0].Color {
		if frames[1].Color[i] != c {
			same = false
			break
		}
	}
	if same {
		t.Error("orbiting camera produced identical frames")
	}
}

func TestOrbitCameraLoops(t *testing.T) {
	c := NewOrbitCamera(mathutil.Vec3{0, 0, 0}, 2, 0, 1, 1, 0.5)
	c.Update(0.25)
	if got := c.Yaw(); math.Abs(float64(got)-math.Pi/2) > 1e-4 {
		t.Errorf("Yaw after quarter period = %v, want pi/2", got)
	}
	eye := c.Eye()
	if math.Abs(float64(eye[0])-2) > 1e-4 || math.Abs(float64(eye[2])) > 1e-4 {
		t.Errorf("Eye = %v, want (2, y, 0)", eye)
	}

	c.Update(0.25)
	if h := c.Eye()[1]; math.Abs(float64(h)-1) > 1e-4 {
		t.Errorf("height at top = %v, want 1", h)
	}
	c.Update(0.5)
	if got := c.Yaw(); got != 0 {
		t.Errorf("Yaw after full period = %v, want 0", got)
	}
	if h := c.Eye()[1]; math.Abs(float64(h)) > 1e-4 {
		t.Errorf("height after return = %v, want 0", h)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Presented: "presented", Skipped: "skipped"} {
		if s.String() != want {
			t.Errorf("%d.String() = %q, want %q", s, s.String(), want)
		}
	}
}
