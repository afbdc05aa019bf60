package present

import (
	"slices"

	"cpu-rasterizer/internal/raster"
)

// State is the recording and playback mode of a Ring.
type State uint8

const (
	Live State = iota
	Recording
	Playback
)

func (s State) String() string {
	switch s {
	case Live:
		return "live"
	case Recording:
		return "recording"
	case Playback:
		return "playback"
	}
	return "unknown"
}

type recording struct {
	state  State
	frames []raster.Target
	limit  int
	step   int
	seen   int
	cursor int
	loop   bool
	// shownSeq of the last frame taken by RecordShown.
	lastShown uint64
}

// RecordBegin discards any previous recording and starts a new one.
// Every step-th submitted frame is kept, up to limit frames; limit <= 0
// means unbounded and step < 1 keeps every frame.
func (r *Ring) RecordBegin(limit, step int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rec = recording{state: Recording, limit: limit, step: max(step, 1), lastShown: r.shownSeq}
}

// RecordSubmit copies t's colour into the recording. It reports whether
// the frame was kept.
func (r *Ring) RecordSubmit(t raster.Target) bool {
	if !t.Valid() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.submitLocked(t)
}

// RecordShown records the frame held for display, once per frame that
// Latest picked up after RecordBegin. A display that redraws the same
// frame several times records it once.
func (r *Ring) RecordShown() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rec.state != Recording || r.shown < 0 || r.shownSeq == r.rec.lastShown {
		return false
	}
	r.rec.lastShown = r.shownSeq
	return r.submitLocked(r.slots[r.shown])
}

func (r *Ring) submitLocked(t raster.Target) bool {
	rec := &r.rec
	if rec.state != Recording || !t.Valid() {
		return false
	}
	if rec.limit > 0 && len(rec.frames) >= rec.limit {
		return false
	}
	n := rec.seen
	rec.seen++
	if n%rec.step != 0 {
		return false
	}

	f := raster.Target{
		Width:      t.Width,
		Height:     t.Height,
		Color:      make([]uint32, t.Width*t.Height),
		ColorPitch: t.Width,
	}
	f.CopyFrom(t)
	rec.frames = append(rec.frames, f)
	return true
}

// RecordEnd stops recording and keeps the frames.
func (r *Ring) RecordEnd() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rec.state == Recording {
		r.rec.state = Live
	}
}

// RecordedFrames returns the recorded frames. They carry colour only.
func (r *Ring) RecordedFrames() []raster.Target {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.rec.frames)
}

// PlaybackStart replays the recording through the ring. It fails while
// recording or when nothing was recorded.
func (r *Ring) PlaybackStart(loop bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rec.state == Recording || len(r.rec.frames) == 0 {
		return false
	}
	r.rec.state = Playback
	r.rec.cursor = 0
	r.rec.loop = loop
	return true
}

// PlaybackNext copies the next recorded frame into a free target and
// presents it. At the end it wraps when looping and otherwise returns to
// Live. It reports whether a frame was presented.
func (r *Ring) PlaybackNext() bool {
	r.mu.Lock()
	rec := &r.rec
	if rec.state != Playback {
		r.mu.Unlock()
		return false
	}
	if rec.cursor >= len(rec.frames) {
		if !rec.loop {
			rec.state = Live
			r.mu.Unlock()
			return false
		}
		rec.cursor = 0
	}
	frame := rec.frames[rec.cursor]
	r.mu.Unlock()

	t, ok := r.TryAcquire()
	if !ok {
		return false
	}
	if !t.CopyFrom(frame) {
		r.Discard(t)
		return false
	}
	r.Present(t)

	r.mu.Lock()
	r.rec.cursor++
	r.mu.Unlock()
	return true
}

// PlaybackRewind moves playback to the first frame.
func (r *Ring) PlaybackRewind() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rec.cursor = 0
}

// PlaybackStop returns to Live, keeping the recording.
func (r *Ring) PlaybackStop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rec.state == Playback {
		r.rec.state = Live
	}
}

// State returns the current mode.
func (r *Ring) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec.state
}
