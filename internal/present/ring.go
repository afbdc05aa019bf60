// Package present is the presentation side of the renderer: a ring of
// targets handed between the render loop and a display, plus frame
// recording and playback.
package present

import (
	"sync"

	"cpu-rasterizer/internal/raster"
)

// DefaultSlots is the ring size used when none is given.
const DefaultSlots = 3

// Ring is a fixed set of targets cycling through three states: free
// (acquirable by the renderer), ready (presented, waiting for display) and
// shown (held by the display until Release or a newer Latest).
//
// Thread safety: all methods are safe for concurrent use. The renderer
// and the display normally run on different goroutines.
type Ring struct {
	mu     sync.Mutex
	slots  []raster.Target
	free   []int
	ready  []int
	shown  int
	owned  int
	width  int
	height int

	presented uint64
	dropped   uint64
	// shownSeq counts frames Latest has newly picked up.
	shownSeq uint64

	rec recording
}

// NewRing allocates slots targets of w×h. slots < 1 selects DefaultSlots.
func NewRing(w, h, slots int) *Ring {
	if slots < 1 {
		slots = DefaultSlots
	}
	r := &Ring{
		slots:  make([]raster.Target, slots),
		free:   make([]int, 0, slots),
		ready:  make([]int, 0, slots),
		shown:  -1,
		owned:  -1,
		width:  w,
		height: h,
	}
	for i := range r.slots {
		r.slots[i] = raster.NewOfflineTarget(w, h)
		r.free = append(r.free, i)
	}
	return r
}

// Size returns the target dimensions.
func (r *Ring) Size() (w, h int) { return r.width, r.height }

// Slots returns the number of targets in the ring.
func (r *Ring) Slots() int { return len(r.slots) }

// TryAcquire takes a free target. When none is free the oldest ready
// frame is dropped and its slot reused, so the renderer never waits on a
// slow display. It fails only while every slot is held elsewhere.
func (r *Ring) TryAcquire() (raster.Target, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owned >= 0 {
		return raster.Target{}, false
	}

	var idx int
	switch {
	case len(r.free) > 0:
		idx = r.free[0]
		r.free = r.free[1:]
	case len(r.ready) > 0:
		idx = r.ready[0]
		r.ready = r.ready[1:]
		r.dropped++
	default:
		return raster.Target{}, false
	}
	r.owned = idx
	return r.slots[idx], true
}

// Present queues the acquired target for display. Targets that did not
// come from TryAcquire are ignored.
func (r *Ring) Present(t raster.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.slotOf(t)
	if idx < 0 || idx != r.owned {
		return
	}
	r.owned = -1
	r.ready = append(r.ready, idx)
	r.presented++
}

// Discard returns the acquired target to the free queue without
// presenting it. Only one target is acquired at a time, so t is not
// matched; it may be a zero-size target with no pixels.
func (r *Ring) Discard(raster.Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.owned >= 0 {
		r.free = append(r.free, r.owned)
		r.owned = -1
	}
}

// Flush returns every ready frame and any acquired target to the free
// queue.
func (r *Ring) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.free = append(r.free, r.ready...)
	r.ready = r.ready[:0]
	if r.owned >= 0 {
		r.free = append(r.free, r.owned)
		r.owned = -1
	}
}

// Latest returns the newest presented frame and holds it for display.
// Older ready frames and the previously shown one are recycled. With no
// new frame the one already shown is returned again.
func (r *Ring) Latest() (raster.Target, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.ready); n > 0 {
		newest := r.ready[n-1]
		r.free = append(r.free, r.ready[:n-1]...)
		r.ready = r.ready[:0]
		if r.shown >= 0 {
			r.free = append(r.free, r.shown)
		}
		r.shown = newest
		r.shownSeq++
	}
	if r.shown < 0 {
		return raster.Target{}, false
	}
	return r.slots[r.shown], true
}

// Release returns the shown frame to the free queue.
func (r *Ring) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.shown >= 0 {
		r.free = append(r.free, r.shown)
		r.shown = -1
	}
}

// Counts returns how many frames were presented and how many ready
// frames were dropped to make room.
func (r *Ring) Counts() (presented, dropped uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.presented, r.dropped
}

func (r *Ring) slotOf(t raster.Target) int {
	if len(t.Color) == 0 {
		return -1
	}
	for i := range r.slots {
		if &r.slots[i].Color[0] == &t.Color[0] {
			return i
		}
	}
	return -1
}
