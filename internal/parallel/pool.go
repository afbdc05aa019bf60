package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// JobKind selects what a dispatch does with its bands.
type JobKind uint8

const (
	JobDraw JobKind = iota
	JobToneMap
	JobRain
	JobAdvanced
	JobSnapshot
	JobClear
)

func (k JobKind) String() string {
	switch k {
	case JobDraw:
		return "draw"
	case JobToneMap:
		return "tonemap"
	case JobRain:
		return "rain"
	case JobAdvanced:
		return "advanced"
	case JobSnapshot:
		return "snapshot"
	case JobClear:
		return "clear"
	}
	return "unknown"
}

// Handler runs one band of a dispatch. slice is the band index; the
// caller's band is always the last one.
type Handler func(kind JobKind, slice int, band Band)

// Pool is a fixed set of goroutines woken by a generation counter.
//
// Every Dispatch is a barrier: the caller publishes the job under the
// pool mutex, bumps the generation, runs the last band itself and returns
// only after every worker has finished its band. Workers never see a
// half-written job and the next dispatch never overlaps the previous one.
//
// Thread safety: Dispatch must be called from one goroutine at a time.
type Pool struct {
	handler Handler
	workers int

	mu       sync.Mutex
	jobCond  *sync.Cond // signalled on a new generation or shutdown
	doneCond *sync.Cond // signalled when the last worker finishes

	generation uint64
	kind       JobKind
	bands      []Band
	done       int

	running  atomic.Int32
	shutdown atomic.Bool
	wg       sync.WaitGroup
}

// NewPool starts workers goroutines. If workers is negative,
// GOMAXPROCS-1 is used, leaving the dispatching goroutine its own core.
// Zero workers is valid: every dispatch then runs on the caller.
func NewPool(workers int, handler Handler) *Pool {
	if workers < 0 {
		workers = max(runtime.GOMAXPROCS(0)-1, 0)
	}
	p := &Pool{
		handler: handler,
		workers: workers,
		bands:   make([]Band, workers+1),
	}
	p.jobCond = sync.NewCond(&p.mu)
	p.doneCond = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

// Workers returns the number of pool goroutines.
func (p *Pool) Workers() int { return p.workers }

// Slices returns the number of bands per dispatch: workers plus the
// caller.
func (p *Pool) Slices() int { return p.workers + 1 }

// Generation returns the number of dispatches published so far.
func (p *Pool) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.generation
}

// Running returns the number of workers currently inside the handler.
func (p *Pool) Running() int { return int(p.running.Load()) }

// Done returns how many workers finished the current generation.
func (p *Pool) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Dispatch runs kind over rows 0..height-1 and blocks until every band is
// done. publish, when non-nil, runs under the pool mutex before any
// worker can observe the new generation; it is where the caller writes
// the job descriptor the handler reads.
func (p *Pool) Dispatch(kind JobKind, height int, publish func()) {
	if p.shutdown.Load() {
		p.dispatchInline(kind, height, publish)
		return
	}

	p.mu.Lock()
	if publish != nil {
		publish()
	}
	ComputeInto(p.bands, height)
	p.kind = kind
	p.done = 0
	p.generation++
	own := p.bands[p.workers]
	p.jobCond.Broadcast()
	p.mu.Unlock()

	if !own.Empty() {
		p.handler(kind, p.workers, own)
	}

	p.mu.Lock()
	for p.done < p.workers {
		p.doneCond.Wait()
	}
	p.mu.Unlock()
}

// dispatchInline runs every band on the caller after Close so a frame in
// flight still completes.
func (p *Pool) dispatchInline(kind JobKind, height int, publish func()) {
	p.mu.Lock()
	if publish != nil {
		publish()
	}
	ComputeInto(p.bands, height)
	bands := append([]Band(nil), p.bands...)
	p.mu.Unlock()

	for i, b := range bands {
		if !b.Empty() {
			p.handler(kind, i, b)
		}
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	var seen uint64
	for {
		p.mu.Lock()
		for p.generation == seen && !p.shutdown.Load() {
			p.jobCond.Wait()
		}
		if p.shutdown.Load() {
			p.mu.Unlock()
			return
		}
		seen = p.generation
		kind := p.kind
		band := p.bands[id]
		p.mu.Unlock()

		if !band.Empty() {
			p.running.Add(1)
			p.handler(kind, id, band)
			p.running.Add(-1)
		}

		p.mu.Lock()
		p.done++
		if p.done == p.workers {
			p.doneCond.Signal()
		}
		p.mu.Unlock()
	}
}

// Close stops and joins every worker. It is idempotent and must not race
// with Dispatch.
func (p *Pool) Close() {
	if p.shutdown.Swap(true) {
		return
	}
	p.mu.Lock()
	p.generation++
	p.jobCond.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
}
