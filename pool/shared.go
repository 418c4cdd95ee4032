// File: pool/shared.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Shared-ownership pool: counted handles, weakly referenced from leases.

package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"
	"weak"

	"github.com/momentics/hioload-pool/api"
	"github.com/rs/zerolog"
)

type sharedState[B api.Buffer] struct {
	allocator api.Allocator[B]
	idle      []B // LIFO
	handles   atomic.Int32
	alive     bool
	self      weak.Pointer[sharedState[B]]

	// mu orders teardown from a GC cleanup against releases. Every other
	// operation needs a reachable handle, so it cannot overlap teardown.
	mu    sync.Mutex
	gate  gate
	stats Stats
	opts  options
}

// SharedPool is one strong handle onto a pool. Clone adds handles, Close
// drops them; the pool state dies with its last handle, whether closed
// explicitly or garbage collected. Leases may outlive every handle.
type SharedPool[B api.Buffer] struct {
	state   *sharedState[B]
	cleanup runtime.Cleanup
}

// NewSharedPool creates a pool with a single handle.
func NewSharedPool[B api.Buffer](alloc api.Allocator[B], opts ...Option) *SharedPool[B] {
	o := newOptions(opts)
	st := &sharedState[B]{
		allocator: alloc,
		idle:      make([]B, 0, o.capacity),
		alive:     true,
		opts:      o,
	}
	st.self = weak.Make(st)
	return st.handle()
}

// handle counts a new strong handle and drops it again if the handle is
// collected without Close.
func (st *sharedState[B]) handle() *SharedPool[B] {
	st.handles.Add(1)
	h := &SharedPool[B]{state: st}
	h.cleanup = runtime.AddCleanup(h, (*sharedState[B]).drop, st)
	return h
}

// Clone returns another strong handle on the same pool.
func (p *SharedPool[B]) Clone() *SharedPool[B] {
	defer runtime.KeepAlive(p)
	return p.open("clone").handle()
}

// Close drops this handle. Closing the last handle finalizes every idle
// buffer; outstanding leases become orphans. Closing twice is a no-op.
func (p *SharedPool[B]) Close() {
	st := p.state
	if st == nil {
		return
	}
	p.state = nil
	p.cleanup.Stop()
	st.drop()
}

func (st *sharedState[B]) drop() {
	if st.handles.Add(-1) > 0 {
		return
	}
	idle, outstanding := st.detach()

	// Buffers are closed outside the lock; a Close that reaches back into
	// the pool finds it dead.
	for i := range idle {
		finalize(idle[i], st.opts.log)
	}
	st.opts.log.Debug().
		Int("finalized", len(idle)).
		Int("outstanding", outstanding).
		Msg("shared pool torn down")
}

// detach marks the pool dead and takes its idle buffers.
func (st *sharedState[B]) detach() ([]B, int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.gate.enter("close")
	defer st.gate.exit()

	st.alive = false
	idle := st.idle
	st.idle = nil
	return idle, st.stats.Outstanding
}

// Lease pops the most recently released buffer or, when none is idle,
// allocates one. The allocator's error is returned as is and leaves the
// pool untouched.
func (p *SharedPool[B]) Lease() (*SharedLease[B], error) {
	defer runtime.KeepAlive(p)
	st := p.open("lease")
	st.gate.enter("lease")
	defer st.gate.exit()

	var buf B
	allocated := false
	if n := len(st.idle); n > 0 {
		buf = st.idle[n-1]
		var zero B
		st.idle[n-1] = zero
		st.idle = st.idle[:n-1]
	} else {
		b, err := st.allocator.Allocate()
		if err != nil {
			return nil, err
		}
		buf = b
		allocated = true
	}
	st.stats.leased(allocated)
	return &SharedLease[B]{buf: buf, pool: st.self}, nil
}

// Stats returns a snapshot; a closed handle reports zero values.
func (p *SharedPool[B]) Stats() Stats {
	st := p.state
	if st == nil {
		return Stats{}
	}
	s := st.stats
	s.Idle = len(st.idle)
	s.Capacity = s.Idle + s.Outstanding
	runtime.KeepAlive(p)
	return s
}

// Handles reports the number of open handles, zero once this one is closed.
func (p *SharedPool[B]) Handles() int {
	if p.state == nil {
		return 0
	}
	return int(p.state.handles.Load())
}

func (p *SharedPool[B]) open(op string) *sharedState[B] {
	if p.state == nil {
		panic(api.NewError(api.ErrCodeInvalidArgument, "use of closed pool handle").
			WithCause(api.ErrPoolClosed).
			WithContext("op", op))
	}
	return p.state
}

// SharedLease owns one buffer until Release.
type SharedLease[B api.Buffer] struct {
	buf      B
	pool     weak.Pointer[sharedState[B]]
	released bool
}

// Buffer returns the leased buffer.
func (l *SharedLease[B]) Buffer() B {
	l.held()
	return l.buf
}

func (l *SharedLease[B]) Ptr() unsafe.Pointer {
	l.held()
	return l.buf.Ptr()
}

func (l *SharedLease[B]) Size() int {
	l.held()
	return l.buf.Size()
}

func (l *SharedLease[B]) Reset() {
	l.held()
	l.buf.Reset()
}

// Bytes is api.Bytes over the leased buffer.
func (l *SharedLease[B]) Bytes() []byte {
	l.held()
	return api.Bytes(l.buf)
}

// Release returns the buffer to the pool if the pool is still alive and
// finalizes it otherwise. Releasing twice panics.
func (l *SharedLease[B]) Release() {
	l.held()
	l.released = true
	buf := l.buf
	var zero B
	l.buf = zero

	st := l.pool.Value()
	if st == nil {
		finalize(buf, zerolog.Nop())
		return
	}
	if st.opts.resetOnRelease {
		buf.Reset()
	}

	if orphan := st.put(buf); orphan {
		st.opts.log.Debug().Msg("orphaned lease released, buffer discarded")
		finalize(buf, st.opts.log)
	}
}

// put hands buf back to a live pool and reports false, or counts an orphan
// and reports true when the pool is dead.
func (st *sharedState[B]) put(buf B) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.gate.enter("release")
	defer st.gate.exit()

	st.stats.Outstanding--
	if !st.alive {
		st.stats.Orphaned++
		return true
	}
	st.idle = append(st.idle, buf)
	st.stats.Releases++
	return false
}

func (l *SharedLease[B]) held() {
	if l.released {
		panic(fatal("shared lease used after release"))
	}
}

var (
	_ api.Pool[api.Buffer, *SharedLease[api.Buffer]] = (*SharedPool[api.Buffer])(nil)
	_ api.Lease[api.Buffer]                          = (*SharedLease[api.Buffer])(nil)
)
