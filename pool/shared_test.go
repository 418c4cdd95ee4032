package pool

import (
	"errors"
	"math/rand/v2"
	"runtime"
	"testing"
	"time"

	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/buffer"
	"github.com/momentics/hioload-pool/control"
	"github.com/momentics/hioload-pool/fake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// panicCode runs fn and returns the code of the *api.Error it panicked with.
func panicCode(t *testing.T, fn func()) (code api.ErrorCode) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected panic")
		e, ok := r.(*api.Error)
		require.True(t, ok, "panic value %T is not *api.Error", r)
		code = e.Code
	}()
	fn()
	return api.ErrCodeOK
}

func TestSharedPoolLIFOReuse(t *testing.T) {
	alloc := fake.NewAllocator(16)
	p := NewSharedPool[*fake.Buffer](alloc)

	a, err := p.Lease()
	require.NoError(t, err)
	b, err := p.Lease()
	require.NoError(t, err)
	bufA, bufB := a.Buffer(), b.Buffer()

	a.Release()
	b.Release()

	next, err := p.Lease()
	require.NoError(t, err)
	assert.Same(t, bufB, next.Buffer(), "most recently released buffer comes back first")
	after, err := p.Lease()
	require.NoError(t, err)
	assert.Same(t, bufA, after.Buffer())
	assert.Equal(t, 2, alloc.Calls)
}

func TestSharedPoolScenario(t *testing.T) {
	counting := buffer.NewCounting[*fake.Buffer](buffer.NewLimited[*fake.Buffer](fake.NewAllocator(8), 3))
	p := NewSharedPool[*fake.Buffer](counting)

	a, err := p.Lease()
	require.NoError(t, err)
	b, err := p.Lease()
	require.NoError(t, err)
	idA := a.Buffer()
	a.Release()
	c, err := p.Lease()
	require.NoError(t, err)
	b.Release()
	assert.Same(t, idA, c.Buffer())
	c.Release()

	assert.Equal(t, 2, counting.Calls())
	s := p.Stats()
	assert.Equal(t, uint64(2), s.Allocations)
	assert.Equal(t, 2, s.HighWater)
	assert.Equal(t, 2, s.Idle)
	assert.Equal(t, 0, s.Outstanding)
}

func TestSharedPoolAllocatorFailureLeavesStateUntouched(t *testing.T) {
	alloc := fake.NewAllocator(8)
	p := NewSharedPool[*fake.Buffer](alloc)

	l, err := p.Lease()
	require.NoError(t, err)
	l.Release()
	held, err := p.Lease()
	require.NoError(t, err)

	boom := errors.New("out of memory")
	alloc.Fail = boom
	_, err = p.Lease()
	assert.Same(t, boom, err, "allocator error must be returned verbatim")

	before := p.Stats()
	assert.Equal(t, 0, before.Idle)
	assert.Equal(t, 1, before.Outstanding)

	alloc.Fail = nil
	held.Release()
	assert.Equal(t, 1, p.Stats().Idle)
}

func TestSharedPoolLimitedAllocatorExhausted(t *testing.T) {
	p := NewSharedPool[buffer.Slice](buffer.NewLimited[buffer.Slice](buffer.SliceAllocator{Size: 4}, 1))
	l, err := p.Lease()
	require.NoError(t, err)

	_, err = p.Lease()
	assert.True(t, errors.Is(err, api.ErrResourceExhausted))

	l.Release()
	again, err := p.Lease()
	require.NoError(t, err, "idle buffer must be reused without the allocator")
	again.Release()
}

func TestSharedPoolOrphanAfterClose(t *testing.T) {
	alloc := fake.NewAllocator(8)
	p := NewSharedPool[*fake.Buffer](alloc)

	idle, err := p.Lease()
	require.NoError(t, err)
	held, err := p.Lease()
	require.NoError(t, err)
	idle.Release()

	p.Close()
	assert.True(t, alloc.Made[0].Closed, "idle buffers are finalized on teardown")
	assert.False(t, alloc.Made[1].Closed)

	assert.NotPanics(t, held.Release)
	assert.True(t, alloc.Made[1].Closed, "orphaned buffer is finalized, not recycled")
	assert.Equal(t, 0, p.Handles())
	assert.Equal(t, Stats{}, p.Stats())
}

// signalBuffer reports its finalization on a channel, so tests can wait for
// a GC cleanup running on another goroutine.
type signalBuffer struct {
	*fake.Buffer
	closed chan struct{}
}

func (b *signalBuffer) Close() error {
	close(b.closed)
	return nil
}

func signalAllocator(made *[]*signalBuffer) api.Allocator[*signalBuffer] {
	inner := fake.NewAllocator(8)
	return api.AllocatorFunc[*signalBuffer](func() (*signalBuffer, error) {
		b, err := inner.Allocate()
		if err != nil {
			return nil, err
		}
		sb := &signalBuffer{Buffer: b, closed: make(chan struct{})}
		*made = append(*made, sb)
		return sb, nil
	})
}

// waitClosed collects garbage until b is finalized.
func waitClosed(t *testing.T, b *signalBuffer) {
	t.Helper()
	for i := 0; i < 200; i++ {
		runtime.GC()
		select {
		case <-b.closed:
			return
		case <-time.After(5 * time.Millisecond):
		}
	}
	t.Fatalf("buffer %d was not finalized", b.ID)
}

func isClosed(b *signalBuffer) bool {
	select {
	case <-b.closed:
		return true
	default:
		return false
	}
}

// dropPoolWithIdle leaves one idle and one leased buffer in a pool whose
// only handle becomes unreachable on return.
//
//go:noinline
func dropPoolWithIdle(t *testing.T, made *[]*signalBuffer) *SharedLease[*signalBuffer] {
	p := NewSharedPool[*signalBuffer](signalAllocator(made))
	idle, err := p.Lease()
	require.NoError(t, err)
	held, err := p.Lease()
	require.NoError(t, err)
	idle.Release()
	return held
}

func TestSharedPoolCollectedHandleFinalizesIdle(t *testing.T) {
	var made []*signalBuffer
	held := dropPoolWithIdle(t, &made)
	require.Len(t, made, 2)

	waitClosed(t, made[0])
	assert.False(t, isClosed(made[1]), "leased buffer stays with its lease")
	held.Release()
}

func TestSharedPoolOrphanAfterCollection(t *testing.T) {
	var made []*signalBuffer
	held := dropPoolWithIdle(t, &made)
	waitClosed(t, made[0])

	assert.NotPanics(t, held.Release)
	assert.True(t, isClosed(made[1]), "orphaned buffer is finalized, not recycled")
	assert.Equal(t, api.ErrCodeInternal, panicCode(t, held.Release))
}

func TestSharedPoolCloseStopsCollectionCleanup(t *testing.T) {
	var made []*signalBuffer
	p := NewSharedPool[*signalBuffer](signalAllocator(&made))
	q := p.Clone()
	l, err := q.Lease()
	require.NoError(t, err)
	l.Release()

	q.Close()
	runtime.GC()
	runtime.GC()
	assert.Equal(t, 1, p.Handles(), "a closed handle is not dropped twice")
	assert.False(t, isClosed(made[0]))

	p.Close()
	assert.True(t, isClosed(made[0]))
}

// hookBuffer runs onClose when the pool finalizes it.
type hookBuffer struct {
	*fake.Buffer
	onClose func()
}

func (b *hookBuffer) Close() error {
	if b.onClose != nil {
		b.onClose()
	}
	return b.Buffer.Close()
}

func TestSharedPoolTeardownCallbackReleasesLease(t *testing.T) {
	inner := fake.NewAllocator(8)
	p := NewSharedPool[*hookBuffer](api.AllocatorFunc[*hookBuffer](func() (*hookBuffer, error) {
		b, err := inner.Allocate()
		return &hookBuffer{Buffer: b}, err
	}))
	idle, err := p.Lease()
	require.NoError(t, err)
	held, err := p.Lease()
	require.NoError(t, err)
	idle.Buffer().onClose = held.Release
	idle.Release()

	p.Close()
	assert.Equal(t, 2, inner.Closed(), "lease released from a finalizer is orphaned")
}

func TestSharedPoolRandomInterleaving(t *testing.T) {
	alloc := buffer.NewCounting[buffer.Slice](buffer.SliceAllocator{Size: 32})
	p := NewSharedPool[buffer.Slice](alloc)
	defer p.Close()
	rng := rand.New(rand.NewPCG(42, 7))

	var live []*SharedLease[buffer.Slice]
	var released []*byte
	for i := 0; i < 5000; i++ {
		if len(live) == 0 || rng.IntN(3) > 0 && len(live) < 64 {
			l, err := p.Lease()
			require.NoError(t, err)
			if n := len(released); n > 0 {
				require.Same(t, released[n-1], &l.Bytes()[0], "most recently released buffer is reused first")
				released = released[:n-1]
			}
			live = append(live, l)
		} else {
			j := rng.IntN(len(live))
			released = append(released, &live[j].Bytes()[0])
			live[j].Release()
			live[j] = live[len(live)-1]
			live = live[:len(live)-1]
		}

		s := p.Stats()
		require.Equal(t, alloc.Calls(), s.HighWater, "allocator calls track the high-water mark")
		require.Equal(t, len(live), s.Outstanding)
		require.Equal(t, len(released), s.Idle)
		require.Equal(t, s.Capacity, s.Idle+s.Outstanding)
	}
}

func TestSharedPoolClonesShareState(t *testing.T) {
	alloc := fake.NewAllocator(8)
	p := NewSharedPool[*fake.Buffer](alloc)
	q := p.Clone()
	assert.Equal(t, 2, p.Handles())

	l, err := p.Lease()
	require.NoError(t, err)
	p.Close()
	p.Close()
	assert.Equal(t, 1, q.Handles())

	l.Release()
	assert.False(t, alloc.Made[0].Closed, "pool alive through the clone")
	assert.Equal(t, 1, q.Stats().Idle)

	again, err := q.Lease()
	require.NoError(t, err)
	assert.Same(t, alloc.Made[0], again.Buffer())
	again.Release()
	q.Close()
	assert.True(t, alloc.Made[0].Closed)
}

func TestSharedPoolClosedHandlePanics(t *testing.T) {
	p := NewSharedPool[*fake.Buffer](fake.NewAllocator(1))
	p.Close()
	assert.Equal(t, api.ErrCodeInvalidArgument, panicCode(t, func() { _, _ = p.Lease() }))
	assert.Equal(t, api.ErrCodeInvalidArgument, panicCode(t, func() { p.Clone() }))
}

func TestSharedLeaseDoubleRelease(t *testing.T) {
	p := NewSharedPool[*fake.Buffer](fake.NewAllocator(1))
	l, err := p.Lease()
	require.NoError(t, err)
	l.Release()
	assert.Equal(t, api.ErrCodeInternal, panicCode(t, l.Release))
	assert.Equal(t, api.ErrCodeInternal, panicCode(t, func() { l.Buffer() }))
	assert.Equal(t, 1, p.Stats().Idle, "double release must not duplicate the buffer")
}

func TestSharedPoolReentrantAllocator(t *testing.T) {
	var p *SharedPool[buffer.Slice]
	p = NewSharedPool[buffer.Slice](api.AllocatorFunc[buffer.Slice](func() (buffer.Slice, error) {
		l, err := p.Lease()
		if err != nil {
			return nil, err
		}
		return l.Buffer(), nil
	}))
	assert.Equal(t, api.ErrCodeInternal, panicCode(t, func() { _, _ = p.Lease() }))
}

func TestSharedPoolResetOnRelease(t *testing.T) {
	p := NewSharedPool[*buffer.Vec](buffer.VecAllocator{Capacity: 16}, WithResetOnRelease(), WithName("vec"))
	l, err := p.Lease()
	require.NoError(t, err)
	_, _ = l.Buffer().Write([]byte("dirty"))
	assert.Equal(t, 5, l.Size())
	assert.Equal(t, "dirty", string(l.Bytes()))
	l.Release()

	l, err = p.Lease()
	require.NoError(t, err)
	assert.Equal(t, 0, l.Size())
	assert.Equal(t, 16, l.Buffer().Cap())
	l.Release()
}

func TestSharedLeaseDelegatesBuffer(t *testing.T) {
	p := NewSharedPool[*fake.Buffer](fake.NewAllocator(4))
	l, err := p.Lease()
	require.NoError(t, err)
	defer l.Release()

	assert.Equal(t, 4, l.Size())
	assert.Equal(t, l.Buffer().Ptr(), l.Ptr())
	l.Reset()
	assert.Equal(t, 1, l.Buffer().Resets)
}

func TestWithReleasesOnErrorAndPanic(t *testing.T) {
	p := NewSharedPool[*fake.Buffer](fake.NewAllocator(4))
	stop := errors.New("stop")

	err := With(p.Lease, func(l *SharedLease[*fake.Buffer]) error {
		assert.Equal(t, 1, p.Stats().Outstanding)
		return stop
	})
	assert.Same(t, stop, err)
	assert.Equal(t, 0, p.Stats().Outstanding)

	assert.Panics(t, func() {
		_ = With(p.Lease, func(*SharedLease[*fake.Buffer]) error { panic("callback") })
	})
	assert.Equal(t, 0, p.Stats().Outstanding)
	assert.Equal(t, 1, p.Stats().Idle)
}

func TestStatsPublish(t *testing.T) {
	p := NewSharedPool[*fake.Buffer](fake.NewAllocator(4))
	for i := 0; i < 3; i++ {
		l, err := p.Lease()
		require.NoError(t, err)
		l.Release()
	}

	reg := control.NewMetricsRegistry()
	p.Stats().Publish(reg, "shared")
	v, ok := reg.Get("shared.reused")
	require.True(t, ok)
	assert.Equal(t, uint64(2), v)
	v, _ = reg.Get("shared.capacity")
	assert.Equal(t, 1, v)
}
