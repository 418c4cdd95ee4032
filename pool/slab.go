// File: pool/slab.go
// Package pool implements slab allocation with an index free list.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package pool

import (
	"unsafe"

	"github.com/momentics/hioload-pool/api"
)

// nilIndex terminates the free list.
const nilIndex = -1

// entry is one slab slot. next links idle entries; gen is bumped on every
// release so handles to an earlier lease of the slot are detected.
type entry[B api.Buffer] struct {
	buf  B
	next int
	gen  uint32
	used bool
}

// SlabPool owns a dense, append-only slab of buffers. Idle entries form a
// singly linked free list whose head is the most recently released slot.
// The pool must outlive every lease it issued.
type SlabPool[B api.Buffer] struct {
	allocator api.Allocator[B]
	entries   []entry[B]
	head      int
	closed    bool

	gate  gate
	stats Stats
	opts  options
}

// NewSlabPool creates an empty slab.
func NewSlabPool[B api.Buffer](alloc api.Allocator[B], opts ...Option) *SlabPool[B] {
	o := newOptions(opts)
	return &SlabPool[B]{
		allocator: alloc,
		entries:   make([]entry[B], 0, o.capacity),
		head:      nilIndex,
		opts:      o,
	}
}

// Lease unlinks the free-list head in O(1) or, when the list is empty,
// allocates a buffer into a new slot. The allocator's error is returned as
// is and leaves the slab and free list untouched.
func (p *SlabPool[B]) Lease() (SlabLease[B], error) {
	if p.closed {
		panic(api.NewError(api.ErrCodeInvalidArgument, "lease from closed slab pool").
			WithCause(api.ErrPoolClosed))
	}
	p.gate.enter("lease")
	defer p.gate.exit()

	idx := p.head
	allocated := false
	if idx != nilIndex {
		e := p.slot(idx)
		if e.used {
			panic(fatal("free list links a leased entry", "index", idx))
		}
		p.head = e.next
		e.next = nilIndex
		e.used = true
	} else {
		b, err := p.allocator.Allocate()
		if err != nil {
			return SlabLease[B]{}, err
		}
		idx = len(p.entries)
		p.entries = append(p.entries, entry[B]{buf: b, next: nilIndex, used: true})
		allocated = true
		p.opts.log.Debug().Int("slots", len(p.entries)).Msg("slab grown")
	}
	p.stats.leased(allocated)
	return SlabLease[B]{pool: p, index: idx, gen: p.entries[idx].gen}, nil
}

func (p *SlabPool[B]) release(idx int, gen uint32) {
	p.gate.enter("release")
	defer p.gate.exit()

	e := p.lookup(idx, gen)
	if p.opts.resetOnRelease {
		e.buf.Reset()
	}
	e.used = false
	e.gen++
	e.next = p.head
	p.head = idx
	p.stats.Outstanding--
	p.stats.Releases++
}

func (p *SlabPool[B]) slot(idx int) *entry[B] {
	if idx < 0 || idx >= len(p.entries) {
		panic(fatal("slab index out of range", "index", idx, "slots", len(p.entries)))
	}
	return &p.entries[idx]
}

// lookup resolves a live handle. The pointer is only valid until the next
// Lease, which may move the slab.
func (p *SlabPool[B]) lookup(idx int, gen uint32) *entry[B] {
	e := p.slot(idx)
	if !e.used || e.gen != gen {
		panic(fatal("stale slab lease", "index", idx, "generation", gen, "current", e.gen))
	}
	return e
}

// FreeIndices walks the free list from its head. It panics if the list
// leaves the slab, loops, reaches a leased entry, or misses an idle one.
func (p *SlabPool[B]) FreeIndices() []int {
	seen := make([]bool, len(p.entries))
	out := make([]int, 0, len(p.entries)-p.stats.Outstanding)
	for idx := p.head; idx != nilIndex; idx = p.entries[idx].next {
		e := p.slot(idx)
		switch {
		case seen[idx]:
			panic(fatal("free list cycle", "index", idx))
		case e.used:
			panic(fatal("free list links a leased entry", "index", idx))
		}
		seen[idx] = true
		out = append(out, idx)
	}
	if len(out) != len(p.entries)-p.stats.Outstanding {
		panic(fatal("free list lost entries", "free", len(out), "slots", len(p.entries), "live", p.stats.Outstanding))
	}
	return out
}

// Len is the number of slots ever allocated.
func (p *SlabPool[B]) Len() int { return len(p.entries) }

// Stats returns a snapshot.
func (p *SlabPool[B]) Stats() Stats {
	s := p.stats
	s.Capacity = len(p.entries)
	s.Idle = s.Capacity - s.Outstanding
	return s
}

// Close finalizes every buffer. Closing while leases are outstanding is a
// programming error and panics; closing twice is a no-op.
func (p *SlabPool[B]) Close() {
	if p.closed {
		return
	}
	if p.stats.Outstanding > 0 {
		panic(api.NewError(api.ErrCodeInvalidArgument, "slab pool closed with outstanding leases").
			WithCause(api.ErrCorrupted).
			WithContext("live", p.stats.Outstanding))
	}
	p.gate.enter("close")
	defer p.gate.exit()

	p.closed = true
	for i := range p.entries {
		finalize(p.entries[i].buf, p.opts.log)
	}
	p.opts.log.Debug().Int("finalized", len(p.entries)).Msg("slab pool closed")
	p.entries = nil
	p.head = nilIndex
}

// SlabLease is a value handle onto one slab slot. Copies share the lease;
// only one of them may be released, and none may be used afterwards.
type SlabLease[B api.Buffer] struct {
	pool  *SlabPool[B]
	index int
	gen   uint32
}

// Index is the slot the lease governs.
func (l SlabLease[B]) Index() int { return l.index }

// Buffer looks the buffer up by index.
func (l SlabLease[B]) Buffer() B { return l.owner().lookup(l.index, l.gen).buf }

func (l SlabLease[B]) Ptr() unsafe.Pointer { return l.Buffer().Ptr() }

func (l SlabLease[B]) Size() int { return l.Buffer().Size() }

func (l SlabLease[B]) Reset() { l.Buffer().Reset() }

// Bytes is api.Bytes over the leased buffer.
func (l SlabLease[B]) Bytes() []byte { return api.Bytes(l.Buffer()) }

// Release pushes the slot onto the free-list head.
func (l SlabLease[B]) Release() { l.owner().release(l.index, l.gen) }

func (l SlabLease[B]) owner() *SlabPool[B] {
	if l.pool == nil {
		panic(fatal("zero slab lease"))
	}
	return l.pool
}

var (
	_ api.Pool[api.Buffer, SlabLease[api.Buffer]] = (*SlabPool[api.Buffer])(nil)
	_ api.Lease[api.Buffer]                       = SlabLease[api.Buffer]{}
)
