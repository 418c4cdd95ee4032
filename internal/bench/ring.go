// File: internal/bench/ring.go
// Author: momentics <momentics@gmail.com>
//
// Fixed-capacity ring (power-of-two size) for FIFO release order.
// Single goroutine only: head and tail are plain counters.

package bench

type ring[H any] struct {
	data []H
	mask uint64
	head uint64
	tail uint64
}

// newRing rounds size up to a power of two.
func newRing[H any](size int) *ring[H] {
	n := uint64(1)
	for n < uint64(size) {
		n <<= 1
	}
	return &ring[H]{
		data: make([]H, n),
		mask: n - 1,
	}
}

// enqueue adds an item; returns false if full.
func (r *ring[H]) enqueue(v H) bool {
	if r.tail-r.head == uint64(len(r.data)) {
		return false
	}
	r.data[r.tail&r.mask] = v
	r.tail++
	return true
}

// dequeue removes the oldest item; ok==false if empty.
func (r *ring[H]) dequeue() (v H, ok bool) {
	if r.head == r.tail {
		return v, false
	}
	idx := r.head & r.mask
	v = r.data[idx]
	var zero H
	r.data[idx] = zero
	r.head++
	return v, true
}
