// File: buffer/resize.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import (
	"unsafe"

	"github.com/momentics/hioload-pool/api"
)

// Resize is a view over another buffer with a clamped logical length.
// The clamp only ever shrinks: asking for more than the current length is
// ignored.
type Resize[B api.Buffer] struct {
	buf B
	n   int
}

// NewResize wraps b with a length equal to its current size.
func NewResize[B api.Buffer](b B) *Resize[B] {
	return &Resize[B]{buf: b, n: b.Size()}
}

// NewResizeWithSize wraps b with length min(b.Size(), n).
func NewResizeWithSize[B api.Buffer](b B, n int) *Resize[B] {
	return &Resize[B]{buf: b, n: clamp(b.Size(), n)}
}

// Resize lowers the length to n if n is smaller than the current length.
func (r *Resize[B]) Resize(n int) {
	r.n = clamp(r.n, n)
}

// Len returns the clamp, independent of the inner buffer.
func (r *Resize[B]) Len() int { return r.n }

// Inner returns the wrapped buffer.
func (r *Resize[B]) Inner() B { return r.buf }

func (r *Resize[B]) Ptr() unsafe.Pointer { return r.buf.Ptr() }

// Size never exceeds the inner buffer's own length, which may have dropped
// below the clamp after a Reset of a growable inner buffer.
func (r *Resize[B]) Size() int { return min(r.n, r.buf.Size()) }

// Reset resets the inner buffer; the clamp is kept.
func (r *Resize[B]) Reset() { r.buf.Reset() }

// Close finalizes the inner buffer when it holds external resources.
func (r *Resize[B]) Close() error {
	if c, ok := any(r.buf).(api.Closer); ok {
		return c.Close()
	}
	return nil
}

func clamp(cur, n int) int {
	if n < 0 {
		n = 0
	}
	return min(cur, n)
}

// ResizeAllocator wraps every buffer from Inner in a Resize clamped to Size.
type ResizeAllocator[B api.Buffer] struct {
	Inner api.Allocator[B]
	Size  int
}

// Allocate propagates Inner's error unchanged.
func (a ResizeAllocator[B]) Allocate() (*Resize[B], error) {
	b, err := a.Inner.Allocate()
	if err != nil {
		return nil, err
	}
	return NewResizeWithSize(b, a.Size), nil
}
