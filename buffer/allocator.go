// File: buffer/allocator.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stock allocators and allocator decorators.

package buffer

import (
	"github.com/momentics/hioload-pool/api"
	"github.com/pkg/errors"
)

// MappedAllocator maps one fresh region of Size bytes per call.
type MappedAllocator struct {
	Size int
}

func (a MappedAllocator) Allocate() (*Mapped, error) {
	return NewMapped(a.Size)
}

// Limited fails with api.ErrResourceExhausted once limit buffers have been
// produced. Failed inner allocations do not count.
type Limited[B any] struct {
	inner api.Allocator[B]
	limit int
	used  int
}

// NewLimited caps inner at limit successful allocations.
func NewLimited[B any](inner api.Allocator[B], limit int) *Limited[B] {
	return &Limited[B]{inner: inner, limit: limit}
}

func (l *Limited[B]) Allocate() (B, error) {
	if l.used >= l.limit {
		var zero B
		return zero, errors.Wrapf(api.ErrResourceExhausted, "allocator limit of %d buffers reached", l.limit)
	}
	b, err := l.inner.Allocate()
	if err != nil {
		return b, err
	}
	l.used++
	return b, nil
}

// Remaining reports how many more buffers may be produced.
func (l *Limited[B]) Remaining() int { return l.limit - l.used }

// Counting records how often the wrapped allocator is invoked.
type Counting[B any] struct {
	inner    api.Allocator[B]
	calls    int
	failures int
}

func NewCounting[B any](inner api.Allocator[B]) *Counting[B] {
	return &Counting[B]{inner: inner}
}

func (c *Counting[B]) Allocate() (B, error) {
	c.calls++
	b, err := c.inner.Allocate()
	if err != nil {
		c.failures++
	}
	return b, err
}

// Calls is the number of Allocate invocations, failed ones included.
func (c *Counting[B]) Calls() int { return c.calls }

// Failures is the number of invocations that returned an error.
func (c *Counting[B]) Failures() int { return c.failures }
