// File: api/allocator.go
// Author: momentics <momentics@gmail.com>
//
// Allocator capability: fallible factory of fresh buffers.

package api

// Allocator produces one fresh buffer per call.
// Implementations must not observe or mutate the state of the pool that
// calls them.
type Allocator[B any] interface {
	Allocate() (B, error)
}

// AllocatorFunc adapts a plain function to Allocator.
type AllocatorFunc[B any] func() (B, error)

// Allocate calls f.
func (f AllocatorFunc[B]) Allocate() (B, error) { return f() }
