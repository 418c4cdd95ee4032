// Package api
// Author: momentics
//
// Buffer capability shared by every storage kind the pools can recycle.
//
// A Buffer exposes raw memory. The address returned by Ptr is valid for
// Size bytes only while the buffer is alive, has not been moved, and is not
// mutated through another alias at the same time. Nothing in the type system
// enforces this; it is a precondition on every caller of Ptr and Bytes.

package api

import "unsafe"

// Buffer describes a contiguous byte region with a logical length.
type Buffer interface {
	// Ptr returns the start address of the region.
	// Unsafe: valid only under the aliasing contract in the package doc.
	Ptr() unsafe.Pointer

	// Size returns the logical length in bytes.
	Size() int

	// Reset restores default logical content without releasing storage.
	Reset()
}

// Closer is implemented by buffers that hold resources the garbage collector
// cannot reclaim on its own. Pools call Close when such a buffer is discarded
// instead of recycled.
type Closer interface {
	Close() error
}

// Bytes returns a slice over the logical region of b.
// The slice shares memory with b and inherits the Ptr contract.
func Bytes(b Buffer) []byte {
	n := b.Size()
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(b.Ptr()), n)
}
