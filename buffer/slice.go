// File: buffer/slice.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import "unsafe"

// Slice is a fixed-length heap buffer. It is never resliced by the pools,
// so the value can be copied freely: copies share the same storage.
type Slice []byte

// NewSlice allocates a zeroed Slice of n bytes.
func NewSlice(n int) Slice { return make(Slice, n) }

func (s Slice) Ptr() unsafe.Pointer { return unsafe.Pointer(unsafe.SliceData(s)) }

func (s Slice) Size() int { return len(s) }

func (s Slice) Reset() {}

// SliceAllocator allocates Slices of a fixed size.
type SliceAllocator struct {
	Size int
}

// Allocate never fails.
func (a SliceAllocator) Allocate() (Slice, error) {
	return NewSlice(a.Size), nil
}
