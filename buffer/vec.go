// File: buffer/vec.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import "unsafe"

// Vec is a growable buffer. Its logical length is the slice length; Reset
// truncates it to zero while keeping the allocated capacity.
type Vec struct {
	buf []byte
}

// NewVec returns an empty Vec with the given capacity reserved.
func NewVec(capacity int) *Vec {
	return &Vec{buf: make([]byte, 0, capacity)}
}

// Ptr returns the start of the backing array, even when the Vec is empty.
// Appending past Cap moves the storage and invalidates earlier pointers.
func (v *Vec) Ptr() unsafe.Pointer { return unsafe.Pointer(unsafe.SliceData(v.buf)) }

func (v *Vec) Size() int { return len(v.buf) }

// Cap reports the reserved capacity.
func (v *Vec) Cap() int { return cap(v.buf) }

func (v *Vec) Reset() { v.buf = v.buf[:0] }

// Bytes returns the logical content.
func (v *Vec) Bytes() []byte { return v.buf }

// Write appends p, growing the storage if needed. It never fails.
func (v *Vec) Write(p []byte) (int, error) {
	v.buf = append(v.buf, p...)
	return len(p), nil
}

// Extend grows the logical length by n zero bytes.
func (v *Vec) Extend(n int) {
	if n <= 0 {
		return
	}
	v.buf = append(v.buf, make([]byte, n)...)
}

// Truncate shortens the logical length to n. Larger n is ignored.
func (v *Vec) Truncate(n int) {
	if n >= 0 && n < len(v.buf) {
		v.buf = v.buf[:n]
	}
}

// VecAllocator allocates empty Vecs with a reserved capacity.
type VecAllocator struct {
	Capacity int
}

// Allocate never fails.
func (a VecAllocator) Allocate() (*Vec, error) {
	return NewVec(a.Capacity), nil
}
