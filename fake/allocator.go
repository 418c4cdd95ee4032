// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: MIT

package fake

import "github.com/pkg/errors"

// ErrAllocFailed is returned by Allocator once it is told to fail.
var ErrAllocFailed = errors.New("fake: allocation failed")

// Allocator hands out Buffers with increasing IDs and records every one of
// them. Setting Fail makes the next calls fail with that error; Limit > 0
// fails with ErrAllocFailed after Limit successful allocations.
type Allocator struct {
	Size  int
	Limit int
	Fail  error

	Calls int
	Made  []*Buffer
}

// NewAllocator returns an unlimited allocator of size-byte buffers.
func NewAllocator(size int) *Allocator {
	return &Allocator{Size: size}
}

func (a *Allocator) Allocate() (*Buffer, error) {
	a.Calls++
	if a.Fail != nil {
		return nil, a.Fail
	}
	if a.Limit > 0 && len(a.Made) >= a.Limit {
		return nil, ErrAllocFailed
	}
	b := &Buffer{ID: len(a.Made) + 1, Data: make([]byte, a.Size)}
	a.Made = append(a.Made, b)
	return b, nil
}

// Closed counts buffers that have been finalized.
func (a *Allocator) Closed() int {
	n := 0
	for _, b := range a.Made {
		if b.Closed {
			n++
		}
	}
	return n
}
