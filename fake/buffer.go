// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake buffers and allocators for testing pools.

package fake

import (
	"unsafe"

	"github.com/pkg/errors"
)

// Buffer is a heap buffer with an identity and close/reset bookkeeping.
type Buffer struct {
	ID     int
	Data   []byte
	Resets int
	Closed bool
}

func (b *Buffer) Ptr() unsafe.Pointer { return unsafe.Pointer(unsafe.SliceData(b.Data)) }
func (b *Buffer) Size() int           { return len(b.Data) }
func (b *Buffer) Reset()              { b.Resets++ }

// Close marks the buffer finalized. A second Close is reported as an error
// so tests catch double finalization.
func (b *Buffer) Close() error {
	if b.Closed {
		return errors.Errorf("fake: buffer %d closed twice", b.ID)
	}
	b.Closed = true
	return nil
}
