//go:build !linux

// File: buffer/mapped_other.go
// Author: momentics <momentics@gmail.com>
//
// Heap fallback for platforms without the Linux mapping path.

package buffer

import (
	"unsafe"

	"github.com/momentics/hioload-pool/api"
	"github.com/pkg/errors"
)

// Mapped falls back to a heap slice on this platform.
type Mapped struct {
	data []byte
}

// NewMapped allocates size bytes on the heap.
func NewMapped(size int) (*Mapped, error) {
	if size <= 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "mapped buffer size %d", size)
	}
	return &Mapped{data: make([]byte, size)}, nil
}

func (m *Mapped) Ptr() unsafe.Pointer { return unsafe.Pointer(unsafe.SliceData(m.data)) }

func (m *Mapped) Size() int { return len(m.data) }

func (m *Mapped) Reset() {}

func (m *Mapped) Bytes() []byte { return m.data }

// Close drops the storage.
func (m *Mapped) Close() error {
	m.data = nil
	return nil
}
