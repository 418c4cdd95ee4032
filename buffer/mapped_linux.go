//go:build linux

// File: buffer/mapped_linux.go
// Author: momentics <momentics@gmail.com>
//
// Page-backed buffers from anonymous private mappings.

package buffer

import (
	"os"
	"unsafe"

	"github.com/momentics/hioload-pool/api"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Mapped is a fixed-size buffer living in its own anonymous mapping, outside
// the Go heap. It must be closed to return the pages to the kernel; pools do
// that when they discard it.
type Mapped struct {
	mapping []byte
	data    []byte
}

// NewMapped maps size bytes rounded up to the page size.
func NewMapped(size int) (*Mapped, error) {
	if size <= 0 {
		return nil, errors.Wrapf(api.ErrInvalidArgument, "mapped buffer size %d", size)
	}
	page := os.Getpagesize()
	length := (size + page - 1) / page * page
	mapping, err := unix.Mmap(-1, 0, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(err, "mmap %d bytes", length)
	}
	return &Mapped{mapping: mapping, data: mapping[:size]}, nil
}

func (m *Mapped) Ptr() unsafe.Pointer { return unsafe.Pointer(unsafe.SliceData(m.data)) }

func (m *Mapped) Size() int { return len(m.data) }

func (m *Mapped) Reset() {}

// Bytes returns the mapped region. It is invalid after Close.
func (m *Mapped) Bytes() []byte { return m.data }

// Close unmaps the pages. Calling it twice is a no-op.
func (m *Mapped) Close() error {
	if m.mapping == nil {
		return nil
	}
	err := unix.Munmap(m.mapping)
	m.mapping, m.data = nil, nil
	return errors.Wrap(err, "munmap")
}
