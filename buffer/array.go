// File: buffer/array.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package buffer

import (
	"unsafe"

	"github.com/momentics/hioload-pool/api"
	"github.com/pkg/errors"
)

// Block lists the supported fixed array sizes.
type Block interface {
	~[8]byte | ~[12]byte | ~[16]byte | ~[24]byte | ~[32]byte | ~[48]byte |
		~[64]byte | ~[96]byte | ~[128]byte | ~[192]byte | ~[256]byte |
		~[384]byte | ~[512]byte | ~[768]byte | ~[1024]byte | ~[1536]byte |
		~[2048]byte | ~[3072]byte | ~[4096]byte
}

// SizeClasses enumerates the byte sizes covered by Block, ascending.
var SizeClasses = [...]int{
	8, 12, 16, 24, 32, 48, 64, 96, 128, 192, 256, 384, 512, 768,
	1024, 1536, 2048, 3072, 4096,
}

// Array is a fixed-capacity buffer backed by an inline array.
// Always use it through a pointer: copying an Array moves its storage.
type Array[A Block] struct {
	data A
}

// NewArray allocates a zeroed Array on the heap.
func NewArray[A Block]() *Array[A] {
	return new(Array[A])
}

func (a *Array[A]) Ptr() unsafe.Pointer { return unsafe.Pointer(&a.data) }

func (a *Array[A]) Size() int { return int(unsafe.Sizeof(a.data)) }

// Reset is a no-op: the array has no logical length apart from its capacity.
func (a *Array[A]) Reset() {}

// Bytes returns the whole array as a slice.
func (a *Array[A]) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(&a.data)), a.Size())
}

// ArrayAllocator allocates Arrays of one size class.
type ArrayAllocator[A Block] struct{}

// Allocate never fails.
func (ArrayAllocator[A]) Allocate() (*Array[A], error) {
	return NewArray[A](), nil
}

// ArrayAllocatorFor picks the Array size class matching size exactly and
// returns an allocator producing it behind the api.Buffer interface.
func ArrayAllocatorFor(size int) (api.Allocator[api.Buffer], error) {
	switch size {
	case 8:
		return arrayOf[[8]byte](), nil
	case 12:
		return arrayOf[[12]byte](), nil
	case 16:
		return arrayOf[[16]byte](), nil
	case 24:
		return arrayOf[[24]byte](), nil
	case 32:
		return arrayOf[[32]byte](), nil
	case 48:
		return arrayOf[[48]byte](), nil
	case 64:
		return arrayOf[[64]byte](), nil
	case 96:
		return arrayOf[[96]byte](), nil
	case 128:
		return arrayOf[[128]byte](), nil
	case 192:
		return arrayOf[[192]byte](), nil
	case 256:
		return arrayOf[[256]byte](), nil
	case 384:
		return arrayOf[[384]byte](), nil
	case 512:
		return arrayOf[[512]byte](), nil
	case 768:
		return arrayOf[[768]byte](), nil
	case 1024:
		return arrayOf[[1024]byte](), nil
	case 1536:
		return arrayOf[[1536]byte](), nil
	case 2048:
		return arrayOf[[2048]byte](), nil
	case 3072:
		return arrayOf[[3072]byte](), nil
	case 4096:
		return arrayOf[[4096]byte](), nil
	}
	return nil, errors.Wrapf(api.ErrNotSupported, "no array size class for %d bytes", size)
}

func arrayOf[A Block]() api.Allocator[api.Buffer] {
	return api.AllocatorFunc[api.Buffer](func() (api.Buffer, error) {
		return NewArray[A](), nil
	})
}
