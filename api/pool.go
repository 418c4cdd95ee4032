// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs: scoped leases over recyclable buffers.

package api

// Lease is exclusive, single-owner access to one pooled buffer.
// Release is the only recycling trigger and must be called exactly once,
// usually deferred right after a successful Pool.Lease.
type Lease[B any] interface {
	Buffer

	// Buffer returns the governed buffer. It must not be retained after Release.
	Buffer() B

	// Release hands the buffer back to its pool. It never fails.
	Release()
}

// Pool hands out leases, reusing idle buffers before calling its Allocator.
// The only error Lease returns is the Allocator's, unchanged.
type Pool[B any, L Lease[B]] interface {
	Lease() (L, error)
}
