// Package pool
// Author: momentics <momentics@gmail.com>
//
// Single-goroutine buffer pools handing out scoped leases.
//
// Two strategies share one contract (api.Pool / api.Lease):
//
//   - SharedPool keeps its state behind counted strong handles; leases hold a
//     weak reference and discard their buffer if the pool is gone by the time
//     they are released. A handle the garbage collector reclaims without
//     Close counts as closed.
//   - SlabPool keeps buffers in a dense slab with a free list threaded through
//     idle entries; leases are (index, generation) values and the pool must
//     outlive all of them.
//
// Both reuse the most recently released buffer first and call the allocator
// only when nothing is idle, so allocations track the high-water mark of
// outstanding leases. Neither pool is safe for concurrent use, and calling a
// pool from inside its own allocator or from a buffer's Reset during release
// is forbidden; the pools panic when they detect it. Double release, stale
// handles and free-list corruption also panic.
package pool
