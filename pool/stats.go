// File: pool/stats.go
// Author: momentics <momentics@gmail.com>
//
// Allocation/reuse counters for observability.

package pool

import (
	"github.com/momentics/hioload-pool/control"
)

// Stats aggregates pool accounting. Counters only grow; gauges reflect the
// moment Stats was called.
type Stats struct {
	Allocations uint64 // successful allocator calls
	Leases      uint64
	Releases    uint64 // buffers returned to the idle set
	Orphaned    uint64 // buffers discarded because the pool was gone

	Outstanding int // live leases
	HighWater   int // maximum of Outstanding so far
	Idle        int
	Capacity    int // buffers owned by the pool, idle or leased
}

func (s *Stats) leased(allocated bool) {
	if allocated {
		s.Allocations++
	}
	s.Leases++
	s.Outstanding++
	if s.Outstanding > s.HighWater {
		s.HighWater = s.Outstanding
	}
}

// Reused reports how many leases were served without calling the allocator.
func (s Stats) Reused() uint64 {
	return s.Leases - s.Allocations
}

// Publish copies the stats into reg under prefix.
func (s Stats) Publish(reg *control.MetricsRegistry, prefix string) {
	reg.SetMany(map[string]any{
		prefix + ".allocations": s.Allocations,
		prefix + ".leases":      s.Leases,
		prefix + ".releases":    s.Releases,
		prefix + ".orphaned":    s.Orphaned,
		prefix + ".reused":      s.Reused(),
		prefix + ".outstanding": s.Outstanding,
		prefix + ".high_water":  s.HighWater,
		prefix + ".idle":        s.Idle,
		prefix + ".capacity":    s.Capacity,
	})
}
