// File: internal/bench/summary.go
// Author: momentics <momentics@gmail.com>

package bench

import (
	"sort"
	"time"
)

// Summary aggregates the iterations of one case.
type Summary struct {
	Platform      string
	Allocator     string
	Pattern       string
	SizeBytes     uint32
	Samples       int
	TotalMedian   time.Duration
	TotalMin      time.Duration
	TotalMax      time.Duration
	LatencyMedian time.Duration
}

type summaryKey struct {
	platform, allocator, pattern string
	size                         uint32
}

// Summarize groups results by platform, allocator, pattern and size. The
// output is sorted by those fields.
func Summarize(results []Result) []Summary {
	groups := make(map[summaryKey][]Result)
	for _, r := range results {
		k := summaryKey{r.Platform, r.Allocator, r.Pattern, r.SizeBytes}
		groups[k] = append(groups[k], r)
	}

	out := make([]Summary, 0, len(groups))
	for k, rs := range groups {
		totals := make([]uint64, len(rs))
		lats := make([]uint64, len(rs))
		for i, r := range rs {
			totals[i], lats[i] = r.TotalNs, r.LatencyNs
		}
		sortU64(totals)
		sortU64(lats)
		out = append(out, Summary{
			Platform:      k.platform,
			Allocator:     k.allocator,
			Pattern:       k.pattern,
			SizeBytes:     k.size,
			Samples:       len(rs),
			TotalMedian:   time.Duration(median(totals)),
			TotalMin:      time.Duration(totals[0]),
			TotalMax:      time.Duration(totals[len(totals)-1]),
			LatencyMedian: time.Duration(median(lats)),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.Platform != b.Platform:
			return a.Platform < b.Platform
		case a.Allocator != b.Allocator:
			return a.Allocator < b.Allocator
		case a.Pattern != b.Pattern:
			return a.Pattern < b.Pattern
		}
		return a.SizeBytes < b.SizeBytes
	})
	return out
}

func sortU64(v []uint64) {
	sort.Slice(v, func(i, j int) bool { return v[i] < v[j] })
}

// median of a sorted, non-empty slice.
func median(v []uint64) uint64 {
	n := len(v)
	if n%2 == 1 {
		return v[n/2]
	}
	return (v[n/2-1] + v[n/2]) / 2
}
