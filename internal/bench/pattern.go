// File: internal/bench/pattern.go
// Author: momentics <momentics@gmail.com>

package bench

import (
	"strings"

	"github.com/momentics/hioload-pool/api"
	"github.com/pkg/errors"
)

// Pattern is an allocation/release access order.
type Pattern int

const (
	Immediate Pattern = iota // acquire then release, Batch times
	LIFO                     // acquire Batch, release newest first
	FIFO                     // acquire Batch, release oldest first
	Random                   // 2*Batch random slot toggles, then drain
)

var patternNames = [...]string{"immediate", "lifo", "fifo", "random"}

func (p Pattern) String() string {
	if p < 0 || int(p) >= len(patternNames) {
		return "unknown"
	}
	return patternNames[p]
}

// AllPatterns lists every pattern in declaration order.
func AllPatterns() []Pattern {
	return []Pattern{Immediate, LIFO, FIFO, Random}
}

// ParsePattern accepts the names printed by String.
func ParsePattern(s string) (Pattern, error) {
	for i, n := range patternNames {
		if strings.EqualFold(s, n) {
			return Pattern(i), nil
		}
	}
	return 0, errors.Wrapf(api.ErrInvalidArgument, "unknown pattern %q", s)
}

// Kind selects where buffers come from.
type Kind int

const (
	Heap     Kind = iota // fresh allocation per acquire, dropped on release; labelled "box"
	SlabCold             // new SlabPool for every batch, or every lease under Immediate
	SlabWarm             // one SlabPool per measurement, prefilled with Batch buffers
	Shared               // one SharedPool per measurement
)

var kindNames = [...]string{"box", "slab_cold", "slab_warm", "shared"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// AllKinds lists every kind in declaration order.
func AllKinds() []Kind {
	return []Kind{Heap, SlabCold, SlabWarm, Shared}
}

// ParseKind accepts the names printed by String, and "heap" for Heap.
func ParseKind(s string) (Kind, error) {
	if strings.EqualFold(s, "heap") {
		return Heap, nil
	}
	for i, n := range kindNames {
		if strings.EqualFold(s, n) {
			return Kind(i), nil
		}
	}
	return 0, errors.Wrapf(api.ErrInvalidArgument, "unknown allocator kind %q", s)
}
