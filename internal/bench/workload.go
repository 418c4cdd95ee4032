// File: internal/bench/workload.go
// Author: momentics <momentics@gmail.com>

package bench

import (
	"math/rand/v2"
	"time"

	"github.com/momentics/hioload-pool/api"
)

// sink keeps heap buffers observable so the allocation is not elided.
var sink api.Buffer

// source is where one measurement takes its buffers from. begin and end,
// when set, bracket every batch.
type source[H any] struct {
	acquire func() (H, error)
	release func(H)
	begin   func()
	end     func()
}

type batchFunc func() error

// Timing is one measurement.
type Timing struct {
	Total   time.Duration // all InnerLoop batches, first one included
	Latency time.Duration // first batch only
}

// newBatch builds the batch for pattern p. Holders are allocated once here
// and reused by every batch.
func newBatch[H any](src source[H], p Pattern, batch int, rng *rand.Rand) batchFunc {
	var run batchFunc
	switch p {
	case Immediate:
		run = func() error {
			for i := 0; i < batch; i++ {
				h, err := src.acquire()
				if err != nil {
					return err
				}
				src.release(h)
			}
			return nil
		}
	case LIFO:
		held := newStack[H](batch)
		run = func() error {
			var err error
			for i := 0; i < batch && err == nil; i++ {
				var h H
				if h, err = src.acquire(); err == nil {
					held.push(h)
				}
			}
			for h, ok := held.pop(); ok; h, ok = held.pop() {
				src.release(h)
			}
			return err
		}
	case FIFO:
		held := newRing[H](batch)
		run = func() error {
			var err error
			for i := 0; i < batch && err == nil; i++ {
				var h H
				if h, err = src.acquire(); err == nil {
					held.enqueue(h)
				}
			}
			for h, ok := held.dequeue(); ok; h, ok = held.dequeue() {
				src.release(h)
			}
			return err
		}
	default:
		slots := make([]H, batch)
		used := make([]bool, batch)
		run = func() error {
			var err error
			for i := 0; i < 2*batch && err == nil; i++ {
				idx := rng.IntN(batch)
				if used[idx] {
					src.release(slots[idx])
					var zero H
					slots[idx], used[idx] = zero, false
					continue
				}
				var h H
				if h, err = src.acquire(); err == nil {
					slots[idx], used[idx] = h, true
				}
			}
			for idx := range used {
				if used[idx] {
					src.release(slots[idx])
					var zero H
					slots[idx], used[idx] = zero, false
				}
			}
			return err
		}
	}

	if src.begin == nil {
		return run
	}
	return func() error {
		src.begin()
		defer src.end()
		return run()
	}
}

// measure times the first batch on its own, then the remaining inner-1.
func measure(run batchFunc, inner int) (Timing, error) {
	start := time.Now()
	if err := run(); err != nil {
		return Timing{}, err
	}
	latency := time.Since(start)

	start = time.Now()
	for i := 1; i < inner; i++ {
		if err := run(); err != nil {
			return Timing{}, err
		}
	}
	return Timing{Total: latency + time.Since(start), Latency: latency}, nil
}

// prefill leases n buffers and releases them so the pool starts warm.
func prefill[L interface{ Release() }](lease func() (L, error), n int) error {
	held := make([]L, 0, n)
	defer func() {
		for _, l := range held {
			l.Release()
		}
	}()
	for i := 0; i < n; i++ {
		l, err := lease()
		if err != nil {
			return err
		}
		held = append(held, l)
	}
	return nil
}
