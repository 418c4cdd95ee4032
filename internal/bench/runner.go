// File: internal/bench/runner.go
// Author: momentics <momentics@gmail.com>

package bench

import (
	"fmt"
	"math/rand/v2"

	"github.com/dustin/go-humanize"
	"github.com/eapache/queue"
	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/buffer"
	"github.com/momentics/hioload-pool/control"
	"github.com/momentics/hioload-pool/internal/logging"
	"github.com/momentics/hioload-pool/pool"
	"github.com/pkg/errors"
)

const warmupRounds = 10000

// benchCase is one (kind, pattern, size) combination.
type benchCase struct {
	kind    Kind
	pattern Pattern
	size    int
}

func (c benchCase) key() string {
	return fmt.Sprintf("%s.%s.%d", c.kind, c.pattern, c.size)
}

// Runner executes the measurement plan described by a Config.
type Runner struct {
	cfg     Config
	rng     *rand.Rand
	log     *logging.Logger
	metrics *control.MetricsRegistry
	probes  *control.DebugProbes
}

// NewRunner validates cfg and prepares a runner.
func NewRunner(cfg Config, log *logging.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Log
	}
	r := &Runner{
		cfg:     cfg,
		rng:     rand.New(rand.NewPCG(cfg.Seed, cfg.Seed)),
		log:     log,
		metrics: control.NewMetricsRegistry(),
		probes:  control.NewDebugProbes(),
	}
	control.RegisterPlatformProbes(r.probes)
	r.probes.RegisterProbe("bench.platform", func() any { return cfg.Platform })
	r.probes.RegisterProbe("bench.cases", func() any { return cfg.Cases() })
	return r, nil
}

// Metrics holds the pool stats of the last measurement of every case.
func (r *Runner) Metrics() *control.MetricsRegistry { return r.metrics }

// Probes describes the host and the plan.
func (r *Runner) Probes() *control.DebugProbes { return r.probes }

// plan queues every case, kinds outermost.
func (r *Runner) plan() *queue.Queue {
	q := queue.New()
	for _, k := range r.cfg.Kinds {
		for _, p := range r.cfg.Patterns {
			for _, s := range r.cfg.Sizes {
				q.Add(benchCase{kind: k, pattern: p, size: s})
			}
		}
	}
	return q
}

// Warmup exercises the allocator and the clock before measuring.
func (r *Runner) Warmup() {
	alloc := buffer.SliceAllocator{Size: 64}
	for i := 0; i < warmupRounds; i++ {
		b, _ := alloc.Allocate()
		sink = b
	}
}

// Run measures every case Iterations times and passes each result to emit.
func (r *Runner) Run(emit func(Result) error) error {
	plan := r.plan()
	total := plan.Length()

	var current benchCase
	r.probes.RegisterProbe("bench.current", func() any { return current.key() })
	defer r.probes.UnregisterProbe("bench.current")

	for done := 1; plan.Length() > 0; done++ {
		c := plan.Remove().(benchCase)
		current = c
		r.log.LogInfo("measuring",
			"case", fmt.Sprintf("%d/%d", done, total),
			"kind", c.kind.String(),
			"pattern", c.pattern.String(),
			"size", humanize.IBytes(uint64(c.size)))

		var last pool.Stats
		for it := 0; it < r.cfg.Iterations; it++ {
			t, stats, err := r.measureCase(c)
			if err != nil {
				return errors.Wrapf(err, "case %s iteration %d", c.key(), it)
			}
			last = stats
			err = emit(Result{
				Platform:  r.cfg.Platform,
				Allocator: c.kind.String(),
				Pattern:   c.pattern.String(),
				SizeBytes: uint32(c.size),
				Iteration: uint32(it),
				TotalNs:   uint64(t.Total.Nanoseconds()),
				LatencyNs: uint64(t.Latency.Nanoseconds()),
			})
			if err != nil {
				return err
			}
		}
		if c.kind != Heap {
			last.Publish(r.metrics, c.key())
		}
	}
	return nil
}

// allocatorFor uses an inline array size class when one matches size
// exactly and a heap slice otherwise.
func allocatorFor(size int) api.Allocator[api.Buffer] {
	if a, err := buffer.ArrayAllocatorFor(size); err == nil {
		return a
	}
	slices := buffer.SliceAllocator{Size: size}
	return api.AllocatorFunc[api.Buffer](func() (api.Buffer, error) {
		return slices.Allocate()
	})
}

func (r *Runner) measureCase(c benchCase) (Timing, pool.Stats, error) {
	alloc := allocatorFor(c.size)
	batch := r.cfg.Batch
	logOpt := pool.WithLogger(r.log.Zerolog())

	switch c.kind {
	case Heap:
		src := source[api.Buffer]{
			acquire: alloc.Allocate,
			release: func(b api.Buffer) { sink = b },
		}
		t, err := measure(newBatch(src, c.pattern, batch, r.rng), r.cfg.InnerLoop)
		return t, pool.Stats{}, err

	case SlabCold:
		src, stats := coldSlab(alloc, c.pattern == Immediate, logOpt)
		t, err := measure(newBatch(src, c.pattern, batch, r.rng), r.cfg.InnerLoop)
		return t, *stats, err

	case SlabWarm:
		p := pool.NewSlabPool[api.Buffer](alloc, pool.WithCapacityHint(batch), logOpt)
		defer p.Close()
		if err := prefill(p.Lease, batch); err != nil {
			return Timing{}, pool.Stats{}, err
		}
		src := source[pool.SlabLease[api.Buffer]]{
			acquire: p.Lease,
			release: func(l pool.SlabLease[api.Buffer]) { l.Release() },
		}
		t, err := measure(newBatch(src, c.pattern, batch, r.rng), r.cfg.InnerLoop)
		return t, p.Stats(), err

	case Shared:
		p := pool.NewSharedPool[api.Buffer](alloc, pool.WithCapacityHint(batch), logOpt)
		defer p.Close()
		src := source[*pool.SharedLease[api.Buffer]]{
			acquire: p.Lease,
			release: func(l *pool.SharedLease[api.Buffer]) { l.Release() },
		}
		t, err := measure(newBatch(src, c.pattern, batch, r.rng), r.cfg.InnerLoop)
		return t, p.Stats(), err
	}
	return Timing{}, pool.Stats{}, errors.Wrapf(api.ErrNotSupported, "allocator kind %d", int(c.kind))
}

// coldSlab gives every batch a fresh SlabPool, or every single lease when
// perLease is set. stats holds the counters of the last pool closed.
func coldSlab[B api.Buffer](alloc api.Allocator[B], perLease bool, opts ...pool.Option) (src source[pool.SlabLease[B]], stats *pool.Stats) {
	var p *pool.SlabPool[B]
	stats = new(pool.Stats)
	open := func() { p = pool.NewSlabPool[B](alloc, opts...) }
	shut := func() {
		*stats = p.Stats()
		p.Close()
	}

	if perLease {
		src.acquire = func() (pool.SlabLease[B], error) {
			open()
			l, err := p.Lease()
			if err != nil {
				shut()
			}
			return l, err
		}
		src.release = func(l pool.SlabLease[B]) {
			l.Release()
			shut()
		}
		return src, stats
	}

	src.acquire = func() (pool.SlabLease[B], error) { return p.Lease() }
	src.release = func(l pool.SlabLease[B]) { l.Release() }
	src.begin = open
	src.end = shut
	return src, stats
}
