// Package bench
// Author: momentics <momentics@gmail.com>
//
// Measurement harness comparing pool-backed buffers against plain heap
// allocation. Every (kind, pattern, size) case is timed Iterations times;
// one measurement runs InnerLoop batches of Batch operations and records the
// first batch separately as the latency sample.
//
// The harness is single-goroutine like the pools it drives.
package bench
