// Package control
// Author: momentics <momentics@gmail.com>
//
// Runtime metrics and debug introspection for pools and the benchmark
// harness.
//
// Provides:
//   - MetricsRegistry, a keyed snapshot store pools publish their Stats into
//   - DebugProbes, lazily evaluated named probes (pool stats, platform facts)
//
// Both types are safe for concurrent use, unlike the pools they observe.
package control
