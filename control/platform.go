// control/platform.go
// Author: momentics <momentics@gmail.com>
//
// Platform facts recorded next to benchmark results.

package control

import (
	"os"
	"runtime"
)

// RegisterPlatformProbes adds probes describing the host.
func RegisterPlatformProbes(dp *DebugProbes) {
	dp.RegisterProbe("platform.cpus", func() any {
		return runtime.NumCPU()
	})
	dp.RegisterProbe("platform.os", func() any {
		return runtime.GOOS
	})
	dp.RegisterProbe("platform.arch", func() any {
		return runtime.GOARCH
	})
	dp.RegisterProbe("platform.go", func() any {
		return runtime.Version()
	})
	dp.RegisterProbe("platform.pagesize", func() any {
		return os.Getpagesize()
	})
}
