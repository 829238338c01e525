//go:build arm64 && !noasm

package kernels

import "golang.org/x/sys/cpu"

// SIMD support flags for ARM64
var (
	hasNEON = cpu.ARM64.HasASIMD
	hasSVE  = cpu.ARM64.HasSVE
)

var laneWidth = func() int {
	switch {
	case hasSVE:
		return 8
	case hasNEON:
		return 4
	default:
		return 1
	}
}()
