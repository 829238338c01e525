//go:build amd64 && !noasm

package kernels

import "golang.org/x/sys/cpu"

// SIMD support flags
var (
	hasAVX2   = cpu.X86.HasAVX2
	hasAVX512 = cpu.X86.HasAVX512F
)

// laneWidth is the number of independent accumulators the unrolled loops
// keep, matched to the widest float32 register the CPU offers.
var laneWidth = func() int {
	switch {
	case hasAVX512:
		return 16
	case hasAVX2:
		return 8
	default:
		return 4
	}
}()
