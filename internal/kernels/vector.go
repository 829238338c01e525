package kernels

import (
	"errors"
	"fmt"
	"math"

	"github.com/viant/vec/search"
)

var (
	// ErrZeroNorm is returned when a zero vector has to be unit-normalized.
	ErrZeroNorm = errors.New("kernels: zero-norm vector")
	// ErrLengthMismatch is returned when vectors of different lengths are
	// combined.
	ErrLengthMismatch = errors.New("kernels: vector length mismatch")
)

// Magnitude returns the Euclidean norm of v.
func Magnitude(v []float32) float32 {
	return search.Float32s(v).Magnitude()
}

// Normalize writes src scaled to unit length into dst. dst may alias src.
func Normalize(dst, src []float32) error {
	if len(dst) < len(src) {
		panic("kernels: Normalize buffer size mismatch")
	}
	mag := Magnitude(src)
	if mag == 0 || math.IsNaN(float64(mag)) || math.IsInf(float64(mag), 0) {
		return ErrZeroNorm
	}
	inv := 1 / mag
	for i, v := range src {
		dst[i] = v * inv
	}
	return nil
}

// Mean returns the elementwise arithmetic mean of vecs.
func Mean(vecs [][]float32) ([]float32, error) {
	if len(vecs) == 0 {
		return nil, errors.New("kernels: mean of no vectors")
	}
	dim := len(vecs[0])
	acc := make([]float64, dim)
	for i, v := range vecs {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has %d elements, want %d", ErrLengthMismatch, i, len(v), dim)
		}
		for j, x := range v {
			acc[j] += float64(x)
		}
	}
	out := make([]float32, dim)
	n := float64(len(vecs))
	for j := range acc {
		out[j] = float32(acc[j] / n)
	}
	return out, nil
}

// Offset returns b - a + c.
func Offset(a, b, c []float32) ([]float32, error) {
	if len(a) != len(b) || len(b) != len(c) {
		return nil, fmt.Errorf("%w: %d, %d, %d", ErrLengthMismatch, len(a), len(b), len(c))
	}
	out := make([]float32, len(b))
	for i := range out {
		out[i] = b[i] - a[i] + c[i]
	}
	return out, nil
}
