// Package kernels provides pure-Go float32 kernels for similarity search:
// dot products, scaled accumulation, normalization and a column-major
// matrix-vector product.
package kernels

// Dot returns the inner product of a and b.
func Dot(a, b []float32) float32 {
	if len(a) != len(b) {
		panic("kernels: Dot length mismatch")
	}
	switch {
	case laneWidth >= 8:
		return dot8(a, b)
	case laneWidth >= 4:
		return dot4(a, b)
	default:
		return dotScalar(a, b)
	}
}

// Axpy accumulates dst[i] += alpha * x[i].
func Axpy(dst []float32, alpha float32, x []float32) {
	if len(dst) != len(x) {
		panic("kernels: Axpy length mismatch")
	}
	if laneWidth >= 4 {
		axpy4(dst, alpha, x)
		return
	}
	for i := range dst {
		dst[i] += alpha * x[i]
	}
}

func dotScalar(a, b []float32) float32 {
	sum := float32(0)
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func dot4(a, b []float32) float32 {
	n := len(a)
	sum0, sum1, sum2, sum3 := float32(0), float32(0), float32(0), float32(0)
	i := 0
	for ; i+4 <= n; i += 4 {
		sum0 += a[i] * b[i]
		sum1 += a[i+1] * b[i+1]
		sum2 += a[i+2] * b[i+2]
		sum3 += a[i+3] * b[i+3]
	}
	sum := sum0 + sum1 + sum2 + sum3
	for ; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func dot8(a, b []float32) float32 {
	n := len(a)
	var acc [8]float32
	i := 0
	for ; i+8 <= n; i += 8 {
		aa := a[i : i+8 : i+8]
		bb := b[i : i+8 : i+8]
		acc[0] += aa[0] * bb[0]
		acc[1] += aa[1] * bb[1]
		acc[2] += aa[2] * bb[2]
		acc[3] += aa[3] * bb[3]
		acc[4] += aa[4] * bb[4]
		acc[5] += aa[5] * bb[5]
		acc[6] += aa[6] * bb[6]
		acc[7] += aa[7] * bb[7]
	}
	sum := (acc[0] + acc[4]) + (acc[1] + acc[5]) + (acc[2] + acc[6]) + (acc[3] + acc[7])
	for ; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func axpy4(dst []float32, alpha float32, x []float32) {
	n := len(dst)
	i := 0
	for ; i+4 <= n; i += 4 {
		d := dst[i : i+4 : i+4]
		s := x[i : i+4 : i+4]
		d[0] += alpha * s[0]
		d[1] += alpha * s[1]
		d[2] += alpha * s[2]
		d[3] += alpha * s[3]
	}
	for ; i < n; i++ {
		dst[i] += alpha * x[i]
	}
}
