package kernels

import (
	"runtime"
	"sync"
)

// parallelThreshold is the column count below which ColumnMatVec stays on
// the calling goroutine.
const parallelThreshold = 4096

// ColumnMatVec computes dst[j] = sum_r query[r] * mat[r*cols+j] for a
// row-major rows x cols matrix, i.e. the product of query with every column.
//
// Columns are split into contiguous ranges, one per worker. Each element is
// accumulated over rows in the same order whatever the split, so results do
// not depend on the worker count. workers <= 0 means runtime.NumCPU().
func ColumnMatVec(dst, mat []float32, rows, cols int, query []float32, workers int) {
	if len(dst) < cols || len(mat) < rows*cols || len(query) < rows {
		panic("kernels: ColumnMatVec buffer size mismatch")
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if cols < parallelThreshold || workers == 1 {
		columnRange(dst, mat, rows, cols, query, 0, cols)
		return
	}

	chunk := (cols + workers - 1) / workers
	var wg sync.WaitGroup
	for j0 := 0; j0 < cols; j0 += chunk {
		j1 := min(j0+chunk, cols)
		wg.Add(1)
		go func(j0, j1 int) {
			defer wg.Done()
			columnRange(dst, mat, rows, cols, query, j0, j1)
		}(j0, j1)
	}
	wg.Wait()
}

func columnRange(dst, mat []float32, rows, cols int, query []float32, j0, j1 int) {
	out := dst[j0:j1]
	for j := range out {
		out[j] = 0
	}
	for r := 0; r < rows; r++ {
		q := query[r]
		if q == 0 {
			continue
		}
		base := r * cols
		Axpy(out, q, mat[base+j0:base+j1])
	}
}
