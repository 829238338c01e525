package brute

import (
	"fmt"
	"sort"

	"github.com/headlands-org/go-wordvec/internal/kernels"
)

// ClosestNeighbor ranks the rows of matrix by cosine similarity to query and
// returns the indices of the top k, most similar first. Unlike
// Engine.Nearest it keeps the top-ranked row, so an exact match of the
// query is returned. k == All (or any negative k) returns every row.
//
// Rows are unit-normalized on a private copy unless normed is set. This is
// a one-shot call; repeated queries against the same vectors belong on an
// Engine.
func ClosestNeighbor(query []float32, matrix [][]float32, k int, normed bool) ([]int, error) {
	sims := make([]float32, len(matrix))
	unit := make([]float32, len(query))
	for i, row := range matrix {
		if len(row) != len(query) {
			return nil, fmt.Errorf("brute: row %d has dimension %d, query has %d", i, len(row), len(query))
		}
		if normed {
			sims[i] = kernels.Dot(query, row)
			continue
		}
		if err := kernels.Normalize(unit, row); err != nil {
			return nil, fmt.Errorf("brute: row %d: %w", i, err)
		}
		sims[i] = kernels.Dot(query, unit)
	}

	idx := make([]int, len(matrix))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return sims[idx[a]] > sims[idx[b]] })
	if k >= 0 && k < len(idx) {
		idx = idx[:k]
	}
	return idx, nil
}
