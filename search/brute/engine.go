// Package brute implements exact cosine-similarity ranking over a whole
// vocabulary, plus the additive analogy offset used to build queries.
package brute

import (
	"container/heap"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/headlands-org/go-wordvec/internal/kernels"
	"github.com/headlands-org/go-wordvec/internal/vecfile"
	"github.com/headlands-org/go-wordvec/pkg/embeddings"
	"github.com/headlands-org/go-wordvec/search"
)

// All asks Nearest and ClosestNeighbor for the complete ranking.
const All = -1

var errNonFinite = errors.New("brute: query has non-finite elements")

// Engine answers nearest-neighbour queries against a snapshot of a Store.
//
// At construction every vector is scaled to unit length and the matrix is
// stored transposed: row r of the working matrix holds component r of every
// vocabulary vector, so one pass over the rows scores the whole vocabulary.
// The Engine is immutable and safe for concurrent queries.
type Engine struct {
	dim      int
	size     int
	terms    []string
	working  []float32
	workers  int
	sourceID uuid.UUID
}

// NewEngine derives an Engine from store. A zero vector anywhere in the
// store aborts construction with an error naming its term.
func NewEngine(store *embeddings.Store, opts ...search.Option) (*Engine, error) {
	cfg := search.ApplyOptions(opts...)
	start := time.Now()

	dim, size := store.Dim(), store.Len()
	e := &Engine{
		dim:      dim,
		size:     size,
		terms:    store.Terms(),
		working:  make([]float32, dim*size),
		workers:  cfg.Workers,
		sourceID: store.ID(),
	}

	unit := make([]float32, dim)
	for j := 0; j < size; j++ {
		vec, err := store.VectorAt(j)
		if err != nil {
			return nil, err
		}
		if err := kernels.Normalize(unit, vec); err != nil {
			return nil, fmt.Errorf("brute: term %q at index %d: %w", e.terms[j], j, err)
		}
		for r, v := range unit {
			e.working[r*size+j] = v
		}
	}

	cfg.Logger.Debug("built working matrix",
		"store", e.sourceID, "terms", size, "dim", dim, "elapsed", time.Since(start))
	return e, nil
}

// NewEngineFromEntries builds a Store from entries and derives an Engine
// from it.
func NewEngineFromEntries(entries []vecfile.Entry, opts ...search.Option) (*Engine, error) {
	store, err := embeddings.NewStore(entries)
	if err != nil {
		return nil, err
	}
	return NewEngine(store, opts...)
}

// Dim returns the vector dimension.
func (e *Engine) Dim() int { return e.dim }

// Len returns the vocabulary size.
func (e *Engine) Len() int { return e.size }

// SourceID returns the ID of the Store the engine was derived from.
func (e *Engine) SourceID() uuid.UUID { return e.sourceID }

// TermAt returns the term at vocabulary position i.
func (e *Engine) TermAt(i int) (string, error) {
	if i < 0 || i >= e.size {
		return "", &embeddings.RangeError{Index: i, Len: e.size}
	}
	return e.terms[i], nil
}

// Similarities returns the dot product of query with every unit vector, in
// vocabulary order. The query need not be unit length: scaling it scales
// every score alike and leaves the ranking unchanged.
func (e *Engine) Similarities(query []float32) ([]float32, error) {
	if len(query) != e.dim {
		return nil, fmt.Errorf("brute: query dimension mismatch: got %d want %d", len(query), e.dim)
	}
	for _, v := range query {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil, errNonFinite
		}
	}
	sims := make([]float32, e.size)
	if e.size > 0 {
		kernels.ColumnMatVec(sims, e.working, e.dim, e.size, query, e.workers)
	}
	return sims, nil
}

// Nearest ranks the vocabulary by descending similarity to query, drops
// the single top-ranked entry and returns the next k. The dropped entry is,
// by convention, the query's own term when the query came from the
// vocabulary. k == All (or any negative k) returns every remaining entry.
//
// Equal similarities keep vocabulary order.
func (e *Engine) Nearest(query []float32, k int) ([]search.Result, error) {
	return e.rank(query, k, 1)
}

// Closest is Nearest without the exclusion: the top-ranked entry is kept,
// so it matches ClosestNeighbor over the same vectors while reusing the
// engine's normalized matrix.
func (e *Engine) Closest(query []float32, k int) ([]search.Result, error) {
	return e.rank(query, k, 0)
}

// rank scores query, skips the first skip ranked entries and returns up to
// k of the rest.
func (e *Engine) rank(query []float32, k, skip int) ([]search.Result, error) {
	sims, err := e.Similarities(query)
	if err != nil {
		return nil, err
	}
	if e.size <= skip || k == 0 {
		return []search.Result{}, nil
	}

	n := e.size
	if k >= 0 && k+skip < n {
		n = k + skip
	}
	ranked := topN(sims, n)[skip:]

	out := make([]search.Result, len(ranked))
	for i, idx := range ranked {
		out[i] = search.Result{Index: idx, Term: e.terms[idx], Similarity: sims[idx]}
	}
	return out, nil
}

// NearestTerms is Nearest projected onto terms.
func (e *Engine) NearestTerms(query []float32, k int) ([]string, error) {
	results, err := e.Nearest(query, k)
	if err != nil {
		return nil, err
	}
	return search.Terms(results), nil
}

// topN returns the indices of the n best scores ordered by descending score,
// ties by ascending index. This is the prefix of a stable descending sort.
func topN(sims []float32, n int) []int {
	if n <= 0 {
		return nil
	}
	if n >= len(sims) {
		idx := make([]int, len(sims))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool { return sims[idx[a]] > sims[idx[b]] })
		return idx
	}

	best := &worstFirst{sims: sims, idx: make([]int, 0, n)}
	for i := range sims {
		if best.Len() < n {
			heap.Push(best, i)
			continue
		}
		if !best.before(i, best.idx[0]) {
			continue
		}
		best.idx[0] = i
		heap.Fix(best, 0)
	}

	sort.Slice(best.idx, func(a, b int) bool { return best.before(best.idx[a], best.idx[b]) })
	return best.idx
}

// worstFirst is a heap of candidate indices whose root is the candidate
// every other one outranks.
type worstFirst struct {
	sims []float32
	idx  []int
}

// before reports whether candidate i outranks candidate j.
func (h *worstFirst) before(i, j int) bool {
	if h.sims[i] != h.sims[j] {
		return h.sims[i] > h.sims[j]
	}
	return i < j
}

func (h *worstFirst) Len() int           { return len(h.idx) }
func (h *worstFirst) Less(a, b int) bool { return h.before(h.idx[b], h.idx[a]) }
func (h *worstFirst) Swap(a, b int)      { h.idx[a], h.idx[b] = h.idx[b], h.idx[a] }
func (h *worstFirst) Push(x any)         { h.idx = append(h.idx, x.(int)) }
func (h *worstFirst) Pop() any {
	last := h.idx[len(h.idx)-1]
	h.idx = h.idx[:len(h.idx)-1]
	return last
}
