package brute

import (
	"fmt"

	"github.com/headlands-org/go-wordvec/internal/kernels"
	"github.com/headlands-org/go-wordvec/pkg/embeddings"
)

// AnalogyOffset returns b - a + c, the query for "a is to b as c is to ?".
func AnalogyOffset(a, b, c []float32) ([]float32, error) {
	out, err := kernels.Offset(a, b, c)
	if err != nil {
		return nil, fmt.Errorf("brute: analogy offset: %w", err)
	}
	return out, nil
}

// Analogy resolves a, b and c through w, backing off where w does, and
// returns their analogy offset.
func Analogy(w *embeddings.Wrapper, a, b, c string) ([]float32, error) {
	terms := [3]string{a, b, c}
	var vecs [3][]float32
	for i, t := range terms {
		v, err := w.LookupByTerm(t)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	return AnalogyOffset(vecs[0], vecs[1], vecs[2])
}
