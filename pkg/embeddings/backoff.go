package embeddings

import (
	"strings"

	"github.com/headlands-org/go-wordvec/internal/kernels"
)

// Source is a read-only term to vector mapping consulted for backoff.
// Callers must not modify returned slices.
type Source interface {
	// Vector returns the vector for term and whether it exists. The error is
	// reserved for failures of the source itself.
	Vector(term string) ([]float32, bool, error)
}

// MapSource adapts an in-memory map.
type MapSource map[string][]float32

// Vector implements Source.
func (m MapSource) Vector(term string) ([]float32, bool, error) {
	v, ok := m[term]
	return v, ok, nil
}

type storeSource struct{ s *Store }

func (ss storeSource) Vector(term string) ([]float32, bool, error) {
	v, ok := ss.s.Vector(term)
	return v, ok, nil
}

// StoreSource exposes a Store as a backoff Source, typically the word-level
// store behind a phrase-level one.
func StoreSource(s *Store) Source { return storeSource{s: s} }

// Backoff is an optional Source. The zero value holds no source.
type Backoff struct {
	source Source
}

// NoBackoff returns an empty Backoff: unknown phrases fail.
func NoBackoff() Backoff { return Backoff{} }

// BackoffFrom returns a Backoff consulting src. A nil src is the same as
// NoBackoff.
func BackoffFrom(src Source) Backoff { return Backoff{source: src} }

// Source returns the configured source and whether one is present.
func (b Backoff) Source() (Source, bool) { return b.source, b.source != nil }

// LaxTokenAverage splits term on whitespace, looks each token up in src and
// returns the mean of the vectors found. Tokens src lacks are skipped; if
// none is found the result is a *LookupError.
func LaxTokenAverage(term string, src Source) ([]float32, error) {
	var found [][]float32
	for _, tok := range strings.Fields(term) {
		v, ok, err := src.Vector(tok)
		if err != nil {
			return nil, err
		}
		if ok {
			found = append(found, v)
		}
	}
	if len(found) == 0 {
		return nil, &LookupError{Term: term, Reason: "no token known to backoff source"}
	}
	mean, err := kernels.Mean(found)
	if err != nil {
		return nil, err
	}
	return mean, nil
}
