package embeddings

import (
	"fmt"

	"golang.org/x/text/unicode/norm"
)

// Wrapper is a read-only lookup facade over a Store with optional backoff.
type Wrapper struct {
	store   *Store
	backoff Backoff
	form    *norm.Form
}

// WrapperOption configures a Wrapper.
type WrapperOption func(*Wrapper)

// WithNormalization rewrites incoming terms to the given Unicode form before
// lookup. Stored terms are used as loaded.
func WithNormalization(form norm.Form) WrapperOption {
	return func(w *Wrapper) {
		w.form = &form
	}
}

// NewWrapper wraps store. Pass NoBackoff() for strict lookups.
func NewWrapper(store *Store, backoff Backoff, opts ...WrapperOption) *Wrapper {
	w := &Wrapper{store: store, backoff: backoff}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Store returns the wrapped store.
func (w *Wrapper) Store() *Store { return w.store }

// Len returns the vocabulary size of the wrapped store.
func (w *Wrapper) Len() int { return w.store.Len() }

// Index returns the vocabulary position of term, or false.
func (w *Wrapper) Index(term string) (int, bool) {
	return w.store.Index(w.normalize(term))
}

// TermAt returns the term at vocabulary position i.
func (w *Wrapper) TermAt(i int) (string, error) { return w.store.TermAt(i) }

// LookupByIndex returns the vector at vocabulary position i.
func (w *Wrapper) LookupByIndex(i int) ([]float32, error) {
	return w.store.VectorAt(i)
}

// LookupByTerm returns the stored vector for term, or the lax token average
// of its whitespace-separated tokens drawn from the backoff source. The
// synthesized vector is never written back to either mapping. A backoff
// vector whose dimension differs from a non-empty store's is an error
// matching ErrDimensionMismatch.
func (w *Wrapper) LookupByTerm(term string) ([]float32, error) {
	term = w.normalize(term)
	if v, ok := w.store.Vector(term); ok {
		return v, nil
	}
	src, ok := w.backoff.Source()
	if !ok {
		return nil, &LookupError{Term: term, Reason: "no backoff source"}
	}
	v, err := LaxTokenAverage(term, src)
	if err != nil {
		return nil, err
	}
	if w.store.Len() > 0 && len(v) != w.store.Dim() {
		return nil, fmt.Errorf("embeddings: backoff vector for %q: %w: got %d want %d",
			term, ErrDimensionMismatch, len(v), w.store.Dim())
	}
	return v, nil
}

func (w *Wrapper) normalize(term string) string {
	if w.form == nil {
		return term
	}
	return w.form.String(term)
}
