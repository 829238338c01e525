// Package embeddings holds an immutable term vocabulary with its vectors and
// a read-only lookup facade that backs off to token averages for phrases the
// store does not hold.
package embeddings

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/headlands-org/go-wordvec/internal/vecfile"
)

// Store owns an ordered vocabulary and one vector per vocabulary entry.
// It is immutable once built and safe for concurrent readers.
type Store struct {
	id      uuid.UUID
	dim     int
	terms   []string
	index   map[string]int
	vectors [][]float32
}

// NewStore builds a Store from entries in order. The vocabulary keeps each
// term at the position where it was first seen; a repeated term replaces the
// earlier vector. Entries are copied.
func NewStore(entries []vecfile.Entry) (*Store, error) {
	s := &Store{
		id:    uuid.New(),
		index: make(map[string]int, len(entries)),
	}
	if len(entries) > 0 {
		s.dim = len(entries[0].Vector)
	}
	for i, e := range entries {
		if len(e.Vector) != s.dim {
			return nil, fmt.Errorf("embeddings: entry %d (%q): %w: got %d want %d",
				i, e.Term, ErrDimensionMismatch, len(e.Vector), s.dim)
		}
		vec := append([]float32(nil), e.Vector...)
		if pos, ok := s.index[e.Term]; ok {
			s.vectors[pos] = vec
			continue
		}
		s.index[e.Term] = len(s.terms)
		s.terms = append(s.terms, e.Term)
		s.vectors = append(s.vectors, vec)
	}
	return s, nil
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	codec  []vecfile.Option
	logger *slog.Logger
}

// WithCodecOptions passes options through to the codec.
func WithCodecOptions(opts ...vecfile.Option) LoadOption {
	return func(o *loadOptions) {
		o.codec = append(o.codec, opts...)
	}
}

// WithLoadLogger logs codec and build events to logger.
func WithLoadLogger(logger *slog.Logger) LoadOption {
	return func(o *loadOptions) {
		o.logger = logger
		o.codec = append(o.codec, vecfile.WithLogger(logger))
	}
}

// Load reads path with the given codec and builds a Store from it.
func Load(path string, format vecfile.Format, opts ...LoadOption) (*Store, error) {
	o := loadOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	entries, _, err := vecfile.Read(path, format, o.codec...)
	if err != nil {
		return nil, err
	}
	return build(entries, o.logger)
}

// LoadConstrained reads a constrained vocab/vector pair, keeping only the
// terms vocab admits, and builds a Store from them.
func LoadConstrained(vectorsPath, vocabPath string, vocab vecfile.Vocabulary, opts ...LoadOption) (*Store, error) {
	o := loadOptions{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	entries, _, err := vecfile.ReadConstrained(vectorsPath, vocabPath, vocab, o.codec...)
	if err != nil {
		return nil, err
	}
	return build(entries, o.logger)
}

func build(entries []vecfile.Entry, logger *slog.Logger) (*Store, error) {
	start := time.Now()
	s, err := NewStore(entries)
	if err != nil {
		return nil, err
	}
	logger.Debug("built store", "id", s.id, "terms", s.Len(), "dim", s.dim,
		"duplicates", len(entries)-s.Len(), "elapsed", time.Since(start))
	return s, nil
}

// ID identifies this Store instance. Engines derived from it report the
// same value.
func (s *Store) ID() uuid.UUID { return s.id }

// Len returns the vocabulary size.
func (s *Store) Len() int { return len(s.terms) }

// Dim returns the vector dimension, 0 for an empty store.
func (s *Store) Dim() int { return s.dim }

// Index returns the vocabulary position of term.
func (s *Store) Index(term string) (int, bool) {
	i, ok := s.index[term]
	return i, ok
}

// TermAt returns the term at vocabulary position i.
func (s *Store) TermAt(i int) (string, error) {
	if i < 0 || i >= len(s.terms) {
		return "", &RangeError{Index: i, Len: len(s.terms)}
	}
	return s.terms[i], nil
}

// VectorAt returns the vector at vocabulary position i. The slice is shared
// with the store and must not be modified.
func (s *Store) VectorAt(i int) ([]float32, error) {
	if i < 0 || i >= len(s.vectors) {
		return nil, &RangeError{Index: i, Len: len(s.vectors)}
	}
	return s.vectors[i], nil
}

// Vector returns the vector stored for term. The slice must not be modified.
func (s *Store) Vector(term string) ([]float32, bool) {
	i, ok := s.index[term]
	if !ok {
		return nil, false
	}
	return s.vectors[i], true
}

// Terms returns a copy of the vocabulary in index order.
func (s *Store) Terms() []string {
	return append([]string(nil), s.terms...)
}

// Matrix assembles a fresh copy of every vector in index order. Each call is
// O(vocabulary size x dimension); callers that need it repeatedly should
// keep the result.
func (s *Store) Matrix() [][]float32 {
	out := make([][]float32, len(s.vectors))
	for i, v := range s.vectors {
		out[i] = append([]float32(nil), v...)
	}
	return out
}

// Entries returns the store contents as codec entries in index order,
// sharing vector storage with the store.
func (s *Store) Entries() []vecfile.Entry {
	out := make([]vecfile.Entry, len(s.terms))
	for i, t := range s.terms {
		out[i] = vecfile.Entry{Term: t, Vector: s.vectors[i]}
	}
	return out
}
