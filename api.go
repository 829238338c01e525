// Package wordvec answers similarity and analogy queries over word2vec-format
// embeddings. Terms missing from the vector file can back off to the average
// of their word vectors from a second source.
package wordvec

import (
	"fmt"
	"log/slog"

	"golang.org/x/text/unicode/norm"

	"github.com/headlands-org/go-wordvec/internal/vecfile"
	"github.com/headlands-org/go-wordvec/pkg/embeddings"
	"github.com/headlands-org/go-wordvec/search"
	"github.com/headlands-org/go-wordvec/search/brute"
)

// Entry is one term and its vector.
type Entry = vecfile.Entry

// Format selects the on-disk layout.
type Format = vecfile.Format

const (
	FormatBinary = vecfile.FormatBinary
	FormatText   = vecfile.FormatText
)

// Precision selects the element width of binary files.
type Precision = vecfile.Precision

const (
	PrecisionAuto    = vecfile.PrecisionAuto
	PrecisionFloat32 = vecfile.PrecisionFloat32
	PrecisionFloat64 = vecfile.PrecisionFloat64
)

// Source resolves single words for backoff.
type Source = embeddings.Source

// Result is one ranked neighbor.
type Result = search.Result

// All requests the full ranking.
const All = brute.All

// Errors re-exported for errors.Is checks.
var (
	ErrNotFound   = embeddings.ErrNotFound
	ErrOutOfRange = embeddings.ErrOutOfRange
	ErrFormat     = vecfile.ErrFormat
)

type options struct {
	precision vecfile.Precision
	backoff   embeddings.Source
	form      *norm.Form
	workers   int
	logger    *slog.Logger
}

// Option configures Open and New.
type Option func(*options)

// WithPrecision overrides the binary element width heuristic.
func WithPrecision(p Precision) Option {
	return func(o *options) { o.precision = p }
}

// WithBackoff resolves unknown multi-word terms as the average of the
// vectors src holds for their words.
func WithBackoff(src Source) Option {
	return func(o *options) { o.backoff = src }
}

// WithNormalization applies a Unicode normalization form to looked-up terms.
func WithNormalization(form norm.Form) Option {
	return func(o *options) { o.form = &form }
}

// WithWorkers bounds the goroutines used per query.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithLogger routes load and build events to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Model couples a vocabulary, its backoff, and a similarity engine.
type Model struct {
	wrapper *embeddings.Wrapper
	engine  *brute.Engine
}

// Open loads a vector file and prepares it for queries.
func Open(path string, format Format, opts ...Option) (*Model, error) {
	o := collect(opts)
	store, err := embeddings.Load(path, format,
		embeddings.WithCodecOptions(vecfile.WithPrecision(o.precision), vecfile.WithLogger(o.logger)),
		embeddings.WithLoadLogger(o.logger))
	if err != nil {
		return nil, err
	}
	return build(store, o)
}

// New prepares entries for queries.
func New(entries []Entry, opts ...Option) (*Model, error) {
	store, err := embeddings.NewStore(entries)
	if err != nil {
		return nil, err
	}
	return build(store, collect(opts))
}

func collect(opts []Option) options {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func build(store *embeddings.Store, o options) (*Model, error) {
	backoff := embeddings.NoBackoff()
	if o.backoff != nil {
		backoff = embeddings.BackoffFrom(o.backoff)
	}
	var wopts []embeddings.WrapperOption
	if o.form != nil {
		wopts = append(wopts, embeddings.WithNormalization(*o.form))
	}
	engine, err := brute.NewEngine(store, search.WithWorkers(o.workers), search.WithLogger(o.logger))
	if err != nil {
		return nil, err
	}
	return &Model{wrapper: embeddings.NewWrapper(store, backoff, wopts...), engine: engine}, nil
}

// Len returns the vocabulary size.
func (m *Model) Len() int { return m.engine.Len() }

// Dim returns the vector dimension.
func (m *Model) Dim() int { return m.engine.Dim() }

// Lookup returns the vector for term, backing off when configured.
func (m *Model) Lookup(term string) ([]float32, error) {
	return m.wrapper.LookupByTerm(term)
}

// Nearest ranks the vocabulary against term and returns the k best after
// the top match, which for a stored term is the term itself.
func (m *Model) Nearest(term string, k int) ([]Result, error) {
	query, err := m.wrapper.LookupByTerm(term)
	if err != nil {
		return nil, err
	}
	return m.engine.Nearest(query, k)
}

// NearestVector is Nearest for an arbitrary query vector.
func (m *Model) NearestVector(query []float32, k int) ([]Result, error) {
	return m.engine.Nearest(query, k)
}

// Analogy solves a:b :: c:? and returns the k closest terms to b - a + c,
// best match included.
func (m *Model) Analogy(a, b, c string, k int) ([]string, error) {
	query, err := brute.Analogy(m.wrapper, a, b, c)
	if err != nil {
		return nil, err
	}
	results, err := m.engine.Closest(query, k)
	if err != nil {
		return nil, fmt.Errorf("wordvec: analogy %s:%s :: %s: %w", a, b, c, err)
	}
	return search.Terms(results), nil
}
