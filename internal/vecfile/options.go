package vecfile

import "log/slog"

// DefaultChunkSize is the read-ahead window used to locate the term
// delimiter in binary records. Terms longer than one window are still found;
// the search continues into the next window.
const DefaultChunkSize = 256

// Options configures a read.
type Options struct {
	Precision Precision
	ChunkSize int
	Logger    *slog.Logger
}

// Option is a functional option for reads.
type Option func(*Options)

// WithPrecision overrides the header-derived element width.
func WithPrecision(p Precision) Option {
	return func(o *Options) {
		o.Precision = p
	}
}

// WithChunkSize sets the delimiter search window in bytes.
func WithChunkSize(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.ChunkSize = n
		}
	}
}

// WithLogger routes load events to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

func applyOptions(opts []Option) Options {
	o := Options{
		Precision: PrecisionAuto,
		ChunkSize: DefaultChunkSize,
		Logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
