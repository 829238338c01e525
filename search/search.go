// Package search holds the types shared by similarity engines.
package search

import "log/slog"

// Result captures one ranked vocabulary entry.
type Result struct {
	Index      int
	Term       string
	Similarity float32
}

// Terms projects results onto their terms.
func Terms(results []Result) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Term
	}
	return out
}

// Option customises engine construction and query execution.
type Option interface {
	apply(*Config)
}

// Config describes configuration derived from options.
type Config struct {
	// Workers bounds the goroutines used by one similarity pass. Zero means
	// one per CPU.
	Workers int
	Logger  *slog.Logger
}

// ApplyOptions builds a configuration by applying the provided options.
func ApplyOptions(opts ...Option) Config {
	cfg := Config{Logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	return cfg
}

type optionFunc func(*Config)

func (fn optionFunc) apply(cfg *Config) { fn(cfg) }

// WithWorkers sets the number of goroutines per similarity pass.
func WithWorkers(n int) Option {
	return optionFunc(func(cfg *Config) {
		if n > 0 {
			cfg.Workers = n
		}
	})
}

// WithLogger routes engine events to logger.
func WithLogger(logger *slog.Logger) Option {
	return optionFunc(func(cfg *Config) {
		if logger != nil {
			cfg.Logger = logger
		}
	})
}
