package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/headlands-org/go-wordvec/internal/config"
	"github.com/headlands-org/go-wordvec/internal/vecfile"
	"github.com/headlands-org/go-wordvec/pkg/embeddings"
	"github.com/headlands-org/go-wordvec/pkg/vecdb"
	"github.com/headlands-org/go-wordvec/search"
	"github.com/headlands-org/go-wordvec/search/brute"
)

// session holds everything a query command needs. close releases the
// backoff database when one is open.
type session struct {
	wrapper *embeddings.Wrapper
	engine  *brute.Engine
	close   func()
}

func codecOptions(cfg *config.Config) ([]vecfile.Option, error) {
	prec, err := vecfile.ParsePrecision(cfg.Vectors.Precision)
	if err != nil {
		return nil, err
	}
	return []vecfile.Option{vecfile.WithPrecision(prec), vecfile.WithLogger(logger)}, nil
}

func openSession(ctx context.Context, cfg *config.Config) (*session, error) {
	if cfg.Vectors.Path == "" {
		return nil, fmt.Errorf("no vector file: pass --vectors or set vectors.path in the config")
	}
	store, err := loadPrimary(cfg)
	if err != nil {
		return nil, err
	}

	s := &session{close: func() {}}
	backoff := embeddings.NoBackoff()
	if cfg.HasBackoff() {
		src, closeFn, err := openBackoff(ctx, cfg)
		if err != nil {
			return nil, err
		}
		backoff = embeddings.BackoffFrom(src)
		s.close = closeFn
	}

	var wopts []embeddings.WrapperOption
	if cfg.Vectors.Normalize != "" {
		form, err := parseNormalization(cfg.Vectors.Normalize)
		if err != nil {
			s.close()
			return nil, err
		}
		wopts = append(wopts, embeddings.WithNormalization(form))
	}
	s.wrapper = embeddings.NewWrapper(store, backoff, wopts...)

	s.engine, err = brute.NewEngine(store,
		search.WithWorkers(cfg.Search.Workers), search.WithLogger(logger))
	if err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func loadPrimary(cfg *config.Config) (*embeddings.Store, error) {
	opts, err := codecOptions(cfg)
	if err != nil {
		return nil, err
	}
	load := []embeddings.LoadOption{embeddings.WithCodecOptions(opts...), embeddings.WithLoadLogger(logger)}

	if cfg.Vectors.Vocab != "" {
		var candidates vecfile.Vocabulary
		if cfg.Vectors.Candidates != "" {
			terms, err := vecfile.ReadVocab(cfg.Vectors.Candidates)
			if err != nil {
				return nil, err
			}
			candidates = vecfile.NewVocabulary(terms...)
		}
		return embeddings.LoadConstrained(cfg.Vectors.Path, cfg.Vectors.Vocab, candidates, load...)
	}

	format, err := vecfile.ParseFormat(cfg.Vectors.Format)
	if err != nil {
		return nil, err
	}
	return embeddings.Load(cfg.Vectors.Path, format, load...)
}

func openBackoff(ctx context.Context, cfg *config.Config) (embeddings.Source, func(), error) {
	if strings.EqualFold(filepath.Ext(cfg.Backoff.Path), ".db") {
		db, err := vecdb.Open(ctx, cfg.Backoff.Path)
		if err != nil {
			return nil, nil, err
		}
		logger.Debug("backoff table opened", "path", cfg.Backoff.Path, "terms", db.Len(), "dim", db.Dim())
		return db, func() { db.Close() }, nil
	}
	format, err := vecfile.ParseFormat(cfg.Backoff.Format)
	if err != nil {
		return nil, nil, err
	}
	opts, err := codecOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	words, err := embeddings.Load(cfg.Backoff.Path, format,
		embeddings.WithCodecOptions(opts...), embeddings.WithLoadLogger(logger))
	if err != nil {
		return nil, nil, err
	}
	return embeddings.StoreSource(words), func() {}, nil
}

func parseNormalization(name string) (norm.Form, error) {
	switch strings.ToLower(name) {
	case "nfc":
		return norm.NFC, nil
	case "nfkc":
		return norm.NFKC, nil
	case "nfd":
		return norm.NFD, nil
	case "nfkd":
		return norm.NFKD, nil
	default:
		return 0, fmt.Errorf("unknown normalization form %q", name)
	}
}
