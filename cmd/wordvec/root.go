package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/headlands-org/go-wordvec/internal/config"
)

var (
	globalConfig *config.Config
	logger       = slog.New(slog.DiscardHandler)
)

// Global flags
var (
	configPath    string
	vectorsPath   string
	vocabPath     string
	candidates    string
	formatName    string
	precisionName string
	backoffPath   string
	workers       int
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "wordvec",
	Short: "Query word and phrase embeddings",
	Long: `wordvec loads word2vec-format embeddings (binary or text) and answers
nearest-neighbor and analogy queries. Multi-word terms missing from the
vector file can fall back to the average of their word vectors.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlags(cmd, cfg)
		globalConfig = cfg
		logger.Debug("config resolved",
			"vectors", cfg.Vectors.Path, "format", cfg.Vectors.Format,
			"backoff", cfg.Backoff.Path, "workers", cfg.Search.Workers)
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/wordvec/config.yaml)")
	pf.StringVar(&vectorsPath, "vectors", "", "primary vector file")
	pf.StringVar(&vocabPath, "vocab", "", "vocab file; reads --vectors as a constrained vector file")
	pf.StringVar(&candidates, "candidates", "", "term list restricting a constrained load")
	pf.StringVar(&formatName, "format", "", "vector file format: bin or text")
	pf.StringVar(&precisionName, "precision", "", "binary element width: auto, f32 or f64")
	pf.StringVar(&backoffPath, "backoff", "", "word-level vectors for token-average backoff (.db for a vecdb table)")
	pf.IntVar(&workers, "workers", 0, "goroutines per similarity pass (0 = one per CPU)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// applyFlags overrides file settings with any flag set on the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("vectors") {
		cfg.Vectors.Path = vectorsPath
	}
	if flags.Changed("vocab") {
		cfg.Vectors.Vocab = vocabPath
	}
	if flags.Changed("candidates") {
		cfg.Vectors.Candidates = candidates
	}
	if flags.Changed("format") {
		cfg.Vectors.Format = formatName
		cfg.Backoff.Format = formatName
	}
	if flags.Changed("precision") {
		cfg.Vectors.Precision = precisionName
	}
	if flags.Changed("backoff") {
		cfg.Backoff.Path = backoffPath
	}
	if flags.Changed("workers") {
		cfg.Search.Workers = workers
	}
}
