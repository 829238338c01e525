package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/headlands-org/go-wordvec/internal/vecfile"
	"github.com/headlands-org/go-wordvec/pkg/embeddings"
	"github.com/headlands-org/go-wordvec/pkg/vecdb"
)

var exportCmd = &cobra.Command{
	Use:   "export <file> <db>",
	Short: "Write a vector file into a SQLite table",
	Long: `Store every term of a vector file in a SQLite database. The database can
then serve as --backoff without loading the word vectors into memory.`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

var aliasCmd = &cobra.Command{
	Use:   "alias <terms> <vectors-out> <vocab-out>",
	Short: "Build phrase vectors by averaging word vectors",
	Long: `Read a vocabulary list of phrases (one per line), average the backoff
vectors of each phrase's words, and write the result as a constrained
vector/vocab pair, which keeps multi-word terms intact. Phrases with no
known word are skipped.`,
	Args: cobra.ExactArgs(3),
	RunE: runAlias,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(aliasCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	format, err := vecfile.ParseFormat(globalConfig.Vectors.Format)
	if err != nil {
		return err
	}
	opts, err := codecOptions(globalConfig)
	if err != nil {
		return err
	}
	store, err := embeddings.Load(args[0], format,
		embeddings.WithCodecOptions(opts...), embeddings.WithLoadLogger(logger))
	if err != nil {
		return err
	}
	if err := vecdb.Create(cmd.Context(), args[1], store.Entries(), store.ID()); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported %d terms (dim %d) to %s\n", store.Len(), store.Dim(), args[1])
	return nil
}

func runAlias(cmd *cobra.Command, args []string) error {
	if !globalConfig.HasBackoff() {
		return fmt.Errorf("alias needs word vectors: pass --backoff")
	}
	phrases, err := vecfile.ReadVocab(args[0])
	if err != nil {
		return err
	}
	src, closeFn, err := openBackoff(cmd.Context(), globalConfig)
	if err != nil {
		return err
	}
	defer closeFn()

	entries, err := embeddings.BuildAliasVocabulary(phrases, src)
	if err != nil {
		return err
	}
	if err := vecfile.WriteConstrained(args[1], args[2], entries); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %d of %d phrases to %s\n", len(entries), len(phrases), args[1])
	return nil
}
