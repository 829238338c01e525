package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/headlands-org/go-wordvec/internal/vecfile"
	"github.com/headlands-org/go-wordvec/pkg/embeddings"
)

var convertCmd = &cobra.Command{
	Use:   "convert <in> <out>",
	Short: "Convert between binary and text vector files",
	Long: `Read a vector file and write it in another layout. Repeated terms collapse
to one entry holding the last vector. With --vocab-out the output is written
as a constrained pair: <out> holds a "<count> <dim>" header followed by raw
rows with no terms, and the vocab file holds one term per line.`,
	Args: cobra.ExactArgs(2),
	RunE: runConvert,
}

var (
	convertFrom     string
	convertTo       string
	convertVocabOut string
)

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVar(&convertFrom, "from", "bin", "input format: bin or text")
	convertCmd.Flags().StringVar(&convertTo, "to", "text", "output format: bin or text")
	convertCmd.Flags().StringVar(&convertVocabOut, "vocab-out", "", "write a constrained vector/vocab pair")
}

func runConvert(cmd *cobra.Command, args []string) error {
	from, err := vecfile.ParseFormat(convertFrom)
	if err != nil {
		return err
	}
	to, err := vecfile.ParseFormat(convertTo)
	if err != nil {
		return err
	}
	opts, err := codecOptions(globalConfig)
	if err != nil {
		return err
	}
	store, err := embeddings.Load(args[0], from,
		embeddings.WithCodecOptions(opts...), embeddings.WithLoadLogger(logger))
	if err != nil {
		return err
	}

	entries := store.Entries()
	if convertVocabOut != "" {
		err = vecfile.WriteConstrained(args[1], convertVocabOut, entries)
	} else {
		err = vecfile.WriteFile(args[1], to, entries)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "wrote %d terms (dim %d) to %s\n", store.Len(), store.Dim(), args[1])
	return nil
}
