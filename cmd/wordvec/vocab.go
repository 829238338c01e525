package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/headlands-org/go-wordvec/internal/vecfile"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab <file>",
	Short: "List the terms of a vector or vocabulary file",
	Long: `Print the terms of a vector file in file order. With --list the file is
read as a plain vocabulary list, one term per line.`,
	Args: cobra.ExactArgs(1),
	RunE: runVocab,
}

var (
	vocabPattern string
	vocabLimit   int
	vocabList    bool
)

func init() {
	rootCmd.AddCommand(vocabCmd)
	vocabCmd.Flags().StringVar(&vocabPattern, "pattern", "", "only show terms containing this substring")
	vocabCmd.Flags().IntVar(&vocabLimit, "limit", 50, "maximum matches to print (0 = all)")
	vocabCmd.Flags().BoolVar(&vocabList, "list", false, "read a vocabulary list instead of a vector file")
}

func runVocab(cmd *cobra.Command, args []string) error {
	terms, err := readTerms(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Total vocabulary size: %d\n", len(terms))
	if vocabPattern != "" {
		fmt.Fprintf(out, "Searching for pattern: %s\n\n", vocabPattern)
	}

	count := 0
	for i, term := range terms {
		if !strings.Contains(term, vocabPattern) {
			continue
		}
		count++
		if vocabLimit <= 0 || count <= vocabLimit {
			fmt.Fprintf(out, "Term %6d: %q\n", i, term)
		}
	}

	fmt.Fprintf(out, "\nTotal matches: %d\n", count)
	if vocabLimit > 0 && count > vocabLimit {
		fmt.Fprintf(out, "(showing first %d)\n", vocabLimit)
	}
	return nil
}

func readTerms(path string) ([]string, error) {
	if vocabList {
		return vecfile.ReadVocab(path)
	}
	format, err := vecfile.ParseFormat(globalConfig.Vectors.Format)
	if err != nil {
		return nil, err
	}
	opts, err := codecOptions(globalConfig)
	if err != nil {
		return nil, err
	}
	entries, _, err := vecfile.Read(path, format, opts...)
	if err != nil {
		return nil, err
	}
	terms := make([]string, len(entries))
	for i, e := range entries {
		terms[i] = e.Term
	}
	return terms, nil
}
