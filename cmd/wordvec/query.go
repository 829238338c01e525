package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/headlands-org/go-wordvec/search"
	"github.com/headlands-org/go-wordvec/search/brute"
)

var nearestCmd = &cobra.Command{
	Use:   "nearest <term>",
	Short: "List the terms nearest to a term",
	Long: `Resolve a term through the vector file (falling back to the average of
its word vectors when a backoff source is configured) and print the k most
similar vocabulary entries. The best match is dropped, since for a stored
term it is the term itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runNearest,
}

var analogyCmd = &cobra.Command{
	Use:   "analogy <a> <b> <c>",
	Short: "Solve a:b :: c:?",
	Long:  "Print the vocabulary entries closest to b - a + c, best match included.",
	Args:  cobra.ExactArgs(3),
	RunE:  runAnalogy,
}

var topK int

func init() {
	rootCmd.AddCommand(nearestCmd)
	rootCmd.AddCommand(analogyCmd)

	for _, c := range []*cobra.Command{nearestCmd, analogyCmd} {
		c.Flags().IntVarP(&topK, "top", "k", 0, "number of results (default from config; -1 for all)")
	}
}

func resolveK(cmd *cobra.Command) int {
	if cmd.Flags().Changed("top") {
		return topK
	}
	return globalConfig.Search.TopK
}

func runNearest(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), globalConfig)
	if err != nil {
		return err
	}
	defer s.close()

	query, err := s.wrapper.LookupByTerm(args[0])
	if err != nil {
		return err
	}
	results, err := s.engine.Nearest(query, resolveK(cmd))
	if err != nil {
		return err
	}
	printResults(cmd.OutOrStdout(), results)
	return nil
}

func runAnalogy(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd.Context(), globalConfig)
	if err != nil {
		return err
	}
	defer s.close()

	query, err := brute.Analogy(s.wrapper, args[0], args[1], args[2])
	if err != nil {
		return err
	}
	results, err := s.engine.Closest(query, resolveK(cmd))
	if err != nil {
		return err
	}
	printResults(cmd.OutOrStdout(), results)
	return nil
}

func printResults(w io.Writer, results []search.Result) {
	for i, r := range results {
		fmt.Fprintf(w, "%3d  %-40s %.4f\n", i+1, r.Term, r.Similarity)
	}
}
