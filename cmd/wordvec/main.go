// Command wordvec queries word2vec-format embeddings: nearest neighbors,
// analogies, format conversion, and SQLite export.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
