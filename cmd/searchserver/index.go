package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
)

// runIndex prints one line per word: the word, its document frequency and
// each (document, term frequency) pair.
func runIndex(cmd *cobra.Command, args []string) error {
	corpusPath, _ := cmd.Flags().GetString("corpus")
	out := cmd.OutOrStdout()

	corpus := demoCorpus()
	if corpusPath != "" {
		c, err := loadCorpus(corpusPath)
		if err != nil {
			return err
		}
		corpus = c
	}
	a, err := newApp(cmd.Context(), cfg, corpus)
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 0 {
		for _, e := range a.server.IndexSnapshot() {
			printPostings(out, e.Term, e.Postings)
		}
		return nil
	}
	for _, word := range args {
		printPostings(out, word, a.server.Postings(word))
	}
	return nil
}

func printPostings(out io.Writer, word string, postings index.PostingList) {
	fmt.Fprintf(out, "%s (df=%d):", word, len(postings))
	for _, p := range postings {
		fmt.Fprintf(out, " %d:%.4f", p.DocID, p.Frequency)
	}
	fmt.Fprintln(out)
}
