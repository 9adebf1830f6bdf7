// Command searchserver runs the in-memory TF-IDF search server from the
// command line.
//
// Usage:
//
//	go run ./cmd/searchserver demo
//	go run ./cmd/searchserver search --corpus corpus.yaml "curly cat -collar"
//	go run ./cmd/searchserver match --corpus corpus.yaml "curly cat" 1
//	go run ./cmd/searchserver index --corpus corpus.yaml curly cat
//	go run ./cmd/searchserver stats
//	go run ./cmd/searchserver loadtest --corpus corpus.yaml --duration 10s
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

// cfg is loaded once by the root command before any subcommand runs.
var cfg *config.Config

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "searchserver",
		Short: "In-memory TF-IDF document search",
		Long: `searchserver indexes short documents in memory and answers free-text
queries ranked by TF-IDF relevance. Queries support minus-words ("-word")
that exclude documents, stop words, and status or rating filters.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}
	rootCmd.PersistentFlags().String("config", "", "path to YAML config file")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	demoCmd := &cobra.Command{
		Use:   "demo",
		Short: "Index the sample pet corpus and replay the sample queries",
		Args:  cobra.NoArgs,
		RunE:  runDemo,
	}
	demoCmd.Flags().Bool("metrics", false, "print collected metrics after the run")
	rootCmd.AddCommand(demoCmd)

	searchCmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Run one or more queries against a corpus",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
	searchCmd.Flags().String("corpus", "", "corpus YAML file (required)")
	searchCmd.Flags().String("status", "", "only documents with this status (ACTUAL, IRRELEVANT, BANNED, REMOVED)")
	searchCmd.Flags().Int("min-rating", 0, "only documents rated strictly above this value (ignores --status)")
	searchCmd.Flags().Int("page-size", 2, "results per printed page")
	_ = searchCmd.MarkFlagRequired("corpus")
	rootCmd.AddCommand(searchCmd)

	matchCmd := &cobra.Command{
		Use:   "match <query> <document-id>",
		Short: "Show which query words a document contains",
		Args:  cobra.ExactArgs(2),
		RunE:  runMatch,
	}
	matchCmd.Flags().String("corpus", "", "corpus YAML file (required)")
	_ = matchCmd.MarkFlagRequired("corpus")
	rootCmd.AddCommand(matchCmd)

	indexCmd := &cobra.Command{
		Use:   "index [word]...",
		Short: "Print posting lists, for the given words or the whole index",
		RunE:  runIndex,
	}
	indexCmd.Flags().String("corpus", "", "corpus YAML file (default: the demo corpus)")
	rootCmd.AddCommand(indexCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate request events from Kafka and print query statistics",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}
	statsCmd.Flags().Duration("interval", 10*time.Second, "how often to print statistics")
	statsCmd.Flags().Int("top", 10, "number of queries to list")
	rootCmd.AddCommand(statsCmd)

	loadCmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Hammer an in-process server with concurrent queries",
		Args:  cobra.NoArgs,
		RunE:  runLoadTest,
	}
	loadCmd.Flags().String("corpus", "", "corpus YAML file (default: the demo corpus)")
	loadCmd.Flags().Int("concurrency", 8, "number of concurrent workers")
	loadCmd.Flags().Duration("duration", 5*time.Second, "test duration")
	rootCmd.AddCommand(loadCmd)

	return rootCmd
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		loaded.Logging.Level = level
	}
	logger.Setup(loaded.Logging.Level, loaded.Logging.Format, cmd.ErrOrStderr())
	cfg = loaded
	return nil
}
