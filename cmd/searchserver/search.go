package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

func runSearch(cmd *cobra.Command, args []string) error {
	corpusPath, _ := cmd.Flags().GetString("corpus")
	statusFlag, _ := cmd.Flags().GetString("status")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	out := cmd.OutOrStdout()

	status := document.Actual
	if statusFlag != "" {
		s, err := document.ParseStatus(statusFlag)
		if err != nil {
			return err
		}
		status = s
	}

	corpus, err := loadCorpus(corpusPath)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, corpus)
	if err != nil {
		return err
	}
	defer a.Close()

	for _, raw := range args {
		fmt.Fprintf(out, "=== %s ===\n", raw)
		var docs []document.Document
		if cmd.Flags().Changed("min-rating") {
			minRating, _ := cmd.Flags().GetInt("min-rating")
			docs, err = a.queue.AddFindRequestWithPredicate(raw, func(_ int, _ document.Status, rating int) bool {
				return rating > minRating
			})
		} else {
			docs, err = a.queue.AddFindRequestByStatus(raw, status)
		}
		if err != nil {
			fmt.Fprintf(out, "error [%s]: %v\n", apperrors.Kind(err), err)
			continue
		}
		printPaginatedResults(out, docs, pageSize)
	}
	fmt.Fprintf(out, "Total empty requests: %d\n", a.queue.GetNoResultRequests())
	return nil
}

func runMatch(cmd *cobra.Command, args []string) error {
	corpusPath, _ := cmd.Flags().GetString("corpus")
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return apperrors.Newf(apperrors.ErrInvalidArgument, "document id %q is not a number", args[1])
	}

	corpus, err := loadCorpus(corpusPath)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, corpus)
	if err != nil {
		return err
	}
	defer a.Close()

	words, status, err := a.server.MatchDocument(args[0], id)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "{ document_id = %d, status = %s, words = [%s] }\n",
		id, status, strings.Join(words, " "))
	return nil
}
