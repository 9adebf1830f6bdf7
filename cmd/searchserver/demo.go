package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/paginator"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/requestqueue"
)

type demoQuery struct {
	title    string
	query    string
	pageSize int
	run      func(q *requestqueue.RequestQueue, raw string) ([]document.Document, error)
}

func byDefault(q *requestqueue.RequestQueue, raw string) ([]document.Document, error) {
	return q.AddFindRequest(raw)
}

var demoQueries = []demoQuery{
	{"Search documents with 'dog', default status is ACTUAL", "dog", 1, byDefault},
	{"Search documents with 'cat' or 'parrot', default status is ACTUAL", "cat parrot", 2, byDefault},
	{"Search documents with 'lost' or 'rabbit' excluding 'hamster' or 'collar', default status is ACTUAL",
		"lost rabbit -hamster -collar", 2, byDefault},
	{"Search only IRRELEVANT documents with 'parrot'", "parrot", 2,
		func(q *requestqueue.RequestQueue, raw string) ([]document.Document, error) {
			return q.AddFindRequestByStatus(raw, document.Irrelevant)
		}},
	{"Search documents with 'parrot' and id == 11", "parrot", 2,
		func(q *requestqueue.RequestQueue, raw string) ([]document.Document, error) {
			return q.AddFindRequestWithPredicate(raw, func(id int, _ document.Status, _ int) bool {
				return id == 11
			})
		}},
	{"Search documents with 'hamster' and rating > 5", "hamster", 1,
		func(q *requestqueue.RequestQueue, raw string) ([]document.Document, error) {
			return q.AddFindRequestWithPredicate(raw, func(_ int, _ document.Status, rating int) bool {
				return rating > 5
			})
		}},
	{"Search documents with 'snake', rating > 3 and BANNED documents", "snake", 3,
		func(q *requestqueue.RequestQueue, raw string) ([]document.Document, error) {
			return q.AddFindRequestWithPredicate(raw, func(_ int, status document.Status, rating int) bool {
				return rating > 3 && status == document.Banned
			})
		}},
}

func runDemo(cmd *cobra.Command, _ []string) error {
	showMetrics, _ := cmd.Flags().GetBool("metrics")
	out := cmd.OutOrStdout()

	a, err := newApp(cmd.Context(), cfg, demoCorpus())
	if err != nil {
		return err
	}
	defer a.Close()

	if err := replayDemo(out, a.queue, cfg.RequestQueue.Window); err != nil {
		return err
	}

	stats := a.aggregator.Stats()
	fmt.Fprintf(out, "\n=== Most frequent zero-result queries ===\n")
	for _, qc := range stats.ZeroResultQueries {
		fmt.Fprintf(out, "%q: %d\n", qc.Query, qc.Count)
	}
	if showMetrics {
		fmt.Fprintln(out, "\n=== Metrics ===")
		return a.writeMetrics(out)
	}
	return nil
}

// replayDemo runs the sample queries, then fills the window with empty
// requests and shows the oldest ones falling out of it.
func replayDemo(out io.Writer, q *requestqueue.RequestQueue, window int) error {
	fmt.Fprintln(out, "=== ALL documents successfully added ===")
	fmt.Fprintf(out, "Total empty requests: %d\n", q.GetNoResultRequests())

	for _, dq := range demoQueries {
		fmt.Fprintf(out, "\n=== %s ===\n", dq.title)
		docs, err := dq.run(q, dq.query)
		if err != nil {
			return fmt.Errorf("query %q: %w", dq.query, err)
		}
		printPaginatedResults(out, docs, dq.pageSize)
		fmt.Fprintf(out, "Total empty requests: %d\n", q.GetNoResultRequests())
	}

	filler := window - 1
	fmt.Fprintf(out, "\n=== Add %d requests with zero result ===\n", filler)
	for i := 0; i < filler; i++ {
		if _, err := q.AddFindRequest("empty request"); err != nil {
			return err
		}
	}
	fmt.Fprintf(out, "Total empty requests: %d\n", q.GetNoResultRequests())

	for _, raw := range []string{"curly dog", "big collar", "sparrow"} {
		fmt.Fprintf(out, "\n=== Add request %q ===\n", raw)
		if _, err := q.AddFindRequest(raw); err != nil {
			return err
		}
		fmt.Fprintf(out, "Total empty requests: %d\n", q.GetNoResultRequests())
	}
	return nil
}

func printPaginatedResults(out io.Writer, docs []document.Document, pageSize int) {
	pages := paginator.Paginate(docs, pageSize)
	if len(pages) == 0 {
		fmt.Fprintln(out, "Page 1: No results found")
		fmt.Fprintln(out, "Page break")
		return
	}
	for _, page := range pages {
		fmt.Fprintf(out, "Page %d: %s\n", page.Number, page)
		fmt.Fprintln(out, "Page break")
	}
}
