package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/spf13/cobra"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/requestqueue"
)

type loadStats struct {
	totalRequests atomic.Int64
	errorCount    atomic.Int64
	zeroResults   atomic.Int64
	latencies     []time.Duration
	latenciesMu   sync.Mutex
}

func (s *loadStats) record(d time.Duration, results int, err error) {
	s.totalRequests.Add(1)
	if err != nil {
		s.errorCount.Add(1)
		return
	}
	if results == 0 {
		s.zeroResults.Add(1)
	}
	s.latenciesMu.Lock()
	s.latencies = append(s.latencies, d)
	s.latenciesMu.Unlock()
}

func runLoadTest(cmd *cobra.Command, _ []string) error {
	corpusPath, _ := cmd.Flags().GetString("corpus")
	concurrency, _ := cmd.Flags().GetInt("concurrency")
	duration, _ := cmd.Flags().GetDuration("duration")
	out := cmd.OutOrStdout()
	if concurrency <= 0 {
		return fmt.Errorf("--concurrency must be positive, got %d", concurrency)
	}

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

	queries := loadQueries(corpus)
	fmt.Fprintln(out, "=== Search Server Load Test ===")
	fmt.Fprintf(out, "Documents:   %d\n", a.server.GetDocumentCount())
	fmt.Fprintf(out, "Concurrency: %d\n", concurrency)
	fmt.Fprintf(out, "Duration:    %s\n", duration)
	fmt.Fprintf(out, "Queries:     %d unique\n", len(queries))

	ctx, cancel := context.WithTimeout(cmd.Context(), duration)
	defer cancel()
	stats := hammer(ctx, a.queue, queries, concurrency)

	printLoadReport(out, stats, duration)
	if a.cache != nil {
		hits, misses := a.cache.Stats()
		fmt.Fprintf(out, "Cache:           %d hits / %d misses\n", hits, misses)
	}
	fmt.Fprintf(out, "Empty in window: %d of %d\n", a.queue.GetNoResultRequests(), a.queue.Len())
	return nil
}

// loadQueries derives a query mix from the corpus: each document's first two
// words, the same with the last word negated, and one query nothing matches.
func loadQueries(c *Corpus) []string {
	queries := []string{"nothing matches this"}
	for _, d := range c.Documents {
		words := tokenizer.Words(d.Text)
		if len(words) == 0 {
			continue
		}
		head := strings.Join(words[:min(2, len(words))], " ")
		queries = append(queries, head)
		if len(words) > 2 {
			queries = append(queries, head+" -"+words[len(words)-1])
		}
	}
	return queries
}

func hammer(ctx context.Context, q *requestqueue.RequestQueue, queries []string, concurrency int) *loadStats {
	stats := &loadStats{}
	var wg sync.WaitGroup
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := workerID; ctx.Err() == nil; i++ {
				start := time.Now()
				docs, err := q.AddFindRequest(queries[i%len(queries)])
				stats.record(time.Since(start), len(docs), err)
			}
		}(w)
	}
	wg.Wait()
	return stats
}

func printLoadReport(out io.Writer, stats *loadStats, duration time.Duration) {
	total := stats.totalRequests.Load()
	fmt.Fprintln(out, "\n=== Results ===")
	fmt.Fprintf(out, "Total Requests:  %d\n", total)
	fmt.Fprintf(out, "Errors:          %d\n", stats.errorCount.Load())
	fmt.Fprintf(out, "Zero results:    %d\n", stats.zeroResults.Load())
	if duration > 0 {
		fmt.Fprintf(out, "Throughput:      %.0f req/s\n", float64(total)/duration.Seconds())
	}

	stats.latenciesMu.Lock()
	sorted := append([]time.Duration(nil), stats.latencies...)
	stats.latenciesMu.Unlock()
	if len(sorted) == 0 {
		return
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	fmt.Fprintf(out, "Latency p50:     %s\n", percentile(sorted, 50))
	fmt.Fprintf(out, "Latency p95:     %s\n", percentile(sorted, 95))
	fmt.Fprintf(out, "Latency p99:     %s\n", percentile(sorted, 99))
	fmt.Fprintf(out, "Latency max:     %s\n", sorted[len(sorted)-1])
}

func percentile(sorted []time.Duration, pct int) time.Duration {
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
