package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
)

type Stats struct {
	TotalRequests     int64        `json:"total_requests"`
	ZeroResultCount   int64        `json:"zero_result_count"`
	LastTick          int          `json:"last_tick"`
	TopQueries        []QueryCount `json:"top_queries"`
	ZeroResultQueries []QueryCount `json:"zero_result_queries"`
}

type QueryCount struct {
	Query string `json:"query"`
	Count int64  `json:"count"`
}

// Aggregator tallies request events. It can be fed directly as a
// requestqueue.Recorder or from Kafka through HandleEvent.
type Aggregator struct {
	mu                sync.RWMutex
	seen              map[string]struct{}
	totalRequests     int64
	zeroResults       int64
	lastTick          int
	queryCounts       map[string]int64
	zeroResultQueries map[string]int64
	topN              int
	logger            *slog.Logger
}

// NewAggregator keeps the topN most frequent queries in Stats.
func NewAggregator(topN int) *Aggregator {
	if topN <= 0 {
		topN = 10
	}
	return &Aggregator{
		seen:              make(map[string]struct{}),
		queryCounts:       make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		topN:              topN,
		logger:            slog.Default().With("component", "analytics-aggregator"),
	}
}

// Record counts event once; redelivered events with a known ID are ignored.
func (a *Aggregator) Record(event RequestEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if event.ID != "" {
		if _, dup := a.seen[event.ID]; dup {
			return
		}
		a.seen[event.ID] = struct{}{}
	}
	a.totalRequests++
	a.queryCounts[event.Query]++
	if event.ZeroResult {
		a.zeroResults++
		a.zeroResultQueries[event.Query]++
	}
	if event.Tick > a.lastTick {
		a.lastTick = event.Tick
	}
}

// HandleEvent adapts agg to a kafka.MessageHandler. Undecodable messages are
// logged and skipped so the consumer keeps committing.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(_ context.Context, _ []byte, value []byte) error {
		event, err := kafka.DecodeJSON[RequestEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode request event", "error", err)
			return nil
		}
		agg.Record(event)
		return nil
	}
}

func (a *Aggregator) Stats() Stats {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Stats{
		TotalRequests:     a.totalRequests,
		ZeroResultCount:   a.zeroResults,
		LastTick:          a.lastTick,
		TopQueries:        topN(a.queryCounts, a.topN),
		ZeroResultQueries: topN(a.zeroResultQueries, a.topN),
	}
}

func topN(counts map[string]int64, n int) []QueryCount {
	result := make([]QueryCount, 0, len(counts))
	for query, count := range counts {
		result = append(result, QueryCount{Query: query, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Query < result[j].Query
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
