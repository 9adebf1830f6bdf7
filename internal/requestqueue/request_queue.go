// Package requestqueue wraps a search server and keeps statistics over the
// most recent requests: how many of the last window of requests returned
// no documents.
package requestqueue

import (
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// MinutesInDay is the default window: one request per minute for a day.
const MinutesInDay = 1440

// Searcher is the query surface of server.SearchServer.
type Searcher interface {
	FindTopDocuments(rawQuery string) ([]document.Document, error)
	FindTopDocumentsByStatus(rawQuery string, status document.Status) ([]document.Document, error)
	FindTopDocumentsWithPredicate(rawQuery string, pred executor.Predicate) ([]document.Document, error)
}

// Recorder receives an event for every request the queue records.
type Recorder interface {
	Record(event analytics.RequestEvent)
}

type record struct {
	tick    int
	results int
}

type RequestQueue struct {
	searcher Searcher
	window   int
	recorder Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger

	mu        sync.Mutex
	records   []record
	tick      int
	noResults int
}

type Option func(*RequestQueue)

// WithWindow sets how many ticks a record stays in the window. Non-positive
// values are ignored.
func WithWindow(n int) Option {
	return func(q *RequestQueue) {
		if n > 0 {
			q.window = n
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(q *RequestQueue) { q.recorder = r }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(q *RequestQueue) { q.metrics = m }
}

func New(searcher Searcher, opts ...Option) *RequestQueue {
	q := &RequestQueue{
		searcher: searcher,
		window:   MinutesInDay,
		logger:   slog.Default().With("component", "request-queue"),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// AddFindRequest runs FindTopDocuments and records the outcome. A failed
// search is returned as is and leaves the statistics untouched.
func (q *RequestQueue) AddFindRequest(rawQuery string) ([]document.Document, error) {
	docs, err := q.searcher.FindTopDocuments(rawQuery)
	if err != nil {
		return nil, err
	}
	q.add(rawQuery, len(docs))
	return docs, nil
}

func (q *RequestQueue) AddFindRequestByStatus(rawQuery string, status document.Status) ([]document.Document, error) {
	docs, err := q.searcher.FindTopDocumentsByStatus(rawQuery, status)
	if err != nil {
		return nil, err
	}
	q.add(rawQuery, len(docs))
	return docs, nil
}

func (q *RequestQueue) AddFindRequestWithPredicate(rawQuery string, pred executor.Predicate) ([]document.Document, error) {
	docs, err := q.searcher.FindTopDocumentsWithPredicate(rawQuery, pred)
	if err != nil {
		return nil, err
	}
	q.add(rawQuery, len(docs))
	return docs, nil
}

// GetNoResultRequests returns how many requests in the current window
// returned no documents.
func (q *RequestQueue) GetNoResultRequests() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.noResults
}

// Len returns the number of requests currently in the window.
func (q *RequestQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.records)
}

// Tick returns the number of requests recorded so far.
func (q *RequestQueue) Tick() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.tick
}

func (q *RequestQueue) add(rawQuery string, results int) {
	q.mu.Lock()
	q.tick++
	tick := q.tick
	evicted := 0
	for len(q.records) > 0 && tick-q.records[0].tick >= q.window {
		if q.records[0].results == 0 {
			q.noResults--
		}
		q.records = q.records[1:]
		evicted++
	}
	q.records = append(q.records, record{tick: tick, results: results})
	if results == 0 {
		q.noResults++
	}
	noResults, size := q.noResults, len(q.records)
	q.mu.Unlock()

	if q.metrics != nil {
		q.metrics.NoResultRequests.Set(float64(noResults))
		q.metrics.RequestWindowSize.Set(float64(size))
	}
	if evicted > 0 {
		q.logger.Debug("requests left the window", "evicted", evicted, "tick", tick)
	}
	if q.recorder != nil {
		q.recorder.Record(analytics.NewRequestEvent(rawQuery, tick, results))
	}
}
