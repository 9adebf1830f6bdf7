// Package metrics defines the Prometheus collectors used by the search
// server, request queue and result cache.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors for the search server.
type Metrics struct {
	DocsIndexedTotal   prometheus.Counter
	DocsRejectedTotal  *prometheus.CounterVec
	IndexSizeBytes     prometheus.Gauge
	SearchQueriesTotal *prometheus.CounterVec
	SearchResultsCount prometheus.Histogram
	NoResultRequests   prometheus.Gauge
	RequestWindowSize  prometheus.Gauge
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	CacheCircuitState  prometheus.Gauge
}

// New creates all collectors and registers them with reg. A nil reg means
// prometheus.DefaultRegisterer; tests pass a fresh prometheus.NewRegistry().
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Total documents added to the index.",
			},
		),
		DocsRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docs_rejected_total",
				Help: "Total documents rejected by reason (invalid_document_id, invalid_word).",
			},
			[]string{"reason"},
		),
		IndexSizeBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "index_size_bytes",
				Help: "Approximate in-memory size of the inverted index.",
			},
		),
		SearchQueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "search_queries_total",
				Help: "Total search queries by result type (hit, zero_result, error).",
			},
			[]string{"result_type"},
		),
		SearchResultsCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "search_results_count",
				Help:    "Number of results returned per search query.",
				Buckets: []float64{0, 1, 2, 3, 4, 5},
			},
		),
		NoResultRequests: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "request_queue_no_result_requests",
				Help: "Zero-result requests within the trailing request window.",
			},
		),
		RequestWindowSize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "request_queue_window_records",
				Help: "Request records currently held in the trailing window.",
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of result cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of result cache misses.",
			},
		),
		CacheCircuitState: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "cache_redis_circuit_state",
				Help: "Redis cache circuit breaker state (0 closed, 1 open, 2 half-open).",
			},
		),
	}

	reg.MustRegister(
		m.DocsIndexedTotal,
		m.DocsRejectedTotal,
		m.IndexSizeBytes,
		m.SearchQueriesTotal,
		m.SearchResultsCount,
		m.NoResultRequests,
		m.RequestWindowSize,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheCircuitState,
	)

	return m
}

// ObserveSearch records the outcome of one FindTopDocuments call.
func (m *Metrics) ObserveSearch(results int, err error) {
	if m == nil {
		return
	}
	switch {
	case err != nil:
		m.SearchQueriesTotal.WithLabelValues("error").Inc()
		return
	case results == 0:
		m.SearchQueriesTotal.WithLabelValues("zero_result").Inc()
	default:
		m.SearchQueriesTotal.WithLabelValues("hit").Inc()
	}
	m.SearchResultsCount.Observe(float64(results))
}
