package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/requestqueue"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/server"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
)

// app is the search server plus whatever optional components the config
// enables. Close releases them in reverse order.
type app struct {
	server     *server.SearchServer
	queue      *requestqueue.RequestQueue
	cache      *cache.QueryCache
	aggregator *analytics.Aggregator
	registry   *prometheus.Registry
	closers    []func()
}

// fanout delivers each event to every recorder.
type fanout []requestqueue.Recorder

func (f fanout) Record(e analytics.RequestEvent) {
	for _, r := range f {
		r.Record(e)
	}
}

func newApp(ctx context.Context, cfg *config.Config, corpus *Corpus) (*app, error) {
	a := &app{aggregator: analytics.NewAggregator(10)}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		m = metrics.New(a.registry)
	}

	engine := cfg.Engine
	if corpus.StopWords != "" {
		engine.StopWords = corpus.StopWords
	}
	srv, err := server.NewFromConfig(engine, server.WithMetrics(m))
	if err != nil {
		return nil, fmt.Errorf("creating search server: %w", err)
	}
	corpus.indexInto(srv)
	a.server = srv

	recorders := fanout{a.aggregator}
	if cfg.Analytics.Enabled {
		producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.RequestEvents)
		collector := analytics.NewCollector(producer, cfg.Analytics.BufferSize)
		collector.Start(ctx)
		recorders = append(recorders, collector)
		a.closers = append(a.closers, func() {
			collector.Close()
			if err := producer.Close(); err != nil {
				slog.Warn("closing kafka producer", "error", err)
			}
		})
	}
	var searcher requestqueue.Searcher = srv
	if cfg.Cache.Enabled {
		store, closeStore, err := newStore(cfg, m)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, closeStore)
		a.cache = cache.New(srv, store, cfg.Cache.TTL, cache.WithMetrics(m))
		searcher = cachedSearcher{SearchServer: srv, cache: a.cache, ctx: ctx}
	}
	a.queue = requestqueue.New(searcher,
		requestqueue.WithWindow(cfg.RequestQueue.Window),
		requestqueue.WithRecorder(recorders),
		requestqueue.WithMetrics(m),
	)
	return a, nil
}

// cachedSearcher answers status queries from the cache; predicate queries
// go straight to the server.
type cachedSearcher struct {
	*server.SearchServer
	cache *cache.QueryCache
	ctx   context.Context
}

func (c cachedSearcher) FindTopDocuments(rawQuery string) ([]document.Document, error) {
	return c.FindTopDocumentsByStatus(rawQuery, document.Actual)
}

func (c cachedSearcher) FindTopDocumentsByStatus(rawQuery string, status document.Status) ([]document.Document, error) {
	ctx := logger.WithQueryID(c.ctx, uuid.NewString())
	docs, _, err := c.cache.Find(ctx, rawQuery, status)
	return docs, err
}

func newStore(cfg *config.Config, m *metrics.Metrics) (cache.Store, func(), error) {
	if cfg.Cache.Backend != config.CacheBackendRedis {
		return cache.NewMemoryStore(), func() {}, nil
	}
	client, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting cache backend: %w", err)
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			slog.Warn("closing redis client", "error", err)
		}
	}
	return cache.NewRedisStore(client, m), closeClient, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// writeMetrics dumps every collected metric in the Prometheus text format.
func (a *app) writeMetrics(w io.Writer) error {
	if a.registry == nil {
		_, err := fmt.Fprintln(w, "metrics disabled")
		return err
	}
	families, err := a.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}
