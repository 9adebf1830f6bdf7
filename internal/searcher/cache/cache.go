// Package cache memoizes status-filtered searches. Keys include the
// document count, so any AddDocument makes earlier entries unreachable.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

const keyPrefix = "search:"

// Searcher is the part of server.SearchServer the cache needs.
type Searcher interface {
	FindTopDocumentsByStatus(rawQuery string, status document.Status) ([]document.Document, error)
	GetDocumentCount() int
	StopWords() tokenizer.StopWords
}

type QueryCache struct {
	searcher Searcher
	store    Store
	ttl      time.Duration
	group    singleflight.Group
	metrics  *metrics.Metrics
	logger   *slog.Logger
	hits     atomic.Int64
	misses   atomic.Int64
}

type Option func(*QueryCache)

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *QueryCache) { c.metrics = m }
}

// New wraps searcher. A nil store means a fresh MemoryStore.
func New(searcher Searcher, store Store, ttl time.Duration, opts ...Option) *QueryCache {
	if store == nil {
		store = NewMemoryStore()
	}
	c := &QueryCache{
		searcher: searcher,
		store:    store,
		ttl:      ttl,
		logger:   slog.Default().With("component", "query-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Find returns the same documents as FindTopDocumentsByStatus. The bool
// reports a cache hit. Invalid queries are never cached. Answers the
// searcher did not compute itself (hits, parse failures, collapsed misses)
// are observed in the search metrics here.
func (c *QueryCache) Find(ctx context.Context, rawQuery string, status document.Status) ([]document.Document, bool, error) {
	q, err := parser.Parse(rawQuery, c.searcher.StopWords())
	if err != nil {
		c.metrics.ObserveSearch(0, err)
		return nil, false, err
	}
	key := buildKey(q, status, c.searcher.GetDocumentCount())

	if docs, ok := c.get(ctx, key); ok {
		c.hit(ctx, rawQuery)
		c.metrics.ObserveSearch(len(docs), nil)
		return docs, true, nil
	}
	c.miss()

	computed := false
	val, err, shared := c.group.Do(key, func() (any, error) {
		if docs, ok := c.get(ctx, key); ok {
			return docs, nil
		}
		computed = true
		docs, err := c.searcher.FindTopDocumentsByStatus(rawQuery, status)
		if err != nil {
			return nil, err
		}
		c.set(ctx, key, docs)
		return docs, nil
	})
	if err != nil {
		if !computed {
			c.metrics.ObserveSearch(0, err)
		}
		return nil, false, err
	}
	docs := val.([]document.Document)
	if !computed {
		c.metrics.ObserveSearch(len(docs), nil)
	}
	if shared {
		docs = slices.Clone(docs)
	}
	return docs, false, nil
}

// Purge drops every cached entry.
func (c *QueryCache) Purge(ctx context.Context) error {
	if err := c.store.Purge(ctx); err != nil {
		return fmt.Errorf("purging query cache: %w", err)
	}
	c.logger.Info("query cache purged")
	return nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) get(ctx context.Context, key string) ([]document.Document, bool) {
	data, found, err := c.store.Get(ctx, key)
	if err != nil {
		c.logger.Warn("cache get failed", "key", key, "error", err)
		return nil, false
	}
	if !found {
		return nil, false
	}
	var docs []document.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		return nil, false
	}
	return docs, true
}

func (c *QueryCache) set(ctx context.Context, key string, docs []document.Document) {
	data, err := json.Marshal(docs)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *QueryCache) hit(ctx context.Context, rawQuery string) {
	c.hits.Add(1)
	if c.metrics != nil {
		c.metrics.CacheHitsTotal.Inc()
	}
	logger.FromContext(ctx).Debug("cache hit", "component", "query-cache", "query", rawQuery)
}

func (c *QueryCache) miss() {
	c.misses.Add(1)
	if c.metrics != nil {
		c.metrics.CacheMissesTotal.Inc()
	}
}

func buildKey(q *parser.Query, status document.Status, docCount int) string {
	parts := []string{
		status.String(),
		strings.Join(q.PlusWords(), ","),
		"NOT:" + strings.Join(q.MinusWords(), ","),
		fmt.Sprintf("docs=%d", docCount),
	}
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("%s%x", keyPrefix, hash[:16])
}
