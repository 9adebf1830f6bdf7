// Package server implements SearchServer, the in-memory TF-IDF search engine:
// an append-only document collection with an inverted index, queried by
// free text with plus/minus words and a caller-supplied predicate.
package server

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
)

// SearchServer is safe for concurrent use: AddDocument takes an exclusive
// lock, queries share a read lock.
type SearchServer struct {
	mu         sync.RWMutex
	stopWords  tokenizer.StopWords
	index      *index.MemoryIndex
	maxResults int
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

type Option func(*SearchServer)

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *SearchServer) { s.metrics = m }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *SearchServer) { s.logger = l }
}

// WithMaxResults overrides ranker.MaxResultDocumentCount. Non-positive
// values are ignored.
func WithMaxResults(n int) Option {
	return func(s *SearchServer) {
		if n > 0 {
			s.maxResults = n
		}
	}
}

// New creates a server without stop words.
func New(opts ...Option) *SearchServer {
	return newServer(tokenizer.StopWords{}, opts)
}

// NewWithStopWords creates a server from an explicit stop-word collection.
func NewWithStopWords(words []string, opts ...Option) (*SearchServer, error) {
	sw, err := tokenizer.NewStopWords(words)
	if err != nil {
		return nil, fmt.Errorf("building stop words: %w", err)
	}
	return newServer(sw, opts), nil
}

// NewFromText creates a server from a space-delimited stop-word string.
func NewFromText(text string, opts ...Option) (*SearchServer, error) {
	sw, err := tokenizer.ParseStopWords(text)
	if err != nil {
		return nil, fmt.Errorf("parsing stop words: %w", err)
	}
	return newServer(sw, opts), nil
}

// NewFromConfig creates a server from the engine section of the config.
func NewFromConfig(cfg config.EngineConfig, opts ...Option) (*SearchServer, error) {
	opts = append([]Option{WithMaxResults(cfg.MaxResults)}, opts...)
	return NewFromText(cfg.StopWords, opts...)
}

func newServer(sw tokenizer.StopWords, opts []Option) *SearchServer {
	s := &SearchServer{
		stopWords:  sw,
		index:      index.NewMemoryIndex(),
		maxResults: ranker.MaxResultDocumentCount,
		logger:     slog.Default().With("component", "search-server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger.Debug("search server created", "stop_words", sw.Len(), "max_results", s.maxResults)
	return s
}

// AddDocument indexes text under id. It fails with ErrInvalidDocumentID if
// id is negative or already present and with ErrInvalidWord if any word has
// a control character; in both cases nothing is stored.
func (s *SearchServer) AddDocument(id int, text string, status document.Status, ratings []int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 0 {
		return s.reject(apperrors.Newf(apperrors.ErrInvalidDocumentID, "document id %d is negative", id))
	}
	if s.index.Contains(id) {
		return s.reject(apperrors.Newf(apperrors.ErrInvalidDocumentID, "document id %d already exists", id))
	}
	words, err := s.splitNoStop(text)
	if err != nil {
		return s.reject(fmt.Errorf("document %d: %w", id, err))
	}

	s.index.Insert(id, words, document.Data{
		Rating: document.AverageRating(ratings),
		Status: status,
	})
	if s.metrics != nil {
		s.metrics.DocsIndexedTotal.Inc()
		s.metrics.IndexSizeBytes.Set(float64(s.index.Size()))
	}
	s.logger.Debug("document indexed",
		"doc_id", id,
		"status", status,
		"token_count", len(words),
		"doc_count", s.index.DocCount(),
	)
	return nil
}

// FindTopDocuments returns the best Actual documents for rawQuery.
func (s *SearchServer) FindTopDocuments(rawQuery string) ([]document.Document, error) {
	return s.FindTopDocumentsWithPredicate(rawQuery, executor.DefaultPredicate)
}

// FindTopDocumentsByStatus returns the best documents with the given status.
func (s *SearchServer) FindTopDocumentsByStatus(rawQuery string, status document.Status) ([]document.Document, error) {
	return s.FindTopDocumentsWithPredicate(rawQuery, executor.ByStatus(status))
}

// FindTopDocumentsWithPredicate returns at most maxResults documents that
// match rawQuery and satisfy pred, best first.
func (s *SearchServer) FindTopDocumentsWithPredicate(rawQuery string, pred executor.Predicate) ([]document.Document, error) {
	q, err := parser.Parse(rawQuery, s.stopWords)
	if err != nil {
		s.metrics.ObserveSearch(0, err)
		return nil, err
	}

	s.mu.RLock()
	candidates := executor.FindCandidates(s.index, q, pred)
	s.mu.RUnlock()

	result := ranker.Rank(candidates, s.maxResults)
	s.metrics.ObserveSearch(len(result), nil)
	s.logger.Debug("query executed",
		"query", rawQuery,
		"plus", len(q.Plus),
		"minus", len(q.Minus),
		"candidates", len(candidates),
		"results", len(result),
	)
	return result, nil
}

// MatchDocument returns the query's plus-words found in document id, sorted,
// with the document's status. Any matching minus-word empties the list.
func (s *SearchServer) MatchDocument(rawQuery string, id int) ([]string, document.Status, error) {
	q, err := parser.Parse(rawQuery, s.stopWords)
	if err != nil {
		return nil, 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.index.Document(id)
	if !ok {
		return nil, 0, apperrors.Newf(apperrors.ErrDocumentNotFound, "document id %d", id)
	}
	return executor.MatchWords(s.index, q, id), data.Status, nil
}

func (s *SearchServer) GetDocumentCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// GetDocumentID returns the id added at the given 0-based position.
func (s *SearchServer) GetDocumentID(ordinal int) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.index.IDAt(ordinal)
	if !ok {
		return 0, apperrors.Newf(apperrors.ErrOutOfRange, "ordinal %d not in [0, %d)", ordinal, s.index.DocCount())
	}
	return id, nil
}

// GetWordFrequencies returns the term frequency of every word of document
// id; the map is empty for an unknown id.
func (s *SearchServer) GetWordFrequencies(id int) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.WordFrequencies(id)
}

// Postings lists the documents containing word with their term frequency,
// ordered by document id.
func (s *SearchServer) Postings(word string) index.PostingList {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Search(word)
}

// IndexSnapshot dumps the whole inverted index, words in lexical order.
func (s *SearchServer) IndexSnapshot() []index.TermEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.Snapshot()
}

func (s *SearchServer) StopWords() tokenizer.StopWords {
	return s.stopWords
}

// splitNoStop validates every word before dropping stop words, so a
// document is rejected as a whole.
func (s *SearchServer) splitNoStop(text string) ([]string, error) {
	words := make([]string, 0)
	for word := range tokenizer.SplitWords(text) {
		if !tokenizer.IsValidWord(word) {
			return nil, apperrors.Newf(apperrors.ErrInvalidWord, "word %q contains a control character", word)
		}
		if s.stopWords.Contains(word) {
			continue
		}
		words = append(words, word)
	}
	return words, nil
}

func (s *SearchServer) reject(err error) error {
	if s.metrics != nil {
		s.metrics.DocsRejectedTotal.WithLabelValues(apperrors.Kind(err)).Inc()
	}
	s.logger.Debug("document rejected", "error", err)
	return err
}
