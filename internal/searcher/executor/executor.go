// Package executor evaluates a parsed query against the index: it
// accumulates TF-IDF relevance for plus-words over the documents a predicate
// admits, then drops every document that contains a minus-word.
package executor

import (
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/search-server/internal/searcher/ranker"
)

// Predicate decides whether a document may enter the result set.
type Predicate func(id int, status document.Status, rating int) bool

// ByStatus admits only documents with the given status.
func ByStatus(want document.Status) Predicate {
	return func(_ int, status document.Status, _ int) bool {
		return status == want
	}
}

// DefaultPredicate admits Actual documents.
var DefaultPredicate = ByStatus(document.Actual)

// FindCandidates returns every document matching q and pred, unordered.
// Minus-word exclusion is applied after accumulation and is not gated by
// pred.
func FindCandidates(idx *index.MemoryIndex, q *parser.Query, pred Predicate) []document.Document {
	if q.IsEmpty() {
		return []document.Document{}
	}
	if pred == nil {
		pred = DefaultPredicate
	}
	total := idx.DocCount()
	relevance := make(map[int]float64)
	for term := range q.Plus {
		postings, ok := idx.Postings(term)
		if !ok || len(postings) == 0 {
			continue
		}
		idf := ranker.ComputeIDF(total, len(postings))
		for docID, tf := range postings {
			data, _ := idx.Document(docID)
			if pred(docID, data.Status, data.Rating) {
				relevance[docID] += tf * idf
			}
		}
	}
	for term := range q.Minus {
		postings, ok := idx.Postings(term)
		if !ok {
			continue
		}
		for docID := range postings {
			delete(relevance, docID)
		}
	}
	result := make([]document.Document, 0, len(relevance))
	for docID, rel := range relevance {
		data, _ := idx.Document(docID)
		result = append(result, document.Document{
			ID:        docID,
			Relevance: rel,
			Rating:    data.Rating,
		})
	}
	return result
}

// MatchWords returns the plus-words of q present in docID, sorted, or
// nothing at all if any minus-word is present.
func MatchWords(idx *index.MemoryIndex, q *parser.Query, docID int) []string {
	for _, term := range q.MinusWords() {
		if postings, ok := idx.Postings(term); ok {
			if _, hit := postings[docID]; hit {
				return []string{}
			}
		}
	}
	matched := make([]string, 0, len(q.Plus))
	for _, term := range q.PlusWords() {
		if postings, ok := idx.Postings(term); ok {
			if _, hit := postings[docID]; hit {
				matched = append(matched, term)
			}
		}
	}
	return matched
}
