package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
)

// MaxResultDocumentCount caps every FindTopDocuments result.
const MaxResultDocumentCount = 5

// Epsilon is the relevance tolerance below which rating breaks the tie.
const Epsilon = document.Epsilon

// ComputeIDF is ln(totalDocs/docFreq). docFreq must be positive: IDF is only
// defined for words that occur in the index.
func ComputeIDF(totalDocs int, docFreq int) float64 {
	return math.Log(float64(totalDocs) / float64(docFreq))
}

// Rank orders docs by descending relevance, breaking near-ties
// (|Δ| < Epsilon) by descending rating, and keeps the first limit entries.
// limit <= 0 means MaxResultDocumentCount. docs is sorted in place.
func Rank(docs []document.Document, limit int) []document.Document {
	if limit <= 0 {
		limit = MaxResultDocumentCount
	}
	sort.SliceStable(docs, func(i, j int) bool {
		return Less(docs[i], docs[j])
	})
	if len(docs) > limit {
		docs = docs[:limit]
	}
	return docs
}

// Less reports whether a ranks before b.
func Less(a, b document.Document) bool {
	if math.Abs(a.Relevance-b.Relevance) < Epsilon {
		return a.Rating > b.Rating
	}
	return a.Relevance > b.Relevance
}
