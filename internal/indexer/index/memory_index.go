// Package index holds the inverted index and the document store: for every
// indexed word, the documents containing it with their term frequency, and
// for every document, its rating, status and insertion position.
package index

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/document"
)

// MemoryIndex is not safe for concurrent mutation. The owning server
// serializes Insert against every reader.
type MemoryIndex struct {
	index    map[string]map[int]float64
	docs     map[int]document.Data
	docFreqs map[int]map[string]float64
	order    []int
	size     int64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		index:    make(map[string]map[int]float64),
		docs:     make(map[int]document.Data),
		docFreqs: make(map[int]map[string]float64),
	}
}

// Insert stores a document whose id and words have already been validated.
// Each occurrence of a word adds 1/len(words) to its term frequency, so a
// document's frequencies sum to 1. A document with no words is stored
// without postings.
func (m *MemoryIndex) Insert(docID int, words []string, data document.Data) {
	freqs := make(map[string]float64)
	if len(words) > 0 {
		inv := 1.0 / float64(len(words))
		for _, word := range words {
			freqs[word] += inv
		}
	}
	for term, tf := range freqs {
		postings, exists := m.index[term]
		if !exists {
			postings = make(map[int]float64)
			m.index[term] = postings
			m.size += int64(len(term) + 48)
		}
		postings[docID] = tf
		m.size += 16
	}
	m.docs[docID] = data
	m.docFreqs[docID] = freqs
	m.order = append(m.order, docID)
	m.size += 64
}

func (m *MemoryIndex) Contains(docID int) bool {
	_, ok := m.docs[docID]
	return ok
}

func (m *MemoryIndex) Document(docID int) (document.Data, bool) {
	d, ok := m.docs[docID]
	return d, ok
}

func (m *MemoryIndex) DocCount() int {
	return len(m.docs)
}

// IDAt returns the id inserted at the given 0-based position.
func (m *MemoryIndex) IDAt(ordinal int) (int, bool) {
	if ordinal < 0 || ordinal >= len(m.order) {
		return 0, false
	}
	return m.order[ordinal], true
}

// Postings returns the live posting map for term. Callers must not modify it.
func (m *MemoryIndex) Postings(term string) (map[int]float64, bool) {
	postings, ok := m.index[term]
	return postings, ok
}

// DocFreq is the number of documents containing term.
func (m *MemoryIndex) DocFreq(term string) int {
	return len(m.index[term])
}

// Search returns term's postings as a list ordered by DocID.
func (m *MemoryIndex) Search(term string) PostingList {
	docs, exists := m.index[term]
	if !exists {
		return nil
	}
	result := make(PostingList, 0, len(docs))
	for docID, tf := range docs {
		result = append(result, Posting{DocID: docID, Frequency: tf})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DocID < result[j].DocID
	})
	return result
}

// WordFrequencies returns a copy of docID's term frequencies, empty for an
// unknown id.
func (m *MemoryIndex) WordFrequencies(docID int) map[string]float64 {
	freqs := m.docFreqs[docID]
	out := make(map[string]float64, len(freqs))
	for term, tf := range freqs {
		out[term] = tf
	}
	return out
}

// Snapshot lists every term with its postings, both sorted.
func (m *MemoryIndex) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(m.index))
	for term := range m.index {
		entries = append(entries, TermEntry{
			Term:     term,
			Postings: m.Search(term),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Term < entries[j].Term
	})
	return entries
}

// Size is a rough estimate of the index's memory footprint in bytes.
func (m *MemoryIndex) Size() int64 {
	return m.size
}
