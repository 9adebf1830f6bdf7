// Package parser turns raw query text into plus- and minus-word sets.
package parser

import (
	"slices"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/search-server/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Query is a parsed query. Plus and Minus are disjoint only by convention:
// a word given both ways lands in both sets, and the minus side wins when
// documents are matched.
type Query struct {
	Raw   string
	Plus  map[string]struct{}
	Minus map[string]struct{}
}

// Parse splits text into words and sorts each into the plus or minus set.
// A word fails the whole parse with ErrInvalidQuery if it contains a
// control character, is a bare "-", or starts with "--". Stop words are
// dropped from both sets, including negated ones.
func Parse(text string, stopWords tokenizer.StopWords) (*Query, error) {
	q := &Query{
		Raw:   text,
		Plus:  make(map[string]struct{}),
		Minus: make(map[string]struct{}),
	}
	for word := range tokenizer.SplitWords(text) {
		if !tokenizer.IsValidWord(word) || !tokenizer.IsValidMinusWord(word) {
			return nil, apperrors.Newf(apperrors.ErrInvalidQuery, "query %q contains invalid word %q", text, word)
		}
		stem, isMinus := strings.CutPrefix(word, "-")
		if stopWords.Contains(stem) {
			continue
		}
		if isMinus {
			q.Minus[stem] = struct{}{}
		} else {
			q.Plus[stem] = struct{}{}
		}
	}
	return q, nil
}

// PlusWords returns the plus-words sorted.
func (q *Query) PlusWords() []string {
	return sortedKeys(q.Plus)
}

// MinusWords returns the minus-words sorted.
func (q *Query) MinusWords() []string {
	return sortedKeys(q.Minus)
}

// IsEmpty reports whether the query has no plus-words, in which case no
// document can match.
func (q *Query) IsEmpty() bool {
	return len(q.Plus) == 0
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}
