package tokenizer

import (
	"slices"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// StopWords is an immutable set of words excluded from both indexing and
// querying. The zero value is an empty set.
type StopWords struct {
	words map[string]struct{}
}

// NewStopWords builds a StopWords set from an explicit collection. It fails
// with ErrInvalidArgument if any non-empty word contains a control character.
func NewStopWords(words []string) (StopWords, error) {
	set := UniqueNonEmpty(words)
	for w := range set {
		if !IsValidWord(w) {
			return StopWords{}, apperrors.Newf(apperrors.ErrInvalidArgument, "stop word %q contains a control character", w)
		}
	}
	return StopWords{words: set}, nil
}

// ParseStopWords tokenizes a space-delimited string and builds the set.
func ParseStopWords(text string) (StopWords, error) {
	return NewStopWords(Words(text))
}

func (s StopWords) Contains(word string) bool {
	_, ok := s.words[word]
	return ok
}

func (s StopWords) Len() int {
	return len(s.words)
}

// Words returns the stop words sorted.
func (s StopWords) Words() []string {
	out := make([]string, 0, len(s.words))
	for w := range s.words {
		out = append(out, w)
	}
	slices.Sort(out)
	return out
}
