// Package document defines the values that cross the search server's public
// boundary: the ranked Document, the DocumentStatus tag and the per-document
// data kept by the store.
package document

import (
	"fmt"
	"math"
	"strings"

	apperrors "github.com/Adithya-Monish-Kumar-K/search-server/pkg/errors"
)

// Epsilon is the tolerance under which two relevances are considered equal.
const Epsilon = 1e-6

// Status is an opaque tag attached to every document. The engine gives it no
// ranking meaning; it is only visible to predicates.
type Status int

const (
	Actual Status = iota
	Irrelevant
	Banned
	Removed
)

func (s Status) String() string {
	switch s {
	case Actual:
		return "ACTUAL"
	case Irrelevant:
		return "IRRELEVANT"
	case Banned:
		return "BANNED"
	case Removed:
		return "REMOVED"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ParseStatus is the inverse of String and ignores case.
func ParseStatus(s string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACTUAL":
		return Actual, nil
	case "IRRELEVANT":
		return Irrelevant, nil
	case "BANNED":
		return Banned, nil
	case "REMOVED":
		return Removed, nil
	}
	return 0, apperrors.Newf(apperrors.ErrInvalidArgument, "unknown document status %q", s)
}

func (s *Status) UnmarshalYAML(unmarshal func(any) error) error {
	var raw string
	if err := unmarshal(&raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s Status) MarshalYAML() (any, error) {
	return s.String(), nil
}

// Document is one ranked search result.
type Document struct {
	ID        int     `json:"id"`
	Relevance float64 `json:"relevance"`
	Rating    int     `json:"rating"`
}

// Equal compares id and rating exactly and relevance within Epsilon.
func (d Document) Equal(other Document) bool {
	return d.ID == other.ID && d.Rating == other.Rating && math.Abs(d.Relevance-other.Relevance) < Epsilon
}

func (d Document) String() string {
	return fmt.Sprintf("{ document_id = %d, relevance = %g, rating = %d }", d.ID, d.Relevance, d.Rating)
}

// Data is what the store keeps per document besides its postings.
type Data struct {
	Rating int
	Status Status
}

// AverageRating is the truncating integer mean of ratings, 0 when empty.
func AverageRating(ratings []int) int {
	if len(ratings) == 0 {
		return 0
	}
	sum := 0
	for _, r := range ratings {
		sum += r
	}
	return sum / len(ratings)
}
