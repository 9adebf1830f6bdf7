// Package tokenizer splits raw text into space-delimited words, validates
// them, and holds the immutable stop-word set shared by indexing and query
// parsing.
//
// Unlike a linguistic analyzer it does not lower-case, stem or strip
// punctuation: a word is exactly the bytes between two runs of spaces.
package tokenizer

import (
	"iter"
	"strings"
)

// SplitWords yields the words of text in order, duplicates included. Only
// the space character separates words; empty fragments are skipped.
func SplitWords(text string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for word := range strings.SplitSeq(text, " ") {
			if word == "" {
				continue
			}
			if !yield(word) {
				return
			}
		}
	}
}

// Words collects SplitWords into a slice.
func Words(text string) []string {
	words := make([]string, 0, strings.Count(text, " ")+1)
	for word := range SplitWords(text) {
		words = append(words, word)
	}
	return words
}

// IsValidWord reports whether word is free of control characters (bytes
// 0 through 31). Multi-byte UTF-8 sequences never contain such bytes, so
// non-ASCII words are accepted.
func IsValidWord(word string) bool {
	for i := 0; i < len(word); i++ {
		if word[i] < ' ' {
			return false
		}
	}
	return true
}

// IsValidMinusWord rejects a bare "-" and anything starting with "--".
// Words without a leading dash are always valid here.
func IsValidMinusWord(word string) bool {
	if word == "-" {
		return false
	}
	return !strings.HasPrefix(word, "--")
}

// UniqueNonEmpty reduces words to a set, dropping empty strings.
func UniqueNonEmpty(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}
