// Package paginator splits result lists into fixed-size pages for display.
package paginator

import (
	"fmt"
	"strings"
)

// Page is a window into the slice passed to Paginate; it shares storage.
type Page[T any] struct {
	Number int
	Items  []T
}

func (p Page[T]) Len() int {
	return len(p.Items)
}

// String concatenates the items without separators.
func (p Page[T]) String() string {
	var b strings.Builder
	for _, item := range p.Items {
		fmt.Fprint(&b, item)
	}
	return b.String()
}

// Paginate splits items into pages of pageSize; the last page may be
// shorter. A non-positive pageSize yields a single page. No items, no pages.
func Paginate[T any](items []T, pageSize int) []Page[T] {
	if len(items) == 0 {
		return nil
	}
	if pageSize <= 0 || pageSize > len(items) {
		pageSize = len(items)
	}
	pages := make([]Page[T], 0, (len(items)+pageSize-1)/pageSize)
	for start := 0; start < len(items); start += pageSize {
		end := min(start+pageSize, len(items))
		pages = append(pages, Page[T]{
			Number: len(pages) + 1,
			Items:  items[start:end:end],
		})
	}
	return pages
}
