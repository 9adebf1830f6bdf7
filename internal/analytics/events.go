package analytics

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventSearch     EventType = "search"
	EventZeroResult EventType = "zero_result"
)

// RequestEvent describes one search recorded by the request queue.
type RequestEvent struct {
	ID         string    `json:"id"`
	Type       EventType `json:"type"`
	Query      string    `json:"query"`
	Tick       int       `json:"tick"`
	Results    int       `json:"results"`
	ZeroResult bool      `json:"zero_result"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewRequestEvent(query string, tick, results int) RequestEvent {
	typ := EventSearch
	if results == 0 {
		typ = EventZeroResult
	}
	return RequestEvent{
		ID:         uuid.NewString(),
		Type:       typ,
		Query:      query,
		Tick:       tick,
		Results:    results,
		ZeroResult: results == 0,
		Timestamp:  time.Now().UTC(),
	}
}
