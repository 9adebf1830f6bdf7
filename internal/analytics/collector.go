// Package analytics exports request-queue events to Kafka and aggregates
// them back into query statistics.
package analytics

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, event kafka.Event) error
}

// Collector buffers events and publishes them from a single goroutine.
// Record never blocks: when the buffer is full the event is dropped.
type Collector struct {
	publisher Publisher
	eventCh   chan RequestEvent
	retry     resilience.RetryConfig
	logger    *slog.Logger
	done      chan struct{}
	started   atomic.Bool
	published atomic.Int64
	dropped   atomic.Int64
	failed    atomic.Int64
}

func NewCollector(publisher Publisher, bufferSize int) *Collector {
	if bufferSize <= 0 {
		bufferSize = 10000
	}
	return &Collector{
		publisher: publisher,
		eventCh:   make(chan RequestEvent, bufferSize),
		retry:     resilience.RetryConfig{MaxAttempts: 3},
		logger:    slog.Default().With("component", "analytics-collector"),
		done:      make(chan struct{}),
	}
}

// Start launches the publish loop. It stops when ctx is cancelled or Close
// is called, publishing whatever is still buffered.
func (c *Collector) Start(ctx context.Context) {
	c.started.Store(true)
	go func() {
		defer close(c.done)
		for {
			select {
			case event, ok := <-c.eventCh:
				if !ok {
					return
				}
				c.publish(ctx, event)
			case <-ctx.Done():
				c.drainRemaining()
				return
			}
		}
	}()
	c.logger.Info("analytics collector started", "buffer_size", cap(c.eventCh))
}

func (c *Collector) Record(event RequestEvent) {
	select {
	case c.eventCh <- event:
	default:
		c.dropped.Add(1)
		c.logger.Warn("analytics event dropped (buffer full)", "tick", event.Tick)
	}
}

// Close stops accepting events and waits for the buffer to be flushed,
// including events recorded after the Start context was cancelled.
// Record must not be called after Close.
func (c *Collector) Close() {
	close(c.eventCh)
	if c.started.Load() {
		<-c.done
	}
	c.drainRemaining()
	c.logger.Info("analytics collector stopped",
		"published", c.published.Load(),
		"dropped", c.dropped.Load(),
		"failed", c.failed.Load(),
	)
}

func (c *Collector) Stats() (published, dropped, failed int64) {
	return c.published.Load(), c.dropped.Load(), c.failed.Load()
}

func (c *Collector) publish(ctx context.Context, event RequestEvent) {
	err := resilience.Retry(ctx, "publish-request-event", c.retry, func() error {
		return c.publisher.Publish(ctx, kafka.Event{Key: event.ID, Value: event})
	})
	if err != nil {
		c.failed.Add(1)
		c.logger.Error("failed to publish request event", "event_id", event.ID, "error", err)
		return
	}
	c.published.Add(1)
}

func (c *Collector) drainRemaining() {
	ctx := context.Background()
	for {
		select {
		case event, ok := <-c.eventCh:
			if !ok {
				return
			}
			c.publish(ctx, event)
		default:
			return
		}
	}
}
