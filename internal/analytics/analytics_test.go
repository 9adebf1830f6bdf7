package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/kafka"
)

type memoryPublisher struct {
	mu       sync.Mutex
	events   []kafka.Event
	failures int
}

func (p *memoryPublisher) Publish(_ context.Context, e kafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failures > 0 {
		p.failures--
		return errors.New("transient")
	}
	p.events = append(p.events, e)
	return nil
}

func (p *memoryPublisher) published() []kafka.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]kafka.Event(nil), p.events...)
}

func TestNewRequestEvent(t *testing.T) {
	a := NewRequestEvent("curly cat", 7, 2)
	b := NewRequestEvent("parrot", 8, 0)

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, EventSearch, a.Type)
	assert.False(t, a.ZeroResult)
	assert.Equal(t, EventZeroResult, b.Type)
	assert.True(t, b.ZeroResult)
	assert.WithinDuration(t, time.Now(), a.Timestamp, time.Minute)
}

func TestCollectorPublishesEachEventOnce(t *testing.T) {
	pub := &memoryPublisher{}
	c := NewCollector(pub, 16)
	c.Start(context.Background())

	for i := 1; i <= 5; i++ {
		c.Record(NewRequestEvent("q", i, i%2))
	}
	c.Close()

	events := pub.published()
	require.Len(t, events, 5)
	ids := make(map[string]struct{})
	for i, e := range events {
		ev, ok := e.Value.(RequestEvent)
		require.True(t, ok)
		assert.Equal(t, i+1, ev.Tick)
		assert.Equal(t, ev.ID, e.Key)
		ids[ev.ID] = struct{}{}
	}
	assert.Len(t, ids, 5)

	published, dropped, failed := c.Stats()
	assert.Equal(t, int64(5), published)
	assert.Zero(t, dropped)
	assert.Zero(t, failed)
}

func TestCollectorRetriesTransientFailures(t *testing.T) {
	pub := &memoryPublisher{failures: 1}
	c := NewCollector(pub, 4)
	c.retry.InitialDelay = time.Millisecond
	c.Start(context.Background())

	c.Record(NewRequestEvent("q", 1, 0))
	c.Close()

	assert.Len(t, pub.published(), 1)
}

func TestCollectorDropsWhenFull(t *testing.T) {
	pub := &memoryPublisher{}
	c := NewCollector(pub, 2)

	for i := 0; i < 5; i++ {
		c.Record(NewRequestEvent("q", i, 1))
	}
	c.Close()

	published, dropped, _ := c.Stats()
	assert.Equal(t, int64(2), published)
	assert.Equal(t, int64(3), dropped)
}

func TestCollectorDrainsOnCancel(t *testing.T) {
	pub := &memoryPublisher{}
	c := NewCollector(pub, 8)
	for i := 0; i < 3; i++ {
		c.Record(NewRequestEvent("q", i, 1))
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Start(ctx)
	c.Close()

	assert.Len(t, pub.published(), 3)
}

func TestCollectorPublishesEventsRecordedAfterCancel(t *testing.T) {
	pub := &memoryPublisher{}
	c := NewCollector(pub, 8)
	ctx, cancel := context.WithCancel(context.Background())
	c.Start(ctx)
	cancel()
	time.Sleep(20 * time.Millisecond)

	c.Record(NewRequestEvent("late", 1, 0))
	c.Close()

	published, dropped, failed := c.Stats()
	assert.Equal(t, int64(1), published)
	assert.Zero(t, dropped)
	assert.Zero(t, failed)
	require.Len(t, pub.published(), 1)
}

func TestAggregator(t *testing.T) {
	agg := NewAggregator(2)
	events := []RequestEvent{
		NewRequestEvent("cat", 1, 2),
		NewRequestEvent("empty request", 2, 0),
		NewRequestEvent("empty request", 3, 0),
		NewRequestEvent("dog", 4, 1),
		NewRequestEvent("cat", 5, 3),
	}
	for _, e := range events {
		agg.Record(e)
	}
	agg.Record(events[0])

	stats := agg.Stats()
	assert.Equal(t, int64(5), stats.TotalRequests)
	assert.Equal(t, int64(2), stats.ZeroResultCount)
	assert.Equal(t, 5, stats.LastTick)
	assert.Equal(t, []QueryCount{{"cat", 2}, {"empty request", 2}}, stats.TopQueries)
	assert.Equal(t, []QueryCount{{"empty request", 2}}, stats.ZeroResultQueries)
}

func TestHandleEvent(t *testing.T) {
	agg := NewAggregator(0)
	handle := HandleEvent(agg)

	data, err := json.Marshal(NewRequestEvent("sparrow", 9, 0))
	require.NoError(t, err)
	require.NoError(t, handle(context.Background(), nil, data))
	require.NoError(t, handle(context.Background(), nil, []byte("not json")))

	stats := agg.Stats()
	assert.Equal(t, int64(1), stats.TotalRequests)
	assert.Equal(t, 9, stats.LastTick)
	assert.Equal(t, []QueryCount{{"sparrow", 1}}, stats.ZeroResultQueries)
}
