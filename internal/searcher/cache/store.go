package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/metrics"
	pkgredis "github.com/Adithya-Monish-Kumar-K/search-server/pkg/redis"
	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/resilience"
)

// Store holds encoded result lists. Get reports found=false for a missing
// or expired key; an error means the backend itself failed.
type Store interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Purge(ctx context.Context) error
}

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore is a process-local Store. Expired entries are dropped on read.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		delete(s.entries, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := memoryEntry{value: value}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Purge(_ context.Context) error {
	s.mu.Lock()
	clear(s.entries)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// RedisClient is the part of *pkgredis.Client the store uses.
type RedisClient interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

// RedisStore keeps entries in Redis under keyPrefix. Every call goes through
// a circuit breaker so an unreachable Redis fails fast; the breaker state is
// exported as cache_redis_circuit_state when m is non-nil.
type RedisStore struct {
	client  RedisClient
	breaker *resilience.CircuitBreaker
}

func NewRedisStore(client RedisClient, m *metrics.Metrics) *RedisStore {
	cfg := resilience.CircuitBreakerConfig{
		FailureThreshold: 5,
		ResetTimeout:     10 * time.Second,
	}
	if m != nil {
		m.CacheCircuitState.Set(float64(resilience.StateClosed))
		cfg.OnStateChange = func(_, to resilience.State) {
			m.CacheCircuitState.Set(float64(to))
		}
	}
	return &RedisStore{
		client:  client,
		breaker: resilience.NewCircuitBreaker("query-cache-redis", cfg),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := s.breaker.Execute(func() error {
		v, err := s.client.Get(ctx, key)
		if err != nil {
			if pkgredis.IsNilError(err) {
				return nil
			}
			return err
		}
		value, found = v, true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, found, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := s.breaker.Execute(func() error {
		return s.client.Set(ctx, key, value, ttl)
	})
	if err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// Purge deletes every key under keyPrefix.
func (s *RedisStore) Purge(ctx context.Context) error {
	return s.breaker.Execute(func() error {
		_, err := s.client.FlushByPattern(ctx, keyPrefix+"*")
		return err
	})
}
