// Package resilience guards calls to the optional network backends (Redis,
// Kafka) with a circuit breaker and exponential-backoff retry.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/search-server/pkg/logger"
)

// ErrCircuitOpen is returned by Execute while the backend is considered down.
var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig controls when the breaker trips and how it recovers.
// Zero values take the defaults: 5 failures, 30s, 1 probe.
type CircuitBreakerConfig struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	HalfOpenMaxRequests int
	// OnStateChange runs after every transition, outside the breaker lock.
	OnStateChange func(from, to State)
}

// CircuitBreaker fails fast once a backend has failed FailureThreshold times
// in a row. After ResetTimeout it lets HalfOpenMaxRequests probes through;
// one success closes it again, one failure reopens it.
type CircuitBreaker struct {
	name   string
	cfg    CircuitBreakerConfig
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	probes   int
}

func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.HalfOpenMaxRequests <= 0 {
		cfg.HalfOpenMaxRequests = 1
	}
	return &CircuitBreaker{
		name:   name,
		cfg:    cfg,
		logger: logger.WithComponent("circuit-breaker").With("backend", name),
		now:    time.Now,
	}
}

// Execute runs fn unless the circuit is open, and feeds its result back
// into the breaker.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.acquire(); err != nil {
		return err
	}
	err := fn()
	cb.release(err)
	return err
}

func (cb *CircuitBreaker) acquire() error {
	cb.mu.Lock()
	notify := func() {}
	switch cb.state {
	case StateOpen:
		if wait := cb.cfg.ResetTimeout - cb.now().Sub(cb.openedAt); wait > 0 {
			cb.mu.Unlock()
			return fmt.Errorf("%w: %s (retry in %v)", ErrCircuitOpen, cb.name, wait)
		}
		notify = cb.transition(StateHalfOpen)
		cb.probes++
	case StateHalfOpen:
		if cb.probes >= cb.cfg.HalfOpenMaxRequests {
			cb.mu.Unlock()
			return fmt.Errorf("%w: %s (half-open probe limit reached)", ErrCircuitOpen, cb.name)
		}
		cb.probes++
	}
	cb.mu.Unlock()
	notify()
	return nil
}

func (cb *CircuitBreaker) release(err error) {
	cb.mu.Lock()
	notify := func() {}
	switch {
	case err == nil && cb.state == StateHalfOpen:
		notify = cb.transition(StateClosed)
	case err == nil:
		cb.failures = 0
	case cb.state == StateHalfOpen:
		notify = cb.transition(StateOpen)
	default:
		cb.failures++
		if cb.state == StateClosed && cb.failures >= cb.cfg.FailureThreshold {
			notify = cb.transition(StateOpen)
		}
	}
	cb.mu.Unlock()
	notify()
}

// transition must be called with mu held. The returned func reports the
// change and must be called after mu is released.
func (cb *CircuitBreaker) transition(to State) func() {
	from, failures := cb.state, cb.failures
	cb.state = to
	cb.probes = 0
	switch to {
	case StateOpen:
		cb.openedAt = cb.now()
	case StateClosed:
		cb.failures = 0
	}
	return func() {
		level := slog.LevelInfo
		if to == StateOpen {
			level = slog.LevelWarn
		}
		cb.logger.Log(context.Background(), level, "circuit state changed",
			"from", from.String(),
			"to", to.String(),
			"consecutive_failures", failures,
		)
		if cb.cfg.OnStateChange != nil {
			cb.cfg.OnStateChange(from, to)
		}
	}
}
