/*-------------------------------------------------------------------------
 *
 * circuit_breaker.go
 *    Circuit breaker for outbound collaborator and connector calls
 *
 * Wraps language-model and connector delivery calls. After a run of
 * failures the circuit opens and calls fail fast until the reset
 * timeout elapses, then one probe call decides whether to close.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/reliability/circuit_breaker.go
 *
 *-------------------------------------------------------------------------
 */

package reliability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
)

/* CircuitState represents circuit breaker state */
type CircuitState string

const (
	StateClosed   CircuitState = "closed"
	StateOpen     CircuitState = "open"
	StateHalfOpen CircuitState = "half_open"
)

/* ErrCircuitOpen is wrapped into fail-fast errors; callers match by string key */

/* CircuitBreaker guards one outbound dependency */
type CircuitBreaker struct {
	name         string
	maxFailures  int
	resetTimeout time.Duration
	state        CircuitState
	failureCount int
	lastFailure  time.Time
	mu           sync.Mutex
}

/* NewCircuitBreaker creates a new circuit breaker */
func NewCircuitBreaker(name string, maxFailures int, resetTimeout time.Duration) *CircuitBreaker {
	if maxFailures <= 0 {
		maxFailures = 5
	}
	if resetTimeout <= 0 {
		resetTimeout = 30 * time.Second
	}
	return &CircuitBreaker{
		name:         name,
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		state:        StateClosed,
	}
}

/* Execute runs fn under circuit protection */
func (cb *CircuitBreaker) Execute(ctx context.Context, fn func() error) error {
	cb.mu.Lock()
	if cb.state == StateOpen {
		if time.Since(cb.lastFailure) >= cb.resetTimeout {
			cb.transition(ctx, StateHalfOpen)
			cb.failureCount = 0
		} else {
			cb.mu.Unlock()
			return fmt.Errorf("circuit breaker open: service='%s'", cb.name)
		}
	}
	cb.mu.Unlock()

	err := fn()

	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failureCount++
		cb.lastFailure = time.Now()
		if cb.state == StateHalfOpen || cb.failureCount >= cb.maxFailures {
			cb.transition(ctx, StateOpen)
		}
		return err
	}

	if cb.state == StateHalfOpen {
		cb.transition(ctx, StateClosed)
	}
	cb.failureCount = 0
	return nil
}

/* State returns the current circuit state */
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

/* transition changes state; caller holds the lock */
func (cb *CircuitBreaker) transition(ctx context.Context, to CircuitState) {
	if cb.state == to {
		return
	}
	from := cb.state
	cb.state = to
	metrics.InfoWithContext(ctx, "Circuit breaker state changed", map[string]interface{}{
		"circuit": cb.name,
		"from":    string(from),
		"to":      string(to),
	})
}
