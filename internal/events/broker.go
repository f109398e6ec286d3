/*-------------------------------------------------------------------------
 *
 * broker.go
 *    Lifecycle event broker
 *
 * In-process pub/sub for request and action lifecycle events. Handlers
 * run synchronously in publish order; a failing subscriber is logged
 * and never blocks the publishing operation.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/events/broker.go
 *
 *-------------------------------------------------------------------------
 */

package events

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
)

/* EventType identifies a lifecycle event */
type EventType string

const (
	EventTypeQueryReceived         EventType = "query.received"
	EventTypeQueryAnswered         EventType = "query.answered"
	EventTypeQueryFailed           EventType = "query.failed"
	EventTypeActionDrafted         EventType = "action.drafted"
	EventTypeActionApproved        EventType = "action.approved"
	EventTypeActionRejected        EventType = "action.rejected"
	EventTypeActionExecuted        EventType = "action.executed"
	EventTypeActionExecutionFailed EventType = "action.execution_failed"
)

/* Event carries one lifecycle occurrence */
type Event struct {
	ID        uuid.UUID              `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

/* Subscriber receives published events */
type Subscriber func(ctx context.Context, event Event)

/* Broker is an in-process lifecycle event bus */
type Broker struct {
	mu          sync.RWMutex
	subscribers map[EventType][]Subscriber
	all         []Subscriber
}

/* NewBroker creates an empty broker */
func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[EventType][]Subscriber),
	}
}

/* Subscribe registers a handler for one event type */
func (b *Broker) Subscribe(eventType EventType, handler Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

/* SubscribeAll registers a handler for every event type */
func (b *Broker) SubscribeAll(handler Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, handler)
}

/* Publish delivers an event to matching subscribers. Subscriber panics are
 * contained so a misbehaving handler cannot take down the pipeline. */
func (b *Broker) Publish(ctx context.Context, eventType EventType, data map[string]interface{}) {
	event := Event{
		ID:        uuid.New(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}

	b.mu.RLock()
	handlers := make([]Subscriber, 0, len(b.subscribers[eventType])+len(b.all))
	handlers = append(handlers, b.subscribers[eventType]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.deliver(ctx, handler, event)
	}
}

func (b *Broker) deliver(ctx context.Context, handler Subscriber, event Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.WarnWithContext(ctx, "Event subscriber panicked", map[string]interface{}{
				"event_type": string(event.Type),
				"panic":      r,
			})
		}
	}()
	handler(ctx, event)
}
