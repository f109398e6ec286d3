/*-------------------------------------------------------------------------
 *
 * executor.go
 *    Approved action execution
 *
 * Delivers one approved action through its connector. Exactly one
 * delivery attempt is made per approval; the outcome is recorded on
 * the action row and never retried automatically.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/actions/executor.go
 *
 *-------------------------------------------------------------------------
 */

package actions

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/knowledgedesk/KnowledgeDesk/internal/connectors"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
	"github.com/knowledgedesk/KnowledgeDesk/internal/events"
	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
	"github.com/knowledgedesk/KnowledgeDesk/internal/reliability"
)

/* ExecStore records execution outcomes */
type ExecStore interface {
	MarkActionExecuted(ctx context.Context, id uuid.UUID, result db.JSONBMap) error
	MarkActionExecutionFailed(ctx context.Context, id uuid.UUID, errorMessage string) error
}

/* Executor delivers approved actions through registered connectors */
type Executor struct {
	store    ExecStore
	registry *connectors.Registry
	broker   *events.Broker
	breakers map[string]*reliability.CircuitBreaker
}

/* NewExecutor creates a new action executor */
func NewExecutor(store ExecStore, registry *connectors.Registry, broker *events.Broker) *Executor {
	breakers := make(map[string]*reliability.CircuitBreaker)
	for _, c := range registry.List() {
		breakers[c.Service()] = reliability.NewCircuitBreaker(c.Service(), 5, 30*time.Second)
	}
	return &Executor{
		store:    store,
		registry: registry,
		broker:   broker,
		breakers: breakers,
	}
}

/* Execute delivers one approved action. The action must already be in
 * status approved; the outcome transitions it to executed or
 * execution_failed. The returned error reflects delivery failure, not a
 * pipeline fault: the failure is already recorded on the action row. */
func (e *Executor) Execute(ctx context.Context, action *db.PendingAction) error {
	connector, err := e.registry.Get(action.ActionType)
	if err != nil {
		return e.recordFailure(ctx, action, time.Duration(0), err)
	}

	start := time.Now()
	var result map[string]interface{}
	deliver := func() error {
		var deliverErr error
		result, deliverErr = connector.Deliver(ctx, action.Payload.ToMap())
		return deliverErr
	}

	if breaker, ok := e.breakers[connector.Service()]; ok {
		err = breaker.Execute(ctx, deliver)
	} else {
		err = deliver()
	}
	elapsed := time.Since(start)

	if err != nil {
		metrics.RecordActionExecution(connector.Service(), "error", elapsed)
		return e.recordFailure(ctx, action, elapsed, err)
	}

	if markErr := e.store.MarkActionExecuted(ctx, action.ID, db.FromMap(result)); markErr != nil {
		return markErr
	}
	action.Status = db.ActionStatusExecuted
	action.Result = db.FromMap(result)

	metrics.RecordActionExecution(connector.Service(), "success", elapsed)
	metrics.InfoWithContext(ctx, "Action executed", map[string]interface{}{
		"action_id":      action.ID.String(),
		"target_service": connector.Service(),
		"duration_ms":    elapsed.Milliseconds(),
	})
	e.broker.Publish(ctx, events.EventTypeActionExecuted, map[string]interface{}{
		"request_id":     action.RequestID.String(),
		"action_id":      action.ID.String(),
		"target_service": connector.Service(),
	})
	return nil
}

func (e *Executor) recordFailure(ctx context.Context, action *db.PendingAction, elapsed time.Duration, cause error) error {
	metrics.ErrorWithContext(ctx, "Action execution failed", cause, map[string]interface{}{
		"action_id":      action.ID.String(),
		"target_service": action.TargetService,
		"duration_ms":    elapsed.Milliseconds(),
	})

	if markErr := e.store.MarkActionExecutionFailed(ctx, action.ID, cause.Error()); markErr != nil {
		return markErr
	}
	action.Status = db.ActionStatusExecutionFailed
	message := cause.Error()
	action.ErrorMessage = &message

	e.broker.Publish(ctx, events.EventTypeActionExecutionFailed, map[string]interface{}{
		"request_id":     action.RequestID.String(),
		"action_id":      action.ID.String(),
		"target_service": action.TargetService,
		"error":          cause.Error(),
	})
	return cause
}
