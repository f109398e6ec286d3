/*-------------------------------------------------------------------------
 *
 * gate.go
 *    Approval gate for pending actions
 *
 * Applies approve/reject decisions with a compare-and-swap on the
 * pending status, so concurrent decisions on the same action resolve
 * to exactly one winner. Approval triggers exactly one synchronous
 * execution; rejection touches no connector.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/actions/gate.go
 *
 *-------------------------------------------------------------------------
 */

package actions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
	"github.com/knowledgedesk/KnowledgeDesk/internal/events"
	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
)

/* GateStore persists approval decisions */
type GateStore interface {
	GetPendingActionByID(ctx context.Context, id uuid.UUID) (*db.PendingAction, error)
	DecidePendingAction(ctx context.Context, id uuid.UUID, status db.ActionStatus, actor string) error
}

/* ActionExecutor delivers an approved action */
type ActionExecutor interface {
	Execute(ctx context.Context, action *db.PendingAction) error
}

/* Gate decides pending actions and triggers execution on approval */
type Gate struct {
	store    GateStore
	executor ActionExecutor
	broker   *events.Broker
}

/* NewGate creates a new approval gate */
func NewGate(store GateStore, executor ActionExecutor, broker *events.Broker) *Gate {
	return &Gate{
		store:    store,
		executor: executor,
		broker:   broker,
	}
}

/* Decide applies one approve/reject decision. The decision wins the pending
 * status or fails with db.ErrAlreadyDecided; it never re-executes an action.
 * The returned action reflects the post-decision state, including the
 * execution outcome when the decision was an approval. */
func (g *Gate) Decide(ctx context.Context, actionID uuid.UUID, approved bool, actor string) (*db.PendingAction, error) {
	if actor == "" {
		return nil, fmt.Errorf("decision rejected: missing actor signature, action_id=%s", actionID)
	}

	status := db.ActionStatusRejected
	decision := "rejected"
	if approved {
		status = db.ActionStatusApproved
		decision = "approved"
	}

	if err := g.store.DecidePendingAction(ctx, actionID, status, actor); err != nil {
		return nil, err
	}
	metrics.RecordActionDecision(decision)

	action, err := g.store.GetPendingActionByID(ctx, actionID)
	if err != nil {
		return nil, err
	}

	metrics.InfoWithContext(ctx, "Pending action decided", map[string]interface{}{
		"action_id": actionID.String(),
		"decision":  decision,
		"actor":     actor,
	})

	if !approved {
		g.broker.Publish(ctx, events.EventTypeActionRejected, map[string]interface{}{
			"request_id": action.RequestID.String(),
			"action_id":  actionID.String(),
			"actor":      actor,
		})
		return action, nil
	}

	g.broker.Publish(ctx, events.EventTypeActionApproved, map[string]interface{}{
		"request_id": action.RequestID.String(),
		"action_id":  actionID.String(),
		"actor":      actor,
	})

	/* Execution failure is recorded on the action row; the decision itself
	 * already succeeded, so it is not surfaced as a gate error. */
	if err := g.executor.Execute(ctx, action); err != nil {
		metrics.ErrorWithContext(ctx, "Action execution after approval failed", err, map[string]interface{}{
			"action_id": actionID.String(),
			"actor":     actor,
		})
	}

	return action, nil
}
