/*-------------------------------------------------------------------------
 *
 * drafter.go
 *    Side-effecting action drafting
 *
 * Turns a classified side-effecting intent into a durable pending
 * action. Drafting never performs the side effect; it persists the
 * payload in status pending and leaves execution to the approval gate.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/actions/drafter.go
 *
 *-------------------------------------------------------------------------
 */

package actions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/knowledgedesk/KnowledgeDesk/internal/classifier"
	"github.com/knowledgedesk/KnowledgeDesk/internal/connectors"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
	"github.com/knowledgedesk/KnowledgeDesk/internal/events"
	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
)

/* defaultPriority labels drafted payloads until a triage step assigns one */
const defaultPriority = "medium"

/* DraftStore persists pending actions */
type DraftStore interface {
	CreatePendingAction(ctx context.Context, action *db.PendingAction) error
}

/* Drafter creates pending actions from side-effecting intents */
type Drafter struct {
	store    DraftStore
	registry *connectors.Registry
	broker   *events.Broker
}

/* NewDrafter creates a new action drafter */
func NewDrafter(store DraftStore, registry *connectors.Registry, broker *events.Broker) *Drafter {
	return &Drafter{
		store:    store,
		registry: registry,
		broker:   broker,
	}
}

/* Draft persists one pending action for a side-effecting intent. The
 * returned action is in status pending and has performed no side effect. */
func (d *Drafter) Draft(ctx context.Context, requestID uuid.UUID, intent classifier.Intent, query string) (*db.PendingAction, error) {
	actionType, payload, err := buildDraft(intent, query)
	if err != nil {
		return nil, err
	}

	targetService := string(actionType)
	if connector, regErr := d.registry.Get(actionType); regErr == nil {
		targetService = connector.Service()
	}

	action := &db.PendingAction{
		RequestID:     requestID,
		ActionType:    actionType,
		TargetService: targetService,
		Payload:       db.FromMap(payload),
		Status:        db.ActionStatusPending,
	}
	if err := d.store.CreatePendingAction(ctx, action); err != nil {
		return nil, fmt.Errorf("action drafting failed: request_id=%s, action_type='%s', error=%w",
			requestID, actionType, err)
	}

	metrics.RecordActionDrafted(string(actionType))
	metrics.InfoWithContext(ctx, "Pending action drafted", map[string]interface{}{
		"action_id":      action.ID.String(),
		"action_type":    string(actionType),
		"target_service": targetService,
	})
	d.broker.Publish(ctx, events.EventTypeActionDrafted, map[string]interface{}{
		"request_id":     requestID.String(),
		"action_id":      action.ID.String(),
		"action_type":    string(actionType),
		"target_service": targetService,
	})

	return action, nil
}

/* buildDraft maps an intent to its action type and payload */
func buildDraft(intent classifier.Intent, query string) (db.ActionType, map[string]interface{}, error) {
	switch intent {
	case classifier.IntentCreateTicket:
		return db.ActionTypeCreateTicket, map[string]interface{}{
			"description": query,
			"priority":    defaultPriority,
		}, nil
	case classifier.IntentSendEmail:
		return db.ActionTypeSendEmail, map[string]interface{}{
			"description": query,
			"recipient":   "",
			"priority":    defaultPriority,
		}, nil
	case classifier.IntentPostChatMessage:
		return db.ActionTypePostChatMessage, map[string]interface{}{
			"description": query,
			"channel":     "",
			"priority":    defaultPriority,
		}, nil
	default:
		return "", nil, fmt.Errorf("intent is not side-effecting: intent='%s'", intent)
	}
}

/* Summary returns the confirmation text shown to the requesting user */
func Summary(action *db.PendingAction) string {
	switch action.ActionType {
	case db.ActionTypeCreateTicket:
		return fmt.Sprintf("I have prepared a ticket for '%s'. It is awaiting approval (action %s).",
			describe(action), action.ID)
	case db.ActionTypeSendEmail:
		return fmt.Sprintf("I have prepared an email alert for '%s'. It is awaiting approval (action %s).",
			describe(action), action.ID)
	case db.ActionTypePostChatMessage:
		return fmt.Sprintf("I have prepared a chat message for '%s'. It is awaiting approval (action %s).",
			describe(action), action.ID)
	default:
		return fmt.Sprintf("I have prepared an action. It is awaiting approval (action %s).", action.ID)
	}
}

func describe(action *db.PendingAction) string {
	description, _ := action.Payload["description"].(string)
	if runes := []rune(description); len(runes) > 60 {
		description = string(runes[:60]) + "..."
	}
	return description
}
