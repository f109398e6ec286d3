/*-------------------------------------------------------------------------
 *
 * recorder.go
 *    Audit trail recorder
 *
 * Subscribes to the lifecycle event broker and appends one audit row
 * per event. Recording is best effort: a failed insert is logged and
 * never blocks the pipeline.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/audit/recorder.go
 *
 *-------------------------------------------------------------------------
 */

package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
	"github.com/knowledgedesk/KnowledgeDesk/internal/events"
	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
)

/* Store persists audit entries */
type Store interface {
	CreateAuditEntry(ctx context.Context, entry *db.AuditEntry) error
}

/* Recorder appends audit rows for lifecycle events */
type Recorder struct {
	store Store
}

/* NewRecorder creates a new audit recorder */
func NewRecorder(store Store) *Recorder {
	return &Recorder{store: store}
}

/* Attach subscribes the recorder to every event on the broker */
func (r *Recorder) Attach(broker *events.Broker) {
	broker.SubscribeAll(func(ctx context.Context, event events.Event) {
		r.record(ctx, event)
	})
}

func (r *Recorder) record(ctx context.Context, event events.Event) {
	entry := &db.AuditEntry{
		EventType: string(event.Type),
		Actor:     stringData(event.Data, "actor"),
		Details:   db.FromMap(event.Data),
	}
	if entry.Actor == "" {
		entry.Actor = "system"
	}
	if id, ok := parseID(event.Data, "request_id"); ok {
		entry.RequestID = &id
	}
	if id, ok := parseID(event.Data, "action_id"); ok {
		entry.ActionID = &id
	}

	if err := r.store.CreateAuditEntry(ctx, entry); err != nil {
		metrics.WarnWithContext(ctx, "Audit entry write failed", map[string]interface{}{
			"event_type": string(event.Type),
			"error":      err.Error(),
		})
	}
}

func stringData(data map[string]interface{}, key string) string {
	if v, ok := data[key].(string); ok {
		return v
	}
	return ""
}

func parseID(data map[string]interface{}, key string) (uuid.UUID, bool) {
	raw := stringData(data, key)
	if raw == "" {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
