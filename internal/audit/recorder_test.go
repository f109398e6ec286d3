/*-------------------------------------------------------------------------
 *
 * recorder_test.go
 *    Tests for the audit trail recorder
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/audit/recorder_test.go
 *
 *-------------------------------------------------------------------------
 */

package audit

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
	"github.com/knowledgedesk/KnowledgeDesk/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	entries []db.AuditEntry
	err     error
}

func (f *fakeStore) CreateAuditEntry(ctx context.Context, entry *db.AuditEntry) error {
	if f.err != nil {
		return f.err
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func TestRecorderWritesOneRowPerEvent(t *testing.T) {
	store := &fakeStore{}
	broker := events.NewBroker()
	NewRecorder(store).Attach(broker)

	requestID := uuid.New()
	actionID := uuid.New()
	broker.Publish(context.Background(), events.EventTypeActionApproved, map[string]interface{}{
		"request_id": requestID.String(),
		"action_id":  actionID.String(),
		"actor":      "alice@example.com",
	})

	require.Len(t, store.entries, 1)
	entry := store.entries[0]
	assert.Equal(t, "action.approved", entry.EventType)
	assert.Equal(t, "alice@example.com", entry.Actor)
	require.NotNil(t, entry.RequestID)
	assert.Equal(t, requestID, *entry.RequestID)
	require.NotNil(t, entry.ActionID)
	assert.Equal(t, actionID, *entry.ActionID)
}

func TestRecorderDefaultsActorToSystem(t *testing.T) {
	store := &fakeStore{}
	broker := events.NewBroker()
	NewRecorder(store).Attach(broker)

	broker.Publish(context.Background(), events.EventTypeQueryReceived, map[string]interface{}{
		"request_id": uuid.New().String(),
	})

	require.Len(t, store.entries, 1)
	assert.Equal(t, "system", store.entries[0].Actor)
}

func TestRecorderToleratesStoreFailure(t *testing.T) {
	store := &fakeStore{err: fmt.Errorf("connection reset")}
	broker := events.NewBroker()
	NewRecorder(store).Attach(broker)

	assert.NotPanics(t, func() {
		broker.Publish(context.Background(), events.EventTypeQueryAnswered, nil)
	})
}
