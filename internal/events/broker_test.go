/*-------------------------------------------------------------------------
 *
 * broker_test.go
 *    Tests for the lifecycle event broker
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/events/broker_test.go
 *
 *-------------------------------------------------------------------------
 */

package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerDeliversToMatchingSubscribers(t *testing.T) {
	broker := NewBroker()

	var drafted, all []Event
	broker.Subscribe(EventTypeActionDrafted, func(ctx context.Context, e Event) {
		drafted = append(drafted, e)
	})
	broker.SubscribeAll(func(ctx context.Context, e Event) {
		all = append(all, e)
	})

	broker.Publish(context.Background(), EventTypeActionDrafted, map[string]interface{}{"action_id": "a1"})
	broker.Publish(context.Background(), EventTypeQueryAnswered, map[string]interface{}{"request_id": "r1"})

	require.Len(t, drafted, 1)
	assert.Equal(t, "a1", drafted[0].Data["action_id"])
	assert.Len(t, all, 2)
}

func TestBrokerContainsSubscriberPanic(t *testing.T) {
	broker := NewBroker()

	var reached bool
	broker.Subscribe(EventTypeActionApproved, func(ctx context.Context, e Event) {
		panic("handler exploded")
	})
	broker.Subscribe(EventTypeActionApproved, func(ctx context.Context, e Event) {
		reached = true
	})

	assert.NotPanics(t, func() {
		broker.Publish(context.Background(), EventTypeActionApproved, nil)
	})
	assert.True(t, reached, "later subscribers must still run")
}

func TestWebhookNotifierForwardsEvents(t *testing.T) {
	var got Event
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	broker := NewBroker()
	NewWebhookNotifier(server.URL, time.Second).Attach(broker)

	broker.Publish(context.Background(), EventTypeActionExecuted, map[string]interface{}{"action_id": "a1"})

	assert.Equal(t, EventTypeActionExecuted, got.Type)
	assert.Equal(t, "a1", got.Data["action_id"])
}

func TestWebhookNotifierDisabledWithoutURL(t *testing.T) {
	broker := NewBroker()
	notifier := NewWebhookNotifier("", time.Second)
	assert.False(t, notifier.Enabled())

	/* Attach is a no-op; publishing must not fail */
	notifier.Attach(broker)
	assert.NotPanics(t, func() {
		broker.Publish(context.Background(), EventTypeQueryReceived, nil)
	})
}
