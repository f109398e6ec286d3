/*-------------------------------------------------------------------------
 *
 * webhook.go
 *    Webhook notifier for lifecycle events
 *
 * Forwards lifecycle events to a configured HTTP endpoint. Delivery is
 * best effort: failures are logged, never propagated to the pipeline.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/events/webhook.go
 *
 *-------------------------------------------------------------------------
 */

package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
)

/* WebhookNotifier posts lifecycle events to an external endpoint */
type WebhookNotifier struct {
	url        string
	httpClient *http.Client
}

/* NewWebhookNotifier creates a new webhook notifier */
func NewWebhookNotifier(url string, timeout time.Duration) *WebhookNotifier {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &WebhookNotifier{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

/* Enabled reports whether a webhook endpoint is configured */
func (w *WebhookNotifier) Enabled() bool {
	return w.url != ""
}

/* Attach subscribes the notifier to every event on the broker */
func (w *WebhookNotifier) Attach(broker *Broker) {
	if !w.Enabled() {
		return
	}
	broker.SubscribeAll(func(ctx context.Context, event Event) {
		if err := w.post(ctx, event); err != nil {
			metrics.WarnWithContext(ctx, "Webhook notification failed", map[string]interface{}{
				"event_type": string(event.Type),
				"error":      err.Error(),
			})
		}
	})
}

func (w *WebhookNotifier) post(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("webhook payload serialization failed: error=%w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook request creation failed: url='%s', error=%w", w.url, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "KnowledgeDesk/1.0")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: url='%s', error=%w", w.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook request failed: url='%s', status_code=%d", w.url, resp.StatusCode)
	}
	return nil
}
