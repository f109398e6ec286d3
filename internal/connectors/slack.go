/*-------------------------------------------------------------------------
 *
 * slack.go
 *    Slack connector for chat-message delivery
 *
 * Posts an approved chat message through a Slack incoming webhook.
 * Webhooks carry the channel in the URL, so the payload channel is
 * recorded in the result for audit rather than sent to Slack.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/connectors/slack.go
 *
 *-------------------------------------------------------------------------
 */

package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/knowledgedesk/KnowledgeDesk/internal/config"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
)

/* SlackConnector posts messages through a Slack incoming webhook */
type SlackConnector struct {
	webhookURL     string
	defaultChannel string
	httpClient     *http.Client
}

/* NewSlackConnector creates a new Slack connector */
func NewSlackConnector(cfg config.SlackConfig) *SlackConnector {
	return &SlackConnector{
		webhookURL:     cfg.WebhookURL,
		defaultChannel: cfg.DefaultChannel,
		httpClient:     &http.Client{Timeout: 10 * time.Second},
	}
}

/* Type returns the action type this connector handles */
func (c *SlackConnector) Type() db.ActionType {
	return db.ActionTypePostChatMessage
}

/* Service returns the target-service identifier */
func (c *SlackConnector) Service() string {
	return "slack"
}

/* Configured reports whether the connector holds a webhook URL */
func (c *SlackConnector) Configured() bool {
	return c.webhookURL != ""
}

/* Deliver posts one message to the webhook */
func (c *SlackConnector) Deliver(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("slack connector not configured: webhook_url_set=false")
	}

	text := stringField(payload, "description")
	if text == "" {
		return nil, fmt.Errorf("slack message delivery failed: empty message text")
	}

	channel := stringField(payload, "channel")
	if channel == "" {
		channel = c.defaultChannel
	}

	body, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return nil, fmt.Errorf("slack message marshaling failed: error=%w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("slack request creation failed: error=%w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("slack request failed: error=%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("slack webhook returned non-success status: status_code=%d", resp.StatusCode)
	}

	return map[string]interface{}{
		"channel":      channel,
		"delivered_at": time.Now().UTC().Format(time.RFC3339),
	}, nil
}
