/*-------------------------------------------------------------------------
 *
 * jira.go
 *    Jira connector for ticket creation
 *
 * Creates an issue through the Jira Cloud REST API using basic
 * authentication. The issue description uses the Atlassian document
 * format required by the v3 API.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/connectors/jira.go
 *
 *-------------------------------------------------------------------------
 */

package connectors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/knowledgedesk/KnowledgeDesk/internal/config"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
)

/* JiraConnector creates Jira issues for approved ticket actions */
type JiraConnector struct {
	baseURL    string
	projectKey string
	username   string
	apiToken   string
	httpClient *http.Client
}

/* NewJiraConnector creates a new Jira connector */
func NewJiraConnector(cfg config.JiraConfig) *JiraConnector {
	return &JiraConnector{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		projectKey: cfg.ProjectKey,
		username:   cfg.Username,
		apiToken:   cfg.APIToken,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

/* Type returns the action type this connector handles */
func (c *JiraConnector) Type() db.ActionType {
	return db.ActionTypeCreateTicket
}

/* Service returns the target-service identifier */
func (c *JiraConnector) Service() string {
	return "jira"
}

/* Configured reports whether the connector holds credentials to deliver */
func (c *JiraConnector) Configured() bool {
	return c.baseURL != "" && c.projectKey != "" && c.username != "" && c.apiToken != ""
}

/* Deliver creates one Jira issue from the action payload */
func (c *JiraConnector) Deliver(ctx context.Context, payload map[string]interface{}) (map[string]interface{}, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("jira connector not configured: base_url_set=%t, credentials_set=%t",
			c.baseURL != "", c.username != "" && c.apiToken != "")
	}

	description := stringField(payload, "description")
	summary := description
	if runes := []rune(summary); len(runes) > 80 {
		summary = string(runes[:80])
	}
	if summary == "" {
		summary = "Ticket drafted from user request"
	}

	issue := map[string]interface{}{
		"fields": map[string]interface{}{
			"project":   map[string]interface{}{"key": c.projectKey},
			"issuetype": map[string]interface{}{"name": "Task"},
			"summary":   summary,
			"description": map[string]interface{}{
				"type":    "doc",
				"version": 1,
				"content": []interface{}{
					map[string]interface{}{
						"type": "paragraph",
						"content": []interface{}{
							map[string]interface{}{"type": "text", "text": description},
						},
					},
				},
			},
		},
	}

	body, err := json.Marshal(issue)
	if err != nil {
		return nil, fmt.Errorf("jira issue marshaling failed: project='%s', error=%w", c.projectKey, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rest/api/3/issue", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("jira request creation failed: base_url='%s', error=%w", c.baseURL, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.username, c.apiToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("jira request failed: base_url='%s', error=%w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("jira issue creation failed: project='%s', status_code=%d, detail='%s'",
			c.projectKey, resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	var created struct {
		ID   string `json:"id"`
		Key  string `json:"key"`
		Self string `json:"self"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, fmt.Errorf("jira response parsing failed: project='%s', error=%w", c.projectKey, err)
	}

	return map[string]interface{}{
		"issue_id":  created.ID,
		"issue_key": created.Key,
		"issue_url": created.Self,
	}, nil
}
