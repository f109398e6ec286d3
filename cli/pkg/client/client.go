/*-------------------------------------------------------------------------
 *
 * client.go
 *    HTTP client for the KnowledgeDesk API
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/cli/pkg/client/client.go
 *
 *-------------------------------------------------------------------------
 */

package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Citation struct {
	DocID          string  `json:"doc_id"`
	Page           *int    `json:"page,omitempty"`
	Text           string  `json:"text"`
	RelevanceScore float64 `json:"relevance_score"`
}

type Action struct {
	ID            string                 `json:"id"`
	RequestID     string                 `json:"request_id"`
	ActionType    string                 `json:"action_type"`
	TargetService string                 `json:"target_service"`
	Payload       map[string]interface{} `json:"payload"`
	Status        string                 `json:"status"`
	Result        map[string]interface{} `json:"result,omitempty"`
	ErrorMessage  *string                `json:"error_message,omitempty"`
	CreatedAt     string                 `json:"created_at"`
	ApprovedBy    *string                `json:"approved_by,omitempty"`
}

type QueryResult struct {
	Status         string     `json:"status"`
	RequestID      string     `json:"request_id"`
	Intent         string     `json:"intent"`
	Summary        string     `json:"summary"`
	Citations      []Citation `json:"citations"`
	PendingActions []string   `json:"pending_actions"`
	Action         *Action    `json:"action,omitempty"`
}

type DecideResult struct {
	Status string `json:"status"`
	Action Action `json:"action"`
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

func (c *Client) SubmitQuery(userID, query string) (*QueryResult, error) {
	body, err := json.Marshal(map[string]string{
		"user_id": userID,
		"query":   query,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.makeRequest("POST", "/api/v1/query", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result QueryResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

func (c *Client) ListPendingActions(limit int) ([]Action, error) {
	resp, err := c.makeRequest("GET", fmt.Sprintf("/api/v1/actions?limit=%d", limit), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result []Action
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return result, nil
}

func (c *Client) GetAction(actionID string) (*Action, error) {
	resp, err := c.makeRequest("GET", "/api/v1/actions/"+actionID, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result Action
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

func (c *Client) DecideAction(actionID string, approved bool, signature string) (*DecideResult, error) {
	body, err := json.Marshal(map[string]interface{}{
		"approved":       approved,
		"user_signature": signature,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := c.makeRequest("POST", "/api/v1/actions/"+actionID+"/decide", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var result DecideResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

func (c *Client) makeRequest(method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequest(method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(detail))
	}
	return resp, nil
}
