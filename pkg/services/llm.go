/*-------------------------------------------------------------------------
 *
 * llm.go
 *    Language-model provider client
 *
 * Client for an OpenAI-compatible chat-completion endpoint. One system
 * instruction plus one user turn in, one textual completion out.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/pkg/services/llm.go
 *
 *-------------------------------------------------------------------------
 */

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

/* LLMClient handles chat-completion calls against the language-model provider */
type LLMClient struct {
	endpoint   string
	apiKey     string
	model      string
	httpClient *http.Client
}

/* NewLLMClient creates a new language-model client */
func NewLLMClient(endpoint, apiKey, model string, timeout time.Duration) *LLMClient {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &LLMClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

/* Configured reports whether the client holds credentials to call the provider */
func (c *LLMClient) Configured() bool {
	return c.apiKey != "" && c.endpoint != ""
}

/* Model returns the configured model name */
func (c *LLMClient) Model() string {
	return c.model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

/* Complete sends one system instruction and one user turn, returning the completion text */
func (c *LLMClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("language-model client not configured: endpoint_set=%t, api_key_set=%t",
			c.endpoint != "", c.apiKey != "")
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion request marshaling failed: model='%s', error=%w", c.model, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chat completion request creation failed: endpoint='%s', error=%w", c.endpoint, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: endpoint='%s', model='%s', error=%w", c.endpoint, c.model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("language-model provider returned non-success status: endpoint='%s', model='%s', status_code=%d",
			c.endpoint, c.model, resp.StatusCode)
	}

	var result chatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("chat completion response parsing failed: model='%s', error=%w", c.model, err)
	}

	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("language-model provider returned no completion: model='%s', choices=%d", c.model, len(result.Choices))
	}

	return result.Choices[0].Message.Content, nil
}
