/*-------------------------------------------------------------------------
 *
 * embedding.go
 *    Embedding service client
 *
 * Client for the embedding collaborator, which turns query text into
 * embedding vectors.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/pkg/services/embedding.go
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

/* EmbeddingClient handles embedding operations against the embedding service */
type EmbeddingClient struct {
	baseURL    string
	httpClient *http.Client
}

/* NewEmbeddingClient creates a new embedding client */
func NewEmbeddingClient(baseURL string, timeout time.Duration) *EmbeddingClient {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &EmbeddingClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type embedRequest struct {
	Texts []string `json:"texts"`
}

type embedResponse struct {
	Embeddings []Vector `json:"embeddings"`
}

/* Embed generates embedding vectors for the given texts */
func (c *EmbeddingClient) Embed(ctx context.Context, texts []string) ([]Vector, error) {
	body, err := json.Marshal(embedRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("embedding request marshaling failed: texts=%d, error=%w", len(texts), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedding request creation failed: url='%s', error=%w", c.baseURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: url='%s', texts=%d, error=%w", c.baseURL, len(texts), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("embedding service returned non-success status: url='%s', status_code=%d", c.baseURL, resp.StatusCode)
	}

	var result embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("embedding response parsing failed: url='%s', error=%w", c.baseURL, err)
	}

	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding service returned no vectors: url='%s', texts=%d", c.baseURL, len(texts))
	}

	return result.Embeddings, nil
}

/* EmbedOne generates an embedding vector for a single text */
func (c *EmbeddingClient) EmbedOne(ctx context.Context, text string) (Vector, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors[0]) == 0 {
		return nil, fmt.Errorf("embedding service returned an empty vector: text_length=%d", len(text))
	}
	return vectors[0], nil
}
