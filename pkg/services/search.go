/*-------------------------------------------------------------------------
 *
 * search.go
 *    Vector-search service client
 *
 * Client for the vector-search collaborator. Hybrid ranking (lexical plus
 * vector similarity) is performed entirely by the collaborator; this client
 * only carries the query.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/pkg/services/search.go
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

/* SearchClient handles hybrid search operations against the vector-search service */
type SearchClient struct {
	baseURL    string
	httpClient *http.Client
}

/* NewSearchClient creates a new search client */
func NewSearchClient(baseURL string, timeout time.Duration) *SearchClient {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &SearchClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type hybridSearchRequest struct {
	QueryVector Vector `json:"query_vector"`
	QueryText   string `json:"query_text"`
	TopK        int    `json:"top_k"`
	Hybrid      bool   `json:"hybrid"`
}

type hybridSearchResponse struct {
	Results []SearchResult `json:"results"`
}

/* HybridSearch performs hybrid search combining vector and full-text ranking */
func (c *SearchClient) HybridSearch(ctx context.Context, queryVector Vector, queryText string, topK int) ([]SearchResult, error) {
	body, err := json.Marshal(hybridSearchRequest{
		QueryVector: queryVector,
		QueryText:   queryText,
		TopK:        topK,
		Hybrid:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("hybrid search request marshaling failed: query_length=%d, vector_dimension=%d, error=%w",
			len(queryText), len(queryVector), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search/hybrid", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("hybrid search request creation failed: url='%s', error=%w", c.baseURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hybrid search request failed: url='%s', query_length=%d, top_k=%d, error=%w",
			c.baseURL, len(queryText), topK, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("vector-search service returned non-success status: url='%s', status_code=%d", c.baseURL, resp.StatusCode)
	}

	var result hybridSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("hybrid search response parsing failed: url='%s', error=%w", c.baseURL, err)
	}

	return result.Results, nil
}
