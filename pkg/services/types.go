/*-------------------------------------------------------------------------
 *
 * types.go
 *    Type definitions for the collaborator service clients
 *
 * Defines data structures shared by the embedding, vector-search, and
 * language-model clients.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/pkg/services/types.go
 *
 *-------------------------------------------------------------------------
 */

package services

/* Vector represents one embedding vector */
type Vector []float64

/* SearchMetadata carries the source fields attached to one search match */
type SearchMetadata struct {
	Text      string `json:"text"`
	Page      *int   `json:"page,omitempty"`
	DocID     string `json:"doc_id,omitempty"`
	PassageID string `json:"passage_id,omitempty"`
}

/* SearchResult is one ranked match from the vector-search collaborator */
type SearchResult struct {
	Score    float64        `json:"score"`
	Metadata SearchMetadata `json:"metadata"`
}
