/*-------------------------------------------------------------------------
 *
 * pipeline.go
 *    Retrieval pipeline for grounded answers
 *
 * Embeds the query, performs hybrid search against the vector-search
 * collaborator, and assembles ranked context plus citations. Collaborator
 * failures never propagate: the pipeline degrades to a fallback context so
 * the answer path always produces a response.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/retrieval/pipeline.go
 *
 *-------------------------------------------------------------------------
 */

package retrieval

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
	"github.com/knowledgedesk/KnowledgeDesk/pkg/services"
)

/* FallbackContext is returned when no usable documents are found */
const FallbackContext = "No specific documents found. Answer based on general knowledge."

/* excerptMaxLength bounds citation excerpt length in runes */
const excerptMaxLength = 150

/* Embedder turns query text into an embedding vector */
type Embedder interface {
	EmbedOne(ctx context.Context, text string) (services.Vector, error)
}

/* Searcher performs hybrid search with a query vector and raw text */
type Searcher interface {
	HybridSearch(ctx context.Context, queryVector services.Vector, queryText string, topK int) ([]services.SearchResult, error)
}

/* Citation links a synthesized answer back to source material. Transient:
 * attached to the response, never persisted. */
type Citation struct {
	DocID          uuid.UUID `json:"doc_id"`
	PassageID      uuid.UUID `json:"passage_id"`
	Page           *int      `json:"page,omitempty"`
	Text           string    `json:"text"`
	RelevanceScore float64   `json:"relevance_score"`
}

/* Pipeline assembles retrieval context for one query */
type Pipeline struct {
	embedder Embedder
	searcher Searcher
	topK     int
}

/* NewPipeline creates a new retrieval pipeline */
func NewPipeline(embedder Embedder, searcher Searcher, topK int) *Pipeline {
	if topK <= 0 {
		topK = 3
	}
	return &Pipeline{
		embedder: embedder,
		searcher: searcher,
		topK:     topK,
	}
}

/* Retrieve embeds the query, searches, and assembles context plus citations.
 * Never fails: every collaborator failure degrades to the fallback context. */
func (p *Pipeline) Retrieve(ctx context.Context, query string) (string, []Citation) {
	start := time.Now()
	vector, err := p.embedder.EmbedOne(ctx, query)
	if err != nil {
		metrics.RecordCollaboratorCall("embedding", "error", time.Since(start))
		metrics.WarnWithContext(ctx, "Embedding collaborator unavailable, skipping search", map[string]interface{}{
			"query_length": len(query),
			"error":        err.Error(),
		})
		return FallbackContext, nil
	}
	metrics.RecordCollaboratorCall("embedding", "success", time.Since(start))

	start = time.Now()
	results, err := p.searcher.HybridSearch(ctx, vector, query, p.topK)
	if err != nil {
		metrics.RecordCollaboratorCall("vector_search", "error", time.Since(start))
		metrics.WarnWithContext(ctx, "Vector-search collaborator unavailable, using fallback context", map[string]interface{}{
			"query_length": len(query),
			"top_k":        p.topK,
			"error":        err.Error(),
		})
		return FallbackContext, nil
	}
	metrics.RecordCollaboratorCall("vector_search", "success", time.Since(start))

	var contextBuilder strings.Builder
	var citations []Citation

	for _, match := range results {
		text := match.Metadata.Text
		if text == "" {
			/* Matches with empty text are dropped silently */
			continue
		}

		contextBuilder.WriteString("- ")
		contextBuilder.WriteString(text)
		contextBuilder.WriteString("\n")

		citations = append(citations, Citation{
			DocID:          parseOrNewID(match.Metadata.DocID),
			PassageID:      parseOrNewID(match.Metadata.PassageID),
			Page:           match.Metadata.Page,
			Text:           truncateExcerpt(text),
			RelevanceScore: clampScore(match.Score),
		})
	}

	metrics.RecordRetrievalMatches(len(citations))

	if contextBuilder.Len() == 0 {
		return FallbackContext, nil
	}
	return contextBuilder.String(), citations
}

/* parseOrNewID keeps collaborator-supplied identifiers when they are valid
 * UUIDs and mints a fresh one otherwise */
func parseOrNewID(raw string) uuid.UUID {
	if raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			return id
		}
	}
	return uuid.New()
}

func truncateExcerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptMaxLength {
		return text
	}
	return string(runes[:excerptMaxLength])
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
