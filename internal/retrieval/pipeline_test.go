/*-------------------------------------------------------------------------
 *
 * pipeline_test.go
 *    Tests for the retrieval pipeline
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/retrieval/pipeline_test.go
 *
 *-------------------------------------------------------------------------
 */

package retrieval

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/knowledgedesk/KnowledgeDesk/pkg/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEmbedder struct {
	vector services.Vector
	err    error
	calls  int
}

func (f *fakeEmbedder) EmbedOne(ctx context.Context, text string) (services.Vector, error) {
	f.calls++
	return f.vector, f.err
}

type fakeSearcher struct {
	results []services.SearchResult
	err     error
	calls   int
}

func (f *fakeSearcher) HybridSearch(ctx context.Context, queryVector services.Vector, queryText string, topK int) ([]services.SearchResult, error) {
	f.calls++
	return f.results, f.err
}

func TestRetrieveAssemblesContextAndCitations(t *testing.T) {
	embedder := &fakeEmbedder{vector: services.Vector{0.1, 0.2}}
	searcher := &fakeSearcher{results: []services.SearchResult{
		{Score: 0.92, Metadata: services.SearchMetadata{Text: "The refund window is 30 days."}},
		{Score: 0.61, Metadata: services.SearchMetadata{Text: "Refunds are issued to the original payment method."}},
	}}

	pipeline := NewPipeline(embedder, searcher, 3)
	contextText, citations := pipeline.Retrieve(context.Background(), "refund policy")

	assert.Contains(t, contextText, "The refund window is 30 days.")
	assert.Contains(t, contextText, "Refunds are issued to the original payment method.")
	require.Len(t, citations, 2)
	assert.Equal(t, 0.92, citations[0].RelevanceScore)
	assert.NotEqual(t, citations[0].DocID, citations[1].DocID)
}

func TestRetrieveDegradesWhenEmbeddingFails(t *testing.T) {
	embedder := &fakeEmbedder{err: fmt.Errorf("connection refused")}
	searcher := &fakeSearcher{}

	pipeline := NewPipeline(embedder, searcher, 3)
	contextText, citations := pipeline.Retrieve(context.Background(), "refund policy")

	assert.Equal(t, FallbackContext, contextText)
	assert.Empty(t, citations)
	assert.Equal(t, 0, searcher.calls, "search must be skipped when embedding fails")
}

func TestRetrieveDegradesWhenSearchFails(t *testing.T) {
	embedder := &fakeEmbedder{vector: services.Vector{0.1}}
	searcher := &fakeSearcher{err: fmt.Errorf("timeout")}

	pipeline := NewPipeline(embedder, searcher, 3)
	contextText, citations := pipeline.Retrieve(context.Background(), "refund policy")

	assert.Equal(t, FallbackContext, contextText)
	assert.Empty(t, citations)
}

func TestRetrieveDropsEmptyTextMatches(t *testing.T) {
	embedder := &fakeEmbedder{vector: services.Vector{0.1}}
	searcher := &fakeSearcher{results: []services.SearchResult{
		{Score: 0.9, Metadata: services.SearchMetadata{Text: ""}},
		{Score: 0.8, Metadata: services.SearchMetadata{Text: "Only this match counts."}},
		{Score: 0.7, Metadata: services.SearchMetadata{Text: ""}},
	}}

	pipeline := NewPipeline(embedder, searcher, 3)
	contextText, citations := pipeline.Retrieve(context.Background(), "anything")

	require.Len(t, citations, 1)
	assert.Equal(t, "Only this match counts.", citations[0].Text)
	assert.NotContains(t, contextText, "- \n")
}

func TestRetrieveFallsBackWhenAllMatchesEmpty(t *testing.T) {
	embedder := &fakeEmbedder{vector: services.Vector{0.1}}
	searcher := &fakeSearcher{results: []services.SearchResult{
		{Score: 0.9, Metadata: services.SearchMetadata{Text: ""}},
	}}

	pipeline := NewPipeline(embedder, searcher, 3)
	contextText, citations := pipeline.Retrieve(context.Background(), "anything")

	assert.Equal(t, FallbackContext, contextText)
	assert.Empty(t, citations)
}

func TestRetrieveTruncatesExcerpts(t *testing.T) {
	longText := strings.Repeat("a", 500)
	embedder := &fakeEmbedder{vector: services.Vector{0.1}}
	searcher := &fakeSearcher{results: []services.SearchResult{
		{Score: 0.5, Metadata: services.SearchMetadata{Text: longText}},
	}}

	pipeline := NewPipeline(embedder, searcher, 3)
	contextText, citations := pipeline.Retrieve(context.Background(), "anything")

	require.Len(t, citations, 1)
	assert.LessOrEqual(t, len([]rune(citations[0].Text)), 150)
	/* The full text still lands in the assembled context */
	assert.Contains(t, contextText, longText)
}

func TestRetrieveClampsScores(t *testing.T) {
	embedder := &fakeEmbedder{vector: services.Vector{0.1}}
	searcher := &fakeSearcher{results: []services.SearchResult{
		{Score: 3.7, Metadata: services.SearchMetadata{Text: "above range"}},
		{Score: -0.4, Metadata: services.SearchMetadata{Text: "below range"}},
	}}

	pipeline := NewPipeline(embedder, searcher, 3)
	_, citations := pipeline.Retrieve(context.Background(), "anything")

	require.Len(t, citations, 2)
	assert.Equal(t, 1.0, citations[0].RelevanceScore)
	assert.Equal(t, 0.0, citations[1].RelevanceScore)
}

func TestRetrieveKeepsCollaboratorSuppliedIDs(t *testing.T) {
	embedder := &fakeEmbedder{vector: services.Vector{0.1}}
	searcher := &fakeSearcher{results: []services.SearchResult{
		{Score: 0.9, Metadata: services.SearchMetadata{
			Text:  "identified passage",
			DocID: "7c9a1df2-40f5-4a91-b4a5-9e21a3b1c111",
		}},
	}}

	pipeline := NewPipeline(embedder, searcher, 3)
	_, citations := pipeline.Retrieve(context.Background(), "anything")

	require.Len(t, citations, 1)
	assert.Equal(t, "7c9a1df2-40f5-4a91-b4a5-9e21a3b1c111", citations[0].DocID.String())
}
