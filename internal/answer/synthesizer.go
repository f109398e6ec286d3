/*-------------------------------------------------------------------------
 *
 * synthesizer.go
 *    Grounded answer synthesis
 *
 * Builds a grounded prompt from the retrieval context and the user
 * question and asks the language-model provider for a completion.
 * Synthesis never fails the request: provider outages and missing
 * credentials degrade to a diagnostic answer string.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/answer/synthesizer.go
 *
 *-------------------------------------------------------------------------
 */

package answer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
	"github.com/knowledgedesk/KnowledgeDesk/internal/reliability"
)

/* systemPrompt instructs the model to answer strictly from the supplied context */
const systemPrompt = "You are an enterprise support assistant. Answer the user's question " +
	"using the provided context. If the context does not contain the answer, say so and " +
	"answer from general knowledge, noting that no internal documents matched."

/* Completer produces one completion from a system instruction and a user turn */
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Configured() bool
	Model() string
}

/* Synthesizer turns retrieval context plus a question into a final answer */
type Synthesizer struct {
	completer Completer
	breaker   *reliability.CircuitBreaker
}

/* NewSynthesizer creates a new answer synthesizer */
func NewSynthesizer(completer Completer) *Synthesizer {
	return &Synthesizer{
		completer: completer,
		breaker:   reliability.NewCircuitBreaker("llm", 5, 30*time.Second),
	}
}

/* Synthesize produces the grounded answer text. The returned string is always
 * usable: when the provider is unreachable or unconfigured it carries a
 * diagnostic message instead of an answer. */
func (s *Synthesizer) Synthesize(ctx context.Context, question, contextText string) string {
	if !s.completer.Configured() {
		metrics.WarnWithContext(ctx, "Language-model provider not configured, returning diagnostic answer", map[string]interface{}{
			"question_length": len(question),
		})
		return "The language-model provider is not configured. Unable to synthesize an answer. " +
			"The retrieved context is listed in the citations."
	}

	userPrompt := buildUserPrompt(question, contextText)

	start := time.Now()
	var completion string
	err := s.breaker.Execute(ctx, func() error {
		var completeErr error
		completion, completeErr = s.completer.Complete(ctx, systemPrompt, userPrompt)
		return completeErr
	})
	if err != nil {
		metrics.RecordCollaboratorCall("llm", "error", time.Since(start))
		metrics.ErrorWithContext(ctx, "Answer synthesis failed", err, map[string]interface{}{
			"model": s.completer.Model(),
		})
		return fmt.Sprintf("Answer synthesis failed: model='%s'. The question was recorded and can be retried.",
			s.completer.Model())
	}
	metrics.RecordCollaboratorCall("llm", "success", time.Since(start))

	return strings.TrimSpace(completion)
}

/* buildUserPrompt frames the question with its retrieval context */
func buildUserPrompt(question, contextText string) string {
	var b strings.Builder
	b.WriteString("Context:\n")
	b.WriteString(contextText)
	b.WriteString("\n\nUser Question: ")
	b.WriteString(question)
	return b.String()
}
