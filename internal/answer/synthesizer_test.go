/*-------------------------------------------------------------------------
 *
 * synthesizer_test.go
 *    Tests for grounded answer synthesis
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/answer/synthesizer_test.go
 *
 *-------------------------------------------------------------------------
 */

package answer

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeCompleter struct {
	completion string
	err        error
	configured bool

	gotSystem string
	gotUser   string
	calls     int
}

func (f *fakeCompleter) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	f.calls++
	f.gotSystem = systemPrompt
	f.gotUser = userPrompt
	return f.completion, f.err
}

func (f *fakeCompleter) Configured() bool { return f.configured }
func (f *fakeCompleter) Model() string    { return "test-model" }

func TestSynthesizeBuildsGroundedPrompt(t *testing.T) {
	completer := &fakeCompleter{configured: true, completion: "  The refund window is 30 days.  "}
	synth := NewSynthesizer(completer)

	result := synth.Synthesize(context.Background(), "What is the refund window?", "- The refund window is 30 days.\n")

	assert.Equal(t, "The refund window is 30 days.", result)
	assert.Contains(t, completer.gotUser, "Context:\n- The refund window is 30 days.")
	assert.Contains(t, completer.gotUser, "User Question: What is the refund window?")
	assert.NotEmpty(t, completer.gotSystem)
}

func TestSynthesizeDegradesOnProviderFailure(t *testing.T) {
	completer := &fakeCompleter{configured: true, err: fmt.Errorf("status_code=503")}
	synth := NewSynthesizer(completer)

	result := synth.Synthesize(context.Background(), "anything", "context")

	assert.Contains(t, result, "Answer synthesis failed")
	assert.Contains(t, result, "test-model")
}

func TestSynthesizeSkipsUnconfiguredProvider(t *testing.T) {
	completer := &fakeCompleter{configured: false}
	synth := NewSynthesizer(completer)

	result := synth.Synthesize(context.Background(), "anything", "context")

	assert.Contains(t, result, "not configured")
	assert.Equal(t, 0, completer.calls, "unconfigured provider must not be called")
}
