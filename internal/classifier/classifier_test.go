/*-------------------------------------------------------------------------
 *
 * classifier_test.go
 *    Tests for keyword intent classification
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/classifier/classifier_test.go
 *
 *-------------------------------------------------------------------------
 */

package classifier

import (
	"testing"

	"github.com/knowledgedesk/KnowledgeDesk/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestClassifyTicketPhrasing(t *testing.T) {
	c := NewKeywordClassifier(nil)

	assert.Equal(t, IntentCreateTicket, c.Classify("please create a ticket for the outage"))
	assert.Equal(t, IntentCreateTicket, c.Classify("we have an INCIDENT in production"))
}

func TestClassifyEmailPhrasing(t *testing.T) {
	c := NewKeywordClassifier(nil)

	assert.Equal(t, IntentSendEmail, c.Classify("send an email to the on-call engineer"))
	assert.Equal(t, IntentSendEmail, c.Classify("raise an alert about disk usage"))
}

func TestClassifyChatPhrasing(t *testing.T) {
	c := NewKeywordClassifier(nil)

	assert.Equal(t, IntentPostChatMessage, c.Classify("post this to the ops channel"))
	assert.Equal(t, IntentPostChatMessage, c.Classify("notify the team on slack"))
}

func TestClassifyComputePhrasing(t *testing.T) {
	c := NewKeywordClassifier(nil)

	assert.Equal(t, IntentExecuteComputation, c.Classify("solve this equation for me"))
}

func TestClassifyDefaultsToKnowledgeBase(t *testing.T) {
	c := NewKeywordClassifier(nil)

	assert.Equal(t, IntentAnswerFromKnowledgeBase, c.Classify("what is our refund policy?"))
	assert.Equal(t, IntentAnswerFromKnowledgeBase, c.Classify(""))
}

func TestClassifyPriorityOrder(t *testing.T) {
	c := NewKeywordClassifier(nil)

	/* Ticket phrasing outranks email phrasing when both co-occur */
	assert.Equal(t, IntentCreateTicket, c.Classify("open a ticket and email the summary"))
	/* Email phrasing outranks chat phrasing */
	assert.Equal(t, IntentSendEmail, c.Classify("email the channel owners"))
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	c := NewKeywordClassifier(nil)

	assert.Equal(t, IntentCreateTicket, c.Classify("CREATE A TICKET NOW"))
}

func TestNewFromConfigOverridesRules(t *testing.T) {
	c := NewFromConfig(config.ClassifierConfig{
		Rules: []config.ClassifierRule{
			{Intent: string(IntentSendEmail), Keywords: []string{"page"}},
			{Intent: string(IntentCreateTicket), Keywords: []string{"ticket"}},
		},
	})

	/* Configured order is the priority order */
	assert.Equal(t, IntentSendEmail, c.Classify("page someone and open a ticket"))
	assert.Equal(t, IntentCreateTicket, c.Classify("open a ticket"))
}

func TestNewFromConfigIgnoresUnknownIntents(t *testing.T) {
	c := NewFromConfig(config.ClassifierConfig{
		Rules: []config.ClassifierRule{
			{Intent: "launch_rocket", Keywords: []string{"rocket"}},
		},
	})

	/* Unknown intents are dropped, so the built-in table applies */
	assert.Equal(t, IntentAnswerFromKnowledgeBase, c.Classify("rocket"))
	assert.Equal(t, IntentCreateTicket, c.Classify("file a ticket"))
}

func TestSideEffecting(t *testing.T) {
	assert.True(t, IntentCreateTicket.SideEffecting())
	assert.True(t, IntentSendEmail.SideEffecting())
	assert.True(t, IntentPostChatMessage.SideEffecting())
	assert.False(t, IntentExecuteComputation.SideEffecting())
	assert.False(t, IntentAnswerFromKnowledgeBase.SideEffecting())
}
