/*-------------------------------------------------------------------------
 *
 * classifier.go
 *    Intent classification for inbound queries
 *
 * Maps query text to one of a closed set of intents using an ordered
 * keyword rule table. First match wins; rule order is part of the contract
 * since multiple keywords can co-occur in one query.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/classifier/classifier.go
 *
 *-------------------------------------------------------------------------
 */

package classifier

import (
	"strings"

	"github.com/knowledgedesk/KnowledgeDesk/internal/config"
)

/* Intent is the classified purpose of a query */
type Intent string

const (
	IntentCreateTicket            Intent = "create_ticket"
	IntentSendEmail               Intent = "send_email"
	IntentPostChatMessage         Intent = "post_chat_message"
	IntentExecuteComputation      Intent = "execute_computation"
	IntentAnswerFromKnowledgeBase Intent = "answer_from_knowledge_base"
)

/* SideEffecting reports whether the intent drafts a pending action */
func (i Intent) SideEffecting() bool {
	switch i {
	case IntentCreateTicket, IntentSendEmail, IntentPostChatMessage:
		return true
	}
	return false
}

/* Classifier maps query text to an intent. Implementations must be pure:
 * no side effects and no failure mode. */
type Classifier interface {
	Classify(text string) Intent
}

/* Rule binds trigger keywords to an intent; rules are evaluated in order */
type Rule struct {
	Intent   Intent
	Keywords []string
}

/* KeywordClassifier is the deterministic default classifier */
type KeywordClassifier struct {
	rules []Rule
}

/* DefaultRules returns the built-in rule table in priority order */
func DefaultRules() []Rule {
	return []Rule{
		{Intent: IntentCreateTicket, Keywords: []string{"ticket", "incident"}},
		{Intent: IntentSendEmail, Keywords: []string{"email", "alert"}},
		{Intent: IntentPostChatMessage, Keywords: []string{"chat", "channel", "slack"}},
		{Intent: IntentExecuteComputation, Keywords: []string{"compute", "solve", "calculate"}},
	}
}

/* NewKeywordClassifier creates a classifier with the given ordered rules.
 * Nil or empty rules fall back to the built-in table. */
func NewKeywordClassifier(rules []Rule) *KeywordClassifier {
	if len(rules) == 0 {
		rules = DefaultRules()
	}
	return &KeywordClassifier{rules: rules}
}

/* NewFromConfig builds a classifier from configured rule overrides */
func NewFromConfig(cfg config.ClassifierConfig) *KeywordClassifier {
	var rules []Rule
	for _, rc := range cfg.Rules {
		intent := Intent(rc.Intent)
		switch intent {
		case IntentCreateTicket, IntentSendEmail, IntentPostChatMessage, IntentExecuteComputation:
			rules = append(rules, Rule{Intent: intent, Keywords: rc.Keywords})
		}
	}
	return NewKeywordClassifier(rules)
}

/* Classify maps query text to an intent, defaulting to the knowledge-base
 * answer path when no rule matches */
func (c *KeywordClassifier) Classify(text string) Intent {
	lowered := strings.ToLower(text)

	for _, rule := range c.rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(lowered, keyword) {
				return rule.Intent
			}
		}
	}

	return IntentAnswerFromKnowledgeBase
}
