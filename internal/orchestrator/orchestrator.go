/*-------------------------------------------------------------------------
 *
 * orchestrator.go
 *    Query orchestration pipeline
 *
 * The entry point for user queries. Every query is written to the
 * request ledger first, then classified by intent. Knowledge-base
 * intents flow through retrieval and synthesis; side-effecting intents
 * are drafted as pending actions and answered with a confirmation that
 * names the approval requirement. The request status is set exactly
 * once per request.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/orchestrator/orchestrator.go
 *
 *-------------------------------------------------------------------------
 */

package orchestrator

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/knowledgedesk/KnowledgeDesk/internal/actions"
	"github.com/knowledgedesk/KnowledgeDesk/internal/classifier"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
	"github.com/knowledgedesk/KnowledgeDesk/internal/events"
	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
	"github.com/knowledgedesk/KnowledgeDesk/internal/retrieval"
)

/* RequestStore persists the request ledger */
type RequestStore interface {
	CreateQueryRequest(ctx context.Context, req *db.QueryRequest) error
	SetQueryRequestStatus(ctx context.Context, id uuid.UUID, status db.RequestStatus) error
}

/* Retriever assembles grounded context for a query */
type Retriever interface {
	Retrieve(ctx context.Context, query string) (string, []retrieval.Citation)
}

/* Answerer synthesizes the final answer text */
type Answerer interface {
	Synthesize(ctx context.Context, question, contextText string) string
}

/* Drafter persists pending actions for side-effecting intents */
type Drafter interface {
	Draft(ctx context.Context, requestID uuid.UUID, intent classifier.Intent, query string) (*db.PendingAction, error)
}

/* Result is the orchestrator's response to one query */
type Result struct {
	RequestID uuid.UUID
	Status    db.RequestStatus
	Intent    classifier.Intent
	Answer    string
	Citations []retrieval.Citation
	Action    *db.PendingAction
}

/* Orchestrator routes queries through the answer or action-drafting path */
type Orchestrator struct {
	store      RequestStore
	classifier classifier.Classifier
	retriever  Retriever
	answerer   Answerer
	drafter    Drafter
	broker     *events.Broker
}

/* New creates a new orchestrator */
func New(store RequestStore, c classifier.Classifier, retriever Retriever, answerer Answerer, drafter Drafter, broker *events.Broker) *Orchestrator {
	return &Orchestrator{
		store:      store,
		classifier: c,
		retriever:  retriever,
		answerer:   answerer,
		drafter:    drafter,
		broker:     broker,
	}
}

/* Handle processes one user query end to end. An error return means the
 * request could not even be recorded; every later failure is reflected in
 * the request status instead. */
func (o *Orchestrator) Handle(ctx context.Context, userID, query string) (*Result, error) {
	request := &db.QueryRequest{
		UserID: userID,
		Query:  query,
		Status: db.RequestStatusReceived,
	}
	if err := o.store.CreateQueryRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("request ledger write failed: user_id='%s', error=%w", userID, err)
	}

	ctx = metrics.WithRequestIDLogContext(ctx, request.ID.String())
	o.broker.Publish(ctx, events.EventTypeQueryReceived, map[string]interface{}{
		"request_id": request.ID.String(),
		"actor":      userID,
	})

	intent := o.classifier.Classify(query)
	metrics.InfoWithContext(ctx, "Query classified", map[string]interface{}{
		"intent":       string(intent),
		"query_length": len(query),
	})

	if intent.SideEffecting() {
		return o.handleActionPath(ctx, request, intent, query)
	}
	return o.handleAnswerPath(ctx, request, intent, query)
}

/* handleAnswerPath answers through retrieval and synthesis. Collaborator
 * degradation still produces an answered request; only a ledger failure
 * marks the request failed. */
func (o *Orchestrator) handleAnswerPath(ctx context.Context, request *db.QueryRequest, intent classifier.Intent, query string) (*Result, error) {
	contextText, citations := o.retriever.Retrieve(ctx, query)
	answer := o.answerer.Synthesize(ctx, query, contextText)

	if err := o.store.SetQueryRequestStatus(ctx, request.ID, db.RequestStatusAnswered); err != nil {
		metrics.ErrorWithContext(ctx, "Request status update failed", err, map[string]interface{}{
			"request_id": request.ID.String(),
		})
		metrics.RecordQuery(string(intent), "failed")
		return nil, err
	}

	metrics.RecordQuery(string(intent), string(db.RequestStatusAnswered))
	o.broker.Publish(ctx, events.EventTypeQueryAnswered, map[string]interface{}{
		"request_id": request.ID.String(),
		"intent":     string(intent),
		"citations":  len(citations),
	})

	return &Result{
		RequestID: request.ID,
		Status:    db.RequestStatusAnswered,
		Intent:    intent,
		Answer:    answer,
		Citations: citations,
	}, nil
}

/* handleActionPath drafts a pending action instead of answering. A drafting
 * failure marks the request failed and surfaces the error. */
func (o *Orchestrator) handleActionPath(ctx context.Context, request *db.QueryRequest, intent classifier.Intent, query string) (*Result, error) {
	action, err := o.drafter.Draft(ctx, request.ID, intent, query)
	if err != nil {
		o.failRequest(ctx, request.ID, intent, err)
		return nil, err
	}

	if err := o.store.SetQueryRequestStatus(ctx, request.ID, db.RequestStatusActionDrafted); err != nil {
		metrics.RecordQuery(string(intent), "failed")
		return nil, err
	}

	metrics.RecordQuery(string(intent), string(db.RequestStatusActionDrafted))

	return &Result{
		RequestID: request.ID,
		Status:    db.RequestStatusActionDrafted,
		Intent:    intent,
		Answer:    actions.Summary(action),
		Action:    action,
	}, nil
}

func (o *Orchestrator) failRequest(ctx context.Context, requestID uuid.UUID, intent classifier.Intent, cause error) {
	metrics.RecordQuery(string(intent), string(db.RequestStatusFailed))
	metrics.ErrorWithContext(ctx, "Query handling failed", cause, map[string]interface{}{
		"request_id": requestID.String(),
		"intent":     string(intent),
	})
	if err := o.store.SetQueryRequestStatus(ctx, requestID, db.RequestStatusFailed); err != nil {
		metrics.ErrorWithContext(ctx, "Request failure status update failed", err, map[string]interface{}{
			"request_id": requestID.String(),
		})
	}
	o.broker.Publish(ctx, events.EventTypeQueryFailed, map[string]interface{}{
		"request_id": requestID.String(),
		"intent":     string(intent),
		"error":      cause.Error(),
	})
}
