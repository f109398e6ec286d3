/*-------------------------------------------------------------------------
 *
 * types.go
 *    Request and response DTOs for the KnowledgeDesk API
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/api/types.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
	"github.com/knowledgedesk/KnowledgeDesk/internal/retrieval"
)

/* QueryRequestBody is the body of POST /api/v1/query */
type QueryRequestBody struct {
	UserID string `json:"user_id"`
	Query  string `json:"query"`
}

/* CitationResponse is one citation attached to an answer */
type CitationResponse struct {
	DocID          uuid.UUID `json:"doc_id"`
	PassageID      uuid.UUID `json:"passage_id"`
	Page           *int      `json:"page,omitempty"`
	Text           string    `json:"text"`
	RelevanceScore float64   `json:"relevance_score"`
}

/* QueryResponse is the response of POST /api/v1/query. PendingActions
 * lists the ids of every action drafted for the request; Action carries
 * the full record of the drafted action for convenience. */
type QueryResponse struct {
	Status         string             `json:"status"`
	RequestID      uuid.UUID          `json:"request_id"`
	Intent         string             `json:"intent"`
	Summary        string             `json:"summary"`
	Citations      []CitationResponse `json:"citations"`
	PendingActions []uuid.UUID        `json:"pending_actions"`
	Action         *ActionResponse    `json:"action,omitempty"`
}

/* ActionResponse is one pending action */
type ActionResponse struct {
	ID            uuid.UUID              `json:"id"`
	RequestID     uuid.UUID              `json:"request_id"`
	ActionType    string                 `json:"action_type"`
	TargetService string                 `json:"target_service"`
	Payload       map[string]interface{} `json:"payload"`
	Status        string                 `json:"status"`
	Result        map[string]interface{} `json:"result,omitempty"`
	ErrorMessage  *string                `json:"error_message,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	ApprovedAt    *time.Time             `json:"approved_at,omitempty"`
	ApprovedBy    *string                `json:"approved_by,omitempty"`
}

/* DecideRequestBody is the body of POST /api/v1/actions/{id}/decide */
type DecideRequestBody struct {
	Approved      *bool  `json:"approved"`
	UserSignature string `json:"user_signature"`
}

/* DecideResponse is the response of a decision */
type DecideResponse struct {
	Status string         `json:"status"`
	Action ActionResponse `json:"action"`
}

/* RequestResponse is one ledger row with its drafted actions */
type RequestResponse struct {
	ID          uuid.UUID        `json:"id"`
	UserID      string           `json:"user_id"`
	Query       string           `json:"query"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	CompletedAt *time.Time       `json:"completed_at,omitempty"`
	Actions     []ActionResponse `json:"actions"`
}

/* AuditEntryResponse is one audit trail row */
type AuditEntryResponse struct {
	ID        int64                  `json:"id"`
	RequestID *uuid.UUID             `json:"request_id,omitempty"`
	ActionID  *uuid.UUID             `json:"action_id,omitempty"`
	EventType string                 `json:"event_type"`
	Actor     string                 `json:"actor"`
	Details   map[string]interface{} `json:"details"`
	CreatedAt time.Time              `json:"created_at"`
}

func toCitationResponses(citations []retrieval.Citation) []CitationResponse {
	responses := make([]CitationResponse, 0, len(citations))
	for _, c := range citations {
		responses = append(responses, CitationResponse{
			DocID:          c.DocID,
			PassageID:      c.PassageID,
			Page:           c.Page,
			Text:           c.Text,
			RelevanceScore: c.RelevanceScore,
		})
	}
	return responses
}

func toActionResponse(a *db.PendingAction) ActionResponse {
	return ActionResponse{
		ID:            a.ID,
		RequestID:     a.RequestID,
		ActionType:    string(a.ActionType),
		TargetService: a.TargetService,
		Payload:       a.Payload.ToMap(),
		Status:        string(a.Status),
		Result:        a.Result.ToMap(),
		ErrorMessage:  a.ErrorMessage,
		CreatedAt:     a.CreatedAt,
		ApprovedAt:    a.ApprovedAt,
		ApprovedBy:    a.ApprovedBy,
	}
}

func toAuditEntryResponse(e *db.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:        e.ID,
		RequestID: e.RequestID,
		ActionID:  e.ActionID,
		EventType: e.EventType,
		Actor:     e.Actor,
		Details:   e.Details.ToMap(),
		CreatedAt: e.CreatedAt,
	}
}
