/*-------------------------------------------------------------------------
 *
 * queries.go
 *    Database queries for KnowledgeDesk
 *
 * Provides query functions for the request ledger, pending actions, and
 * the audit log. The pending-action decision query carries the conditional
 * status guard that serializes concurrent approval attempts.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/db/queries.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

/* ErrNotFound is returned when a requested row does not exist */
var ErrNotFound = errors.New("row not found")

/* ErrAlreadyDecided is returned when a decision races against an earlier one.
 * The conditional update in decidePendingActionQuery matched zero rows because
 * the action had already left the pending state. */
var ErrAlreadyDecided = errors.New("action already decided")

/* Request ledger queries */
const (
	createQueryRequestQuery = `
		INSERT INTO kdesk.requests (id, user_id, query, status, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING created_at`

	getQueryRequestByIDQuery = `SELECT * FROM kdesk.requests WHERE id = $1`

	setQueryRequestStatusQuery = `
		UPDATE kdesk.requests
		SET status = $2, completed_at = NOW()
		WHERE id = $1 AND status = 'received'`
)

/* Pending action queries */
const (
	createPendingActionQuery = `
		INSERT INTO kdesk.pending_actions
		(id, request_id, action_type, target_service, payload, status, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, $6, NOW())
		RETURNING created_at`

	getPendingActionByIDQuery = `SELECT * FROM kdesk.pending_actions WHERE id = $1`

	listUnresolvedActionsQuery = `
		SELECT * FROM kdesk.pending_actions
		WHERE status = 'pending'
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	listActionsForRequestQuery = `
		SELECT * FROM kdesk.pending_actions
		WHERE request_id = $1
		ORDER BY created_at DESC`

	/* The status guard makes this a compare-and-set: of two concurrent
	 * decisions exactly one matches the pending row, the other sees zero
	 * rows affected. */
	decidePendingActionQuery = `
		UPDATE kdesk.pending_actions
		SET status = $2, approved_at = NOW(), approved_by = $3
		WHERE id = $1 AND status = 'pending'`

	markActionExecutedQuery = `
		UPDATE kdesk.pending_actions
		SET status = 'executed', result = $2::jsonb
		WHERE id = $1 AND status = 'approved'`

	markActionExecutionFailedQuery = `
		UPDATE kdesk.pending_actions
		SET status = 'execution_failed', error_message = $2
		WHERE id = $1 AND status = 'approved'`
)

/* Audit log queries */
const (
	createAuditEntryQuery = `
		INSERT INTO kdesk.audit_log (request_id, action_id, event_type, actor, details, created_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, NOW())
		RETURNING id, created_at`

	listAuditEntriesForRequestQuery = `
		SELECT * FROM kdesk.audit_log
		WHERE request_id = $1
		ORDER BY created_at ASC`
)

/* Queries provides database query functions */
type Queries struct {
	DB *sqlx.DB
}

/* NewQueries creates a new Queries instance */
func NewQueries(db *sqlx.DB) *Queries {
	return &Queries{DB: db}
}

/* CreateQueryRequest inserts a new request ledger row */
func (q *Queries) CreateQueryRequest(ctx context.Context, req *QueryRequest) error {
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	if req.Status == "" {
		req.Status = RequestStatusReceived
	}

	err := q.DB.QueryRowxContext(ctx, createQueryRequestQuery,
		req.ID, req.UserID, req.Query, req.Status).Scan(&req.CreatedAt)
	if err != nil {
		return fmt.Errorf("query request creation failed: request_id=%s, user_id='%s', query_length=%d, error=%w",
			req.ID, req.UserID, len(req.Query), err)
	}
	return nil
}

/* GetQueryRequestByID fetches one request ledger row */
func (q *Queries) GetQueryRequestByID(ctx context.Context, id uuid.UUID) (*QueryRequest, error) {
	var req QueryRequest
	err := q.DB.GetContext(ctx, &req, getQueryRequestByIDQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query request fetch failed: request_id=%s, error=%w", id, err)
	}
	return &req, nil
}

/* SetQueryRequestStatus sets the final status of a request. The guard on the
 * received state makes the transition single-shot. */
func (q *Queries) SetQueryRequestStatus(ctx context.Context, id uuid.UUID, status RequestStatus) error {
	result, err := q.DB.ExecContext(ctx, setQueryRequestStatusQuery, id, status)
	if err != nil {
		return fmt.Errorf("query request status update failed: request_id=%s, status='%s', error=%w", id, status, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("query request status update failed: request_id=%s, rows_affected_error=%w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("query request status already set: request_id=%s, attempted_status='%s'", id, status)
	}
	return nil
}

/* CreatePendingAction inserts a new pending action row referencing its request */
func (q *Queries) CreatePendingAction(ctx context.Context, action *PendingAction) error {
	if action.ID == uuid.Nil {
		action.ID = uuid.New()
	}
	if action.Status == "" {
		action.Status = ActionStatusPending
	}

	payload := action.Payload
	if payload == nil {
		payload = make(JSONBMap)
	}

	err := q.DB.QueryRowxContext(ctx, createPendingActionQuery,
		action.ID, action.RequestID, action.ActionType, action.TargetService,
		payload, action.Status).Scan(&action.CreatedAt)
	if err != nil {
		return fmt.Errorf("pending action creation failed: action_id=%s, request_id=%s, action_type='%s', target_service='%s', error=%w",
			action.ID, action.RequestID, action.ActionType, action.TargetService, err)
	}
	return nil
}

/* GetPendingActionByID fetches one pending action row */
func (q *Queries) GetPendingActionByID(ctx context.Context, id uuid.UUID) (*PendingAction, error) {
	var action PendingAction
	err := q.DB.GetContext(ctx, &action, getPendingActionByIDQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pending action fetch failed: action_id=%s, error=%w", id, err)
	}
	return &action, nil
}

/* ListUnresolvedActions lists actions still awaiting a decision, newest first */
func (q *Queries) ListUnresolvedActions(ctx context.Context, limit, offset int) ([]PendingAction, error) {
	var actions []PendingAction
	err := q.DB.SelectContext(ctx, &actions, listUnresolvedActionsQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("unresolved action listing failed: limit=%d, offset=%d, error=%w", limit, offset, err)
	}
	return actions, nil
}

/* ListActionsForRequest lists all actions drafted for one request */
func (q *Queries) ListActionsForRequest(ctx context.Context, requestID uuid.UUID) ([]PendingAction, error) {
	var actions []PendingAction
	err := q.DB.SelectContext(ctx, &actions, listActionsForRequestQuery, requestID)
	if err != nil {
		return nil, fmt.Errorf("action listing failed: request_id=%s, error=%w", requestID, err)
	}
	return actions, nil
}

/* DecidePendingAction applies the pending -> approved/rejected transition with
 * compare-and-set semantics. Returns ErrAlreadyDecided when the action has
 * already left the pending state and ErrNotFound when no such row exists. */
func (q *Queries) DecidePendingAction(ctx context.Context, id uuid.UUID, status ActionStatus, actor string) error {
	if status != ActionStatusApproved && status != ActionStatusRejected {
		return fmt.Errorf("invalid decision status: action_id=%s, status='%s'", id, status)
	}

	result, err := q.DB.ExecContext(ctx, decidePendingActionQuery, id, status, actor)
	if err != nil {
		return fmt.Errorf("pending action decision failed: action_id=%s, status='%s', error=%w", id, status, err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pending action decision failed: action_id=%s, rows_affected_error=%w", id, err)
	}
	if rows == 0 {
		if _, getErr := q.GetPendingActionByID(ctx, id); errors.Is(getErr, ErrNotFound) {
			return ErrNotFound
		}
		return ErrAlreadyDecided
	}
	return nil
}

/* MarkActionExecuted records a successful execution outcome */
func (q *Queries) MarkActionExecuted(ctx context.Context, id uuid.UUID, result JSONBMap) error {
	if result == nil {
		result = make(JSONBMap)
	}
	res, err := q.DB.ExecContext(ctx, markActionExecutedQuery, id, result)
	if err != nil {
		return fmt.Errorf("action execution record failed: action_id=%s, error=%w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("action execution record failed: action_id=%s, rows_affected_error=%w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("action not in approved state: action_id=%s", id)
	}
	return nil
}

/* MarkActionExecutionFailed records a failed execution outcome */
func (q *Queries) MarkActionExecutionFailed(ctx context.Context, id uuid.UUID, errorMessage string) error {
	res, err := q.DB.ExecContext(ctx, markActionExecutionFailedQuery, id, errorMessage)
	if err != nil {
		return fmt.Errorf("action failure record failed: action_id=%s, error=%w", id, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("action failure record failed: action_id=%s, rows_affected_error=%w", id, err)
	}
	if rows == 0 {
		return fmt.Errorf("action not in approved state: action_id=%s", id)
	}
	return nil
}

/* CreateAuditEntry appends one audit log row */
func (q *Queries) CreateAuditEntry(ctx context.Context, entry *AuditEntry) error {
	details := entry.Details
	if details == nil {
		details = make(JSONBMap)
	}

	err := q.DB.QueryRowxContext(ctx, createAuditEntryQuery,
		entry.RequestID, entry.ActionID, entry.EventType, entry.Actor, details).
		Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return fmt.Errorf("audit entry creation failed: event_type='%s', actor='%s', error=%w",
			entry.EventType, entry.Actor, err)
	}
	return nil
}

/* ListAuditEntriesForRequest lists the audit trail of one request */
func (q *Queries) ListAuditEntriesForRequest(ctx context.Context, requestID uuid.UUID) ([]AuditEntry, error) {
	var entries []AuditEntry
	err := q.DB.SelectContext(ctx, &entries, listAuditEntriesForRequestQuery, requestID)
	if err != nil {
		return nil, fmt.Errorf("audit trail listing failed: request_id=%s, error=%w", requestID, err)
	}
	return entries, nil
}
