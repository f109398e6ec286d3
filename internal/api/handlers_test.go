/*-------------------------------------------------------------------------
 *
 * handlers_test.go
 *    Tests for the KnowledgeDesk API handlers
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/api/handlers_test.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/knowledgedesk/KnowledgeDesk/internal/classifier"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
	"github.com/knowledgedesk/KnowledgeDesk/internal/orchestrator"
	"github.com/knowledgedesk/KnowledgeDesk/internal/retrieval"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrchestrator struct {
	result *orchestrator.Result
	err    error
	gotQ   string
}

func (f *fakeOrchestrator) Handle(ctx context.Context, userID, query string) (*orchestrator.Result, error) {
	f.gotQ = query
	return f.result, f.err
}

type fakeGate struct {
	action      *db.PendingAction
	err         error
	gotApproved bool
	gotActor    string
}

func (f *fakeGate) Decide(ctx context.Context, actionID uuid.UUID, approved bool, actor string) (*db.PendingAction, error) {
	f.gotApproved = approved
	f.gotActor = actor
	return f.action, f.err
}

type fakeReadStore struct {
	request *db.QueryRequest
	action  *db.PendingAction
	pending []db.PendingAction
	entries []db.AuditEntry
}

func (f *fakeReadStore) GetQueryRequestByID(ctx context.Context, id uuid.UUID) (*db.QueryRequest, error) {
	if f.request == nil {
		return nil, db.ErrNotFound
	}
	return f.request, nil
}

func (f *fakeReadStore) GetPendingActionByID(ctx context.Context, id uuid.UUID) (*db.PendingAction, error) {
	if f.action == nil {
		return nil, db.ErrNotFound
	}
	return f.action, nil
}

func (f *fakeReadStore) ListUnresolvedActions(ctx context.Context, limit, offset int) ([]db.PendingAction, error) {
	return f.pending, nil
}

func (f *fakeReadStore) ListActionsForRequest(ctx context.Context, requestID uuid.UUID) ([]db.PendingAction, error) {
	return f.pending, nil
}

func (f *fakeReadStore) ListAuditEntriesForRequest(ctx context.Context, requestID uuid.UUID) ([]db.AuditEntry, error) {
	return f.entries, nil
}

type fakeHealth struct{ err error }

func (f *fakeHealth) HealthCheck(ctx context.Context) error { return f.err }

func newTestRouter(o QueryHandler, gate DecisionGate, store ReadStore, health HealthChecker) *mux.Router {
	router := mux.NewRouter()
	NewHandlers(o, gate, store, health).RegisterRoutes(router)
	return router
}

func sampleAction(status db.ActionStatus) *db.PendingAction {
	return &db.PendingAction{
		ID:            uuid.New(),
		RequestID:     uuid.New(),
		ActionType:    db.ActionTypeCreateTicket,
		TargetService: "jira",
		Payload:       db.JSONBMap{"description": "printer is down", "priority": "medium"},
		Status:        status,
		CreatedAt:     time.Now(),
	}
}

func TestSubmitQueryReturnsAnswerWithCitations(t *testing.T) {
	orch := &fakeOrchestrator{result: &orchestrator.Result{
		RequestID: uuid.New(),
		Status:    db.RequestStatusAnswered,
		Intent:    classifier.IntentAnswerFromKnowledgeBase,
		Answer:    "The refund window is 30 days.",
		Citations: []retrieval.Citation{{DocID: uuid.New(), Text: "refund window", RelevanceScore: 0.9}},
	}}
	router := newTestRouter(orch, &fakeGate{}, &fakeReadStore{}, &fakeHealth{})

	body, _ := json.Marshal(QueryRequestBody{UserID: "user-1", Query: "What is the refund window?"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/query", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "The refund window is 30 days.", resp.Summary)
	require.Len(t, resp.Citations, 1)
	assert.Empty(t, resp.PendingActions)
	assert.Nil(t, resp.Action)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestSubmitQueryReturnsDraftedAction(t *testing.T) {
	action := sampleAction(db.ActionStatusPending)
	orch := &fakeOrchestrator{result: &orchestrator.Result{
		RequestID: action.RequestID,
		Status:    db.RequestStatusActionDrafted,
		Intent:    classifier.IntentCreateTicket,
		Answer:    "I have prepared a ticket. It is awaiting approval.",
		Action:    action,
	}}
	router := newTestRouter(orch, &fakeGate{}, &fakeReadStore{}, &fakeHealth{})

	body, _ := json.Marshal(QueryRequestBody{UserID: "user-1", Query: "open a ticket"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/query", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp QueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Action)
	assert.Equal(t, "pending", resp.Action.Status)
	assert.Equal(t, "jira", resp.Action.TargetService)
	require.Len(t, resp.PendingActions, 1)
	assert.Equal(t, action.ID, resp.PendingActions[0])
}

/* The submit-query body carries summary and pending_actions keys so
 * approval UIs can fetch drafted actions without parsing the full
 * action record. */
func TestSubmitQueryBodyCarriesSummaryAndPendingActionIDs(t *testing.T) {
	action := sampleAction(db.ActionStatusPending)
	orch := &fakeOrchestrator{result: &orchestrator.Result{
		RequestID: action.RequestID,
		Status:    db.RequestStatusActionDrafted,
		Intent:    classifier.IntentCreateTicket,
		Answer:    "I have prepared a ticket. It is awaiting approval.",
		Action:    action,
	}}
	router := newTestRouter(orch, &fakeGate{}, &fakeReadStore{}, &fakeHealth{})

	body, _ := json.Marshal(QueryRequestBody{UserID: "user-1", Query: "open a ticket"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/query", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	require.Contains(t, raw, "summary")
	require.Contains(t, raw, "pending_actions")
	require.Contains(t, raw, "citations")
	require.Contains(t, raw, "request_id")

	var ids []uuid.UUID
	require.NoError(t, json.Unmarshal(raw["pending_actions"], &ids))
	require.Len(t, ids, 1)
	assert.Equal(t, action.ID, ids[0])
}

func TestSubmitQueryRejectsEmptyQuery(t *testing.T) {
	router := newTestRouter(&fakeOrchestrator{}, &fakeGate{}, &fakeReadStore{}, &fakeHealth{})

	body, _ := json.Marshal(QueryRequestBody{UserID: "user-1"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/query", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitQueryMapsPipelineFailure(t *testing.T) {
	orch := &fakeOrchestrator{err: fmt.Errorf("request ledger write failed")}
	router := newTestRouter(orch, &fakeGate{}, &fakeReadStore{}, &fakeHealth{})

	body, _ := json.Marshal(QueryRequestBody{UserID: "user-1", Query: "anything"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/query", bytes.NewReader(body)))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
}

func TestListPendingActions(t *testing.T) {
	store := &fakeReadStore{pending: []db.PendingAction{*sampleAction(db.ActionStatusPending)}}
	router := newTestRouter(&fakeOrchestrator{}, &fakeGate{}, store, &fakeHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/actions?limit=10", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []ActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "pending", resp[0].Status)
}

func TestListPendingActionsRejectsBadPagination(t *testing.T) {
	router := newTestRouter(&fakeOrchestrator{}, &fakeGate{}, &fakeReadStore{}, &fakeHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/actions?limit=-1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecideActionApprove(t *testing.T) {
	executed := sampleAction(db.ActionStatusExecuted)
	gate := &fakeGate{action: executed}
	router := newTestRouter(&fakeOrchestrator{}, gate, &fakeReadStore{}, &fakeHealth{})

	approved := true
	body, _ := json.Marshal(DecideRequestBody{Approved: &approved, UserSignature: "alice@example.com"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/actions/"+executed.ID.String()+"/decide", bytes.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, gate.gotApproved)
	assert.Equal(t, "alice@example.com", gate.gotActor)

	var resp DecideResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.Equal(t, "executed", resp.Action.Status)
}

func TestDecideActionConflictOnDoubleDecision(t *testing.T) {
	gate := &fakeGate{err: db.ErrAlreadyDecided}
	router := newTestRouter(&fakeOrchestrator{}, gate, &fakeReadStore{}, &fakeHealth{})

	approved := true
	body, _ := json.Marshal(DecideRequestBody{Approved: &approved, UserSignature: "bob@example.com"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/actions/"+uuid.New().String()+"/decide", bytes.NewReader(body)))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestDecideActionRequiresApprovedField(t *testing.T) {
	router := newTestRouter(&fakeOrchestrator{}, &fakeGate{}, &fakeReadStore{}, &fakeHealth{})

	body := []byte(`{"user_signature":"alice@example.com"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/actions/"+uuid.New().String()+"/decide", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecideActionRequiresSignature(t *testing.T) {
	router := newTestRouter(&fakeOrchestrator{}, &fakeGate{}, &fakeReadStore{}, &fakeHealth{})

	approved := false
	body, _ := json.Marshal(DecideRequestBody{Approved: &approved})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/actions/"+uuid.New().String()+"/decide", bytes.NewReader(body)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDecideActionUnknownIDReturns404(t *testing.T) {
	gate := &fakeGate{err: db.ErrNotFound}
	router := newTestRouter(&fakeOrchestrator{}, gate, &fakeReadStore{}, &fakeHealth{})

	approved := true
	body, _ := json.Marshal(DecideRequestBody{Approved: &approved, UserSignature: "alice@example.com"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/actions/"+uuid.New().String()+"/decide", bytes.NewReader(body)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRequestIncludesActions(t *testing.T) {
	request := &db.QueryRequest{
		ID:        uuid.New(),
		UserID:    "user-1",
		Query:     "open a ticket",
		Status:    db.RequestStatusActionDrafted,
		CreatedAt: time.Now(),
	}
	store := &fakeReadStore{request: request, pending: []db.PendingAction{*sampleAction(db.ActionStatusPending)}}
	router := newTestRouter(&fakeOrchestrator{}, &fakeGate{}, store, &fakeHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/requests/"+request.ID.String(), nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp RequestResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "action_drafted", resp.Status)
	assert.Len(t, resp.Actions, 1)
}

func TestGetRequestUnknownIDReturns404(t *testing.T) {
	router := newTestRouter(&fakeOrchestrator{}, &fakeGate{}, &fakeReadStore{}, &fakeHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/requests/"+uuid.New().String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRequestRejectsMalformedID(t *testing.T) {
	router := newTestRouter(&fakeOrchestrator{}, &fakeGate{}, &fakeReadStore{}, &fakeHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/requests/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRequestAudit(t *testing.T) {
	requestID := uuid.New()
	store := &fakeReadStore{entries: []db.AuditEntry{{
		ID:        1,
		RequestID: &requestID,
		EventType: "query.received",
		Actor:     "user-1",
		Details:   db.JSONBMap{"request_id": requestID.String()},
		CreatedAt: time.Now(),
	}}}
	router := newTestRouter(&fakeOrchestrator{}, &fakeGate{}, store, &fakeHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/v1/requests/"+requestID.String()+"/audit", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp []AuditEntryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, "query.received", resp[0].EventType)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&fakeOrchestrator{}, &fakeGate{}, &fakeReadStore{}, &fakeHealth{})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthEndpointReportsDatabaseOutage(t *testing.T) {
	router := newTestRouter(&fakeOrchestrator{}, &fakeGate{}, &fakeReadStore{}, &fakeHealth{err: fmt.Errorf("connection refused")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
