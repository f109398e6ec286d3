/*-------------------------------------------------------------------------
 *
 * handlers.go
 *    HTTP handlers for the KnowledgeDesk API
 *
 * Exposes query submission, pending-action listing, approval
 * decisions, and read access to the request ledger and audit trail.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/api/handlers.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
	"github.com/knowledgedesk/KnowledgeDesk/internal/orchestrator"
	"github.com/knowledgedesk/KnowledgeDesk/internal/validation"
)

/* QueryHandler processes one user query end to end */
type QueryHandler interface {
	Handle(ctx context.Context, userID, query string) (*orchestrator.Result, error)
}

/* DecisionGate applies approve/reject decisions */
type DecisionGate interface {
	Decide(ctx context.Context, actionID uuid.UUID, approved bool, actor string) (*db.PendingAction, error)
}

/* ReadStore serves read access to the ledger, actions, and audit trail */
type ReadStore interface {
	GetQueryRequestByID(ctx context.Context, id uuid.UUID) (*db.QueryRequest, error)
	GetPendingActionByID(ctx context.Context, id uuid.UUID) (*db.PendingAction, error)
	ListUnresolvedActions(ctx context.Context, limit, offset int) ([]db.PendingAction, error)
	ListActionsForRequest(ctx context.Context, requestID uuid.UUID) ([]db.PendingAction, error)
	ListAuditEntriesForRequest(ctx context.Context, requestID uuid.UUID) ([]db.AuditEntry, error)
}

/* HealthChecker reports database connectivity */
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

/* Handlers holds the API dependencies */
type Handlers struct {
	orchestrator QueryHandler
	gate         DecisionGate
	store        ReadStore
	health       HealthChecker
}

/* NewHandlers creates the API handler set */
func NewHandlers(o QueryHandler, gate DecisionGate, store ReadStore, health HealthChecker) *Handlers {
	return &Handlers{
		orchestrator: o,
		gate:         gate,
		store:        store,
		health:       health,
	}
}

/* RegisterRoutes attaches all routes and middleware to the router */
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.Use(RequestIDMiddleware)
	router.Use(SecurityHeadersMiddleware)
	router.Use(CORSMiddleware)
	router.Use(LoggingMiddleware)

	router.HandleFunc("/health", h.Health).Methods("GET")
	router.Handle("/metrics", metrics.Handler()).Methods("GET")

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/query", h.SubmitQuery).Methods("POST")
	apiRouter.HandleFunc("/actions", h.ListPendingActions).Methods("GET")
	apiRouter.HandleFunc("/actions/{id}", h.GetAction).Methods("GET")
	apiRouter.HandleFunc("/actions/{id}/decide", h.DecideAction).Methods("POST")
	apiRouter.HandleFunc("/requests/{id}", h.GetRequest).Methods("GET")
	apiRouter.HandleFunc("/requests/{id}/audit", h.GetRequestAudit).Methods("GET")
}

/* Health reports service and database health */
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.health.HealthCheck(r.Context()); err != nil {
		respondJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

/* SubmitQuery handles POST /api/v1/query */
func (h *Handlers) SubmitQuery(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	body, err := validation.ReadAndValidateBody(r, maxQueryBodySize)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "request body validation failed", err), requestID))
		return
	}

	var req QueryRequestBody
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "request body parsing failed", err), requestID))
		return
	}
	if err := ValidateQueryRequest(&req); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "query validation failed", err), requestID))
		return
	}

	ctx := metrics.WithUserIDLogContext(r.Context(), req.UserID)
	result, err := h.orchestrator.Handle(ctx, req.UserID, req.Query)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "query handling failed", err), requestID))
		return
	}

	response := QueryResponse{
		Status:         "success",
		RequestID:      result.RequestID,
		Intent:         string(result.Intent),
		Summary:        result.Answer,
		Citations:      toCitationResponses(result.Citations),
		PendingActions: []uuid.UUID{},
	}
	if result.Action != nil {
		action := toActionResponse(result.Action)
		response.PendingActions = append(response.PendingActions, action.ID)
		response.Action = &action
	}
	respondJSON(w, http.StatusOK, response)
}

/* ListPendingActions handles GET /api/v1/actions */
func (h *Handlers) ListPendingActions(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	limit, offset, err := parsePagination(r)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid pagination", err), requestID))
		return
	}

	actions, err := h.store.ListUnresolvedActions(r.Context(), limit, offset)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "pending action listing failed", err), requestID))
		return
	}

	responses := make([]ActionResponse, 0, len(actions))
	for i := range actions {
		responses = append(responses, toActionResponse(&actions[i]))
	}
	respondJSON(w, http.StatusOK, responses)
}

/* GetAction handles GET /api/v1/actions/{id} */
func (h *Handlers) GetAction(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	actionID, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	action, err := h.store.GetPendingActionByID(r.Context(), actionID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, WrapError(ErrNotFound, requestID))
			return
		}
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "action lookup failed", err), requestID))
		return
	}
	respondJSON(w, http.StatusOK, toActionResponse(action))
}

/* DecideAction handles POST /api/v1/actions/{id}/decide */
func (h *Handlers) DecideAction(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	actionID, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	body, err := validation.ReadAndValidateBody(r, maxQueryBodySize)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "request body validation failed", err), requestID))
		return
	}

	var req DecideRequestBody
	if err := json.Unmarshal(body, &req); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "request body parsing failed", err), requestID))
		return
	}
	if err := ValidateDecideRequest(&req); err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "decision validation failed", err), requestID))
		return
	}

	ctx := metrics.WithActionIDLogContext(r.Context(), actionID)
	action, err := h.gate.Decide(ctx, actionID, *req.Approved, req.UserSignature)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			respondError(w, WrapError(ErrNotFound, requestID))
		case errors.Is(err, db.ErrAlreadyDecided):
			respondError(w, WrapError(ErrAlreadyDecided, requestID))
		default:
			respondError(w, WrapError(NewError(http.StatusInternalServerError, "decision failed", err), requestID))
		}
		return
	}

	respondJSON(w, http.StatusOK, DecideResponse{
		Status: "success",
		Action: toActionResponse(action),
	})
}

/* GetRequest handles GET /api/v1/requests/{id} */
func (h *Handlers) GetRequest(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	request, err := h.store.GetQueryRequestByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			respondError(w, WrapError(ErrNotFound, requestID))
			return
		}
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "request lookup failed", err), requestID))
		return
	}

	actions, err := h.store.ListActionsForRequest(r.Context(), id)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "action listing failed", err), requestID))
		return
	}

	response := RequestResponse{
		ID:          request.ID,
		UserID:      request.UserID,
		Query:       request.Query,
		Status:      string(request.Status),
		CreatedAt:   request.CreatedAt,
		CompletedAt: request.CompletedAt,
		Actions:     make([]ActionResponse, 0, len(actions)),
	}
	for i := range actions {
		response.Actions = append(response.Actions, toActionResponse(&actions[i]))
	}
	respondJSON(w, http.StatusOK, response)
}

/* GetRequestAudit handles GET /api/v1/requests/{id}/audit */
func (h *Handlers) GetRequestAudit(w http.ResponseWriter, r *http.Request) {
	requestID := GetRequestID(r.Context())

	id, ok := pathID(w, r, requestID)
	if !ok {
		return
	}

	entries, err := h.store.ListAuditEntriesForRequest(r.Context(), id)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusInternalServerError, "audit trail lookup failed", err), requestID))
		return
	}

	responses := make([]AuditEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, toAuditEntryResponse(&entries[i]))
	}
	respondJSON(w, http.StatusOK, responses)
}

/* pathID parses the {id} path variable, responding with 400 on failure */
func pathID(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	raw, ok := mux.Vars(r)["id"]
	if !ok {
		respondError(w, WrapError(ErrBadRequest, requestID))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		respondError(w, WrapError(NewError(http.StatusBadRequest, "invalid id format", err), requestID))
		return uuid.Nil, false
	}
	return id, true
}
