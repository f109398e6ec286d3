/*-------------------------------------------------------------------------
 *
 * errors.go
 *    API error types and response helpers
 *
 * Maps pipeline errors onto HTTP responses. Every error response
 * carries the request ID so clients can correlate with server logs.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/api/errors.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"encoding/json"
	"net/http"
)

/* APIError is an HTTP-mapped error */
type APIError struct {
	Code      int
	Message   string
	Err       error
	RequestID string
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

/* Common API errors */
var (
	ErrNotFound        = NewError(http.StatusNotFound, "resource not found", nil)
	ErrBadRequest      = NewError(http.StatusBadRequest, "invalid request", nil)
	ErrAlreadyDecided  = NewError(http.StatusConflict, "action already decided", nil)
	ErrMethodNotFound  = NewError(http.StatusMethodNotAllowed, "method not allowed", nil)
	ErrInternalFailure = NewError(http.StatusInternalServerError, "internal server error", nil)
)

/* NewError creates a new API error */
func NewError(code int, message string, err error) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

/* WrapError attaches a request ID to an API error */
func WrapError(err *APIError, requestID string) *APIError {
	return &APIError{
		Code:      err.Code,
		Message:   err.Message,
		Err:       err.Err,
		RequestID: requestID,
	}
}

/* ErrorResponse is the JSON body of every error response */
type ErrorResponse struct {
	Status  string `json:"status"`
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err *APIError) {
	response := ErrorResponse{
		Status: "error",
		Error:  err.Message,
		Code:   err.Code,
	}
	if err.Err != nil {
		response.Message = err.Err.Error()
	}
	if err.RequestID != "" {
		w.Header().Set("X-Request-ID", err.RequestID)
	}
	respondJSON(w, err.Code, response)
}
