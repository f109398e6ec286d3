/*-------------------------------------------------------------------------
 *
 * validation.go
 *    Request validation for the KnowledgeDesk API
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/api/validation.go
 *
 *-------------------------------------------------------------------------
 */

package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/knowledgedesk/KnowledgeDesk/internal/validation"
)

/* maxQueryBodySize bounds POST /query bodies */
const maxQueryBodySize = 64 * 1024

/* maxQueryLength bounds the query text itself */
const maxQueryLength = 8000

/* ValidateQueryRequest validates the query submission body */
func ValidateQueryRequest(req *QueryRequestBody) error {
	if err := validation.ValidateRequired(req.Query, "query"); err != nil {
		return err
	}
	if err := validation.ValidateMaxLength(req.Query, "query", maxQueryLength); err != nil {
		return err
	}
	if err := validation.ValidateRequired(req.UserID, "user_id"); err != nil {
		return err
	}
	return validation.ValidateMaxLength(req.UserID, "user_id", 256)
}

/* ValidateDecideRequest validates the decision body */
func ValidateDecideRequest(req *DecideRequestBody) error {
	if req.Approved == nil {
		return fmt.Errorf("approved is required and must be true or false")
	}
	if err := validation.ValidateRequired(req.UserSignature, "user_signature"); err != nil {
		return err
	}
	return validation.ValidateMaxLength(req.UserSignature, "user_signature", 256)
}

/* parsePagination reads limit/offset query parameters with defaults */
func parsePagination(r *http.Request) (int, int, error) {
	limit := 50
	offset := 0

	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid limit: '%s'", raw)
		}
		limit = parsed
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid offset: '%s'", raw)
		}
		offset = parsed
	}

	if err := validation.ValidateLimit(limit); err != nil {
		return 0, 0, err
	}
	if err := validation.ValidateOffset(offset); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}
