/*-------------------------------------------------------------------------
 *
 * models.go
 *    Database models for KnowledgeDesk
 *
 * Defines data structures for query requests, pending actions, and audit
 * entries, plus the closed status and action-type enums persisted with them.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/db/models.go
 *
 *-------------------------------------------------------------------------
 */

package db

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

/* RequestStatus is the lifecycle status of a query request */
type RequestStatus string

const (
	RequestStatusReceived      RequestStatus = "received"
	RequestStatusAnswered      RequestStatus = "answered"
	RequestStatusActionDrafted RequestStatus = "action_drafted"
	RequestStatusFailed        RequestStatus = "failed"
)

/* Valid reports whether the status is a member of the closed enum */
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestStatusReceived, RequestStatusAnswered, RequestStatusActionDrafted, RequestStatusFailed:
		return true
	}
	return false
}

/* Scan implements sql.Scanner, rejecting unknown values at the persistence boundary */
func (s *RequestStatus) Scan(src interface{}) error {
	v, err := scanEnumString(src)
	if err != nil {
		return fmt.Errorf("request status scan failed: error=%w", err)
	}
	status := RequestStatus(v)
	if !status.Valid() {
		return fmt.Errorf("unknown request status in database: value='%s'", v)
	}
	*s = status
	return nil
}

/* Value implements driver.Valuer */
func (s RequestStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("refusing to persist unknown request status: value='%s'", string(s))
	}
	return string(s), nil
}

/* ActionStatus is the lifecycle status of a pending action */
type ActionStatus string

const (
	ActionStatusPending         ActionStatus = "pending"
	ActionStatusApproved        ActionStatus = "approved"
	ActionStatusRejected        ActionStatus = "rejected"
	ActionStatusExecuted        ActionStatus = "executed"
	ActionStatusExecutionFailed ActionStatus = "execution_failed"
)

/* Valid reports whether the status is a member of the closed enum */
func (s ActionStatus) Valid() bool {
	switch s {
	case ActionStatusPending, ActionStatusApproved, ActionStatusRejected,
		ActionStatusExecuted, ActionStatusExecutionFailed:
		return true
	}
	return false
}

/* Terminal reports whether no further transition may leave the status */
func (s ActionStatus) Terminal() bool {
	switch s {
	case ActionStatusRejected, ActionStatusExecuted, ActionStatusExecutionFailed:
		return true
	}
	return false
}

/* Scan implements sql.Scanner, rejecting unknown values at the persistence boundary */
func (s *ActionStatus) Scan(src interface{}) error {
	v, err := scanEnumString(src)
	if err != nil {
		return fmt.Errorf("action status scan failed: error=%w", err)
	}
	status := ActionStatus(v)
	if !status.Valid() {
		return fmt.Errorf("unknown action status in database: value='%s'", v)
	}
	*s = status
	return nil
}

/* Value implements driver.Valuer */
func (s ActionStatus) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("refusing to persist unknown action status: value='%s'", string(s))
	}
	return string(s), nil
}

/* ActionType identifies the kind of side effect a pending action drafts */
type ActionType string

const (
	ActionTypeCreateTicket    ActionType = "CreateTicket"
	ActionTypeSendEmail       ActionType = "SendEmail"
	ActionTypePostChatMessage ActionType = "PostChatMessage"
)

/* Valid reports whether the action type is a member of the closed enum */
func (t ActionType) Valid() bool {
	switch t {
	case ActionTypeCreateTicket, ActionTypeSendEmail, ActionTypePostChatMessage:
		return true
	}
	return false
}

/* Scan implements sql.Scanner, rejecting unknown values at the persistence boundary */
func (t *ActionType) Scan(src interface{}) error {
	v, err := scanEnumString(src)
	if err != nil {
		return fmt.Errorf("action type scan failed: error=%w", err)
	}
	actionType := ActionType(v)
	if !actionType.Valid() {
		return fmt.Errorf("unknown action type in database: value='%s'", v)
	}
	*t = actionType
	return nil
}

/* Value implements driver.Valuer */
func (t ActionType) Value() (driver.Value, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("refusing to persist unknown action type: value='%s'", string(t))
	}
	return string(t), nil
}

func scanEnumString(src interface{}) (string, error) {
	switch v := src.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case nil:
		return "", fmt.Errorf("enum column is NULL")
	default:
		return "", fmt.Errorf("unsupported enum source type %T", src)
	}
}

/* JSONBMap maps a PostgreSQL jsonb column to a Go map */
type JSONBMap map[string]interface{}

/* Value implements driver.Valuer */
func (m JSONBMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("jsonb marshaling failed: keys=%d, error=%w", len(m), err)
	}
	return data, nil
}

/* Scan implements sql.Scanner */
func (m *JSONBMap) Scan(src interface{}) error {
	if src == nil {
		*m = make(JSONBMap)
		return nil
	}

	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("jsonb scan failed: unsupported source type %T", src)
	}

	result := make(JSONBMap)
	if err := json.Unmarshal(data, &result); err != nil {
		return fmt.Errorf("jsonb unmarshaling failed: data_length=%d, error=%w", len(data), err)
	}
	*m = result
	return nil
}

/* FromMap converts a plain map to a JSONBMap */
func FromMap(m map[string]interface{}) JSONBMap {
	if m == nil {
		return nil
	}
	return JSONBMap(m)
}

/* ToMap converts a JSONBMap back to a plain map */
func (m JSONBMap) ToMap() map[string]interface{} {
	if m == nil {
		return make(map[string]interface{})
	}
	return map[string]interface{}(m)
}

/* QueryRequest is one row in the request ledger. Immutable once written
 * except for status, which the handling pipeline sets exactly once. */
type QueryRequest struct {
	ID          uuid.UUID     `db:"id"`
	UserID      string        `db:"user_id"`
	Query       string        `db:"query"`
	Status      RequestStatus `db:"status"`
	CreatedAt   time.Time     `db:"created_at"`
	CompletedAt *time.Time    `db:"completed_at"`
}

/* PendingAction is a durable, approval-gated record of a side-effecting
 * operation. Created in status pending; mutated only by the approval gate
 * and the action executor. */
type PendingAction struct {
	ID            uuid.UUID    `db:"id"`
	RequestID     uuid.UUID    `db:"request_id"`
	ActionType    ActionType   `db:"action_type"`
	TargetService string       `db:"target_service"`
	Payload       JSONBMap     `db:"payload"`
	Status        ActionStatus `db:"status"`
	Result        JSONBMap     `db:"result"`
	ErrorMessage  *string      `db:"error_message"`
	CreatedAt     time.Time    `db:"created_at"`
	ApprovedAt    *time.Time   `db:"approved_at"`
	ApprovedBy    *string      `db:"approved_by"`
}

/* AuditEntry records one lifecycle event for a request or action */
type AuditEntry struct {
	ID        int64      `db:"id"`
	RequestID *uuid.UUID `db:"request_id"`
	ActionID  *uuid.UUID `db:"action_id"`
	EventType string     `db:"event_type"`
	Actor     string     `db:"actor"`
	Details   JSONBMap   `db:"details"`
	CreatedAt time.Time  `db:"created_at"`
}
