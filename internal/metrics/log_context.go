/*-------------------------------------------------------------------------
 *
 * log_context.go
 *    Log context helpers for structured logging
 *
 * Provides helpers for consistent structured logging with request_id,
 * action_id, user_id, and connector fields across all components.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/metrics/log_context.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	actionIDKey  contextKey = "action_id"
	userIDKey    contextKey = "user_id"
	connectorKey contextKey = "connector"
)

/* WithRequestIDLogContext adds the inbound request ID to log context */
func WithRequestIDLogContext(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, requestID)
}

/* WithActionIDLogContext adds a pending action ID to log context */
func WithActionIDLogContext(ctx context.Context, actionID uuid.UUID) context.Context {
	return context.WithValue(ctx, actionIDKey, actionID.String())
}

/* WithUserIDLogContext adds the requesting user to log context */
func WithUserIDLogContext(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDKey, userID)
}

/* WithConnectorLogContext adds the target connector to log context */
func WithConnectorLogContext(ctx context.Context, connector string) context.Context {
	if connector == "" {
		return ctx
	}
	return context.WithValue(ctx, connectorKey, connector)
}

/* GetRequestIDFromContext gets the request ID from context */
func GetRequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

/* GetActionIDFromContext gets the action ID from context */
func GetActionIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(actionIDKey).(string); ok {
		return id
	}
	return ""
}

/* GetUserIDFromContext gets the user ID from context */
func GetUserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

/* GetConnectorFromContext gets the connector name from context */
func GetConnectorFromContext(ctx context.Context) string {
	if name, ok := ctx.Value(connectorKey).(string); ok {
		return name
	}
	return ""
}

/* LoggerFromContext creates a zerolog logger with fields from context */
func LoggerFromContext(ctx context.Context) zerolog.Logger {
	logger := log.Logger

	if requestID := GetRequestIDFromContext(ctx); requestID != "" {
		logger = logger.With().Str("request_id", requestID).Logger()
	}
	if actionID := GetActionIDFromContext(ctx); actionID != "" {
		logger = logger.With().Str("action_id", actionID).Logger()
	}
	if userID := GetUserIDFromContext(ctx); userID != "" {
		logger = logger.With().Str("user_id", userID).Logger()
	}
	if connector := GetConnectorFromContext(ctx); connector != "" {
		logger = logger.With().Str("connector", connector).Logger()
	}

	return logger
}

/* LogWithContext logs a message with context fields */
func LogWithContext(ctx context.Context, level zerolog.Level, message string, fields map[string]interface{}) {
	logger := LoggerFromContext(ctx)
	event := logger.WithLevel(level)

	for key, value := range fields {
		event = event.Interface(key, value)
	}

	event.Msg(message)
}

/* DebugWithContext logs a debug message with context */
func DebugWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.DebugLevel, message, fields)
}

/* InfoWithContext logs an info message with context */
func InfoWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.InfoLevel, message, fields)
}

/* WarnWithContext logs a warning message with context */
func WarnWithContext(ctx context.Context, message string, fields map[string]interface{}) {
	LogWithContext(ctx, zerolog.WarnLevel, message, fields)
}

/* ErrorWithContext logs an error message with context */
func ErrorWithContext(ctx context.Context, message string, err error, fields map[string]interface{}) {
	if fields == nil {
		fields = make(map[string]interface{})
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	LogWithContext(ctx, zerolog.ErrorLevel, message, fields)
}
