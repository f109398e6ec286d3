/*-------------------------------------------------------------------------
 *
 * prometheus.go
 *    Prometheus metrics for KnowledgeDesk
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/metrics/prometheus.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	/* Request metrics */
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kdesk_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	/* Query pipeline metrics */
	queriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kdesk_queries_total",
			Help: "Total number of queries processed, by classified intent",
		},
		[]string{"intent", "status"},
	)

	/* Collaborator metrics */
	collaboratorCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kdesk_collaborator_calls_total",
			Help: "Total number of collaborator calls",
		},
		[]string{"collaborator", "status"},
	)

	collaboratorCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kdesk_collaborator_call_duration_seconds",
			Help:    "Collaborator call duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"collaborator"},
	)

	/* Retrieval metrics */
	retrievalMatchesReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "kdesk_retrieval_matches_returned",
			Help:    "Number of non-empty matches returned per retrieval",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	/* Action metrics */
	actionsDraftedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kdesk_actions_drafted_total",
			Help: "Total number of pending actions drafted",
		},
		[]string{"action_type"},
	)

	actionDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kdesk_action_decisions_total",
			Help: "Total number of approval decisions, including conflicts",
		},
		[]string{"decision"},
	)

	actionExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kdesk_action_executions_total",
			Help: "Total number of action executions",
		},
		[]string{"connector", "status"},
	)

	actionExecutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kdesk_action_execution_duration_seconds",
			Help:    "Action execution duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"connector"},
	)

	/* Database metrics */
	dbPoolOpenConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kdesk_db_pool_open_connections",
			Help: "Number of open database connections",
		},
		[]string{"database"},
	)

	dbPoolInUseConns = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kdesk_db_pool_in_use_connections",
			Help: "Number of database connections in use",
		},
		[]string{"database"},
	)
)

/* RecordHTTPRequest records an HTTP request */
func RecordHTTPRequest(method, endpoint string, status int, duration time.Duration) {
	/* Convert status code to status class for better PromQL queries */
	statusClass := "unknown"
	if status >= 200 && status < 300 {
		statusClass = "2xx"
	} else if status >= 300 && status < 400 {
		statusClass = "3xx"
	} else if status >= 400 && status < 500 {
		statusClass = "4xx"
	} else if status >= 500 {
		statusClass = "5xx"
	}

	httpRequestsTotal.WithLabelValues(method, endpoint, statusClass).Inc()
	httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

/* RecordQuery records a processed query by intent and outcome */
func RecordQuery(intent, status string) {
	queriesTotal.WithLabelValues(intent, status).Inc()
}

/* RecordCollaboratorCall records a call to a remote collaborator */
func RecordCollaboratorCall(collaborator, status string, duration time.Duration) {
	collaboratorCallsTotal.WithLabelValues(collaborator, status).Inc()
	collaboratorCallDuration.WithLabelValues(collaborator).Observe(duration.Seconds())
}

/* RecordRetrievalMatches records how many usable matches a retrieval produced */
func RecordRetrievalMatches(count int) {
	retrievalMatchesReturned.Observe(float64(count))
}

/* RecordActionDrafted records a drafted pending action */
func RecordActionDrafted(actionType string) {
	actionsDraftedTotal.WithLabelValues(actionType).Inc()
}

/* RecordActionDecision records an approval decision outcome */
func RecordActionDecision(decision string) {
	actionDecisionsTotal.WithLabelValues(decision).Inc()
}

/* RecordActionExecution records an action execution attempt */
func RecordActionExecution(connector, status string, duration time.Duration) {
	actionExecutionsTotal.WithLabelValues(connector, status).Inc()
	actionExecutionDuration.WithLabelValues(connector).Observe(duration.Seconds())
}

/* RecordDBPoolStats records database connection pool statistics */
func RecordDBPoolStats(database string, openConns, inUse int) {
	dbPoolOpenConns.WithLabelValues(database).Set(float64(openConns))
	dbPoolInUseConns.WithLabelValues(database).Set(float64(inUse))
}

/* Handler returns the Prometheus metrics handler */
func Handler() http.Handler {
	return promhttp.Handler()
}
