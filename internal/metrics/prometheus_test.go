/*-------------------------------------------------------------------------
 *
 * prometheus_test.go
 *    Tests for Prometheus metric recording
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/metrics/prometheus_test.go
 *
 *-------------------------------------------------------------------------
 */

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDBPoolStatsSetsGauges(t *testing.T) {
	RecordDBPoolStats("kdesk", 12, 4)

	assert.Equal(t, 12.0, testutil.ToFloat64(dbPoolOpenConns.WithLabelValues("kdesk")))
	assert.Equal(t, 4.0, testutil.ToFloat64(dbPoolInUseConns.WithLabelValues("kdesk")))

	RecordDBPoolStats("kdesk", 8, 0)

	assert.Equal(t, 8.0, testutil.ToFloat64(dbPoolOpenConns.WithLabelValues("kdesk")))
	assert.Equal(t, 0.0, testutil.ToFloat64(dbPoolInUseConns.WithLabelValues("kdesk")))
}
