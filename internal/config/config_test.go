/*-------------------------------------------------------------------------
 *
 * config_test.go
 *    Tests for configuration loading
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/config/config_test.go
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "kdesk", cfg.Database.Database)
	assert.Equal(t, 3, cfg.Collaborators.TopK)
	assert.NotEmpty(t, cfg.LLM.Endpoint)
	assert.NotEmpty(t, cfg.LLM.Model)
	assert.Equal(t, 587, cfg.Connectors.SMTP.Port)
}

func TestLoadConfigFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 9090
collaborators:
  embedding_url: "http://embed:8002"
  top_k: 5
connectors:
  jira:
    base_url: "https://jira.example.com"
    project_key: "SUP"
classifier:
  rules:
    - intent: create_ticket
      keywords: ["escalate"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://embed:8002", cfg.Collaborators.EmbeddingURL)
	assert.Equal(t, 5, cfg.Collaborators.TopK)
	assert.Equal(t, "SUP", cfg.Connectors.Jira.ProjectKey)
	require.Len(t, cfg.Classifier.Rules, 1)
	assert.Equal(t, "create_ticket", cfg.Classifier.Rules[0].Intent)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "7070")
	t.Setenv("DB_NAME", "kdesk_test")
	t.Setenv("RETRIEVAL_TOP_K", "7")
	t.Setenv("SLACK_WEBHOOK_URL", "https://hooks.slack.com/services/x")

	cfg := DefaultConfig()
	LoadFromEnv(cfg)

	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "kdesk_test", cfg.Database.Database)
	assert.Equal(t, 7, cfg.Collaborators.TopK)
	assert.Equal(t, "https://hooks.slack.com/services/x", cfg.Connectors.Slack.WebhookURL)
}
