/*-------------------------------------------------------------------------
 *
 * config.go
 *    Configuration loading for KnowledgeDesk
 *
 * Loads server, database, collaborator, and connector configuration from a
 * YAML file with environment-variable overrides. The configuration is loaded
 * once at startup and passed explicitly to each component; no component reads
 * the process environment directly.
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/internal/config/config.go
 *
 *-------------------------------------------------------------------------
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Logging       LoggingConfig       `yaml:"logging"`
	Collaborators CollaboratorsConfig `yaml:"collaborators"`
	LLM           LLMConfig           `yaml:"llm"`
	Connectors    ConnectorsConfig    `yaml:"connectors"`
	Classifier    ClassifierConfig    `yaml:"classifier"`
	Notify        NotifyConfig        `yaml:"notify"`
}

type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type CollaboratorsConfig struct {
	EmbeddingURL    string        `yaml:"embedding_url"`
	VectorSearchURL string        `yaml:"vector_search_url"`
	TopK            int           `yaml:"top_k"`
	RequestTimeout  time.Duration `yaml:"request_timeout"`
}

type LLMConfig struct {
	Endpoint string        `yaml:"endpoint"`
	APIKey   string        `yaml:"api_key"`
	Model    string        `yaml:"model"`
	Timeout  time.Duration `yaml:"timeout"`
}

type ConnectorsConfig struct {
	Jira  JiraConfig  `yaml:"jira"`
	Slack SlackConfig `yaml:"slack"`
	SMTP  SMTPConfig  `yaml:"smtp"`
}

type JiraConfig struct {
	BaseURL    string `yaml:"base_url"`
	ProjectKey string `yaml:"project_key"`
	Username   string `yaml:"username"`
	APIToken   string `yaml:"api_token"`
}

type SlackConfig struct {
	WebhookURL     string `yaml:"webhook_url"`
	DefaultChannel string `yaml:"default_channel"`
}

type SMTPConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	From           string `yaml:"from"`
	AlertRecipient string `yaml:"alert_recipient"`
}

type ClassifierConfig struct {
	Rules []ClassifierRule `yaml:"rules"`
}

/* ClassifierRule binds a set of trigger keywords to an intent name. Rule
 * order in the configuration is the matching priority order. */
type ClassifierRule struct {
	Intent   string   `yaml:"intent"`
	Keywords []string `yaml:"keywords"`
}

type NotifyConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Timeout    time.Duration `yaml:"timeout"`
}

/* DefaultConfig returns the default configuration */
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 60 * time.Second,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			User:            "postgres",
			Password:        "postgres",
			Database:        "kdesk",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 10 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Collaborators: CollaboratorsConfig{
			EmbeddingURL:    "http://localhost:8002",
			VectorSearchURL: "http://localhost:8003",
			TopK:            3,
			RequestTimeout:  15 * time.Second,
		},
		LLM: LLMConfig{
			Endpoint: "https://api.groq.com/openai/v1/chat/completions",
			Model:    "llama-3.3-70b-versatile",
			Timeout:  30 * time.Second,
		},
		Connectors: ConnectorsConfig{
			SMTP: SMTPConfig{
				Port: 587,
			},
		},
		Notify: NotifyConfig{
			Timeout: 10 * time.Second,
		},
	}
}

/* LoadConfig loads configuration from a YAML file on top of the defaults */
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: path='%s', error=%w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: path='%s', error=%w", path, err)
	}

	LoadFromEnv(cfg)
	return cfg, nil
}

/* LoadFromEnv overrides configuration from environment variables */
func LoadFromEnv(cfg *Config) {
	setString(&cfg.Server.Host, "SERVER_HOST")
	setInt(&cfg.Server.Port, "PORT")

	setString(&cfg.Database.Host, "DB_HOST")
	setInt(&cfg.Database.Port, "DB_PORT")
	setString(&cfg.Database.User, "DB_USER")
	setString(&cfg.Database.Password, "DB_PASSWORD")
	setString(&cfg.Database.Database, "DB_NAME")

	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")

	setString(&cfg.Collaborators.EmbeddingURL, "EMBEDDING_SERVICE_URL")
	setString(&cfg.Collaborators.VectorSearchURL, "VECTOR_SEARCH_SERVICE_URL")
	setInt(&cfg.Collaborators.TopK, "RETRIEVAL_TOP_K")

	setString(&cfg.LLM.Endpoint, "LLM_ENDPOINT")
	setString(&cfg.LLM.APIKey, "LLM_API_KEY")
	setString(&cfg.LLM.Model, "LLM_MODEL")

	setString(&cfg.Connectors.Jira.BaseURL, "JIRA_BASE_URL")
	setString(&cfg.Connectors.Jira.ProjectKey, "JIRA_PROJECT_KEY")
	setString(&cfg.Connectors.Jira.Username, "JIRA_USERNAME")
	setString(&cfg.Connectors.Jira.APIToken, "JIRA_API_TOKEN")

	setString(&cfg.Connectors.Slack.WebhookURL, "SLACK_WEBHOOK_URL")
	setString(&cfg.Connectors.Slack.DefaultChannel, "SLACK_DEFAULT_CHANNEL")

	setString(&cfg.Connectors.SMTP.Host, "SMTP_HOST")
	setInt(&cfg.Connectors.SMTP.Port, "SMTP_PORT")
	setString(&cfg.Connectors.SMTP.Username, "SMTP_USERNAME")
	setString(&cfg.Connectors.SMTP.Password, "SMTP_PASSWORD")
	setString(&cfg.Connectors.SMTP.From, "SMTP_FROM")
	setString(&cfg.Connectors.SMTP.AlertRecipient, "ALERT_RECIPIENT")

	setString(&cfg.Notify.WebhookURL, "NOTIFY_WEBHOOK_URL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
