/*-------------------------------------------------------------------------
 *
 * main.go
 *    Main entry point for the KnowledgeDesk orchestrator server
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/cmd/orchestrator-server/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/knowledgedesk/KnowledgeDesk/internal/actions"
	"github.com/knowledgedesk/KnowledgeDesk/internal/answer"
	"github.com/knowledgedesk/KnowledgeDesk/internal/api"
	"github.com/knowledgedesk/KnowledgeDesk/internal/audit"
	"github.com/knowledgedesk/KnowledgeDesk/internal/classifier"
	"github.com/knowledgedesk/KnowledgeDesk/internal/config"
	"github.com/knowledgedesk/KnowledgeDesk/internal/connectors"
	"github.com/knowledgedesk/KnowledgeDesk/internal/db"
	"github.com/knowledgedesk/KnowledgeDesk/internal/events"
	"github.com/knowledgedesk/KnowledgeDesk/internal/metrics"
	"github.com/knowledgedesk/KnowledgeDesk/internal/orchestrator"
	"github.com/knowledgedesk/KnowledgeDesk/internal/retrieval"
	"github.com/knowledgedesk/KnowledgeDesk/pkg/services"
)

var (
	version   = "dev"
	buildDate = "unknown"
	gitCommit = "unknown"
)

func main() {
	var (
		showVersion    = flag.Bool("version", false, "Show version information")
		configPath     = flag.String("c", "", "Path to configuration file")
		configPathLong = flag.String("config", "", "Path to configuration file")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "KnowledgeDesk Server - query orchestration and approval-gated actions\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nConfiguration:\n")
		fmt.Fprintf(os.Stderr, "  - Command line flag: -c or --config\n")
		fmt.Fprintf(os.Stderr, "  - Environment variable: CONFIG_PATH\n")
		fmt.Fprintf(os.Stderr, "  - Environment variables (see config package for details)\n")
	}
	flag.Parse()

	if *showVersion {
		fmt.Printf("knowledgedesk version %s\n", version)
		fmt.Printf("Build date: %s\n", buildDate)
		fmt.Printf("Git commit: %s\n", gitCommit)
		os.Exit(0)
	}

	/* Load configuration */
	cfg := config.DefaultConfig()
	cfgPath := *configPath
	if cfgPath == "" {
		cfgPath = *configPathLong
	}
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath != "" {
		var err error
		cfg, err = config.LoadConfig(cfgPath)
		if err != nil {
			fmt.Printf("Failed to load config: %v, using defaults\n", err)
		}
	} else {
		config.LoadFromEnv(cfg)
	}

	/* Initialize logging */
	metrics.InitLogging(cfg.Logging.Level, cfg.Logging.Format)

	/* Connect to database */
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Database)

	database, err := db.NewDBWithRetry(connStr, db.PoolConfig{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	}, 5, 2*time.Second)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	/* Run migrations */
	migrationRunner, err := db.NewMigrationRunner(database.DB, "./migrations")
	if err == nil {
		if err := migrationRunner.Run(context.Background()); err != nil {
			fmt.Printf("Warning: Migration failed: %v\n", err)
		}
	}

	queries := db.NewQueries(database.DB)

	/* Report connection pool gauges */
	poolStatsDone := make(chan struct{})
	defer close(poolStatsDone)
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				openConns, _, inUse := database.GetPoolStats()
				metrics.RecordDBPoolStats(cfg.Database.Database, openConns, inUse)
			case <-poolStatsDone:
				return
			}
		}
	}()

	/* Lifecycle events, audit trail, and outbound notifications */
	broker := events.NewBroker()
	audit.NewRecorder(queries).Attach(broker)
	events.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.Timeout).Attach(broker)
	stream := api.NewEventStream(broker)

	/* Collaborator clients */
	embedClient := services.NewEmbeddingClient(cfg.Collaborators.EmbeddingURL, cfg.Collaborators.RequestTimeout)
	searchClient := services.NewSearchClient(cfg.Collaborators.VectorSearchURL, cfg.Collaborators.RequestTimeout)
	llmClient := services.NewLLMClient(cfg.LLM.Endpoint, cfg.LLM.APIKey, cfg.LLM.Model, cfg.LLM.Timeout)

	/* Connectors */
	registry := connectors.NewRegistry()
	registry.Register(connectors.NewJiraConnector(cfg.Connectors.Jira))
	registry.Register(connectors.NewSlackConnector(cfg.Connectors.Slack))
	registry.Register(connectors.NewEmailConnector(cfg.Connectors.SMTP))

	/* Pipeline */
	pipeline := retrieval.NewPipeline(embedClient, searchClient, cfg.Collaborators.TopK)
	synthesizer := answer.NewSynthesizer(llmClient)
	drafter := actions.NewDrafter(queries, registry, broker)
	executor := actions.NewExecutor(queries, registry, broker)
	gate := actions.NewGate(queries, executor, broker)
	intentClassifier := classifier.NewFromConfig(cfg.Classifier)
	orch := orchestrator.New(queries, intentClassifier, pipeline, synthesizer, drafter, broker)

	/* Setup router */
	router := mux.NewRouter()
	handlers := api.NewHandlers(orch, gate, queries, database)
	handlers.RegisterRoutes(router)
	router.HandleFunc("/ws/events", stream.Handler()).Methods("GET")

	/* Start server */
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		fmt.Printf("Server starting on %s\n", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "FATAL: Server failed: %v\n", err)
			os.Exit(1)
		}
	}()

	/* Graceful shutdown */
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	fmt.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Server shutdown failed: %v\n", err)
	}
	fmt.Println("Server stopped")
}
