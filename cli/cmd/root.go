/*-------------------------------------------------------------------------
 *
 * root.go
 *    Root command and global flags for kdesk-cli
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/cli/cmd/root.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL       string
	userID       string
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "kdesk-cli",
	Short: "KnowledgeDesk CLI - query submission and action approval",
	Long: `KnowledgeDesk CLI submits questions to the orchestrator and manages
approval-gated actions.

Examples:
  # Ask a question
  kdesk-cli query "What is the refund policy?"

  # Draft a side-effecting action
  kdesk-cli query "Please open a ticket for the broken printer"

  # List actions awaiting approval
  kdesk-cli pending

  # Approve or reject a drafted action
  kdesk-cli approve <action-id>
  kdesk-cli reject <action-id>
`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "url", getEnvOrDefault("KDESK_URL", "http://localhost:8080"), "KnowledgeDesk API URL")
	rootCmd.PersistentFlags().StringVar(&userID, "user", getEnvOrDefault("KDESK_USER", "cli-user"), "User identifier for queries and approvals")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "text", "Output format (text, json)")

	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(pendingCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(showCmd)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
