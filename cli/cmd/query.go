/*-------------------------------------------------------------------------
 *
 * query.go
 *    Query submission command for kdesk-cli
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/cli/cmd/query.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/knowledgedesk/KnowledgeDesk/cli/pkg/client"
	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <question>",
	Short: "Submit a question or an action request",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")

		c := client.NewClient(apiURL)
		result, err := c.SubmitQuery(userID, question)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return json.NewEncoder(os.Stdout).Encode(result)
		}

		fmt.Printf("Request: %s\n", result.RequestID)
		fmt.Printf("Intent:  %s\n\n", result.Intent)
		fmt.Println(result.Summary)

		if len(result.Citations) > 0 {
			fmt.Println("\nSources:")
			for i, citation := range result.Citations {
				page := ""
				if citation.Page != nil {
					page = fmt.Sprintf(" (page %d)", *citation.Page)
				}
				fmt.Printf("  %d. [%.2f]%s %s\n", i+1, citation.RelevanceScore, page, citation.Text)
			}
		}

		if result.Action != nil {
			fmt.Printf("\nDrafted action %s (%s -> %s) is awaiting approval.\n",
				result.Action.ID, result.Action.ActionType, result.Action.TargetService)
			fmt.Printf("Approve with: kdesk-cli approve %s\n", result.Action.ID)
		}
		return nil
	},
}
