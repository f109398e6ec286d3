/*-------------------------------------------------------------------------
 *
 * actions.go
 *    Pending-action commands for kdesk-cli
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/cli/cmd/actions.go
 *
 *-------------------------------------------------------------------------
 */

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/knowledgedesk/KnowledgeDesk/cli/pkg/client"
	"github.com/spf13/cobra"
)

var pendingLimit int

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "List actions awaiting approval",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewClient(apiURL)
		actions, err := c.ListPendingActions(pendingLimit)
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return json.NewEncoder(os.Stdout).Encode(actions)
		}

		if len(actions) == 0 {
			fmt.Println("No actions awaiting approval.")
			return nil
		}
		for _, action := range actions {
			description, _ := action.Payload["description"].(string)
			fmt.Printf("%s  %-16s %-6s %s\n", action.ID, action.ActionType, action.TargetService, description)
		}
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <action-id>",
	Short: "Approve a pending action and execute it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decide(args[0], true)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <action-id>",
	Short: "Reject a pending action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decide(args[0], false)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <action-id>",
	Short: "Show one action with its execution outcome",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := client.NewClient(apiURL)
		action, err := c.GetAction(args[0])
		if err != nil {
			return err
		}

		if outputFormat == "json" {
			return json.NewEncoder(os.Stdout).Encode(action)
		}

		printAction(action)
		return nil
	},
}

func decide(actionID string, approved bool) error {
	c := client.NewClient(apiURL)
	result, err := c.DecideAction(actionID, approved, userID)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		return json.NewEncoder(os.Stdout).Encode(result)
	}

	printAction(&result.Action)
	return nil
}

func printAction(action *client.Action) {
	fmt.Printf("Action:  %s\n", action.ID)
	fmt.Printf("Type:    %s -> %s\n", action.ActionType, action.TargetService)
	fmt.Printf("Status:  %s\n", action.Status)
	if description, ok := action.Payload["description"].(string); ok {
		fmt.Printf("Payload: %s\n", description)
	}
	if action.ApprovedBy != nil {
		fmt.Printf("Decided by: %s\n", *action.ApprovedBy)
	}
	if len(action.Result) > 0 {
		result, _ := json.Marshal(action.Result)
		fmt.Printf("Result:  %s\n", result)
	}
	if action.ErrorMessage != nil {
		fmt.Printf("Error:   %s\n", *action.ErrorMessage)
	}
}

func init() {
	pendingCmd.Flags().IntVar(&pendingLimit, "limit", 50, "Maximum number of actions to list")
}
