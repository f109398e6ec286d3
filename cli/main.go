/*-------------------------------------------------------------------------
 *
 * main.go
 *    Main entry point for kdesk-cli
 *
 * Copyright (c) 2024-2026, KnowledgeDesk, Inc. <support@knowledgedesk.io>
 *
 * IDENTIFICATION
 *    KnowledgeDesk/cli/main.go
 *
 *-------------------------------------------------------------------------
 */

package main

import (
	"github.com/knowledgedesk/KnowledgeDesk/cli/cmd"
)

func main() {
	cmd.Execute()
}
