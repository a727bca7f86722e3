// Package cmd provides the finsight CLI.
//
// Commands:
//   - serve: HTTP API server for ingestion and search
//   - ingest: store documents from the command line or a JSONL file
//   - search: similarity search against a workspace
//   - stats: document counts per workspace
//   - migrate: apply database migrations
//
// Signal handling and graceful shutdown are implemented for all
// long-running commands via context cancellation.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "finsight",
	Short: "Semantic document store and similarity search",
	Long: `finsight stores text documents as embedding vectors and retrieves
the most semantically similar ones for a natural-language query.

Documents live in workspaces; search never crosses workspace boundaries
unless explicitly asked to.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
