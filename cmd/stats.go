package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finsight/finsight/internal/config"
	"github.com/finsight/finsight/internal/log"
	"github.com/finsight/finsight/internal/postgres"
)

var statsWorkspace string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show document counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStats(cmd.Context())
	},
}

func init() {
	statsCmd.Flags().StringVarP(&statsWorkspace, "workspace", "w", "", "workspace id (empty counts all workspaces)")
	rootCmd.AddCommand(statsCmd)
}

// runStats talks to the database directly; no embedding provider is
// needed, so it works without GEMINI_API_KEY.
func runStats(parent context.Context) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL())
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.Redacted(), err)
	}
	defer pool.Close()

	repo := postgres.NewRepository(pool, log.NewNop())
	count, err := repo.CountByWorkspace(ctx, statsWorkspace)
	if err != nil {
		return fmt.Errorf("counting documents: %w", err)
	}

	if statsWorkspace == "" {
		fmt.Printf("%d documents across all workspaces\n", count)
	} else {
		fmt.Printf("%d documents in workspace %s\n", count, statsWorkspace)
	}
	return nil
}
