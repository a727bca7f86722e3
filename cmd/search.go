package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finsight/finsight/internal/semantic"
)

var (
	searchWorkspace string
	searchLimit     int
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Find the most similar documents for a query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSearch(cmd.Context(), strings.Join(args, " "))
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchWorkspace, "workspace", "w", "", "workspace id (empty searches all workspaces)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", semantic.DefaultSearchLimit, "maximum number of results")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(parent context.Context, query string) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(context.Background()); closeErr != nil {
			a.Logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	opts := []semantic.SearchOption{semantic.WithLimit(searchLimit)}
	if searchWorkspace != "" {
		opts = append(opts, semantic.WithWorkspace(searchWorkspace))
	}

	results, err := a.Service.SearchText(ctx, query, opts...)
	if err != nil {
		return fmt.Errorf("searching: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("no matching documents")
		return nil
	}

	for i, res := range results {
		fmt.Printf("%2d. [%.4f] %s (%s, %s)\n",
			i+1, res.Score, res.Document.Content,
			res.Document.WorkspaceID, res.Document.Type)
	}
	return nil
}
