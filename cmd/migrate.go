package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finsight/finsight/db"
	"github.com/finsight/finsight/internal/config"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(*cobra.Command, []string) error {
		return runMigrate()
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := db.Migrate(cfg.DatabaseURL()); err != nil {
		return fmt.Errorf("migrating %s: %w", cfg.Redacted(), err)
	}

	fmt.Println("migrations applied")
	return nil
}
