package main

// Manage database migrations:
//   go run ./cmd/migrate up
//   go run ./cmd/migrate down
//   go run ./cmd/migrate status

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"inreader-backend/internal/shared/config"
	"inreader-backend/internal/shared/storage/db"
	"inreader-backend/internal/shared/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		telemetry.Error("migrate.failed", map[string]any{"error": err})
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var databaseURL string
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Apply or inspect the database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&databaseURL, "database-url", "", "overrides DATABASE_URL")

	step := func(use, short string, fn func(context.Context, *sql.DB) error) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withDB(cmd.Context(), databaseURL, fn)
			},
		}
	}
	root.AddCommand(
		step("up", "Apply all pending migrations", db.RunMigrations),
		step("down", "Roll back the latest migration", db.RollbackMigration),
		step("status", "Print migration status", db.MigrationStatus),
	)
	return root
}

func withDB(ctx context.Context, databaseURL string, fn func(context.Context, *sql.DB) error) error {
	if strings.TrimSpace(databaseURL) == "" {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		telemetry.Setup(cfg.LogLevel, cfg.LogFormat)
		databaseURL = cfg.DatabaseURL
	}
	if strings.TrimSpace(databaseURL) == "" {
		return errors.New("DATABASE_URL is required")
	}

	sqlDB, err := db.Connect(ctx, databaseURL, db.OptionsFromEnv(db.DefaultMigrateOptions()))
	if err != nil {
		return err
	}
	defer sqlDB.Close()
	return fn(ctx, sqlDB)
}
