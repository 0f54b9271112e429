package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/benvon/careerontrack/internal/config"
	"github.com/benvon/careerontrack/internal/database"
	"github.com/benvon/careerontrack/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var (
		databaseURL string
		timeout     time.Duration
		debug       bool
	)

	rootCmd := &cobra.Command{
		Use:          "careerontrack-migrate",
		Short:        "Create or upgrade the CareerOnTrack database schema",
		Long:         "Applies the users and goals schema. Safe to run repeatedly; existing tables are left in place.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			if databaseURL == "" {
				url, err := config.LoadDatabaseURL()
				if err != nil {
					return err
				}
				databaseURL = url
			}

			zapLogger, err := logger.NewCLILogger(debug)
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			defer func() { _ = logger.Sync(zapLogger) }()

			db, err := database.New(databaseURL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			start := time.Now()
			if err := db.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			zapLogger.Info("database_migrated", zap.Duration("duration", time.Since(start)))
			fmt.Println("Schema is up to date.")
			return nil
		},
	}

	flags := rootCmd.Flags()
	flags.StringVar(&databaseURL, "database-url", "", "PostgreSQL URL (default from DATABASE_URL)")
	flags.DurationVar(&timeout, "timeout", 30*time.Second, "Give up after this long")
	flags.BoolVar(&debug, "debug", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
