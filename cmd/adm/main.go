// Package main provides the entry point for the feedback application admin CLI tool.
package main

import (
	"context"
	"fmt"
	"os"

	"happymeter/cmd/adm/commands"
	"happymeter/internal/config"
	"happymeter/internal/database"
	"happymeter/internal/observability"
	"happymeter/internal/services"

	"github.com/spf13/cobra"
)

func main() {
	ctx := context.Background()

	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// The admin tool is quiet by default and never exports telemetry.
	cfg.Server.LogLevel = "error"
	cfg.OpenTelemetry.EnableTracing = false
	cfg.OpenTelemetry.EnableMetrics = false
	cfg.OpenTelemetry.EnableLogging = false

	_, _, logger, err := observability.SetupObservability(&cfg.OpenTelemetry, "happymeter-admin")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize observability: %v\n", err)
		os.Exit(1)
	}

	dbManager := database.NewManager(logger)

	// No automatic migrations here. The db migrate subcommand applies them
	// explicitly.
	db, err := dbManager.InitDBWithoutMigrations(cfg.Database)
	if err != nil {
		logger.Error(ctx, "Failed to connect to database", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn(ctx, "Failed to close database connection", map[string]interface{}{"error": err.Error()})
		}
	}()

	feedbackService := services.NewFeedbackService(db, logger)

	rootCmd := &cobra.Command{
		Use:   "adm",
		Short: "Feedback Application Administration Tool",
		Long: `Feedback Application Administration Tool

CLI for administering the feedback service. Provides commands for
database migrations and feedback statistics.`,

		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				fmt.Printf("Error showing help: %v\n", err)
			}
		},
	}

	rootCmd.AddCommand(commands.DatabaseCommands(feedbackService, dbManager, logger, cfg.Database.URL))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
