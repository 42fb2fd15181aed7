// Package commands provides CLI commands for the admin tool
package commands

import (
	"context"
	"fmt"

	"happymeter/internal/database"
	"happymeter/internal/models"
	"happymeter/internal/observability"
	"happymeter/internal/serviceinterfaces"
	contextutils "happymeter/internal/utils"

	"github.com/spf13/cobra"
)

// DatabaseCommands returns the database management commands
func DatabaseCommands(feedbackService serviceinterfaces.FeedbackServiceInterface, dbManager *database.Manager, logger *observability.Logger, databaseURL string) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
		Long: `Database management commands for the feedback application.

Available commands:
  migrate   - Apply pending schema migrations
  stats     - Show feedback statistics
  recent    - List the most recent feedback entries`,
	}

	dbCmd.AddCommand(migrateCmd(dbManager, logger, databaseURL))
	dbCmd.AddCommand(statsCmd(feedbackService, logger))
	dbCmd.AddCommand(recentCmd(feedbackService, logger))

	return dbCmd
}

// migrateCmd returns the migrate command
func migrateCmd(dbManager *database.Manager, logger *observability.Logger, databaseURL string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := dbManager.RunMigrations(databaseURL); err != nil {
				logger.Error(context.Background(), "Migration failed", err)
				return err
			}
			fmt.Println("Migrations applied")
			return nil
		},
	}
}

// statsCmd returns the stats command
func statsCmd(feedbackService serviceinterfaces.FeedbackServiceInterface, logger *observability.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show feedback statistics",
		Long:  `Show total feedback volume and the per-sentiment breakdown.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()

			stats, err := feedbackService.GetStats(ctx)
			if err != nil {
				logger.Error(ctx, "Failed to get feedback statistics", err)
				return contextutils.WrapError(err, "failed to get feedback statistics")
			}

			fmt.Printf("Total:   %d\n", stats.Total)
			fmt.Printf("Good:    %d\n", stats.Good)
			fmt.Printf("Bad:     %d\n", stats.Bad)
			fmt.Printf("Neutral: %d\n", stats.Neutral)
			return nil
		},
	}
}

// recentCmd returns the recent command
func recentCmd(feedbackService serviceinterfaces.FeedbackServiceInterface, logger *observability.Logger) *cobra.Command {
	var limit int
	var sentimentFilter string

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List the most recent feedback entries",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx := context.Background()

			var filter *models.Sentiment
			if sentimentFilter != "" {
				s, ok := models.ParseSentiment(sentimentFilter)
				if !ok {
					return contextutils.NewAppError(contextutils.ErrorCodeInvalidInput,
						contextutils.SeverityWarn,
						"invalid sentiment filter: "+sentimentFilter, "")
				}
				filter = &s
			}

			list, total, err := feedbackService.ListFeedback(ctx, limit, 0, filter)
			if err != nil {
				logger.Error(ctx, "Failed to list feedback", err)
				return contextutils.WrapError(err, "failed to list feedback")
			}

			fmt.Printf("Showing %d of %d entries\n", len(list), total)
			for _, fb := range list {
				fmt.Printf("[%d] %s %-7s (%s) %s\n",
					fb.ID, fb.CreatedAt.Format("2006-01-02 15:04"), fb.Sentiment, fb.ConfidenceScore, fb.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of entries to show")
	cmd.Flags().StringVar(&sentimentFilter, "sentiment", "", "Filter by sentiment (GOOD, BAD, NEUTRAL)")

	return cmd
}
