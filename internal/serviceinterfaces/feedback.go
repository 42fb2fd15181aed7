// Package serviceinterfaces defines the service contracts consumed by handlers.
package serviceinterfaces

import (
	"context"

	"happymeter/internal/models"
	"happymeter/internal/sentiment"
)

// FeedbackServiceInterface defines persistence operations for feedback.
type FeedbackServiceInterface interface {
	CreateFeedback(ctx context.Context, text string, s models.Sentiment, confidenceScore string) (*models.Feedback, error)
	ListFeedback(ctx context.Context, limit, offset int, s *models.Sentiment) ([]models.Feedback, int, error)
	GetStats(ctx context.Context) (*models.FeedbackStats, error)
}

// SentimentAnalyzerInterface defines the classifier adapter operations.
type SentimentAnalyzerInterface interface {
	Warmup(ctx context.Context) error
	Analyze(ctx context.Context, text string) (*sentiment.Analysis, error)
}
