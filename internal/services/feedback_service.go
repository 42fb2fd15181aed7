// Package services contains the persistence layer for feedback records.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"happymeter/internal/models"
	"happymeter/internal/observability"
	contextutils "happymeter/internal/utils"
)

// FeedbackService implements FeedbackServiceInterface over a relational store.
type FeedbackService struct {
	db     *sql.DB
	logger *observability.Logger
}

// NewFeedbackService creates a new FeedbackService instance.
func NewFeedbackService(db *sql.DB, logger *observability.Logger) *FeedbackService {
	if db == nil {
		panic("NewFeedbackService: db is nil")
	}
	if logger == nil {
		panic("NewFeedbackService: logger is nil")
	}
	return &FeedbackService{db: db, logger: logger}
}

// CreateFeedback inserts a new feedback row and returns the stored
// representation including the assigned id and timestamps. Text is stored
// as given; callers trim before persisting.
func (s *FeedbackService) CreateFeedback(ctx context.Context, text string, sentiment models.Sentiment, confidenceScore string) (result0 *models.Feedback, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "create_feedback",
		observability.AttributeSentiment(sentiment))
	defer observability.FinishSpan(span, &err)

	query := `INSERT INTO feedback (text, sentiment, confidence_score)
              VALUES ($1, $2, $3)
              RETURNING id, text, sentiment, confidence_score, created_at, updated_at`

	var fb models.Feedback
	err = s.db.QueryRowContext(ctx, query, text, sentiment, confidenceScore).
		Scan(&fb.ID, &fb.Text, &fb.Sentiment, &fb.ConfidenceScore, &fb.CreatedAt, &fb.UpdatedAt)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to insert feedback")
	}
	return &fb, nil
}

// ListFeedback returns feedback rows ordered newest first, plus the total
// count matching the same filter. The optional sentiment predicate is shared
// between the list and count queries by construction; the two reads need not
// be transactionally consistent.
func (s *FeedbackService) ListFeedback(ctx context.Context, limit, offset int, sentiment *models.Sentiment) (result0 []models.Feedback, result1 int, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "list_feedback",
		observability.AttributeLimit(limit),
		observability.AttributeOffset(offset))
	defer observability.FinishSpan(span, &err)

	var conditions []string
	var args []interface{}
	idx := 1
	if sentiment != nil {
		conditions = append(conditions, fmt.Sprintf("sentiment=$%d", idx))
		args = append(args, *sentiment)
		idx++
	}
	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM feedback %s", where)
	var total int
	if err = s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, contextutils.WrapError(err, "failed to count feedback")
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT id, text, sentiment, confidence_score, created_at, updated_at
              FROM feedback %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, where, idx, idx+1)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, contextutils.WrapError(err, "failed to query feedback list")
	}
	defer func() {
		_ = rows.Close()
	}()

	list := []models.Feedback{}
	for rows.Next() {
		var fb models.Feedback
		if err := rows.Scan(&fb.ID, &fb.Text, &fb.Sentiment, &fb.ConfidenceScore, &fb.CreatedAt, &fb.UpdatedAt); err != nil {
			return nil, 0, contextutils.WrapError(err, "failed to scan feedback row")
		}
		list = append(list, fb)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, contextutils.WrapError(err, "failed to iterate feedback rows")
	}
	return list, total, nil
}

// GetStats returns total and per-label counts across all stored feedback.
func (s *FeedbackService) GetStats(ctx context.Context) (result0 *models.FeedbackStats, err error) {
	ctx, span := observability.TraceFeedbackFunction(ctx, "get_stats")
	defer observability.FinishSpan(span, &err)

	query := `SELECT COUNT(*),
              COUNT(*) FILTER (WHERE sentiment = 'GOOD'),
              COUNT(*) FILTER (WHERE sentiment = 'BAD'),
              COUNT(*) FILTER (WHERE sentiment = 'NEUTRAL')
              FROM feedback`

	var stats models.FeedbackStats
	err = s.db.QueryRowContext(ctx, query).Scan(&stats.Total, &stats.Good, &stats.Bad, &stats.Neutral)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to query feedback stats")
	}
	return &stats, nil
}
