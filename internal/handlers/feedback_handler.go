// Package handlers contains the HTTP handlers for the feedback API.
package handlers

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"happymeter/internal/models"
	"happymeter/internal/observability"
	"happymeter/internal/sentiment"
	"happymeter/internal/serviceinterfaces"
	contextutils "happymeter/internal/utils"
)

const (
	// DefaultListLimit is the page size applied when the client sends none.
	DefaultListLimit = 20
	// MaxListLimit caps the page size a client may request.
	MaxListLimit = 100

	// timestampLayout renders timestamps in API responses as ISO-8601 with
	// millisecond precision.
	timestampLayout = "2006-01-02T15:04:05.000Z07:00"
)

// FeedbackHandler serves the public submission endpoint and the admin
// list/stats endpoints.
type FeedbackHandler struct {
	feedbackService serviceinterfaces.FeedbackServiceInterface
	analyzer        serviceinterfaces.SentimentAnalyzerInterface
	logger          *observability.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler instance.
func NewFeedbackHandler(feedbackService serviceinterfaces.FeedbackServiceInterface, analyzer serviceinterfaces.SentimentAnalyzerInterface, logger *observability.Logger) *FeedbackHandler {
	if feedbackService == nil {
		panic("NewFeedbackHandler: feedbackService is nil")
	}
	if analyzer == nil {
		panic("NewFeedbackHandler: analyzer is nil")
	}
	if logger == nil {
		panic("NewFeedbackHandler: logger is nil")
	}
	return &FeedbackHandler{
		feedbackService: feedbackService,
		analyzer:        analyzer,
		logger:          logger,
	}
}

// submitFeedbackRequest deliberately types Text as any so a missing field and
// a wrong-typed field produce the same validation message.
type submitFeedbackRequest struct {
	Text any `json:"text"`
}

type submitFeedbackResponse struct {
	ID              int    `json:"id"`
	Text            string `json:"text"`
	Sentiment       string `json:"sentiment"`
	ConfidenceScore string `json:"confidenceScore"`
	CreatedAt       string `json:"createdAt"`
}

type listFeedbackResponse struct {
	Feedback []models.Feedback `json:"feedback"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
}

// SubmitFeedback handles POST /api/feedback. The text is validated, classified
// and persisted together with the derived sentiment label and confidence.
func (h *FeedbackHandler) SubmitFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "submit_feedback")
	var err error
	defer observability.FinishSpan(span, &err)

	var req submitFeedbackRequest
	if bindErr := c.ShouldBindJSON(&req); bindErr != nil {
		err = contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			"Text field is required and must be a string", "")
		HandleAppError(c, err)
		return
	}

	text, ok := req.Text.(string)
	if !ok {
		err = contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			"Text field is required and must be a string", "")
		HandleAppError(c, err)
		return
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		err = contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			"Text cannot be empty", "")
		HandleAppError(c, err)
		return
	}

	// Length is checked on the untrimmed input so clients see the limit they
	// actually sent against.
	if utf8.RuneCountInString(text) > models.MaxFeedbackTextLength {
		err = contextutils.NewAppError(contextutils.ErrorCodeInvalidInput, contextutils.SeverityWarn,
			"Text must not exceed 1000 characters", "")
		HandleAppError(c, err)
		return
	}

	span.SetAttributes(observability.AttributeTextLength(utf8.RuneCountInString(trimmed)))

	analysis, err := h.analyzer.Analyze(ctx, trimmed)
	if err != nil {
		h.logger.Error(ctx, "sentiment analysis failed", err)
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInternalError, contextutils.SeverityError,
			"Failed to submit feedback", "", err))
		return
	}

	fb, err := h.feedbackService.CreateFeedback(ctx, trimmed, analysis.Sentiment,
		sentiment.FormatConfidence(analysis.Confidence))
	if err != nil {
		h.logger.Error(ctx, "failed to store feedback", err)
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInternalError, contextutils.SeverityError,
			"Failed to submit feedback", "", err))
		return
	}

	span.SetAttributes(
		observability.AttributeFeedbackID(fb.ID),
		observability.AttributeSentiment(fb.Sentiment),
	)
	h.logger.Info(ctx, "feedback submitted", map[string]interface{}{
		"feedback_id": fb.ID,
		"sentiment":   string(fb.Sentiment),
	})

	c.JSON(http.StatusCreated, submitFeedbackResponse{
		ID:              fb.ID,
		Text:            fb.Text,
		Sentiment:       string(fb.Sentiment),
		ConfidenceScore: fb.ConfidenceScore,
		CreatedAt:       fb.CreatedAt.UTC().Format(timestampLayout),
	})
}

// ListFeedback handles GET /api/feedback with pagination and an optional
// sentiment filter. Unknown filter values are ignored rather than rejected.
func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "list_feedback")
	var err error
	defer observability.FinishSpan(span, &err)

	limit, offset := ParseLimitOffset(c, DefaultListLimit, MaxListLimit)

	var filter *models.Sentiment
	if raw := c.Query("sentiment"); raw != "" {
		if s, ok := models.ParseSentiment(raw); ok {
			filter = &s
		}
	}

	list, total, err := h.feedbackService.ListFeedback(ctx, limit, offset, filter)
	if err != nil {
		h.logger.Error(ctx, "failed to list feedback", err)
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInternalError, contextutils.SeverityError,
			"Failed to fetch feedback", "", err))
		return
	}

	c.JSON(http.StatusOK, listFeedbackResponse{
		Feedback: list,
		Total:    total,
		Limit:    limit,
		Offset:   offset,
	})
}

// GetStats handles GET /api/feedback/stats.
func (h *FeedbackHandler) GetStats(c *gin.Context) {
	ctx, span := observability.TraceHandlerFunction(c.Request.Context(), "get_stats")
	var err error
	defer observability.FinishSpan(span, &err)

	stats, err := h.feedbackService.GetStats(ctx)
	if err != nil {
		h.logger.Error(ctx, "failed to fetch feedback stats", err)
		HandleAppError(c, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeInternalError, contextutils.SeverityError,
			"Failed to fetch stats", "", err))
		return
	}

	c.JSON(http.StatusOK, stats)
}
