package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happymeter/internal/models"
	"happymeter/internal/observability"
	"happymeter/internal/sentiment"
	contextutils "happymeter/internal/utils"
)

type mockFeedbackService struct {
	created        *models.Feedback
	createErr      error
	lastText       string
	lastSentiment  models.Sentiment
	lastConfidence string

	list       []models.Feedback
	total      int
	listErr    error
	lastLimit  int
	lastOffset int
	lastFilter *models.Sentiment

	stats    *models.FeedbackStats
	statsErr error
}

func (m *mockFeedbackService) CreateFeedback(_ context.Context, text string, s models.Sentiment, confidenceScore string) (*models.Feedback, error) {
	m.lastText = text
	m.lastSentiment = s
	m.lastConfidence = confidenceScore
	return m.created, m.createErr
}

func (m *mockFeedbackService) ListFeedback(_ context.Context, limit, offset int, s *models.Sentiment) ([]models.Feedback, int, error) {
	m.lastLimit = limit
	m.lastOffset = offset
	m.lastFilter = s
	return m.list, m.total, m.listErr
}

func (m *mockFeedbackService) GetStats(_ context.Context) (*models.FeedbackStats, error) {
	return m.stats, m.statsErr
}

type mockAnalyzer struct {
	analysis *sentiment.Analysis
	err      error
	lastText string
}

func (m *mockAnalyzer) Warmup(_ context.Context) error { return m.err }

func (m *mockAnalyzer) Analyze(_ context.Context, text string) (*sentiment.Analysis, error) {
	m.lastText = text
	return m.analysis, m.err
}

func newTestHandler(svc *mockFeedbackService, analyzer *mockAnalyzer) *FeedbackHandler {
	return NewFeedbackHandler(svc, analyzer, observability.NewLogger(nil))
}

func performSubmit(handler *FeedbackHandler, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/feedback", handler.SubmitFeedback)

	req := httptest.NewRequest(http.MethodPost, "/api/feedback", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSubmitFeedback_Success(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	svc := &mockFeedbackService{
		created: &models.Feedback{
			ID:              1,
			Text:            "great service",
			Sentiment:       models.SentimentGood,
			ConfidenceScore: "0.9000",
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}
	analyzer := &mockAnalyzer{
		analysis: &sentiment.Analysis{
			Sentiment:  models.SentimentGood,
			Score:      9,
			Confidence: 0.9,
		},
	}

	w := performSubmit(newTestHandler(svc, analyzer), `{"text":"great service"}`)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(1), resp["id"])
	assert.Equal(t, "great service", resp["text"])
	assert.Equal(t, "GOOD", resp["sentiment"])
	assert.Equal(t, "0.9000", resp["confidenceScore"])
	assert.NotEmpty(t, resp["createdAt"])
	assert.NotContains(t, resp, "updatedAt")

	assert.Equal(t, "0.9000", svc.lastConfidence)
	assert.Equal(t, models.SentimentGood, svc.lastSentiment)
}

func TestSubmitFeedback_TrimsSurroundingWhitespace(t *testing.T) {
	svc := &mockFeedbackService{
		created: &models.Feedback{ID: 2, Text: "hello", Sentiment: models.SentimentNeutral, ConfidenceScore: "0.5000"},
	}
	analyzer := &mockAnalyzer{analysis: &sentiment.Analysis{Sentiment: models.SentimentNeutral, Confidence: 0.5}}

	w := performSubmit(newTestHandler(svc, analyzer), `{"text":"  hello  "}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "hello", svc.lastText)
	assert.Equal(t, "hello", analyzer.lastText)
}

func TestSubmitFeedback_MissingText(t *testing.T) {
	w := performSubmit(newTestHandler(&mockFeedbackService{}, &mockAnalyzer{}), `{}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Text field is required and must be a string")
}

func TestSubmitFeedback_NonStringText(t *testing.T) {
	w := performSubmit(newTestHandler(&mockFeedbackService{}, &mockAnalyzer{}), `{"text":42}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Text field is required and must be a string")
}

func TestSubmitFeedback_MalformedJSON(t *testing.T) {
	w := performSubmit(newTestHandler(&mockFeedbackService{}, &mockAnalyzer{}), `{"text":`)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitFeedback_WhitespaceOnlyText(t *testing.T) {
	w := performSubmit(newTestHandler(&mockFeedbackService{}, &mockAnalyzer{}), `{"text":"   "}`)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Text cannot be empty")
}

func TestSubmitFeedback_TextAtLimitAccepted(t *testing.T) {
	svc := &mockFeedbackService{
		created: &models.Feedback{ID: 3, Sentiment: models.SentimentNeutral, ConfidenceScore: "0.4000"},
	}
	analyzer := &mockAnalyzer{analysis: &sentiment.Analysis{Sentiment: models.SentimentNeutral, Confidence: 0.4}}

	body, err := json.Marshal(map[string]string{"text": strings.Repeat("a", 1000)})
	require.NoError(t, err)

	w := performSubmit(newTestHandler(svc, analyzer), string(body))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestSubmitFeedback_TextOverLimitRejected(t *testing.T) {
	body, err := json.Marshal(map[string]string{"text": strings.Repeat("a", 1001)})
	require.NoError(t, err)

	w := performSubmit(newTestHandler(&mockFeedbackService{}, &mockAnalyzer{}), string(body))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Text must not exceed 1000 characters")
}

func TestSubmitFeedback_AnalyzerFailureIsOpaque500(t *testing.T) {
	analyzer := &mockAnalyzer{err: contextutils.ErrClassifierUnavailable}

	w := performSubmit(newTestHandler(&mockFeedbackService{}, analyzer), `{"text":"hello"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to submit feedback")
	assert.NotContains(t, w.Body.String(), "classifier")
}

func TestSubmitFeedback_StoreFailureIsOpaque500(t *testing.T) {
	svc := &mockFeedbackService{createErr: contextutils.ErrDatabaseQuery}
	analyzer := &mockAnalyzer{analysis: &sentiment.Analysis{Sentiment: models.SentimentGood, Confidence: 0.9}}

	w := performSubmit(newTestHandler(svc, analyzer), `{"text":"hello"}`)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to submit feedback")
}

func performList(handler *FeedbackHandler, query string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/feedback", handler.ListFeedback)

	req := httptest.NewRequest(http.MethodGet, "/api/feedback"+query, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestListFeedback_Defaults(t *testing.T) {
	svc := &mockFeedbackService{list: []models.Feedback{}, total: 0}

	w := performList(newTestHandler(svc, &mockAnalyzer{}), "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, svc.lastLimit)
	assert.Equal(t, 0, svc.lastOffset)
	assert.Nil(t, svc.lastFilter)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(20), resp["limit"])
	assert.Equal(t, float64(0), resp["offset"])
	assert.Equal(t, float64(0), resp["total"])
	assert.NotNil(t, resp["feedback"])
}

func TestListFeedback_ClampsLimitAndOffset(t *testing.T) {
	svc := &mockFeedbackService{list: []models.Feedback{}}

	performList(newTestHandler(svc, &mockAnalyzer{}), "?limit=500&offset=-3")

	assert.Equal(t, 100, svc.lastLimit)
	assert.Equal(t, 0, svc.lastOffset)
}

func TestListFeedback_InvalidPaginationFallsBackToDefaults(t *testing.T) {
	svc := &mockFeedbackService{list: []models.Feedback{}}

	performList(newTestHandler(svc, &mockAnalyzer{}), "?limit=abc&offset=xyz")

	assert.Equal(t, 20, svc.lastLimit)
	assert.Equal(t, 0, svc.lastOffset)
}

func TestListFeedback_SentimentFilter(t *testing.T) {
	svc := &mockFeedbackService{list: []models.Feedback{}}

	performList(newTestHandler(svc, &mockAnalyzer{}), "?sentiment=GOOD")

	require.NotNil(t, svc.lastFilter)
	assert.Equal(t, models.SentimentGood, *svc.lastFilter)
}

func TestListFeedback_UnknownSentimentFilterIgnored(t *testing.T) {
	svc := &mockFeedbackService{list: []models.Feedback{}}

	performList(newTestHandler(svc, &mockAnalyzer{}), "?sentiment=HAPPY")

	assert.Nil(t, svc.lastFilter)
}

func TestListFeedback_StoreFailure(t *testing.T) {
	svc := &mockFeedbackService{listErr: contextutils.ErrDatabaseQuery}

	w := performList(newTestHandler(svc, &mockAnalyzer{}), "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to fetch feedback")
}

func TestGetStats(t *testing.T) {
	svc := &mockFeedbackService{
		stats: &models.FeedbackStats{Total: 10, Good: 6, Bad: 3, Neutral: 1},
	}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/feedback/stats", newTestHandler(svc, &mockAnalyzer{}).GetStats)

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(10), resp["total"])
	assert.Equal(t, float64(6), resp["good"])
	assert.Equal(t, float64(3), resp["bad"])
	assert.Equal(t, float64(1), resp["neutral"])
}

func TestGetStats_StoreFailure(t *testing.T) {
	svc := &mockFeedbackService{statsErr: contextutils.ErrDatabaseQuery}

	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/feedback/stats", newTestHandler(svc, &mockAnalyzer{}).GetStats)

	req := httptest.NewRequest(http.MethodGet, "/api/feedback/stats", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to fetch stats")
}
