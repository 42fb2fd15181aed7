package sentiment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"happymeter/internal/config"
	"happymeter/internal/observability"
	contextutils "happymeter/internal/utils"
)

func testClient(serverURL string) *Client {
	return NewClient(config.SentimentConfig{
		URL:     serverURL,
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}, observability.NewLogger(nil))
}

func TestClassify_ParsesNestedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/models/test-model", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "great service", req["inputs"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[[{"label":"positive","score":0.85},{"label":"negative","score":0.05},{"label":"neutral","score":0.10}]]`))
	}))
	defer server.Close()

	probs, err := testClient(server.URL).Classify(context.Background(), "great service")
	require.NoError(t, err)
	assert.InDelta(t, 0.85, probs.Positive, 1e-9)
	assert.InDelta(t, 0.05, probs.Negative, 1e-9)
	assert.InDelta(t, 0.10, probs.Neutral, 1e-9)
}

func TestClassify_ParsesFlatResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"label":"negative","score":0.7},{"label":"neutral","score":0.2},{"label":"positive","score":0.1}]`))
	}))
	defer server.Close()

	probs, err := testClient(server.URL).Classify(context.Background(), "bad")
	require.NoError(t, err)
	assert.InDelta(t, 0.7, probs.Negative, 1e-9)
}

func TestClassify_MapsNumericLabels(t *testing.T) {
	// RoBERTa checkpoints emit LABEL_0/1/2 for negative/neutral/positive
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[[{"label":"LABEL_2","score":0.6},{"label":"LABEL_0","score":0.3},{"label":"LABEL_1","score":0.1}]]`))
	}))
	defer server.Close()

	probs, err := testClient(server.URL).Classify(context.Background(), "ok")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, probs.Positive, 1e-9)
	assert.InDelta(t, 0.3, probs.Negative, 1e-9)
	assert.InDelta(t, 0.1, probs.Neutral, 1e-9)
}

func TestClassify_ServerErrorIsClassifierUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := testClient(server.URL).Classify(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeClassifierUnavailable, contextutils.GetErrorCode(err))
}

func TestClassify_MalformedBodyIsInvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"unexpected":"shape"}`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Classify(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeClassifierResponseInvalid, contextutils.GetErrorCode(err))
}

func TestClassify_EmptyPredictionListIsInvalidResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[[]]`))
	}))
	defer server.Close()

	_, err := testClient(server.URL).Classify(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeClassifierResponseInvalid, contextutils.GetErrorCode(err))
}

func TestClassify_UnreachableServerIsClassifierUnavailable(t *testing.T) {
	// Closed port
	_, err := testClient("http://127.0.0.1:1").Classify(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, contextutils.ErrorCodeClassifierUnavailable, contextutils.GetErrorCode(err))
}
