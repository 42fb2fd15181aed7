// Package sentiment wraps a remote three-class text-classification model and
// maps its probability output onto the application's sentiment labels.
package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"happymeter/internal/config"
	"happymeter/internal/observability"
	contextutils "happymeter/internal/utils"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/trace"
)

// Probabilities is the per-class probability mass returned by the classifier.
// Values are non-negative and sum to approximately 1.
type Probabilities struct {
	Positive float64
	Negative float64
	Neutral  float64
}

// Client calls a hosted text-classification inference server speaking the
// HuggingFace inference protocol: POST {"inputs": text} returning
// [[{"label": ..., "score": ...}, ...]].
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *observability.Logger
}

// classifyRequest is the inference request body.
type classifyRequest struct {
	Inputs  string          `json:"inputs"`
	Options classifyOptions `json:"options"`
}

type classifyOptions struct {
	// WaitForModel blocks the request server-side until the model is loaded
	// instead of returning 503 while it warms up.
	WaitForModel bool `json:"wait_for_model"`
}

// classPrediction is a single label/score pair from the inference response.
type classPrediction struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// NewClient creates a classification client for the configured inference server.
func NewClient(cfg config.SentimentConfig, logger *observability.Logger) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(cfg.URL, "/"),
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport,
				otelhttp.WithSpanOptions(trace.WithSpanKind(trace.SpanKindClient)),
			),
		},
		logger: logger,
	}
}

// Classify sends text to the model and returns its per-class probabilities.
func (c *Client) Classify(ctx context.Context, text string) (result0 Probabilities, err error) {
	ctx, span := observability.TraceSentimentFunction(ctx, "classify",
		observability.AttributeTextLength(len(text)))
	defer observability.FinishSpan(span, &err)

	body, err := json.Marshal(classifyRequest{
		Inputs:  text,
		Options: classifyOptions{WaitForModel: true},
	})
	if err != nil {
		return Probabilities{}, contextutils.WrapError(err, "failed to marshal classification request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return Probabilities{}, contextutils.WrapError(err, "failed to build classification request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Probabilities{}, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeClassifierUnavailable,
			contextutils.SeverityError,
			"Sentiment classifier unavailable",
			"",
			err,
		)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return Probabilities{}, contextutils.WrapError(err, "failed to read classification response")
	}

	if resp.StatusCode != http.StatusOK {
		return Probabilities{}, contextutils.NewAppError(
			contextutils.ErrorCodeClassifierUnavailable,
			contextutils.SeverityError,
			"Sentiment classifier unavailable",
			fmt.Sprintf("inference server returned %d: %s", resp.StatusCode, truncate(respBody, 256)),
		)
	}

	return parsePredictions(respBody)
}

// endpoint returns the full inference URL for the configured model.
func (c *Client) endpoint() string {
	if c.model == "" {
		return c.baseURL
	}
	return c.baseURL + "/models/" + c.model
}

// parsePredictions decodes the inference response into per-class probabilities.
// Both the nested ([[...]]) and flat ([...]) response shapes are accepted.
func parsePredictions(body []byte) (Probabilities, error) {
	var nested [][]classPrediction
	var flat []classPrediction

	if err := json.Unmarshal(body, &nested); err == nil && len(nested) > 0 {
		flat = nested[0]
	} else if err := json.Unmarshal(body, &flat); err != nil {
		return Probabilities{}, contextutils.NewAppErrorWithCause(
			contextutils.ErrorCodeClassifierResponseInvalid,
			contextutils.SeverityError,
			"Sentiment classifier response invalid",
			truncate(body, 256),
			err,
		)
	}

	if len(flat) == 0 {
		return Probabilities{}, contextutils.NewAppError(
			contextutils.ErrorCodeClassifierResponseInvalid,
			contextutils.SeverityError,
			"Sentiment classifier response invalid",
			"empty prediction list",
		)
	}

	var probs Probabilities
	for _, p := range flat {
		switch normalizeLabel(p.Label) {
		case "positive":
			probs.Positive = p.Score
		case "negative":
			probs.Negative = p.Score
		case "neutral":
			probs.Neutral = p.Score
		}
	}
	return probs, nil
}

// normalizeLabel maps model label variants onto the canonical class names.
// RoBERTa-style sentiment checkpoints emit LABEL_0/1/2 for negative/neutral/positive.
func normalizeLabel(label string) string {
	switch strings.ToLower(label) {
	case "label_0":
		return "negative"
	case "label_1":
		return "neutral"
	case "label_2":
		return "positive"
	default:
		return strings.ToLower(label)
	}
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
