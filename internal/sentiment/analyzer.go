package sentiment

import (
	"context"
	"sync/atomic"

	"happymeter/internal/config"
	"happymeter/internal/observability"
	contextutils "happymeter/internal/utils"

	"golang.org/x/sync/singleflight"
)

// warmupProbe is the throwaway input used to force the remote model to load.
const warmupProbe = "ok"

// Analyzer is the process-wide classifier adapter. The first classification
// (or an explicit Warmup) pays the model-load round-trip exactly once even
// under concurrent first use; a failed load is not cached, so the next call
// retries. Once ready, the underlying model is stateless and invoked
// concurrently without further coordination.
type Analyzer struct {
	client *Client
	logger *observability.Logger

	group singleflight.Group
	ready atomic.Bool
}

// NewAnalyzer creates an analyzer over the configured inference server.
func NewAnalyzer(cfg config.SentimentConfig, logger *observability.Logger) *Analyzer {
	return &Analyzer{
		client: NewClient(cfg, logger),
		logger: logger,
	}
}

// Warmup forces initialization eagerly so the first real request does not pay
// model-load latency. Idempotent; concurrent calls share one attempt.
func (a *Analyzer) Warmup(ctx context.Context) (err error) {
	ctx, span := observability.TraceSentimentFunction(ctx, "warmup")
	defer observability.FinishSpan(span, &err)

	return a.ensureReady(ctx)
}

// Analyze classifies text and scores the result.
func (a *Analyzer) Analyze(ctx context.Context, text string) (result0 *Analysis, err error) {
	ctx, span := observability.TraceSentimentFunction(ctx, "analyze",
		observability.AttributeTextLength(len(text)))
	defer observability.FinishSpan(span, &err)

	if err := a.ensureReady(ctx); err != nil {
		return nil, err
	}

	probs, err := a.client.Classify(ctx, text)
	if err != nil {
		return nil, err
	}

	analysis := Score(probs)
	return &analysis, nil
}

// ensureReady performs the one-time model-load round-trip. Concurrent callers
// share the in-flight attempt and its result or failure; on failure the
// analyzer stays uninitialized so a later call can retry.
func (a *Analyzer) ensureReady(ctx context.Context) error {
	if a.ready.Load() {
		return nil
	}

	_, err, _ := a.group.Do("init", func() (interface{}, error) {
		if a.ready.Load() {
			return nil, nil
		}

		a.logger.Info(ctx, "Loading sentiment model")
		if _, err := a.client.Classify(ctx, warmupProbe); err != nil {
			a.logger.Error(ctx, "Sentiment model load failed", err)
			return nil, contextutils.WrapError(err, "sentiment model initialization failed")
		}

		a.ready.Store(true)
		a.logger.Info(ctx, "Sentiment model ready")
		return nil, nil
	})
	return err
}
