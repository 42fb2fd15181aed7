package sentiment

import (
	"fmt"
	"math"

	"happymeter/internal/models"
)

// Analysis is the scored outcome of a classification.
type Analysis struct {
	// Sentiment is the label of the winning class.
	Sentiment models.Sentiment
	// Score is the signed net-polarity summary, an integer in [-10, 10].
	Score int
	// Confidence is the probability mass of the winning class.
	Confidence float64
	// Probabilities holds the raw per-class output for debugging.
	Probabilities Probabilities
}

// Score maps per-class probabilities to a label, a signed score, and the
// winning-class confidence. Pure and deterministic; ties break in the fixed
// priority order positive, then negative, then neutral.
func Score(p Probabilities) Analysis {
	label := models.SentimentNeutral
	confidence := p.Neutral

	switch {
	case p.Positive >= p.Negative && p.Positive >= p.Neutral:
		label = models.SentimentGood
		confidence = p.Positive
	case p.Negative >= p.Neutral:
		label = models.SentimentBad
		confidence = p.Negative
	}

	return Analysis{
		Sentiment:     label,
		Score:         int(math.Round((p.Positive - p.Negative) * 10)),
		Confidence:    confidence,
		Probabilities: p,
	}
}

// FormatConfidence renders a confidence value with exactly 4 fractional digits,
// the precision the store and API contract use.
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.4f", confidence)
}
