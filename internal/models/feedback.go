// Package models contains the persisted domain entities for the feedback application.
package models

import (
	"strings"
	"time"
)

// Sentiment is the coarse classification assigned to a feedback submission.
type Sentiment string

const (
	// SentimentGood indicates predominantly positive feedback
	SentimentGood Sentiment = "GOOD"
	// SentimentBad indicates predominantly negative feedback
	SentimentBad Sentiment = "BAD"
	// SentimentNeutral indicates feedback without a clear polarity
	SentimentNeutral Sentiment = "NEUTRAL"
)

// MaxFeedbackTextLength is the maximum accepted length of submitted text, pre-trim.
const MaxFeedbackTextLength = 1000

// ParseSentiment validates a raw sentiment value against the closed label set,
// ignoring case. The boolean result is false for anything outside
// {GOOD, BAD, NEUTRAL}.
func ParseSentiment(s string) (Sentiment, bool) {
	switch v := Sentiment(strings.ToUpper(s)); v {
	case SentimentGood, SentimentBad, SentimentNeutral:
		return v, true
	}
	return "", false
}

// Feedback represents a single stored feedback submission. Rows are append-only:
// created through ingestion and never updated or deleted by the application.
type Feedback struct {
	ID              int       `json:"id" db:"id"`
	Text            string    `json:"text" db:"text"`
	Sentiment       Sentiment `json:"sentiment" db:"sentiment"`
	ConfidenceScore string    `json:"confidenceScore" db:"confidence_score"`
	CreatedAt       time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}

// FeedbackStats aggregates counts across all stored feedback.
type FeedbackStats struct {
	Total   int `json:"total"`
	Good    int `json:"good"`
	Bad     int `json:"bad"`
	Neutral int `json:"neutral"`
}
