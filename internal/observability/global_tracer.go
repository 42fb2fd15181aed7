package observability

import (
	"context"
	"fmt"

	"happymeter/internal/models"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var globalTracer trace.Tracer

// InitGlobalTracer initializes the global tracer for the application.
func InitGlobalTracer() {
	globalTracer = otel.Tracer("happymeter")
}

// GetGlobalTracer returns the global tracer instance for the application.
func GetGlobalTracer() trace.Tracer {
	if globalTracer == nil {
		// Fallback to default tracer if not initialized
		globalTracer = otel.Tracer("happymeter")
	}
	return globalTracer
}

// TraceFunction starts a new span with a descriptive name for the given service and function.
func TraceFunction(ctx context.Context, serviceName, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := GetGlobalTracer()
	spanName := fmt.Sprintf("%s.%s", serviceName, functionName)
	return tracer.Start(ctx, spanName, trace.WithAttributes(attributes...))
}

// TraceHandlerFunction starts a new span for a handler function.
func TraceHandlerFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "handler", functionName, attributes...)
}

// TraceFeedbackFunction starts a new span for a feedback service function.
func TraceFeedbackFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "feedback", functionName, attributes...)
}

// TraceSentimentFunction starts a new span for a sentiment analysis function.
func TraceSentimentFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "sentiment", functionName, attributes...)
}

// TraceDatabaseFunction starts a new span for a database function.
func TraceDatabaseFunction(ctx context.Context, functionName string, attributes ...attribute.KeyValue) (context.Context, trace.Span) {
	return TraceFunction(ctx, "database", functionName, attributes...)
}

// AttributeFeedbackID returns a tracing attribute for a feedback ID.
func AttributeFeedbackID(id int) attribute.KeyValue {
	return attribute.Int("feedback.id", id)
}

// AttributeSentiment returns a tracing attribute for a sentiment label.
func AttributeSentiment(s models.Sentiment) attribute.KeyValue {
	return attribute.String("feedback.sentiment", string(s))
}

// AttributeLimit returns a tracing attribute for a limit value.
func AttributeLimit(limit int) attribute.KeyValue {
	return attribute.Int("limit", limit)
}

// AttributeOffset returns a tracing attribute for an offset value.
func AttributeOffset(offset int) attribute.KeyValue {
	return attribute.Int("offset", offset)
}

// AttributeTextLength returns a tracing attribute for submitted text length.
func AttributeTextLength(n int) attribute.KeyValue {
	return attribute.Int("feedback.text_length", n)
}
