package observability

import (
	"context"
	"os"

	"happymeter/internal/config"

	autosdk "go.opentelemetry.io/auto/sdk"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// SetupObservability initializes tracing, metrics, and logging for a service
func SetupObservability(cfg *config.OpenTelemetryConfig, serviceName string) (result0 trace.TracerProvider, result1 *metric.MeterProvider, result2 *Logger, err error) {
	if serviceName != "" {
		cfg.ServiceName = serviceName
	}

	var tp trace.TracerProvider
	var mp *metric.MeterProvider

	if err := os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName); err != nil {
		return nil, nil, nil, err
	}
	if err := os.Setenv("OTEL_SERVICE_VERSION", cfg.ServiceVersion); err != nil {
		return nil, nil, nil, err
	}

	logger := NewLogger(cfg)

	if cfg.EnableTracing {
		if cfg.UseAutoSDK {
			// Auto SDK keeps span creation cheap and defers export to an
			// external agent when one is attached.
			tp = autosdk.TracerProvider()
			otel.SetTracerProvider(tp)

			logger.Info(context.Background(), "Tracing enabled with Auto SDK", map[string]interface{}{"service_name": cfg.ServiceName})
		} else {
			tp, err = InitStandardTracing(cfg)
			if err != nil {
				return nil, nil, nil, err
			}
			otel.SetTracerProvider(tp)

			logger.Info(context.Background(), "Tracing enabled with standard SDK", map[string]interface{}{"service_name": cfg.ServiceName})
		}

		InitPropagation()
		InitGlobalTracer()
	}

	if cfg.EnableMetrics {
		mp, err = InitMetrics(cfg)
		if err != nil {
			return nil, nil, nil, err
		}
	}

	return tp, mp, logger, nil
}
