package infra

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.uber.org/fx"

	"catrank.dev/backend/internal/app/appconfig"
	"catrank.dev/backend/internal/pkg/bininfo"
	"catrank.dev/backend/internal/pkg/observability"
)

// Tracing builds the process-wide tracer provider. When tracing is disabled the
// provider has no exporter and samples nothing.
func Tracing(conf *appconfig.Config, lc fx.Lifecycle) (*tracesdk.TracerProvider, error) {
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(observability.ServiceName),
		semconv.ServiceVersionKey.String(bininfo.Version),
		attribute.String("environment", lo.Ternary(conf.DevMode, "dev", "prod")),
	)

	if !conf.TracingEnabled {
		return tracesdk.NewTracerProvider(
			tracesdk.WithResource(res),
			tracesdk.WithSampler(tracesdk.NeverSample()),
		), nil
	}

	opts := []tracesdk.TracerProviderOption{
		tracesdk.WithResource(res),
		tracesdk.WithSampler(tracesdk.ParentBased(tracesdk.TraceIDRatioBased(conf.TracingSampleRate))),
	}

	for _, name := range conf.TracingExporters {
		exporter, err := newSpanExporter(name)
		if err != nil {
			return nil, err
		}
		opts = append(opts, tracesdk.WithBatcher(exporter))

		log.Info().
			Str("evt.name", "infra.tracing.exporter").
			Str("exporter", name).
			Msg("tracing exporter enabled")
	}

	tp := tracesdk.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tp.Shutdown(ctx)
		},
	})

	return tp, nil
}

func newSpanExporter(name string) (tracesdk.SpanExporter, error) {
	switch name {
	case "jaeger":
		return jaeger.New(jaeger.WithCollectorEndpoint())
	case "otlp":
		// endpoint and headers are read from the OTEL_EXPORTER_OTLP_* environment variables
		return otlptrace.New(context.Background(), otlptracegrpc.NewClient())
	case "stdout":
		return stdouttrace.New(stdouttrace.WithPrettyPrint())
	default:
		return nil, fmt.Errorf("infra: tracing: unknown exporter %q", name)
	}
}
