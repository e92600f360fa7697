package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// InitTracer installs a global tracer provider exporting spans over OTLP/HTTP
// to endpoint. The returned function flushes and stops the exporter.
func InitTracer(ctx context.Context, endpoint, serviceName, version string, attrs ...attribute.KeyValue) (trace.Tracer, func(context.Context) error, error) {
	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, nil, fmt.Errorf("creating trace exporter: %w", err)
	}

	attrs = append([]attribute.KeyValue{
		attribute.String("service.name", serviceName),
		attribute.String("service.version", version),
	}, attrs...)

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(attrs...)),
	)
	otel.SetTracerProvider(tp)

	return tp.Tracer(serviceName), tp.Shutdown, nil
}
