// Package telemetry wires the OpenTelemetry SDK. Without an OTLP endpoint the
// global no-op providers stay in place and spans and counters cost next to
// nothing.
package telemetry

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/fitkeeper/internal/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

const ServiceName = "fitkeeper"

// ShutdownFunc flushes and stops whatever Setup started.
type ShutdownFunc func(context.Context) error

func noopShutdown(context.Context) error { return nil }

// Setup installs global tracer and meter providers exporting to endpoint
// over OTLP/HTTP. endpoint is a full URL such as "http://collector:4318".
func Setup(ctx context.Context, endpoint string, logger logging.Logger) (ShutdownFunc, error) {
	logger = logger.With("module", "telemetry")

	if endpoint == "" {
		logger.Debug(ctx, "telemetry export disabled")
		return noopShutdown, nil
	}

	traceExporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return nil, fmt.Errorf("otlp trace exporter: %w", err)
	}

	metricExporter, err := otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpointURL(endpoint))
	if err != nil {
		_ = traceExporter.Shutdown(ctx)
		return nil, fmt.Errorf("otlp metric exporter: %w", err)
	}

	tp := newTracerProvider(sdktrace.WithBatcher(traceExporter))
	mp := newMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)))

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	logger.Info(ctx, "telemetry export enabled", "endpoint", endpoint)

	return func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}, nil
}

func serviceResource() *resource.Resource {
	return resource.NewSchemaless(attribute.String("service.name", ServiceName))
}

func newTracerProvider(opts ...sdktrace.TracerProviderOption) *sdktrace.TracerProvider {
	return sdktrace.NewTracerProvider(append([]sdktrace.TracerProviderOption{sdktrace.WithResource(serviceResource())}, opts...)...)
}

func newMeterProvider(opts ...sdkmetric.Option) *sdkmetric.MeterProvider {
	return sdkmetric.NewMeterProvider(append([]sdkmetric.Option{sdkmetric.WithResource(serviceResource())}, opts...)...)
}
