package infrastructure

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/architeacher/markets/services/svc-markets/internal/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.32.0"
	otelTrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const (
	ExporterGRPC   = "grpc"
	ExporterStdout = "stdout"
)

type ShutdownFunc func(ctx context.Context) error

// NewTracerProvider builds an SDK provider exporting over OTLP gRPC, or to out
// when the exporter type is "stdout". It is installed as the global provider.
func NewTracerProvider(ctx context.Context, cfg config.Telemetry, out io.Writer) (otelTrace.TracerProvider, ShutdownFunc, error) {
	exporter, err := newSpanExporter(ctx, cfg, out)
	if err != nil {
		return nil, nil, err
	}

	res, err := resource.New(
		ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.Traces.SamplerRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	return tp, tp.Shutdown, nil
}

func newSpanExporter(ctx context.Context, cfg config.Telemetry, out io.Writer) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(cfg.ExporterType) {
	case ExporterStdout:
		exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
		if err != nil {
			return nil, fmt.Errorf("creating stdout trace exporter: %w", err)
		}

		return exporter, nil

	case ExporterGRPC, "":
		if cfg.OTLPEndpoint == "" {
			return nil, fmt.Errorf("creating OTLP trace exporter: endpoint is not configured")
		}

		exporter, err := otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		if err != nil {
			return nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
		}

		return exporter, nil

	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s", cfg.ExporterType)
	}
}

func NewNoopTracerProvider() otelTrace.TracerProvider {
	return noop.NewTracerProvider()
}
